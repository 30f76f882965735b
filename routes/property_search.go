package routes

import (
	"log"

	"github.com/kataras/iris/v12"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"property-pulse-server/storage"
	"property-pulse-server/utils"
)

// SearchProperties handles the filtered listing search. Criteria arrive as
// optional query parameters; "All" (or absence) disables the corresponding
// clause. An empty result set is a success with an empty array, not an error.
func (h *PropertyHandler) SearchProperties(ctx iris.Context) {
	filter := storage.PropertyFilter{
		Location:     ctx.URLParam("location"),
		PropertyType: ctx.URLParam("propertyType"),
		MaximumPrice: ctx.URLParam("maximumPrice"),
		Currency:     ctx.URLParam("currency"),
		IsForSale:    ctx.URLParam("isForSale"),
	}

	properties, err := h.Properties.FindFiltered(ctx.Request().Context(), filter, storage.DefaultSearchLimit)
	if err != nil {
		log.Printf("property search failed: %v", err)
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"success": false, "error": "An error occurred while fetching properties"})
		return
	}

	ctx.JSON(iris.Map{"success": true, "properties": utils.Serializable(properties)})
}

// GetLatestProperties powers the homepage feed.
func (h *PropertyHandler) GetLatestProperties(ctx iris.Context) {
	limit := ctx.URLParamIntDefault("limit", 4)

	properties, err := h.Properties.FindLatest(ctx.Request().Context(), int64(limit))
	if err != nil {
		log.Printf("latest properties fetch failed: %v", err)
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"success": false, "error": "An error occurred while fetching properties"})
		return
	}

	ctx.JSON(iris.Map{"success": true, "properties": utils.Serializable(properties)})
}

// GetAllProperties is the unfiltered browse view; no limit applies.
func (h *PropertyHandler) GetAllProperties(ctx iris.Context) {
	properties, err := h.Properties.FindFiltered(ctx.Request().Context(), storage.PropertyFilter{}, 0)
	if err != nil {
		log.Printf("properties fetch failed: %v", err)
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"success": false, "error": "An error occurred while fetching properties"})
		return
	}

	ctx.JSON(iris.Map{"success": true, "properties": utils.Serializable(properties)})
}

func (h *PropertyHandler) GetProperty(ctx iris.Context) {
	id, err := primitive.ObjectIDFromHex(ctx.Params().Get("id"))
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid property ID", ctx)
		return
	}

	property, err := h.Properties.FindByID(ctx.Request().Context(), id)
	if err == storage.ErrNotFound {
		utils.CreateNotFound(ctx)
		return
	}
	if err != nil {
		log.Printf("property %s fetch failed: %v", id.Hex(), err)
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "property": utils.Serializable(property)})
}

// GetPropertiesByOwner returns a user's own listings plus the count for the
// dashboard; the owner is not populated since the caller already knows it.
func (h *PropertyHandler) GetPropertiesByOwner(ctx iris.Context) {
	ownerID, err := primitive.ObjectIDFromHex(ctx.Params().Get("id"))
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid user ID", ctx)
		return
	}

	reqCtx := ctx.Request().Context()
	properties, err := h.Properties.FindByOwner(reqCtx, ownerID)
	if err != nil {
		log.Printf("properties for owner %s fetch failed: %v", ownerID.Hex(), err)
		utils.CreateInternalServerError(ctx)
		return
	}

	total, err := h.Properties.CountByOwner(reqCtx, ownerID)
	if err != nil {
		log.Printf("property count for owner %s failed: %v", ownerID.Hex(), err)
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"success":    true,
		"properties": utils.Serializable(properties),
		"total":      total,
	})
}
