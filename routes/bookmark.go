package routes

import (
	"log"

	"github.com/kataras/iris/v12"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"property-pulse-server/storage"
	"property-pulse-server/utils"
)

// ToggleBookmark adds the property to the caller's bookmarks when absent and
// removes it when present.
func (h *PropertyHandler) ToggleBookmark(ctx iris.Context) {
	caller, ok := callerID(ctx)
	if !ok {
		return
	}

	var input BookmarkInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	propertyID, err := primitive.ObjectIDFromHex(input.PropertyID)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid property ID", ctx)
		return
	}

	reqCtx := ctx.Request().Context()
	if _, err := h.Properties.Get(reqCtx, propertyID); err == storage.ErrNotFound {
		utils.CreateNotFound(ctx)
		return
	} else if err != nil {
		log.Printf("property %s lookup failed: %v", propertyID.Hex(), err)
		utils.CreateInternalServerError(ctx)
		return
	}

	bookmarked, err := h.Users.ToggleBookmark(reqCtx, caller, propertyID)
	if err != nil {
		log.Printf("bookmark toggle failed: %v", err)
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"success": false, "message": "Failed to update bookmark"})
		return
	}

	message := "Bookmark removed successfully"
	if bookmarked {
		message = "Bookmark added successfully"
	}
	ctx.JSON(iris.Map{"success": true, "isBookmarked": bookmarked, "message": message})
}

func (h *PropertyHandler) CheckBookmark(ctx iris.Context) {
	caller, ok := callerID(ctx)
	if !ok {
		return
	}

	propertyID, err := primitive.ObjectIDFromHex(ctx.URLParam("propertyId"))
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Property ID is required", ctx)
		return
	}

	bookmarked, err := h.Users.IsBookmarked(ctx.Request().Context(), caller, propertyID)
	if err != nil {
		log.Printf("bookmark check failed: %v", err)
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"success": false, "message": "Failed to check bookmark status"})
		return
	}

	ctx.JSON(iris.Map{"success": true, "isBookmarked": bookmarked})
}

// GetSavedProperties resolves the caller's bookmark set to full listings.
func (h *PropertyHandler) GetSavedProperties(ctx iris.Context) {
	caller, ok := callerID(ctx)
	if !ok {
		return
	}

	reqCtx := ctx.Request().Context()
	user, err := h.Users.FindByID(reqCtx, caller)
	if err != nil {
		log.Printf("user %s lookup failed: %v", caller.Hex(), err)
		utils.CreateInternalServerError(ctx)
		return
	}

	properties, err := h.Properties.FindByIDs(reqCtx, user.Bookmarks)
	if err != nil {
		log.Printf("saved properties fetch failed: %v", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "properties": utils.Serializable(properties)})
}

type BookmarkInput struct {
	PropertyID string `json:"propertyId" validate:"required"`
}
