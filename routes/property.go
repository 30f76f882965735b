package routes

import (
	"context"
	"log"
	"mime/multipart"
	"sync"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"property-pulse-server/models"
	"property-pulse-server/storage"
	"property-pulse-server/utils"
)

// PropertyStore is the listing persistence surface the handlers depend on;
// *storage.PropertyStore satisfies it.
type PropertyStore interface {
	FindFiltered(ctx context.Context, filter storage.PropertyFilter, limit int64) ([]bson.M, error)
	FindLatest(ctx context.Context, limit int64) ([]bson.M, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (bson.M, error)
	FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]bson.M, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]bson.M, error)
	CountByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Property, error)
	Insert(ctx context.Context, property *models.Property) (primitive.ObjectID, error)
	Replace(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MediaStore is the asset host surface; *storage.MediaStore satisfies it.
type MediaStore interface {
	UploadImage(ctx context.Context, fh *multipart.FileHeader, publicID string) (string, error)
	UploadVideo(ctx context.Context, fh *multipart.FileHeader, publicID string) (string, error)
	Destroy(ctx context.Context, publicID, resourceType string) error
}

type PropertyHandler struct {
	Properties PropertyStore
	Users      *storage.UserStore
	Media      MediaStore
}

func (h *PropertyHandler) CreateProperty(ctx iris.Context) {
	ownerID, ok := callerID(ctx)
	if !ok {
		return
	}

	form, err := parseListingForm(ctx)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid form data", ctx)
		return
	}

	fields, fieldErrs := form.Validate()
	if len(fieldErrs) > 0 {
		respondFieldErrors(ctx, fieldErrs)
		return
	}

	reqCtx := ctx.Request().Context()

	// Two-phase create: every asset is uploaded before the document is
	// written, and uploads are compensated if the write fails.
	videoURL := ""
	if form.Video != nil {
		videoURL, err = h.Media.UploadVideo(reqCtx, form.Video, newAssetID())
		if err != nil {
			log.Printf("video upload failed: %v", err)
			ctx.StatusCode(iris.StatusInternalServerError)
			ctx.JSON(iris.Map{"success": false, "message": "Failed to upload video"})
			return
		}
	}

	imageURLs, err := h.uploadImages(reqCtx, form.Images)
	if err != nil {
		log.Printf("image upload failed: %v", err)
		h.destroyAssets(imageURLs, videoURL)
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"success": false, "message": "Failed to upload image"})
		return
	}

	property := &models.Property{
		Owner:       ownerID,
		Name:        fields.Name,
		Type:        fields.Type,
		Description: fields.Description,
		Location:    fields.Location,
		Beds:        fields.Beds,
		Baths:       fields.Baths,
		SquareFeet:  fields.SquareFeet,
		Amenities:   fields.Amenities,
		Rates:       fields.Rates,
		Price:       fields.Price,
		Discount:    fields.Discount,
		Currency:    fields.Currency,
		IsForSale:   fields.IsForSale,
		SellerInfo:  fields.Seller,
		Images:      imageURLs,
		VideoURL:    videoURL,
	}

	id, err := h.Properties.Insert(reqCtx, property)
	if err != nil {
		log.Printf("property insert failed: %v", err)
		h.destroyAssets(imageURLs, videoURL)
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"success": false, "message": "Failed to create property"})
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "propertyId": id.Hex()})
}

func (h *PropertyHandler) UpdateProperty(ctx iris.Context) {
	caller, ok := callerID(ctx)
	if !ok {
		return
	}

	property, ok := h.ownedProperty(ctx, caller)
	if !ok {
		return
	}

	form, err := parseListingForm(ctx)
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid form data", ctx)
		return
	}

	fields, fieldErrs := form.Validate()
	if len(fieldErrs) > 0 {
		respondFieldErrors(ctx, fieldErrs)
		return
	}

	reqCtx := ctx.Request().Context()

	newImageURLs, err := h.uploadImages(reqCtx, form.Images)
	if err != nil {
		log.Printf("image upload failed: %v", err)
		h.destroyAssets(newImageURLs, "")
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"success": false, "message": "Failed to upload image"})
		return
	}

	// Final image list = (existing - removed) + newly uploaded.
	images := make([]string, 0, len(form.ExistingImages)+len(newImageURLs))
	for _, imageURL := range form.ExistingImages {
		if !slices.Contains(form.RemovedImages, imageURL) {
			images = append(images, imageURL)
		}
	}
	images = append(images, newImageURLs...)

	videoURL := property.VideoURL
	uploadedVideo := ""
	if form.Video != nil {
		uploadedVideo, err = h.Media.UploadVideo(reqCtx, form.Video, newAssetID())
		if err != nil {
			log.Printf("video upload failed: %v", err)
			h.destroyAssets(newImageURLs, "")
			ctx.StatusCode(iris.StatusInternalServerError)
			ctx.JSON(iris.Map{"success": false, "message": "Failed to upload video"})
			return
		}
		videoURL = uploadedVideo
	}

	replacedVideo := ""
	if form.Video != nil && property.VideoURL != "" {
		replacedVideo = property.VideoURL
	}

	property.Name = fields.Name
	property.Type = fields.Type
	property.Description = fields.Description
	property.Location = fields.Location
	property.Beds = fields.Beds
	property.Baths = fields.Baths
	property.SquareFeet = fields.SquareFeet
	property.Amenities = fields.Amenities
	property.Rates = fields.Rates
	property.Price = fields.Price
	property.Discount = fields.Discount
	property.Currency = fields.Currency
	property.IsForSale = fields.IsForSale
	property.SellerInfo = fields.Seller
	property.Images = images
	property.VideoURL = videoURL

	// Compensation covers everything this request uploaded, the video
	// included; the stored assets stay untouched.
	if err := h.Properties.Replace(reqCtx, property); err != nil {
		log.Printf("property %s update failed: %v", property.ID.Hex(), err)
		h.destroyAssets(newImageURLs, uploadedVideo)
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"success": false, "message": "Failed to update property"})
		return
	}

	// Removed images and a replaced video are deleted best-effort; a
	// dangling remote asset must not block the edit.
	h.destroyAssets(form.RemovedImages, replacedVideo)

	ctx.JSON(iris.Map{"success": true, "message": "Property updated successfully"})
}

func (h *PropertyHandler) DeleteProperty(ctx iris.Context) {
	caller, ok := callerID(ctx)
	if !ok {
		return
	}

	property, ok := h.ownedProperty(ctx, caller)
	if !ok {
		return
	}

	h.destroyAssets(property.Images, property.VideoURL)

	if err := h.Properties.Delete(ctx.Request().Context(), property.ID); err != nil {
		log.Printf("property %s delete failed: %v", property.ID.Hex(), err)
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"message": "Property deleted successfully"})
}

// ownedProperty loads the listing from the id path parameter and enforces
// ownership: 404 when missing, 403 when the caller is not the owner.
func (h *PropertyHandler) ownedProperty(ctx iris.Context, caller primitive.ObjectID) (*models.Property, bool) {
	id, err := primitive.ObjectIDFromHex(ctx.Params().Get("id"))
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid property ID", ctx)
		return nil, false
	}

	property, err := h.Properties.Get(ctx.Request().Context(), id)
	if err == storage.ErrNotFound {
		utils.CreateNotFound(ctx)
		return nil, false
	}
	if err != nil {
		log.Printf("property %s lookup failed: %v", id.Hex(), err)
		utils.CreateInternalServerError(ctx)
		return nil, false
	}

	if property.Owner != caller {
		utils.CreateForbidden(ctx)
		return nil, false
	}
	return property, true
}

// uploadImages fans the uploads out concurrently and waits for all of them;
// one failure fails the whole batch.
func (h *PropertyHandler) uploadImages(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, len(files))
	g, groupCtx := errgroup.WithContext(ctx)
	for i, fh := range files {
		i, fh := i, fh
		g.Go(func() error {
			assetURL, err := h.Media.UploadImage(groupCtx, fh, newAssetID())
			if err != nil {
				return err
			}
			urls[i] = assetURL
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var uploaded []string
		for _, assetURL := range urls {
			if assetURL != "" {
				uploaded = append(uploaded, assetURL)
			}
		}
		return uploaded, err
	}
	return urls, nil
}

// destroyAssets issues parallel best-effort deletions; failures are logged
// per asset and never escalate.
func (h *PropertyHandler) destroyAssets(imageURLs []string, videoURL string) {
	var wg sync.WaitGroup
	destroy := func(assetURL, resourceType string) {
		publicID := storage.PublicIDFromURL(assetURL)
		if publicID == "" {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := h.Media.Destroy(context.Background(), publicID, resourceType); err != nil {
				log.Printf("failed to delete %s %s: %v", resourceType, publicID, err)
			}
		}()
	}

	for _, imageURL := range imageURLs {
		destroy(imageURL, "image")
	}
	if videoURL != "" {
		destroy(videoURL, "video")
	}
	wg.Wait()
}

func callerID(ctx iris.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(ctx.Values().GetString("userID"))
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid user ID format", ctx)
		return primitive.NilObjectID, false
	}
	return id, true
}

func newAssetID() string {
	return "property_" + uuid.NewString()
}

func respondFieldErrors(ctx iris.Context, errs []FieldError) {
	ctx.StatusCode(iris.StatusBadRequest)
	ctx.JSON(iris.Map{"success": false, "message": errs[0].Message, "errors": errs})
}
