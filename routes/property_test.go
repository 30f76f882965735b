package routes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"

	"github.com/kataras/iris/v12"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"property-pulse-server/models"
	"property-pulse-server/storage"
)

type fakePropertyStore struct {
	property   *models.Property
	replaceErr error
	replaced   bool
}

func (f *fakePropertyStore) FindFiltered(context.Context, storage.PropertyFilter, int64) ([]bson.M, error) {
	return nil, nil
}
func (f *fakePropertyStore) FindLatest(context.Context, int64) ([]bson.M, error) { return nil, nil }
func (f *fakePropertyStore) FindByID(context.Context, primitive.ObjectID) (bson.M, error) {
	return nil, storage.ErrNotFound
}
func (f *fakePropertyStore) FindByOwner(context.Context, primitive.ObjectID) ([]bson.M, error) {
	return nil, nil
}
func (f *fakePropertyStore) FindByIDs(context.Context, []primitive.ObjectID) ([]bson.M, error) {
	return nil, nil
}
func (f *fakePropertyStore) CountByOwner(context.Context, primitive.ObjectID) (int64, error) {
	return 0, nil
}

func (f *fakePropertyStore) Get(_ context.Context, id primitive.ObjectID) (*models.Property, error) {
	if f.property == nil || f.property.ID != id {
		return nil, storage.ErrNotFound
	}
	clone := *f.property
	return &clone, nil
}

func (f *fakePropertyStore) Insert(_ context.Context, property *models.Property) (primitive.ObjectID, error) {
	property.ID = primitive.NewObjectID()
	return property.ID, nil
}

func (f *fakePropertyStore) Replace(context.Context, *models.Property) error {
	f.replaced = true
	return f.replaceErr
}

func (f *fakePropertyStore) Delete(context.Context, primitive.ObjectID) error { return nil }

type fakeMediaStore struct {
	mu        sync.Mutex
	videoURL  string
	destroyed []string // "resourceType publicID"
}

func (f *fakeMediaStore) UploadImage(_ context.Context, fh *multipart.FileHeader, publicID string) (string, error) {
	return "https://res.cloudinary.com/demo/image/upload/v1/" + publicID + ".jpg", nil
}

func (f *fakeMediaStore) UploadVideo(context.Context, *multipart.FileHeader, string) (string, error) {
	return f.videoURL, nil
}

func (f *fakeMediaStore) Destroy(_ context.Context, publicID, resourceType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, resourceType+" "+publicID)
	return nil
}

func (f *fakeMediaStore) didDestroy(resourceType, publicID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, entry := range f.destroyed {
		if entry == resourceType+" "+publicID {
			return true
		}
	}
	return false
}

func updateTestApp(t *testing.T, h *PropertyHandler, ownerHex string) *iris.Application {
	t.Helper()
	app := iris.New()
	app.Post("/api/property/update/{id}", func(ctx iris.Context) {
		ctx.Values().Set("userID", ownerHex)
		h.UpdateProperty(ctx)
	})
	if err := app.Build(); err != nil {
		t.Fatal(err)
	}
	return app
}

func listingUpdateBody(t *testing.T, withVideo bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	fields := map[string]string{
		"listingTitle": "Harborview Flat",
		"type":         "Apartment",
		"description":  "Two bedroom flat with harbor views.",
		"saleType":     "For Sale",
		"beds":         "2",
		"baths":        "1",
		"square_feet":  "900",
		"actualPrice":  "320,000",
	}
	for field, value := range fields {
		if err := writer.WriteField(field, value); err != nil {
			t.Fatal(err)
		}
	}
	if withVideo {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="video"; filename=%q`, "tour.mp4"))
		header.Set("Content-Type", "video/mp4")
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte("mp4bytes")); err != nil {
			t.Fatal(err)
		}
	}
	writer.Close()
	return &buf, writer.FormDataContentType()
}

func TestUpdateFailureCleansUpUploadedVideo(t *testing.T) {
	owner := primitive.NewObjectID()
	propertyID := primitive.NewObjectID()

	properties := &fakePropertyStore{
		property: &models.Property{
			ID:       propertyID,
			Owner:    owner,
			VideoURL: "https://res.cloudinary.com/demo/video/upload/v1/property_previous.mp4",
		},
		replaceErr: errors.New("write failed"),
	}
	media := &fakeMediaStore{
		videoURL: "https://res.cloudinary.com/demo/video/upload/v1/property_fresh.mp4",
	}
	h := &PropertyHandler{Properties: properties, Media: media}

	app := updateTestApp(t, h, owner.Hex())
	body, contentType := listingUpdateBody(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/property/update/"+propertyID.Hex(), body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 (body %s)", rec.Code, rec.Body.String())
	}
	if !properties.replaced {
		t.Fatal("Replace never reached")
	}
	if !media.didDestroy("video", "property_fresh") {
		t.Errorf("video uploaded in this request was not cleaned up; destroyed: %v", media.destroyed)
	}
	if media.didDestroy("video", "property_previous") {
		t.Error("stored video must survive a failed write")
	}
}

func TestUpdateReplacesPreviousVideo(t *testing.T) {
	owner := primitive.NewObjectID()
	propertyID := primitive.NewObjectID()

	properties := &fakePropertyStore{
		property: &models.Property{
			ID:       propertyID,
			Owner:    owner,
			VideoURL: "https://res.cloudinary.com/demo/video/upload/v1/property_previous.mp4",
		},
	}
	media := &fakeMediaStore{
		videoURL: "https://res.cloudinary.com/demo/video/upload/v1/property_fresh.mp4",
	}
	h := &PropertyHandler{Properties: properties, Media: media}

	app := updateTestApp(t, h, owner.Hex())
	body, contentType := listingUpdateBody(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/property/update/"+propertyID.Hex(), body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if !media.didDestroy("video", "property_previous") {
		t.Errorf("replaced video was not cleaned up; destroyed: %v", media.destroyed)
	}
	if media.didDestroy("video", "property_fresh") {
		t.Error("newly uploaded video must survive a successful write")
	}
}
