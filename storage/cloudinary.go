package storage

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"
)

// Asset size and format allowlists enforced before anything leaves the
// process.
const (
	MaxImageSize = 5 << 20  // 5MB
	MaxVideoSize = 50 << 20 // 50MB

	// One unresponsive asset call must never stall a whole mutation.
	mediaCallTimeout = 15 * time.Second
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var allowedVideoTypes = map[string]bool{
	"video/mp4":        true,
	"video/quicktime":  true, // .mov
	"video/x-msvideo":  true, // .avi
	"video/x-matroska": true, // .mkv
}

// MediaStore talks to the Cloudinary REST API with signed requests.
// Credentials come from CLOUDINARY_CLOUD_NAME / CLOUDINARY_API_KEY /
// CLOUDINARY_API_SECRET; CLOUDINARY_FOLDER optionally prefixes every public
// ID.
type MediaStore struct {
	cloudName string
	apiKey    string
	apiSecret string
	folder    string
	baseURL   string
	client    *http.Client
}

func NewMediaStore() *MediaStore {
	return &MediaStore{
		cloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		apiKey:    os.Getenv("CLOUDINARY_API_KEY"),
		apiSecret: os.Getenv("CLOUDINARY_API_SECRET"),
		folder:    os.Getenv("CLOUDINARY_FOLDER"),
		baseURL:   "https://api.cloudinary.com/v1_1",
		client:    &http.Client{Timeout: mediaCallTimeout},
	}
}

func ValidateImageFile(fh *multipart.FileHeader) error {
	if fh.Size > MaxImageSize {
		return fmt.Errorf("image %s exceeds 5MB limit", fh.Filename)
	}
	contentType := fh.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		return fmt.Errorf("invalid image format for %s; allowed: JPEG, PNG, WebP", fh.Filename)
	}
	return nil
}

func ValidateVideoFile(fh *multipart.FileHeader) error {
	if fh.Size > MaxVideoSize {
		return fmt.Errorf("video %s exceeds 50MB limit", fh.Filename)
	}
	contentType := fh.Header.Get("Content-Type")
	if !allowedVideoTypes[contentType] {
		return fmt.Errorf("invalid video format for %s; allowed: MP4, MOV, AVI, MKV", fh.Filename)
	}
	return nil
}

func (m *MediaStore) UploadImage(ctx context.Context, fh *multipart.FileHeader, publicID string) (string, error) {
	if err := ValidateImageFile(fh); err != nil {
		return "", err
	}
	return m.upload(ctx, fh, "image", publicID)
}

func (m *MediaStore) UploadVideo(ctx context.Context, fh *multipart.FileHeader, publicID string) (string, error) {
	if err := ValidateVideoFile(fh); err != nil {
		return "", err
	}
	return m.upload(ctx, fh, "video", publicID)
}

func (m *MediaStore) upload(ctx context.Context, fh *multipart.FileHeader, resourceType, publicID string) (string, error) {
	if m.cloudName == "" || m.apiKey == "" || m.apiSecret == "" {
		return "", fmt.Errorf("cloudinary credentials not configured")
	}

	file, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	finalPublicID := publicID
	if m.folder != "" {
		finalPublicID = m.folder + "/" + publicID
	}
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	body := &strings.Builder{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", fh.Filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	writer.WriteField("api_key", m.apiKey)
	writer.WriteField("public_id", finalPublicID)
	writer.WriteField("timestamp", timestamp)
	writer.WriteField("signature", m.sign(finalPublicID, timestamp))
	if err := writer.Close(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, mediaCallTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/%s/%s/upload", m.baseURL, m.cloudName, resourceType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body.String()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	res, err := m.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	var uploadRes struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resBody, &uploadRes); err != nil {
		return "", fmt.Errorf("unexpected upload response: %w", err)
	}
	if uploadRes.Error.Message != "" {
		return "", fmt.Errorf("upload failed: %s", uploadRes.Error.Message)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload failed with status %d", res.StatusCode)
	}

	assetURL := uploadRes.SecureURL
	if assetURL == "" {
		assetURL = uploadRes.URL
	}
	if assetURL == "" {
		return "", fmt.Errorf("no URL returned for %s", fh.Filename)
	}
	return assetURL, nil
}

// Destroy removes an asset by public ID. Deletions are idempotent on the
// remote end; "not found" results are treated as success.
func (m *MediaStore) Destroy(ctx context.Context, publicID, resourceType string) error {
	if m.cloudName == "" || m.apiKey == "" || m.apiSecret == "" {
		return fmt.Errorf("cloudinary credentials not configured")
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	form := url.Values{}
	form.Add("public_id", publicID)
	form.Add("api_key", m.apiKey)
	form.Add("timestamp", timestamp)
	form.Add("signature", m.sign(publicID, timestamp))

	ctx, cancel := context.WithTimeout(ctx, mediaCallTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/%s/%s/destroy", m.baseURL, m.cloudName, resourceType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("destroy failed with status %d", res.StatusCode)
	}

	var destroyRes struct {
		Result string `json:"result"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resBody, &destroyRes); err != nil {
		return fmt.Errorf("unexpected destroy response: %w", err)
	}
	if destroyRes.Error.Message != "" {
		return fmt.Errorf("destroy failed: %s", destroyRes.Error.Message)
	}
	if destroyRes.Result != "ok" && destroyRes.Result != "not found" {
		return fmt.Errorf("destroy result not ok: %s", destroyRes.Result)
	}
	return nil
}

func (m *MediaStore) sign(publicID, timestamp string) string {
	payload := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, m.apiSecret)
	return fmt.Sprintf("%x", sha1.Sum([]byte(payload)))
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// PublicIDFromURL derives the public ID the host knows an asset by: the path
// segments after the "upload" marker, minus the version segment and the file
// extension, folder prefix preserved. Returns "" for URLs that do not look
// like delivery URLs.
func PublicIDFromURL(assetURL string) string {
	parsed, err := url.Parse(assetURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")

	uploadIdx := -1
	for i, segment := range segments {
		if segment == "upload" {
			uploadIdx = i
			break
		}
	}
	if uploadIdx == -1 || uploadIdx == len(segments)-1 {
		return ""
	}

	rest := segments[uploadIdx+1:]
	if versionSegment.MatchString(rest[0]) {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return ""
	}

	last := rest[len(rest)-1]
	if dot := strings.LastIndex(last, "."); dot > 0 {
		rest[len(rest)-1] = last[:dot]
	}
	return strings.Join(rest, "/")
}
