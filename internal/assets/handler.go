// Package assets uploads campaign images (backgrounds and game artwork) to object storage.
package assets

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promogame/backend/internal/middleware"
	"github.com/promogame/backend/pkg/response"
	"github.com/promogame/backend/pkg/storage"
)

// Kind is the use of an uploaded image.
type Kind string

const (
	KindBackground Kind = "background"
	KindGame       Kind = "game"
)

// Valid reports whether k is a known asset kind.
func (k Kind) Valid() bool { return k == KindBackground || k == KindGame }

var (
	ErrTooLarge    = errors.New("file size exceeds 5MB limit")
	ErrInvalidType = errors.New("invalid file type: only jpeg, png, webp, gif and svg images are allowed")
	ErrInvalidKind = errors.New("kind must be background or game")
)

// Uploader is the object store behind the handler; *storage.S3 implements it.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PublicURL(key string) string
	Delete(ctx context.Context, key string) error
}

// Asset describes a stored image.
type Asset struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Kind        Kind   `json:"kind"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size,omitempty"`
	Filename    string `json:"filename,omitempty"`
}

// UploadURLRequest is the body for POST /assets/upload-url.
type UploadURLRequest struct {
	Kind        Kind   `json:"kind" binding:"required"`
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size" binding:"required,gt=0"`
}

// UploadURLResponse carries a pre-signed PUT URL plus where the object will be served from.
type UploadURLResponse struct {
	UploadURL string `json:"upload_url"`
	Asset
}

// DeleteRequest is the body for DELETE /assets.
type DeleteRequest struct {
	Key string `json:"key" binding:"required"`
}

// Handler serves the asset endpoints.
type Handler struct {
	store  Uploader
	logger *zap.Logger
	newID  func() string
}

// NewHandler creates an asset handler. store may be nil when storage is not configured.
func NewHandler(store Uploader, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger, newID: func() string { return uuid.NewString() }}
}

// Check validates an upload and returns its content type and extension.
func Check(kind Kind, contentType, filename string, size int64) (string, string, error) {
	if !kind.Valid() {
		return "", "", ErrInvalidKind
	}
	if size > storage.MaxAssetSize {
		return "", "", ErrTooLarge
	}
	if !storage.ValidateImageType(contentType, filename) {
		return "", "", ErrInvalidType
	}
	ext := storage.ExtensionFor(contentType, filename)
	ct := storage.ContentTypeForFilename(filename)
	if _, ok := storage.AllowedImageTypes[strings.ToLower(contentType)]; ok {
		ct = strings.ToLower(contentType)
	}
	if ct == "image/jpg" {
		ct = "image/jpeg"
	}
	return ct, ext, nil
}

func (h *Handler) available(c *gin.Context) bool {
	if h.store == nil {
		response.ServiceUnavailable(c, "asset storage not configured")
		return false
	}
	return true
}

// Upload handles POST /assets (multipart form: file, kind).
func (h *Handler) Upload(c *gin.Context) {
	if !h.available(c) {
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file (form field: file)")
		return
	}
	kind := Kind(c.PostForm("kind"))
	if kind == "" {
		kind = KindBackground
	}
	contentType, ext, err := Check(kind, file.Header.Get("Content-Type"), file.Filename, file.Size)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	rc, err := file.Open()
	if err != nil {
		h.logger.Error("open uploaded file failed", zap.Error(err))
		response.Internal(c, "failed to read file")
		return
	}
	defer rc.Close()

	body := io.Reader(rc)
	if ext != ".svg" {
		head := make([]byte, 512)
		n, _ := io.ReadFull(rc, head)
		if !strings.HasPrefix(http.DetectContentType(head[:n]), "image/") {
			response.BadRequest(c, ErrInvalidType.Error())
			return
		}
		body = io.MultiReader(bytes.NewReader(head[:n]), rc)
	}

	key := storage.AssetKey(userID.String(), string(kind), h.newID(), ext)
	url, err := h.store.Upload(c.Request.Context(), key, contentType, body, file.Size)
	if err != nil {
		h.logger.Error("S3 upload failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to upload file to storage")
		return
	}
	h.logger.Info("asset uploaded", zap.String("user_id", userID.String()), zap.String("key", key))
	response.Created(c, Asset{
		Key:         key,
		URL:         url,
		Kind:        kind,
		ContentType: contentType,
		Size:        file.Size,
		Filename:    file.Filename,
	})
}

// UploadURL handles POST /assets/upload-url. The client PUTs the file to upload_url.
func (h *Handler) UploadURL(c *gin.Context) {
	if !h.available(c) {
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	contentType, ext, err := Check(req.Kind, req.ContentType, req.Filename, req.Size)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	key := storage.AssetKey(userID.String(), string(req.Kind), h.newID(), ext)
	uploadURL, err := h.store.PresignUpload(c.Request.Context(), key, contentType)
	if err != nil {
		h.logger.Error("presign upload failed", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to generate upload URL")
		return
	}
	response.OK(c, UploadURLResponse{
		UploadURL: uploadURL,
		Asset: Asset{
			Key:         key,
			URL:         h.store.PublicURL(key),
			Kind:        req.Kind,
			ContentType: contentType,
			Size:        req.Size,
			Filename:    req.Filename,
		},
	})
}

// Delete handles DELETE /assets. Only keys under the caller's own prefix can be removed.
func (h *Handler) Delete(c *gin.Context) {
	if !h.available(c) {
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !strings.HasPrefix(req.Key, storage.OwnerPrefix(userID.String())) || strings.Contains(req.Key, "..") {
		response.Forbidden(c, "asset belongs to another account")
		return
	}
	if err := h.store.Delete(c.Request.Context(), req.Key); err != nil {
		h.logger.Error("S3 delete failed", zap.Error(err), zap.String("key", req.Key))
		response.Internal(c, "failed to delete asset")
		return
	}
	response.NoContent(c)
}
