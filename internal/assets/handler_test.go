package assets

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/promogame/backend/internal/middleware"
	"github.com/promogame/backend/pkg/storage"
)

type fakeStore struct {
	objects map[string][]byte
	types   map[string]string
	fail    bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeStore) Upload(_ context.Context, key, contentType string, body io.Reader, _ int64) (string, error) {
	if f.fail {
		return "", errors.New("boom")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.objects[key], f.types[key] = data, contentType
	return f.PublicURL(key), nil
}

func (f *fakeStore) PresignUpload(_ context.Context, key, _ string) (string, error) {
	return "https://signed.example/" + key, nil
}

func (f *fakeStore) PublicURL(key string) string { return "https://cdn.example/" + key }

func (f *fakeStore) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

// 1x1 transparent PNG.
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

func newRouter(t *testing.T, store Uploader, user uuid.UUID) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, zap.NewNop())
	h.newID = func() string { return "fixed" }
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ContextUserID, user); c.Next() })
	r.POST("/assets", h.Upload)
	r.POST("/assets/upload-url", h.UploadURL)
	r.DELETE("/assets", h.Delete)
	return r
}

func multipartUpload(t *testing.T, filename, contentType, kind string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	if kind != "" {
		require.NoError(t, mw.WriteField("kind", kind))
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/assets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheck(t *testing.T) {
	ct, ext, err := Check(KindGame, "image/jpg", "card.JPG", 100)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ct)
	assert.Equal(t, ".jpg", ext)

	_, _, err = Check(KindBackground, "image/png", "a.png", storage.MaxAssetSize+1)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, _, err = Check(KindBackground, "application/pdf", "a.pdf", 10)
	assert.ErrorIs(t, err, ErrInvalidType)

	_, _, err = Check("avatar", "image/png", "a.png", 10)
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestUploadStoresUnderOwnerPrefix(t *testing.T) {
	user := uuid.New()
	store := newFakeStore()
	r := newRouter(t, store, user)

	w := serve(r, multipartUpload(t, "bg.png", "image/png", "background", pngBytes))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env envelope[Asset]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	wantKey := "campaigns/" + user.String() + "/background/fixed.png"
	assert.Equal(t, wantKey, env.Data.Key)
	assert.Equal(t, "https://cdn.example/"+wantKey, env.Data.URL)
	assert.Equal(t, pngBytes, store.objects[wantKey])
	assert.Equal(t, "image/png", store.types[wantKey])
}

func TestUploadRejectsSpoofedImage(t *testing.T) {
	r := newRouter(t, newFakeStore(), uuid.New())
	w := serve(r, multipartUpload(t, "bg.png", "image/png", "background", []byte("just some text")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadSVG(t *testing.T) {
	store := newFakeStore()
	r := newRouter(t, store, uuid.New())
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)
	w := serve(r, multipartUpload(t, "logo.svg", "image/svg+xml", "game", svg))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, store.objects, 1)
}

func TestUploadRejectsOversized(t *testing.T) {
	r := newRouter(t, newFakeStore(), uuid.New())
	big := append(append([]byte{}, pngBytes...), make([]byte, storage.MaxAssetSize)...)
	w := serve(r, multipartUpload(t, "bg.png", "image/png", "background", big))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadStorageFailure(t *testing.T) {
	store := newFakeStore()
	store.fail = true
	r := newRouter(t, store, uuid.New())
	w := serve(r, multipartUpload(t, "bg.png", "image/png", "background", pngBytes))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestUploadWithoutStorage(t *testing.T) {
	r := newRouter(t, nil, uuid.New())
	w := serve(r, multipartUpload(t, "bg.png", "image/png", "background", pngBytes))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUploadURL(t *testing.T) {
	user := uuid.New()
	r := newRouter(t, newFakeStore(), user)
	body, _ := json.Marshal(UploadURLRequest{Kind: KindGame, Filename: "card.webp", ContentType: "image/webp", Size: 2048})
	req := httptest.NewRequest(http.MethodPost, "/assets/upload-url", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env envelope[UploadURLResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "campaigns/"+user.String()+"/game/fixed.webp", env.Data.Key)
	assert.Contains(t, env.Data.UploadURL, "https://signed.example/")
}

func TestDeleteOwnAssetOnly(t *testing.T) {
	user := uuid.New()
	store := newFakeStore()
	own := "campaigns/" + user.String() + "/game/a.png"
	other := "campaigns/" + uuid.NewString() + "/game/b.png"
	store.objects[own], store.objects[other] = pngBytes, pngBytes
	r := newRouter(t, store, user)

	del := func(key string) int {
		body, _ := json.Marshal(DeleteRequest{Key: key})
		req := httptest.NewRequest(http.MethodDelete, "/assets", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return serve(r, req).Code
	}
	assert.Equal(t, http.StatusForbidden, del(other))
	assert.Equal(t, http.StatusNoContent, del(own))
	assert.NotContains(t, store.objects, own)
	assert.Contains(t, store.objects, other)
}
