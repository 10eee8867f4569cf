package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateImageType(t *testing.T) {
	assert.True(t, ValidateImageType("image/png", "x.bin"))
	assert.True(t, ValidateImageType("", "logo.SVG"))
	assert.True(t, ValidateImageType("application/octet-stream", "photo.jpeg"))
	assert.False(t, ValidateImageType("video/mp4", "clip.mp4"))
	assert.False(t, ValidateImageType("", "notes.txt"))
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".png", ExtensionFor("image/jpeg", "a.PNG"))
	assert.Equal(t, ".webp", ExtensionFor("image/webp", "blob"))
	assert.Equal(t, "", ExtensionFor("text/plain", "blob"))
}

func TestAssetKey(t *testing.T) {
	key := AssetKey("u1", "background", "abc", ".png")
	assert.Equal(t, "campaigns/u1/background/abc.png", key)
	assert.True(t, len(key) > len(OwnerPrefix("u1")))
	assert.Equal(t, "campaigns/u1/", OwnerPrefix("u1"))
}

func TestPublicURL(t *testing.T) {
	s := &S3{cfg: S3Config{Region: "eu-west-3", Bucket: "b"}}
	assert.Equal(t, "https://b.s3.eu-west-3.amazonaws.com/k.png", s.PublicURL("k.png"))

	s = &S3{cfg: S3Config{Bucket: "b", Endpoint: "http://localhost:9000/"}}
	assert.Equal(t, "http://localhost:9000/b/k.png", s.PublicURL("k.png"))
}
