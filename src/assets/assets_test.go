package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vanguardtable/vanguard/src/config"
	"github.com/vanguardtable/vanguard/src/utils"
)

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "cool_filename.txt.wow", SanitizeFilename("cool filename.txt.wow"))
	assert.Equal(t, "newlines_aretotallylegal", SanitizeFilename("newlines\naretotallylegal"))
	assert.Equal(t, "unnamed", SanitizeFilename(""))
}

func TestMakeKey(t *testing.T) {
	t.Run("extension is kept and lowered", func(t *testing.T) {
		key, err := makeKey(SaveInput{Content: []byte("x"), Filename: "Portrait.PNG"})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(key, ".png"))
	})

	t.Run("subfolder prefixes the key", func(t *testing.T) {
		key, err := makeKey(SaveInput{Content: []byte("x"), Filename: "a.jpg", Subfolder: "creatures"})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(key, "creatures/"))
	})

	t.Run("keys are unique", func(t *testing.T) {
		in := SaveInput{Content: []byte("x"), Filename: "a.jpg"}
		k1 := utils.Must1(makeKey(in))
		k2 := utils.Must1(makeKey(in))
		assert.NotEqual(t, k1, k2)
	})

	t.Run("empty content is rejected", func(t *testing.T) {
		_, err := makeKey(SaveInput{Filename: "a.jpg"})
		assert.Error(t, err)
	})
}

// A width x height PNG with a transparent background and one opaque pixel,
// guaranteeing the alpha path in Normalize gets exercised.
func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalize(t *testing.T) {
	t.Run("oversized images are scaled to fit", func(t *testing.T) {
		out, err := Normalize(testPNG(t, 400, 100), 100, 100)
		require.NoError(t, err)

		decoded, err := jpeg.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.LessOrEqual(t, decoded.Bounds().Dx(), 100)
		assert.LessOrEqual(t, decoded.Bounds().Dy(), 100)
	})

	t.Run("small images keep their dimensions", func(t *testing.T) {
		out, err := Normalize(testPNG(t, 40, 30), 100, 100)
		require.NoError(t, err)

		decoded, err := jpeg.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 40, decoded.Bounds().Dx())
		assert.Equal(t, 30, decoded.Bounds().Dy())
	})

	t.Run("output is always jpeg", func(t *testing.T) {
		out, err := Normalize(testPNG(t, 10, 10), 100, 100)
		require.NoError(t, err)

		_, format, err := image.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
	})

	t.Run("undecodable bytes fail", func(t *testing.T) {
		_, err := Normalize([]byte("definitely not an image"), 100, 100)
		assert.Error(t, err)
	})
}

func TestLocalStorage(t *testing.T) {
	storage := &localStorage{root: t.TempDir()}
	ctx := context.Background()

	t.Run("save and delete round trip", func(t *testing.T) {
		saved, err := storage.Save(ctx, SaveInput{
			Content:   testPNG(t, 10, 10),
			Filename:  "goblin.png",
			MaxWidth:  100,
			MaxHeight: 100,
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(saved.Url, localReferencePrefix))
		assert.Equal(t, "image/jpeg", saved.ContentType)

		onDisk := filepath.Join(storage.root, strings.TrimPrefix(saved.Url, localReferencePrefix))
		contents := utils.Must1(os.ReadFile(onDisk))
		_, err = jpeg.Decode(bytes.NewReader(contents))
		assert.NoError(t, err, "saved bytes should be normalized to jpeg")

		assert.True(t, storage.Delete(ctx, saved.Url))
		assert.False(t, storage.Delete(ctx, saved.Url), "second delete finds nothing")
	})

	t.Run("subfolders are created on demand", func(t *testing.T) {
		saved, err := storage.Save(ctx, SaveInput{
			Content:   testPNG(t, 10, 10),
			Filename:  "hero.png",
			Subfolder: "creatures",
			MaxWidth:  100,
			MaxHeight: 100,
		})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(saved.Url, localReferencePrefix+"creatures/"))
	})

	t.Run("undecodable uploads are stored verbatim", func(t *testing.T) {
		original := []byte("mystery bytes")
		saved, err := storage.Save(ctx, SaveInput{
			Content:     original,
			Filename:    "mystery.bin",
			ContentType: "application/octet-stream",
			MaxWidth:    100,
			MaxHeight:   100,
		})
		require.NoError(t, err)
		assert.Equal(t, "application/octet-stream", saved.ContentType,
			"stored content type should not claim jpeg when normalization fell back")

		onDisk := filepath.Join(storage.root, strings.TrimPrefix(saved.Url, localReferencePrefix))
		assert.Equal(t, original, utils.Must1(os.ReadFile(onDisk)))
	})

	t.Run("path traversal is refused", func(t *testing.T) {
		assert.False(t, storage.Delete(ctx, localReferencePrefix+"../../../etc/passwd"))
		assert.False(t, storage.Delete(ctx, "/somewhere/else/entirely.jpg"))
	})
}

func TestNewStorageWithConfig(t *testing.T) {
	t.Run("local mode", func(t *testing.T) {
		storage := NewStorageWithConfig(config.StorageConfig{UploadRoot: t.TempDir()})
		assert.Equal(t, ModeLocal, storage.Mode())
	})

	t.Run("cloud without credentials falls back to local", func(t *testing.T) {
		storage := NewStorageWithConfig(config.StorageConfig{
			UseCloud:   true,
			UploadRoot: t.TempDir(),
		})
		assert.Equal(t, ModeLocal, storage.Mode())
	})
}

func TestKeyFromReference(t *testing.T) {
	s := &s3Storage{bucket: "creature-images"}
	assert.Equal(t, "creatures/abc.jpg", s.keyFromReference("https://nyc3.digitaloceanspaces.com/creature-images/creatures/abc.jpg"))
	assert.Equal(t, "", s.keyFromReference("/uploads/abc.jpg"))
}
