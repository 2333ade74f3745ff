package assets

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/vanguardtable/vanguard/src/config"
	"github.com/vanguardtable/vanguard/src/logging"
	"github.com/vanguardtable/vanguard/src/oops"
	"github.com/vanguardtable/vanguard/src/utils"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeCloud Mode = "cloud"
)

// Storage persists normalized upload bytes behind one of two backends: the
// local filesystem or an S3-compatible blob store. The backend is chosen
// once at construction and never changes at runtime.
type Storage interface {
	// Save normalizes and persists an image. The result's Url is a reference
	// usable for later retrieval and deletion: either a local
	// `/uploads/<key>` path or a fully-qualified object URL.
	Save(ctx context.Context, in SaveInput) (*SaveResult, error)

	// Delete removes a previously saved image. Returns true if something
	// was deleted, false if the target did not exist or the delete failed;
	// it never returns an error.
	Delete(ctx context.Context, reference string) bool

	Mode() Mode
}

type SaveInput struct {
	Content     []byte
	Filename    string
	ContentType string

	// Optional params
	Subfolder string
	MaxWidth  int
	MaxHeight int
}

type SaveResult struct {
	Url string

	// The content type actually stored: "image/jpeg" after normalization,
	// or the input's own type when the bytes could not be decoded and were
	// stored verbatim.
	ContentType string
}

// Write-path failures wear this type so the request layer can tell them
// apart from validation problems.
type StorageFailure error

type InvalidAssetError error

// NewStorage picks the backend from config. A requested cloud backend that
// cannot be initialized degrades to local storage; local is the
// availability floor and its construction cannot fail.
func NewStorage() Storage {
	return NewStorageWithConfig(config.Config.Storage)
}

func NewStorageWithConfig(cfg config.StorageConfig) Storage {
	if cfg.UseCloud {
		s3Storage, err := newS3Storage(cfg)
		if err != nil {
			logging.Error().Err(err).Msg("failed to initialize cloud storage; falling back to local uploads")
		} else {
			return s3Storage
		}
	}

	return &localStorage{root: cfg.UploadRoot}
}

var REIllegalFilenameChars = regexp.MustCompile(`[^\w\-.]`)

func SanitizeFilename(filename string) string {
	if filename == "" {
		return "unnamed"
	}
	return REIllegalFilenameChars.ReplaceAllString(filename, "_")
}

// Generates the stored object key for an upload: a fresh uuid with the
// original file's extension (lower-cased), optionally under a subfolder.
func makeKey(in SaveInput) (string, error) {
	if len(in.Content) == 0 {
		return "", InvalidAssetError(fmt.Errorf("could not upload asset '%s': no bytes of data were provided", SanitizeFilename(in.Filename)))
	}

	ext := strings.ToLower(filepath.Ext(SanitizeFilename(in.Filename)))
	key := uuid.New().String() + ext
	if in.Subfolder != "" {
		key = in.Subfolder + "/" + key
	}
	return key, nil
}

// Normalization bounds, falling back to the configured maximums.
func maxDimensions(in SaveInput) (int, int) {
	return utils.OrDefault(in.MaxWidth, config.Config.Storage.MaxImageWidth),
		utils.OrDefault(in.MaxHeight, config.Config.Storage.MaxImageHeight)
}

// Runs image normalization for a save, degrading to the original bytes if
// the input cannot be decoded. Normalization failure must never fail an
// upload; plenty of valid use involves formats we cannot decode. Also
// reports the content type of the bytes that will actually be stored.
func normalizeForSave(in SaveInput) ([]byte, string) {
	maxW, maxH := maxDimensions(in)
	normalized, err := Normalize(in.Content, maxW, maxH)
	if err != nil {
		logging.Warn().Err(oops.New(err, "failed to normalize image '%s'", SanitizeFilename(in.Filename))).Msg("storing original upload bytes unmodified")
		return in.Content, utils.OrDefault(in.ContentType, "application/octet-stream")
	}
	return normalized, "image/jpeg"
}
