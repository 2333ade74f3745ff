package assets

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanguardtable/vanguard/src/logging"
	"github.com/vanguardtable/vanguard/src/oops"
)

const localReferencePrefix = "/uploads/"

// localStorage writes uploads under a root directory on the local
// filesystem. References look like `/uploads/<subfolder>/<uuid>.<ext>` and
// are expected to be served by the uploads route.
type localStorage struct {
	root string
}

var _ Storage = &localStorage{}

func (s *localStorage) Mode() Mode {
	return ModeLocal
}

func (s *localStorage) Save(ctx context.Context, in SaveInput) (*SaveResult, error) {
	key, err := makeKey(in)
	if err != nil {
		return nil, err
	}

	content, contentType := normalizeForSave(in)

	path := filepath.Join(s.root, filepath.FromSlash(key))
	err = os.MkdirAll(filepath.Dir(path), os.ModePerm)
	if err != nil {
		return nil, StorageFailure(oops.New(err, "failed to create upload directory"))
	}

	err = os.WriteFile(path, content, 0644)
	if err != nil {
		return nil, StorageFailure(oops.New(err, "failed to write upload to disk"))
	}

	return &SaveResult{
		Url:         localReferencePrefix + key,
		ContentType: contentType,
	}, nil
}

func (s *localStorage) Delete(ctx context.Context, reference string) bool {
	key := strings.TrimPrefix(reference, localReferencePrefix)
	if key == "" || strings.Contains(key, "..") {
		return false
	}

	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.Warn().Err(err).Str("reference", reference).Msg("failed to delete local upload")
		}
		return false
	}

	return true
}
