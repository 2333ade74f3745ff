package bestiary

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/vanguardtable/vanguard/src/logging"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// FilenameToKey derives a lookup key from an image filename. Underscores
// become spaces and the extension is dropped: "Fire_Giant.jpg" -> "fire giant".
// Matching correctness depends entirely on this transform, so keep it in sync
// with KeyToFilename.
func FilenameToKey(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	return strings.ToLower(strings.ReplaceAll(stem, "_", " "))
}

// KeyToFilename is the reverse of FilenameToKey, minus the extension:
// "fire giant" -> "fire_giant". Dashes are folded into underscores as well so
// uploads named "fire-giant" land on the same key.
func KeyToFilename(key string) string {
	clean := strings.ToLower(strings.TrimSpace(key))
	clean = strings.ReplaceAll(clean, " ", "_")
	clean = strings.ReplaceAll(clean, "-", "_")
	return clean
}

// ScanLocalImages walks the configured image directory (non-recursively) and
// returns a mapping of creature keys to serving paths. The scan runs on every
// resolution so the index always reflects current directory contents. A
// missing directory is not an error; it just yields an empty index.
func ScanLocalImages(dir string) map[string]string {
	local := map[string]string{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn().Err(err).Str("dir", dir).Msg("failed to scan local creature images")
		}
		return local
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !isImageExtension(ext) {
			continue
		}
		local[FilenameToKey(entry.Name())] = "/database_images/" + entry.Name()
	}

	return local
}

func isImageExtension(ext string) bool {
	for _, e := range imageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
