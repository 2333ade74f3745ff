package bestiary

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vanguardtable/vanguard/src/utils"
)

func newTestResolver(t *testing.T, table map[string]string) *Resolver {
	t.Helper()
	// An empty dir so the local index stays out of the way unless a test
	// drops files into it.
	return NewResolver(NewMemStore(table), t.TempDir())
}

func TestResolve(t *testing.T) {
	resolver := newTestResolver(t, map[string]string{
		"dragon":      "/database_images/dragon.jpg",
		"goblin":      "/database_images/goblin.jpg",
		"ice troll":   "/database_images/ice_troll.jpg",
		"fire giant":  "/database_images/fire_giant.jpg",
		"giant crab":  "/database_images/giant_crab.jpg",
		"owlbear cub": "/database_images/owlbear_cub.jpg",
	})

	t.Run("explicit url wins regardless of name", func(t *testing.T) {
		res := resolver.Resolve("dragon", "https://example.com/my-dragon.png")
		assert.Equal(t, "https://example.com/my-dragon.png", res.Reference)
		assert.Equal(t, SourceUser, res.Source)
		assert.True(t, res.Matched)

		res = resolver.Resolve("", "https://example.com/anything.png")
		assert.Equal(t, SourceUser, res.Source)
		assert.True(t, res.Matched)
	})

	t.Run("exact match", func(t *testing.T) {
		res := resolver.Resolve("Dragon", "")
		assert.Equal(t, "/database_images/dragon.jpg", res.Reference)
		assert.Equal(t, SourceDatabase, res.Source)
		assert.True(t, res.Matched)
	})

	t.Run("exact match trims and lowers", func(t *testing.T) {
		res := resolver.Resolve("  ICE TROLL  ", "")
		assert.Equal(t, "/database_images/ice_troll.jpg", res.Reference)
		assert.True(t, res.Matched)
	})

	t.Run("forward partial match", func(t *testing.T) {
		// "ancient dragon wyrmling" has no exact entry; "dragon" is a
		// substring of the "dragon" key.
		res := resolver.Resolve("ancient dragon wyrmling", "")
		assert.Equal(t, "/database_images/dragon.jpg", res.Reference)
		assert.True(t, res.Matched)
	})

	t.Run("forward partial exhausts first word before second", func(t *testing.T) {
		// "giant" hits "fire giant" before "crab" is ever tried; keys are
		// scanned in sorted order so "fire giant" beats "giant crab".
		res := resolver.Resolve("giant crab monster", "")
		assert.Equal(t, "/database_images/fire_giant.jpg", res.Reference)
		assert.True(t, res.Matched)
	})

	t.Run("short words are skipped", func(t *testing.T) {
		res := resolver.Resolve("an ox", "")
		assert.False(t, res.Matched)
		assert.Equal(t, SourceDefault, res.Source)
	})

	t.Run("reverse partial match", func(t *testing.T) {
		// No word of "owlbear" appears as a key-substring the forward way
		// ("owlbearish" is not a word of any key), but the key word
		// "owlbear" is contained in the name.
		res := resolver.Resolve("owlbearish", "")
		assert.Equal(t, "/database_images/owlbear_cub.jpg", res.Reference)
		assert.True(t, res.Matched)
	})

	t.Run("fallback for unknown names", func(t *testing.T) {
		res := resolver.Resolve("completely_unknown_xyz", "")
		assert.Equal(t, DefaultImageUrl, res.Reference)
		assert.Equal(t, SourceDefault, res.Source)
		assert.False(t, res.Matched)
	})

	t.Run("empty name falls back", func(t *testing.T) {
		res := resolver.Resolve("", "")
		assert.False(t, res.Matched)
		assert.Equal(t, SourceDefault, res.Source)
	})
}

func TestResolveLocalOverride(t *testing.T) {
	dir := t.TempDir()
	utils.Must(os.WriteFile(filepath.Join(dir, "dragon.png"), []byte("not a real png"), 0644))
	utils.Must(os.WriteFile(filepath.Join(dir, "Swamp_Hag.jpg"), []byte("not a real jpg"), 0644))
	utils.Must(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an image"), 0644))

	resolver := NewResolver(NewMemStore(map[string]string{
		"dragon": "/database_images/dragon.jpg",
	}), dir)

	t.Run("local index wins on key collision", func(t *testing.T) {
		res := resolver.Resolve("dragon", "")
		assert.Equal(t, "/database_images/dragon.png", res.Reference)
		assert.Equal(t, SourceLocal, res.Source)
		assert.True(t, res.Matched)
	})

	t.Run("filename-derived keys", func(t *testing.T) {
		res := resolver.Resolve("swamp hag", "")
		assert.Equal(t, "/database_images/Swamp_Hag.jpg", res.Reference)
		assert.Equal(t, SourceLocal, res.Source)
	})

	t.Run("non-image files are ignored", func(t *testing.T) {
		res := resolver.Resolve("notes", "")
		assert.False(t, res.Matched)
	})

	t.Run("scan reflects current directory contents", func(t *testing.T) {
		utils.Must(os.WriteFile(filepath.Join(dir, "mind_flayer.webp"), []byte("img"), 0644))
		res := resolver.Resolve("mind flayer", "")
		assert.Equal(t, SourceLocal, res.Source)

		utils.Must(os.Remove(filepath.Join(dir, "mind_flayer.webp")))
		res = resolver.Resolve("mind flayer", "")
		assert.False(t, res.Matched)
	})
}

func TestAddRemoveEntry(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		resolver := newTestResolver(t, map[string]string{})
		require.NoError(t, resolver.AddEntry("Fire Drake", "/x.jpg"))

		res := resolver.Resolve("fire drake", "")
		assert.Equal(t, "/x.jpg", res.Reference)
		assert.True(t, res.Matched)
	})

	t.Run("remove missing entry", func(t *testing.T) {
		resolver := newTestResolver(t, map[string]string{})
		err := resolver.RemoveEntry("nonexistent")
		assert.ErrorIs(t, err, NotFound)
	})

	t.Run("removed entries stop matching exactly", func(t *testing.T) {
		resolver := newTestResolver(t, map[string]string{
			"lich": "/database_images/lich.jpg",
		})
		require.NoError(t, resolver.RemoveEntry("Lich"))

		res := resolver.Resolve("lich", "")
		assert.NotEqual(t, "/database_images/lich.jpg", res.Reference)
		assert.False(t, res.Matched)
	})

	t.Run("persistence failure surfaces", func(t *testing.T) {
		store := NewMemStore(map[string]string{"wolf": "/w.jpg"})
		resolver := NewResolver(store, t.TempDir())
		store.SaveErr = errors.New("disk full")

		assert.Error(t, resolver.AddEntry("dire wolf", "/dw.jpg"))
		assert.Error(t, resolver.RemoveEntry("wolf"))
	})
}

func TestListAll(t *testing.T) {
	dir := t.TempDir()
	utils.Must(os.WriteFile(filepath.Join(dir, "basilisk.jpg"), []byte("img"), 0644))

	resolver := NewResolver(NewMemStore(map[string]string{
		"zombie": "/database_images/zombie.jpg",
		"ghoul":  "/database_images/ghoul.jpg",
	}), dir)

	entries := resolver.ListAll()
	require.Len(t, entries, 3)
	assert.Equal(t, "basilisk", entries[0].Name)
	assert.Equal(t, SourceLocal, entries[0].Source)
	assert.Equal(t, "ghoul", entries[1].Name)
	assert.Equal(t, SourceDatabase, entries[1].Source)
	assert.Equal(t, "zombie", entries[2].Name)
}

func TestSearch(t *testing.T) {
	resolver := newTestResolver(t, map[string]string{
		"goblin":        "/g1.jpg",
		"goblin boss":   "/g2.jpg",
		"goblin shaman": "/g3.jpg",
		"ogre":          "/o.jpg",
	})

	t.Run("limit is respected", func(t *testing.T) {
		results := resolver.Search("gob", 1)
		require.Len(t, results, 1)
		assert.Equal(t, "goblin", results[0].Name)
	})

	t.Run("case insensitive", func(t *testing.T) {
		results := resolver.Search("GOB", 10)
		assert.Len(t, results, 3)
	})

	t.Run("no matches", func(t *testing.T) {
		assert.Empty(t, resolver.Search("tarrasque", 10))
	})
}

func TestFileStore(t *testing.T) {
	t.Run("missing file loads as empty", func(t *testing.T) {
		store := &FileStore{Path: filepath.Join(t.TempDir(), "creatures.json")}
		table, err := store.Load()
		require.NoError(t, err)
		assert.Empty(t, table)
	})

	t.Run("corrupt file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "creatures.json")
		utils.Must(os.WriteFile(path, []byte("{{{{ not json"), 0644))

		store := &FileStore{Path: path}
		_, err := store.Load()
		assert.Error(t, err)
	})

	t.Run("save and reload", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "creatures.json")
		store := &FileStore{Path: path}

		require.NoError(t, store.Save(map[string]string{"wyvern": "/w.jpg"}))
		table, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"wyvern": "/w.jpg"}, table)

		// Pretty-printed on disk
		contents := utils.Must1(os.ReadFile(path))
		assert.Contains(t, string(contents), "\n  \"wyvern\"")
	})
}

func TestSeedIfEmpty(t *testing.T) {
	store := &FileStore{Path: filepath.Join(t.TempDir(), "creatures.json")}
	resolver := NewResolver(store, t.TempDir())

	res := resolver.Resolve("Dragon", "")
	assert.Equal(t, "/database_images/dragon.jpg", res.Reference)
	assert.Equal(t, SourceDatabase, res.Source)
	assert.True(t, res.Matched)

	// Seeding only happens when the table is empty
	require.NoError(t, resolver.RemoveEntry("dragon"))
	again := NewResolver(store, t.TempDir())
	assert.False(t, again.Resolve("dragon", "").Matched)
}

func TestSeedSkipsCorruptTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creatures.json")
	corrupt := []byte("{{{{ not json")
	utils.Must(os.WriteFile(path, corrupt, 0644))

	resolver := NewResolver(&FileStore{Path: path}, t.TempDir())

	// The bad file stays on disk for inspection instead of being replaced
	// with the seed table.
	assert.Equal(t, corrupt, utils.Must1(os.ReadFile(path)))

	res := resolver.Resolve("dragon", "")
	assert.False(t, res.Matched)
	assert.Equal(t, SourceDefault, res.Source)
}

func TestResolverDegradesOnLoadFailure(t *testing.T) {
	dir := t.TempDir()
	utils.Must(os.WriteFile(filepath.Join(dir, "basilisk.jpg"), []byte("img"), 0644))

	store := NewMemStore(map[string]string{
		"dragon": "/database_images/dragon.jpg",
	})
	resolver := NewResolver(store, dir)
	store.LoadErr = errors.New("backend offline")

	t.Run("resolve falls back instead of failing", func(t *testing.T) {
		res := resolver.Resolve("dragon", "")
		assert.False(t, res.Matched)
		assert.Equal(t, SourceDefault, res.Source)
		assert.Equal(t, DefaultImageUrl, res.Reference)
	})

	t.Run("local index keeps working", func(t *testing.T) {
		res := resolver.Resolve("basilisk", "")
		assert.True(t, res.Matched)
		assert.Equal(t, SourceLocal, res.Source)
	})

	t.Run("listing drops database entries", func(t *testing.T) {
		entries := resolver.ListAll()
		require.Len(t, entries, 1)
		assert.Equal(t, "basilisk", entries[0].Name)
		assert.Equal(t, SourceLocal, entries[0].Source)
	})

	t.Run("search finds nothing from the table", func(t *testing.T) {
		assert.Empty(t, resolver.Search("dragon", 10))
	})
}

// A Store whose Load panics, for exercising the recovery path in Resolve.
type explodingStore struct{}

func (explodingStore) Load() (map[string]string, error) {
	panic("lookup table backend exploded")
}

func (explodingStore) Save(map[string]string) error { return nil }

func TestResolveRecoversFromPanic(t *testing.T) {
	// Constructed directly; NewResolver would hit the store before Resolve's
	// recovery is in place.
	resolver := &Resolver{store: explodingStore{}, imageDir: t.TempDir()}

	res := resolver.Resolve("dragon", "")
	assert.Equal(t, ErrorImageUrl, res.Reference)
	assert.Equal(t, SourceError, res.Source)
	assert.False(t, res.Matched)
	assert.Error(t, res.Err)
}

func TestFilenameKeyTransforms(t *testing.T) {
	assert.Equal(t, "fire giant", FilenameToKey("Fire_Giant.jpg"))
	assert.Equal(t, "dragon", FilenameToKey("dragon.png"))
	assert.Equal(t, "giant rat", FilenameToKey("giant_rat.webp"))

	assert.Equal(t, "fire_giant", KeyToFilename("Fire Giant"))
	assert.Equal(t, "fire_giant", KeyToFilename("fire-giant"))
	assert.Equal(t, "dragon", KeyToFilename("  dragon  "))
}
