package bestiary

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/vanguardtable/vanguard/src/logging"
	"github.com/vanguardtable/vanguard/src/utils"
)

// Placeholder references returned when no creature image can be found, or
// when resolution itself blew up.
const (
	DefaultImageUrl = "https://via.placeholder.com/400x400/cccccc/666666?text=No+Image"
	ErrorImageUrl   = "https://via.placeholder.com/400x400/ff0000/ffffff?text=Error"
)

// Returned by RemoveEntry when the named creature is not in the lookup table.
var NotFound = errors.New("creature not found")

type Source string

const (
	SourceUser     Source = "user"     // caller supplied an explicit image
	SourceLocal    Source = "local"    // matched a file in the local image directory
	SourceDatabase Source = "database" // matched an entry in the lookup table
	SourceDefault  Source = "default"  // no match; placeholder returned
	SourceError    Source = "error"    // resolution failed; placeholder returned
)

// The outcome of resolving a creature name. Resolution never carries a
// failure to the caller - even the error case yields a usable Reference -
// but Err lets tests and logs distinguish "no match" from "something broke".
type Resolution struct {
	Reference string
	Source    Source
	Matched   bool
	Err       error
}

type Entry struct {
	Name      string `json:"name"`
	Reference string `json:"image_url"`
	Source    Source `json:"source"`
}

// A Resolver maps free-text creature names to portrait images, merging a
// persisted lookup table with whatever images are sitting in the local image
// directory. Local files win on key collisions.
type Resolver struct {
	store    Store
	imageDir string
}

func NewResolver(store Store, imageDir string) *Resolver {
	r := &Resolver{
		store:    store,
		imageDir: imageDir,
	}
	r.seedIfEmpty()
	return r
}

// The starter set for fresh installs. Anything beyond this arrives through
// AddEntry or the local image directory.
func defaultTable() map[string]string {
	return map[string]string{
		"dragon":   "/database_images/dragon.jpg",
		"goblin":   "/database_images/goblin.jpg",
		"orc":      "/database_images/orc.jpg",
		"skeleton": "/database_images/skeleton.jpg",
		"troll":    "/database_images/troll.jpg",
		"zombie":   "/database_images/zombie.jpg",
	}
}

func (r *Resolver) seedIfEmpty() {
	table, err := r.store.Load()
	if err != nil || len(table) > 0 {
		return
	}
	err = r.store.Save(defaultTable())
	if err != nil {
		logging.Warn().Err(err).Msg("failed to seed creature lookup table")
	}
}

/*
Resolve finds the best image for a creature name. It never fails: any
internal error degrades to the error placeholder, and an unmatched name
yields the default placeholder. Priority order:

 1. explicitUrl, verbatim, if non-empty
 2. exact match on the lower-cased, trimmed name
 3. forward partial match: each word of the name (longer than 2 characters)
    against all table keys, exhausting one word before trying the next
 4. reverse partial match: each word of each table key (longer than 2
    characters) against the name
 5. the default placeholder
*/
func (r *Resolver) Resolve(name string, explicitUrl string) (res Resolution) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logging.Error().Interface("recovered", recovered).Str("name", name).Msg("creature image resolution panicked")
			res = Resolution{
				Reference: ErrorImageUrl,
				Source:    SourceError,
				Matched:   false,
				Err:       errors.New("image resolution panicked"),
			}
		}
	}()

	if explicitUrl != "" {
		return Resolution{
			Reference: explicitUrl,
			Source:    SourceUser,
			Matched:   true,
		}
	}

	table := r.loadMerged()
	normalized := strings.ToLower(strings.TrimSpace(name))

	if key, ok := findMatch(normalized, table); ok {
		source := SourceDatabase
		if table.isLocal(key) {
			source = SourceLocal
		}
		return Resolution{
			Reference: table.refs[key],
			Source:    source,
			Matched:   true,
		}
	}

	return Resolution{
		Reference: DefaultImageUrl,
		Source:    SourceDefault,
		Matched:   false,
	}
}

// AddEntry inserts or overwrites a lookup table entry and persists the
// table. The name is normalized to its lower-cased, trimmed form.
func (r *Resolver) AddEntry(name string, reference string) error {
	table, err := r.store.Load()
	if err != nil {
		return err
	}

	table[strings.ToLower(strings.TrimSpace(name))] = reference
	return r.store.Save(table)
}

// RemoveEntry deletes a lookup table entry, returning NotFound if no such
// entry exists. Local directory images are not affected.
func (r *Resolver) RemoveEntry(name string) error {
	table, err := r.store.Load()
	if err != nil {
		return err
	}

	key := strings.ToLower(strings.TrimSpace(name))
	if _, ok := table[key]; !ok {
		return NotFound
	}

	delete(table, key)
	return r.store.Save(table)
}

// ListAll returns the merged view of the lookup table and the local image
// directory, sorted by name.
func (r *Resolver) ListAll() []Entry {
	table := r.loadMerged()

	entries := make([]Entry, 0, len(table.keys))
	for _, key := range table.keys {
		entries = append(entries, Entry{
			Name:      key,
			Reference: table.refs[key],
			Source:    table.source(key),
		})
	}
	return entries
}

// Search returns up to limit entries whose name contains the query,
// case-insensitively. Results come back in name order; there is no
// relevance ranking.
func (r *Resolver) Search(query string, limit int) []Entry {
	table := r.loadMerged()
	queryLower := strings.ToLower(query)
	limit = utils.OrDefault(limit, 10)

	var results []Entry
	for _, key := range table.keys {
		if len(results) >= limit {
			break
		}
		if strings.Contains(key, queryLower) {
			results = append(results, Entry{
				Name:      key,
				Reference: table.refs[key],
				Source:    table.source(key),
			})
		}
	}
	return results
}

// The lookup table and local image index merged into one view. Keys are kept
// sorted so that partial-match scans behave the same on every call; Go map
// iteration order would make first-match ties nondeterministic.
type mergedTable struct {
	refs  map[string]string
	local map[string]struct{}
	keys  []string
}

func (t *mergedTable) isLocal(key string) bool {
	_, ok := t.local[key]
	return ok
}

func (t *mergedTable) source(key string) Source {
	if t.isLocal(key) {
		return SourceLocal
	}
	return SourceDatabase
}

func (r *Resolver) loadMerged() *mergedTable {
	table, err := r.store.Load()
	if err != nil {
		// Degrade to local scan only; read paths never fail.
		logging.Warn().Err(err).Msg("failed to load creature lookup table")
		table = map[string]string{}
	}

	merged := &mergedTable{
		refs:  table,
		local: map[string]struct{}{},
	}

	for key, ref := range ScanLocalImages(r.imageDir) {
		merged.refs[key] = ref
		merged.local[key] = struct{}{}
	}

	for key := range merged.refs {
		merged.keys = append(merged.keys, key)
	}
	sort.Strings(merged.keys)

	return merged
}

func findMatch(normalized string, table *mergedTable) (string, bool) {
	// Exact match
	if _, ok := table.refs[normalized]; ok {
		return normalized, true
	}

	// Forward partial match: words of the name against the keys. One word is
	// fully exhausted against every key before the next word is tried, so
	// word order in the name takes priority.
	for _, word := range strings.Fields(normalized) {
		if utf8.RuneCountInString(word) <= 2 {
			continue
		}
		for _, key := range table.keys {
			if strings.Contains(key, word) {
				logging.Debug().Str("name", normalized).Str("matched", key).Str("word", word).Msg("partial creature match")
				return key, true
			}
		}
	}

	// Reverse partial match: words of each key against the name.
	for _, key := range table.keys {
		for _, keyWord := range strings.Fields(key) {
			if utf8.RuneCountInString(keyWord) <= 2 {
				continue
			}
			if strings.Contains(normalized, keyWord) {
				logging.Debug().Str("name", normalized).Str("matched", key).Str("word", keyWord).Msg("reverse partial creature match")
				return key, true
			}
		}
	}

	return "", false
}
