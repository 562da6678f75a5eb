package catalog

import (
	"fmt"
	"strings"

	"skillmatch/pkg/types"
)

// Catalog wraps the canonical certificate list with the lookup indexes the
// recommendation stages need: by id, by English name, and by lowercased
// field. Entries are immutable for the session.
type Catalog struct {
	entries []types.CertificateCatalogEntry
	byID    map[string]int
	byName  map[string]int
	byField map[string][]int
}

func New(entries []types.CertificateCatalogEntry) *Catalog {
	c := &Catalog{
		entries: entries,
		byID:    make(map[string]int, len(entries)),
		byName:  make(map[string]int, len(entries)),
		byField: make(map[string][]int),
	}
	for i, entry := range entries {
		c.byID[entry.ID] = i
		c.byName[entry.Name] = i
		if field := strings.ToLower(entry.FieldEn); field != "" {
			c.byField[field] = append(c.byField[field], i)
		}
	}
	return c
}

func (c *Catalog) Entries() []types.CertificateCatalogEntry {
	return c.entries
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

// PromptString serializes the catalog as one bullet line per entry, the exact
// shape embedded in every analysis prompt.
func (c *Catalog) PromptString() string {
	var b strings.Builder
	for i, entry := range c.entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		name := entry.Name
		if name == "" {
			name = "Unknown Certificate"
		}
		level := entry.Level
		if level == "" {
			level = "N/A"
		}
		fmt.Fprintf(&b, "- **%s** (%s): %s", name, level, entry.Description)
		if entry.FieldEn != "" {
			fmt.Fprintf(&b, " | Field: %s", entry.FieldEn)
		}
		if entry.Entity != "" {
			fmt.Fprintf(&b, " | Entity: %s", entry.Entity)
		}
	}
	return b.String()
}

// Match resolves a recommendation against the catalog: by id first, falling
// back to exact English-name equality when the model omitted certId.
func (c *Catalog) Match(item types.RecommendationItem) (types.CertificateCatalogEntry, bool) {
	if item.CertID != "" {
		if i, ok := c.byID[item.CertID]; ok {
			return c.entries[i], true
		}
	}
	if item.CertName != "" {
		if i, ok := c.byName[item.CertName]; ok {
			return c.entries[i], true
		}
	}
	return types.CertificateCatalogEntry{}, false
}

// EstimatedHours returns the study-time estimate for a recommendation, 0
// when the recommendation matches nothing in the catalog.
func (c *Catalog) EstimatedHours(item types.RecommendationItem) float64 {
	entry, ok := c.Match(item)
	if !ok {
		return 0
	}
	return entry.EstimatedHours
}

// Search runs a case-insensitive substring match across every text field.
// An empty query returns the whole catalog.
func (c *Catalog) Search(query string) []types.CertificateCatalogEntry {
	if query == "" {
		return c.entries
	}
	q := strings.ToLower(query)
	var matches []types.CertificateCatalogEntry
	for _, entry := range c.entries {
		haystack := strings.ToLower(strings.Join([]string{
			entry.Name,
			entry.NameAr,
			entry.Entity,
			entry.FieldEn,
			entry.FieldAr,
			entry.Description,
			entry.Level,
		}, " "))
		if strings.Contains(haystack, q) {
			matches = append(matches, entry)
		}
	}
	return matches
}

// ByField returns all entries in a field, matched case-insensitively.
func (c *Catalog) ByField(field string) []types.CertificateCatalogEntry {
	idxs := c.byField[strings.ToLower(field)]
	if len(idxs) == 0 {
		return nil
	}
	entries := make([]types.CertificateCatalogEntry, len(idxs))
	for i, idx := range idxs {
		entries[i] = c.entries[idx]
	}
	return entries
}
