package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"

	"skillmatch/pkg/types"
)

// rawEntry mirrors the upstream catalog file. Canonicalization into
// types.CertificateCatalogEntry happens once here; nothing downstream ever
// sees these field names.
type rawEntry struct {
	NameEN         string  `json:"Certificate_Name_EN"`
	NameAR         string  `json:"Certificate_Name_AR"`
	Entity         string  `json:"Certificate_Entity"`
	FieldEN        string  `json:"Certificate_Field_EN"`
	FieldAR        string  `json:"Certificate_Field_AR"`
	Description    string  `json:"Description"`
	Level          string  `json:"Level"`
	EstimatedHours float64 `json:"Estimated_Hours_To_Complete"`
}

// Loader reads the certificate catalog from a JSON file. The first
// successful load is cached for the session; a failed load returns an empty
// list and leaves the loader clean so a later call can retry.
type Loader struct {
	mu     sync.Mutex
	path   string
	cached []types.CertificateCatalogEntry
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

func (l *Loader) Load() []types.CertificateCatalogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != nil {
		return l.cached
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		slog.Error("failed to load certificate catalog", "path", l.path, "error", err)
		return []types.CertificateCatalogEntry{}
	}

	var raw []rawEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Error("failed to parse certificate catalog", "path", l.path, "error", err)
		return []types.CertificateCatalogEntry{}
	}

	entries := make([]types.CertificateCatalogEntry, len(raw))
	for i, cert := range raw {
		name := strings.TrimSpace(cert.NameEN)
		entries[i] = types.CertificateCatalogEntry{
			ID:             certID(i, name),
			Name:           name,
			NameAr:         strings.TrimSpace(cert.NameAR),
			Entity:         strings.TrimSpace(cert.Entity),
			FieldEn:        strings.TrimSpace(cert.FieldEN),
			FieldAr:        strings.TrimSpace(cert.FieldAR),
			Description:    strings.TrimSpace(cert.Description),
			Level:          strings.TrimSpace(cert.Level),
			EstimatedHours: cert.EstimatedHours,
		}
	}

	l.cached = entries
	slog.Info("certificate catalog loaded", "path", l.path, "entries", len(entries))
	return entries
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// certID derives the stable slug id: position plus the first 30 characters
// of the lowercased, underscore-joined name.
func certID(index int, name string) string {
	slug := strings.ToLower(whitespaceRe.ReplaceAllString(name, "_"))
	if len(slug) > 30 {
		slug = slug[:30]
	}
	return fmt.Sprintf("cert_%d_%s", index+1, slug)
}
