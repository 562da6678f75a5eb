package storage

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	pkgerrors "skillmatch/pkg/errors"
)

// Persistence keys shared with the external renderer.
const (
	ChatHistoryKey         = "skillMatchChatHistory"
	CertCatalogKey         = "skillMatchCertCatalog"
	UserRulesKey           = "skillMatchUserRules"
	LastRecommendationsKey = "skillMatchLastRecommendations"
)

// Store is best-effort key-value persistence: one JSON file per key.
// Failures are logged and swallowed; nothing here ever blocks the pipeline.
type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) Save(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Error("failed to encode value for storage", "key", key, "error", err)
		return
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		slog.Error("persistence failed", "error", &pkgerrors.StorageError{Key: key, Err: err})
		return
	}
	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		slog.Error("persistence failed", "error", &pkgerrors.StorageError{Key: key, Err: err})
	}
}

// Load decodes a stored value into out. Missing or corrupt data reports
// found=false; out is left untouched in that case.
func (s *Store) Load(key string, out any) bool {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read stored value", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		slog.Warn("corrupt stored value", "key", key, "error", err)
		return false
	}
	return true
}
