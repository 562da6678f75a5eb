package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillmatch/pkg/types"
)

func TestSaveAndLoad(t *testing.T) {
	s := New(t.TempDir())

	history := []types.ChatMessage{
		{Text: "hi", IsUser: true},
		{Text: "hello!", IsUser: false},
	}
	s.Save(ChatHistoryKey, history)

	var got []types.ChatMessage
	require.True(t, s.Load(ChatHistoryKey, &got))
	assert.Equal(t, history, got)
}

func TestLoadMissingKey(t *testing.T) {
	s := New(t.TempDir())

	var out []string
	assert.False(t, s.Load(UserRulesKey, &out))
	assert.Nil(t, out)
}

func TestLoadCorruptValue(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, UserRulesKey+".json"), []byte("not json"), 0o644))

	var out []string
	assert.False(t, s.Load(UserRulesKey, &out))
}

func TestSaveIsBestEffort(t *testing.T) {
	// A directory that cannot be created must not panic or error out.
	s := New(string([]byte{0}))
	s.Save(UserRulesKey, []string{"rule"})
}

func TestLoadRules(t *testing.T) {
	t.Run("falls back to language defaults", func(t *testing.T) {
		s := New(t.TempDir())
		assert.Equal(t, DefaultRulesEN, s.LoadRules("en"))
		assert.Equal(t, DefaultRulesAR, s.LoadRules("ar"))
	})

	t.Run("prefers persisted rules", func(t *testing.T) {
		s := New(t.TempDir())
		s.SaveRules([]string{"Prefer PMI certs"})
		assert.Equal(t, []string{"Prefer PMI certs"}, s.LoadRules("en"))
		assert.Equal(t, []string{"Prefer PMI certs"}, s.LoadRules("ar"))
	})

	t.Run("empty persisted list falls back", func(t *testing.T) {
		s := New(t.TempDir())
		s.SaveRules([]string{})
		assert.Equal(t, DefaultRulesEN, s.LoadRules("en"))
	})
}
