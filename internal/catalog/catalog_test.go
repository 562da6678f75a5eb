package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillmatch/pkg/types"
)

func sampleEntries() []types.CertificateCatalogEntry {
	return []types.CertificateCatalogEntry{
		{
			ID:             "cert_1_project_management_profes",
			Name:           "Project Management Professional (PMP)",
			Entity:         "PMI",
			FieldEn:        "Management",
			Description:    "Project leadership credential",
			Level:          "Advanced",
			EstimatedHours: 120,
		},
		{
			ID:      "cert_2_aws_solutions_architect",
			Name:    "AWS Solutions Architect",
			Entity:  "Amazon",
			FieldEn: "Cloud",
		},
		{
			ID: "cert_3_",
		},
	}
}

func TestPromptString(t *testing.T) {
	c := New(sampleEntries())

	got := c.PromptString()
	assert.Contains(t, got, "- **Project Management Professional (PMP)** (Advanced): Project leadership credential | Field: Management | Entity: PMI")
	assert.Contains(t, got, "- **AWS Solutions Architect** (N/A):  | Field: Cloud | Entity: Amazon")
	assert.Contains(t, got, "- **Unknown Certificate** (N/A):")
}

func TestMatch(t *testing.T) {
	c := New(sampleEntries())

	t.Run("by id", func(t *testing.T) {
		entry, ok := c.Match(types.RecommendationItem{CertID: "cert_2_aws_solutions_architect"})
		require.True(t, ok)
		assert.Equal(t, "AWS Solutions Architect", entry.Name)
	})

	t.Run("falls back to name", func(t *testing.T) {
		entry, ok := c.Match(types.RecommendationItem{CertID: "bogus", CertName: "Project Management Professional (PMP)"})
		require.True(t, ok)
		assert.Equal(t, "cert_1_project_management_profes", entry.ID)
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := c.Match(types.RecommendationItem{CertName: "Nonexistent Cert"})
		assert.False(t, ok)
	})
}

func TestEstimatedHours(t *testing.T) {
	c := New(sampleEntries())

	assert.Equal(t, 120.0, c.EstimatedHours(types.RecommendationItem{CertID: "cert_1_project_management_profes"}))
	assert.Equal(t, 0.0, c.EstimatedHours(types.RecommendationItem{CertName: "unknown"}))
}

func TestSearch(t *testing.T) {
	c := New(sampleEntries())

	assert.Len(t, c.Search(""), 3)

	got := c.Search("cloud")
	require.Len(t, got, 1)
	assert.Equal(t, "AWS Solutions Architect", got[0].Name)

	assert.Empty(t, c.Search("quantum"))
}

func TestByField(t *testing.T) {
	c := New(sampleEntries())

	got := c.ByField("MANAGEMENT")
	require.Len(t, got, 1)
	assert.Equal(t, "Project Management Professional (PMP)", got[0].Name)

	assert.Empty(t, c.ByField("finance"))
}

func TestLoader(t *testing.T) {
	t.Run("derives slug ids from position and name", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "certificates.json")
		require.NoError(t, os.WriteFile(path, []byte(`[
			{"Certificate_Name_EN": "Project Management Professional (PMP)", "Certificate_Entity": "PMI", "Level": "Advanced", "Estimated_Hours_To_Complete": 120},
			{"Certificate_Name_EN": "AWS Certified Solutions Architect Associate"}
		]`), 0644))

		entries := NewLoader(path).Load()
		require.Len(t, entries, 2)
		assert.Equal(t, "cert_1_project_management_professiona", entries[0].ID)
		assert.Equal(t, "cert_2_aws_certified_solutions_archit", entries[1].ID)
		assert.Equal(t, 120.0, entries[0].EstimatedHours)
	})

	t.Run("failed load returns empty and retries", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "certificates.json")

		loader := NewLoader(path)
		assert.Empty(t, loader.Load())

		require.NoError(t, os.WriteFile(path, []byte(`[{"Certificate_Name_EN": "ITIL Foundation"}]`), 0644))
		entries := loader.Load()
		require.Len(t, entries, 1)
		assert.Equal(t, "ITIL Foundation", entries[0].Name)
	})

	t.Run("successful load is cached", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "certificates.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"Certificate_Name_EN": "ITIL Foundation"}]`), 0644))

		loader := NewLoader(path)
		first := loader.Load()
		require.Len(t, first, 1)

		require.NoError(t, os.Remove(path))
		assert.Len(t, loader.Load(), 1)
	})

	t.Run("malformed json returns empty", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "certificates.json")
		require.NoError(t, os.WriteFile(path, []byte(`not json`), 0644))

		assert.Empty(t, NewLoader(path).Load())
	})
}
