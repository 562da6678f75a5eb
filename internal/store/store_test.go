package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillmatch/internal/storage"
	"skillmatch/pkg/types"
)

func record(cvName, candidate string) types.CandidateRecord {
	return types.CandidateRecord{
		CandidateName:   candidate,
		CvName:          cvName,
		Recommendations: []types.RecommendationItem{},
	}
}

func TestUpsertKeepsOneRecordPerCv(t *testing.T) {
	s := New(nil)

	s.Upsert(record("a.pdf", "Alice"))
	s.Upsert(record("b.pdf", "Bob"))
	s.Upsert(record("a.pdf", "Alice Again"))

	assert.Equal(t, 2, s.Len())

	agg := s.Aggregate()
	require.Len(t, agg.Candidates, 2)
	// Re-upserting a.pdf moved it behind b.pdf.
	assert.Equal(t, "b.pdf", agg.Candidates[0].CvName)
	assert.Equal(t, "a.pdf", agg.Candidates[1].CvName)
	assert.Equal(t, "Alice Again", agg.Candidates[1].CandidateName)
}

func TestErrorRecordThenSuccessLeavesOnlySuccess(t *testing.T) {
	s := New(nil)

	failed := record("a.pdf", "a.pdf")
	failed.Error = "Failed to generate recommendations."
	s.Upsert(failed)

	ok := record("a.pdf", "Alice")
	ok.Recommendations = []types.RecommendationItem{{CertName: "AWS Solutions Architect", Reason: "cloud work"}}
	s.Upsert(ok)

	agg := s.Aggregate()
	require.Len(t, agg.Candidates, 1)
	assert.Empty(t, agg.Candidates[0].Error)
	assert.Equal(t, "Alice", agg.Candidates[0].CandidateName)
}

func TestRemove(t *testing.T) {
	s := New(nil)
	s.Upsert(record("a.pdf", "Alice"))
	s.Upsert(record("b.pdf", "Bob"))

	s.Remove("a.pdf")
	agg := s.Aggregate()
	require.Len(t, agg.Candidates, 1)
	assert.Equal(t, "b.pdf", agg.Candidates[0].CvName)

	// Removing an unknown key is a no-op.
	s.Remove("c.pdf")
	assert.Equal(t, 1, s.Len())
}

func TestReset(t *testing.T) {
	s := New(nil)
	s.Upsert(record("a.pdf", "Alice"))

	s.Reset()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Aggregate().Candidates)
}

func TestPublishFiresAfterEveryMutation(t *testing.T) {
	s := New(nil)

	var snapshots []int
	s.OnPublish(func(agg types.RecommendationAggregate) {
		snapshots = append(snapshots, len(agg.Candidates))
	})

	s.Upsert(record("a.pdf", "Alice"))
	s.Upsert(record("b.pdf", "Bob"))
	s.Remove("a.pdf")
	s.Reset()

	assert.Equal(t, []int{1, 2, 1, 0}, snapshots)
}

func TestMutationsPersistAggregate(t *testing.T) {
	dir := t.TempDir()
	s := New(storage.New(dir))

	s.Upsert(record("a.pdf", "Alice"))

	data, err := os.ReadFile(filepath.Join(dir, storage.LastRecommendationsKey+".json"))
	require.NoError(t, err)

	var agg types.RecommendationAggregate
	require.NoError(t, json.Unmarshal(data, &agg))
	require.Len(t, agg.Candidates, 1)
	assert.Equal(t, "Alice", agg.Candidates[0].CandidateName)
}
