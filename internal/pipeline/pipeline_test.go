package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillmatch/internal/store"
	"skillmatch/pkg/types"
)

// fakeEngine scripts per-CV outcomes by CV name.
type fakeEngine struct {
	mu            sync.Mutex
	structured    map[string]*types.StructuredCv
	structureErr  map[string]error
	analyzeErr    map[string]error
	analyzeOrder  []string
	failedRecords map[string]bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		structured:    make(map[string]*types.StructuredCv),
		structureErr:  make(map[string]error),
		analyzeErr:    make(map[string]error),
		failedRecords: make(map[string]bool),
	}
}

func (f *fakeEngine) StructureCv(ctx context.Context, rawText string) (*types.StructuredCv, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.structureErr[rawText]; ok {
		return nil, err
	}
	if cv, ok := f.structured[rawText]; ok {
		return cv, nil
	}
	return nil, nil
}

func (f *fakeEngine) AnalyzeCv(ctx context.Context, cv types.RawCv, rules []string, language string) (types.CandidateRecord, error) {
	f.mu.Lock()
	f.analyzeOrder = append(f.analyzeOrder, cv.Name)
	f.mu.Unlock()

	if err, ok := f.analyzeErr[cv.Name]; ok {
		return types.CandidateRecord{}, err
	}
	if f.failedRecords[cv.Name] {
		return types.CandidateRecord{
			CandidateName:   cv.Name,
			CvName:          cv.Name,
			Recommendations: []types.RecommendationItem{},
			Error:           "Failed to generate recommendations.",
		}, nil
	}
	return types.CandidateRecord{
		CandidateName:   strings.TrimSuffix(cv.Name, ".pdf"),
		CvName:          cv.Name,
		Recommendations: []types.RecommendationItem{{CertName: "AWS Solutions Architect", Reason: "cloud work", RulesApplied: []string{}}},
	}, nil
}

func TestAddReplacesByName(t *testing.T) {
	p := New(newFakeEngine(), store.New(nil))

	p.Add("a.pdf", "old text")
	p.Add("b.pdf", "other")
	p.Add("a.pdf", "new text")

	cvs := p.Cvs()
	require.Len(t, cvs, 2)
	assert.Equal(t, "a.pdf", cvs[0].Name)
	assert.Equal(t, "new text", cvs[0].Text)
}

func TestStructureAll(t *testing.T) {
	engine := newFakeEngine()
	engine.structured["alice text"] = &types.StructuredCv{
		Skills: []types.SkillEntry{{Title: "Go"}},
	}
	engine.structureErr["bob text"] = errors.New("backend down")

	p := New(engine, store.New(nil))
	p.Add("alice.pdf", "alice text")
	p.Add("bob.pdf", "bob text")
	p.Add("carol.pdf", "carol text") // structures to nil

	p.StructureAll(context.Background())

	byName := make(map[string]types.RawCv)
	for _, cv := range p.Cvs() {
		byName[cv.Name] = cv
	}

	require.NotNil(t, byName["alice.pdf"].Structured)
	assert.Equal(t, "Go", byName["alice.pdf"].Structured.Skills[0].Title)
	assert.Nil(t, byName["bob.pdf"].Structured)
	assert.Nil(t, byName["carol.pdf"].Structured)
	for _, cv := range byName {
		assert.False(t, cv.IsParsing, cv.Name)
	}
}

func TestStructureAllSkipsUnselected(t *testing.T) {
	engine := newFakeEngine()
	engine.structured["alice text"] = &types.StructuredCv{}

	p := New(engine, store.New(nil))
	p.Add("alice.pdf", "alice text")
	p.SetSelected("alice.pdf", false)

	p.StructureAll(context.Background())

	cvs := p.Cvs()
	assert.Nil(t, cvs[0].Structured)
	assert.True(t, cvs[0].IsParsing)
}

func TestRecommendAllIsolatesFailures(t *testing.T) {
	engine := newFakeEngine()
	engine.analyzeErr["bob.pdf"] = errors.New("connection reset")

	p := New(engine, store.New(nil))
	p.Add("alice.pdf", "alice text")
	p.Add("bob.pdf", "bob text")
	p.Add("carol.pdf", "carol text")

	agg := p.RecommendAll(context.Background(), nil, "en")

	require.Len(t, agg.Candidates, 3)
	assert.Equal(t, []string{"alice.pdf", "bob.pdf", "carol.pdf"}, engine.analyzeOrder)

	assert.Empty(t, agg.Candidates[0].Error)
	assert.Equal(t, "Failed to generate recommendations.", agg.Candidates[1].Error)
	assert.Equal(t, "bob.pdf", agg.Candidates[1].CandidateName)
	assert.NotNil(t, agg.Candidates[1].Recommendations)
	assert.Empty(t, agg.Candidates[2].Error)

	assert.Equal(t, StateCompleted, p.State("alice.pdf"))
	assert.Equal(t, StateFailed, p.State("bob.pdf"))
	assert.Equal(t, StateCompleted, p.State("carol.pdf"))
}

func TestRecommendAllMarksErrorRecordsFailed(t *testing.T) {
	engine := newFakeEngine()
	engine.failedRecords["alice.pdf"] = true

	p := New(engine, store.New(nil))
	p.Add("alice.pdf", "alice text")

	agg := p.RecommendAll(context.Background(), nil, "en")
	require.Len(t, agg.Candidates, 1)
	assert.Equal(t, StateFailed, p.State("alice.pdf"))
}

func TestRecommendAllPublishesAfterEachCv(t *testing.T) {
	engine := newFakeEngine()
	recs := store.New(nil)

	var published [][]string
	recs.OnPublish(func(agg types.RecommendationAggregate) {
		var names []string
		for _, c := range agg.Candidates {
			names = append(names, c.CvName)
		}
		published = append(published, names)
	})

	p := New(engine, recs)
	p.Add("a.pdf", "a")
	p.Add("b.pdf", "b")

	p.RecommendAll(context.Background(), nil, "en")

	// Reset publishes empty, then one snapshot per completed CV.
	require.Len(t, published, 3)
	assert.Empty(t, published[0])
	assert.Equal(t, []string{"a.pdf"}, published[1])
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, published[2])
}

func TestRecommendAllResetsPriorResults(t *testing.T) {
	engine := newFakeEngine()
	recs := store.New(nil)

	p := New(engine, recs)
	p.Add("a.pdf", "a")
	p.RecommendAll(context.Background(), nil, "en")

	p.Remove("a.pdf")
	p.Add("b.pdf", "b")
	agg := p.RecommendAll(context.Background(), nil, "en")

	require.Len(t, agg.Candidates, 1)
	assert.Equal(t, "b.pdf", agg.Candidates[0].CvName)
}

func TestRemoveCascadesToStore(t *testing.T) {
	engine := newFakeEngine()
	recs := store.New(nil)

	p := New(engine, recs)
	p.Add("a.pdf", "a")
	p.Add("b.pdf", "b")
	p.RecommendAll(context.Background(), nil, "en")
	require.Equal(t, 2, recs.Len())

	p.Remove("a.pdf")
	assert.Len(t, p.Cvs(), 1)
	assert.Equal(t, 1, recs.Len())
	assert.Equal(t, "b.pdf", recs.Aggregate().Candidates[0].CvName)
}

func TestStateString(t *testing.T) {
	for state, want := range map[CvState]string{
		StatePending:   "pending",
		StateInFlight:  "in_flight",
		StateCompleted: "completed",
		StateFailed:    "failed",
		CvState(42):    "unknown",
	} {
		assert.Equal(t, want, fmt.Sprint(state))
	}
}
