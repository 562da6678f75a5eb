package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"skillmatch/internal/store"
	"skillmatch/pkg/types"
)

// CvState tracks one CV through the recommendation phase. Terminal states
// are final for that generation of the request; a re-run starts a fresh
// cycle and overwrites the prior record.
type CvState int

const (
	StatePending CvState = iota
	StateInFlight
	StateCompleted
	StateFailed
)

func (s CvState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateInFlight:
		return "in_flight"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Engine is what the orchestrator needs from the model-backed stages.
type Engine interface {
	StructureCv(ctx context.Context, rawText string) (*types.StructuredCv, error)
	AnalyzeCv(ctx context.Context, cv types.RawCv, rules []string, language string) (types.CandidateRecord, error)
}

// Pipeline owns the session's CV set and drives structuring and
// recommendation across it. Structuring runs concurrently, one goroutine per
// CV; recommendation runs strictly sequentially so each candidate's result
// can replace its loading slot the moment it completes.
type Pipeline struct {
	mu     sync.Mutex
	engine Engine
	store  *store.Store
	cvs    []*types.RawCv
	states map[string]CvState
}

func New(engine Engine, st *store.Store) *Pipeline {
	return &Pipeline{
		engine: engine,
		store:  st,
		states: make(map[string]CvState),
	}
}

// Add registers an extracted CV, replacing any prior CV with the same name.
func (p *Pipeline) Add(name, text string) *types.RawCv {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, cv := range p.cvs {
		if cv.Name == name {
			cv.Text = text
			cv.Structured = nil
			cv.IsParsing = true
			cv.Selected = true
			return cv
		}
	}
	cv := &types.RawCv{
		Name:      name,
		Text:      text,
		IsParsing: true,
		Selected:  true,
	}
	p.cvs = append(p.cvs, cv)
	return cv
}

// Remove deletes a CV from the session and cascades into the aggregation
// store so the candidate disappears from the published aggregate too.
func (p *Pipeline) Remove(name string) {
	p.mu.Lock()
	for i, cv := range p.cvs {
		if cv.Name == name {
			p.cvs = append(p.cvs[:i], p.cvs[i+1:]...)
			break
		}
	}
	delete(p.states, name)
	p.mu.Unlock()

	p.store.Remove(name)
}

// SetSelected flips whether a CV participates in pipeline runs.
func (p *Pipeline) SetSelected(name string, selected bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, cv := range p.cvs {
		if cv.Name == name {
			cv.Selected = selected
			return
		}
	}
}

// Cvs returns a snapshot copy of the session's CVs.
func (p *Pipeline) Cvs() []types.RawCv {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]types.RawCv, len(p.cvs))
	for i, cv := range p.cvs {
		out[i] = *cv
	}
	return out
}

// State reports a CV's recommendation-phase state.
func (p *Pipeline) State(name string) CvState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.states[name]
}

func (p *Pipeline) setState(name string, state CvState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states[name] = state
}

func (p *Pipeline) selected() []*types.RawCv {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*types.RawCv
	for _, cv := range p.cvs {
		if cv.Selected {
			out = append(out, cv)
		}
	}
	return out
}

func (p *Pipeline) selectedSnapshot() []types.RawCv {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []types.RawCv
	for _, cv := range p.cvs {
		if cv.Selected {
			out = append(out, *cv)
		}
	}
	return out
}

// StructureAll structures every selected CV concurrently. Each CV's outcome
// is independent: a failure clears that CV's parsing flag and leaves the
// rest untouched. Completion order is nondeterministic; results are keyed by
// CV name, never by position.
func (p *Pipeline) StructureAll(ctx context.Context) {
	selected := p.selected()

	var wg sync.WaitGroup
	for _, cv := range selected {
		p.mu.Lock()
		text := cv.Text
		p.mu.Unlock()

		wg.Add(1)
		go func(cv *types.RawCv, text string) {
			defer wg.Done()
			structured, err := p.engine.StructureCv(ctx, text)

			p.mu.Lock()
			defer p.mu.Unlock()
			cv.IsParsing = false
			switch {
			case err != nil:
				slog.Error("structuring failed", "cv", cv.Name, "error", err)
			case structured == nil:
				slog.Warn("structuring produced no usable data", "cv", cv.Name)
			default:
				cv.Structured = structured
			}
		}(cv, text)
	}
	wg.Wait()
}

// RecommendAll resets the aggregation store and analyzes the selected CVs
// one at a time, in list order. Every CV's result — success or error record —
// is upserted and published before the next CV's request starts. A
// transport failure on one CV is caught, recorded as an error record, and
// never aborts the loop.
func (p *Pipeline) RecommendAll(ctx context.Context, rules []string, language string) types.RecommendationAggregate {
	selected := p.selectedSnapshot()

	p.store.Reset()
	for _, cv := range selected {
		p.setState(cv.Name, StatePending)
	}

	for _, cv := range selected {
		p.setState(cv.Name, StateInFlight)

		record, err := p.engine.AnalyzeCv(ctx, cv, rules, language)
		if err != nil {
			slog.Error("analysis failed", "cv", cv.Name, "error", err)
			p.setState(cv.Name, StateFailed)
			p.store.Upsert(types.CandidateRecord{
				CandidateName:   cv.Name,
				CvName:          cv.Name,
				Recommendations: []types.RecommendationItem{},
				Error:           "Failed to generate recommendations.",
			})
			continue
		}

		if record.Error != "" {
			p.setState(cv.Name, StateFailed)
		} else {
			p.setState(cv.Name, StateCompleted)
		}
		p.store.Upsert(record)
	}

	return p.store.Aggregate()
}
