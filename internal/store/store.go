package store

import (
	"sync"

	"skillmatch/internal/storage"
	"skillmatch/pkg/types"
)

// Store is the aggregation store: the process-wide mapping from CV name to
// its latest CandidateRecord. At most one record exists per key. Order is
// last-write order: upserting an existing key moves its record to the end.
//
// The recommendation loop is sequential by design, but the mutex keeps the
// at-most-one invariant intact even if a caller ever dispatches in parallel.
type Store struct {
	mu        sync.Mutex
	records   map[string]types.CandidateRecord
	order     []string
	persist   *storage.Store
	onPublish func(types.RecommendationAggregate)
}

func New(persist *storage.Store) *Store {
	return &Store{
		records: make(map[string]types.CandidateRecord),
		persist: persist,
	}
}

// OnPublish registers a callback fired after every mutation with the fresh
// aggregate; the external renderer hangs off this.
func (s *Store) OnPublish(fn func(types.RecommendationAggregate)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPublish = fn
}

// Upsert inserts or overwrites the record for record.CvName and publishes.
func (s *Store) Upsert(record types.CandidateRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.CvName]; exists {
		s.dropFromOrder(record.CvName)
	}
	s.records[record.CvName] = record
	s.order = append(s.order, record.CvName)
	s.publishLocked()
}

// Remove deletes the record for a CV, if any, and publishes.
func (s *Store) Remove(cvName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[cvName]; !exists {
		return
	}
	delete(s.records, cvName)
	s.dropFromOrder(cvName)
	s.publishLocked()
}

// Reset clears every record and publishes the empty aggregate.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]types.CandidateRecord)
	s.order = s.order[:0]
	s.publishLocked()
}

// Aggregate derives the ordered aggregate from the current mapping.
func (s *Store) Aggregate() types.RecommendationAggregate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aggregateLocked()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *Store) dropFromOrder(cvName string) {
	for i, name := range s.order {
		if name == cvName {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func (s *Store) aggregateLocked() types.RecommendationAggregate {
	candidates := make([]types.CandidateRecord, 0, len(s.order))
	for _, name := range s.order {
		candidates = append(candidates, s.records[name])
	}
	return types.RecommendationAggregate{Candidates: candidates}
}

// publishLocked persists the aggregate and notifies the renderer. Called
// with the lock held after every mutation: incremental durability beats
// batching here.
func (s *Store) publishLocked() {
	aggregate := s.aggregateLocked()
	if s.persist != nil {
		s.persist.Save(storage.LastRecommendationsKey, aggregate)
	}
	if s.onPublish != nil {
		s.onPublish(aggregate)
	}
}
