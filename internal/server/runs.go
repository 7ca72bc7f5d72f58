package server

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"principia/internal/model"
	"principia/internal/narrative"
)

type RunStatus string

const (
	RunPending RunStatus = "pending"
	RunRunning RunStatus = "running"
	RunDone    RunStatus = "done"
	RunFailed  RunStatus = "failed"
)

// Run is one analysis request and its outcome. The store keeps completed
// runs so the narrative can be re-rendered without re-invoking the
// generative service.
type Run struct {
	ID         string                        `json:"id"`
	Input      model.ConceptInput            `json:"input"`
	Audience   narrative.Audience            `json:"audience"`
	Complexity narrative.Complexity          `json:"complexity"`
	Status     RunStatus                     `json:"status"`
	Model      *model.InternalReasoningModel `json:"model,omitempty"`
	Narrative  *narrative.ViewModel          `json:"narrative,omitempty"`
	Error      string                        `json:"error,omitempty"`
	CreatedAt  time.Time                     `json:"created_at"`
	FinishedAt *time.Time                    `json:"finished_at,omitempty"`
}

// RunStore is a bounded, in-memory store of recent runs. Eviction is LRU;
// callers that need durable results persist them on their side.
type RunStore struct {
	mu    sync.RWMutex
	cache *lru.Cache[string, *Run]
}

func NewRunStore(size int) (*RunStore, error) {
	if size <= 0 {
		size = 256
	}
	c, err := lru.New[string, *Run](size)
	if err != nil {
		return nil, err
	}
	return &RunStore{cache: c}, nil
}

func (s *RunStore) Put(r *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Add(r.ID, r)
}

// Get returns a copy; the stored run is only mutated through Update.
func (s *RunStore) Get(id string) (Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.cache.Get(id)
	if !ok {
		return Run{}, false
	}
	return *r, true
}

// Update applies fn to the stored run under the store lock.
func (s *RunStore) Update(id string, fn func(*Run)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.cache.Get(id)
	if !ok {
		return fmt.Errorf("run %s not found", id)
	}
	fn(r)
	return nil
}
