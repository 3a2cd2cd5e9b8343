// Package store is the single state container of a client session. All
// mutation goes through its setters; readers get immutable snapshots.
package store

import (
	"maps"
	"slices"
	"sync"

	"github.com/SerjoschDuering/ifcore-platform/internal/domain/model"
)

// State is everything a session knows. Values held in a State are never
// mutated after being committed; setters replace them wholesale.
type State struct {
	Projects        []model.Project
	ActiveProjectID string

	Jobs        map[string]model.Job
	ActiveJobID string

	CheckResults   []model.CheckResult
	ElementResults []model.ElementResult

	SelectedCategory string
	SelectedCheckID  string

	ColorMap          model.ColorMap
	HighlightColorMap model.ColorMap

	SelectedIDs map[string]struct{}
	HiddenIDs   map[string]struct{}

	IFCURL        string
	ViewerVisible bool
	Ready         bool
}

// Snapshot is a committed State with its version. Versions increase by one
// per committed change; no-op writes do not create a version.
type Snapshot struct {
	State
	Version uint64
}

// PendingJobs returns the ids of tracked jobs that are not terminal, sorted.
func (s Snapshot) PendingJobs() []string {
	var ids []string
	for id, j := range s.Jobs {
		if !j.Status.IsTerminal() {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// EffectiveColors overlays the highlight map on the base map; highlight wins.
func (s Snapshot) EffectiveColors() model.ColorMap {
	out := make(model.ColorMap, len(s.ColorMap)+len(s.HighlightColorMap))
	maps.Copy(out, s.ColorMap)
	maps.Copy(out, s.HighlightColorMap)
	return out
}

// IsHidden reports whether the element is hidden in the viewer.
func (s Snapshot) IsHidden(elementID string) bool {
	_, ok := s.HiddenIDs[elementID]
	return ok
}

// Selected returns the selected element ids, sorted.
func (s Snapshot) Selected() []string {
	return slices.Sorted(maps.Keys(s.SelectedIDs))
}

// Hidden returns the hidden element ids, sorted.
func (s Snapshot) Hidden() []string {
	return slices.Sorted(maps.Keys(s.HiddenIDs))
}

// Listener receives every committed snapshot.
type Listener func(Snapshot)

// Store guards a State. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	state   State
	version uint64

	subMu  sync.Mutex
	subs   map[uint64]Listener
	nextID uint64
}

// New returns an empty store at version 0.
func New() *Store {
	return &Store{
		state: State{
			Jobs:        map[string]model.Job{},
			SelectedIDs: map[string]struct{}{},
			HiddenIDs:   map[string]struct{}{},
		},
		subs: map[uint64]Listener{},
	}
}

// Snapshot returns the current committed state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{State: s.state, Version: s.version}
}

// Version returns the current version.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers fn for future commits and returns its unsubscribe func.
// Listeners run on the writer's goroutine after the write lock is released,
// so they may call back into the store.
func (s *Store) Subscribe(fn Listener) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// update runs fn under the write lock. fn reports whether it changed the
// state; only then is the version bumped and listeners notified.
func (s *Store) update(fn func(st *State) bool) bool {
	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return false
	}
	s.version++
	snap := Snapshot{State: s.state, Version: s.version}
	s.mu.Unlock()

	s.notify(snap)
	return true
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	listeners := make([]Listener, 0, len(s.subs))
	for _, l := range s.subs {
		listeners = append(listeners, l)
	}
	s.subMu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}
