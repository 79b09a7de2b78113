package store

import (
	"fmt"
	"slices"
	"sync"

	"github.com/tgienger/taskboard/internal/models"
)

// Listener observes a transition. It runs synchronously after the new
// snapshot is published and must not call Dispatch.
type Listener func(prev, next State)

// Store is the single mutation entry point. Commands are applied one at a
// time, in call order, and listeners see transitions in that same order.
type Store struct {
	env Env

	mu    sync.Mutex
	state State

	notifyMu  sync.Mutex
	nextSubID int
	listeners []subscription
}

type subscription struct {
	id int
	l  Listener
}

// NewStore creates a store holding initial
func NewStore(env Env, initial State) *Store {
	return &Store{
		env:   env,
		state: initial,
	}
}

// Snapshot returns the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers l and returns a function that removes it. Listeners
// are called in subscription order.
func (s *Store) Subscribe(l Listener) func() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.listeners = append(s.listeners, subscription{id: id, l: l})
	return func() {
		s.notifyMu.Lock()
		defer s.notifyMu.Unlock()
		s.listeners = slices.DeleteFunc(s.listeners, func(sub subscription) bool {
			return sub.id == id
		})
	}
}

// Dispatch applies cmd and returns the resulting snapshot. Listeners are
// only notified when the transition changed something.
func (s *Store) Dispatch(cmd Command) State {
	next, _ := s.dispatch(cmd, nil)
	return next
}

// AddUnit validates the name against the current units and adds the unit
// in the same critical section, so two callers cannot both pass the
// duplicate check.
func (s *Store) AddUnit(in models.UnitInput) error {
	_, err := s.dispatch(AddUnit{Input: in}, func(st State) error {
		return ValidateUnit(in, st.Units)
	})
	return err
}

// dispatch runs check against the current state and, if it passes, applies
// cmd without releasing the state lock in between.
func (s *Store) dispatch(cmd Command, check func(State) error) (State, error) {
	s.mu.Lock()
	prev := s.state
	if check != nil {
		if err := check(prev); err != nil {
			s.mu.Unlock()
			return prev, err
		}
	}
	next := Reduce(s.env, prev, cmd)
	s.state = next
	if next.rev == prev.rev {
		s.mu.Unlock()
		return next, nil
	}

	// take the notify lock before releasing the state lock so listeners
	// observe transitions in order
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	for _, sub := range s.listeners {
		sub.l(prev, next)
	}
	return next, nil
}

// Task looks up a task by id
func (s *Store) Task(id string) (models.Task, error) {
	return lookup(s.Snapshot().Tasks, id, taskID, "task")
}

// Category looks up a category by id
func (s *Store) Category(id string) (models.Category, error) {
	return lookup(s.Snapshot().Categories, id, categoryID, "category")
}

// Tag looks up a tag by id
func (s *Store) Tag(id string) (models.Tag, error) {
	return lookup(s.Snapshot().Tags, id, tagID, "tag")
}

// Unit looks up a unit by id
func (s *Store) Unit(id string) (models.Unit, error) {
	return lookup(s.Snapshot().Units, id, unitID, "unit")
}

// Template looks up a template by id
func (s *Store) Template(id string) (models.Template, error) {
	return lookup(s.Snapshot().Templates, id, templateID, "template")
}

func lookup[T any](items []T, id string, key func(T) string, kind string) (T, error) {
	item, ok := find(items, id, key)
	if !ok {
		return item, fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return item, nil
}
