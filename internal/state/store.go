// Package state is the dashboard's single source of truth: a nested tree
// addressed by dotted paths, with change notification on an events.Bus.
package state

import (
	"reflect"
	"strings"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/abhisek/interviewdeck/internal/events"
)

// Store holds the state tree. Values stored in the tree are treated as
// immutable; writers replace them instead of mutating in place.
type Store struct {
	mu   sync.Mutex
	tree map[string]any
	bus  *events.Bus
}

// New creates a Store populated with Defaults.
func New(bus *events.Bus) *Store {
	return &Store{tree: Defaults(), bus: bus}
}

// Bus returns the bus the store emits on.
func (s *Store) Bus() *events.Bus {
	return s.bus
}

// Get returns the value at path. ok is false when any segment is missing.
func (s *Store) Get(path string) (value any, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lookup(s.tree, path)
}

// Update writes value at path when it differs from the current value and
// emits PathTopic(path) followed by TopicStateChanged. Writing a value that
// is deep-equal to the current one is a no-op. Missing intermediate nodes
// are created.
func (s *Store) Update(path string, value any) {
	if path == "" {
		return
	}

	s.mu.Lock()
	old, _ := lookup(s.tree, path)
	if equal(old, value) {
		s.mu.Unlock()
		return
	}
	assign(s.tree, path, value)
	s.mu.Unlock()

	if s.bus == nil {
		return
	}
	s.bus.Emit(events.PathTopic(path), events.PathChanged{Path: path, Value: value, Old: old})
	s.bus.Emit(events.TopicStateChanged, events.StateChanged{Path: path, Value: value, Old: old})
}

// Reset overwrites every branch with its default.
func (s *Store) Reset() {
	defaults := Defaults()
	for _, branch := range branchOrder {
		s.Update(branch, defaults[branch])
	}
}

// Snapshot returns a copy of the tree. Nested maps are copied; leaf values
// are shared.
func (s *Store) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyTree(s.tree)
}

func lookup(tree map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var cur any = tree
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func assign(tree map[string]any, path string, value any) {
	segs := strings.Split(path, ".")
	cur := tree
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = value
}

func copyTree(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			out[k] = copyTree(sub)
			continue
		}
		out[k] = v
	}
	return out
}

// equal is structural equality where nil and empty collections compare
// equal, and a nil interface equals a typed nil pointer.
func equal(a, b any) bool {
	if isNil(a) && isNil(b) {
		return true
	}
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
