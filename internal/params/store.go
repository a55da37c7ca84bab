package params

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrAlreadyInitialized is returned when InitItem is called again for a
	// key with a different value. Use SetItem to override.
	ErrAlreadyInitialized = errors.New("parameter already initialized")
	// ErrMissingItem is returned by Require when keys are absent
	ErrMissingItem = errors.New("parameter not initialized")
)

// Store is the parameter state of a single request. A Store is never shared
// between requests; each request builds its own and hands the resulting
// Params to its job.
type Store struct {
	mu    sync.RWMutex
	items map[string]any
}

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{items: make(map[string]any)}
}

// InitItem initializes key. Re-initializing with an equal value is a no-op,
// with a different value it fails with ErrAlreadyInitialized.
func (s *Store) InitItem(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.items[key]; ok {
		if reflect.DeepEqual(current, value) {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrAlreadyInitialized, key)
	}
	s.items[key] = value
	return nil
}

// SetItem sets key regardless of its previous state
func (s *Store) SetItem(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
}

// GetItem returns the value of key and whether it was initialized. A null
// value that was initialized is reported as present.
func (s *Store) GetItem(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// Seed initializes every key of p
func (s *Store) Seed(p Params) error {
	items, err := p.Items()
	if err != nil {
		return err
	}
	var errs []error
	for k, v := range items {
		if err := s.InitItem(k, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Require fails with ErrMissingItem naming every absent key
func (s *Store) Require(keys ...string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var missing []string
	for _, k := range keys {
		if _, ok := s.items[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: %s", ErrMissingItem, strings.Join(missing, ", "))
}

// Len returns the number of initialized keys
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Params returns a detached copy of the store as Params
func (s *Store) Params() (Params, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FromItems(s.items)
}
