package param

import (
	"math"
	"sync/atomic"
)

// Store holds the live values of a Table and carries changes from any
// goroutine to the audio goroutine without locks.
//
// Set, Get, and Value may be called concurrently from any goroutine.
// Apply must only be called from the goroutine that processes audio.
type Store struct {
	table   Table
	values  []atomic.Uint64
	gens    []atomic.Uint64
	applied []uint64
}

// NewStore returns a store holding the table defaults. The defaults count
// as already applied.
func NewStore(t Table) *Store {
	s := &Store{
		table:   t,
		values:  make([]atomic.Uint64, t.Len()),
		gens:    make([]atomic.Uint64, t.Len()),
		applied: make([]uint64, t.Len()),
	}
	for i, v := range t.Defaults() {
		s.values[i].Store(math.Float64bits(v))
	}
	return s
}

// Table returns the declared parameters.
func (s *Store) Table() Table {
	return s.table
}

// Set validates value and publishes it for the next Apply. A rejected
// value leaves the store unchanged.
func (s *Store) Set(name string, value float64) error {
	if err := s.table.Validate(name, value); err != nil {
		return err
	}
	i, _ := s.table.Index(name)
	s.values[i].Store(math.Float64bits(value))
	s.gens[i].Add(1)
	return nil
}

// Get returns the most recently set value of name.
func (s *Store) Get(name string) (float64, error) {
	i, ok := s.table.Index(name)
	if !ok {
		return 0, &Error{Name: name, Value: math.NaN(), Reason: "unknown parameter"}
	}
	return s.Value(i), nil
}

// Value returns the most recently set value of the i-th parameter.
func (s *Store) Value(i int) float64 {
	return math.Float64frombits(s.values[i].Load())
}

// Pending reports whether any parameter changed since the last Apply.
func (s *Store) Pending() bool {
	for i := range s.gens {
		if s.gens[i].Load() != s.applied[i] {
			return true
		}
	}
	return false
}

// Apply calls fn for every parameter set since the previous Apply, in
// table order, and returns how many were delivered. A value published
// while Apply runs is delivered now or on the next call, never lost.
func (s *Store) Apply(fn func(i int, value float64)) int {
	n := 0
	for i := range s.gens {
		gen := s.gens[i].Load()
		if gen == s.applied[i] {
			continue
		}
		s.applied[i] = gen
		fn(i, math.Float64frombits(s.values[i].Load()))
		n++
	}
	return n
}

// MarkApplied discards pending changes after the caller has consumed
// every current value itself, e.g. while rebuilding state on reset.
func (s *Store) MarkApplied() {
	for i := range s.gens {
		s.applied[i] = s.gens[i].Load()
	}
}
