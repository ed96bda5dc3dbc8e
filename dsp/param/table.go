package param

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-afx/dsp/core"
)

// Kind is the value type of a parameter.
type Kind int

const (
	// Float is a continuous value in [Min, Max].
	Float Kind = iota
	// Enum is an index into Options.
	Enum
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Enum:
		return "enum"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Spec declares one parameter.
type Spec struct {
	Name    string
	Kind    Kind
	Min     float64
	Max     float64
	Default float64
	Unit    string
	// Options labels the values of an Enum; the value is the option index.
	Options []string
}

// Validate checks value against the declared kind and range.
func (s Spec) Validate(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return &Error{Name: s.Name, Value: value, Reason: "not a finite number"}
	}
	if value < s.Min || value > s.Max {
		return &Error{Name: s.Name, Value: value, Reason: fmt.Sprintf("outside [%g, %g]", s.Min, s.Max)}
	}
	if s.Kind == Enum && value != math.Trunc(value) {
		return &Error{Name: s.Name, Value: value, Reason: "not an option index"}
	}
	return nil
}

// Label returns the option name of an Enum value, or the formatted number.
func (s Spec) Label(value float64) string {
	if s.Kind == Enum {
		if i := int(value); i >= 0 && i < len(s.Options) && float64(i) == value {
			return s.Options[i]
		}
	}
	return fmt.Sprintf("%g", value)
}

// Option returns the index of the named Enum option.
func (s Spec) Option(label string) (float64, error) {
	for i, o := range s.Options {
		if o == label {
			return float64(i), nil
		}
	}
	return 0, &Error{Name: s.Name, Value: math.NaN(), Reason: fmt.Sprintf("unknown option %q", label)}
}

// Table is an ordered, immutable set of parameter specs.
type Table struct {
	specs []Spec
	index map[string]int
}

// NewTable validates specs and builds a table. Enum ranges are derived
// from their options.
func NewTable(specs ...Spec) (Table, error) {
	t := Table{
		specs: make([]Spec, len(specs)),
		index: make(map[string]int, len(specs)),
	}

	for i, s := range specs {
		if s.Name == "" {
			return Table{}, fmt.Errorf("param: spec %d has no name: %w", i, core.ErrInvalidParameter)
		}
		if _, dup := t.index[s.Name]; dup {
			return Table{}, fmt.Errorf("param: duplicate parameter %q: %w", s.Name, core.ErrInvalidParameter)
		}

		switch s.Kind {
		case Float:
		case Enum:
			if len(s.Options) == 0 {
				return Table{}, fmt.Errorf("param: enum %q has no options: %w", s.Name, core.ErrInvalidParameter)
			}
			s.Min, s.Max = 0, float64(len(s.Options)-1)
			s.Options = append([]string(nil), s.Options...)
		default:
			return Table{}, fmt.Errorf("param: %q has unknown kind %d: %w", s.Name, int(s.Kind), core.ErrInvalidParameter)
		}

		if !(s.Min <= s.Max) {
			return Table{}, fmt.Errorf("param: %q has empty range [%g, %g]: %w", s.Name, s.Min, s.Max, core.ErrInvalidParameter)
		}
		if err := s.Validate(s.Default); err != nil {
			return Table{}, fmt.Errorf("param: default: %w", err)
		}

		t.specs[i] = s
		t.index[s.Name] = i
	}

	return t, nil
}

// MustTable is NewTable for static declarations. It panics on error.
func MustTable(specs ...Spec) Table {
	t, err := NewTable(specs...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of parameters.
func (t Table) Len() int {
	return len(t.specs)
}

// Specs returns a copy of the specs in declaration order.
func (t Table) Specs() []Spec {
	out := make([]Spec, len(t.specs))
	copy(out, t.specs)
	return out
}

// At returns the i-th spec.
func (t Table) At(i int) Spec {
	return t.specs[i]
}

// Index returns the position of the named parameter.
func (t Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Lookup returns the named spec.
func (t Table) Lookup(name string) (Spec, bool) {
	i, ok := t.index[name]
	if !ok {
		return Spec{}, false
	}
	return t.specs[i], true
}

// Validate checks that name exists and value fits its spec.
func (t Table) Validate(name string, value float64) error {
	i, ok := t.index[name]
	if !ok {
		return &Error{Name: name, Value: value, Reason: "unknown parameter"}
	}
	return t.specs[i].Validate(value)
}

// Defaults returns the default values in declaration order.
func (t Table) Defaults() []float64 {
	out := make([]float64, len(t.specs))
	for i, s := range t.specs {
		out[i] = s.Default
	}
	return out
}
