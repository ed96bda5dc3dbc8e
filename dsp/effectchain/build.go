package effectchain

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-afx/dsp/core"
	"github.com/cwbudde/algo-afx/dsp/param"
)

// Spec describes one chain member: its registered type, parameter values,
// and whether it starts bypassed. Enum parameters may be given by option
// label in Labels instead of by index in Params.
type Spec struct {
	Type     string
	Bypassed bool
	Params   map[string]float64
	Labels   map[string]string
}

type specJSON struct {
	Type     string         `json:"type"`
	Bypassed bool           `json:"bypassed"`
	Params   map[string]any `json:"params"`
}

// ParseSpecs decodes a JSON array of chain members, e.g.
//
//	[{"type": "delay", "params": {"time": 0.25, "glideMode": "crossfade"}}]
//
// Numeric parameter values go to Params and string values to Labels.
func ParseSpecs(raw []byte) ([]Spec, error) {
	var nodes []specJSON

	err := json.Unmarshal(raw, &nodes)
	if err != nil {
		return nil, fmt.Errorf("effectchain: invalid chain json: %w", err)
	}

	specs := make([]Spec, len(nodes))
	for i, n := range nodes {
		if n.Type == "" {
			return nil, fmt.Errorf("effectchain: member %d has no type: %w", i, core.ErrInvalidParameter)
		}

		s := Spec{Type: n.Type, Bypassed: n.Bypassed}
		for name, v := range n.Params {
			switch val := v.(type) {
			case float64:
				if s.Params == nil {
					s.Params = make(map[string]float64)
				}
				s.Params[name] = val
			case string:
				if s.Labels == nil {
					s.Labels = make(map[string]string)
				}
				s.Labels[name] = val
			default:
				return nil, fmt.Errorf("effectchain: member %d param %q has unsupported value %v: %w",
					i, name, v, core.ErrInvalidParameter)
			}
		}
		specs[i] = s
	}

	return specs, nil
}

// Build creates a chain for cfg from specs using reg, or DefaultRegistry
// when reg is nil. Parameters are applied in name order. Failures are
// reported as *StageError; an unknown type unwraps to ErrUnknownEffect.
func Build(cfg core.ProcessorConfig, reg *Registry, specs ...Spec) (*Chain, error) {
	if reg == nil {
		reg = DefaultRegistry()
	}

	chain, err := New(cfg)
	if err != nil {
		return nil, err
	}

	for i, s := range specs {
		fx, err := reg.New(s.Type, cfg)
		if err != nil {
			return nil, &StageError{Index: i, Effect: s.Type, Err: err}
		}

		err = applySpec(fx, s)
		if err != nil {
			return nil, stageError(i, s.Type, err)
		}

		err = chain.Append(fx)
		if err != nil {
			return nil, &StageError{Index: i, Effect: s.Type, Err: err}
		}
		chain.stages[i].bypassed = s.Bypassed
	}

	return chain, nil
}

func applySpec(fx Effect, s Spec) error {
	for _, name := range sortedKeys(s.Labels) {
		spec, ok := fx.Parameters().Lookup(name)
		if !ok {
			return &param.Error{Name: name, Value: math.NaN(), Reason: "unknown parameter"}
		}

		v, err := spec.Option(s.Labels[name])
		if err != nil {
			return err
		}

		err = fx.SetParameter(name, v)
		if err != nil {
			return err
		}
	}

	for _, name := range sortedKeys(s.Params) {
		err := fx.SetParameter(name, s.Params[name])
		if err != nil {
			return err
		}
	}

	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
