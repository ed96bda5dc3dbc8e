package effectchain

import (
	"github.com/cwbudde/algo-afx/dsp/core"
	"github.com/cwbudde/algo-afx/dsp/effects"
)

// DefaultRegistry returns a Registry pre-populated with the built-in
// effects. opts are passed to every effect constructor; options an effect
// does not use are ignored by it.
func DefaultRegistry(opts ...effects.Option) *Registry {
	r := NewRegistry()

	r.MustRegister("delay", func(cfg core.ProcessorConfig) (Effect, error) {
		fx, err := effects.NewDelay(cfg, opts...)
		if err != nil {
			return nil, err
		}

		return fx, nil
	})
	r.MustRegister("echo", func(cfg core.ProcessorConfig) (Effect, error) {
		fx, err := effects.NewEcho(cfg, opts...)
		if err != nil {
			return nil, err
		}

		return fx, nil
	})
	r.MustRegister("doubler", func(cfg core.ProcessorConfig) (Effect, error) {
		fx, err := effects.NewDoubler(cfg, opts...)
		if err != nil {
			return nil, err
		}

		return fx, nil
	})

	return r
}
