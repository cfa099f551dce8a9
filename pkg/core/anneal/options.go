package anneal

import (
	errs "github.com/matzehuels/sbhasm/pkg/errors"
)

// Default schedule values.
const (
	DefaultIterations    = 100_000
	DefaultInitialTemp   = 1.0
	DefaultCooling       = 0.99995
	DefaultMinTemp       = 1e-4
	DefaultProgressEvery = 1000
)

// Options configures an [Optimizer]. Zero values are replaced by the
// package defaults in [Options.SetDefaults]; MaxLen has no default.
type Options struct {
	// Iterations is the number of moves proposed. Default: 100000.
	Iterations int

	// InitialTemp is the starting temperature T0. Default: 1.0.
	InitialTemp float64

	// Cooling is the geometric factor alpha applied every iteration. Default: 0.99995.
	Cooling float64

	// MinTemp is the temperature floor. Default: 1e-4.
	MinTemp float64

	// MaxLen is the hard budget on the assembled length of every current state.
	MaxLen int

	// Trace, if set, is called after every iteration. The slices in Step
	// alias optimizer buffers and are only valid during the call.
	Trace func(Step)

	// Progress, if set, is called every ProgressEvery iterations and once
	// when the run ends.
	Progress func(Progress)

	// ProgressEvery is the progress and cancellation-check interval. Default: 1000.
	ProgressEvery int
}

// SetDefaults fills zero-valued fields with the package defaults.
func (o *Options) SetDefaults() {
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	if o.InitialTemp == 0 {
		o.InitialTemp = DefaultInitialTemp
	}
	if o.Cooling == 0 {
		o.Cooling = DefaultCooling
	}
	if o.MinTemp == 0 {
		o.MinTemp = DefaultMinTemp
	}
	if o.ProgressEvery == 0 {
		o.ProgressEvery = DefaultProgressEvery
	}
}

// Validate checks the options after defaults have been applied.
func (o Options) Validate() error {
	if err := errs.ValidateMaxLen(o.MaxLen); err != nil {
		return err
	}
	if err := errs.ValidateCount("iterations", o.Iterations); err != nil {
		return err
	}
	if err := errs.ValidateCount("progress interval", o.ProgressEvery); err != nil {
		return err
	}
	return errs.ValidateSchedule(o.InitialTemp, o.Cooling, o.MinTemp)
}
