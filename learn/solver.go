package learn

import (
	"math"

	"github.com/getlantern/errors"

	"github.com/ruffrey/ricur/cat32"
	"github.com/ruffrey/ricur/mat32"
)

/*
Config holds the optimization params shared by every weight matrix.
*/
type Config struct {
	// LearningRate is the base step size before adaptive decay.
	LearningRate float32
	// GradientCutoff is how high gradients can be before they are clipped.
	GradientCutoff float32
	// ConstantRate turns off the adaptive decay; accumulators are left alone.
	ConstantRate bool
}

// DefaultConfig matches the defaults of the RNN trainer.
var DefaultConfig = Config{
	LearningRate:   0.1,
	GradientCutoff: 15.0,
}

/*
Validate checks that the params make sense.
*/
func (c Config) Validate() error {
	lr := float64(c.LearningRate)
	if !(lr > 0) || math.IsInf(lr, 0) {
		return errors.New("learn: learning rate must be a positive number, got %v", c.LearningRate).With("field", "LearningRate")
	}
	cut := float64(c.GradientCutoff)
	if !(cut > 0) {
		return errors.New("learn: gradient cutoff must be positive, got %v", c.GradientCutoff).With("field", "GradientCutoff")
	}
	return nil
}

/*
SolverStats is the result of running the solver.
*/
type SolverStats map[string]float64

/*
Solver applies clipped, per-weight rate updates to weight matrices.
*/
type Solver struct {
	Config
	rate []float32 // one row of rates, reused between steps
}

/*
NewSolver instantiates a Solver
*/
func NewSolver(cfg Config) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Solver{Config: cfg}, nil
}

/*
Step does a param update on weights, using the gradients in grads and the
per-weight accumulator acc. Every gradient is clipped to GradientCutoff, then
w -= rate * g with rate from ComputeLearningRate. grads is reset to zero for
the next iteration.
*/
func (s *Solver) Step(weights, grads, acc *mat32.Mat) (SolverStats, error) {
	if !weights.SameShape(grads) || !weights.SameShape(acc) {
		return nil, errors.New("learn: shape mismatch, weights %dx%d grads %dx%d acc %dx%d",
			weights.Height, weights.Width, grads.Height, grads.Width, acc.Height, acc.Width).Op("Step")
	}

	if cap(s.rate) < weights.Width {
		s.rate = make([]float32, weights.Width)
	}
	rate := s.rate[:weights.Width]
	lanes := cat32.Lanes()
	numClipped := 0

	for r := 0; r < weights.Height; r++ {
		w, g, a := weights.Row(r), grads.Row(r), acc.Row(r)
		numClipped += NormalizeGradientLane(g, s.GradientCutoff)

		bulk := len(g) - len(g)%lanes
		ComputeLearningRateLane(g[:bulk], a[:bulk], rate[:bulk], s.LearningRate, s.ConstantRate)
		for j := bulk; j < len(g); j++ {
			rate[j] = ComputeLearningRate(acc, r, j, g[j], s.LearningRate, s.ConstantRate)
		}

		for j := range w {
			w[j] -= rate[j] * g[j]
			g[j] = 0 // reset gradients for next iteration
		}
	}

	stats := SolverStats{"ratio_clipped": 0}
	if total := weights.Size(); total > 0 {
		stats["ratio_clipped"] = float64(numClipped) / float64(total)
	}
	return stats, nil
}
