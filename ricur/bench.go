package main

import (
	"fmt"
	"time"

	"github.com/getlantern/errors"

	"github.com/ruffrey/ricur/cat32"
	"github.com/ruffrey/ricur/learn"
	"github.com/ruffrey/ricur/mat32"
)

type benchResult struct {
	name    string
	elapsed time.Duration
	iters   int
}

func (r benchResult) nsPerOp() int64 {
	return r.elapsed.Nanoseconds() / int64(r.iters)
}

func bench(rows, cols, iters int, seed uint64) error {
	if rows < 1 || cols < 1 || iters < 1 {
		return errors.New("ricur: rows, cols and iters must be positive, got %d %d %d", rows, cols, iters).Op("bench")
	}
	results, err := runBench(rows, cols, iters, seed)
	if err != nil {
		return err
	}

	fmt.Println("lanes", cat32.Lanes())
	fmt.Println("matrix", rows, "x", cols)
	for _, r := range results {
		fmt.Println(r.name, r.nsPerOp(), "ns/op")
	}
	return nil
}

func runBench(rows, cols, iters int, seed uint64) ([]benchResult, error) {
	r := mat32.NewRand(seed)
	m := mat32.RandMat(r, rows, cols)

	input := make([]float32, cols)
	for i := range input {
		input[i] = mat32.Randf(r, -1, 1)
	}
	errs := make([]float32, rows)
	for i := range errs {
		errs[i] = mat32.Randf(r, -1, 1)
	}
	hidden := make([]float32, rows)
	back := make([]float32, cols)

	// every other row active
	var set cat32.IndexSet
	for i := 0; i < rows; i += 2 {
		set = set.Add(i)
	}

	timeIt := func(name string, fn func()) benchResult {
		t0 := time.Now()
		for range iters {
			fn()
		}
		return benchResult{name: name, elapsed: time.Since(t0), iters: iters}
	}

	results := []benchResult{
		timeIt("MultiplyAccumulate", func() {
			cat32.MultiplyAccumulate(hidden, input, m, rows, cols)
		}),
		timeIt("MultiplyAccumulateSet", func() {
			cat32.MultiplyAccumulateSet(hidden, input, m, set, cols)
		}),
		timeIt("PropagateError", func() {
			cat32.PropagateError(back, errs, m, cols, rows)
		}),
		timeIt("PropagateErrorSet", func() {
			cat32.PropagateErrorSet(back, errs, m, cols, set)
		}),
	}

	solver, err := learn.NewSolver(solverConfig)
	if err != nil {
		return nil, err
	}
	grads := mat32.NewMat(rows, cols)
	acc := mat32.NewMat(rows, cols)
	var stepErr error
	res := timeIt("Solver.Step", func() {
		for i := range grads.W {
			grads.W[i] = input[i%cols] * errs[i/cols]
		}
		if _, err := solver.Step(m, grads, acc); err != nil {
			stepErr = err
		}
	})
	if stepErr != nil {
		return nil, stepErr
	}
	return append(results, res), nil
}
