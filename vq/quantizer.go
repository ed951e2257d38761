/*
Package vq builds small scalar codebooks over a stream of float32 values so
a matrix can be stored with one byte per value.

Values are ingested with Add, BuildCodebook runs 1-D Lloyd iterations
(k-means on a line) and ComputeVQ maps a value to its nearest codebook index.
*/
package vq

import (
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"
)

const (
	// MaxIterations caps the Lloyd refinement loop.
	MaxIterations = 100
	// stop once an iteration improves distortion by less than this fraction
	tolerance = 1e-9
)

/*
Assert ensures our code is not breaking down and halts the program.
*/
func Assert(assertion bool, msg string) {
	if !assertion {
		panic(msg)
	}
}

/*
Quantizer holds the training values and, after BuildCodebook, the codebook.
*/
type Quantizer struct {
	values   []float64
	codebook []float32
}

/*
New instantiates an empty Quantizer.
*/
func New() *Quantizer {
	return &Quantizer{}
}

/*
Add ingests one training value. Duplicates are kept since they weight the
distribution the codebook is fit to.
*/
func (q *Quantizer) Add(v float32) {
	f := float64(v)
	Assert(!math.IsNaN(f) && !math.IsInf(f, 0), "vq: cannot quantize a non-finite value")
	q.values = append(q.values, f)
}

/*
Count is the number of values ingested so far.
*/
func (q *Quantizer) Count() int {
	return len(q.values)
}

/*
Len is the size of the current codebook.
*/
func (q *Quantizer) Len() int {
	return len(q.codebook)
}

/*
Codebook returns a copy of the codebook, ascending.
*/
func (q *Quantizer) Codebook() []float32 {
	return slices.Clone(q.codebook)
}

/*
BuildCodebook partitions the ingested values into at most `target` clusters
and keeps one representative (the cluster mean) per cluster. `target` is
clamped to the number of distinct values. The returned distortion is the
total squared error of reconstructing every ingested value through the
codebook.
*/
func (q *Quantizer) BuildCodebook(target int) float64 {
	Assert(target >= 1, "vq: codebook size must be at least 1")
	q.codebook = q.codebook[:0]
	if len(q.values) == 0 {
		return 0
	}

	sorted := slices.Clone(q.values)
	slices.Sort(sorted)
	distinct := slices.Compact(slices.Clone(sorted))
	k := min(target, len(distinct))

	n := len(sorted)
	sums := make([]float64, n+1)
	floats.CumSum(sums[1:], sorted)
	squares := make([]float64, n)
	for i, v := range sorted {
		squares[i] = v * v
	}
	sumSquares := make([]float64, n+1)
	floats.CumSum(sumSquares[1:], squares)

	// seed at quantiles of the distinct values so seeds never collide
	centroids := make([]float64, k)
	for c := range centroids {
		centroids[c] = distinct[(2*c+1)*len(distinct)/(2*k)]
	}

	bounds := make([]int, k+1)
	var prev float64
	for iter := 0; iter < MaxIterations; iter++ {
		assign(sorted, centroids, bounds)

		var distortion float64
		for c, m := range centroids {
			lo, hi := bounds[c], bounds[c+1]
			if lo == hi {
				continue
			}
			cnt := float64(hi - lo)
			s := sums[hi] - sums[lo]
			ss := sumSquares[hi] - sumSquares[lo]
			distortion += math.Max(0, ss-2*m*s+cnt*m*m)
			centroids[c] = s / cnt
		}

		if distortion == 0 || (iter > 0 && prev-distortion <= tolerance*prev) {
			break
		}
		prev = distortion
	}

	// drop clusters that ended up empty
	assign(sorted, centroids, bounds)
	for c, m := range centroids {
		if bounds[c] < bounds[c+1] {
			q.codebook = append(q.codebook, float32(m))
		}
	}

	var distortion float64
	for _, v := range sorted {
		d := v - float64(q.codebook[q.nearest(v)])
		distortion += d * d
	}
	return distortion
}

// assign fills bounds so cluster c owns sorted[bounds[c]:bounds[c+1]].
// A value sitting exactly on a midpoint goes to the lower cluster.
func assign(sorted []float64, centroids []float64, bounds []int) {
	n := len(sorted)
	k := len(centroids)
	bounds[0] = 0
	for c := 0; c < k-1; c++ {
		mid := (centroids[c] + centroids[c+1]) / 2
		bounds[c+1] = sort.Search(n, func(i int) bool { return sorted[i] > mid })
	}
	bounds[k] = n
}

/*
ComputeVQ returns the index of the codebook entry nearest to v, lowest
index on ties. BuildCodebook must have been called first.
*/
func (q *Quantizer) ComputeVQ(v float32) int {
	Assert(len(q.codebook) > 0, "vq: ComputeVQ called before BuildCodebook")
	return q.nearest(float64(v))
}

func (q *Quantizer) nearest(v float64) int {
	cb := q.codebook
	i := sort.Search(len(cb), func(i int) bool { return float64(cb[i]) >= v })
	if i == 0 {
		return 0
	}
	if i == len(cb) {
		return len(cb) - 1
	}
	if v-float64(cb[i-1]) <= float64(cb[i])-v {
		return i - 1
	}
	return i
}
