/*
Package learn computes per-weight learning rates and clips gradients.

Adaptive mode is AdaGrad style: every weight keeps a running sum of its
squared deltas in an accumulator matrix of the same shape as the weights,
and its step shrinks as 1 / (1 + sqrt(sum)).
*/
package learn

import (
	"github.com/bjwbell/gensimd/simd"
	"github.com/chewxy/math32"

	"github.com/ruffrey/ricur/cat32"
	"github.com/ruffrey/ricur/mat32"
)

/*
NormalizeGradient clips err into [-cutoff, cutoff].
*/
func NormalizeGradient(err float32, cutoff float32) float32 {
	if err > cutoff {
		return cutoff
	}
	if err < -cutoff {
		return -cutoff
	}
	return err
}

/*
NormalizeGradientLane clips every element of v into [-cutoff, cutoff] in place
and returns how many elements were changed.
*/
func NormalizeGradientLane(v []float32, cutoff float32) (clipped int) {
	for i, e := range v {
		c := NormalizeGradient(e, cutoff)
		if c != e {
			v[i] = c
			clipped++
		}
	}
	return clipped
}

/*
ComputeLearningRate returns the step size for weight (i, j).

With constant set it returns baseRate and acc is not touched. Otherwise
delta² is added to acc[i][j] and the rate is baseRate / (1 + sqrt(acc[i][j])).
*/
func ComputeLearningRate(acc *mat32.Mat, i, j int, delta, baseRate float32, constant bool) float32 {
	if constant {
		return baseRate
	}
	mat32.Assert(j >= 0 && j < acc.Width, "learn: accumulator column out of range")
	row := acc.Row(i)
	dg := row[j] + float32(delta*delta)
	row[j] = dg
	return baseRate / (1 + math32.Sqrt(dg))
}

/*
ComputeLearningRateLane applies the ComputeLearningRate recurrence to every
element of delta, updating the matching accumulator elements and writing
the rates to rate. acc and rate must be at least as long as delta.
*/
func ComputeLearningRateLane(delta, acc, rate []float32, baseRate float32, constant bool) {
	n := len(delta)
	mat32.Assert(len(acc) >= n && len(rate) >= n, "learn: lane buffers shorter than delta")
	if constant {
		for k := range n {
			rate[k] = baseRate
		}
		return
	}

	base := cat32.Set(baseRate)
	one := cat32.Set(1)
	k := 0
	for ; k+4 <= n; k += 4 {
		d := cat32.Load(delta[k:])
		sum := simd.AddF32x4(cat32.Load(acc[k:]), simd.MulF32x4(d, d))
		cat32.Store(acc[k:], sum)
		root := simd.F32x4{math32.Sqrt(sum[0]), math32.Sqrt(sum[1]), math32.Sqrt(sum[2]), math32.Sqrt(sum[3])}
		cat32.Store(rate[k:], simd.DivF32x4(base, simd.AddF32x4(one, root)))
	}
	for ; k < n; k++ {
		dg := acc[k] + float32(delta[k]*delta[k])
		acc[k] = dg
		rate[k] = baseRate / (1 + math32.Sqrt(dg))
	}
}
