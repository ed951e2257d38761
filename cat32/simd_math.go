package cat32

import (
	"os"

	"github.com/bjwbell/gensimd/simd"
)

// NoSimdEnv names the environment variable that forces scalar kernels.
const NoSimdEnv = "RICUR_NO_SIMD"

var laneWidth = detectLanes()

func detectLanes() int {
	if os.Getenv(NoSimdEnv) != "" {
		return 1
	}
	return hardwareLanes()
}

/*
Lanes is the number of float32 values the kernels process per vector step.
It is fixed at startup from the CPU features and is 1 in scalar mode.
*/
func Lanes() int {
	return laneWidth
}

/*
Load reads four consecutive values starting at s[0].
*/
func Load(s []float32) simd.F32x4 {
	_ = s[3]
	return simd.F32x4{s[0], s[1], s[2], s[3]}
}

/*
Store writes v to dst[0:4].
*/
func Store(dst []float32, v simd.F32x4) {
	_ = dst[3]
	dst[0], dst[1], dst[2], dst[3] = v[0], v[1], v[2], v[3]
}

/*
Set broadcasts v to every element of a quad.
*/
func Set(v float32) simd.F32x4 {
	return simd.F32x4{v, v, v, v}
}

// ReduceSum adds the four elements of a quad.
func ReduceSum(v simd.F32x4) float32 {
	return (v[0] + v[1]) + (v[2] + v[3])
}

/*
Dot returns Σ a[j]*b[j] for j in [0, n).

The first n - n%Lanes() elements go through lane steps, each lane split into
F32x4 quads (plus a scalar tail when the lane width is not a multiple of 4).
The remaining n%Lanes() elements are summed one at a time.
*/
func Dot(a, b []float32, n int) float32 {
	lanes := laneWidth
	bulk := n - n%lanes
	quads := lanes &^ 3

	var acc simd.F32x4
	var sum float32
	j := 0
	for ; j < bulk; j += lanes {
		k := 0
		for ; k < quads; k += 4 {
			acc = simd.AddF32x4(acc, simd.MulF32x4(Load(a[j+k:]), Load(b[j+k:])))
		}
		for ; k < lanes; k++ {
			sum += a[j+k] * b[j+k]
		}
	}
	sum += ReduceSum(acc)

	// Scalar tail
	for ; j < n; j++ {
		sum += a[j] * b[j]
	}
	return sum
}

/*
Axpy does dst[j] += s * src[j] for j in [0, n), lanes first, then the tail.
*/
func Axpy(dst, src []float32, s float32, n int) {
	lanes := laneWidth
	bulk := n - n%lanes
	quads := lanes &^ 3
	vs := Set(s)

	j := 0
	for ; j < bulk; j += lanes {
		k := 0
		for ; k < quads; k += 4 {
			Store(dst[j+k:], simd.AddF32x4(Load(dst[j+k:]), simd.MulF32x4(vs, Load(src[j+k:]))))
		}
		for ; k < lanes; k++ {
			dst[j+k] += s * src[j+k]
		}
	}

	// Scalar tail
	for ; j < n; j++ {
		dst[j] += s * src[j]
	}
}
