/*
Package cat32 holds the matrix×vector kernels used by the forward and
backward passes. Rows are processed Lanes() values at a time with
gensimd F32x4 quads and finished with a scalar tail.
*/
package cat32

import (
	"github.com/ruffrey/ricur/mat32"
)

/*
MultiplyAccumulate computes dest[i] = Σ src[j] * m[i][j] over j < srcSize
for every row i < destSize. m must have at least destSize rows of at least
srcSize columns.
*/
func MultiplyAccumulate(dest, src []float32, m *mat32.Mat, destSize, srcSize int) {
	mat32.Assert(destSize >= 0 && srcSize >= 0, "cat32: negative kernel size")
	mat32.Assert(len(dest) >= destSize, "cat32: dest slice too small")
	mat32.Assert(len(src) >= srcSize, "cat32: src slice too small")
	mat32.Assert(m.Height >= destSize && m.Width >= srcSize, "cat32: matrix smaller than kernel sizes")

	for i := 0; i < destSize; i++ {
		dest[i] = Dot(src, m.Row(i), srcSize)
	}
}

/*
MultiplyAccumulateSet is MultiplyAccumulate restricted to the rows in set.
Entries of dest outside the set are left alone.
*/
func MultiplyAccumulateSet(dest, src []float32, m *mat32.Mat, set IndexSet, srcSize int) {
	mat32.Assert(srcSize >= 0, "cat32: negative kernel size")
	mat32.Assert(len(src) >= srcSize, "cat32: src slice too small")
	mat32.Assert(m.Width >= srcSize, "cat32: matrix narrower than srcSize")

	for _, i := range set {
		mat32.Assert(i >= 0 && i < m.Height && i < len(dest), "cat32: index set entry out of range")
		dest[i] = Dot(src, m.Row(i), srcSize)
	}
}

/*
PropagateError is the transposed counterpart of MultiplyAccumulate used to
push errors back through a layer. It zeroes all of dest, then adds
src[j] * m[j] into dest[0:destSize] for every row j < srcSize.
*/
func PropagateError(dest, src []float32, m *mat32.Mat, destSize, srcSize int) {
	mat32.Assert(destSize >= 0 && srcSize >= 0, "cat32: negative kernel size")
	mat32.Assert(len(dest) >= destSize, "cat32: dest slice too small")
	mat32.Assert(len(src) >= srcSize, "cat32: src slice too small")
	mat32.Assert(m.Height >= srcSize && m.Width >= destSize, "cat32: matrix smaller than kernel sizes")

	clear(dest)
	for j := 0; j < srcSize; j++ {
		Axpy(dest, m.Row(j), src[j], destSize)
	}
}

/*
PropagateErrorSet is PropagateError restricted to the rows j in set.
*/
func PropagateErrorSet(dest, src []float32, m *mat32.Mat, destSize int, set IndexSet) {
	mat32.Assert(destSize >= 0, "cat32: negative kernel size")
	mat32.Assert(len(dest) >= destSize, "cat32: dest slice too small")
	mat32.Assert(m.Width >= destSize, "cat32: matrix narrower than destSize")

	clear(dest)
	for _, j := range set {
		mat32.Assert(j >= 0 && j < m.Height && j < len(src), "cat32: index set entry out of range")
		Axpy(dest, m.Row(j), src[j], destSize)
	}
}
