package mat32

import (
	"math"

	"github.com/getlantern/errors"
)

/*
Mat holds a dense float32 matrix. Values are stored row-major in W, so
row i is W[i*Width : (i+1)*Width].
*/
type Mat struct {
	Width  int
	Height int
	W      []float32
}

/*
Assert ensures our code is not breaking down and halts the program.
*/
func Assert(assertion bool, msg string) {
	if !assertion {
		panic(msg)
	}
}

func zeros(size int) []float32 {
	// no need to initialize zero values
	return make([]float32, size)
}

/*
NewMat instantiates a new zero matrix with `height` rows of `width` columns.
*/
func NewMat(height int, width int) *Mat {
	Assert(height >= 0 && width >= 0, "mat32: negative matrix dimensions")
	return &Mat{
		Width:  width,
		Height: height,
		W:      zeros(height * width),
	}
}

/*
Size is the number of values held by the matrix.
*/
func (m *Mat) Size() int {
	return m.Width * m.Height
}

func (m *Mat) inBounds(row, col int) bool {
	return row >= 0 && row < m.Height && col >= 0 && col < m.Width
}

/*
At returns the value at row, col.
*/
func (m *Mat) At(row, col int) (float32, error) {
	if !m.inBounds(row, col) {
		return 0, errors.New("mat32: index (%d, %d) out of range for %dx%d matrix", row, col, m.Height, m.Width).
			Op("At")
	}
	return m.W[row*m.Width+col], nil
}

/*
Set stores v at row, col.
*/
func (m *Mat) Set(row, col int, v float32) error {
	if !m.inBounds(row, col) {
		return errors.New("mat32: index (%d, %d) out of range for %dx%d matrix", row, col, m.Height, m.Width).
			Op("Set")
	}
	m.W[row*m.Width+col] = v
	return nil
}

/*
Row returns row `i` as a contiguous slice sharing storage with the matrix.
The slice capacity ends at the row, so appending never touches row i+1.
*/
func (m *Mat) Row(i int) []float32 {
	Assert(i >= 0 && i < m.Height, "mat32: row index out of range")
	start := i * m.Width
	end := start + m.Width
	return m.W[start:end:end]
}

/*
Zero resets every value to 0.
*/
func (m *Mat) Zero() {
	clear(m.W)
}

/*
Clone makes a deep copy.
*/
func (m *Mat) Clone() *Mat {
	out := NewMat(m.Height, m.Width)
	copy(out.W, m.W)
	return out
}

/*
SameShape reports whether o has the same width and height as m.
*/
func (m *Mat) SameShape(o *Mat) bool {
	return m.Width == o.Width && m.Height == o.Height
}

/*
Equal reports whether both matrices have the same shape and bit-identical values.
*/
func (m *Mat) Equal(o *Mat) bool {
	if !m.SameShape(o) {
		return false
	}
	for i, v := range m.W {
		// compare bits so NaN payloads and -0 round-trip checks stay exact
		if math.Float32bits(v) != math.Float32bits(o.W[i]) {
			return false
		}
	}
	return true
}
