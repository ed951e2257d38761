package mat32

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruffrey/ricur/vq"
)

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Printf(format string, v ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

type failingWriter struct {
	budget int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if len(p) > w.budget {
		return 0, errors.New("disk full")
	}
	w.budget -= len(p)
	return len(p), nil
}

func header(width, height, codebookSize int32) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, Header{Width: width, Height: height, CodebookSize: codebookSize})
	return buf.Bytes()
}

func saveBytes(t *testing.T, m *Mat, useVQ bool, opts ...CodecOption) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Save(m, &buf, useVQ, opts...))
	return buf.Bytes()
}

func TestSaveRaw(t *testing.T) {
	t.Run("writes a 2x2 matrix as 28 bytes", func(t *testing.T) {
		m := NewMat(2, 2)
		copy(m.W, []float32{1.0, -2.5, 0.25, 3.0})
		data := saveBytes(t, m, false)
		require.Len(t, data, 28)

		want := header(2, 2, 0)
		for _, v := range []float32{1.0, -2.5, 0.25, 3.0} {
			want = binary.LittleEndian.AppendUint32(want, math.Float32bits(v))
		}
		require.Equal(t, want, data)
	})
	t.Run("round trips bit for bit", func(t *testing.T) {
		m := RandMat(NewRand(3), 7, 13)
		m.W[0] = float32(math.Copysign(0, -1))
		m.W[1] = math.Float32frombits(0x7fc00001)
		m.W[2] = float32(math.Inf(1))
		m.W[3] = math.SmallestNonzeroFloat32

		got, err := Load(bytes.NewReader(saveBytes(t, m, false)))
		require.NoError(t, err)
		require.True(t, m.Equal(got))
	})
	t.Run("round trips empty matrices", func(t *testing.T) {
		for _, m := range []*Mat{NewMat(0, 0), NewMat(0, 5), NewMat(5, 0)} {
			data := saveBytes(t, m, false)
			require.Len(t, data, 12)
			got, err := Load(bytes.NewReader(data))
			require.NoError(t, err)
			require.True(t, m.Equal(got))
		}
	})
	t.Run("logs the mode", func(t *testing.T) {
		l := &recordingLogger{}
		saveBytes(t, NewMat(1, 1), false, WithLogger(l))
		require.Equal(t, []string{"Saving matrix without VQ..."}, l.lines)
	})
	t.Run("returns write errors", func(t *testing.T) {
		for _, budget := range []int{0, 12, 20} {
			err := Save(NewMat(2, 2), &failingWriter{budget: budget}, false)
			require.Error(t, err)
			require.ErrorContains(t, err, "disk full")
		}
	})
}

func TestSaveVQ(t *testing.T) {
	t.Run("writes codebook then one index byte per value", func(t *testing.T) {
		m := NewMat(2, 2)
		copy(m.W, []float32{1, 2, 2, 1})
		data := saveBytes(t, m, true)
		require.Len(t, data, 12+2*4+4)
		require.Equal(t, header(2, 2, 2), data[:12])
		require.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(data[12:])))
		require.Equal(t, float32(2), math.Float32frombits(binary.LittleEndian.Uint32(data[16:])))
		require.Equal(t, []byte{0, 1, 1, 0}, data[20:])
	})
	t.Run("a single distinct value gives a codebook of one", func(t *testing.T) {
		m := NewMat(3, 3)
		for i := range m.W {
			m.W[i] = 0.75
		}
		data := saveBytes(t, m, true)
		require.Equal(t, header(3, 3, 1), data[:12])

		got, err := Load(bytes.NewReader(data))
		require.NoError(t, err)
		require.True(t, m.Equal(got))
	})
	t.Run("loaded values come from the codebook and match the distortion", func(t *testing.T) {
		m := RandMat(NewRand(11), 40, 50)
		l := &recordingLogger{}
		data := saveBytes(t, m, true, WithLogger(l))

		hdr, err := ReadHeader(bytes.NewReader(data))
		require.NoError(t, err)
		require.Greater(t, hdr.CodebookSize, int32(1))
		require.LessOrEqual(t, hdr.CodebookSize, int32(256))
		codebook := make([]float32, hdr.CodebookSize)
		getFloats(codebook, data[12:])
		require.Len(t, data, 12+4*len(codebook)+m.Size())

		got, err := Load(bytes.NewReader(data))
		require.NoError(t, err)
		require.True(t, m.SameShape(got))

		var sse float64
		for i, v := range got.W {
			require.True(t, slices.Contains(codebook, v), "value %v not in codebook", v)
			d := float64(m.W[i]) - float64(v)
			sse += d * d
		}

		q := vq.New()
		for _, v := range m.W {
			q.Add(v)
		}
		distortion := q.BuildCodebook(256)
		assert.InDelta(t, distortion, sse, 1e-9*distortion+1e-12)
		require.Contains(t, l.lines, fmt.Sprintf("Distortion: %g, vqSize: %d", distortion, hdr.CodebookSize))
	})
	t.Run("respects the codebook size option", func(t *testing.T) {
		m := RandMat(NewRand(5), 10, 10)
		data := saveBytes(t, m, true, WithCodebookSize(4))
		hdr, err := ReadHeader(bytes.NewReader(data))
		require.NoError(t, err)
		require.Greater(t, hdr.CodebookSize, int32(0))
		require.LessOrEqual(t, hdr.CodebookSize, int32(4))
		require.Len(t, data, 12+4*int(hdr.CodebookSize)+100)
	})
	t.Run("codebook size option panics out of range", func(t *testing.T) {
		require.Panics(t, func() { WithCodebookSize(0) })
		require.Panics(t, func() { WithCodebookSize(257) })
	})
	t.Run("empty matrix writes an empty codebook", func(t *testing.T) {
		data := saveBytes(t, NewMat(0, 3), true)
		require.Equal(t, header(3, 0, 0), data)
	})
	t.Run("rejects non-finite values", func(t *testing.T) {
		m := NewMat(1, 2)
		m.W[1] = float32(math.NaN())
		err := Save(m, &bytes.Buffer{}, true)
		require.Error(t, err)
		require.ErrorContains(t, err, "non-finite")
	})
}

func TestLoad(t *testing.T) {
	raw := NewMat(3, 2)
	copy(raw.W, []float32{1, 2, 3, 4, 5, 6})

	t.Run("reports truncation at every cut point", func(t *testing.T) {
		for _, useVQ := range []bool{false, true} {
			var buf bytes.Buffer
			require.NoError(t, Save(raw, &buf, useVQ))
			data := buf.Bytes()
			for cut := 0; cut < len(data); cut++ {
				m, err := Load(bytes.NewReader(data[:cut]))
				require.Error(t, err, "vq=%v cut=%d", useVQ, cut)
				require.ErrorContains(t, err, "truncated")
				require.Nil(t, m)
			}
		}
	})
	t.Run("rejects negative dimensions", func(t *testing.T) {
		_, err := Load(bytes.NewReader(header(-1, 2, 0)))
		require.ErrorContains(t, err, "negative")
		_, err = Load(bytes.NewReader(header(2, -1, 0)))
		require.ErrorContains(t, err, "negative")
	})
	t.Run("rejects codebook sizes outside [0, 256]", func(t *testing.T) {
		for _, n := range []int32{-1, 257, 1 << 20} {
			_, err := Load(bytes.NewReader(header(1, 1, n)))
			require.Error(t, err)
			require.ErrorContains(t, err, "codebook size")
		}
	})
	t.Run("rejects oversized headers before allocating", func(t *testing.T) {
		_, err := Load(bytes.NewReader(header(math.MaxInt32, math.MaxInt32, 0)))
		require.Error(t, err)
		require.ErrorContains(t, err, "exceeds")
	})
	t.Run("rejects an index past the codebook", func(t *testing.T) {
		data := header(2, 1, 2)
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(0.5))
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(1.5))
		data = append(data, 1, 2)
		m, err := Load(bytes.NewReader(data))
		require.Error(t, err)
		require.ErrorContains(t, err, "codebook index 2")
		require.Nil(t, m)
	})
	t.Run("accepts the full 256 entry codebook", func(t *testing.T) {
		data := header(1, 1, 256)
		for i := 0; i < 256; i++ {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(float32(i)))
		}
		data = append(data, 255)
		m, err := Load(bytes.NewReader(data))
		require.NoError(t, err)
		require.Equal(t, []float32{255}, m.W)
	})
	t.Run("logs the header", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Save(raw, &buf, false))
		l := &recordingLogger{}
		_, err := Load(&buf, WithLogger(l))
		require.NoError(t, err)
		require.Equal(t, []string{"Loading matrix. width: 2, height: 3, vqSize: 0"}, l.lines)
	})
}

func benchmarkSave(b *testing.B, size int, useVQ bool) {
	m := RandMat(NewRand(1), size, size)
	var buf bytes.Buffer
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		if err := Save(m, &buf, useVQ); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSaveRaw64(b *testing.B)  { benchmarkSave(b, 64, false) }
func BenchmarkSaveRaw256(b *testing.B) { benchmarkSave(b, 256, false) }
func BenchmarkSaveVQ64(b *testing.B)   { benchmarkSave(b, 64, true) }
func BenchmarkSaveVQ256(b *testing.B)  { benchmarkSave(b, 256, true) }
