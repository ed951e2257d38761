package mat32

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/getlantern/errors"

	"github.com/ruffrey/ricur/vq"
)

const (
	// MaxCodebookSize is the largest codebook an index byte can address.
	MaxCodebookSize = 256
	// MaxValues bounds width*height accepted by Load, so a corrupt header
	// cannot ask for an absurd allocation.
	MaxValues = 1 << 30
)

/*
Logger receives human readable progress lines. *log.Logger satisfies it.
*/
type Logger interface {
	Printf(format string, v ...any)
}

type discard struct{}

func (discard) Printf(string, ...any) {}

type codecConfig struct {
	logger       Logger
	codebookSize int
}

/*
CodecOption configures Save and Load.
*/
type CodecOption func(*codecConfig)

/*
WithLogger sends codec progress lines to l.
*/
func WithLogger(l Logger) CodecOption {
	return func(c *codecConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

/*
WithCodebookSize sets the VQ target codebook size, 1 to MaxCodebookSize.
The default is MaxCodebookSize.
*/
func WithCodebookSize(n int) CodecOption {
	Assert(n >= 1 && n <= MaxCodebookSize, "mat32: codebook size must be in [1, 256]")
	return func(c *codecConfig) {
		c.codebookSize = n
	}
}

func gatherCodecOptions(opts []CodecOption) codecConfig {
	c := codecConfig{logger: discard{}, codebookSize: MaxCodebookSize}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

/*
Header is the fixed little-endian prefix of every matrix stream.
CodebookSize 0 means the values follow uncompressed.
*/
type Header struct {
	Width        int32
	Height       int32
	CodebookSize int32
}

/*
ReadHeader reads and validates the stream header.
*/
func ReadHeader(r io.Reader) (Header, error) {
	var hdr Header
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return hdr, truncated("header", err)
	}
	width, height, vqSize := int64(hdr.Width), int64(hdr.Height), int(hdr.CodebookSize)
	if width < 0 || height < 0 {
		return hdr, errors.New("mat32: negative matrix dimensions %dx%d", height, width).Op("Load")
	}
	if width*height > MaxValues {
		return hdr, errors.New("mat32: %dx%d matrix exceeds %d values", height, width, MaxValues).Op("Load")
	}
	if vqSize < 0 || vqSize > MaxCodebookSize {
		return hdr, errors.New("mat32: codebook size %d outside [0, %d]", vqSize, MaxCodebookSize).Op("Load")
	}
	return hdr, nil
}

/*
Save writes m to w in the binary matrix format. With useVQ the values are
replaced by one-byte indices into a codebook built over the matrix.
*/
func Save(m *Mat, w io.Writer, useVQ bool, opts ...CodecOption) error {
	cfg := gatherCodecOptions(opts)
	if m.Width > math.MaxInt32 || m.Height > math.MaxInt32 {
		return errors.New("mat32: %dx%d matrix does not fit the int32 header", m.Height, m.Width).Op("Save")
	}
	hdr := Header{Width: int32(m.Width), Height: int32(m.Height)}

	if !useVQ {
		cfg.logger.Printf("Saving matrix without VQ...")
		if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
			return writeError(err)
		}
		buf := make([]byte, 4*m.Width)
		for r := 0; r < m.Height; r++ {
			putFloats(buf, m.Row(r))
			if _, err := w.Write(buf); err != nil {
				return writeError(err)
			}
		}
		return nil
	}

	q := vq.New()
	for _, v := range m.W {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return errors.New("mat32: cannot quantize non-finite value %v", v).Op("Save")
		}
		q.Add(v)
	}
	cfg.logger.Printf("Saving matrix with VQ %d...", cfg.codebookSize)

	var distortion float64
	if q.Count() > 0 {
		distortion = q.BuildCodebook(cfg.codebookSize)
	}
	codebook := q.Codebook()
	cfg.logger.Printf("Distortion: %g, vqSize: %d", distortion, len(codebook))

	hdr.CodebookSize = int32(len(codebook))
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return writeError(err)
	}
	cb := make([]byte, 4*len(codebook))
	putFloats(cb, codebook)
	if _, err := w.Write(cb); err != nil {
		return writeError(err)
	}

	idx := make([]byte, m.Width)
	for r := 0; r < m.Height; r++ {
		for c, v := range m.Row(r) {
			idx[c] = byte(q.ComputeVQ(v))
		}
		if _, err := w.Write(idx); err != nil {
			return writeError(err)
		}
	}
	return nil
}

/*
Load reads a matrix written by Save. Compressed matrices come back with
every value replaced by its codebook entry.
*/
func Load(r io.Reader, opts ...CodecOption) (*Mat, error) {
	cfg := gatherCodecOptions(opts)

	hdr, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	width, height, vqSize := int(hdr.Width), int(hdr.Height), int(hdr.CodebookSize)
	cfg.logger.Printf("Loading matrix. width: %d, height: %d, vqSize: %d", width, height, vqSize)

	m := NewMat(height, width)
	if vqSize == 0 {
		buf := make([]byte, 4*width)
		for row := 0; row < height; row++ {
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, truncated("values", err).With("row", row)
			}
			getFloats(m.Row(row), buf)
		}
		return m, nil
	}

	cbBuf := make([]byte, 4*vqSize)
	if _, err := io.ReadFull(r, cbBuf); err != nil {
		return nil, truncated("codebook", err)
	}
	codebook := make([]float32, vqSize)
	getFloats(codebook, cbBuf)

	idx := make([]byte, width)
	for row := 0; row < height; row++ {
		if _, err := io.ReadFull(r, idx); err != nil {
			return nil, truncated("indices", err).With("row", row)
		}
		dst := m.Row(row)
		for c, b := range idx {
			if int(b) >= vqSize {
				return nil, errors.New("mat32: codebook index %d outside [0, %d)", b, vqSize).
					Op("Load").
					With("row", row).
					With("col", c)
			}
			dst[c] = codebook[b]
		}
	}
	return m, nil
}

func putFloats(dst []byte, src []float32) {
	for i, v := range src {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

func getFloats(dst []float32, src []byte) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
}

func writeError(err error) error {
	return errors.New("mat32: write failed: %v", err).Op("Save")
}

func truncated(section string, err error) errors.Error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return errors.New("mat32: truncated matrix stream reading %s: %v", section, err).Op("Load")
}
