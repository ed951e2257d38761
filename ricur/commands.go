package main

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/getlantern/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/ruffrey/ricur/mat32"
)

func info(filename string) error {
	if filename == "" {
		return errors.New("ricur: --in is required").Op("info")
	}
	f, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err).Op("info").With("file", filename)
	}
	hdr, err := mat32.ReadHeader(f)
	f.Close()
	if err != nil {
		return err
	}

	m, err := mat32.LoadFile(filename, mat32.WithLogger(logger))
	if err != nil {
		return err
	}

	fmt.Println("file", filename)
	fmt.Println("width", hdr.Width)
	fmt.Println("height", hdr.Height)
	fmt.Println("codebookSize", hdr.CodebookSize)
	if m.Size() == 0 {
		fmt.Println("empty matrix")
		return nil
	}
	s := summarize(m.W)
	fmt.Println("min", s.min)
	fmt.Println("max", s.max)
	fmt.Println("mean", s.mean)
	fmt.Println("median", s.median)
	fmt.Println("l2norm", s.norm)
	fmt.Println("distinct", s.distinct)
	return nil
}

func pack(in, out string, codebookSize int) error {
	if in == "" || out == "" {
		return errors.New("ricur: --in and --out are required").Op("pack")
	}
	if codebookSize < 1 || codebookSize > mat32.MaxCodebookSize {
		return errors.New("ricur: codebook size %d outside [1, %d]", codebookSize, mat32.MaxCodebookSize).
			Op("pack").
			With("codebook", codebookSize)
	}
	m, err := mat32.LoadFile(in, mat32.WithLogger(logger))
	if err != nil {
		return err
	}
	err = mat32.SaveFile(out, m, true, mat32.WithLogger(logger), mat32.WithCodebookSize(codebookSize))
	if err != nil {
		return err
	}

	packed, err := mat32.LoadFile(out)
	if err != nil {
		return err
	}
	var distortion float64
	for i, v := range m.W {
		d := float64(v) - float64(packed.W[i])
		distortion += d * d
	}
	fmt.Println("distortion", distortion)
	return printRatio(in, out)
}

func unpack(in, out string) error {
	if in == "" || out == "" {
		return errors.New("ricur: --in and --out are required").Op("unpack")
	}
	m, err := mat32.LoadFile(in, mat32.WithLogger(logger))
	if err != nil {
		return err
	}
	if err = mat32.SaveFile(out, m, false, mat32.WithLogger(logger)); err != nil {
		return err
	}
	return printRatio(in, out)
}

func printRatio(in, out string) error {
	inInfo, err := os.Stat(in)
	if err != nil {
		return errors.Wrap(err).With("file", in)
	}
	outInfo, err := os.Stat(out)
	if err != nil {
		return errors.Wrap(err).With("file", out)
	}
	fmt.Println("bytes", inInfo.Size(), "->", outInfo.Size())
	if inInfo.Size() > 0 {
		fmt.Println("ratio", float64(outInfo.Size())/float64(inInfo.Size()))
	}
	return nil
}

type stats struct {
	min, max, mean, median, norm float64
	distinct                     int
}

func summarize(w []float32) stats {
	values := make([]float64, len(w))
	for i, v := range w {
		values[i] = float64(v)
	}
	s := stats{
		min:  floats.Min(values),
		max:  floats.Max(values),
		mean: floats.Sum(values) / float64(len(values)),
		norm: floats.Norm(values, 2),
	}
	s.median = median(values)
	for i, v := range values {
		if i == 0 || v != values[i-1] {
			s.distinct++
		}
	}
	return s
}

/*
median sorts values in place and returns the middle one.
*/
func median(values []float64) float64 {
	sort.Float64s(values)
	lenValues := len(values)
	half := lenValues / 2
	if math.Remainder(float64(lenValues), 2) != 0.0 {
		return values[half]
	}
	return (values[half-1] + values[half]) / 2.0
}
