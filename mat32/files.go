package mat32

import (
	"bufio"
	"os"

	"github.com/getlantern/errors"
)

/*
SaveFile writes m to filename, replacing any existing file.
*/
func SaveFile(filename string, m *Mat, useVQ bool, opts ...CodecOption) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err).Op("SaveFile").With("file", filename)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr).Op("SaveFile").With("file", filename)
		}
	}()

	w := bufio.NewWriter(f)
	if err = Save(m, w, useVQ, opts...); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return errors.Wrap(err).Op("SaveFile").With("file", filename)
	}
	return nil
}

/*
LoadFile reads a matrix from filename.
*/
func LoadFile(filename string, opts ...CodecOption) (*Mat, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err).Op("LoadFile").With("file", filename)
	}
	defer f.Close()

	return Load(bufio.NewReader(f), opts...)
}
