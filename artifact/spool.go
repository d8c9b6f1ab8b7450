package artifact

import (
	"fmt"
	"io"
	"os"
)

// spoolFile is a downloaded body parked in a temporary file. Closing it
// removes the file.
type spoolFile struct {
	*os.File
}

// spool copies the body written by fill into a temporary file and rewinds
// it. fill must not retain the writer.
func spool(fill func(w io.Writer) error) (*spoolFile, error) {
	f, err := os.CreateTemp("", "pipekit-artifact-*")
	if err != nil {
		return nil, fmt.Errorf("create spool file: %w", err)
	}
	sf := &spoolFile{File: f}

	if err := fill(f); err != nil {
		sf.Close()
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		sf.Close()
		return nil, fmt.Errorf("rewind spool file: %w", err)
	}
	return sf, nil
}

// Size returns the number of bytes spooled.
func (s *spoolFile) Size() (int64, error) {
	fi, err := s.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

func (s *spoolFile) Close() error {
	err := s.File.Close()
	if rmErr := os.Remove(s.Name()); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}

// memberReader reads one zip member out of a spooled archive. Closing it
// releases the member and the archive.
type memberReader struct {
	io.ReadCloser
	archive *spoolFile
}

func (m *memberReader) Close() error {
	err := m.ReadCloser.Close()
	if archErr := m.archive.Close(); err == nil {
		err = archErr
	}
	return err
}
