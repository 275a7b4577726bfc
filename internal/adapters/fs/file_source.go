package fs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bft-labs/apdureplay/internal/domain"
	"github.com/bft-labs/apdureplay/internal/ports"
)

// FileSource implements ports.LineSource over a plain text file,
// one line per physical line, in file order.
type FileSource struct {
	path string
	f    *os.File
	r    *bufio.Reader
}

// NewFileSource creates a source for path. The file is opened by Open.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Open opens the file. A missing, unreadable or non-regular path fails with
// domain.ErrInput.
func (s *FileSource) Open(ctx context.Context) error {
	f, err := openRegular(s.path)
	if err != nil {
		return err
	}
	s.f = f
	s.r = bufio.NewReader(f)
	return nil
}

// Next returns the next line of the file, or io.EOF once it is exhausted.
func (s *FileSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.r == nil {
		return "", fmt.Errorf("%w: %s not open", domain.ErrInput, s.path)
	}

	line, err := s.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return "", io.EOF
			}
			// last line without terminator
			return trimEOL(line), nil
		}
		return "", fmt.Errorf("%w: read %s: %w", domain.ErrInput, s.path, err)
	}
	return trimEOL(line), nil
}

// Close releases the file handle. It is safe to call more than once.
func (s *FileSource) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f, s.r = nil, nil
	return err
}

func openRegular(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrInput, path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: stat %s: %w", domain.ErrInput, path, err)
	}
	if fi.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInput, path)
	}
	return f, nil
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

var _ ports.LineSource = (*FileSource)(nil)
