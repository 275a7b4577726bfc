package fs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/apdureplay/internal/domain"
	"github.com/bft-labs/apdureplay/internal/ports"
)

// FollowSource implements ports.LineSource over a file that is still being
// written. At end of file it waits for fsnotify write events and yields the
// appended lines. The sequence ends when the file is removed or renamed.
//
// The parent directory is watched rather than the file itself: inotify does
// not report removal of a file while this source still holds it open.
type FollowSource struct {
	path    string
	f       *os.File
	r       *bufio.Reader
	watcher *fsnotify.Watcher
	offset  int64
	partial strings.Builder
}

// NewFollowSource creates a following source for path.
func NewFollowSource(path string) *FollowSource {
	return &FollowSource{path: path}
}

// Open opens the file and starts watching it.
func (s *FollowSource) Open(ctx context.Context) error {
	f, err := openRegular(s.path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		f.Close()
		return fmt.Errorf("%w: create watcher: %w", domain.ErrInput, err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		f.Close()
		return fmt.Errorf("%w: watch %s: %w", domain.ErrInput, s.path, err)
	}

	s.f = f
	s.r = bufio.NewReader(f)
	s.watcher = watcher
	return nil
}

// Next returns the next complete line, blocking at end of file until more
// data is appended, the file goes away, or ctx is canceled.
func (s *FollowSource) Next(ctx context.Context) (string, error) {
	if s.r == nil {
		return "", fmt.Errorf("%w: %s not open", domain.ErrInput, s.path)
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		chunk, err := s.r.ReadString('\n')
		s.offset += int64(len(chunk))
		s.partial.WriteString(chunk)
		if err == nil {
			line := s.partial.String()
			s.partial.Reset()
			return trimEOL(line), nil
		}
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: read %s: %w", domain.ErrInput, s.path, err)
		}

		if err := s.wait(ctx); err != nil {
			if errors.Is(err, io.EOF) && s.partial.Len() > 0 {
				line := s.partial.String()
				s.partial.Reset()
				return trimEOL(line), nil
			}
			return "", err
		}
	}
}

// wait blocks until the file changes. It returns io.EOF when the file is
// removed or renamed.
func (s *FollowSource) wait(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-s.watcher.Events:
			if !ok {
				return io.EOF
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				return io.EOF
			}
			if event.Has(fsnotify.Write) {
				return s.rewindIfTruncated()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return io.EOF
			}
			return fmt.Errorf("%w: watch %s: %w", domain.ErrInput, s.path, err)
		}
	}
}

// rewindIfTruncated restarts from the top of the file when it shrank below
// the current read offset.
func (s *FollowSource) rewindIfTruncated() error {
	fi, err := s.f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", domain.ErrInput, s.path, err)
	}
	if fi.Size() >= s.offset {
		return nil
	}
	if _, err := s.f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek %s: %w", domain.ErrInput, s.path, err)
	}
	s.r.Reset(s.f)
	s.offset = 0
	s.partial.Reset()
	return nil
}

// Close stops watching and releases the file handle.
func (s *FollowSource) Close() error {
	var errs []error
	if s.watcher != nil {
		errs = append(errs, s.watcher.Close())
		s.watcher = nil
	}
	if s.f != nil {
		errs = append(errs, s.f.Close())
		s.f, s.r = nil, nil
	}
	return errors.Join(errs...)
}

var _ ports.LineSource = (*FollowSource)(nil)
