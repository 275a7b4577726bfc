package domain

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// CommentMarker starts a line that carries no frame, even when the text after
// it contains hex letters.
const CommentMarker = "#"

// Frame is a single APDU command as a string of hex digits.
// A frame is the atomic unit submitted to a transport session.
type Frame string

// Empty reports whether the frame carries no hex digits and must be skipped.
func (f Frame) Empty() bool {
	return len(f) == 0
}

// Bytes decodes the frame into raw APDU bytes.
// Odd-length frames are rejected with ErrOddLengthFrame.
func (f Frame) Bytes() ([]byte, error) {
	if len(f)%2 != 0 {
		return nil, fmt.Errorf("%w: %d hex digits", ErrOddLengthFrame, len(f))
	}
	b, err := hex.DecodeString(string(f))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return b, nil
}

// String returns the hex digits of the frame.
func (f Frame) String() string {
	return string(f)
}

// Normalize extracts a frame from a raw input line.
//
// When condition is non-empty and the line starts with it, every occurrence of
// condition is removed from the line. The line is then trimmed; a line that
// starts with CommentMarker yields an empty frame, otherwise every character
// that is not a hex digit is dropped. Normalize never fails: malformed
// content collapses to an empty frame.
func Normalize(line, condition string) Frame {
	if condition != "" && strings.HasPrefix(line, condition) {
		line = strings.ReplaceAll(line, condition, "")
	}
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, CommentMarker) {
		return ""
	}

	var b strings.Builder
	b.Grow(len(line))
	for i := 0; i < len(line); i++ {
		if isHexDigit(line[i]) {
			b.WriteByte(line[i])
		}
	}
	return Frame(b.String())
}

func isHexDigit(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'f':
		return true
	case c >= 'A' && c <= 'F':
		return true
	default:
		return false
	}
}

// StatusOK is the ISO 7816 status word for a successful command.
const StatusOK uint16 = 0x9000

// Response is what a transport returns for one exchanged frame.
type Response struct {
	// Data is the response payload without the trailing status word.
	Data []byte

	// SW is the two-byte status word.
	SW uint16
}

// OK reports whether the device answered with StatusOK.
func (r Response) OK() bool {
	return r.SW == StatusOK
}
