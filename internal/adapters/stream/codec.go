package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/bft-labs/apdureplay/internal/domain"
)

// MaxResponseLen bounds the data length accepted in a response header.
const MaxResponseLen = 64 * 1024

// ErrResponseTooLarge is returned when a response header announces more than
// MaxResponseLen bytes.
var ErrResponseTooLarge = errors.New("stream: response too large")

// WriteAPDU writes one length-prefixed command.
func WriteAPDU(w io.Writer, apdu []byte) error {
	buf := make([]byte, 4+len(apdu))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(apdu)))
	copy(buf[4:], apdu)
	_, err := w.Write(buf)
	return err
}

// ReadResponse reads one length-prefixed response and its status word.
func ReadResponse(r io.Reader) (domain.Response, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return domain.Response{}, fmt.Errorf("read length: %w", err)
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > MaxResponseLen {
		return domain.Response{}, fmt.Errorf("%w: %d bytes", ErrResponseTooLarge, n)
	}

	buf := make([]byte, int(n)+2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return domain.Response{}, fmt.Errorf("read data: %w", err)
	}
	return domain.Response{
		Data: buf[:n],
		SW:   binary.BigEndian.Uint16(buf[n:]),
	}, nil
}
