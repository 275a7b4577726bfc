package apdureplay

import (
	"context"
	"io"
	"time"

	"github.com/bft-labs/apdureplay/internal/adapters/fs"
	"github.com/bft-labs/apdureplay/internal/adapters/hid"
	"github.com/bft-labs/apdureplay/internal/adapters/stream"
	"github.com/bft-labs/apdureplay/internal/app"
	"github.com/bft-labs/apdureplay/internal/domain"
	"github.com/bft-labs/apdureplay/internal/ports"
)

type (
	// Frame is one APDU command as hex digits.
	Frame = domain.Frame

	// Response is the payload and status word returned for a frame.
	Response = domain.Response

	// Session is an open transport. Replay closes it.
	Session = ports.Session

	// LineSource yields raw text lines, io.EOF at the end.
	LineSource = ports.LineSource

	// Logger is the structured logging interface.
	Logger = ports.Logger

	// LogField is a structured log field.
	LogField = ports.Field

	// ExchangeEmitter observes every exchange of a run.
	ExchangeEmitter = app.ExchangeEmitter

	// Stats summarizes a run.
	Stats = app.Stats

	// DialOptions configures DialTCP.
	DialOptions = stream.DialOptions

	// HIDOptions configures OpenHID.
	HIDOptions = hid.Options
)

// Errors returned by Replay, checked with errors.Is.
var (
	ErrInput             = domain.ErrInput
	ErrInputExhausted    = domain.ErrInputExhausted
	ErrUnsupportedFormat = domain.ErrUnsupportedFormat
	ErrTransportFault    = domain.ErrTransportFault
	ErrOddLengthFrame    = domain.ErrOddLengthFrame
)

// StatusOK is the status word of a successful command.
const StatusOK = domain.StatusOK

// Normalize extracts a frame from a raw input line.
func Normalize(line, condition string) Frame {
	return domain.Normalize(line, condition)
}

// Replay exchanges every frame of source over session, in order, and closes
// session before returning. The first source or transport error stops the run.
func Replay(ctx context.Context, source LineSource, session Session, opts ...Option) (Stats, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	r := app.NewReplayer(app.ReplayConfig{Condition: o.condition}, o.logger, o.exchangeEmitter())
	return r.Run(ctx, source, session)
}

// FileLines reads the lines of a text file.
func FileLines(path string) LineSource {
	return fs.NewFileSource(path)
}

// FollowLines reads the lines of a text file and keeps waiting for appended
// lines until the file is removed or the context is canceled.
func FollowLines(path string) LineSource {
	return fs.NewFollowSource(path)
}

// ReaderLine reads a single line from r, typically os.Stdin.
func ReaderLine(r io.Reader) LineSource {
	return fs.NewInteractiveSource(r)
}

// LedgerLiveLog is the Ledger Live log source. It always fails with
// ErrUnsupportedFormat.
func LedgerLiveLog(path string) LineSource {
	return fs.NewLogSource(path)
}

// DialTCP connects to an APDU server such as the Speculos emulator.
func DialTCP(ctx context.Context, host string, port int, opts DialOptions) (Session, error) {
	s, err := stream.DialTCP(ctx, host, port, opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// OpenSerial opens a serial line speaking the length-prefixed APDU framing.
func OpenSerial(path string, baud int, timeout time.Duration) (Session, error) {
	s, err := stream.OpenSerial(path, baud, timeout)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// OpenHID opens the first Ledger device found on the USB bus.
func OpenHID(opts HIDOptions) (Session, error) {
	s, err := hid.Open(opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewStreamSession wraps an already open stream, such as a net.Conn, in the
// length-prefixed APDU framing.
func NewStreamSession(rwc io.ReadWriteCloser, timeout time.Duration) Session {
	return stream.NewSession(rwc, timeout)
}
