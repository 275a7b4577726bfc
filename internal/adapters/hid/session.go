// Package hid implements ports.Session over a Ledger device attached as a
// USB HID device.
package hid

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/karalabe/hid"

	"github.com/bft-labs/apdureplay/internal/domain"
	"github.com/bft-labs/apdureplay/internal/ports"
)

// LedgerVendorID is the USB vendor ID of Ledger devices.
const LedgerVendorID = 0x2c97

// ledgerUsagePage identifies the APDU interface on devices exposing several.
const ledgerUsagePage = 0xffa0

var (
	// ErrNoDevice is returned when no matching HID device is attached.
	ErrNoDevice = errors.New("hid: no device found")

	// ErrUnsupported is returned when the binary was built without HID support.
	ErrUnsupported = errors.New("hid: not supported on this platform")

	// ErrBroken is returned for exchanges after an abandoned one; the device
	// may still deliver the stale response.
	ErrBroken = errors.New("hid: session broken by an abandoned exchange")
)

// device is the subset of *hid.Device used by Session.
type device interface {
	Write(b []byte) (int, error)
	Read(b []byte) (int, error)
	Close() error
}

// Options configures Open.
type Options struct {
	VendorID  uint16
	ProductID uint16 // 0 matches any product
	Timeout   time.Duration
	Logger    ports.Logger
}

// Session implements ports.Session over a HID device.
type Session struct {
	dev     device
	channel uint16
	timeout time.Duration

	mu     sync.Mutex
	broken bool

	closeOnce sync.Once
	closeErr  error
}

// Open finds and opens the first matching device.
func Open(opts Options) (*Session, error) {
	if !hid.Supported() {
		return nil, ErrUnsupported
	}
	if opts.VendorID == 0 {
		opts.VendorID = LedgerVendorID
	}

	for _, info := range hid.Enumerate(opts.VendorID, opts.ProductID) {
		if info.Interface != 0 && info.UsagePage != ledgerUsagePage {
			continue
		}
		dev, err := info.Open()
		if err != nil {
			return nil, fmt.Errorf("open hid %s: %w", info.Path, err)
		}
		if opts.Logger != nil {
			opts.Logger.Info("connected",
				ports.String("product", info.Product),
				ports.String("path", info.Path),
			)
		}
		return newSession(dev, opts.Timeout), nil
	}
	return nil, fmt.Errorf("%w: vendor %#04x", ErrNoDevice, opts.VendorID)
}

func newSession(dev device, timeout time.Duration) *Session {
	return &Session{dev: dev, channel: DefaultChannel, timeout: timeout}
}

type exchangeResult struct {
	resp domain.Response
	err  error
}

// Exchange writes frame and waits for the response.
// HID reads cannot be interrupted, so on cancellation or timeout the
// exchange is abandoned and the session refuses further exchanges.
func (s *Session) Exchange(ctx context.Context, frame domain.Frame) (domain.Response, error) {
	apdu, err := frame.Bytes()
	if err != nil {
		return domain.Response{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.Response{}, err
	}
	if s.isBroken() {
		return domain.Response{}, ErrBroken
	}

	ch := make(chan exchangeResult, 1)
	go func() {
		resp, err := s.roundTrip(apdu)
		ch <- exchangeResult{resp: resp, err: err}
	}()

	var timeout <-chan time.Time
	if s.timeout > 0 {
		t := time.NewTimer(s.timeout)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case res := <-ch:
		return res.resp, res.err
	case <-ctx.Done():
		s.markBroken()
		return domain.Response{}, ctx.Err()
	case <-timeout:
		s.markBroken()
		return domain.Response{}, fmt.Errorf("hid: no response within %s", s.timeout)
	}
}

func (s *Session) roundTrip(apdu []byte) (domain.Response, error) {
	packets, err := Wrap(s.channel, apdu)
	if err != nil {
		return domain.Response{}, err
	}
	for _, p := range packets {
		// report ID 0 prefix
		if _, err := s.dev.Write(append([]byte{0x00}, p...)); err != nil {
			return domain.Response{}, fmt.Errorf("hid write: %w", err)
		}
	}

	asm := NewAssembler(s.channel)
	buf := make([]byte, PacketSize)
	for {
		n, err := s.dev.Read(buf)
		if err != nil {
			return domain.Response{}, fmt.Errorf("hid read: %w", err)
		}
		done, err := asm.Add(buf[:n])
		if err != nil {
			return domain.Response{}, err
		}
		if done {
			return asm.Response()
		}
	}
}

func (s *Session) isBroken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.broken
}

func (s *Session) markBroken() {
	s.mu.Lock()
	s.broken = true
	s.mu.Unlock()
}

// Close releases the device once; later calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.dev.Close()
	})
	return s.closeErr
}

var _ ports.Session = (*Session)(nil)
