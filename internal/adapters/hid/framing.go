package hid

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bft-labs/apdureplay/internal/domain"
)

// Ledger HID framing constants.
const (
	PacketSize     = 64
	DefaultChannel = 0x0101
	tagAPDU        = 0x05
	headerLen      = 5 // channel(2) + tag(1) + sequence(2)
)

var (
	ErrShortPacket    = errors.New("hid: short packet")
	ErrChannel        = errors.New("hid: unexpected channel")
	ErrTag            = errors.New("hid: unexpected tag")
	ErrSequence       = errors.New("hid: unexpected sequence index")
	ErrShortResponse  = errors.New("hid: response shorter than status word")
	ErrCommandTooLong = errors.New("hid: command too long")
)

// Wrap splits an APDU into zero-padded packets of PacketSize bytes.
// The payload stream is the 2-byte big-endian APDU length followed by the
// APDU; every packet carries the channel, the APDU tag and its sequence index.
func Wrap(channel uint16, apdu []byte) ([][]byte, error) {
	if len(apdu) > 0xffff {
		return nil, fmt.Errorf("%w: %d bytes", ErrCommandTooLong, len(apdu))
	}
	payload := make([]byte, 2+len(apdu))
	binary.BigEndian.PutUint16(payload, uint16(len(apdu)))
	copy(payload[2:], apdu)

	var packets [][]byte
	for seq := uint16(0); len(payload) > 0; seq++ {
		packet := make([]byte, PacketSize)
		binary.BigEndian.PutUint16(packet[0:2], channel)
		packet[2] = tagAPDU
		binary.BigEndian.PutUint16(packet[3:5], seq)
		n := copy(packet[headerLen:], payload)
		payload = payload[n:]
		packets = append(packets, packet)
	}
	return packets, nil
}

// Assembler reassembles a response from the packets of one exchange.
type Assembler struct {
	channel uint16
	seq     uint16
	length  int
	data    []byte
}

// NewAssembler creates an assembler expecting packets on channel.
func NewAssembler(channel uint16) *Assembler {
	return &Assembler{channel: channel, length: -1}
}

// Add consumes one packet. It reports true once the full response arrived.
func (a *Assembler) Add(packet []byte) (bool, error) {
	if len(packet) < headerLen {
		return false, ErrShortPacket
	}
	if ch := binary.BigEndian.Uint16(packet[0:2]); ch != a.channel {
		return false, fmt.Errorf("%w: %#04x", ErrChannel, ch)
	}
	if packet[2] != tagAPDU {
		return false, fmt.Errorf("%w: %#02x", ErrTag, packet[2])
	}
	if seq := binary.BigEndian.Uint16(packet[3:5]); seq != a.seq {
		return false, fmt.Errorf("%w: got %d, want %d", ErrSequence, seq, a.seq)
	}
	a.seq++

	body := packet[headerLen:]
	if a.length < 0 {
		if len(body) < 2 {
			return false, ErrShortPacket
		}
		a.length = int(binary.BigEndian.Uint16(body[:2]))
		body = body[2:]
	}
	a.data = append(a.data, body...)
	return len(a.data) >= a.length, nil
}

// Response splits the assembled payload into data and status word.
func (a *Assembler) Response() (domain.Response, error) {
	if a.length < 2 || len(a.data) < a.length {
		return domain.Response{}, ErrShortResponse
	}
	data := a.data[:a.length]
	return domain.Response{
		Data: append([]byte(nil), data[:len(data)-2]...),
		SW:   binary.BigEndian.Uint16(data[len(data)-2:]),
	}, nil
}
