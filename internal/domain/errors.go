package domain

import "errors"

// Domain errors represent error conditions of a replay run.
// They are wrapped with context by adapters and can be checked with errors.Is.
//
// Malformed frame content is deliberately not an error: Normalize drops it.
var (
	// ErrInput is returned when a source file is missing or unreadable.
	ErrInput = errors.New("apdureplay: input error")

	// ErrInputExhausted is returned when interactive input closes before a line arrives.
	ErrInputExhausted = errors.New("apdureplay: input exhausted")

	// ErrUnsupportedFormat is returned for input formats that cannot be parsed.
	// It is permanent; retrying is never meaningful.
	ErrUnsupportedFormat = errors.New("apdureplay: unsupported format")

	// ErrTransportFault wraps any failure of a transport exchange.
	ErrTransportFault = errors.New("apdureplay: transport fault")

	// ErrOddLengthFrame is returned by transports for frames with an odd number of hex digits.
	ErrOddLengthFrame = errors.New("apdureplay: odd-length frame")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("apdureplay: invalid configuration")
)
