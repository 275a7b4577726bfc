// Package domain contains the core types of an APDU replay run.
//
// This package is the innermost layer. It has no dependencies on
// infrastructure concerns (files, sockets, HID, logging) and contains only
// the frame model and the rules for extracting frames from noisy input.
//
// # Entities
//
//   - [Frame]: one APDU command as hex digits
//   - [Response]: payload and status word returned by a transport
//
// # Normalization
//
// [Normalize] turns a raw text line into a [Frame]. It is permissive:
// separators, comments and any other non-hex characters are dropped, and a
// line with nothing left, or a line starting with [CommentMarker], yields an
// empty frame that callers skip.
package domain
