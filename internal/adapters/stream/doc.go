// Package stream implements ports.Session over byte streams (TCP sockets and
// serial lines) using the length-prefixed APDU framing spoken by the Speculos
// emulator and Ledger TCP proxies.
//
// A command is written as a 4-byte big-endian length followed by the APDU.
// A response is read as a 4-byte big-endian length N, N bytes of data and a
// 2-byte big-endian status word.
package stream
