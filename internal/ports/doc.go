// Package ports defines the interfaces (ports) that connect the replay loop
// to infrastructure adapters.
//
// Ports are the boundaries between the application core and the outside
// world. They define what the replay loop needs from input sources and
// transports without specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [LineSource]: Produces raw text lines (file, interactive input, logs)
//   - [Session]: Exchanges frames with a connected device
//   - [Logger]: Structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with files,
// stdin, TCP sockets, serial lines, HID devices and zerolog.
package ports
