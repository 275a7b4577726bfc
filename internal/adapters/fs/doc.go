// Package fs provides the line sources of a replay run: plain files,
// followed (tailed) files, a single interactive line, and the unsupported
// Ledger Live log format.
package fs
