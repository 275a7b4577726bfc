// Package apdureplay replays APDU command frames against a hardware wallet
// or an emulator. It backs the apdureplay CLI and can be embedded in test
// harnesses that drive a device from recorded traffic.
//
// # Basic Usage
//
//	session, err := apdureplay.DialTCP(ctx, "127.0.0.1", 9999, apdureplay.DialOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	stats, err := apdureplay.Replay(ctx, apdureplay.FileLines("boot.apdu"), session)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Replay owns the session and closes it before returning, on success and on
// failure alike.
//
// # Input
//
// Every line goes through [Normalize]: an optional condition marker is
// stripped, comment lines are skipped and every non-hex character is dropped.
// Lines that leave nothing behind are skipped, never rejected.
//
// # Errors
//
// Failures can be classified with errors.Is against [ErrInput],
// [ErrInputExhausted], [ErrUnsupportedFormat] and [ErrTransportFault].
package apdureplay
