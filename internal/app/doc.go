// Package app implements the replay loop: it pulls raw lines from a
// ports.LineSource, normalizes them into frames and exchanges each frame
// with a ports.Session, strictly one at a time.
package app
