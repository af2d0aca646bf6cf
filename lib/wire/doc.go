// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire decodes the competition server's event stream envelope
// into typed domain messages.
//
// Every frame on the stream is a single JSON object with short keys:
//
//	{"t": <type>, "d": <payload>, "p": <unix-ms>, "s": <sequence>}
//
// where "t" selects one of five message kinds, "d" carries the
// kind-specific payload, "p" is the publish time in Unix milliseconds,
// and "s" is the per-message stream sequence number. Execution
// messages additionally carry their own domain sequence numbers inside
// the payload, distinct from the envelope sequence.
//
// Decoding is a pure function with no state. Malformed frames and
// unknown message kinds return an error; callers log and drop the
// frame and keep reading.
package wire
