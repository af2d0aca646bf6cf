// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import "fmt"

// FlagCode is the submission verdict for a single flag, as reported by
// the competition's flag checker. Codes form a total order: a smaller
// value is a stronger (more authoritative) verdict. Conflicting
// reports for the same flag resolve toward the strongest code ever
// observed.
type FlagCode int

const (
	// FlagPending is a client-side placeholder for a flag whose
	// submission has been seen but whose verdict has not arrived.
	// It is never carried on the wire and never written by a merge.
	FlagPending FlagCode = -1

	// FlagOk means the flag was accepted and points were claimed.
	FlagOk FlagCode = 1
	// FlagDuplicate means the flag was already claimed earlier.
	FlagDuplicate FlagCode = 2
	// FlagOwn means the flag belongs to the submitting team.
	FlagOwn FlagCode = 3
	// FlagNop means the flag was placed on the NOP team.
	FlagNop FlagCode = 4
	// FlagOld means the flag expired before submission.
	FlagOld FlagCode = 5
	// FlagInvalid means the flag was rejected as malformed or fake.
	FlagInvalid FlagCode = 6
	// FlagResubmit means the server asks for the flag to be submitted
	// again, typically because it is not valid yet.
	FlagResubmit FlagCode = 7
	// FlagError means the server refused the flag, for example
	// outside competition hours.
	FlagError FlagCode = 8
	// FlagStale means the checker-placed flag went stale and will
	// never be accepted.
	FlagStale FlagCode = 9
	// FlagUnknown means the submitter could not interpret the
	// checker's response.
	FlagUnknown FlagCode = 200
)

// Stronger reports whether code takes precedence over other. Smaller
// values win; FlagPending (negative) is excluded by the merge rules
// before precedence is consulted.
func (code FlagCode) Stronger(other FlagCode) bool {
	return code < other
}

func (code FlagCode) String() string {
	switch code {
	case FlagPending:
		return "pending"
	case FlagOk:
		return "ok"
	case FlagDuplicate:
		return "duplicate"
	case FlagOwn:
		return "own"
	case FlagNop:
		return "nop"
	case FlagOld:
		return "old"
	case FlagInvalid:
		return "invalid"
	case FlagResubmit:
		return "resubmit"
	case FlagError:
		return "error"
	case FlagStale:
		return "stale"
	case FlagUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("flagcode(%d)", int(code))
	}
}

// ExecutionStatus is the terminal state of one exploit execution
// attempt.
type ExecutionStatus int

const (
	// ExecutionSuccess means the exploit ran to completion.
	ExecutionSuccess ExecutionStatus = 0
	// ExecutionTimeout means the exploit was killed at its deadline.
	ExecutionTimeout ExecutionStatus = 1
	// ExecutionError means the exploit failed to run.
	ExecutionError ExecutionStatus = 2
)

func (status ExecutionStatus) String() string {
	switch status {
	case ExecutionSuccess:
		return "success"
	case ExecutionTimeout:
		return "timeout"
	case ExecutionError:
		return "error"
	default:
		return fmt.Sprintf("executionstatus(%d)", int(status))
	}
}
