// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import "encoding/json"

// Message kind strings as they appear in the envelope's "t" field.
const (
	KindSchedulingStart      = "scheduling_start"
	KindFlagSubmission       = "flag_submission"
	KindFlagSubmissionResult = "flag_submission_result"
	KindExecutionRequest     = "execution_request"
	KindExecutionResult      = "execution_result"
)

// Message is one decoded event from the stream. The concrete type is
// one of SchedulingStart, FlagSubmission, FlagSubmissionResult,
// ExecutionRequest, or ExecutionResult.
type Message interface {
	// Kind returns the wire type string for this message.
	Kind() string
	// PublishedAt returns the server-side publish time in Unix
	// milliseconds. Publish time, not arrival time, drives the
	// stores' time window.
	PublishedAt() int64
}

// SchedulingStart announces the start of a competition tick. The tick
// counter it carries drives the eviction boundary for both stores.
type SchedulingStart struct {
	Published int64
	Tick      int
}

func (SchedulingStart) Kind() string { return KindSchedulingStart }

func (m SchedulingStart) PublishedAt() int64 { return m.Published }

// FlagSubmission reports that a flag was handed to the submitter. The
// verdict arrives later as a FlagSubmissionResult. TeamID, Service,
// and Exploit are nil when the submitter could not attribute the flag;
// unattributed submissions cannot be merged and are dropped by the
// store.
type FlagSubmission struct {
	Published int64
	Flag      string
	TeamID    *string
	Service   *string
	Exploit   *string
}

func (FlagSubmission) Kind() string { return KindFlagSubmission }

func (m FlagSubmission) PublishedAt() int64 { return m.Published }

// FlagSubmissionResult reports the checker's verdict for a submitted
// flag. Points is nil when the verdict awarded none.
type FlagSubmissionResult struct {
	Published int64
	Flag      string
	TeamID    *string
	Service   *string
	Exploit   *string
	Status    FlagCode
	Points    *float64
}

func (FlagSubmissionResult) Kind() string { return KindFlagSubmissionResult }

func (m FlagSubmissionResult) PublishedAt() int64 { return m.Published }

// ExecutionRequest reports that an exploit run was dispatched against
// a team. Sequence is the envelope's stream sequence; it identifies
// the request and is echoed back by the matching ExecutionResult as
// RequestSequence.
type ExecutionRequest struct {
	Published   int64
	Sequence    int64
	ExploitName *string
	TeamID      *string
	IPAddress   string
	FlagHint    json.RawMessage
}

func (ExecutionRequest) Kind() string { return KindExecutionRequest }

func (m ExecutionRequest) PublishedAt() int64 { return m.Published }

// ExecutionResult reports the outcome of one execution attempt.
// Sequence is this result's own stream sequence and acts as the
// attempt counter: when two results reference the same request, the
// smaller sequence is authoritative. RequestSequence identifies the
// originating ExecutionRequest.
type ExecutionResult struct {
	Published       int64
	Sequence        int64
	ExploitName     *string
	TeamID          *string
	TimeTakenMS     int64
	ExitCode        *int
	Status          ExecutionStatus
	RequestSequence int64
	Attempt         *int
}

func (ExecutionResult) Kind() string { return KindExecutionResult }

func (m ExecutionResult) PublishedAt() int64 { return m.Published }
