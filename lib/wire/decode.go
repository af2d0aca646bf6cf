// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/json"
	"fmt"
)

// envelope is the outer frame common to every stream message.
type envelope struct {
	Type      string          `json:"t"`
	Payload   json.RawMessage `json:"d"`
	Published int64           `json:"p"`
	Sequence  int64           `json:"s"`
}

// Payload shapes, one per message kind. Field names on the wire are
// single characters; the mapping is part of the server contract.
type schedulingStartPayload struct {
	Tick int `json:"i"`
}

type flagSubmissionPayload struct {
	Flag    string  `json:"f"`
	TeamID  *string `json:"t"`
	Service *string `json:"s"`
	Exploit *string `json:"e"`
}

type flagSubmissionResultPayload struct {
	Flag    string   `json:"f"`
	TeamID  *string  `json:"t"`
	Service *string  `json:"s"`
	Exploit *string  `json:"e"`
	Status  int      `json:"r"`
	Points  *float64 `json:"p"`
}

type executionRequestPayload struct {
	ExploitName *string         `json:"n"`
	IPAddress   string          `json:"a"`
	FlagHint    json.RawMessage `json:"h"`
	TeamID      *string         `json:"t"`
}

type executionResultPayload struct {
	ExploitName     *string `json:"n"`
	TeamID          *string `json:"t"`
	TimeTakenMS     int64   `json:"d"`
	ExitCode        *int    `json:"e"`
	Status          int     `json:"s"`
	RequestSequence int64   `json:"r"`
	Attempt         *int    `json:"a"`
}

// Decode parses one raw stream frame into a typed Message. Returns an
// error for malformed JSON and for unrecognized message kinds; the
// caller is expected to log and drop the frame without interrupting
// the stream.
func Decode(data []byte) (Message, error) {
	var outer envelope
	if err := json.Unmarshal(data, &outer); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	switch outer.Type {
	case KindSchedulingStart:
		var payload schedulingStartPayload
		if err := json.Unmarshal(outer.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", outer.Type, err)
		}
		return SchedulingStart{
			Published: outer.Published,
			Tick:      payload.Tick,
		}, nil

	case KindFlagSubmission:
		var payload flagSubmissionPayload
		if err := json.Unmarshal(outer.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", outer.Type, err)
		}
		return FlagSubmission{
			Published: outer.Published,
			Flag:      payload.Flag,
			TeamID:    payload.TeamID,
			Service:   payload.Service,
			Exploit:   payload.Exploit,
		}, nil

	case KindFlagSubmissionResult:
		var payload flagSubmissionResultPayload
		if err := json.Unmarshal(outer.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", outer.Type, err)
		}
		return FlagSubmissionResult{
			Published: outer.Published,
			Flag:      payload.Flag,
			TeamID:    payload.TeamID,
			Service:   payload.Service,
			Exploit:   payload.Exploit,
			Status:    FlagCode(payload.Status),
			Points:    payload.Points,
		}, nil

	case KindExecutionRequest:
		var payload executionRequestPayload
		if err := json.Unmarshal(outer.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", outer.Type, err)
		}
		return ExecutionRequest{
			Published:   outer.Published,
			Sequence:    outer.Sequence,
			ExploitName: payload.ExploitName,
			TeamID:      payload.TeamID,
			IPAddress:   payload.IPAddress,
			FlagHint:    payload.FlagHint,
		}, nil

	case KindExecutionResult:
		var payload executionResultPayload
		if err := json.Unmarshal(outer.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", outer.Type, err)
		}
		return ExecutionResult{
			Published:       outer.Published,
			Sequence:        outer.Sequence,
			ExploitName:     payload.ExploitName,
			TeamID:          payload.TeamID,
			TimeTakenMS:     payload.TimeTakenMS,
			ExitCode:        payload.ExitCode,
			Status:          ExecutionStatus(payload.Status),
			RequestSequence: payload.RequestSequence,
			Attempt:         payload.Attempt,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported message kind %q", outer.Type)
	}
}
