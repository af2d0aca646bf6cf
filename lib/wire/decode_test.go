// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"strings"
	"testing"
)

// --- Decode: scheduling ---

func TestDecodeSchedulingStart(t *testing.T) {
	message, err := Decode([]byte(`{"t":"scheduling_start","d":{"i":17},"p":1720083600000,"s":412}`))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	start, ok := message.(SchedulingStart)
	if !ok {
		t.Fatalf("Decode returned %T, want SchedulingStart", message)
	}
	if start.Tick != 17 {
		t.Errorf("Tick = %d, want 17", start.Tick)
	}
	if start.PublishedAt() != 1720083600000 {
		t.Errorf("PublishedAt() = %d, want 1720083600000", start.PublishedAt())
	}
	if start.Kind() != KindSchedulingStart {
		t.Errorf("Kind() = %q, want %q", start.Kind(), KindSchedulingStart)
	}
}

// --- Decode: flag messages ---

func TestDecodeFlagSubmission(t *testing.T) {
	message, err := Decode([]byte(`{"t":"flag_submission","d":{"f":"FLG{abc}","t":"team-7","s":"auth","e":"sqli"},"p":1000,"s":5}`))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	submission, ok := message.(FlagSubmission)
	if !ok {
		t.Fatalf("Decode returned %T, want FlagSubmission", message)
	}
	if submission.Flag != "FLG{abc}" {
		t.Errorf("Flag = %q, want %q", submission.Flag, "FLG{abc}")
	}
	if submission.TeamID == nil || *submission.TeamID != "team-7" {
		t.Errorf("TeamID = %v, want team-7", submission.TeamID)
	}
	if submission.Service == nil || *submission.Service != "auth" {
		t.Errorf("Service = %v, want auth", submission.Service)
	}
	if submission.Exploit == nil || *submission.Exploit != "sqli" {
		t.Errorf("Exploit = %v, want sqli", submission.Exploit)
	}
}

func TestDecodeFlagSubmissionNullAttribution(t *testing.T) {
	// The submitter publishes flags before the roster resolves; null
	// team/service/exploit is an expected payload, not an error.
	message, err := Decode([]byte(`{"t":"flag_submission","d":{"f":"FLG{x}","t":null,"s":null,"e":null},"p":1000,"s":5}`))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	submission := message.(FlagSubmission)
	if submission.TeamID != nil || submission.Service != nil || submission.Exploit != nil {
		t.Errorf("null attribution decoded as non-nil: team=%v service=%v exploit=%v",
			submission.TeamID, submission.Service, submission.Exploit)
	}
}

func TestDecodeFlagSubmissionResult(t *testing.T) {
	message, err := Decode([]byte(`{"t":"flag_submission_result","d":{"f":"FLG{abc}","t":"team-7","s":"auth","e":"sqli","r":1,"p":7.5},"p":2000,"s":6}`))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	result, ok := message.(FlagSubmissionResult)
	if !ok {
		t.Fatalf("Decode returned %T, want FlagSubmissionResult", message)
	}
	if result.Status != FlagOk {
		t.Errorf("Status = %v, want %v", result.Status, FlagOk)
	}
	if result.Points == nil || *result.Points != 7.5 {
		t.Errorf("Points = %v, want 7.5", result.Points)
	}
}

// --- Decode: execution messages ---

func TestDecodeExecutionRequest(t *testing.T) {
	message, err := Decode([]byte(`{"t":"execution_request","d":{"n":"sqli","a":"10.0.7.1","h":{"user":"bob"},"t":"team-7"},"p":3000,"s":42}`))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	request, ok := message.(ExecutionRequest)
	if !ok {
		t.Fatalf("Decode returned %T, want ExecutionRequest", message)
	}
	if request.Sequence != 42 {
		t.Errorf("Sequence = %d, want envelope sequence 42", request.Sequence)
	}
	if request.IPAddress != "10.0.7.1" {
		t.Errorf("IPAddress = %q, want 10.0.7.1", request.IPAddress)
	}
	if string(request.FlagHint) != `{"user":"bob"}` {
		t.Errorf("FlagHint = %s, want opaque JSON preserved", request.FlagHint)
	}
}

func TestDecodeExecutionResult(t *testing.T) {
	message, err := Decode([]byte(`{"t":"execution_result","d":{"n":"sqli","t":"team-7","d":1523,"e":0,"s":1,"r":42,"a":2},"p":4000,"s":57}`))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	result, ok := message.(ExecutionResult)
	if !ok {
		t.Fatalf("Decode returned %T, want ExecutionResult", message)
	}
	if result.Sequence != 57 {
		t.Errorf("Sequence = %d, want envelope sequence 57", result.Sequence)
	}
	if result.RequestSequence != 42 {
		t.Errorf("RequestSequence = %d, want payload value 42", result.RequestSequence)
	}
	if result.Status != ExecutionTimeout {
		t.Errorf("Status = %v, want %v", result.Status, ExecutionTimeout)
	}
	if result.TimeTakenMS != 1523 {
		t.Errorf("TimeTakenMS = %d, want 1523", result.TimeTakenMS)
	}
	if result.ExitCode == nil || *result.ExitCode != 0 {
		t.Errorf("ExitCode = %v, want 0", result.ExitCode)
	}
	if result.Attempt == nil || *result.Attempt != 2 {
		t.Errorf("Attempt = %v, want 2", result.Attempt)
	}
}

func TestDecodeExecutionResultOmittedOptionals(t *testing.T) {
	message, err := Decode([]byte(`{"t":"execution_result","d":{"d":100,"s":0,"r":9},"p":4000,"s":10}`))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	result := message.(ExecutionResult)
	if result.ExploitName != nil || result.TeamID != nil || result.ExitCode != nil || result.Attempt != nil {
		t.Error("omitted optional fields should decode as nil")
	}
}

// --- Decode: failures ---

func TestDecodeMalformedJSON(t *testing.T) {
	if _, err := Decode([]byte(`{"t":"scheduling_start"`)); err == nil {
		t.Fatal("Decode of truncated JSON should return an error")
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	_, err := Decode([]byte(`{"t":"service_status","d":{},"p":1,"s":1}`))
	if err == nil {
		t.Fatal("Decode of unknown kind should return an error")
	}
	if !strings.Contains(err.Error(), "service_status") {
		t.Errorf("error %q should name the unknown kind", err)
	}
}

func TestDecodeMalformedPayload(t *testing.T) {
	if _, err := Decode([]byte(`{"t":"scheduling_start","d":{"i":"not-a-number"},"p":1,"s":1}`)); err == nil {
		t.Fatal("Decode of mistyped payload should return an error")
	}
}

// --- Codes ---

func TestFlagCodePrecedence(t *testing.T) {
	ordered := []FlagCode{FlagOk, FlagDuplicate, FlagOwn, FlagNop, FlagOld, FlagInvalid, FlagResubmit, FlagError, FlagStale, FlagUnknown}
	for i := 0; i < len(ordered)-1; i++ {
		if !ordered[i].Stronger(ordered[i+1]) {
			t.Errorf("%v should be stronger than %v", ordered[i], ordered[i+1])
		}
		if ordered[i+1].Stronger(ordered[i]) {
			t.Errorf("%v should not be stronger than %v", ordered[i+1], ordered[i])
		}
	}
}

func TestFlagCodeStrings(t *testing.T) {
	if got := FlagOk.String(); got != "ok" {
		t.Errorf("FlagOk.String() = %q, want %q", got, "ok")
	}
	if got := FlagPending.String(); got != "pending" {
		t.Errorf("FlagPending.String() = %q, want %q", got, "pending")
	}
	if got := FlagCode(77).String(); got != "flagcode(77)" {
		t.Errorf("FlagCode(77).String() = %q, want %q", got, "flagcode(77)")
	}
}

func TestExecutionStatusStrings(t *testing.T) {
	cases := map[ExecutionStatus]string{
		ExecutionSuccess: "success",
		ExecutionTimeout: "timeout",
		ExecutionError:   "error",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(status), got, want)
		}
	}
}
