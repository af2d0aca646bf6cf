// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"github.com/warview-project/warview/lib/wire"
)

// ExecutionKey identifies one exploit run against a team. Request is
// the stream sequence of the originating execution_request; result
// messages address the same key through their RequestSequence field,
// so a result arriving before (or without) its request still lands on
// the right record.
type ExecutionKey struct {
	TeamID  string
	Exploit string
	Request int64
}

// ExecutionOutcome is the stored result of an execution. Sequence is
// the result message's own stream sequence and acts as the attempt
// counter: of two outcomes for the same key, the one with the smaller
// sequence is authoritative.
type ExecutionOutcome struct {
	Sequence    int64
	Status      wire.ExecutionStatus
	ExitCode    *int
	Attempt     *int
	TimeTakenMS int64
}

// ExecutionRecord is the merged truth for one execution.
type ExecutionRecord struct {
	// Published is the minimum publish time (Unix milliseconds) over
	// every event observed for this key.
	Published int64

	// Result is nil while the execution is pending.
	Result *ExecutionOutcome
}

// ExecutionEntry is the display-oriented record kept in the global
// chronological index. Unlike ExecutionRecord it reflects the latest
// event verbatim (its publish time, not the minimum) because the
// executions log renders events, not merged truth.
type ExecutionEntry struct {
	RequestSequence int64
	Published       int64
	ExploitName     string
	TeamID          string
	IPAddress       string
	FlagHint        string

	// Result fields, meaningful once HasResult is true.
	HasResult      bool
	ResultSequence int64
	Status         wire.ExecutionStatus
	ExitCode       *int
	Attempt        *int
	TimeTakenMS    int64
}

// ExecutionAggregate is the derived view over the execution store.
type ExecutionAggregate struct {
	// Count is the number of live execution records.
	Count int
	// Pending counts records with no result yet.
	Pending int
}

// ExecutionStore holds merged execution records plus a global index of
// executions sorted by descending publish time for the chronological
// log. Plain data structure; callers synchronize.
type ExecutionStore struct {
	records  map[ExecutionKey]ExecutionRecord
	revision uint64

	// Display index: request sequence → render entry, with a parallel
	// list of request sequences sorted by descending entry publish
	// time. The index is independent of the per-key records but is
	// purged by the same boundary.
	entries map[int64]*ExecutionEntry
	sorted  []int64

	aggregate         ExecutionAggregate
	aggregateRevision uint64
	aggregateValid    bool
}

// NewExecutionStore returns an empty execution store.
func NewExecutionStore() *ExecutionStore {
	return &ExecutionStore{
		records: make(map[ExecutionKey]ExecutionRecord),
		entries: make(map[int64]*ExecutionEntry),
	}
}

// Len returns the number of live execution records.
func (store *ExecutionStore) Len() int { return len(store.records) }

// Revision returns a counter that increases whenever the store's
// contents change.
func (store *ExecutionStore) Revision() uint64 { return store.revision }

// Get returns the record for a key.
func (store *ExecutionStore) Get(key ExecutionKey) (ExecutionRecord, bool) {
	record, ok := store.records[key]
	return record, ok
}

// ApplyRequest merges an execution request. The record's publish time
// follows the minimum rule; an already-stored result is untouched.
func (store *ExecutionStore) ApplyRequest(message wire.ExecutionRequest) {
	if message.TeamID == nil || message.ExploitName == nil {
		return
	}
	key := ExecutionKey{TeamID: *message.TeamID, Exploit: *message.ExploitName, Request: message.Sequence}

	record, exists := store.records[key]
	if !exists {
		record = ExecutionRecord{Published: message.Published}
	} else if message.Published < record.Published {
		record.Published = message.Published
	}
	store.records[key] = record
	store.revision++

	entry := store.upsertEntry(message.Sequence, message.Published)
	entry.ExploitName = *message.ExploitName
	entry.TeamID = *message.TeamID
	entry.IPAddress = message.IPAddress
	entry.FlagHint = string(message.FlagHint)
}

// ApplyResult merges an execution result, keyed by the result's
// RequestSequence. A result may arrive before its request; the record
// is created either way. The stored outcome is kept only when its
// attempt sequence is strictly smaller than the incoming one: a
// late-arriving but lower-numbered result supersedes a higher-numbered
// one, and the store never regresses back to a higher sequence.
func (store *ExecutionStore) ApplyResult(message wire.ExecutionResult) {
	if message.TeamID == nil || message.ExploitName == nil {
		return
	}
	key := ExecutionKey{TeamID: *message.TeamID, Exploit: *message.ExploitName, Request: message.RequestSequence}

	record, exists := store.records[key]
	if !exists {
		record = ExecutionRecord{Published: message.Published}
	} else if message.Published < record.Published {
		record.Published = message.Published
	}
	if record.Result == nil || record.Result.Sequence >= message.Sequence {
		record.Result = &ExecutionOutcome{
			Sequence:    message.Sequence,
			Status:      message.Status,
			ExitCode:    message.ExitCode,
			Attempt:     message.Attempt,
			TimeTakenMS: message.TimeTakenMS,
		}
	}
	store.records[key] = record
	store.revision++

	entry := store.upsertEntry(message.RequestSequence, message.Published)
	entry.ExploitName = *message.ExploitName
	entry.TeamID = *message.TeamID
	entry.HasResult = true
	entry.ResultSequence = message.Sequence
	entry.Status = message.Status
	entry.ExitCode = message.ExitCode
	entry.Attempt = message.Attempt
	entry.TimeTakenMS = message.TimeTakenMS
}

// upsertEntry places a request sequence at its correct position in the
// descending-time display index: remove the sequence if present, set
// the new publish time, and splice it back in at the insertion point.
// Returns the entry for the caller to fill in message fields.
func (store *ExecutionStore) upsertEntry(requestSequence, published int64) *ExecutionEntry {
	entry, exists := store.entries[requestSequence]
	if !exists {
		entry = &ExecutionEntry{RequestSequence: requestSequence}
		store.entries[requestSequence] = entry
	} else {
		for i, sequence := range store.sorted {
			if sequence == requestSequence {
				store.sorted = append(store.sorted[:i], store.sorted[i+1:]...)
				break
			}
		}
	}
	entry.Published = published

	index := store.insertionIndex(published)
	store.sorted = append(store.sorted, 0)
	copy(store.sorted[index+1:], store.sorted[index:])
	store.sorted[index] = requestSequence
	return entry
}

// insertionIndex binary-searches the sorted list for the lowest index
// whose entry has Published <= target; everything before it is
// strictly newer. Inserting at the returned index preserves descending
// publish-time order, with ties resolved toward the front (the new
// entry lands before equal-timed ones already present).
func (store *ExecutionStore) insertionIndex(published int64) int {
	low, high := 0, len(store.sorted)
	for low < high {
		mid := int(uint(low+high) >> 1)
		if store.entries[store.sorted[mid]].Published > published {
			low = mid + 1
		} else {
			high = mid
		}
	}
	return low
}

// Entries returns the display index in descending publish-time order.
// The returned slice is freshly allocated; the pointed-to entries are
// shared and must not be mutated by callers.
func (store *ExecutionStore) Entries() []*ExecutionEntry {
	entries := make([]*ExecutionEntry, len(store.sorted))
	for i, sequence := range store.sorted {
		entries[i] = store.entries[sequence]
	}
	return entries
}

// Purge removes every record and display entry published before the
// boundary (Unix milliseconds). Returns the number of records removed
// from the per-key store.
func (store *ExecutionStore) Purge(boundary int64) int {
	removed := 0
	for key, record := range store.records {
		if record.Published < boundary {
			delete(store.records, key)
			removed++
		}
	}

	entriesRemoved := 0
	kept := store.sorted[:0]
	for _, sequence := range store.sorted {
		if store.entries[sequence].Published < boundary {
			delete(store.entries, sequence)
			entriesRemoved++
			continue
		}
		kept = append(kept, sequence)
	}
	store.sorted = kept

	if removed > 0 || entriesRemoved > 0 {
		store.revision++
	}
	return removed
}

// Aggregate returns total and pending counts, cached against the
// store revision.
func (store *ExecutionStore) Aggregate() ExecutionAggregate {
	if store.aggregateValid && store.aggregateRevision == store.revision {
		return store.aggregate
	}

	aggregate := ExecutionAggregate{}
	for _, record := range store.records {
		aggregate.Count++
		if record.Result == nil {
			aggregate.Pending++
		}
	}

	store.aggregate = aggregate
	store.aggregateRevision = store.revision
	store.aggregateValid = true
	return aggregate
}

// pendingByTeamExploit counts executions with no result per (team,
// exploit). State folds this through the roster's exploit→service
// lookup and memoizes the result, since the lookup lives outside this
// store.
func (store *ExecutionStore) pendingByTeamExploit() map[string]map[string]int {
	pending := make(map[string]map[string]int)
	for key, record := range store.records {
		if record.Result != nil {
			continue
		}
		byExploit := pending[key.TeamID]
		if byExploit == nil {
			byExploit = make(map[string]int)
			pending[key.TeamID] = byExploit
		}
		byExploit[key.Exploit]++
	}
	return pending
}
