// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"github.com/warview-project/warview/lib/wire"
)

// FlagKey identifies one submitted flag. The three components are
// interned by Go's string map keys; a flat composite key keeps the
// store a single map instead of three nested ones.
type FlagKey struct {
	TeamID  string
	Service string
	Flag    string
}

// FlagRecord is the merged truth for one flag.
type FlagRecord struct {
	// Status is the strongest verdict observed so far, or
	// wire.FlagPending while only bare submissions have been seen.
	Status wire.FlagCode

	// Published is the minimum publish time (Unix milliseconds) over
	// every event observed for this key: the first-submission time,
	// not the last-update time. Eviction and the backfill window both
	// key off this value.
	Published int64

	// Exploit attributes the flag to the exploit that captured it.
	// Empty until some event carries the attribution; never cleared
	// by a later event that omits it.
	Exploit string
}

// CellKey addresses one cell of the dashboard grid: a team crossed
// with a service.
type CellKey struct {
	TeamID  string
	Service string
}

// FlagAggregate is the derived view over the whole flag store.
type FlagAggregate struct {
	// Count is the number of live flag records.
	Count int
	// ByStatus histograms records by verdict; records with no verdict
	// yet count under wire.FlagPending.
	ByStatus map[wire.FlagCode]int
	// ByExploit counts attributed records per exploit name.
	ByExploit map[string]int
	// ByCell histograms verdicts per (team, service) grid cell.
	ByCell map[CellKey]map[wire.FlagCode]int
}

// FlagStore holds the merged flag records. It is a plain data
// structure: callers (State, tests) provide synchronization.
type FlagStore struct {
	records  map[FlagKey]FlagRecord
	revision uint64

	aggregate         FlagAggregate
	aggregateRevision uint64
	aggregateValid    bool
}

// NewFlagStore returns an empty flag store.
func NewFlagStore() *FlagStore {
	return &FlagStore{records: make(map[FlagKey]FlagRecord)}
}

// Len returns the number of live records.
func (store *FlagStore) Len() int { return len(store.records) }

// Revision returns a counter that increases whenever the store's
// contents change. Derived views cache against it.
func (store *FlagStore) Revision() uint64 { return store.revision }

// Get returns the record for a key.
func (store *FlagStore) Get(key FlagKey) (FlagRecord, bool) {
	record, ok := store.records[key]
	return record, ok
}

// ApplySubmission merges a bare flag submission. Submissions establish
// the record and its publish time but never carry a verdict, so the
// status is left as-is (FlagPending for a new record).
func (store *FlagStore) ApplySubmission(message wire.FlagSubmission) {
	store.merge(message.TeamID, message.Service, message.Flag, message.Published, message.Exploit, nil)
}

// ApplyResult merges a checker verdict for a flag. The verdict is
// written only when it is strictly stronger than the stored one.
func (store *FlagStore) ApplyResult(message wire.FlagSubmissionResult) {
	status := message.Status
	store.merge(message.TeamID, message.Service, message.Flag, message.Published, message.Exploit, &status)
}

// merge implements the order-independent flag merge. status is nil for
// bare submissions. Events without team or service attribution cannot
// be placed in the grid and are dropped silently; the server
// re-delivers an attributed event within the validity window.
func (store *FlagStore) merge(teamID, service *string, flag string, published int64, exploit *string, status *wire.FlagCode) {
	if teamID == nil || service == nil {
		return
	}
	key := FlagKey{TeamID: *teamID, Service: *service, Flag: flag}

	merged := FlagRecord{Status: wire.FlagPending, Published: published}
	existing, exists := store.records[key]
	if exists {
		merged = existing
		if published < merged.Published {
			merged.Published = published
		}
	}
	if status != nil && (merged.Status == wire.FlagPending || status.Stronger(merged.Status)) {
		merged.Status = *status
	}
	if exploit != nil {
		merged.Exploit = *exploit
	}

	if exists && merged == existing {
		return
	}
	store.records[key] = merged
	store.revision++
}

// Purge removes every record published before the boundary (Unix
// milliseconds). A record published exactly at the boundary survives.
// Returns the number of records removed.
func (store *FlagStore) Purge(boundary int64) int {
	removed := 0
	for key, record := range store.records {
		if record.Published < boundary {
			delete(store.records, key)
			removed++
		}
	}
	if removed > 0 {
		store.revision++
	}
	return removed
}

// Aggregate returns the derived flag view. The result is cached and
// recomputed only when the store's revision has moved; callers must
// not mutate the returned maps.
func (store *FlagStore) Aggregate() FlagAggregate {
	if store.aggregateValid && store.aggregateRevision == store.revision {
		return store.aggregate
	}

	aggregate := FlagAggregate{
		ByStatus:  make(map[wire.FlagCode]int),
		ByExploit: make(map[string]int),
		ByCell:    make(map[CellKey]map[wire.FlagCode]int),
	}
	for key, record := range store.records {
		aggregate.Count++
		aggregate.ByStatus[record.Status]++
		if record.Exploit != "" {
			aggregate.ByExploit[record.Exploit]++
		}
		cell := CellKey{TeamID: key.TeamID, Service: key.Service}
		counts := aggregate.ByCell[cell]
		if counts == nil {
			counts = make(map[wire.FlagCode]int)
			aggregate.ByCell[cell] = counts
		}
		counts[record.Status]++
	}

	store.aggregate = aggregate
	store.aggregateRevision = store.revision
	store.aggregateValid = true
	return aggregate
}
