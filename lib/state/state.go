// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"log/slog"
	"sync"
	"time"

	"github.com/warview-project/warview/lib/wire"
)

// Params are the competition timing parameters, taken from the
// server's configuration endpoint. They define the eviction boundary
// together with the current tick.
type Params struct {
	// Start is the competition start time.
	Start time.Time

	// TickDuration is the length of one tick.
	TickDuration time.Duration

	// FlagValidity is the number of ticks a flag remains acceptable
	// after being placed.
	FlagValidity int
}

// Resolver translates an exploit name to the service it targets. The
// roster's exploit lookup implements it; aggregates that group by
// service consult it and simply skip exploits it cannot resolve.
type Resolver interface {
	ServiceForExploit(name string) (string, bool)
}

// State owns the tick clock and both stores, routes decoded stream
// messages to them, evicts aged records when the tick advances, and
// notifies subscribers after every effective change.
//
// All mutation happens under one mutex, one message at a time: there
// is no parallel mutation of a store, and eviction never interleaves
// with a half-applied merge.
type State struct {
	mutex  sync.Mutex
	logger *slog.Logger

	params    Params
	hasParams bool

	// currentTick advances only via scheduling_start messages. -1 is
	// the sentinel below any valid tick; no eviction happens until
	// the first tick arrives.
	currentTick int

	flags      *FlagStore
	executions *ExecutionStore

	resolver         Resolver
	resolverRevision uint64

	// Memoized per-team-per-service pending execution counts, valid
	// for a specific (execution store revision, resolver revision)
	// pair.
	pending                 map[string]map[string]int
	pendingExecRevision     uint64
	pendingResolverRevision uint64
	pendingValid            bool

	subscribers []chan struct{}
}

// New creates an empty State. logger may be nil, in which case
// slog.Default() is used.
func New(logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	return &State{
		logger:      logger,
		currentTick: -1,
		flags:       NewFlagStore(),
		executions:  NewExecutionStore(),
	}
}

// SetParams installs the competition timing parameters. Called when
// the server configuration is first fetched or re-fetched. If a tick
// has already been observed, the eviction boundary is applied
// immediately.
func (s *State) SetParams(params Params) {
	s.mutex.Lock()
	s.params = params
	s.hasParams = true
	s.evictLocked()
	s.mutex.Unlock()
	s.notify()
}

// SetResolver installs the exploit→service resolver used by the
// per-service pending aggregate. Replacing the resolver invalidates
// that aggregate's cache.
func (s *State) SetResolver(resolver Resolver) {
	s.mutex.Lock()
	s.resolver = resolver
	s.resolverRevision++
	s.mutex.Unlock()
	s.notify()
}

// Handle applies one decoded stream message. Flag and execution events
// already outside the validity window are dropped here rather than
// merged and immediately evicted; before the first tick or server
// config arrives the window is unknown and everything is consumed, to
// be purged once the tick state catches up.
func (s *State) Handle(message wire.Message) {
	s.mutex.Lock()

	flagRevision := s.flags.revision
	executionRevision := s.executions.revision
	changed := false

	switch m := message.(type) {
	case wire.SchedulingStart:
		s.currentTick = m.Tick
		s.evictLocked()
		changed = true

	case wire.FlagSubmission:
		if !s.staleLocked(m.Published) {
			s.flags.ApplySubmission(m)
		}

	case wire.FlagSubmissionResult:
		if !s.staleLocked(m.Published) {
			s.flags.ApplyResult(m)
		}

	case wire.ExecutionRequest:
		if !s.staleLocked(m.Published) {
			s.executions.ApplyRequest(m)
		}

	case wire.ExecutionResult:
		if !s.staleLocked(m.Published) {
			s.executions.ApplyResult(m)
		}
	}

	changed = changed || s.flags.revision != flagRevision || s.executions.revision != executionRevision
	s.mutex.Unlock()

	if changed {
		s.notify()
	}
}

// CurrentTick returns the last observed tick, or -1 before the first
// scheduling_start message.
func (s *State) CurrentTick() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.currentTick
}

// Boundary returns the current eviction boundary in Unix milliseconds.
// ok is false while the boundary is undefined (no server config or no
// tick observed yet).
func (s *State) Boundary() (boundary int64, ok bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.boundaryLocked()
}

// FlagAggregate returns the memoized derived view over the flag store.
func (s *State) FlagAggregate() FlagAggregate {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.flags.Aggregate()
}

// ExecutionAggregate returns the memoized total/pending counts.
func (s *State) ExecutionAggregate() ExecutionAggregate {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.executions.Aggregate()
}

// ExecutionEntries returns the chronological execution log, newest
// first. Callers must treat the entries as read-only.
func (s *State) ExecutionEntries() []*ExecutionEntry {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.executions.Entries()
}

// PendingByTeamService returns, per team and per service, the number
// of executions still awaiting a result. Executions whose exploit the
// resolver does not know are excluded. The result is memoized against
// the execution store revision and the resolver revision; callers must
// not mutate it.
func (s *State) PendingByTeamService() map[string]map[string]int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.pendingValid &&
		s.pendingExecRevision == s.executions.revision &&
		s.pendingResolverRevision == s.resolverRevision {
		return s.pending
	}

	pending := make(map[string]map[string]int)
	if s.resolver != nil {
		for teamID, byExploit := range s.executions.pendingByTeamExploit() {
			for exploit, count := range byExploit {
				service, ok := s.resolver.ServiceForExploit(exploit)
				if !ok {
					continue
				}
				byService := pending[teamID]
				if byService == nil {
					byService = make(map[string]int)
					pending[teamID] = byService
				}
				byService[service] += count
			}
		}
	}

	s.pending = pending
	s.pendingExecRevision = s.executions.revision
	s.pendingResolverRevision = s.resolverRevision
	s.pendingValid = true
	return pending
}

// Subscribe returns a channel that receives a notification after State
// changes. The channel has capacity one and notifications coalesce: a
// slow consumer sees at least one notification for any burst of
// changes, never a backlog.
func (s *State) Subscribe() <-chan struct{} {
	channel := make(chan struct{}, 1)
	s.mutex.Lock()
	s.subscribers = append(s.subscribers, channel)
	s.mutex.Unlock()
	return channel
}

func (s *State) notify() {
	s.mutex.Lock()
	subscribers := s.subscribers
	s.mutex.Unlock()
	for _, channel := range subscribers {
		select {
		case channel <- struct{}{}:
		default:
		}
	}
}

// staleLocked reports whether an event published at the given time
// falls before the eviction boundary. With no boundary defined yet,
// nothing is stale.
func (s *State) staleLocked(published int64) bool {
	boundary, ok := s.boundaryLocked()
	return ok && published < boundary
}

// boundaryLocked computes the eviction boundary: the start of the
// oldest tick whose flags are still valid. With flagValidity v and
// current tick t, flags placed in ticks [t-v+1, t] remain acceptable,
// so everything published before start + (t-v+1)*tickDuration is aged
// out.
func (s *State) boundaryLocked() (int64, bool) {
	if !s.hasParams || s.currentTick < 0 {
		return 0, false
	}
	offset := int64(s.currentTick-s.params.FlagValidity+1) * s.params.TickDuration.Milliseconds()
	return s.params.Start.UnixMilli() + offset, true
}

// evictLocked purges both stores up to the current boundary. Runs as a
// reaction to tick advancement (and parameter installation), never
// inside a message merge.
func (s *State) evictLocked() {
	boundary, ok := s.boundaryLocked()
	if !ok {
		return
	}
	flagsRemoved := s.flags.Purge(boundary)
	executionsRemoved := s.executions.Purge(boundary)
	if flagsRemoved > 0 || executionsRemoved > 0 {
		s.logger.Debug("evicted aged records",
			"tick", s.currentTick,
			"boundary", boundary,
			"flags_removed", flagsRemoved,
			"executions_removed", executionsRemoved,
		)
	}
}
