// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

// Package state is the dashboard's event aggregation core. It
// consumes the typed messages produced by lib/wire and maintains the
// authoritative "current truth" for two domains: flag submission
// outcomes per (team, service, flag) and exploit execution status per
// (team, exploit, request sequence).
//
// The stream has no ordering or at-most-once guarantee: messages
// arrive reordered and duplicated relative to true event time, and
// reconnection backfill re-delivers a coarse time window. Every merge
// rule in this package is therefore commutative and idempotent, so
// applying the same events in any order, any number of times, yields
// the same records:
//
//   - flag verdicts only move toward a stronger code, never back
//   - publish times only move toward the minimum ever observed
//   - execution results with a smaller attempt sequence supersede
//     larger ones regardless of arrival order
//
// Records age out of both stores through a time boundary derived from
// the competition tick clock and the flag validity window. Eviction
// runs as a reaction to tick advancement, never inside a merge, so a
// purge can never observe a half-applied record.
//
// The stores themselves (FlagStore, ExecutionStore) are plain data
// structures with no locking; State wraps them with a single mutex,
// routes decoded messages, and notifies subscribers on change. Derived
// aggregates are memoized against per-store revision counters and
// recomputed only when the underlying store actually changed.
package state
