// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

// Package feed maintains the WebSocket connection to the game server's
// event stream. It decodes each frame through the wire package, hands
// the typed message to the configured handler, and reconnects with
// jittered delay whenever the connection drops.
//
// On every (re)connection the feed asks the configured FromProvider
// for a backfill start time and passes it as the stream's "from" query
// parameter, so a reconnect replays the events that matter for the
// current validity window. Replayed events are harmless downstream:
// the state merges are idempotent.
package feed
