// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

// Package dashui is the bubbletea terminal UI for the warview
// dashboard. It renders three tabs over the live competition state:
// the attack grid (teams by services), the execution log, and the
// aggregate statistics view.
//
// The model never stores derived data of its own: every View call
// reads the memoized aggregates straight from state.State, and a
// subscription bridged into the bubbletea message loop triggers a
// repaint whenever the state changes.
package dashui
