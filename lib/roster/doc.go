// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

// Package roster fetches the competition roster (server configuration,
// teams, services, and exploits) from the game server's REST API and
// builds the lookup tables the dashboard renders against.
//
// The REST API wraps every response in an envelope: successes carry the
// payload under "data", failures carry a message under "error". Client
// unwraps both and surfaces failures as *APIError values.
//
// Lookup is the read-side index over a fetched roster. It provides the
// stable team and service ordering for the dashboard grid and the
// exploit-to-service resolution that per-service aggregates consult.
package roster
