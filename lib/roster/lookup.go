// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"fmt"
	"sort"
	"strconv"
)

// TeamEntry is one row of the dashboard grid: a team ID with its
// display fields resolved.
type TeamEntry struct {
	ID string

	// Name is the published team name, or "Team <id>" when the server
	// published none.
	Name string

	// IPAddress is empty when unpublished.
	IPAddress string

	// Services maps service names to this team's connection strings.
	Services map[string]string
}

// Lookup is the read-side index over a fetched roster. It fixes the
// team and service ordering the dashboard renders in and resolves
// exploit names to the services they target. Immutable after
// construction, safe for concurrent readers.
type Lookup struct {
	teams    []TeamEntry
	services []Service
	exploits []Exploit

	serviceByExploit  map[string]string
	exploitsByService map[string][]string
}

// NewLookup builds a Lookup from fetched roster data. Teams are ordered
// by numeric ID where both IDs parse as integers, lexically otherwise;
// services and exploits keep the sorted order the Client returns.
func NewLookup(teams map[string]Team, services []Service, exploits []Exploit) *Lookup {
	lookup := &Lookup{
		services:          services,
		exploits:          exploits,
		serviceByExploit:  make(map[string]string, len(exploits)),
		exploitsByService: make(map[string][]string),
	}

	for id, team := range teams {
		entry := TeamEntry{ID: id, Name: fmt.Sprintf("Team %s", id), Services: team.Services}
		if team.Name != nil && *team.Name != "" {
			entry.Name = *team.Name
		}
		if team.IPAddress != nil {
			entry.IPAddress = *team.IPAddress
		}
		lookup.teams = append(lookup.teams, entry)
	}
	sort.Slice(lookup.teams, func(i, j int) bool {
		return teamIDLess(lookup.teams[i].ID, lookup.teams[j].ID)
	})

	for _, exploit := range exploits {
		name := exploit.Manifest.Name
		service := exploit.Manifest.Service
		lookup.serviceByExploit[name] = service
		lookup.exploitsByService[service] = append(lookup.exploitsByService[service], name)
	}

	return lookup
}

// teamIDLess orders team IDs numerically when both parse as integers,
// so "2" sorts before "10".
func teamIDLess(a, b string) bool {
	numericA, errA := strconv.Atoi(a)
	numericB, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return numericA < numericB
	}
	return a < b
}

// Teams returns the grid's team rows in display order. Callers must not
// mutate the returned slice.
func (lookup *Lookup) Teams() []TeamEntry { return lookup.teams }

// Services returns the grid's service columns in display order.
func (lookup *Lookup) Services() []Service { return lookup.services }

// Exploits returns the registered exploits, sorted by name.
func (lookup *Lookup) Exploits() []Exploit { return lookup.exploits }

// ServiceForExploit resolves an exploit name to the service it targets.
func (lookup *Lookup) ServiceForExploit(name string) (string, bool) {
	service, ok := lookup.serviceByExploit[name]
	return service, ok
}

// ExploitsForService returns the names of the exploits targeting a
// service, sorted by name.
func (lookup *Lookup) ExploitsForService(service string) []string {
	return lookup.exploitsByService[service]
}
