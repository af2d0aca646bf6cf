// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package roster

import "testing"

func stringPointer(value string) *string { return &value }

func testLookup() *Lookup {
	teams := map[string]Team{
		"10": {Name: stringPointer("Binary Bandits"), IPAddress: stringPointer("10.0.10.1")},
		"2":  {Name: nil, IPAddress: nil},
		"1":  {Name: stringPointer("Red Pandas"), IPAddress: stringPointer("10.0.1.1")},
	}
	services := []Service{{Name: "auth"}, {Name: "notes", HasHint: true}}
	exploits := []Exploit{
		{Manifest: ExploitManifest{Name: "lfi", Service: "notes"}},
		{Manifest: ExploitManifest{Name: "sqli", Service: "auth"}},
		{Manifest: ExploitManifest{Name: "xxe", Service: "notes"}},
	}
	return NewLookup(teams, services, exploits)
}

func TestTeamsNumericOrder(t *testing.T) {
	lookup := testLookup()
	teams := lookup.Teams()
	if len(teams) != 3 {
		t.Fatalf("len(Teams()) = %d, want 3", len(teams))
	}
	wantOrder := []string{"1", "2", "10"}
	for i, want := range wantOrder {
		if teams[i].ID != want {
			t.Errorf("Teams()[%d].ID = %q, want %q", i, teams[i].ID, want)
		}
	}
}

func TestTeamNameFallback(t *testing.T) {
	teams := testLookup().Teams()
	if teams[0].Name != "Red Pandas" {
		t.Errorf("team 1 name = %q, want published name", teams[0].Name)
	}
	if teams[1].Name != "Team 2" {
		t.Errorf("team 2 name = %q, want %q", teams[1].Name, "Team 2")
	}
	if teams[1].IPAddress != "" {
		t.Errorf("team 2 IP = %q, want empty", teams[1].IPAddress)
	}
}

func TestServiceForExploit(t *testing.T) {
	lookup := testLookup()

	service, ok := lookup.ServiceForExploit("sqli")
	if !ok || service != "auth" {
		t.Errorf("ServiceForExploit(sqli) = (%q, %v), want (auth, true)", service, ok)
	}
	if _, ok := lookup.ServiceForExploit("mystery"); ok {
		t.Error("ServiceForExploit resolved an unknown exploit")
	}
}

func TestExploitsForService(t *testing.T) {
	lookup := testLookup()

	names := lookup.ExploitsForService("notes")
	if len(names) != 2 || names[0] != "lfi" || names[1] != "xxe" {
		t.Errorf("ExploitsForService(notes) = %v, want [lfi xxe]", names)
	}
	if names := lookup.ExploitsForService("ghost"); len(names) != 0 {
		t.Errorf("ExploitsForService(ghost) = %v, want empty", names)
	}
}
