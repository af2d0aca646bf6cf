// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/warview-project/warview/lib/roster"
	"github.com/warview-project/warview/lib/state"
	"github.com/warview-project/warview/lib/wire"
)

// --- Test helpers ---

func stringPointer(value string) *string { return &value }

func testLookup() *roster.Lookup {
	teams := map[string]roster.Team{
		"1": {Name: stringPointer("Red Pandas"), IPAddress: stringPointer("10.0.1.1")},
		"2": {Name: stringPointer("Blue Herons"), IPAddress: stringPointer("10.0.2.1")},
	}
	services := []roster.Service{{Name: "auth"}, {Name: "notes"}}
	exploits := []roster.Exploit{
		{Manifest: roster.ExploitManifest{Name: "sqli", Service: "auth"}},
	}
	return roster.NewLookup(teams, services, exploits)
}

func testModel(t *testing.T, lookup *roster.Lookup) (Model, *state.State) {
	t.Helper()
	s := state.New(nil)
	if lookup != nil {
		s.SetResolver(lookup)
	}
	model := NewModel(Config{State: s, Lookup: lookup})

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return updated.(Model), s
}

func pressKey(t *testing.T, model Model, runes string) Model {
	t.Helper()
	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(runes)})
	return updated.(Model)
}

func flagResult(flag, teamID, service string, status wire.FlagCode, published int64) wire.FlagSubmissionResult {
	return wire.FlagSubmissionResult{
		Published: published,
		Flag:      flag,
		TeamID:    stringPointer(teamID),
		Service:   stringPointer(service),
		Exploit:   stringPointer("sqli"),
		Status:    status,
	}
}

func executionRequest(sequence, published int64) wire.ExecutionRequest {
	return wire.ExecutionRequest{
		Published:   published,
		Sequence:    sequence,
		ExploitName: stringPointer("sqli"),
		TeamID:      stringPointer("1"),
		IPAddress:   "10.0.1.1",
	}
}

// --- Model behavior ---

func TestViewBeforeSizeShowsLoading(t *testing.T) {
	s := state.New(nil)
	model := NewModel(Config{State: s})
	if got := model.View(); got != "Loading..." {
		t.Fatalf("View() before WindowSizeMsg = %q, want Loading...", got)
	}
}

func TestTabSwitching(t *testing.T) {
	model, _ := testModel(t, testLookup())

	model = pressKey(t, model, "2")
	if model.activeTab != TabExecutions {
		t.Fatalf("activeTab = %v after '2', want TabExecutions", model.activeTab)
	}
	model = pressKey(t, model, "3")
	if model.activeTab != TabStats {
		t.Fatalf("activeTab = %v after '3', want TabStats", model.activeTab)
	}
	model = pressKey(t, model, "1")
	if model.activeTab != TabGrid {
		t.Fatalf("activeTab = %v after '1', want TabGrid", model.activeTab)
	}
}

func TestTabSwitchResetsScroll(t *testing.T) {
	model, s := testModel(t, testLookup())
	for sequence := int64(1); sequence <= 20; sequence++ {
		s.Handle(executionRequest(sequence, 1000*sequence))
	}

	model = pressKey(t, model, "2")
	model = pressKey(t, model, "G")
	if model.cursor == 0 {
		t.Fatal("End did not move the cursor")
	}

	model = pressKey(t, model, "1")
	if model.cursor != 0 || model.scrollOffset != 0 {
		t.Fatalf("cursor/scroll = %d/%d after tab switch, want 0/0", model.cursor, model.scrollOffset)
	}
}

func TestQuitKey(t *testing.T) {
	model, _ := testModel(t, nil)
	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q produced no command, want tea.Quit")
	}
}

func TestStateChangeRearmsListener(t *testing.T) {
	model, _ := testModel(t, nil)
	_, cmd := model.Update(stateChangedMsg{})
	if cmd == nil {
		t.Fatal("stateChangedMsg produced no command, want a re-armed listener")
	}
}

func TestCursorClampedToRows(t *testing.T) {
	model, s := testModel(t, testLookup())
	s.Handle(executionRequest(1, 1000))
	s.Handle(executionRequest(2, 2000))

	model = pressKey(t, model, "2")
	for i := 0; i < 10; i++ {
		model = pressKey(t, model, "j")
	}
	if model.cursor != 1 {
		t.Fatalf("cursor = %d after moving past the end, want 1", model.cursor)
	}
	for i := 0; i < 10; i++ {
		model = pressKey(t, model, "k")
	}
	if model.cursor != 0 {
		t.Fatalf("cursor = %d after moving past the top, want 0", model.cursor)
	}
}

func TestExecuteTriggersSelectedExploit(t *testing.T) {
	executed := ""
	s := state.New(nil)
	lookup := testLookup()
	s.SetResolver(lookup)
	model := NewModel(Config{
		State:  s,
		Lookup: lookup,
		Executor: func(ctx context.Context, name string) error {
			executed = name
			return nil
		},
	})
	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	model = updated.(Model)

	model = pressKey(t, model, "3")
	updated, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	model = updated.(Model)
	if cmd == nil {
		t.Fatal("x on the stats tab produced no command")
	}

	message := cmd()
	done, ok := message.(executeDoneMsg)
	if !ok {
		t.Fatalf("command produced %T, want executeDoneMsg", message)
	}
	if executed != "sqli" || done.name != "sqli" {
		t.Fatalf("executed %q (msg %q), want sqli", executed, done.name)
	}

	updated, _ = model.Update(done)
	model = updated.(Model)
	if !strings.Contains(model.View(), "execution of sqli requested") {
		t.Fatal("status bar should confirm the triggered execution")
	}
}

func TestExecuteDisabledWithoutExecutor(t *testing.T) {
	model, _ := testModel(t, testLookup())
	model = pressKey(t, model, "3")
	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if cmd != nil {
		t.Fatal("x without an executor should be inert")
	}
}

func TestExecuteOnlyOnStatsTab(t *testing.T) {
	s := state.New(nil)
	model := NewModel(Config{
		State:    s,
		Lookup:   testLookup(),
		Executor: func(ctx context.Context, name string) error { return nil },
	})
	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	model = updated.(Model)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if cmd != nil {
		t.Fatal("x on the grid tab should be inert")
	}
}

// --- Rendering ---

func TestGridPlaceholderWithoutRoster(t *testing.T) {
	model, _ := testModel(t, nil)
	if !strings.Contains(model.View(), "waiting for roster") {
		t.Fatal("grid without a roster should show the placeholder")
	}
}

func TestGridRendersTeamsAndCells(t *testing.T) {
	model, s := testModel(t, testLookup())
	s.Handle(flagResult("f1", "1", "auth", wire.FlagOk, 1000))
	s.Handle(flagResult("f2", "1", "auth", wire.FlagOk, 1100))
	s.Handle(flagResult("f3", "2", "notes", wire.FlagInvalid, 1200))

	view := model.View()
	if !strings.Contains(view, "Red Pandas") || !strings.Contains(view, "Blue Herons") {
		t.Fatal("grid should list the roster teams")
	}
	if !strings.Contains(view, "auth") || !strings.Contains(view, "notes") {
		t.Fatal("grid should list the roster services")
	}
	if !strings.Contains(view, "✓2") {
		t.Fatal("grid cell should show the accepted flag count")
	}
	if !strings.Contains(view, "✗1") {
		t.Fatal("grid cell should show the rejected flag count")
	}
}

func TestGridShowsInFlightExecutions(t *testing.T) {
	model, s := testModel(t, testLookup())
	s.Handle(executionRequest(1, 1000))

	if !strings.Contains(model.View(), "▸1") {
		t.Fatal("grid cell should show the in-flight execution count")
	}
}

func TestExecutionsRendering(t *testing.T) {
	model, s := testModel(t, testLookup())
	s.Handle(executionRequest(1, 1000))
	s.Handle(wire.ExecutionResult{
		Published:       2000,
		Sequence:        2,
		ExploitName:     stringPointer("sqli"),
		TeamID:          stringPointer("1"),
		TimeTakenMS:     450,
		Status:          wire.ExecutionSuccess,
		RequestSequence: 1,
	})

	model = pressKey(t, model, "2")
	view := model.View()
	if !strings.Contains(view, "sqli") {
		t.Fatal("execution log should show the exploit name")
	}
	if !strings.Contains(view, "success") {
		t.Fatal("execution log should show the outcome status")
	}
	if !strings.Contains(view, "450ms") {
		t.Fatal("execution log should show the duration")
	}
}

func TestExecutionsRunningStatus(t *testing.T) {
	model, s := testModel(t, testLookup())
	s.Handle(executionRequest(1, 1000))

	model = pressKey(t, model, "2")
	if !strings.Contains(model.View(), "running") {
		t.Fatal("an execution without a result should render as running")
	}
}

func TestStatsRendering(t *testing.T) {
	model, s := testModel(t, testLookup())
	s.Handle(flagResult("f1", "1", "auth", wire.FlagOk, 1000))
	s.Handle(flagResult("f2", "1", "auth", wire.FlagInvalid, 1100))

	model = pressKey(t, model, "3")
	view := model.View()
	for _, want := range []string{"flags", "executions", "ok", "invalid", "sqli"} {
		if !strings.Contains(view, want) {
			t.Fatalf("stats view missing %q", want)
		}
	}
}

func TestStatusBarShowsTick(t *testing.T) {
	model, s := testModel(t, testLookup())
	s.Handle(wire.SchedulingStart{Published: 1000, Tick: 17})

	if !strings.Contains(model.View(), "tick 17") {
		t.Fatal("status bar should show the current tick")
	}
}

func TestStatusBarConnectionIndicator(t *testing.T) {
	s := state.New(nil)
	connected := false
	model := NewModel(Config{State: s, Connected: func() bool { return connected }})
	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	model = updated.(Model)

	if !strings.Contains(model.View(), "offline") {
		t.Fatal("status bar should show offline while disconnected")
	}
	connected = true
	if !strings.Contains(model.View(), "live") {
		t.Fatal("status bar should show live while connected")
	}
}
