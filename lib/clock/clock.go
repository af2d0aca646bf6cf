// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock is the time surface used by warview components. Every function
// that would call time.Now, time.After, time.AfterFunc, or
// time.NewTicker takes a Clock instead (or is a method on a struct
// carrying one).
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives once duration d has
	// elapsed. A non-positive d fires immediately.
	After(d time.Duration) <-chan time.Time

	// AfterFunc schedules f to run after duration d and returns a
	// Timer whose Stop cancels the pending call. A non-positive d runs
	// f before AfterFunc returns.
	AfterFunc(d time.Duration, f func()) *Timer

	// NewTicker returns a Ticker delivering ticks on its C channel
	// every d. Panics if d <= 0.
	NewTicker(d time.Duration) *Ticker
}

// Timer is a cancellable scheduled call created by AfterFunc.
type Timer struct {
	stopFunc func() bool
}

// Stop cancels the pending call. Returns false if the timer already
// fired or was stopped.
func (t *Timer) Stop() bool { return t.stopFunc() }

// Ticker delivers periodic ticks on C. The channel has capacity 1,
// matching time.Ticker: ticks are dropped rather than queued when the
// consumer falls behind. Stop does not close C.
type Ticker struct {
	// C delivers ticks.
	C <-chan time.Time

	stopFunc func()
}

// Stop turns the ticker off.
func (t *Ticker) Stop() { t.stopFunc() }
