// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction so that
// timer-driven code, such as the feed's reconnect backoff and the mock
// server's emit pacing, is deterministic under test.
//
// Production code accepts a Clock and is handed Real(). Tests hand in
// Fake(start) and drive time explicitly with Advance. A goroutine that
// registers a timer on a FakeClock can be synchronized with
// WaitForTimers before the test advances the clock, which removes the
// usual sleep-based races from reconnection tests:
//
//	fake := clock.Fake(time.Date(2026, 7, 4, 9, 0, 0, 0, time.UTC))
//	feed, err := feed.New(config) // config.Clock = fake
//	fake.WaitForTimers(1)         // reconnect delay registered
//	fake.Advance(2 * time.Second) // fires the reconnect attempt
package clock
