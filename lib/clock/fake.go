// Copyright 2026 The Warview Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a deterministic Clock frozen at the given time. Time
// moves only through Advance, which fires every pending waiter whose
// deadline has been reached, in deadline order.
//
// FakeClock is safe for concurrent use.
func Fake(start time.Time) *FakeClock {
	fake := &FakeClock{now: start}
	fake.changed = sync.NewCond(&fake.mutex)
	return fake
}

// FakeClock is the test implementation of Clock. AfterFunc callbacks
// run synchronously inside Advance; calling Advance from within a
// callback deadlocks.
type FakeClock struct {
	mutex   sync.Mutex
	now     time.Time
	waiters []*waiter
	changed *sync.Cond
}

// waiter is one pending After, AfterFunc, or ticker registration.
type waiter struct {
	deadline time.Time

	// channel receives the fire time for After and ticker waiters.
	// Nil for AfterFunc waiters.
	channel chan time.Time

	// callback runs synchronously during Advance for AfterFunc
	// waiters. Nil for channel waiters.
	callback func()

	// interval is non-zero for tickers, which reschedule at
	// deadline + interval after firing.
	interval time.Duration

	// done marks a fired one-shot or a stopped waiter.
	done bool
}

// Now returns the current fake time.
func (fake *FakeClock) Now() time.Time {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	return fake.now
}

// After returns a channel that receives once the clock has advanced by
// d. A non-positive d fires immediately without registering a waiter.
func (fake *FakeClock) After(d time.Duration) <-chan time.Time {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- fake.now
		return channel
	}
	fake.waiters = append(fake.waiters, &waiter{deadline: fake.now.Add(d), channel: channel})
	fake.changed.Broadcast()
	return channel
}

// AfterFunc schedules f to run once the clock has advanced by d. A
// non-positive d invokes f synchronously before returning.
func (fake *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	if d <= 0 {
		f()
		return &Timer{stopFunc: func() bool { return false }}
	}

	fake.mutex.Lock()
	pending := &waiter{deadline: fake.now.Add(d), callback: f}
	fake.waiters = append(fake.waiters, pending)
	fake.changed.Broadcast()
	fake.mutex.Unlock()

	return &Timer{stopFunc: func() bool {
		fake.mutex.Lock()
		defer fake.mutex.Unlock()
		if pending.done {
			return false
		}
		pending.done = true
		return true
	}}
}

// NewTicker registers a repeating waiter. Panics if d <= 0.
func (fake *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}

	fake.mutex.Lock()
	channel := make(chan time.Time, 1)
	pending := &waiter{deadline: fake.now.Add(d), channel: channel, interval: d}
	fake.waiters = append(fake.waiters, pending)
	fake.changed.Broadcast()
	fake.mutex.Unlock()

	return &Ticker{
		C: channel,
		stopFunc: func() {
			fake.mutex.Lock()
			defer fake.mutex.Unlock()
			pending.done = true
		},
	}
}

// Advance moves the fake time forward by d and fires every waiter
// whose deadline falls within the new time, in deadline order. Channel
// sends are non-blocking (a full buffer drops the tick, matching
// time.Ticker); callbacks run synchronously in the calling goroutine.
// A ticker spanning several intervals fires once per interval.
func (fake *FakeClock) Advance(d time.Duration) {
	fake.mutex.Lock()
	fake.now = fake.now.Add(d)
	target := fake.now
	fake.mutex.Unlock()

	for {
		expired := fake.takeExpired(target)
		if len(expired) == 0 {
			return
		}
		sort.Slice(expired, func(i, j int) bool {
			return expired[i].deadline.Before(expired[j].deadline)
		})
		for _, pending := range expired {
			if pending.callback != nil {
				pending.callback()
				continue
			}
			select {
			case pending.channel <- target:
			default:
			}
		}
	}
}

// takeExpired removes waiters due at or before target from the pending
// list, rescheduling tickers for their next interval.
func (fake *FakeClock) takeExpired(target time.Time) []*waiter {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()

	var expired, remaining []*waiter
	for _, pending := range fake.waiters {
		if pending.done {
			continue
		}
		if pending.deadline.After(target) {
			remaining = append(remaining, pending)
			continue
		}
		expired = append(expired, pending)
		if pending.interval > 0 {
			pending.deadline = pending.deadline.Add(pending.interval)
			remaining = append(remaining, pending)
		} else {
			pending.done = true
		}
	}
	fake.waiters = remaining
	return expired
}

// WaitForTimers blocks until at least n waiters are pending. Tests use
// it to let a background goroutine register its timer before the test
// advances the clock.
func (fake *FakeClock) WaitForTimers(n int) {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	for fake.pendingLocked() < n {
		fake.changed.Wait()
	}
}

// PendingCount returns the number of pending waiters.
func (fake *FakeClock) PendingCount() int {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	return fake.pendingLocked()
}

func (fake *FakeClock) pendingLocked() int {
	count := 0
	for _, pending := range fake.waiters {
		if !pending.done {
			count++
		}
	}
	return count
}
