// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smon

import (
	"sync"

	"code.hybscloud.com/atomix"
)

// Handle identifies a queued waiter for Interrupt. It is the waiter's
// slot index offset by one, captured at reservation time; zero means
// the producer entered without queueing and has nothing to interrupt.
type Handle int64

// slot is one ring entry of the wait queue.
//
// A slot is written by the producer about to park (wait = true, w set
// to its Waiter) and cleared either by the producer itself on a normal
// wake-up or by an interrupter (wait = false first, then the signal).
// wait == false with a non-empty ring position marks a husk left behind
// by an interrupted waiter; the cascade reclaims husks at head.
type slot struct {
	w    *Waiter
	wait bool
}

// Monitor is a FIFO send monitor: it admits producers into a bounded
// critical section in the exact order they reserved entry.
//
// Up to the concurrency window of producers may be inside
// simultaneously. Admission can be frozen with Pause/Resume, a single
// queued waiter can be cancelled with Interrupt, and Close shuts the
// monitor terminally, draining all present and future users with
// ErrClosed.
//
// Every state mutation happens under one mutex; the only suspension
// point is the park inside Enter. Counters are mirrored through atomix
// so Users and Entered can observe the monitor without taking the
// lock; Stats takes it only to read the pause and close flags.
type Monitor struct {
	mu      sync.Mutex
	drained sync.Cond // signalled when a closed monitor reaches zero users

	waitQ []slot
	mask  uint64
	head  uint64 // oldest occupied ring position
	tail  uint64 // next ring position to reserve

	users   atomix.Int64 // producers holding a reservation (queued + entered + husks)
	entered atomix.Int64 // producers inside the critical section
	cc      int64        // concurrency window

	err    error // sticky close code, nil while open
	paused bool

	// cumulative counters for Stats
	waits      atomix.Int64
	interrupts atomix.Int64
}

// New creates a send monitor with the given queue capacity and
// concurrency window.
//
// capacity bounds the number of producers simultaneously holding a
// reservation (queued or entered) and must be a power of two; the ring
// is addressed by mask instead of modulo. concurrency is the maximum
// number of producers inside the critical section at once; 1 reduces
// the monitor to a strict FIFO mutex.
//
// Panics if capacity is not a positive power of two or concurrency < 1.
func New(capacity, concurrency int) *Monitor {
	if capacity < 1 || capacity&(capacity-1) != 0 {
		panic("smon: capacity must be a power of two")
	}
	if concurrency < 1 {
		panic("smon: concurrency must be >= 1")
	}
	m := &Monitor{
		waitQ: make([]slot, capacity),
		mask:  uint64(capacity) - 1,
		cc:    int64(concurrency),
	}
	m.drained.L = &m.mu
	return m
}

// Cap returns the reservation capacity.
func (m *Monitor) Cap() int {
	return len(m.waitQ)
}

// Concurrency returns the concurrency window.
func (m *Monitor) Concurrency() int {
	return int(m.cc)
}

// Users returns the number of producers currently holding a
// reservation: queued, entered, or interrupted-but-unreclaimed.
func (m *Monitor) Users() int64 {
	return m.users.Load()
}

// Entered returns the number of producers currently inside the
// critical section.
func (m *Monitor) Entered() int64 {
	return m.entered.Load()
}

// mustWait reports whether a producer about to reserve has to park:
// the window is saturated, admission is paused, or the ring already
// holds earlier reservations (overtaking a signalled-but-not-yet-woken
// waiter would break FIFO order). Called from Schedule before the new
// reservation is counted into users.
func (m *Monitor) mustWait() bool {
	return m.entered.Load() >= m.cc || m.paused ||
		m.users.Load() > m.entered.Load()
}

// wakeNext advances head past husks left by interrupted waiters and
// signals the next parked waiter, if the concurrency window has room.
// At most one waiter is signalled per invocation; each admitted waiter
// re-invokes the cascade from Enter, so a window wider than one fills
// without barging. Runs under the mutex.
func (m *Monitor) wakeNext() {
	for m.entered.Load() < m.cc && m.users.Load() > m.entered.Load() {
		s := &m.waitQ[m.head]
		if s.wait {
			s.w.signal()
			return
		}
		// husk: the waiter was interrupted, reclaim its reservation
		m.users.Add(-1)
		m.head = (m.head + 1) & m.mask
	}
}

// checkDrained wakes Close once a closed monitor has no users left.
// Runs under the mutex.
func (m *Monitor) checkDrained() {
	if m.err != nil && m.users.Load() == 0 && m.entered.Load() == 0 {
		m.drained.Broadcast()
	}
}

// Stats is a point-in-time observation of a monitor.
type Stats struct {
	Users      int64 // producers holding a reservation
	Entered    int64 // producers inside the critical section
	Queued     int64 // reservations not yet admitted (includes husks)
	Waits      int64 // cumulative count of enters that had to park
	Interrupts int64 // cumulative count of successful Interrupt calls
	Paused     bool
	Closed     bool
}

// Stats returns a snapshot of the monitor's state. The counter fields
// are loaded without the monitor lock and are individually, not
// mutually, consistent.
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	paused, closed := m.paused, m.err != nil
	m.mu.Unlock()
	users := m.users.Load()
	entered := m.entered.Load()
	return Stats{
		Users:      users,
		Entered:    entered,
		Queued:     users - entered,
		Waits:      m.waits.Load(),
		Interrupts: m.interrupts.Load(),
		Paused:     paused,
		Closed:     closed,
	}
}
