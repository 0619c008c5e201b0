// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smon

// Pause freezes admission. Producers already inside the critical
// section are unaffected and reservations still succeed; queued
// producers simply stop being admitted until Resume.
//
// Pausing a paused monitor is a no-op. A closed monitor cannot be
// paused.
func (m *Monitor) Pause() {
	m.mu.Lock()
	m.paused = m.err == nil
	m.mu.Unlock()
}

// Resume lifts a Pause and pumps the wait queue.
//
// Resuming an open monitor that is not paused is a programmer error
// and panics. Resuming a closed monitor is a no-op: Close already
// cleared the pause while draining.
func (m *Monitor) Resume() {
	m.mu.Lock()

	switch {
	case m.paused:
		m.paused = false
		m.wakeNext()
	case m.err != nil:
		// close resumed the queue for draining
	default:
		m.mu.Unlock()
		panic("smon: resume of monitor that is not paused")
	}

	m.mu.Unlock()
}

// Interrupt cancels the queued waiter identified by h; its Enter
// returns ErrInterrupted and its reservation is reclaimed without
// affecting any other waiter's position.
//
// Returns ErrNoWaiter when h does not refer to a queued waiter: an
// already-interrupted waiter and one that has since entered the
// monitor are indistinguishable, which is deliberate.
func (m *Monitor) Interrupt(h Handle) error {
	if h < 1 || h > Handle(len(m.waitQ)) {
		return ErrNoWaiter
	}

	m.mu.Lock()

	s := &m.waitQ[uint64(h-1)&m.mask]
	if !s.wait {
		m.mu.Unlock()
		return ErrNoWaiter
	}

	s.wait = false
	s.w.signal()
	s.w = nil
	m.interrupts.Add(1)

	if !m.paused && uint64(h-1)&m.mask == m.head {
		// The waiter may already have been signalled by a leave
		// or resume right before this interrupt; that admission
		// is lost with the cancellation, so pump the queue for
		// the next genuine waiter.
		m.wakeNext()
	}
	m.checkDrained()

	m.mu.Unlock()
	return nil
}

// Close shuts the monitor terminally and blocks until it drains.
//
// The sticky close code is set once: every subsequent Schedule/Enter
// returns ErrClosed without queueing, and already-queued waiters are
// unblocked in FIFO order, each returning ErrClosed and releasing its
// reservation. Producers inside the critical section are unaffected;
// Close returns once users and entered have both drained to zero.
//
// Close is idempotent; repeated calls wait for the same drain and
// return nil.
func (m *Monitor) Close() error {
	m.mu.Lock()

	if m.err == nil {
		m.err = ErrClosed
		m.paused = false
		m.wakeNext()
	}

	for m.users.Load() > 0 || m.entered.Load() > 0 {
		m.drained.Wait()
	}

	m.mu.Unlock()
	return nil
}
