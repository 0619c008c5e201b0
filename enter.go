// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smon

// Ticket is the guarded scope returned by Schedule. It holds the
// monitor mutex from the moment the FIFO position is claimed until
// Enter consumes it, so reservation and parking form one critical
// section: no other operation can observe a reserved-but-unparked
// slot.
//
// A Ticket must be consumed by exactly one Enter call. The goroutine
// holding a ticket must not block on anything else before Enter.
type Ticket struct {
	m      *Monitor
	handle Handle
}

// Handle returns the waiter handle of this reservation, for use with
// Interrupt from another goroutine. Zero means the producer is being
// admitted without queueing and cannot be interrupted.
func (t Ticket) Handle() Handle {
	return t.handle
}

// Schedule claims the next FIFO position in the monitor.
//
// On success the monitor mutex is retained inside the returned Ticket;
// the caller may do bounded preparation work (the ordering of its send
// is already fixed) and must then call Ticket.Enter. Handle reports
// whether the producer will have to park.
//
// Returns ErrWouldBlock when users == Cap, or the sticky close code on
// a closed monitor; in both cases the mutex is released and no ticket
// is issued.
func (m *Monitor) Schedule() (Ticket, error) {
	m.mu.Lock()

	if m.err != nil {
		err := m.err
		m.mu.Unlock()
		return Ticket{}, err
	}
	if m.users.Load() == int64(len(m.waitQ)) {
		m.mu.Unlock()
		return Ticket{}, ErrWouldBlock
	}

	wait := m.mustWait()
	m.users.Add(1)
	idx := m.tail
	m.tail = (m.tail + 1) & m.mask

	if wait {
		return Ticket{m: m, handle: Handle(idx) + 1}, nil
	}

	// Entering without queueing: the ring position is released in
	// place, entered producers hold no slot.
	m.head = (m.head + 1) & m.mask
	return Ticket{m: m}, nil
}

// Enter consumes the ticket and completes entry into the critical
// section, parking on w if the reservation has to wait.
//
// Returns nil once inside (the caller must later call Leave exactly
// once), ErrInterrupted if another goroutine cancelled this waiter, or
// the sticky close code if the monitor was closed while queued. The
// monitor mutex is released in all cases.
func (t Ticket) Enter(w *Waiter) error {
	m := t.m
	if m == nil {
		panic("smon: enter with invalid ticket")
	}

	var err error
	if t.handle != 0 {
		idx := uint64(t.handle-1) & m.mask
		s := &m.waitQ[idx]
		s.w = w
		s.wait = true
		m.waits.Add(1)
		w.park(&m.mu)

		// Back under the mutex. wait still true means a normal
		// wake-up by the cascade; false means cancellation.
		woken := s.wait
		s.w = nil
		s.wait = false

		if woken {
			// The woken waiter's slot is at head: release it.
			m.head = (m.head + 1) & m.mask
			err = m.err
		} else {
			err = ErrInterrupted
		}
	}

	switch {
	case err == nil:
		if m.entered.Load() >= m.cc {
			panic("smon: concurrency window overrun")
		}
		m.entered.Add(1)
		if t.handle != 0 && !m.paused {
			// Chain the cascade so a window wider than one
			// fills in FIFO order.
			m.wakeNext()
		}
	case err == ErrInterrupted:
		// The slot is a husk now; the interrupter's cascade or a
		// later one reclaims it. Nothing to release here.
	default:
		// Closed while queued: drain through the leave path.
		m.users.Add(-1)
		if !m.paused {
			m.wakeNext()
		}
		m.checkDrained()
	}

	m.mu.Unlock()
	return err
}

// Enter reserves the next FIFO position and completes entry in one
// call, parking on w when the monitor is busy or paused.
//
// Returns nil once inside, ErrWouldBlock when the reservation queue is
// full, ErrInterrupted on targeted cancellation, or the sticky close
// code.
func (m *Monitor) Enter(w *Waiter) error {
	t, err := m.Schedule()
	if err != nil {
		return err
	}
	return t.Enter(w)
}

// Leave exits the critical section. Must be called exactly once per
// successful Enter.
func (m *Monitor) Leave() {
	m.mu.Lock()

	if m.entered.Add(-1) < 0 {
		panic("smon: leave without matching enter")
	}
	m.users.Add(-1)

	if !m.paused {
		m.wakeNext()
	}
	m.checkDrained()

	m.mu.Unlock()
}
