// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package smon provides a FIFO send monitor: ordered admission of
// producer goroutines into a bounded critical section.
//
// Producers may arrive in a burst from many goroutines, but the
// downstream consumer of their work requires that the order in which
// producers cross the monitor matches the order in which they
// announced intent to cross. The monitor guarantees exactly that, and
// additionally supports a concurrency window admitting up to N
// producers at once, pause/resume of the whole pipeline, targeted
// cancellation of a single queued waiter, and a terminal close that
// drains all present and future users.
//
// # Quick Start
//
//	m := smon.New(64, 1) // capacity 64, strict FIFO mutex
//	w := smon.NewWaiter()
//
//	if err := m.Enter(w); err != nil {
//	    return err // full, interrupted or closed
//	}
//	send() // critical section, FIFO-ordered across producers
//	m.Leave()
//
// # Two-Phase Entry
//
// When the order of a send must be fixed before the message itself is
// finalised, split entry into Schedule and Enter. Schedule claims the
// next FIFO position and retains the monitor lock inside the returned
// Ticket; the caller finishes its bounded preparation and then parks,
// with its position already locked in:
//
//	t, err := m.Schedule()
//	if err != nil {
//	    return err
//	}
//	seal(t.Handle()) // ordering is fixed; prepare under the ticket
//	if err := t.Enter(w); err != nil {
//	    return err
//	}
//	send()
//	m.Leave()
//
// The goroutine holding a Ticket must not block before Enter: from the
// monitor's viewpoint Schedule and Enter form one critical section.
//
// # Waiters
//
// The parking primitive is caller-owned so that one goroutine can
// reuse it across calls and across monitors:
//
//	w := smon.NewWaiter()
//	for job := range jobs {
//	    if err := m.Enter(w); err != nil {
//	        return err
//	    }
//	    send(job)
//	    m.Leave()
//	}
//
// A Waiter must outlive the park and must never be shared by two
// goroutines at once.
//
// # Concurrency Window
//
// New's second argument bounds how many producers may be inside the
// critical section simultaneously. 1 reduces the monitor to a strict
// FIFO mutex; N up to the capacity admits cohorts of N while still
// admitting in FIFO order. The monitor does not order the Leave calls
// within a cohort.
//
// # Pause and Resume
//
//	m.Pause()  // queued producers stop being admitted
//	drain()    // already-entered producers are unaffected
//	m.Resume() // the queue is pumped again, order preserved
//
// Reservations still succeed while paused; they queue. Pausing a
// paused monitor is a no-op; resuming an open monitor that is not
// paused panics.
//
// # Interrupt
//
// The monitor has no timed waits. Timeouts are built by the caller:
// share the reservation handle with a watchdog goroutine and have it
// cancel the waiter.
//
//	t, _ := m.Schedule()
//	h := t.Handle()
//	if h != 0 {
//	    timer := time.AfterFunc(timeout, func() { m.Interrupt(h) })
//	    defer timer.Stop()
//	}
//	err := t.Enter(w) // smon.ErrInterrupted after a fired timeout
//
// Interrupt returns ErrNoWaiter when the handle no longer refers to a
// queued waiter; "already interrupted" and "already entered" are
// indistinguishable by design.
//
// # Error Handling
//
// Operations return semantic errors. ErrWouldBlock (the reservation
// queue is full) is sourced from [code.hybscloud.com/iox] for
// ecosystem consistency and signals backpressure, not failure:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := m.Enter(w)
//	    if err == nil {
//	        backoff.Reset()
//	        break
//	    }
//	    if !smon.IsWouldBlock(err) {
//	        return err // ErrInterrupted or ErrClosed
//	    }
//	    backoff.Wait()
//	}
//
// ErrClosed is sticky: after Close every present and future user
// observes it. Programmer errors (Leave without Enter, Resume of an
// unpaused open monitor, invalid constructor arguments) panic.
//
// # Capacity
//
// Capacity bounds the number of producers simultaneously holding a
// reservation (queued plus entered) and must be a power of two: the
// wait queue is a ring addressed by mask. New panics on other values.
//
// # Observation
//
// Users and Entered load atomically mirrored counters without taking
// the monitor lock, so a supervisor can watch a hot monitor without
// perturbing it. Stats loads its counters the same way and takes the
// lock only briefly to read the pause and close flags.
//
// # Thread Safety
//
// All operations are safe for concurrent use. The monitor is built
// around a single mutex; the only suspension point is the park inside
// Enter, and every other operation completes bounded work under the
// lock.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors and
// [code.hybscloud.com/atomix] for the observation counters.
package smon
