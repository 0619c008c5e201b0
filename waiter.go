// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smon

import "sync"

// Waiter is the caller-owned signalling primitive a producer parks on
// while queued in a monitor.
//
// A Waiter holds at most one pending wake-up token. Signalling a waiter
// that already holds a token is a no-op, which makes the
// leave-then-interrupt race on a single slot safe: the waiter wakes
// exactly once and reads its slot state to learn why.
//
// A Waiter is owned by the goroutine that parks on it and must outlive
// the park. It may be reused across Enter calls and across monitors,
// but never by two goroutines at once.
type Waiter struct {
	ch chan struct{}
}

// NewWaiter creates a Waiter ready to park on.
func NewWaiter() *Waiter {
	return &Waiter{ch: make(chan struct{}, 1)}
}

// park atomically releases mu and blocks until signalled, then
// reacquires mu. The caller must hold mu and must have published its
// queue slot before calling; tokens sent between the release and the
// receive are buffered, so no wake-up is lost.
func (w *Waiter) park(mu *sync.Mutex) {
	mu.Unlock()
	<-w.ch
	mu.Lock()
	// An interrupter that raced the wake-up (token consumed, mutex
	// not yet reacquired) has deposited a second token; drop it so
	// it cannot leak into this waiter's next park. Tokens are only
	// sent under mu, so nothing new can arrive while we hold it.
	select {
	case <-w.ch:
	default:
	}
}

// signal delivers a wake-up token. Called with the monitor mutex held.
// A second token to an already-signalled waiter is dropped.
func (w *Waiter) signal() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}
