// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smon

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates that the reservation queue is at capacity.
//
// Schedule (and the combined Enter) return it when users == Cap().
// It is a control flow signal, not a failure: the caller should back
// off and retry once other producers have left the monitor.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := m.Enter(w)
//	    if err == nil {
//	        backoff.Reset()
//	        break
//	    }
//	    if smon.IsWouldBlock(err) {
//	        backoff.Wait()
//	        continue
//	    }
//	    return err // closed or interrupted
//	}
var ErrWouldBlock = iox.ErrWouldBlock

// ErrClosed is the sticky code of a terminally closed monitor.
//
// Once Close has been called, every present and future Schedule/Enter
// returns ErrClosed. Already-queued waiters are unblocked and drain the
// queue returning ErrClosed.
var ErrClosed = errors.New("smon: monitor closed")

// ErrInterrupted indicates that the waiter was cancelled by a
// concurrent Interrupt call while queued.
//
// The waiter's queue position has been reclaimed; the caller decides
// whether to schedule again.
var ErrInterrupted = errors.New("smon: waiter interrupted")

// ErrNoWaiter is returned by Interrupt when the handle does not refer
// to a queued waiter. An already-interrupted waiter and a waiter that
// has since entered the monitor are indistinguishable.
var ErrNoWaiter = errors.New("smon: no such waiter")

// IsWouldBlock reports whether err indicates a full reservation queue.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsClosed reports whether err carries the monitor's close code.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

// IsInterrupted reports whether err indicates a targeted cancellation.
func IsInterrupted(err error) bool {
	return errors.Is(err, ErrInterrupted)
}
