// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smon_test

import (
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/smon"
	"code.hybscloud.com/spin"
)

// =============================================================================
// Stress Tests
//
// These drive the monitor from many goroutines at once. Outcome
// counting is kept in goroutine-local variables and aggregated over
// channels, so most of these run under the race detector; the
// invariant sampler polls the atomix observation counters while
// mutators run and is excluded.
// =============================================================================

// TestStressInvariants hammers a window-2 monitor with producers while
// a sampler polls the observation counters, checking the per-counter
// ranges hold at every observation point.
func TestStressInvariants(t *testing.T) {
	if smon.RaceEnabled {
		t.Skip("skip: observation counters are polled while mutators run")
	}

	const (
		producers = 8
		rounds    = 5000
		capacity  = 16
		window    = 2
	)
	m := smon.New(capacity, window)

	var wg sync.WaitGroup
	for range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := smon.NewWaiter()
			backoff := iox.Backoff{}
			for done := 0; done < rounds; {
				err := m.Enter(w)
				if smon.IsWouldBlock(err) {
					backoff.Wait()
					continue
				}
				if err != nil {
					t.Errorf("Enter: %v", err)
					return
				}
				backoff.Reset()
				m.Leave()
				done++
			}
		}()
	}

	stop := make(chan struct{})
	violations := make(chan string, 1)
	go func() {
		sw := spin.Wait{}
		for {
			select {
			case <-stop:
				return
			default:
			}
			if e := m.Entered(); e < 0 || e > window {
				select {
				case violations <- "entered out of range":
				default:
				}
				return
			}
			if u := m.Users(); u < 0 || u > capacity {
				select {
				case violations <- "users out of range":
				default:
				}
				return
			}
			sw.Once()
		}
	}()

	wg.Wait()
	close(stop)
	select {
	case v := <-violations:
		t.Fatal(v)
	default:
	}

	// Quiescent now: the full cross-counter invariants must hold.
	if m.Users() != 0 || m.Entered() != 0 {
		t.Fatalf("drained state: users=%d entered=%d", m.Users(), m.Entered())
	}
	if err := m.Enter(smon.NewWaiter()); err != nil {
		t.Fatalf("Enter after stress: %v", err)
	}
	m.Leave()
}

// TestStressInterruptStorm cancels handles blindly while producers
// flow through the monitor. Every admission must still be balanced by
// a leave, every cancellation must surface as ErrInterrupted, and the
// monitor must drain clean afterwards.
func TestStressInterruptStorm(t *testing.T) {
	const (
		producers = 8
		rounds    = 2000
		capacity  = 8
	)
	m := smon.New(capacity, 1)

	type outcome struct {
		admitted    int
		interrupted int
	}
	results := make(chan outcome, producers)

	var wg sync.WaitGroup
	for range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := smon.NewWaiter()
			backoff := iox.Backoff{}
			var o outcome
			for o.admitted+o.interrupted < rounds {
				err := m.Enter(w)
				switch {
				case err == nil:
					o.admitted++
					m.Leave()
					backoff.Reset()
				case smon.IsInterrupted(err):
					o.interrupted++
				case smon.IsWouldBlock(err):
					backoff.Wait()
				default:
					t.Errorf("Enter: %v", err)
					return
				}
			}
			results <- o
		}()
	}

	stop := make(chan struct{})
	var storm sync.WaitGroup
	storm.Add(1)
	go func() {
		defer storm.Done()
		h := smon.Handle(1)
		for {
			select {
			case <-stop:
				return
			default:
			}
			m.Interrupt(h)
			h++
			if h > capacity {
				h = 1
			}
		}
	}()

	wg.Wait()
	close(stop)
	storm.Wait()
	close(results)

	var total outcome
	for o := range results {
		total.admitted += o.admitted
		total.interrupted += o.interrupted
	}
	if total.admitted == 0 {
		t.Fatal("no producer was ever admitted")
	}
	if total.admitted+total.interrupted != producers*rounds {
		t.Fatalf("outcomes: admitted=%d interrupted=%d, want sum %d",
			total.admitted, total.interrupted, producers*rounds)
	}

	if m.Users() != 0 || m.Entered() != 0 {
		t.Fatalf("drained state: users=%d entered=%d", m.Users(), m.Entered())
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

// TestStressPauseResumeChurn cycles pause/resume while producers flow
// and verifies nobody is lost across the freezes.
func TestStressPauseResumeChurn(t *testing.T) {
	const (
		producers = 4
		rounds    = 1000
		cycles    = 200
	)
	m := smon.New(16, 1)

	var wg sync.WaitGroup
	for range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := smon.NewWaiter()
			backoff := iox.Backoff{}
			for done := 0; done < rounds; {
				err := m.Enter(w)
				if smon.IsWouldBlock(err) {
					backoff.Wait()
					continue
				}
				if err != nil {
					t.Errorf("Enter: %v", err)
					return
				}
				backoff.Reset()
				m.Leave()
				done++
			}
		}()
	}

	var churn sync.WaitGroup
	churn.Add(1)
	go func() {
		defer churn.Done()
		sw := spin.Wait{}
		for range cycles {
			m.Pause()
			sw.Once()
			m.Resume()
			sw.Reset()
		}
	}()

	churn.Wait()
	wg.Wait()

	if m.Users() != 0 || m.Entered() != 0 {
		t.Fatalf("drained state: users=%d entered=%d", m.Users(), m.Entered())
	}
}

// TestStressCloseUnderLoad closes the monitor while producers are
// queued and entered; every producer must exit with nil work or
// ErrClosed, and Close must return once drained.
func TestStressCloseUnderLoad(t *testing.T) {
	const producers = 8
	m := smon.New(8, 2)

	var wg sync.WaitGroup
	for range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := smon.NewWaiter()
			backoff := iox.Backoff{}
			for {
				err := m.Enter(w)
				switch {
				case err == nil:
					m.Leave()
					backoff.Reset()
				case smon.IsWouldBlock(err):
					backoff.Wait()
				case smon.IsClosed(err):
					return
				default:
					t.Errorf("Enter: %v", err)
					return
				}
			}
		}()
	}

	// Let the pipeline run briefly, then cut it.
	time.Sleep(10 * time.Millisecond)
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	wg.Wait()

	if m.Users() != 0 || m.Entered() != 0 {
		t.Fatalf("drained state: users=%d entered=%d", m.Users(), m.Entered())
	}
	if err := m.Enter(smon.NewWaiter()); !smon.IsClosed(err) {
		t.Fatalf("Enter after close: got %v, want ErrClosed", err)
	}
}
