// worker.go: Panic recovery and cooperative worker shutdown utilities
//
// Modules may spawn background goroutines that outlive a single hook call.
// The runtime has no authority over those goroutines; it only hands modules
// the cooperative primitives defined here: a stop signal the workers check,
// and a group that joins them with a bounded wait at shutdown.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	"runtime"
	"sync"
	"time"
)

// withStackRecover returns a panic recovery function that logs panic
// details including the full stack trace. The returned function must be
// called with defer.
func withStackRecover(logger Logger) func() {
	return func() {
		if r := recover(); r != nil {
			buf := make([]byte, 64<<10)
			n := runtime.Stack(buf, false)
			logger.Error("Panic recovered in goroutine",
				"panic", r,
				"stack", string(buf[:n]))
		}
	}
}

// SafeGo executes fn in a new goroutine with automatic panic recovery.
// A panic is logged with its stack trace and the goroutine exits without
// crashing the host.
func SafeGo(logger Logger, fn func()) {
	go func() {
		defer withStackRecover(logger)()
		fn()
	}()
}

// StopSignal is the cooperative cancellation flag handed to module workers.
//
// Workers poll IsStopping or select on Done inside their loops and exit
// promptly when the signal trips. Stop is idempotent and safe to call from
// any goroutine.
type StopSignal struct {
	once sync.Once
	done chan struct{}
}

// NewStopSignal creates an untripped stop signal.
func NewStopSignal() *StopSignal {
	return &StopSignal{done: make(chan struct{})}
}

// Stop trips the signal. Subsequent calls are no-ops.
func (s *StopSignal) Stop() {
	s.once.Do(func() { close(s.done) })
}

// IsStopping reports whether the signal has been tripped.
func (s *StopSignal) IsStopping() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the signal trips, for use in select
// loops alongside work channels.
func (s *StopSignal) Done() <-chan struct{} {
	return s.done
}

// WorkerGroup tracks a module's background goroutines and joins them with a
// bounded wait at shutdown. Each worker receives the group's StopSignal and
// runs under panic recovery.
//
// Typical module usage:
//
//	func (m *MyModule) Initialize(bus *EventBus, config map[string]any) error {
//		m.workers = NewWorkerGroup(m.logger)
//		m.workers.Go(func(stop *StopSignal) {
//			for !stop.IsStopping() {
//				// periodic work
//			}
//		})
//		return nil
//	}
//
//	func (m *MyModule) Shutdown() error {
//		m.workers.Stop(5 * time.Second)
//		return nil
//	}
type WorkerGroup struct {
	logger Logger
	signal *StopSignal
	wg     sync.WaitGroup
}

// NewWorkerGroup creates a worker group logging through the given logger.
func NewWorkerGroup(logger any) *WorkerGroup {
	return &WorkerGroup{
		logger: NewLogger(logger),
		signal: NewStopSignal(),
	}
}

// Signal returns the group's stop signal for workers that are spawned
// outside Go.
func (g *WorkerGroup) Signal() *StopSignal {
	return g.signal
}

// Go spawns fn as a tracked worker goroutine with panic recovery.
func (g *WorkerGroup) Go(fn func(stop *StopSignal)) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer withStackRecover(g.logger)()
		fn(g.signal)
	}()
}

// Stop trips the stop signal and waits up to timeout for all workers to
// exit. A worker that does not stop in time is logged and abandoned; Stop
// never blocks past the timeout and never fails the shutdown.
//
// Returns true if every worker exited within the timeout.
func (g *WorkerGroup) Stop(timeout time.Duration) bool {
	g.signal.Stop()

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		g.logger.Warn("Worker group stop timeout reached, abandoning remaining workers",
			"timeout", timeout)
		return false
	}
}
