// testing_helpers_test.go: Shared test doubles for the module runtime tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	stderrors "errors"
	"sync"

	goerrors "github.com/agilira/go-errors"
)

// recordingModule is a Module that counts lifecycle calls and optionally
// subscribes to an event type at Initialize time, recording every payload
// it receives. Failure modes are switchable per test.
type recordingModule struct {
	mu sync.Mutex

	label       string
	subscribeTo string

	initErr       error
	shutdownErr   error
	panicOnInit   bool
	panicOnStop   bool
	testLocations []string

	initCalls     int
	shutdownCalls int
	bus           *EventBus
	config        map[string]any
	sub           *Subscription
	received      []any
}

func (m *recordingModule) Initialize(bus *EventBus, config map[string]any) error {
	m.mu.Lock()
	m.initCalls++
	m.bus = bus
	m.config = config
	m.mu.Unlock()

	if m.panicOnInit {
		panic("initialize exploded")
	}
	if m.initErr != nil {
		return m.initErr
	}

	if m.subscribeTo != "" {
		sub := bus.SubscribeAs(m.label, m.subscribeTo, func(payload any) {
			m.mu.Lock()
			m.received = append(m.received, payload)
			m.mu.Unlock()
		})
		m.mu.Lock()
		m.sub = sub
		m.mu.Unlock()
	}
	return nil
}

func (m *recordingModule) Shutdown() error {
	m.mu.Lock()
	m.shutdownCalls++
	bus, sub := m.bus, m.sub
	m.sub = nil
	m.mu.Unlock()

	if m.panicOnStop {
		panic("shutdown exploded")
	}
	if bus != nil && sub != nil {
		bus.Unsubscribe(sub)
	}
	return m.shutdownErr
}

func (m *recordingModule) TestLocations() []string {
	return m.testLocations
}

func (m *recordingModule) counts() (initialized, shutdown int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initCalls, m.shutdownCalls
}

func (m *recordingModule) payloads() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]any, len(m.received))
	copy(out, m.received)
	return out
}

// staticFactory returns the same instance on every resolve, so tests can
// keep a handle on the instance the loader runs.
func staticFactory(m Module) ModuleFactory {
	return func() Module { return m }
}

// newTestLoader wires a bus, a factory resolver and a loader around a
// capturing logger.
func newTestLoader() (*Loader, *FactoryResolver, *EventBus, *TestLogger) {
	logger := NewTestLogger()
	bus := NewEventBus(logger)
	resolver := NewFactoryResolver()
	loader := NewLoader(bus, resolver, DefaultLoaderOptions(), logger)
	return loader, resolver, bus, logger
}

// errorCode extracts the structured error code from any error in the chain.
func errorCode(err error) string {
	var e *goerrors.Error
	if stderrors.As(err, &e) {
		return string(e.ErrorCode())
	}
	return ""
}
