// module.go: Core module lifecycle contract
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

// Module is the lifecycle contract every loadable module must satisfy.
//
// The loader is the only caller of these hooks; modules never invoke them on
// themselves. A module receives its event bus handle and its opaque
// configuration map exactly once per live instance, at Initialize time, and
// keeps both for its active lifetime. After Shutdown returns the instance is
// considered dead and receives no further calls.
//
// Both hooks run synchronously on the caller's goroutine and are
// panic-wrapped by the loader: a panic inside Initialize or Shutdown is
// converted into a typed error and can never crash the host.
type Module interface {
	// Initialize prepares the module for service. The bus handle and the
	// config map come from the module's descriptor and stay valid until
	// Shutdown. Returning an error leaves the module unloaded (initial
	// load) or rolled back (reload).
	Initialize(bus *EventBus, config map[string]any) error

	// Shutdown releases the module's resources. It must be safe to call on
	// a fully initialized instance exactly once. Errors are logged and
	// swallowed by the loader; shutdown never propagates failures.
	Shutdown() error
}

// TestLocator is an optional extension modules may implement to advertise
// the locations of their test suites for external test discovery.
//
// Modules that do not implement it contribute no locations.
type TestLocator interface {
	TestLocations() []string
}

// ModuleFactory produces a fresh module instance. Registered factories are
// the in-process equivalent of executing a module's source: the factory
// resolver invokes the factory again on every load and reload.
type ModuleFactory func() Module
