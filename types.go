// types.go: Common data types for the module runtime
//
// This file contains the shared data models used throughout the runtime:
// the declarative module descriptor consumed from configuration, the
// lifecycle status enumeration driven by the loader's state machine, and
// the read-only state snapshot exposed to hosts for diagnostics.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	"time"
)

// ModuleStatus represents the lifecycle state of a module record.
//
// Transitions are driven exclusively by the loader:
//
//	Unloaded -> Loading -> Initialized -> Reloading -> Initialized
//	Initialized -> ShuttingDown -> Unloaded
//
// A failed load returns the record to Unloaded; a failed reload rolls the
// record back to Initialized with the previous instance restored.
// Initialized is the only state in which a module's instance receives bus
// traffic or may be the target of a reload.
type ModuleStatus int

const (
	StatusUnloaded ModuleStatus = iota
	StatusLoading
	StatusInitialized
	StatusReloading
	StatusShuttingDown
)

// String returns a human-readable representation of the module status.
func (s ModuleStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusInitialized:
		return "initialized"
	case StatusReloading:
		return "reloading"
	case StatusShuttingDown:
		return "shutting_down"
	default:
		return "unloaded"
	}
}

// ModuleDescriptor declares a single module in host configuration.
//
// Descriptors are immutable inputs: the loader reads them but never mutates
// them, and the Config map is handed to the module verbatim at Initialize
// time without inspection.
//
// Fields:
//   - Name: unique key identifying the module within the runtime
//   - Source: path or URI of the module's code, resolved by the ModuleResolver
//   - Enabled: disabled modules are skipped at load time and never watched
//   - Config: opaque key-value configuration passed through to the module
type ModuleDescriptor struct {
	Name    string         `json:"name" yaml:"name"`
	Source  string         `json:"source" yaml:"source"`
	Enabled bool           `json:"enabled" yaml:"enabled"`
	Config  map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// ModuleState is a point-in-time snapshot of a module record for
// diagnostics and host inspection. It carries no live references; mutating
// a snapshot has no effect on the runtime.
type ModuleState struct {
	Name           string       `json:"name"`
	Source         string       `json:"source"`
	Status         ModuleStatus `json:"status"`
	LastError      string       `json:"last_error,omitempty"`
	LastTransition time.Time    `json:"last_transition"`
}
