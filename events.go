// events.go: Lifecycle event types published on the runtime's own bus
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import "time"

// Event type constants for module lifecycle events.
// Reverse domain notation keeps host and module event types from colliding.
const (
	EventTypeModuleLoaded       = "com.agilira.modules.module.loaded"
	EventTypeModuleUnloaded     = "com.agilira.modules.module.unloaded"
	EventTypeModuleReloaded     = "com.agilira.modules.module.reloaded"
	EventTypeModuleReloadFailed = "com.agilira.modules.module.reload_failed"
)

// ModuleEvent is the payload published for module lifecycle events. Error
// is set only on failure outcomes.
type ModuleEvent struct {
	Name   string    `json:"name"`
	Source string    `json:"source"`
	Error  string    `json:"error,omitempty"`
	Time   time.Time `json:"time"`
}
