// runtime.go: Host-facing assembly of bus, loader and watcher
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	"context"
	"sync/atomic"
)

// Runtime ties the event bus, the module loader and the optional hot-reload
// watcher together behind the interface hosts drive: construct, Start,
// operate, Shutdown. Startup order is Bus, Loader, module loads, Watcher;
// shutdown is the reverse.
type Runtime struct {
	config   RuntimeConfig
	bus      *EventBus
	loader   *Loader
	watcher  *HotReloadWatcher
	logger   Logger
	shutdown atomic.Bool
}

// NewRuntime validates config and assembles a runtime. The watcher is
// constructed only when config.HotReload is true; nothing is loaded or
// watched until Start.
func NewRuntime(config RuntimeConfig, resolver ModuleResolver, logger any) (*Runtime, error) {
	internalLogger := NewLogger(logger)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	bus := NewEventBus(internalLogger)
	loader := NewLoader(bus, resolver, config.Loader, internalLogger)

	r := &Runtime{
		config: config,
		bus:    bus,
		loader: loader,
		logger: internalLogger,
	}
	if config.HotReload {
		r.watcher = NewHotReloadWatcher(loader, config.Watch, internalLogger)
	}
	return r, nil
}

// Bus returns the runtime's event bus, for hosts that subscribe to
// lifecycle events or publish their own.
func (r *Runtime) Bus() *EventBus {
	return r.bus
}

// Loader returns the module loader for direct lifecycle operations
// (manual Reload, GetModule, state inspection).
func (r *Runtime) Loader() *Loader {
	return r.loader
}

// Start loads every configured module sequentially and, when hot-reload is
// enabled, arms the watcher over the loaded sources. Per-module load
// failures do not abort startup; they are logged and the remaining modules
// still load. Start fails only when the watcher itself cannot start.
func (r *Runtime) Start(ctx context.Context) error {
	r.logger.Info("Module runtime starting",
		"modules", len(r.config.Modules),
		"hot_reload", r.config.HotReload)

	failures := r.loader.LoadAll(r.config.Modules)
	for _, err := range failures {
		r.logger.Warn("Module failed to load at startup", "error", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if r.watcher != nil {
		if err := r.watcher.Start(); err != nil {
			return err
		}
	}

	r.logger.Info("Module runtime started",
		"loaded", len(r.loader.LoadedModules()),
		"failed", len(failures))
	return nil
}

// Shutdown stops the watcher, unloads every Initialized module and clears
// the bus. Idempotent: only the first call performs the teardown. The
// context bounds nothing here directly — per-module shutdown waits are
// bounded by the loader's ShutdownTimeout — but a cancelled context is
// still honored between phases.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if !r.shutdown.CompareAndSwap(false, true) {
		return nil
	}

	r.logger.Info("Module runtime shutting down")

	if r.watcher != nil {
		if err := r.watcher.Stop(); err != nil {
			r.logger.Warn("Failed to stop hot-reload watcher", "error", err)
		}
	}

	r.loader.UnloadAll()
	r.bus.Clear()

	if err := ctx.Err(); err != nil {
		r.logger.Warn("Shutdown context expired during teardown", "error", err)
	}

	r.logger.Info("Module runtime shutdown complete")
	return nil
}
