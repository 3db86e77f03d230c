// loader.go: Module loader and lifecycle state machine
//
// The loader owns the module registry: one record per declared module,
// holding the descriptor, the live instance and the lifecycle status. All
// state transitions run through here. Per-record locking makes lifecycle
// operations for one module strictly sequential while different modules
// proceed independently; every call into module-supplied code is
// panic-wrapped so a faulty module can never corrupt the loader's own
// control flow.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"
)

// LoaderOptions configures loader behavior.
type LoaderOptions struct {
	// ShutdownTimeout bounds how long Unload waits for a module's Shutdown
	// hook (including its worker joins) before abandoning it with a warning.
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// DefaultLoaderOptions returns sensible defaults for loader options.
func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{
		ShutdownTimeout: 30 * time.Second,
	}
}

// moduleRecord is the runtime state for one declared module. The record
// mutex serializes lifecycle transitions for this module; the reloading
// flag coalesces reload triggers that race with an in-flight reload.
type moduleRecord struct {
	mu sync.Mutex

	descriptor     ModuleDescriptor
	instance       Module
	status         ModuleStatus
	lastError      error
	lastTransition time.Time

	reloading atomic.Bool
}

// transition updates status under the record mutex (which the caller holds)
// and stamps the change.
func (r *moduleRecord) transition(status ModuleStatus, err error) {
	r.status = status
	r.lastError = err
	r.lastTransition = timecache.CachedTime()
}

// snapshot returns a read-only copy of the record's visible state.
// Caller must hold the record mutex.
func (r *moduleRecord) snapshot() ModuleState {
	state := ModuleState{
		Name:           r.descriptor.Name,
		Source:         r.descriptor.Source,
		Status:         r.status,
		LastTransition: r.lastTransition,
	}
	if r.lastError != nil {
		state.LastError = r.lastError.Error()
	}
	return state
}

// Loader resolves module sources, drives the lifecycle state machine and
// owns the name-to-record registry.
//
// Concurrency: the registry map is guarded by its own read-write mutex,
// held only for lookups and record creation, never across module hook
// calls. Each record's mutex makes Load/Unload/Reload mutually exclusive
// per module name; operations on different modules run concurrently.
type Loader struct {
	bus      *EventBus
	resolver ModuleResolver
	logger   Logger
	options  LoaderOptions

	mu      sync.RWMutex
	records map[string]*moduleRecord
}

// NewLoader creates a loader that hands bus to every module it initializes
// and resolves sources through resolver.
func NewLoader(bus *EventBus, resolver ModuleResolver, options LoaderOptions, logger any) *Loader {
	if options.ShutdownTimeout <= 0 {
		options.ShutdownTimeout = DefaultLoaderOptions().ShutdownTimeout
	}
	return &Loader{
		bus:      bus,
		resolver: resolver,
		logger:   NewLogger(logger),
		options:  options,
		records:  make(map[string]*moduleRecord),
	}
}

// Bus returns the event bus handed to loaded modules.
func (l *Loader) Bus() *EventBus {
	return l.bus
}

// Load resolves and initializes the module declared by descriptor.
//
// Disabled descriptors are recorded but never leave Unloaded; the typed
// disabled outcome is returned as a diagnostic. Any failure during source
// resolution or Initialize (errors and panics alike) leaves the record
// Unloaded with the error captured — never partially registered — and the
// failure of one module has no effect on any other.
func (l *Loader) Load(descriptor ModuleDescriptor) error {
	if descriptor.Name == "" {
		return NewInvalidModuleNameError(descriptor.Name)
	}

	record, created := l.getOrCreateRecord(descriptor)
	if !created {
		record.mu.Lock()
		live := record.status != StatusUnloaded
		record.mu.Unlock()
		if live {
			return NewAlreadyLoadedError(descriptor.Name)
		}
	}

	if !descriptor.Enabled {
		err := NewModuleDisabledError(descriptor.Name)
		l.logger.Info("Module disabled, skipping load", "module", descriptor.Name)
		record.mu.Lock()
		record.transition(StatusUnloaded, nil)
		record.mu.Unlock()
		return err
	}

	record.mu.Lock()
	record.descriptor = descriptor
	record.transition(StatusLoading, nil)

	instance, err := l.safeResolve(descriptor.Name, descriptor.Source)
	if err == nil {
		err = l.safeInitialize(descriptor.Name, instance, descriptor.Config)
	}
	if err != nil {
		record.instance = nil
		loadErr := NewModuleLoadFailedError(descriptor.Name, err)
		record.transition(StatusUnloaded, loadErr)
		record.mu.Unlock()

		l.logger.Error("Module load failed",
			"module", descriptor.Name,
			"source", descriptor.Source,
			"error", err)
		return loadErr
	}

	record.instance = instance
	record.transition(StatusInitialized, nil)
	record.mu.Unlock()

	l.logger.Info("Module loaded",
		"module", descriptor.Name,
		"source", descriptor.Source)
	l.bus.Publish(EventTypeModuleLoaded, ModuleEvent{
		Name:   descriptor.Name,
		Source: descriptor.Source,
		Time:   timecache.CachedTime(),
	})
	return nil
}

// LoadAll loads every descriptor sequentially, skipping disabled modules
// with a diagnostic log line. A failing module never aborts the loading of
// the others; the per-module failures are returned for the host to surface.
func (l *Loader) LoadAll(descriptors []ModuleDescriptor) []error {
	var failures []error
	for _, descriptor := range descriptors {
		if !descriptor.Enabled {
			// Register the record so the module is inspectable, but do not
			// count the skip as a failure.
			_ = l.Load(descriptor)
			continue
		}
		if err := l.Load(descriptor); err != nil {
			failures = append(failures, err)
		}
	}
	return failures
}

// Unload shuts the named module down and removes its record from the
// registry. Only valid from Initialized. Shutdown errors and panics are
// logged and swallowed under the configured bounded wait; unload never
// propagates a module's failure to the host.
func (l *Loader) Unload(name string) error {
	record, ok := l.record(name)
	if !ok {
		return NewModuleNotFoundError(name)
	}

	record.mu.Lock()
	if record.status != StatusInitialized {
		status := record.status
		record.mu.Unlock()
		return NewInvalidStateError(name, status, "unload")
	}

	record.transition(StatusShuttingDown, nil)
	instance := record.instance

	if err := l.safeShutdown(name, instance); err != nil {
		l.logger.Warn("Module shutdown reported an error",
			"module", name,
			"error", NewShutdownFailedError(name, err))
	}

	record.instance = nil
	record.transition(StatusUnloaded, nil)
	record.mu.Unlock()

	l.mu.Lock()
	delete(l.records, name)
	l.mu.Unlock()

	l.logger.Info("Module unloaded", "module", name)
	l.bus.Publish(EventTypeModuleUnloaded, ModuleEvent{
		Name:   name,
		Source: record.descriptor.Source,
		Time:   timecache.CachedTime(),
	})
	return nil
}

// UnloadAll unloads every Initialized module. Individual failures are
// logged and swallowed; shutdown always runs to completion.
func (l *Loader) UnloadAll() {
	for _, name := range l.LoadedModules() {
		if err := l.Unload(name); err != nil {
			l.logger.Warn("Module unload failed during shutdown",
				"module", name,
				"error", err)
		}
	}
}

// Reload replaces the named module's instance with a freshly executed one.
//
// Only valid from Initialized. The previous instance is shut down
// (best-effort), the source is re-executed and the new instance
// initialized; on any failure the previous instance is restored and
// re-initialized so the module keeps running its pre-reload behavior.
// After Reload returns — success or failure — exactly one live,
// initialized instance exists for the name.
//
// Concurrency: reload entry is mutually exclusive per module name. A
// reload request arriving while one is already in flight for the same name
// is coalesced (dropped with a debug log): the in-flight reload re-executes
// the source and therefore already observes the newest content.
func (l *Loader) Reload(name string) error {
	record, ok := l.record(name)
	if !ok {
		return NewModuleNotFoundError(name)
	}

	if !record.reloading.CompareAndSwap(false, true) {
		l.logger.Debug("Reload already in flight, coalescing trigger", "module", name)
		return nil
	}
	defer record.reloading.Store(false)

	record.mu.Lock()
	if record.status != StatusInitialized {
		status := record.status
		record.mu.Unlock()
		return NewInvalidStateError(name, status, "reload")
	}

	descriptor := record.descriptor
	previous := record.instance
	record.transition(StatusReloading, nil)

	l.logger.Info("Reloading module", "module", name, "source", descriptor.Source)

	// The previous instance is shut down before the new source runs; a
	// shutdown failure is logged but does not abort the attempt.
	if err := l.safeShutdown(name, previous); err != nil {
		l.logger.Warn("Previous instance shutdown failed during reload",
			"module", name,
			"error", NewShutdownFailedError(name, err))
	}
	record.instance = nil

	instance, err := l.safeResolve(name, descriptor.Source)
	if err == nil {
		err = l.safeInitialize(name, instance, descriptor.Config)
	}

	if err != nil {
		// Rollback: restore and re-arm the previous instance, which the
		// shutdown above already stopped.
		record.instance = previous
		reloadErr := NewReloadFailedError(name, err)
		if rearmErr := l.safeInitialize(name, previous, descriptor.Config); rearmErr != nil {
			// The previous instance stays registered as the live one even if
			// re-arming reports an error: the module must never be left
			// stopped as a side effect of a failed reload.
			l.logger.Error("Rollback re-initialization failed",
				"module", name,
				"error", NewInitializeFailedError(name, rearmErr))
		}
		record.transition(StatusInitialized, reloadErr)
		record.mu.Unlock()

		l.logger.Warn("Module reload failed, previous instance restored",
			"module", name,
			"source", descriptor.Source,
			"error", err)
		l.bus.Publish(EventTypeModuleReloadFailed, ModuleEvent{
			Name:   name,
			Source: descriptor.Source,
			Error:  reloadErr.Error(),
			Time:   timecache.CachedTime(),
		})
		return reloadErr
	}

	record.instance = instance
	record.transition(StatusInitialized, nil)
	record.mu.Unlock()

	l.logger.Info("Module reloaded", "module", name, "source", descriptor.Source)
	l.bus.Publish(EventTypeModuleReloaded, ModuleEvent{
		Name:   name,
		Source: descriptor.Source,
		Time:   timecache.CachedTime(),
	})
	return nil
}

// LoadedModules returns the sorted names of all Initialized modules.
func (l *Loader) LoadedModules() []string {
	l.mu.RLock()
	names := make([]string, 0, len(l.records))
	for name, record := range l.records {
		record.mu.Lock()
		initialized := record.status == StatusInitialized
		record.mu.Unlock()
		if initialized {
			names = append(names, name)
		}
	}
	l.mu.RUnlock()

	sort.Strings(names)
	return names
}

// GetModule returns the live instance for name, or a not-found error when
// the module is unknown or not currently Initialized.
func (l *Loader) GetModule(name string) (Module, error) {
	record, ok := l.record(name)
	if !ok {
		return nil, NewModuleNotFoundError(name)
	}

	record.mu.Lock()
	defer record.mu.Unlock()
	if record.status != StatusInitialized || record.instance == nil {
		return nil, NewModuleNotFoundError(name)
	}
	return record.instance, nil
}

// Status returns the state snapshot for one module.
func (l *Loader) Status(name string) (ModuleState, error) {
	record, ok := l.record(name)
	if !ok {
		return ModuleState{}, NewModuleNotFoundError(name)
	}

	record.mu.Lock()
	defer record.mu.Unlock()
	return record.snapshot(), nil
}

// States returns snapshots for every known module record, sorted by name.
func (l *Loader) States() []ModuleState {
	l.mu.RLock()
	states := make([]ModuleState, 0, len(l.records))
	for _, record := range l.records {
		record.mu.Lock()
		states = append(states, record.snapshot())
		record.mu.Unlock()
	}
	l.mu.RUnlock()

	sort.Slice(states, func(i, j int) bool { return states[i].Name < states[j].Name })
	return states
}

// TestLocations aggregates the optional TestLocator hook across all
// Initialized modules, in module name order. Modules that do not implement
// the hook contribute nothing.
func (l *Loader) TestLocations() []string {
	var locations []string
	for _, name := range l.LoadedModules() {
		instance, err := l.GetModule(name)
		if err != nil {
			continue
		}
		if locator, ok := instance.(TestLocator); ok {
			locations = append(locations, locator.TestLocations()...)
		}
	}
	return locations
}

// moduleForSource maps a source path back to the module name registered for
// it. Used by the hot-reload watcher; exact match only.
func (l *Loader) moduleForSource(source string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for name, record := range l.records {
		if record.descriptor.Source == source {
			return name, true
		}
	}
	return "", false
}

// record looks up an existing record by name.
func (l *Loader) record(name string) (*moduleRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	record, ok := l.records[name]
	return record, ok
}

// getOrCreateRecord returns the record for descriptor.Name, creating an
// Unloaded one if the name is new. Reports whether it created the record.
func (l *Loader) getOrCreateRecord(descriptor ModuleDescriptor) (*moduleRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if record, ok := l.records[descriptor.Name]; ok {
		return record, false
	}
	record := &moduleRecord{
		descriptor:     descriptor,
		status:         StatusUnloaded,
		lastTransition: timecache.CachedTime(),
	}
	l.records[descriptor.Name] = record
	return record, true
}

// safeResolve executes the module source under panic isolation.
func (l *Loader) safeResolve(name, source string) (instance Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = NewModuleHookPanicError(name, "resolve", r)
		}
	}()

	instance, err = l.resolver.Resolve(source)
	if err == nil && instance == nil {
		err = NewSourceNotFoundError(source)
	}
	return instance, err
}

// safeInitialize calls Initialize under panic isolation.
func (l *Loader) safeInitialize(name string, instance Module, config map[string]any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewModuleHookPanicError(name, "initialize", r)
		}
	}()

	return instance.Initialize(l.bus, config)
}

// safeShutdown calls Shutdown under panic isolation with a bounded wait.
// A hook that neither returns nor panics within ShutdownTimeout is logged
// and abandoned; its goroutine is left to the module's own stop signal.
func (l *Loader) safeShutdown(name string, instance Module) error {
	done := make(chan error, 1)
	go func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = NewModuleHookPanicError(name, "shutdown", r)
			}
			done <- err
		}()
		err = instance.Shutdown()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(l.options.ShutdownTimeout):
		l.logger.Warn("Module shutdown timeout reached, abandoning hook",
			"module", name,
			"timeout", l.options.ShutdownTimeout)
		return nil
	}
}
