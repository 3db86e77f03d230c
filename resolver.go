// resolver.go: Pluggable module source resolution
//
// "Load a module from a source location" is a single abstract operation
// behind the ModuleResolver interface, so the loading mechanism (registered
// factories, Go shared objects, or anything a host supplies) can be swapped
// without touching the lifecycle state machine.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	"sync"
)

// ModuleResolver resolves a source location and executes it to produce a
// fresh module instance. Resolve is called once per load and once per reload
// attempt; it must return a new instance every time, never a cached one, so
// a reload actually picks up new code.
type ModuleResolver interface {
	Resolve(source string) (Module, error)
}

// FactoryResolver resolves source locations through registered factories.
//
// This is the in-process, statically linked form of dynamic loading: each
// source location maps to a ModuleFactory, and invoking the factory is the
// runtime's equivalent of executing the source. Registration typically
// happens in the host's wiring code or in module package init functions.
type FactoryResolver struct {
	mu        sync.RWMutex
	factories map[string]ModuleFactory
}

// NewFactoryResolver creates an empty factory resolver.
func NewFactoryResolver() *FactoryResolver {
	return &FactoryResolver{
		factories: make(map[string]ModuleFactory),
	}
}

// RegisterFactory binds a factory to a source location, replacing any
// previous binding. Replacing a binding is how statically linked hosts
// stage a different implementation for the next reload.
func (r *FactoryResolver) RegisterFactory(source string, factory ModuleFactory) {
	if factory == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[source] = factory
}

// UnregisterFactory removes the binding for a source location.
func (r *FactoryResolver) UnregisterFactory(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.factories, source)
}

// Resolve implements ModuleResolver by invoking the registered factory.
func (r *FactoryResolver) Resolve(source string) (Module, error) {
	r.mu.RLock()
	factory, ok := r.factories[source]
	r.mu.RUnlock()

	if !ok {
		return nil, NewFactoryNotFoundError(source)
	}

	instance := factory()
	if instance == nil {
		return nil, NewResolverError(source, NewSourceNotFoundError(source))
	}
	return instance, nil
}
