// plugin_resolver.go: Module resolution from Go shared objects
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package gomodules

import (
	"os"
	"plugin"
)

// ModuleSymbol is the exported symbol a shared-object module must provide.
// It must have type func() Module (a ModuleFactory).
const ModuleSymbol = "NewModule"

// SharedObjectResolver resolves source locations as Go plugin shared
// objects built with -buildmode=plugin. The object must export a
// ModuleSymbol factory:
//
//	// compiled with: go build -buildmode=plugin -o greeter.so
//	func NewModule() gomodules.Module { return &Greeter{} }
//
// Note the Go runtime caveat: a shared object is mapped into the process
// once per unique build; reloading picks up new code only when the file on
// disk is a genuinely new build. Hosts that need reload during development
// without rebuilding should use the FactoryResolver instead.
type SharedObjectResolver struct{}

// NewSharedObjectResolver creates a shared-object resolver.
func NewSharedObjectResolver() *SharedObjectResolver {
	return &SharedObjectResolver{}
}

// Resolve implements ModuleResolver by opening the shared object at source
// and invoking its exported factory.
func (r *SharedObjectResolver) Resolve(source string) (Module, error) {
	if _, err := os.Stat(source); err != nil {
		return nil, NewSourceNotFoundError(source)
	}

	p, err := plugin.Open(source)
	if err != nil {
		return nil, NewResolverError(source, err)
	}

	sym, err := p.Lookup(ModuleSymbol)
	if err != nil {
		return nil, NewResolverError(source, err)
	}

	factory, ok := sym.(func() Module)
	if !ok {
		return nil, NewResolverError(source, NewSourceNotFoundError(source))
	}

	instance := factory()
	if instance == nil {
		return nil, NewResolverError(source, NewSourceNotFoundError(source))
	}
	return instance, nil
}
