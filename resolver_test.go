// resolver_test.go: Factory resolver tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryResolver_Resolve(t *testing.T) {
	resolver := NewFactoryResolver()

	module := &recordingModule{label: "cache"}
	resolver.RegisterFactory("factory://cache", staticFactory(module))

	got, err := resolver.Resolve("factory://cache")
	require.NoError(t, err)
	assert.Same(t, Module(module), got)
}

func TestFactoryResolver_UnknownSource(t *testing.T) {
	resolver := NewFactoryResolver()

	_, err := resolver.Resolve("factory://unknown")
	require.Error(t, err)
	assert.Equal(t, ErrCodeFactoryNotFound, errorCode(err))
}

func TestFactoryResolver_NilFactoryIgnored(t *testing.T) {
	resolver := NewFactoryResolver()

	resolver.RegisterFactory("factory://nil", nil)
	_, err := resolver.Resolve("factory://nil")
	require.Error(t, err)
	assert.Equal(t, ErrCodeFactoryNotFound, errorCode(err))
}

func TestFactoryResolver_NilInstanceRejected(t *testing.T) {
	resolver := NewFactoryResolver()

	resolver.RegisterFactory("factory://empty", func() Module { return nil })
	_, err := resolver.Resolve("factory://empty")
	require.Error(t, err)
	assert.Equal(t, ErrCodeResolverError, errorCode(err))
}

func TestFactoryResolver_ReplaceBinding(t *testing.T) {
	resolver := NewFactoryResolver()

	v1 := &recordingModule{label: "v1"}
	v2 := &recordingModule{label: "v2"}
	resolver.RegisterFactory("factory://svc", staticFactory(v1))
	resolver.RegisterFactory("factory://svc", staticFactory(v2))

	got, err := resolver.Resolve("factory://svc")
	require.NoError(t, err)
	assert.Same(t, Module(v2), got, "a later registration replaces the earlier one")
}

func TestFactoryResolver_Unregister(t *testing.T) {
	resolver := NewFactoryResolver()

	resolver.RegisterFactory("factory://temp", staticFactory(&recordingModule{}))
	resolver.UnregisterFactory("factory://temp")

	_, err := resolver.Resolve("factory://temp")
	require.Error(t, err)
	assert.Equal(t, ErrCodeFactoryNotFound, errorCode(err))
}

func TestFactoryResolver_StagedReplacementDrivesReload(t *testing.T) {
	loader, resolver, _, _ := newTestLoader()

	v1 := &recordingModule{label: "v1"}
	v2 := &recordingModule{label: "v2"}
	resolver.RegisterFactory("factory://svc", staticFactory(v1))
	require.NoError(t, loader.Load(ModuleDescriptor{Name: "svc", Source: "factory://svc", Enabled: true}))

	// Staging a new factory then reloading swaps the implementation.
	resolver.RegisterFactory("factory://svc", staticFactory(v2))
	require.NoError(t, loader.Reload("svc"))

	got, err := loader.GetModule("svc")
	require.NoError(t, err)
	assert.Same(t, Module(v2), got)
}
