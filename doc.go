// Package gomodules provides a dynamic module runtime for Go applications:
// a host-side substrate that loads independently authored modules from
// declarative configuration, manages their lifecycle (load, initialize,
// shutdown, hot-reload), and lets them communicate through an in-process
// event bus instead of direct references.
//
// Key Features:
//   - Declarative module descriptors with per-module opaque configuration
//   - Lifecycle state machine with rollback on failed hot-reload
//   - In-process publish/subscribe event bus with per-subscriber fault isolation
//   - Hot-reload of module sources powered by Argus file watching
//   - Pluggable source resolution (registered factories or Go shared objects)
//   - Cooperative worker shutdown with bounded waits
//   - Structured logging and typed, coded errors throughout
//
// Basic Usage:
//
//	resolver := gomodules.NewFactoryResolver()
//	resolver.RegisterFactory("modules/greeter", func() gomodules.Module {
//		return &GreeterModule{}
//	})
//
//	runtime, err := gomodules.NewRuntime(gomodules.RuntimeConfig{
//		HotReload: true,
//		Modules: []gomodules.ModuleDescriptor{
//			{Name: "greeter", Source: "modules/greeter", Enabled: true},
//		},
//	}, resolver, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := runtime.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer runtime.Shutdown(ctx)
//
// Failure Isolation:
// A module that fails to load never prevents other modules from loading, a
// failed reload rolls back to the previous instance without interrupting
// service, and a panicking event subscriber never affects delivery to the
// remaining subscribers. Nothing in this package terminates the host process.
//
// Delivery Semantics:
// The event bus is best-effort, in-memory and non-durable. Delivery is
// synchronous and FIFO per event type within a single publish call; no
// ordering is guaranteed across event types or across concurrent publishers.
//
// Copyright (c) 2025 AGILira - A. Giordano
// SPDX-License-Identifier: MPL-2.0
package gomodules
