// errors.go: structured error definitions for the module runtime
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	"github.com/agilira/go-errors"
)

// Error codes for the module runtime
const (
	// Descriptor and configuration errors (1000-1099)
	ErrCodeInvalidModuleName   = "MODULE_1001"
	ErrCodeMissingSource       = "MODULE_1002"
	ErrCodeDuplicateModuleName = "MODULE_1003"
	ErrCodeNoModulesConfigured = "MODULE_1004"

	// Lifecycle errors (1200-1299)
	ErrCodeModuleNotFound    = "MODULE_1201"
	ErrCodeModuleDisabled    = "MODULE_1202"
	ErrCodeModuleLoadFailed  = "MODULE_1203"
	ErrCodeInitializeFailed  = "MODULE_1204"
	ErrCodeReloadFailed      = "MODULE_1205"
	ErrCodeShutdownFailed    = "MODULE_1206"
	ErrCodeInvalidState      = "MODULE_1207"
	ErrCodeAlreadyLoaded     = "MODULE_1208"
	ErrCodeModuleHookPanic   = "MODULE_1209"

	// Source resolution errors (1300-1399)
	ErrCodeSourceNotFound  = "RESOLVE_1301"
	ErrCodeResolverError   = "RESOLVE_1302"
	ErrCodeFactoryNotFound = "RESOLVE_1303"

	// Hot-reload watcher errors (1400-1499)
	ErrCodeWatcherError = "WATCH_1401"

	// Event bus errors (1500-1599)
	ErrCodeSubscriberPanic = "BUS_1501"

	// Configuration management errors (1700-1799)
	ErrCodeConfigNotFound        = "CONFIG_1701"
	ErrCodeConfigParseError      = "CONFIG_1702"
	ErrCodeConfigValidationError = "CONFIG_1703"
)

// Descriptor and configuration error constructors

func NewInvalidModuleNameError(name string) *errors.Error {
	return errors.New(ErrCodeInvalidModuleName, "Invalid module name").
		WithUserMessage("Module name is required and cannot be empty").
		WithContext("provided_name", name).
		WithSeverity("error")
}

func NewMissingSourceError(name string) *errors.Error {
	return errors.New(ErrCodeMissingSource, "Missing module source").
		WithUserMessage("A source location is required for enabled modules").
		WithContext("module_name", name).
		WithSeverity("error")
}

func NewDuplicateModuleNameError(name string) *errors.Error {
	return errors.New(ErrCodeDuplicateModuleName, "Duplicate module name").
		WithUserMessage("Module names must be unique within the configuration").
		WithContext("module_name", name).
		WithSeverity("error")
}

func NewNoModulesConfiguredError() *errors.Error {
	return errors.New(ErrCodeNoModulesConfigured, "No modules configured").
		WithUserMessage("At least one module must be configured").
		WithSeverity("error")
}

// Lifecycle error constructors

func NewModuleNotFoundError(name string) *errors.Error {
	return errors.New(ErrCodeModuleNotFound, "Module not found").
		WithUserMessage("The requested module is not present in the registry").
		WithContext("module_name", name).
		WithSeverity("error")
}

func NewModuleDisabledError(name string) *errors.Error {
	return errors.New(ErrCodeModuleDisabled, "Module disabled").
		WithUserMessage("The module is disabled in configuration and was not loaded").
		WithContext("module_name", name).
		WithSeverity("warning")
}

func NewModuleLoadFailedError(name string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeModuleLoadFailed, "Module load failed").
		WithUserMessage("The module's source could not be loaded").
		WithContext("module_name", name).
		WithSeverity("error")
}

func NewInitializeFailedError(name string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeInitializeFailed, "Module initialization failed").
		WithUserMessage("The module's Initialize hook returned an error").
		WithContext("module_name", name).
		WithSeverity("error")
}

func NewReloadFailedError(name string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeReloadFailed, "Module reload failed").
		WithUserMessage("Reload failed; the previous instance was restored").
		WithContext("module_name", name).
		WithSeverity("warning")
}

func NewShutdownFailedError(name string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeShutdownFailed, "Module shutdown failed").
		WithUserMessage("The module's Shutdown hook reported an error").
		WithContext("module_name", name).
		WithSeverity("warning")
}

func NewInvalidStateError(name string, status ModuleStatus, operation string) *errors.Error {
	return errors.New(ErrCodeInvalidState, "Invalid module state for operation").
		WithUserMessage("The operation is not valid in the module's current state").
		WithContext("module_name", name).
		WithContext("status", status.String()).
		WithContext("operation", operation).
		WithSeverity("error")
}

func NewAlreadyLoadedError(name string) *errors.Error {
	return errors.New(ErrCodeAlreadyLoaded, "Module already loaded").
		WithUserMessage("A module with this name is already registered").
		WithContext("module_name", name).
		WithSeverity("error")
}

func NewModuleHookPanicError(name string, hook string, recovered any) *errors.Error {
	return errors.New(ErrCodeModuleHookPanic, "Module hook panicked").
		WithUserMessage("A module lifecycle hook panicked and was recovered").
		WithContext("module_name", name).
		WithContext("hook", hook).
		WithContext("panic", recovered).
		WithSeverity("error")
}

// Source resolution error constructors

func NewSourceNotFoundError(source string) *errors.Error {
	return errors.New(ErrCodeSourceNotFound, "Module source not found").
		WithUserMessage("The module source location does not resolve to loadable code").
		WithContext("source", source).
		WithSeverity("error")
}

func NewResolverError(source string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeResolverError, "Module resolution failed").
		WithUserMessage("The resolver failed to produce a module instance").
		WithContext("source", source).
		WithSeverity("error")
}

func NewFactoryNotFoundError(source string) *errors.Error {
	return errors.New(ErrCodeFactoryNotFound, "No factory registered for source").
		WithUserMessage("No module factory is registered for the given source location").
		WithContext("source", source).
		WithSeverity("error")
}

// Hot-reload watcher error constructors

func NewWatcherError(message string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeWatcherError, "Hot-reload watcher error: "+message).
		WithUserMessage("Module source watching failed").
		WithSeverity("error")
}

// Event bus error constructors

func NewSubscriberPanicError(eventType, owner string, recovered any) *errors.Error {
	return errors.New(ErrCodeSubscriberPanic, "Event subscriber panicked").
		WithUserMessage("An event subscriber panicked during delivery and was isolated").
		WithContext("event_type", eventType).
		WithContext("owner", owner).
		WithContext("panic", recovered).
		WithSeverity("warning")
}

// Configuration management error constructors

func NewConfigNotFoundError(path string) *errors.Error {
	return errors.New(ErrCodeConfigNotFound, "Configuration file not found").
		WithUserMessage("The runtime configuration file could not be found").
		WithContext("config_path", path).
		WithSeverity("error")
}

func NewConfigParseError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigParseError, "Configuration parse error").
		WithUserMessage("Failed to parse runtime configuration file").
		WithContext("config_path", path).
		WithSeverity("error")
}

func NewConfigValidationError(message string, cause error) *errors.Error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeConfigValidationError, "Configuration validation error: "+message).
			WithUserMessage("Runtime configuration validation failed").
			WithSeverity("error")
	}
	return errors.New(ErrCodeConfigValidationError, "Configuration validation error: "+message).
		WithUserMessage("Runtime configuration validation failed").
		WithSeverity("error")
}
