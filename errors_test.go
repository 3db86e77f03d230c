// errors_test.go: structured error constructor tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	stderrors "errors"
	"testing"

	"github.com/agilira/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleErrors(t *testing.T) {
	t.Run("module not found", func(t *testing.T) {
		err := NewModuleNotFoundError("ghost")
		assert.Equal(t, errors.ErrorCode(ErrCodeModuleNotFound), err.ErrorCode())
		assert.Equal(t, "ghost", err.Context["module_name"])
		assert.Equal(t, "error", err.Severity)
		assert.NotEmpty(t, err.UserMessage())
	})

	t.Run("module disabled is a warning", func(t *testing.T) {
		err := NewModuleDisabledError("dormant")
		assert.Equal(t, errors.ErrorCode(ErrCodeModuleDisabled), err.ErrorCode())
		assert.Equal(t, "warning", err.Severity)
	})

	t.Run("load failed wraps cause", func(t *testing.T) {
		cause := stderrors.New("source unreadable")
		err := NewModuleLoadFailedError("broken", cause)
		assert.Equal(t, errors.ErrorCode(ErrCodeModuleLoadFailed), err.ErrorCode())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("reload failed wraps cause", func(t *testing.T) {
		cause := stderrors.New("new version rejected")
		err := NewReloadFailedError("svc", cause)
		assert.Equal(t, errors.ErrorCode(ErrCodeReloadFailed), err.ErrorCode())
		assert.Equal(t, "svc", err.Context["module_name"])
		assert.Equal(t, "warning", err.Severity)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("invalid state carries status and operation", func(t *testing.T) {
		err := NewInvalidStateError("svc", StatusLoading, "reload")
		assert.Equal(t, errors.ErrorCode(ErrCodeInvalidState), err.ErrorCode())
		assert.Equal(t, "loading", err.Context["status"])
		assert.Equal(t, "reload", err.Context["operation"])
	})

	t.Run("hook panic carries hook and value", func(t *testing.T) {
		err := NewModuleHookPanicError("svc", "initialize", "boom")
		assert.Equal(t, errors.ErrorCode(ErrCodeModuleHookPanic), err.ErrorCode())
		assert.Equal(t, "initialize", err.Context["hook"])
		assert.Equal(t, "boom", err.Context["panic"])
	})
}

func TestResolutionErrors(t *testing.T) {
	err := NewFactoryNotFoundError("factory://missing")
	assert.Equal(t, errors.ErrorCode(ErrCodeFactoryNotFound), err.ErrorCode())
	assert.Equal(t, "factory://missing", err.Context["source"])

	cause := stderrors.New("open failed")
	resolveErr := NewResolverError("./mod.so", cause)
	assert.Equal(t, errors.ErrorCode(ErrCodeResolverError), resolveErr.ErrorCode())
	assert.ErrorIs(t, resolveErr, cause)
}

func TestBusAndWatcherErrors(t *testing.T) {
	panicErr := NewSubscriberPanicError("metrics.tick", "metrics-module", "index out of range")
	assert.Equal(t, errors.ErrorCode(ErrCodeSubscriberPanic), panicErr.ErrorCode())
	assert.Equal(t, "metrics.tick", panicErr.Context["event_type"])
	assert.Equal(t, "metrics-module", panicErr.Context["owner"])
	assert.Equal(t, "warning", panicErr.Severity)

	watchErr := NewWatcherError("poll failed", stderrors.New("stat: permission denied"))
	assert.Equal(t, errors.ErrorCode(ErrCodeWatcherError), watchErr.ErrorCode())
	assert.Contains(t, watchErr.Error(), "poll failed")
}

func TestConfigErrors(t *testing.T) {
	notFound := NewConfigNotFoundError("/etc/modules.yaml")
	assert.Equal(t, errors.ErrorCode(ErrCodeConfigNotFound), notFound.ErrorCode())
	assert.Equal(t, "/etc/modules.yaml", notFound.Context["config_path"])

	cause := stderrors.New("yaml: line 3")
	parseErr := NewConfigParseError("/etc/modules.yaml", cause)
	assert.Equal(t, errors.ErrorCode(ErrCodeConfigParseError), parseErr.ErrorCode())
	assert.ErrorIs(t, parseErr, cause)

	// Validation errors work both bare and wrapping a cause.
	bare := NewConfigValidationError("duplicate module name", nil)
	assert.Equal(t, errors.ErrorCode(ErrCodeConfigValidationError), bare.ErrorCode())

	durationCause := stderrors.New("time: invalid duration")
	wrapped := NewConfigValidationError("invalid duration", durationCause)
	assert.Equal(t, errors.ErrorCode(ErrCodeConfigValidationError), wrapped.ErrorCode())
	assert.ErrorIs(t, wrapped, durationCause)
}

func TestErrorCodesAreUnwrappableThroughWrapping(t *testing.T) {
	cause := NewSourceNotFoundError("factory://gone")
	wrapped := NewModuleLoadFailedError("gone", cause)

	var structured *errors.Error
	require.True(t, stderrors.As(wrapped, &structured))
	assert.Equal(t, errors.ErrorCode(ErrCodeModuleLoadFailed), structured.ErrorCode())
	assert.ErrorIs(t, wrapped, cause)
}
