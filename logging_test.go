// logging_test.go: Logger normalization and test logger tests
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

func TestNewLogger(t *testing.T) {
	t.Run("logger interface passes through", func(t *testing.T) {
		custom := NewTestLogger()
		assert.Same(t, Logger(custom), NewLogger(custom))
	})

	t.Run("nil yields a no-op logger", func(t *testing.T) {
		logger := NewLogger(nil)
		require.NotNil(t, logger)
		assert.IsType(t, &NoOpLogger{}, logger)
	})

	t.Run("unsupported type panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewLogger("not a logger")
		})
	})
}

func TestNoOpLogger(t *testing.T) {
	logger := NewNoOpLogger()

	assert.NotPanics(t, func() {
		logger.Debug("debug", "k", "v")
		logger.Info("info")
		logger.Warn("warn")
		logger.Error("error")
	})
	assert.Same(t, Logger(logger), logger.With("k", "v"))
}

func TestTestLogger_CapturesMessages(t *testing.T) {
	logger := NewTestLogger()

	logger.Info("Module loaded", "module", "cache")
	logger.Warn("Module reload failed, previous instance restored", "module", "cache")

	require.Len(t, logger.Messages, 2)
	assert.Equal(t, "INFO", logger.Messages[0].Level)
	assert.Equal(t, "Module loaded", logger.Messages[0].Message)
	assert.Equal(t, []any{"module", "cache"}, logger.Messages[0].Args)

	assert.True(t, logger.HasMessage("WARN", "Module reload failed, previous instance restored"))
	assert.False(t, logger.HasMessage("ERROR", "Module loaded"))

	logger.Clear()
	assert.Empty(t, logger.Messages)
}
