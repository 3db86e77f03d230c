// types_test.go: Status enumeration and descriptor serialization tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleStatus_String(t *testing.T) {
	assert.Equal(t, "unloaded", StatusUnloaded.String())
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "initialized", StatusInitialized.String())
	assert.Equal(t, "reloading", StatusReloading.String())
	assert.Equal(t, "shutting_down", StatusShuttingDown.String())
	assert.Equal(t, "unloaded", ModuleStatus(99).String())
}

func TestModuleState_JSONOmitsEmptyError(t *testing.T) {
	state := ModuleState{
		Name:   "cache",
		Source: "factory://cache",
		Status: StatusInitialized,
	}

	data, err := json.Marshal(state)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "last_error")

	state.LastError = "Module reload failed"
	data, err = json.Marshal(state)
	require.NoError(t, err)
	assert.Contains(t, string(data), "last_error")
}
