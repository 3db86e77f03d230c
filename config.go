// config.go: Runtime configuration model, parsing and validation
//
// The runtime consumes a parsed list of module declarations plus a few
// host-level knobs. Files are parsed with a hybrid strategy: Argus for
// format detection, encoding/json and yaml.v3 for the structured decode.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	"encoding/json"
	"os"
	"time"

	"github.com/agilira/argus"
	"gopkg.in/yaml.v3"
)

// RuntimeConfig declares the modules to run and the runtime's behavior.
type RuntimeConfig struct {
	// Modules is the declarative module list, loaded in order at startup.
	Modules []ModuleDescriptor `json:"modules" yaml:"modules"`

	// HotReload globally enables the hot-reload watcher. When false the
	// watcher is never constructed and reloads happen only on explicit
	// Reload calls.
	HotReload bool `json:"hot_reload" yaml:"hot_reload"`

	// Watch tunes the hot-reload watcher; zero values take defaults.
	Watch WatchOptions `json:"watch,omitempty" yaml:"watch,omitempty"`

	// Loader tunes the module loader; zero values take defaults.
	Loader LoaderOptions `json:"loader,omitempty" yaml:"loader,omitempty"`
}

// Validate checks the configuration for structural problems: an empty
// module list, empty or duplicate names, and enabled modules without a
// source location. The first problem found is returned as a typed error.
func (c *RuntimeConfig) Validate() error {
	if len(c.Modules) == 0 {
		return NewNoModulesConfiguredError()
	}

	seen := make(map[string]bool, len(c.Modules))
	for _, descriptor := range c.Modules {
		if descriptor.Name == "" {
			return NewInvalidModuleNameError(descriptor.Name)
		}
		if seen[descriptor.Name] {
			return NewDuplicateModuleNameError(descriptor.Name)
		}
		seen[descriptor.Name] = true

		if descriptor.Enabled && descriptor.Source == "" {
			return NewMissingSourceError(descriptor.Name)
		}
	}
	return nil
}

// rawModuleDescriptor mirrors ModuleDescriptor with a pointer Enabled so
// an absent field defaults to true rather than false.
type rawModuleDescriptor struct {
	Name    string         `json:"name" yaml:"name"`
	Source  string         `json:"source" yaml:"source"`
	Enabled *bool          `json:"enabled" yaml:"enabled"`
	Config  map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// rawWatchOptions and rawLoaderOptions carry durations as strings in the
// Go duration syntax ("500ms", "10s") so both JSON and YAML files can
// express them.
type rawWatchOptions struct {
	PollInterval      string `json:"poll_interval" yaml:"poll_interval"`
	CacheTTL          string `json:"cache_ttl" yaml:"cache_ttl"`
	MaxWatchedSources int    `json:"max_watched_sources" yaml:"max_watched_sources"`
}

type rawLoaderOptions struct {
	ShutdownTimeout string `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type rawRuntimeConfig struct {
	Modules   []rawModuleDescriptor `json:"modules" yaml:"modules"`
	HotReload bool                  `json:"hot_reload" yaml:"hot_reload"`
	Watch     rawWatchOptions       `json:"watch,omitempty" yaml:"watch,omitempty"`
	Loader    rawLoaderOptions      `json:"loader,omitempty" yaml:"loader,omitempty"`
}

// parseDuration parses a Go duration string, treating the empty string as
// zero so absent fields fall through to the component defaults.
func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, NewConfigValidationError("invalid duration for "+field, err)
	}
	return d, nil
}

// LoadRuntimeConfig reads, parses and validates a runtime configuration
// file. JSON and YAML are supported; the format is detected from the path.
func LoadRuntimeConfig(path string) (RuntimeConfig, error) {
	var config RuntimeConfig

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, NewConfigNotFoundError(path)
		}
		return config, NewConfigParseError(path, err)
	}

	parsed, err := ParseRuntimeConfig(raw, argus.DetectFormat(path))
	if err != nil {
		return config, NewConfigParseError(path, err)
	}

	if err := parsed.Validate(); err != nil {
		return config, err
	}
	return parsed, nil
}

// ParseRuntimeConfig decodes configuration bytes in the given format.
// Descriptors omitting the enabled field default to enabled.
func ParseRuntimeConfig(data []byte, format argus.ConfigFormat) (RuntimeConfig, error) {
	var raw rawRuntimeConfig

	switch format {
	case argus.FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return RuntimeConfig{}, err
		}
	case argus.FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return RuntimeConfig{}, err
		}
	default:
		return RuntimeConfig{}, NewConfigValidationError("unsupported config format: "+format.String(), nil)
	}

	pollInterval, err := parseDuration("watch.poll_interval", raw.Watch.PollInterval)
	if err != nil {
		return RuntimeConfig{}, err
	}
	cacheTTL, err := parseDuration("watch.cache_ttl", raw.Watch.CacheTTL)
	if err != nil {
		return RuntimeConfig{}, err
	}
	shutdownTimeout, err := parseDuration("loader.shutdown_timeout", raw.Loader.ShutdownTimeout)
	if err != nil {
		return RuntimeConfig{}, err
	}

	config := RuntimeConfig{
		Modules:   make([]ModuleDescriptor, 0, len(raw.Modules)),
		HotReload: raw.HotReload,
		Watch: WatchOptions{
			PollInterval:      pollInterval,
			CacheTTL:          cacheTTL,
			MaxWatchedSources: raw.Watch.MaxWatchedSources,
		},
		Loader: LoaderOptions{
			ShutdownTimeout: shutdownTimeout,
		},
	}
	for _, m := range raw.Modules {
		enabled := true
		if m.Enabled != nil {
			enabled = *m.Enabled
		}
		config.Modules = append(config.Modules, ModuleDescriptor{
			Name:    m.Name,
			Source:  m.Source,
			Enabled: enabled,
			Config:  m.Config,
		})
	}
	return config, nil
}
