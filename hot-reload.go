// hot-reload.go: dynamic configuration with Argus integration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"strconv"
	"sync"
	"time"

	"github.com/agilira/argus"
)

// HotConfig provides dynamic configuration reload capabilities using Argus.
// It watches a configuration file and automatically updates cache settings
// when changes are detected.
type HotConfig struct {
	cache   Cache
	watcher *argus.Watcher
	logger  Logger
	mu      sync.RWMutex
	config  Config

	// OnReload is called after configuration is successfully reloaded.
	// This callback is optional and must be fast and non-blocking.
	OnReload func(oldConfig, newConfig Config)
}

// HotConfigOptions configures hot reload behavior.
type HotConfigOptions struct {
	// ConfigPath is the path to the configuration file to watch.
	// Supports JSON, YAML, TOML, HCL, INI, Properties formats.
	ConfigPath string

	// PollInterval is how often to check for configuration changes.
	// Default: 1 second. Minimum: 100ms.
	PollInterval time.Duration

	// OnReload is called after configuration is successfully reloaded.
	OnReload func(oldConfig, newConfig Config)

	// Logger for hot reload operations.
	// If nil, uses the cache's logger.
	Logger Logger
}

// NewHotConfig creates a new hot-reloadable configuration for a cache.
// It starts watching the configuration file immediately.
//
// Example configuration file (YAML):
//
//	cache:
//	  ttl: "1h"
//	  max_live: 10000
//	  evict_on_failure: false
//
// Supported configuration keys:
//   - cache.ttl (duration string): Entry lifetime (e.g., "1h", "30m")
//   - cache.max_live (int): Residency budget for strongly held entries
//   - cache.evict_on_failure (bool): Drop failed computations immediately
//   - cache.sweep_interval (duration string): Reaper period; reported
//     only, since the period is fixed at construction
//
// Note: Changes to SweepInterval require cache reconstruction and are not
// applied dynamically. TTL, MaxLive and EvictOnFailure take effect on the
// running cache without disruption.
func NewHotConfig(cache Cache, opts HotConfigOptions) (*HotConfig, error) {
	if opts.ConfigPath == "" {
		return nil, NewErrInvalidConfigPath(opts.ConfigPath, nil)
	}

	if opts.PollInterval == 0 {
		opts.PollInterval = 1 * time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	if opts.Logger == nil {
		// Try to extract logger from cache if it implements LoggerGetter
		if lg, ok := cache.(interface{ Logger() Logger }); ok {
			opts.Logger = lg.Logger()
		} else {
			opts.Logger = NoOpLogger{}
		}
	}

	hc := &HotConfig{
		cache:    cache,
		logger:   opts.Logger,
		OnReload: opts.OnReload,
		config:   DefaultConfig(), // Start with defaults
	}

	// Create Argus config with specified PollInterval for fast file change detection
	argusConfig := argus.Config{
		PollInterval: opts.PollInterval,
	}

	// Use UniversalConfigWatcherWithConfig to pass custom poll interval
	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, hc.handleConfigChange, argusConfig)
	if err != nil {
		return nil, NewErrInvalidConfigPath(opts.ConfigPath, err)
	}
	hc.watcher = watcher

	return hc, nil
}

// Start begins watching the configuration file for changes.
// Note: The watcher monitors file changes at the configured PollInterval.
func (hc *HotConfig) Start() error {
	// Check if already running to avoid ARGUS_WATCHER_BUSY error
	if hc.watcher.IsRunning() {
		return nil // Already started
	}
	return hc.watcher.Start()
}

// Stop stops watching the configuration file.
// Returns any error from stopping the watcher.
func (hc *HotConfig) Stop() error {
	return hc.watcher.Stop()
}

// GetConfig returns the current configuration (thread-safe).
func (hc *HotConfig) GetConfig() Config {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.config
}

// handleConfigChange is called by Argus when configuration changes.
func (hc *HotConfig) handleConfigChange(configData map[string]interface{}) {
	hc.mu.Lock()
	oldConfig := hc.config
	newConfig := hc.parseConfig(configData)
	hc.config = newConfig
	hc.mu.Unlock()

	// Apply dynamic configuration changes
	hc.applyChanges(oldConfig, newConfig)

	// Trigger callback if set
	if hc.OnReload != nil {
		hc.OnReload(oldConfig, newConfig)
	}
}

// parsePositiveInt extracts a positive integer from interface{} value.
// Supports both int and float64 types (YAML/JSON may vary).
func parsePositiveInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return v, true
		}
	case float64:
		if v > 0 {
			return int(v), true
		}
	}
	return 0, false
}

// parseDuration extracts a time.Duration from a string value.
func parseDuration(value interface{}) (time.Duration, bool) {
	if str, ok := value.(string); ok {
		if d, err := time.ParseDuration(str); err == nil {
			return d, true
		}
	}
	return 0, false
}

// parseBool extracts a bool from interface{} value.
// Accepts native bools and strings like "true" (INI and Properties files).
func parseBool(value interface{}) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b, true
		}
	}
	return false, false
}

// parseConfig extracts cache configuration from Argus config data.
func (hc *HotConfig) parseConfig(data map[string]interface{}) Config {
	config := DefaultConfig()

	// Extract cache section - Argus might nest it or provide it directly
	cacheSection, ok := data["cache"].(map[string]interface{})
	if !ok {
		// Try if the whole data IS the cache section
		if _, hasTTL := data["ttl"]; hasTTL {
			cacheSection = data
		} else {
			return config
		}
	}

	// Parse TTL (string duration like "1h", "30m")
	if ttl, ok := parseDuration(cacheSection["ttl"]); ok {
		config.TTL = ttl
	}

	// Parse MaxLive
	if maxLive, ok := parsePositiveInt(cacheSection["max_live"]); ok {
		config.MaxLive = maxLive
	}

	// Parse EvictOnFailure
	if evict, ok := parseBool(cacheSection["evict_on_failure"]); ok {
		config.EvictOnFailure = evict
	}

	// Parse SweepInterval (reported only, never applied at runtime)
	if interval, ok := parseDuration(cacheSection["sweep_interval"]); ok {
		config.SweepInterval = interval
	}

	return config
}

// applyChanges applies configuration changes to the running cache.
// TTL takes effect on the next sweep, MaxLive sheds cold references
// immediately when shrinking, EvictOnFailure applies to the next failed
// computation. The sweep period is fixed at construction; a changed
// sweep_interval is logged and skipped.
func (hc *HotConfig) applyChanges(old, new Config) {
	target, ok := hc.cache.(*memoCache)
	if !ok {
		hc.logger.Warn("cache does not support dynamic reconfiguration")
		return
	}

	if new.TTL > 0 && new.TTL != old.TTL {
		target.setTTL(new.TTL)
		hc.logger.Info("ttl updated", "old", old.TTL.String(), "new", new.TTL.String())
	}

	if new.MaxLive > 0 && new.MaxLive != old.MaxLive {
		target.setMaxLive(new.MaxLive)
		hc.logger.Info("max_live updated", "old", old.MaxLive, "new", new.MaxLive)
	}

	if new.EvictOnFailure != old.EvictOnFailure {
		target.setEvictOnFailure(new.EvictOnFailure)
		hc.logger.Info("evict_on_failure updated", "old", old.EvictOnFailure, "new", new.EvictOnFailure)
	}

	if new.SweepInterval != old.SweepInterval {
		hc.logger.Warn("sweep_interval changes require cache reconstruction",
			"current", old.SweepInterval.String(), "requested", new.SweepInterval.String())
	}
}
