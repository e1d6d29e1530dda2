// config_loader.go: configuration loading from multiple sources (JSON file,
// environment, combined), plus Argus-backed hot reload.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"
)

func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("empty file path")
	}
	if strings.Contains(filepath.Clean(filename), "..") {
		return fmt.Errorf("path contains directory traversal: %s", filename)
	}
	return nil
}

// jsonConfigFile mirrors the on-disk shape `log_target` and friends take in
// JSON configuration files.
type jsonConfigFile struct {
	LogLevel     string            `json:"log_level"`
	ReportLevel  string            `json:"report_level"`
	LogFormat    string            `json:"log_format"`
	LogFilter    string            `json:"log_filter"`
	LogRateLimit string            `json:"log_rate_limit"`
	Sources      map[string]string `json:"sources"` // qname -> log_level value
	Targets      []string          `json:"log_target"`
}

// LoadConfigFromJSON loads a Config from a JSON file.
func LoadConfigFromJSON(filename string) (*Config, error) {
	cfg := DefaultConfig()
	if err := validateFilePath(filename); err != nil {
		return cfg, wrapEngineError(err, ErrCodeInvalidArgument, "invalid config file path")
	}
	data, err := os.ReadFile(filename) // #nosec G304 -- path validated above
	if err != nil {
		return cfg, wrapEngineError(err, ErrCodeIoError, "failed to read config file")
	}
	return ParseConfigJSON(data)
}

// ParseConfigJSON parses raw JSON bytes into a Config (`configureByString`
// for JSON-formatted text).
func ParseConfigJSON(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	var doc jsonConfigFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return cfg, wrapEngineError(err, ErrCodeInvalidArgument, "failed to parse JSON config")
	}

	if doc.LogLevel != "" {
		lvl, mode, err := ParsePropagatedLevel(doc.LogLevel)
		if err != nil {
			return cfg, err
		}
		cfg.RootLevel, cfg.RootPropagate = lvl, mode
	}
	if doc.ReportLevel != "" {
		lvl, _, err := ParsePropagatedLevel(doc.ReportLevel)
		if err != nil {
			return cfg, err
		}
		cfg.ReportLevel = lvl
	}
	cfg.Format = doc.LogFormat
	cfg.FilterSpec = doc.LogFilter

	if doc.LogRateLimit != "" {
		rl, err := ParseRateLimitSpec(doc.LogRateLimit)
		if err != nil {
			return cfg, err
		}
		cfg.RateLimit = rl
	}

	for qname, levelStr := range doc.Sources {
		lvl, mode, err := ParsePropagatedLevel(levelStr)
		if err != nil {
			return cfg, err
		}
		cfg.Sources = append(cfg.Sources, SourceConfig{QName: qname, Level: lvl, Propagate: mode})
	}

	for _, raw := range doc.Targets {
		tc, err := ParseTargetURL(raw)
		if err != nil {
			return cfg, err
		}
		cfg.Targets = append(cfg.Targets, tc)
	}

	return cfg, nil
}

// LoadConfigFromEnv loads overrides from five environment variables:
// ELOG_LOG_LEVEL, ELOG_REPORT_LEVEL, ELOG_LOG_FORMAT, ELOG_LOG_FILTER and
// ELOG_LOG_RATE_LIMIT. It reads no other keys: per-source keys (such as a
// source's log_level) and target keys are not taken from the environment
// here. A value that fails to parse is ignored.
func LoadConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("ELOG_LOG_LEVEL"); v != "" {
		if lvl, mode, err := ParsePropagatedLevel(v); err == nil {
			cfg.RootLevel, cfg.RootPropagate = lvl, mode
		}
	}
	if v := os.Getenv("ELOG_REPORT_LEVEL"); v != "" {
		if lvl, err := ParseLevel(v); err == nil {
			cfg.ReportLevel = lvl
		}
	}
	if v := os.Getenv("ELOG_LOG_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("ELOG_LOG_FILTER"); v != "" {
		cfg.FilterSpec = v
	}
	if v := os.Getenv("ELOG_LOG_RATE_LIMIT"); v != "" {
		if rl, err := ParseRateLimitSpec(v); err == nil {
			cfg.RateLimit = rl
		}
	}
	return cfg
}

// LoadConfigMultiSource loads jsonFile (if non-empty) then layers
// environment overrides on top: environment wins over file, file wins
// over defaults.
func LoadConfigMultiSource(jsonFile string) (*Config, error) {
	cfg := DefaultConfig()
	if jsonFile != "" {
		fileCfg, err := LoadConfigFromJSON(jsonFile)
		if err != nil {
			return cfg, err
		}
		cfg = fileCfg
	}
	env := LoadConfigFromEnv()
	if _, ok := os.LookupEnv("ELOG_LOG_LEVEL"); ok {
		cfg.RootLevel, cfg.RootPropagate = env.RootLevel, env.RootPropagate
	}
	if _, ok := os.LookupEnv("ELOG_REPORT_LEVEL"); ok {
		cfg.ReportLevel = env.ReportLevel
	}
	if _, ok := os.LookupEnv("ELOG_LOG_FORMAT"); ok {
		cfg.Format = env.Format
	}
	if _, ok := os.LookupEnv("ELOG_LOG_FILTER"); ok {
		cfg.FilterSpec = env.FilterSpec
	}
	if _, ok := os.LookupEnv("ELOG_LOG_RATE_LIMIT"); ok {
		cfg.RateLimit = env.RateLimit
	}
	return cfg, nil
}

// ConfigWatcher watches a configuration file for changes with Argus and
// re-applies the reloaded Config against an Engine.
type ConfigWatcher struct {
	configPath string
	engine     *Engine
	watcher    *argus.Watcher
	enabled    int32
	mu         sync.Mutex
}

// NewConfigWatcher creates a watcher for configPath, applying its initial
// contents to engine immediately.
func NewConfigWatcher(configPath string, engine *Engine) (*ConfigWatcher, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, wrapEngineError(err, ErrCodeIoError, "config file does not exist")
	}

	acfg := argus.Config{
		PollInterval:         2 * time.Second,
		OptimizationStrategy: argus.OptimizationAuto,
		ErrorHandler: func(err error, path string) {
			handleError(wrapEngineError(err, ErrCodeIoError, "config watcher error for "+path))
		},
	}
	watcher := argus.New(*acfg.WithDefaults())

	return &ConfigWatcher{configPath: configPath, engine: engine, watcher: watcher}, nil
}

// Start begins watching the configuration file, applying the initial
// configuration synchronously before returning.
func (w *ConfigWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if atomic.LoadInt32(&w.enabled) != 0 {
		return newEngineError(ErrCodeInvalidState, "ConfigWatcher.Start", "watcher already started")
	}

	if cfg, err := LoadConfigFromJSON(w.configPath); err == nil {
		_ = cfg.Apply(w.engine)
	}

	if err := w.watcher.Watch(w.configPath, func(event argus.ChangeEvent) {
		cfg, err := LoadConfigFromJSON(event.Path)
		if err != nil {
			handleError(wrapEngineError(err, ErrCodeInvalidArgument, "failed to reload config from "+event.Path))
			return
		}
		if err := cfg.Apply(w.engine); err != nil {
			handleError(wrapEngineError(err, ErrCodeInvalidState, "failed to apply reloaded config"))
			return
		}
		w.engine.Report().Infof("configuration reloaded from %s", event.Path)
	}); err != nil {
		return wrapEngineError(err, ErrCodeIoError, "failed to set up config file watcher")
	}

	if err := w.watcher.Start(); err != nil {
		return wrapEngineError(err, ErrCodeIoError, "failed to start config file watcher")
	}
	atomic.StoreInt32(&w.enabled, 1)
	return nil
}

// Stop halts the file watcher.
func (w *ConfigWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if atomic.LoadInt32(&w.enabled) == 0 {
		return newEngineError(ErrCodeInvalidState, "ConfigWatcher.Stop", "watcher is not started")
	}
	if err := w.watcher.Stop(); err != nil {
		return wrapEngineError(err, ErrCodeIoError, "failed to stop config file watcher")
	}
	atomic.StoreInt32(&w.enabled, 0)
	return nil
}

// IsRunning reports whether the watcher is currently active.
func (w *ConfigWatcher) IsRunning() bool { return atomic.LoadInt32(&w.enabled) != 0 }
