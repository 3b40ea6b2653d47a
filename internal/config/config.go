// Copyright 2026 durck. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package config implements the layered configuration load described in
// SPEC_FULL.md §2: built-in defaults < on-disk YAML file < environment
// variables < command-line flag overrides. The single Config struct below
// is the source of truth for every key in spec.md §6's configuration table;
// cmd/docindex takes its flag defaults from its fields.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the crawl engine's configuration. Field names mirror the keys
// documented in spec.md §6.
type Config struct {
	DefaultThreadCount   int      `yaml:"default-thread-count"`
	CommandTimeoutSecs   int      `yaml:"command-timeout-seconds"`
	ImageTimeoutSecs     int      `yaml:"image-timeout-seconds"`
	AudioTimeoutSecs     int      `yaml:"audio-timeout-seconds"`
	MaxRecursionDepth    int      `yaml:"max-recursion-depth"`
	TempDir              string   `yaml:"temp-dir"`
	OCRLanguages         []string `yaml:"ocr-languages"`
	OCRMinText           int      `yaml:"ocr-min-text"`
	OCRMaxImages         int      `yaml:"ocr-max-images"`
	OCRDisabled          bool     `yaml:"ocr-disabled"`
	AudioDisabled        bool     `yaml:"audio-disabled"`
	ImagesDir            string   `yaml:"images-dir"`
	ExcludeDirs          []string `yaml:"exclude-dirs"`
	DedupeEnabled        bool     `yaml:"dedupe-enabled"`
	DedupeHash           string   `yaml:"dedupe-hash"`
	CSVBufferBytes       int      `yaml:"csv-buffer-bytes"`
	SessionBackend       string   `yaml:"session-backend"`
	LogLevel             string   `yaml:"log-level"`
	LogFile              string   `yaml:"log-file"`
	SecretsFile          string   `yaml:"secrets-file"`
	SearchIndexDir       string   `yaml:"search-index-dir"`
	SearchBatchSize      int      `yaml:"search-batch-size"`
}

// Defaults returns the built-in configuration used as the bottom layer.
func Defaults() Config {
	return Config{
		DefaultThreadCount: 4,
		CommandTimeoutSecs: 60,
		ImageTimeoutSecs:   120,
		AudioTimeoutSecs:   300,
		MaxRecursionDepth:  5,
		TempDir:            os.TempDir(),
		OCRMinText:         100,
		OCRMaxImages:       10,
		DedupeHash:         "sha256",
		CSVBufferBytes:     64 * 1024,
		SessionBackend:     "relational",
		LogLevel:           "INFO",
		SearchBatchSize:    500,
	}
}

// candidatePaths is the documented list of locations searched for an
// on-disk configuration file, in order, first match wins.
func candidatePaths() []string {
	paths := []string{"docindex.yaml", "docindex.yml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home+"/.config/docindex/config.yaml")
	}
	paths = append(paths, "/etc/docindex/config.yaml")
	return paths
}

// Load builds the layered configuration: defaults, then the first on-disk
// file found (or explicitPath if given), then environment variable
// overrides. Flag overrides are applied by the caller after Load returns,
// since they are parsed by the cmd package.
func Load(explicitPath string) (Config, error) {
	cfg := Defaults()

	path := explicitPath
	if path == "" {
		for _, p := range candidatePaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !(explicitPath == "" && os.IsNotExist(err)) {
				return cfg, fmt.Errorf("config: reading %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

const envPrefix = "DOCINDEX_"

func applyEnv(cfg *Config) {
	getInt := func(key string, dst *int) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	getBool := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	getStr := func(key string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = v
		}
	}
	getList := func(key string, dst *[]string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = splitNonEmpty(v, ",")
		}
	}

	getInt("DEFAULT_THREAD_COUNT", &cfg.DefaultThreadCount)
	getInt("COMMAND_TIMEOUT_SECONDS", &cfg.CommandTimeoutSecs)
	getInt("IMAGE_TIMEOUT_SECONDS", &cfg.ImageTimeoutSecs)
	getInt("AUDIO_TIMEOUT_SECONDS", &cfg.AudioTimeoutSecs)
	getInt("MAX_RECURSION_DEPTH", &cfg.MaxRecursionDepth)
	getStr("TEMP_DIR", &cfg.TempDir)
	getList("OCR_LANGUAGES", &cfg.OCRLanguages)
	getInt("OCR_MIN_TEXT", &cfg.OCRMinText)
	getInt("OCR_MAX_IMAGES", &cfg.OCRMaxImages)
	getBool("OCR_DISABLED", &cfg.OCRDisabled)
	getBool("AUDIO_DISABLED", &cfg.AudioDisabled)
	getStr("IMAGES_DIR", &cfg.ImagesDir)
	getList("EXCLUDE_DIRS", &cfg.ExcludeDirs)
	getBool("DEDUPE_ENABLED", &cfg.DedupeEnabled)
	getStr("DEDUPE_HASH", &cfg.DedupeHash)
	getInt("CSV_BUFFER_BYTES", &cfg.CSVBufferBytes)
	getStr("SESSION_BACKEND", &cfg.SessionBackend)
	getStr("LOG_LEVEL", &cfg.LogLevel)
	getStr("LOG_FILE", &cfg.LogFile)
	getStr("SECRETS_FILE", &cfg.SecretsFile)
	getStr("SEARCH_INDEX_DIR", &cfg.SearchIndexDir)
	getInt("SEARCH_BATCH_SIZE", &cfg.SearchBatchSize)
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
