package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.prodmon.yaml",               // Project-specific config (highest priority)
	"~/.config/prodmon/config.yaml", // User config
	"/etc/prodmon/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. ./.prodmon.yaml
// 4. ~/.config/prodmon/config.yaml
// 5. /etc/prodmon/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	// A custom path replaces the search entirely.
	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Load lowest priority first so later files win.
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			expandedPath := expandPath(l.configPaths[i])
			if !fileExists(expandedPath) {
				continue
			}
			if err := l.loadFromFile(config, expandedPath); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
			}
		}
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile loads configuration from a YAML file and merges it with existing config
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() before reaching here
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	mergeConfigs(config, &fileConfig)
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		"PRODMON_ENVIRONMENT": func(v string) error { config.Environment = v; return nil },

		// Collection Config
		"PRODMON_COLLECTION_DAYS_BACK":      func(v string) error { return parseInt(v, &config.Collection.DaysBack) },
		"PRODMON_COLLECTION_FILTER_PATTERN": func(v string) error { config.Collection.FilterPattern = v; return nil },
		"PRODMON_COLLECTION_MAX_ENTRIES":    func(v string) error { return parseInt(v, &config.Collection.MaxEntries) },
		"PRODMON_COLLECTION_MAX_ITERATIONS": func(v string) error { return parseInt(v, &config.Collection.MaxIterations) },
		"PRODMON_COLLECTION_PAGE_SIZE":      func(v string) error { return parseInt(v, &config.Collection.PageSize) },
		"PRODMON_COLLECTION_WORKERS":        func(v string) error { return parseInt(v, &config.Collection.Workers) },

		// Classifier Config
		"PRODMON_CLASSIFIER_NAMESPACE":         func(v string) error { config.Classifier.Namespace = v; return nil },
		"PRODMON_CLASSIFIER_DISABLE_ANONYMIZE": func(v string) error { return parseBool(v, &config.Classifier.DisableAnonymize) },

		// AI Config
		"PRODMON_AI_ENDPOINT":     func(v string) error { config.AI.Endpoint = v; return nil },
		"PRODMON_AI_API_KEY":      func(v string) error { config.AI.APIKey = v; return nil },
		"PRODMON_AI_TIMEOUT":      func(v string) error { return parseDuration(v, &config.AI.Timeout) },
		"PRODMON_AI_CONTEXT_FILE": func(v string) error { config.AI.ContextFile = v; return nil },

		// Output Config
		"PRODMON_OUTPUT_DIR":            func(v string) error { config.Output.Dir = v; return nil },
		"PRODMON_OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"PRODMON_OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"PRODMON_OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },
	}

	for envVar, setter := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	// Comma-separated pattern lists.
	if patterns := os.Getenv("PRODMON_CLASSIFIER_EXCLUDE_PATTERNS"); patterns != "" {
		config.Classifier.ExcludePatterns = splitList(patterns)
	}
	if patterns := os.Getenv("PRODMON_CLASSIFIER_NOISE_PATTERNS"); patterns != "" {
		config.Classifier.NoisePatterns = splitList(patterns)
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// Helper functions

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/etc/passwd") ||
		strings.HasPrefix(absPath, "/etc/shadow") ||
		strings.HasPrefix(absPath, "/proc/") ||
		strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// mergeConfigs merges source config into destination config.
// Only non-zero values from source overwrite destination.
func mergeConfigs(dst, src *Config) {
	if src.Version != "" {
		dst.Version = src.Version
	}
	if src.Environment != "" {
		dst.Environment = src.Environment
	}
	if len(src.Services) > 0 {
		dst.Services = src.Services
	}

	mergeCollectionConfig(&dst.Collection, &src.Collection)
	mergeClassifierConfig(&dst.Classifier, &src.Classifier)
	mergeAIConfig(&dst.AI, &src.AI)
	mergeOutputConfig(&dst.Output, &src.Output)
}

func mergeCollectionConfig(dst, src *CollectionConfig) {
	if src.DaysBack != 0 {
		dst.DaysBack = src.DaysBack
	}
	if src.FilterPattern != "" {
		dst.FilterPattern = src.FilterPattern
	}
	if src.MaxEntries != 0 {
		dst.MaxEntries = src.MaxEntries
	}
	if src.MaxIterations != 0 {
		dst.MaxIterations = src.MaxIterations
	}
	if src.PageSize != 0 {
		dst.PageSize = src.PageSize
	}
	if src.Workers != 0 {
		dst.Workers = src.Workers
	}
}

func mergeClassifierConfig(dst, src *ClassifierConfig) {
	if src.Namespace != "" {
		dst.Namespace = src.Namespace
	}
	if len(src.ExcludePatterns) > 0 {
		dst.ExcludePatterns = src.ExcludePatterns
	}
	if len(src.NoisePatterns) > 0 {
		dst.NoisePatterns = src.NoisePatterns
	}
	if src.DisableAnonymize {
		dst.DisableAnonymize = true
	}
}

func mergeAIConfig(dst, src *AIConfig) {
	if src.Endpoint != "" {
		dst.Endpoint = src.Endpoint
	}
	if src.APIKey != "" {
		dst.APIKey = src.APIKey
	}
	if src.Timeout != 0 {
		dst.Timeout = src.Timeout
	}
	if src.ContextFile != "" {
		dst.ContextFile = src.ContextFile
	}
}

func mergeOutputConfig(dst, src *OutputConfig) {
	if src.Dir != "" {
		dst.Dir = src.Dir
	}
	if src.DefaultFormat != "" {
		dst.DefaultFormat = src.DefaultFormat
	}
	if src.ColorMode != "" {
		dst.ColorMode = src.ColorMode
	}
	if src.Verbose {
		dst.Verbose = true
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

// Type conversion helpers

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
