package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/lahanevaibhav/Prod-Monitoring/internal/logsource"
	"github.com/lahanevaibhav/Prod-Monitoring/internal/pipeline"
)

// Config holds the complete application configuration
type Config struct {
	Version     string `yaml:"version" json:"version"`
	Environment string `yaml:"environment" json:"environment"`

	Collection CollectionConfig             `yaml:"collection" json:"collection"`
	Services   map[string]map[string]Target `yaml:"services" json:"services"`
	Classifier ClassifierConfig             `yaml:"classifier" json:"classifier"`
	AI         AIConfig                     `yaml:"ai" json:"ai"`
	Output     OutputConfig                 `yaml:"output" json:"output"`
}

// Target is one monitored deployment of a service in a region.
type Target struct {
	Dashboard string `yaml:"dashboard" json:"dashboard"`
	AWSRegion string `yaml:"aws_region" json:"aws_region"`
	LogGroup  string `yaml:"log_group" json:"log_group"`
}

// CollectionConfig configures log and metric collection
type CollectionConfig struct {
	DaysBack      int    `yaml:"days_back" json:"days_back"`           // window size in full days
	FilterPattern string `yaml:"filter_pattern" json:"filter_pattern"` // CloudWatch Logs filter
	MaxEntries    int    `yaml:"max_entries" json:"max_entries"`       // cap on fetched events
	MaxIterations int    `yaml:"max_iterations" json:"max_iterations"` // cap on pagination calls
	PageSize      int    `yaml:"page_size" json:"page_size"`           // events per page
	Workers       int    `yaml:"workers" json:"workers"`               // concurrent pairings
}

// ClassifierConfig configures signature extraction and redaction
type ClassifierConfig struct {
	Namespace        string   `yaml:"namespace" json:"namespace"`
	ExcludePatterns  []string `yaml:"exclude_patterns" json:"exclude_patterns"`
	NoisePatterns    []string `yaml:"noise_patterns" json:"noise_patterns"`
	DisableAnonymize bool     `yaml:"disable_anonymize" json:"disable_anonymize"`
}

// AIConfig configures the analysis endpoint
type AIConfig struct {
	Endpoint    string        `yaml:"endpoint" json:"endpoint"`         // Lambda handler URL
	APIKey      string        `yaml:"api_key" json:"api_key"`           // API key (support env var reference)
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`           // request timeout
	ContextFile string        `yaml:"context_file" json:"context_file"` // application context for prompts
}

// Enabled reports whether analysis can run at all.
func (a AIConfig) Enabled() bool {
	return a.Endpoint != "" && a.APIKey != ""
}

// OutputConfig configures output formatting and artifact emission
type OutputConfig struct {
	Dir           string `yaml:"dir" json:"dir"`                       // artifact tree root
	DefaultFormat string `yaml:"default_format" json:"default_format"` // terminal|json|markdown|csv
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`               // default verbosity
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version:     "1.0",
		Environment: "prod",
		Collection: CollectionConfig{
			DaysBack:      2,
			FilterPattern: logsource.DefaultFilterPattern,
			MaxEntries:    logsource.DefaultMaxEntries,
			MaxIterations: logsource.DefaultMaxIterations,
			PageSize:      logsource.DefaultPageSize,
			Workers:       4,
		},
		Services: map[string]map[string]Target{},
		Classifier: ClassifierConfig{
			Namespace: "com.nice.saas.wfo",
		},
		AI: AIConfig{
			Timeout: 120 * time.Second,
		},
		Output: OutputConfig{
			Dir:           "output",
			DefaultFormat: "terminal",
			ColorMode:     "auto",
		},
	}
}

// Pairings flattens the services map into a deterministic run list,
// sorted by service then region.
func (c *Config) Pairings() []pipeline.Pairing {
	var out []pipeline.Pairing
	for service, regions := range c.Services {
		for region, target := range regions {
			out = append(out, pipeline.Pairing{
				Service:   service,
				Region:    region,
				Dashboard: target.Dashboard,
				AWSRegion: target.AWSRegion,
				LogGroup:  target.LogGroup,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Service != out[j].Service {
			return out[i].Service < out[j].Service
		}
		return out[i].Region < out[j].Region
	})
	return out
}

// Window builds the collection interval: days_back full days before
// today, ending one second before today's midnight.
func (c *Config) Window(now time.Time) logsource.Window {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return logsource.Window{
		Start: todayStart.AddDate(0, 0, -c.Collection.DaysBack),
		End:   todayStart.Add(-time.Second),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateCollection(); err != nil {
		return err
	}
	if err := c.validateServices(); err != nil {
		return err
	}
	if err := c.validateAI(); err != nil {
		return err
	}
	return c.validateOutput()
}

func (c *Config) validateCollection() error {
	if c.Collection.DaysBack < 1 {
		return fmt.Errorf("days_back must be greater than 0")
	}
	if c.Collection.MaxEntries < 1 {
		return fmt.Errorf("max_entries must be greater than 0")
	}
	if c.Collection.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be greater than 0")
	}
	if c.Collection.PageSize < 1 {
		return fmt.Errorf("page_size must be greater than 0")
	}
	if c.Collection.Workers < 1 {
		return fmt.Errorf("workers must be greater than 0")
	}
	return nil
}

func (c *Config) validateServices() error {
	for service, regions := range c.Services {
		for region, target := range regions {
			if target.AWSRegion == "" {
				return fmt.Errorf("service %s region %s: aws_region is required", service, region)
			}
			if target.LogGroup == "" {
				return fmt.Errorf("service %s region %s: log_group is required", service, region)
			}
		}
	}
	return nil
}

func (c *Config) validateAI() error {
	if c.AI.Timeout < 0 {
		return fmt.Errorf("ai timeout must be non-negative")
	}
	if c.AI.Endpoint != "" && c.AI.APIKey == "" {
		return fmt.Errorf("ai api_key is required when an endpoint is configured")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"terminal": true,
			"text":     true,
			"json":     true,
			"markdown": true,
			"md":       true,
			"csv":      true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: terminal, json, markdown, csv)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	return nil
}
