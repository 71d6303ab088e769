// Package config holds the run configuration: defaults, the optional YAML
// file and validation. Flag overrides are applied by the cmd package before
// Validate is called; from then on the Config is treated as read-only.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy decides what a failure of a given class does to the run.
type Policy string

const (
	PolicySkip  Policy = "skip"  // Log and carry on (tool skipped or file failed).
	PolicyAbort Policy = "abort" // Stop the whole batch.
)

// Priority names accepted for tool processes.
var Priorities = []string{"Idle", "BelowNormal", "Normal", "AboveNormal", "High", "RealTime"}

// Config captures every setting that shapes a minify run.
type Config struct {
	// Output naming.
	Output string `yaml:"output"` // Output directory override.
	Format string `yaml:"format"` // Conversion target (jpg, png, gif) or empty.
	Prefix string `yaml:"prefix"`
	Suffix string `yaml:"suffix"` // Default: ".min".

	// Tool chain.
	Quality       int      `yaml:"quality"`  // 0-100, default 95.
	Priority      string   `yaml:"priority"` // Default: "BelowNormal".
	Lossy         bool     `yaml:"lossy"`
	ToolDir       string   `yaml:"tool_dir"`
	DisabledTools []string `yaml:"disabled_tools"`
	BuiltinStrip  bool     `yaml:"builtin_strip"` // Default: true.
	PreserveICC   bool     `yaml:"preserve_icc"`
	Verify        bool     `yaml:"verify"` // Default: true. Re-decode smaller results.

	// Failure policies.
	OnToolError    Policy `yaml:"on_tool_error"`    // Default: skip.
	OnPublishError Policy `yaml:"on_publish_error"` // Default: skip.

	// Batch behaviour.
	TempDir          string `yaml:"temp_dir"`
	ConfirmThreshold int    `yaml:"confirm_threshold"` // Default: 30.
	Overwrite        bool   `yaml:"overwrite"`
	SkipWarnings     bool   `yaml:"skip_warnings"`
	TestMode         bool   `yaml:"-"`

	// Display and logging.
	Verbosity int    `yaml:"verbosity"`
	Plain     bool   `yaml:"plain"`
	LogFile   string `yaml:"log_file"`
	Pause     bool   `yaml:"pause"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Suffix:           ".min",
		Quality:          95,
		Priority:         "BelowNormal",
		BuiltinStrip:     true,
		Verify:           true,
		OnToolError:      PolicySkip,
		OnPublishError:   PolicySkip,
		TempDir:          os.TempDir(),
		ConfirmThreshold: 30,
	}
}

// DefaultPath is where Load looks when no --config flag is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "imgmin", "config.yaml")
}

// Load reads the YAML configuration at path over the defaults. A missing
// file yields the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges and enum fields and canonicalises the priority name.
func (c *Config) Validate() error {
	if c.Quality < 0 || c.Quality > 100 {
		return fmt.Errorf("quality must be between 0 and 100, got %d", c.Quality)
	}

	priority, ok := canonicalPriority(c.Priority)
	if !ok {
		return fmt.Errorf("invalid process priority %q (allowed: %s)", c.Priority, strings.Join(Priorities, ", "))
	}
	c.Priority = priority

	for name, p := range map[string]Policy{"on_tool_error": c.OnToolError, "on_publish_error": c.OnPublishError} {
		switch p {
		case PolicySkip, PolicyAbort:
		default:
			return fmt.Errorf("invalid %s policy %q (use 'skip' or 'abort')", name, p)
		}
	}

	switch strings.ToLower(strings.TrimPrefix(c.Format, ".")) {
	case "", "jpg", "jpeg", "png", "gif":
	default:
		return fmt.Errorf("unsupported conversion format %q (use jpg, png or gif)", c.Format)
	}

	if strings.ContainsAny(c.Prefix+c.Suffix, `/\`) {
		return errors.New("prefix and suffix must not contain path separators")
	}
	if c.Prefix == "" && c.Suffix == "" && c.Output == "" {
		return errors.New("empty prefix and suffix without an output directory would overwrite the input")
	}

	if c.ConfirmThreshold < 0 {
		return errors.New("confirm_threshold must not be negative")
	}
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
	return nil
}

func canonicalPriority(name string) (string, bool) {
	for _, p := range Priorities {
		if strings.EqualFold(p, name) {
			return p, true
		}
	}
	return "", false
}
