package process

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration for YAML fields like "500ms" or "2s".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// LogOptions holds logging settings.
type LogOptions struct {
	Level     string `yaml:"level"`
	File      string `yaml:"file"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

// OutputOptions holds output file naming settings.
type OutputOptions struct {
	// Suffix is inserted before the file extension when no explicit
	// output path is given: model.gcode -> model_post.gcode.
	Suffix string `yaml:"suffix"`
}

// WatchOptions holds directory watching settings.
type WatchOptions struct {
	Dirs     []string `yaml:"dirs"`
	Pattern  string   `yaml:"pattern"`
	Debounce Duration `yaml:"debounce"`
}

// Options is the tool-level configuration, separate from the
// per-script settings profile.
type Options struct {
	Log    LogOptions    `yaml:"log"`
	Output OutputOptions `yaml:"output"`
	Watch  WatchOptions  `yaml:"watch"`
}

// DefaultOptions returns the built-in defaults.
func DefaultOptions() Options {
	return Options{
		Log:    LogOptions{Level: "info", MaxSizeMB: 10},
		Output: OutputOptions{Suffix: "_post"},
		Watch: WatchOptions{
			Pattern:  "*.gcode",
			Debounce: Duration(500 * time.Millisecond),
		},
	}
}

// LoadOptions reads tool options from a YAML file. A missing file is
// not an error; the defaults are returned.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return opts, fmt.Errorf("process: read options %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("process: parse options %s: %w", path, err)
	}
	if opts.Log.Level == "" {
		opts.Log.Level = "info"
	}
	if opts.Output.Suffix == "" {
		opts.Output.Suffix = "_post"
	}
	if opts.Watch.Pattern == "" {
		opts.Watch.Pattern = "*.gcode"
	}
	if opts.Watch.Debounce <= 0 {
		opts.Watch.Debounce = Duration(500 * time.Millisecond)
	}
	return opts, nil
}
