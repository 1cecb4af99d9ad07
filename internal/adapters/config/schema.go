package config

import (
	"strconv"
	"time"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Stitchfile represents the structure of the stitch.yaml configuration file.
type Stitchfile struct {
	Version    string   `yaml:"version"`
	DocsDir    string   `yaml:"docs_dir"`
	OutDir     string   `yaml:"out_dir"`
	OpeningTag string   `yaml:"opening_tag"`
	ClosingTag string   `yaml:"closing_tag"`
	Exclude    []string `yaml:"exclude"`
	// Directives renames the built-in directives, keyed by their default name.
	Directives   map[string]string `yaml:"directives"`
	Defaults     map[string]Scalar `yaml:"defaults"`
	Cache        CacheDTO          `yaml:"cache"`
	FetchTimeout *Duration         `yaml:"fetch_timeout"`
	MaxDepth     *int              `yaml:"max_depth"`
	Jobs         *int              `yaml:"jobs"`
}

// CacheDTO configures the remote content cache.
type CacheDTO struct {
	TTL *Duration `yaml:"ttl"`
	Dir string    `yaml:"dir"`
}

// Duration accepts either a Go duration string ("10m") or a whole number of seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return zerr.With(zerr.New("expected a duration"), "line", node.Line)
	}
	if secs, err := strconv.Atoi(node.Value); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "expected a duration"), "line", node.Line)
	}
	*d = Duration(v)
	return nil
}

// Scalar keeps the literal text of a YAML scalar so option values are parsed
// the same way as directive arguments.
type Scalar string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return zerr.With(zerr.New("expected a scalar value"), "line", node.Line)
	}
	*s = Scalar(node.Value)
	return nil
}
