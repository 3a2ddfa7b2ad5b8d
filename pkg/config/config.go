// Package config reads rendering settings from YAML files.
//
// A config file is a YAML mapping with the following keys, all optional:
//
//	wiki: true            # render in the wiki mode
//	nofollow: true        # add rel="nofollow" to links
//	target: _blank        # add target="_blank" to links
//	enable_toc: true      # render a table of contents
//	toc_id_prefix: post_  # prefix of header ids
//
// Unknown keys are ignored, and values of the wrong type leave the setting at
// its default.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"src.snudown.dev/pkg/md"
)

// Config keeps settings read from a config file.
type Config struct {
	Mode    md.Mode
	Options md.Options
}

// Load reads and parses the named file.
func Load(fname string) (Config, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", fname, err)
	}
	return cfg, nil
}

// Parse parses the content of a config file. An empty document is valid and
// yields the default settings.
func Parse(data []byte) (Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, err
	}
	var cfg Config
	if wiki, _ := raw["wiki"].(bool); wiki {
		cfg.Mode = md.Wiki
	}
	cfg.Options = md.OptionsFromMap(map[string]any{
		"nofollow":    raw["nofollow"],
		"target":      raw["target"],
		"enableToc":   raw["enable_toc"],
		"tocIdPrefix": raw["toc_id_prefix"],
	})
	return cfg, nil
}
