// Package config carries the run settings of every geoprep utility. Default
// constructors hold the values the tools shipped with; a YAML file may
// override any of them.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Validator ...
type Validator interface {
	Validate() error
}

// XYZ is a per-axis triple (shift, scale or offset).
type XYZ struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Load reads the YAML file at path over the values already held in out.
// An empty path leaves out untouched.
func Load(path string, out interface{}) error {
	if path == "" {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("[os.ReadFile] in pkg [config] encountered: %w", err)
	}

	if err := yaml.UnmarshalStrict(raw, out); err != nil {
		return fmt.Errorf("[yaml.Unmarshal] in pkg [config] encountered: %w", err)
	}

	return nil
}

func invalid(format string, v ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, v...))
}

func requireDirs(in, out string) error {
	if in == "" {
		return invalid("input is required")
	}
	if out == "" {
		return invalid("output is required")
	}
	if in == out {
		return invalid("input and output must differ (%s)", in)
	}
	return nil
}
