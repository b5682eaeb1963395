// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/patch"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, filename string, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// Line ending modes
const (
	LineEndingsAuto = "auto"
	LineEndingsLF   = "lf"
)

// 📚 Config is a patch set: the files to patch and the patches to apply, in order
type Config struct {
	Targets     []string           `json:"targets,omitempty" yaml:"targets,omitempty" hcl:"targets,optional"`
	LineEndings string             `json:"line_endings,omitempty" yaml:"line_endings,omitempty" hcl:"line_endings,optional"`
	Patches     []patch.Definition `json:"patches" yaml:"patches" hcl:"patch,block"`

	location string
}

// 🎯 Load loads and validates a patch set from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading patch set")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(ctx, path, data)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Errorf("getting absolute config path: %w", err)
	}
	cfg.location = abs

	logger.Debug().
		Int("patches", len(cfg.Patches)).
		Strs("targets", cfg.Targets).
		Msg("patch set loaded")

	return cfg, nil
}

// Parse decodes data with the parser registered for filename and validates it.
func Parse(ctx context.Context, filename string, data []byte) (*Config, error) {
	p := GetParser(filename)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", filename)
	}

	cfg, err := p.Parse(ctx, filename, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	cfg.LineEndings = strings.ToLower(strings.TrimSpace(cfg.LineEndings))
	switch cfg.LineEndings {
	case "":
		cfg.LineEndings = LineEndingsAuto
	case LineEndingsAuto, LineEndingsLF:
	default:
		return errors.Errorf("line_endings must be %q or %q, got %q", LineEndingsAuto, LineEndingsLF, cfg.LineEndings)
	}

	if len(cfg.Patches) == 0 {
		return errors.Errorf("at least one patch is required")
	}

	for i, t := range cfg.Targets {
		if strings.TrimSpace(t) == "" {
			return errors.Errorf("targets[%d] is empty", i)
		}
	}

	if _, err := patch.Compile(cfg.Patches); err != nil {
		return err
	}

	return nil
}

// Specs compiles the patch definitions.
func (cfg *Config) Specs() ([]*patch.Spec, error) {
	return patch.Compile(cfg.Patches)
}

// EngineOptions returns the engine options implied by the config.
func (cfg *Config) EngineOptions() patch.Options {
	return patch.Options{
		AdaptLineEndings: cfg.LineEndings != LineEndingsLF,
	}
}

// Location is the absolute path the config was loaded from, if any.
func (cfg *Config) Location() string {
	return cfg.location
}

// Dir is the directory relative targets are resolved against.
func (cfg *Config) Dir() string {
	if cfg.location == "" {
		return "."
	}
	return filepath.Dir(cfg.location)
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%d patches -> %s", len(cfg.Patches), strings.Join(cfg.Targets, ", "))
}
