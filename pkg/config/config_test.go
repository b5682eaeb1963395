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
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/pkg/patch"
	"gitlab.com/tozd/go/errors"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:     "valid_yaml",
			filename: "patches.yaml",
			config: `
targets:
  - src/pages/Dashboard.jsx
line_endings: auto
patches:
  - id: dropdown-z-index
    find: "duration-200 ${darkMode"
    replace: "duration-200 z-50 ${darkMode"
  - id: my-data-label
    pattern: 'CURRENT USER(\s*)</p>'
    flags: [dotall]
    replace: 'MY DATA$1</p>'
    occurrence: all
    required: false
  - id: insert-my-data
    line: 881
    replace: "{/* MY DATA */}\n"
    unless_contains: "{/* MY DATA */}"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"src/pages/Dashboard.jsx"}, cfg.Targets)
				assert.Equal(t, LineEndingsAuto, cfg.LineEndings)
				require.Len(t, cfg.Patches, 3)

				assert.Equal(t, "dropdown-z-index", cfg.Patches[0].ID)
				assert.Equal(t, "duration-200 ${darkMode", cfg.Patches[0].Find)
				assert.Nil(t, cfg.Patches[0].Required)

				assert.Equal(t, []string{"dotall"}, cfg.Patches[1].Flags)
				assert.Equal(t, "all", cfg.Patches[1].Occurrence)
				require.NotNil(t, cfg.Patches[1].Required)
				assert.False(t, *cfg.Patches[1].Required)

				assert.Equal(t, 881, cfg.Patches[2].Line)
				assert.Equal(t, "{/* MY DATA */}", cfg.Patches[2].UnlessContains)
			},
		},
		{
			name:     "valid_hcl",
			filename: "patches.hcl",
			config: `
targets = ["src/pages/Dashboard.jsx"]

patch "dropdown-z-index" {
  find    = "duration-200 $${darkMode"
  replace = "duration-200 z-50 $${darkMode"
}

patch "my-data-label" {
  pattern    = "CURRENT USER(\\s*)</p>"
  flags      = ["dotall"]
  replace    = "MY DATA$1</p>"
  occurrence = "all"
  required   = false
}

patch "insert-my-data" {
  line    = 881
  replace = "{/* MY DATA */}\n"
}
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"src/pages/Dashboard.jsx"}, cfg.Targets)
				assert.Equal(t, LineEndingsAuto, cfg.LineEndings, "line_endings should default to auto")
				require.Len(t, cfg.Patches, 3)

				assert.Equal(t, "dropdown-z-index", cfg.Patches[0].ID)
				assert.Equal(t, "duration-200 ${darkMode", cfg.Patches[0].Find)

				assert.Equal(t, `CURRENT USER(\s*)</p>`, cfg.Patches[1].Pattern)
				require.NotNil(t, cfg.Patches[1].Required)
				assert.False(t, *cfg.Patches[1].Required)

				assert.Equal(t, 881, cfg.Patches[2].Line)
				assert.Equal(t, "{/* MY DATA */}\n", cfg.Patches[2].Replace)
			},
		},
		{
			name:     "valid_json",
			filename: "patches.json",
			config: `{
  "targets": ["a.txt"],
  "line_endings": "LF",
  "patches": [
    {"id": "a", "find": "A", "replace": "X", "occurrence": "all"}
  ]
}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, LineEndingsLF, cfg.LineEndings, "line_endings should be normalized")
				assert.False(t, cfg.EngineOptions().AdaptLineEndings)
				require.Len(t, cfg.Patches, 1)
				assert.Equal(t, "all", cfg.Patches[0].Occurrence)
			},
		},
		{
			name:     "yaml_unknown_field",
			filename: "patches.yaml",
			config: `
patches:
  - id: a
    find: x
    replacement: y
`,
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:        "json_unknown_field",
			filename:    "patches.json",
			config:      `{"patches": [{"id": "a", "find": "x"}], "extra": true}`,
			wantErr:     true,
			errContains: "parsing JSON",
		},
		{
			name:     "hcl_syntax_error",
			filename: "patches.hcl",
			config: `
patch "a" {
  find =
}`,
			wantErr:     true,
			errContains: "parsing HCL",
		},
		{
			name:     "hcl_unknown_block",
			filename: "patches.hcl",
			config: `
replacement "a" {
  find = "x"
}`,
			wantErr:     true,
			errContains: "decoding HCL",
		},
		{
			name:        "no_patches",
			filename:    "patches.yaml",
			config:      "targets: [a.txt]\n",
			wantErr:     true,
			errContains: "at least one patch is required",
		},
		{
			name:     "bad_line_endings",
			filename: "patches.yaml",
			config: `
line_endings: crlf
patches:
  - id: a
    find: x
`,
			wantErr:     true,
			errContains: "line_endings must be",
		},
		{
			name:     "malformed_pattern",
			filename: "patches.yaml",
			config: `
patches:
  - id: bad
    pattern: "(unclosed"
`,
			wantErr:     true,
			errContains: "compiling pattern",
		},
		{
			name:     "duplicate_ids",
			filename: "patches.yaml",
			config: `
patches:
  - id: a
    find: x
  - id: a
    find: y
`,
			wantErr:     true,
			errContains: "duplicate id",
		},
		{
			name:        "unknown_extension",
			filename:    "patches.txt",
			config:      "patches: []",
			wantErr:     true,
			errContains: "no parser found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.filename)
			require.NoError(t, os.WriteFile(path, []byte(tt.config), 0644), "writing config file")

			ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
			cfg, err := Load(ctx, path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, dir, cfg.Dir())
			assert.Equal(t, path, cfg.Location())
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestValidate_InvalidSpecIsDetectable(t *testing.T) {
	cfg := &Config{
		Patches: []patch.Definition{{ID: "bad", Pattern: "("}},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, patch.ErrInvalidPatchSpec))
}

func TestConfig_Specs(t *testing.T) {
	cfg := &Config{
		Patches: []patch.Definition{
			{ID: "a", Find: "x", Replace: "y"},
			{ID: "b", Line: 1, Replace: "z"},
		},
	}
	require.NoError(t, cfg.Validate())

	specs, err := cfg.Specs()
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "a", specs[0].ID)
	assert.Equal(t, "b", specs[1].ID)
	assert.True(t, cfg.EngineOptions().AdaptLineEndings, "auto should adapt line endings")
	assert.Equal(t, ".", cfg.Dir(), "unloaded configs resolve against the working directory")
}

func TestGetParser(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Parser
	}{
		{name: "yaml_file", filename: "patches.yaml", want: &YAMLParser{}},
		{name: "yml_file", filename: "PATCHES.YML", want: &YAMLParser{}},
		{name: "hcl_file", filename: "patches.hcl", want: &HCLParser{}},
		{name: "json_file", filename: "patches.json", want: &JSONParser{}},
		{name: "unknown_extension", filename: "patches.txt", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetParser(tt.filename)
			if tt.want == nil {
				assert.Nil(t, got, "should return nil for unknown extension")
				return
			}
			require.NotNil(t, got, "should return a parser")
			assert.IsType(t, tt.want, got, "should return correct parser type")
		})
	}
}
