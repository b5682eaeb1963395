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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/patch"
	"gitlab.com/tozd/go/errors"
)

const testConfig = `
targets: ["src/*.txt"]
patches:
  - id: greeting
    find: hello
    replace: goodbye
    occurrence: all
  - id: optional-footer
    find: "-- footer --"
    replace: ""
    required: false
`

// 🧪 setupProject writes a config and its target files into a temp dir
func setupProject(t *testing.T, config string, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".patchrc.yaml"), []byte(config), 0644))
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	rootOpts := &opts.RootOpts{
		Out:        out,
		UserLogger: log.NewUserLogger(ctx),
	}

	cmd := newRootCmd(rootOpts)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name        string
		files       map[string]string
		args        func(dir string) []string
		wantErr     error
		errContains string
		wantFiles   map[string]string
		wantOutput  []string
	}{
		{
			name: "apply_writes",
			files: map[string]string{
				"src/a.txt": "hello world, hello",
				"src/b.txt": "hello",
			},
			args: func(dir string) []string {
				return []string{"apply", "-c", filepath.Join(dir, ".patchrc.yaml")}
			},
			wantFiles: map[string]string{
				"src/a.txt": "goodbye world, goodbye",
				"src/b.txt": "goodbye",
			},
			wantOutput: []string{"greeting", "optional-footer", "written"},
		},
		{
			name: "apply_required_miss_writes_nothing",
			files: map[string]string{
				"src/a.txt": "hello",
				"src/b.txt": "nothing to see",
			},
			args: func(dir string) []string {
				return []string{"apply", "-c", filepath.Join(dir, ".patchrc.yaml")}
			},
			wantErr: patch.ErrPatchNotFound,
			wantFiles: map[string]string{
				"src/a.txt": "hello",
				"src/b.txt": "nothing to see",
			},
			wantOutput: []string{"failed, not written"},
		},
		{
			name:  "check_never_writes",
			files: map[string]string{"src/a.txt": "hello"},
			args: func(dir string) []string {
				return []string{"check", "--diff", "-c", filepath.Join(dir, ".patchrc.yaml")}
			},
			wantFiles:  map[string]string{"src/a.txt": "hello"},
			wantOutput: []string{"[checking", "would change", "+goodbye"},
		},
		{
			name: "positional_targets_override",
			files: map[string]string{
				"src/a.txt":   "hello",
				"other/c.txt": "hello there",
			},
			args: func(dir string) []string {
				return []string{"apply", "-c", filepath.Join(dir, ".patchrc.yaml"), filepath.Join(dir, "other", "c.txt")}
			},
			wantFiles: map[string]string{
				"src/a.txt":   "hello",
				"other/c.txt": "goodbye there",
			},
		},
		{
			name:  "apply_with_backup",
			files: map[string]string{"src/a.txt": "hello"},
			args: func(dir string) []string {
				return []string{"apply", "--backup", "--jobs", "2", "-c", filepath.Join(dir, ".patchrc.yaml")}
			},
			wantFiles: map[string]string{
				"src/a.txt":     "goodbye",
				"src/a.txt.bak": "hello",
			},
		},
		{
			name: "missing_config",
			args: func(dir string) []string {
				return []string{"apply", "-c", filepath.Join(dir, "nope.yaml")}
			},
			errContains: "loading config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupProject(t, testConfig, tt.files)

			out, err := execute(t, tt.args(dir)...)

			switch {
			case tt.wantErr != nil:
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "want %v, got %v", tt.wantErr, err)
			case tt.errContains != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			default:
				require.NoError(t, err)
			}

			for name, want := range tt.wantFiles {
				got, err := os.ReadFile(filepath.Join(dir, name))
				require.NoError(t, err)
				assert.Equal(t, want, string(got), "content of %s", name)
			}

			for _, want := range tt.wantOutput {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "patchrc version info")
}
