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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(name), 0644))
	}
}

func TestResolveTargets(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"src/pages/Dashboard.jsx",
		"src/pages/Login.jsx",
		"src/components/Card.jsx",
		"src/App.css",
		"src/pages/Dashboard.jsx.bak",
		"src/pages/Login.jsx.patchrc.lock",
	)
	cfgPath := filepath.Join(dir, ".patchrc.yaml")

	tests := []struct {
		name        string
		targets     []string
		want        []string
		errContains string
	}{
		{
			name:    "literal_path",
			targets: []string{"src/pages/Dashboard.jsx"},
			want:    []string{"src/pages/Dashboard.jsx"},
		},
		{
			name:    "single_star",
			targets: []string{"src/pages/*.jsx"},
			want:    []string{"src/pages/Dashboard.jsx", "src/pages/Login.jsx"},
		},
		{
			name:    "double_star_dedup",
			targets: []string{"src/**/*.jsx", "src/pages/Login.jsx"},
			want:    []string{"src/components/Card.jsx", "src/pages/Dashboard.jsx", "src/pages/Login.jsx"},
		},
		{
			name:    "broad_glob_skips_backups_and_locks",
			targets: []string{"src/**"},
			want:    []string{"src/App.css", "src/components/Card.jsx", "src/pages/Dashboard.jsx", "src/pages/Login.jsx"},
		},
		{
			name:        "glob_of_only_backups",
			targets:     []string{"src/**/*.bak"},
			errContains: "matched no files",
		},
		{
			name:    "explicit_backup_path",
			targets: []string{"src/pages/Dashboard.jsx.bak"},
			want:    []string{"src/pages/Dashboard.jsx.bak"},
		},
		{
			name:        "no_match",
			targets:     []string{"src/**/*.tsx"},
			errContains: "matched no files",
		},
		{
			name:        "missing_literal",
			targets:     []string{"src/missing.jsx"},
			errContains: "matched no files",
		},
		{
			name:        "directory",
			targets:     []string{"src/pages"},
			errContains: "is a directory",
		},
		{
			name:        "none",
			errContains: "no targets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Targets: tt.targets, location: cfgPath}

			got, err := cfg.ResolveTargets(context.Background(), nil)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			want := make([]string, 0, len(tt.want))
			for _, w := range tt.want {
				want = append(want, filepath.Join(dir, w))
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestResolveTargets_Override(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.txt", "b.txt")

	cfg := &Config{Targets: []string{"does-not-exist.txt"}, location: filepath.Join(t.TempDir(), "p.yaml")}

	override := filepath.Join(dir, "*.txt")
	got, err := cfg.ResolveTargets(context.Background(), []string{override})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}, got)
}
