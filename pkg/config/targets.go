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
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/fileio"
	"gitlab.com/tozd/go/errors"
)

// 🎯 ResolveTargets expands target globs into a sorted, de-duplicated list of
// file paths. Relative patterns are resolved against Dir. When override is
// non-empty it replaces the configured targets.
func (cfg *Config) ResolveTargets(ctx context.Context, override []string) ([]string, error) {
	patterns := cfg.Targets
	if len(override) > 0 {
		patterns = override
	}
	if len(patterns) == 0 {
		return nil, errors.Errorf("no targets: set targets in the patch set or pass files as arguments")
	}

	seen := map[string]bool{}
	var files []string
	for _, pattern := range patterns {
		matches, err := expand(cfg.Dir(), pattern, len(override) > 0)
		if err != nil {
			return nil, errors.Errorf("resolving target %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("target %q matched no files", pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	sort.Strings(files)

	zerolog.Ctx(ctx).Debug().Strs("files", files).Msg("resolved targets")
	return files, nil
}

// expand resolves one pattern. Patterns given on the command line are taken
// relative to the working directory instead of the config directory.
func expand(dir, pattern string, fromArgs bool) ([]string, error) {
	if !filepath.IsAbs(pattern) && !fromArgs {
		pattern = filepath.Join(dir, pattern)
	}
	pattern = filepath.Clean(pattern)

	if !hasMeta(pattern) {
		info, err := os.Stat(pattern)
		if os.IsNotExist(err) {
			return nil, nil
		}
		if err != nil {
			return nil, errors.Errorf("stat: %w", err)
		}
		if info.IsDir() {
			return nil, errors.Errorf("%s is a directory", pattern)
		}
		return []string{pattern}, nil
	}

	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Errorf("globbing: %w", err)
	}

	// backups and lock files from earlier runs are never targets of a glob
	files := matches[:0]
	for _, m := range matches {
		if strings.HasSuffix(m, fileio.BackupSuffix) || strings.HasSuffix(m, fileio.LockSuffix) {
			continue
		}
		files = append(files, m)
	}
	return files, nil
}

func hasMeta(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
