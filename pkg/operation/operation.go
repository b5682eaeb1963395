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

package operation

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/diff"
	"github.com/walteh/patchrc/pkg/fileio"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/patch"
	"gitlab.com/tozd/go/errors"
)

// diffContext is the number of unchanged lines shown around each change.
const diffContext = 3

// 🔧 Options contains configuration for an apply operation
type Options struct {
	// Files are the resolved target paths
	Files []string
	// Specs are applied to every file, in order
	Specs []*patch.Spec
	// Engine applies the specs; nil uses default options
	Engine *patch.Engine
	// FileManager performs all file I/O; nil uses the local file system
	FileManager fileio.FileManager
	// Logger reports results; nil uses the logger on the context
	Logger *log.Logger

	DryRun   bool // Never write
	Backup   bool // Write path.bak before replacing a file
	ShowDiff bool // Print a diff per changed file
	Jobs     int  // Files planned in parallel
}

// 📄 Outcome is what happened to one file
type Outcome struct {
	Path     string
	RunID    string
	Run      *patch.Run
	Err      error
	Mode     os.FileMode
	Written  bool
	Inserted int
	Deleted  int
}

// 📊 Report collects the outcomes of an apply operation, in file order
type Report struct {
	Outcomes []*Outcome
}

// Failed returns the outcomes whose patch run failed.
func (r *Report) Failed() []*Outcome {
	var failed []*Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Changed returns the outcomes whose text changed.
func (r *Report) Changed() []*Outcome {
	var changed []*Outcome
	for _, o := range r.Outcomes {
		if o.Run != nil && o.Run.Changed() {
			changed = append(changed, o)
		}
	}
	return changed
}

// 🎯 Apply patches every file in opts.Files. Every file is planned before any
// is written; if one run fails nothing is written and the first failure is
// returned alongside the full report.
func Apply(ctx context.Context, opts Options) (*Report, error) {
	if len(opts.Files) == 0 {
		return nil, errors.Errorf("no files to patch")
	}
	if opts.Engine == nil {
		opts.Engine = patch.NewEngine(patch.Options{})
	}
	if opts.FileManager == nil {
		opts.FileManager = fileio.New()
	}
	if opts.Logger == nil {
		opts.Logger = log.FromContext(ctx)
	}
	if opts.DryRun && opts.Backup {
		opts.Logger.Warning("dry run, backups are skipped")
	}

	// Lock every target for the whole plan/commit cycle
	unlock, err := lockAll(ctx, opts.FileManager, opts.Files)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := unlock(); err != nil {
			opts.Logger.Warningf("releasing locks: %v", err)
		}
	}()

	report := &Report{Outcomes: make([]*Outcome, len(opts.Files))}

	// Plan: run the engine for each file, nothing is written yet
	err = NewRunner(opts.Jobs).Each(ctx, len(opts.Files), func(ctx context.Context, i int) error {
		outcome, err := plan(ctx, opts, opts.Files[i])
		if err != nil {
			return err
		}
		report.Outcomes[i] = outcome
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("planning: %w", err)
	}

	failed := report.Failed()

	// An interrupt after planning must not start a partial commit
	if err := ctx.Err(); err != nil {
		return report, errors.Errorf("interrupted before writing: %w", err)
	}

	// Commit: only when every run succeeded
	if len(failed) == 0 && !opts.DryRun {
		for _, o := range report.Changed() {
			if err := commit(ctx, opts, o); err != nil {
				reportAll(ctx, opts, report)
				opts.Logger.Error("stopped writing, files marked written above keep their new content")
				return report, errors.Errorf("writing %s: %w", o.Path, err)
			}
		}
	}

	reportAll(ctx, opts, report)

	total, changed := len(report.Outcomes), len(report.Changed())
	switch {
	case len(failed) > 0:
		opts.Logger.Errorf("%d of %d files failed, nothing written", len(failed), total)
		return report, errors.Errorf("%d of %d files failed, nothing written: %s: %w",
			len(failed), total, failed[0].Path, failed[0].Err)
	case opts.DryRun:
		opts.Logger.Infof("%d of %d files would change, nothing written", changed, total)
	case changed == 0:
		opts.Logger.Info("every file is already patched, nothing written")
	default:
		opts.Logger.Successf("%d of %d files written", changed, total)
	}

	return report, nil
}

func lockAll(ctx context.Context, fm fileio.FileManager, files []string) (func() error, error) {
	var unlocks []func() error
	release := func() error {
		var firstErr error
		for i := len(unlocks) - 1; i >= 0; i-- {
			if err := unlocks[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	for _, f := range files {
		unlock, err := fm.Lock(ctx, f)
		if err != nil {
			release()
			return nil, errors.Errorf("locking %s: %w", f, err)
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}

func plan(ctx context.Context, opts Options, path string) (*Outcome, error) {
	runID := uuid.NewString()
	ctx = zerolog.Ctx(ctx).With().Str("run_id", runID).Str("file", path).Logger().WithContext(ctx)

	source, mode, err := opts.FileManager.ReadText(ctx, path)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}

	outcome := &Outcome{Path: path, RunID: runID, Mode: mode}

	run, err := opts.Engine.Apply(ctx, source, opts.Specs)
	outcome.Run = run
	if err != nil {
		if run == nil {
			// invalid specs fail every file the same way
			return nil, err
		}
		outcome.Err = err
		return outcome, nil
	}

	if run.Changed() {
		outcome.Inserted, outcome.Deleted = diff.Stats(diff.Lines(run.Source, run.Text))
	}

	return outcome, nil
}

func commit(ctx context.Context, opts Options, o *Outcome) error {
	if opts.Backup {
		if err := opts.FileManager.BackupFile(ctx, o.Path); err != nil {
			return err
		}
	}
	if err := opts.FileManager.WriteFileAtomic(ctx, o.Path, []byte(o.Run.Text), o.Mode); err != nil {
		return err
	}
	o.Written = true
	return nil
}

func reportAll(ctx context.Context, opts Options, report *Report) {
	for _, o := range report.Outcomes {
		opts.Logger.StartFile(ctx, log.FileOperation{Path: o.Path, RunID: o.RunID, DryRun: opts.DryRun})
		opts.Logger.LogResults(ctx, o.Run.Results)

		if opts.ShowDiff && o.Err == nil && o.Run.Changed() {
			opts.Logger.Diff(diff.Unified(filepath.ToSlash(o.Path), o.Run.Source, o.Run.Text, diffContext))
		}

		applied, noop, failed := o.Run.Counts()
		opts.Logger.EndFile(ctx, log.FileSummary{
			Path:     o.Path,
			Applied:  applied,
			NoOp:     noop,
			Failed:   failed,
			Changed:  o.Err == nil && o.Run.Changed(),
			Written:  o.Written,
			Inserted: o.Inserted,
			Deleted:  o.Deleted,
		})
	}
}
