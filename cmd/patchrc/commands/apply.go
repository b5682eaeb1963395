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

package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/config"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/operation"
	"github.com/walteh/patchrc/pkg/patch"
	"gitlab.com/tozd/go/errors"
)

// applyOpts are the flags shared by apply and check
type applyOpts struct {
	dryRun bool
	diff   bool
	backup bool
	jobs   int
}

// NewApplyCmd creates a new apply command
func NewApplyCmd(rootOpts *opts.RootOpts) *cobra.Command {
	ao := &applyOpts{}

	cmd := &cobra.Command{
		Use:   "apply [targets...]",
		Short: "Apply the patch set to its target files",
		Long: `Apply runs every patch of the patch set, in order, against each target file.
It will:
1. Lock every target file
2. Run the patches against each file in memory
3. Write the changed files, only if no required patch failed

Targets given as arguments replace the targets of the patch set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd.Context(), "apply", rootOpts, ao, args)
		},
	}

	cmd.Flags().BoolVar(&ao.dryRun, "dry-run", false, "report what would change without writing")
	cmd.Flags().BoolVar(&ao.diff, "diff", false, "print a diff for every changed file")
	cmd.Flags().BoolVar(&ao.backup, "backup", false, "copy each file to <file>.bak before writing it")
	cmd.Flags().IntVarP(&ao.jobs, "jobs", "j", 1, "number of files to patch in parallel")

	return cmd
}

func runApply(ctx context.Context, command string, rootOpts *opts.RootOpts, ao *applyOpts, args []string) error {
	ctx = zerolog.Ctx(ctx).With().Str("command", command).Logger().WithContext(ctx)

	cfg, err := config.Load(ctx, rootOpts.ConfigFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	files, err := cfg.ResolveTargets(ctx, args)
	if err != nil {
		return errors.Errorf("resolving targets: %w", err)
	}

	specs, err := cfg.Specs()
	if err != nil {
		return errors.Errorf("compiling patches: %w", err)
	}

	if len(args) > 0 {
		rootOpts.UserLogger.LogStateChange(fmt.Sprintf("Targets from the command line replace the %d targets of %s", len(cfg.Targets), rootOpts.ConfigFile))
	}

	logger := log.New(rootOpts.Out, *zerolog.Ctx(ctx))
	ctx = log.NewContext(ctx, logger)
	logger.Header(fmt.Sprintf("%s: %d patches, %d files", rootOpts.ConfigFile, len(specs), len(files)))

	_, err = operation.Apply(ctx, operation.Options{
		Files:    files,
		Specs:    specs,
		Engine:   patch.NewEngine(cfg.EngineOptions()),
		DryRun:   ao.dryRun,
		Backup:   ao.backup,
		ShowDiff: ao.diff,
		Jobs:     ao.jobs,
	})
	logger.LogNewline()
	if err != nil {
		return errors.Errorf("applying patches: %w", err)
	}

	if ao.dryRun {
		rootOpts.UserLogger.LogValidation(true, "All required patches match", nil)
	}
	return nil
}
