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
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
)

// NewCheckCmd creates a new check command
func NewCheckCmd(rootOpts *opts.RootOpts) *cobra.Command {
	ao := &applyOpts{dryRun: true}

	cmd := &cobra.Command{
		Use:   "check [targets...]",
		Short: "Check that every required patch still matches",
		Long: `Check runs the patch set like apply but never writes.
It exits non-zero if any required patch would fail, which makes it
suitable for CI after upstream files change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd.Context(), "check", rootOpts, ao, args)
		},
	}

	cmd.Flags().BoolVar(&ao.diff, "diff", false, "print a diff for every file that would change")
	cmd.Flags().IntVarP(&ao.jobs, "jobs", "j", 1, "number of files to check in parallel")

	return cmd
}
