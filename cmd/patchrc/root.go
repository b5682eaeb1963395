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
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/commands"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newRootCmd creates the root command with every subcommand attached
func newRootCmd(rootOpts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patchrc",
		Short: "Apply ordered find/replace patches to text files",
		Long: `patchrc applies a named, ordered set of find/replace edits to text files
and reports which edits were applied, which were no-ops and which failed.

If any required edit fails to match, no file is written.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd, rootOpts)
			return nil
		},
	}

	addRootFlags(cmd, rootOpts)

	cmd.AddCommand(
		commands.NewApplyCmd(rootOpts),
		commands.NewCheckCmd(rootOpts),
		newVersionCmd(),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, rootOpts *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&rootOpts.ConfigFile, "config", "c", ".patchrc.yaml", "patch set file (.yaml, .yml, .hcl or .json)")
	cmd.PersistentFlags().BoolVarP(&rootOpts.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&rootOpts.LogFile, "log-file", "", "also write JSON logs to this file, rotated")
	cmd.PersistentFlags().BoolVar(&rootOpts.NoColor, "no-color", false, "disable coloured output")
}

// setupLogging configures zerolog based on flags and puts the logger on the command context
func setupLogging(cmd *cobra.Command, rootOpts *opts.RootOpts) {
	noColor := rootOpts.NoColor || !isTerminal(rootOpts.Out)
	if noColor {
		color.NoColor = true
		pterm.DisableStyling()
	}

	consoleLevel := zerolog.WarnLevel
	if rootOpts.Debug {
		consoleLevel = zerolog.DebugLevel
	}
	level := consoleLevel

	writers := []io.Writer{
		&minLevelWriter{w: zerolog.ConsoleWriter{Out: os.Stderr, NoColor: noColor}, min: consoleLevel},
	}
	if rootOpts.LogFile != "" {
		// the file sink records every run at debug level
		writers = append(writers, &lumberjack.Logger{
			Filename:   rootOpts.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()

	ctx := logger.WithContext(cmd.Context())
	rootOpts.UserLogger = log.NewUserLogger(ctx)
	cmd.SetContext(ctx)
}

// minLevelWriter drops events below min
type minLevelWriter struct {
	w   io.Writer
	min zerolog.Level
}

func (m *minLevelWriter) Write(p []byte) (int, error) {
	return m.w.Write(p)
}

func (m *minLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < m.min {
		return len(p), nil
	}
	return m.w.Write(p)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
