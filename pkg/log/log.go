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

package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/patch"
)

// 🎨 Display configuration
const (
	resultIndent = 4  // spaces to indent patch results
	idWidth      = 35 // Base width for patch id
	statusWidth  = 10 // Width for status text
)

// 📄 FileOperation describes a target file being patched
type FileOperation struct {
	Path   string // Target file path
	RunID  string // Correlates console output with structured logs
	DryRun bool   // Whether results will be written
}

// 📊 FileSummary is reported once a target file is done
type FileSummary struct {
	Path     string
	Applied  int
	NoOp     int
	Failed   int
	Changed  bool
	Written  bool
	Inserted int // lines
	Deleted  int // lines
}

// 🎯 Logger reports patch runs on the console and to zerolog
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	current *FileOperation
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context. Without one, console output
// is discarded and events go to the zerolog logger of ctx.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return logger
	}
	return New(io.Discard, *zerolog.Ctx(ctx))
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatResult formats one patch result for display
func formatResult(res patch.Result) string {
	var symbol rune
	var symbolColor color.Attribute
	switch res.Status {
	case patch.StatusApplied:
		symbol = '✓'
		symbolColor = color.FgGreen
	case patch.StatusFailed:
		symbol = '✗'
		symbolColor = color.FgRed
	default:
		symbol = '•'
		symbolColor = color.FgYellow
	}

	counts := fmt.Sprintf("%d/%d", res.Applied, res.Matched)
	if res.Note != "" {
		counts += " (" + res.Note + ")"
	}

	return fmt.Sprintf("%s%s %s %s %s",
		strings.Repeat(" ", resultIndent),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", idWidth, res.ID),
		color.New(symbolColor).Sprint(fmt.Sprintf("%-*s", statusWidth, res.Status)),
		counts)
}

// 📝 StartFile starts reporting a target file
func (l *Logger) StartFile(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = &op

	mode := "patching"
	if op.DryRun {
		mode = "checking"
	}
	fmt.Fprintf(l.console, "[%s %s]\n", mode, color.New(color.FgCyan).Sprint(op.Path))

	l.zlog.Info().
		Str("file", op.Path).
		Str("run_id", op.RunID).
		Bool("dry_run", op.DryRun).
		Msg("starting patch run")
}

// 📝 LogResults prints one line per patch result of the current file
func (l *Logger) LogResults(ctx context.Context, results []patch.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()

	file := ""
	if l.current != nil {
		file = l.current.Path
	}

	for _, res := range results {
		fmt.Fprintln(l.console, formatResult(res))

		l.zlog.Info().
			Str("file", file).
			Str("patch", res.ID).
			Str("status", string(res.Status)).
			Int("matched", res.Matched).
			Int("applied", res.Applied).
			Str("note", res.Note).
			Msg("patch result")
	}
}

// 📝 EndFile ends the current file with a summary line
func (l *Logger) EndFile(ctx context.Context, sum FileSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var outcome string
	switch {
	case sum.Failed > 0:
		outcome = color.New(color.FgRed).Sprint("failed, not written")
	case !sum.Changed:
		outcome = color.New(color.Faint).Sprint("unchanged")
	case sum.Written:
		outcome = color.New(color.FgGreen).Sprint("written")
	default:
		outcome = color.New(color.FgBlue).Sprint("would change")
	}

	fmt.Fprintf(l.console, "%s%s %s %s\n",
		strings.Repeat(" ", resultIndent),
		color.New(color.Faint).Sprint("→"),
		outcome,
		color.New(color.Faint).Sprintf("(%d applied, %d no-op, %d failed, +%d -%d lines)",
			sum.Applied, sum.NoOp, sum.Failed, sum.Inserted, sum.Deleted))

	l.zlog.Info().
		Str("file", sum.Path).
		Int("applied", sum.Applied).
		Int("noop", sum.NoOp).
		Int("failed", sum.Failed).
		Bool("changed", sum.Changed).
		Bool("written", sum.Written).
		Int("inserted_lines", sum.Inserted).
		Int("deleted_lines", sum.Deleted).
		Msg("patch run complete")

	l.current = nil
}

// 📝 Diff prints a unified diff, colouring added and removed lines
func (l *Logger) Diff(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			fmt.Fprint(l.console, color.New(color.Bold).Sprint(line))
		case strings.HasPrefix(line, "@@"):
			fmt.Fprint(l.console, color.New(color.FgCyan).Sprint(line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprint(l.console, color.New(color.FgGreen).Sprint(line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprint(l.console, color.New(color.FgRed).Sprint(line))
		default:
			fmt.Fprint(l.console, line)
		}
	}
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("patchrc")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
