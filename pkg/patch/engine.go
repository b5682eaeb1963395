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

package patch

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ⚙️ Options configures an Engine
type Options struct {
	// AdaptLineEndings rewrites \n in literal needles, guards and replacements
	// as \r\n when the source text uses CRLF line endings.
	AdaptLineEndings bool
}

// 🎯 Engine applies Specs to text
type Engine struct {
	opts Options
}

// NewEngine creates a new Engine
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Apply runs specs against source with default options.
func Apply(source string, specs []*Spec) (*Run, error) {
	return NewEngine(Options{}).Apply(context.Background(), source, specs)
}

// Apply folds specs over source. On a required miss the returned Run holds
// the results gathered so far and its Text is the untouched source.
func (e *Engine) Apply(ctx context.Context, source string, specs []*Spec) (*Run, error) {
	logger := zerolog.Ctx(ctx)

	if err := validateSpecs(specs); err != nil {
		return nil, err
	}

	crlf := e.opts.AdaptLineEndings && strings.Contains(source, "\r\n")

	run := &Run{
		Source:  source,
		Text:    source,
		Results: make([]Result, 0, len(specs)),
	}

	current := source
	for i, spec := range specs {
		matcher, replacement, guard := spec.Matcher, spec.Replacement, spec.UnlessContains
		if crlf {
			if a, ok := matcher.(crlfAdapter); ok {
				matcher = a.withCRLF()
			}
			replacement = toCRLF(replacement)
			guard = toCRLF(guard)
		}

		res := Result{ID: spec.ID}

		if guard != "" && strings.Contains(current, guard) {
			res.Status = StatusNoOp
			res.Note = NoteGuardPresent
			run.Results = append(run.Results, res)
			logger.Debug().Str("patch", spec.ID).Msg("guard present, skipping")
			continue
		}

		matches := matcher.Find(current)
		res.Matched = len(matches)

		if len(matches) == 0 {
			res.Note = NoteNotFound
			if spec.Required {
				res.Status = StatusFailed
				run.Results = append(run.Results, res)
				logger.Debug().Str("patch", spec.ID).Str("matcher", matcher.String()).Msg("required patch did not match")
				return run, &SpecError{
					ID:    spec.ID,
					Index: i,
					Err:   errors.Errorf("%w: %s matched nothing", ErrPatchNotFound, matcher),
				}
			}
			res.Status = StatusNoOp
			run.Results = append(run.Results, res)
			logger.Debug().Str("patch", spec.ID).Msg("optional patch did not match")
			continue
		}

		if spec.Occurrence != OccurrenceAll {
			matches = matches[:1]
		}

		current = splice(current, matcher, matches, replacement)
		res.Applied = len(matches)
		res.Status = StatusApplied
		run.Results = append(run.Results, res)

		logger.Debug().
			Str("patch", spec.ID).
			Int("matched", res.Matched).
			Int("applied", res.Applied).
			Msg("patch applied")
	}

	run.Text = current
	return run, nil
}

func validateSpecs(specs []*Spec) error {
	seen := make(map[string]bool, len(specs))
	for i, spec := range specs {
		if spec == nil {
			return &SpecError{Index: i, Err: errors.Errorf("%w: spec is nil", ErrInvalidPatchSpec)}
		}
		if spec.ID == "" {
			return &SpecError{Index: i, Err: errors.Errorf("%w: id is required", ErrInvalidPatchSpec)}
		}
		if spec.Matcher == nil {
			return &SpecError{ID: spec.ID, Index: i, Err: errors.Errorf("%w: matcher is required", ErrInvalidPatchSpec)}
		}
		if rc, ok := spec.Matcher.(replacementChecker); ok {
			if err := rc.checkReplacement(spec.Replacement); err != nil {
				return &SpecError{ID: spec.ID, Index: i, Err: err}
			}
		}
		if seen[spec.ID] {
			return &SpecError{ID: spec.ID, Index: i, Err: errors.Errorf("%w: duplicate id", ErrInvalidPatchSpec)}
		}
		seen[spec.ID] = true
	}
	return nil
}

// splice rebuilds text with each match swapped for its expansion.
func splice(text string, m Matcher, matches []Match, replacement string) string {
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, match := range matches {
		b.WriteString(text[last:match.Start])
		b.WriteString(m.Expand(text, match, replacement))
		last = match.End
	}
	b.WriteString(text[last:])
	return b.String()
}
