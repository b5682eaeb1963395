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
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🏗️ Compile validates definitions and turns them into Specs.
// IDs must be unique across the list.
func Compile(defs []Definition) ([]*Spec, error) {
	seen := make(map[string]int, len(defs))
	specs := make([]*Spec, 0, len(defs))
	for i, def := range defs {
		if prev, ok := seen[def.ID]; ok && def.ID != "" {
			return nil, &SpecError{
				ID:    def.ID,
				Index: i,
				Err:   errors.Errorf("%w: duplicate id, first used by patch #%d", ErrInvalidPatchSpec, prev),
			}
		}
		seen[def.ID] = i

		spec, err := def.Compile()
		if err != nil {
			return nil, &SpecError{ID: def.ID, Index: i, Err: err}
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(defs ...Definition) []*Spec {
	specs, err := Compile(defs)
	if err != nil {
		panic(err)
	}
	return specs
}

// Compile validates a single definition.
func (d Definition) Compile() (*Spec, error) {
	if strings.TrimSpace(d.ID) == "" {
		return nil, errors.Errorf("%w: id is required", ErrInvalidPatchSpec)
	}

	matcher, err := d.matcher()
	if err != nil {
		return nil, err
	}

	if rc, ok := matcher.(replacementChecker); ok {
		if err := rc.checkReplacement(d.Replace); err != nil {
			return nil, err
		}
	}

	occurrence, err := ParseOccurrence(d.Occurrence)
	if err != nil {
		return nil, err
	}

	required := true
	if d.Required != nil {
		required = *d.Required
	}

	return &Spec{
		ID:             d.ID,
		Matcher:        matcher,
		Replacement:    d.Replace,
		Occurrence:     occurrence,
		Required:       required,
		UnlessContains: d.UnlessContains,
	}, nil
}

func (d Definition) matcher() (Matcher, error) {
	kinds := 0
	if d.Find != "" {
		kinds++
	}
	if d.Pattern != "" {
		kinds++
	}
	if d.Line != 0 {
		kinds++
	}

	switch {
	case kinds == 0:
		return nil, errors.Errorf("%w: one of find, pattern or line is required", ErrInvalidPatchSpec)
	case kinds > 1:
		return nil, errors.Errorf("%w: only one of find, pattern or line may be set", ErrInvalidPatchSpec)
	}

	if len(d.Flags) > 0 && d.Pattern == "" {
		return nil, errors.Errorf("%w: flags only apply to pattern", ErrInvalidPatchSpec)
	}

	switch {
	case d.Find != "":
		return NewLiteral(d.Find)
	case d.Pattern != "":
		return NewPattern(d.Pattern, d.Flags...)
	default:
		return NewLine(d.Line)
	}
}

// ParseOccurrence parses "first" or "all"; empty means first.
func ParseOccurrence(s string) (Occurrence, error) {
	switch Occurrence(strings.ToLower(strings.TrimSpace(s))) {
	case "", OccurrenceFirst:
		return OccurrenceFirst, nil
	case OccurrenceAll:
		return OccurrenceAll, nil
	default:
		return "", errors.Errorf("%w: unknown occurrence %q (want first or all)", ErrInvalidPatchSpec, s)
	}
}
