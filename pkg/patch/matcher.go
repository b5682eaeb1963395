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
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

// 🔍 Matcher locates the regions of a text a Spec rewrites
type Matcher interface {
	// Find returns every non-overlapping match in text, in order.
	Find(text string) []Match

	// Expand returns the text that replaces m.
	Expand(text string, m Match, replacement string) string

	fmt.Stringer
}

// Match is a half-open byte range of a text.
type Match struct {
	Start int
	End   int

	// submatch indexes, only set by pattern matchers
	groups []int
}

// replacementChecker is implemented by matchers whose replacement text can
// reference parts of the match.
type replacementChecker interface {
	checkReplacement(replacement string) error
}

// crlfAdapter is implemented by matchers whose needle is literal text that
// must follow the line endings of the source.
type crlfAdapter interface {
	withCRLF() Matcher
}

// 📝 literalMatcher matches a fixed substring
type literalMatcher struct {
	needle string
}

// NewLiteral returns a Matcher for a fixed, non-empty substring.
func NewLiteral(needle string) (Matcher, error) {
	if needle == "" {
		return nil, errors.Errorf("%w: find text is empty", ErrInvalidPatchSpec)
	}
	return &literalMatcher{needle: needle}, nil
}

func (m *literalMatcher) Find(text string) []Match {
	var matches []Match
	pos := 0
	for {
		i := strings.Index(text[pos:], m.needle)
		if i < 0 {
			return matches
		}
		start := pos + i
		end := start + len(m.needle)
		matches = append(matches, Match{Start: start, End: end})
		pos = end
	}
}

func (m *literalMatcher) Expand(_ string, _ Match, replacement string) string {
	return replacement
}

func (m *literalMatcher) String() string {
	return "find " + quoteShort(m.needle)
}

func (m *literalMatcher) withCRLF() Matcher {
	return &literalMatcher{needle: toCRLF(m.needle)}
}

// 🧩 patternMatcher matches an RE2 regular expression
type patternMatcher struct {
	re *regexp.Regexp
}

var patternFlags = map[string]rune{
	"dotall":      's',
	"s":           's',
	"multiline":   'm',
	"m":           'm',
	"ignore_case": 'i',
	"i":           'i',
}

// NewPattern compiles expr with the given flags (dotall, multiline, ignore_case).
func NewPattern(expr string, flags ...string) (Matcher, error) {
	if expr == "" {
		return nil, errors.Errorf("%w: pattern is empty", ErrInvalidPatchSpec)
	}

	set := map[rune]bool{}
	for _, f := range flags {
		r, ok := patternFlags[strings.ToLower(strings.TrimSpace(f))]
		if !ok {
			return nil, errors.Errorf("%w: unknown pattern flag %q", ErrInvalidPatchSpec, f)
		}
		set[r] = true
	}

	if len(set) > 0 {
		runes := make([]rune, 0, len(set))
		for r := range set {
			runes = append(runes, r)
		}
		sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
		expr = "(?" + string(runes) + ")" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Errorf("%w: compiling pattern: %s", ErrInvalidPatchSpec, err.Error())
	}
	return &patternMatcher{re: re}, nil
}

func (m *patternMatcher) Find(text string) []Match {
	locs := m.re.FindAllStringSubmatchIndex(text, -1)
	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		matches = append(matches, Match{Start: loc[0], End: loc[1], groups: loc})
	}
	return matches
}

func (m *patternMatcher) Expand(text string, match Match, replacement string) string {
	return string(m.re.ExpandString(nil, replacement, text, match.groups))
}

// checkReplacement rejects $ references to groups the pattern does not
// define. $$ is a literal $.
func (m *patternMatcher) checkReplacement(replacement string) error {
	names := map[string]bool{}
	for _, name := range m.re.SubexpNames() {
		if name != "" {
			names[name] = true
		}
	}

	for i := 0; i < len(replacement); i++ {
		if replacement[i] != '$' {
			continue
		}
		if i+1 < len(replacement) && replacement[i+1] == '$' {
			i++
			continue
		}

		name, size, ok := groupRef(replacement[i+1:])
		if !ok {
			continue
		}
		ref := replacement[i : i+1+size]
		i += size

		if n, err := strconv.Atoi(name); err == nil {
			if n > m.re.NumSubexp() {
				return errors.Errorf("%w: replacement %s references group %d, pattern has %d", ErrInvalidPatchSpec, ref, n, m.re.NumSubexp())
			}
			continue
		}
		if names[name] {
			continue
		}
		if digits := len(name) - len(strings.TrimLeft(name, "0123456789")); digits > 0 {
			return errors.Errorf("%w: replacement %s is read as group %q, write ${%s}%s", ErrInvalidPatchSpec,
				ref, name, name[:digits], name[digits:])
		}
		return errors.Errorf("%w: replacement %s references unknown group %q (write $$ for a literal $)", ErrInvalidPatchSpec, ref, name)
	}
	return nil
}

// groupRef reads the group name after a $ the way regexp.Expand does:
// ${name} or a run of letters, digits and underscores.
func groupRef(s string) (name string, size int, ok bool) {
	if s == "" {
		return "", 0, false
	}
	braced := s[0] == '{'
	if braced {
		s = s[1:]
	}

	n := 0
	for n < len(s) && isNameByte(s[n]) {
		n++
	}
	if n == 0 {
		return "", 0, false
	}
	name = s[:n]

	if !braced {
		return name, n, true
	}
	if n >= len(s) || s[n] != '}' {
		return "", 0, false
	}
	return name, n + 2, true
}

func isNameByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func (m *patternMatcher) String() string {
	return "pattern " + quoteShort(m.re.String())
}

// 📍 lineMatcher is a zero-width match at the start of a 1-based line
type lineMatcher struct {
	line int
}

// NewLine returns a Matcher anchored at the start of line n (1-based).
// Line count+1 matches the end of a text that ends with a newline.
func NewLine(n int) (Matcher, error) {
	if n < 1 {
		return nil, errors.Errorf("%w: line must be >= 1, got %d", ErrInvalidPatchSpec, n)
	}
	return &lineMatcher{line: n}, nil
}

func (m *lineMatcher) Find(text string) []Match {
	pos := 0
	for line := 1; line < m.line; line++ {
		i := strings.IndexByte(text[pos:], '\n')
		if i < 0 {
			return nil
		}
		pos += i + 1
	}
	return []Match{{Start: pos, End: pos}}
}

func (m *lineMatcher) Expand(_ string, _ Match, replacement string) string {
	return replacement
}

func (m *lineMatcher) String() string {
	return fmt.Sprintf("line %d", m.line)
}

func quoteShort(s string) string {
	const max = 40
	if len(s) > max {
		cut := max
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return fmt.Sprintf("%q", s)
}

// toCRLF rewrites bare \n line endings as \r\n, leaving existing \r\n alone.
func toCRLF(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\n", "\r\n")
}
