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

// 🔁 Occurrence selects how many matches a Spec replaces
type Occurrence string

const (
	OccurrenceFirst Occurrence = "first"
	OccurrenceAll   Occurrence = "all"
)

// 📊 Status is the outcome of a single Spec
type Status string

const (
	StatusApplied Status = "applied"
	StatusNoOp    Status = "no-op"
	StatusFailed  Status = "failed"
)

// Notes attached to results that did not apply.
const (
	NoteNotFound     = "not found"
	NoteGuardPresent = "guard present"
)

// 📝 Definition is the serializable form of a Spec, as written in a patch file.
// Exactly one of Find, Pattern and Line selects the matcher.
//
// With Pattern, Replace may reference groups as $1, ${1}, $name or ${name};
// $$ is a literal $. References to groups the pattern lacks are rejected.
type Definition struct {
	ID             string   `json:"id" yaml:"id" hcl:"id,label"`
	Find           string   `json:"find,omitempty" yaml:"find,omitempty" hcl:"find,optional"`
	Pattern        string   `json:"pattern,omitempty" yaml:"pattern,omitempty" hcl:"pattern,optional"`
	Flags          []string `json:"flags,omitempty" yaml:"flags,omitempty" hcl:"flags,optional"`
	Line           int      `json:"line,omitempty" yaml:"line,omitempty" hcl:"line,optional"`
	Replace        string   `json:"replace" yaml:"replace" hcl:"replace,optional"`
	Occurrence     string   `json:"occurrence,omitempty" yaml:"occurrence,omitempty" hcl:"occurrence,optional"`
	Required       *bool    `json:"required,omitempty" yaml:"required,omitempty" hcl:"required,optional"`
	UnlessContains string   `json:"unless_contains,omitempty" yaml:"unless_contains,omitempty" hcl:"unless_contains,optional"`
}

// 🔧 Spec is a compiled, validated patch
type Spec struct {
	ID          string
	Matcher     Matcher
	Replacement string
	Occurrence  Occurrence
	Required    bool

	// UnlessContains skips the Spec as a no-op when the text already holds it.
	UnlessContains string
}

// 📄 Result is the outcome of applying one Spec
type Result struct {
	ID      string `json:"id"`
	Matched int    `json:"matched"`
	Applied int    `json:"applied"`
	Status  Status `json:"status"`
	Note    string `json:"note,omitempty"`
}

// 📦 Run is the immutable outcome of applying a list of Specs to a source text
type Run struct {
	Source  string
	Text    string
	Results []Result
}

// Changed reports whether the run produced a different text.
func (r *Run) Changed() bool {
	return r.Text != r.Source
}

// Failed reports whether any Spec failed.
func (r *Run) Failed() bool {
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Counts tallies results by status.
func (r *Run) Counts() (applied, noop, failed int) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusApplied:
			applied++
		case StatusNoOp:
			noop++
		case StatusFailed:
			failed++
		}
	}
	return applied, noop, failed
}
