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

// Package diff renders line diffs between an original and a patched text.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the kind of a diff line.
type Op int

const (
	OpEqual Op = iota
	OpInsert
	OpDelete
)

// Line is one line of a line diff, including its trailing newline if any.
type Line struct {
	Op   Op
	Text string
}

// Lines computes a line-oriented diff of from and to.
func Lines(from, to string) []Line {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []Line
	for _, d := range diffs {
		var op Op
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = OpInsert
		case diffmatchpatch.DiffDelete:
			op = OpDelete
		default:
			op = OpEqual
		}
		for _, text := range strings.SplitAfter(d.Text, "\n") {
			if text == "" {
				continue
			}
			lines = append(lines, Line{Op: op, Text: text})
		}
	}
	return lines
}

// Stats counts inserted and deleted lines.
func Stats(lines []Line) (inserted, deleted int) {
	for _, l := range lines {
		switch l.Op {
		case OpInsert:
			inserted++
		case OpDelete:
			deleted++
		}
	}
	return inserted, deleted
}

type entry struct {
	Line
	oldPos int // old lines before this entry
	newPos int // new lines before this entry
}

// Unified renders a unified diff with the given number of context lines.
// It returns an empty string when from and to are equal.
func Unified(name string, from, to string, context int) string {
	if from == to {
		return ""
	}
	if context < 0 {
		context = 0
	}

	lines := Lines(from, to)
	entries := make([]entry, len(lines))
	oldPos, newPos := 0, 0
	var changed []int
	for i, l := range lines {
		entries[i] = entry{Line: l, oldPos: oldPos, newPos: newPos}
		switch l.Op {
		case OpEqual:
			oldPos++
			newPos++
		case OpDelete:
			oldPos++
			changed = append(changed, i)
		case OpInsert:
			newPos++
			changed = append(changed, i)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", name, name)

	for i := 0; i < len(changed); {
		// extend the hunk while the next change is within reach of the context
		j := i
		for j+1 < len(changed) && changed[j+1]-changed[j] <= 2*context+1 {
			j++
		}

		start := max(0, changed[i]-context)
		end := min(len(entries), changed[j]+context+1)
		writeHunk(&b, entries[start:end])

		i = j + 1
	}

	return b.String()
}

func writeHunk(b *strings.Builder, hunk []entry) {
	oldCount, newCount := 0, 0
	for _, e := range hunk {
		switch e.Op {
		case OpEqual:
			oldCount++
			newCount++
		case OpDelete:
			oldCount++
		case OpInsert:
			newCount++
		}
	}

	oldStart, newStart := hunk[0].oldPos, hunk[0].newPos
	if oldCount > 0 {
		oldStart++
	}
	if newCount > 0 {
		newStart++
	}

	fmt.Fprintf(b, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)
	for _, e := range hunk {
		prefix := " "
		switch e.Op {
		case OpInsert:
			prefix = "+"
		case OpDelete:
			prefix = "-"
		}
		b.WriteString(prefix)
		b.WriteString(e.Text)
		if !strings.HasSuffix(e.Text, "\n") {
			b.WriteString("\n\\ No newline at end of file\n")
		}
	}
}
