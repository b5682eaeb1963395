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

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrInvalidPatchSpec is returned when a Definition or Spec cannot be used.
	ErrInvalidPatchSpec = errors.Base("invalid patch spec")

	// ErrPatchNotFound is returned when a required Spec matches nothing.
	ErrPatchNotFound = errors.Base("patch not found")
)

// SpecError ties an error to the Spec that caused it.
type SpecError struct {
	ID    string
	Index int
	Err   error
}

func (e *SpecError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("patch #%d: %s", e.Index, e.Err)
	}
	return fmt.Sprintf("patch %q: %s", e.ID, e.Err)
}

func (e *SpecError) Unwrap() error {
	return e.Err
}
