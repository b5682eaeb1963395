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

/*
Package patch applies ordered, named find/replace edits to a text.

	+-----------+     +-----------+     +-----------+
	|  spec 1   | --> |  spec 2   | --> |  spec n   |
	| (text_0)  |     | (text_1)  |     | (text_n-1)|
	+-----------+     +-----------+     +-----------+
	                                          |
	                                    Run{Text, Results}

🎯 Purpose:
- Compiles Definitions (the config-file form) into Specs
- Folds Specs over a source text, each one seeing the previous output
- Reports a Result per Spec: applied, no-op or failed

⚡ Rules:
- A required Spec that does not match aborts the run with ErrPatchNotFound,
  and the returned Run carries the original text untouched
- A malformed Definition is rejected by Compile with ErrInvalidPatchSpec,
  before any text is looked at
- The engine never reads or writes files

🔍 Example:

	specs, err := patch.Compile([]patch.Definition{
		{ID: "rename", Find: "A", Replace: "X", Occurrence: "all"},
	})
	if err != nil {
		return err
	}

	run, err := patch.Apply("A B A", specs)
	if err != nil {
		return err
	}
	fmt.Println(run.Text) // X B X
*/
package patch
