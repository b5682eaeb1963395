/*
Package operation applies a patch set to files.

	+-------------+
	|    Lock     |  every target, held until the end
	+------+------+
	       |
	+------+------+
	|    Plan     |  read + patch.Engine per file (parallel across files)
	+------+------+
	       |
	+------+------+
	|   Commit    |  backup + atomic write, only if every plan succeeded
	+------+------+
	       |
	+------+------+
	|   Report    |  one line per patch, optional diff
	+-------------+

🎯 Purpose:
- Owns the file I/O the engine never does
- Keeps a run all-or-nothing: a required patch that misses in any file
  means no file is written
- Never runs two patch runs against the same file

🔍 Example:

	report, err := operation.Apply(ctx, operation.Options{
		Files:  files,
		Specs:  specs,
		Engine: patch.NewEngine(cfg.EngineOptions()),
		Logger: log.New(os.Stdout, *zerolog.Ctx(ctx)),
		DryRun: true,
	})
*/
package operation
