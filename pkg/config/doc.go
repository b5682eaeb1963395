/*
Package config loads patch sets for patchrc.

	            +-------------+
	            |   Config    |
	            | (Patch Set) |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   YAML   | |   HCL    | |   JSON   |
	|  Parser  | |  Parser  | |  Parser  |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Reads a patch set file and picks a parser from its extension
- Rejects unknown fields and definitions that do not compile
- Resolves target globs relative to the patch set's directory

🔄 Flow:
1. Load reads the file
2. The registered Parser decodes it
3. Validate normalizes line_endings and compiles every patch
4. ResolveTargets expands targets (or command line overrides) to files

🔍 Example:

	cfg, err := config.Load(ctx, ".patchrc.yaml")
	if err != nil {
		return err
	}

	files, err := cfg.ResolveTargets(ctx, nil)
	if err != nil {
		return err
	}
*/
package config
