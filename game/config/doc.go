// Package config loads the placement rule sets used to build matches.
//
// Rule sets are JSON files in a config directory; the file name without
// .json is the rules id clients pass when creating a match. Each file maps
// onto engine.Rules:
//
//	{
//	  "name": "classic",
//	  "description": "Classic fleet",
//	  "ship_lengths": [5, 4, 3, 3, 2],
//	  "clamp_to_board": true,
//	  "max_attempts": 5000,
//	  "board": {"rows": 10, "columns": 10, "ships": 5}
//	}
//
// Files are validated with engine.ValidateRules on first load and cached.
// classic.json is the default; when it is missing the first valid file is
// used, and an empty directory falls back to engine.DefaultRules.
package config
