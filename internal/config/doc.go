// Package config loads lintmux settings and turns them into the tool
// registry and logger used for a run.
//
// # Configuration Precedence
//
// Values are resolved in the following order (highest to lowest priority):
//
//  1. Environment variables (LINTMUX_DEBUG, LINTMUX_NO_COLOR, NO_COLOR, LINTMUX_<TOOL>_PATH)
//  2. YAML config file (.lintmux.yaml in the working directory or
//     $XDG_CONFIG_HOME/lintmux/.lintmux.yaml)
//  3. Hardcoded defaults
//
// The command line itself carries no lintmux settings: every argument belongs
// to the linters and is handled by the cmdline package.
//
// # Config File
//
//	debug: false
//	no_color: false
//	fallback_result: /tmp/lintmux-result.yaml
//	tools:
//	  clang-tidy:
//	    executable: /opt/llvm/bin/clang-tidy
//	  clazy:
//	    executable: clazy-standalone
//	    args: ["--ignore-included-files"]
//	    success_code: 0
//
// A tool entry whose name is not built in registers an additional linter; it
// must name an executable.
//
// # Environment Variables
//
//   - LINTMUX_DEBUG: any non-empty value enables debug logging on stderr
//   - LINTMUX_NO_COLOR or NO_COLOR: "true" or "1" disables colored diagnostics
//   - LINTMUX_<TOOL>_PATH: executable of <TOOL>, upper-cased with '-' as '_'
//     (LINTMUX_CLANG_TIDY_PATH, LINTMUX_CLAZY_PATH)
package config
