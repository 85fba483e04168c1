package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dkoosis/lintmux/internal/linter"
)

// FileName is the name of the config file searched for.
const FileName = ".lintmux.yaml"

// Environment variables read by LoadConfig.
const (
	EnvDebug   = "LINTMUX_DEBUG"
	EnvNoColor = "LINTMUX_NO_COLOR"
)

// ToolConfig overrides how one linter is called.
type ToolConfig struct {
	Executable  string   `yaml:"executable"`
	Args        []string `yaml:"args"`
	SuccessCode *int     `yaml:"success_code"`
	ResultFlag  string   `yaml:"result_flag"`
}

// AppConfig is the content of .lintmux.yaml after defaults and environment
// overrides are applied.
type AppConfig struct {
	Debug          bool                  `yaml:"debug"`
	NoColor        bool                  `yaml:"no_color"`
	FallbackResult string                `yaml:"fallback_result"`
	Tools          map[string]ToolConfig `yaml:"tools"`

	// Path is the file the values were read from; empty when defaults only.
	Path string `yaml:"-"`
}

// LoadConfig reads the config file, if any, and applies environment
// overrides. A file that exists but cannot be read or parsed is an error.
func LoadConfig() (*AppConfig, error) {
	appCfg := &AppConfig{Tools: map[string]ToolConfig{}}

	if path := getConfigPath(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, appCfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if appCfg.Tools == nil {
			appCfg.Tools = map[string]ToolConfig{}
		}
		appCfg.Path = path
	}

	if os.Getenv(EnvDebug) != "" {
		appCfg.Debug = true
	}
	if noColor := getEnvBool(EnvNoColor, "NO_COLOR"); noColor != nil {
		appCfg.NoColor = *noColor
	}
	return appCfg, nil
}

// getConfigPath returns the local config file, else the one in the user
// config directory, else "".
func getConfigPath() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	xdgPath := filepath.Join(configHome, "lintmux", FileName)
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}
	return ""
}

// getEnvBool returns the first parseable boolean among keys, or nil.
func getEnvBool(keys ...string) *bool {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				return &b
			}
		}
	}
	return nil
}

// PathEnv returns the variable that overrides the executable of tool.
func PathEnv(tool string) string {
	return "LINTMUX_" + strings.ToUpper(strings.ReplaceAll(tool, "-", "_")) + "_PATH"
}

// Registry builds the tool registry: the built-in linters, then extra tools
// from the file in name order, each with its overrides applied.
func (c *AppConfig) Registry() (*linter.Registry, error) {
	reg := linter.DefaultRegistry()

	names := make([]string, 0, len(c.Tools))
	for name := range c.Tools {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		tc := c.Tools[name]
		tool, ok := reg.Lookup(name)
		if !ok {
			if tc.Executable == "" {
				return nil, fmt.Errorf("tools.%s: executable is required for a linter that is not built in", name)
			}
			tool = linter.Tool{Name: name, ResultFlag: "--export-fixes="}
		}
		reg.Register(apply(tool, tc))
	}

	for _, name := range reg.Names() {
		if exe := os.Getenv(PathEnv(name)); exe != "" {
			tool := reg.MustLookup(name)
			tool.Executable = exe
			reg.Register(tool)
		}
	}
	return reg, nil
}

func apply(t linter.Tool, tc ToolConfig) linter.Tool {
	if tc.Executable != "" {
		t.Executable = tc.Executable
	}
	if len(tc.Args) > 0 {
		t.BaseArgs = append([]string(nil), tc.Args...)
	}
	if tc.SuccessCode != nil {
		t.SuccessCode = *tc.SuccessCode
	}
	if tc.ResultFlag != "" {
		t.ResultFlag = tc.ResultFlag
	}
	return t
}

// Logger returns a debug logger writing to w when Debug is set, and a
// logger that discards everything otherwise.
func (c *AppConfig) Logger(w io.Writer) *slog.Logger {
	if !c.Debug || w == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
