package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"lessc/compiler"
	"lessc/eval"
	"lessc/render"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}

	c := cfg.Compiler
	if c.Compress || c.Strict || c.ImportOnce || c.HideWarnings {
		t.Errorf("unexpected default switches: %+v", c)
	}
	if c.Indent != render.DefaultIndent {
		t.Errorf("Indent = %d, want %d", c.Indent, render.DefaultIndent)
	}
	if c.RecursionLimit != eval.DefaultRecursionLimit {
		t.Errorf("RecursionLimit = %d, want %d", c.RecursionLimit, eval.DefaultRecursionLimit)
	}
	if c.CacheSize != compiler.DefaultCacheSize {
		t.Errorf("CacheSize = %d, want %d", c.CacheSize, compiler.DefaultCacheSize)
	}
	if c.Mode != ModeCompile {
		t.Errorf("Mode = %v, want %v", c.Mode, ModeCompile)
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" || cfg.Logging.FileLogger.Level != "none" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	inc := t.TempDir()
	path := writeConfig(t, `version: 1
compiler:
  compress: true
  indent: 4
  recursion_limit: 10
  strict: true
  include_paths: ["`+filepath.ToSlash(inc)+`"]
  mode: canonical
logging:
  console:
    level: debug
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	c := cfg.Compiler
	if !c.Compress || !c.Strict || c.Indent != 4 || c.RecursionLimit != 10 {
		t.Errorf("values from file not applied: %+v", c)
	}
	if c.Mode != ModeCanonical {
		t.Errorf("Mode = %v, want %v", c.Mode, ModeCanonical)
	}
	if !slices.Equal(c.IncludePaths, []string{filepath.ToSlash(inc)}) {
		t.Errorf("IncludePaths = %v", c.IncludePaths)
	}
	// defaults survive for fields absent in file
	if c.CacheSize != compiler.DefaultCacheSize {
		t.Errorf("CacheSize = %d, want default", c.CacheSize)
	}
	if cfg.Logging.ConsoleLogger.Level != "debug" {
		t.Errorf("console level = %q, want debug", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid yaml", content: "version: 1\ncompiler:\n  compress: true\n  invalid indent\n"},
		{name: "unknown field", content: "version: 1\nunknown_field: value\n"},
		{name: "version", content: "version: 2\n"},
		{name: "indent", content: "version: 1\ncompiler:\n  indent: 0\n"},
		{name: "recursion limit", content: "version: 1\ncompiler:\n  recursion_limit: -1\n"},
		{name: "mode", content: "version: 1\ncompiler:\n  mode: render\n"},
		{name: "empty include path", content: "version: 1\ncompiler:\n  include_paths: [\"\"]\n"},
		{name: "log level", content: "version: 1\nlogging:\n  console:\n    level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Prepare() returned empty data")
	}
	if _, err := unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Compiler.Mode = ModeExpand
	cfg.Compiler.IncludePaths = []string{"lib"}

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	cfg2, err := unmarshalConfig(data, &Config{}, false)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if cfg2.Compiler.Mode != ModeExpand || !slices.Equal(cfg2.Compiler.IncludePaths, []string{"lib"}) {
		t.Errorf("compiler section mismatch after dump/load: %+v", cfg2.Compiler)
	}
}

func TestCompilerConfig_Options(t *testing.T) {
	conf := CompilerConfig{
		Compress:       true,
		Indent:         3,
		RecursionLimit: 7,
		Strict:         true,
		ImportOnce:     true,
		IncludePaths:   []string{"a", "b"},
		CacheSize:      5,
	}

	want := compiler.Options{
		Eval:      eval.Options{RecursionLimit: 7, Strict: true, ImportOnce: true},
		Render:    render.Options{Compress: true, Indent: 3},
		CacheSize: 5,
	}
	if got := conf.Options(); got != want {
		t.Errorf("Options() = %+v, want %+v", got, want)
	}

	loader := conf.Loader()
	if !slices.Equal(loader.ImportPaths, conf.IncludePaths) {
		t.Errorf("ImportPaths = %v", loader.ImportPaths)
	}
	loader.ImportPaths[0] = "changed"
	if conf.IncludePaths[0] != "a" {
		t.Error("Loader() must not share include paths")
	}
}

func TestMode(t *testing.T) {
	tests := []struct {
		mode  Mode
		name  string
		debug bool
	}{
		{ModeCompile, "compile", false},
		{ModeCanonical, "canonical", true},
		{ModeParse, "parse", true},
		{ModeExpand, "expand", true},
		{Mode(99), "Mode(99)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.mode.Debug(); got != tt.debug {
				t.Errorf("Debug() = %v, want %v", got, tt.debug)
			}
			if !tt.mode.IsValid() {
				return
			}
			parsed, err := ParseMode(tt.name)
			if err != nil || parsed != tt.mode {
				t.Errorf("ParseMode(%q) = %v, %v", tt.name, parsed, err)
			}
		})
	}

	if _, err := ParseMode("render"); err == nil {
		t.Error("ParseMode() accepted unknown mode")
	}
}

func TestCleanFileName(t *testing.T) {
	if got := CleanFileName("a" + string(os.PathSeparator) + "b.less"); got != "ab.less" {
		t.Errorf("CleanFileName() = %q, want ab.less", got)
	}
	if got := CleanFileName(string(os.PathSeparator)); got != "_bad_file_name_" {
		t.Errorf("CleanFileName() = %q", got)
	}
}
