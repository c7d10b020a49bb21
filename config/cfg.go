package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"lessc/compiler"
	"lessc/eval"
	"lessc/render"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	CompilerConfig struct {
		Compress       bool     `yaml:"compress"`
		Indent         int      `yaml:"indent" validate:"min=1,max=16"`
		RecursionLimit int      `yaml:"recursion_limit" validate:"min=1"`
		Strict         bool     `yaml:"strict"`
		ImportOnce     bool     `yaml:"import_once"`
		HideWarnings   bool     `yaml:"hide_warnings"`
		IncludePaths   []string `yaml:"include_paths" validate:"dive,required"`
		CacheSize      int      `yaml:"cache_size" validate:"min=1"`
		Mode           Mode     `yaml:"mode"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Compiler  CompilerConfig `yaml:"compiler"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// Options converts configuration into compiler options.
func (conf *CompilerConfig) Options() compiler.Options {
	return compiler.Options{
		Eval: eval.Options{
			RecursionLimit: conf.RecursionLimit,
			Strict:         conf.Strict,
			ImportOnce:     conf.ImportOnce,
		},
		Render: render.Options{
			Compress: conf.Compress,
			Indent:   conf.Indent,
		},
		CacheSize: conf.CacheSize,
	}
}

// Loader returns file loader searching configured include paths.
func (conf *CompilerConfig) Loader() *compiler.FileLoader {
	return &compiler.FileLoader{ImportPaths: append([]string(nil), conf.IncludePaths...)}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration tamplate to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
