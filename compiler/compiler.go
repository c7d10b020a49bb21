// Package compiler ties parser, evaluator and renderer together.
package compiler

import (
	"fmt"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"lessc/eval"
	"lessc/functions"
	"lessc/model"
	"lessc/parse"
	"lessc/render"
)

// DefaultCacheSize is number of parsed imports kept in memory.
const DefaultCacheSize = 128

// Options controls compilation.
type Options struct {
	Eval   eval.Options
	Render render.Options
	// CacheSize limits parsed import cache, zero selects default.
	CacheSize int
}

// Stats describes single compilation.
type Stats struct {
	ParseTime    time.Duration
	CompileTime  time.Duration
	DiskWaitTime time.Duration
	Imports      int
	CacheHits    int
	// Files lists resolved names of files read by the loader, compiled file
	// first, each once.
	Files []string
}

func (s *Stats) addFile(name string) {
	if !slices.Contains(s.Files, name) {
		s.Files = append(s.Files, name)
	}
}

// Result of compilation.
type Result struct {
	CSS      string
	Warnings []*eval.Error
	Stats    Stats
}

// Warning combines all warnings into single error, nil when there were
// none.
func (r *Result) Warning() error {
	var err error
	for _, w := range r.Warnings {
		err = multierr.Append(err, w)
	}
	return err
}

// Compiler compiles stylesheets. Function table and parsed imports cache are
// shared, so single compiler may be used from several goroutines.
type Compiler struct {
	log    *zap.Logger
	opts   Options
	loader Loader
	funcs  *functions.Table
	cache  *lru.Cache[string, *model.Stylesheet]
}

// New creates compiler. Nil loader reads files from disk.
func New(opts Options, loader Loader, funcs *functions.Table, log *zap.Logger) (*Compiler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if loader == nil {
		loader = &FileLoader{}
	}
	if funcs == nil {
		funcs = functions.Builtins()
	}
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *model.Stylesheet](size)
	if err != nil {
		return nil, fmt.Errorf("unable to create import cache: %w", err)
	}
	return &Compiler{
		log:    log.Named("compiler"),
		opts:   opts,
		loader: loader,
		funcs:  funcs,
		cache:  cache,
	}, nil
}

// Parse parses source text.
func (c *Compiler) Parse(source, path string) (*model.Stylesheet, error) {
	return parse.Parse(source, path)
}

// Expand evaluates parsed stylesheet, stats are updated with import
// activity.
func (c *Compiler) Expand(sheet *model.Stylesheet, stats *Stats) (*model.Stylesheet, []*eval.Error, error) {
	if stats == nil {
		stats = &Stats{}
	}
	ev := eval.New(c.opts.Eval, c.funcs, &importer{c: c, stats: stats}, c.log)
	expanded, err := ev.Expand(sheet)
	if err != nil {
		return nil, nil, err
	}
	diag := ev.Diagnostics()
	if c.opts.Eval.Strict {
		if err := diag.Err(); err != nil {
			return nil, nil, err
		}
	}
	return expanded, diag.Warnings(), nil
}

// Render serializes evaluated stylesheet.
func (c *Compiler) Render(sheet *model.Stylesheet) string {
	return render.Render(sheet, c.opts.Render)
}

// Compile parses, evaluates and renders source. No CSS is produced when
// error is returned.
func (c *Compiler) Compile(source, path string) (*Result, error) {
	return c.compile(source, path, &Stats{})
}

// ParseFile reads file with the loader and parses it.
func (c *Compiler) ParseFile(name string, stats *Stats) (*model.Stylesheet, error) {
	if stats == nil {
		stats = &Stats{}
	}
	source, resolved, err := c.load(name, stats)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	sheet, err := c.Parse(source, resolved)
	stats.ParseTime += time.Since(start)
	return sheet, err
}

// CompileFile reads file with the loader and compiles it. When stats is not
// nil it is updated even if compilation fails.
func (c *Compiler) CompileFile(name string, stats *Stats) (*Result, error) {
	if stats == nil {
		stats = &Stats{}
	}
	source, resolved, err := c.load(name, stats)
	if err != nil {
		return nil, err
	}
	return c.compile(source, resolved, stats)
}

// Source returns text of the file under name resolved earlier, see
// Stats.Files.
func (c *Compiler) Source(name string) (string, error) {
	return c.loader.Load(name)
}

func (c *Compiler) compile(source, path string, stats *Stats) (*Result, error) {
	start := time.Now()
	sheet, err := c.Parse(source, path)
	stats.ParseTime += time.Since(start)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	expanded, warnings, err := c.Expand(sheet, stats)
	if err != nil {
		return nil, err
	}
	res := &Result{CSS: c.Render(expanded), Warnings: warnings}
	stats.CompileTime += time.Since(start)
	res.Stats = *stats

	c.log.Debug("Compiled",
		zap.String("path", path),
		zap.Int("imports", stats.Imports),
		zap.Int("warnings", len(warnings)),
		zap.Duration("parse", stats.ParseTime),
		zap.Duration("compile", stats.CompileTime))
	return res, nil
}

func (c *Compiler) load(name string, stats *Stats) (string, string, error) {
	resolved, err := c.loader.Resolve(name, "")
	if err != nil {
		return "", "", err
	}
	stats.addFile(resolved)
	start := time.Now()
	source, err := c.loader.Load(resolved)
	stats.DiskWaitTime += time.Since(start)
	if err != nil {
		return "", "", err
	}
	return source, resolved, nil
}

// importer serves imports of single compilation through the shared cache.
type importer struct {
	c     *Compiler
	stats *Stats
}

func (im *importer) Import(name, from string) (*model.Stylesheet, string, error) {
	resolved, err := im.c.loader.Resolve(name, from)
	if err != nil {
		return nil, "", err
	}
	im.stats.Imports++
	im.stats.addFile(resolved)
	if sheet, ok := im.c.cache.Get(resolved); ok {
		im.stats.CacheHits++
		return sheet, resolved, nil
	}

	start := time.Now()
	source, err := im.c.loader.Load(resolved)
	im.stats.DiskWaitTime += time.Since(start)
	if err != nil {
		return nil, "", err
	}

	start = time.Now()
	sheet, err := parse.Parse(source, resolved)
	im.stats.ParseTime += time.Since(start)
	if err != nil {
		return nil, "", err
	}
	im.c.cache.Add(resolved, sheet)
	return sheet, resolved, nil
}
