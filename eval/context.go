package eval

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/buffer"

	"lessc/model"
)

// DefaultRecursionLimit is maximum number of simultaneously active
// invocations of a single mixin.
const DefaultRecursionLimit = 64

// Options controls evaluation.
type Options struct {
	// RecursionLimit bounds mixin recursion, zero selects the default.
	RecursionLimit int
	// Strict turns recoverable problems into errors.
	Strict bool
	// ImportOnce makes every @import behave like @import-once.
	ImportOnce bool
}

// Importer loads and parses imported stylesheets. Path is resolved relative
// to the importing file from, the returned name identifies resolved file.
type Importer interface {
	Import(path, from string) (sheet *model.Stylesheet, resolved string, err error)
}

// Diagnostics accumulates warnings which do not stop compilation.
type Diagnostics struct {
	log      *zap.Logger
	warnings []*Error
}

// Warn records and logs warning.
func (d *Diagnostics) Warn(err *Error) {
	d.warnings = append(d.warnings, err)
	d.log.Warn("Compilation warning", zap.String("kind", err.Kind.String()), zap.Error(err))
}

// Warnings returns collected warnings in order of appearance.
func (d *Diagnostics) Warnings() []*Error {
	return d.warnings
}

// Err combines all warnings into single error, nil when there were none.
func (d *Diagnostics) Err() error {
	var err error
	for _, w := range d.warnings {
		err = multierr.Append(err, w)
	}
	return err
}

// scratch hands out buffers for transient rendering. Every acquisition gets
// its own buffer, so nested selector evaluation never shares one.
type scratch struct {
	pool buffer.Pool
	held int
}

func (s *scratch) acquire() *buffer.Buffer {
	s.held++
	return s.pool.Get()
}

func (s *scratch) release(b *buffer.Buffer) {
	s.held--
	b.Free()
}

// nsKey identifies ruleset body opened as namespace from a particular frame.
type nsKey struct {
	ruleset *model.Ruleset
	scope   *Scope
}

// Context is per compilation evaluation state.
type Context struct {
	opts     Options
	path     string
	diag     *Diagnostics
	scratch  scratch
	importer Importer

	imported  map[string]bool
	importing []string

	chain      []string
	entries    map[*model.Ruleset]int
	namespaces map[nsKey]*Env
	extends    *Extends
}

func newContext(opts Options, importer Importer, log *zap.Logger) *Context {
	if opts.RecursionLimit <= 0 {
		opts.RecursionLimit = DefaultRecursionLimit
	}
	return &Context{
		opts:       opts,
		diag:       &Diagnostics{log: log},
		scratch:    scratch{pool: buffer.NewPool()},
		importer:   importer,
		imported:   make(map[string]bool),
		entries:    make(map[*model.Ruleset]int),
		namespaces: make(map[nsKey]*Env),
		extends:    &Extends{},
	}
}
