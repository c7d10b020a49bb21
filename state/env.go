// Package state defines shared program state.
package state

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lessc/compiler"
	"lessc/config"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// used by compile subcommand
	Out       io.Writer
	NoDirs    bool
	Overwrite bool
	Stats     bool

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// NewCompiler creates compiler configured from loaded configuration, nil
// loader searches configured include paths on disk. Single compiler is
// shared by all files from the same source so parsed imports are reused.
func (e *LocalEnv) NewCompiler(loader compiler.Loader) (*compiler.Compiler, error) {
	conf := e.compilerConfig()
	if loader == nil {
		loader = conf.Loader()
	}
	log := e.Log
	if log != nil && conf.HideWarnings {
		log = log.WithOptions(zap.IncreaseLevel(zapcore.ErrorLevel))
	}
	return compiler.New(conf.Options(), loader, nil, log)
}

func (e *LocalEnv) compilerConfig() *config.CompilerConfig {
	if e.Cfg == nil {
		return &config.CompilerConfig{}
	}
	return &e.Cfg.Compiler
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
