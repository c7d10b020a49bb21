// Package build implements compile command: it finds stylesheets, compiles
// them concurrently and writes results.
package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lessc/archive"
	"lessc/compiler"
	"lessc/config"
	"lessc/eval"
	"lessc/model"
	"lessc/state"
)

// SourceExt is extension of stylesheets picked up when walking directories.
const SourceExt = ".less"

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("build")

	if cmd.NArg() == 0 {
		return errors.New("no input source has been specified")
	}

	if err := applyFlags(cmd, &env.Cfg.Compiler); err != nil {
		return err
	}
	env.NoDirs, env.Overwrite, env.Stats = cmd.Bool("nodirs"), cmd.Bool("overwrite"), cmd.Bool("stats")

	dst := cmd.String("out")
	if len(dst) > 0 {
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
	}

	jobs, loaders, err := collect(ctx, cmd.Args().Slice(), log)
	if err != nil {
		return err
	}

	log.Info("Processing starting", zap.Int("files", len(jobs)), zap.String("destination", dst), zap.Stringer("mode", env.Cfg.Compiler.Mode))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, jobs, loaders, dst, cmd.Int("jobs"), log)
}

// applyFlags overwrites configuration with values explicitly set on command
// line.
func applyFlags(cmd *cli.Command, conf *config.CompilerConfig) error {
	if cmd.IsSet("compress") {
		conf.Compress = cmd.Bool("compress")
	}
	if cmd.IsSet("indent") {
		conf.Indent = cmd.Int("indent")
	}
	if cmd.IsSet("recursion-limit") {
		conf.RecursionLimit = cmd.Int("recursion-limit")
	}
	if cmd.IsSet("strict") {
		conf.Strict = cmd.Bool("strict")
	}
	if cmd.IsSet("import-once") {
		conf.ImportOnce = cmd.Bool("import-once")
	}
	if cmd.IsSet("hide-warnings") {
		conf.HideWarnings = cmd.Bool("hide-warnings")
	}
	if cmd.IsSet("include-path") {
		conf.IncludePaths = append(conf.IncludePaths, cmd.StringSlice("include-path")...)
	}
	if cmd.IsSet("mode") {
		mode, err := config.ParseMode(cmd.String("mode"))
		if err != nil {
			return fmt.Errorf("bad mode requested (supported: %s): %w", strings.Join(config.ModeNames(), ", "), err)
		}
		conf.Mode = mode
	}
	return nil
}

// job is a single stylesheet to process. Rel is the source path relative to
// the command line argument it was found under. Stylesheets found in
// archives have archive set and path is the name inside archive.
type job struct {
	n       int
	path    string
	rel     string
	archive string
}

// collect expands command line arguments into list of stylesheets.
// Directories are walked recursively, symbolic links are not followed. Zip
// archives are read into memory, argument may continue with path inside
// archive: "styles.zip/site". Loaders serving archives are returned keyed by
// archive name.
func collect(ctx context.Context, args []string, log *zap.Logger) ([]job, map[string]compiler.Loader, error) {
	var (
		jobs    []job
		loaders = make(map[string]compiler.Loader)
	)
	for _, arg := range args {
		src, err := filepath.Abs(arg)
		if err != nil {
			return nil, nil, err
		}

		arc, inside, err := splitArchivePath(src)
		if err != nil {
			return nil, nil, fmt.Errorf("input source was not found (%s): %w", arg, err)
		}
		if len(arc) > 0 {
			loader, names, err := archive.Load(arc, inside, SourceExt)
			if err != nil {
				return nil, nil, fmt.Errorf("unable to process archive (%s): %w", arc, err)
			}
			if len(names) == 0 {
				log.Debug("Nothing to process", zap.String("archive", arc), zap.String("path", inside))
			}
			loaders[arc] = loader
			for _, name := range names {
				rel := strings.TrimPrefix(strings.TrimPrefix(name, inside), "/")
				jobs = append(jobs, job{n: len(jobs), path: name, rel: filepath.FromSlash(rel), archive: arc})
			}
			continue
		}

		fi, err := os.Stat(src)
		if err != nil {
			return nil, nil, fmt.Errorf("input source was not found (%s): %w", arg, err)
		}
		if fi.Mode().IsRegular() {
			jobs = append(jobs, job{n: len(jobs), path: src, rel: filepath.Base(src)})
			continue
		}
		if !fi.IsDir() {
			return nil, nil, fmt.Errorf("unexpected path mode for (%s)", arg)
		}

		count := 0
		err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err != nil {
				log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
				return nil
			}
			if !d.Type().IsRegular() || !strings.EqualFold(filepath.Ext(path), SourceExt) {
				return nil
			}
			rel, err := filepath.Rel(src, path)
			if err != nil {
				return err
			}
			count++
			jobs = append(jobs, job{n: len(jobs), path: path, rel: rel})
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
		if count == 0 {
			log.Debug("Nothing to process", zap.String("dir", src))
		}
	}
	return jobs, loaders, nil
}

// splitArchivePath finds zip archive among path components. Archive name is
// empty when path does not point into archive.
func splitArchivePath(src string) (arc, inside string, err error) {
	var tail []string
	for head := src; ; {
		if fi, err := os.Stat(head); err == nil {
			if !fi.Mode().IsRegular() {
				break
			}
			ok, err := archive.IsArchive(head)
			if err != nil {
				return "", "", err
			}
			if !ok {
				break
			}
			slices.Reverse(tail)
			inside = strings.Join(tail, "/")
			if len(inside) > 0 {
				inside += "/"
			}
			return head, inside, nil
		}
		dir, file := filepath.Split(head)
		dir = strings.TrimSuffix(dir, string(filepath.Separator))
		if len(file) == 0 || dir == head {
			break
		}
		tail = append(tail, file)
		head = dir
	}
	if len(tail) > 0 {
		// path does not exist and no archive found on the way
		return "", "", fs.ErrNotExist
	}
	return "", "", nil
}

// process compiles all jobs, jobs from the same source share compiler.
// Failures of individual files are logged and do not stop the rest. Results
// are written to stdout in command line order when no destination is given.
func process(ctx context.Context, jobs []job, loaders map[string]compiler.Loader, dst string, limit int, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	compilers := make(map[string]*compiler.Compiler, len(loaders)+1)
	for _, j := range jobs {
		if _, ok := compilers[j.archive]; ok {
			continue
		}
		c, err := env.NewCompiler(loaders[j.archive])
		if err != nil {
			return err
		}
		compilers[j.archive] = c
	}

	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	outputs := make([]string, len(jobs))
	failed := make([]bool, len(jobs))
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := processFile(gctx, compilers[j.archive], j, dst, log)
			if err != nil {
				log.Error("Unable to process file", zap.String("file", j.path), zap.Error(err))
				failed[i] = true
				return nil
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(dst) == 0 {
		for i, out := range outputs {
			if failed[i] {
				continue
			}
			if _, err := env.Out.Write([]byte(out)); err != nil {
				return fmt.Errorf("unable to write output: %w", err)
			}
		}
	}

	count := 0
	for _, f := range failed {
		if f {
			count++
		}
	}
	if count > 0 {
		return fmt.Errorf("%d of %d files failed", count, len(jobs))
	}
	return nil
}

// processFile handles single stylesheet in the requested mode. Output is
// returned when there is no destination directory.
func processFile(ctx context.Context, c *compiler.Compiler, j job, dst string, log *zap.Logger) (out string, rerr error) {
	env := state.EnvFromContext(ctx)
	conf := &env.Cfg.Compiler

	var (
		stats    compiler.Stats
		result   string
		warnings []*eval.Error
	)
	if env.Rpt != nil {
		// runs last, after panic is converted to error
		defer func() {
			rep := &config.Compilation{
				Sources: reportSources(c, stats.Files, log),
				Mode:    conf.Mode,
				Output:  result,
				Err:     rerr,
			}
			for _, w := range warnings {
				rep.Warnings = append(rep.Warnings, w)
			}
			env.Rpt.StoreCompilation(reportName(j), rep)
		}()
	}

	log = log.With(zap.String("file", j.rel))
	log.Debug("Compilation starting")
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Compilation ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("compilation panic: %v", r)
		} else {
			log.Debug("Compilation completed", zap.Duration("elapsed", time.Since(start)))
		}
	}(time.Now())

	var err error
	switch conf.Mode {
	case config.ModeCompile:
		var res *compiler.Result
		if res, err = c.CompileFile(j.path, &stats); err != nil {
			return "", err
		}
		result, warnings = res.CSS, res.Warnings
	default:
		if result, warnings, err = debugOutput(c, j.path, conf, &stats); err != nil {
			return "", err
		}
	}

	if env.Stats {
		log.Info("Statistics",
			zap.Duration("parse", stats.ParseTime),
			zap.Duration("compile", stats.CompileTime),
			zap.Duration("disk wait", stats.DiskWaitTime),
			zap.Int("imports", stats.Imports),
			zap.Int("cached imports", stats.CacheHits))
	}

	if len(dst) == 0 {
		return result, nil
	}
	return "", writeOutput(buildOutputPath(j.rel, dst, conf.Mode, env), result, env, log)
}

// reportSources reads text of every file compilation touched.
func reportSources(c *compiler.Compiler, names []string, log *zap.Logger) map[string]string {
	sources := make(map[string]string, len(names))
	for _, name := range names {
		text, err := c.Source(name)
		if err != nil {
			log.Warn("Unable to read source for report", zap.String("source", name), zap.Error(err))
			continue
		}
		sources[name] = text
	}
	return sources
}

// debugOutput produces textual form of the tree for debug modes.
func debugOutput(c *compiler.Compiler, path string, conf *config.CompilerConfig, stats *compiler.Stats) (string, []*eval.Error, error) {
	sheet, err := c.ParseFile(path, stats)
	if err != nil {
		return "", nil, err
	}

	switch conf.Mode {
	case config.ModeCanonical:
		return model.Repr(sheet), nil, nil
	case config.ModeParse:
		return model.Dump(sheet, conf.Indent), nil, nil
	case config.ModeExpand:
		start := time.Now()
		expanded, warnings, err := c.Expand(sheet, stats)
		stats.CompileTime = time.Since(start)
		if err != nil {
			return "", nil, err
		}
		return model.Dump(expanded, conf.Indent), warnings, nil
	default:
		// this should never happen
		return "", nil, fmt.Errorf("unsupported mode %s", conf.Mode)
	}
}

func writeOutput(name, out string, env *state.LocalEnv, log *zap.Logger) error {
	if _, err := os.Stat(name); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
		log.Warn("Overwriting existing file", zap.String("output", name))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(name, []byte(out), 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	log.Info("Output written", zap.String("output", name))
	return nil
}

// reportName places artifacts of every job under its own directory, the
// same relative name may come from different arguments.
func reportName(j job) string {
	return fmt.Sprintf("files/%03d-%s", j.n, filepath.ToSlash(j.rel))
}
