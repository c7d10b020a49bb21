package eval

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"lessc/model"
)

// expandImports replaces LESS imports with rules of imported stylesheets.
// CSS imports stay in place.
func (e *Evaluator) expandImports(rules []model.Node, env *Env) ([]model.Node, error) {
	var out []model.Node
	for i, r := range rules {
		imp, ok := r.(*model.Import)
		if !ok {
			if out != nil {
				out = append(out, r)
			}
			continue
		}
		if out == nil {
			out = append(make([]model.Node, 0, len(rules)), rules[:i]...)
		}
		nodes, err := e.importRules(imp, env)
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	if out == nil {
		return rules, nil
	}
	return out, nil
}

// importTarget returns path of the import and whether it is plain CSS
// import to be left for the browser.
func importTarget(n model.Node) (string, bool) {
	if u, ok := n.(*model.URL); ok {
		return interpolated(u.Value), true
	}
	path := interpolated(n)
	lower := strings.ToLower(path)
	css := strings.HasSuffix(lower, ".css") ||
		strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "//")
	return path, css
}

func (e *Evaluator) importRules(imp *model.Import, env *Env) ([]model.Node, error) {
	pathNode, err := e.Eval(imp.Path, env)
	if err != nil {
		return nil, err
	}
	path, css := importTarget(pathNode)
	if css {
		return []model.Node{imp}, nil
	}
	if e.ctx.importer == nil {
		return nil, e.fail(model.ImportError, imp, "unable to import %q: imports are not available", path)
	}

	from := e.ctx.path
	if n := len(e.ctx.importing); n > 0 {
		from = e.ctx.importing[n-1]
	}
	sheet, resolved, err := e.ctx.importer.Import(path, from)
	if err != nil {
		return nil, e.wrap(model.ImportError, imp, err, "unable to import %q", path)
	}
	if (imp.Once || e.ctx.opts.ImportOnce) && e.ctx.imported[resolved] {
		e.log.Debug("Skipping repeated import", zap.String("path", resolved))
		return nil, nil
	}
	if resolved == e.ctx.path || slices.Contains(e.ctx.importing, resolved) {
		return nil, e.fail(model.ImportError, imp, "%q imports itself", resolved)
	}
	e.ctx.imported[resolved] = true

	e.ctx.importing = append(e.ctx.importing, resolved)
	defer func() { e.ctx.importing = e.ctx.importing[:len(e.ctx.importing)-1] }()

	e.log.Debug("Importing", zap.String("path", resolved), zap.String("from", from))
	rules, err := e.expandImports(sheet.Block.Rules, env)
	if err != nil {
		return nil, err
	}
	if imp.Features != nil {
		return []model.Node{&model.Media{Base: imp.Base, Features: imp.Features, Block: &model.Block{Base: sheet.Block.Base, Rules: rules}}}, nil
	}
	return rules, nil
}

// cssImport evaluates import which stays in the output.
func (e *Evaluator) cssImport(imp *model.Import, env *Env) (model.Node, error) {
	path, err := e.Eval(imp.Path, env)
	if err != nil {
		return nil, err
	}
	features, err := e.Eval(imp.Features, env)
	if err != nil {
		return nil, err
	}
	return &model.Import{Base: imp.Base, Path: path, Features: features, Once: imp.Once}, nil
}
