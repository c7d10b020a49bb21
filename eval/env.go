package eval

import "lessc/model"

// binding is a variable value. Bindings created for definitions are
// evaluated on first use in the environment of the defining frame.
type binding struct {
	value model.Node
	def   *model.Definition
	env   *Env
	busy  bool
}

// Scope is a single frame of lexical bindings. Frames are not changed after
// construction, extending scope creates a child frame, so any frame may be
// captured by closures and shared freely.
type Scope struct {
	parent *Scope
	rules  []model.Node
	vars   map[string]*binding

	// definitions evaluated in this frame, per call site chain
	memo map[memoKey]*binding
}

// memoKey identifies value of a definition looked up with a particular
// call site chain. Frames shared by closures are resolved against each
// caller separately.
type memoKey struct {
	def      *model.Definition
	fallback *Env
}

// Child creates frame holding rules on top of s.
func (s *Scope) Child(rules []model.Node) *Scope {
	return &Scope{parent: s, rules: rules}
}

// Bind creates frame holding already evaluated variables on top of s.
func (s *Scope) Bind(vars map[string]model.Node) *Scope {
	child := &Scope{parent: s, vars: make(map[string]*binding, len(vars))}
	for name, v := range vars {
		child.vars[name] = &binding{value: v}
	}
	return child
}

// find looks for variable in this frame only, explicit bindings first then
// the last definition.
func (s *Scope) find(name string, owner *Env) *binding {
	if b, ok := s.vars[name]; ok {
		return b
	}
	for i := len(s.rules) - 1; i >= 0; i-- {
		d, ok := s.rules[i].(*model.Definition)
		if !ok || d.Name != name {
			continue
		}
		key := memoKey{def: d, fallback: owner.fallback}
		if b, ok := s.memo[key]; ok {
			return b
		}
		if s.memo == nil {
			s.memo = make(map[memoKey]*binding)
		}
		b := &binding{def: d, env: &Env{scope: s, fallback: owner.fallback, selectors: owner.selectors}}
		s.memo[key] = b
		return b
	}
	return nil
}

// Env is evaluation environment: lexical scope chain, environment of the
// call site consulted when lexical lookup fails and selectors of the
// enclosing ruleset.
type Env struct {
	scope     *Scope
	fallback  *Env
	selectors model.Selectors
}

// NewEnv creates root environment.
func NewEnv() *Env {
	return &Env{scope: &Scope{}}
}

// Child returns environment with new frame holding rules.
func (env *Env) Child(rules []model.Node, selectors model.Selectors) *Env {
	return &Env{scope: env.scope.Child(rules), fallback: env.fallback, selectors: selectors}
}

// Bind returns environment with new frame holding variables.
func (env *Env) Bind(vars map[string]model.Node) *Env {
	return &Env{scope: env.scope.Bind(vars), fallback: env.fallback, selectors: env.selectors}
}

// lookup returns binding of the variable or nil. Lexical chain is searched
// first, then the chain of call sites.
func (env *Env) lookup(name string) *binding {
	for e := env; e != nil; e = e.fallback {
		for s := e.scope; s != nil; s = s.parent {
			if b := s.find(name, e); b != nil {
				return b
			}
		}
	}
	return nil
}

// withExports layers variables and mixins exported by mixin call right
// under the innermost frame, bindings of the frame itself still win.
func (env *Env) withExports(ex *exports) *Env {
	if ex.empty() {
		return env
	}
	layer := &Scope{parent: env.scope.parent, rules: ex.mixins, vars: ex.vars}
	return &Env{
		scope:     &Scope{parent: layer, rules: env.scope.rules, vars: env.scope.vars},
		fallback:  env.fallback,
		selectors: env.selectors,
	}
}

// exports are bindings a mixin body makes visible to the caller.
type exports struct {
	vars   map[string]*binding
	mixins []model.Node
}

func (ex *exports) empty() bool {
	return ex == nil || len(ex.vars) == 0 && len(ex.mixins) == 0
}

// merge adds bindings from other, existing bindings win.
func (ex *exports) merge(other *exports) {
	if other.empty() {
		return
	}
	if ex.vars == nil {
		ex.vars = make(map[string]*binding, len(other.vars))
	}
	for name, b := range other.vars {
		if _, ok := ex.vars[name]; !ok {
			ex.vars[name] = b
		}
	}
	ex.mixins = append(ex.mixins, other.mixins...)
}
