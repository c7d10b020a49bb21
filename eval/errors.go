package eval

import (
	"errors"

	"lessc/model"
)

// Error is a compilation failure or warning with position and mixin call
// chain.
type Error = model.Error

// Sentinels for errors.Is, errors of the same kind match.
var (
	ErrRecursionLimit   = model.ErrRecursionLimit
	ErrUnmatchedGuard   = model.ErrUnmatchedGuard
	ErrSelectorReparse  = model.ErrSelectorReparse
	ErrUndefined        = model.ErrUndefined
	ErrFunction         = model.ErrFunction
	ErrInvalidOperation = model.ErrInvalidOperation
	ErrImport           = model.ErrImport

	// ErrVariableCycle is wrapped into UndefinedReference errors raised for
	// variables defined in terms of themselves.
	ErrVariableCycle = errors.New("variable refers to itself")
)

// fail creates error at node position with current file and call chain.
func (e *Evaluator) fail(kind model.ErrorKind, n model.Node, format string, args ...any) *Error {
	var pos model.Pos
	if n != nil {
		pos = n.Position()
	}
	err := model.Errorf(kind, pos, format, args...)
	err.Path = e.ctx.path
	if len(e.ctx.chain) > 0 {
		err.Chain = append([]string(nil), e.ctx.chain...)
	}
	return err
}

// wrap converts foreign error into compilation error. Errors already
// carrying kind only get position when they have none.
func (e *Evaluator) wrap(kind model.ErrorKind, n model.Node, err error, format string, args ...any) error {
	var me *Error
	if errors.As(err, &me) {
		if !me.Pos.IsValid() && n != nil {
			located := e.fail(me.Kind, n, "%s", me.Msg)
			located.Err = me.Err
			return located
		}
		return err
	}
	res := e.fail(kind, n, format, args...)
	res.Err = err
	return res
}
