package model

import (
	"fmt"
	"strings"
)

// ErrorKind classifies compilation failures.
type ErrorKind int

const (
	SyntaxError ErrorKind = iota + 1
	RecursionLimitExceeded
	UnmatchedGuard
	SelectorReparseFailure
	UndefinedReference
	FunctionEvaluationError
	InvalidOperation
	ImportError
)

func (k ErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "syntax error"
	case RecursionLimitExceeded:
		return "recursion limit exceeded"
	case UnmatchedGuard:
		return "unmatched guard"
	case SelectorReparseFailure:
		return "selector reparse failure"
	case UndefinedReference:
		return "undefined reference"
	case FunctionEvaluationError:
		return "function evaluation error"
	case InvalidOperation:
		return "invalid operation"
	case ImportError:
		return "import error"
	}
	return "unknown error"
}

// Error is returned by parser and evaluator. Chain lists mixin calls active
// when error happened, outermost first.
type Error struct {
	Kind  ErrorKind
	Pos   Pos
	Path  string
	Msg   string
	Chain []string
	Err   error
}

// Sentinels to be used with errors.Is.
var (
	ErrSyntax           = &Error{Kind: SyntaxError}
	ErrRecursionLimit   = &Error{Kind: RecursionLimitExceeded}
	ErrUnmatchedGuard   = &Error{Kind: UnmatchedGuard}
	ErrSelectorReparse  = &Error{Kind: SelectorReparseFailure}
	ErrUndefined        = &Error{Kind: UndefinedReference}
	ErrFunction         = &Error{Kind: FunctionEvaluationError}
	ErrInvalidOperation = &Error{Kind: InvalidOperation}
	ErrImport           = &Error{Kind: ImportError}
)

// Errorf creates error of the given kind at position.
func Errorf(kind ErrorKind, pos Pos, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Path != "" {
		sb.WriteString(e.Path)
		sb.WriteByte(':')
	}
	if e.Pos.IsValid() {
		sb.WriteString(e.Pos.String())
		sb.WriteByte(':')
	}
	if sb.Len() > 0 {
		sb.WriteByte(' ')
	}
	sb.WriteString(e.Kind.String())
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	if len(e.Chain) > 0 {
		sb.WriteString(" (call chain: ")
		sb.WriteString(strings.Join(e.Chain, " -> "))
		sb.WriteByte(')')
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
