// Package clerr implements CLACC's compile-time error taxonomy (spec §7).
// Within a single function, errors are fail-fast: the first one aborts
// that function's compilation. Across a module's top-level functions,
// List lets a driver accumulate one error per failing function so a
// single bad definition doesn't hide errors in the ones after it; no
// output is ever written once any error is recorded.
package clerr

import (
	"errors"
	"fmt"
	"go/scanner"
	"go/token"
	"strings"

	clactoken "github.com/seirea/clacc/lang/token"
)

// Kind is the closed set of error categories spec §7 defines.
type Kind int

const (
	AnnotationError Kind = iota
	ArityError
	NameError
	ShapeError
	TypeError
	UnsupportedNode
	StackShapeError
)

func (k Kind) String() string {
	switch k {
	case AnnotationError:
		return "AnnotationError"
	case ArityError:
		return "ArityError"
	case NameError:
		return "NameError"
	case ShapeError:
		return "ShapeError"
	case TypeError:
		return "TypeError"
	case UnsupportedNode:
		return "UnsupportedNode"
	case StackShapeError:
		return "StackShapeError"
	default:
		return "Error"
	}
}

// Error is a single compile error with its source position.
type Error struct {
	Kind Kind
	Pos  clactoken.Pos
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
}

// New builds an *Error from a Kind, a position and a formatted message.
func New(kind Kind, pos clactoken.Pos, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// List accumulates Errors during a compilation. It is built directly on
// go/scanner.ErrorList for storage and position-sorting rather than a
// hand-rolled equivalent: once CLACC carries no lexer of its own (source
// parsing is out of scope, spec §1), reimplementing go/scanner.ErrorList's
// sort behavior would add a second copy of the same stdlib type for no
// new behavior. Err's final rendering is its own, see below.
type List struct {
	errs scanner.ErrorList
}

// Add records err at pos. The go/token.Position it builds carries only the
// line/col clerr itself tracks (no filename, no byte offset — CLACC has
// neither a file set nor a scanner).
func (l *List) Add(err *Error) {
	line, col := err.Pos.LineCol()
	l.errs.Add(token.Position{Line: line, Column: col}, fmt.Sprintf("%s: %s", err.Kind, err.Msg))
}

// Len reports how many errors have been recorded.
func (l *List) Len() int { return len(l.errs) }

// Err returns nil if no errors were recorded, one error if exactly one
// was, or otherwise a combined error listing every entry sorted by
// position — unlike scanner.ErrorList.Error(), which drops every message
// after the first ("... (and N more errors)"), a caller diagnosing
// several broken top-level functions at once needs to see all of them.
func (l *List) Err() error {
	switch len(l.errs) {
	case 0:
		return nil
	case 1:
		l.errs.Sort()
		return l.errs[0]
	}

	l.errs.Sort()
	var b strings.Builder
	for i, e := range l.errs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Error())
	}
	return errors.New(b.String())
}
