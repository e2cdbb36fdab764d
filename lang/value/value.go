// Package value defines the compile-time descriptors of what a source name
// currently denotes (spec §3.2). These are pure data, created and discarded
// as the compiler's name table is updated; they never describe runtime
// data, only the compiler's model of where runtime data will live.
package value

import "github.com/seirea/clacc/lang/ir"

// Kind distinguishes the four shapes a Value can take.
type Kind int

const (
	// KindVoid denotes no stack slot; only used as a type indicator for
	// expression results (e.g. the result of a void function call).
	KindVoid Kind = iota
	// KindInt denotes one stack slot at absolute depth Pos.
	KindInt
	// KindTuple denotes two contiguous stack slots at depths Pos and Pos+1,
	// element 0 at the deeper slot.
	KindTuple
	// KindFunc denotes a callable: a reference to a compiled (or
	// in-progress, for the self-reference case) ClacFunc. It has no runtime
	// stack presence.
	KindFunc
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindInt:
		return "int"
	case KindTuple:
		return "tuple"
	case KindFunc:
		return "func"
	default:
		return "Kind(?)"
	}
}

// Value is the tagged union of compile-time value descriptors (spec §3.2).
// The zero Value is Void.
type Value struct {
	Kind Kind

	// Pos is the absolute stack position (from the bottom, 1-based) of the
	// value's first slot. Meaningful only for KindInt and KindTuple.
	Pos int

	// Func is the referenced function. Meaningful only for KindFunc.
	Func *ir.ClacFunc
}

// Int returns a Value describing a single integer slot at absolute
// position pos.
func Int(pos int) Value { return Value{Kind: KindInt, Pos: pos} }

// Tuple returns a Value describing a two-slot tuple whose deeper slot sits
// at absolute position pos.
func Tuple(pos int) Value { return Value{Kind: KindTuple, Pos: pos} }

// Func returns a Value describing a callable bound to fn.
func Func(fn *ir.ClacFunc) Value { return Value{Kind: KindFunc, Func: fn} }

// Void is the Value describing no stack slot.
var Void = Value{Kind: KindVoid}

// Width is the number of stack slots this Value occupies (0 for Void and
// Func, 1 for Int, 2 for Tuple).
func (v Value) Width() int {
	switch v.Kind {
	case KindInt:
		return 1
	case KindTuple:
		return 2
	default:
		return 0
	}
}

// FromWidth maps a net slot change (spec §4.1's eval_expr: Δ ∈ {0,1,2}) at
// absolute position pos to the Value it denotes. Width must be 0, 1 or 2;
// callers are expected to have already validated that (a different width is
// a StackShapeError, reported by the caller with source position context).
func FromWidth(width, pos int) Value {
	switch width {
	case 0:
		return Void
	case 1:
		return Int(pos)
	case 2:
		return Tuple(pos)
	default:
		panic("value: width must be 0, 1 or 2")
	}
}
