// Package ir defines CLACC's intermediate representation: the OpCode
// tagged variants (spec §3.1) and the ClacFunc tree they're assembled into
// (spec §3.3). Both are pure data — created during compilation and never
// mutated afterwards (spec §3.4).
package ir

import "fmt"

// Op is the tag of an OpCode variant.
type Op int

const (
	OpPush Op = iota
	OpBinOp
	OpPick
	OpSwap
	OpRot
	OpDrop
	OpIf
	OpSkip
	OpCall
)

var opNames = [...]string{
	OpPush:  "push",
	OpBinOp: "binop",
	OpPick:  "pick",
	OpSwap:  "swap",
	OpRot:   "rot",
	OpDrop:  "drop",
	OpIf:    "if",
	OpSkip:  "skip",
	OpCall:  "call",
}

func (o Op) String() string {
	if int(o) >= 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// OpCode is one instruction of the assembled word stream. Exactly one of
// the payload fields is meaningful, selected by Op:
//
//	OpPush   -> Value
//	OpBinOp  -> Operator
//	OpCall   -> Call
//	all others -> no payload
type OpCode struct {
	Op       Op
	Value    int    // OpPush
	Operator string // OpBinOp: one of "+ - * % / ** <"
	Call     *ClacFunc
}

// Push returns the OpCode that pushes the literal n.
func Push(n int) OpCode { return OpCode{Op: OpPush, Value: n} }

// BinOp returns the OpCode for the binary operator op (one of
// "+ - * % / ** <").
func BinOp(op string) OpCode { return OpCode{Op: OpBinOp, Operator: op} }

// Pick, Swap, Rot, Drop, If and Skip are the CLAC stack primitives with no
// payload.
func Pick() OpCode { return OpCode{Op: OpPick} }
func Swap() OpCode { return OpCode{Op: OpSwap} }
func Rot() OpCode  { return OpCode{Op: OpRot} }
func Drop() OpCode { return OpCode{Op: OpDrop} }
func If() OpCode   { return OpCode{Op: OpIf} }
func Skip() OpCode { return OpCode{Op: OpSkip} }

// CallOp returns the OpCode that invokes fn.
func CallOp(fn *ClacFunc) OpCode { return OpCode{Op: OpCall, Call: fn} }

// StackDelta is the net change in stack height this opcode produces. It is
// a pure function of the variant and its static payload — never of runtime
// data (spec §3.1's invariant).
func (o OpCode) StackDelta() int {
	switch o.Op {
	case OpPush:
		return 1
	case OpBinOp:
		return -1
	case OpPick, OpSwap, OpRot:
		return 0
	case OpDrop, OpIf, OpSkip:
		return -1
	case OpCall:
		return o.Call.RetCount - o.Call.ArgCount
	default:
		panic(fmt.Sprintf("ir: unknown opcode %v", o.Op))
	}
}

// Assemble returns the CLAC token(s) this opcode emits, space-separated if
// more than one (only OpPush ever emits a literal alongside nothing else;
// every variant here emits exactly one token, kept as a single method for
// symmetry with StackDelta).
func (o OpCode) Assemble() string {
	switch o.Op {
	case OpPush:
		return fmt.Sprintf("%d", o.Value)
	case OpBinOp:
		return o.Operator
	case OpPick:
		return "pick"
	case OpSwap:
		return "swap"
	case OpRot:
		return "rot"
	case OpDrop:
		return "drop"
	case OpIf:
		return "if"
	case OpSkip:
		return "skip"
	case OpCall:
		return o.Call.Name
	default:
		panic(fmt.Sprintf("ir: unknown opcode %v", o.Op))
	}
}
