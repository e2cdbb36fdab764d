package ast

import "github.com/seirea/clacc/lang/token"

// BinOpKind is the set of binary arithmetic operators the grammar allows
// (spec §6.1: Add, Sub, Mult, Mod, FloorDiv, Pow).
type BinOpKind int

const (
	Add BinOpKind = iota
	Sub
	Mult
	Mod
	FloorDiv
	Pow
)

// Token returns the CLAC operator token this operator lowers to.
func (k BinOpKind) Token() string {
	switch k {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mult:
		return "*"
	case Mod:
		return "%"
	case FloorDiv:
		return "/"
	case Pow:
		return "**"
	default:
		return "?"
	}
}

func (k BinOpKind) String() string {
	names := [...]string{"Add", "Sub", "Mult", "Mod", "FloorDiv", "Pow"}
	if int(k) < len(names) {
		return names[k]
	}
	return "BinOpKind(?)"
}

// CompareOp is the set of comparison operators the grammar allows. Only Lt
// is defined (spec §6.1); any other value is rejected by ast.Load before a
// Compare node is ever built.
type CompareOp int

const (
	Lt CompareOp = iota
)

func (CompareOp) Token() string { return "<" }

// Constant is an integer literal. Non-integer constants (spec only allows
// int) are rejected with a TypeError by ast.Load before a Constant is
// built, so Value always holds the literal exactly.
type Constant struct {
	ConstPos token.Pos
	Value    int
}

func (n *Constant) Pos() token.Pos { return n.ConstPos }
func (n *Constant) exprNode()      {}
func (n *Constant) Walk(v Visitor) {}

// Name is an identifier, either loaded (read) or stored (assignment
// target).
type Name struct {
	NamePos token.Pos
	Id      string
	Ctx     ExprContext
}

func (n *Name) Pos() token.Pos { return n.NamePos }
func (n *Name) exprNode()      {}
func (n *Name) Walk(v Visitor) {}

// BinOp represents a binary arithmetic expression.
type BinOp struct {
	OpPos token.Pos
	Left  Expr
	Op    BinOpKind
	Right Expr
}

func (n *BinOp) Pos() token.Pos { return n.OpPos }
func (n *BinOp) exprNode()      {}
func (n *BinOp) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}

// Compare represents a comparison expression. The grammar only allows
// exactly one operator and one comparator (spec §6.1); Ops/Comparators are
// slices so a malformed AST (more than one of either) surfaces as a
// ShapeError rather than being silently truncated.
type Compare struct {
	ComparePos  token.Pos
	Left        Expr
	Ops         []CompareOp
	Comparators []Expr
}

func (n *Compare) Pos() token.Pos { return n.ComparePos }
func (n *Compare) exprNode()      {}
func (n *Compare) Walk(v Visitor) {
	Walk(v, n.Left)
	for _, c := range n.Comparators {
		Walk(v, c)
	}
}

// Call represents a function call. Func is restricted to a bare Name by the
// grammar (spec §6.1).
type Call struct {
	CallPos token.Pos
	Func    *Name
	Args    []Expr
}

func (n *Call) Pos() token.Pos { return n.CallPos }
func (n *Call) exprNode()      {}
func (n *Call) Walk(v Visitor) {
	Walk(v, n.Func)
	for _, a := range n.Args {
		Walk(v, a)
	}
}

// Subscript represents `value[slice]`, load context only (spec §6.1: Store
// context is a ShapeError).
type Subscript struct {
	SubPos token.Pos
	Value  Expr
	Slice  Expr
	Ctx    ExprContext
}

func (n *Subscript) Pos() token.Pos { return n.SubPos }
func (n *Subscript) exprNode()      {}
func (n *Subscript) Walk(v Visitor) {
	Walk(v, n.Value)
	Walk(v, n.Slice)
}

// TupleExpr represents a two-element tuple literal `(a, b)`. The grammar
// requires exactly two elements (spec §6.1); a different count is a
// ShapeError.
type TupleExpr struct {
	TuplePos token.Pos
	Elts     []Expr
}

func (n *TupleExpr) Pos() token.Pos { return n.TuplePos }
func (n *TupleExpr) exprNode()      {}
func (n *TupleExpr) Walk(v Visitor) {
	for _, e := range n.Elts {
		Walk(v, e)
	}
}
