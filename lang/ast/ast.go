// Package ast defines the node types CLACC's compiler consumes. These types
// are a Go encoding of the external AST shape described by the
// specification's node-kind list (Module, FunctionDef, Return, Assign, If,
// Expr, Constant, Name, BinOp, Compare, Call, Subscript, Tuple) — the
// surface-syntax parser that produces them is an out-of-scope collaborator;
// see Load in load.go for the stand-in that reads this shape from JSON.
package ast

import "github.com/seirea/clacc/lang/token"

// Node represents any node in the AST.
type Node interface {
	// Pos reports the position of the node, used for error messages.
	Pos() token.Pos

	// Walk enters the node and its children in the Visitor pattern.
	Walk(v Visitor)
}

// Expr represents an expression in the AST.
type Expr interface {
	Node
	exprNode()
}

// Stmt represents a statement in the AST.
type Stmt interface {
	Node
	stmtNode()
}

// ExprContext distinguishes a Name used as a value from a Name used as an
// assignment target.
type ExprContext int

const (
	Load ExprContext = iota
	Store
)

// Module is the root of a compiled source file: a sequence of top-level
// function definitions (and, transiently, anything else the grammar in §6.1
// allows as a statement, though the compiler only ever hoists FunctionDefs
// out of it).
type Module struct {
	Body []Stmt
}

func (n *Module) Pos() token.Pos { return token.NoPos }
func (n *Module) Walk(v Visitor) {
	for _, s := range n.Body {
		Walk(v, s)
	}
}
