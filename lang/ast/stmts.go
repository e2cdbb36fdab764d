package ast

import "github.com/seirea/clacc/lang/token"

// Annotation is the set of type annotations the grammar allows (spec §6.1:
// Name("int"), Name("tuple"), or, for a return annotation only,
// Constant(None)).
type Annotation int

const (
	// NoAnnotation marks a missing annotation: always an AnnotationError.
	NoAnnotation Annotation = iota
	IntAnnotation
	TupleAnnotation
	// NoneAnnotation is only valid as a FunctionDef.Returns value.
	NoneAnnotation
)

func (a Annotation) String() string {
	switch a {
	case IntAnnotation:
		return "int"
	case TupleAnnotation:
		return "tuple"
	case NoneAnnotation:
		return "None"
	default:
		return "<missing>"
	}
}

// Arg is one parameter of a FunctionDef: a name with a mandatory type
// annotation.
type Arg struct {
	NamePos    token.Pos
	Name       string
	Annotation Annotation
}

// FunctionDef represents a function definition, possibly nested inside
// another FunctionDef's body.
type FunctionDef struct {
	NamePos token.Pos
	Name    string
	Args    []*Arg
	Body    []Stmt
	Returns Annotation
}

func (n *FunctionDef) Pos() token.Pos { return n.NamePos }
func (n *FunctionDef) stmtNode()      {}
func (n *FunctionDef) Walk(v Visitor) {
	for _, s := range n.Body {
		Walk(v, s)
	}
}

// Return represents a return statement. Value is nil for a bare `return`
// (void).
type Return struct {
	ReturnPos token.Pos
	Value     Expr
}

func (n *Return) Pos() token.Pos { return n.ReturnPos }
func (n *Return) stmtNode()      {}
func (n *Return) Walk(v Visitor) {
	if n.Value != nil {
		Walk(v, n.Value)
	}
}

// Assign represents `target = value`. The grammar restricts Target to a
// single Name in Store context (spec §6.1); ast.Load rejects an Assign with
// more than one target or a non-name target, and the compiler reports a
// nil Target as a ShapeError.
type Assign struct {
	AssignPos token.Pos
	Target    *Name
	Value     Expr
}

func (n *Assign) Pos() token.Pos { return n.AssignPos }
func (n *Assign) stmtNode()      {}
func (n *Assign) Walk(v Visitor) {
	if n.Target != nil {
		Walk(v, n.Target)
	}
	Walk(v, n.Value)
}

// If represents a conditional statement. Both Body and Orelse are required
// and must be non-empty per spec §4.1.
type If struct {
	IfPos  token.Pos
	Test   Expr
	Body   []Stmt
	Orelse []Stmt
}

func (n *If) Pos() token.Pos { return n.IfPos }
func (n *If) stmtNode()      {}
func (n *If) Walk(v Visitor) {
	Walk(v, n.Test)
	for _, s := range n.Body {
		Walk(v, s)
	}
	for _, s := range n.Orelse {
		Walk(v, s)
	}
}

// ExprStmt represents an expression used as a statement (its value, if any,
// is left on the stack, not dropped, per the open question in spec §9(a)).
type ExprStmt struct {
	Value Expr
}

func (n *ExprStmt) Pos() token.Pos { return n.Value.Pos() }
func (n *ExprStmt) stmtNode()      {}
func (n *ExprStmt) Walk(v Visitor) { Walk(v, n.Value) }
