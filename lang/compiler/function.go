// Package compiler implements CLACC's core: FunctionCompiler, which walks
// one source FunctionDef and emits an ir.ClacFunc (spec §4.1), and
// ModuleDriver, which drives FunctionCompiler over a whole module (spec
// §4.2). Every lowering here is grounded on
// _examples/original_source/main.py's ClacCompile visitor, re-expressed as
// a Go type switch in place of Python's dynamic ast.NodeVisitor dispatch.
package compiler

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/seirea/clacc/lang/ast"
	"github.com/seirea/clacc/lang/clerr"
	"github.com/seirea/clacc/lang/ir"
	"github.com/seirea/clacc/lang/token"
	"github.com/seirea/clacc/lang/value"
)

// FunctionCompiler translates one source FunctionDef, or a synthetic If
// branch, into a ClacFunc. It owns three pieces of mutable state (spec
// §4.1): the opcode queue (fn.Code), the compile-time stack height model
// (stackSize), and the identifier name table (names). All three exist only
// for the duration of compiling this one function.
type FunctionCompiler struct {
	fn              *ir.ClacFunc
	parentStackSize int
	stackSize       int
	names           *nameTable

	// retKind is the target Kind Return statements normalize toward. For a
	// real (annotated) function it is fixed at construction from the
	// `returns` annotation. For a synthetic If branch it is unset
	// (retKnown == false) until the branch's first Return statement fixes
	// it to whatever that expression evaluates to — there is no
	// annotation to read it from.
	retKind  value.Kind
	retKnown bool

	// ifCount numbers this function's own synthetic If-branch children
	// (spec §9(d), __CLACC_IF_BLOCK_<n>_): a per-function counter, so two
	// `if`s in the same body never collide, and nested `if`s inside a
	// branch continue counting from their own fresh zero (collision
	// across parents can't happen because children are only ever looked
	// up within their own parent, spec §3.3).
	ifCount int
}

// kindWidth is the number of stack slots a Kind occupies, via
// value.Value.Width() (Pos is irrelevant to Width, so the zero Value of
// that Kind is enough).
func kindWidth(k value.Kind) int {
	return value.Value{Kind: k}.Width()
}

// kindFromWidth maps a net slot change (0, 1 or 2; compileExpr validates
// this before calling) back to the Kind it denotes, via value.FromWidth.
// The position argument to FromWidth is irrelevant to the Kind it
// returns, so 0 is passed.
func kindFromWidth(w int) value.Kind {
	return value.FromWidth(w, 0).Kind
}

func annotationWidth(a ast.Annotation) int {
	switch a {
	case ast.IntAnnotation:
		return 1
	case ast.TupleAnnotation:
		return 2
	default:
		return 0
	}
}

func annotationKind(a ast.Annotation) value.Kind {
	switch a {
	case ast.IntAnnotation:
		return value.KindInt
	case ast.TupleAnnotation:
		return value.KindTuple
	case ast.NoneAnnotation:
		return value.KindVoid
	default:
		return value.KindVoid
	}
}

// newRealFunctionCompiler builds the FunctionCompiler for a source-level
// FunctionDef (top-level or nested): argument and return annotations are
// mandatory (spec §4.1's type system paragraph), a self-reference is bound
// so the body can recurse, and each parameter gets a Value descriptor
// pointing at the slot(s) the caller is assumed to have already pushed.
func newRealFunctionCompiler(n *ast.FunctionDef, parentStackSize int, seed map[string]value.Value) (*FunctionCompiler, error) {
	if n.Returns == ast.NoAnnotation {
		return nil, clerr.New(clerr.AnnotationError, n.Pos(), "function %s is missing a return annotation", n.Name)
	}
	for _, a := range n.Args {
		if a.Annotation != ast.IntAnnotation && a.Annotation != ast.TupleAnnotation {
			return nil, clerr.New(clerr.AnnotationError, a.NamePos, "parameter %s is missing a type annotation", a.Name)
		}
	}

	argWidth := 0
	for _, a := range n.Args {
		argWidth += annotationWidth(a.Annotation)
	}
	retKind := annotationKind(n.Returns)

	fn := &ir.ClacFunc{Name: n.Name, ArgCount: argWidth, RetCount: kindWidth(retKind)}
	names := newNameTable(seed)
	names.bind(n.Name, value.Func(fn))

	cursor := parentStackSize
	for _, a := range n.Args {
		cursor += annotationWidth(a.Annotation)
		switch a.Annotation {
		case ast.IntAnnotation:
			names.bind(a.Name, value.Int(cursor))
		case ast.TupleAnnotation:
			names.bind(a.Name, value.Tuple(cursor-1))
		}
	}

	return &FunctionCompiler{
		fn:              fn,
		parentStackSize: parentStackSize,
		stackSize:       cursor,
		names:           names,
		retKind:         retKind,
		retKnown:        true,
	}, nil
}

// newSyntheticCompiler builds the FunctionCompiler for an If branch: no
// arguments, no self-reference (it has no source-level name to recurse
// through), and its RetCount is inferred from its own Return statement
// rather than an annotation (see retKnown).
func newSyntheticCompiler(name string, parentStackSize int, seed map[string]value.Value) *FunctionCompiler {
	return &FunctionCompiler{
		fn:              &ir.ClacFunc{Name: name, ArgCount: 0},
		parentStackSize: parentStackSize,
		stackSize:       parentStackSize,
		names:           newNameTable(seed),
	}
}

// CompileFunction compiles one top-level FunctionDef (parentStackSize 0)
// against a seed name table of previously-compiled globals and builtins.
// Used directly by ModuleDriver.
func CompileFunction(n *ast.FunctionDef, seed map[string]value.Value) (*ir.ClacFunc, error) {
	fc, err := newRealFunctionCompiler(n, 0, seed)
	if err != nil {
		return nil, err
	}
	if err := fc.compileBlock(n.Body); err != nil {
		return nil, err
	}
	return fc.fn, nil
}

func (fc *FunctionCompiler) emit(op ir.OpCode) {
	fc.fn.Code = append(fc.fn.Code, op)
	fc.stackSize += op.StackDelta()
}

// appendRaw appends op without the generic auto-delta bookkeeping emit
// does. Only compileIf uses this, because its Call(body)/Call(orelse) pair
// must not both contribute to the compile-time model — only one of them
// ever runs (spec §4.1's If lowering: "the parent's stack_size is adjusted
// once, not twice, for the shared result").
func (fc *FunctionCompiler) appendRaw(op ir.OpCode) {
	fc.fn.Code = append(fc.fn.Code, op)
}

func (fc *FunctionCompiler) pickOffset(pos int) int {
	return fc.stackSize - pos + 1
}

func (fc *FunctionCompiler) compileBlock(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := fc.compileStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (fc *FunctionCompiler) compileStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.Assign:
		return fc.compileAssign(n)
	case *ast.Return:
		return fc.compileReturn(n)
	case *ast.If:
		return fc.compileIf(n)
	case *ast.ExprStmt:
		// Open question (a): a side-effectful expression statement that
		// leaves slots on the stack is permitted, not normalized away.
		_, err := fc.compileExpr(n.Value)
		return err
	case *ast.FunctionDef:
		return fc.compileNestedFunctionDef(n)
	default:
		return clerr.New(clerr.UnsupportedNode, s.Pos(), "unsupported statement %T", s)
	}
}

func (fc *FunctionCompiler) compileAssign(n *ast.Assign) error {
	if n.Target == nil {
		return clerr.New(clerr.ShapeError, n.Pos(), "assignment target must be a single name")
	}
	k, err := fc.compileExpr(n.Value)
	if err != nil {
		return err
	}
	switch k {
	case value.KindInt:
		fc.names.bind(n.Target.Id, value.Int(fc.stackSize))
	case value.KindTuple:
		fc.names.bind(n.Target.Id, value.Tuple(fc.stackSize-1))
	default:
		return clerr.New(clerr.ShapeError, n.Pos(), "cannot assign a %s-valued expression to %s", k, n.Target.Id)
	}
	return nil
}

// compileReturn evaluates the return expression, then collapses the
// stack down to the target width (spec §4.1's Return lowering). For a
// real function the target is the `returns` annotation, fixed before the
// first Return is seen; for a synthetic If branch the first Return fixes
// the target to whatever it evaluates, and later Returns in the same
// branch are held to it.
func (fc *FunctionCompiler) compileReturn(n *ast.Return) error {
	var k value.Kind
	if n.Value != nil {
		var err error
		k, err = fc.compileExpr(n.Value)
		if err != nil {
			return err
		}
	} else {
		k = value.KindVoid
	}

	if !fc.retKnown {
		fc.retKind = k
		fc.retKnown = true
		fc.fn.RetCount = kindWidth(k)
	}

	switch fc.retKind {
	case value.KindVoid:
		for fc.stackSize > fc.parentStackSize {
			fc.emit(ir.Drop())
		}
	case value.KindInt:
		for fc.stackSize > fc.parentStackSize+1 {
			fc.emit(ir.Swap())
			fc.emit(ir.Drop())
		}
	case value.KindTuple:
		for fc.stackSize > fc.parentStackSize+2 {
			fc.emit(ir.Rot())
			fc.emit(ir.Drop())
		}
	}
	return nil
}

// compileIf lowers a conditional into two synthetic child functions and
// the fixed If/Call/Push(1)/Skip/Call opcode sequence (spec §4.1).
func (fc *FunctionCompiler) compileIf(n *ast.If) error {
	if len(n.Body) == 0 || len(n.Orelse) == 0 {
		return clerr.New(clerr.ShapeError, n.Pos(), "if must have a non-empty body and orelse")
	}

	testKind, err := fc.compileExpr(n.Test)
	if err != nil {
		return err
	}
	if testKind != value.KindInt {
		return clerr.New(clerr.TypeError, n.Test.Pos(), "if test must be int, got %s", testKind)
	}
	fc.emit(ir.If())

	seed := fc.names.snapshot()
	baseline := fc.stackSize

	bodyName := fmt.Sprintf("__CLACC_IF_BLOCK_%d_", fc.ifCount)
	fc.ifCount++
	orelseName := fmt.Sprintf("__CLACC_IF_BLOCK_%d_", fc.ifCount)
	fc.ifCount++

	bodyChild := newSyntheticCompiler(bodyName, baseline, seed)
	if err := bodyChild.compileBlock(n.Body); err != nil {
		return err
	}
	orelseChild := newSyntheticCompiler(orelseName, baseline, seed)
	if err := orelseChild.compileBlock(n.Orelse); err != nil {
		return err
	}

	if bodyChild.fn.RetCount != orelseChild.fn.RetCount {
		return clerr.New(clerr.ArityError, n.Pos(), "if branches disagree on result width: %d vs %d", bodyChild.fn.RetCount, orelseChild.fn.RetCount)
	}

	if err := addChild(fc.fn, bodyChild.fn, n.Pos()); err != nil {
		return err
	}
	if err := addChild(fc.fn, orelseChild.fn, n.Pos()); err != nil {
		return err
	}

	ret := bodyChild.fn.RetCount
	fc.appendRaw(ir.CallOp(bodyChild.fn))
	fc.appendRaw(ir.Push(1))
	fc.appendRaw(ir.Skip())
	fc.appendRaw(ir.CallOp(orelseChild.fn))
	fc.stackSize = baseline + ret

	// Both branches returned, so collapse this function's stack to the
	// branch result width, exactly as compileReturn does.
	if !fc.retKnown {
		fc.retKind = kindFromWidth(ret)
		fc.retKnown = true
		fc.fn.RetCount = ret
	}
	for fc.stackSize > fc.parentStackSize+ret {
		if ret == 2 {
			fc.emit(ir.Rot())
		} else if ret == 1 {
			fc.emit(ir.Swap())
		}
		fc.emit(ir.Drop())
	}
	return nil
}

func (fc *FunctionCompiler) compileNestedFunctionDef(n *ast.FunctionDef) error {
	seed := fc.names.snapshot()
	child, err := newRealFunctionCompiler(n, fc.stackSize, seed)
	if err != nil {
		return err
	}
	if err := child.compileBlock(n.Body); err != nil {
		return err
	}
	if err := addChild(fc.fn, child.fn, n.Pos()); err != nil {
		return err
	}
	fc.names.bind(n.Name, value.Func(child.fn))
	return nil
}

// addChild enforces spec §3.3's "children names must be unique within a
// parent" invariant. ir.ClacFunc itself carries no such check (it's pure
// data, DESIGN.md); slices.ContainsFunc does the scan here, where a source
// position is available to report.
func addChild(parent, child *ir.ClacFunc, pos token.Pos) error {
	if slices.ContainsFunc(parent.Children, func(c *ir.ClacFunc) bool { return c.Name == child.Name }) {
		return clerr.New(clerr.ShapeError, pos, "duplicate function name %q in %q", child.Name, parent.Name)
	}
	parent.AddChild(child)
	return nil
}

// compileExpr evaluates e, emitting opcodes, and returns the Kind its net
// stack-slot change denotes (spec §4.1's eval_expr). The Kind is always
// derived generically from the delta, never hand-reported by the
// node-specific case in emitExpr, so invariant 1 (stack_size tracks the
// sum of emitted deltas) and the Kind inference stay provably consistent.
func (fc *FunctionCompiler) compileExpr(e ast.Expr) (value.Kind, error) {
	before := fc.stackSize
	if err := fc.emitExpr(e); err != nil {
		return value.KindVoid, err
	}
	delta := fc.stackSize - before
	if delta < 0 || delta > 2 {
		return value.KindVoid, clerr.New(clerr.StackShapeError, e.Pos(), "expression produced an invalid %d-slot stack delta", delta)
	}
	return kindFromWidth(delta), nil
}

func (fc *FunctionCompiler) emitExpr(e ast.Expr) error {
	switch n := e.(type) {
	case *ast.Constant:
		fc.emit(ir.Push(n.Value))
		return nil
	case *ast.Name:
		return fc.emitNameLoad(n)
	case *ast.BinOp:
		return fc.emitBinOp(n)
	case *ast.Compare:
		return fc.emitCompare(n)
	case *ast.Call:
		return fc.emitCall(n)
	case *ast.Subscript:
		return fc.emitSubscript(n)
	case *ast.TupleExpr:
		return fc.emitTuple(n)
	default:
		return clerr.New(clerr.UnsupportedNode, e.Pos(), "unsupported expression %T", e)
	}
}

func (fc *FunctionCompiler) emitNameLoad(n *ast.Name) error {
	v, ok := fc.names.lookup(n.Id)
	if !ok {
		return clerr.New(clerr.NameError, n.Pos(), "undefined name: %s", n.Id)
	}
	switch v.Kind {
	case value.KindInt:
		fc.emit(ir.Push(fc.pickOffset(v.Pos)))
		fc.emit(ir.Pick())
	case value.KindTuple:
		// Deeper element (index 0) first; the offset for the shallower
		// element is computed after the first Pick has already grown the
		// stack, per spec §4.1.
		fc.emit(ir.Push(fc.pickOffset(v.Pos)))
		fc.emit(ir.Pick())
		fc.emit(ir.Push(fc.pickOffset(v.Pos+1)))
		fc.emit(ir.Pick())
	case value.KindFunc:
		// A bare name reference to a function has no runtime value.
	default:
		return clerr.New(clerr.ShapeError, n.Pos(), "%s has no value", n.Id)
	}
	return nil
}

func (fc *FunctionCompiler) emitBinOp(n *ast.BinOp) error {
	lk, err := fc.compileExpr(n.Left)
	if err != nil {
		return err
	}
	if lk != value.KindInt {
		return clerr.New(clerr.TypeError, n.Left.Pos(), "left operand of %q must be int, got %s", n.Op.Token(), lk)
	}
	rk, err := fc.compileExpr(n.Right)
	if err != nil {
		return err
	}
	if rk != value.KindInt {
		return clerr.New(clerr.TypeError, n.Right.Pos(), "right operand of %q must be int, got %s", n.Op.Token(), rk)
	}
	fc.emit(ir.BinOp(n.Op.Token()))
	return nil
}

func (fc *FunctionCompiler) emitCompare(n *ast.Compare) error {
	if len(n.Ops) != 1 || len(n.Comparators) != 1 {
		return clerr.New(clerr.ShapeError, n.Pos(), "compare must have exactly one operator and one comparator")
	}
	lk, err := fc.compileExpr(n.Left)
	if err != nil {
		return err
	}
	if lk != value.KindInt {
		return clerr.New(clerr.TypeError, n.Left.Pos(), "left side of comparison must be int, got %s", lk)
	}
	rk, err := fc.compileExpr(n.Comparators[0])
	if err != nil {
		return err
	}
	if rk != value.KindInt {
		return clerr.New(clerr.TypeError, n.Comparators[0].Pos(), "right side of comparison must be int, got %s", rk)
	}
	fc.emit(ir.BinOp(n.Ops[0].Token()))
	return nil
}

func (fc *FunctionCompiler) emitCall(n *ast.Call) error {
	v, ok := fc.names.lookup(n.Func.Id)
	if !ok {
		return clerr.New(clerr.NameError, n.Func.Pos(), "undefined name: %s", n.Func.Id)
	}
	if v.Kind != value.KindFunc {
		return clerr.New(clerr.TypeError, n.Func.Pos(), "%s is not callable", n.Func.Id)
	}
	callee := v.Func

	width := 0
	for _, a := range n.Args {
		k, err := fc.compileExpr(a)
		if err != nil {
			return err
		}
		width += kindWidth(k)
	}
	if width != callee.ArgCount {
		return clerr.New(clerr.ArityError, n.Pos(), "call to %s: expected %d argument slot(s), got %d", n.Func.Id, callee.ArgCount, width)
	}
	fc.emit(ir.CallOp(callee))
	return nil
}

// emitSubscript lowers t[i], assuming the tuple occupies the top two
// slots and the index is then pushed on top (spec §4.1).
func (fc *FunctionCompiler) emitSubscript(n *ast.Subscript) error {
	if n.Ctx != ast.Load {
		return clerr.New(clerr.ShapeError, n.Pos(), "subscript cannot be an assignment target")
	}
	baseKind, err := fc.compileExpr(n.Value)
	if err != nil {
		return err
	}
	if baseKind != value.KindTuple {
		return clerr.New(clerr.TypeError, n.Value.Pos(), "subscript base must be tuple, got %s", baseKind)
	}

	// Open question (c): a literal index outside {0,1} can be proven bad
	// at compile time without general range analysis; reject it here.
	if c, ok := n.Slice.(*ast.Constant); ok && c.Value != 0 && c.Value != 1 {
		return clerr.New(clerr.TypeError, c.Pos(), "tuple index out of range: %d", c.Value)
	}

	idxKind, err := fc.compileExpr(n.Slice)
	if err != nil {
		return err
	}
	if idxKind != value.KindInt {
		return clerr.New(clerr.TypeError, n.Slice.Pos(), "subscript index must be int, got %s", idxKind)
	}

	fc.emit(ir.Push(2))
	fc.emit(ir.BinOp("-"))
	fc.emit(ir.Pick())
	fc.emit(ir.Rot())
	fc.emit(ir.Rot())
	fc.emit(ir.Drop())
	fc.emit(ir.Drop())
	return nil
}

func (fc *FunctionCompiler) emitTuple(n *ast.TupleExpr) error {
	if len(n.Elts) != 2 {
		return clerr.New(clerr.ShapeError, n.Pos(), "tuple literal must have exactly two elements, got %d", len(n.Elts))
	}
	for _, elt := range n.Elts {
		k, err := fc.compileExpr(elt)
		if err != nil {
			return err
		}
		if k != value.KindInt {
			return clerr.New(clerr.TypeError, elt.Pos(), "tuple element must be int, got %s", k)
		}
	}
	return nil
}
