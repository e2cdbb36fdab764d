package ir

// ClacFunc is a compiled function (spec §3.3): its name, the number of
// argument slots its caller must have pushed, the number of result slots it
// leaves behind, its opcode sequence, and any nested functions it hoisted
// out of its body (synthetic If branches, and nested FunctionDefs).
//
// A ClacFunc is built incrementally by a compiler.FunctionCompiler and,
// once complete, is owned by its parent and never mutated again (spec
// §3.4). Call holds a direct pointer to its target rather than a name
// lookup: by the time a Call opcode is emitted, the target is either a
// sibling already fully compiled, a global function already compiled, or
// the enclosing function itself (the self-reference case for recursion),
// so there is never a forward reference to resolve and no cyclic ownership
// to model — only Call *references* a ClacFunc outside the owning tree
// edge, it never holds one.
type ClacFunc struct {
	Name     string
	ArgCount int
	RetCount int
	Code     []OpCode
	Children []*ClacFunc
}

// AddChild appends child to Children. Children names must be unique within
// a parent (spec §3.3); callers are expected to have already checked this
// (compiler.FunctionCompiler does) since the error it produces needs source
// position context this package doesn't have.
func (f *ClacFunc) AddChild(child *ClacFunc) {
	f.Children = append(f.Children, child)
}
