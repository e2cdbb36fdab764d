package ast

// CountFunctionDefs reports how many FunctionDef nodes mod contains,
// counting top-level and nested definitions alike. The two synthetic
// child functions the compiler builds for each If are not FunctionDef
// nodes and are not counted. It is the one production call site for
// Walk/Visitor: the compiler itself dispatches node-by-node with a type
// switch (spec's per-node lowering needs each node's concrete fields, not
// just its existence), but a plain count is exactly the kind of
// whole-tree-but-shallow query Walk's enter/exit traversal is suited for.
func CountFunctionDefs(mod *Module) int {
	count := 0
	var v VisitorFunc
	v = func(n Node, dir VisitDirection) Visitor {
		if dir != VisitEnter {
			return v
		}
		if _, ok := n.(*FunctionDef); ok {
			count++
		}
		return v
	}
	Walk(v, mod)
	return count
}
