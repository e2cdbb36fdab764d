package compiler

import (
	"github.com/dolthub/swiss"

	"github.com/seirea/clacc/lang/value"
)

// nameTable is the per-FunctionCompiler symbol table: identifier to
// compile-time Value (spec §4.1's `names`). It is backed by a swiss.Map,
// the same SwissTable implementation the teacher uses for its runtime map
// value, repurposed here for the hot identifier-lookup path a compiler
// hits on every Name node; snapshot uses swiss.Map's own Iter to hand a
// nested FunctionCompiler (a synthetic If branch or a nested FunctionDef)
// everything bound so far (spec §4.1, §9 "Name tables across nested
// functions").
type nameTable struct {
	fast *swiss.Map[string, value.Value]
}

func newNameTable(seed map[string]value.Value) *nameTable {
	nt := &nameTable{
		fast: swiss.NewMap[string, value.Value](uint32(len(seed) + 1)),
	}
	for k, v := range seed {
		nt.fast.Put(k, v)
	}
	return nt
}

func (nt *nameTable) bind(name string, v value.Value) {
	nt.fast.Put(name, v)
}

func (nt *nameTable) lookup(name string) (value.Value, bool) {
	return nt.fast.Get(name)
}

// snapshot returns a copy of every binding made so far, suitable as the
// seed for a nested FunctionCompiler (spec §4.1, §9 "Name tables across
// nested functions").
func (nt *nameTable) snapshot() map[string]value.Value {
	out := make(map[string]value.Value, nt.fast.Count())
	nt.fast.Iter(func(k string, v value.Value) bool {
		out[k] = v
		return false
	})
	return out
}
