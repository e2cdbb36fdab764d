// Package assembler serializes a compiled ClacFunc tree into CLAC text
// (spec §4.3): a post-order walk emits every child definition before its
// parent, so a Call's target always appears earlier in the output than
// the call site, and the whole program is prefixed with a fixed preamble.
package assembler

import (
	"strings"

	"github.com/seirea/clacc/lang/ir"
)

// Preamble is prepended to every assembled program. Carried verbatim from
// _examples/original_source/main.py's `preamble` string: `dup` has no
// dedicated opcode (spec §3.1's table has none), so the compiler never
// emits it directly, but CLAC programs commonly need it and it costs
// nothing to define once up front, and `noop` gives callers of this
// package a canonical zero-effect word.
const Preamble = ": dup 1 pick ;\n: noop ;\n"

// Assemble flattens fns (one entry per top-level function CLACC compiled)
// into a single CLAC text blob: the preamble, then every function's
// definition in post-order, top-level functions in the order given.
func Assemble(fns []*ir.ClacFunc) string {
	var b strings.Builder
	b.WriteString(Preamble)
	seen := make(map[*ir.ClacFunc]bool)
	for _, fn := range fns {
		assembleFunc(&b, fn, seen)
	}
	return b.String()
}

// assembleFunc emits fn's children (recursively, post-order) before fn
// itself, skipping anything already emitted — a ClacFunc referenced as a
// Call target from more than one call site must only be defined once.
func assembleFunc(b *strings.Builder, fn *ir.ClacFunc, seen map[*ir.ClacFunc]bool) {
	if seen[fn] {
		return
	}
	seen[fn] = true

	for _, child := range fn.Children {
		assembleFunc(b, child, seen)
	}

	b.WriteString(": ")
	b.WriteString(fn.Name)
	b.WriteString(" ")
	for _, op := range fn.Code {
		b.WriteString(op.Assemble())
		b.WriteString(" ")
	}
	b.WriteString(";\n")
}
