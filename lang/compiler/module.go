package compiler

import (
	"sort"

	"golang.org/x/exp/maps"

	"github.com/seirea/clacc/lang/ast"
	"github.com/seirea/clacc/lang/clerr"
	"github.com/seirea/clacc/lang/ir"
	"github.com/seirea/clacc/lang/value"
)

// ModuleDriver walks a Module's top-level statements, compiling each
// FunctionDef with a name table seeded by built-ins and any previously
// compiled top-level function (spec §4.2), so later definitions can call
// earlier ones.
type ModuleDriver struct {
	globals map[string]value.Value
}

// NewModuleDriver seeds the global name table with builtins (at minimum
// print, spec §4.2 / SPEC_FULL.md §10.6). builtins maps a name to its
// (arg_count, ret_count) pair.
func NewModuleDriver(builtins map[string][2]int) *ModuleDriver {
	globals := make(map[string]value.Value, len(builtins))
	for name, spec := range builtins {
		globals[name] = value.Func(&ir.ClacFunc{Name: name, ArgCount: spec[0], RetCount: spec[1]})
	}
	return &ModuleDriver{globals: globals}
}

// seed returns a copy of the current globals, used as the starting name
// table for the next top-level FunctionDef. The keys are copied in sorted
// order (maps.Keys, then sort.Strings), but the result is a plain Go map
// and carries no order of its own; nothing downstream depends on one,
// since each key maps independently.
func (d *ModuleDriver) seed() map[string]value.Value {
	names := maps.Keys(d.globals)
	sort.Strings(names)
	out := make(map[string]value.Value, len(names))
	for _, n := range names {
		out[n] = d.globals[n]
	}
	return out
}

// Compile iterates mod's top-level statements in source order, compiling
// every FunctionDef into a ClacFunc and registering it in the global
// table for subsequent definitions to call. Non-FunctionDef top-level
// statements are rejected: the grammar only ever hoists function
// definitions out of a Module (spec §6.1).
//
// A failing FunctionDef does not abort the whole module: it is recorded
// in a clerr.List and compilation continues with the remaining top-level
// definitions (seeded without the failed one), so a single bad function
// doesn't hide errors in every function after it. No *ir.ClacFunc is
// returned, and no output is ever written, once the list holds any error
// (spec §7's "no partial output" still holds at the module level).
func (d *ModuleDriver) Compile(mod *ast.Module) ([]*ir.ClacFunc, error) {
	var funcs []*ir.ClacFunc
	var errs clerr.List
	for _, stmt := range mod.Body {
		fd, ok := stmt.(*ast.FunctionDef)
		if !ok {
			errs.Add(clerr.New(clerr.UnsupportedNode, stmt.Pos(), "top-level statement must be a function definition, got %T", stmt))
			continue
		}
		fn, err := CompileFunction(fd, d.seed())
		if err != nil {
			if cerr, ok := err.(*clerr.Error); ok {
				errs.Add(cerr)
			} else {
				errs.Add(clerr.New(clerr.UnsupportedNode, fd.Pos(), "%s", err))
			}
			continue
		}
		d.globals[fd.Name] = value.Func(fn)
		funcs = append(funcs, fn)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return funcs, nil
}
