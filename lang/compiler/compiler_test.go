package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seirea/clacc/lang/ast"
	"github.com/seirea/clacc/lang/compiler"
	"github.com/seirea/clacc/lang/ir"
)

func defaultBuiltins() map[string][2]int {
	return map[string][2]int{"print": {1, 0}}
}

func loadModule(t *testing.T, src string) *ast.Module {
	t.Helper()
	mod, err := ast.Load([]byte(src))
	require.NoError(t, err)
	return mod
}

func tokens(fn *ir.ClacFunc) []string {
	out := make([]string, len(fn.Code))
	for i, op := range fn.Code {
		out[i] = op.Assemble()
	}
	return out
}

// S1 — identity on a pair via tuple passthrough.
func TestPassThroughTuple(t *testing.T) {
	src := `{"body": [
		{"kind": "FunctionDef", "name": "pass_through", "line": 1, "col": 1,
		 "args": [
			{"name": "x", "annotation": "int", "line": 1},
			{"name": "y", "annotation": "int", "line": 1}
		 ],
		 "returns": "tuple",
		 "body": [
			{"kind": "Return", "line": 2,
			 "value": {"kind": "Tuple", "line": 2, "elts": [
				{"kind": "Name", "id": "x", "ctx": "Load", "line": 2},
				{"kind": "Name", "id": "y", "ctx": "Load", "line": 2}
			 ]}}
		 ]}
	]}`
	mod := loadModule(t, src)
	d := compiler.NewModuleDriver(defaultBuiltins())
	funcs, err := d.Compile(mod)
	require.NoError(t, err)
	require.Len(t, funcs, 1)

	fn := funcs[0]
	assert.Equal(t, 2, fn.ArgCount)
	assert.Equal(t, 2, fn.RetCount)
	assert.Equal(t, []string{
		"2", "pick", "2", "pick", // load x (2 pick), load y (2 pick)
		"rot", "drop", "rot", "drop", // return-normalize to tuple
	}, tokens(fn))
}

// S2 — add two integers.
func TestAddIntegers(t *testing.T) {
	src := `{"body": [
		{"kind": "FunctionDef", "name": "add", "line": 1, "col": 1,
		 "args": [
			{"name": "a", "annotation": "int", "line": 1},
			{"name": "b", "annotation": "int", "line": 1}
		 ],
		 "returns": "int",
		 "body": [
			{"kind": "Return", "line": 2,
			 "value": {"kind": "BinOp", "op": "Add", "line": 2,
				"left": {"kind": "Name", "id": "a", "ctx": "Load", "line": 2},
				"right": {"kind": "Name", "id": "b", "ctx": "Load", "line": 2}}}
		 ]}
	]}`
	mod := loadModule(t, src)
	d := compiler.NewModuleDriver(defaultBuiltins())
	funcs, err := d.Compile(mod)
	require.NoError(t, err)

	fn := funcs[0]
	assert.Equal(t, 1, fn.RetCount)
	assert.Equal(t, []string{"2", "pick", "2", "pick", "+", "swap", "drop", "swap", "drop"}, tokens(fn))
}

// S3 — tuple subscript.
func TestTupleSubscript(t *testing.T) {
	src := `{"body": [
		{"kind": "FunctionDef", "name": "first", "line": 1, "col": 1,
		 "args": [{"name": "t", "annotation": "tuple", "line": 1}],
		 "returns": "int",
		 "body": [
			{"kind": "Return", "line": 2,
			 "value": {"kind": "Subscript", "line": 2,
				"value": {"kind": "Name", "id": "t", "ctx": "Load", "line": 2},
				"slice": {"kind": "Constant", "value": 0, "line": 2}}}
		 ]}
	]}`
	mod := loadModule(t, src)
	d := compiler.NewModuleDriver(defaultBuiltins())
	funcs, err := d.Compile(mod)
	require.NoError(t, err)

	fn := funcs[0]
	assert.Equal(t, 2, fn.ArgCount)
	assert.Equal(t, 1, fn.RetCount)
	assert.Equal(t, []string{
		"2", "pick", "2", "pick", // load tuple t
		"0",                                   // push index
		"2", "-", "pick", "rot", "rot", "drop", "drop", // subscript lowering
		"swap", "drop", "swap", "drop", // return-normalize int (drop the 2 leftover tuple slots)
	}, tokens(fn))
}

// S4 — recursive integer sqrt: nested FunctionDef, If, self-recursion.
func TestSqrtRecursion(t *testing.T) {
	src := `{"body": [
		{"kind": "FunctionDef", "name": "sqrt", "line": 1, "col": 1,
		 "args": [{"name": "n", "annotation": "int", "line": 1}],
		 "returns": "int",
		 "body": [
			{"kind": "FunctionDef", "name": "sqrt_inner", "line": 2, "col": 5,
			 "args": [
				{"name": "n", "annotation": "int", "line": 2},
				{"name": "i", "annotation": "int", "line": 2}
			 ],
			 "returns": "int",
			 "body": [
				{"kind": "If", "line": 3,
				 "test": {"kind": "Compare", "line": 3,
					"left": {"kind": "Name", "id": "n", "ctx": "Load", "line": 3},
					"ops": ["Lt"],
					"comparators": [{"kind": "BinOp", "op": "Mult", "line": 3,
						"left": {"kind": "BinOp", "op": "Add", "line": 3,
							"left": {"kind": "Name", "id": "i", "ctx": "Load", "line": 3},
							"right": {"kind": "Constant", "value": 1, "line": 3}},
						"right": {"kind": "BinOp", "op": "Add", "line": 3,
							"left": {"kind": "Name", "id": "i", "ctx": "Load", "line": 3},
							"right": {"kind": "Constant", "value": 1, "line": 3}}}]},
				 "body": [
					{"kind": "Return", "line": 4, "value": {"kind": "Name", "id": "i", "ctx": "Load", "line": 4}}
				 ],
				 "orelse": [
					{"kind": "Return", "line": 6,
					 "value": {"kind": "Call", "line": 6,
						"func": {"kind": "Name", "id": "sqrt_inner", "ctx": "Load", "line": 6},
						"args": [
							{"kind": "Name", "id": "n", "ctx": "Load", "line": 6},
							{"kind": "BinOp", "op": "Add", "line": 6,
							 "left": {"kind": "Name", "id": "i", "ctx": "Load", "line": 6},
							 "right": {"kind": "Constant", "value": 1, "line": 6}}
						]}}
				 ]}
			 ]},
			{"kind": "Return", "line": 7,
			 "value": {"kind": "Call", "line": 7,
				"func": {"kind": "Name", "id": "sqrt_inner", "ctx": "Load", "line": 7},
				"args": [
					{"kind": "Name", "id": "n", "ctx": "Load", "line": 7},
					{"kind": "Constant", "value": 0, "line": 7}
				]}}
		 ]}
	]}`
	mod := loadModule(t, src)
	d := compiler.NewModuleDriver(defaultBuiltins())
	funcs, err := d.Compile(mod)
	require.NoError(t, err)
	require.Len(t, funcs, 1)

	sqrt := funcs[0]
	require.Len(t, sqrt.Children, 1)
	sqrtInner := sqrt.Children[0]
	assert.Equal(t, "sqrt_inner", sqrtInner.Name)
	assert.Equal(t, 1, sqrtInner.RetCount)

	require.Len(t, sqrtInner.Children, 2)
	body, orelse := sqrtInner.Children[0], sqrtInner.Children[1]
	assert.Equal(t, 1, body.RetCount)
	assert.Equal(t, 1, orelse.RetCount)
	assert.NotEqual(t, body.Name, orelse.Name)

	// The orelse branch recurses into sqrt_inner by direct pointer, not by
	// name lookup (spec §9: Call holds a reference, never a forward name).
	foundRecursiveCall := false
	for _, op := range orelse.Code {
		if op.Op == ir.OpCall && op.Call == sqrtInner {
			foundRecursiveCall = true
		}
	}
	assert.True(t, foundRecursiveCall, "orelse branch must call sqrt_inner by reference")
}

// S5 — branch-arity mismatch rejected.
func TestBranchArityMismatchRejected(t *testing.T) {
	src := `{"body": [
		{"kind": "FunctionDef", "name": "bad", "line": 1, "col": 1,
		 "args": [{"name": "x", "annotation": "int", "line": 1}],
		 "returns": "int",
		 "body": [
			{"kind": "If", "line": 2,
			 "test": {"kind": "Compare", "line": 2,
				"left": {"kind": "Name", "id": "x", "ctx": "Load", "line": 2},
				"ops": ["Lt"],
				"comparators": [{"kind": "Constant", "value": 1, "line": 2}]},
			 "body": [
				{"kind": "Return", "line": 3, "value": {"kind": "Name", "id": "x", "ctx": "Load", "line": 3}}
			 ],
			 "orelse": [
				{"kind": "Return", "line": 5}
			 ]}
		 ]}
	]}`
	mod := loadModule(t, src)
	d := compiler.NewModuleDriver(defaultBuiltins())
	_, err := d.Compile(mod)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ArityError")
}

// S6 — missing annotation rejected.
func TestMissingAnnotationRejected(t *testing.T) {
	src := `{"body": [
		{"kind": "FunctionDef", "name": "f", "line": 1, "col": 1,
		 "args": [
			{"name": "a", "line": 1},
			{"name": "b", "line": 1}
		 ],
		 "returns": "int",
		 "body": [
			{"kind": "Return", "line": 2,
			 "value": {"kind": "BinOp", "op": "Add", "line": 2,
				"left": {"kind": "Name", "id": "a", "ctx": "Load", "line": 2},
				"right": {"kind": "Name", "id": "b", "ctx": "Load", "line": 2}}}
		 ]}
	]}`
	mod := loadModule(t, src)
	d := compiler.NewModuleDriver(defaultBuiltins())
	_, err := d.Compile(mod)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AnnotationError")
}

func TestCallArityMismatch(t *testing.T) {
	src := `{"body": [
		{"kind": "FunctionDef", "name": "one", "line": 1, "col": 1,
		 "args": [{"name": "a", "annotation": "int", "line": 1}],
		 "returns": "int",
		 "body": [{"kind": "Return", "line": 2, "value": {"kind": "Name", "id": "a", "ctx": "Load", "line": 2}}]},
		{"kind": "FunctionDef", "name": "caller", "line": 3, "col": 1,
		 "args": [], "returns": "int",
		 "body": [{"kind": "Return", "line": 4,
			"value": {"kind": "Call", "line": 4,
				"func": {"kind": "Name", "id": "one", "ctx": "Load", "line": 4},
				"args": [
					{"kind": "Constant", "value": 1, "line": 4},
					{"kind": "Constant", "value": 2, "line": 4}
				]}}]}
	]}`
	mod := loadModule(t, src)
	d := compiler.NewModuleDriver(defaultBuiltins())
	_, err := d.Compile(mod)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ArityError")
}

func TestUndefinedNameRejected(t *testing.T) {
	src := `{"body": [
		{"kind": "FunctionDef", "name": "f", "line": 1, "col": 1,
		 "args": [], "returns": "int",
		 "body": [{"kind": "Return", "line": 2, "value": {"kind": "Name", "id": "missing", "ctx": "Load", "line": 2}}]}
	]}`
	mod := loadModule(t, src)
	d := compiler.NewModuleDriver(defaultBuiltins())
	_, err := d.Compile(mod)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NameError")
}

func TestTupleArithmeticRejected(t *testing.T) {
	src := `{"body": [
		{"kind": "FunctionDef", "name": "f", "line": 1, "col": 1,
		 "args": [{"name": "t", "annotation": "tuple", "line": 1}],
		 "returns": "int",
		 "body": [{"kind": "Return", "line": 2,
			"value": {"kind": "BinOp", "op": "Add", "line": 2,
				"left": {"kind": "Name", "id": "t", "ctx": "Load", "line": 2},
				"right": {"kind": "Constant", "value": 1, "line": 2}}}]}
	]}`
	mod := loadModule(t, src)
	d := compiler.NewModuleDriver(defaultBuiltins())
	_, err := d.Compile(mod)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TypeError")
}

func TestPrintBuiltinCallable(t *testing.T) {
	src := `{"body": [
		{"kind": "FunctionDef", "name": "f", "line": 1, "col": 1,
		 "args": [{"name": "x", "annotation": "int", "line": 1}],
		 "returns": "None",
		 "body": [
			{"kind": "Expr", "line": 2, "value": {"kind": "Call", "line": 2,
				"func": {"kind": "Name", "id": "print", "ctx": "Load", "line": 2},
				"args": [{"kind": "Name", "id": "x", "ctx": "Load", "line": 2}]}}
		 ]}
	]}`
	mod := loadModule(t, src)
	d := compiler.NewModuleDriver(defaultBuiltins())
	funcs, err := d.Compile(mod)
	require.NoError(t, err)
	assert.Equal(t, 0, funcs[0].RetCount)
	assert.Contains(t, tokens(funcs[0]), "print")
}

func TestAssignAndReuse(t *testing.T) {
	src := `{"body": [
		{"kind": "FunctionDef", "name": "double", "line": 1, "col": 1,
		 "args": [{"name": "x", "annotation": "int", "line": 1}],
		 "returns": "int",
		 "body": [
			{"kind": "Assign", "line": 2,
			 "targets": [{"kind": "Name", "id": "y", "ctx": "Store", "line": 2}],
			 "value": {"kind": "BinOp", "op": "Add", "line": 2,
				"left": {"kind": "Name", "id": "x", "ctx": "Load", "line": 2},
				"right": {"kind": "Name", "id": "x", "ctx": "Load", "line": 2}}},
			{"kind": "Return", "line": 3, "value": {"kind": "Name", "id": "y", "ctx": "Load", "line": 3}}
		 ]}
	]}`
	mod := loadModule(t, src)
	d := compiler.NewModuleDriver(defaultBuiltins())
	funcs, err := d.Compile(mod)
	require.NoError(t, err)
	assert.Equal(t, 1, funcs[0].RetCount)
}

func TestDuplicateChildFunctionNameRejected(t *testing.T) {
	src := `{"body": [
		{"kind": "FunctionDef", "name": "outer", "line": 1, "col": 1,
		 "args": [], "returns": "None",
		 "body": [
			{"kind": "FunctionDef", "name": "inner", "line": 2, "col": 5,
			 "args": [], "returns": "None", "body": [{"kind": "Return", "line": 2}]},
			{"kind": "FunctionDef", "name": "inner", "line": 3, "col": 5,
			 "args": [], "returns": "None", "body": [{"kind": "Return", "line": 3}]},
			{"kind": "Return", "line": 4}
		 ]}
	]}`
	mod := loadModule(t, src)
	d := compiler.NewModuleDriver(defaultBuiltins())
	_, err := d.Compile(mod)
	require.Error(t, err)
}

// Two independently-broken top-level functions both surface in the
// combined error, rather than the second's NameError being hidden behind
// the first's AnnotationError.
func TestCompileAccumulatesErrorsAcrossFunctions(t *testing.T) {
	src := `{"body": [
		{"kind": "FunctionDef", "name": "bad_annotation", "line": 1, "col": 1,
		 "args": [{"name": "a", "line": 1}], "returns": "int",
		 "body": [{"kind": "Return", "line": 2, "value": {"kind": "Name", "id": "a", "ctx": "Load", "line": 2}}]},
		{"kind": "FunctionDef", "name": "bad_name", "line": 3, "col": 1,
		 "args": [], "returns": "int",
		 "body": [{"kind": "Return", "line": 4, "value": {"kind": "Name", "id": "missing", "ctx": "Load", "line": 4}}]}
	]}`
	mod := loadModule(t, src)
	d := compiler.NewModuleDriver(defaultBuiltins())
	funcs, err := d.Compile(mod)
	require.Error(t, err)
	assert.Nil(t, funcs)
	assert.Contains(t, err.Error(), "AnnotationError")
	assert.Contains(t, err.Error(), "NameError")
}
