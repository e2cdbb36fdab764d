package ast

import (
	"fmt"
	"os"

	"github.com/seirea/clacc/lang/clerr"
	"github.com/seirea/clacc/lang/token"
	"github.com/tidwall/gjson"
)

// LoadFile reads and decodes a JSON-encoded AST from path. This is the
// stand-in for the out-of-scope source parser (spec §1): instead of parsing
// the Python-like surface syntax, CLACC's CLI reads an AST already shaped
// like this package's types, serialized as JSON by whatever front end
// produced it.
//
// The JSON shape mirrors the node kinds directly: every node is an object
// with a "kind" field plus kind-specific fields, and "line"/"col" fields
// used to build the node's token.Pos. For example:
//
//	{"body": [
//	  {"kind": "FunctionDef", "name": "add", "line": 1, "col": 1,
//	   "args": [{"name": "a", "annotation": "int", "line": 1, "col": 9}],
//	   "returns": "int",
//	   "body": [
//	     {"kind": "Return", "line": 2, "col": 3,
//	      "value": {"kind": "BinOp", "op": "Add", "line": 2, "col": 10,
//	                "left":  {"kind": "Name", "id": "a", "ctx": "Load", "line": 2, "col": 10},
//	                "right": {"kind": "Name", "id": "b", "ctx": "Load", "line": 2, "col": 14}}}
//	   ]}
//	]}
func LoadFile(path string) (*Module, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(b)
}

// Load decodes a JSON-encoded AST from b. See LoadFile for the shape.
func Load(b []byte) (*Module, error) {
	if !gjson.ValidBytes(b) {
		return nil, fmt.Errorf("ast: invalid JSON")
	}
	root := gjson.ParseBytes(b)

	mod := &Module{}
	var loadErr error
	root.Get("body").ForEach(func(_, v gjson.Result) bool {
		s, err := decodeStmt(v)
		if err != nil {
			loadErr = err
			return false
		}
		mod.Body = append(mod.Body, s)
		return true
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return mod, nil
}

func pos(r gjson.Result) token.Pos {
	line, col := int(r.Get("line").Int()), int(r.Get("col").Int())
	if line <= 0 {
		line = 1
	}
	if col <= 0 {
		col = 1
	}
	return token.MakePos(line, col)
}

func decodeStmt(r gjson.Result) (Stmt, error) {
	kind := r.Get("kind").String()
	switch kind {
	case "FunctionDef":
		return decodeFunctionDef(r)
	case "Return":
		var val Expr
		if v := r.Get("value"); v.Exists() {
			e, err := decodeExpr(v)
			if err != nil {
				return nil, err
			}
			val = e
		}
		return &Return{ReturnPos: pos(r), Value: val}, nil
	case "Assign":
		targets := r.Get("targets")
		if !targets.IsArray() || len(targets.Array()) != 1 {
			return nil, fmt.Errorf("ast: Assign requires exactly one target (line %d)", r.Get("line").Int())
		}
		targetExpr, err := decodeExpr(targets.Array()[0])
		if err != nil {
			return nil, err
		}
		target, ok := targetExpr.(*Name)
		if !ok {
			return nil, fmt.Errorf("ast: Assign target must be a name (line %d)", r.Get("line").Int())
		}
		target.Ctx = Store
		value, err := decodeExpr(r.Get("value"))
		if err != nil {
			return nil, err
		}
		return &Assign{AssignPos: pos(r), Target: target, Value: value}, nil
	case "If":
		test, err := decodeExpr(r.Get("test"))
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(r.Get("body"))
		if err != nil {
			return nil, err
		}
		orelse, err := decodeStmts(r.Get("orelse"))
		if err != nil {
			return nil, err
		}
		return &If{IfPos: pos(r), Test: test, Body: body, Orelse: orelse}, nil
	case "Expr":
		val, err := decodeExpr(r.Get("value"))
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Value: val}, nil
	default:
		return nil, fmt.Errorf("ast: unknown statement kind %q (line %d)", kind, r.Get("line").Int())
	}
}

func decodeStmts(r gjson.Result) ([]Stmt, error) {
	if !r.Exists() {
		return nil, nil
	}
	var (
		stmts []Stmt
		err   error
	)
	r.ForEach(func(_, v gjson.Result) bool {
		var s Stmt
		s, err = decodeStmt(v)
		if err != nil {
			return false
		}
		stmts = append(stmts, s)
		return true
	})
	return stmts, err
}

func decodeFunctionDef(r gjson.Result) (*FunctionDef, error) {
	fn := &FunctionDef{
		NamePos: pos(r),
		Name:    r.Get("name").String(),
		Returns: decodeAnnotation(r.Get("returns").String(), true),
	}

	r.Get("args").ForEach(func(_, v gjson.Result) bool {
		fn.Args = append(fn.Args, &Arg{
			NamePos:    pos(v),
			Name:       v.Get("name").String(),
			Annotation: decodeAnnotation(v.Get("annotation").String(), false),
		})
		return true
	})

	body, err := decodeStmts(r.Get("body"))
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

func decodeAnnotation(s string, isReturn bool) Annotation {
	switch s {
	case "int":
		return IntAnnotation
	case "tuple":
		return TupleAnnotation
	case "None":
		if isReturn {
			return NoneAnnotation
		}
		return NoAnnotation
	default:
		return NoAnnotation
	}
}

func decodeExpr(r gjson.Result) (Expr, error) {
	kind := r.Get("kind").String()
	switch kind {
	case "Constant":
		v := r.Get("value")
		if v.Type != gjson.Number || float64(v.Int()) != v.Num {
			return nil, clerr.New(clerr.TypeError, pos(r), "constant must be an integer, got %q", v.Raw)
		}
		return &Constant{ConstPos: pos(r), Value: int(v.Int())}, nil
	case "Name":
		ctx := Load
		if r.Get("ctx").String() == "Store" {
			ctx = Store
		}
		return &Name{NamePos: pos(r), Id: r.Get("id").String(), Ctx: ctx}, nil
	case "BinOp":
		left, err := decodeExpr(r.Get("left"))
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(r.Get("right"))
		if err != nil {
			return nil, err
		}
		op, err := decodeBinOp(r.Get("op").String())
		if err != nil {
			return nil, err
		}
		return &BinOp{OpPos: pos(r), Left: left, Op: op, Right: right}, nil
	case "Compare":
		left, err := decodeExpr(r.Get("left"))
		if err != nil {
			return nil, err
		}
		var ops []CompareOp
		var opErr error
		r.Get("ops").ForEach(func(_, v gjson.Result) bool {
			op, err := decodeCompareOp(v.String())
			if err != nil {
				opErr = err
				return false
			}
			ops = append(ops, op)
			return true
		})
		if opErr != nil {
			return nil, opErr
		}
		var comparators []Expr
		var compErr error
		r.Get("comparators").ForEach(func(_, v gjson.Result) bool {
			e, err := decodeExpr(v)
			if err != nil {
				compErr = err
				return false
			}
			comparators = append(comparators, e)
			return true
		})
		if compErr != nil {
			return nil, compErr
		}
		return &Compare{ComparePos: pos(r), Left: left, Ops: ops, Comparators: comparators}, nil
	case "Call":
		funcExpr, err := decodeExpr(r.Get("func"))
		if err != nil {
			return nil, err
		}
		funcName, ok := funcExpr.(*Name)
		if !ok {
			return nil, fmt.Errorf("ast: Call.func must be a name (line %d)", r.Get("line").Int())
		}
		var (
			args    []Expr
			argsErr error
		)
		r.Get("args").ForEach(func(_, v gjson.Result) bool {
			e, err := decodeExpr(v)
			if err != nil {
				argsErr = err
				return false
			}
			args = append(args, e)
			return true
		})
		if argsErr != nil {
			return nil, argsErr
		}
		return &Call{CallPos: pos(r), Func: funcName, Args: args}, nil
	case "Subscript":
		value, err := decodeExpr(r.Get("value"))
		if err != nil {
			return nil, err
		}
		slice, err := decodeExpr(r.Get("slice"))
		if err != nil {
			return nil, err
		}
		ctx := Load
		if r.Get("ctx").String() == "Store" {
			ctx = Store
		}
		return &Subscript{SubPos: pos(r), Value: value, Slice: slice, Ctx: ctx}, nil
	case "Tuple":
		var (
			elts    []Expr
			eltsErr error
		)
		r.Get("elts").ForEach(func(_, v gjson.Result) bool {
			e, err := decodeExpr(v)
			if err != nil {
				eltsErr = err
				return false
			}
			elts = append(elts, e)
			return true
		})
		if eltsErr != nil {
			return nil, eltsErr
		}
		return &TupleExpr{TuplePos: pos(r), Elts: elts}, nil
	default:
		return nil, fmt.Errorf("ast: unknown expression kind %q (line %d)", kind, r.Get("line").Int())
	}
}

func decodeBinOp(s string) (BinOpKind, error) {
	switch s {
	case "Add":
		return Add, nil
	case "Sub":
		return Sub, nil
	case "Mult":
		return Mult, nil
	case "Mod":
		return Mod, nil
	case "FloorDiv":
		return FloorDiv, nil
	case "Pow":
		return Pow, nil
	default:
		return 0, fmt.Errorf("ast: unknown binary operator %q", s)
	}
}

func decodeCompareOp(s string) (CompareOp, error) {
	// Lt is the only comparator the grammar defines (spec §6.1).
	if s == "Lt" {
		return Lt, nil
	}
	return 0, fmt.Errorf("ast: unknown comparison operator %q", s)
}
