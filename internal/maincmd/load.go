package maincmd

import (
	"fmt"

	"github.com/seirea/clacc/lang/ast"
)

// LoadModule reads the JSON-encoded AST at path (the stand-in for a real
// source parser, spec §1) and decodes it into the ast package's typed
// nodes, via ast.LoadFile's gjson-based walk. The only thing this layer
// adds over calling ast.LoadFile directly is the path in the wrapped
// error, since the CLI is the first place a user ever sees this message.
func LoadModule(path string) (*ast.Module, error) {
	mod, err := ast.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mod, nil
}
