package maincmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mna/mainer"

	"github.com/seirea/clacc/internal/config"
	"github.com/seirea/clacc/lang/assembler"
	"github.com/seirea/clacc/lang/ast"
	"github.com/seirea/clacc/lang/compiler"
)

// Compile runs CLACC's only pipeline (spec §6): load the JSON AST, compile
// every top-level function, assemble the result into CLAC text, and write
// it to the output path. On any failure nothing is written — a partial
// output.clac would be worse than none (spec §7).
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return CompileFile(stdio.Stdout, args[0], c.Builtins, c.Output)
}

// CompileFile drives the compile pipeline for a single input file.
// builtinsPath, if non-empty, overrides config.DefaultBuiltins(). On
// success, a one-line summary (top-level and total function counts) is
// written to summary.
func CompileFile(summary io.Writer, inputPath, builtinsPath, outputPath string) error {
	builtins := config.DefaultBuiltins()
	if builtinsPath != "" {
		loaded, err := config.Load(builtinsPath)
		if err != nil {
			return err
		}
		builtins = loaded
	}

	mod, err := LoadModule(inputPath)
	if err != nil {
		return err
	}

	driver := compiler.NewModuleDriver(builtins)
	funcs, err := driver.Compile(mod)
	if err != nil {
		return err
	}

	out := assembler.Assemble(funcs)
	if outputPath == "" {
		outputPath = "output.clac"
	}
	if err := os.WriteFile(outputPath, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}

	fmt.Fprintf(summary, "compiled %d top-level function(s), %d total including nested, to %s\n",
		len(funcs), ast.CountFunctionDefs(mod), outputPath)
	return nil
}
