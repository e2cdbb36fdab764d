// Package config loads the builtin function table CLACC's compiler seeds
// every module's name table with (spec §4.2). Most invocations never need
// a config file at all: DefaultBuiltins covers the one builtin the
// original language defines. A deployment that wants to register
// additional host-provided builtins (an `assert`, an `exit`, anything a
// CLAC runtime supplies outside the compiled program) points --builtins
// at a YAML file instead.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Builtin describes one pre-registered callable's stack shape: how many
// argument slots it consumes and how many result slots it leaves behind.
type Builtin struct {
	ArgCount int `yaml:"arg_count"`
	RetCount int `yaml:"ret_count"`
}

// Table maps a builtin name to its shape, the form compiler.NewModuleDriver
// expects.
type Table map[string][2]int

// file is the on-disk shape of a builtins YAML document:
//
//	builtins:
//	  print:
//	    arg_count: 1
//	    ret_count: 0
//	  assert:
//	    arg_count: 1
//	    ret_count: 0
type file struct {
	Builtins map[string]Builtin `yaml:"builtins"`
}

// DefaultBuiltins is the table CLACC uses absent an explicit --builtins
// file: just print, taking one argument slot (an int; a tuple is two slots
// and fails the arity check) and returning nothing, per the original
// language's only pre-registered name.
func DefaultBuiltins() Table {
	return Table{"print": {1, 0}}
}

// Load reads a builtins YAML file from path and returns the resulting
// Table. A builtin the file doesn't mention is not added; the caller
// decides whether to merge with DefaultBuiltins or replace it entirely.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	table := make(Table, len(f.Builtins))
	for name, b := range f.Builtins {
		if b.ArgCount < 0 || b.RetCount < 0 {
			return nil, fmt.Errorf("config: %s: builtin %q has a negative slot count", path, name)
		}
		table[name] = [2]int{b.ArgCount, b.RetCount}
	}
	return table, nil
}
