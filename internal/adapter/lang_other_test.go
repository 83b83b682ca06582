package adapter

import (
	"testing"

	"github.com/dusk-indust/codescope/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wantSymbol struct {
	name       string
	kind       ir.SymbolKind
	complexity int // 0 means absent
}

func assertSymbols(t *testing.T, m *ir.Module, want []wantSymbol) {
	t.Helper()
	require.Len(t, m.Symbols, len(want), "symbols: %v", symbolNames(m.Symbols))
	for i, w := range want {
		got := m.Symbols[i]
		assert.Equal(t, w.name, got.Name, "symbol %d", i)
		assert.Equal(t, w.kind, got.Kind, "symbol %s", w.name)
		if w.complexity == 0 {
			assert.Nil(t, got.BranchingComplexity, "symbol %s", w.name)
			continue
		}
		if assert.NotNil(t, got.BranchingComplexity, "symbol %s", w.name) {
			assert.Equal(t, w.complexity, *got.BranchingComplexity, "symbol %s", w.name)
		}
	}
}

// ---------------------------------------------------------------------------
// Go
// ---------------------------------------------------------------------------

const goSource = `package sample

import (
	"fmt"
	"strings"
)

// Greeter says hello.
type Greeter interface {
	Greet(name string) string
}

type Person struct {
	Name string
}

type ID = string

type Count int

const Max = 10

var registry = map[string]int{}

func (p *Person) Greet(name string) string {
	if name == "" && p.Name == "" {
		return "hi"
	}
	switch name {
	case "a":
		return "A"
	case "b":
		return "B"
	default:
		return strings.ToUpper(name)
	}
}

func Run() {
	fn := func() {
		for i := 0; i < 3; i++ {
			fmt.Println(i)
		}
	}
	fn()
}
`

func TestGoAdapter(t *testing.T) {
	m := parse(t, NewGoAdapter(), "sample/sample.go", goSource)
	assertModuleInvariants(t, m, []byte(goSource))
	assert.Equal(t, "go", *m.Language)

	assertSymbols(t, m, []wantSymbol{
		{"Greeter", ir.SymbolKindInterface, 0},
		{"Person", ir.SymbolKindClass, 0},
		{"ID", ir.SymbolKindType, 0},
		{"Count", ir.SymbolKindType, 0},
		{"Max", ir.SymbolKindConst, 0},
		{"registry", ir.SymbolKindVariable, 0},
		{"Greet", ir.SymbolKindFunction, 5},
		{"Run", ir.SymbolKindFunction, 1},
	})
	assert.Equal(t, []string{"fmt", "strings"}, importTargets(m.Outgoing))
	assert.Equal(t, 1, m.CommentLines)
}

func TestGoAdapter_Fixture(t *testing.T) {
	source := readFixture(t, "testdata/fixtures/go_project/service.go")
	m, err := NewGoAdapter().Parse("service.go", source)
	require.NoError(t, err)
	assertModuleInvariants(t, m, source)
	assert.NotEmpty(t, m.Symbols)
}

// ---------------------------------------------------------------------------
// Python
// ---------------------------------------------------------------------------

const pySource = `import os
import sys as system
from collections import OrderedDict
from . import sibling


# Storage helpers.
class Store:
    def get(self, key):
        if key in self.data and key:
            return self.data[key]
        return None


def main(argv):
    for arg in argv:
        if arg == "-v":
            print("v")
        elif arg == "-q":
            pass
    try:
        run()
    except ValueError:
        return 1
    return 0
`

func TestPythonAdapter(t *testing.T) {
	m := parse(t, NewPythonAdapter(), "pkg/store.py", pySource)
	assertModuleInvariants(t, m, []byte(pySource))
	assert.Equal(t, "python", *m.Language)

	assertSymbols(t, m, []wantSymbol{
		{"Store", ir.SymbolKindClass, 0},
		{"get", ir.SymbolKindFunction, 3},
		{"main", ir.SymbolKindFunction, 5},
	})
	assert.Equal(t, []string{"os", "sys", "collections", "."}, importTargets(m.Outgoing))
	assert.Equal(t, 1, m.CommentLines)
	assert.Equal(t, 4, m.BlankLines)
}

// ---------------------------------------------------------------------------
// Rust
// ---------------------------------------------------------------------------

const rsSource = `use std::collections::HashMap;
use crate::util::{a, b};

pub struct Point {
    x: i32,
}

pub enum Shape {
    Circle,
    Square,
}

pub trait Area {
    fn area(&self) -> f64;
}

type Map = HashMap<String, i32>;

const LIMIT: u32 = 3;

static NAME: &str = "n";

impl Point {
    pub fn classify(&self) -> i32 {
        match self.x {
            0 => 0,
            1 => 1,
            _ => {
                if self.x > 10 && self.x < 20 {
                    return 2;
                }
                3
            }
        }
    }
}
`

func TestRustAdapter(t *testing.T) {
	m := parse(t, NewRustAdapter(), "src/point.rs", rsSource)
	assertModuleInvariants(t, m, []byte(rsSource))
	assert.Equal(t, "rust", *m.Language)

	assertSymbols(t, m, []wantSymbol{
		{"Point", ir.SymbolKindClass, 0},
		{"Shape", ir.SymbolKindEnum, 0},
		{"Area", ir.SymbolKindInterface, 0},
		{"Map", ir.SymbolKindType, 0},
		{"LIMIT", ir.SymbolKindConst, 0},
		{"NAME", ir.SymbolKindVariable, 0},
		{"classify", ir.SymbolKindFunction, 6},
	})
	assert.Equal(t, []string{"std::collections::HashMap", "crate::util::{a, b}"}, importTargets(m.Outgoing))
}
