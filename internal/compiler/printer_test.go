package compiler

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintFileBasicShape(t *testing.T) {
	f := &File{
		Package: "gen",
		Doc:     "Code generated. DO NOT EDIT.",
		Imports: []string{"github.com/chrlang/chr/internal/runtime"},
		Decls: []Decl{
			&TypeDecl{Name: "Thing", Def: "struct {\n\tX int\n}"},
			&FuncDecl{
				Name:    "DoThing",
				Params:  []Param{{Name: "x", Type: "int"}},
				Results: []Param{{Type: "bool"}},
				Body: []Stmt{
					&IfStmt{
						Cond: &BinaryExpr{Op: ">", X: &Ident{Name: "x"}, Y: &IntLit{Value: 0}},
						Body: []Stmt{&ReturnStmt{Results: []Expr{&BoolLit{Value: true}}}},
						Else: []Stmt{&ReturnStmt{Results: []Expr{&BoolLit{Value: false}}}},
					},
				},
			},
		},
	}
	out := PrintFile(f)

	assert.Contains(t, out, "// Code generated. DO NOT EDIT.")
	assert.Contains(t, out, "package gen")
	assert.Contains(t, out, `"github.com/chrlang/chr/internal/runtime"`)
	assert.Contains(t, out, "type Thing struct {")
	assert.Contains(t, out, "func DoThing(x int) bool {")
	assert.Contains(t, out, "if x > 0 {")
	assert.Contains(t, out, "return true")
	assert.Contains(t, out, "} else {")

	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "f.go", out, parser.AllErrors)
	require.NoError(t, err, "printed source failed to parse:\n%s", out)
}

func TestPrintElseIfChain(t *testing.T) {
	f := &File{
		Package: "gen",
		Decls: []Decl{
			&FuncDecl{
				Name:    "Classify",
				Params:  []Param{{Name: "n", Type: "int"}},
				Results: []Param{{Type: "string"}},
				Body: []Stmt{
					&IfStmt{
						Cond: &BinaryExpr{Op: "<", X: &Ident{Name: "n"}, Y: &IntLit{Value: 0}},
						Body: []Stmt{&ReturnStmt{Results: []Expr{&StringLit{Value: "neg"}}}},
						Else: []Stmt{
							&IfStmt{
								Cond: &BinaryExpr{Op: "==", X: &Ident{Name: "n"}, Y: &IntLit{Value: 0}},
								Body: []Stmt{&ReturnStmt{Results: []Expr{&StringLit{Value: "zero"}}}},
								Else: []Stmt{&ReturnStmt{Results: []Expr{&StringLit{Value: "pos"}}}},
							},
						},
					},
				},
			},
		},
	}
	out := PrintFile(f)
	assert.Contains(t, out, "} else if n == 0 {")
	assert.Contains(t, out, "} else {")

	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "f.go", out, parser.AllErrors)
	require.NoError(t, err, "printed source failed to parse:\n%s", out)
}

func TestPrintRangeAndCompositeLit(t *testing.T) {
	f := &File{
		Package: "gen",
		Decls: []Decl{
			&FuncDecl{
				Name: "Sum",
				Body: []Stmt{
					&VarDecl{Name: "total", Type: "int", Value: &IntLit{Value: 0}},
					&RangeStmt{
						Key:   "_",
						Value: "v",
						X:     &Ident{Name: "xs"},
						Body: []Stmt{
							&AssignStmt{Lhs: []Expr{&Ident{Name: "total"}}, Tok: "+=", Rhs: []Expr{&Ident{Name: "v"}}},
						},
					},
					&ExprStmt{X: &Call{
						Fun:  &Selector{X: &Ident{Name: "fmt"}, Sel: "Println"},
						Args: []Expr{&CompositeLit{Type: "[]int", Elts: []Expr{&IntLit{Value: 1}, &IntLit{Value: 2}}}},
					}},
				},
			},
		},
	}
	out := PrintFile(f)
	assert.Contains(t, out, "var total int = 0")
	assert.Contains(t, out, "for _, v := range xs {")
	assert.Contains(t, out, "total += v")
	assert.Contains(t, out, "fmt.Println([]int{1, 2})")
}

func TestPrintRawStmtAndDecl(t *testing.T) {
	f := &File{
		Package: "gen",
		Decls: []Decl{
			&RawDecl{Text: "const Foo = 1"},
			&FuncDecl{Name: "Bar", Body: []Stmt{&RawStmt{Text: "x := 1\nreturn"}}},
		},
	}
	out := PrintFile(f)
	assert.Contains(t, out, "const Foo = 1")
	assert.Contains(t, out, "x := 1")
}
