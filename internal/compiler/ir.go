package compiler

// TargetIR is the structured intermediate form the emitter builds and the
// printer renders to Go source. Rather than assembling host-language AST
// nodes directly (the teacher's tree-walking interpreter has no such
// stage, since it never emits code; this shape instead follows the
// design note's call for a thin, purpose-built tree over statements and
// expressions) the emitter works against these nodes, and the printer is
// the only piece that knows about Go's concrete syntax.

// Expr is any IR expression node.
type Expr interface{ exprNode() }

// Stmt is any IR statement node.
type Stmt interface{ stmtNode() }

// Decl is any top-level declaration in an emitted file.
type Decl interface{ declNode() }

// --- expressions ---

type Ident struct{ Name string }

type IntLit struct{ Value int64 }

type FloatLit struct{ Value float64 }

type StringLit struct{ Value string }

type BoolLit struct{ Value bool }

// Call renders Fun(Args...).
type Call struct {
	Fun  Expr
	Args []Expr
}

// Selector renders X.Sel.
type Selector struct {
	X   Expr
	Sel string
}

// BinaryExpr renders "X Op Y".
type BinaryExpr struct {
	Op   string
	X, Y Expr
}

// UnaryExpr renders "Op X".
type UnaryExpr struct {
	Op string
	X  Expr
}

// IndexExpr renders X[Index].
type IndexExpr struct{ X, Index Expr }

// CompositeLit renders Type{Elts...}.
type CompositeLit struct {
	Type string
	Elts []Expr
}

// KeyedElt renders "Key: Value" inside a CompositeLit.
type KeyedElt struct {
	Key   string
	Value Expr
}

// RawExpr is an escape hatch for fragments not worth modeling, rendered
// verbatim.
type RawExpr struct{ Text string }

func (*Ident) exprNode()        {}
func (*IntLit) exprNode()       {}
func (*FloatLit) exprNode()     {}
func (*StringLit) exprNode()    {}
func (*BoolLit) exprNode()      {}
func (*Call) exprNode()         {}
func (*Selector) exprNode()     {}
func (*BinaryExpr) exprNode()   {}
func (*UnaryExpr) exprNode()    {}
func (*IndexExpr) exprNode()    {}
func (*CompositeLit) exprNode() {}
func (*KeyedElt) exprNode()     {}
func (*RawExpr) exprNode()      {}

// --- statements ---

// ExprStmt renders a bare expression statement.
type ExprStmt struct{ X Expr }

// AssignStmt renders "Lhs... Tok Rhs...", Tok being ":=" or "=".
type AssignStmt struct {
	Lhs []Expr
	Tok string
	Rhs []Expr
}

// VarDecl renders "var Name Type = Value" (Value optional, Type optional).
type VarDecl struct {
	Name  string
	Type  string
	Value Expr
}

// IfStmt renders an if/else; Else may hold a single *IfStmt for else-if chains.
type IfStmt struct {
	Cond Expr
	Body []Stmt
	Else []Stmt
}

// ForStmt renders a C-style or conditional-only for loop. Init/Post may
// be nil for a `for Cond { }` loop; Cond may be nil for `for { }`.
type ForStmt struct {
	Init Stmt
	Cond Expr
	Post Stmt
	Body []Stmt
}

// RangeStmt renders "for Key, Value := range X { Body }". Value may be
// empty to range over keys only.
type RangeStmt struct {
	Key, Value string
	X          Expr
	Body       []Stmt
}

// ReturnStmt renders "return Results...".
type ReturnStmt struct{ Results []Expr }

// BreakStmt renders "break [Label]".
type BreakStmt struct{ Label string }

// ContinueStmt renders "continue [Label]".
type ContinueStmt struct{ Label string }

// LabeledStmt renders "Label:\nStmt".
type LabeledStmt struct {
	Label string
	Stmt  Stmt
}

// CommentStmt renders a "// Text" line with no code.
type CommentStmt struct{ Text string }

// RawStmt is an escape hatch for a verbatim statement/block of text.
type RawStmt struct{ Text string }

func (*ExprStmt) stmtNode()     {}
func (*AssignStmt) stmtNode()   {}
func (*VarDecl) stmtNode()      {}
func (*IfStmt) stmtNode()       {}
func (*ForStmt) stmtNode()      {}
func (*RangeStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode()   {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*LabeledStmt) stmtNode()  {}
func (*CommentStmt) stmtNode()  {}
func (*RawStmt) stmtNode()      {}

// --- declarations ---

// Param is one function parameter or result, "Name Type".
type Param struct{ Name, Type string }

// FuncDecl renders a top-level (or method, via Recv) function.
type FuncDecl struct {
	Doc     string
	Name    string
	Recv    *Param
	Params  []Param
	Results []Param
	Body    []Stmt
}

// TypeDecl renders "type Name Def" verbatim for Def (struct/interface
// bodies are assembled by the emitter as raw text, since Go's struct
// syntax is fixed and not worth re-modeling).
type TypeDecl struct {
	Doc  string
	Name string
	Def  string
}

// VarBlockDecl renders a package-level "var ( ... )" block, one line per
// entry.
type VarBlockDecl struct {
	Doc     string
	Entries []string
}

// RawDecl is an escape hatch for a verbatim top-level declaration.
type RawDecl struct{ Text string }

func (*FuncDecl) declNode()     {}
func (*TypeDecl) declNode()     {}
func (*VarBlockDecl) declNode() {}
func (*RawDecl) declNode()      {}

// File is a single emitted Go source file.
type File struct {
	Package string
	Doc     string
	Imports []string
	Decls   []Decl
}
