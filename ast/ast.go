// Package ast declares the abstract syntax tree of the Sprs language.
package ast

import "github.com/johmaru/sprs-sub000/token"

// Node is implemented by all AST nodes.
type Node interface {
	// Pos returns the byte offset of the first character of the node.
	Pos() int
	// End returns the byte offset of the first character after the node.
	End() int
}

// Span records the source extent of a node.
type Span struct {
	Start int
	Stop  int
}

// Pos returns the byte offset of the first character of the node.
func (s Span) Pos() int { return s.Start }

// End returns the byte offset of the first character after the node.
func (s Span) End() int { return s.Stop }

// === [ Items ] ===============================================================

// Item is a top-level declaration of a source file.
type Item interface {
	Node
	isItem()
}

// Import is an `import NAME;` item.
type Import struct {
	Span
	Name string
}

// Package is a `pkg NAME;` item naming the module.
type Package struct {
	Span
	Name string
}

// Preprocessor is a `#define DIRECTIVE` item.
type Preprocessor struct {
	Span
	Directive string
}

// VarItem is a top-level variable declaration.
type VarItem struct {
	Span
	Decl *VarDecl
}

// FunctionItem is a top-level function declaration.
type FunctionItem struct {
	Span
	Func *Function
}

// StructItem is a top-level struct declaration.
type StructItem struct {
	Span
	Decl *StructDecl
}

// EnumItem is a top-level enum declaration.
type EnumItem struct {
	Span
	Decl *EnumDecl
}

func (*Import) isItem()       {}
func (*Package) isItem()      {}
func (*Preprocessor) isItem() {}
func (*VarItem) isItem()      {}
func (*FunctionItem) isItem() {}
func (*StructItem) isItem()   {}
func (*EnumItem) isItem()     {}

// === [ Declarations ] ========================================================

// Function is a function declaration.
type Function struct {
	Span
	Ident  string
	Params []string
	// RetTy is the declared return type; its kind is TypeNone when the
	// declaration carries no `-> TYPE` clause.
	RetTy  Type
	Public bool
	Body   []Stmt
}

// VarDecl is a `var NAME = EXPR` declaration.
type VarDecl struct {
	Span
	Name  string
	Value Expr
}

// StructDecl is a struct declaration with its ordered fields.
type StructDecl struct {
	Span
	Name   string
	Public bool
	Fields []*Field
}

// Field is a single struct field.
type Field struct {
	Span
	Name   string
	Ty     Type
	Public bool
}

// EnumDecl is an enum declaration with its ordered variants.
type EnumDecl struct {
	Span
	Name     string
	Public   bool
	Variants []*Variant
}

// Variant is a single enum variant.
type Variant struct {
	Span
	Name   string
	Public bool
}

// === [ Statements ] ==========================================================

// Stmt is a statement inside a function body or block.
type Stmt interface {
	Node
	isStmt()
}

// VarStmt is a `var NAME = EXPR;` statement.
type VarStmt struct {
	Span
	Decl *VarDecl
}

// ExprStmt is an expression evaluated for effect.
type ExprStmt struct {
	Span
	X Expr
}

// IfStmt is an `if COND { ... } [else { ... }]` statement.
type IfStmt struct {
	Span
	Cond Expr
	Then []Stmt
	Else []Stmt // nil when absent
}

// WhileStmt is a `while COND { ... }` statement.
type WhileStmt struct {
	Span
	Cond Expr
	Body []Stmt
}

// ReturnStmt is a `return [EXPR];` statement.
type ReturnStmt struct {
	Span
	X Expr // nil for bare return
}

// EnumStmt is a block-scope enum declaration.
type EnumStmt struct {
	Span
	Decl *EnumDecl
}

// AssignStmt is a `NAME = EXPR;` statement.
type AssignStmt struct {
	Span
	Name string
	X    Expr
}

func (*VarStmt) isStmt()    {}
func (*ExprStmt) isStmt()   {}
func (*IfStmt) isStmt()     {}
func (*WhileStmt) isStmt()  {}
func (*ReturnStmt) isStmt() {}
func (*EnumStmt) isStmt()   {}
func (*AssignStmt) isStmt() {}

// === [ Expressions ] =========================================================

// Expr is an expression node.
type Expr interface {
	Node
	isExpr()
}

// NumberLit is a decimal integer literal.
type NumberLit struct {
	Span
	Value int64
}

// FloatLit is a floating-point literal.
type FloatLit struct {
	Span
	Value float64
}

// StringLit is a string literal; Value holds the bytes between the quotes.
type StringLit struct {
	Span
	Value string
}

// BoolLit is a boolean literal.
type BoolLit struct {
	Span
	Value bool
}

// UnitLit is the unit value `()`.
type UnitLit struct {
	Span
}

// TypeAtom is a sized-numeric type name used in expression position
// (e.g. the second argument of cast!).
type TypeAtom struct {
	Span
	Ty Type
}

// VarRef is a reference to a variable by name.
type VarRef struct {
	Span
	Name string
}

// BinaryExpr is an arithmetic or comparison expression.
type BinaryExpr struct {
	Span
	Op token.Kind
	X  Expr
	Y  Expr
}

// IncDecExpr is a pre- or post- `++`/`--` expression.
type IncDecExpr struct {
	Span
	Op   token.Kind // token.Inc or token.Dec
	X    Expr
	Post bool
}

// IfExpr is a ternary `if COND then EXPR else EXPR` expression.
type IfExpr struct {
	Span
	Cond Expr
	Then Expr
	Else Expr
}

// CallExpr is a function or macro call. Macro is set when the callee
// identifier ends with '!'.
type CallExpr struct {
	Span
	Name  string
	Args  []Expr
	Macro bool
	// RetTy caches the resolved return type of the callee; filled during
	// lowering, TypeNone until then.
	RetTy Type
}

// ListLit is a `[e0, e1, ...]` list literal.
type ListLit struct {
	Span
	Elems []Expr
}

// RangeExpr is a `start..end` range expression.
type RangeExpr struct {
	Span
	Start Expr
	Stop  Expr
}

// IndexExpr is a `coll[idx]` expression.
type IndexExpr struct {
	Span
	X     Expr
	Index Expr
}

// ModuleAccess is a `module.fn(args)` cross-module call.
type ModuleAccess struct {
	Span
	Module string
	Fn     string
	Args   []Expr
}

// FieldAccess is a `base.field` expression.
type FieldAccess struct {
	Span
	X     Expr
	Field string
}

// StructInit is a `Name { field = expr, ... }` struct literal.
type StructInit struct {
	Span
	Name   string
	Fields []*FieldInit
}

// FieldInit is a single `field = expr` initializer of a struct literal.
type FieldInit struct {
	Span
	Name  string
	Value Expr
}

func (*NumberLit) isExpr()    {}
func (*FloatLit) isExpr()     {}
func (*StringLit) isExpr()    {}
func (*BoolLit) isExpr()      {}
func (*UnitLit) isExpr()      {}
func (*TypeAtom) isExpr()     {}
func (*VarRef) isExpr()       {}
func (*BinaryExpr) isExpr()   {}
func (*IncDecExpr) isExpr()   {}
func (*IfExpr) isExpr()       {}
func (*CallExpr) isExpr()     {}
func (*ListLit) isExpr()      {}
func (*RangeExpr) isExpr()    {}
func (*IndexExpr) isExpr()    {}
func (*ModuleAccess) isExpr() {}
func (*FieldAccess) isExpr()  {}
func (*StructInit) isExpr()   {}

// File is the parse result of a single source file.
type File struct {
	// Name is the file path the source was read from.
	Name string
	// Src is the raw source text, kept for error formatting.
	Src string
	// Items are the top-level items in source order.
	Items []Item
}

// PkgName returns the declared package name, or the empty string when the
// file carries no `pkg` item.
func (f *File) PkgName() string {
	for _, item := range f.Items {
		if pkg, ok := item.(*Package); ok {
			return pkg.Name
		}
	}
	return ""
}
