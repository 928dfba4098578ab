package parser

import (
	"strings"
	"testing"

	"github.com/johmaru/sprs-sub000/ast"
	"github.com/johmaru/sprs-sub000/token"
)

// parseExprString parses src as the initializer of a var statement and
// returns the expression.
func parseExprString(t *testing.T, src string) ast.Expr {
	t.Helper()
	file, err := Parse("test.sprs", "fn main() { var x = "+src+"; }")
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	fn := file.Items[0].(*ast.FunctionItem).Func
	return fn.Body[0].(*ast.VarStmt).Decl.Value
}

func TestPrecedenceMulOverAdd(t *testing.T) {
	x := parseExprString(t, "1 + 2 * 3")
	add, ok := x.(*ast.BinaryExpr)
	if !ok || add.Op != token.Plus {
		t.Fatalf("expected top-level +, got %T", x)
	}
	if _, ok := add.X.(*ast.NumberLit); !ok {
		t.Errorf("expected literal on the left of +, got %T", add.X)
	}
	mul, ok := add.Y.(*ast.BinaryExpr)
	if !ok || mul.Op != token.Star {
		t.Fatalf("expected * on the right of +, got %T", add.Y)
	}
}

func TestPrecedenceAddOverEq(t *testing.T) {
	x := parseExprString(t, "a == b + c")
	eq, ok := x.(*ast.BinaryExpr)
	if !ok || eq.Op != token.Eq {
		t.Fatalf("expected top-level ==, got %T", x)
	}
	add, ok := eq.Y.(*ast.BinaryExpr)
	if !ok || add.Op != token.Plus {
		t.Fatalf("expected + on the right of ==, got %T", eq.Y)
	}
}

func TestFieldAccessLeftAssociative(t *testing.T) {
	x := parseExprString(t, "a.b.c")
	outer, ok := x.(*ast.FieldAccess)
	if !ok || outer.Field != "c" {
		t.Fatalf("expected outer field access .c, got %T", x)
	}
	inner, ok := outer.X.(*ast.FieldAccess)
	if !ok || inner.Field != "b" {
		t.Fatalf("expected inner field access .b, got %T", outer.X)
	}
	if base, ok := inner.X.(*ast.VarRef); !ok || base.Name != "a" {
		t.Fatalf("expected base variable a, got %T", inner.X)
	}
}

func TestRangeExpr(t *testing.T) {
	x := parseExprString(t, "1..10")
	r, ok := x.(*ast.RangeExpr)
	if !ok {
		t.Fatalf("expected range expression, got %T", x)
	}
	if _, ok := r.Start.(*ast.NumberLit); !ok {
		t.Errorf("expected literal range start, got %T", r.Start)
	}
}

func TestModuleAccess(t *testing.T) {
	x := parseExprString(t, "b.greet()")
	ma, ok := x.(*ast.ModuleAccess)
	if !ok {
		t.Fatalf("expected module access, got %T", x)
	}
	if ma.Module != "b" || ma.Fn != "greet" {
		t.Errorf("expected b.greet, got %s.%s", ma.Module, ma.Fn)
	}
}

func TestMacroCall(t *testing.T) {
	x := parseExprString(t, `println!("hi", 1)`)
	call, ok := x.(*ast.CallExpr)
	if !ok || !call.Macro {
		t.Fatalf("expected macro call, got %T", x)
	}
	if call.Name != "println" || len(call.Args) != 2 {
		t.Errorf("expected println with 2 args, got %s with %d", call.Name, len(call.Args))
	}
}

func TestTernaryIf(t *testing.T) {
	x := parseExprString(t, "if a == 1 then 2 else 3")
	ifx, ok := x.(*ast.IfExpr)
	if !ok {
		t.Fatalf("expected if expression, got %T", x)
	}
	if _, ok := ifx.Cond.(*ast.BinaryExpr); !ok {
		t.Errorf("expected binary condition, got %T", ifx.Cond)
	}
}

func TestTopLevelItems(t *testing.T) {
	const src = `
import other;
pkg main;
#define Linux

var g = 1;

pub struct Point { x i64, pub y i64 }

enum Color { pub Red, Green }

pub fn main() -> i64 {
	return 0;
}
`
	file, err := Parse("main.sprs", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(file.Items) != 7 {
		t.Fatalf("expected 7 items, got %d", len(file.Items))
	}
	if imp := file.Items[0].(*ast.Import); imp.Name != "other" {
		t.Errorf("expected import other, got %q", imp.Name)
	}
	if file.PkgName() != "main" {
		t.Errorf("expected pkg main, got %q", file.PkgName())
	}
	if pre := file.Items[2].(*ast.Preprocessor); pre.Directive != "Linux" {
		t.Errorf("expected Linux directive, got %q", pre.Directive)
	}
	st := file.Items[4].(*ast.StructItem).Decl
	if !st.Public || len(st.Fields) != 2 || st.Fields[0].Public || !st.Fields[1].Public {
		t.Errorf("unexpected struct decl: %+v", st)
	}
	en := file.Items[5].(*ast.EnumItem).Decl
	if en.Public || len(en.Variants) != 2 || !en.Variants[0].Public {
		t.Errorf("unexpected enum decl: %+v", en)
	}
	fn := file.Items[6].(*ast.FunctionItem).Func
	if fn.RetTy.Kind != ast.TypeI64 || !fn.Public {
		t.Errorf("unexpected function decl: %+v", fn)
	}
}

func TestWhileAndIfStmts(t *testing.T) {
	const src = `
fn main() {
	var i = 0;
	while i <= 2 {
		println!(i);
		i = i + 1;
	}
	if i == 3 { println!("y"); } else { println!("n"); }
}
`
	file, err := Parse("main.sprs", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	fn := file.Items[0].(*ast.FunctionItem).Func
	if len(fn.Body) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(fn.Body))
	}
	w := fn.Body[1].(*ast.WhileStmt)
	if len(w.Body) != 2 {
		t.Errorf("expected 2 loop body statements, got %d", len(w.Body))
	}
	if _, ok := w.Body[1].(*ast.AssignStmt); !ok {
		t.Errorf("expected assignment in loop body, got %T", w.Body[1])
	}
	ifs := fn.Body[2].(*ast.IfStmt)
	if len(ifs.Then) != 1 || len(ifs.Else) != 1 {
		t.Errorf("unexpected if statement arms: %+v", ifs)
	}
}

func TestBareVarConditions(t *testing.T) {
	// A brace after a bare variable condition opens the statement block, not
	// a struct literal, including for empty blocks and blocks starting with
	// an assignment.
	const src = `
fn main() {
	if ready {
	}
	if ready {
		n = 1;
	}
	while ready {
	}
}
`
	file, err := Parse("main.sprs", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	fn := file.Items[0].(*ast.FunctionItem).Func
	if len(fn.Body) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(fn.Body))
	}
	empty := fn.Body[0].(*ast.IfStmt)
	if _, ok := empty.Cond.(*ast.VarRef); !ok {
		t.Errorf("expected variable condition, got %T", empty.Cond)
	}
	if len(empty.Then) != 0 {
		t.Errorf("expected empty then block, got %d statements", len(empty.Then))
	}
	assign := fn.Body[1].(*ast.IfStmt)
	if _, ok := assign.Cond.(*ast.VarRef); !ok {
		t.Errorf("expected variable condition, got %T", assign.Cond)
	}
	if len(assign.Then) != 1 {
		t.Fatalf("expected 1 then statement, got %d", len(assign.Then))
	}
	if _, ok := assign.Then[0].(*ast.AssignStmt); !ok {
		t.Errorf("expected assignment in then block, got %T", assign.Then[0])
	}
	w := fn.Body[2].(*ast.WhileStmt)
	if _, ok := w.Cond.(*ast.VarRef); !ok {
		t.Errorf("expected variable condition, got %T", w.Cond)
	}
	if len(w.Body) != 0 {
		t.Errorf("expected empty loop body, got %d statements", len(w.Body))
	}
}

func TestStructInitInArgs(t *testing.T) {
	x := parseExprString(t, "mk(Point { x = 1 })")
	call, ok := x.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected call expression, got %T", x)
	}
	init, ok := call.Args[0].(*ast.StructInit)
	if !ok {
		t.Fatalf("expected struct literal argument, got %T", call.Args[0])
	}
	if init.Name != "Point" || len(init.Fields) != 1 {
		t.Errorf("unexpected struct literal: %+v", init)
	}
}

func TestParseErrorFormat(t *testing.T) {
	_, err := Parse("bad.sprs", "fn main( {\n}")
	if err == nil {
		t.Fatal("expected parse error")
	}
	perr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if perr.Line != 1 {
		t.Errorf("expected line 1, got %d", perr.Line)
	}
	msg := err.Error()
	if !strings.Contains(msg, "bad.sprs:1:") {
		t.Errorf("expected file:line:col prefix in %q", msg)
	}
	if !strings.Contains(msg, "^") {
		t.Errorf("expected caret in %q", msg)
	}
}
