package lower_test

import (
	"strings"
	"testing"

	"github.com/llir/llvm/ir"

	"github.com/johmaru/sprs-sub000/ast"
	"github.com/johmaru/sprs-sub000/lower"
	"github.com/johmaru/sprs-sub000/parser"
)

// compileModule parses and lowers a single source file, returning the LLVM IR
// module and any errors reported during lowering.
func compileModule(t *testing.T, src string, opts ...lower.Option) (*ir.Module, []error) {
	t.Helper()
	file, err := parser.Parse("test.sprs", src)
	if err != nil {
		t.Fatalf("unable to parse source; %v", err)
	}
	var errs []error
	eh := func(err error) {
		errs = append(errs, err)
	}
	gen := lower.NewGenerator(eh, file, "test", opts...)
	return gen.Lower(), errs
}

// compile is like compileModule but returns the textual LLVM IR.
func compile(t *testing.T, src string, opts ...lower.Option) (string, []error) {
	t.Helper()
	m, errs := compileModule(t, src, opts...)
	return m.String(), errs
}

func TestEntryPoint(t *testing.T) {
	const src = `
fn main() {
	var x = 1;
}
`
	ll, errs := compile(t, src, lower.WithMain())
	if len(errs) > 0 {
		t.Fatalf("unexpected errors; %v", errs)
	}
	if !strings.Contains(ll, "define %value @_sprs_main()") {
		t.Errorf("user main not compiled as _sprs_main; module:\n%s", ll)
	}
	if !strings.Contains(ll, "define i32 @main()") {
		t.Errorf("missing C-ABI entry point wrapper; module:\n%s", ll)
	}
	if !strings.Contains(ll, "call %value @_sprs_main()") {
		t.Errorf("entry point does not invoke _sprs_main; module:\n%s", ll)
	}
}

func TestMoveOnUse(t *testing.T) {
	const src = `
fn main() {
	var a = "hello";
	var b = a;
}
`
	ll, errs := compile(t, src, lower.WithMain())
	if len(errs) > 0 {
		t.Fatalf("unexpected errors; %v", errs)
	}
	// Binding b to a rewrites a's tag through a heap-tag select.
	if !strings.Contains(ll, "select i1") {
		t.Errorf("missing move-on-use tag select; module:\n%s", ll)
	}
	// Both a and b are variable slots; both are dropped on scope exit.
	if got, want := strings.Count(ll, "call void @__drop("), 2; got != want {
		t.Errorf("drop call count mismatch; expected %d, got %d; module:\n%s", want, got, ll)
	}
}

func TestDropOnScopeExit(t *testing.T) {
	const src = `
fn main() {
	var xs = [1, 2, 3];
}
`
	ll, errs := compile(t, src, lower.WithMain())
	if len(errs) > 0 {
		t.Fatalf("unexpected errors; %v", errs)
	}
	if got, want := strings.Count(ll, "call void @__drop("), 1; got != want {
		t.Errorf("drop call count mismatch; expected %d, got %d; module:\n%s", want, got, ll)
	}
	if got, want := strings.Count(ll, "call void @__list_push("), 3; got != want {
		t.Errorf("list_push call count mismatch; expected %d, got %d; module:\n%s", want, got, ll)
	}
}

func TestReturnTypeMismatch(t *testing.T) {
	const src = `
fn f() -> fp32 {
	return 1;
}
`
	_, errs := compile(t, src)
	if len(errs) == 0 {
		t.Fatal("expected return type mismatch error, got none")
	}
	got := errs[0].Error()
	if !strings.Contains(got, `function "f" declared to return fp32`) {
		t.Errorf("unexpected error message %q", got)
	}
}

func TestStringConcat(t *testing.T) {
	const src = `
fn main() {
	var s = "foo" + "bar";
}
`
	ll, errs := compile(t, src, lower.WithMain())
	if len(errs) > 0 {
		t.Fatalf("unexpected errors; %v", errs)
	}
	// The string arm of + measures both operands and allocates the result.
	if got, want := strings.Count(ll, "call i64 @__strlen("), 2; got != want {
		t.Errorf("strlen call count mismatch; expected %d, got %d; module:\n%s", want, got, ll)
	}
	if !strings.Contains(ll, "call i8* @__malloc(") {
		t.Errorf("missing concat buffer allocation; module:\n%s", ll)
	}
}

func TestClone(t *testing.T) {
	const src = `
fn main() {
	var a = [1, 2];
	var b = clone!(a);
}
`
	ll, errs := compile(t, src, lower.WithMain())
	if len(errs) > 0 {
		t.Fatalf("unexpected errors; %v", errs)
	}
	if !strings.Contains(ll, "call %value @__clone(") {
		t.Errorf("missing clone runtime call; module:\n%s", ll)
	}
	// clone! duplicates instead of moving, and both lists are dropped.
	if got, want := strings.Count(ll, "call void @__drop("), 2; got != want {
		t.Errorf("drop call count mismatch; expected %d, got %d; module:\n%s", want, got, ll)
	}
}

func TestPrintln(t *testing.T) {
	const src = `
fn main() {
	println!("x", 42);
}
`
	ll, errs := compile(t, src, lower.WithMain())
	if len(errs) > 0 {
		t.Fatalf("unexpected errors; %v", errs)
	}
	if !strings.Contains(ll, "call void @__println(") {
		t.Errorf("missing println runtime call; module:\n%s", ll)
	}
	// The transient argument list is dropped right after printing.
	if got, want := strings.Count(ll, "call void @__drop("), 1; got != want {
		t.Errorf("drop call count mismatch; expected %d, got %d; module:\n%s", want, got, ll)
	}
}

func TestCrossModuleCall(t *testing.T) {
	const src = `
fn main() {
	var x = util.add(1, 2);
}
`
	externs := lower.Externs{
		"util.add": {Params: 2, RetTy: ast.Type{Kind: ast.TypeInt}, Public: true},
	}
	ll, errs := compile(t, src, lower.WithMain(), lower.WithExterns(externs))
	if len(errs) > 0 {
		t.Fatalf("unexpected errors; %v", errs)
	}
	if !strings.Contains(ll, "declare i64 @add(") {
		t.Errorf("missing extern prototype; module:\n%s", ll)
	}
	if !strings.Contains(ll, "call i64 @add(") {
		t.Errorf("missing cross-module call; module:\n%s", ll)
	}
}

func TestLocalCollidesWithImport(t *testing.T) {
	const src = `
fn add(a, b) {
	return a + b;
}

fn main() {
	var x = util.add(1, 2);
}
`
	externs := lower.Externs{
		"util.add": {Params: 2, RetTy: ast.Type{Kind: ast.TypeInt}, Public: true},
	}
	_, errs := compile(t, src, lower.WithMain(), lower.WithExterns(externs))
	if len(errs) == 0 {
		t.Fatal("expected symbol collision error, got none")
	}
	if got := errs[0].Error(); !strings.Contains(got, `function "add" collides with imported function util.add`) {
		t.Errorf("unexpected error message %q", got)
	}
}

func TestAllocasHoistedToEntry(t *testing.T) {
	const src = `
fn main() {
	var n = 0;
	while n < 3 {
		var s = "a" + "b";
		n = n + 1;
	}
}
`
	m, errs := compileModule(t, src, lower.WithMain())
	if len(errs) > 0 {
		t.Fatalf("unexpected errors; %v", errs)
	}
	// Slots allocated in loop bodies must live in the entry block, or each
	// iteration grows the stack frame.
	for _, f := range m.Funcs {
		for i, block := range f.Blocks {
			if i == 0 {
				continue
			}
			for _, inst := range block.Insts {
				if _, ok := inst.(*ir.InstAlloca); ok {
					t.Errorf("alloca outside entry block of %q, in block %q", f.Name(), block.Name())
				}
			}
		}
	}
}

func TestCallArity(t *testing.T) {
	const src = `
fn add(a, b) {
	return a + b;
}

fn main() {
	add(1);
}
`
	_, errs := compile(t, src, lower.WithMain())
	if len(errs) == 0 {
		t.Fatal("expected arity error, got none")
	}
	got := errs[0].Error()
	if !strings.Contains(got, `function "add" takes 2 arguments, got 1`) {
		t.Errorf("unexpected error message %q", got)
	}
}

func TestGlobalVar(t *testing.T) {
	const src = `
var answer = 42;

fn main() {
	println!(answer);
}
`
	ll, errs := compile(t, src, lower.WithMain())
	if len(errs) > 0 {
		t.Fatalf("unexpected errors; %v", errs)
	}
	if !strings.Contains(ll, `@answer = global %value { i32 0, i64 42 }`) {
		t.Errorf("missing global variable definition; module:\n%s", ll)
	}
}

func TestEnumGlobals(t *testing.T) {
	const src = `
enum Color {
	Red,
	pub Green,
}

fn main() {
	var c = Color.Red;
}
`
	ll, errs := compile(t, src, lower.WithMain())
	if len(errs) > 0 {
		t.Fatalf("unexpected errors; %v", errs)
	}
	if !strings.Contains(ll, `@Color.Red`) || !strings.Contains(ll, `@Color.Green`) {
		t.Errorf("missing enum variant records; module:\n%s", ll)
	}
}

func TestUndefinedVariable(t *testing.T) {
	const src = `
fn main() {
	var x = y;
}
`
	_, errs := compile(t, src, lower.WithMain())
	if len(errs) == 0 {
		t.Fatal("expected undefined variable error, got none")
	}
	if got := errs[0].Error(); !strings.Contains(got, `undefined variable "y"`) {
		t.Errorf("unexpected error message %q", got)
	}
}

func TestPublics(t *testing.T) {
	const src = `
pub fn add(a, b) -> int {
	return a + b;
}

fn helper() {
}
`
	file, err := parser.Parse("util.sprs", src)
	if err != nil {
		t.Fatalf("unable to parse source; %v", err)
	}
	gen := lower.NewGenerator(func(err error) { t.Error(err) }, file, "util")
	gen.Lower()
	publics := gen.Publics()
	if _, ok := publics["util.add"]; !ok {
		t.Errorf("public function missing from exports; got %v", publics)
	}
	if _, ok := publics["util.helper"]; ok {
		t.Errorf("private function leaked into exports; got %v", publics)
	}
}
