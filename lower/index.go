package lower

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"

	"github.com/johmaru/sprs-sub000/ast"
)

// entryName is the symbol the main module's user `main` function compiles
// to; the generated C-ABI `int main()` wrapper calls it.
const entryName = "_sprs_main"

// indexFile indexes function declarations of the source file and creates
// scaffolding IR function declarations (without bodies but with types), so
// call sites resolve regardless of declaration order.
func (gen *Generator) indexFile() {
	for _, item := range gen.file.Items {
		if item, ok := item.(*ast.FunctionItem); ok {
			gen.indexFunction(item.Func)
		}
	}
}

// indexFunction creates a scaffolding IR function declaration of the Sprs
// function declaration. Every parameter is a pointer to a caller-owned
// tagged-value slot, so all functions have uniform pointer-taking calling
// conventions for AST-level callers; the return type follows the declared
// Sprs return type.
func (gen *Generator) indexFunction(fn *ast.Function) {
	funcName := fn.Ident
	if gen.main && funcName == "main" {
		funcName = entryName
	}
	valuePtr := types.NewPointer(gen.value)
	var params []*ir.Param
	for _, name := range fn.Params {
		params = append(params, ir.NewParam(name, valuePtr))
	}
	retType := gen.irRetType(fn.RetTy)
	f := gen.m.NewFunc(funcName, retType, params...)
	if prev, ok := gen.funcs[funcName]; ok {
		gen.Errorf("function %q already present; prev `%v`, new `%v`", funcName, prev, f)
		return
	}
	gen.funcs[funcName] = f
	if funcName != fn.Ident {
		gen.funcs[fn.Ident] = f
	}
	gen.sigs[fn.Ident] = FuncSig{
		Params: len(fn.Params),
		RetTy:  fn.RetTy,
		Public: fn.Public,
	}
}

// externFunc resolves a cross-module call to a previously compiled module's
// public function, declaring an extern prototype in the current module on
// first use so the reference resolves at link time.
func (gen *Generator) externFunc(module, fn string) (*ir.Func, FuncSig, error) {
	key := module + "." + fn
	sig, ok := gen.externs[key]
	if !ok {
		return nil, FuncSig{}, gen.Errorf("unknown function %s.%s", module, fn)
	}
	if f, ok := gen.externDecls[key]; ok {
		return f, sig, nil
	}
	// A local function of the same bare name would collide with the imported
	// symbol at link time.
	if _, ok := gen.funcs[fn]; ok {
		return nil, FuncSig{}, gen.Errorf("function %q collides with imported function %s.%s", fn, module, fn)
	}
	valuePtr := types.NewPointer(gen.value)
	var params []*ir.Param
	for i := 0; i < sig.Params; i++ {
		params = append(params, ir.NewParam("", valuePtr))
	}
	f := gen.m.NewFunc(fn, gen.irRetType(sig.RetTy), params...)
	gen.externDecls[key] = f
	return f, sig, nil
}
