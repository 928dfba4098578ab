package lower

import (
	"math"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"github.com/johmaru/sprs-sub000/ast"
	"github.com/johmaru/sprs-sub000/irgen"
)

// lowerFunction lowers the function declaration to LLVM IR, emitting to m.
func (gen *Generator) lowerFunction(fn *ast.Function) {
	funcName := fn.Ident
	if gen.main && funcName == "main" {
		funcName = entryName
	}
	f, ok := gen.funcs[funcName]
	if !ok {
		gen.Errorf("unable to locate indexed function %q", funcName)
		return
	}
	fgen := gen.newFuncGen(fn.Ident, fn.RetTy, f)
	fgen.lowerFuncBody(fn)
	gen.verifyFunc(funcName)
}

// verifyFunc checks that every basic block of the generated function has a
// terminator; an invalid function is removed from the module and reported.
func (gen *Generator) verifyFunc(funcName string) bool {
	f := gen.funcs[funcName]
	for _, block := range f.Blocks {
		if block.Term == nil {
			gen.Errorf("invalid generated function %q; block %q missing terminator", funcName, block.Name())
			for i, mf := range gen.m.Funcs {
				if mf == f {
					gen.m.Funcs = append(gen.m.Funcs[:i], gen.m.Funcs[i+1:]...)
					break
				}
			}
			delete(gen.funcs, funcName)
			return false
		}
	}
	return true
}

// lowerGlobalVar lowers a top-level variable declaration to a global tagged
// value. Only literal initializers are representable as LLVM constants; any
// other initializer expression is reported.
func (gen *Generator) lowerGlobalVar(decl *ast.VarDecl) {
	if _, ok := gen.globals[decl.Name]; ok {
		gen.Errorf("global variable %q already present", decl.Name)
		return
	}
	tag, data, ok := gen.constInit(decl.Value)
	if !ok {
		gen.Errorf("unsupported initializer expression %T of global variable %q", decl.Value, decl.Name)
		return
	}
	g := gen.m.NewGlobalDef(decl.Name, constant.NewStruct(gen.value, irgen.Tag(tag), data))
	gen.globals[decl.Name] = g
}

// constInit converts a literal expression to the {tag, data} constant pair
// of its tagged-value representation.
func (gen *Generator) constInit(x ast.Expr) (int64, constant.Constant, bool) {
	switch x := x.(type) {
	case *ast.NumberLit:
		return irgen.TagInt, constant.NewInt(types.I64, x.Value), true
	case *ast.FloatLit:
		bits := int64(math.Float64bits(x.Value))
		return irgen.TagFloat, constant.NewInt(types.I64, bits), true
	case *ast.StringLit:
		return irgen.TagStr, gen.stringData(x.Value), true
	case *ast.BoolLit:
		data := int64(0)
		if x.Value {
			data = 1
		}
		return irgen.TagBool, constant.NewInt(types.I64, data), true
	case *ast.UnitLit:
		return irgen.TagUnit, constant.NewInt(types.I64, 0), true
	}
	return 0, nil, false
}
