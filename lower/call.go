package lower

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"

	"github.com/johmaru/sprs-sub000/ast"
	"github.com/johmaru/sprs-sub000/irgen"
)

// lowerCallExpr lowers a call to a function of the current module.
func (fgen *funcGen) lowerCallExpr(x *ast.CallExpr) (value.Value, error) {
	callee, ok := fgen.gen.funcs[x.Name]
	if !ok {
		return nil, fgen.gen.Errorf("undefined function %q", x.Name)
	}
	sig, ok := fgen.gen.sigs[x.Name]
	if !ok {
		sig = FuncSig{Params: len(x.Args), RetTy: ast.Type{Kind: ast.TypeAny}}
	}
	if len(x.Args) != sig.Params {
		return nil, fgen.gen.Errorf("function %q takes %d arguments, got %d", x.Name, sig.Params, len(x.Args))
	}
	return fgen.emitCall(callee, sig, x.Args)
}

// lowerModuleAccess lowers a `module.fn(args)` cross-module call, resolving
// through the loader's visible scope of previously compiled modules.
func (fgen *funcGen) lowerModuleAccess(x *ast.ModuleAccess) (value.Value, error) {
	callee, sig, err := fgen.gen.externFunc(x.Module, x.Fn)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(x.Args) != sig.Params {
		return nil, fgen.gen.Errorf("function %s.%s takes %d arguments, got %d",
			x.Module, x.Fn, sig.Params, len(x.Args))
	}
	return fgen.emitCall(callee, sig, x.Args)
}

// emitCall evaluates each argument to a pointer, copies its tag and data
// into a fresh temp slot, applies the move-on-use rewrite to bare variable
// arguments, passes the temp pointers, and converts the callee's native
// return value back into a tagged slot.
func (fgen *funcGen) emitCall(callee *ir.Func, sig FuncSig, args []ast.Expr) (value.Value, error) {
	var irArgs []value.Value
	for _, arg := range args {
		slot, err := fgen.lowerExpr(arg)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		tmp := fgen.copySlot(slot)
		// Ownership of a heap payload transfers to the callee when the
		// argument is a bare variable reference.
		if _, ok := arg.(*ast.VarRef); ok {
			fgen.moveFrom(slot)
		}
		irArgs = append(irArgs, tmp)
	}
	result := fgen.cur.NewCall(callee, irArgs...)
	if types.Equal(callee.Sig.RetType, types.Void) {
		return fgen.emitSlot(irgen.TagUnit, constant.NewInt(types.I64, 0)), nil
	}
	return fgen.slotFromNative(result, sig.RetTy), nil
}
