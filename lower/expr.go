package lower

import (
	"math"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"

	"github.com/johmaru/sprs-sub000/ast"
	"github.com/johmaru/sprs-sub000/irgen"
	"github.com/johmaru/sprs-sub000/token"
)

// lowerExpr lowers the Sprs expression to LLVM IR, emitting to f. Every
// expression lowers to a pointer to a two-word tagged-value stack slot.
func (fgen *funcGen) lowerExpr(x ast.Expr) (value.Value, error) {
	switch x := x.(type) {
	case *ast.NumberLit:
		return fgen.emitSlot(irgen.TagInt, constant.NewInt(types.I64, x.Value)), nil
	case *ast.FloatLit:
		bits := int64(math.Float64bits(x.Value))
		return fgen.emitSlot(irgen.TagFloat, constant.NewInt(types.I64, bits)), nil
	case *ast.StringLit:
		return fgen.emitSlot(irgen.TagStr, fgen.gen.stringData(x.Value)), nil
	case *ast.BoolLit:
		data := int64(0)
		if x.Value {
			data = 1
		}
		return fgen.emitSlot(irgen.TagBool, constant.NewInt(types.I64, data)), nil
	case *ast.UnitLit:
		return fgen.emitSlot(irgen.TagUnit, constant.NewInt(types.I64, 0)), nil
	case *ast.TypeAtom:
		return fgen.emitSlot(tagOf(x.Ty), constant.NewInt(types.I64, 0)), nil
	case *ast.VarRef:
		return fgen.lowerVarRef(x)
	case *ast.BinaryExpr:
		return fgen.lowerBinaryExpr(x)
	case *ast.IncDecExpr:
		return fgen.lowerIncDecExpr(x)
	case *ast.IfExpr:
		return fgen.lowerIfExpr(x)
	case *ast.CallExpr:
		if x.Macro {
			return fgen.lowerMacroCall(x)
		}
		return fgen.lowerCallExpr(x)
	case *ast.ListLit:
		return fgen.lowerListLit(x)
	case *ast.RangeExpr:
		return fgen.lowerRangeExpr(x)
	case *ast.IndexExpr:
		return fgen.lowerIndexExpr(x)
	case *ast.ModuleAccess:
		return fgen.lowerModuleAccess(x)
	case *ast.FieldAccess:
		return fgen.lowerFieldAccess(x)
	case *ast.StructInit:
		return fgen.lowerStructInit(x)
	}
	return nil, errors.Errorf("support for expression %T not implemented", x)
}

// lowerVarRef resolves a variable reference to its slot pointer. No copy is
// made; consumers that forward the value copy it and apply the move-on-use
// rewrite.
func (fgen *funcGen) lowerVarRef(x *ast.VarRef) (value.Value, error) {
	l, ok := fgen.lookup(x.Name)
	if !ok {
		return nil, fgen.gen.Errorf("undefined variable %q", x.Name)
	}
	return l.slot, nil
}

// lowerIncDecExpr lowers pre- and post- increment/decrement. The operand
// slot's data word is updated in place; a post-fix expression evaluates to
// the old value, a pre-fix one to the new value.
func (fgen *funcGen) lowerIncDecExpr(x *ast.IncDecExpr) (value.Value, error) {
	slot, err := fgen.lowerExpr(x.X)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	tag := fgen.loadTag(slot)
	old := fgen.loadData(slot)
	one := constant.NewInt(types.I64, 1)
	var updated value.Value
	if x.Op == token.Inc {
		updated = fgen.cur.NewAdd(old, one)
	} else {
		updated = fgen.cur.NewSub(old, one)
	}
	irgen.StoreData(fgen.cur, fgen.gen.value, slot, updated)
	result := old
	if !x.Post {
		result = updated
	}
	out := fgen.newSlot()
	irgen.StoreTag(fgen.cur, fgen.gen.value, out, tag)
	irgen.StoreData(fgen.cur, fgen.gen.value, out, result)
	return out, nil
}

// lowerIfExpr lowers a ternary conditional: a three-block diamond whose phi
// merges pointers to the then/else result slots.
func (fgen *funcGen) lowerIfExpr(x *ast.IfExpr) (value.Value, error) {
	cond, err := fgen.lowerExpr(x.Cond)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	nonzero := fgen.cur.NewICmp(enum.IPredNE, fgen.loadData(cond), constant.NewInt(types.I64, 0))
	thenBlock := fgen.block("if.then")
	elseBlock := fgen.block("if.else")
	endBlock := fgen.block("if.end")
	fgen.cur.NewCondBr(nonzero, thenBlock, elseBlock)

	fgen.cur = thenBlock
	thenSlot, err := fgen.lowerExpr(x.Then)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	thenPred := fgen.cur
	fgen.cur.NewBr(endBlock)

	fgen.cur = elseBlock
	elseSlot, err := fgen.lowerExpr(x.Else)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	elsePred := fgen.cur
	fgen.cur.NewBr(endBlock)

	fgen.cur = endBlock
	phi := fgen.cur.NewPhi(ir.NewIncoming(thenSlot, thenPred), ir.NewIncoming(elseSlot, elsePred))
	return phi, nil
}

// lowerListLit builds a list by invoking __list_new with the literal's
// length as capacity and pushing each element expression in order.
func (fgen *funcGen) lowerListLit(x *ast.ListLit) (value.Value, error) {
	lp := fgen.cur.NewCall(fgen.gen.rt.listNew, constant.NewInt(types.I64, int64(len(x.Elems))))
	for _, elem := range x.Elems {
		slot, err := fgen.lowerExpr(elem)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		fgen.cur.NewCall(fgen.gen.rt.listPush, lp, fgen.loadTag(slot), fgen.loadData(slot))
	}
	return fgen.emitSlot(irgen.TagList, fgen.cur.NewPtrToInt(lp, types.I64)), nil
}

// lowerRangeExpr calls __range_new(start, end); the range is inclusive of
// start and exclusive of end.
func (fgen *funcGen) lowerRangeExpr(x *ast.RangeExpr) (value.Value, error) {
	start, err := fgen.lowerExpr(x.Start)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	stop, err := fgen.lowerExpr(x.Stop)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	rp := fgen.cur.NewCall(fgen.gen.rt.rangeNew, fgen.loadData(start), fgen.loadData(stop))
	return fgen.emitSlot(irgen.TagRange, fgen.cur.NewPtrToInt(rp, types.I64)), nil
}

// lowerIndexExpr calls __list_get; the returned pointer aliases into the
// list's storage and serves directly as the result slot.
func (fgen *funcGen) lowerIndexExpr(x *ast.IndexExpr) (value.Value, error) {
	coll, err := fgen.lowerExpr(x.X)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	idx, err := fgen.lowerExpr(x.Index)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	lp := fgen.cur.NewIntToPtr(fgen.loadData(coll), types.NewPointer(types.I8))
	return fgen.cur.NewCall(fgen.gen.rt.listGet, lp, fgen.loadData(idx)), nil
}
