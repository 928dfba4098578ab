package lower

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"

	"github.com/johmaru/sprs-sub000/ast"
	"github.com/johmaru/sprs-sub000/irgen"
)

// lowerMacroCall lowers the four macro calls the emitter intercepts before
// normal call lowering: println!, list_push!, clone! and cast!.
func (fgen *funcGen) lowerMacroCall(x *ast.CallExpr) (value.Value, error) {
	switch x.Name {
	case "println":
		return fgen.lowerPrintln(x)
	case "list_push":
		return fgen.lowerListPush(x)
	case "clone":
		return fgen.lowerClone(x)
	case "cast":
		return fgen.lowerCast(x)
	}
	return nil, fgen.gen.Errorf("unknown macro %s!", x.Name)
}

// lowerPrintln builds a transient list of the arguments and calls the
// runtime __println, which prints one line per element dispatching on tag.
// The transient list is dropped directly after the call.
func (fgen *funcGen) lowerPrintln(x *ast.CallExpr) (value.Value, error) {
	lp := fgen.cur.NewCall(fgen.gen.rt.listNew, constant.NewInt(types.I64, int64(len(x.Args))))
	for _, arg := range x.Args {
		slot, err := fgen.lowerExpr(arg)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		fgen.cur.NewCall(fgen.gen.rt.listPush, lp, fgen.loadTag(slot), fgen.loadData(slot))
	}
	fgen.cur.NewCall(fgen.gen.rt.println, lp)
	transient := fgen.emitSlot(irgen.TagList, fgen.cur.NewPtrToInt(lp, types.I64))
	fgen.cur.NewCall(fgen.gen.rt.drop, transient)
	return fgen.emitSlot(irgen.TagUnit, constant.NewInt(types.I64, 0)), nil
}

// lowerListPush loads {tag, data} from the value argument and invokes the
// runtime __list_push.
func (fgen *funcGen) lowerListPush(x *ast.CallExpr) (value.Value, error) {
	if len(x.Args) != 2 {
		return nil, fgen.gen.Errorf("list_push! takes 2 arguments, got %d", len(x.Args))
	}
	list, err := fgen.lowerExpr(x.Args[0])
	if err != nil {
		return nil, errors.WithStack(err)
	}
	elem, err := fgen.lowerExpr(x.Args[1])
	if err != nil {
		return nil, errors.WithStack(err)
	}
	lp := fgen.cur.NewIntToPtr(fgen.loadData(list), types.NewPointer(types.I8))
	fgen.cur.NewCall(fgen.gen.rt.listPush, lp, fgen.loadTag(elem), fgen.loadData(elem))
	return fgen.emitSlot(irgen.TagUnit, constant.NewInt(types.I64, 0)), nil
}

// lowerClone loads {tag, data} and invokes the runtime __clone, which deep
// copies strings, lists and ranges and is the identity for scalars. The
// returned record becomes a fresh independently owned value.
func (fgen *funcGen) lowerClone(x *ast.CallExpr) (value.Value, error) {
	if len(x.Args) != 1 {
		return nil, fgen.gen.Errorf("clone! takes 1 argument, got %d", len(x.Args))
	}
	src, err := fgen.lowerExpr(x.Args[0])
	if err != nil {
		return nil, errors.WithStack(err)
	}
	rec := fgen.cur.NewCall(fgen.gen.rt.clone, fgen.loadTag(src), fgen.loadData(src))
	slot := fgen.newSlot()
	fgen.cur.NewStore(rec, slot)
	return slot, nil
}

// lowerCast lowers cast!(value, type-atom), a static cast to a sized
// primitive tag. Integer-to-integer casts truncate or extend to the target
// width (zero-extend for u*, sign-extend for i*); float-to-integer rounds
// toward zero; integer-to-float converts via sitofp; float-to-float
// converts via fpext/fptrunc.
func (fgen *funcGen) lowerCast(x *ast.CallExpr) (value.Value, error) {
	if len(x.Args) != 2 {
		return nil, fgen.gen.Errorf("cast! takes 2 arguments, got %d", len(x.Args))
	}
	atom, ok := x.Args[1].(*ast.TypeAtom)
	if !ok {
		return nil, fgen.gen.Errorf("cast! target must be a sized numeric type name")
	}
	target := atom.Ty
	src, err := fgen.lowerExpr(x.Args[0])
	if err != nil {
		return nil, errors.WithStack(err)
	}
	srcTy := fgen.inferType(x.Args[0])
	srcIsFloat := srcTy.Kind == ast.TypeFloat || srcTy.IsSizedFloat()
	data := fgen.loadData(src)

	if target.IsSizedFloat() {
		var f value.Value
		if srcIsFloat {
			f = fgen.convertFloat(fgen.recoverFloat(data, srcTy), target)
		} else {
			f = fgen.cur.NewSIToFP(data, sizedFloatType(target))
		}
		bits := fgen.cur.NewBitCast(f, floatBitsType(target))
		if target.Kind == ast.TypeFP64 {
			return fgen.emitSlot(tagOf(target), bits), nil
		}
		return fgen.emitSlot(tagOf(target), fgen.cur.NewZExt(bits, types.I64)), nil
	}

	// Sized integer target.
	intTy := sizedIntType(target)
	var v value.Value
	switch {
	case srcIsFloat && target.IsUnsigned():
		v = fgen.cur.NewFPToUI(fgen.recoverFloat(data, srcTy), intTy)
	case srcIsFloat:
		v = fgen.cur.NewFPToSI(fgen.recoverFloat(data, srcTy), intTy)
	case types.Equal(intTy, types.I64):
		v = data
	default:
		v = fgen.cur.NewTrunc(data, intTy)
	}
	if types.Equal(intTy, types.I64) {
		return fgen.emitSlot(tagOf(target), v), nil
	}
	if target.IsUnsigned() {
		return fgen.emitSlot(tagOf(target), fgen.cur.NewZExt(v, types.I64)), nil
	}
	return fgen.emitSlot(tagOf(target), fgen.cur.NewSExt(v, types.I64)), nil
}

// recoverFloat rebuilds a double from the data word of a float-tagged
// value: fp64 and Float store the full 64 IEEE bits, fp32 and fp16 store
// the raw narrow bits zero-extended.
func (fgen *funcGen) recoverFloat(data value.Value, srcTy ast.Type) value.Value {
	switch srcTy.Kind {
	case ast.TypeFP32:
		bits := fgen.cur.NewTrunc(data, types.I32)
		return fgen.cur.NewFPExt(fgen.cur.NewBitCast(bits, types.Float), types.Double)
	case ast.TypeFP16:
		bits := fgen.cur.NewTrunc(data, types.I16)
		return fgen.cur.NewFPExt(fgen.cur.NewBitCast(bits, types.Half), types.Double)
	}
	return fgen.cur.NewBitCast(data, types.Double)
}

// convertFloat converts a double to the native type of the target sized
// float.
func (fgen *funcGen) convertFloat(d value.Value, target ast.Type) value.Value {
	switch target.Kind {
	case ast.TypeFP32, ast.TypeFP16:
		return fgen.cur.NewFPTrunc(d, sizedFloatType(target))
	}
	return d
}
