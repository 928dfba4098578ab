package lower

import (
	"fmt"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/johmaru/sprs-sub000/ast"
	"github.com/johmaru/sprs-sub000/irgen"
)

// newSlot allocates a fresh tagged-value stack slot in the entry block.
func (fgen *funcGen) newSlot() value.Value {
	return fgen.entry.NewAlloca(fgen.gen.value)
}

// emitSlot allocates a slot and stores the given tag and data words.
func (fgen *funcGen) emitSlot(tag int64, data value.Value) value.Value {
	slot := fgen.newSlot()
	irgen.StoreTag(fgen.cur, fgen.gen.value, slot, irgen.Tag(tag))
	irgen.StoreData(fgen.cur, fgen.gen.value, slot, data)
	return slot
}

// loadTag loads the tag word of a slot.
func (fgen *funcGen) loadTag(slot value.Value) value.Value {
	return irgen.LoadTag(fgen.cur, fgen.gen.value, slot)
}

// loadData loads the data word of a slot.
func (fgen *funcGen) loadData(slot value.Value) value.Value {
	return irgen.LoadData(fgen.cur, fgen.gen.value, slot)
}

// copySlot allocates a fresh slot and copies the tag and data words of src
// into it.
func (fgen *funcGen) copySlot(src value.Value) value.Value {
	dst := fgen.newSlot()
	irgen.StoreTag(fgen.cur, fgen.gen.value, dst, fgen.loadTag(src))
	irgen.StoreData(fgen.cur, fgen.gen.value, dst, fgen.loadData(src))
	return dst
}

// moveFrom applies the move-on-use rewrite to a source slot: if its tag is
// String, List or Range the tag is rewritten to Unit, making the
// destination of the preceding read the sole owner of the heap payload.
func (fgen *funcGen) moveFrom(src value.Value) {
	tag := fgen.loadTag(src)
	isStr := fgen.cur.NewICmp(enum.IPredEQ, tag, irgen.Tag(irgen.TagStr))
	isList := fgen.cur.NewICmp(enum.IPredEQ, tag, irgen.Tag(irgen.TagList))
	isRange := fgen.cur.NewICmp(enum.IPredEQ, tag, irgen.Tag(irgen.TagRange))
	isHeap := fgen.cur.NewOr(fgen.cur.NewOr(isStr, isList), isRange)
	newTag := fgen.cur.NewSelect(isHeap, irgen.Tag(irgen.TagUnit), tag)
	irgen.StoreTag(fgen.cur, fgen.gen.value, src, newTag)
}

// stringPtr interns a string literal in the module and returns its i8
// pointer constant.
func (gen *Generator) stringPtr(s string) constant.Constant {
	g, ok := gen.strs[s]
	if !ok {
		name := fmt.Sprintf(".str.%d", len(gen.strs))
		arr := constant.NewCharArrayFromString(s + "\x00")
		g = gen.m.NewGlobalDef(name, arr)
		g.Immutable = true
		g.Linkage = enum.LinkagePrivate
		gen.strs[s] = g
	}
	zero := constant.NewInt(types.I64, 0)
	return constant.NewGetElementPtr(g.ContentType, g, zero, zero)
}

// stringData returns the interned literal's i8 pointer as an i64 constant
// for the data word of a String-tagged value.
func (gen *Generator) stringData(s string) constant.Constant {
	return constant.NewPtrToInt(gen.stringPtr(s), types.I64)
}

// zeroValue returns the zero constant of a first-class LLVM type.
func zeroValue(t types.Type) constant.Constant {
	switch t := t.(type) {
	case *types.IntType:
		return constant.NewInt(t, 0)
	case *types.FloatType:
		return constant.NewFloat(t, 0)
	case *types.PointerType:
		return constant.NewNull(t)
	}
	return constant.NewZeroInitializer(t)
}

// nativeFromSlot converts a tagged-value slot to the native LLVM value of
// the given declared Sprs type, for use at function boundaries. A Unit
// target yields nil (void).
func (fgen *funcGen) nativeFromSlot(slot value.Value, t ast.Type) value.Value {
	switch t.Kind {
	case ast.TypeNone, ast.TypeAny, ast.TypeStruct:
		return fgen.cur.NewLoad(fgen.gen.value, slot)
	case ast.TypeInt, ast.TypeEnum, ast.TypeI64, ast.TypeU64:
		return fgen.loadData(slot)
	case ast.TypeBool:
		return fgen.cur.NewTrunc(fgen.loadData(slot), types.I1)
	case ast.TypeStr:
		return fgen.cur.NewIntToPtr(fgen.loadData(slot), types.NewPointer(types.I8))
	case ast.TypeUnit:
		return nil
	case ast.TypeFloat, ast.TypeFP64:
		return fgen.cur.NewBitCast(fgen.loadData(slot), types.Double)
	case ast.TypeI8, ast.TypeI16, ast.TypeI32, ast.TypeU8, ast.TypeU16, ast.TypeU32:
		return fgen.cur.NewTrunc(fgen.loadData(slot), sizedIntType(t))
	case ast.TypeFP16, ast.TypeFP32:
		bits := fgen.cur.NewTrunc(fgen.loadData(slot), floatBitsType(t))
		return fgen.cur.NewBitCast(bits, sizedFloatType(t))
	}
	return fgen.cur.NewLoad(fgen.gen.value, slot)
}

// slotFromNative converts a native LLVM value returned by a callee back
// into a fresh tagged-value slot: the correct tag is set and the bits are
// stored in the data word. Integers zero-extend to 64, floats bit-cast to
// integer bits, pointers ptrtoint to 64.
func (fgen *funcGen) slotFromNative(v value.Value, t ast.Type) value.Value {
	switch t.Kind {
	case ast.TypeNone, ast.TypeAny, ast.TypeStruct:
		slot := fgen.newSlot()
		fgen.cur.NewStore(v, slot)
		return slot
	case ast.TypeInt:
		return fgen.emitSlot(irgen.TagInt, v)
	case ast.TypeEnum:
		return fgen.emitSlot(irgen.TagEnum, v)
	case ast.TypeBool:
		return fgen.emitSlot(irgen.TagBool, fgen.cur.NewZExt(v, types.I64))
	case ast.TypeStr:
		return fgen.emitSlot(irgen.TagStr, fgen.cur.NewPtrToInt(v, types.I64))
	case ast.TypeUnit:
		return fgen.emitSlot(irgen.TagUnit, constant.NewInt(types.I64, 0))
	case ast.TypeFloat:
		return fgen.emitSlot(irgen.TagFloat, fgen.cur.NewBitCast(v, types.I64))
	case ast.TypeI64, ast.TypeU64:
		return fgen.emitSlot(tagOf(t), v)
	case ast.TypeI8, ast.TypeI16, ast.TypeI32, ast.TypeU8, ast.TypeU16, ast.TypeU32:
		return fgen.emitSlot(tagOf(t), fgen.cur.NewZExt(v, types.I64))
	case ast.TypeFP64:
		return fgen.emitSlot(tagOf(t), fgen.cur.NewBitCast(v, types.I64))
	case ast.TypeFP16, ast.TypeFP32:
		bits := fgen.cur.NewBitCast(v, floatBitsType(t))
		return fgen.emitSlot(tagOf(t), fgen.cur.NewZExt(bits, types.I64))
	}
	slot := fgen.newSlot()
	fgen.cur.NewStore(v, slot)
	return slot
}
