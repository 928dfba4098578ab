package lower

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"

	"github.com/johmaru/sprs-sub000/ast"
	"github.com/johmaru/sprs-sub000/irgen"
)

// registerStruct registers a struct declaration at module scope: each field
// name gets an index and the LLVM struct is assembled from the lowered
// field types.
func (gen *Generator) registerStruct(decl *ast.StructDecl) {
	if _, ok := gen.structs[decl.Name]; ok {
		gen.Errorf("struct %q already present", decl.Name)
		return
	}
	var fieldTypes []types.Type
	index := make(map[string]int)
	for i, field := range decl.Fields {
		fieldTypes = append(fieldTypes, gen.irFieldType(field.Ty))
		index[field.Name] = i
		if !field.Public {
			gen.privates = append(gen.privates, decl.Name+"."+field.Name)
		}
	}
	typ := types.NewStruct(fieldTypes...)
	gen.typeDefs[decl.Name] = typ
	gen.structs[decl.Name] = &structInfo{decl: decl, typ: typ, index: index}
}

// fieldOf resolves a field access against the registered struct layouts,
// using the inferred static type of the base expression.
func (fgen *funcGen) fieldOf(x *ast.FieldAccess) (*structInfo, *ast.Field, bool) {
	base := fgen.inferType(x.X)
	if base.Kind != ast.TypeStruct {
		return nil, nil, false
	}
	info, ok := fgen.gen.structs[base.Name]
	if !ok {
		return nil, nil, false
	}
	i, ok := info.index[x.Field]
	if !ok {
		return nil, nil, false
	}
	return info, info.decl.Fields[i], true
}

// lowerFieldAccess lowers `base.field`. A dotted name that resolves in the
// scope table (an enum variant such as Color.Red) takes priority; otherwise
// the base must be a struct-typed value and the field loads through a
// getelementptr with the pre-computed field index.
func (fgen *funcGen) lowerFieldAccess(x *ast.FieldAccess) (value.Value, error) {
	if base, ok := x.X.(*ast.VarRef); ok {
		if l, ok := fgen.lookup(base.Name + "." + x.Field); ok {
			// Enum variants are shared constants; hand the consumer a copy so
			// binding or moving never touches the variant's slot.
			return fgen.copySlot(l.slot), nil
		}
	}
	info, field, ok := fgen.fieldOf(x)
	if !ok {
		return nil, fgen.gen.Errorf("bad field access %q", x.Field)
	}
	slot, err := fgen.lowerExpr(x.X)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	payload := fgen.cur.NewIntToPtr(fgen.loadData(slot), types.NewPointer(info.typ))
	fieldPtr := fgen.cur.NewGetElementPtr(info.typ, payload,
		constant.NewInt(types.I32, 0), constant.NewInt(types.I32, int64(info.index[field.Name])))
	v := fgen.cur.NewLoad(fgen.gen.irFieldType(field.Ty), fieldPtr)
	return fgen.slotFromNative(v, field.Ty), nil
}

// lowerStructInit lowers a struct literal: the payload is heap-allocated
// via __malloc, each listed field is converted to its native type and
// stored, unlisted fields are zeroed, and the result slot is tagged Struct.
func (fgen *funcGen) lowerStructInit(x *ast.StructInit) (value.Value, error) {
	info, ok := fgen.gen.structs[x.Name]
	if !ok {
		return nil, fgen.gen.Errorf("unknown struct %q", x.Name)
	}
	// Every field type lowers to at most one word; eight bytes per field
	// covers the natural struct layout.
	size := int64(8 * len(info.decl.Fields))
	if size == 0 {
		size = 8
	}
	raw := fgen.cur.NewCall(fgen.gen.rt.malloc, constant.NewInt(types.I64, size))
	payload := fgen.cur.NewBitCast(raw, types.NewPointer(info.typ))

	seen := make(map[string]bool)
	for _, init := range x.Fields {
		i, ok := info.index[init.Name]
		if !ok {
			return nil, fgen.gen.Errorf("struct %q has no field %q", x.Name, init.Name)
		}
		seen[init.Name] = true
		slot, err := fgen.lowerExpr(init.Value)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		field := info.decl.Fields[i]
		fieldPtr := fgen.cur.NewGetElementPtr(info.typ, payload,
			constant.NewInt(types.I32, 0), constant.NewInt(types.I32, int64(i)))
		// Unit fields widen to the tagged record (see irFieldType).
		var v value.Value
		if field.Ty.Kind == ast.TypeUnit {
			v = fgen.cur.NewLoad(fgen.gen.value, slot)
		} else {
			v = fgen.nativeFromSlot(slot, field.Ty)
		}
		fgen.cur.NewStore(v, fieldPtr)
	}
	for i, field := range info.decl.Fields {
		if seen[field.Name] {
			continue
		}
		fieldPtr := fgen.cur.NewGetElementPtr(info.typ, payload,
			constant.NewInt(types.I32, 0), constant.NewInt(types.I32, int64(i)))
		fgen.cur.NewStore(zeroValue(fgen.gen.irFieldType(field.Ty)), fieldPtr)
	}
	return fgen.emitSlot(irgen.TagStruct, fgen.cur.NewPtrToInt(raw, types.I64)), nil
}
