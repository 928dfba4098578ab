package lower

import (
	"fmt"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"github.com/johmaru/sprs-sub000/ast"
	"github.com/johmaru/sprs-sub000/irgen"
)

// variantRecordType returns the {name: i8*, variant_index: i64} record type
// of enum variant constants, registering its type definition on first use.
func (gen *Generator) variantRecordType() *types.StructType {
	if t, ok := gen.typeDefs["enum.variant"]; ok {
		return t.(*types.StructType)
	}
	t := types.NewStruct(types.NewPointer(types.I8), types.I64)
	gen.typeDefs["enum.variant"] = t
	return t
}

// registerEnum registers an enum declaration and records its private
// variants for public-surface pruning.
func (gen *Generator) registerEnum(decl *ast.EnumDecl) {
	if _, ok := gen.enums[decl.Name]; ok {
		gen.Errorf("enum %q already present", decl.Name)
		return
	}
	gen.enums[decl.Name] = &enumInfo{decl: decl}
	for _, variant := range decl.Variants {
		if !variant.Public {
			gen.privates = append(gen.privates, decl.Name+"."+variant.Name)
		}
	}
}

// lowerEnumGlobals compiles a top-level enum to globally-addressable
// constant records, one per variant, and promotes each `Enum.Variant` name
// to an enum-tagged value in global storage (scope 0).
func (gen *Generator) lowerEnumGlobals(decl *ast.EnumDecl) {
	recTy := gen.variantRecordType()
	for i, variant := range decl.Variants {
		dotted := decl.Name + "." + variant.Name
		rec := gen.m.NewGlobalDef(dotted, constant.NewStruct(recTy,
			gen.stringPtr(decl.Name), constant.NewInt(types.I64, int64(i))))
		rec.Immutable = true
		tagged := gen.m.NewGlobalDef(dotted+".v", constant.NewStruct(gen.value,
			irgen.Tag(irgen.TagEnum), constant.NewPtrToInt(rec, types.I64)))
		gen.globals[dotted] = tagged
	}
}

// lowerEnumStmt compiles a block-scope enum: the variant records still live
// in module globals, but each `Enum.Variant` name binds to a function-entry
// allocation scoped to the enclosing block.
func (fgen *funcGen) lowerEnumStmt(stmt *ast.EnumStmt) {
	gen := fgen.gen
	decl := stmt.Decl
	if _, ok := gen.enums[decl.Name]; ok {
		gen.Errorf("enum %q already present", decl.Name)
		return
	}
	gen.enums[decl.Name] = &enumInfo{decl: decl}
	recTy := gen.variantRecordType()
	for i, variant := range decl.Variants {
		dotted := decl.Name + "." + variant.Name
		recName := fmt.Sprintf("%s.%s.%d", fgen.name, dotted, i)
		rec := gen.m.NewGlobalDef(recName, constant.NewStruct(recTy,
			gen.stringPtr(decl.Name), constant.NewInt(types.I64, int64(i))))
		rec.Immutable = true
		slot := fgen.emitSlot(irgen.TagEnum, constant.NewPtrToInt(rec, types.I64))
		fgen.bindOnly(dotted, slot, ast.Type{Kind: ast.TypeEnum})
	}
}
