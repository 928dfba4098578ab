// Package lower lowers Sprs source code in AST-form to LLVM IR assembly.
//
// Dynamic values are carried in the uniform tagged representation, a
// two-word {tag: i32, data: i64} record held in a stack slot. Every
// expression lowers to a pointer to such a slot; conversions to and from
// native LLVM types happen only at function boundaries. Heap ownership
// follows a move-on-use discipline: forwarding a variable with a String,
// List or Range payload rewrites the source slot's tag to Unit, every
// variable slot is handed to __drop on scope exit, and clone! duplicates
// instead of moving.
package lower

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/rickypai/natsort"

	"github.com/johmaru/sprs-sub000/ast"
)

// Lower lowers the source file to LLVM IR.
func (gen *Generator) Lower() *ir.Module {
	gen.lowerFile()
	// Append type definitions to module.
	var typeNames []string
	for typeName := range gen.typeDefs {
		typeNames = append(typeNames, typeName)
	}
	natsort.Strings(typeNames)
	for _, typeName := range typeNames {
		t := gen.typeDefs[typeName]
		gen.m.NewTypeDef(typeName, t)
	}
	return gen.m
}

// lowerFile lowers the source file to LLVM IR, emitting to m.
func (gen *Generator) lowerFile() {
	// Register struct and enum definitions before anything refers to them.
	for _, item := range gen.file.Items {
		switch item := item.(type) {
		case *ast.StructItem:
			gen.registerStruct(item.Decl)
		case *ast.EnumItem:
			gen.registerEnum(item.Decl)
		}
	}
	// Declare function prototypes so call sites resolve in any order.
	gen.indexFile()
	// Lower top-level declarations.
	for _, item := range gen.file.Items {
		gen.lowerItem(item)
	}
	if gen.main {
		gen.emitEntryPoint()
	}
}

// === [ Items ] ===============================================================

// lowerItem lowers the top-level item to LLVM IR, emitting to m.
func (gen *Generator) lowerItem(item ast.Item) {
	switch item := item.(type) {
	case *ast.Import, *ast.Package, *ast.Preprocessor:
		// Imports and pkg are handled by the driver; preprocessor
		// directives are gathered before emission.
	case *ast.VarItem:
		gen.lowerGlobalVar(item.Decl)
	case *ast.FunctionItem:
		gen.lowerFunction(item.Func)
	case *ast.StructItem:
		// registered up front.
	case *ast.EnumItem:
		gen.lowerEnumGlobals(item.Decl)
	default:
		gen.Errorf("support for item %T not implemented", item)
	}
}

// emitEntryPoint generates the C-ABI `int main()` wrapper that calls the
// compiled user function `_sprs_main` and returns 0.
func (gen *Generator) emitEntryPoint() {
	userMain, ok := gen.funcs[entryName]
	if !ok {
		gen.Errorf("module %q has no main function", gen.modName)
		return
	}
	f := gen.m.NewFunc("main", types.I32)
	entry := f.NewBlock("entry")
	entry.NewCall(userMain)
	entry.NewRet(constant.NewInt(types.I32, 0))
}
