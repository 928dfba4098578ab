package lower

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"github.com/johmaru/sprs-sub000/ast"
	"github.com/johmaru/sprs-sub000/irgen"
)

// FuncSig describes a function visible across modules: its parameter count
// and declared return type.
type FuncSig struct {
	Params int
	RetTy  ast.Type
	Public bool
}

// Externs is the cross-module symbol table maintained by the driver, keyed
// by "module.fn".
type Externs map[string]FuncSig

// Generator keeps track of top-level entities when translating from Sprs AST
// to LLVM IR representation.
type Generator struct {
	// Error handler used to report errors encountered during compilation.
	eh func(error)
	// Source file being compiled.
	file *ast.File
	// Effective module name: the pkg name if declared, else the file stem.
	modName string
	// main reports whether this is the entry module, whose `main` function
	// is compiled as `_sprs_main` behind a generated C-ABI entry point.
	main bool
	// Functions exported by previously compiled modules.
	externs Externs
	// LLVM IR module being generated.
	m *ir.Module

	// value is the tagged-value struct type {i32, i64} of this module.
	value *types.StructType
	// rt holds the declared runtime ABI functions.
	rt runtimeFuncs

	// Index of IR top-level entities.

	// typeDefs maps from type identifier (without '%' prefix) to type
	// definition.
	typeDefs map[string]types.Type
	// globals maps from global identifier (without '@' prefix) to global
	// declarations and defintions.
	globals map[string]*ir.Global
	// funcs maps from global identifier (without '@' prefix) to function
	// declarations and defintions.
	funcs map[string]*ir.Func
	// externDecls maps "module.fn" to the extern prototypes declared in this
	// module for cross-module calls, kept apart from funcs so a local
	// function of the same name cannot capture the reference.
	externDecls map[string]*ir.Func
	// sigs maps function names to their Sprs signatures.
	sigs map[string]FuncSig
	// strs interns string literals per module, mapping literal value to its
	// global.
	strs map[string]*ir.Global
	// structs maps struct names to their registered layouts.
	structs map[string]*structInfo
	// enums maps enum names to their registered variants.
	enums map[string]*enumInfo
	// privates collects dotted names (Enum.Variant, Struct.Field) that must
	// be pruned from the loader's visible scope after this module compiles.
	privates []string
}

// runtimeFuncs holds the C-ABI runtime entry points declared in every
// module.
type runtimeFuncs struct {
	listNew  *ir.Func // __list_new(cap i64) -> i8*
	listPush *ir.Func // __list_push(list i8*, tag i32, data i64)
	listGet  *ir.Func // __list_get(list i8*, idx i64) -> value*
	rangeNew *ir.Func // __range_new(start, end i64) -> i8*
	println  *ir.Func // __println(list i8*)
	strlen   *ir.Func // __strlen(s i8*) -> i64
	malloc   *ir.Func // __malloc(size i64) -> i8*
	drop     *ir.Func // __drop(v value*)
	clone    *ir.Func // __clone(tag i32, data i64) -> value
	panic    *ir.Func // __panic(msg i8*) noreturn
}

// structInfo is the registered layout of a struct declaration.
type structInfo struct {
	decl *ast.StructDecl
	// typ is the LLVM struct assembled from the lowered field types.
	typ *types.StructType
	// index maps field names to their position in typ.
	index map[string]int
}

// enumInfo is the registered shape of an enum declaration.
type enumInfo struct {
	decl *ast.EnumDecl
}

// Option configures a Generator.
type Option func(*Generator)

// WithMain marks the module as the program entry module; its `main` function
// is renamed `_sprs_main` and a C-ABI `int main()` wrapper is generated.
func WithMain() Option {
	return func(gen *Generator) { gen.main = true }
}

// WithExterns provides the functions exported by previously compiled
// modules for cross-module call resolution.
func WithExterns(externs Externs) Option {
	return func(gen *Generator) { gen.externs = externs }
}

// NewGenerator returns a new generator for lowering the parsed source file
// to LLVM IR assembly. The error handler eh is invoked when an error is
// encountered during compilation.
func NewGenerator(eh func(error), file *ast.File, modName string, opts ...Option) *Generator {
	gen := &Generator{
		eh:          eh,
		file:        file,
		modName:     modName,
		externs:     make(Externs),
		m:           ir.NewModule(),
		value:       irgen.NewValueType(),
		typeDefs:    make(map[string]types.Type),
		globals:     make(map[string]*ir.Global),
		funcs:       make(map[string]*ir.Func),
		externDecls: make(map[string]*ir.Func),
		sigs:        make(map[string]FuncSig),
		strs:        make(map[string]*ir.Global),
		structs:     make(map[string]*structInfo),
		enums:       make(map[string]*enumInfo),
	}
	for _, opt := range opts {
		opt(gen)
	}
	gen.typeDefs["value"] = gen.value
	gen.declareRuntime()
	return gen
}

// declareRuntime declares the runtime ABI entry points in the module.
func (gen *Generator) declareRuntime() {
	var (
		i8ptr    = types.NewPointer(types.I8)
		valuePtr = types.NewPointer(gen.value)
	)
	gen.rt.listNew = gen.m.NewFunc("__list_new", i8ptr, ir.NewParam("cap", types.I64))
	gen.rt.listPush = gen.m.NewFunc("__list_push", types.Void,
		ir.NewParam("list", i8ptr), ir.NewParam("tag", types.I32), ir.NewParam("data", types.I64))
	gen.rt.listGet = gen.m.NewFunc("__list_get", valuePtr,
		ir.NewParam("list", i8ptr), ir.NewParam("idx", types.I64))
	gen.rt.rangeNew = gen.m.NewFunc("__range_new", i8ptr,
		ir.NewParam("start", types.I64), ir.NewParam("end", types.I64))
	gen.rt.println = gen.m.NewFunc("__println", types.Void, ir.NewParam("list", i8ptr))
	gen.rt.strlen = gen.m.NewFunc("__strlen", types.I64, ir.NewParam("s", i8ptr))
	gen.rt.malloc = gen.m.NewFunc("__malloc", i8ptr, ir.NewParam("size", types.I64))
	gen.rt.drop = gen.m.NewFunc("__drop", types.Void, ir.NewParam("v", valuePtr))
	gen.rt.clone = gen.m.NewFunc("__clone", gen.value,
		ir.NewParam("tag", types.I32), ir.NewParam("data", types.I64))
	gen.rt.panic = gen.m.NewFunc("__panic", types.Void, ir.NewParam("msg", i8ptr))
	gen.rt.panic.FuncAttrs = append(gen.rt.panic.FuncAttrs, enum.FuncAttrNoReturn)
}

// Module returns the LLVM IR module being generated.
func (gen *Generator) Module() *ir.Module {
	return gen.m
}

// ModName returns the effective module name.
func (gen *Generator) ModName() string {
	return gen.modName
}

// Publics returns the signatures of this module's public functions, keyed by
// "module.fn", for use by importing modules.
func (gen *Generator) Publics() Externs {
	externs := make(Externs)
	for name, sig := range gen.sigs {
		if sig.Public {
			externs[gen.modName+"."+name] = sig
		}
	}
	return externs
}

// Privates returns the dotted names bound to private enum variants and
// private struct fields; the loader removes these from its visible scope
// once this module's compilation completes.
func (gen *Generator) Privates() []string {
	return gen.privates
}
