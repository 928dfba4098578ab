package lower

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/johmaru/sprs-sub000/ast"
	"github.com/johmaru/sprs-sub000/irgen"
)

// funcGen is an LLVM IR generator for a given function.
type funcGen struct {
	// Module generator.
	gen *Generator
	// Sprs-level function name.
	name string
	// Declared return type; kind TypeNone when undeclared.
	retTy ast.Type
	// LLVM IR function being generated.
	f *ir.Func
	// Entry basic block of the function. All allocas are emitted here so
	// that loop bodies never re-execute them and -O1 mem2reg promotes them.
	entry *ir.Block
	// Current basic block being generated.
	cur *ir.Block
	// Scope stack; scopes[0] is the parameter scope of the function.
	scopes []*scope
	// Monotonic counter for basic block names.
	nblocks int
}

// scope is one level of the variable table: a map from name to its slot and
// static type, plus the tagged variable slots allocated in the scope in
// insertion order, for the drop discipline.
type scope struct {
	names map[string]*local
	slots []value.Value
}

// local is a scope entry: a pointer to the variable's tagged stack slot and
// its statically known type (TypeAny when dynamic).
type local struct {
	slot value.Value
	ty   ast.Type
}

// newFuncGen returns a new LLVM IR function generator for the given module
// generator.
func (gen *Generator) newFuncGen(name string, retTy ast.Type, f *ir.Func) *funcGen {
	return &funcGen{
		gen:   gen,
		name:  name,
		retTy: retTy,
		f:     f,
	}
}

// block creates a new basic block with a unique name derived from the given
// base and makes it current.
func (fgen *funcGen) block(base string) *ir.Block {
	fgen.nblocks++
	return fgen.f.NewBlock(fmt.Sprintf("%s.%d", base, fgen.nblocks))
}

// terminated reports whether the current basic block already has a
// terminator.
func (fgen *funcGen) terminated() bool {
	return fgen.cur.Term != nil
}

// === [ Scopes ] ==============================================================

// pushScope enters a new block scope.
func (fgen *funcGen) pushScope() {
	fgen.scopes = append(fgen.scopes, &scope{names: make(map[string]*local)})
}

// popScope exits the innermost scope. Unless the current block is already
// terminated by a return or branch, a __drop call is emitted for every
// tagged variable slot allocated in the scope, in reverse insertion order.
func (fgen *funcGen) popScope() {
	s := fgen.scopes[len(fgen.scopes)-1]
	if !fgen.terminated() {
		fgen.dropScope(s)
	}
	fgen.scopes = fgen.scopes[:len(fgen.scopes)-1]
}

// dropScope emits __drop calls for the scope's variable slots in reverse
// insertion order.
func (fgen *funcGen) dropScope(s *scope) {
	for i := len(s.slots) - 1; i >= 0; i-- {
		fgen.cur.NewCall(fgen.gen.rt.drop, s.slots[i])
	}
}

// dropAllScopes emits __drop calls for every live scope from innermost
// outward, excluding the function's parameter scope. Used before a return.
func (fgen *funcGen) dropAllScopes() {
	for i := len(fgen.scopes) - 1; i >= 1; i-- {
		fgen.dropScope(fgen.scopes[i])
	}
}

// bind adds a variable to the innermost scope and registers its slot for
// dropping on scope exit.
func (fgen *funcGen) bind(name string, slot value.Value, ty ast.Type) {
	s := fgen.scopes[len(fgen.scopes)-1]
	s.names[name] = &local{slot: slot, ty: ty}
	s.slots = append(s.slots, slot)
}

// bindOnly adds a variable to the innermost scope without registering its
// slot for dropping. Used for parameters and enum constants.
func (fgen *funcGen) bindOnly(name string, slot value.Value, ty ast.Type) {
	s := fgen.scopes[len(fgen.scopes)-1]
	s.names[name] = &local{slot: slot, ty: ty}
}

// lookup resolves a variable name through the scope stack from innermost
// outward, falling back to module globals (scope 0 holds enum constants
// promoted to global storage and top-level vars).
func (fgen *funcGen) lookup(name string) (*local, bool) {
	for i := len(fgen.scopes) - 1; i >= 0; i-- {
		if l, ok := fgen.scopes[i].names[name]; ok {
			return l, true
		}
	}
	if g, ok := fgen.gen.globals[name]; ok {
		return &local{slot: g, ty: ast.Type{Kind: ast.TypeAny}}, true
	}
	return nil, false
}

// === [ Function bodies ] =====================================================

// lowerFuncBody lowers the function body to LLVM IR, emitting to f.
func (fgen *funcGen) lowerFuncBody(fn *ast.Function) {
	fgen.entry = fgen.f.NewBlock("entry")
	fgen.cur = fgen.entry
	// Parameter scope. Parameters arrive as pointers to caller-owned tagged
	// slots and are not dropped by the callee.
	fgen.pushScope()
	for i, name := range fn.Params {
		fgen.bindOnly(name, fgen.f.Params[i], ast.Type{Kind: ast.TypeAny})
	}
	// Body scope.
	fgen.pushScope()
	for _, stmt := range fn.Body {
		fgen.lowerStmt(stmt)
	}
	fgen.popScope()
	fgen.scopes = fgen.scopes[:0]
	// If no terminator exists at the end of the body, synthesize a return
	// of a Unit-tagged dummy.
	if !fgen.terminated() {
		fgen.emitDefaultRet()
	}
}

// emitDefaultRet terminates the current block with a zero value of the
// function's return type.
func (fgen *funcGen) emitDefaultRet() {
	retType := fgen.f.Sig.RetType
	switch {
	case types.Equal(retType, types.Void):
		fgen.cur.NewRet(nil)
	case types.Equal(retType, fgen.gen.value):
		fgen.cur.NewRet(irgen.UnitConst(fgen.gen.value))
	default:
		fgen.cur.NewRet(zeroValue(retType))
	}
}
