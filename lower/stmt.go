package lower

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"github.com/johmaru/sprs-sub000/ast"
	"github.com/johmaru/sprs-sub000/irgen"
)

// lowerStmt lowers the Sprs statement to LLVM IR, emitting to f.
func (fgen *funcGen) lowerStmt(stmt ast.Stmt) {
	switch stmt := stmt.(type) {
	case *ast.VarStmt:
		fgen.lowerVarStmt(stmt)
	case *ast.AssignStmt:
		fgen.lowerAssignStmt(stmt)
	case *ast.ExprStmt:
		if _, err := fgen.lowerExpr(stmt.X); err != nil {
			fgen.gen.eh(err)
		}
	case *ast.IfStmt:
		fgen.lowerIfStmt(stmt)
	case *ast.WhileStmt:
		fgen.lowerWhileStmt(stmt)
	case *ast.ReturnStmt:
		fgen.lowerReturnStmt(stmt)
	case *ast.EnumStmt:
		fgen.lowerEnumStmt(stmt)
	default:
		fgen.gen.Errorf("support for statement %T not implemented", stmt)
	}
}

// lowerVarStmt lowers a variable declaration. A bare variable on the
// right-hand side is copied into a fresh slot and the source slot's tag is
// rewritten to Unit, transferring ownership of any heap payload; any other
// initializer expression's result slot is adopted as the variable's slot.
func (fgen *funcGen) lowerVarStmt(stmt *ast.VarStmt) {
	slot, err := fgen.lowerExpr(stmt.Decl.Value)
	if err != nil {
		fgen.gen.eh(err)
		return
	}
	ty := fgen.inferType(stmt.Decl.Value)
	if _, ok := stmt.Decl.Value.(*ast.VarRef); ok {
		dst := fgen.copySlot(slot)
		fgen.moveFrom(slot)
		slot = dst
	}
	fgen.bind(stmt.Decl.Name, slot, ty)
}

// lowerAssignStmt lowers `NAME = EXPR;`. The move-on-use rewrite applies to
// a bare variable right-hand side, as for var declarations.
func (fgen *funcGen) lowerAssignStmt(stmt *ast.AssignStmt) {
	l, ok := fgen.lookup(stmt.Name)
	if !ok {
		fgen.gen.Errorf("undefined variable %q", stmt.Name)
		return
	}
	slot, err := fgen.lowerExpr(stmt.X)
	if err != nil {
		fgen.gen.eh(err)
		return
	}
	irgen.StoreTag(fgen.cur, fgen.gen.value, l.slot, fgen.loadTag(slot))
	irgen.StoreData(fgen.cur, fgen.gen.value, l.slot, fgen.loadData(slot))
	if _, ok := stmt.X.(*ast.VarRef); ok {
		fgen.moveFrom(slot)
	}
	l.ty = fgen.inferType(stmt.X)
}

// lowerIfStmt lowers an if statement: the same three-block diamond as the
// conditional expression, without the merging phi. Each arm is its own
// scope.
func (fgen *funcGen) lowerIfStmt(stmt *ast.IfStmt) {
	cond, err := fgen.lowerExpr(stmt.Cond)
	if err != nil {
		fgen.gen.eh(err)
		return
	}
	nonzero := fgen.cur.NewICmp(enum.IPredNE, fgen.loadData(cond), constant.NewInt(types.I64, 0))
	thenBlock := fgen.block("if.then")
	elseBlock := fgen.block("if.else")
	endBlock := fgen.block("if.end")
	fgen.cur.NewCondBr(nonzero, thenBlock, elseBlock)

	fgen.cur = thenBlock
	fgen.pushScope()
	for _, s := range stmt.Then {
		fgen.lowerStmt(s)
	}
	fgen.popScope()
	if !fgen.terminated() {
		fgen.cur.NewBr(endBlock)
	}

	fgen.cur = elseBlock
	fgen.pushScope()
	for _, s := range stmt.Else {
		fgen.lowerStmt(s)
	}
	fgen.popScope()
	if !fgen.terminated() {
		fgen.cur.NewBr(endBlock)
	}

	fgen.cur = endBlock
}

// lowerWhileStmt lowers a head-condition loop with the tag-data zero test.
func (fgen *funcGen) lowerWhileStmt(stmt *ast.WhileStmt) {
	condBlock := fgen.block("while.cond")
	bodyBlock := fgen.block("while.body")
	endBlock := fgen.block("while.end")
	fgen.cur.NewBr(condBlock)

	fgen.cur = condBlock
	cond, err := fgen.lowerExpr(stmt.Cond)
	if err != nil {
		fgen.gen.eh(err)
		return
	}
	nonzero := fgen.cur.NewICmp(enum.IPredNE, fgen.loadData(cond), constant.NewInt(types.I64, 0))
	fgen.cur.NewCondBr(nonzero, bodyBlock, endBlock)

	fgen.cur = bodyBlock
	fgen.pushScope()
	for _, s := range stmt.Body {
		fgen.lowerStmt(s)
	}
	fgen.popScope()
	if !fgen.terminated() {
		fgen.cur.NewBr(condBlock)
	}

	fgen.cur = endBlock
}

// lowerReturnStmt lowers a return statement. The inferred type of the
// return expression is cross-checked against the declared return type,
// drops are emitted for all live scopes from innermost outward (excluding
// the parameter scope), and the result slot is converted to the function's
// native return type.
func (fgen *funcGen) lowerReturnStmt(stmt *ast.ReturnStmt) {
	if stmt.X == nil {
		fgen.dropAllScopes()
		fgen.emitDefaultRet()
		return
	}
	if fgen.retTy.Kind != ast.TypeNone {
		if err := fgen.checkReturnType(fgen.retTy, fgen.inferType(stmt.X)); err != nil {
			return
		}
	}
	slot, err := fgen.lowerExpr(stmt.X)
	if err != nil {
		fgen.gen.eh(err)
		return
	}
	// Returning a bare variable forwards its heap payload to the caller;
	// move out of the slot before the scope drops run.
	if _, ok := stmt.X.(*ast.VarRef); ok {
		tmp := fgen.copySlot(slot)
		fgen.moveFrom(slot)
		slot = tmp
	}
	fgen.dropAllScopes()
	result := fgen.nativeFromSlot(slot, fgen.retTy)
	fgen.cur.NewRet(result)
}
