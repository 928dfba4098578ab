package lower

import (
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

// lowerBinaryExpr lowers an arithmetic or comparison expression to LLVM IR,
// emitting to f.
func (fgen *funcGen) lowerBinaryExpr(x *ast.BinaryExpr) (value.Value, error) {
	lhs, err := fgen.lowerExpr(x.X)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	rhs, err := fgen.lowerExpr(x.Y)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	switch x.Op {
	case token.Plus:
		return fgen.lowerAdd(lhs, rhs), nil
	case token.Minus, token.Star, token.Slash, token.Percent:
		// The remaining arithmetic operators assume integer tags and
		// operate on the data words directly.
		a := fgen.loadData(lhs)
		b := fgen.loadData(rhs)
		var result value.Value
		switch x.Op {
		case token.Minus:
			result = fgen.cur.NewSub(a, b)
		case token.Star:
			result = fgen.cur.NewMul(a, b)
		case token.Slash:
			result = fgen.cur.NewSDiv(a, b)
		case token.Percent:
			result = fgen.cur.NewSRem(a, b)
		}
		return fgen.emitSlot(irgen.TagInt, result), nil
	case token.Eq, token.Neq, token.Lt, token.Gt, token.Leq, token.Geq:
		// Equality compares the data words; ordered comparisons use signed
		// integer comparison of the data words.
		var pred enum.IPred
		switch x.Op {
		case token.Eq:
			pred = enum.IPredEQ
		case token.Neq:
			pred = enum.IPredNE
		case token.Lt:
			pred = enum.IPredSLT
		case token.Gt:
			pred = enum.IPredSGT
		case token.Leq:
			pred = enum.IPredSLE
		case token.Geq:
			pred = enum.IPredSGE
		}
		cmp := fgen.cur.NewICmp(pred, fgen.loadData(lhs), fgen.loadData(rhs))
		return fgen.emitSlot(irgen.TagBool, fgen.cur.NewZExt(cmp, types.I64)), nil
	}
	return nil, errors.Errorf("support for %q binary expression not implemented", x.Op)
}

// lowerAdd lowers `+`. Addition dispatches on the operand tags at runtime:
// Integer operands use integer addition, String operands produce a fresh
// concatenated string via __strlen/__malloc. The lowering builds a two-arm
// branch on the tags and a phi at the merge.
func (fgen *funcGen) lowerAdd(lhs, rhs value.Value) value.Value {
	tag := fgen.loadTag(lhs)
	isInt := fgen.cur.NewICmp(enum.IPredEQ, tag, irgen.Tag(irgen.TagInt))
	intBlock := fgen.block("add.int")
	strBlock := fgen.block("add.str")
	endBlock := fgen.block("add.end")
	fgen.cur.NewCondBr(isInt, intBlock, strBlock)

	// Integer arm.
	fgen.cur = intBlock
	sum := fgen.cur.NewAdd(fgen.loadData(lhs), fgen.loadData(rhs))
	intSlot := fgen.emitSlot(irgen.TagInt, sum)
	intPred := fgen.cur
	fgen.cur.NewBr(endBlock)

	// String arm.
	fgen.cur = strBlock
	strSlot := fgen.emitConcat(lhs, rhs)
	strPred := fgen.cur
	fgen.cur.NewBr(endBlock)

	fgen.cur = endBlock
	return fgen.cur.NewPhi(ir.NewIncoming(intSlot, intPred), ir.NewIncoming(strSlot, strPred))
}

// emitConcat produces a fresh NUL-terminated concatenation of the two
// String-tagged operands. The runtime supplies __strlen and __malloc; the
// byte copies are inline loops.
func (fgen *funcGen) emitConcat(lhs, rhs value.Value) value.Value {
	var (
		i8ptr = types.NewPointer(types.I8)
		one   = constant.NewInt(types.I64, 1)
		zero  = constant.NewInt(types.I64, 0)
	)
	p1 := fgen.cur.NewIntToPtr(fgen.loadData(lhs), i8ptr)
	p2 := fgen.cur.NewIntToPtr(fgen.loadData(rhs), i8ptr)
	l1 := fgen.cur.NewCall(fgen.gen.rt.strlen, p1)
	l2 := fgen.cur.NewCall(fgen.gen.rt.strlen, p2)
	total := fgen.cur.NewAdd(l1, l2)
	buf := fgen.cur.NewCall(fgen.gen.rt.malloc, fgen.cur.NewAdd(total, one))

	// Copy lhs bytes to buf[0..l1).
	idx := fgen.entry.NewAlloca(types.I64)
	fgen.cur.NewStore(zero, idx)
	fgen.emitCopyLoop(p1, buf, idx, l1, nil)
	// Copy rhs bytes to buf[l1..l1+l2).
	fgen.cur.NewStore(zero, idx)
	fgen.emitCopyLoop(p2, buf, idx, l2, l1)
	// NUL terminator.
	end := fgen.cur.NewGetElementPtr(types.I8, buf, total)
	fgen.cur.NewStore(constant.NewInt(types.I8, 0), end)

	return fgen.emitSlot(irgen.TagStr, fgen.cur.NewPtrToInt(buf, types.I64))
}

// emitCopyLoop copies n bytes from src to dst+offset using the given loop
// counter slot, which must hold zero on entry. A nil offset copies to dst
// directly.
func (fgen *funcGen) emitCopyLoop(src, dst, idx value.Value, n value.Value, offset value.Value) {
	condBlock := fgen.block("copy.cond")
	bodyBlock := fgen.block("copy.body")
	endBlock := fgen.block("copy.end")
	fgen.cur.NewBr(condBlock)

	fgen.cur = condBlock
	i := fgen.cur.NewLoad(types.I64, idx)
	fgen.cur.NewCondBr(fgen.cur.NewICmp(enum.IPredSLT, i, n), bodyBlock, endBlock)

	fgen.cur = bodyBlock
	i = fgen.cur.NewLoad(types.I64, idx)
	ch := fgen.cur.NewLoad(types.I8, fgen.cur.NewGetElementPtr(types.I8, src, i))
	var pos value.Value = i
	if offset != nil {
		pos = fgen.cur.NewAdd(i, offset)
	}
	fgen.cur.NewStore(ch, fgen.cur.NewGetElementPtr(types.I8, dst, pos))
	fgen.cur.NewStore(fgen.cur.NewAdd(i, constant.NewInt(types.I64, 1)), idx)
	fgen.cur.NewBr(condBlock)

	fgen.cur = endBlock
}
