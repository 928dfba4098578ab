package lower

import (
	"github.com/llir/llvm/ir/types"

	"github.com/johmaru/sprs-sub000/ast"
	"github.com/johmaru/sprs-sub000/irgen"
	"github.com/johmaru/sprs-sub000/token"
)

// tagOf returns the runtime tag of the given Sprs type.
func tagOf(t ast.Type) int64 {
	switch t.Kind {
	case ast.TypeInt:
		return irgen.TagInt
	case ast.TypeFloat:
		return irgen.TagFloat
	case ast.TypeStr:
		return irgen.TagStr
	case ast.TypeBool:
		return irgen.TagBool
	case ast.TypeUnit:
		return irgen.TagUnit
	case ast.TypeEnum:
		return irgen.TagEnum
	case ast.TypeStruct:
		return irgen.TagStruct
	case ast.TypeI8:
		return irgen.TagI8
	case ast.TypeI16:
		return irgen.TagI16
	case ast.TypeI32:
		return irgen.TagI32
	case ast.TypeI64:
		return irgen.TagI64
	case ast.TypeU8:
		return irgen.TagU8
	case ast.TypeU16:
		return irgen.TagU16
	case ast.TypeU32:
		return irgen.TagU32
	case ast.TypeU64:
		return irgen.TagU64
	case ast.TypeFP16:
		return irgen.TagFP16
	case ast.TypeFP32:
		return irgen.TagFP32
	case ast.TypeFP64:
		return irgen.TagFP64
	}
	return irgen.TagUnit
}

// sizedIntType returns the native LLVM integer type of a sized integer
// Sprs type.
func sizedIntType(t ast.Type) *types.IntType {
	switch t.Kind {
	case ast.TypeI8, ast.TypeU8:
		return types.I8
	case ast.TypeI16, ast.TypeU16:
		return types.I16
	case ast.TypeI32, ast.TypeU32:
		return types.I32
	}
	return types.I64
}

// sizedFloatType returns the native LLVM float type of a sized float Sprs
// type.
func sizedFloatType(t ast.Type) *types.FloatType {
	switch t.Kind {
	case ast.TypeFP16:
		return types.Half
	case ast.TypeFP32:
		return types.Float
	}
	return types.Double
}

// floatBitsType returns the integer type holding the raw bits of a sized
// float Sprs type.
func floatBitsType(t ast.Type) *types.IntType {
	switch t.Kind {
	case ast.TypeFP16:
		return types.I16
	case ast.TypeFP32:
		return types.I32
	}
	return types.I64
}

// irRetType returns the LLVM return type of a function with the given
// declared Sprs return type. The default (no declaration) is the two-word
// tagged-value record.
func (gen *Generator) irRetType(t ast.Type) types.Type {
	switch t.Kind {
	case ast.TypeNone, ast.TypeAny, ast.TypeStruct:
		return gen.value
	case ast.TypeInt, ast.TypeEnum, ast.TypeI64, ast.TypeU64:
		return types.I64
	case ast.TypeBool:
		return types.I1
	case ast.TypeStr:
		return types.NewPointer(types.I8)
	case ast.TypeUnit:
		return types.Void
	case ast.TypeFloat:
		return types.Double
	case ast.TypeI8, ast.TypeI16, ast.TypeI32, ast.TypeU8, ast.TypeU16, ast.TypeU32:
		return sizedIntType(t)
	case ast.TypeFP16, ast.TypeFP32, ast.TypeFP64:
		return sizedFloatType(t)
	}
	return gen.value
}

// irFieldType returns the LLVM type of a struct field with the given
// declared Sprs type; the mapping is the return-type mapping with Unit
// widened to the tagged-value record.
func (gen *Generator) irFieldType(t ast.Type) types.Type {
	if t.Kind == ast.TypeUnit {
		return gen.value
	}
	return gen.irRetType(t)
}

// inferType infers the static Sprs type of an expression from literals and
// recorded variable annotations. TypeAny stands for "dynamic, unknown until
// runtime".
func (fgen *funcGen) inferType(x ast.Expr) ast.Type {
	switch x := x.(type) {
	case *ast.NumberLit:
		return ast.Type{Kind: ast.TypeInt}
	case *ast.FloatLit:
		return ast.Type{Kind: ast.TypeFloat}
	case *ast.StringLit:
		return ast.Type{Kind: ast.TypeStr}
	case *ast.BoolLit:
		return ast.Type{Kind: ast.TypeBool}
	case *ast.UnitLit:
		return ast.Type{Kind: ast.TypeUnit}
	case *ast.TypeAtom:
		return x.Ty
	case *ast.VarRef:
		if l, ok := fgen.lookup(x.Name); ok {
			return l.ty
		}
		return ast.Type{Kind: ast.TypeAny}
	case *ast.BinaryExpr:
		return fgen.inferBinaryType(x)
	case *ast.IncDecExpr:
		return fgen.inferType(x.X)
	case *ast.IfExpr:
		return fgen.inferType(x.Then)
	case *ast.CallExpr:
		return fgen.inferCallType(x)
	case *ast.ModuleAccess:
		if sig, ok := fgen.gen.externs[x.Module+"."+x.Fn]; ok {
			return sig.RetTy
		}
		return ast.Type{Kind: ast.TypeAny}
	case *ast.FieldAccess:
		if _, field, ok := fgen.fieldOf(x); ok {
			return field.Ty
		}
		return ast.Type{Kind: ast.TypeAny}
	case *ast.StructInit:
		return ast.Type{Kind: ast.TypeStruct, Name: x.Name}
	}
	// Lists, ranges and index results are dynamic.
	return ast.Type{Kind: ast.TypeAny}
}

func (fgen *funcGen) inferBinaryType(x *ast.BinaryExpr) ast.Type {
	switch x.Op {
	case token.Eq, token.Neq, token.Lt, token.Gt, token.Leq, token.Geq:
		return ast.Type{Kind: ast.TypeBool}
	case token.Plus:
		if t := fgen.inferType(x.X); t.Kind == ast.TypeStr {
			return t
		}
		return ast.Type{Kind: ast.TypeInt}
	}
	return ast.Type{Kind: ast.TypeInt}
}

func (fgen *funcGen) inferCallType(x *ast.CallExpr) ast.Type {
	if x.Macro {
		switch x.Name {
		case "clone":
			if len(x.Args) == 1 {
				return fgen.inferType(x.Args[0])
			}
		case "cast":
			if len(x.Args) == 2 {
				if atom, ok := x.Args[1].(*ast.TypeAtom); ok {
					return atom.Ty
				}
			}
		}
		return ast.Type{Kind: ast.TypeAny}
	}
	if sig, ok := fgen.gen.sigs[x.Name]; ok {
		return sig.RetTy
	}
	return ast.Type{Kind: ast.TypeAny}
}

// checkReturnType cross-checks the inferred type of a return expression
// against the declared return type. Mismatches are compile-time errors
// naming both sides.
func (fgen *funcGen) checkReturnType(declared, inferred ast.Type) error {
	if inferred.Kind == ast.TypeAny || inferred.Kind == ast.TypeNone {
		return nil
	}
	isIntish := func(t ast.Type) bool {
		return t.Kind == ast.TypeInt || t.IsSizedNumeric() && !t.IsSizedFloat()
	}
	isFloatish := func(t ast.Type) bool {
		return t.Kind == ast.TypeFloat || t.IsSizedFloat()
	}
	switch {
	case isFloatish(declared) && isIntish(inferred):
		return fgen.gen.Errorf("function %q declared to return %s but return expression has type %s",
			fgen.name, declared, inferred)
	case declared.Kind == ast.TypeBool && inferred.Kind != ast.TypeBool:
		return fgen.gen.Errorf("function %q declared to return %s but return expression has type %s",
			fgen.name, declared, inferred)
	case declared.Kind == ast.TypeStr && (isIntish(inferred) || isFloatish(inferred)):
		return fgen.gen.Errorf("function %q declared to return %s but return expression has type %s",
			fgen.name, declared, inferred)
	}
	return nil
}
