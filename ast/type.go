package ast

// TypeKind enumerates the Sprs type tags.
type TypeKind int

const (
	TypeNone TypeKind = iota
	TypeAny
	TypeInt
	TypeFloat
	TypeBool
	TypeStr
	TypeUnit
	TypeEnum
	TypeStruct
	TypeI8
	TypeI16
	TypeI32
	TypeI64
	TypeU8
	TypeU16
	TypeU32
	TypeU64
	TypeFP16
	TypeFP32
	TypeFP64
)

var typeKindNames = [...]string{
	TypeNone:   "<none>",
	TypeAny:    "any",
	TypeInt:    "int",
	TypeFloat:  "float",
	TypeBool:   "bool",
	TypeStr:    "str",
	TypeUnit:   "unit",
	TypeEnum:   "enum",
	TypeStruct: "struct",
	TypeI8:     "i8",
	TypeI16:    "i16",
	TypeI32:    "i32",
	TypeI64:    "i64",
	TypeU8:     "u8",
	TypeU16:    "u16",
	TypeU32:    "u32",
	TypeU64:    "u64",
	TypeFP16:   "fp16",
	TypeFP32:   "fp32",
	TypeFP64:   "fp64",
}

// String returns the source spelling of the type kind.
func (k TypeKind) String() string {
	if int(k) < len(typeKindNames) {
		return typeKindNames[k]
	}
	return "<unknown>"
}

// Type is a Sprs type tag. Name is set only for TypeStruct.
type Type struct {
	Kind TypeKind
	Name string
}

// String returns the source spelling of the type.
func (t Type) String() string {
	if t.Kind == TypeStruct && t.Name != "" {
		return t.Name
	}
	return t.Kind.String()
}

// typeNames maps source spellings to type kinds.
var typeNames = map[string]TypeKind{
	"any":   TypeAny,
	"int":   TypeInt,
	"float": TypeFloat,
	"bool":  TypeBool,
	"str":   TypeStr,
	"unit":  TypeUnit,
	"enum":  TypeEnum,
	"i8":    TypeI8,
	"i16":   TypeI16,
	"i32":   TypeI32,
	"i64":   TypeI64,
	"u8":    TypeU8,
	"u16":   TypeU16,
	"u32":   TypeU32,
	"u64":   TypeU64,
	"fp16":  TypeFP16,
	"fp32":  TypeFP32,
	"fp64":  TypeFP64,
}

// TypeByName resolves a type name appearing in source. Names that are not
// builtin type spellings denote struct types.
func TypeByName(name string) Type {
	if kind, ok := typeNames[name]; ok {
		return Type{Kind: kind}
	}
	return Type{Kind: TypeStruct, Name: name}
}

// IsSizedNumeric reports whether the type is one of the eleven sized
// numeric types.
func (t Type) IsSizedNumeric() bool {
	return t.Kind >= TypeI8 && t.Kind <= TypeFP64
}

// IsSizedFloat reports whether the type is fp16, fp32 or fp64.
func (t Type) IsSizedFloat() bool {
	return t.Kind >= TypeFP16 && t.Kind <= TypeFP64
}

// IsUnsigned reports whether the type is one of the unsigned sized integer
// types.
func (t Type) IsUnsigned() bool {
	return t.Kind >= TypeU8 && t.Kind <= TypeU64
}
