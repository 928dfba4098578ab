// Package irgen provides IR-construction helpers for the runtime
// tagged-value representation shared by the lower package and its tests.
package irgen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Tags of the runtime tagged-value representation. A tagged value is a
// two-word record {tag: i32, data: i64}; consumers dispatch on tag.
const (
	TagInt    = 0
	TagFloat  = 1
	TagStr    = 2
	TagBool   = 3
	TagList   = 4
	TagRange  = 5
	TagUnit   = 6
	TagEnum   = 7
	TagStruct = 8

	// Sized numerics occupy 100..110.
	TagI8   = 100
	TagI16  = 101
	TagI32  = 102
	TagI64  = 103
	TagU8   = 104
	TagU16  = 105
	TagU32  = 106
	TagU64  = 107
	TagFP16 = 108
	TagFP32 = 109
	TagFP64 = 110
)

// NewValueType returns a fresh {i32, i64} tagged-value struct type, to be
// registered as a type definition of the module using it.
func NewValueType() *types.StructType {
	return types.NewStruct(types.I32, types.I64)
}

// TagPtr returns a pointer to the tag word of the tagged-value slot.
func TagPtr(block *ir.Block, valueType *types.StructType, slot value.Value) value.Value {
	return block.NewGetElementPtr(valueType, slot,
		constant.NewInt(types.I32, 0), constant.NewInt(types.I32, 0))
}

// DataPtr returns a pointer to the data word of the tagged-value slot.
func DataPtr(block *ir.Block, valueType *types.StructType, slot value.Value) value.Value {
	return block.NewGetElementPtr(valueType, slot,
		constant.NewInt(types.I32, 0), constant.NewInt(types.I32, 1))
}

// LoadTag loads the i32 tag word of the tagged-value slot.
func LoadTag(block *ir.Block, valueType *types.StructType, slot value.Value) value.Value {
	return block.NewLoad(types.I32, TagPtr(block, valueType, slot))
}

// LoadData loads the i64 data word of the tagged-value slot.
func LoadData(block *ir.Block, valueType *types.StructType, slot value.Value) value.Value {
	return block.NewLoad(types.I64, DataPtr(block, valueType, slot))
}

// StoreTag stores an i32 tag into the tag word of the tagged-value slot.
func StoreTag(block *ir.Block, valueType *types.StructType, slot value.Value, tag value.Value) {
	block.NewStore(tag, TagPtr(block, valueType, slot))
}

// StoreData stores an i64 into the data word of the tagged-value slot.
func StoreData(block *ir.Block, valueType *types.StructType, slot value.Value, data value.Value) {
	block.NewStore(data, DataPtr(block, valueType, slot))
}

// Tag returns the i32 constant of the given tag.
func Tag(tag int64) *constant.Int {
	return constant.NewInt(types.I32, tag)
}

// UnitConst returns the constant unit record {TagUnit, 0} of the given
// tagged-value type.
func UnitConst(valueType *types.StructType) *constant.Struct {
	return constant.NewStruct(valueType, Tag(TagUnit), constant.NewInt(types.I64, 0))
}
