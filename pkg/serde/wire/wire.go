// Package wire 定义对象编解码器的线上基本单元：类型标识、驻留字符串引用，
// 以及按固定宽度小端序读写原始值的 Writer/Reader。
//
// 所有整数一律小端序；长度前缀统一为 int32 且整体偏移 1，0 表示 nil。
package wire

import (
	"fmt"
	"math"
)

const (
	// OriginNull 表示空类型（nil 值）。
	OriginNull uint8 = 0
	// OriginCustom 表示内置符号表中的类型。
	OriginCustom uint8 = 1

	// MaxToken 为 24 位 token 的最大值。
	MaxToken = 1<<24 - 1
	// MaxModuleSlot 为可用的最大模块槽位，origin 字节需要额外占用 1 和 0。
	MaxModuleSlot = math.MaxUint8 - 1

	// StringSentinel 作为字符串长度出现时，表示后面跟随的是驻留字符串引用。
	StringSentinel int32 = math.MaxInt32
	// MaxInlineStringLen 为内联字符串允许的最大字节数（不含）。
	MaxInlineStringLen = 32768

	// MaxVariants 为多态判别字节可以寻址的最大实现类型数。
	MaxVariants = 250

	DiscriminantNull  uint8 = 0
	DiscriminantExact uint8 = 1
	// DiscriminantBase 为实现类型列表下标的偏移量：判别字节 = 下标 + 2。
	DiscriminantBase uint8 = 2

	// MaxCollectionLen 限制读取时单个集合声明的元素个数，超出视为流已失步。
	MaxCollectionLen = 1 << 24
)

// TypeID 是类型在线上的紧凑标识。
//
// 打包为 4 字节：高 8 位为 origin，低 24 位为 token。
//   - origin == 0：nil
//   - origin == 1：内置符号表，token 为表内下标
//   - origin == slot+1：第 slot 个模块，token 为类型在模块内的声明序号（从 1 开始）
type TypeID struct {
	Origin uint8
	Token  uint32
}

// NullTypeID 为 nil 值的类型标识。
var NullTypeID = TypeID{}

// CustomTypeID 返回内置符号表第 index 项的类型标识。
func CustomTypeID(index int) TypeID {
	return TypeID{Origin: OriginCustom, Token: uint32(index)}
}

// ModuleTypeID 返回模块 slot 中声明序号为 token 的类型标识。
func ModuleTypeID(slot int, token uint32) TypeID {
	return TypeID{Origin: uint8(slot + 1), Token: token}
}

func (id TypeID) IsNull() bool { return id.Origin == OriginNull }

func (id TypeID) IsCustom() bool { return id.Origin == OriginCustom }

// Slot 返回模块槽位；仅当 origin >= 2 时有意义。
func (id TypeID) Slot() int { return int(id.Origin) - 1 }

func (id TypeID) Pack() uint32 {
	return uint32(id.Origin)<<24 | id.Token&MaxToken
}

func UnpackTypeID(v uint32) TypeID {
	return TypeID{Origin: uint8(v >> 24), Token: v & MaxToken}
}

func (id TypeID) String() string {
	switch {
	case id.IsNull():
		return "null"
	case id.IsCustom():
		return fmt.Sprintf("custom:%d", id.Token)
	default:
		return fmt.Sprintf("module[%d]:%d", id.Slot(), id.Token)
	}
}

// InternedString 指向某个槽位字符串表中的一项。
type InternedString struct {
	Slot  uint8
	Index uint32
}

func (s InternedString) Pack() int32 {
	return int32(uint32(s.Slot)<<24 | s.Index&MaxToken)
}

func UnpackInternedString(v int32) InternedString {
	u := uint32(v)
	return InternedString{Slot: uint8(u >> 24), Index: u & MaxToken}
}

func (s InternedString) String() string {
	return fmt.Sprintf("str[%d]:%d", s.Slot, s.Index)
}
