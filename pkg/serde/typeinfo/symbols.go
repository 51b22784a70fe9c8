package typeinfo

import (
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/blang/semver/v4"
)

// SymbolTableVersion 为内置符号表的版本。
// 表内容（条目或其顺序）发生任何变化时都必须提升版本，握手时两端据此判断是否兼容。
var SymbolTableVersion = semver.MustParse("1.0.0")

// SymbolKind 区分内置符号表中的具体类型与泛型定义。
type SymbolKind uint8

const (
	// SymbolConcrete 为具体类型，标识之后没有附加内容。
	SymbolConcrete SymbolKind = iota
	// SymbolSlice 为数组标记：随后是 1 字节 rank 和元素类型。
	SymbolSlice
	// SymbolArray 为定长数组：随后是 uint32 长度和元素类型。
	SymbolArray
	// SymbolMap 随后依次是键类型和值类型。
	SymbolMap
	// SymbolPointer 为可空包装，随后是元素类型。
	SymbolPointer
)

// Symbol 为内置符号表中的一项。
type Symbol struct {
	Name string
	Kind SymbolKind
	// Type 仅对 SymbolConcrete 有效。
	Type reflect.Type
}

var (
	symbols     []Symbol
	symbolIndex = make(map[reflect.Type]int)
	kindIndex   = make(map[SymbolKind]int)
)

func init() {
	symbols = []Symbol{
		{Name: "[]", Kind: SymbolSlice},
		{Name: "[N]", Kind: SymbolArray},
		{Name: "map", Kind: SymbolMap},
		{Name: "*", Kind: SymbolPointer},
		concrete[any]("any"),
		concrete[bool]("bool"),
		concrete[int8]("int8"),
		concrete[uint8]("uint8"),
		concrete[int16]("int16"),
		concrete[uint16]("uint16"),
		concrete[int32]("int32"),
		concrete[uint32]("uint32"),
		concrete[int64]("int64"),
		concrete[uint64]("uint64"),
		concrete[int]("int"),
		concrete[uint]("uint"),
		concrete[float32]("float32"),
		concrete[float64]("float64"),
		concrete[complex64]("complex64"),
		concrete[complex128]("complex128"),
		concrete[string]("string"),
		concrete[time.Time]("time.Time"),
		concrete[time.Duration]("time.Duration"),
	}
	// 按名称排序，保证表的下标只由条目集合决定。
	slices.SortFunc(symbols, func(a, b Symbol) int { return strings.Compare(a.Name, b.Name) })
	for i, s := range symbols {
		if s.Kind == SymbolConcrete {
			symbolIndex[s.Type] = i
		} else {
			kindIndex[s.Kind] = i
		}
	}
}

func concrete[T any](name string) Symbol {
	return Symbol{Name: name, Kind: SymbolConcrete, Type: reflect.TypeFor[T]()}
}

// Symbols 返回内置符号表的副本。
func Symbols() []Symbol {
	return slices.Clone(symbols)
}

// SymbolOf 返回具体类型 t 在内置符号表中的下标。
func SymbolOf(t reflect.Type) (int, bool) {
	i, ok := symbolIndex[t]
	return i, ok
}

// SymbolFor 返回泛型定义 kind 在内置符号表中的下标。
func SymbolFor(kind SymbolKind) int {
	return kindIndex[kind]
}

func symbolAt(index uint32) (Symbol, bool) {
	if int(index) >= len(symbols) {
		return Symbol{}, false
	}
	return symbols[index], true
}
