// Package fields 负责枚举结构体中可序列化的字段并永久缓存结果。
//
// 字段顺序必须在两端完全一致：按声明路径（嵌入结构体展开后的下标序列）稳定排序。
package fields

import (
	"reflect"
	"slices"
	"sync"
)

// TagName 为控制字段序列化行为的结构体标签名，`codec:"-"` 表示不序列化。
const TagName = "codec"

// Field 描述一个可序列化字段。
type Field struct {
	// Name 为字段名；被展开的嵌入字段使用其自身的名字。
	Name string
	// Index 为 reflect.Value.FieldByIndex 使用的下标路径。
	Index []int
	// Type 为字段的声明类型。
	Type reflect.Type
	// Token 为字段在最终顺序中的位置。
	Token int
}

// Reflector 缓存每个结构体类型的字段列表。
//
// 缓存结果只依赖于类型本身，并发首次计算时可能重复工作，但结果一致。
type Reflector struct {
	cache sync.Map // reflect.Type -> []Field
}

func NewReflector() *Reflector {
	return &Reflector{}
}

// FieldsOf 返回 t 的有序字段列表，t 不是结构体时返回 nil。
// 调用方不得修改返回的切片。
func (r *Reflector) FieldsOf(t reflect.Type) []Field {
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	if v, ok := r.cache.Load(t); ok {
		return v.([]Field)
	}
	fields := collect(t, nil, nil)
	slices.SortStableFunc(fields, func(a, b Field) int {
		return slices.Compare(a.Index, b.Index)
	})
	for i := range fields {
		fields[i].Token = i
	}
	actual, _ := r.cache.LoadOrStore(t, fields)
	return actual.([]Field)
}

// Len 返回已缓存的类型数。
func (r *Reflector) Len() int {
	n := 0
	r.cache.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// collect 深度优先展开嵌入结构体；visiting 用于防止自引用嵌入导致的无限递归。
func collect(t reflect.Type, prefix []int, visiting []reflect.Type) []Field {
	if slices.Contains(visiting, t) {
		return nil
	}
	visiting = append(visiting, t)

	var out []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Tag.Get(TagName) == "-" {
			continue
		}
		index := append(slices.Clone(prefix), i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			out = append(out, collect(sf.Type, index, visiting)...)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		out = append(out, Field{
			Name:  sf.Name,
			Index: index,
			Type:  sf.Type,
		})
	}
	return out
}

// Names 返回 t 的字段名，用于构建模块的字符串清单。
func (r *Reflector) Names(t reflect.Type) []string {
	fields := r.FieldsOf(t)
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	return names
}
