package typeinfo

import (
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/fields"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/wire"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

// Module 是一组显式登记的类型及其已知字符串清单。
//
// 模块在两端以相同顺序注册后获得相同的槽位，类型在模块内的声明顺序即为其 token。
// 模块构建期间的错误会被累积，在 Registry.AddModule 时统一返回。
type Module struct {
	name        string
	types       []reflect.Type
	tokens      map[reflect.Type]uint32
	strings     []string
	collections map[reflect.Type]*Collection
	err         error
}

func NewModule(name string) *Module {
	return &Module{
		name:        name,
		tokens:      make(map[reflect.Type]uint32),
		collections: make(map[reflect.Type]*Collection),
	}
}

// Register 将类型 T 登记到模块中。
func Register[T any](m *Module) *Module {
	return m.Add(reflect.TypeFor[T]())
}

func (m *Module) Name() string { return m.name }

// Types 返回按 token 排序的类型列表，下标 i 对应 token i+1。
func (m *Module) Types() []reflect.Type { return m.types }

// Err 返回构建模块过程中累积的第一个错误。
func (m *Module) Err() error { return m.err }

// Add 按声明顺序登记类型。
//
// 只接受具名类型；内置符号表中已有的类型、重复登记的类型会被拒绝。
func (m *Module) Add(types ...reflect.Type) *Module {
	for _, t := range types {
		if m.err != nil {
			return m
		}
		switch {
		case t == nil:
			m.err = merr.WrapErrParameterMissing("type", "module "+m.name)
		case t.Name() == "":
			m.err = merr.WrapErrUnsupportedType(t.String(), "only named types can be registered")
		case isBuiltin(t):
			m.err = merr.WrapErrParameterInvalidMsg("type %s is part of the builtin symbol table", t)
		case len(m.types) >= wire.MaxToken:
			m.err = merr.WrapErrNotImplemented("more than 2^24-1 types in one module", m.name)
		default:
			if _, ok := m.tokens[t]; ok {
				m.err = merr.WrapErrParameterInvalidMsg("type %s registered twice in module %s", t, m.name)
				continue
			}
			m.types = append(m.types, t)
			m.tokens[t] = uint32(len(m.types))
		}
	}
	return m
}

// AddStrings 向模块的字符串清单追加已知字符串。
func (m *Module) AddStrings(strs ...string) *Module {
	m.strings = append(m.strings, strs...)
	return m
}

// AddCollection 登记一个只读集合类型及其工厂函数，并把集合类型加入模块。
//
// factory 形如 func([]E) C 或 func(iter.Seq[E]) C；
// C 需要提供 Items() []E 或 All() iter.Seq[E] 方法用于枚举元素。
func (m *Module) AddCollection(factory any) *Module {
	if m.err != nil {
		return m
	}
	c, err := newCollection(factory)
	if err != nil {
		m.err = err
		return m
	}
	m.Add(c.Type)
	if m.err == nil {
		m.collections[c.Type] = c
	}
	return m
}

// manifest 返回模块的字符串清单：显式字符串、模块名、类型名以及结构体字段名。
func (m *Module) manifest(refl *fields.Reflector) []string {
	out := make([]string, 0, len(m.strings)+1+len(m.types)*4)
	out = append(out, m.strings...)
	out = append(out, m.name)
	for _, t := range m.types {
		out = append(out, t.Name())
	}
	for _, t := range m.types {
		out = append(out, refl.Names(t)...)
	}
	return out
}

func isBuiltin(t reflect.Type) bool {
	_, ok := symbolIndex[t]
	return ok
}

// Collection 描述一个通过工厂函数重建的只读集合类型。
type Collection struct {
	Type reflect.Type
	Elem reflect.Type

	factory   reflect.Value
	seqParam  bool
	itemsName string
	seqItems  bool
}

var boolType = reflect.TypeFor[bool]()

// seqElem 判断 t 是否形如 iter.Seq[E]，是则返回 E。
func seqElem(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() != reflect.Func || t.NumIn() != 1 || t.NumOut() != 0 {
		return nil, false
	}
	yield := t.In(0)
	if yield.Kind() != reflect.Func || yield.NumIn() != 1 || yield.NumOut() != 1 || yield.Out(0) != boolType {
		return nil, false
	}
	return yield.In(0), true
}

func newCollection(factory any) (*Collection, error) {
	fv := reflect.ValueOf(factory)
	ft := fv.Type()
	if fv.Kind() != reflect.Func || ft.NumIn() != 1 || ft.NumOut() != 1 || ft.IsVariadic() {
		return nil, merr.WrapErrParameterInvalidMsg("collection factory must be func([]E) C or func(iter.Seq[E]) C, got %s", ft)
	}
	c := &Collection{Type: ft.Out(0), factory: fv}
	param := ft.In(0)
	if param.Kind() == reflect.Slice {
		c.Elem = param.Elem()
	} else if elem, ok := seqElem(param); ok {
		c.Elem = elem
		c.seqParam = true
	} else {
		return nil, merr.WrapErrParameterInvalidMsg("collection factory parameter %s is neither []E nor iter.Seq[E]", param)
	}

	if m, ok := c.Type.MethodByName("Items"); ok && m.Type.NumIn() == 1 && m.Type.NumOut() == 1 &&
		m.Type.Out(0) == reflect.SliceOf(c.Elem) {
		c.itemsName = "Items"
	} else if m, ok := c.Type.MethodByName("All"); ok && m.Type.NumIn() == 1 && m.Type.NumOut() == 1 {
		if elem, ok := seqElem(m.Type.Out(0)); ok && elem == c.Elem {
			c.itemsName = "All"
			c.seqItems = true
		}
	}
	if c.itemsName == "" {
		return nil, errors.Wrapf(merr.ErrParameterInvalid,
			"collection %s must provide Items() []%s or All() iter.Seq[%s]", c.Type, c.Elem, c.Elem)
	}
	return c, nil
}

// Items 枚举集合 v 的全部元素，返回 []E。
func (c *Collection) Items(v reflect.Value) reflect.Value {
	out := v.MethodByName(c.itemsName).Call(nil)[0]
	if !c.seqItems {
		return out
	}
	items := reflect.MakeSlice(reflect.SliceOf(c.Elem), 0, 8)
	yield := reflect.MakeFunc(out.Type().In(0), func(args []reflect.Value) []reflect.Value {
		items = reflect.Append(items, args[0])
		return []reflect.Value{reflect.ValueOf(true)}
	})
	out.Call([]reflect.Value{yield})
	return items
}

// Build 使用工厂函数从 []E 重建集合。
func (c *Collection) Build(items reflect.Value) reflect.Value {
	if !c.seqParam {
		return c.factory.Call([]reflect.Value{items})[0]
	}
	seqType := c.factory.Type().In(0)
	seq := reflect.MakeFunc(seqType, func(args []reflect.Value) []reflect.Value {
		yield := args[0]
		for i := 0; i < items.Len(); i++ {
			if !yield.Call([]reflect.Value{items.Index(i)})[0].Bool() {
				break
			}
		}
		return nil
	})
	return c.factory.Call([]reflect.Value{seq})[0]
}
