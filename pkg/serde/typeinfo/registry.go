// Package typeinfo 维护 Go 类型与线上类型标识之间的双向映射。
//
// 类型来源有两类：内置符号表（基础类型以及切片、定长数组、map、指针这几种组合形态），
// 以及按顺序注册的模块。注册只允许追加，已分配的槽位和 token 在会话内保持不变。
package typeinfo

import (
	"reflect"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"

	"github.com/lk2023060901/danmu-garden-codec/pkg/log"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/fields"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/wire"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/typeutil"
)

// HashSize 为类型表、字符串表摘要的字节数（SHA3-512）。
const HashSize = 64

// snapshot 是某一时刻已注册模块的不可变视图；新增模块时整体替换。
type snapshot struct {
	modules     []*Module
	manifests   [][]string
	typeHashes  [][HashSize]byte
	byType      map[reflect.Type]wire.TypeID
	collections map[reflect.Type]*Collection
	// inheritors 依赖于模块集合，随快照一起失效。
	inheritors *sync.Map // reflect.Type -> []reflect.Type
}

// Registry 是类型注册表。
//
// 读路径无锁：查询基于原子加载的快照，解析结果以 sync.Map 记忆化，
// 并发首次计算只会重复工作，不会破坏状态。AddModule 之间由互斥锁串行化。
type Registry struct {
	mu     sync.Mutex
	snap   atomic.Pointer[snapshot]
	fields *fields.Reflector
	ids    sync.Map // reflect.Type -> wire.TypeID，只缓存成功结果
}

// NewRegistry 创建注册表并按顺序注册给定模块。
func NewRegistry(refl *fields.Reflector, modules ...*Module) (*Registry, error) {
	if refl == nil {
		refl = fields.NewReflector()
	}
	r := &Registry{fields: refl}
	r.snap.Store(&snapshot{
		byType:      make(map[reflect.Type]wire.TypeID),
		collections: make(map[reflect.Type]*Collection),
		inheritors:  &sync.Map{},
	})
	for _, m := range modules {
		if _, err := r.AddModule(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Fields 返回注册表使用的字段反射缓存。
func (r *Registry) Fields() *fields.Reflector { return r.fields }

// AddModule 追加一个模块并返回其槽位（从 1 开始）。
func (r *Registry) AddModule(m *Module) (int, error) {
	if m == nil {
		return 0, merr.WrapErrParameterMissing("module")
	}
	if err := m.Err(); err != nil {
		return 0, errors.Wrapf(err, "module %s", m.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.snap.Load()
	slot := len(old.modules) + 1
	if slot > wire.MaxModuleSlot {
		return 0, merr.WrapErrNotImplemented("more than 254 modules", m.Name())
	}
	if lo.ContainsBy(old.modules, func(o *Module) bool { return o.Name() == m.Name() }) {
		return 0, merr.WrapErrParameterInvalidMsg("module %s already registered", m.Name())
	}

	incoming := typeutil.NewSet(m.Types()...)
	for t := range incoming {
		if id, ok := old.byType[t]; ok {
			return 0, merr.WrapErrParameterInvalidMsg("type %s already registered as %s", t, id)
		}
	}

	next := &snapshot{
		modules:     append(append([]*Module(nil), old.modules...), m),
		manifests:   append(append([][]string(nil), old.manifests...), m.manifest(r.fields)),
		typeHashes:  append(append([][HashSize]byte(nil), old.typeHashes...), hashTypes(m.Types())),
		byType:      make(map[reflect.Type]wire.TypeID, len(old.byType)+incoming.Len()),
		collections: make(map[reflect.Type]*Collection, len(old.collections)+len(m.collections)),
		inheritors:  &sync.Map{},
	}
	for t, id := range old.byType {
		next.byType[t] = id
	}
	for i, t := range m.Types() {
		next.byType[t] = wire.ModuleTypeID(slot, uint32(i+1))
	}
	for t, c := range old.collections {
		next.collections[t] = c
	}
	for t, c := range m.collections {
		next.collections[t] = c
	}
	r.snap.Store(next)

	log.Info("serde module registered",
		log.FieldModule(m.Name()),
		log.FieldSlot(slot),
		zap.Int("types", len(m.Types())),
		zap.Int("collections", len(m.collections)))
	return slot, nil
}

// Modules 返回已注册模块，下标 i 对应槽位 i+1。
func (r *Registry) Modules() []*Module {
	return r.snap.Load().modules
}

// Manifest 返回槽位 slot 的字符串清单。
func (r *Registry) Manifest(slot int) ([]string, error) {
	snap := r.snap.Load()
	if slot < 1 || slot > len(snap.manifests) {
		return nil, merr.WrapErrMissingAssembly(slot)
	}
	return snap.manifests[slot-1], nil
}

// TypeTableHash 返回槽位 slot 中类型名（按 token 顺序）的摘要，握手时用于校验两端类型布局一致。
func (r *Registry) TypeTableHash(slot int) ([HashSize]byte, error) {
	snap := r.snap.Load()
	if slot < 1 || slot > len(snap.typeHashes) {
		return [HashSize]byte{}, merr.WrapErrMissingAssembly(slot)
	}
	return snap.typeHashes[slot-1], nil
}

func hashTypes(types []reflect.Type) [HashSize]byte {
	h := sha3.New512()
	for _, t := range types {
		h.Write([]byte(t.PkgPath()))
		h.Write([]byte{'.'})
		h.Write([]byte(t.Name()))
		h.Write([]byte{0})
	}
	var out [HashSize]byte
	h.Sum(out[:0])
	return out
}

// Collection 返回 t 登记的集合工厂。
func (r *Registry) Collection(t reflect.Type) (*Collection, bool) {
	c, ok := r.snap.Load().collections[t]
	return c, ok
}

// ResolveWireID 返回 t 的头部类型标识（不含泛型参数部分）。
func (r *Registry) ResolveWireID(t reflect.Type) (wire.TypeID, error) {
	if t == nil {
		return wire.NullTypeID, nil
	}
	if v, ok := r.ids.Load(t); ok {
		return v.(wire.TypeID), nil
	}
	id, err := r.resolve(t)
	if err != nil {
		return wire.NullTypeID, err
	}
	r.ids.Store(t, id)
	return id, nil
}

func (r *Registry) resolve(t reflect.Type) (wire.TypeID, error) {
	if id, ok := r.snap.Load().byType[t]; ok {
		return id, nil
	}
	if i, ok := symbolIndex[t]; ok {
		return wire.CustomTypeID(i), nil
	}
	if t.Name() == "" {
		switch t.Kind() {
		case reflect.Slice:
			return wire.CustomTypeID(kindIndex[SymbolSlice]), nil
		case reflect.Array:
			return wire.CustomTypeID(kindIndex[SymbolArray]), nil
		case reflect.Map:
			return wire.CustomTypeID(kindIndex[SymbolMap]), nil
		case reflect.Pointer:
			return wire.CustomTypeID(kindIndex[SymbolPointer]), nil
		}
	}
	return wire.NullTypeID, merr.WrapErrUnsupportedType(t.String(), "type is not registered in any module")
}

// CanSerialize 判断 t 及其全部类型参数是否都有线上表示。
func (r *Registry) CanSerialize(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if _, err := r.ResolveWireID(t); err != nil {
		return false
	}
	if t.Name() != "" {
		return true
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Pointer:
		return r.CanSerialize(t.Elem())
	case reflect.Map:
		return r.CanSerialize(t.Key()) && r.CanSerialize(t.Elem())
	}
	return true
}

// WriteType 写入 t 的完整类型标识，组合类型会递归写出其类型参数。
func (r *Registry) WriteType(w *wire.Writer, t reflect.Type) error {
	id, err := r.ResolveWireID(t)
	if err != nil {
		return err
	}
	w.TypeID(id)
	if !id.IsCustom() {
		return w.Err()
	}
	sym, _ := symbolAt(id.Token)
	switch sym.Kind {
	case SymbolSlice:
		w.Uint8(1)
		return r.WriteType(w, t.Elem())
	case SymbolArray:
		w.Uint32(uint32(t.Len()))
		return r.WriteType(w, t.Elem())
	case SymbolMap:
		if err := r.WriteType(w, t.Key()); err != nil {
			return err
		}
		return r.WriteType(w, t.Elem())
	case SymbolPointer:
		return r.WriteType(w, t.Elem())
	}
	return w.Err()
}

// ReadType 读取完整类型标识；空类型返回 nil。
func (r *Registry) ReadType(rd *wire.Reader) (reflect.Type, error) {
	id := rd.TypeID()
	if err := rd.Err(); err != nil {
		return nil, err
	}
	if !id.IsCustom() {
		return r.ResolveType(id)
	}
	sym, ok := symbolAt(id.Token)
	if !ok {
		return nil, merr.WrapErrUnsupportedType(id.String(), "unknown builtin symbol")
	}
	switch sym.Kind {
	case SymbolConcrete:
		return sym.Type, nil
	case SymbolSlice:
		rank := rd.Uint8()
		if err := rd.Err(); err != nil {
			return nil, err
		}
		if rank != 1 {
			return nil, merr.WrapErrNotImplemented("array rank > 1", "rank="+strconv.Itoa(int(rank)))
		}
		elem, err := r.readArg(rd)
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil
	case SymbolArray:
		n := rd.Uint32()
		if err := rd.Err(); err != nil {
			return nil, err
		}
		if n > wire.MaxCollectionLen {
			return nil, errors.Wrapf(merr.ErrEndOfStream, "array length %d out of range", n)
		}
		elem, err := r.readArg(rd)
		if err != nil {
			return nil, err
		}
		return reflect.ArrayOf(int(n), elem), nil
	case SymbolMap:
		key, err := r.readArg(rd)
		if err != nil {
			return nil, err
		}
		if !key.Comparable() {
			return nil, merr.WrapErrUnsupportedType(key.String(), "map key is not comparable")
		}
		elem, err := r.readArg(rd)
		if err != nil {
			return nil, err
		}
		return reflect.MapOf(key, elem), nil
	case SymbolPointer:
		elem, err := r.readArg(rd)
		if err != nil {
			return nil, err
		}
		return reflect.PointerTo(elem), nil
	}
	return nil, merr.WrapErrUnsupportedType(sym.Name)
}

func (r *Registry) readArg(rd *wire.Reader) (reflect.Type, error) {
	t, err := r.ReadType(rd)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, merr.WrapErrUnsupportedType("null", "type argument must not be null")
	}
	return t, nil
}

// ResolveType 将非组合类型标识还原为 Go 类型；空标识返回 nil。
func (r *Registry) ResolveType(id wire.TypeID) (reflect.Type, error) {
	switch {
	case id.IsNull():
		return nil, nil
	case id.IsCustom():
		sym, ok := symbolAt(id.Token)
		if !ok {
			return nil, merr.WrapErrUnsupportedType(id.String(), "unknown builtin symbol")
		}
		if sym.Kind != SymbolConcrete {
			return nil, merr.WrapErrUnsupportedType(sym.Name, "generic definition needs type arguments")
		}
		return sym.Type, nil
	}
	snap := r.snap.Load()
	slot := id.Slot()
	if slot < 1 || slot > len(snap.modules) {
		return nil, merr.WrapErrMissingAssembly(slot)
	}
	types := snap.modules[slot-1].Types()
	if id.Token < 1 || int(id.Token) > len(types) {
		return nil, merr.WrapErrUnsupportedType(id.String(), "token out of range")
	}
	return types[id.Token-1], nil
}

// Inheritors 返回实现接口 iface 的已注册类型，按 (槽位, token) 排序并缓存。
//
// 只有值的指针实现了接口时，列表中记录的是 *T。空接口以及非接口类型没有实现列表。
func (r *Registry) Inheritors(iface reflect.Type) []reflect.Type {
	if iface == nil || iface.Kind() != reflect.Interface || iface.NumMethod() == 0 {
		return nil
	}
	snap := r.snap.Load()
	if v, ok := snap.inheritors.Load(iface); ok {
		return v.([]reflect.Type)
	}
	var out []reflect.Type
	for _, m := range snap.modules {
		for _, t := range m.Types() {
			if t.Kind() == reflect.Interface {
				continue
			}
			switch {
			case t.Implements(iface):
				out = append(out, t)
			case reflect.PointerTo(t).Implements(iface):
				out = append(out, reflect.PointerTo(t))
			}
		}
	}
	if len(out) > wire.MaxVariants {
		log.RatedWarn("polymorphic fan-out exceeds discriminant capacity",
			log.FieldType(iface),
			zap.Int("variants", len(out)),
			zap.Int("capacity", wire.MaxVariants))
	}
	actual, _ := snap.inheritors.LoadOrStore(iface, out)
	return actual.([]reflect.Type)
}

// Discriminant 返回 t 作为 iface 的实现时应写入的判别字节。
func (r *Registry) Discriminant(iface, t reflect.Type) (uint8, error) {
	if t == nil {
		return wire.DiscriminantNull, nil
	}
	idx := lo.IndexOf(r.Inheritors(iface), t)
	switch {
	case idx < 0:
		return 0, merr.WrapErrUnsupportedType(t.String(), "not a registered implementation of "+iface.String())
	case idx >= wire.MaxVariants:
		return 0, merr.WrapErrNotImplemented("polymorphic fan-out over 250 variants", iface.String()+" -> "+t.String())
	}
	return uint8(idx) + wire.DiscriminantBase, nil
}

// Variant 是 Discriminant 的逆操作；判别字节为 0 时返回 nil。
func (r *Registry) Variant(iface reflect.Type, disc uint8) (reflect.Type, error) {
	if disc == wire.DiscriminantNull {
		return nil, nil
	}
	if disc < wire.DiscriminantBase {
		return nil, merr.WrapErrMissingAssembly(int(disc), "discriminant 1 is never written for interface slots")
	}
	list := r.Inheritors(iface)
	idx := int(disc - wire.DiscriminantBase)
	if idx >= len(list) {
		return nil, merr.WrapErrUnsupportedType(iface.String(), "discriminant out of range")
	}
	return list[idx], nil
}
