package serde

import (
	"bytes"
	"encoding"
	"io"
	"reflect"
	"slices"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/danmu-garden-codec/pkg/metrics"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/typeinfo"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/wire"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

type (
	encodeFunc func(e *encoder, v reflect.Value) error
	// decodeFunc 的 v 一定是可寻址、可设置的。
	decodeFunc func(d *decoder, v reflect.Value) error
)

// coder 是针对某一声明类型编译好的编解码函数对。
type coder struct {
	typ reflect.Type
	enc encodeFunc
	dec decodeFunc
}

// maxDecodeDepth 限制读取时的嵌套深度，防止损坏的流触发无界递归。
const maxDecodeDepth = 10000

// preallocLimit 为读取集合时按声明长度预分配的上限，其余部分按需增长。
const preallocLimit = 4096

var (
	binaryMarshalerType   = reflect.TypeFor[encoding.BinaryMarshaler]()
	binaryUnmarshalerType = reflect.TypeFor[encoding.BinaryUnmarshaler]()
)

// visit 标识写入过程中正在展开的引用值。
type visit struct {
	ptr uintptr
	typ reflect.Type
	n   int
}

type encoder struct {
	ctx  *Context
	w    *wire.Writer
	seen map[visit]struct{}

	interned int
	inline   int
}

func newEncoder(ctx *Context, w *wire.Writer) *encoder {
	return &encoder{ctx: ctx, w: w, seen: make(map[visit]struct{})}
}

// fork 返回写入 w 的子编码器，与父编码器共享环检测集合。
func (e *encoder) fork(w io.Writer) *encoder {
	return &encoder{ctx: e.ctx, w: wire.NewWriter(w), seen: e.seen}
}

func (e *encoder) join(sub *encoder) {
	e.interned += sub.interned
	e.inline += sub.inline
}

func visitOf(v reflect.Value) visit {
	key := visit{ptr: v.Pointer(), typ: v.Type()}
	if v.Kind() == reflect.Slice {
		key.n = v.Len()
	}
	return key
}

// enter 在展开引用值之前调用，值已经在当前路径上时说明图中有环。
func (e *encoder) enter(v reflect.Value) error {
	key := visitOf(v)
	if _, ok := e.seen[key]; ok {
		return merr.WrapErrUnsupportedType(v.Type().String(), "cyclic graph")
	}
	e.seen[key] = struct{}{}
	return nil
}

func (e *encoder) leave(v reflect.Value) {
	delete(e.seen, visitOf(v))
}

func (e *encoder) writeString(s string) error {
	if id, ok := e.ctx.strings.Intern(s); ok {
		e.w.Interned(id)
		e.interned++
		return e.w.Err()
	}
	if len(s) >= wire.MaxInlineStringLen {
		return merr.WrapErrNotImplemented("inline strings of 32768 bytes or more", "len="+strconv.Itoa(len(s)))
	}
	e.w.InlineString(s)
	e.inline++
	return e.w.Err()
}

// writeDynamic 写出完整类型标识和值，用于 any 以及没有已知实现的接口。
func (e *encoder) writeDynamic(v reflect.Value) error {
	if v.IsNil() {
		e.w.TypeID(wire.NullTypeID)
		return e.w.Err()
	}
	inner := v.Elem()
	cd, err := e.ctx.coderFor(inner.Type())
	if err != nil {
		return err
	}
	if err := e.ctx.registry.WriteType(e.w, inner.Type()); err != nil {
		return err
	}
	return cd.enc(e, inner)
}

func (e *encoder) flushMetrics() {
	if e.interned > 0 {
		metrics.SerdeStrings.WithLabelValues(metrics.InternedLabel).Add(float64(e.interned))
	}
	if e.inline > 0 {
		metrics.SerdeStrings.WithLabelValues(metrics.InlineLabel).Add(float64(e.inline))
	}
}

type decoder struct {
	ctx   *Context
	r     *wire.Reader
	depth int
}

func newDecoder(ctx *Context, r *wire.Reader) *decoder {
	return &decoder{ctx: ctx, r: r}
}

func (d *decoder) descend() error {
	d.depth++
	if d.depth > maxDecodeDepth {
		return errors.Wrapf(merr.ErrEndOfStream, "nesting deeper than %d", maxDecodeDepth)
	}
	return nil
}

func (d *decoder) ascend() { d.depth-- }

// readString 读取字符串；isNil 表示写入端为 nil。
func (d *decoder) readString() (string, bool, error) {
	n, isNil, ref := d.r.StringHeader()
	if err := d.r.Err(); err != nil {
		return "", true, err
	}
	switch {
	case isNil:
		return "", true, nil
	case ref != nil:
		s, err := d.ctx.strings.Resolve(*ref)
		return s, false, err
	case n == 0:
		return "", false, nil
	}
	buf := make([]byte, n)
	d.r.Data(buf)
	return string(buf), false, d.r.Err()
}

// readDynamic 读取完整类型标识和值，写入接口槽位 v。
func (d *decoder) readDynamic(v reflect.Value) error {
	rt, err := d.ctx.registry.ReadType(d.r)
	if err != nil {
		return err
	}
	if rt == nil {
		v.SetZero()
		return nil
	}
	if !rt.AssignableTo(v.Type()) {
		return merr.WrapErrUnsupportedType(rt.String(), "not assignable to "+v.Type().String())
	}
	return d.readAs(rt, v)
}

func (d *decoder) readAs(rt reflect.Type, v reflect.Value) error {
	cd, err := d.ctx.coderFor(rt)
	if err != nil {
		return err
	}
	if err := d.descend(); err != nil {
		return err
	}
	defer d.ascend()
	nv := reflect.New(rt).Elem()
	if err := cd.dec(d, nv); err != nil {
		return err
	}
	v.Set(nv)
	return nil
}

// coderFor 返回 t 的编解码函数，首次使用时编译并缓存。编译失败不会被缓存。
func (c *Context) coderFor(t reflect.Type) (*coder, error) {
	if v, ok := c.coders.Load(t); ok {
		return v.(*coder), nil
	}
	comp := compiler{ctx: c, building: make(map[reflect.Type]*coder)}
	cd, err := comp.compile(t)
	if err != nil {
		c.reportUnsupported(t, err)
		return nil, err
	}
	for bt, bc := range comp.building {
		if _, loaded := c.coders.LoadOrStore(bt, bc); !loaded {
			c.numCoders.Inc()
		}
	}
	metrics.SerdeCacheSize.WithLabelValues(metrics.CoderCacheLabel).Set(float64(c.numCoders.Load()))
	return cd, nil
}

// checkType 拒绝没有线上表示的类型。
func (c *Context) checkType(t reflect.Type) error {
	switch t.Kind() {
	case reflect.Invalid, reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Uintptr:
		return merr.WrapErrUnsupportedType(t.String(), "kind "+t.Kind().String()+" has no wire form")
	}
	if pkg := t.PkgPath(); pkg == "sync" || pkg == "sync/atomic" {
		return merr.WrapErrUnsupportedType(t.String(), "synchronization objects cannot be serialized")
	}
	if t.Name() != "" {
		if _, err := c.registry.ResolveWireID(t); err != nil {
			return err
		}
	}
	return nil
}

func isEmptyMarker(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Struct && t.NumField() == 0
}

func isBinary(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer:
		return false
	}
	return t.Implements(binaryMarshalerType) && reflect.PointerTo(t).Implements(binaryUnmarshalerType)
}

// compiler 编译一个类型及其依赖的全部类型。
// building 中的 coder 在函数体就绪前就可以被引用，从而支持自引用类型。
type compiler struct {
	ctx      *Context
	building map[reflect.Type]*coder
}

func (comp *compiler) compile(t reflect.Type) (*coder, error) {
	if cd, ok := comp.building[t]; ok {
		return cd, nil
	}
	if v, ok := comp.ctx.coders.Load(t); ok {
		return v.(*coder), nil
	}
	if err := comp.ctx.checkType(t); err != nil {
		return nil, err
	}

	cd := &coder{typ: t}
	comp.building[t] = cd

	var err error
	if coll, ok := comp.ctx.registry.Collection(t); ok {
		err = comp.collection(cd, coll)
	} else if isBinary(t) {
		comp.binary(cd)
	} else {
		switch t.Kind() {
		case reflect.Pointer:
			err = comp.pointer(cd)
		case reflect.Slice:
			err = comp.slice(cd)
		case reflect.Array:
			err = comp.array(cd)
		case reflect.Map:
			err = comp.mapping(cd)
		case reflect.Struct:
			err = comp.structure(cd)
		case reflect.Interface:
			comp.iface(cd)
		case reflect.String:
			cd.enc, cd.dec = encodeString, decodeString
		default:
			p := primitives[t.Kind()]
			if p.enc == nil {
				err = merr.WrapErrUnsupportedType(t.String())
			}
			cd.enc, cd.dec = p.enc, p.dec
		}
	}
	if err != nil {
		return nil, err
	}
	return cd, nil
}

func encodeString(e *encoder, v reflect.Value) error {
	return e.writeString(v.String())
}

// decodeString 读取非指针字符串，写入端的 nil 还原为空串。
func decodeString(d *decoder, v reflect.Value) error {
	s, _, err := d.readString()
	if err != nil {
		return err
	}
	v.SetString(s)
	return nil
}

// pointer：*string 使用字符串自身的空值规则，其余 *T 先写 1 字节是否有值。
func (comp *compiler) pointer(cd *coder) error {
	elemT := cd.typ.Elem()
	elem, err := comp.compile(elemT)
	if err != nil {
		return err
	}

	if elemT.Kind() == reflect.String {
		cd.enc = func(e *encoder, v reflect.Value) error {
			if v.IsNil() {
				e.w.Null()
				return e.w.Err()
			}
			return e.writeString(v.Elem().String())
		}
		cd.dec = func(d *decoder, v reflect.Value) error {
			s, isNil, err := d.readString()
			if err != nil {
				return err
			}
			if isNil {
				v.SetZero()
				return nil
			}
			p := reflect.New(elemT)
			p.Elem().SetString(s)
			v.Set(p)
			return nil
		}
		return nil
	}

	cd.enc = func(e *encoder, v reflect.Value) error {
		if v.IsNil() {
			e.w.Bool(false)
			return e.w.Err()
		}
		if err := e.enter(v); err != nil {
			return err
		}
		e.w.Bool(true)
		err := elem.enc(e, v.Elem())
		e.leave(v)
		return err
	}
	cd.dec = func(d *decoder, v reflect.Value) error {
		has := d.r.Bool()
		if err := d.r.Err(); err != nil {
			return err
		}
		if !has {
			v.SetZero()
			return nil
		}
		if err := d.descend(); err != nil {
			return err
		}
		defer d.ascend()
		p := reflect.New(elemT)
		if err := elem.dec(d, p.Elem()); err != nil {
			return err
		}
		v.Set(p)
		return nil
	}
	return nil
}

func checkWriteLen(t reflect.Type, n int) error {
	if n > wire.MaxCollectionLen {
		return merr.WrapErrNotImplemented("collections over 2^24 elements", t.String()+" len="+strconv.Itoa(n))
	}
	return nil
}

// writeElems 依次写出 items 的元素；v 为需要做环检测的引用值。
func writeElems(e *encoder, elem *coder, v, items reflect.Value) error {
	n := items.Len()
	if err := checkWriteLen(v.Type(), n); err != nil {
		return err
	}
	tracked := n > 0 && (v.Kind() == reflect.Slice || v.Kind() == reflect.Pointer || v.Kind() == reflect.Map)
	if tracked {
		if err := e.enter(v); err != nil {
			return err
		}
		defer e.leave(v)
	}
	e.w.Length(n)
	for i := 0; i < n; i++ {
		if err := elem.enc(e, items.Index(i)); err != nil {
			return err
		}
	}
	return e.w.Err()
}

// readElems 读取 n 个元素，返回类型为 sliceType 的切片。每一层集合都计入嵌套深度。
func readElems(d *decoder, elem *coder, sliceType reflect.Type, n int) (reflect.Value, error) {
	if err := d.descend(); err != nil {
		return reflect.Value{}, err
	}
	defer d.ascend()
	out := reflect.MakeSlice(sliceType, 0, min(n, preallocLimit))
	zero := reflect.Zero(sliceType.Elem())
	for i := 0; i < n; i++ {
		out = reflect.Append(out, zero)
		if err := elem.dec(d, out.Index(i)); err != nil {
			return reflect.Value{}, err
		}
	}
	return out, nil
}

func (comp *compiler) slice(cd *coder) error {
	t := cd.typ
	elem, err := comp.compile(t.Elem())
	if err != nil {
		return err
	}

	if t.Elem().Kind() == reflect.Uint8 {
		cd.enc = func(e *encoder, v reflect.Value) error {
			if v.IsNil() {
				e.w.Null()
				return e.w.Err()
			}
			if err := checkWriteLen(t, v.Len()); err != nil {
				return err
			}
			e.w.Length(v.Len())
			e.w.Data(v.Bytes())
			return e.w.Err()
		}
		cd.dec = func(d *decoder, v reflect.Value) error {
			n, isNil := d.r.Length()
			if err := d.r.Err(); err != nil {
				return err
			}
			if isNil {
				v.SetZero()
				return nil
			}
			buf := reflect.MakeSlice(t, n, n)
			d.r.Data(buf.Bytes())
			if err := d.r.Err(); err != nil {
				return err
			}
			v.Set(buf)
			return nil
		}
		return nil
	}

	cd.enc = func(e *encoder, v reflect.Value) error {
		if v.IsNil() {
			e.w.Null()
			return e.w.Err()
		}
		return writeElems(e, elem, v, v)
	}
	cd.dec = func(d *decoder, v reflect.Value) error {
		n, isNil := d.r.Length()
		if err := d.r.Err(); err != nil {
			return err
		}
		if isNil {
			v.SetZero()
			return nil
		}
		out, err := readElems(d, elem, t, n)
		if err != nil {
			return err
		}
		v.Set(out)
		return nil
	}
	return nil
}

// array：定长数组同样写出长度，读取时长度必须与声明一致。
func (comp *compiler) array(cd *coder) error {
	t := cd.typ
	elem, err := comp.compile(t.Elem())
	if err != nil {
		return err
	}
	cd.enc = func(e *encoder, v reflect.Value) error {
		e.w.Length(t.Len())
		for i := 0; i < t.Len(); i++ {
			if err := elem.enc(e, v.Index(i)); err != nil {
				return err
			}
		}
		return e.w.Err()
	}
	cd.dec = func(d *decoder, v reflect.Value) error {
		n, isNil := d.r.Length()
		if err := d.r.Err(); err != nil {
			return err
		}
		if isNil || n != t.Len() {
			return errors.Wrapf(merr.ErrEndOfStream, "array %s: unexpected length %d", t, n)
		}
		if err := d.descend(); err != nil {
			return err
		}
		defer d.ascend()
		for i := 0; i < n; i++ {
			if err := elem.dec(d, v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

type mapEntry struct {
	start, mid, end int
}

// mapping：键值对按键的编码字节排序后写出，保证相同的 map 总是得到相同的字节。
func (comp *compiler) mapping(cd *coder) error {
	t := cd.typ
	key, err := comp.compile(t.Key())
	if err != nil {
		return err
	}
	val, err := comp.compile(t.Elem())
	if err != nil {
		return err
	}

	cd.enc = func(e *encoder, v reflect.Value) error {
		if v.IsNil() {
			e.w.Null()
			return e.w.Err()
		}
		n := v.Len()
		if err := checkWriteLen(t, n); err != nil {
			return err
		}
		if n > 0 {
			if err := e.enter(v); err != nil {
				return err
			}
			defer e.leave(v)
		}

		var buf bytes.Buffer
		sub := e.fork(&buf)
		entries := make([]mapEntry, 0, n)
		iter := v.MapRange()
		for iter.Next() {
			start := buf.Len()
			if err := key.enc(sub, iter.Key()); err != nil {
				return err
			}
			mid := buf.Len()
			if err := val.enc(sub, iter.Value()); err != nil {
				return err
			}
			entries = append(entries, mapEntry{start: start, mid: mid, end: buf.Len()})
		}
		e.join(sub)

		data := buf.Bytes()
		slices.SortFunc(entries, func(a, b mapEntry) int {
			return bytes.Compare(data[a.start:a.mid], data[b.start:b.mid])
		})
		e.w.Length(len(entries))
		for _, en := range entries {
			e.w.Data(data[en.start:en.end])
		}
		return e.w.Err()
	}
	cd.dec = func(d *decoder, v reflect.Value) error {
		n, isNil := d.r.Length()
		if err := d.r.Err(); err != nil {
			return err
		}
		if isNil {
			v.SetZero()
			return nil
		}
		if err := d.descend(); err != nil {
			return err
		}
		defer d.ascend()
		m := reflect.MakeMapWithSize(t, min(n, preallocLimit))
		for i := 0; i < n; i++ {
			k := reflect.New(t.Key()).Elem()
			if err := key.dec(d, k); err != nil {
				return err
			}
			if !k.Comparable() {
				return merr.WrapErrUnsupportedType(k.Elem().Type().String(), "map key is not comparable")
			}
			x := reflect.New(t.Elem()).Elem()
			if err := val.dec(d, x); err != nil {
				return err
			}
			m.SetMapIndex(k, x)
		}
		v.Set(m)
		return nil
	}
	return nil
}

// structure：按 Reflector 给出的顺序逐个写出字段，不写字段名和字段个数。
func (comp *compiler) structure(cd *coder) error {
	t := cd.typ
	fs := comp.ctx.fields.FieldsOf(t)
	coders := make([]*coder, len(fs))
	for i, f := range fs {
		fc, err := comp.compile(f.Type)
		if err != nil {
			return errors.Wrapf(err, "field %s.%s", t, f.Name)
		}
		coders[i] = fc
	}

	cd.enc = func(e *encoder, v reflect.Value) error {
		for i := range fs {
			if err := coders[i].enc(e, v.FieldByIndex(fs[i].Index)); err != nil {
				return err
			}
		}
		return nil
	}
	cd.dec = func(d *decoder, v reflect.Value) error {
		for i := range fs {
			if err := coders[i].dec(d, v.FieldByIndex(fs[i].Index)); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

// iface：any 以及没有已知实现的接口写完整类型标识，其余接口写 1 字节判别值。
// 实现列表只记录值接收者实现的 T；槽位中的 *T 按 T 写出。
//
// 实现列表在每次调用时从注册表获取（有缓存），因此编译早于模块注册也不影响结果。
func (comp *compiler) iface(cd *coder) {
	t := cd.typ
	registry := comp.ctx.registry
	dynamic := func() bool {
		return t.NumMethod() == 0 || len(registry.Inheritors(t)) == 0
	}

	cd.enc = func(e *encoder, v reflect.Value) error {
		if dynamic() {
			return e.writeDynamic(v)
		}
		if v.IsNil() {
			e.w.Uint8(wire.DiscriminantNull)
			return e.w.Err()
		}
		inner := v.Elem()
		disc, err := registry.Discriminant(t, inner.Type())
		if err != nil && inner.Kind() == reflect.Pointer {
			// 值接收者实现接口时 *T 也能放进槽位，按 T 写出，读取端得到 T；nil 的 *T 按空值写出。
			if vd, verr := registry.Discriminant(t, inner.Type().Elem()); verr == nil {
				if inner.IsNil() {
					e.w.Uint8(wire.DiscriminantNull)
					return e.w.Err()
				}
				disc, err, inner = vd, nil, inner.Elem()
			}
		}
		if err != nil {
			return err
		}
		ic, err := e.ctx.coderFor(inner.Type())
		if err != nil {
			return err
		}
		e.w.Uint8(disc)
		return ic.enc(e, inner)
	}
	cd.dec = func(d *decoder, v reflect.Value) error {
		if dynamic() {
			return d.readDynamic(v)
		}
		disc := d.r.Uint8()
		if err := d.r.Err(); err != nil {
			return err
		}
		rt, err := registry.Variant(t, disc)
		if err != nil {
			return err
		}
		if rt == nil {
			v.SetZero()
			return nil
		}
		return d.readAs(rt, v)
	}
}

// binary：实现了 encoding.BinaryMarshaler 的类型（如 time.Time）写出长度 + 1 和其二进制形式。
func (comp *compiler) binary(cd *coder) {
	t := cd.typ
	cd.enc = func(e *encoder, v reflect.Value) error {
		data, err := v.Interface().(encoding.BinaryMarshaler).MarshalBinary()
		if err != nil {
			return errors.Wrapf(err, "marshal %s", t)
		}
		if err := checkWriteLen(t, len(data)); err != nil {
			return err
		}
		e.w.Length(len(data))
		e.w.Data(data)
		return e.w.Err()
	}
	cd.dec = func(d *decoder, v reflect.Value) error {
		n, isNil := d.r.Length()
		if err := d.r.Err(); err != nil {
			return err
		}
		if isNil {
			v.SetZero()
			return nil
		}
		buf := make([]byte, n)
		d.r.Data(buf)
		if err := d.r.Err(); err != nil {
			return err
		}
		p := reflect.New(t)
		if err := p.Interface().(encoding.BinaryUnmarshaler).UnmarshalBinary(buf); err != nil {
			return errors.Wrapf(merr.ErrEndOfStream, "unmarshal %s: %v", t, err)
		}
		v.Set(p.Elem())
		return nil
	}
}

// collection：只读集合通过枚举方法取出元素，读取时交给注册的工厂函数重建。
func (comp *compiler) collection(cd *coder, coll *typeinfo.Collection) error {
	t := cd.typ
	elem, err := comp.compile(coll.Elem)
	if err != nil {
		return err
	}
	sliceType := reflect.SliceOf(coll.Elem)
	nilable := t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Map

	cd.enc = func(e *encoder, v reflect.Value) error {
		if nilable && v.IsNil() {
			e.w.Null()
			return e.w.Err()
		}
		return writeElems(e, elem, v, coll.Items(v))
	}
	cd.dec = func(d *decoder, v reflect.Value) error {
		n, isNil := d.r.Length()
		if err := d.r.Err(); err != nil {
			return err
		}
		if isNil {
			v.SetZero()
			return nil
		}
		items, err := readElems(d, elem, sliceType, n)
		if err != nil {
			return err
		}
		v.Set(coll.Build(items))
		return nil
	}
	return nil
}
