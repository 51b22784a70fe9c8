package serde

import (
	"bytes"
	"io"
	"reflect"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/lk2023060901/danmu-garden-codec/pkg/log"
	"github.com/lk2023060901/danmu-garden-codec/pkg/metrics"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/wire"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

// Serialize 写出 v 的运行时类型标识以及 v 本身；v 为 nil 时写出 4 字节 0。
func (c *Context) Serialize(w io.Writer, v any) error {
	return c.serializeValue(w, reflect.ValueOf(v))
}

// SerializeAs 按静态类型 T 写出 v；T 为接口类型时退化为 Serialize。
func SerializeAs[T any](c *Context, w io.Writer, v T) error {
	if reflect.TypeFor[T]().Kind() == reflect.Interface {
		return c.Serialize(w, any(v))
	}
	return c.serializeValue(w, reflect.ValueOf(&v).Elem())
}

// SerializeToBytes 将 v 写入新的字节切片。
func (c *Context) SerializeToBytes(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Serialize(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Context) serializeValue(w io.Writer, v reflect.Value) error {
	if w == nil {
		return merr.WrapErrParameterMissing("writer", "serialize")
	}

	var (
		t  reflect.Type
		cd *coder
	)
	if v.IsValid() {
		t = v.Type()
		if isEmptyMarker(t) {
			c.observe(metrics.SerializeLabel, nil, 0, false)
			return merr.WrapErrUnsupportedType(t.String(), "empty marker objects cannot be serialized")
		}
		var err error
		if cd, err = c.coderFor(t); err != nil {
			c.observe(metrics.SerializeLabel, nil, 0, false)
			return err
		}
	}

	out, finish, err := c.wrapWriter(w)
	if err != nil {
		c.observe(metrics.SerializeLabel, nil, 0, false)
		return err
	}
	ww := wire.NewWriter(out)
	e := newEncoder(c, ww)
	err = c.registry.WriteType(ww, t)
	if err == nil && cd != nil {
		err = cd.enc(e, v)
	}
	if ferr := finish(ww.Written()); err == nil {
		err = ferr
	}

	c.observe(metrics.SerializeLabel, t, ww.Written(), err == nil)
	if err == nil {
		e.flushMetrics()
	} else {
		c.Logger().RatedDebug("serde serialize failed", log.FieldType(t), zap.Error(err))
	}
	return err
}

// Deserialize 读取一个带类型标识的值。类型标识为空时返回 nil。
func (c *Context) Deserialize(r io.Reader) (any, error) {
	v, err := c.deserializeValue(r)
	if err != nil || !v.IsValid() {
		return nil, err
	}
	return v.Interface(), nil
}

// DeserializeAs 读取一个值并断言为 T；空值返回 T 的零值，类型不符时返回 ErrUnsupportedType。
func DeserializeAs[T any](c *Context, r io.Reader) (T, error) {
	var zero T
	v, err := c.deserializeValue(r)
	if err != nil || !v.IsValid() {
		return zero, err
	}
	out, ok := v.Interface().(T)
	if !ok {
		return zero, merr.WrapErrUnsupportedType(v.Type().String(), "expected "+reflect.TypeFor[T]().String())
	}
	return out, nil
}

// DeserializeFromBytes 从 data 中读取一个值。
func (c *Context) DeserializeFromBytes(data []byte) (any, error) {
	return c.Deserialize(bytes.NewReader(data))
}

func (c *Context) deserializeValue(r io.Reader) (reflect.Value, error) {
	if r == nil {
		return reflect.Value{}, merr.WrapErrParameterMissing("reader", "deserialize")
	}
	in, finish, err := c.wrapReader(r)
	if err != nil {
		c.observe(metrics.DeserializeLabel, nil, 0, false)
		return reflect.Value{}, err
	}
	rd := wire.NewReader(in)
	v, err := c.readTop(newDecoder(c, rd))
	if ferr := finish(); err == nil {
		err = ferr
	}

	var t reflect.Type
	if v.IsValid() {
		t = v.Type()
	}
	c.observe(metrics.DeserializeLabel, t, rd.Consumed(), err == nil)
	if err != nil {
		c.Logger().RatedDebug("serde deserialize failed", zap.Int64("offset", rd.Consumed()), zap.Error(err))
		return reflect.Value{}, err
	}
	return v, nil
}

func (c *Context) readTop(d *decoder) (reflect.Value, error) {
	t, err := c.registry.ReadType(d.r)
	if err != nil || t == nil {
		return reflect.Value{}, err
	}
	if isEmptyMarker(t) {
		return reflect.Value{}, merr.WrapErrUnsupportedType(t.String(), "empty marker objects cannot be serialized")
	}
	cd, err := c.coderFor(t)
	if err != nil {
		return reflect.Value{}, err
	}
	v := reflect.New(t).Elem()
	if err := cd.dec(d, v); err != nil {
		return reflect.Value{}, err
	}
	return v, nil
}

func (c *Context) observe(direction string, t reflect.Type, n int64, ok bool) {
	result := metrics.SuccessLabel
	if !ok {
		result = metrics.FailLabel
		c.failed.Inc()
	}
	metrics.SerdeOps.WithLabelValues(direction, result).Inc()
	if !ok {
		return
	}
	metrics.SerdeBytes.WithLabelValues(direction).Add(float64(n))
	metrics.SerdeObjectSize.WithLabelValues(direction).Observe(float64(n))
	if direction == metrics.SerializeLabel {
		c.serialized.Inc()
		c.bytesOut.Add(n)
		c.largestOut.offer(n, t)
	} else {
		c.deserialized.Inc()
		c.bytesIn.Add(n)
		c.largestIn.offer(n, t)
	}
}

// largestObject 记录单次读写字节数最大的对象。
type largestObject struct {
	size atomic.Int64
	mu   sync.Mutex
	typ  reflect.Type
}

func (l *largestObject) offer(n int64, t reflect.Type) {
	if n <= l.size.Load() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > l.size.Load() {
		l.size.Store(n)
		l.typ = t
	}
}

func (l *largestObject) load() (int64, reflect.Type) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size.Load(), l.typ
}
