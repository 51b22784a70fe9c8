package serde

import (
	"reflect"
	"strconv"

	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

type kindCodec struct {
	enc encodeFunc
	dec decodeFunc
}

// primitives 按 reflect.Kind 索引定宽基础类型的编解码函数。
// int/uint 一律按 64 位写出，保证两端字长不同时格式一致。
var primitives = [reflect.Complex128 + 1]kindCodec{
	reflect.Bool: {
		enc: func(e *encoder, v reflect.Value) error { e.w.Bool(v.Bool()); return e.w.Err() },
		dec: func(d *decoder, v reflect.Value) error { v.SetBool(d.r.Bool()); return d.r.Err() },
	},
	reflect.Int8: {
		enc: func(e *encoder, v reflect.Value) error { e.w.Int8(int8(v.Int())); return e.w.Err() },
		dec: func(d *decoder, v reflect.Value) error { v.SetInt(int64(d.r.Int8())); return d.r.Err() },
	},
	reflect.Int16: {
		enc: func(e *encoder, v reflect.Value) error { e.w.Int16(int16(v.Int())); return e.w.Err() },
		dec: func(d *decoder, v reflect.Value) error { v.SetInt(int64(d.r.Int16())); return d.r.Err() },
	},
	reflect.Int32: {
		enc: func(e *encoder, v reflect.Value) error { e.w.Int32(int32(v.Int())); return e.w.Err() },
		dec: func(d *decoder, v reflect.Value) error { v.SetInt(int64(d.r.Int32())); return d.r.Err() },
	},
	reflect.Int64: {
		enc: encodeInt64,
		dec: decodeInt64,
	},
	reflect.Int: {
		enc: encodeInt64,
		dec: decodeInt64,
	},
	reflect.Uint8: {
		enc: func(e *encoder, v reflect.Value) error { e.w.Uint8(uint8(v.Uint())); return e.w.Err() },
		dec: func(d *decoder, v reflect.Value) error { v.SetUint(uint64(d.r.Uint8())); return d.r.Err() },
	},
	reflect.Uint16: {
		enc: func(e *encoder, v reflect.Value) error { e.w.Uint16(uint16(v.Uint())); return e.w.Err() },
		dec: func(d *decoder, v reflect.Value) error { v.SetUint(uint64(d.r.Uint16())); return d.r.Err() },
	},
	reflect.Uint32: {
		enc: func(e *encoder, v reflect.Value) error { e.w.Uint32(uint32(v.Uint())); return e.w.Err() },
		dec: func(d *decoder, v reflect.Value) error { v.SetUint(uint64(d.r.Uint32())); return d.r.Err() },
	},
	reflect.Uint64: {
		enc: encodeUint64,
		dec: decodeUint64,
	},
	reflect.Uint: {
		enc: encodeUint64,
		dec: decodeUint64,
	},
	reflect.Float32: {
		enc: func(e *encoder, v reflect.Value) error { e.w.Float32(float32(v.Float())); return e.w.Err() },
		dec: func(d *decoder, v reflect.Value) error { v.SetFloat(float64(d.r.Float32())); return d.r.Err() },
	},
	reflect.Float64: {
		enc: func(e *encoder, v reflect.Value) error { e.w.Float64(v.Float()); return e.w.Err() },
		dec: func(d *decoder, v reflect.Value) error { v.SetFloat(d.r.Float64()); return d.r.Err() },
	},
	reflect.Complex64: {
		enc: func(e *encoder, v reflect.Value) error { e.w.Complex64(complex64(v.Complex())); return e.w.Err() },
		dec: func(d *decoder, v reflect.Value) error { v.SetComplex(complex128(d.r.Complex64())); return d.r.Err() },
	},
	reflect.Complex128: {
		enc: func(e *encoder, v reflect.Value) error { e.w.Complex128(v.Complex()); return e.w.Err() },
		dec: func(d *decoder, v reflect.Value) error { v.SetComplex(d.r.Complex128()); return d.r.Err() },
	},
}

func encodeInt64(e *encoder, v reflect.Value) error {
	e.w.Int64(v.Int())
	return e.w.Err()
}

func decodeInt64(d *decoder, v reflect.Value) error {
	x := d.r.Int64()
	if err := d.r.Err(); err != nil {
		return err
	}
	if v.OverflowInt(x) {
		return merr.WrapErrNotImplemented("integer wider than the platform int", strconv.FormatInt(x, 10))
	}
	v.SetInt(x)
	return nil
}

func encodeUint64(e *encoder, v reflect.Value) error {
	e.w.Uint64(v.Uint())
	return e.w.Err()
}

func decodeUint64(d *decoder, v reflect.Value) error {
	x := d.r.Uint64()
	if err := d.r.Err(); err != nil {
		return err
	}
	if v.OverflowUint(x) {
		return merr.WrapErrNotImplemented("integer wider than the platform uint", strconv.FormatUint(x, 10))
	}
	v.SetUint(x)
	return nil
}
