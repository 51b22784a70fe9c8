package wire

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/cockroachdb/errors"
)

// Writer 以小端序向 io.Writer 写入定宽值。
//
// 错误是粘滞的：第一次写失败后，后续所有写操作都变为空操作，
// 调用方在一段逻辑结束时检查 Err 即可。
type Writer struct {
	w   io.Writer
	tmp [16]byte
	n   int64
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err 返回第一次写入时发生的错误。
func (w *Writer) Err() error { return w.err }

// SetErr 设置粘滞错误，已存在错误时保持不变。
func (w *Writer) SetErr(err error) {
	if w.err == nil {
		w.err = err
	}
}

// Written 返回已成功写入的字节数。
func (w *Writer) Written() int64 { return w.n }

func (w *Writer) write(p []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(p)
	w.n += int64(n)
	if err != nil {
		w.err = errors.Wrap(err, "wire: write")
	}
}

func (w *Writer) Bool(v bool) {
	if v {
		w.Uint8(1)
	} else {
		w.Uint8(0)
	}
}

func (w *Writer) Int8(v int8) { w.Uint8(uint8(v)) }

func (w *Writer) Uint8(v uint8) {
	w.tmp[0] = v
	w.write(w.tmp[:1])
}

func (w *Writer) Int16(v int16) { w.Uint16(uint16(v)) }

func (w *Writer) Uint16(v uint16) {
	binary.LittleEndian.PutUint16(w.tmp[:2], v)
	w.write(w.tmp[:2])
}

func (w *Writer) Int32(v int32) { w.Uint32(uint32(v)) }

func (w *Writer) Uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.tmp[:4], v)
	w.write(w.tmp[:4])
}

func (w *Writer) Int64(v int64) { w.Uint64(uint64(v)) }

func (w *Writer) Uint64(v uint64) {
	binary.LittleEndian.PutUint64(w.tmp[:8], v)
	w.write(w.tmp[:8])
}

func (w *Writer) Float32(v float32) { w.Uint32(math.Float32bits(v)) }

func (w *Writer) Float64(v float64) { w.Uint64(math.Float64bits(v)) }

func (w *Writer) Complex64(v complex64) {
	binary.LittleEndian.PutUint32(w.tmp[:4], math.Float32bits(real(v)))
	binary.LittleEndian.PutUint32(w.tmp[4:8], math.Float32bits(imag(v)))
	w.write(w.tmp[:8])
}

func (w *Writer) Complex128(v complex128) {
	binary.LittleEndian.PutUint64(w.tmp[:8], math.Float64bits(real(v)))
	binary.LittleEndian.PutUint64(w.tmp[8:16], math.Float64bits(imag(v)))
	w.write(w.tmp[:16])
}

// Data 原样写入 p。
func (w *Writer) Data(p []byte) {
	if len(p) == 0 {
		return
	}
	w.write(p)
}

// TypeID 写入 4 字节的类型标识。
func (w *Writer) TypeID(id TypeID) { w.Uint32(id.Pack()) }

// Length 写入偏移 1 的集合长度。
func (w *Writer) Length(n int) { w.Int32(int32(n + 1)) }

// Null 写入表示 nil 集合或 nil 字符串的长度 0。
func (w *Writer) Null() { w.Int32(0) }

// Interned 写入驻留字符串：哨兵长度 + 打包后的引用。
func (w *Writer) Interned(s InternedString) {
	w.Int32(StringSentinel)
	w.Int32(s.Pack())
}

// InlineString 写入内联字符串：长度 + 1，随后为 UTF-8 字节。
func (w *Writer) InlineString(s string) {
	w.Length(len(s))
	if w.err != nil || len(s) == 0 {
		return
	}
	if sw, ok := w.w.(io.StringWriter); ok {
		n, err := sw.WriteString(s)
		w.n += int64(n)
		if err != nil {
			w.err = errors.Wrap(err, "wire: write")
		}
		return
	}
	w.write([]byte(s))
}
