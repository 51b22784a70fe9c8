package wire

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

// Reader 以小端序从 io.Reader 读取定宽值，错误同样是粘滞的。
//
// 底层流提前结束时统一报告 merr.ErrEndOfStream：流已失步，不可恢复。
type Reader struct {
	r   io.Reader
	tmp [16]byte
	n   int64
	err error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (r *Reader) Err() error { return r.err }

func (r *Reader) SetErr(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Consumed 返回已成功读取的字节数。
func (r *Reader) Consumed() int64 { return r.n }

func (r *Reader) read(p []byte) bool {
	if r.err != nil {
		clear(p)
		return false
	}
	n, err := io.ReadFull(r.r, p)
	r.n += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			r.err = merr.WrapErrEndOfStream(len(p), n)
		} else {
			r.err = errors.Wrap(err, "wire: read")
		}
		clear(p)
		return false
	}
	return true
}

func (r *Reader) Bool() bool { return r.Uint8() != 0 }

func (r *Reader) Int8() int8 { return int8(r.Uint8()) }

func (r *Reader) Uint8() uint8 {
	r.read(r.tmp[:1])
	return r.tmp[0]
}

func (r *Reader) Int16() int16 { return int16(r.Uint16()) }

func (r *Reader) Uint16() uint16 {
	r.read(r.tmp[:2])
	return binary.LittleEndian.Uint16(r.tmp[:2])
}

func (r *Reader) Int32() int32 { return int32(r.Uint32()) }

func (r *Reader) Uint32() uint32 {
	r.read(r.tmp[:4])
	return binary.LittleEndian.Uint32(r.tmp[:4])
}

func (r *Reader) Int64() int64 { return int64(r.Uint64()) }

func (r *Reader) Uint64() uint64 {
	r.read(r.tmp[:8])
	return binary.LittleEndian.Uint64(r.tmp[:8])
}

func (r *Reader) Float32() float32 { return math.Float32frombits(r.Uint32()) }

func (r *Reader) Float64() float64 { return math.Float64frombits(r.Uint64()) }

func (r *Reader) Complex64() complex64 {
	r.read(r.tmp[:8])
	re := math.Float32frombits(binary.LittleEndian.Uint32(r.tmp[:4]))
	im := math.Float32frombits(binary.LittleEndian.Uint32(r.tmp[4:8]))
	return complex(re, im)
}

func (r *Reader) Complex128() complex128 {
	r.read(r.tmp[:16])
	re := math.Float64frombits(binary.LittleEndian.Uint64(r.tmp[:8]))
	im := math.Float64frombits(binary.LittleEndian.Uint64(r.tmp[8:16]))
	return complex(re, im)
}

// Data 读满 p。
func (r *Reader) Data(p []byte) {
	if len(p) == 0 {
		return
	}
	r.read(p)
}

func (r *Reader) TypeID() TypeID { return UnpackTypeID(r.Uint32()) }

// Length 读取偏移 1 的集合长度，isNil 为 true 表示写入端是 nil。
func (r *Reader) Length() (n int, isNil bool) {
	v := r.Int32()
	if r.err != nil {
		return 0, true
	}
	if v == 0 {
		return 0, true
	}
	if v < 0 || v-1 > MaxCollectionLen {
		r.err = errors.Wrapf(merr.ErrEndOfStream, "wire: collection length %d out of range", v)
		return 0, true
	}
	return int(v - 1), false
}

// StringHeader 读取字符串头部。
//   - isNil：写入端为 nil 字符串
//   - interned 非空：驻留字符串引用
//   - 其余情况 n 为随后 UTF-8 字节的长度
func (r *Reader) StringHeader() (n int, isNil bool, interned *InternedString) {
	v := r.Int32()
	switch {
	case r.err != nil:
		return 0, true, nil
	case v == 0:
		return 0, true, nil
	case v == StringSentinel:
		id := UnpackInternedString(r.Int32())
		if r.err != nil {
			return 0, true, nil
		}
		return 0, false, &id
	case v < 0 || v-1 >= MaxInlineStringLen:
		r.err = errors.Wrapf(merr.ErrEndOfStream, "wire: string length %d out of range", v)
		return 0, true, nil
	default:
		return int(v - 1), false, nil
	}
}
