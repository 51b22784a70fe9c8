package compressor

import (
	"sync"

	"github.com/pierrec/lz4/v4"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

// LZ4Compressor 基于 pierrec/lz4 的块压缩实现。
//
// 块格式：varint(原始长度<<1 | stored) + 数据。
// lz4 无法压缩输入时 stored 置 1，数据为原文。
type LZ4Compressor struct {
	level lz4.CompressionLevel
	max   int
	pool  sync.Pool // *lz4.Compressor
}

var _ Compressor = (*LZ4Compressor)(nil)

// NewLZ4Compressor 创建 LZ4 块压缩器。level 为 0 时使用快速模式，1~9 使用 HC 模式。
// 头部声明的原始长度超过 maxDecoded 的块直接拒绝，不做分配。
func NewLZ4Compressor(level, maxDecoded int) *LZ4Compressor {
	c := &LZ4Compressor{level: lz4Level(level), max: maxDecodedOrDefault(maxDecoded)}
	c.pool.New = func() any { return new(lz4.Compressor) }
	return c
}

// lz4Level 将 0~9 映射到 lz4.Fast、lz4.Level1~lz4.Level9。
func lz4Level(level int) lz4.CompressionLevel {
	switch {
	case level <= 0:
		return lz4.Fast
	case level >= 9:
		return lz4.Level9
	default:
		return lz4.CompressionLevel(1 << (7 + level))
	}
}

func (c *LZ4Compressor) Compress(dst, src []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(src))
	out := protowire.AppendVarint(dst[:0], uint64(len(src))<<1)
	head := len(out)
	if cap(out) < head+bound {
		grown := make([]byte, head, head+bound)
		copy(grown, out)
		out = grown
	}
	body := out[head : head+bound]

	var (
		n   int
		err error
	)
	if c.level == lz4.Fast {
		lc := c.pool.Get().(*lz4.Compressor)
		n, err = lc.CompressBlock(src, body)
		c.pool.Put(lc)
	} else {
		n, err = lz4.CompressBlockHC(src, body, c.level, nil, nil)
	}
	if err != nil {
		return nil, merr.WrapErrCompression(string(AlgorithmLZ4), err)
	}
	if n == 0 && len(src) > 0 {
		out = protowire.AppendVarint(out[:0], uint64(len(src))<<1|1)
		return append(out, src...), nil
	}
	return out[:head+n], nil
}

func (c *LZ4Compressor) Decompress(dst, src []byte) ([]byte, error) {
	header, m := protowire.ConsumeVarint(src)
	if m < 0 {
		return nil, merr.WrapErrCompression(string(AlgorithmLZ4), protowire.ParseError(m))
	}
	size := int(header >> 1)
	if header>>1 > uint64(c.max) {
		return nil, merr.WrapErrFrameTooLarge(size, c.max, "lz4 block")
	}
	body := src[m:]
	if header&1 == 1 {
		if len(body) != size {
			return nil, merr.WrapErrCompression(string(AlgorithmLZ4), lz4.ErrInvalidSourceShortBuffer)
		}
		return append(dst[:0], body...), nil
	}
	if size == 0 {
		return dst[:0], nil
	}
	if cap(dst) < size {
		dst = make([]byte, size)
	}
	n, err := lz4.UncompressBlock(body, dst[:size])
	if err != nil {
		return nil, merr.WrapErrCompression(string(AlgorithmLZ4), err)
	}
	return dst[:n], nil
}

func (c *LZ4Compressor) Algorithm() Algorithm { return AlgorithmLZ4 }
