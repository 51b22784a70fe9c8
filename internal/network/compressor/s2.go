package compressor

import (
	"github.com/klauspost/compress/s2"

	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

// S2Compressor 基于 klauspost/compress/s2 的块压缩实现。
//
// level：0/1 为默认速度，2 为 Better，3 及以上为 Best。
type S2Compressor struct {
	level int
	max   int
}

var _ Compressor = (*S2Compressor)(nil)

func NewS2Compressor(level, maxDecoded int) *S2Compressor {
	return &S2Compressor{level: level, max: maxDecodedOrDefault(maxDecoded)}
}

func (c *S2Compressor) Compress(dst, src []byte) ([]byte, error) {
	if n := s2.MaxEncodedLen(len(src)); n < 0 {
		return nil, merr.WrapErrCompression(string(AlgorithmS2), s2.ErrTooLarge)
	} else if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:cap(dst)]
	switch {
	case c.level >= 3:
		return s2.EncodeBest(dst, src), nil
	case c.level == 2:
		return s2.EncodeBetter(dst, src), nil
	default:
		return s2.Encode(dst, src), nil
	}
}

func (c *S2Compressor) Decompress(dst, src []byte) ([]byte, error) {
	n, err := s2.DecodedLen(src)
	if err != nil {
		return nil, merr.WrapErrCompression(string(AlgorithmS2), err)
	}
	if n > c.max {
		return nil, merr.WrapErrFrameTooLarge(n, c.max, "s2 block")
	}
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	out, err := s2.Decode(dst[:cap(dst)], src)
	if err != nil {
		return nil, merr.WrapErrCompression(string(AlgorithmS2), err)
	}
	return out, nil
}

func (c *S2Compressor) Algorithm() Algorithm { return AlgorithmS2 }
