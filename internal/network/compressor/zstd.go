package compressor

import (
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"

	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

// ZstdCompressor 基于 github.com/klauspost/compress/zstd 的压缩实现。
//
// 它持有独立的 encoder/decoder 实例，EncodeAll/DecodeAll 可以并发调用。
type ZstdCompressor struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
	max int
}

var _ Compressor = (*ZstdCompressor)(nil)

// NewZstdCompressor 创建一个 ZstdCompressor，并发度取 GOMAXPROCS。
//
// level 使用 zstd 命令行的 1~22 级别，0 表示默认级别。
func NewZstdCompressor(level, maxDecoded int) (*ZstdCompressor, error) {
	return NewZstdCompressorWithConcurrency(level, 0, maxDecoded)
}

// NewZstdCompressorWithConcurrency 与 NewZstdCompressor 相同，但允许显式指定并发数。
//   - concurrency <= 0：使用 runtime.GOMAXPROCS(0)。
func NewZstdCompressorWithConcurrency(level, concurrency, maxDecoded int) (*ZstdCompressor, error) {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	maxDecoded = maxDecodedOrDefault(maxDecoded)

	opts := []zstd.EOption{
		zstd.WithZeroFrames(true),
		zstd.WithEncoderConcurrency(concurrency),
	}
	if level > 0 {
		opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	}

	enc, err := zstd.NewWriter(nil, opts...)
	if err != nil {
		return nil, merr.WrapErrCompression(string(AlgorithmZstd), err)
	}
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(concurrency),
		zstd.WithDecoderMaxMemory(uint64(maxDecoded)),
	)
	if err != nil {
		enc.Close()
		return nil, merr.WrapErrCompression(string(AlgorithmZstd), err)
	}
	return &ZstdCompressor{
		enc: enc,
		dec: dec,
		max: maxDecoded,
	}, nil
}

func (c *ZstdCompressor) Compress(dst, src []byte) ([]byte, error) {
	if c == nil || c.enc == nil {
		return nil, merr.WrapErrCompression(string(AlgorithmZstd), zstd.ErrEncoderClosed)
	}
	return c.enc.EncodeAll(src, dst[:0]), nil
}

func (c *ZstdCompressor) Decompress(dst, src []byte) ([]byte, error) {
	if c == nil || c.dec == nil {
		return nil, merr.WrapErrCompression(string(AlgorithmZstd), zstd.ErrDecoderClosed)
	}
	out, err := c.dec.DecodeAll(src, dst[:0])
	switch {
	case errors.Is(err, zstd.ErrDecoderSizeExceeded), errors.Is(err, zstd.ErrWindowSizeExceeded):
		return nil, merr.WrapErrFrameTooLarge(-1, c.max, "zstd block")
	case err != nil:
		return nil, merr.WrapErrCompression(string(AlgorithmZstd), err)
	}
	return out, nil
}

func (c *ZstdCompressor) Algorithm() Algorithm { return AlgorithmZstd }

// Close 释放内部 encoder/decoder 持有的资源，再次使用已关闭实例将返回错误。
func (c *ZstdCompressor) Close() {
	if c == nil {
		return
	}
	if c.enc != nil {
		_ = c.enc.Close()
		c.enc = nil
	}
	if c.dec != nil {
		c.dec.Close()
		c.dec = nil
	}
}
