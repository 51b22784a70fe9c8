package compressor

import (
	"io"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"

	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

// NewWriter 返回一个流式压缩写入器。
//
// Close 会刷新并写出流尾，但不会关闭底层 w。
func NewWriter(alg Algorithm, level int, w io.Writer) (io.WriteCloser, error) {
	switch alg {
	case AlgorithmNone:
		return nopWriteCloser{w}, nil
	case AlgorithmLZ4, "":
		zw := lz4.NewWriter(w)
		if err := zw.Apply(lz4.BlockSizeOption(lz4.Block4Mb), lz4.CompressionLevelOption(lz4Level(level))); err != nil {
			return nil, merr.WrapErrCompression(string(AlgorithmLZ4), err)
		}
		return zw, nil
	case AlgorithmZstd:
		opts := []zstd.EOption{zstd.WithEncoderConcurrency(1)}
		if level > 0 {
			opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		}
		zw, err := zstd.NewWriter(w, opts...)
		if err != nil {
			return nil, merr.WrapErrCompression(string(AlgorithmZstd), err)
		}
		return zw, nil
	case AlgorithmS2:
		var opts []s2.WriterOption
		switch {
		case level >= 3:
			opts = append(opts, s2.WriterBestCompression())
		case level == 2:
			opts = append(opts, s2.WriterBetterCompression())
		}
		return s2.NewWriter(w, opts...), nil
	case AlgorithmXZ:
		zw, err := xz.NewWriter(w)
		if err != nil {
			return nil, merr.WrapErrCompression(string(AlgorithmXZ), err)
		}
		return zw, nil
	default:
		return nil, merr.WrapErrParameterInvalid("none|lz4|zstd|s2|xz", string(alg), "compression algorithm")
	}
}

// NewReader 返回一个流式解压读取器，Close 只释放解压器自身的资源。
//
// 解压器可能会从 r 中预读超出当前流的数据，同一个 r 上不应再混用其它读取者。
func NewReader(alg Algorithm, r io.Reader) (io.ReadCloser, error) {
	switch alg {
	case AlgorithmNone:
		return io.NopCloser(r), nil
	case AlgorithmLZ4, "":
		return io.NopCloser(lz4.NewReader(r)), nil
	case AlgorithmZstd:
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, merr.WrapErrCompression(string(AlgorithmZstd), err)
		}
		return dec.IOReadCloser(), nil
	case AlgorithmS2:
		return io.NopCloser(s2.NewReader(r)), nil
	case AlgorithmXZ:
		zr, err := xz.NewReader(r)
		if err != nil {
			return nil, merr.WrapErrCompression(string(AlgorithmXZ), err)
		}
		return io.NopCloser(zr), nil
	default:
		return nil, merr.WrapErrParameterInvalid("none|lz4|zstd|s2|xz", string(alg), "compression algorithm")
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
