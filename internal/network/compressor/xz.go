package compressor

import (
	"bytes"
	"io"

	"github.com/ulikunitz/xz"

	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

// XZCompressor 基于 ulikunitz/xz 的块压缩实现，压缩率高但速度慢，适合低频的大消息。
type XZCompressor struct {
	max int
}

var _ Compressor = XZCompressor{}

func NewXZCompressor(maxDecoded int) XZCompressor {
	return XZCompressor{max: maxDecodedOrDefault(maxDecoded)}
}

func (XZCompressor) Compress(dst, src []byte) ([]byte, error) {
	buf := bytes.NewBuffer(dst[:0])
	w, err := xz.NewWriter(buf)
	if err != nil {
		return nil, merr.WrapErrCompression(string(AlgorithmXZ), err)
	}
	if _, err := w.Write(src); err != nil {
		return nil, merr.WrapErrCompression(string(AlgorithmXZ), err)
	}
	if err := w.Close(); err != nil {
		return nil, merr.WrapErrCompression(string(AlgorithmXZ), err)
	}
	return buf.Bytes(), nil
}

func (c XZCompressor) Decompress(dst, src []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, merr.WrapErrCompression(string(AlgorithmXZ), err)
	}
	limit := maxDecodedOrDefault(c.max)
	buf := bytes.NewBuffer(dst[:0])
	// 多读 1 字节用于判断是否超限
	n, err := io.Copy(buf, io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, merr.WrapErrCompression(string(AlgorithmXZ), err)
	}
	if n > int64(limit) {
		return nil, merr.WrapErrFrameTooLarge(int(n), limit, "xz block")
	}
	return buf.Bytes(), nil
}

func (XZCompressor) Algorithm() Algorithm { return AlgorithmXZ }
