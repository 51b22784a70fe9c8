package compressor

import (
	"strings"

	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

// Compressor 抽象了“单次压缩/解压”能力，用于消息模式的压缩封装。
//
// 实现必须可以被多个 goroutine 并发使用。
type Compressor interface {
	// Compress 将 src 压缩后追加到 dst[:0] 并返回。
	//
	// dst 一般可以传入一个可复用的缓冲区（长度可为 0），实现可选择复用其底层容量。
	Compress(dst, src []byte) (packet []byte, err error)

	// Decompress 将压缩数据 src 解压到 dst[:0]。
	//
	// src 必须是同一算法 Compress 的输出。
	Decompress(dst, src []byte) (plain []byte, err error)

	// Algorithm 返回压缩算法名。
	Algorithm() Algorithm
}

// Algorithm 为压缩算法名，同时用作配置值和指标标签。
type Algorithm string

const (
	AlgorithmNone Algorithm = "none"
	AlgorithmLZ4  Algorithm = "lz4"
	AlgorithmZstd Algorithm = "zstd"
	AlgorithmS2   Algorithm = "s2"
	AlgorithmXZ   Algorithm = "xz"
)

// DefaultAlgorithm 为未配置算法时使用的默认值。
const DefaultAlgorithm = AlgorithmLZ4

// ParseAlgorithm 解析配置中的算法名，大小写不敏感；空串返回默认算法。
func ParseAlgorithm(name string) (Algorithm, error) {
	switch alg := Algorithm(strings.ToLower(strings.TrimSpace(name))); alg {
	case "":
		return DefaultAlgorithm, nil
	case AlgorithmNone, AlgorithmLZ4, AlgorithmZstd, AlgorithmS2, AlgorithmXZ:
		return alg, nil
	default:
		return "", merr.WrapErrParameterInvalid("none|lz4|zstd|s2|xz", name, "compression algorithm")
	}
}

// DefaultMaxDecoded 为未指定上限时，单个块允许解压出的最大字节数。
const DefaultMaxDecoded = 64 << 20

func maxDecodedOrDefault(n int) int {
	if n <= 0 {
		return DefaultMaxDecoded
	}
	return n
}

// New 按算法名创建块压缩器。level 的含义由具体算法决定，0 表示算法默认值。
//
// maxDecoded 限制 Decompress 输出的字节数，超出时返回 ErrFrameTooLarge；<= 0 使用 DefaultMaxDecoded。
func New(alg Algorithm, level, maxDecoded int) (Compressor, error) {
	switch alg {
	case AlgorithmNone:
		return NopCompressor{}, nil
	case AlgorithmLZ4, "":
		return NewLZ4Compressor(level, maxDecoded), nil
	case AlgorithmZstd:
		return NewZstdCompressor(level, maxDecoded)
	case AlgorithmS2:
		return NewS2Compressor(level, maxDecoded), nil
	case AlgorithmXZ:
		return NewXZCompressor(maxDecoded), nil
	default:
		return nil, merr.WrapErrParameterInvalid("none|lz4|zstd|s2|xz", string(alg), "compression algorithm")
	}
}

// NopCompressor 是一个空实现：不做任何压缩/解压，直接返回输入内容。
type NopCompressor struct{}

func (NopCompressor) Compress(_ []byte, src []byte) ([]byte, error) {
	return src, nil
}

func (NopCompressor) Decompress(_ []byte, src []byte) ([]byte, error) {
	return src, nil
}

func (NopCompressor) Algorithm() Algorithm { return AlgorithmNone }

var _ Compressor = NopCompressor{}
