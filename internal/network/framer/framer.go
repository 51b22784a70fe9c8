package framer

import (
	"io"

	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

// Framer 抽象了消息模式下的分帧能力。
//
// 约定：
//   - 一帧数据的格式为：有符号 varint 长度（zigzag 编码）+ 负载。
//   - 长度为负表示负载经过压缩，绝对值为压缩后的字节数；非负表示原始负载。
type Framer interface {
	// WriteFrame 将 payload 打包为一帧并写入到 w 中。
	WriteFrame(w io.Writer, payload []byte, compressed bool) error

	// ReadFrame 从 r 中读取一帧数据。流在帧边界处结束时返回 io.EOF。
	ReadFrame(r io.Reader) (payload []byte, compressed bool, err error)
}

// LengthPrefixedFramer 使用有符号 varint 长度前缀作为帧边界。
// 适用于基于流的连接（如 TCP、WebSocket 原始流等）。
type LengthPrefixedFramer struct {
	// MaxFrameSize 为允许的最大负载大小，单位字节。
	// 为 0 时使用默认值 DefaultMaxFrameSize。
	MaxFrameSize uint32
}

// DefaultMaxFrameSize 为默认的最大帧大小。
const DefaultMaxFrameSize uint32 = 16 * 1024 * 1024 // 16MB

var _ Framer = (*LengthPrefixedFramer)(nil)

// NewLengthPrefixedFramer 创建一个长度前缀帧编码器，maxFrameSize 为 0 时使用默认值。
func NewLengthPrefixedFramer(maxFrameSize uint32) *LengthPrefixedFramer {
	if maxFrameSize == 0 {
		maxFrameSize = DefaultMaxFrameSize
	}
	return &LengthPrefixedFramer{
		MaxFrameSize: maxFrameSize,
	}
}

// WriteFrame 将负载编码为长度前缀帧并一次性写入。
func (f *LengthPrefixedFramer) WriteFrame(w io.Writer, payload []byte, compressed bool) error {
	if w == nil {
		return merr.WrapErrParameterMissing("writer", "framer")
	}
	if len(payload) > int(f.effectiveMaxSize()) {
		return merr.WrapErrFrameTooLarge(len(payload), int(f.effectiveMaxSize()), "framer: write")
	}

	length := int64(len(payload))
	if compressed {
		length = -length
	}
	buf := make([]byte, 0, protowire.SizeVarint(protowire.EncodeZigZag(length))+len(payload))
	buf = protowire.AppendVarint(buf, protowire.EncodeZigZag(length))
	buf = append(buf, payload...)

	if _, err := w.Write(buf); err != nil {
		return errors.Wrap(err, "framer: write frame")
	}
	return nil
}

// ReadFrame 从流中读取一帧数据。
func (f *LengthPrefixedFramer) ReadFrame(r io.Reader) ([]byte, bool, error) {
	if r == nil {
		return nil, false, merr.WrapErrParameterMissing("reader", "framer")
	}
	header, err := readVarint(r)
	if err != nil {
		return nil, false, err
	}

	length := protowire.DecodeZigZag(header)
	compressed := length < 0
	if compressed {
		length = -length
	}
	if length > int64(f.effectiveMaxSize()) {
		return nil, false, merr.WrapErrFrameTooLarge(int(min(length, 1<<62)), int(f.effectiveMaxSize()), "framer: read")
	}

	payload := make([]byte, int(length))
	if n, err := io.ReadFull(r, payload); err != nil {
		return nil, false, merr.WrapErrEndOfStream(len(payload), n, "framer: read body")
	}
	return payload, compressed, nil
}

func (f *LengthPrefixedFramer) effectiveMaxSize() uint32 {
	if f == nil || f.MaxFrameSize == 0 {
		return DefaultMaxFrameSize
	}
	return f.MaxFrameSize
}

// readVarint 逐字节读取 varint；在第一个字节之前遇到 EOF 时原样返回 io.EOF。
func readVarint(r io.Reader) (uint64, error) {
	var (
		buf [binaryMaxVarintLen]byte
		one [1]byte
	)
	br, _ := r.(io.ByteReader)
	for i := 0; i < len(buf); i++ {
		var (
			b   byte
			err error
		)
		if br != nil {
			b, err = br.ReadByte()
		} else {
			_, err = io.ReadFull(r, one[:])
			b = one[0]
		}
		if err != nil {
			if i == 0 && errors.Is(err, io.EOF) {
				return 0, io.EOF
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return 0, merr.WrapErrEndOfStream(i+1, i, "framer: read header")
			}
			return 0, errors.Wrap(err, "framer: read header")
		}
		buf[i] = b
		if b < 0x80 {
			v, n := protowire.ConsumeVarint(buf[:i+1])
			if n < 0 {
				return 0, errors.Wrap(protowire.ParseError(n), "framer: read header")
			}
			return v, nil
		}
	}
	return 0, errors.Wrap(merr.ErrEndOfStream, "framer: varint header overflows 64 bits")
}

const binaryMaxVarintLen = 10
