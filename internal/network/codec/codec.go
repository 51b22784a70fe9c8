package codec

import (
	"io"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/lk2023060901/danmu-garden-codec/internal/network"
	"github.com/lk2023060901/danmu-garden-codec/internal/network/compressor"
	"github.com/lk2023060901/danmu-garden-codec/internal/network/framer"
	"github.com/lk2023060901/danmu-garden-codec/internal/network/serializer"
	"github.com/lk2023060901/danmu-garden-codec/pkg/log"
	"github.com/lk2023060901/danmu-garden-codec/pkg/metrics"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

// Codec 抽象了消息模式下“从业务对象到网络帧，以及从网络帧回到业务对象”的完整编解码流程。
//
// Pipeline（写出 Encode）：
//
//	msg --> serializer --> [compress?] --> framer.WriteFrame(长度符号标记是否压缩)
//
// Pipeline（读入 Decode）：
//
//	framer.ReadFrame --> [decompress?] --> serializer --> msg
//
// 每条消息独立成帧，压缩与否按帧决定；读取端只看长度的符号，与自身的压缩开关无关。
type Codec interface {
	// Encode 将业务对象编码并写入到底层流。
	Encode(w io.Writer, msg any) error

	// Decode 从底层流中读取一帧，并解码到 msg 中（msg 通常为指针）。
	Decode(r io.Reader, msg any) error

	// DecodeRaw 从底层流中读取一帧，返回已完成解压的业务字节。
	DecodeRaw(r io.Reader) ([]byte, error)
}

// Options 用于构造 Codec 的依赖注入参数。
type Options struct {
	Framer     framer.Framer
	Serializer serializer.Serializer
	Compressor compressor.Compressor // 允许为 nil（内部会用 NopCompressor）

	// EnableCompression 只影响写出；负载长度大于 Threshold 且压缩后确实变小时才会压缩。
	EnableCompression bool
	Threshold         int
}

type codec struct {
	framer     framer.Framer
	serializer serializer.Serializer
	compressor compressor.Compressor

	compress  bool
	threshold int

	logger *log.MLogger
}

var _ Codec = (*codec)(nil)

// New 创建一个基于给定依赖的 Codec。
func New(opts Options) (Codec, error) {
	if opts.Framer == nil {
		return nil, merr.WrapErrParameterMissing("framer", "codec")
	}
	if opts.Serializer == nil {
		return nil, merr.WrapErrParameterMissing("serializer", "codec")
	}
	if opts.Threshold < 0 {
		return nil, merr.WrapErrParameterInvalidMsg("codec: threshold must not be negative, got %d", opts.Threshold)
	}

	c := &codec{
		framer:     opts.Framer,
		serializer: opts.Serializer,
		compress:   opts.EnableCompression,
		threshold:  opts.Threshold,
		logger:     log.With(log.FieldComponent("codec")),
	}
	if opts.Compressor != nil {
		c.compressor = opts.Compressor
	} else {
		c.compressor = compressor.NopCompressor{}
	}
	return c, nil
}

// NewFromConfig 按 serde 配置组装消息模式的 Codec。
func NewFromConfig(ctx *serde.Context, cfg serde.Config) (Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	alg, err := compressor.ParseAlgorithm(cfg.Compression.Algorithm)
	if err != nil {
		return nil, err
	}
	// 解压后的负载与帧共用同一上限
	fr := framer.NewLengthPrefixedFramer(cfg.Frame.MaxSize)
	comp, err := compressor.New(alg, cfg.Compression.Level, int(fr.MaxFrameSize))
	if err != nil {
		return nil, err
	}
	return New(Options{
		Framer:            fr,
		Serializer:        serializer.NewBinarySerializer(ctx),
		Compressor:        comp,
		EnableCompression: cfg.Compression.Enabled,
		Threshold:         cfg.Compression.Threshold,
	})
}

// Encode 实现 Codec.Encode。
func (c *codec) Encode(w io.Writer, msg any) error {
	if w == nil {
		return merr.WrapErrParameterMissing("writer", "codec")
	}

	body, err := c.serializer.Marshal(msg)
	if err != nil {
		return network.WrapStage(network.StageEncode, err)
	}

	compressed := false
	if c.compress && len(body) > c.threshold && c.compressor.Algorithm() != compressor.AlgorithmNone {
		packed, err := c.compressor.Compress(nil, body)
		if err != nil {
			return network.WrapStage(network.StageCompress, err)
		}
		alg := string(c.compressor.Algorithm())
		metrics.CompressionRatio.WithLabelValues(alg, metrics.MessageModeLabel).Observe(float64(len(packed)) / float64(len(body)))
		if len(packed) < len(body) {
			body, compressed = packed, true
		} else {
			c.logger.RatedDebug("codec payload not compressible",
				zap.String("algorithm", alg),
				zap.Int("raw", len(body)),
				zap.Int("packed", len(packed)))
		}
	}

	return network.WrapStage(network.StageFrame, c.framer.WriteFrame(w, body, compressed))
}

// DecodeRaw 实现 Codec.DecodeRaw。流在帧边界处结束时返回 io.EOF。
func (c *codec) DecodeRaw(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, merr.WrapErrParameterMissing("reader", "codec")
	}
	payload, compressed, err := c.framer.ReadFrame(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, network.WrapStage(network.StageFrame, err)
	}
	if !compressed {
		return payload, nil
	}
	if c.compressor.Algorithm() == compressor.AlgorithmNone {
		return nil, network.WrapStage(network.StageDecompress,
			merr.WrapErrCompression(string(compressor.AlgorithmNone), errors.New("compressed frame but no decompressor configured")))
	}
	plain, err := c.compressor.Decompress(nil, payload)
	if err != nil {
		return nil, network.WrapStage(network.StageDecompress, err)
	}
	return plain, nil
}

// Decode 实现 Codec.Decode。
func (c *codec) Decode(r io.Reader, msg any) error {
	data, err := c.DecodeRaw(r)
	if err != nil {
		return err
	}
	return network.WrapStage(network.StageDecode, c.serializer.Unmarshal(data, msg))
}
