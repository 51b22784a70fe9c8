package codec

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/lk2023060901/danmu-garden-codec/internal/gamestate"
	"github.com/lk2023060901/danmu-garden-codec/internal/network"
	"github.com/lk2023060901/danmu-garden-codec/internal/network/compressor"
	"github.com/lk2023060901/danmu-garden-codec/internal/network/framer"
	"github.com/lk2023060901/danmu-garden-codec/internal/network/serializer"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

type CodecSuite struct {
	suite.Suite
	ctx *serde.Context
}

func (s *CodecSuite) SetupTest() {
	s.ctx = serde.New()
	_, err := s.ctx.AddModule(gamestate.Module())
	s.Require().NoError(err)
}

func (s *CodecSuite) newCodec(alg compressor.Algorithm, enabled bool) Codec {
	comp, err := compressor.New(alg, 0, 0)
	s.Require().NoError(err)
	c, err := New(Options{
		Framer:            framer.NewLengthPrefixedFramer(0),
		Serializer:        serializer.NewBinarySerializer(s.ctx),
		Compressor:        comp,
		EnableCompression: enabled,
		Threshold:         serde.DefaultCompressionThreshold,
	})
	s.Require().NoError(err)
	return c
}

// frameHeader 返回帧头中的有符号长度。
func frameHeader(data []byte) int64 {
	v, _ := protowire.ConsumeVarint(data)
	return protowire.DecodeZigZag(v)
}

func (s *CodecSuite) TestSmallPayloadStaysRaw() {
	c := s.newCodec(compressor.AlgorithmLZ4, true)
	var buf bytes.Buffer
	s.Require().NoError(c.Encode(&buf, int32(7)))
	s.Positive(frameHeader(buf.Bytes()))

	var out int32
	s.Require().NoError(c.Decode(&buf, &out))
	s.Equal(int32(7), out)
}

func (s *CodecSuite) TestLargePayloadCompressed() {
	state := gamestate.NewEntityState(1, []gamestate.ComponentChanged{
		gamestate.Added(1, strings.Repeat("abc", 200)),
	}, nil)

	for _, alg := range []compressor.Algorithm{
		compressor.AlgorithmLZ4,
		compressor.AlgorithmZstd,
		compressor.AlgorithmS2,
		compressor.AlgorithmXZ,
	} {
		c := s.newCodec(alg, true)
		var buf bytes.Buffer
		s.Require().NoError(c.Encode(&buf, state))
		s.Negative(frameHeader(buf.Bytes()), alg)

		var out gamestate.EntityState
		s.Require().NoError(c.Decode(&buf, &out), alg)
		s.Equal(state, out)
	}
}

func (s *CodecSuite) TestReaderIgnoresOwnSwitch() {
	state := gamestate.NewEntityState(1, []gamestate.ComponentChanged{
		gamestate.Added(1, strings.Repeat("xyz", 100)),
	}, nil)
	writer := s.newCodec(compressor.AlgorithmZstd, true)
	reader := s.newCodec(compressor.AlgorithmZstd, false)

	var buf bytes.Buffer
	s.Require().NoError(writer.Encode(&buf, state))
	s.Require().NoError(writer.Encode(&buf, int32(1)))

	var out gamestate.EntityState
	s.Require().NoError(reader.Decode(&buf, &out))
	s.Equal(state, out)
	var n int32
	s.Require().NoError(reader.Decode(&buf, &n))
	s.Equal(int32(1), n)

	_, err := reader.DecodeRaw(&buf)
	s.ErrorIs(err, io.EOF)
}

func (s *CodecSuite) TestCompressedFrameWithoutDecompressor() {
	writer := s.newCodec(compressor.AlgorithmS2, true)
	reader := s.newCodec(compressor.AlgorithmNone, false)

	var buf bytes.Buffer
	s.Require().NoError(writer.Encode(&buf, strings.Repeat("long ", 100)))
	_, err := reader.DecodeRaw(&buf)
	s.ErrorIs(err, merr.ErrCompression)
	stage, ok := network.StageOf(err)
	s.True(ok)
	s.Equal(network.StageDecompress, stage)
}

func (s *CodecSuite) TestEncodeErrors() {
	c := s.newCodec(compressor.AlgorithmNone, false)
	err := c.Encode(&bytes.Buffer{}, make(chan int))
	s.ErrorIs(err, merr.ErrUnsupportedType)
	stage, _ := network.StageOf(err)
	s.Equal(network.StageEncode, stage)

	s.ErrorIs(c.Encode(nil, 1), merr.ErrParameterMissing)
}

func (s *CodecSuite) TestTruncatedFrame() {
	c := s.newCodec(compressor.AlgorithmNone, false)
	var buf bytes.Buffer
	s.Require().NoError(c.Encode(&buf, "hello world"))
	data := buf.Bytes()
	_, err := c.DecodeRaw(bytes.NewReader(data[:len(data)-2]))
	s.ErrorIs(err, merr.ErrEndOfStream)
}

func TestCodec(t *testing.T) {
	suite.Run(t, new(CodecSuite))
}

func TestNewValidation(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, merr.ErrParameterMissing)

	_, err = New(Options{Framer: framer.NewLengthPrefixedFramer(0)})
	assert.ErrorIs(t, err, merr.ErrParameterMissing)

	ctx := serde.New()
	_, err = New(Options{
		Framer:     framer.NewLengthPrefixedFramer(0),
		Serializer: serializer.NewBinarySerializer(ctx),
		Threshold:  -1,
	})
	assert.ErrorIs(t, err, merr.ErrParameterInvalid)
}

func TestNewFromConfig(t *testing.T) {
	ctx := serde.New()
	_, err := ctx.AddModule(gamestate.Module())
	require.NoError(t, err)

	cfg := serde.DefaultConfig()
	cfg.Compression.Enabled = true
	cfg.Compression.Algorithm = "zstd"
	c, err := NewFromConfig(ctx, cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf, strings.Repeat("z", 500)))
	raw, err := c.DecodeRaw(&buf)
	require.NoError(t, err)
	v, err := ctx.DeserializeFromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("z", 500), v)

	cfg.Compression.Algorithm = "brotli"
	_, err = NewFromConfig(ctx, cfg)
	assert.ErrorIs(t, err, merr.ErrParameterInvalid)
}

func TestDecompressedSizeBoundedByFrame(t *testing.T) {
	ctx := serde.New()
	cfg := serde.DefaultConfig()
	cfg.Frame.MaxSize = 4 << 10

	for _, alg := range []string{"lz4", "zstd", "s2", "xz"} {
		cfg.Compression.Algorithm = alg
		c, err := NewFromConfig(ctx, cfg)
		require.NoError(t, err, alg)

		// 对端使用默认上限压缩出 256KB 的负载，压缩后仍能装进一帧
		parsed, err := compressor.ParseAlgorithm(alg)
		require.NoError(t, err)
		wide, err := compressor.New(parsed, 0, 0)
		require.NoError(t, err)
		packet, err := wide.Compress(nil, bytes.Repeat([]byte{7}, 256<<10))
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, framer.NewLengthPrefixedFramer(0).WriteFrame(&buf, packet, true))
		_, err = c.DecodeRaw(&buf)
		assert.ErrorIs(t, err, merr.ErrFrameTooLarge, alg)
		stage, ok := network.StageOf(err)
		assert.True(t, ok)
		assert.Equal(t, network.StageDecompress, stage)
	}
}
