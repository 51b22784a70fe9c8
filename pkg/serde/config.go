package serde

import (
	"github.com/lk2023060901/danmu-garden-codec/internal/network/compressor"
	"github.com/lk2023060901/danmu-garden-codec/internal/network/framer"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
	zviper "github.com/lk2023060901/danmu-garden-codec/pkg/util/viper"
)

// Config 为编解码器的静态配置，对应配置文件中的顶层 compression/frame/warmup/trace 段。
//
// 示例（YAML）：
//
//	compression:
//	  enabled: true
//	  algorithm: lz4
//	  level: 0
//	  threshold: 32
//	frame:
//	  maxSize: 16777216
//	warmup:
//	  poolSize: 8
//	  preAlloc: true
//	trace:
//	  enabled: false
type Config struct {
	Compression CompressionConfig `toml:"compression" json:"compression" mapstructure:"compression"`
	Frame       FrameConfig       `toml:"frame" json:"frame" mapstructure:"frame"`
	Warmup      WarmupConfig      `toml:"warmup" json:"warmup" mapstructure:"warmup"`
	Trace       TraceConfig       `toml:"trace" json:"trace" mapstructure:"trace"`
}

type CompressionConfig struct {
	// Enabled 控制流模式压缩的初始开关，运行期可通过 SetUseCompression 修改。
	Enabled bool `toml:"enabled" json:"enabled" mapstructure:"enabled"`
	// Algorithm 为压缩算法：none/lz4/zstd/s2/xz，默认 lz4。
	Algorithm string `toml:"algorithm" json:"algorithm" mapstructure:"algorithm"`
	Level     int    `toml:"level" json:"level" mapstructure:"level"`
	// Threshold 为消息模式下触发压缩的最小负载字节数（不含）。
	Threshold int `toml:"threshold" json:"threshold" mapstructure:"threshold"`
}

type FrameConfig struct {
	MaxSize uint32 `toml:"maxSize" json:"maxSize" mapstructure:"maxSize"`
}

type WarmupConfig struct {
	// PoolSize 为 Warmup 使用的协程数，<= 0 时取 GOMAXPROCS。
	PoolSize int `toml:"poolSize" json:"poolSize" mapstructure:"poolSize"`
	// PreAlloc 为 true 时创建协程池即分配全部 worker。
	PreAlloc bool `toml:"preAlloc" json:"preAlloc" mapstructure:"preAlloc"`
}

type TraceConfig struct {
	// Enabled 为 true 时以 Debug 级别记录每一次底层读写，用于排查两端失步。
	Enabled bool `toml:"enabled" json:"enabled" mapstructure:"enabled"`
}

// DefaultCompressionThreshold 为消息模式的默认压缩阈值。
const DefaultCompressionThreshold = 32

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		Compression: CompressionConfig{
			Algorithm: string(compressor.DefaultAlgorithm),
			Threshold: DefaultCompressionThreshold,
		},
		Frame: FrameConfig{
			MaxSize: framer.DefaultMaxFrameSize,
		},
	}
}

// LoadConfig 在默认配置之上叠加 cfg 中的配置项并校验。
func LoadConfig(cfg *zviper.Config) (Config, error) {
	out := DefaultConfig()
	if cfg != nil {
		if err := cfg.Unmarshal(&out); err != nil {
			return Config{}, merr.WrapErrParameterInvalidMsg("unmarshal serde config: %v", err)
		}
	}
	return out, out.Validate()
}

// Validate 校验配置项取值。
func (c Config) Validate() error {
	if _, err := compressor.ParseAlgorithm(c.Compression.Algorithm); err != nil {
		return err
	}
	if c.Compression.Level < 0 || c.Compression.Level > 22 {
		return merr.WrapErrParameterInvalidMsg("compression.level %d out of range [0, 22]", c.Compression.Level)
	}
	if c.Compression.Threshold < 0 {
		return merr.WrapErrParameterInvalidMsg("compression.threshold must not be negative, got %d", c.Compression.Threshold)
	}
	if c.Warmup.PoolSize < 0 {
		return merr.WrapErrParameterInvalidMsg("warmup.poolSize must not be negative, got %d", c.Warmup.PoolSize)
	}
	return nil
}
