// Package serde 实现类型感知的二进制对象编解码器。
//
// 服务端与客户端共享同一组按顺序注册的模块，借助紧凑的类型标识和双方同步的字符串驻留表，
// 在没有 IDL 的情况下交换任意（无环的）对象图。
//
// 线上格式只支持树形数据：同一子结构被多处引用时会被重复写出，环会被检测并报错。
package serde

import (
	"reflect"
	"runtime"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/lk2023060901/danmu-garden-codec/internal/network/compressor"
	"github.com/lk2023060901/danmu-garden-codec/pkg/log"
	"github.com/lk2023060901/danmu-garden-codec/pkg/metrics"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/fields"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/strtab"
	"github.com/lk2023060901/danmu-garden-codec/pkg/serde/typeinfo"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/conc"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/typeutil"
)

type options struct {
	useCompression bool
	algorithm      compressor.Algorithm
	level          int
	warmupPoolSize int
	warmupPreAlloc bool
	trace          bool
}

func defaultOptions() options {
	return options{algorithm: compressor.DefaultAlgorithm}
}

// Option 用于配置 Context。
type Option func(*options)

// WithCompression 设置流模式压缩的初始开关。
func WithCompression(enabled bool) Option {
	return func(o *options) {
		o.useCompression = enabled
	}
}

// WithAlgorithm 设置流模式压缩算法与级别。
func WithAlgorithm(alg compressor.Algorithm, level int) Option {
	return func(o *options) {
		o.algorithm = alg
		o.level = level
	}
}

func WithWarmupPoolSize(n int) Option {
	return func(o *options) {
		o.warmupPoolSize = n
	}
}

func WithWarmupPreAlloc(enabled bool) Option {
	return func(o *options) {
		o.warmupPreAlloc = enabled
	}
}

// WithTrace 开启底层读写跟踪日志。
func WithTrace(enabled bool) Option {
	return func(o *options) {
		o.trace = enabled
	}
}

// WithConfig 按配置设置全部选项，cfg 应先通过 Validate 校验。
func WithConfig(cfg Config) Option {
	return func(o *options) {
		if alg, err := compressor.ParseAlgorithm(cfg.Compression.Algorithm); err == nil {
			o.algorithm = alg
		}
		o.useCompression = cfg.Compression.Enabled
		o.level = cfg.Compression.Level
		o.warmupPoolSize = cfg.Warmup.PoolSize
		o.warmupPreAlloc = cfg.Warmup.PreAlloc
		o.trace = cfg.Trace.Enabled
	}
}

// Context 是一次会话（连接）范围内的编解码上下文。
//
// 它持有类型注册表、字符串驻留表、字段反射缓存以及按类型编译的编解码函数。
// 所有缓存都只追加；模块必须在并发使用之前注册完毕。
type Context struct {
	log.Binder

	mu       sync.Mutex
	registry *typeinfo.Registry
	strings  *strtab.Table
	fields   *fields.Reflector

	coders    sync.Map // reflect.Type -> *coder
	numCoders atomic.Int64
	reported  *typeutil.ConcurrentSet[reflect.Type]

	opts           options
	useCompression atomic.Bool

	serialized   atomic.Int64
	deserialized atomic.Int64
	failed       atomic.Int64
	bytesOut     atomic.Int64
	bytesIn      atomic.Int64
	largestOut   largestObject
	largestIn    largestObject
}

// New 创建一个尚未注册任何模块的 Context。
func New(opts ...Option) *Context {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	refl := fields.NewReflector()
	registry, _ := typeinfo.NewRegistry(refl)
	c := &Context{
		registry: registry,
		strings:  strtab.New(),
		fields:   refl,
		reported: typeutil.NewConcurrentSet[reflect.Type](),
		opts:     o,
	}
	c.useCompression.Store(o.useCompression)
	c.SetLogger(log.With(log.FieldComponent("serde")))
	return c
}

// NewFromConfig 校验配置并创建 Context，随后按顺序注册 modules。
func NewFromConfig(cfg Config, modules ...*typeinfo.Module) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := New(WithConfig(cfg))
	for _, m := range modules {
		if _, err := c.AddModule(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AddModule 注册模块并为其构建字符串表，返回分配的槽位。
func (c *Context) AddModule(m *typeinfo.Module) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	slot, err := c.registry.AddModule(m)
	if err != nil {
		return 0, err
	}
	manifest, err := c.registry.Manifest(slot)
	if err != nil {
		return 0, err
	}
	if err := c.strings.AddSlot(slot, manifest); err != nil {
		return 0, errors.Wrapf(err, "module %s", m.Name())
	}
	return slot, nil
}

func (c *Context) Registry() *typeinfo.Registry { return c.registry }

// Table 返回字符串驻留表。
func (c *Context) Table() *strtab.Table { return c.strings }

func (c *Context) Fields() *fields.Reflector { return c.fields }

// Algorithm 返回流模式压缩算法与级别。
func (c *Context) Algorithm() (compressor.Algorithm, int) {
	return c.opts.algorithm, c.opts.level
}

// CanSerialize 判断 t 能否作为顶层值写出：类型标识可以解析，且其编解码函数可以编译。
func (c *Context) CanSerialize(t reflect.Type) bool {
	if !c.registry.CanSerialize(t) || isEmptyMarker(t) {
		return false
	}
	_, err := c.coderFor(t)
	return err == nil
}

// RegisterStrings 将字符串注册到运行期驻留表，返回是否有新增。
// 两端必须以相同的顺序注册相同的字符串，可通过 StringTableHash 校验。
func (c *Context) RegisterStrings(strs []string) (bool, error) {
	return c.strings.Register(strs)
}

// AdoptStrings 以对端的运行期表为准重排本端运行期表，返回本端多出的字符串。
// 只能在会话传输数据之前调用。
func (c *Context) AdoptStrings(strs []string) ([]string, error) {
	return c.strings.Adopt(strs)
}

// StringTable 返回运行期驻留表的副本。
func (c *Context) StringTable() []string {
	return c.strings.Strings()
}

// StringTableHash 返回运行期驻留表的 SHA3-512 摘要。
func (c *Context) StringTableHash() [strtab.HashSize]byte {
	return c.strings.RuntimeHash()
}

// UseCompression 返回流模式压缩是否开启。
func (c *Context) UseCompression() bool {
	return c.useCompression.Load()
}

func (c *Context) SetUseCompression(enabled bool) {
	c.useCompression.Store(enabled)
}

// Warmup 在协程池中预先编译给定类型的编解码函数；未指定类型时编译全部已注册模块中的类型。
// 编译过程中的 panic 作为该类型的错误返回，不会终止进程。
func (c *Context) Warmup(types ...reflect.Type) error {
	if len(types) == 0 {
		for _, m := range c.registry.Modules() {
			types = append(types, m.Types()...)
		}
	}
	if len(types) == 0 {
		return nil
	}

	size := c.opts.warmupPoolSize
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	pool := conc.NewPool[*coder](size,
		conc.WithPreAlloc(c.opts.warmupPreAlloc),
		conc.WithConcealPanic(true),
		conc.WithLogger(c.Logger()),
	)
	defer pool.Release()

	futures := lo.Map(types, func(t reflect.Type, _ int) *conc.Future[*coder] {
		return pool.Submit(func() (*coder, error) {
			return c.coderFor(t)
		})
	})
	err := merr.Combine(lo.Map(futures, func(f *conc.Future[*coder], _ int) error {
		return f.Err()
	})...)

	metrics.SerdeCacheSize.WithLabelValues(metrics.FieldCacheLabel).Set(float64(c.fields.Len()))
	c.Logger().Info("serde coders warmed up",
		zap.Int("types", len(types)),
		zap.Int64("coders", c.numCoders.Load()),
		zap.Int("poolSize", size),
		zap.Error(err))
	return err
}

// Stats 是 Context 的累计统计。
//
// Largest* 为单次成功读写中字节数最大的一次，类型为顶层值的类型，空值为 nil。
type Stats struct {
	Serialized   int64
	Deserialized int64
	Failed       int64
	BytesWritten int64
	BytesRead    int64
	Coders       int64

	LargestSerialized       int64
	LargestSerializedType   reflect.Type
	LargestDeserialized     int64
	LargestDeserializedType reflect.Type
}

func (c *Context) Stats() Stats {
	st := Stats{
		Serialized:   c.serialized.Load(),
		Deserialized: c.deserialized.Load(),
		Failed:       c.failed.Load(),
		BytesWritten: c.bytesOut.Load(),
		BytesRead:    c.bytesIn.Load(),
		Coders:       c.numCoders.Load(),
	}
	st.LargestSerialized, st.LargestSerializedType = c.largestOut.load()
	st.LargestDeserialized, st.LargestDeserializedType = c.largestIn.load()
	return st
}

// reportUnsupported 对每个不支持的类型只输出一次警告。
func (c *Context) reportUnsupported(t reflect.Type, err error) {
	if t == nil || !errors.Is(err, merr.ErrUnsupportedType) {
		return
	}
	if c.reported.Insert(t) {
		c.Logger().Warn("serde type unsupported", log.FieldType(t), zap.Error(err))
	}
}
