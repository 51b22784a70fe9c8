package serde

import (
	"io"

	"go.uber.org/zap"

	"github.com/lk2023060901/danmu-garden-codec/internal/network/compressor"
	"github.com/lk2023060901/danmu-garden-codec/pkg/metrics"
	"github.com/lk2023060901/danmu-garden-codec/pkg/util/merr"
)

// countingWriter 统计写入底层的字节数，用于计算流模式的压缩率。
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// wrapWriter 按当前设置为 w 套上压缩流与跟踪包装。
// finish 必须在写完后调用，raw 为写入的未压缩字节数。
func (c *Context) wrapWriter(w io.Writer) (io.Writer, func(raw int64) error, error) {
	if !c.UseCompression() {
		if c.opts.trace {
			return NewTraceWriter(w, c.Logger()), func(int64) error { return nil }, nil
		}
		return w, func(int64) error { return nil }, nil
	}

	alg, level := c.opts.algorithm, c.opts.level
	cw := &countingWriter{w: w}
	zw, err := compressor.NewWriter(alg, level, cw)
	if err != nil {
		return nil, nil, err
	}
	var out io.Writer = zw
	if c.opts.trace {
		out = NewTraceWriter(zw, c.Logger())
	}
	finish := func(raw int64) error {
		if err := zw.Close(); err != nil {
			return merr.WrapErrCompression(string(alg), err)
		}
		if raw > 0 {
			metrics.CompressionRatio.WithLabelValues(string(alg), metrics.StreamModeLabel).Observe(float64(cw.n) / float64(raw))
		}
		c.Logger().Debug("serde stream compressed",
			zap.String("algorithm", string(alg)),
			zap.Int64("raw", raw),
			zap.Int64("compressed", cw.n))
		return nil
	}
	return out, finish, nil
}

// wrapReader 是 wrapWriter 的逆操作。
func (c *Context) wrapReader(r io.Reader) (io.Reader, func() error, error) {
	if !c.UseCompression() {
		if c.opts.trace {
			return NewTraceReader(r, c.Logger()), func() error { return nil }, nil
		}
		return r, func() error { return nil }, nil
	}

	zr, err := compressor.NewReader(c.opts.algorithm, r)
	if err != nil {
		return nil, nil, err
	}
	var in io.Reader = zr
	if c.opts.trace {
		in = NewTraceReader(zr, c.Logger())
	}
	finish := func() error {
		// 读完流尾，让解压器完成校验
		if _, err := io.Copy(io.Discard, zr); err != nil {
			return merr.WrapErrCompression(string(c.opts.algorithm), err)
		}
		return zr.Close()
	}
	return in, finish, nil
}
