package serde

import (
	"encoding/hex"
	"io"

	"go.uber.org/zap"

	"github.com/lk2023060901/danmu-garden-codec/pkg/log"
)

// TraceWriter 以 Debug 级别记录每一次底层写入的偏移与内容。
//
// 编解码器对每个基础值都单独写一次，因此日志与线上字段一一对应，
// 对照两端的 TraceWriter/TraceReader 输出即可定位失步的位置。
type TraceWriter struct {
	w      io.Writer
	logger *log.MLogger
	offset int64
}

func NewTraceWriter(w io.Writer, logger *log.MLogger) *TraceWriter {
	if logger == nil {
		logger = log.With()
	}
	return &TraceWriter{w: w, logger: logger.With(log.FieldComponent("serde-trace"))}
}

func (t *TraceWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	t.logger.Debug("write",
		zap.Int64("offset", t.offset),
		zap.Int("size", n),
		zap.String("hex", hex.EncodeToString(p[:n])),
		zap.Error(err))
	t.offset += int64(n)
	return n, err
}

// Offset 返回已写入的字节数。
func (t *TraceWriter) Offset() int64 { return t.offset }

// TraceReader 以 Debug 级别记录每一次底层读取。
type TraceReader struct {
	r      io.Reader
	logger *log.MLogger
	offset int64
}

func NewTraceReader(r io.Reader, logger *log.MLogger) *TraceReader {
	if logger == nil {
		logger = log.With()
	}
	return &TraceReader{r: r, logger: logger.With(log.FieldComponent("serde-trace"))}
}

func (t *TraceReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 || (err != nil && err != io.EOF) {
		t.logger.Debug("read",
			zap.Int64("offset", t.offset),
			zap.Int("size", n),
			zap.String("hex", hex.EncodeToString(p[:n])),
			zap.Error(err))
	}
	t.offset += int64(n)
	return n, err
}

func (t *TraceReader) Offset() int64 { return t.offset }
