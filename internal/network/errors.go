// Package network 汇总消息模式收发链路的公共定义。
package network

import (
	"github.com/cockroachdb/errors"
)

// Stage 表示消息收发链路中的处理阶段。
//
// 主要用于在错误中标记发生的位置，便于监控与排查。
type Stage string

const (
	StageHandshake  Stage = "handshake"
	StageEncode     Stage = "encode"     // 业务对象 -> 字节
	StageCompress   Stage = "compress"   // 消息负载压缩
	StageFrame      Stage = "frame"      // 分帧读写
	StageDecompress Stage = "decompress" // 消息负载解压
	StageDecode     Stage = "decode"     // 字节 -> 业务对象
)

// StageError 记录错误发生的阶段，原始错误可以通过 errors.Is/As 取得。
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return "network: " + string(e.Stage) + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error { return e.Err }

// WrapStage 为 err 标记阶段；err 为 nil 时返回 nil。
func WrapStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// StageOf 返回 err 链上最外层的阶段标记。
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
