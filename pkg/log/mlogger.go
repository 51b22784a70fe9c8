// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// MLogger 是 zap.Logger 的封装类型。
// 在原有 Logger 的基础上，增加了按分组限流的日志能力。
type MLogger struct {
	*zap.Logger
	rl *rate.Limiter
}

// With 封装 zap.Logger 的 With 方法，并返回新的 MLogger 实例。
// 新实例继承当前的限流分组。
func (l *MLogger) With(fields ...zap.Field) *MLogger {
	return &MLogger{
		Logger: l.Logger.With(fields...),
		rl:     l.rl,
	}
}

// WithRateGroup 为当前 Logger 绑定一个命名限流器。
// 相同 groupName 共享同一个限流器，后一次调用会更新其参数。
func (l *MLogger) WithRateGroup(groupName string, perSecond float64, burst int) *MLogger {
	return &MLogger{
		Logger: l.Logger,
		rl:     namedLimiter(groupName, perSecond, burst),
	}
}

func (l *MLogger) limiter() *rate.Limiter {
	if l.rl == nil {
		return _globalR
	}
	return l.rl
}

// RatedDebug 在 Debug 级别输出限流日志，返回值为 true 表示本次日志已输出。
func (l *MLogger) RatedDebug(msg string, fields ...zap.Field) bool {
	if l.limiter().Allow() {
		l.WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...)
		return true
	}
	return false
}

// RatedInfo 在 Info 级别输出限流日志。
func (l *MLogger) RatedInfo(msg string, fields ...zap.Field) bool {
	if l.limiter().Allow() {
		l.WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...)
		return true
	}
	return false
}

// RatedWarn 在 Warn 级别输出限流日志。
func (l *MLogger) RatedWarn(msg string, fields ...zap.Field) bool {
	if l.limiter().Allow() {
		l.WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...)
		return true
	}
	return false
}
