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

package conc

import (
	ants "github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/lk2023060901/danmu-garden-codec/pkg/log"
)

type poolOption struct {
	// 创建时一次性分配全部 worker，适合短生命周期、任务数已知的批量作业。
	preAlloc bool
	// 任务 panic 时只记录日志，panic 以错误形式交给对应的 Future。
	concealPanic bool
	logger       *log.MLogger
}

func (opt *poolOption) antsOptions() []ants.Option {
	return []ants.Option{
		ants.WithPreAlloc(opt.preAlloc),
		// 批量作业结束即 Release，不需要后台清理空闲 worker
		ants.WithDisablePurge(true),
		ants.WithPanicHandler(func(v any) {
			opt.logger.Error("conc pool task panicked", zap.Any("panic", v), zap.Stack("stack"))
			if !opt.concealPanic {
				panic(v)
			}
		}),
	}
}

// PoolOption 用于配置协程池行为的选项函数。
type PoolOption func(opt *poolOption)

func defaultPoolOption() *poolOption {
	return &poolOption{logger: &log.MLogger{Logger: log.L()}}
}

func WithPreAlloc(v bool) PoolOption {
	return func(opt *poolOption) {
		opt.preAlloc = v
	}
}

// WithConcealPanic 为 true 时任务 panic 不会终止进程，Future.Err 返回描述该 panic 的错误。
func WithConcealPanic(v bool) PoolOption {
	return func(opt *poolOption) {
		opt.concealPanic = v
	}
}

// WithLogger 指定记录 panic 的日志器，nil 时保持全局日志器。
func WithLogger(l *log.MLogger) PoolOption {
	return func(opt *poolOption) {
		if l != nil {
			opt.logger = l
		}
	}
}
