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

type future interface {
	wait()
	OK() bool
	Err() error
}

// Future 是协程池任务的结果。
// 通过 Await/Value/Err 等待结果时调用方会阻塞。
type Future[T any] struct {
	ch    chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{
		ch: make(chan struct{}),
	}
}

func (future *Future[T]) wait() {
	<-future.ch
}

// Await 阻塞等待任务结束并返回其结果。
func (future *Future[T]) Await() (T, error) {
	future.wait()
	return future.value, future.err
}

// Value 阻塞等待并返回结果值，出错时为零值。
func (future *Future[T]) Value() T {
	future.wait()
	return future.value
}

// Done 任务结束时关闭。
func (future *Future[T]) Done() <-chan struct{} {
	return future.ch
}

// OK 阻塞等待，任务成功时返回 true。
func (future *Future[T]) OK() bool {
	future.wait()
	return future.err == nil
}

// Err 阻塞等待并返回任务错误。
func (future *Future[T]) Err() error {
	future.wait()
	return future.err
}

// AwaitAll 等待全部 future 结束，返回遇到的第一个错误。
func AwaitAll[T future](futures ...T) error {
	var first error
	for i := range futures {
		futures[i].wait()
		if first == nil && !futures[i].OK() {
			first = futures[i].Err()
		}
	}
	return first
}
