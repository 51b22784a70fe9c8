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

package metrics

import (
	// #nosec
	_ "net/http/pprof"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// codecNamespace 是当前项目所有 Prometheus 指标使用的命名空间。
	codecNamespace = "danmu_codec"

	serdeSubsystem    = "serde"
	envelopeSubsystem = "envelope"

	// 以下为当前使用的通用标签名。
	directionLabelName = "direction"
	resultLabelName    = "result"
	kindLabelName      = "kind"
	cacheLabelName     = "cache"
	algorithmLabelName = "algorithm"
	modeLabelName      = "mode"

	SerializeLabel   = "serialize"
	DeserializeLabel = "deserialize"
	SuccessLabel     = "success"
	FailLabel        = "fail"
	InternedLabel    = "interned"
	InlineLabel      = "inline"
	CoderCacheLabel  = "coders"
	FieldCacheLabel  = "fields"
	StreamModeLabel  = "stream"
	MessageModeLabel = "message"
)

var (
	// sizeBuckets 为单个对象编码后大小的桶划分，单位为字节。
	// [16 64 256 1024 4096 16384 65536 262144 1.048576e+06 4.194304e+06 1.6777216e+07]
	sizeBuckets = prometheus.ExponentialBuckets(16, 4, 11)

	// ratioBuckets 为压缩后/压缩前的比例。
	ratioBuckets = []float64{0.05, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1, 1.5}

	SerdeOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: codecNamespace,
			Subsystem: serdeSubsystem,
			Name:      "ops_total",
			Help:      "count of top-level serialize/deserialize calls",
		}, []string{directionLabelName, resultLabelName})

	SerdeBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: codecNamespace,
			Subsystem: serdeSubsystem,
			Name:      "bytes_total",
			Help:      "uncompressed bytes written or read by the codec",
		}, []string{directionLabelName})

	SerdeObjectSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: codecNamespace,
			Subsystem: serdeSubsystem,
			Name:      "object_size_bytes",
			Help:      "encoded size of one top-level object",
			Buckets:   sizeBuckets,
		}, []string{directionLabelName})

	SerdeStrings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: codecNamespace,
			Subsystem: serdeSubsystem,
			Name:      "strings_total",
			Help:      "strings written, by interned reference or inline bytes",
		}, []string{kindLabelName})

	SerdeCacheSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: codecNamespace,
			Subsystem: serdeSubsystem,
			Name:      "cache_size",
			Help:      "number of types held by the reflective caches",
		}, []string{cacheLabelName})

	CompressionRatio = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: codecNamespace,
			Subsystem: envelopeSubsystem,
			Name:      "compression_ratio",
			Help:      "compressed size divided by raw size",
			Buckets:   ratioBuckets,
		}, []string{algorithmLabelName, modeLabelName})

	metricRegisterer prometheus.Registerer
)

// GetRegisterer 返回全局 Prometheus Registerer。
// 如果尚未通过 Register 显式设置，则返回 prometheus.DefaultRegisterer。
func GetRegisterer() prometheus.Registerer {
	if metricRegisterer == nil {
		return prometheus.DefaultRegisterer
	}
	return metricRegisterer
}

// Register 注册当前定义的所有指标，同一个 Registerer 只能注册一次。
func Register(r prometheus.Registerer) {
	r.MustRegister(SerdeOps)
	r.MustRegister(SerdeBytes)
	r.MustRegister(SerdeObjectSize)
	r.MustRegister(SerdeStrings)
	r.MustRegister(SerdeCacheSize)
	r.MustRegister(CompressionRatio)
	metricRegisterer = r
}
