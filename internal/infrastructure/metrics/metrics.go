package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// UpstreamRequests 上游接口调用次数
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "console",
			Name:      "upstream_requests_total",
			Help:      "Requests sent to the community API, by resource, method and outcome.",
		},
		[]string{"resource", "method", "outcome"},
	)

	// UpstreamDuration 上游接口耗时
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "console",
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of community API requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"resource", "method"},
	)

	// GateDecisions 访问控制的最终结果
	GateDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "console",
			Name:      "gate_decisions_total",
			Help:      "Access gate decisions, by route and final state.",
		},
		[]string{"route", "state"},
	)

	// AggregationFailures 统计聚合失败次数
	AggregationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "console",
			Name:      "aggregation_failures_total",
			Help:      "Dashboard/report aggregations that failed because a source fetch failed.",
		},
	)
)

// Register 注册全部指标，重复注册时忽略
func Register(reg prometheus.Registerer) {
	for _, c := range []prometheus.Collector{UpstreamRequests, UpstreamDuration, GateDecisions, AggregationFailures} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			panic(err)
		}
	}
}
