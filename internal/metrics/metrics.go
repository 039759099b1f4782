// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hitoshi/taskboard/internal/model"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェア、サービス層、ワーカーから利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
	RecordAuthAttempt(operation string, err error)
	RecordMutation(resource, operation string)
	RecordCleanup(kind string, deleted int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	authAttempts *prometheus.CounterVec
	mutations    *prometheus.CounterVec
	cleanup      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_http_requests_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskboard_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_auth_attempts_total",
			Help: "認証操作の試行数",
		}, []string{"operation", "result"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_mutations_total",
			Help: "リソース別の変更操作数",
		}, []string{"resource", "operation"}),
		cleanup: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_cleanup_deleted_total",
			Help: "クリーンアップジョブで削除したレコード数",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.authAttempts,
		c.mutations,
		c.cleanup,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの結果と処理時間を記録する。
// routeにはchiのルートパターンを渡し、IDによるラベル数の増加を防ぐ。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAuthAttempt は認証操作の結果を記録する。
// 失敗時はAPIErrorのコードをresultラベルに使う。
func (c *Collector) RecordAuthAttempt(operation string, err error) {
	c.authAttempts.WithLabelValues(operation, resultLabel(err)).Inc()
}

// RecordMutation は変更操作を記録する。
func (c *Collector) RecordMutation(resource, operation string) {
	c.mutations.WithLabelValues(resource, operation).Inc()
}

// RecordCleanup はクリーンアップで削除した件数を記録する。
func (c *Collector) RecordCleanup(kind string, deleted int64) {
	c.cleanup.WithLabelValues(kind).Add(float64(deleted))
}

func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	if apiErr, ok := model.AsAPIError(err); ok {
		return apiErr.Code
	}
	return "error"
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var _ MetricsCollector = (*Collector)(nil)
