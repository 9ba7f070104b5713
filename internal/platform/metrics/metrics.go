// Package metrics はPrometheusメトリクスの収集と公開を提供します。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はHTTPリクエストのPrometheusメトリクスを収集します。
type Collector struct {
	requestsTotal  *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録します。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "user_backend_http_requests_total",
			Help: "HTTPリクエストの合計数（メソッド・ルート・ステータスコード別）",
		}, []string{"method", "route", "status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "user_backend_http_request_duration_seconds",
			Help:    "HTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.requestsTotal,
		c.requestLatency,
	)

	return c
}

// RecordRequest はリクエスト1件の完了を記録します。
func (c *Collector) RecordRequest(method, route string, statusCode int) {
	c.requestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
}

// RecordLatency はリクエスト処理のレイテンシを記録します。
func (c *Collector) RecordLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返します。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Middleware は各リクエストの完了をCollectorへ記録するGinミドルウェアを返します。
// ルートラベルにはパスパラメータ展開前のルートパターンを使い、
// カーディナリティの爆発を防ぎます。
func Middleware(c *Collector) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			// 未登録パス（404等）はまとめて記録
			route = "unmatched"
		}
		c.RecordRequest(ctx.Request.Method, route, ctx.Writer.Status())
		c.RecordLatency(time.Since(start))
	}
}
