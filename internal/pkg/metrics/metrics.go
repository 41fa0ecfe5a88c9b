package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector 指标收集器
type Collector struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	remoteRequestsTotal   *prometheus.CounterVec
	remoteRequestDuration *prometheus.HistogramVec

	moderationDecisions *prometheus.CounterVec
	submissionsTotal    *prometheus.CounterVec
	commentsTotal       *prometheus.CounterVec
	pushDeliveries      *prometheus.CounterVec
}

// NewCollector 在给定 Registerer 上注册指标
// 生产环境传 prometheus.DefaultRegisterer，测试传独立 Registry 避免重复注册
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		remoteRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remote_requests_total",
				Help: "Total number of GraphQL operations sent to the remote service",
			},
			[]string{"operation", "outcome"},
		),
		remoteRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "remote_request_duration_seconds",
				Help:    "Remote GraphQL operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		moderationDecisions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moderation_decisions_total",
				Help: "Moderation decisions by resulting status",
			},
			[]string{"status"},
		),
		submissionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "post_submissions_total",
				Help: "Post submissions by outcome",
			},
			[]string{"outcome"},
		),
		commentsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "comments_total",
				Help: "Comments created by kind",
			},
			[]string{"kind"},
		),
		pushDeliveries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "push_deliveries_total",
				Help: "Push notification deliveries by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// ObserveRemote 记录一次远端调用
func (c *Collector) ObserveRemote(op string, start time.Time, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.remoteRequestsTotal.WithLabelValues(op, outcome).Inc()
	c.remoteRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// RecordDecision 记录审核结果
func (c *Collector) RecordDecision(status string) {
	if c == nil {
		return
	}
	c.moderationDecisions.WithLabelValues(status).Inc()
}

// RecordSubmission 记录投稿结果：ok, invalid, failed
func (c *Collector) RecordSubmission(outcome string) {
	if c == nil {
		return
	}
	c.submissionsTotal.WithLabelValues(outcome).Inc()
}

// RecordComment 记录评论：text, audio
func (c *Collector) RecordComment(kind string) {
	if c == nil {
		return
	}
	c.commentsTotal.WithLabelValues(kind).Inc()
}

// RecordPush 记录推送：delivered, retried, dropped
func (c *Collector) RecordPush(outcome string) {
	if c == nil {
		return
	}
	c.pushDeliveries.WithLabelValues(outcome).Inc()
}

// Middleware HTTP 指标中间件
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		endpoint := ctx.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		c.httpRequestsTotal.WithLabelValues(ctx.Request.Method, endpoint, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.httpRequestDuration.WithLabelValues(ctx.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}
