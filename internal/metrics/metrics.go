package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bakery"

// Business counts order lifecycle events.
type Business struct {
	ordersCreated   *prometheus.CounterVec
	orderAmount     prometheus.Counter
	ordersCancelled *prometheus.CounterVec
	pointsPaid      prometheus.Counter
	statusChanges   *prometheus.CounterVec
}

func NewBusiness(reg prometheus.Registerer) *Business {
	f := promauto.With(reg)
	return &Business{
		ordersCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders created, by delivery type.",
		}, []string{"delivery_type"}),
		orderAmount: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_amount_total",
			Help:      "Sum of pay amounts of created orders.",
		}),
		ordersCancelled: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_cancelled_total",
			Help:      "Orders cancelled, by who cancelled them.",
		}, []string{"by"}),
		pointsPaid: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_paid_total",
			Help:      "Points spent on order payments.",
		}),
		statusChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_changes_total",
			Help:      "Order status transitions.",
		}, []string{"from", "to"}),
	}
}

func (b *Business) OrderCreated(deliveryType string, payAmount float64) {
	b.ordersCreated.WithLabelValues(deliveryType).Inc()
	b.orderAmount.Add(payAmount)
}

func (b *Business) OrderCancelled(by string) {
	b.ordersCancelled.WithLabelValues(by).Inc()
}

func (b *Business) PointsPaid(points int64) {
	b.pointsPaid.Add(float64(points))
}

func (b *Business) StatusChanged(from, to string) {
	b.statusChanges.WithLabelValues(from, to).Inc()
}

// HTTP records request latency and counts per route.
type HTTP struct {
	summaryVec *prometheus.SummaryVec
	counterVec *prometheus.CounterVec
}

func NewHTTP(reg prometheus.Registerer) *HTTP {
	f := promauto.With(reg)
	return &HTTP{
		summaryVec: f.NewSummaryVec(prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.99: 0.001,
			},
		}, []string{"method", "path", "status_code"}),
		counterVec: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status_code"}),
	}
}

func (h *HTTP) Build() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		code := strconv.Itoa(c.Writer.Status())

		h.summaryVec.WithLabelValues(c.Request.Method, path, code).Observe(time.Since(start).Seconds())
		h.counterVec.WithLabelValues(c.Request.Method, path, code).Inc()
	}
}
