package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// unmatchedRoute — метка для запросов мимо зарегистрированных маршрутов: сырой путь раздул бы кардинальность.
const unmatchedRoute = "unmatched"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kidcalc",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route template and status class",
		},
		[]string{"method", "route", "status_class"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kidcalc",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route template",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "kidcalc",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served",
		},
	)

	// httpErrorsTotal считает ответы с телом ошибки API по коду (DIVISION_BY_ZERO, STORAGE_FAILURE, ...).
	httpErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kidcalc",
			Subsystem: "http",
			Name:      "api_errors_total",
			Help:      "API error responses by route template and error code",
		},
		[]string{"route", "code"},
	)
)

const errorCodeGinKey = "api_error_code"

// SetErrorCode запоминает код ошибки API для метрик. Вызывают контроллеры перед ответом с ошибкой.
func SetErrorCode(c *gin.Context, code string) {
	c.Set(errorCodeGinKey, code)
}

// routeLabel — шаблон маршрута gin ("/api/v1/calculations"), а не фактический путь.
func routeLabel(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return unmatchedRoute
}

// statusClass сворачивает код ответа в "2xx", "4xx" и т.д.
func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}

// PrometheusMetrics считает запросы, длительность, запросы в полёте и ошибки API. /metrics не учитывается.
func PrometheusMetrics(c *gin.Context) {
	if c.Request.URL.Path == "/metrics" {
		c.Next()
		return
	}

	httpRequestsInFlight.Inc()
	defer httpRequestsInFlight.Dec()
	start := time.Now()

	c.Next()

	route := routeLabel(c)
	httpRequestsTotal.WithLabelValues(c.Request.Method, route, statusClass(c.Writer.Status())).Inc()
	httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	if code := c.GetString(errorCodeGinKey); code != "" {
		httpErrorsTotal.WithLabelValues(route, code).Inc()
	}
}
