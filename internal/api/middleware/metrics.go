// metrics.go — Prometheus HTTP метрики gateway.
// Регистрирует метрики: dms_http_requests_total, dms_http_request_duration_seconds.
// Нормализация путей предотвращает взрывной рост кардинальности.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики gateway
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dms_http_requests_total",
			Help: "Общее количество HTTP-запросов к gateway",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dms_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к gateway в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			status := strconv.Itoa(wrapped.statusCode)
			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(time.Since(start).Seconds())
		})
	}
}

// knownPaths — статические маршруты gateway.
var knownPaths = map[string]struct{}{
	"/login": {}, "/validate-otp": {}, "/logout": {},
	"/health/live": {}, "/health/ready": {}, "/metrics": {},
	"/dashboard": {}, "/dashboard/": {},
	"/dashboard/documents": {}, "/dashboard/documents/search": {},
	"/dashboard/documents/refresh": {}, "/dashboard/documents/archive": {},
	"/dashboard/documents/archive/export": {},
	"/dashboard/tags": {}, "/dashboard/upload": {},
	"/dashboard/upload/minor-heads": {}, "/dashboard/create-user": {},
}

// normalizePath заменяет переменные сегменты пути шаблонами.
// /dashboard/documents/12/view → /dashboard/documents/{n}/view
// /dashboard/previews/a1b2... → /dashboard/previews/{id}
// Неизвестные пути сводятся к "other".
func normalizePath(path string) string {
	if _, ok := knownPaths[path]; ok {
		return path
	}

	const docsPrefix = "/dashboard/documents/"
	if rest, ok := strings.CutPrefix(path, docsPrefix); ok {
		if _, action, found := strings.Cut(rest, "/"); found && (action == "view" || action == "download") {
			return docsPrefix + "{n}/" + action
		}
	}
	if strings.HasPrefix(path, "/dashboard/previews/") {
		return "/dashboard/previews/{id}"
	}
	return "other"
}
