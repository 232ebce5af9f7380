// health.go — обработчики health endpoints gateway.
// /health/live — liveness probe (процесс жив)
// /health/ready — readiness probe (API документов, Redis)
// /metrics — Prometheus метрики
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bigkaa/goartstore/dms-admin/internal/config"
)

const serviceName = "dms-admin"

// ReadinessChecker — интерфейс проверки готовности зависимости.
type ReadinessChecker interface {
	// CheckReady возвращает статус ("ok", "degraded", "fail") и сообщение.
	CheckReady(ctx context.Context) (status, message string)
}

// HealthHandler — обработчик health endpoints.
type HealthHandler struct {
	checkers    map[string]ReadinessChecker
	promHandler http.Handler
}

// NewHealthHandler создаёт обработчик health endpoints.
// checkers — проверки зависимостей по имени (в ответе readiness под тем же ключом).
func NewHealthHandler(checkers map[string]ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		checkers:    checkers,
		promHandler: promhttp.Handler(),
	}
}

// healthCheckResult — результат проверки одной зависимости.
type healthCheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// healthLiveResponse — ответ liveness probe.
type healthLiveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
}

// healthReadyResponse — ответ readiness probe.
type healthReadyResponse struct {
	Status    string                       `json:"status"`
	Timestamp string                       `json:"timestamp"`
	Version   string                       `json:"version"`
	Service   string                       `json:"service"`
	Checks    map[string]healthCheckResult `json:"checks"`
}

// HealthLive — liveness probe. Возвращает 200 если процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	resp := healthLiveResponse{
		Status:    statusOK,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// HealthReady — readiness probe. Проверяет зависимости.
// Возвращает 200 (ok/degraded) или 503 (fail).
func (h *HealthHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	resp := healthReadyResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
		Checks:    make(map[string]healthCheckResult, len(h.checkers)),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	statuses := make([]string, 0, len(h.checkers))
	for name, checker := range h.checkers {
		status, msg := checker.CheckReady(ctx)
		resp.Checks[name] = healthCheckResult{Status: status, Message: msg}
		statuses = append(statuses, status)
	}
	resp.Status = overallStatus(statuses...)

	w.Header().Set("Content-Type", "application/json")
	if resp.Status == statusFail {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// GetMetrics — Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

// Константы статусов health check.
const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusFail     = "fail"
)

// overallStatus определяет итоговый статус из статусов зависимостей.
// Если хотя бы одна зависимость fail — итог fail.
// Если хотя бы одна degraded — итог degraded.
// Иначе — ok.
func overallStatus(statuses ...string) string {
	hasDegraded := false
	for _, s := range statuses {
		if s == statusFail {
			return statusFail
		}
		if s == statusDegraded {
			hasDegraded = true
		}
	}
	if hasDegraded {
		return statusDegraded
	}
	return statusOK
}

// --- Адаптеры проверок ---

// DependencyHealth — источник состояния зависимостей (service.DephealthService).
type DependencyHealth interface {
	Health() map[string]bool
}

// DephealthChecker — readiness по результатам периодических проверок dephealth.
type DephealthChecker struct {
	source DependencyHealth
	name   string
}

// NewDephealthChecker создаёт проверку зависимости name.
func NewDephealthChecker(source DependencyHealth, name string) *DephealthChecker {
	return &DephealthChecker{source: source, name: name}
}

// CheckReady — fail, если последняя проверка неуспешна.
// До первой проверки — degraded.
func (c *DephealthChecker) CheckReady(context.Context) (string, string) {
	healthy, known := healthByPrefix(c.source.Health(), c.name)
	switch {
	case !known:
		return statusDegraded, "проверка ещё не выполнялась"
	case !healthy:
		return statusFail, "зависимость недоступна"
	default:
		return statusOK, ""
	}
}

// healthByPrefix ищет состояние зависимости по имени.
// Ключи Health() имеют формат "dependency:host:port"; при нескольких
// endpoint зависимость здорова, только если здоровы все.
func healthByPrefix(health map[string]bool, name string) (healthy, found bool) {
	healthy = true
	for key, ok := range health {
		if key == name || strings.HasPrefix(key, name+":") {
			found = true
			healthy = healthy && ok
		}
	}
	return healthy && found, found
}

// Pinger — зависимость с проверкой соединения (session.RedisStore).
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker — readiness через Ping.
type PingChecker struct {
	pinger Pinger
}

// NewPingChecker создаёт проверку через Ping.
func NewPingChecker(p Pinger) *PingChecker {
	return &PingChecker{pinger: p}
}

// CheckReady — fail при ошибке Ping.
func (c *PingChecker) CheckReady(ctx context.Context) (string, string) {
	if err := c.pinger.Ping(ctx); err != nil {
		return statusFail, err.Error()
	}
	return statusOK, ""
}
