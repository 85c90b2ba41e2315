package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/authcore/pkg/logger"
)

// DefaultCheckTimeout bounds a single readiness probe.
const DefaultCheckTimeout = 2 * time.Second

// Check is a named readiness dependency such as the users database or the
// session Redis.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// HealthReport is the body of both probes.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

const (
	statusAlive    = "alive"
	statusReady    = "ready"
	statusNotReady = "not_ready"
	checkOK        = "ok"
	checkFailed    = "failed"
)

// LivenessHandler answers 200 as long as the process serves requests.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeReport(w, http.StatusOK, HealthReport{Status: statusAlive})
	}
}

// ReadinessHandler runs every check in parallel under DefaultCheckTimeout and
// answers 200 when all pass, 503 otherwise. Failure details go to the log,
// never to the response.
func ReadinessHandler(log *slog.Logger, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	log = log.With(logger.Component("healthcheck"))

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), DefaultCheckTimeout)
		defer cancel()

		report := HealthReport{Status: statusReady, Checks: make(map[string]string, len(checks))}
		var mu sync.Mutex
		var wg sync.WaitGroup
		for _, c := range checks {
			wg.Add(1)
			go func() {
				defer wg.Done()
				result := checkOK
				if err := c.Fn(ctx); err != nil {
					log.ErrorContext(ctx, "readiness check failed", slog.String("check", c.Name), logger.Error(err))
					result = checkFailed
				}
				mu.Lock()
				report.Checks[c.Name] = result
				if result == checkFailed {
					report.Status = statusNotReady
				}
				mu.Unlock()
			}()
		}
		wg.Wait()

		status := http.StatusOK
		if report.Status == statusNotReady {
			status = http.StatusServiceUnavailable
		}
		writeReport(w, status, report)
	}
}

func writeReport(w http.ResponseWriter, status int, report HealthReport) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(report)
}
