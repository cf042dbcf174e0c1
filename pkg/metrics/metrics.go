// Package metrics exposes per-operation timings and error counts of the
// introspection engine to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-introspect/pkg/apperrors"
)

const (
	namespace = "ekaya"
	subsystem = "introspect"
)

// Recorder holds the engine collectors. A nil *Recorder records nothing.
type Recorder struct {
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "operation_duration_seconds",
				Help:      "Bucketed histogram of catalog operation time (s).",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 16),
			}, []string{"op"}),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "operation_errors_total",
				Help:      "Total count of failed catalog operations by cause.",
			}, []string{"op", "kind"}),
	}
	for _, c := range []prometheus.Collector{r.duration, r.errors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Observe records one finished operation.
func (r *Recorder) Observe(op string, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	r.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	if err != nil {
		r.errors.WithLabelValues(op, ErrorKind(err)).Inc()
	}
}

// ErrorKind maps an engine error to a low-cardinality label value.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInvalidIdentifier):
		return "invalid_identifier"
	case errors.Is(err, apperrors.ErrInconsistentMetadata):
		return "inconsistent_metadata"
	case errors.Is(err, apperrors.ErrUnknownRelationKind):
		return "unknown_relation_kind"
	case errors.Is(err, apperrors.ErrRowShape):
		return "row_shape"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "query"
	}
}

// Serve exposes gatherer on addr under /metrics until ctx is done.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Metrics listener shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("Serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
