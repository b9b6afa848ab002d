package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rhystmorgan/contactbook/internal/book"
)

const (
	title   = "contactbook"
	version = "1.0.0"
)

// NewRouter mounts the contacts API under /api/contacts next to /liveness
// and /metrics.
func NewRouter(b *book.ContactBook, logger *zap.Logger) http.Handler {
	set := metrics.NewSet()
	set.NewGauge("contacts_total", func() float64 { return float64(b.Len()) })
	buildinfoMetric := joinQuote("build_info{goversion=", runtime.Version(), ",title=", title, ",version=", version, "} 1\n")

	mux := http.NewServeMux()
	mux.HandleFunc("/liveness", func(http.ResponseWriter, *http.Request) {})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, buildinfoMetric)
		set.WritePrometheus(w)
		metrics.WriteProcessMetrics(w)
	})

	root := humago.New(mux, huma.DefaultConfig(title, version))
	api := huma.NewGroup(root, "/api")
	api.UseMiddleware(
		ctxlog{}.loggerMiddleware(logger),
		meterRequests(set),
		ctxlog{}.recoverMiddleware(logger),
	)

	huma.AutoRegister(huma.NewGroup(api, "/contacts"), &Contacts{
		Book:         b,
		ErrorHandler: ctxlog{}.errorHandler(logger),
	})

	return mux
}

// ctxlog is a [context.Context] key and acts as a virtual package for operations related to it.
type ctxlog struct{}

// loggerMiddleware stores a request scoped [zap.Logger] in the context and
// logs the request once it has been served.
func (key ctxlog) loggerMiddleware(parent *zap.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		logger := parent.With(zap.String("x-request-id", ctx.Header("X-Request-Id")))

		start := time.Now()
		next(huma.WithValue(ctx, key, logger.With(zap.String("op", ctx.Operation().OperationID))))

		logger.Info(joinSpace(ctx.Operation().Method, ctx.Operation().Path, ctx.Version().Proto),
			zap.String("from", ctx.RemoteAddr()),
			zap.String("ua", ctx.Header("User-Agent")),
			zap.Int("status", ctx.Status()),
			zap.Duration("dur", time.Since(start)),
		)
	}
}

// recoverMiddleware logs a panic and answers with a 500.
func (key ctxlog) recoverMiddleware(fallback *zap.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		defer func() {
			if v := recover(); v != nil {
				logger, ok := ctx.Context().Value(key).(*zap.Logger)
				if !ok {
					logger = fallback
				}
				logger.Error("panic occurred", zap.Any("recovered", v))
				ctx.SetStatus(http.StatusInternalServerError)
			}
		}()
		next(ctx)
	}
}

// errorHandler logs handler errors, at warn level for client errors.
func (key ctxlog) errorHandler(fallback *zap.Logger) func(context.Context, error) {
	return func(ctx context.Context, err error) {
		level := zapcore.ErrorLevel
		fields := []zap.Field{zap.Error(err)}

		var statusErr huma.StatusError
		if errors.As(err, &statusErr) {
			if statusErr.GetStatus()/100 == 4 {
				level = zapcore.WarnLevel
			}
			fields = append(fields, zap.Int("status", statusErr.GetStatus()))
		}

		logger, ok := ctx.Value(key).(*zap.Logger)
		if !ok {
			logger = fallback
		}
		logger.Log(level, "error occurred", fields...)
	}
}

func meterRequests(set *metrics.Set) func(huma.Context, func(huma.Context)) {
	type ref struct {
		*metrics.Counter
		*metrics.PrometheusHistogram
	}

	refs := sync.Map{}
	refsMu := sync.Mutex{}
	buckets := metrics.ExponentialBuckets(1e-3, 5, 6)

	return func(ctx huma.Context, next func(huma.Context)) {
		op, start := ctx.Operation(), time.Now()
		next(ctx)

		uid := op.OperationID + strconv.Itoa(ctx.Status())
		val, ok := refs.Load(uid)
		if !ok {
			refsMu.Lock()
			val, ok = refs.Load(uid)
			if !ok {
				labels := joinQuote("{method=", op.Method, ",path=", op.Path, ",status=", strconv.Itoa(ctx.Status()), "}")
				val = ref{
					set.NewCounter("http_requests_total" + labels),
					set.NewPrometheusHistogramExt("http_request_duration_seconds"+labels, buckets),
				}
				refs.Store(uid, val)
			}
			refsMu.Unlock()
		}
		valref := val.(ref)
		valref.Counter.Inc()
		valref.PrometheusHistogram.UpdateDuration(start)
	}
}

// joinQuote is [strings.Join] with " as separator.
func joinQuote(elems ...string) string { return strings.Join(elems, `"`) }

// joinSpace is [strings.Join] with space as separator.
func joinSpace(elems ...string) string { return strings.Join(elems, ` `) }
