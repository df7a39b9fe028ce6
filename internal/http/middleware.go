package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/marte1309/PinkBlueberrySalon/pkg/logger"
	"go.uber.org/zap"
)

// VisitorHeader carries the opaque visitor id in both directions.
const VisitorHeader = "X-Visitor-ID"

type visitorKey struct{}

// VisitorMiddleware resolves the visitor id. A visitor without one gets a
// fresh id, echoed back so the client can keep it.
func VisitorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		visitorID := r.Header.Get(VisitorHeader)
		if visitorID == "" {
			visitorID = uuid.NewString()
		} else if _, err := uuid.Parse(visitorID); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_visitor_id", "X-Visitor-ID must be a UUID")
			return
		}

		w.Header().Set(VisitorHeader, visitorID)
		ctx := context.WithValue(r.Context(), visitorKey{}, visitorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getVisitorID(ctx context.Context) string {
	if id, ok := ctx.Value(visitorKey{}).(string); ok {
		return id
	}
	return ""
}

// RequestLogger puts a request-scoped zap logger in the context and logs
// each request once it is served. Must run after middleware.RequestID.
func RequestLogger(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := middleware.GetReqID(r.Context())
			l := base.With(zap.String("request_id", requestID))
			w.Header().Set("X-Request-ID", requestID)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), l)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			l.Info("request served",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
