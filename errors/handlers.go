package errors

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// ErrorHandler wraps an http.Handler and turns panics into a 500 envelope.
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					requestID := w.Header().Get("X-Request-ID")
					logger.Error("panic recovered",
						zap.Any("error", err),
						zap.ByteString("stacktrace", debug.Stack()),
						zap.String(RequestIDKey, requestID),
						zap.String("path", r.URL.Path),
					)

					WriteError(w, NewInternalError(requestID, nil))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// LogError logs an error with its context. GatewayErrors are logged with
// their type, code and details; anything else as unexpected.
func LogError(logger *zap.Logger, err error, requestID string) {
	var gwErr *GatewayError
	if As(err, &gwErr) {
		fields := []zap.Field{
			zap.String("error_type", string(gwErr.Type)),
			zap.String("message", gwErr.Message),
			zap.Int("code", gwErr.Code),
			zap.String(RequestIDKey, requestID),
			zap.Any("details", gwErr.Details),
		}
		if cause := gwErr.Unwrap(); cause != nil {
			fields = append(fields, zap.NamedError("cause", cause))
		}
		if gwErr.Code >= http.StatusInternalServerError {
			logger.Error("request error", fields...)
		} else {
			logger.Warn("request error", fields...)
		}
		return
	}

	logger.Error("unexpected error",
		zap.Error(err),
		zap.String(RequestIDKey, requestID),
	)
}
