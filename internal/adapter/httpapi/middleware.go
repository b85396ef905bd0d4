package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"user-service/internal/platform/logger"
	"user-service/internal/shared"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

const requestIDKey = "request_id"

const maxRequestIDLen = 128

// RequestID keeps a sane incoming X-Request-ID or generates a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := normalizeRequestID(c.GetHeader(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func normalizeRequestID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.ContainsAny(v, "\r\n") {
		return ""
	}
	if len(v) > maxRequestIDLen {
		v = v[:maxRequestIDLen]
	}
	return v
}

// AccessLog writes one line per request. Server errors are logged at ERROR
// together with the rendered AppError.
func AccessLog(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", c.GetString(requestIDKey)),
		}
		if status >= http.StatusInternalServerError {
			if ae, ok := renderedError(c); ok {
				attrs = append(attrs, logger.Err(ae))
			}
			log.Error("request", attrs...)
			return
		}
		log.Info("request", attrs...)
	}
}

// Recovery turns a handler panic into an internal error response.
func Recovery(reg *shared.Registry, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Error("panic recovered",
				slog.Any("panic", rec),
				slog.String("request_id", c.GetString(requestIDKey)))
			if c.Writer.Written() {
				c.Abort()
				return
			}
			WriteError(c, reg, reg.InternalError(shared.WithCause(fmt.Errorf("panic: %v", rec))))
		}()
		c.Next()
	}
}

// ErrorRenderer writes the last error attached with c.Error when the handler
// produced no response of its own.
func ErrorRenderer(reg *shared.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Written() {
			return
		}
		if last := c.Errors.Last(); last != nil {
			WriteError(c, reg, last.Err)
		}
	}
}
