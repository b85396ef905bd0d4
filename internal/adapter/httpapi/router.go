package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"user-service/internal/shared"
)

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Log    *slog.Logger
	Errors *shared.Registry
	// Health probes storage. Nil means the service runs without storage.
	Health func(ctx context.Context) error
}

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Errors == nil {
		d.Errors = shared.Default()
	}

	r := gin.New()
	r.Use(RequestID(), AccessLog(d.Log), Recovery(d.Errors, d.Log), ErrorRenderer(d.Errors))

	h := &handlers{errors: d.Errors, health: d.Health}
	r.GET("/healthz", h.healthz)
	r.GET("/v1/errors/:code", h.errorByCode)
	r.NoRoute(h.noRoute)
	return r
}

type handlers struct {
	errors *shared.Registry
	health func(ctx context.Context) error
}

func (h *handlers) healthz(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			_ = c.Error(h.errors.DatabaseError(shared.WithCause(err)))
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) errorByCode(c *gin.Context) {
	raw := c.Param("code")
	n, err := strconv.Atoi(raw)
	if err != nil {
		WriteError(c, h.errors, h.errors.ValidationError(
			shared.WithMessage(fmt.Sprintf("code %q is not a number", raw)),
			shared.WithCause(err),
		))
		return
	}

	code := shared.Code(n)
	msg := h.errors.Resolve(code, "")
	if msg == "" {
		WriteError(c, h.errors, h.errors.NotFound(
			shared.WithMessage(fmt.Sprintf("no message for code %d", code)),
		))
		return
	}
	c.JSON(http.StatusOK, shared.Payload{Code: code, Message: msg})
}

func (h *handlers) noRoute(c *gin.Context) {
	WriteError(c, h.errors, h.errors.NotFound())
}
