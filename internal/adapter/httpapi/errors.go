package httpapi

import (
	"github.com/gin-gonic/gin"

	"user-service/internal/shared"
)

const appErrorKey = "httpapi.app_error"

// WriteError converts err to an AppError and writes its payload with the
// error's status. Later handlers in the chain are skipped.
func WriteError(c *gin.Context, reg *shared.Registry, err error) {
	if reg == nil {
		reg = shared.Default()
	}
	ae := reg.From(err)
	if ae == nil {
		return
	}
	c.Set(appErrorKey, ae)
	c.AbortWithStatusJSON(ae.Status(), ae.Payload())
}

// renderedError returns the AppError written for this request, if any.
func renderedError(c *gin.Context) (*shared.AppError, bool) {
	v, ok := c.Get(appErrorKey)
	if !ok {
		return nil, false
	}
	ae, ok := v.(*shared.AppError)
	return ae, ok
}
