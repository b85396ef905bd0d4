package shared

import (
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
)

// Registry resolves codes to messages and builds AppError values.
//
// Codes in [1000, 2000) are looked up in the global catalog only; every other
// code is looked up in the service catalog only. The split is fixed.
type Registry struct {
	global  *Catalog
	service *Catalog
	storage *StorageTranslator
}

// NewRegistry creates a registry over the given catalogs.
func NewRegistry(global, service *Catalog) *Registry {
	r := &Registry{global: global, service: service}
	r.storage = NewStorageTranslator(r)
	return r
}

// NewRegistryFromEnv creates a registry whose catalog paths come from
// GLOBAL_ERROR_FILE_PATH and SERVICE_ERROR_FILE_PATH.
func NewRegistryFromEnv(opts ...CatalogOption) *Registry {
	return NewRegistry(
		NewCatalog(GlobalCatalog, PathFromEnv(GlobalCatalog), opts...),
		NewCatalog(ServiceCatalog, PathFromEnv(ServiceCatalog), opts...),
	)
}

// Catalog returns the catalog of the given kind.
func (r *Registry) Catalog(kind CatalogKind) *Catalog {
	if kind == GlobalCatalog {
		return r.global
	}
	return r.service
}

// UseStorageTranslator sets the translator From uses for non-AppError errors.
func (r *Registry) UseStorageTranslator(t *StorageTranslator) {
	if t != nil {
		r.storage = t
	}
}

// Preload loads both catalogs and returns any read failure. Call it during
// startup so a missing catalog stops the process before it serves requests.
func (r *Registry) Preload() error {
	return errors.Join(r.global.Load(), r.service.Load())
}

// Resolve returns the catalog message for code, or fallback when there is none.
func (r *Registry) Resolve(code Code, fallback string) string {
	c := r.service
	if code.IsGlobal() {
		c = r.global
	}
	if msg, ok := c.Lookup(code); ok {
		return msg
	}
	return fallback
}

// New builds an AppError. Without WithMessage the message is resolved from the
// catalogs, falling back to "Error code: {code}". Without WithStatus, or with
// a status outside the 4xx and 5xx classes, the status is DefaultStatus.
func (r *Registry) New(code Code, opts ...Option) *AppError {
	o := buildOptions{status: DefaultStatus}
	for _, opt := range opts {
		opt(&o)
	}
	if !isErrorStatus(o.status) {
		o.status = DefaultStatus
	}
	msg := o.message
	if msg == "" {
		msg = r.Resolve(code, fmt.Sprintf("Error code: %d", code))
	}
	return &AppError{code: code, message: msg, status: o.status, cause: o.cause}
}

func (r *Registry) fixed(code Code, status int, opts []Option) *AppError {
	return r.New(code, append(opts, WithStatus(status))...)
}

// InternalError builds a 1000/500 error.
func (r *Registry) InternalError(opts ...Option) *AppError {
	return r.fixed(CodeInternal, http.StatusInternalServerError, opts)
}

// BadRequest builds a 1001/400 error.
func (r *Registry) BadRequest(opts ...Option) *AppError {
	return r.fixed(CodeBadRequest, http.StatusBadRequest, opts)
}

// NotFound builds a 1002/404 error.
func (r *Registry) NotFound(opts ...Option) *AppError {
	return r.fixed(CodeNotFound, http.StatusNotFound, opts)
}

// Unauthorized builds a 1003/401 error.
func (r *Registry) Unauthorized(opts ...Option) *AppError {
	return r.fixed(CodeUnauthorized, http.StatusUnauthorized, opts)
}

// ValidationError builds a 1004/422 error.
func (r *Registry) ValidationError(opts ...Option) *AppError {
	return r.fixed(CodeValidation, http.StatusUnprocessableEntity, opts)
}

// DatabaseError builds a 1005/500 error.
func (r *Registry) DatabaseError(opts ...Option) *AppError {
	return r.fixed(CodeDatabase, http.StatusInternalServerError, opts)
}

// From converts any error into an AppError. An AppError anywhere in the chain
// is returned as is; everything else goes through the storage translator.
// From(nil) returns nil.
func (r *Registry) From(err error) *AppError {
	if err == nil {
		return nil
	}
	if ae, ok := AsAppError(err); ok {
		return ae
	}
	return r.storage.Translate(err)
}

var defaultRegistry atomic.Pointer[Registry]

// Default returns the default registry. Unless SetDefault was called, it is
// an environment-configured registry that loads its catalogs on first use.
func Default() *Registry {
	if r := defaultRegistry.Load(); r != nil {
		return r
	}
	defaultRegistry.CompareAndSwap(nil, NewRegistryFromEnv())
	return defaultRegistry.Load()
}

// SetDefault makes r the default registry.
func SetDefault(r *Registry) {
	if r != nil {
		defaultRegistry.Store(r)
	}
}

// New builds an AppError with the default registry.
func New(code Code, opts ...Option) *AppError { return Default().New(code, opts...) }

// InternalError builds a 1000/500 error with the default registry.
func InternalError(opts ...Option) *AppError { return Default().InternalError(opts...) }

// BadRequest builds a 1001/400 error with the default registry.
func BadRequest(opts ...Option) *AppError { return Default().BadRequest(opts...) }

// NotFound builds a 1002/404 error with the default registry.
func NotFound(opts ...Option) *AppError { return Default().NotFound(opts...) }

// Unauthorized builds a 1003/401 error with the default registry.
func Unauthorized(opts ...Option) *AppError { return Default().Unauthorized(opts...) }

// ValidationError builds a 1004/422 error with the default registry.
func ValidationError(opts ...Option) *AppError { return Default().ValidationError(opts...) }

// DatabaseError builds a 1005/500 error with the default registry.
func DatabaseError(opts ...Option) *AppError { return Default().DatabaseError(opts...) }
