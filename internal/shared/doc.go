// Package shared contains the application error taxonomy used across layers
// without domain-specific logic.
//
// # Error Codes
//
// Every error carries a numeric Code. The range decides which message catalog
// is consulted:
//
//	Range            | Catalog  | Example
//	-----------------|----------|---------------------------
//	[1000, 2000)     | global   | 1002 resource not found
//	everything else  | service  | 2001 user already exists
//
// The global codes used by the named constructors:
//
//	Constructor      | Code | Status
//	-----------------|------|-------
//	InternalError    | 1000 | 500
//	BadRequest       | 1001 | 400
//	NotFound         | 1002 | 404
//	Unauthorized     | 1003 | 401
//	ValidationError  | 1004 | 422
//	DatabaseError    | 1005 | 500
//
// # Message Catalogs
//
// Catalogs are JSON objects keyed by the decimal code:
//
//	{"1002": "Resource not found", "1003": "Unauthorized"}
//
// Keys must be written exactly as the code prints ("1002", never "01002" or
// "+1002"); other keys are skipped and reported.
//
// The global catalog path comes from GLOBAL_ERROR_FILE_PATH (default
// error.json), the service catalog from SERVICE_ERROR_FILE_PATH (default
// services/user/error.json). Each file is read at most once per Catalog.
// An unreadable file is fatal; an unparseable one is logged and treated as
// empty, so every code in it falls back to "Error code: {code}".
//
// Load catalogs during startup so a missing file stops the process early:
//
//	reg := shared.NewRegistry(
//	    shared.NewCatalog(shared.GlobalCatalog, cfg.Errors.GlobalFile, shared.WithLogger(log)),
//	    shared.NewCatalog(shared.ServiceCatalog, cfg.Errors.ServiceFile, shared.WithLogger(log)),
//	)
//	if err := reg.Preload(); err != nil {
//	    return err
//	}
//	shared.SetDefault(reg)
//
// # Building Errors
//
//	err := shared.NotFound()                                   // message from catalog
//	err := shared.BadRequest(shared.WithMessage("bad cursor")) // explicit message
//	err := shared.New(2001, shared.WithStatus(http.StatusConflict))
//
// An explicit message is used verbatim and the catalogs are never consulted.
//
// # Storage Errors
//
// Repositories hand raw driver errors to a StorageTranslator before returning:
//
//	tr := shared.NewStorageTranslator(reg, pg.Classify, sqlite.Classify)
//	if err != nil {
//	    return tr.Translate(err)
//	}
//
// A unique violation on users_email_key becomes BadRequest "email already
// exists"; anything else becomes InternalError with the driver's text.
//
// # Adapter Integration
//
// AppError renders to {"code": ..., "message": ...}; the status goes on the
// status line:
//
//	ae := reg.From(err)
//	c.AbortWithStatusJSON(ae.Status(), ae)
package shared
