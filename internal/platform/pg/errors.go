package pg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"user-service/internal/shared"
)

// pgError представляет *pgconn.PgError в форме, понятной shared.StorageTranslator.
type pgError struct {
	err *pgconn.PgError
}

func (e pgError) Error() string          { return e.err.Error() }
func (e pgError) SQLState() string       { return e.err.Code }
func (e pgError) ConstraintName() string { return e.err.ConstraintName }
func (e pgError) Unwrap() error          { return e.err }

// Classify распознает ошибку PostgreSQL в цепочке err.
// Ошибки соединения, таймауты и прочие не-серверные ошибки не распознаются.
func Classify(err error) (shared.DBError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgError{err: pgErr}, true
	}
	return nil, false
}

var _ shared.Classifier = Classify
