package sqlite

import (
	"errors"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"user-service/internal/shared"
)

// SQLSTATE коды, в которые отображаются ограничения SQLite.
const (
	stateUniqueViolation     = shared.UniqueViolation
	stateForeignKeyViolation = "23503"
	stateNotNullViolation    = "23502"
	stateCheckViolation      = "23514"
)

const uniqueFailedPrefix = "UNIQUE constraint failed: "

// constraintError представляет ошибку ограничения SQLite в форме shared.DBError.
type constraintError struct {
	err        *msqlite.Error
	state      string
	constraint string
}

func (e *constraintError) Error() string          { return e.err.Error() }
func (e *constraintError) SQLState() string       { return e.state }
func (e *constraintError) ConstraintName() string { return e.constraint }
func (e *constraintError) Unwrap() error          { return e.err }

// Classify распознает нарушение ограничения SQLite в цепочке err.
//
// SQLite не сообщает имя ограничения, поэтому для UNIQUE оно строится
// по соглашению PostgreSQL из текста ошибки:
// "UNIQUE constraint failed: users.email" -> "users_email_key".
func Classify(err error) (shared.DBError, bool) {
	var se *msqlite.Error
	if !errors.As(err, &se) {
		return nil, false
	}

	code := se.Code()
	if code&0xff != sqlite3.SQLITE_CONSTRAINT {
		return nil, false
	}

	ce := &constraintError{err: se}
	switch {
	case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE,
		code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
		strings.Contains(se.Error(), uniqueFailedPrefix):
		ce.state = stateUniqueViolation
		ce.constraint = uniqueConstraintName(se.Error())
	case code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		ce.state = stateForeignKeyViolation
	case code == sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		ce.state = stateNotNullViolation
	case code == sqlite3.SQLITE_CONSTRAINT_CHECK:
		ce.state = stateCheckViolation
	}
	return ce, true
}

var _ shared.Classifier = Classify

// uniqueConstraintName строит имя вида <table>_<col...>_key из текста
// "UNIQUE constraint failed: t.a, t.b". Пустая строка, если текст не распознан.
func uniqueConstraintName(msg string) string {
	i := strings.Index(msg, uniqueFailedPrefix)
	if i < 0 {
		return ""
	}
	rest := msg[i+len(uniqueFailedPrefix):]
	if j := strings.Index(rest, " ("); j >= 0 {
		rest = rest[:j]
	}

	var table string
	var cols []string
	for _, ref := range strings.Split(rest, ",") {
		ref = strings.TrimSpace(ref)
		t, col, ok := strings.Cut(ref, ".")
		if !ok || col == "" {
			continue
		}
		if table == "" {
			table = t
		}
		cols = append(cols, col)
	}
	if table == "" {
		return ""
	}
	return table + "_" + strings.Join(cols, "_") + "_key"
}
