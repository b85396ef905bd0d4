package shared

import (
	"errors"
	"strings"
)

// UniqueViolation is the SQLSTATE for a unique constraint violation.
const UniqueViolation = "23505"

// DBError is a database-originated error as seen by the translator.
type DBError interface {
	error
	// SQLState returns the engine error code.
	SQLState() string
	// ConstraintName returns the violated constraint, if any.
	ConstraintName() string
}

// Classifier recognises a driver-specific error as a DBError.
type Classifier func(err error) (DBError, bool)

// StorageTranslator turns raw storage errors into AppError values.
type StorageTranslator struct {
	reg         *Registry
	classifiers []Classifier
}

// NewStorageTranslator creates a translator building errors with reg.
// Errors already implementing DBError are recognised without a classifier.
func NewStorageTranslator(reg *Registry, classifiers ...Classifier) *StorageTranslator {
	return &StorageTranslator{reg: reg, classifiers: classifiers}
}

// Translate maps err to an AppError:
//   - a unique violation becomes BadRequest "<field> already exists";
//   - any other error, database or not, becomes InternalError carrying err's text.
//
// Translate(nil) returns nil and an AppError is returned unchanged. An error
// whose text is empty carries no explicit message, so the InternalError
// message comes from the global catalog instead.
func (t *StorageTranslator) Translate(err error) *AppError {
	if err == nil {
		return nil
	}
	if ae, ok := AsAppError(err); ok {
		return ae
	}
	reg := t.reg
	if reg == nil {
		reg = Default()
	}
	if dbErr, ok := t.classify(err); ok && dbErr.SQLState() == UniqueViolation {
		label := FieldLabel(dbErr.ConstraintName())
		return reg.BadRequest(WithMessage(label+" already exists"), WithCause(err))
	}
	return reg.InternalError(WithMessage(err.Error()), WithCause(err))
}

func (t *StorageTranslator) classify(err error) (DBError, bool) {
	var dbErr DBError
	if errors.As(err, &dbErr) {
		return dbErr, true
	}
	for _, c := range t.classifiers {
		if dbErr, ok := c(err); ok {
			return dbErr, true
		}
	}
	return nil, false
}

// FieldLabel derives a field label from a constraint named
// <table>_<field...>_key. With fewer than three parts the whole name is used;
// otherwise the first and last parts are dropped and the rest joined by spaces.
func FieldLabel(constraint string) string {
	parts := strings.Split(constraint, "_")
	if len(parts) < 3 {
		return constraint
	}
	return strings.Join(parts[1:len(parts)-1], " ")
}
