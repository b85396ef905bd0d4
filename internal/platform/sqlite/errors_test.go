package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-service/internal/shared"
)

const usersSchema = `
CREATE TABLE users (
	id           INTEGER PRIMARY KEY,
	email        TEXT NOT NULL UNIQUE,
	first_name   TEXT NOT NULL,
	last_name    TEXT NOT NULL,
	phone_number TEXT,
	UNIQUE (first_name, last_name)
);
CREATE TABLE sessions (
	id      INTEGER PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id),
	ttl     INTEGER CHECK (ttl > 0)
);`

func newUsersDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := NewInMemoryDB(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(ctx, usersSchema)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx,
		"INSERT INTO users (id, email, first_name, last_name) VALUES (1, 'ann@example.com', 'Ann', 'Lee')")
	require.NoError(t, err)
	return db
}

func newTranslator(t *testing.T) *shared.StorageTranslator {
	t.Helper()

	opts := []shared.CatalogOption{
		shared.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		shared.WithReadFile(func(string) ([]byte, error) { return []byte(`{}`), nil }),
	}
	reg := shared.NewRegistry(
		shared.NewCatalog(shared.GlobalCatalog, "error.json", opts...),
		shared.NewCatalog(shared.ServiceCatalog, "service.json", opts...),
	)
	return shared.NewStorageTranslator(reg, Classify)
}

func TestClassify_ConstraintViolations(t *testing.T) {
	db := newUsersDB(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		query      string
		state      string
		constraint string
	}{
		{
			name:       "unique column",
			query:      "INSERT INTO users (email, first_name, last_name) VALUES ('ann@example.com', 'Bob', 'Ray')",
			state:      "23505",
			constraint: "users_email_key",
		},
		{
			name:       "unique pair",
			query:      "INSERT INTO users (email, first_name, last_name) VALUES ('other@example.com', 'Ann', 'Lee')",
			state:      "23505",
			constraint: "users_first_name_last_name_key",
		},
		{
			name:       "primary key",
			query:      "INSERT INTO users (id, email, first_name, last_name) VALUES (1, 'x@example.com', 'X', 'Y')",
			state:      "23505",
			constraint: "users_id_key",
		},
		{
			name:  "not null",
			query: "INSERT INTO users (email, first_name) VALUES ('n@example.com', 'N')",
			state: "23502",
		},
		{
			name:  "foreign key",
			query: "INSERT INTO sessions (user_id, ttl) VALUES (42, 10)",
			state: "23503",
		},
		{
			name:  "check",
			query: "INSERT INTO sessions (user_id, ttl) VALUES (1, -1)",
			state: "23514",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.ExecContext(ctx, tt.query)
			require.Error(t, err)

			dbErr, ok := Classify(err)
			require.True(t, ok, "error not classified: %v", err)
			assert.Equal(t, tt.state, dbErr.SQLState())
			assert.Equal(t, tt.constraint, dbErr.ConstraintName())
			assert.Equal(t, err.Error(), dbErr.Error())
		})
	}
}

func TestClassify_NotConstraint(t *testing.T) {
	db := newUsersDB(t)

	_, err := db.ExecContext(context.Background(), "SELECT * FROM missing_table")
	require.Error(t, err)

	_, ok := Classify(err)
	assert.False(t, ok)

	_, ok = Classify(errors.New("timeout"))
	assert.False(t, ok)
}

func TestTranslate_SQLiteErrors(t *testing.T) {
	db := newUsersDB(t)
	tr := newTranslator(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		"INSERT INTO users (email, first_name, last_name) VALUES ('ann@example.com', 'Bob', 'Ray')")
	got := tr.Translate(err)
	assert.Equal(t, shared.CodeBadRequest, got.Code())
	assert.Equal(t, http.StatusBadRequest, got.Status())
	assert.Equal(t, "email already exists", got.Message())

	_, err = db.ExecContext(ctx,
		"INSERT INTO users (email, first_name, last_name) VALUES ('z@example.com', 'Ann', 'Lee')")
	assert.Equal(t, "first name last name already exists", tr.Translate(err).Message())

	_, err = db.ExecContext(ctx, "INSERT INTO sessions (user_id, ttl) VALUES (42, 10)")
	got = tr.Translate(err)
	assert.Equal(t, shared.CodeInternal, got.Code())
	assert.Equal(t, err.Error(), got.Message())
}

func TestUniqueConstraintName(t *testing.T) {
	tests := []struct {
		msg      string
		expected string
	}{
		{msg: "constraint failed: UNIQUE constraint failed: users.email (2067)", expected: "users_email_key"},
		{msg: "UNIQUE constraint failed: users.first_name, users.last_name", expected: "users_first_name_last_name_key"},
		{msg: "UNIQUE constraint failed: index 'idx_users_email'", expected: ""},
		{msg: "something else", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.expected, uniqueConstraintName(tt.msg))
		})
	}
}
