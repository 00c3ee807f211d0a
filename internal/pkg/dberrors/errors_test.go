package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	dup := &pgconn.PgError{Code: UniqueViolation, ConstraintName: "users_email_key"}

	assert.True(t, IsDuplicateConstraintError(dup, "users_email_key"))
	assert.True(t, IsDuplicateConstraintError(fmt.Errorf("insert: %w", dup), "users_email_key"))
	assert.False(t, IsDuplicateConstraintError(dup, "users_faculty_id_key"))
	assert.False(t, IsDuplicateConstraintError(&pgconn.PgError{Code: ForeignKeyViolation, ConstraintName: "users_email_key"}, "users_email_key"))
	assert.False(t, IsDuplicateConstraintError(errors.New("boom"), "users_email_key"))
	assert.False(t, IsDuplicateConstraintError(nil, "users_email_key"))
}

func TestViolationKinds(t *testing.T) {
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: ForeignKeyViolation}))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: UniqueViolation}))
	assert.True(t, IsCheckViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: CheckViolation})))
	assert.False(t, IsCheckViolation(errors.New("plain")))
}
