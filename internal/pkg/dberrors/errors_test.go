package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "applications_applicant_track_key"})
	check := &pgconn.PgError{Code: "23514", ConstraintName: "applications_redirection_check"}

	assert.True(t, IsDuplicateConstraintError(dup, "applications_applicant_track_key"))
	assert.False(t, IsDuplicateConstraintError(dup, "other_key"))
	assert.True(t, IsCheckViolation(check))
	assert.False(t, IsCheckViolation(dup))
	assert.False(t, IsCheckViolation(errors.New("plain")))
}
