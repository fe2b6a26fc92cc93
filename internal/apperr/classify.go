package apperr

import (
	"context"
	"errors"
	"strings"
)

// Postgres / PostgREST codes the core distinguishes.
const (
	codeUndefinedTable   = "42P01"
	codeSchemaCacheMiss  = "PGRST205"
	codeUniqueViolation  = "23505"
	codeRowLevelSecurity = "42501"
	codeNoRows           = "PGRST116"
)

// Classify turns a raw store error into an *Error. Errors that already carry
// a Kind pass through unchanged.
func Classify(err error, message string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(Timeout, message, err)
	}

	msg := err.Error()
	switch {
	case hasCode(msg, codeUndefinedTable), hasCode(msg, codeSchemaCacheMiss),
		strings.Contains(msg, "does not exist") && strings.Contains(msg, "relation"):
		return Wrap(BackendNotInitialized, "backend not initialized: run the database migrations", err)
	case hasCode(msg, codeUniqueViolation), strings.Contains(msg, "duplicate key value"),
		strings.Contains(msg, "user_already_exists"), strings.Contains(msg, "User already registered"):
		return Wrap(Conflict, message, err)
	case hasCode(msg, codeNoRows):
		return Wrap(NotFound, message, err)
	case hasCode(msg, codeRowLevelSecurity), strings.Contains(msg, "row-level security"):
		return Wrap(AuthorizationDenied, message, err)
	case strings.Contains(msg, "invalid_grant"), strings.Contains(msg, "Invalid login credentials"),
		strings.Contains(msg, "invalid_credentials"), strings.Contains(msg, "Email not confirmed"),
		strings.Contains(msg, "JWT expired"), strings.Contains(msg, "invalid JWT"):
		return Wrap(NotAuthenticated, message, err)
	}
	return Wrap(RemoteFailure, message, err)
}

// hasCode matches the "(CODE) message" form postgrest-go produces.
func hasCode(msg, code string) bool {
	return strings.Contains(msg, "("+code+")") || strings.Contains(msg, `"code":"`+code+`"`)
}
