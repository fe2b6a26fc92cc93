package apperr_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"editdesk-backend/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func TestClassify_PostgrestCodes(t *testing.T) {
	cases := []struct {
		raw  string
		kind apperr.Kind
	}{
		{`(42P01) relation "public.profiles" does not exist`, apperr.BackendNotInitialized},
		{`(PGRST205) Could not find the table 'public.projects' in the schema cache`, apperr.BackendNotInitialized},
		{`(23505) duplicate key value violates unique constraint "profiles_pkey"`, apperr.Conflict},
		{`(42501) new row violates row-level security policy for table "projects"`, apperr.AuthorizationDenied},
		{`response status code 400: {"error":"invalid_grant","error_description":"Invalid login credentials"}`, apperr.NotAuthenticated},
		{`(PGRST301) JWT expired`, apperr.NotAuthenticated},
		{`response status code 400: {"code":400,"error_code":"email_not_confirmed","msg":"Email not confirmed"}`, apperr.NotAuthenticated},
		{`response status code 422: {"code":422,"error_code":"user_already_exists","msg":"User already registered"}`, apperr.Conflict},
		{`(PGRST116) JSON object requested, multiple (or no) rows returned`, apperr.NotFound},
		{`dial tcp: connection refused`, apperr.RemoteFailure},
	}
	for _, tc := range cases {
		err := apperr.Classify(errors.New(tc.raw), "failed to load")
		assert.Equal(t, tc.kind, apperr.KindOf(err), tc.raw)
	}
}

func TestClassify_PassesThroughKinds(t *testing.T) {
	orig := apperr.New(apperr.NotFound, "project not found")
	err := apperr.Classify(fmt.Errorf("lookup: %w", orig), "ignored")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestClassify_Deadline(t *testing.T) {
	err := apperr.Classify(context.DeadlineExceeded, "remote call timed out")
	assert.True(t, apperr.Is(err, apperr.Timeout))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, apperr.Kind(""), apperr.KindOf(nil))
	assert.Equal(t, apperr.RemoteFailure, apperr.KindOf(errors.New("boom")))
	assert.Equal(t, apperr.AuthorizationDenied, apperr.KindOf(apperr.Denied("no")))
	assert.Nil(t, apperr.Classify(nil, "x"))
}

func TestError_Message(t *testing.T) {
	err := apperr.Wrap(apperr.RemoteFailure, "failed to insert file", errors.New("boom"))
	assert.Equal(t, "failed to insert file: boom", err.Error())
	assert.Equal(t, "nope", apperr.New(apperr.Invalid, "nope").Error())
}
