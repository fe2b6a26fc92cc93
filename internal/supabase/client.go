// Package supabase is the DataStore backed by a hosted Supabase project:
// GoTrue for sessions, PostgREST for the tables and Storage for file bytes.
// Table and storage calls run with the caller's access token so the
// project's row-level security applies to every request.
package supabase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"editdesk-backend/internal/access"
	"editdesk-backend/internal/apperr"
	"editdesk-backend/internal/config"
	"editdesk-backend/internal/models"
	"github.com/supabase-community/gotrue-go"
	postgrest "github.com/supabase-community/postgrest-go"
	storage "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
)

var _ access.DataStore = (*Store)(nil)

type Store struct {
	baseURL string
	apiKey  string
	bucket  string
	timeout time.Duration

	auth       gotrue.Client
	httpClient *http.Client
	logger     *zap.Logger
}

func NewStore(cfg *config.Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := strings.TrimRight(cfg.SupabaseURL, "/")

	client, err := supabase.NewClient(baseURL, cfg.SupabasePublishableKey, nil)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.RemoteTimeout}
	return &Store{
		baseURL:    baseURL,
		apiKey:     cfg.SupabasePublishableKey,
		bucket:     cfg.SupabaseStorageBucket,
		timeout:    cfg.RemoteTimeout,
		auth:       client.Auth.WithClient(*httpClient),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

func (s *Store) Name() string {
	return "supabase"
}

// rest returns a PostgREST client acting as the session's user.
func (s *Store) rest(sess models.Session) *postgrest.Client {
	return postgrest.NewClient(s.baseURL+supabase.REST_URL, "public", map[string]string{
		"apikey":        s.apiKey,
		"Authorization": "Bearer " + sess.AccessToken,
	})
}

// storage returns a Storage client acting as the session's user. Upload
// options are set on the client's shared headers, so clients are never reused
// across calls.
func (s *Store) storage(sess models.Session) *storage.Client {
	return storage.NewClient(s.baseURL+supabase.STORGAGE_URL, sess.AccessToken, map[string]string{
		"apikey": s.apiKey,
	})
}

// call runs fn with the store's timeout. The libraries take no context, so on
// timeout fn is abandoned and finishes in the background.
func call[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// exec is call for operations that only return an error.
func exec(ctx context.Context, timeout time.Duration, fn func() error) error {
	_, err := call(ctx, timeout, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

func (s *Store) fail(err error, message string) error {
	classified := apperr.Classify(err, message)
	if apperr.Is(classified, apperr.Timeout) {
		s.logger.Warn("supabase call timed out", zap.String("operation", message), zap.Duration("timeout", s.timeout))
	}
	return classified
}
