package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"editdesk-backend/internal/models"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/supabase-go"
)

// redirectTransport adds GoTrue's redirect_to query parameter, which the
// gotrue client has no option for on sign-up and recovery.
type redirectTransport struct {
	base        http.RoundTripper
	redirectURL string
}

func (t *redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	q := req.URL.Query()
	q.Set("redirect_to", t.redirectURL)
	req.URL.RawQuery = q.Encode()
	return t.base.RoundTrip(req)
}

func (s *Store) authFor(redirectURL string) gotrue.Client {
	if redirectURL == "" {
		return s.auth
	}
	base := s.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return s.auth.WithClient(http.Client{
		Timeout:   s.timeout,
		Transport: &redirectTransport{base: base, redirectURL: redirectURL},
	})
}

func (s *Store) SignUp(ctx context.Context, email, password string, meta models.SignUpMetadata, redirectURL string) (*models.Session, error) {
	auth := s.authFor(redirectURL)
	resp, err := call(ctx, s.timeout, func() (*types.SignupResponse, error) {
		return auth.Signup(types.SignupRequest{
			Email:    email,
			Password: password,
			Data: map[string]interface{}{
				"full_name": meta.FullName,
				"role":      string(meta.Role),
			},
		})
	})
	if err != nil {
		return nil, s.fail(err, "sign-up failed")
	}
	// No session means the project requires email confirmation.
	if resp.Session.AccessToken == "" {
		return nil, nil
	}
	sess := sessionFrom(resp.Session)
	return &sess, nil
}

func (s *Store) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	resp, err := call(ctx, s.timeout, func() (*types.TokenResponse, error) {
		return s.auth.SignInWithEmailPassword(email, password)
	})
	if err != nil {
		return nil, s.fail(err, "invalid login credentials")
	}
	sess := sessionFrom(resp.Session)
	return &sess, nil
}

func (s *Store) SignOut(ctx context.Context, sess models.Session) error {
	auth := s.auth.WithToken(sess.AccessToken)
	if err := exec(ctx, s.timeout, auth.Logout); err != nil {
		return s.fail(err, "sign-out failed")
	}
	return nil
}

func (s *Store) ResetPassword(ctx context.Context, email, redirectURL string) error {
	auth := s.authFor(redirectURL)
	err := exec(ctx, s.timeout, func() error {
		return auth.Recover(types.RecoverRequest{Email: email})
	})
	if err != nil {
		return s.fail(err, "could not send the password reset email")
	}
	return nil
}

type resendRequest struct {
	Type  string `json:"type"`
	Email string `json:"email"`
}

// ResendConfirmation calls GoTrue's /resend endpoint directly; the gotrue
// client does not wrap it.
func (s *Store) ResendConfirmation(ctx context.Context, email, redirectURL string) error {
	body, err := json.Marshal(resendRequest{Type: "signup", Email: email})
	if err != nil {
		return fmt.Errorf("failed to marshal resend request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+supabase.AUTH_URL+"/resend", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if redirectURL != "" {
		q := req.URL.Query()
		q.Set("redirect_to", redirectURL)
		req.URL.RawQuery = q.Encode()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return s.fail(err, "could not resend the confirmation email")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return s.fail(fmt.Errorf("response status code %d: %s", resp.StatusCode, respBody), "could not resend the confirmation email")
	}
	return nil
}

func sessionFrom(ts types.Session) models.Session {
	expires := time.Unix(ts.ExpiresAt, 0)
	if ts.ExpiresAt == 0 {
		expires = time.Now().Add(time.Duration(ts.ExpiresIn) * time.Second)
	}
	return models.Session{
		AccessToken:  ts.AccessToken,
		RefreshToken: ts.RefreshToken,
		ExpiresAt:    expires,
		User: models.Identity{
			ID:       ts.User.ID.String(),
			Email:    ts.User.Email,
			Metadata: ts.User.UserMetadata,
		},
	}
}
