// Package memstore is an in-process DataStore for local development, demos and
// tests. It follows the same contract as the Supabase store: sessions are
// HS256 tokens signed with the shared secret, inserts can conflict, and
// project updates are compare-and-set.
package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"editdesk-backend/internal/access"
	"editdesk-backend/internal/apperr"
	"editdesk-backend/internal/authtoken"
	"editdesk-backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var _ access.DataStore = (*Store)(nil)

// Mail is an auth email the store would have sent.
type Mail struct {
	Kind        string
	Email       string
	RedirectURL string
}

type identity struct {
	models.Identity
	passwordHash []byte
	confirmed    bool
}

type object struct {
	contentType string
	data        []byte
}

type Store struct {
	mu sync.RWMutex

	secret     string
	sessionTTL time.Duration
	publicURL  string
	bcryptCost int
	now        func() time.Time
	logger     *zap.Logger

	requireConfirmation bool
	profileTrigger      bool

	identities map[string]*identity // by email
	revoked    map[string]bool      // session ids
	outbox     []Mail

	profiles map[string]models.Profile
	projects map[string]models.Project
	files    []models.ProjectFile
	comments []models.Comment
	objects  map[string]object

	lastStamp time.Time
}

type Option func(*Store)

// WithEmailConfirmation makes sign-up return no session until ConfirmEmail is called.
func WithEmailConfirmation() Option {
	return func(s *Store) { s.requireConfirmation = true }
}

// WithProfileTrigger creates the profile row at sign-up, like the
// handle_new_user database trigger does.
func WithProfileTrigger() Option {
	return func(s *Store) { s.profileTrigger = true }
}

// WithPublicURL sets the prefix signed object URLs are built on.
func WithPublicURL(url string) Option {
	return func(s *Store) { s.publicURL = strings.TrimRight(url, "/") }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithBcryptCost(cost int) Option {
	return func(s *Store) { s.bcryptCost = cost }
}

func New(secret string, opts ...Option) *Store {
	s := &Store{
		secret:     secret,
		sessionTTL: time.Hour,
		publicURL:  "http://localhost:8080/api/v1",
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		logger:     zap.NewNop(),
		identities: make(map[string]*identity),
		revoked:    make(map[string]bool),
		profiles:   make(map[string]models.Profile),
		projects:   make(map[string]models.Project),
		objects:    make(map[string]object),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Name() string {
	return "memory"
}

// stamp returns a strictly increasing timestamp so creation order is total.
// Callers hold s.mu.
func (s *Store) stamp() time.Time {
	t := s.now().UTC()
	if !t.After(s.lastStamp) {
		t = s.lastStamp.Add(time.Microsecond)
	}
	s.lastStamp = t
	return t
}

func (s *Store) SignUp(ctx context.Context, email, password string, meta models.SignUpMetadata, redirectURL string) (*models.Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Invalid, "password cannot be used", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.identities[email]; ok {
		return nil, apperr.New(apperr.Conflict, "an account with this email already exists")
	}
	id := &identity{
		Identity: models.Identity{
			ID:    uuid.New().String(),
			Email: email,
			Metadata: map[string]interface{}{
				"full_name": meta.FullName,
				"role":      string(meta.Role),
			},
		},
		passwordHash: hash,
		confirmed:    !s.requireConfirmation,
	}
	s.identities[email] = id

	if s.profileTrigger {
		s.insertProfileLocked(profileFromMetadata(id.Identity))
	}

	if !id.confirmed {
		s.sendLocked("confirm_signup", email, redirectURL)
		return nil, nil
	}
	return s.issueLocked(id.Identity)
}

func (s *Store) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.identities[email]
	if !ok || bcrypt.CompareHashAndPassword(id.passwordHash, []byte(password)) != nil {
		return nil, apperr.New(apperr.NotAuthenticated, "invalid login credentials")
	}
	if !id.confirmed {
		return nil, apperr.New(apperr.NotAuthenticated, "email not confirmed")
	}
	return s.issueLocked(id.Identity)
}

func (s *Store) SignOut(ctx context.Context, sess models.Session) error {
	claims, err := s.verify(sess)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.revoked[claims.SessionID] = true
	s.mu.Unlock()
	return nil
}

// ResendConfirmation and ResetPassword succeed for unknown addresses so they
// cannot be used to probe for accounts.
func (s *Store) ResendConfirmation(ctx context.Context, email, redirectURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.identities[email]; ok && !id.confirmed {
		s.sendLocked("confirm_signup", email, redirectURL)
	}
	return nil
}

func (s *Store) ResetPassword(ctx context.Context, email, redirectURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.identities[email]; ok {
		s.sendLocked("recovery", email, redirectURL)
	}
	return nil
}

// ConfirmEmail marks an identity as confirmed, as following the emailed link would.
func (s *Store) ConfirmEmail(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.identities[email]
	if !ok {
		return apperr.New(apperr.NotFound, "no such identity")
	}
	id.confirmed = true
	return nil
}

// Outbox returns the auth emails sent so far.
func (s *Store) Outbox() []Mail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Mail(nil), s.outbox...)
}

func (s *Store) sendLocked(kind, email, redirectURL string) {
	s.outbox = append(s.outbox, Mail{Kind: kind, Email: email, RedirectURL: redirectURL})
	s.logger.Info("auth email queued", zap.String("kind", kind), zap.String("email", email))
}

func (s *Store) issueLocked(id models.Identity) (*models.Session, error) {
	sessionID := uuid.New().String()
	token, expires, err := authtoken.Sign(id, sessionID, s.secret, s.now(), s.sessionTTL)
	if err != nil {
		return nil, apperr.Wrap(apperr.RemoteFailure, "could not start a session", err)
	}
	return &models.Session{
		AccessToken:  token,
		RefreshToken: uuid.New().String(),
		ExpiresAt:    expires,
		User:         id,
	}, nil
}

// verify is the store's stand-in for the backend checking the bearer token.
func (s *Store) verify(sess models.Session) (*authtoken.Claims, error) {
	claims, err := authtoken.Parse(sess.AccessToken, s.secret)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotAuthenticated, "session is not valid", err)
	}
	s.mu.RLock()
	revoked := s.revoked[claims.SessionID]
	s.mu.RUnlock()
	if revoked {
		return nil, apperr.New(apperr.NotAuthenticated, "session has been signed out")
	}
	return claims, nil
}

func profileFromMetadata(id models.Identity) models.Profile {
	p := models.Profile{ID: id.ID, Email: id.Email, Role: models.RoleClient}
	if name, _ := id.Metadata["full_name"].(string); name != "" {
		p.FullName = name
	} else if i := strings.IndexByte(id.Email, '@'); i > 0 {
		p.FullName = id.Email[:i]
	}
	if role, _ := id.Metadata["role"].(string); models.Role(role) == models.RoleEditor {
		p.Role = models.RoleEditor
	}
	return p
}
