// Package access is the typed façade the HTTP handlers call. Every rule about
// who may see or change what is applied here, over whichever DataStore was
// configured.
package access

import (
	"context"
	"time"

	"editdesk-backend/internal/apperr"
	"editdesk-backend/internal/metrics"
	"editdesk-backend/internal/models"
	"editdesk-backend/internal/policy"
	"go.uber.org/zap"
)

type Options struct {
	// RedirectURL is where confirmation and recovery emails send the user.
	RedirectURL  string
	SignedURLTTL time.Duration
}

type Layer struct {
	store    DataStore
	enforcer *policy.Enforcer
	logger   *zap.Logger
	opts     Options
	now      func() time.Time
}

func NewLayer(store DataStore, enforcer *policy.Enforcer, logger *zap.Logger, opts Options) *Layer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SignedURLTTL <= 0 {
		opts.SignedURLTTL = time.Hour
	}
	return &Layer{
		store:    store,
		enforcer: enforcer,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
	}
}

func (l *Layer) StoreName() string {
	return l.store.Name()
}

// caller is the authenticated actor with their provisioned profile.
type caller struct {
	policy.Actor
	Profile *models.Profile
}

func (l *Layer) requireSession(s models.Session) error {
	if s.AccessToken == "" || s.User.ID == "" {
		return apperr.New(apperr.NotAuthenticated, "sign in to continue")
	}
	if !s.ExpiresAt.IsZero() && s.ExpiresAt.Before(l.now()) {
		return apperr.New(apperr.NotAuthenticated, "session expired, sign in again")
	}
	return nil
}

func (l *Layer) caller(ctx context.Context, s models.Session) (*caller, error) {
	if err := l.requireSession(s); err != nil {
		return nil, err
	}
	profile, err := l.ensureProfile(ctx, s)
	if err != nil {
		return nil, err
	}
	return &caller{
		Actor:   policy.Actor{ID: profile.ID, Role: profile.Role},
		Profile: profile,
	}, nil
}

func (l *Layer) requireRole(c *caller, roles ...models.Role) error {
	for _, r := range roles {
		if c.Role == r {
			return nil
		}
	}
	return apperr.Denied("%s role cannot perform this action", c.Role)
}

// observe records the outcome of operation op.
func (l *Layer) observe(op string, errp *error) {
	outcome := string(apperr.KindOf(*errp))
	metrics.ObserveOperation(op, outcome)
	if *errp == nil {
		return
	}
	switch apperr.KindOf(*errp) {
	case apperr.RemoteFailure, apperr.Timeout, apperr.BackendNotInitialized:
		l.logger.Warn("operation failed", zap.String("operation", op), zap.Error(*errp))
	default:
		l.logger.Debug("operation rejected", zap.String("operation", op), zap.Error(*errp))
	}
}
