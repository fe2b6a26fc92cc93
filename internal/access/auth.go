package access

import (
	"context"
	"net/mail"
	"net/url"
	"strings"

	"editdesk-backend/internal/apperr"
	"editdesk-backend/internal/models"
	"go.uber.org/zap"
)

const minPasswordLength = 6

func (l *Layer) SignUp(ctx context.Context, req models.SignUpRequest) (resp *models.AuthResponse, err error) {
	defer l.observe("sign_up", &err)

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperr.Invalidf("password must be at least %d characters", minPasswordLength)
	}
	role := req.Role
	if role == "" {
		role = models.RoleClient
	}
	if role != models.RoleClient && role != models.RoleEditor {
		return nil, apperr.Invalidf("role must be client or editor")
	}
	meta := models.SignUpMetadata{FullName: strings.TrimSpace(req.FullName), Role: role}

	session, err := l.store.SignUp(ctx, email, req.Password, meta, l.opts.RedirectURL)
	if err != nil {
		return nil, err
	}
	if session == nil {
		l.logger.Info("sign-up awaiting email confirmation")
		return &models.AuthResponse{ConfirmationRequired: true}, nil
	}

	profile, err := l.ensureProfile(ctx, *session)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Session: session, Profile: profile}, nil
}

// SignIn authenticates and makes sure the identity has a profile row.
func (l *Layer) SignIn(ctx context.Context, req models.SignInRequest) (resp *models.AuthResponse, err error) {
	defer l.observe("sign_in", &err)

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if req.Password == "" {
		return nil, apperr.Invalidf("password is required")
	}

	session, err := l.store.SignIn(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}

	profile, err := l.ensureProfile(ctx, *session)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Session: session, Profile: profile}, nil
}

func (l *Layer) SignOut(ctx context.Context, s models.Session) (err error) {
	defer l.observe("sign_out", &err)

	if err := l.requireSession(s); err != nil {
		return err
	}
	return l.store.SignOut(ctx, s)
}

func (l *Layer) ResendConfirmation(ctx context.Context, email string) (err error) {
	defer l.observe("resend_confirmation", &err)

	email, err = normalizeEmail(email)
	if err != nil {
		return err
	}
	return l.store.ResendConfirmation(ctx, email, l.opts.RedirectURL)
}

func (l *Layer) ResetPassword(ctx context.Context, email string) (err error) {
	defer l.observe("reset_password", &err)

	email, err = normalizeEmail(email)
	if err != nil {
		return err
	}
	return l.store.ResetPassword(ctx, email, l.opts.RedirectURL)
}

// CurrentProfile returns the session's profile, creating it if this is the
// identity's first authenticated request.
func (l *Layer) CurrentProfile(ctx context.Context, s models.Session) (p *models.Profile, err error) {
	defer l.observe("current_profile", &err)

	c, err := l.caller(ctx, s)
	if err != nil {
		return nil, err
	}
	return c.Profile, nil
}

// UpdateOwnProfile changes the caller's name or avatar. Role is never self-editable.
func (l *Layer) UpdateOwnProfile(ctx context.Context, s models.Session, patch models.ProfilePatch) (p *models.Profile, err error) {
	defer l.observe("update_own_profile", &err)

	c, err := l.caller(ctx, s)
	if err != nil {
		return nil, err
	}
	if patch.FullName == nil && patch.AvatarURL == nil {
		return c.Profile, nil
	}
	if patch.FullName != nil {
		name := strings.TrimSpace(*patch.FullName)
		if name == "" {
			return nil, apperr.Invalidf("full name cannot be empty")
		}
		patch.FullName = &name
	}
	if patch.AvatarURL != nil && *patch.AvatarURL != "" {
		if err := validateLink(*patch.AvatarURL); err != nil {
			return nil, apperr.Invalidf("avatar url: %s", err.Message)
		}
	}
	return l.store.UpdateProfile(ctx, s, c.ID, patch)
}

// ensureProfile is lazy provisioning: read the profile, create it from the
// sign-up metadata when missing, and treat a concurrent creation as success.
func (l *Layer) ensureProfile(ctx context.Context, s models.Session) (*models.Profile, error) {
	p, err := l.store.GetProfile(ctx, s, s.User.ID)
	if err == nil {
		return p, nil
	}
	if !apperr.Is(err, apperr.NotFound) {
		return nil, err
	}

	profile := profileFromIdentity(s.User)
	err = l.store.InsertProfile(ctx, s, profile)
	switch {
	case err == nil:
		l.logger.Info("provisioned profile", zap.String("user_id", profile.ID), zap.String("role", string(profile.Role)))
	case apperr.Is(err, apperr.Conflict):
		l.logger.Debug("profile created concurrently", zap.String("user_id", profile.ID))
	default:
		// already classified by the store: a missing schema is BackendNotInitialized,
		// anything else keeps its own kind
		return nil, err
	}

	p, err = l.store.GetProfile(ctx, s, s.User.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// profileFromIdentity builds the profile row from sign-up metadata. The name
// defaults to the local part of the email and the role to client; admin can
// only be granted by another admin.
func profileFromIdentity(id models.Identity) models.Profile {
	p := models.Profile{ID: id.ID, Email: id.Email, Role: models.RoleClient}

	if name, ok := id.Metadata["full_name"].(string); ok && strings.TrimSpace(name) != "" {
		p.FullName = strings.TrimSpace(name)
	} else {
		p.FullName = emailLocalPart(id.Email)
	}
	if role, ok := id.Metadata["role"].(string); ok && models.Role(role) == models.RoleEditor {
		p.Role = models.RoleEditor
	}
	return p
}

func emailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperr.Invalidf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.Invalidf("%q is not a valid email address", raw)
	}
	return email, nil
}

func validateLink(raw string) *apperr.Error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperr.Invalidf("%q is not an http(s) URL", raw)
	}
	return nil
}
