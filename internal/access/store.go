package access

import (
	"context"
	"errors"
	"time"

	"editdesk-backend/internal/models"
)

// ErrStale is returned by DataStore.UpdateProject when the row no longer
// matches the change's expected status and editor.
var ErrStale = errors.New("project changed since it was read")

// DataStore is the capability the Layer runs its rules over. Implementations
// perform no authorization of their own beyond what the backend enforces and
// report failures as *apperr.Error values.
type DataStore interface {
	Name() string

	// SignUp returns a nil session when the identity must confirm its email first.
	SignUp(ctx context.Context, email, password string, meta models.SignUpMetadata, redirectURL string) (*models.Session, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context, s models.Session) error
	ResendConfirmation(ctx context.Context, email, redirectURL string) error
	ResetPassword(ctx context.Context, email, redirectURL string) error

	GetProfile(ctx context.Context, s models.Session, id string) (*models.Profile, error)
	InsertProfile(ctx context.Context, s models.Session, p models.Profile) error
	// ListProfiles returns every profile, or only those with role when it is set.
	ListProfiles(ctx context.Context, s models.Session, role models.Role) ([]models.Profile, error)
	UpdateProfile(ctx context.Context, s models.Session, id string, patch models.ProfilePatch) (*models.Profile, error)
	UpdateRole(ctx context.Context, s models.Session, id string, role models.Role) (*models.Profile, error)

	// ListProjects returns everything the backend lets the session read,
	// newest first, with client and editor names attached.
	ListProjects(ctx context.Context, s models.Session) ([]models.Project, error)
	GetProject(ctx context.Context, s models.Session, id string) (*models.Project, error)
	InsertProject(ctx context.Context, s models.Session, p models.Project) (*models.Project, error)
	// UpdateProject writes change only if the row still holds change.ExpectStatus
	// and change.ExpectEditorID, returning ErrStale otherwise.
	UpdateProject(ctx context.Context, s models.Session, id string, change models.ProjectChange) (*models.Project, error)

	ListFiles(ctx context.Context, s models.Session, projectID string) ([]models.ProjectFile, error)
	InsertFile(ctx context.Context, s models.Session, f models.ProjectFile) (*models.ProjectFile, error)
	PutObject(ctx context.Context, s models.Session, path, contentType string, data []byte) error
	SignURL(ctx context.Context, s models.Session, path string, ttl time.Duration) (string, error)

	// ListComments returns comments oldest first, with author names attached.
	ListComments(ctx context.Context, s models.Session, projectID string) ([]models.Comment, error)
	InsertComment(ctx context.Context, s models.Session, c models.Comment) (*models.Comment, error)
}
