package supabase

import (
	"context"
	"time"

	"editdesk-backend/internal/access"
	"editdesk-backend/internal/apperr"
	"editdesk-backend/internal/models"
	postgrest "github.com/supabase-community/postgrest-go"
)

const (
	projectColumns = "*,client:profiles!projects_client_id_fkey(full_name),editor:profiles!projects_editor_id_fkey(full_name)"
	commentColumns = "*,author:profiles!comments_author_id_fkey(full_name)"
)

type nameRef struct {
	FullName string `json:"full_name"`
}

type projectRow struct {
	models.Project
	Client *nameRef `json:"client"`
	Editor *nameRef `json:"editor"`
}

func (r projectRow) flatten() models.Project {
	p := r.Project
	if r.Client != nil {
		p.ClientName = r.Client.FullName
	}
	if r.Editor != nil {
		p.EditorName = r.Editor.FullName
	}
	if p.Platforms == nil {
		p.Platforms = []string{}
	}
	if p.ReferenceLinks == nil {
		p.ReferenceLinks = []string{}
	}
	return p
}

type commentRow struct {
	models.Comment
	Author *nameRef `json:"author"`
}

// Insert payloads list only writable columns so database defaults apply.
type profileInsert struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	FullName  string      `json:"full_name"`
	Role      models.Role `json:"role"`
	AvatarURL *string     `json:"avatar_url,omitempty"`
}

type projectInsert struct {
	ID                     string               `json:"id"`
	ClientID               string               `json:"client_id"`
	EditorID               *string              `json:"editor_id"`
	Title                  string               `json:"title"`
	Description            string               `json:"description"`
	EditingStyle           string               `json:"editing_style"`
	Platforms              []string             `json:"platforms"`
	AspectRatio            string               `json:"aspect_ratio"`
	DesiredDurationSeconds *int                 `json:"desired_duration_seconds"`
	Status                 models.ProjectStatus `json:"status"`
	Priority               models.Priority      `json:"priority"`
	DueDate                time.Time            `json:"due_date"`
	ReferenceLinks         []string             `json:"reference_links"`
	NotesForEditor         *string              `json:"notes_for_editor"`
}

type fileInsert struct {
	ID            string          `json:"id"`
	ProjectID     string          `json:"project_id"`
	UploadedBy    string          `json:"uploaded_by"`
	FileType      models.FileType `json:"file_type"`
	FileName      string          `json:"file_name"`
	FileSizeBytes int64           `json:"file_size_bytes"`
	MimeType      string          `json:"mime_type"`
	StoragePath   string          `json:"storage_path"`
}

type commentInsert struct {
	ID         string `json:"id"`
	ProjectID  string `json:"project_id"`
	AuthorID   string `json:"author_id"`
	Body       string `json:"body"`
	IsInternal bool   `json:"is_internal"`
}

func (s *Store) GetProfile(ctx context.Context, sess models.Session, id string) (*models.Profile, error) {
	var rows []models.Profile
	err := exec(ctx, s.timeout, func() error {
		_, err := s.rest(sess).From("profiles").Select("*", "", false).Eq("id", id).ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, s.fail(err, "failed to load profile")
	}
	if len(rows) == 0 {
		return nil, apperr.New(apperr.NotFound, "profile not found")
	}
	return &rows[0], nil
}

func (s *Store) InsertProfile(ctx context.Context, sess models.Session, p models.Profile) error {
	row := profileInsert{ID: p.ID, Email: p.Email, FullName: p.FullName, Role: p.Role, AvatarURL: p.AvatarURL}
	err := exec(ctx, s.timeout, func() error {
		_, _, err := s.rest(sess).From("profiles").Insert(row, false, "", "minimal", "").Execute()
		return err
	})
	if err != nil {
		return s.fail(err, "failed to create profile")
	}
	return nil
}

func (s *Store) ListProfiles(ctx context.Context, sess models.Session, role models.Role) ([]models.Profile, error) {
	rows := []models.Profile{}
	err := exec(ctx, s.timeout, func() error {
		q := s.rest(sess).From("profiles").Select("*", "", false)
		if role != "" {
			q = q.Eq("role", string(role))
		}
		_, err := q.Order("full_name", &postgrest.OrderOpts{Ascending: true}).ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, s.fail(err, "failed to list profiles")
	}
	return rows, nil
}

func (s *Store) UpdateProfile(ctx context.Context, sess models.Session, id string, patch models.ProfilePatch) (*models.Profile, error) {
	values := map[string]interface{}{}
	if patch.FullName != nil {
		values["full_name"] = *patch.FullName
	}
	if patch.AvatarURL != nil {
		if *patch.AvatarURL == "" {
			values["avatar_url"] = nil
		} else {
			values["avatar_url"] = *patch.AvatarURL
		}
	}
	return s.updateProfile(ctx, sess, id, values)
}

func (s *Store) UpdateRole(ctx context.Context, sess models.Session, id string, role models.Role) (*models.Profile, error) {
	return s.updateProfile(ctx, sess, id, map[string]interface{}{"role": string(role)})
}

func (s *Store) updateProfile(ctx context.Context, sess models.Session, id string, values map[string]interface{}) (*models.Profile, error) {
	var rows []models.Profile
	err := exec(ctx, s.timeout, func() error {
		_, err := s.rest(sess).From("profiles").Update(values, "representation", "").Eq("id", id).ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, s.fail(err, "failed to update profile")
	}
	if len(rows) == 0 {
		return nil, apperr.New(apperr.NotFound, "profile not found")
	}
	return &rows[0], nil
}

func (s *Store) ListProjects(ctx context.Context, sess models.Session) ([]models.Project, error) {
	var rows []projectRow
	err := exec(ctx, s.timeout, func() error {
		_, err := s.rest(sess).From("projects").Select(projectColumns, "", false).
			Order("created_at", &postgrest.OrderOpts{Ascending: false}).
			ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, s.fail(err, "failed to list projects")
	}
	out := make([]models.Project, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.flatten())
	}
	return out, nil
}

func (s *Store) GetProject(ctx context.Context, sess models.Session, id string) (*models.Project, error) {
	var rows []projectRow
	err := exec(ctx, s.timeout, func() error {
		_, err := s.rest(sess).From("projects").Select(projectColumns, "", false).Eq("id", id).ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, s.fail(err, "failed to load project")
	}
	if len(rows) == 0 {
		return nil, apperr.New(apperr.NotFound, "project not found")
	}
	p := rows[0].flatten()
	return &p, nil
}

func (s *Store) InsertProject(ctx context.Context, sess models.Session, p models.Project) (*models.Project, error) {
	row := projectInsert{
		ID:                     p.ID,
		ClientID:               p.ClientID,
		EditorID:               p.EditorID,
		Title:                  p.Title,
		Description:            p.Description,
		EditingStyle:           p.EditingStyle,
		Platforms:              p.Platforms,
		AspectRatio:            p.AspectRatio,
		DesiredDurationSeconds: p.DesiredDurationSeconds,
		Status:                 p.Status,
		Priority:               p.Priority,
		DueDate:                p.DueDate,
		ReferenceLinks:         p.ReferenceLinks,
		NotesForEditor:         p.NotesForEditor,
	}
	err := exec(ctx, s.timeout, func() error {
		_, _, err := s.rest(sess).From("projects").Insert(row, false, "", "minimal", "").Execute()
		return err
	})
	if err != nil {
		return nil, s.fail(err, "failed to create project")
	}
	return s.GetProject(ctx, sess, p.ID)
}

// UpdateProject filters the PATCH on the expected status and editor, so an
// empty result means another writer changed the row first.
func (s *Store) UpdateProject(ctx context.Context, sess models.Session, id string, change models.ProjectChange) (*models.Project, error) {
	values := map[string]interface{}{
		"status":    string(change.Status),
		"editor_id": change.EditorID,
	}

	var rows []models.Project
	err := exec(ctx, s.timeout, func() error {
		q := s.rest(sess).From("projects").Update(values, "representation", "").Eq("id", id)
		if change.ExpectStatus == models.StatusAwaitingAssignment && change.ExpectEditorID == nil {
			// in_progress with no editor is read back as awaiting_assignment
			q = q.In("status", []string{string(models.StatusAwaitingAssignment), string(models.StatusInProgress)})
		} else {
			q = q.Eq("status", string(change.ExpectStatus))
		}
		if change.ExpectEditorID == nil {
			q = q.Is("editor_id", "null")
		} else {
			q = q.Eq("editor_id", *change.ExpectEditorID)
		}
		_, err := q.ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, s.fail(err, "failed to update project")
	}
	if len(rows) == 0 {
		return nil, access.ErrStale
	}
	return s.GetProject(ctx, sess, id)
}

func (s *Store) ListFiles(ctx context.Context, sess models.Session, projectID string) ([]models.ProjectFile, error) {
	rows := []models.ProjectFile{}
	err := exec(ctx, s.timeout, func() error {
		_, err := s.rest(sess).From("project_files").Select("*", "", false).
			Eq("project_id", projectID).
			Order("created_at", &postgrest.OrderOpts{Ascending: false}).
			ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, s.fail(err, "failed to list files")
	}
	return rows, nil
}

func (s *Store) InsertFile(ctx context.Context, sess models.Session, f models.ProjectFile) (*models.ProjectFile, error) {
	row := fileInsert{
		ID:            f.ID,
		ProjectID:     f.ProjectID,
		UploadedBy:    f.UploadedBy,
		FileType:      f.FileType,
		FileName:      f.FileName,
		FileSizeBytes: f.FileSizeBytes,
		MimeType:      f.MimeType,
		StoragePath:   f.StoragePath,
	}
	var rows []models.ProjectFile
	err := exec(ctx, s.timeout, func() error {
		_, err := s.rest(sess).From("project_files").Insert(row, false, "", "representation", "").ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, s.fail(err, "failed to record file")
	}
	if len(rows) == 0 {
		return &f, nil
	}
	return &rows[0], nil
}

func (s *Store) ListComments(ctx context.Context, sess models.Session, projectID string) ([]models.Comment, error) {
	var rows []commentRow
	err := exec(ctx, s.timeout, func() error {
		_, err := s.rest(sess).From("comments").Select(commentColumns, "", false).
			Eq("project_id", projectID).
			Order("created_at", &postgrest.OrderOpts{Ascending: true}).
			ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, s.fail(err, "failed to list comments")
	}
	out := make([]models.Comment, 0, len(rows))
	for _, r := range rows {
		c := r.Comment
		if r.Author != nil {
			c.AuthorName = r.Author.FullName
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) InsertComment(ctx context.Context, sess models.Session, c models.Comment) (*models.Comment, error) {
	row := commentInsert{
		ID:         c.ID,
		ProjectID:  c.ProjectID,
		AuthorID:   c.AuthorID,
		Body:       c.Body,
		IsInternal: c.IsInternal,
	}
	var rows []models.Comment
	err := exec(ctx, s.timeout, func() error {
		_, err := s.rest(sess).From("comments").Insert(row, false, "", "representation", "").ExecuteTo(&rows)
		return err
	})
	if err != nil {
		return nil, s.fail(err, "failed to add comment")
	}
	if len(rows) == 0 {
		return &c, nil
	}
	return &rows[0], nil
}
