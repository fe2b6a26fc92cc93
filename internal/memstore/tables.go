package memstore

import (
	"context"
	"sort"

	"editdesk-backend/internal/access"
	"editdesk-backend/internal/apperr"
	"editdesk-backend/internal/models"
)

func (s *Store) GetProfile(ctx context.Context, sess models.Session, id string) (*models.Profile, error) {
	if _, err := s.verify(sess); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "profile not found")
	}
	return &p, nil
}

// InsertProfile only lets an identity create its own row.
func (s *Store) InsertProfile(ctx context.Context, sess models.Session, p models.Profile) error {
	claims, err := s.verify(sess)
	if err != nil {
		return err
	}
	if claims.Subject != p.ID {
		return apperr.Denied("profiles can only be created for yourself")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.insertProfileLocked(p) {
		return apperr.New(apperr.Conflict, "profile already exists")
	}
	return nil
}

func (s *Store) insertProfileLocked(p models.Profile) bool {
	if _, ok := s.profiles[p.ID]; ok {
		return false
	}
	now := s.stamp()
	p.CreatedAt, p.UpdatedAt = now, now
	s.profiles[p.ID] = p
	return true
}

func (s *Store) ListProfiles(ctx context.Context, sess models.Session, role models.Role) ([]models.Profile, error) {
	if _, err := s.verify(sess); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		if role == "" || p.Role == role {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateProfile(ctx context.Context, sess models.Session, id string, patch models.ProfilePatch) (*models.Profile, error) {
	if _, err := s.verify(sess); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "profile not found")
	}
	if patch.FullName != nil {
		p.FullName = *patch.FullName
	}
	if patch.AvatarURL != nil {
		if *patch.AvatarURL == "" {
			p.AvatarURL = nil
		} else {
			v := *patch.AvatarURL
			p.AvatarURL = &v
		}
	}
	p.UpdatedAt = s.stamp()
	s.profiles[id] = p
	return &p, nil
}

func (s *Store) UpdateRole(ctx context.Context, sess models.Session, id string, role models.Role) (*models.Profile, error) {
	if _, err := s.verify(sess); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "profile not found")
	}
	p.Role = role
	p.UpdatedAt = s.stamp()
	s.profiles[id] = p
	return &p, nil
}

func (s *Store) ListProjects(ctx context.Context, sess models.Session) ([]models.Project, error) {
	if _, err := s.verify(sess); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, s.viewLocked(p))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetProject(ctx context.Context, sess models.Session, id string) (*models.Project, error) {
	if _, err := s.verify(sess); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "project not found")
	}
	v := s.viewLocked(p)
	return &v, nil
}

func (s *Store) InsertProject(ctx context.Context, sess models.Session, p models.Project) (*models.Project, error) {
	if _, err := s.verify(sess); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[p.ID]; ok {
		return nil, apperr.New(apperr.Conflict, "project already exists")
	}
	if _, ok := s.profiles[p.ClientID]; !ok {
		return nil, apperr.New(apperr.Invalid, "project client has no profile")
	}
	now := s.stamp()
	p.CreatedAt, p.UpdatedAt = now, now
	p.ClientName, p.EditorName = "", ""
	p = cloneProject(p)
	s.projects[p.ID] = p

	v := s.viewLocked(p)
	return &v, nil
}

func (s *Store) UpdateProject(ctx context.Context, sess models.Session, id string, change models.ProjectChange) (*models.Project, error) {
	if _, err := s.verify(sess); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "project not found")
	}
	// Reads normalize in_progress-without-editor to awaiting_assignment, so
	// accept either as the expected status for such a row.
	status := p.Status
	if status == models.StatusInProgress && !p.HasEditor() && change.ExpectStatus == models.StatusAwaitingAssignment {
		status = models.StatusAwaitingAssignment
	}
	if status != change.ExpectStatus || !sameEditor(p.EditorID, change.ExpectEditorID) {
		return nil, access.ErrStale
	}

	p.Status = change.Status
	p.EditorID = copyString(change.EditorID)
	p.UpdatedAt = s.stamp()
	s.projects[id] = p

	v := s.viewLocked(p)
	return &v, nil
}

func (s *Store) ListFiles(ctx context.Context, sess models.Session, projectID string) ([]models.ProjectFile, error) {
	if _, err := s.verify(sess); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ProjectFile, 0)
	for _, f := range s.files {
		if f.ProjectID == projectID {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) InsertFile(ctx context.Context, sess models.Session, f models.ProjectFile) (*models.ProjectFile, error) {
	if _, err := s.verify(sess); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[f.ProjectID]; !ok {
		return nil, apperr.New(apperr.NotFound, "project not found")
	}
	f.CreatedAt = s.stamp()
	f.URL = ""
	s.files = append(s.files, f)
	return &f, nil
}

func (s *Store) ListComments(ctx context.Context, sess models.Session, projectID string) ([]models.Comment, error) {
	if _, err := s.verify(sess); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Comment, 0)
	for _, c := range s.comments {
		if c.ProjectID == projectID {
			c.AuthorName = s.profiles[c.AuthorID].FullName
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) InsertComment(ctx context.Context, sess models.Session, c models.Comment) (*models.Comment, error) {
	if _, err := s.verify(sess); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[c.ProjectID]; !ok {
		return nil, apperr.New(apperr.NotFound, "project not found")
	}
	c.CreatedAt = s.stamp()
	c.AuthorName = ""
	s.comments = append(s.comments, c)

	c.AuthorName = s.profiles[c.AuthorID].FullName
	return &c, nil
}

// viewLocked returns a copy of p with the joined profile names attached.
func (s *Store) viewLocked(p models.Project) models.Project {
	v := cloneProject(p)
	v.ClientName = s.profiles[p.ClientID].FullName
	if p.EditorID != nil {
		v.EditorName = s.profiles[*p.EditorID].FullName
	}
	return v
}

func cloneProject(p models.Project) models.Project {
	p.Platforms = cloneStrings(p.Platforms)
	p.ReferenceLinks = cloneStrings(p.ReferenceLinks)
	p.EditorID = copyString(p.EditorID)
	p.NotesForEditor = copyString(p.NotesForEditor)
	if p.DesiredDurationSeconds != nil {
		d := *p.DesiredDurationSeconds
		p.DesiredDurationSeconds = &d
	}
	return p
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyString(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	c := *v
	return &c
}

func sameEditor(a, b *string) bool {
	a, b = copyString(a), copyString(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
