package access

import (
	"context"
	"strings"

	"editdesk-backend/internal/apperr"
	"editdesk-backend/internal/models"
	"editdesk-backend/internal/policy"
	"go.uber.org/zap"
)

func (l *Layer) ListProfiles(ctx context.Context, s models.Session) (profiles []models.Profile, err error) {
	defer l.observe("list_profiles", &err)

	c, err := l.caller(ctx, s)
	if err != nil {
		return nil, err
	}
	if err := l.requireRole(c, models.RoleAdmin); err != nil {
		return nil, err
	}
	return l.store.ListProfiles(ctx, s, "")
}

// ListEditors is the assignment roster, readable by admins and editors.
func (l *Layer) ListEditors(ctx context.Context, s models.Session) (profiles []models.Profile, err error) {
	defer l.observe("list_editors", &err)

	c, err := l.caller(ctx, s)
	if err != nil {
		return nil, err
	}
	if err := l.requireRole(c, models.RoleAdmin, models.RoleEditor); err != nil {
		return nil, err
	}
	return l.store.ListProfiles(ctx, s, models.RoleEditor)
}

func (l *Layer) UpdateRole(ctx context.Context, s models.Session, userID string, role models.Role) (p *models.Profile, err error) {
	defer l.observe("update_role", &err)

	c, err := l.caller(ctx, s)
	if err != nil {
		return nil, err
	}
	if err := l.requireRole(c, models.RoleAdmin); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperr.Invalidf("unknown role %q", role)
	}
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Invalidf("user id is required")
	}
	if userID == c.ID {
		return nil, apperr.Denied("admins cannot change their own role")
	}
	if role == models.RoleClient {
		if err := l.checkNoActiveWork(ctx, s, userID); err != nil {
			return nil, err
		}
	}

	updated, err := l.store.UpdateRole(ctx, s, userID, role)
	if err != nil {
		return nil, err
	}
	l.logger.Info("role changed", zap.String("user_id", userID), zap.String("role", string(role)), zap.String("admin_id", c.ID))
	return updated, nil
}

// checkNoActiveWork refuses to turn an editor into a client while they are
// still assigned to open projects; they would lose sight of them.
func (l *Layer) checkNoActiveWork(ctx context.Context, s models.Session, userID string) error {
	target, err := l.store.GetProfile(ctx, s, userID)
	if err != nil {
		return err
	}
	if target.Role != models.RoleEditor {
		return nil
	}
	projects, err := l.store.ListProjects(ctx, s)
	if err != nil {
		return err
	}
	active := 0
	for i := range projects {
		p := &projects[i]
		p.Normalize()
		if p.EditorID != nil && *p.EditorID == userID && !p.Status.Terminal() {
			active++
		}
	}
	if active > 0 {
		return apperr.Denied("editor is still assigned to %d open project(s); reassign or close them first", active)
	}
	return nil
}

// AssignEditor sets or replaces a project's editor.
func (l *Layer) AssignEditor(ctx context.Context, s models.Session, projectID, editorID string) (p *models.Project, err error) {
	defer l.observe("assign_editor", &err)

	c, err := l.caller(ctx, s)
	if err != nil {
		return nil, err
	}
	if err := l.requireRole(c, models.RoleAdmin); err != nil {
		return nil, err
	}
	if strings.TrimSpace(editorID) == "" {
		return nil, apperr.Invalidf("editor id is required")
	}

	editor, err := l.store.GetProfile(ctx, s, editorID)
	if apperr.Is(err, apperr.NotFound) {
		return nil, apperr.Invalidf("no user with id %s", editorID)
	}
	if err != nil {
		return nil, err
	}
	if editor.Role != models.RoleEditor {
		return nil, apperr.Invalidf("%s is not an editor", editor.FullName)
	}

	updated, err := l.transition(ctx, s, c, projectID, func(p *models.Project) (models.ProjectChange, error) {
		return l.enforcer.PlanAssign(c.Actor, p, editor.ID)
	})
	if err != nil {
		return nil, err
	}
	if updated.EditorName == "" {
		updated.EditorName = editor.FullName
	}
	return updated, nil
}

// UnassignEditor clears the editor and returns the project to the pool.
func (l *Layer) UnassignEditor(ctx context.Context, s models.Session, projectID string) (p *models.Project, err error) {
	defer l.observe("unassign_editor", &err)

	c, err := l.caller(ctx, s)
	if err != nil {
		return nil, err
	}
	if err := l.requireRole(c, models.RoleAdmin); err != nil {
		return nil, err
	}
	return l.transition(ctx, s, c, projectID, func(p *models.Project) (models.ProjectChange, error) {
		return l.enforcer.PlanUnassign(c.Actor, p)
	})
}

// Stats recomputes the dashboard counters from the full project list.
func (l *Layer) Stats(ctx context.Context, s models.Session) (stats *models.AdminStats, err error) {
	defer l.observe("admin_stats", &err)

	c, err := l.caller(ctx, s)
	if err != nil {
		return nil, err
	}
	if err := l.requireRole(c, models.RoleAdmin); err != nil {
		return nil, err
	}
	all, err := l.store.ListProjects(ctx, s)
	if err != nil {
		return nil, err
	}
	for i := range all {
		all[i].Normalize()
	}
	result := policy.ComputeStats(all)
	return &result, nil
}
