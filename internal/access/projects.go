package access

import (
	"context"
	"errors"
	"strings"

	"editdesk-backend/internal/apperr"
	"editdesk-backend/internal/metrics"
	"editdesk-backend/internal/models"
	"editdesk-backend/internal/policy"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CreateProject files a new edit request owned by the calling client.
func (l *Layer) CreateProject(ctx context.Context, s models.Session, req models.CreateProjectRequest) (p *models.Project, err error) {
	defer l.observe("create_project", &err)

	c, err := l.caller(ctx, s)
	if err != nil {
		return nil, err
	}
	if err := l.requireRole(c, models.RoleClient); err != nil {
		return nil, err
	}

	project, verr := buildProject(req)
	if verr != nil {
		return nil, verr
	}
	project.ID = uuid.New().String()
	project.ClientID = c.ID
	project.Status = models.StatusNew

	created, err := l.store.InsertProject(ctx, s, project)
	if err != nil {
		return nil, err
	}
	created.Normalize()

	l.logger.Info("project created", zap.String("project_id", created.ID), zap.String("client_id", c.ID))
	return created, nil
}

func buildProject(req models.CreateProjectRequest) (models.Project, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return models.Project{}, apperr.Invalidf("title is required")
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}
	if !priority.Valid() {
		return models.Project{}, apperr.Invalidf("unknown priority %q", req.Priority)
	}
	if req.DueDate.IsZero() {
		return models.Project{}, apperr.Invalidf("due date is required")
	}
	if req.DesiredDurationSeconds != nil && *req.DesiredDurationSeconds <= 0 {
		return models.Project{}, apperr.Invalidf("desired duration must be positive")
	}

	links := make([]string, 0, len(req.ReferenceLinks))
	for _, raw := range req.ReferenceLinks {
		link := strings.TrimSpace(raw)
		if link == "" {
			continue
		}
		if err := validateLink(link); err != nil {
			return models.Project{}, err
		}
		links = append(links, link)
	}

	var notes *string
	if req.NotesForEditor != nil && strings.TrimSpace(*req.NotesForEditor) != "" {
		n := strings.TrimSpace(*req.NotesForEditor)
		notes = &n
	}

	return models.Project{
		Title:                  title,
		Description:            strings.TrimSpace(req.Description),
		EditingStyle:           strings.TrimSpace(req.EditingStyle),
		Platforms:              platformSet(req.Platforms),
		AspectRatio:            strings.TrimSpace(req.AspectRatio),
		DesiredDurationSeconds: req.DesiredDurationSeconds,
		Priority:               priority,
		DueDate:                req.DueDate.UTC(),
		ReferenceLinks:         links,
		NotesForEditor:         notes,
	}, nil
}

// platformSet drops blanks and duplicates, keeping first-seen order.
func platformSet(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// ListProjects fetches what the store returns and filters it by role, whether
// or not the backend already did.
func (l *Layer) ListProjects(ctx context.Context, s models.Session) (out []models.Project, err error) {
	defer l.observe("list_projects", &err)

	c, err := l.caller(ctx, s)
	if err != nil {
		return nil, err
	}
	all, err := l.store.ListProjects(ctx, s)
	if err != nil {
		return nil, err
	}
	for i := range all {
		all[i].Normalize()
	}
	return policy.VisibleProjects(all, c.Role, c.ID), nil
}

func (l *Layer) GetProject(ctx context.Context, s models.Session, id string) (p *models.Project, err error) {
	defer l.observe("get_project", &err)

	c, err := l.caller(ctx, s)
	if err != nil {
		return nil, err
	}
	return l.visibleProject(ctx, s, c, id)
}

func (l *Layer) loadProject(ctx context.Context, s models.Session, id string) (*models.Project, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Invalidf("project id is required")
	}
	p, err := l.store.GetProject(ctx, s, id)
	if err != nil {
		return nil, err
	}
	p.Normalize()
	return p, nil
}

// visibleProject loads a project and hides it unless c may see it.
func (l *Layer) visibleProject(ctx context.Context, s models.Session, c *caller, id string) (*models.Project, error) {
	p, err := l.loadProject(ctx, s, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(p, c.Role, c.ID) {
		return nil, apperr.New(apperr.NotFound, "project not found")
	}
	return p, nil
}

// GetProjectDetail loads the project, then its files, comments and (for
// admins) the editor roster concurrently.
func (l *Layer) GetProjectDetail(ctx context.Context, s models.Session, id string) (d *models.ProjectDetail, err error) {
	defer l.observe("get_project_detail", &err)

	c, err := l.caller(ctx, s)
	if err != nil {
		return nil, err
	}
	p, err := l.visibleProject(ctx, s, c, id)
	if err != nil {
		return nil, err
	}

	detail := &models.ProjectDetail{Project: *p}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		files, err := l.signedFiles(gctx, s, p.ID)
		if err != nil {
			return err
		}
		detail.Files = files
		return nil
	})
	g.Go(func() error {
		comments, err := l.visibleComments(gctx, s, c, p.ID)
		if err != nil {
			return err
		}
		detail.Comments = comments
		return nil
	})
	if c.Role == models.RoleAdmin {
		g.Go(func() error {
			editors, err := l.store.ListProfiles(gctx, s, models.RoleEditor)
			if err != nil {
				return err
			}
			detail.Editors = editors
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return detail, nil
}

// ClaimProject assigns an unclaimed project to the calling editor.
func (l *Layer) ClaimProject(ctx context.Context, s models.Session, id string) (p *models.Project, err error) {
	defer l.observe("claim_project", &err)

	c, err := l.caller(ctx, s)
	if err != nil {
		return nil, err
	}
	return l.transition(ctx, s, c, id, func(p *models.Project) (models.ProjectChange, error) {
		return l.enforcer.PlanClaim(c.Actor, p)
	})
}

// UpdateStatus moves a project to status to if the transition table allows it.
func (l *Layer) UpdateStatus(ctx context.Context, s models.Session, id string, to models.ProjectStatus) (p *models.Project, err error) {
	defer l.observe("update_status", &err)

	c, err := l.caller(ctx, s)
	if err != nil {
		return nil, err
	}
	return l.transition(ctx, s, c, id, func(p *models.Project) (models.ProjectChange, error) {
		return l.enforcer.PlanStatus(c.Actor, p, to)
	})
}

// transition plans a change against the current row and writes it with a
// compare-and-set. If another writer got there first the row is re-read and
// the change re-planned once, so a losing claimer sees the new editor and is
// denied instead of overwriting it. A project that exists but is outside
// the caller's view is refused with AuthorizationDenied, not hidden.
func (l *Layer) transition(ctx context.Context, s models.Session, c *caller, id string, plan func(*models.Project) (models.ProjectChange, error)) (*models.Project, error) {
	p, err := l.loadProject(ctx, s, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(p, c.Role, c.ID) {
		return nil, apperr.Denied("you are not allowed to change this project")
	}

	for attempt := 0; ; attempt++ {
		change, err := plan(p)
		if err != nil {
			return nil, err
		}

		updated, err := l.store.UpdateProject(ctx, s, p.ID, change)
		if err == nil {
			updated.Normalize()
			metrics.ObserveTransition(string(change.ExpectStatus), string(change.Status))
			l.logger.Info("project updated",
				zap.String("project_id", p.ID),
				zap.String("actor_id", c.ID),
				zap.String("from", string(change.ExpectStatus)),
				zap.String("to", string(change.Status)),
			)
			return updated, nil
		}
		if !errors.Is(err, ErrStale) {
			return nil, err
		}
		if attempt > 0 {
			return nil, apperr.Wrap(apperr.Conflict, "project is being changed by someone else, try again", err)
		}

		l.logger.Debug("project changed concurrently, re-planning", zap.String("project_id", p.ID))
		p, err = l.loadProject(ctx, s, id)
		if (err == nil && !policy.CanView(p, c.Role, c.ID)) || apperr.Is(err, apperr.NotFound) {
			return nil, apperr.Denied("project was claimed or reassigned by someone else")
		}
		if err != nil {
			return nil, err
		}
	}
}
