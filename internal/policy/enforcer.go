package policy

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"editdesk-backend/internal/apperr"
	"editdesk-backend/internal/models"
	"github.com/casbin/casbin/v3"
	"go.uber.org/zap"
)

//go:embed model.conf transitions.csv
var embedFS embed.FS

// Relations between an actor and a project, as used in transitions.csv.
const (
	RelStaff      = "staff"
	RelOwner      = "owner"
	RelAssignee   = "assignee"
	RelUnassigned = "unassigned"
	RelOutsider   = "outsider"
)

type Actor struct {
	ID   string
	Role models.Role
}

// Enforcer decides project status transitions from the embedded transition table.
type Enforcer struct {
	mu     sync.Mutex
	casbin *casbin.Enforcer
	logger *zap.Logger
}

func NewEnforcer(logger *zap.Logger) (*Enforcer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dir, err := os.MkdirTemp("", "editdesk-policy-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create policy dir: %w", err)
	}
	defer os.RemoveAll(dir)

	for _, name := range []string{"model.conf", "transitions.csv"} {
		data, err := embedFS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0600); err != nil {
			return nil, err
		}
	}

	e, err := casbin.NewEnforcer(filepath.Join(dir, "model.conf"), filepath.Join(dir, "transitions.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to load transition policy: %w", err)
	}

	return &Enforcer{casbin: e, logger: logger}, nil
}

// Relation classifies how actor stands to p.
func Relation(actor Actor, p *models.Project) string {
	switch actor.Role {
	case models.RoleAdmin:
		return RelStaff
	case models.RoleClient:
		if p.ClientID == actor.ID {
			return RelOwner
		}
	case models.RoleEditor:
		if p.AssignedTo(actor.ID) {
			return RelAssignee
		}
		if !p.HasEditor() {
			return RelUnassigned
		}
	}
	return RelOutsider
}

// Allowed reports whether the table has a row for actor moving p to status to.
func (e *Enforcer) Allowed(actor Actor, p *models.Project, to models.ProjectStatus) bool {
	if !actor.Role.Valid() || !to.Valid() {
		return false
	}
	rel := Relation(actor, p)

	e.mu.Lock()
	ok, err := e.casbin.Enforce(string(actor.Role), rel, string(p.Status), string(to))
	e.mu.Unlock()
	if err != nil {
		e.logger.Error("transition policy evaluation failed", zap.Error(err))
		return false
	}

	e.logger.Debug("transition check",
		zap.String("role", string(actor.Role)),
		zap.String("relation", rel),
		zap.String("from", string(p.Status)),
		zap.String("to", string(to)),
		zap.Bool("allowed", ok),
	)
	return ok
}

// PlanClaim is an editor taking an unassigned project for themselves.
func (e *Enforcer) PlanClaim(actor Actor, p *models.Project) (models.ProjectChange, error) {
	if actor.Role != models.RoleEditor {
		return models.ProjectChange{}, apperr.Denied("only editors can claim projects")
	}
	if p.HasEditor() {
		return models.ProjectChange{}, apperr.Denied("project is already claimed")
	}
	if !e.Allowed(actor, p, models.StatusInProgress) {
		return models.ProjectChange{}, apperr.Denied("project in status %s cannot be claimed", p.Status)
	}
	editorID := actor.ID
	return change(p, models.StatusInProgress, &editorID), nil
}

// PlanAssign is an admin assigning or reassigning an editor. Unclaimed
// projects move to in_progress; others keep their status.
func (e *Enforcer) PlanAssign(actor Actor, p *models.Project, editorID string) (models.ProjectChange, error) {
	if actor.Role != models.RoleAdmin {
		return models.ProjectChange{}, apperr.Denied("only admins can assign editors")
	}
	if editorID == "" {
		return models.ProjectChange{}, apperr.Invalidf("editor id is required")
	}
	to := p.Status
	if to.Unclaimed() {
		to = models.StatusInProgress
	}
	if !e.Allowed(actor, p, to) {
		return models.ProjectChange{}, apperr.Denied("cannot assign an editor to a project in status %s", p.Status)
	}
	return change(p, to, &editorID), nil
}

// PlanUnassign clears the editor and returns the project to the pool.
func (e *Enforcer) PlanUnassign(actor Actor, p *models.Project) (models.ProjectChange, error) {
	if actor.Role != models.RoleAdmin {
		return models.ProjectChange{}, apperr.Denied("only admins can unassign editors")
	}
	if !e.Allowed(actor, p, models.StatusAwaitingAssignment) {
		return models.ProjectChange{}, apperr.Denied("cannot unassign a project in status %s", p.Status)
	}
	return change(p, models.StatusAwaitingAssignment, nil), nil
}

// PlanStatus is a status move that leaves the editor unchanged.
func (e *Enforcer) PlanStatus(actor Actor, p *models.Project, to models.ProjectStatus) (models.ProjectChange, error) {
	if !to.Valid() {
		return models.ProjectChange{}, apperr.Invalidf("unknown status %q", to)
	}
	if !e.Allowed(actor, p, to) {
		return models.ProjectChange{}, apperr.Denied("%s may not move project from %s to %s", roleName(actor.Role), p.Status, to)
	}
	if to.RequiresEditor() && !p.HasEditor() {
		return models.ProjectChange{}, apperr.Denied("project needs an editor before moving to %s", to)
	}
	if to.Unclaimed() && p.HasEditor() {
		return models.ProjectChange{}, apperr.Denied("unassign the editor before moving to %s", to)
	}
	return change(p, to, p.EditorID), nil
}

func change(p *models.Project, to models.ProjectStatus, editorID *string) models.ProjectChange {
	return models.ProjectChange{
		ExpectStatus:   p.Status,
		ExpectEditorID: p.EditorID,
		Status:         to,
		EditorID:       editorID,
	}
}

func roleName(r models.Role) string {
	if r == "" {
		return "unknown role"
	}
	return string(r)
}
