package policy_test

import (
	"testing"

	"editdesk-backend/internal/apperr"
	"editdesk-backend/internal/models"
	"editdesk-backend/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin   = policy.Actor{ID: "admin-1", Role: models.RoleAdmin}
	client  = policy.Actor{ID: "client-1", Role: models.RoleClient}
	other   = policy.Actor{ID: "client-2", Role: models.RoleClient}
	editor  = policy.Actor{ID: "editor-1", Role: models.RoleEditor}
	editor2 = policy.Actor{ID: "editor-2", Role: models.RoleEditor}
)

func newEnforcer(t *testing.T) *policy.Enforcer {
	t.Helper()
	e, err := policy.NewEnforcer(nil)
	require.NoError(t, err)
	return e
}

func project(status models.ProjectStatus, editorID string) *models.Project {
	p := &models.Project{ID: "p1", ClientID: client.ID, Status: status}
	if editorID != "" {
		p.EditorID = strPtr(editorID)
	}
	return p
}

func TestPlanStatus_TableRows(t *testing.T) {
	e := newEnforcer(t)

	cases := []struct {
		name  string
		actor policy.Actor
		p     *models.Project
		to    models.ProjectStatus
	}{
		{"editor submits for review", editor, project(models.StatusInProgress, editor.ID), models.StatusAwaitingClientReview},
		{"client requests revision", client, project(models.StatusAwaitingClientReview, editor.ID), models.StatusRevisionRequested},
		{"client approves", client, project(models.StatusAwaitingClientReview, editor.ID), models.StatusApproved},
		{"editor resumes", editor, project(models.StatusRevisionRequested, editor.ID), models.StatusInProgress},
		{"admin holds", admin, project(models.StatusInProgress, editor.ID), models.StatusOnHold},
		{"admin cancels new", admin, project(models.StatusNew, ""), models.StatusCancelled},
		{"admin cancels on hold", admin, project(models.StatusOnHold, ""), models.StatusCancelled},
		{"admin releases hold", admin, project(models.StatusOnHold, editor.ID), models.StatusInProgress},
		{"admin resumes hold into review", admin, project(models.StatusOnHold, editor.ID), models.StatusAwaitingClientReview},
		{"admin delivers for the editor", admin, project(models.StatusInProgress, editor.ID), models.StatusAwaitingClientReview},
		{"admin relays a revision request", admin, project(models.StatusAwaitingClientReview, editor.ID), models.StatusRevisionRequested},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ch, err := e.PlanStatus(tc.actor, tc.p, tc.to)
			require.NoError(t, err)
			assert.Equal(t, tc.to, ch.Status)
			assert.Equal(t, tc.p.Status, ch.ExpectStatus)
			assert.Equal(t, tc.p.EditorID, ch.EditorID)
		})
	}
}

func TestPlanStatus_RejectsTransitionsOutsideTable(t *testing.T) {
	e := newEnforcer(t)

	cases := []struct {
		name  string
		actor policy.Actor
		p     *models.Project
		to    models.ProjectStatus
	}{
		{"client new to approved", client, project(models.StatusNew, ""), models.StatusApproved},
		{"other client approves", other, project(models.StatusAwaitingClientReview, editor.ID), models.StatusApproved},
		{"unassigned editor submits", editor2, project(models.StatusInProgress, editor.ID), models.StatusAwaitingClientReview},
		{"editor approves own work", editor, project(models.StatusAwaitingClientReview, editor.ID), models.StatusApproved},
		{"client cancels", client, project(models.StatusNew, ""), models.StatusCancelled},
		{"editor holds", editor, project(models.StatusInProgress, editor.ID), models.StatusOnHold},
		{"admin leaves approved", admin, project(models.StatusApproved, editor.ID), models.StatusInProgress},
		{"admin leaves cancelled", admin, project(models.StatusCancelled, ""), models.StatusNew},
		{"admin approves for client", admin, project(models.StatusAwaitingClientReview, editor.ID), models.StatusApproved},
		{"admin in_progress without editor", admin, project(models.StatusNew, ""), models.StatusInProgress},
		{"admin back to pool with editor", admin, project(models.StatusOnHold, editor.ID), models.StatusAwaitingAssignment},
		{"editor status claim bypass", editor, project(models.StatusNew, ""), models.StatusInProgress},
		{"unknown role", policy.Actor{ID: "x", Role: "guest"}, project(models.StatusNew, ""), models.StatusAwaitingAssignment},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.PlanStatus(tc.actor, tc.p, tc.to)
			require.Error(t, err)
			assert.Equal(t, apperr.AuthorizationDenied, apperr.KindOf(err))
		})
	}
}

func TestPlanStatus_UnknownStatus(t *testing.T) {
	e := newEnforcer(t)
	_, err := e.PlanStatus(admin, project(models.StatusNew, ""), "done")
	assert.Equal(t, apperr.Invalid, apperr.KindOf(err))
}

func TestPlanClaim(t *testing.T) {
	e := newEnforcer(t)

	ch, err := e.PlanClaim(editor, project(models.StatusNew, ""))
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, ch.Status)
	require.NotNil(t, ch.EditorID)
	assert.Equal(t, editor.ID, *ch.EditorID)
	assert.Nil(t, ch.ExpectEditorID)

	ch, err = e.PlanClaim(editor, project(models.StatusAwaitingAssignment, ""))
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingAssignment, ch.ExpectStatus)

	_, err = e.PlanClaim(editor2, project(models.StatusInProgress, editor.ID))
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied))

	_, err = e.PlanClaim(editor, project(models.StatusOnHold, ""))
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied))

	_, err = e.PlanClaim(client, project(models.StatusNew, ""))
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied))
}

func TestPlanAssign(t *testing.T) {
	e := newEnforcer(t)

	ch, err := e.PlanAssign(admin, project(models.StatusAwaitingAssignment, ""), editor.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, ch.Status)
	assert.Equal(t, editor.ID, *ch.EditorID)

	ch, err = e.PlanAssign(admin, project(models.StatusAwaitingClientReview, editor.ID), editor2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingClientReview, ch.Status)
	assert.Equal(t, editor2.ID, *ch.EditorID)

	_, err = e.PlanAssign(admin, project(models.StatusApproved, editor.ID), editor2.ID)
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied))

	_, err = e.PlanAssign(editor, project(models.StatusNew, ""), editor.ID)
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied))

	_, err = e.PlanAssign(admin, project(models.StatusNew, ""), "")
	assert.True(t, apperr.Is(err, apperr.Invalid))
}

func TestPlanUnassign(t *testing.T) {
	e := newEnforcer(t)

	ch, err := e.PlanUnassign(admin, project(models.StatusInProgress, editor.ID))
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingAssignment, ch.Status)
	assert.Nil(t, ch.EditorID)

	ch, err = e.PlanUnassign(admin, project(models.StatusAwaitingAssignment, ""))
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingAssignment, ch.Status)

	_, err = e.PlanUnassign(admin, project(models.StatusCancelled, editor.ID))
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied))

	_, err = e.PlanUnassign(editor, project(models.StatusInProgress, editor.ID))
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied))
}

func TestRelation(t *testing.T) {
	assert.Equal(t, policy.RelStaff, policy.Relation(admin, project(models.StatusNew, "")))
	assert.Equal(t, policy.RelOwner, policy.Relation(client, project(models.StatusNew, "")))
	assert.Equal(t, policy.RelOutsider, policy.Relation(other, project(models.StatusNew, "")))
	assert.Equal(t, policy.RelUnassigned, policy.Relation(editor, project(models.StatusNew, "")))
	assert.Equal(t, policy.RelAssignee, policy.Relation(editor, project(models.StatusInProgress, editor.ID)))
	assert.Equal(t, policy.RelOutsider, policy.Relation(editor2, project(models.StatusInProgress, editor.ID)))
}
