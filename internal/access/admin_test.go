package access_test

import (
	"testing"

	"editdesk-backend/internal/apperr"
	"editdesk-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmin_RequiresAdmin(t *testing.T) {
	e := newEnv(t)
	client := e.signUp("c@example.com", models.RoleClient)
	editor := e.signUp("e@example.com", models.RoleEditor)
	p := e.createProject(client, "x")

	_, err := e.layer.Stats(e.ctx, editor)
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied))
	_, err = e.layer.ListProfiles(e.ctx, client)
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied))
	_, err = e.layer.UpdateRole(e.ctx, editor, client.User.ID, models.RoleEditor)
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied))
	_, err = e.layer.AssignEditor(e.ctx, client, p.ID, editor.User.ID)
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied))
	_, err = e.layer.ListEditors(e.ctx, client)
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied))

	editors, err := e.layer.ListEditors(e.ctx, editor)
	require.NoError(t, err)
	assert.Len(t, editors, 1)
}

func TestAdmin_AssignReassignUnassign(t *testing.T) {
	e := newEnv(t)
	admin := e.admin()
	client := e.signUp("c@example.com", models.RoleClient)
	ed1 := e.signUp("e1@example.com", models.RoleEditor)
	ed2 := e.signUp("e2@example.com", models.RoleEditor)
	p := e.createProject(client, "assign")

	_, err := e.layer.AssignEditor(e.ctx, admin, p.ID, client.User.ID)
	assert.True(t, apperr.Is(err, apperr.Invalid), "target must be an editor")
	_, err = e.layer.AssignEditor(e.ctx, admin, p.ID, "nobody")
	assert.True(t, apperr.Is(err, apperr.Invalid))

	got, err := e.layer.AssignEditor(e.ctx, admin, p.ID, ed1.User.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.Equal(t, ed1.User.ID, *got.EditorID)

	got, err = e.layer.AssignEditor(e.ctx, admin, p.ID, ed2.User.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.Equal(t, ed2.User.ID, *got.EditorID)

	_, err = e.layer.GetProject(e.ctx, ed1, p.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	got, err = e.layer.UnassignEditor(e.ctx, admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingAssignment, got.Status)
	assert.Nil(t, got.EditorID)

	// back in the pool
	_, err = e.layer.ClaimProject(e.ctx, ed1, p.ID)
	require.NoError(t, err)
}

func TestAdmin_HoldAndCancel(t *testing.T) {
	e := newEnv(t)
	admin := e.admin()
	client := e.signUp("c@example.com", models.RoleClient)
	p := e.createProject(client, "hold")

	got, err := e.layer.UpdateStatus(e.ctx, admin, p.ID, models.StatusOnHold)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnHold, got.Status)

	got, err = e.layer.UpdateStatus(e.ctx, admin, p.ID, models.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)

	_, err = e.layer.UpdateStatus(e.ctx, admin, p.ID, models.StatusNew)
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied))
}

func TestAdmin_UpdateRole(t *testing.T) {
	e := newEnv(t)
	admin := e.admin()
	client := e.signUp("c@example.com", models.RoleClient)

	p, err := e.layer.UpdateRole(e.ctx, admin, client.User.ID, models.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, p.Role)

	me, err := e.layer.CurrentProfile(e.ctx, client)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, me.Role)

	_, err = e.layer.UpdateRole(e.ctx, admin, admin.User.ID, models.RoleClient)
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied))

	_, err = e.layer.UpdateRole(e.ctx, admin, client.User.ID, "owner")
	assert.True(t, apperr.Is(err, apperr.Invalid))

	all, err := e.layer.ListProfiles(e.ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAdmin_UpdateRoleKeepsAssignedEditors(t *testing.T) {
	e := newEnv(t)
	admin := e.admin()
	client := e.signUp("c@example.com", models.RoleClient)
	editor := e.signUp("e@example.com", models.RoleEditor)
	p := e.createProject(client, "busy")

	_, err := e.layer.ClaimProject(e.ctx, editor, p.ID)
	require.NoError(t, err)

	_, err = e.layer.UpdateRole(e.ctx, admin, editor.User.ID, models.RoleClient)
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied), "%v", err)
	me, err := e.layer.CurrentProfile(e.ctx, editor)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, me.Role)

	// the editor still sees their project
	_, err = e.layer.GetProject(e.ctx, editor, p.ID)
	require.NoError(t, err)

	_, err = e.layer.UnassignEditor(e.ctx, admin, p.ID)
	require.NoError(t, err)
	demoted, err := e.layer.UpdateRole(e.ctx, admin, editor.User.ID, models.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, models.RoleClient, demoted.Role)
}

func TestAdmin_UpdateRoleAfterProjectCloses(t *testing.T) {
	e := newEnv(t)
	admin := e.admin()
	client := e.signUp("c@example.com", models.RoleClient)
	editor := e.signUp("e@example.com", models.RoleEditor)
	p := e.createProject(client, "done")

	_, err := e.layer.ClaimProject(e.ctx, editor, p.ID)
	require.NoError(t, err)
	_, err = e.layer.UpdateStatus(e.ctx, admin, p.ID, models.StatusCancelled)
	require.NoError(t, err)
	demoted, err := e.layer.UpdateRole(e.ctx, admin, editor.User.ID, models.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, models.RoleClient, demoted.Role)
}

func TestAdmin_Stats(t *testing.T) {
	e := newEnv(t)
	admin := e.admin()
	client := e.signUp("c@example.com", models.RoleClient)
	editor := e.signUp("e@example.com", models.RoleEditor)

	a := e.createProject(client, "a")
	e.createProject(client, "b")
	c := e.createProject(client, "c")

	_, err := e.layer.ClaimProject(e.ctx, editor, a.ID)
	require.NoError(t, err)
	_, err = e.layer.UpdateStatus(e.ctx, admin, c.ID, models.StatusCancelled)
	require.NoError(t, err)

	stats, err := e.layer.Stats(e.ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, models.AdminStats{TotalProjects: 3, ActiveProjects: 2, NewRequests: 1, UrgentAttention: 0}, *stats)
}
