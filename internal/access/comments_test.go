package access_test

import (
	"strings"
	"testing"

	"editdesk-backend/internal/apperr"
	"editdesk-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComments_OrderAndInternalFiltering(t *testing.T) {
	e := newEnv(t)
	client := e.signUp("c@example.com", models.RoleClient)
	editor := e.signUp("e@example.com", models.RoleEditor)
	p := e.createProject(client, "thread")
	_, err := e.layer.ClaimProject(e.ctx, editor, p.ID)
	require.NoError(t, err)

	post := func(s models.Session, body string, internal bool) {
		t.Helper()
		c, err := e.layer.AddComment(e.ctx, s, p.ID, models.CreateCommentRequest{Body: body, IsInternal: internal})
		require.NoError(t, err)
		assert.NotEmpty(t, c.AuthorName)
	}
	post(client, "one", false)
	post(editor, "two (internal)", true)
	post(editor, "three", false)

	bodies := func(s models.Session) []string {
		list, err := e.layer.ListComments(e.ctx, s, p.ID)
		require.NoError(t, err)
		var out []string
		for _, c := range list {
			out = append(out, c.Body)
		}
		return out
	}
	assert.Equal(t, []string{"one", "two (internal)", "three"}, bodies(editor))
	assert.Equal(t, []string{"one", "three"}, bodies(client))
}

func TestAddComment_Rules(t *testing.T) {
	e := newEnv(t)
	client := e.signUp("c@example.com", models.RoleClient)
	editor := e.signUp("e@example.com", models.RoleEditor)
	p := e.createProject(client, "rules")

	_, err := e.layer.AddComment(e.ctx, client, p.ID, models.CreateCommentRequest{Body: "secret", IsInternal: true})
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied))

	_, err = e.layer.AddComment(e.ctx, client, p.ID, models.CreateCommentRequest{Body: "   "})
	assert.True(t, apperr.Is(err, apperr.Invalid))

	_, err = e.layer.AddComment(e.ctx, client, p.ID, models.CreateCommentRequest{Body: strings.Repeat("x", 5001)})
	assert.True(t, apperr.Is(err, apperr.Invalid))

	// pool editors can read but not join the thread
	_, err = e.layer.AddComment(e.ctx, editor, p.ID, models.CreateCommentRequest{Body: "hi"})
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied))
}
