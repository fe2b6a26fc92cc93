package access_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"editdesk-backend/internal/access"
	"editdesk-backend/internal/apperr"
	"editdesk-backend/internal/memstore"
	"editdesk-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProject_RoundTripsReferenceLinks(t *testing.T) {
	e := newEnv(t)
	client := e.signUp("c@example.com", models.RoleClient)

	created, err := e.layer.CreateProject(e.ctx, client, models.CreateProjectRequest{
		Title:          "Wedding highlights",
		Platforms:      []string{"YouTube", "instagram", "youtube", " "},
		Priority:       models.PriorityHigh,
		DueDate:        time.Now().Add(24 * time.Hour),
		ReferenceLinks: []string{"https://a", "https://b"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, created.Status)
	assert.Equal(t, client.User.ID, created.ClientID)
	assert.Nil(t, created.EditorID)
	assert.Equal(t, []string{"youtube", "instagram"}, created.Platforms)

	got, err := e.layer.GetProject(e.ctx, client, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a", "https://b"}, got.ReferenceLinks)
}

func TestCreateProject_Validation(t *testing.T) {
	e := newEnv(t)
	client := e.signUp("c@example.com", models.RoleClient)
	editor := e.signUp("e@example.com", models.RoleEditor)
	due := time.Now().Add(time.Hour)

	_, err := e.layer.CreateProject(e.ctx, editor, models.CreateProjectRequest{Title: "x", DueDate: due})
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied))

	cases := []models.CreateProjectRequest{
		{Title: " ", DueDate: due},
		{Title: "x"},
		{Title: "x", DueDate: due, Priority: "asap"},
		{Title: "x", DueDate: due, ReferenceLinks: []string{"ftp://nope"}},
	}
	for _, req := range cases {
		_, err := e.layer.CreateProject(e.ctx, client, req)
		assert.True(t, apperr.Is(err, apperr.Invalid), "%+v", req)
	}
}

func TestListProjects_RoleVisibility(t *testing.T) {
	e := newEnv(t)
	alice := e.signUp("alice@example.com", models.RoleClient)
	bob := e.signUp("bob@example.com", models.RoleClient)
	ed := e.signUp("ed@example.com", models.RoleEditor)
	fay := e.signUp("fay@example.com", models.RoleEditor)
	admin := e.admin()

	a1 := e.createProject(alice, "a1")
	a2 := e.createProject(alice, "a2")
	b1 := e.createProject(bob, "b1")

	_, err := e.layer.ClaimProject(e.ctx, ed, a2.ID)
	require.NoError(t, err)

	titles := func(s models.Session) []string {
		list, err := e.layer.ListProjects(e.ctx, s)
		require.NoError(t, err)
		out := make([]string, 0, len(list))
		for _, p := range list {
			out = append(out, p.Title)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"a1", "a2"}, titles(alice))
	assert.ElementsMatch(t, []string{"b1"}, titles(bob))
	assert.ElementsMatch(t, []string{"a1", "a2", "b1"}, titles(ed))
	assert.ElementsMatch(t, []string{"a1", "b1"}, titles(fay))
	assert.ElementsMatch(t, []string{"a1", "a2", "b1"}, titles(admin))

	_, err = e.layer.GetProject(e.ctx, bob, a1.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))
	_, err = e.layer.GetProject(e.ctx, fay, a2.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))
	_, err = e.layer.GetProject(e.ctx, alice, b1.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))
	_, err = e.layer.GetProject(e.ctx, alice, "no-such-project")
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestWorkflow_ReviewLoop(t *testing.T) {
	e := newEnv(t)
	client := e.signUp("c@example.com", models.RoleClient)
	editor := e.signUp("e@example.com", models.RoleEditor)
	p := e.createProject(client, "loop")

	step := func(s models.Session, to models.ProjectStatus) {
		t.Helper()
		got, err := e.layer.UpdateStatus(e.ctx, s, p.ID, to)
		require.NoError(t, err)
		assert.Equal(t, to, got.Status)
	}

	claimed, err := e.layer.ClaimProject(e.ctx, editor, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, claimed.Status)
	assert.Equal(t, "e", claimed.EditorName)

	step(editor, models.StatusAwaitingClientReview)
	step(client, models.StatusRevisionRequested)
	step(editor, models.StatusInProgress)
	step(editor, models.StatusAwaitingClientReview)
	step(client, models.StatusApproved)

	_, err = e.layer.UpdateStatus(e.ctx, editor, p.ID, models.StatusInProgress)
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied))
}

func TestTransitions_OutsideViewAreDenied(t *testing.T) {
	e := newEnv(t)
	alice := e.signUp("alice@example.com", models.RoleClient)
	bob := e.signUp("bob@example.com", models.RoleClient)
	ed := e.signUp("ed@example.com", models.RoleEditor)
	fay := e.signUp("fay@example.com", models.RoleEditor)

	fresh := e.createProject(alice, "fresh")
	_, err := e.layer.UpdateStatus(e.ctx, bob, fresh.ID, models.StatusApproved)
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied), "%v", err)

	claimed := e.createProject(alice, "claimed")
	_, err = e.layer.ClaimProject(e.ctx, ed, claimed.ID)
	require.NoError(t, err)
	_, err = e.layer.UpdateStatus(e.ctx, fay, claimed.ID, models.StatusAwaitingClientReview)
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied), "%v", err)
	_, err = e.layer.ClaimProject(e.ctx, fay, claimed.ID)
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied), "%v", err)

	// reads still hide the project
	_, err = e.layer.GetProject(e.ctx, bob, fresh.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))
	_, err = e.layer.GetProject(e.ctx, fay, claimed.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	_, err = e.layer.UpdateStatus(e.ctx, bob, "no-such-project", models.StatusApproved)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	got, err := e.layer.GetProject(e.ctx, alice, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, got.Status)
	got, err = e.layer.GetProject(e.ctx, alice, claimed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
}

func TestUpdateStatus_ClientCannotApproveNewProject(t *testing.T) {
	e := newEnv(t)
	client := e.signUp("c@example.com", models.RoleClient)
	p := e.createProject(client, "shortcut")

	_, err := e.layer.UpdateStatus(e.ctx, client, p.ID, models.StatusApproved)
	require.Error(t, err)
	assert.Equal(t, apperr.AuthorizationDenied, apperr.KindOf(err))

	got, err := e.layer.GetProject(e.ctx, client, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, got.Status)
}

// barrierStore holds the first two project reads until both have happened,
// so two claimers plan against the same snapshot.
type barrierStore struct {
	*memstore.Store
	reads atomic.Int32
	wg    sync.WaitGroup
}

func (s *barrierStore) GetProject(ctx context.Context, sess models.Session, id string) (*models.Project, error) {
	p, err := s.Store.GetProject(ctx, sess, id)
	if s.reads.Add(1) <= 2 {
		s.wg.Done()
		s.wg.Wait()
	}
	return p, err
}

func TestClaimProject_RaceHasOneWinner(t *testing.T) {
	var barrier *barrierStore
	e := newEnvWith(t, func(m *memstore.Store) access.DataStore {
		barrier = &barrierStore{Store: m}
		return barrier
	})
	client := e.signUp("c@example.com", models.RoleClient)
	ed1 := e.signUp("ed1@example.com", models.RoleEditor)
	ed2 := e.signUp("ed2@example.com", models.RoleEditor)
	p := e.createProject(client, "contested")

	barrier.wg.Add(2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, s := range []models.Session{ed1, ed2} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.layer.ClaimProject(e.ctx, s, p.ID)
		}()
	}
	wg.Wait()

	var winners, denied int
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case apperr.Is(err, apperr.AuthorizationDenied):
			denied++
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, denied)

	got, err := e.layer.GetProject(e.ctx, client, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.EditorID)
	if errs[0] == nil {
		assert.Equal(t, ed1.User.ID, *got.EditorID)
	} else {
		assert.Equal(t, ed2.User.ID, *got.EditorID)
	}
}

func TestClaimProject_ManyEditors(t *testing.T) {
	e := newEnv(t)
	client := e.signUp("c@example.com", models.RoleClient)
	p := e.createProject(client, "popular")

	editors := make([]models.Session, 6)
	for i := range editors {
		editors[i] = e.signUp(string(rune('a'+i))+"@editors.test", models.RoleEditor)
	}

	var wins atomic.Int32
	var wg sync.WaitGroup
	for _, s := range editors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.layer.ClaimProject(e.ctx, s, p.ID); err == nil {
				wins.Add(1)
			} else {
				assert.True(t, apperr.Is(err, apperr.AuthorizationDenied), "%v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestGetProjectDetail(t *testing.T) {
	e := newEnv(t)
	client := e.signUp("c@example.com", models.RoleClient)
	editor := e.signUp("e@example.com", models.RoleEditor)
	admin := e.admin()
	p := e.createProject(client, "detail")

	_, err := e.layer.UploadFile(e.ctx, client, p.ID, models.UploadRequest{
		FileType: models.FileTypeRaw, FileName: "clip.mp4", MimeType: "video/mp4", Data: []byte("raw"),
	})
	require.NoError(t, err)
	_, err = e.layer.AddComment(e.ctx, client, p.ID, models.CreateCommentRequest{Body: "first"})
	require.NoError(t, err)
	_, err = e.layer.AddComment(e.ctx, admin, p.ID, models.CreateCommentRequest{Body: "staff only", IsInternal: true})
	require.NoError(t, err)

	d, err := e.layer.GetProjectDetail(e.ctx, admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, d.Project.ID)
	require.Len(t, d.Files, 1)
	assert.NotEmpty(t, d.Files[0].URL)
	assert.Len(t, d.Comments, 2)
	require.Len(t, d.Editors, 1)
	assert.Equal(t, editor.User.ID, d.Editors[0].ID)

	d, err = e.layer.GetProjectDetail(e.ctx, client, p.ID)
	require.NoError(t, err)
	assert.Len(t, d.Comments, 1)
	assert.Empty(t, d.Editors)
}
