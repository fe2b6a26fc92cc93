package access_test

import (
	"context"
	"testing"
	"time"

	"editdesk-backend/internal/access"
	"editdesk-backend/internal/memstore"
	"editdesk-backend/internal/models"
	"editdesk-backend/internal/policy"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "layer-test-secret"

type env struct {
	t     *testing.T
	ctx   context.Context
	mem   *memstore.Store
	layer *access.Layer
}

func newEnv(t *testing.T) *env {
	return newEnvWith(t, nil)
}

// newEnvWith builds a Layer over wrap(mem), or mem itself when wrap is nil.
func newEnvWith(t *testing.T, wrap func(*memstore.Store) access.DataStore) *env {
	t.Helper()
	mem := memstore.New(testSecret, memstore.WithBcryptCost(bcrypt.MinCost))
	var store access.DataStore = mem
	if wrap != nil {
		store = wrap(mem)
	}
	enforcer, err := policy.NewEnforcer(nil)
	require.NoError(t, err)
	layer := access.NewLayer(store, enforcer, nil, access.Options{
		RedirectURL:  "https://app.test/auth/callback",
		SignedURLTTL: time.Minute,
	})
	return &env{t: t, ctx: context.Background(), mem: mem, layer: layer}
}

// signUp registers through the Layer and returns the provisioned session.
func (e *env) signUp(email string, role models.Role) models.Session {
	e.t.Helper()
	resp, err := e.layer.SignUp(e.ctx, models.SignUpRequest{
		Email: email, Password: "password1", FullName: email[:1], Role: role,
	})
	require.NoError(e.t, err)
	require.NotNil(e.t, resp.Session)
	return *resp.Session
}

// admin seeds an admin identity, since nobody can sign up as one.
func (e *env) admin() models.Session {
	e.t.Helper()
	require.NoError(e.t, e.mem.Apply(&memstore.Seed{Users: []memstore.SeedUser{{
		Email: "root@editdesk.test", Password: "password1", FullName: "Root", Role: models.RoleAdmin,
	}}}))
	resp, err := e.layer.SignIn(e.ctx, models.SignInRequest{Email: "root@editdesk.test", Password: "password1"})
	require.NoError(e.t, err)
	return *resp.Session
}

func (e *env) createProject(client models.Session, title string) *models.Project {
	e.t.Helper()
	p, err := e.layer.CreateProject(e.ctx, client, models.CreateProjectRequest{
		Title:    title,
		Priority: models.PriorityNormal,
		DueDate:  time.Now().Add(72 * time.Hour),
	})
	require.NoError(e.t, err)
	return p
}
