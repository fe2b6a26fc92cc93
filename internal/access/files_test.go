package access_test

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"testing"
	"time"

	"editdesk-backend/internal/access"
	"editdesk-backend/internal/apperr"
	"editdesk-backend/internal/memstore"
	"editdesk-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadFile_FinalSuggestsReview(t *testing.T) {
	e := newEnv(t)
	client := e.signUp("c@example.com", models.RoleClient)
	editor := e.signUp("e@example.com", models.RoleEditor)
	p := e.createProject(client, "deliver")
	_, err := e.layer.ClaimProject(e.ctx, editor, p.ID)
	require.NoError(t, err)

	res, err := e.layer.UploadFile(e.ctx, editor, p.ID, models.UploadRequest{
		FileType: models.FileTypeFinal, FileName: "../../Final Cut v2.mp4", MimeType: "video/mp4", Data: []byte("final"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingClientReview, res.SuggestedStatus)
	assert.Equal(t, "Final_Cut_v2.mp4", res.File.FileName)
	assert.Regexp(t, regexp.MustCompile(`^projects/`+p.ID+`/final/[0-9a-f-]{36}-Final_Cut_v2\.mp4$`), res.File.StoragePath)
	assert.Equal(t, int64(5), res.File.FileSizeBytes)
	assert.NotEmpty(t, res.File.URL)

	// advisory only
	got, err := e.layer.GetProject(e.ctx, client, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)

	res, err = e.layer.UploadFile(e.ctx, editor, p.ID, models.UploadRequest{
		FileType: models.FileTypeReference, FileName: "notes.txt", Data: []byte("plain text notes"),
	})
	require.NoError(t, err)
	assert.Empty(t, res.SuggestedStatus)
	assert.Equal(t, "text/plain; charset=utf-8", res.File.MimeType)
}

func TestUploadFile_Permissions(t *testing.T) {
	e := newEnv(t)
	client := e.signUp("c@example.com", models.RoleClient)
	other := e.signUp("o@example.com", models.RoleClient)
	editor := e.signUp("e@example.com", models.RoleEditor)
	p := e.createProject(client, "perm")
	data := []byte("x")

	_, err := e.layer.UploadFile(e.ctx, client, p.ID, models.UploadRequest{FileType: models.FileTypeFinal, FileName: "a", Data: data})
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied))

	_, err = e.layer.UploadFile(e.ctx, editor, p.ID, models.UploadRequest{FileType: models.FileTypeRaw, FileName: "a", Data: data})
	assert.True(t, apperr.Is(err, apperr.AuthorizationDenied), "pool editors cannot upload")

	_, err = e.layer.UploadFile(e.ctx, other, p.ID, models.UploadRequest{FileType: models.FileTypeRaw, FileName: "a", Data: data})
	assert.True(t, apperr.Is(err, apperr.NotFound))

	_, err = e.layer.UploadFile(e.ctx, client, p.ID, models.UploadRequest{FileType: "video", FileName: "a", Data: data})
	assert.True(t, apperr.Is(err, apperr.Invalid))

	_, err = e.layer.UploadFile(e.ctx, client, p.ID, models.UploadRequest{FileType: models.FileTypeRaw, FileName: "a"})
	assert.True(t, apperr.Is(err, apperr.Invalid))
}

type failingMetadataStore struct {
	*memstore.Store
}

func (s *failingMetadataStore) InsertFile(ctx context.Context, sess models.Session, f models.ProjectFile) (*models.ProjectFile, error) {
	return nil, apperr.Classify(errors.New("(08006) connection failure"), "could not record file")
}

func TestUploadFile_PartialFailureNamesOrphan(t *testing.T) {
	e := newEnvWith(t, func(m *memstore.Store) access.DataStore {
		return &failingMetadataStore{Store: m}
	})
	client := e.signUp("c@example.com", models.RoleClient)
	p := e.createProject(client, "orphan")

	_, err := e.layer.UploadFile(e.ctx, client, p.ID, models.UploadRequest{
		FileType: models.FileTypeRaw, FileName: "clip.mov", Data: []byte("bytes"),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.RemoteFailure, apperr.KindOf(err))

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	path := regexp.MustCompile(`projects/\S+/raw/\S+-clip\.mov`).FindString(appErr.Message)
	require.NotEmpty(t, path)

	// the bytes are still there
	link, err := e.mem.SignURL(e.ctx, client, path, time.Minute)
	require.NoError(t, err)
	u, err := url.Parse(link)
	require.NoError(t, err)
	data, _, err := e.mem.OpenSigned(path, u.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, "bytes", string(data))

	files, err := e.layer.ListFiles(e.ctx, client, p.ID)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestListFiles_SignsEachFile(t *testing.T) {
	e := newEnv(t)
	client := e.signUp("c@example.com", models.RoleClient)
	p := e.createProject(client, "files")

	for _, name := range []string{"a.mp4", "b.mp4", "c.mp4"} {
		_, err := e.layer.UploadFile(e.ctx, client, p.ID, models.UploadRequest{
			FileType: models.FileTypeRaw, FileName: name, Data: []byte(name),
		})
		require.NoError(t, err)
	}

	files, err := e.layer.ListFiles(e.ctx, client, p.ID)
	require.NoError(t, err)
	require.Len(t, files, 3)
	for _, f := range files {
		u, err := url.Parse(f.URL)
		require.NoError(t, err)
		_, _, err = e.mem.OpenSigned(f.StoragePath, u.Query().Get("token"))
		assert.NoError(t, err)
	}
}
