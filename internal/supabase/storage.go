package supabase

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"editdesk-backend/internal/apperr"
	"editdesk-backend/internal/models"
	storage "github.com/supabase-community/storage-go"
)

func (s *Store) PutObject(ctx context.Context, sess models.Session, path, contentType string, data []byte) error {
	upsert := false
	err := exec(ctx, s.timeout, func() error {
		_, err := s.storage(sess).UploadFile(s.bucket, path, bytes.NewReader(data), storage.FileOptions{
			ContentType: &contentType,
			Upsert:      &upsert,
		})
		return err
	})
	if err != nil {
		return s.storageFail(err, "failed to upload file")
	}
	return nil
}

func (s *Store) SignURL(ctx context.Context, sess models.Session, path string, ttl time.Duration) (string, error) {
	seconds := int(ttl.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	resp, err := call(ctx, s.timeout, func() (storage.SignedUrlResponse, error) {
		return s.storage(sess).CreateSignedUrl(s.bucket, path, seconds)
	})
	if err != nil {
		return "", s.storageFail(err, "failed to sign file url")
	}
	return resp.SignedURL, nil
}

// storageFail maps Storage API error bodies, which carry a message but no
// Postgres code, before falling back to Classify.
func (s *Store) storageFail(err error, message string) error {
	var se *storage.StorageError
	if errors.As(err, &se) {
		msg := strings.ToLower(se.Message)
		switch {
		case strings.Contains(msg, "bucket not found"):
			return apperr.Wrap(apperr.BackendNotInitialized, "backend not initialized: storage bucket "+s.bucket+" is missing", err)
		case strings.Contains(msg, "already exists"), strings.Contains(msg, "duplicate"), se.Status == http.StatusConflict:
			return apperr.Wrap(apperr.Conflict, message, err)
		case strings.Contains(msg, "not found"), se.Status == http.StatusNotFound:
			return apperr.Wrap(apperr.NotFound, message, err)
		}
	}
	return s.fail(err, message)
}
