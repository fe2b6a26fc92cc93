package access

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"strings"

	"editdesk-backend/internal/apperr"
	"editdesk-backend/internal/metrics"
	"editdesk-backend/internal/models"
	"editdesk-backend/internal/policy"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// signConcurrency bounds parallel signed-URL requests per listing.
const signConcurrency = 8

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type UploadResult struct {
	File models.ProjectFile
	// SuggestedStatus is the status the uploader may want to move to next.
	// It is never applied here.
	SuggestedStatus models.ProjectStatus
}

// UploadFile stores the bytes first and then records the metadata row. If the
// second step fails the object stays where it was put and the error names it.
func (l *Layer) UploadFile(ctx context.Context, s models.Session, projectID string, req models.UploadRequest) (res *UploadResult, err error) {
	defer l.observe("upload_file", &err)

	c, err := l.caller(ctx, s)
	if err != nil {
		return nil, err
	}
	p, err := l.visibleProject(ctx, s, c, projectID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanUpload(c.Actor, p, req.FileType); err != nil {
		return nil, err
	}
	if len(req.Data) == 0 {
		return nil, apperr.Invalidf("file is empty")
	}
	name := safeFileName(req.FileName)
	if name == "" {
		return nil, apperr.Invalidf("file name is required")
	}
	mimeType := req.MimeType
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(req.Data)
	}

	storagePath := fmt.Sprintf("projects/%s/%s/%s-%s", p.ID, req.FileType, uuid.New().String(), name)
	if err := l.store.PutObject(ctx, s, storagePath, mimeType, req.Data); err != nil {
		return nil, err
	}

	file := models.ProjectFile{
		ID:            uuid.New().String(),
		ProjectID:     p.ID,
		UploadedBy:    c.ID,
		FileType:      req.FileType,
		FileName:      name,
		FileSizeBytes: int64(len(req.Data)),
		MimeType:      mimeType,
		StoragePath:   storagePath,
	}
	saved, err := l.store.InsertFile(ctx, s, file)
	if err != nil {
		metrics.OrphanedObjectsTotal.Inc()
		l.logger.Warn("file stored without metadata",
			zap.String("project_id", p.ID),
			zap.String("storage_path", storagePath),
			zap.Error(err),
		)
		return nil, apperr.Wrap(apperr.RemoteFailure,
			fmt.Sprintf("file was stored at %s but could not be recorded, upload it again", storagePath), err)
	}

	if url, err := l.store.SignURL(ctx, s, saved.StoragePath, l.opts.SignedURLTTL); err == nil {
		saved.URL = url
	} else {
		l.logger.Warn("failed to sign uploaded file url", zap.String("storage_path", saved.StoragePath), zap.Error(err))
	}

	return &UploadResult{
		File:            *saved,
		SuggestedStatus: policy.SuggestAfterUpload(c.Actor, p, req.FileType),
	}, nil
}

// ListFiles returns the project's files, each with a freshly signed URL.
func (l *Layer) ListFiles(ctx context.Context, s models.Session, projectID string) (files []models.ProjectFile, err error) {
	defer l.observe("list_files", &err)

	c, err := l.caller(ctx, s)
	if err != nil {
		return nil, err
	}
	p, err := l.visibleProject(ctx, s, c, projectID)
	if err != nil {
		return nil, err
	}
	return l.signedFiles(ctx, s, p.ID)
}

func (l *Layer) signedFiles(ctx context.Context, s models.Session, projectID string) ([]models.ProjectFile, error) {
	files, err := l.store.ListFiles(ctx, s, projectID)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(signConcurrency)
	for i := range files {
		f := &files[i]
		g.Go(func() error {
			url, err := l.store.SignURL(gctx, s, f.StoragePath, l.opts.SignedURLTTL)
			if err != nil {
				return fmt.Errorf("failed to sign %s: %w", f.StoragePath, err)
			}
			f.URL = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperr.Classify(err, "could not prepare file links")
	}
	return files, nil
}

func safeFileName(raw string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(raw), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	name = unsafeNameChars.ReplaceAllString(name, "_")
	return strings.Trim(name, "_")
}
