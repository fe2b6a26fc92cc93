package access

import (
	"context"
	"sort"
	"strings"

	"editdesk-backend/internal/apperr"
	"editdesk-backend/internal/models"
	"editdesk-backend/internal/policy"
	"github.com/google/uuid"
)

const maxCommentLength = 5000

func (l *Layer) AddComment(ctx context.Context, s models.Session, projectID string, req models.CreateCommentRequest) (comment *models.Comment, err error) {
	defer l.observe("add_comment", &err)

	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, apperr.Invalidf("comment body is required")
	}
	if len(body) > maxCommentLength {
		return nil, apperr.Invalidf("comment is longer than %d characters", maxCommentLength)
	}

	c, err := l.caller(ctx, s)
	if err != nil {
		return nil, err
	}
	p, err := l.visibleProject(ctx, s, c, projectID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanComment(c.Actor, p, req.IsInternal); err != nil {
		return nil, err
	}

	saved, err := l.store.InsertComment(ctx, s, models.Comment{
		ID:         uuid.New().String(),
		ProjectID:  p.ID,
		AuthorID:   c.ID,
		Body:       body,
		IsInternal: req.IsInternal,
	})
	if err != nil {
		return nil, err
	}
	if saved.AuthorName == "" {
		saved.AuthorName = c.Profile.FullName
	}
	return saved, nil
}

// ListComments returns the thread oldest first. Clients never see internal notes.
func (l *Layer) ListComments(ctx context.Context, s models.Session, projectID string) (comments []models.Comment, err error) {
	defer l.observe("list_comments", &err)

	c, err := l.caller(ctx, s)
	if err != nil {
		return nil, err
	}
	p, err := l.visibleProject(ctx, s, c, projectID)
	if err != nil {
		return nil, err
	}
	return l.visibleComments(ctx, s, c, p.ID)
}

func (l *Layer) visibleComments(ctx context.Context, s models.Session, c *caller, projectID string) ([]models.Comment, error) {
	all, err := l.store.ListComments(ctx, s, projectID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return policy.VisibleComments(all, c.Role), nil
}
