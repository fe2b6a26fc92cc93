package memstore

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"editdesk-backend/internal/apperr"
	"editdesk-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const objectAudience = "object"

func (s *Store) PutObject(ctx context.Context, sess models.Session, path, contentType string, data []byte) error {
	if _, err := s.verify(sess); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[path]; ok {
		return apperr.New(apperr.Conflict, "object already exists")
	}
	s.objects[path] = object{contentType: contentType, data: append([]byte(nil), data...)}
	return nil
}

// SignURL returns a link to path that OpenSigned accepts until ttl elapses.
func (s *Store) SignURL(ctx context.Context, sess models.Session, path string, ttl time.Duration) (string, error) {
	if _, err := s.verify(sess); err != nil {
		return "", err
	}
	s.mu.RLock()
	_, ok := s.objects[path]
	s.mu.RUnlock()
	if !ok {
		return "", apperr.New(apperr.NotFound, "object not found")
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   path,
		Audience:  jwt.ClaimStrings{objectAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", apperr.Wrap(apperr.RemoteFailure, "could not sign object url", err)
	}
	return fmt.Sprintf("%s/objects/%s?token=%s", s.publicURL, path, url.QueryEscape(signed)), nil
}

// OpenSigned returns the object at path if token was issued for it and has not expired.
func (s *Store) OpenSigned(path, token string) ([]byte, string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.secret), nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithAudience(objectAudience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || claims.Subject != path {
		return nil, "", apperr.New(apperr.NotAuthenticated, "link is invalid or has expired")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[path]
	if !ok {
		return nil, "", apperr.New(apperr.NotFound, "object not found")
	}
	return obj.data, obj.contentType, nil
}
