package handlers

import (
	"errors"
	"net/http"

	"editdesk-backend/internal/apperr"
	"editdesk-backend/internal/middleware"
	"editdesk-backend/internal/models"
	"github.com/gin-gonic/gin"
)

var statusByKind = map[apperr.Kind]int{
	apperr.NotAuthenticated:      http.StatusUnauthorized,
	apperr.NotFound:              http.StatusNotFound,
	apperr.AuthorizationDenied:   http.StatusForbidden,
	apperr.BackendNotInitialized: http.StatusServiceUnavailable,
	apperr.Conflict:              http.StatusConflict,
	apperr.RemoteFailure:         http.StatusBadGateway,
	apperr.Timeout:               http.StatusGatewayTimeout,
	apperr.Invalid:               http.StatusBadRequest,
}

const setupGuidance = "the data store is missing its tables or bucket; run `editdesk migrate` against the project database"

// respondError writes err as an ErrorResponse with the status for its kind.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := err.Error()
	var e *apperr.Error
	if errors.As(err, &e) {
		message = e.Message
	}
	if kind == apperr.BackendNotInitialized {
		message = message + ": " + setupGuidance
	}

	c.JSON(status, models.ErrorResponse{Error: string(kind), Message: message})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid request",
		Message: err.Error(),
	})
}

// session returns the caller's session or writes a 401 and returns false.
func session(c *gin.Context) (models.Session, bool) {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: string(apperr.NotAuthenticated), Message: "sign in to continue"})
		return models.Session{}, false
	}
	return s, true
}
