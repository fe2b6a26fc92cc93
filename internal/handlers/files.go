package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"editdesk-backend/internal/access"
	"editdesk-backend/internal/models"
	"github.com/gin-gonic/gin"
)

// MaxUploadBytes caps a single uploaded file.
const MaxUploadBytes = 512 << 20

type FilesHandler struct {
	layer *access.Layer
}

func NewFilesHandler(layer *access.Layer) *FilesHandler {
	return &FilesHandler{layer: layer}
}

// ListFiles godoc
// @Summary     List project files with fresh signed download URLs
// @Tags        files
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Success     200 {object} models.FilesResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id}/files [get]
func (h *FilesHandler) ListFiles(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	files, err := h.layer.ListFiles(c.Request.Context(), s, c.Param("project_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.FilesResponse{Files: files})
}

// UploadFile godoc
// @Summary     Upload a file to a project
// @Description Stores the bytes, then records the file. When the assigned editor uploads a final cut
// @Description while the project is in progress, suggested_status is awaiting_client_review; it is
// @Description not applied.
// @Tags        files
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID"
// @Param       file formData file true "File to upload"
// @Param       file_type formData string true "raw, final, reference or other"
// @Success     201 {object} models.UploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /projects/{project_id}/files [post]
func (h *FilesHandler) UploadFile(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+1<<20)
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, fmt.Errorf("failed to read uploaded file: %w", err))
		return
	}
	if header.Size > MaxUploadBytes {
		badRequest(c, fmt.Errorf("file is larger than %d bytes", int64(MaxUploadBytes)))
		return
	}

	f, err := header.Open()
	if err != nil {
		badRequest(c, fmt.Errorf("failed to open uploaded file: %w", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		badRequest(c, fmt.Errorf("failed to read uploaded file: %w", err))
		return
	}

	req := models.UploadRequest{
		FileType: models.FileType(strings.TrimSpace(c.PostForm("file_type"))),
		FileName: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	}
	res, err := h.layer.UploadFile(c.Request.Context(), s, c.Param("project_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.UploadResponse{File: res.File, SuggestedStatus: res.SuggestedStatus})
}

// ObjectOpener serves objects behind signed links. The in-memory store
// implements it; Supabase serves its own signed URLs.
type ObjectOpener interface {
	OpenSigned(path, token string) ([]byte, string, error)
}

type ObjectsHandler struct {
	opener ObjectOpener
}

func NewObjectsHandler(opener ObjectOpener) *ObjectsHandler {
	return &ObjectsHandler{opener: opener}
}

// ServeObject godoc
// @Summary     Download an object through a signed link
// @Tags        files
// @Param       path path string true "Object path"
// @Param       token query string true "Signed token"
// @Success     200
// @Failure     401 {object} models.ErrorResponse
// @Router      /objects/{path} [get]
func (h *ObjectsHandler) ServeObject(c *gin.Context) {
	path := strings.TrimPrefix(c.Param("path"), "/")
	data, contentType, err := h.opener.OpenSigned(path, c.Query("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, data)
}
