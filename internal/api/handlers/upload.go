package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/amlwatch/dashboard/internal/api/middleware"
	"github.com/amlwatch/dashboard/internal/domain"
	"github.com/amlwatch/dashboard/internal/upload"
)

// maxUploadBytes bounds one uploaded file in memory.
const maxUploadBytes = 32 << 20

// UploadHandler drives the upload coordinator over HTTP.
type UploadHandler struct {
	coord *upload.Coordinator
	log   zerolog.Logger
}

// NewUploadHandler creates an upload handler.
func NewUploadHandler(coord *upload.Coordinator, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{coord: coord, log: log}
}

// Upload handles POST /api/upload/{slug} with a multipart body. Only the
// first file of the form is used.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if _, ok := domain.FileTypeBySlug(slug); !ok {
		middleware.WriteError(w, http.StatusNotFound, "unknown file type: "+slug)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}

	if err := h.coord.HandleFile(r.Context(), slug, header.Filename, content); err != nil {
		status := http.StatusBadGateway
		if strings.Contains(err.Error(), "in progress") {
			status = http.StatusConflict
		}
		middleware.WriteError(w, status, err.Error())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.slot(slug))
}

// Status handles GET /api/upload/status: a fresh poll plus the local view.
func (h *UploadHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.coord.RefreshStatus(r.Context())
	middleware.WriteJSON(w, http.StatusOK, h.coord.Snapshot())
}

// Reset handles POST /api/upload/{slug}/reset.
func (h *UploadHandler) Reset(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if err := h.coord.Reset(slug); err != nil {
		status := http.StatusNotFound
		if strings.Contains(err.Error(), "in progress") {
			status = http.StatusConflict
		}
		middleware.WriteError(w, status, err.Error())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.slot(slug))
}

// Clear handles DELETE /api/upload/clear.
func (h *UploadHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.coord.ClearAll(r.Context()); err != nil {
		status := http.StatusBadGateway
		if strings.Contains(err.Error(), "refused") {
			status = http.StatusConflict
		}
		middleware.WriteError(w, status, err.Error())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.coord.Snapshot())
}

func (h *UploadHandler) slot(slug string) upload.Slot {
	for _, s := range h.coord.Snapshot().Slots {
		if s.FileType.Slug == slug {
			return s
		}
	}
	return upload.Slot{}
}
