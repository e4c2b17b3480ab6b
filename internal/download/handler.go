package download

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rameshdebur/filebucket/internal/response"
)

// Handler holds HTTP handlers for download endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new download Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ListFiles godoc
//
//	@Summary		List files
//	@Description	List the bucket's files with download URLs valid for one hour.
//	@Tags			downloads
//	@Produce		json
//	@Param			bucketID	path		string	true	"Bucket ID"
//	@Success		200			{object}	response.Envelope{data=[]Downloadable}
//	@Failure		404			{object}	response.Envelope
//	@Failure		410			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/buckets/{bucketID}/files [get]
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.svc.ListDownloadable(r.Context(), chi.URLParam(r, "bucketID"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, files)
}
