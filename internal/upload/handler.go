package upload

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rameshdebur/filebucket/internal/apperror"
	"github.com/rameshdebur/filebucket/internal/request"
	"github.com/rameshdebur/filebucket/internal/response"
)

// DefaultMaxProxyBytes caps a proxied multipart request body.
const DefaultMaxProxyBytes = 50 << 20

// multipartMemory is held in memory before spilling parts to temp files.
const multipartMemory = 8 << 20

// Handler holds HTTP handlers for upload endpoints.
type Handler struct {
	svc           *Service
	maxProxyBytes int64
}

// NewHandler creates a new upload Handler. maxProxyBytes <= 0 selects the default.
func NewHandler(svc *Service, maxProxyBytes int64) *Handler {
	if maxProxyBytes <= 0 {
		maxProxyBytes = DefaultMaxProxyBytes
	}
	return &Handler{svc: svc, maxProxyBytes: maxProxyBytes}
}

type uploadURLsRequest struct {
	Files []Declared `json:"files"`
}

// Upload godoc
//
//	@Summary		Upload files
//	@Description	Stream files through the server into the bucket. Multipart field "files", repeated; the whole request is capped at 50MB.
//	@Tags			uploads
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			bucketID	path		string	true	"Bucket ID"
//	@Param			files		formData	file	true	"Files"
//	@Success		201			{object}	response.Envelope{data=[]Uploaded}
//	@Failure		400			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Failure		410			{object}	response.Envelope
//	@Failure		413			{object}	response.Envelope
//	@Router			/buckets/{bucketID}/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxProxyBytes {
		response.FromError(w, r, apperror.SizeLimit("upload exceeds the request size limit"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxProxyBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.FromError(w, r, apperror.SizeLimit("upload exceeds the request size limit"))
			return
		}
		response.FromError(w, r, apperror.Validation("invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	headers := r.MultipartForm.File["files"]
	incoming := make([]Incoming, 0, len(headers))
	for _, fh := range headers {
		incoming = append(incoming, fromHeader(fh))
	}

	out, err := h.svc.UploadProxied(r.Context(), chi.URLParam(r, "bucketID"), incoming)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Created(w, out)
}

func fromHeader(fh *multipart.FileHeader) Incoming {
	return Incoming{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// UploadURLs godoc
//
//	@Summary		Request pre-signed upload URLs
//	@Description	Register files and receive PUT URLs valid for 15 minutes for direct browser-to-storage upload. Each file may be at most 100MB.
//	@Tags			uploads
//	@Accept			json
//	@Produce		json
//	@Param			bucketID	path		string				true	"Bucket ID"
//	@Param			request		body		uploadURLsRequest	true	"Declared files"
//	@Success		201			{object}	response.Envelope{data=[]Grant}
//	@Failure		400			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Failure		410			{object}	response.Envelope
//	@Failure		413			{object}	response.Envelope
//	@Router			/buckets/{bucketID}/upload-urls [post]
func (h *Handler) UploadURLs(w http.ResponseWriter, r *http.Request) {
	var req uploadURLsRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		response.FromError(w, r, err)
		return
	}

	grants, err := h.svc.RequestUploadURLs(r.Context(), chi.URLParam(r, "bucketID"), req.Files)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Created(w, grants)
}
