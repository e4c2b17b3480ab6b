package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rameshdebur/filebucket/internal/request"
	"github.com/rameshdebur/filebucket/internal/response"
)

// Handler holds HTTP handlers for admin endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new admin Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type sessionRequest struct {
	PIN string `json:"pin" example:"000000"`
}

type resetPINData struct {
	BucketID string `json:"bucketId" example:"e7eedc79-0707-4fe4-8734-526b7ef13a7b"`
	PIN      string `json:"pin"      example:"7305"`
}

type deleteData struct {
	Deleted bool `json:"deleted" example:"true"`
}

// OpenSession godoc
//
//	@Summary		Open admin session
//	@Description	Exchange the master admin PIN for a bearer token.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		sessionRequest	true	"Admin PIN"
//	@Success		200		{object}	response.Envelope{data=Session}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Router			/admin/session [post]
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		response.FromError(w, r, err)
		return
	}

	sess, err := h.svc.OpenSession(r.Context(), req.PIN)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, sess)
}

// ListBuckets godoc
//
//	@Summary		List active buckets
//	@Description	Newest first, at most 50. search filters folder names case-insensitively.
//	@Tags			admin
//	@Produce		json
//	@Security		AdminPin
//	@Security		BearerAuth
//	@Param			search	query		string	false	"Folder name substring"
//	@Success		200		{object}	response.Envelope{data=[]bucket.Summary}
//	@Failure		401		{object}	response.Envelope
//	@Router			/admin/buckets [get]
func (h *Handler) ListBuckets(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListBuckets(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, out)
}

// ResetPIN godoc
//
//	@Summary		Reset bucket PIN
//	@Description	Assign a fresh PIN; the old one stops resolving immediately.
//	@Tags			admin
//	@Produce		json
//	@Security		AdminPin
//	@Security		BearerAuth
//	@Param			bucketID	path		string	true	"Bucket ID"
//	@Success		200			{object}	response.Envelope{data=resetPINData}
//	@Failure		401			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Failure		503			{object}	response.Envelope
//	@Router			/admin/buckets/{bucketID}/reset-pin [post]
func (h *Handler) ResetPIN(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bucketID")
	pin, err := h.svc.ResetPIN(r.Context(), id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, resetPINData{BucketID: id, PIN: pin})
}

// DeleteBucket godoc
//
//	@Summary		Delete bucket
//	@Description	Remove the bucket and every stored object. Fails without deleting the record if storage cleanup fails.
//	@Tags			admin
//	@Produce		json
//	@Security		AdminPin
//	@Security		BearerAuth
//	@Param			bucketID	path		string	true	"Bucket ID"
//	@Success		200			{object}	response.Envelope{data=deleteData}
//	@Failure		401			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/admin/buckets/{bucketID} [delete]
func (h *Handler) DeleteBucket(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteBucket(r.Context(), chi.URLParam(r, "bucketID")); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, deleteData{Deleted: true})
}
