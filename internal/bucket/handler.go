package bucket

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/rameshdebur/filebucket/internal/apperror"
	"github.com/rameshdebur/filebucket/internal/ratelimit"
	"github.com/rameshdebur/filebucket/internal/request"
	"github.com/rameshdebur/filebucket/internal/response"
)

// Handler holds HTTP handlers for the public bucket endpoints.
type Handler struct {
	svc     *Service
	limiter ratelimit.Limiter
}

// NewHandler creates a new bucket Handler. PIN verification is throttled by limiter.
func NewHandler(svc *Service, limiter ratelimit.Limiter) *Handler {
	return &Handler{svc: svc, limiter: limiter}
}

type createRequest struct {
	FolderName string `json:"folderName" example:"Wedding photos RDV"`
}

type verifyRequest struct {
	PIN string `json:"pin" example:"4821"`
}

type createData struct {
	BucketID   string    `json:"bucketId"   example:"e7eedc79-0707-4fe4-8734-526b7ef13a7b"`
	FolderName string    `json:"folderName" example:"Wedding photos"`
	PIN        string    `json:"pin"        example:"4821"`
	CreatedAt  time.Time `json:"createdAt"  example:"2026-02-27T14:48:34Z"`
	ExpiresAt  time.Time `json:"expiresAt"  example:"2026-05-28T14:48:34Z"`
}

type verifyData struct {
	BucketID   string    `json:"bucketId"   example:"e7eedc79-0707-4fe4-8734-526b7ef13a7b"`
	FolderName string    `json:"folderName" example:"Wedding photos"`
	CreatedAt  time.Time `json:"createdAt"  example:"2026-02-27T14:48:34Z"`
	ExpiresAt  time.Time `json:"expiresAt"  example:"2026-05-28T14:48:34Z"`
}

type destroyData struct {
	Closed bool `json:"closed" example:"true"`
}

// Create godoc
//
//	@Summary		Create bucket
//	@Description	Create a drop bucket and allocate its 4-digit PIN. "RDV" in the folder name keeps it 90 days, "RCP" 30 days, otherwise 72 hours; the magic word is stripped from the stored name.
//	@Tags			buckets
//	@Accept			json
//	@Produce		json
//	@Param			request	body		createRequest	true	"Folder name"
//	@Success		201		{object}	response.Envelope{data=createData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		503		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/buckets [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		response.FromError(w, r, err)
		return
	}

	b, err := h.svc.Create(r.Context(), req.FolderName)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.Created(w, createData{
		BucketID:   b.ID,
		FolderName: b.FolderName,
		PIN:        b.PIN,
		CreatedAt:  b.CreatedAt,
		ExpiresAt:  b.ExpiresAt,
	})
}

// Verify godoc
//
//	@Summary		Verify PIN
//	@Description	Resolve a PIN to its active bucket. Limited to 10 attempts per minute per client IP.
//	@Tags			buckets
//	@Accept			json
//	@Produce		json
//	@Param			request	body		verifyRequest	true	"PIN"
//	@Success		200		{object}	response.Envelope{data=verifyData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		410		{object}	response.Envelope
//	@Failure		429		{object}	response.Envelope
//	@Router			/buckets/verify [post]
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	ok, err := h.limiter.Allow(r.Context(), request.ClientIP(r))
	if err != nil {
		// fail open
		log.Ctx(r.Context()).Warn().Err(err).Msg("rate limiter unavailable, allowing request")
		ok = true
	}
	if !ok {
		h.svc.metrics.Verification("rate_limited")
		response.FromError(w, r, apperror.ErrRateLimited)
		return
	}

	var req verifyRequest
	if err := request.DecodeJSON(w, r, &req); err != nil {
		response.FromError(w, r, err)
		return
	}

	b, err := h.svc.Verify(r.Context(), req.PIN)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.OK(w, verifyData{
		BucketID:   b.ID,
		FolderName: b.FolderName,
		CreatedAt:  b.CreatedAt,
		ExpiresAt:  b.ExpiresAt,
	})
}

// Destroy godoc
//
//	@Summary		Destroy bucket
//	@Description	Close an active bucket: its objects and file records are removed and the PIN stops resolving.
//	@Tags			buckets
//	@Produce		json
//	@Param			bucketID	path		string	true	"Bucket ID"
//	@Success		200			{object}	response.Envelope{data=destroyData}
//	@Failure		404			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/buckets/{bucketID} [delete]
func (h *Handler) Destroy(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Destroy(r.Context(), chi.URLParam(r, "bucketID")); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, destroyData{Closed: true})
}

// PurgeExpired godoc
//
//	@Summary		Purge expired buckets
//	@Description	Remove every expired bucket with its objects. Buckets whose objects could not be deleted are retried on the next run.
//	@Tags			cron
//	@Produce		json
//	@Security		CronSecret
//	@Success		200	{object}	response.Envelope{data=PurgeResult}
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/cron/purge-expired [post]
func (h *Handler) PurgeExpired(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.PurgeExpired(r.Context())
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, res)
}
