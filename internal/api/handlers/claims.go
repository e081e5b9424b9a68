// Package handlers provides HTTP handlers for the claims API.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/sahlcare/go-nphies/internal/api/middleware"
	"github.com/sahlcare/go-nphies/internal/domain/submission"
	r4 "github.com/sahlcare/go-nphies/internal/fhir/r4"
	"github.com/sahlcare/go-nphies/internal/nphies/encoder"
	"github.com/sahlcare/go-nphies/internal/nphies/model"
	"github.com/sahlcare/go-nphies/internal/observability/metrics"
	"github.com/sahlcare/go-nphies/internal/observability/tracing"
	"github.com/sahlcare/go-nphies/pkg/idempotency"
)

// ClaimsHandler handles claim and prior authorization endpoints
type ClaimsHandler struct {
	repo     *submission.Repository
	registry *encoder.Registry
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewClaimsHandler creates a new handler
func NewClaimsHandler(repo *submission.Repository, registry *encoder.Registry, m *metrics.Metrics, logger *zap.Logger) *ClaimsHandler {
	return &ClaimsHandler{
		repo:     repo,
		registry: registry,
		metrics:  m,
		logger:   logger,
	}
}

// Routes returns the handler routes
func (h *ClaimsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Submit)
	r.Post("/preview", h.Preview)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/events", h.GetEvents)
	r.Post("/{id}/cancel", h.Cancel)
	return r
}

// SubmitResponse is the response for submitting a claim or prior auth
type SubmitResponse struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	Category       string    `json:"category"`
	BundleID       string    `json:"bundle_id"`
	IdempotencyKey string    `json:"idempotency_key"`
	CreatedAt      time.Time `json:"created_at"`
}

// Submit handles POST /claims: encodes the request into a message bundle and
// records the submission in the event store. Transmission to the exchange is
// picked up asynchronously by the outbox relay.
func (h *ClaimsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tracer := otel.Tracer("claims-handler")
	ctx, span := tracer.Start(ctx, "submit_claim")
	defer span.End()

	var req model.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Multi-facility clients identify the acting facility per request
	if license := middleware.GetProviderLicense(ctx); license != "" {
		if req.Provider == nil {
			req.Provider = &model.Provider{License: license}
		} else if req.Provider.License == "" {
			req.Provider.License = license
		}
	}

	category := encoder.InferCategory(&req)

	encodeStart := time.Now()
	bundle, err := h.registry.Encode(&req)
	if err != nil {
		h.metrics.SubmissionsFailed.Inc()
		h.logger.Error("encoding failed",
			zap.String("request_number", req.RequestNumber),
			zap.Error(err))
		h.jsonError(w, "failed to encode request: "+err.Error(), http.StatusBadRequest)
		return
	}
	h.metrics.EncodingDuration.Observe(time.Since(encodeStart).Seconds())

	submissionID := uuid.New().String()
	span.SetAttributes(tracing.SubmissionAttributes(submissionID, string(category), string(req.Use))...)

	payload, err := json.Marshal(bundle)
	if err != nil {
		h.jsonError(w, "failed to serialize bundle", http.StatusInternalServerError)
		return
	}

	agg := submission.NewAggregate(submissionID)
	createData := &submission.SubmissionCreatedData{
		SubmissionID:    submissionID,
		RequestNumber:   req.RequestNumber,
		Use:             string(req.Use),
		Category:        string(category),
		ProviderLicense: providerLicense(&req),
		InsurerLicense:  insurerLicense(&req),
		MemberID:        memberID(&req),
		BundleID:        bundle.ID,
		Total:           req.ItemNetTotal(),
		Bundle:          payload,
		CreatedAt:       time.Now().UTC(),
	}

	if err := agg.Create(createData); err != nil {
		h.logger.Error("aggregate create failed", zap.Error(err))
		h.jsonError(w, "failed to create submission", http.StatusInternalServerError)
		return
	}

	if err := h.repo.Save(ctx, agg); err != nil {
		h.logger.Error("save failed", zap.Error(err))
		h.jsonError(w, "failed to save submission", http.StatusInternalServerError)
		return
	}

	h.metrics.SubmissionsEncoded.WithLabelValues(string(category), string(req.Use)).Inc()

	key := idempotency.GenerateKey(createData.ProviderLicense, createData.MemberID, req.RequestNumber, createData.CreatedAt)

	h.logger.Info("submission encoded",
		zap.String("id", submissionID),
		zap.String("request_id", middleware.GetRequestID(ctx)),
		zap.String("category", string(category)),
		zap.String("use", string(req.Use)),
	)

	resp := SubmitResponse{
		ID:             submissionID,
		Status:         string(agg.Status()),
		Category:       string(category),
		BundleID:       bundle.ID,
		IdempotencyKey: key,
		CreatedAt:      createData.CreatedAt,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// Preview handles POST /claims/preview: encodes without persisting and
// returns the raw bundle for inspection.
func (h *ClaimsHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req model.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	bundle, err := h.registry.Encode(&req)
	if err != nil {
		h.jsonError(w, "failed to encode request: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bundle)
}

// Get handles GET /claims/{id}
func (h *ClaimsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	agg, err := h.repo.Load(ctx, id)
	if err != nil {
		h.jsonError(w, "submission not found", http.StatusNotFound)
		return
	}

	resp := map[string]interface{}{
		"id":             agg.ID(),
		"status":         agg.Status(),
		"version":        agg.Version(),
		"request_number": agg.RequestNumber(),
	}
	if agg.PreAuthRef() != "" {
		resp["pre_auth_ref"] = agg.PreAuthRef()
	}
	if agg.Outcome() != "" {
		resp["outcome"] = agg.Outcome()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetEvents handles GET /claims/{id}/events
func (h *ClaimsHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	events, err := h.repo.GetEvents(ctx, id)
	if err != nil {
		h.jsonError(w, "failed to get events", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}

// CancelRequest is the request body for cancelling a submission
type CancelRequest struct {
	Reason string `json:"reason"`
}

// Cancel handles POST /claims/{id}/cancel: builds a cancellation bundle for
// the original request and records the transition.
func (h *ClaimsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	agg, err := h.repo.Load(ctx, id)
	if err != nil {
		h.jsonError(w, "submission not found", http.StatusNotFound)
		return
	}

	bundle, err := h.registry.EncodeCancel(&model.CancelRequest{
		RequestNumber: agg.RequestNumber(),
		Reason:        req.Reason,
	})
	if err != nil {
		h.jsonError(w, "failed to encode cancellation: "+err.Error(), http.StatusBadRequest)
		return
	}

	reasonCode := cancelReasonCode(bundle)
	if err := agg.Cancel(reasonCode, req.Reason); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.repo.Save(ctx, agg); err != nil {
		h.jsonError(w, "failed to save", http.StatusInternalServerError)
		return
	}

	h.metrics.CancellationsSent.Inc()

	resp := map[string]interface{}{
		"id":          agg.ID(),
		"status":      agg.Status(),
		"reason_code": reasonCode,
		"bundle":      bundle,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *ClaimsHandler) jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// cancelReasonCode pulls the mapped reason code back out of the encoded
// bundle's Task entry.
func cancelReasonCode(bundle *r4.Bundle) string {
	for _, e := range bundle.Entry {
		task, ok := e.Resource.(*r4.Task)
		if !ok {
			continue
		}
		if task.ReasonCode != nil && len(task.ReasonCode.Coding) > 0 {
			return task.ReasonCode.Coding[0].Code
		}
	}
	return ""
}

func providerLicense(req *model.ClaimRequest) string {
	if req.Provider != nil {
		return req.Provider.License
	}
	return ""
}

func insurerLicense(req *model.ClaimRequest) string {
	if req.Insurer != nil {
		return req.Insurer.License
	}
	return ""
}

func memberID(req *model.ClaimRequest) string {
	if req.Coverage != nil {
		return req.Coverage.MemberID
	}
	return ""
}
