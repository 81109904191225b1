package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/upb/lead-gateway/middleware"
	"github.com/upb/lead-gateway/services"
	"github.com/upb/lead-gateway/services/providers"
	"github.com/upb/lead-gateway/utils"
	"go.uber.org/zap"
)

// ModelHeader selects the provider for a lead request
const ModelHeader = "model"

// generationFailedMessage replaces vendor detail in 502 responses
const generationFailedMessage = "The provider failed to generate a response"

// LeadsService defines the dispatch operations the handler needs
type LeadsService interface {
	GetSummary(ctx context.Context, providerName string, lead providers.Lead) (*providers.Envelope, error)
	GetContent(ctx context.Context, providerName string, req providers.ContentRequest) (*providers.Envelope, error)
}

// LeadsHandler handles lead summary and content requests
type LeadsHandler struct {
	service LeadsService
	logger  *zap.Logger
}

// NewLeadsHandler creates a new LeadsHandler
func NewLeadsHandler(service LeadsService, logger *zap.Logger) *LeadsHandler {
	return &LeadsHandler{
		service: service,
		logger:  logger,
	}
}

// HandleSummary handles POST /leads/summary
func (h *LeadsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	model, ok := h.requireModel(w, r, requestID)
	if !ok {
		return
	}

	var lead providers.Lead
	if err := decodeBody(w, r, &lead); err != nil {
		h.logger.Warn("failed to parse lead",
			zap.String("request_id", requestID),
			zap.Error(err))
		writeDecodeError(w, err, h.logger)
		return
	}
	if lead == nil {
		HandleServiceError(w, services.Validation("request body must be a JSON object"), h.logger)
		return
	}

	env, err := h.service.GetSummary(ctx, model, lead)
	if err != nil {
		h.logger.Warn("summary dispatch failed",
			zap.String("request_id", requestID),
			zap.String("model", model),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	h.writeEnvelope(w, requestID, model, env)
}

// HandleContent handles POST /leads/get-content
func (h *LeadsHandler) HandleContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	model, ok := h.requireModel(w, r, requestID)
	if !ok {
		return
	}

	var req providers.ContentRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.logger.Warn("failed to parse content request",
			zap.String("request_id", requestID),
			zap.Error(err))
		writeDecodeError(w, err, h.logger)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		h.logger.Warn("request validation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}

	env, err := h.service.GetContent(ctx, model, req)
	if err != nil {
		h.logger.Warn("content dispatch failed",
			zap.String("request_id", requestID),
			zap.String("model", model),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	h.writeEnvelope(w, requestID, model, env)
}

func (h *LeadsHandler) requireModel(w http.ResponseWriter, r *http.Request, requestID string) (string, bool) {
	model := strings.TrimSpace(r.Header.Get(ModelHeader))
	if model == "" {
		h.logger.Warn("model header is missing",
			zap.String("request_id", requestID),
			zap.String("path", r.URL.Path))
		HandleServiceError(w, services.ErrMissingModelHeader, h.logger)
		return "", false
	}
	return model, true
}

// writeEnvelope picks the status for an envelope. Generation failures are
// redacted: the caller keeps its original payload, the vendor detail stays
// in the logs.
func (h *LeadsHandler) writeEnvelope(w http.ResponseWriter, requestID, model string, env *providers.Envelope) {
	status := http.StatusOK
	body := env

	if !env.OK {
		err := env.Err()
		switch {
		case services.IsUnsupportedContentTypeError(err):
			status = http.StatusBadRequest
		case services.IsGenerationError(err):
			status = http.StatusBadGateway
			body = env.Redacted(generationFailedMessage)
		default:
			status = http.StatusInternalServerError
			body = env.Redacted("An internal error occurred")
		}
		h.logger.Warn("provider returned a failure envelope",
			zap.String("request_id", requestID),
			zap.String("model", model),
			zap.Int("status", status),
			zap.Error(err))
	}

	// encode before the status goes out so a bad value becomes a 500
	payload, err := json.Marshal(body)
	if err != nil {
		h.logger.Error("failed to encode envelope",
			zap.String("request_id", requestID),
			zap.String("model", model),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "An internal error occurred")
		return
	}

	if err := utils.WriteJSONBytes(w, status, payload); err != nil {
		h.logger.Error("failed to write response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}
