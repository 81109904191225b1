package handlers

import (
	"context"
	"net/http"

	"github.com/upb/lead-gateway/middleware"
	"github.com/upb/lead-gateway/services/communication"
	"github.com/upb/lead-gateway/utils"
	"go.uber.org/zap"
)

// EmailService defines the mail relay operation the handler needs
type EmailService interface {
	SendEmail(ctx context.Context, email communication.Email) error
}

// CommunicationHandler relays outreach email
type CommunicationHandler struct {
	service EmailService
	logger  *zap.Logger
}

// NewCommunicationHandler creates a new CommunicationHandler
func NewCommunicationHandler(service EmailService, logger *zap.Logger) *CommunicationHandler {
	return &CommunicationHandler{
		service: service,
		logger:  logger,
	}
}

// HandleSendEmail handles POST /communication/send-email
func (h *CommunicationHandler) HandleSendEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var email communication.Email
	if err := decodeBody(w, r, &email); err != nil {
		h.logger.Warn("failed to parse email request",
			zap.String("request_id", requestID),
			zap.Error(err))
		writeDecodeError(w, err, h.logger)
		return
	}

	if err := utils.ValidateStruct(&email); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	if err := h.service.SendEmail(ctx, email); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteMessage(w, "Email sent successfully"); err != nil {
		h.logger.Error("failed to write response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}
