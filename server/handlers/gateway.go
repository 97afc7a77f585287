// Package handlers implements the HTTP endpoints of the gateway. Handlers
// decode and validate the body, delegate to the processor and encode the
// resulting envelope; every failure is reported as {"error": "..."}.
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/teilomillet/chatintel/errors"
	"github.com/teilomillet/chatintel/server/middleware"
	"github.com/teilomillet/chatintel/server/processing"
	"github.com/teilomillet/chatintel/server/validation"
	"go.uber.org/zap"
)

// WelcomeMessage is the plain-text body of GET /.
const WelcomeMessage = "Welcome to ChatIntel! Use the /api/ask endpoint to interact."

// GatewayHandler serves the /api endpoints.
type GatewayHandler struct {
	processor *processing.Processor
	logger    *zap.Logger
}

func NewGatewayHandler(processor *processing.Processor, logger *zap.Logger) *GatewayHandler {
	return &GatewayHandler{
		processor: processor,
		logger:    logger,
	}
}

// Home serves GET /.
func (h *GatewayHandler) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(WelcomeMessage))
}

// Health serves GET /api/health.
func (h *GatewayHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, h.processor.HealthCheck())
}

// Modes serves GET /api/modes.
func (h *GatewayHandler) Modes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, h.processor.ListModes())
}

// Ask serves POST /api/ask.
func (h *GatewayHandler) Ask(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req validation.AskRequest
	if err := validation.Decode(r, requestID, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.processor.Ask(r.Context(), req.Query, req.ModeOr(processing.DefaultMode))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, result)
}

// Translate serves POST /api/translate.
func (h *GatewayHandler) Translate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req validation.TranslateRequest
	if err := validation.Decode(r, requestID, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.processor.Translate(r.Context(), req.Text, req.LanguageOr(processing.DefaultLanguage))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, result)
}

// Feedback serves POST /api/feedback.
func (h *GatewayHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req validation.FeedbackRequest
	if err := validation.Decode(r, requestID, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.processor.Feedback(r.Context(), req.Feedback)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, result)
}

// NotFound answers unknown routes with a JSON 404.
func NotFound(w http.ResponseWriter, r *http.Request) {
	errors.ErrorWithType(w, "Not found.", errors.NotFoundError, http.StatusNotFound)
}

// MethodNotAllowed answers known routes hit with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	errors.ErrorWithType(w, "Method not allowed.", errors.MethodNotAllowedError, http.StatusMethodNotAllowed)
}

// fail logs err and writes it. Errors that are not GatewayErrors become 500s.
func (h *GatewayHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	errors.LogError(h.logger, err, requestID)

	var gwErr *errors.GatewayError
	if !errors.As(err, &gwErr) {
		gwErr = errors.NewInternalError(requestID, err)
	}
	errors.WriteError(w, gwErr)
}

// writeJSON encodes v before touching w so an encoding failure can still
// be reported as a 500.
func (h *GatewayHandler) writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		h.fail(w, r, errors.NewInternalError(middleware.GetRequestID(r.Context()), fmt.Errorf("encode response: %w", err)))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
