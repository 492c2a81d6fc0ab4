package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/iota-uz/iota-facility/pkg/httpapi"
	"github.com/iota-uz/iota-facility/pkg/serrors"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if err := httpapi.WriteJSON(w, status, payload); err != nil {
		panic(err)
	}
}

func ensureRequestID(w http.ResponseWriter, r *http.Request, header string) string {
	if r == nil {
		return ""
	}
	header = strings.TrimSpace(header)
	if header == "" {
		header = "X-Request-ID"
	}

	// The logging middleware has already echoed (or minted) the id.
	if requestID := w.Header().Get(header); requestID != "" {
		return requestID
	}
	requestID := strings.TrimSpace(r.Header.Get(header))
	if requestID == "" {
		requestID = uuid.NewString()
		w.Header().Set(header, requestID)
	}
	return requestID
}

func (c *TiersAPIController) writeAPIError(w http.ResponseWriter, r *http.Request, status int, code string, message string) {
	writeJSON(w, status, httpapi.ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    map[string]string{"request_id": ensureRequestID(w, r, c.opts.RequestIDHeader)},
	})
}

type validationErrorBody struct {
	httpapi.ErrorEnvelope
	Fields serrors.ValidationErrors `json:"fields"`
}

func (c *TiersAPIController) writeValidationError(w http.ResponseWriter, r *http.Request, fields serrors.ValidationErrors) {
	writeJSON(w, http.StatusUnprocessableEntity, validationErrorBody{
		ErrorEnvelope: httpapi.ErrorEnvelope{
			Code:    "TIERS_VALIDATION_FAILED",
			Message: "Erreur: données invalides",
			Meta:    map[string]string{"request_id": ensureRequestID(w, r, c.opts.RequestIDHeader)},
		},
		Fields: fields,
	})
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
