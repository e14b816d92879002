package localapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/rideshare-app/rideshare-client/internal/app/session"
	"github.com/rideshare-app/rideshare-client/internal/ports/out/gateway"
)

type errorBody struct {
	Error struct {
		Code      string         `json:"code"`
		Message   string         `json:"message"`
		Details   map[string]any `json:"details,omitempty"`
		RequestID string         `json:"request_id,omitempty"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	var eb errorBody
	eb.Error.Code = code
	eb.Error.Message = message
	eb.Error.Details = details
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		eb.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(eb)
}

// writeAppError maps app-layer and gateway errors onto the local API surface.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var se *session.Error
	if errors.As(err, &se) {
		writeError(w, r, se.Status, se.Code, se.Message, se.Details)
		return
	}
	var ge *gateway.Error
	if errors.As(err, &ge) {
		switch ge.Kind {
		case gateway.KindUnauthorized:
			writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", ge.Message, nil)
		case gateway.KindNotFound:
			writeError(w, r, http.StatusNotFound, "NOT_FOUND", ge.Message, nil)
		default:
			writeError(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", ge.Message, nil)
		}
		return
	}
	writeError(w, r, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
}
