// Package server exposes the reclamos service over HTTP.
//
// Two surfaces are served on separate ports:
//   - API: complaint intake and retrieval
//   - Bot: outbound message dispatch (/v1/messages)
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"reclamos/internal/complaint"
	"reclamos/internal/intake"
)

// Intaker validates and stores a submitted complaint.
type Intaker interface {
	Intake(ctx context.Context, candidate map[string]interface{}) (intake.Ack, error)
}

// LatestRenderer renders the most recent complaint.
type LatestRenderer interface {
	RenderLatest(ctx context.Context) []string
	RenderLatestDetail(ctx context.Context) []string
}

// Dispatcher delivers a message through the messaging channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, destination, message, mediaURL string) error
}

// Handlers holds the dependencies of every route.
type Handlers struct {
	intake     Intaker
	renderer   LatestRenderer
	dispatcher Dispatcher
}

// NewHandlers creates the route handlers.
func NewHandlers(in Intaker, renderer LatestRenderer, dispatcher Dispatcher) *Handlers {
	return &Handlers{intake: in, renderer: renderer, dispatcher: dispatcher}
}

// latestResponse is the body of GET /complaints/latest.
type latestResponse struct {
	Lines []string `json:"lines"`
}

// dispatchRequest is the body of POST /v1/messages.
type dispatchRequest struct {
	Number   string `json:"number"`
	Message  string `json:"message"`
	URLMedia string `json:"urlMedia"`
}

// CreateComplaint handles POST /complaints.
func (h *Handlers) CreateComplaint(w http.ResponseWriter, r *http.Request) {
	candidate, ok := readObject(w, r)
	if !ok {
		return
	}
	h.submit(w, r, candidate)
}

// CreateLegacyComplaint handles POST /recibirreclamo, which accepts the
// Spanish field names of the first deployment.
func (h *Handlers) CreateLegacyComplaint(w http.ResponseWriter, r *http.Request) {
	candidate, ok := readObject(w, r)
	if !ok {
		return
	}
	h.submit(w, r, complaint.FromLegacy(candidate))
}

func (h *Handlers) submit(w http.ResponseWriter, r *http.Request, candidate map[string]interface{}) {
	ack, err := h.intake.Intake(r.Context(), candidate)
	if err != nil {
		var intakeErr *intake.Error
		if errors.As(err, &intakeErr) && intakeErr.Kind == intake.Invalid {
			clientError(w, http.StatusBadRequest, intakeErr.Reason)
			return
		}
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

// GetLatest handles GET /complaints/latest.
//
// Query parameters:
//   - detail=true: full-detail layout instead of the short summary
func (h *Handlers) GetLatest(w http.ResponseWriter, r *http.Request) {
	detail, _ := strconv.ParseBool(r.URL.Query().Get("detail"))

	var lines []string
	if detail {
		lines = h.renderer.RenderLatestDetail(r.Context())
	} else {
		lines = h.renderer.RenderLatest(r.Context())
	}
	writeJSON(w, http.StatusOK, latestResponse{Lines: lines})
}

// SendMessage handles POST /v1/messages.
func (h *Handlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	candidate, ok := readObject(w, r)
	if !ok {
		return
	}

	req := dispatchRequest{
		Number:   stringField(candidate, "number"),
		Message:  stringField(candidate, "message"),
		URLMedia: stringField(candidate, "urlMedia"),
	}

	var missing []string
	if req.Number == "" {
		missing = append(missing, "number")
	}
	if req.Message == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		clientError(w, http.StatusBadRequest, "Missing required fields: "+strings.Join(missing, ", "))
		return
	}

	if err := h.dispatcher.Dispatch(r.Context(), req.Number, req.Message, req.URLMedia); err != nil {
		serverError(w, r, err)
		return
	}

	log.Printf("📤 Message dispatched to %s", req.Number)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("sended"))
}

// stringField returns the trimmed text of a string or number field.
func stringField(candidate map[string]interface{}, key string) string {
	switch v := candidate[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case interface{ String() string }:
		return v.String()
	default:
		return ""
	}
}
