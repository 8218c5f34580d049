package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
)

// maxBodyBytes bounds request bodies on both surfaces.
const maxBodyBytes = 1 << 20

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

var (
	// errNotObject is returned when the body is not a single JSON object.
	errNotObject = errors.New("request body must be a JSON object")
	// errBodyTooLarge is returned when the body exceeds maxBodyBytes.
	errBodyTooLarge = errors.New("request body too large")
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️  Failed to write response: %v", err)
	}
}

func clientError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// serverError logs err and answers with a generic 500. Internal details are
// never sent to the caller.
func serverError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("❌ [%s] %s %s: %v", RequestID(r.Context()), r.Method, r.URL.Path, err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

// readObject decodes the request body, answering the request itself when
// the body is unusable (413 when too large, 400 otherwise).
func readObject(w http.ResponseWriter, r *http.Request) (map[string]interface{}, bool) {
	candidate, err := decodeObject(w, r)
	switch {
	case err == nil:
		return candidate, true
	case errors.Is(err, errBodyTooLarge):
		clientError(w, http.StatusRequestEntityTooLarge, errBodyTooLarge.Error())
	default:
		clientError(w, http.StatusBadRequest, errNotObject.Error())
	}
	return nil, false
}

// decodeObject reads a single JSON object from the request body.
//
// Numbers are kept as json.Number so identifiers like account numbers keep
// their literal text.
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]interface{}, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var candidate map[string]interface{}
	if err := dec.Decode(&candidate); err != nil || candidate == nil {
		return nil, errNotObject
	}
	if dec.More() {
		return nil, errNotObject
	}
	return candidate, nil
}
