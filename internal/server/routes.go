package server

import (
	"net/http"
	"time"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
	"github.com/rs/cors"
)

// APIRoutes returns the complaint API handler.
//
// Routes:
//   - POST /complaints: submit a complaint
//   - POST /recibirreclamo: submit with legacy field names
//   - GET /complaints/latest: render the most recent complaint
func (h *Handlers) APIRoutes(allowedOrigins []string) http.Handler {
	standardMiddleware := alice.New(logRequest, recoverPanic, secureHeaders, makeResponseJSON)

	mux := pat.New()
	mux.Post("/complaints", standardMiddleware.ThenFunc(h.CreateComplaint))
	mux.Post("/recibirreclamo", standardMiddleware.ThenFunc(h.CreateLegacyComplaint))
	mux.Get("/complaints/latest", standardMiddleware.ThenFunc(h.GetLatest))

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	})
	return c.Handler(mux)
}

// BotRoutes returns the messaging-bot handler.
//
// Routes:
//   - POST /v1/messages: send a message (optionally with media) to a number
func (h *Handlers) BotRoutes() http.Handler {
	standardMiddleware := alice.New(logRequest, recoverPanic, secureHeaders)

	mux := pat.New()
	mux.Post("/v1/messages", standardMiddleware.ThenFunc(h.SendMessage))
	return mux
}

// NewHTTPServer wraps handler in a server listening on port.
//
// The caller owns the server lifecycle (ListenAndServe / Shutdown).
func NewHTTPServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
}
