package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reclamos/internal/complaint"
	"reclamos/internal/config"
	apperrors "reclamos/internal/errors"
	"reclamos/internal/intake"
	"reclamos/internal/render"
	"reclamos/internal/storage"
	"reclamos/internal/telegram"
)

type fakeDispatcher struct {
	mu    sync.Mutex
	calls [][3]string
	err   error
}

func (d *fakeDispatcher) Dispatch(_ context.Context, destination, message, mediaURL string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, [3]string{destination, message, mediaURL})
	return d.err
}

type failingAppender struct{}

func (failingAppender) Append(context.Context, complaint.Record) error {
	return apperrors.NewWriteError("append", errors.New("disk full"))
}

type panicIntaker struct{}

func (panicIntaker) Intake(context.Context, map[string]interface{}) (intake.Ack, error) {
	panic("boom")
}

// newTestAPI wires the real intake and render path over a file store in a
// temp dir.
func newTestAPI(t *testing.T) (http.Handler, *storage.FileStore) {
	t.Helper()
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "reclamo.json"))
	h := NewHandlers(intake.NewService(store, nil, nil), render.NewRenderer(store), &fakeDispatcher{})
	return h.APIRoutes([]string{"*"}), store
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestEndToEndSubmitThenRenderLatest(t *testing.T) {
	api, store := newTestAPI(t)

	rec := do(t, api, http.MethodPost, "/complaints", `{
		"AccountNumber": "123",
		"Phone": "555-0100",
		"Category": "Billing",
		"Type": "Commercial",
		"Reference": "REF1",
		"Description": "No power"
	}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, map[string]interface{}{"status": "ok", "message": "complaint received"}, decodeBody(t, rec))

	want := []string{
		"Last complaint received:",
		"- AccountNumber: 123",
		"- Phone: 555-0100",
		"- Category: Billing",
		"- Type: Commercial",
		"- Reference: REF1",
		"- Description: No power",
	}
	assert.Equal(t, want, render.NewRenderer(store).RenderLatest(context.Background()))

	rec = do(t, api, http.MethodGet, "/complaints/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var latest latestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	assert.Equal(t, want, latest.Lines)
}

func TestCreateComplaintMissingFields(t *testing.T) {
	api, store := newTestAPI(t)

	rec := do(t, api, http.MethodPost, "/complaints", `{"AccountNumber":"123","Type":"Commercial"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields: Phone, Category, Reference, Description", decodeBody(t, rec)["error"])

	all, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateComplaintInvalidType(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := do(t, api, http.MethodPost, "/complaints", `{
		"AccountNumber":"1","Phone":"2","Category":"c","Type":"Urgent","Reference":"r","Description":"d"
	}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid type. Must be one of: Commercial, Operational", decodeBody(t, rec)["error"])
}

func TestCreateComplaintRejectsNonObjectBodies(t *testing.T) {
	api, _ := newTestAPI(t)

	for _, body := range []string{``, `not json`, `[]`, `null`, `"text"`, `{"a":1} {"b":2}`} {
		t.Run(body, func(t *testing.T) {
			rec := do(t, api, http.MethodPost, "/complaints", body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "request body must be a JSON object", decodeBody(t, rec)["error"])
		})
	}
}

func TestCreateComplaintStorageFailure(t *testing.T) {
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "reclamo.json"))
	h := NewHandlers(intake.NewService(failingAppender{}, nil, nil), render.NewRenderer(store), &fakeDispatcher{})

	rec := do(t, h.APIRoutes(nil), http.MethodPost, "/complaints", `{
		"AccountNumber":"1","Phone":"2","Category":"c","Type":"Operational","Reference":"r","Description":"d"
	}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decodeBody(t, rec)["error"])
	assert.NotContains(t, rec.Body.String(), "disk full")
}

func TestCreateLegacyComplaint(t *testing.T) {
	api, store := newTestAPI(t)

	rec := do(t, api, http.MethodPost, "/recibirreclamo", `{
		"NroCuenta": 4455,
		"NroServicioEJESA": "S-9",
		"Telefono": "388-000",
		"Categoria": "Facturacion",
		"Tipo": "Comercial",
		"Referencia": "R-7",
		"Descripcion": "Cobro doble"
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	last, err := store.LoadLast(context.Background())
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "4455", last.AccountNumber)
	assert.Equal(t, complaint.Commercial, last.Type)
	require.NotNil(t, last.ServiceNumber)
	assert.Equal(t, "S-9", *last.ServiceNumber)
}

func TestGetLatestEmptyAndDetail(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := do(t, api, http.MethodGet, "/complaints/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var latest latestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	assert.Equal(t, []string{render.EmptyMessage}, latest.Lines)

	rec = do(t, api, http.MethodPost, "/complaints", `{
		"AccountNumber":"1","Phone":"2","Category":"c","Type":"Operational","Reference":"r","Description":"d"
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, api, http.MethodGet, "/complaints/latest?detail=true", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	require.Len(t, latest.Lines, 8)
	assert.Equal(t, render.DetailHeader, latest.Lines[0])
	assert.Equal(t, "- ServiceNumber: "+render.NotAvailable, latest.Lines[2])
}

func TestAPIMiddleware(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := do(t, api, http.MethodGet, "/complaints/latest", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "deny", rec.Header().Get("X-Frame-Options"))

	req := httptest.NewRequest(http.MethodGet, "/complaints/latest", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	api.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestAPIUnknownRoutes(t *testing.T) {
	api, _ := newTestAPI(t)

	assert.Equal(t, http.StatusNotFound, do(t, api, http.MethodPost, "/nowhere", `{}`).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, api, http.MethodGet, "/complaints", "").Code)
}

func TestRecoverPanic(t *testing.T) {
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "reclamo.json"))
	h := NewHandlers(panicIntaker{}, render.NewRenderer(store), &fakeDispatcher{})

	rec := do(t, h.APIRoutes(nil), http.MethodPost, "/complaints", `{}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "close", rec.Header().Get("Connection"))
}

func TestConcurrentSubmissions(t *testing.T) {
	api, store := newTestAPI(t)

	const n = 30
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := `{"AccountNumber":"1","Phone":"2","Category":"c","Type":"Commercial","Reference":"R` +
				strings.Repeat("x", i) + `","Description":"d"}`
			rec := do(t, api, http.MethodPost, "/complaints", body)
			assert.Equal(t, http.StatusOK, rec.Code)
		}(i)
	}
	wg.Wait()

	all, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, n)
	seen := map[string]bool{}
	for _, r := range all {
		seen[r.Reference] = true
	}
	assert.Len(t, seen, n)
}

func TestSendMessage(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		dispatch   error
		wantStatus int
		wantBody   string
		wantCalls  int
	}{
		{"text", `{"number":"5491100","message":"hola"}`, nil, http.StatusOK, "sended", 1},
		{"with media", `{"number":"5491100","message":"hola","urlMedia":"https://x/y.png"}`, nil, http.StatusOK, "sended", 1},
		{"numeric number", `{"number":5491100,"message":"hola"}`, nil, http.StatusOK, "sended", 1},
		{"missing number", `{"message":"hola"}`, nil, http.StatusBadRequest, "Missing required fields: number", 0},
		{"missing both", `{}`, nil, http.StatusBadRequest, "Missing required fields: number, message", 0},
		{"not an object", `[1]`, nil, http.StatusBadRequest, "request body must be a JSON object", 0},
		{"dispatch failure", `{"number":"1","message":"hola"}`, apperrors.NewDispatchError("1", errors.New("down")),
			http.StatusInternalServerError, "internal server error", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDispatcher{err: tt.dispatch}
			h := NewHandlers(nil, nil, d)

			rec := do(t, h.BotRoutes(), http.MethodPost, "/v1/messages", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.Len(t, d.calls, tt.wantCalls)
		})
	}
}

func TestSendMessagePassesFields(t *testing.T) {
	d := &fakeDispatcher{}
	h := NewHandlers(nil, nil, d)

	rec := do(t, h.BotRoutes(), http.MethodPost, "/v1/messages",
		`{"number":" 5491100 ","message":"hola","urlMedia":"https://x/y.png"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Len(t, d.calls, 1)
	assert.Equal(t, [3]string{"5491100", "hola", "https://x/y.png"}, d.calls[0])
}

func TestSubmitAckDoesNotWaitForOpsNotification(t *testing.T) {
	release := make(chan struct{})
	botAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))

	tg := telegram.NewClient(&config.Config{
		TelegramBotToken: "test-token",
		TelegramChatID:   "-100123",
		TelegramAPIURL:   botAPI.URL,
		HTTPTimeout:      10 * time.Second,
	})
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "reclamo.json"))
	svc := intake.NewService(store, tg, nil)
	h := NewHandlers(svc, render.NewRenderer(store), tg)

	api := httptest.NewUnstartedServer(h.APIRoutes([]string{"*"}))
	api.Config = NewHTTPServer("0", api.Config.Handler)
	api.Start()

	t.Cleanup(svc.Wait)
	t.Cleanup(botAPI.Close)
	t.Cleanup(func() { close(release) })
	t.Cleanup(api.Close)

	body := `{"AccountNumber":"123","Phone":"555-0100","Category":"Billing","Type":"Commercial","Reference":"REF1","Description":"No power"}`
	client := &http.Client{Timeout: 5 * time.Second}

	start := time.Now()
	resp, err := client.Post(api.URL+"/complaints", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Less(t, time.Since(start), 2*time.Second)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ack intake.Ack
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	assert.Equal(t, intake.Ack{Status: "ok", Message: "complaint received"}, ack)

	all, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestPanicIsLoggedWithRequestID(t *testing.T) {
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "reclamo.json"))
	h := NewHandlers(panicIntaker{}, render.NewRenderer(store), &fakeDispatcher{})
	logs := captureLog(t)

	req := httptest.NewRequest(http.MethodPost, "/complaints", strings.NewReader(`{}`))
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.APIRoutes(nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))

	out := logs.String()
	assert.Contains(t, out, "[req-42] POST /complaints: panic: boom")
	assert.Contains(t, out, "POST /complaints 500")
}

func TestOversizedBodyIsRejected(t *testing.T) {
	api, store := newTestAPI(t)

	body := `{"AccountNumber":"` + strings.Repeat("9", maxBodyBytes) + `"}`
	rec := do(t, api, http.MethodPost, "/complaints", body)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "request body too large", decodeBody(t, rec)["error"])

	all, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	d := &fakeDispatcher{}
	rec = do(t, NewHandlers(nil, nil, d).BotRoutes(), http.MethodPost, "/v1/messages", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, d.calls)
}
