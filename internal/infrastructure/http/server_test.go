package http

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hansgunawan/portfolio/internal/adapters/loader"
	"github.com/hansgunawan/portfolio/internal/domain/entities"
	"github.com/hansgunawan/portfolio/internal/domain/ports"
	"github.com/hansgunawan/portfolio/internal/domain/usecases"
	"github.com/hansgunawan/portfolio/internal/infrastructure/transport"
)

type fakeProvider struct {
	mu     sync.Mutex
	chunks []string
	err    error
	calls  int
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) StreamChat(ctx context.Context, conv entities.Conversation) (<-chan ports.StreamToken, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	ch := make(chan ports.StreamToken, len(p.chunks)+1)
	for _, c := range p.chunks {
		ch <- ports.StreamToken{Content: c}
	}
	ch <- ports.StreamToken{Done: true}
	close(ch)
	return ch, nil
}

type countingSource struct {
	ports.ContextSource
	calls int
}

func (s *countingSource) Context(ctx context.Context) (string, error) {
	s.calls++
	return s.ContextSource.Context(ctx)
}

type fakeMailer struct{ err error }

func (m *fakeMailer) Send(ctx context.Context, msg entities.ContactMessage) error { return m.err }

func newTestServer(provider *fakeProvider, mailer ports.Mailer) (*Server, *countingSource) {
	assembler := usecases.NewContextAssembler(loader.NewTextLoader(""), usecases.ContextSources{}, usecases.Profile{Name: "Hans Gunawan"})
	source := &countingSource{ContextSource: assembler}
	services := transport.Services{
		Relay:   usecases.NewChatRelay(source, nil, provider, 0),
		Context: source,
		Contact: usecases.NewContactService(nil, mailer),
	}
	return NewServer(services, Options{Addr: ":0"}), source
}

func readEvents(t *testing.T, body string) []map[string]any {
	t.Helper()
	var events []map[string]any
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev map[string]any
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("bad frame %q: %v", line, err)
		}
		events = append(events, ev)
	}
	return events
}

func TestChat_StreamsSSE(t *testing.T) {
	provider := &fakeProvider{chunks: []string{"Hans ", "adalah mahasiswa ", "UKDW."}}
	srv, _ := newTestServer(provider, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"Siapa Hans?","history":[]}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("unexpected content type: %s", ct)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}

	events := readEvents(t, rec.Body.String())
	if len(events) != 4 {
		t.Fatalf("expected 3 chunks and done, got %v", events)
	}
	var text string
	for _, ev := range events[:3] {
		text += ev["chunk"].(string)
	}
	if text != "Hans adalah mahasiswa UKDW." {
		t.Errorf("unexpected text: %q", text)
	}
	if events[3]["done"] != true {
		t.Errorf("last event should be done: %v", events[3])
	}
}

func TestChat_ProviderErrorInBand(t *testing.T) {
	provider := &fakeProvider{err: errors.New("GEMINI_API_KEY is not configured")}
	srv, _ := newTestServer(provider, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	events := readEvents(t, rec.Body.String())
	if len(events) != 1 || events[0]["error"] != "GEMINI_API_KEY is not configured" {
		t.Errorf("expected one error event, got %v", events)
	}
}

func TestChat_MethodNotAllowed(t *testing.T) {
	provider := &fakeProvider{}
	srv, source := newTestServer(provider, nil)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(method, "/api/chat", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: expected 405, got %d", method, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"error":"Method not allowed"`) {
			t.Errorf("%s: unexpected body %s", method, rec.Body.String())
		}
	}
	if provider.calls != 0 || source.calls != 0 {
		t.Error("rejected methods must not touch context or provider")
	}
}

func TestChat_BadRequests(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`not json`, "Invalid request body"},
		{``, "Message is required"},
		{`{"message":""}`, "Message is required"},
		{`{"message":"   "}`, "Message is required"},
		{`{}`, "Message is required"},
	}

	for _, tt := range tests {
		provider := &fakeProvider{}
		srv, _ := newTestServer(provider, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(tt.body)))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tt.body, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), tt.want) {
			t.Errorf("%s: unexpected body %s", tt.body, rec.Body.String())
		}
		if provider.calls != 0 {
			t.Errorf("%s: provider should not be contacted", tt.body)
		}
	}
}

func TestOptionsPreflight(t *testing.T) {
	srv, _ := newTestServer(&fakeProvider{}, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/chat", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("missing CORS methods")
	}
}

func TestContext_ReturnsDocument(t *testing.T) {
	srv, _ := newTestServer(&fakeProvider{}, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/context", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp transport.ContextResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !strings.Contains(resp.Context, "Hans Gunawan") {
		t.Errorf("context should mention Hans Gunawan: %q", resp.Context)
	}
}

func TestContext_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(&fakeProvider{}, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/context", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestContact(t *testing.T) {
	valid := `{"name":"Jane Doe","email":"jane@example.com","message":"Hello, I'd like to talk about a project."}`

	tests := []struct {
		name   string
		body   string
		mailer ports.Mailer
		status int
		want   string
	}{
		{"accepted", valid, &fakeMailer{}, 200, "Thank you for your message!"},
		{"invalid", `{"name":"","email":"x","message":"short"}`, &fakeMailer{}, 400, "Validation failed"},
		{"delivery failure", valid, &fakeMailer{err: errors.New("smtp down")}, 500, "Failed to send message"},
		{"bad json", `{`, &fakeMailer{}, 400, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(&fakeProvider{}, tt.mailer)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(tt.body)))

			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("unexpected body: %s", rec.Body.String())
			}
		})
	}
}

func TestContact_ValidationErrorsListed(t *testing.T) {
	srv, _ := newTestServer(&fakeProvider{}, &fakeMailer{})
	rec := httptest.NewRecorder()
	body := `{"name":"Jane","email":"bad","message":"Hello there, friend"}`
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body)))

	var resp transport.ContactResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Success || len(resp.Errors) != 1 || resp.Errors[0].Field != "email" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestContact_MalformedBody(t *testing.T) {
	bodies := []string{
		``,
		`not json`,
		`{"name":123,"email":"jane@example.com","message":"Hello, I would like to collaborate."}`,
	}

	for _, body := range bodies {
		srv, _ := newTestServer(&fakeProvider{}, &fakeMailer{})
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body)))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%q: expected 400, got %d", body, rec.Code)
		}
		var resp map[string]any
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp["success"] != false || resp["message"] != transport.MsgContactInvalid {
			t.Errorf("%q: unexpected body %s", body, rec.Body.String())
		}
		if errs, _ := resp["errors"].([]any); len(errs) != 1 {
			t.Errorf("%q: expected one error, got %v", body, resp["errors"])
		}
	}
}

// slowProvider spaces its chunks out by delay.
type slowProvider struct {
	chunks int
	delay  time.Duration
}

func (p *slowProvider) Name() string { return "slow" }

func (p *slowProvider) StreamChat(ctx context.Context, conv entities.Conversation) (<-chan ports.StreamToken, error) {
	ch := make(chan ports.StreamToken)
	go func() {
		defer close(ch)
		for i := 0; i < p.chunks; i++ {
			select {
			case <-time.After(p.delay):
			case <-ctx.Done():
				return
			}
			select {
			case ch <- ports.StreamToken{Content: "x"}:
			case <-ctx.Done():
				return
			}
		}
		ch <- ports.StreamToken{Done: true}
	}()
	return ch, nil
}

// Chunk gaps and the whole stream both exceed the write timeout.
func TestChat_StreamOutlivesWriteTimeout(t *testing.T) {
	assembler := usecases.NewContextAssembler(loader.NewTextLoader(""), usecases.ContextSources{}, usecases.Profile{Name: "Hans Gunawan"})
	services := transport.Services{
		Relay:   usecases.NewChatRelay(assembler, nil, &slowProvider{chunks: 5, delay: 60 * time.Millisecond}, 0),
		Context: assembler,
		Contact: usecases.NewContactService(nil, nil),
	}
	srv := NewServer(services, Options{WriteTimeout: 50 * time.Millisecond})

	ts := httptest.NewUnstartedServer(nil)
	ts.Config = srv.httpServer()
	ts.Start()
	defer ts.Close()

	if ts.Config.WriteTimeout != 0 {
		t.Fatalf("server-wide write timeout set: %v", ts.Config.WriteTimeout)
	}

	resp, err := http.Post(ts.URL+"/api/chat", "application/json", strings.NewReader(`{"message":"Siapa Hans?"}`))
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("stream cut off: %v", err)
	}

	events := readEvents(t, string(data))
	if len(events) != 6 || events[5]["done"] != true {
		t.Errorf("expected 5 chunks then done, got %v", events)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(&fakeProvider{}, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp transport.HealthResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Status != "ok" || resp.Provider != "fake" {
		t.Errorf("unexpected health: %+v", resp)
	}
}
