package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/regmesh/agent"
	"github.com/hupe1980/regmesh/core"
	"github.com/hupe1980/regmesh/engine"
)

type scriptedClient struct {
	events []core.StreamEvent
}

func (s *scriptedClient) StreamChat(ctx context.Context, _ []core.Message, _ core.ChatOptions) (<-chan core.StreamEvent, error) {
	out := make(chan core.StreamEvent, len(s.events))
	for _, ev := range s.events {
		out <- ev
	}
	close(out)
	return out, nil
}

func (s *scriptedClient) Chat(ctx context.Context, messages []core.Message, opts core.ChatOptions) (string, error) {
	events, err := s.StreamChat(ctx, messages, opts)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for ev := range events {
		if ev.Type == core.StreamText {
			b.WriteString(ev.Text)
		}
	}
	return b.String(), nil
}

func newTestServer(events []core.StreamEvent) *Server {
	eng := engine.New(func(o *engine.Options) {
		o.Agent = agent.NewLLMAgent("general-regulatory")
		o.Router = &scriptedClient{events: events}
	})
	return New(eng)
}

func TestHandleChat(t *testing.T) {
	srv := newTestServer([]core.StreamEvent{
		{Type: core.StreamText, Text: "The standard rate applies."},
		{Type: core.StreamDone},
	})

	body := `{"messages":[{"role":"user","text":"What VAT rate applies?"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp engine.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "general-regulatory", resp.AgentID)
	assert.Equal(t, "The standard rate applies.", resp.Answer)
	assert.NotEmpty(t, resp.Disclaimer)
}

func TestHandleChatValidationError(t *testing.T) {
	srv := newTestServer(nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"messages":[]}`))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid turn request")
}

func TestHandleChatMalformedBody(t *testing.T) {
	srv := newTestServer(nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChatStreamSSE(t *testing.T) {
	srv := newTestServer([]core.StreamEvent{
		{Type: core.StreamText, Text: "Hello "},
		{Type: core.StreamText, Text: "world."},
		{Type: core.StreamDone},
	})

	body := `{"messages":[{"role":"user","text":"hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/stream", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := parseSSE(t, rec.Body.String())
	require.GreaterOrEqual(t, len(events), 4)
	assert.Equal(t, "metadata", events[0].name)
	assert.Equal(t, "text", events[1].name)
	assert.Equal(t, "text", events[2].name)
	assert.Equal(t, "done", events[len(events)-1].name)

	var text core.TextChunk
	require.NoError(t, json.Unmarshal([]byte(events[1].data), &text))
	assert.Equal(t, "Hello ", text.Delta)
}

func TestHandleChatStreamError(t *testing.T) {
	srv := newTestServer([]core.StreamEvent{
		{Type: core.StreamText, Text: "Partial "},
		{Type: core.StreamError, Err: "provider timeout"},
	})

	body := `{"messages":[{"role":"user","text":"hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/stream", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	events := parseSSE(t, rec.Body.String())
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, "error", last.name)
	assert.Contains(t, last.data, "provider timeout")
}

func TestHandleChatStreamValidation(t *testing.T) {
	srv := newTestServer(nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/stream", strings.NewReader(`{"messages":[]}`))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	// Validation failures still arrive as a protocol error event: the SSE
	// response has already been committed.
	events := parseSSE(t, rec.Body.String())
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0].name)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

type sseEvent struct {
	name string
	data string
}

func parseSSE(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	var current sseEvent
	for _, line := range strings.Split(body, "\n") {
		switch {
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if current.name != "" {
				events = append(events, current)
				current = sseEvent{}
			}
		}
	}
	return events
}
