// Package server exposes the compliance engine over HTTP: a blocking JSON
// chat endpoint and an SSE endpoint that frames the engine's chunk
// protocol onto the wire. The engine itself never sees any of this; it
// only produces the typed chunk sequence.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hupe1980/regmesh/core"
	"github.com/hupe1980/regmesh/engine"
	"github.com/hupe1980/regmesh/logging"
)

// Options configure the HTTP server.
type Options struct {
	AllowedOrigins []string
	Logger         logging.Logger
}

// Server routes chat requests into the engine.
type Server struct {
	engine *engine.Engine
	opts   Options
}

// New creates a Server over the given engine.
func New(e *engine.Engine, optFns ...func(o *Options)) *Server {
	opts := Options{
		AllowedOrigins: []string{"*"},
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Server{engine: e, opts: opts}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Post("/v1/chat", s.handleChat)
	r.Post("/v1/chat/stream", s.handleChatStream)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}

// handleChat serves the blocking form.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req core.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decoding request: %v", err))
		return
	}

	resp, err := s.engine.HandleChat(r.Context(), req)
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		s.opts.Logger.Error("chat.failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "turn failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleChatStream serves the streaming form over SSE. Each chunk becomes
// one event whose name is the chunk case; client disconnects cancel the
// turn through the request context.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req core.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decoding request: %v", err))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for chunk := range s.engine.HandleChatStream(r.Context(), req) {
		name, payload, err := encodeChunk(chunk)
		if err != nil {
			s.opts.Logger.Error("chat.stream.encode_failed", "error", err.Error())
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)
		flusher.Flush()
	}
}

// encodeChunk maps a chunk onto its SSE event name and JSON payload.
func encodeChunk(chunk core.Chunk) (string, []byte, error) {
	var name string
	switch chunk.(type) {
	case core.MetadataChunk:
		name = "metadata"
	case core.TextChunk:
		name = "text"
	case core.DoneChunk:
		name = "done"
	case core.ErrorChunk:
		name = "error"
	default:
		return "", nil, fmt.Errorf("unknown chunk type %T", chunk)
	}
	payload, err := json.Marshal(chunk)
	if err != nil {
		return "", nil, err
	}
	return name, payload, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
