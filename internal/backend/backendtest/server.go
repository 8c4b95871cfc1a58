// Package backendtest provides an in-process fake of the chat backend for
// tests. It serves the same routes as the real service.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/longkey1/ragchat/internal/backend"
)

// Server is a fake chat backend.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	// History is served per session id.
	History map[string][]backend.HistoryRecord
	// HistoryStatus forces a status code on GET /chat/history when non-zero.
	HistoryStatus int

	// Chunks are written and flushed one by one as the chat answer.
	Chunks [][]byte
	// ChatStatus forces a status code on POST /chat when non-zero.
	ChatStatus int
	// AbortAfter drops the connection after that many chunks when >= 0.
	AbortAfter int
	// Hold, when set, keeps the answer open after the last chunk until it
	// is closed or the client goes away.
	Hold chan struct{}

	// DeleteStatus forces a status code on DELETE /chat/session/{id} when non-zero.
	DeleteStatus int
	// DeleteError is returned as {"error": ...} with DeleteStatus.
	DeleteError string

	requests []backend.ChatRequest
	deleted  []string
}

// NewServer starts a fake backend. It is closed when the test ends.
func NewServer(t interface {
	Cleanup(func())
}) *Server {
	s := &Server{
		History:    map[string][]backend.HistoryRecord{},
		AbortAfter: -1,
	}

	r := chi.NewRouter()
	r.Get("/chat/history", s.handleHistory)
	r.Post("/chat", s.handleChat)
	r.Delete("/chat/session/{id}", s.handleDelete)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// ChatRequests returns the chat requests received so far.
func (s *Server) ChatRequests() []backend.ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]backend.ChatRequest(nil), s.requests...)
}

// Deleted returns the session ids the client asked to delete.
func (s *Server) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status := s.HistoryStatus
	history := s.History[r.URL.Query().Get("sessionId")]
	s.mu.Unlock()

	if status != 0 {
		writeJSON(w, status, backend.ErrorResponse{Error: http.StatusText(status)})
		return
	}
	if history == nil {
		history = []backend.HistoryRecord{}
	}
	writeJSON(w, http.StatusOK, backend.HistoryResponse{History: history})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req backend.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, backend.ErrorResponse{Error: "invalid request body"})
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	status := s.ChatStatus
	chunks := s.Chunks
	abortAfter := s.AbortAfter
	hold := s.Hold
	s.mu.Unlock()

	if status != 0 {
		writeJSON(w, status, backend.ErrorResponse{Error: http.StatusText(status)})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	for i, chunk := range chunks {
		if abortAfter >= 0 && i == abortAfter {
			panic(http.ErrAbortHandler)
		}
		_, _ = w.Write(chunk)
		if flusher != nil {
			flusher.Flush()
		}
	}
	if abortAfter >= 0 && abortAfter >= len(chunks) {
		panic(http.ErrAbortHandler)
	}
	if hold != nil {
		select {
		case <-hold:
		case <-r.Context().Done():
		}
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	s.deleted = append(s.deleted, id)
	status := s.DeleteStatus
	message := s.DeleteError
	s.mu.Unlock()

	if status != 0 {
		writeJSON(w, status, backend.ErrorResponse{Error: message})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "session deleted"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
