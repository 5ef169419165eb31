// Package server exposes the inbound conversation endpoint over HTTP:
// POST /chat carries one user message plus the opaque credential, and the
// reply comes back with an optional candidate list for the client to render.
package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/moadev/moabot/common/trace"
	"github.com/moadev/moabot/common/version"
	"github.com/moadev/moabot/internal/moabot/conversation"
)

const maxBodyBytes = 64 << 10

// Server handles the chat HTTP routes.
type Server struct {
	controller *conversation.Controller
	log        *slog.Logger
}

// New creates the HTTP server around the conversation controller.
func New(controller *conversation.Controller, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{controller: controller, log: log}
}

// Register attaches the routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/healthz", s.handleHealthz)
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	auth := r.Header.Get("Authorization")
	ctx := trace.WithTraceID(r.Context(), trace.GenerateID())

	resp, err := s.controller.Handle(ctx, conversation.Request{
		Identity: identityKey(auth),
		Auth:     auth,
		Message:  req.Message,
	})
	if err != nil {
		s.log.Error("conversation turn failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("encode chat response", "error", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"version": version.Version,
		"commit":  version.GitCommit,
	})
}

// identityKey partitions session state by credential. The raw token never
// becomes a map key or an audit row; a digest prefix is enough to tell
// identities apart.
func identityKey(auth string) string {
	if auth == "" {
		return "anonymous"
	}
	sum := sha256.Sum256([]byte(auth))
	return "id_" + hex.EncodeToString(sum[:8])
}
