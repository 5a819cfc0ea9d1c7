package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"chatter/internal/app"
	"chatter/internal/ratelimit"
	"chatter/internal/util"
)

// untitledConversation is the display title used when a conversation has
// no title of its own.
const untitledConversation = "Untitled Conversation"

// Config wires required dependencies for the HTTP server.
type Config struct {
	App                    *app.App
	TrustedProxies         *util.TrustedProxies
	RedisAddr              string
	RedisPassword          string
	SendRateLimitPerMinute int
}

// Server exposes the JSON API: conversation listing, message listing, and
// message sending. Each endpoint maps 1:1 onto a service-layer operation
// and adds no logic beyond decoding, field presence checks, and optional
// rate limiting on sends.
type Server struct {
	app            *app.App
	mux            *http.ServeMux
	trustedProxies *util.TrustedProxies
	sendLimiter    *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured. The send limiter is
// created only when a per-minute quota is configured; it then requires a
// Redis address.
func New(cfg Config) (*Server, error) {
	var sendLimiter *ratelimit.FixedWindowLimiter
	if cfg.SendRateLimitPerMinute > 0 {
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(
			cfg.RedisAddr, cfg.RedisPassword, "chatter:ratelimit:send",
			cfg.SendRateLimitPerMinute, time.Minute,
		)
		if err != nil {
			return nil, fmt.Errorf("init send limiter: %w", err)
		}
		sendLimiter = limiter
	}
	s := &Server{
		app:            cfg.App,
		mux:            http.NewServeMux(),
		trustedProxies: cfg.TrustedProxies,
		sendLimiter:    sendLimiter,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler with the middleware chain applied.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(util.WithRequestID(util.WithRequestLog("chatter", s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/api/conversations", s.handleConversations)
	s.mux.HandleFunc("/api/conversations/", s.handleConversationMessages)
	s.mux.HandleFunc("/api/messages", s.handleSendMessage)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type lastMessagePayload struct {
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	SenderID   int64     `json:"senderId"`
	AuthorName string    `json:"authorName"`
}

type conversationPayload struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	LastMessage lastMessagePayload `json:"lastMessage"`
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}
	summaries, err := s.app.ListConversations(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}
	payload := make([]conversationPayload, 0, len(summaries))
	for _, summary := range summaries {
		title := summary.Title
		if title == "" {
			title = untitledConversation
		}
		payload = append(payload, conversationPayload{
			ID:    strconv.FormatInt(summary.ConversationID, 10),
			Title: title,
			LastMessage: lastMessagePayload{
				Content:    summary.LastMessage.Content,
				CreatedAt:  summary.LastMessage.CreatedAt,
				SenderID:   summary.LastMessage.SenderID,
				AuthorName: summary.LastMessage.AuthorName,
			},
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

type messagePayload struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	SenderID  int64     `json:"senderId"`
	CreatedAt time.Time `json:"createdAt"`
}

// handleConversationMessages serves GET /api/conversations/{id}/messages.
func (s *Server) handleConversationMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/conversations/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[1] != "messages" {
		http.NotFound(w, r)
		return
	}
	conversationID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || conversationID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}
	messages, err := s.app.ListMessages(conversationID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	payload := make([]messagePayload, 0, len(messages))
	for _, msg := range messages {
		payload = append(payload, messagePayload{
			ID:        msg.ID,
			Content:   msg.Content,
			SenderID:  msg.SenderID,
			CreatedAt: msg.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

type sendMessageRequest struct {
	SenderID       int64  `json:"senderId"`
	ConversationID int64  `json:"conversationId"`
	Content        string `json:"content"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.sendLimiter != nil && !s.sendLimiter.Allow(util.ClientIP(r, s.trustedProxies)) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}
	var req sendMessageRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SenderID <= 0 {
		writeError(w, http.StatusBadRequest, "senderId is required")
		return
	}
	if req.ConversationID <= 0 {
		writeError(w, http.StatusBadRequest, "conversationId is required")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	msg, err := s.app.SendMessage(req.SenderID, req.ConversationID, req.Content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to send message")
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
