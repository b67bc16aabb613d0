package chatbot

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/wolfman30/dental-ai-assistant/internal/http/middleware"
	"github.com/wolfman30/dental-ai-assistant/pkg/logging"
)

// SessionHeader carries the chat session id on HTTP responses.
const SessionHeader = "X-Chat-Session"

const (
	maxMessageBytes = 16 << 10
	historyLimit    = 50
)

// MessageRequest is the body of POST /chatbot/message and of each WebSocket frame.
type MessageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// Transcript records and replays chat sessions.
type Transcript interface {
	Append(ctx context.Context, sessionID string, entry TranscriptEntry) error
	List(ctx context.Context, sessionID string, limit int64) ([]TranscriptEntry, error)
}

// Handler exposes the chatbot over HTTP and WebSocket.
type Handler struct {
	service    *Service
	transcript Transcript
	logger     *logging.Logger
}

// NewHandler creates a chatbot handler. transcript may be nil.
func NewHandler(service *Service, transcript Transcript, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if ts, ok := transcript.(*TranscriptStore); ok && ts == nil {
		transcript = nil
	}
	return &Handler{
		service:    service,
		transcript: transcript,
		logger:     logger.Component("chatbot_http"),
	}
}

// HandleMessage answers POST /chatbot/message.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	resp := h.exchange(r.Context(), sessionID, req.Message)
	w.Header().Set(SessionHeader, sessionID)
	writeJSON(w, http.StatusOK, resp)
}

// HandleHelp answers GET /chatbot/help.
func (h *Handler) HandleHelp(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ProcessMessage(r.Context(), "help"))
}

// HandleHistory answers GET /chatbot/history?session_id=...&limit=...
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if h.transcript == nil {
		writeJSON(w, http.StatusOK, []TranscriptEntry{})
		return
	}
	limit := int64(historyLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}
	entries, err := h.transcript.List(r.Context(), sessionID, limit)
	if err != nil {
		h.logger.Error("failed to load chat history", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleWebSocket upgrades GET /chatbot/ws. Each inbound MessageRequest frame
// is answered with one Response frame.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	h.logger.Info("chatbot: websocket opened", "session_id", sessionID)

	for {
		var req MessageRequest
		if err := websocket.JSON.Receive(conn, &req); err != nil {
			h.logger.Debug("chatbot: websocket closed", "session_id", sessionID, "error", err)
			return
		}
		resp := h.exchange(r.Context(), sessionID, req.Message)
		if err := websocket.JSON.Send(conn, resp); err != nil {
			h.logger.Warn("chatbot: websocket send failed", "session_id", sessionID, "error", err)
			return
		}
	}
}

// exchange answers one message and records both sides of it.
func (h *Handler) exchange(ctx context.Context, sessionID, message string) *Response {
	h.record(ctx, sessionID, TranscriptEntry{Role: "user", Text: message})
	resp := h.service.ProcessMessage(ctx, message)
	h.record(ctx, sessionID, TranscriptEntry{Role: "assistant", Text: resp.Message, ResponseType: resp.Type()})
	return resp
}

func (h *Handler) record(ctx context.Context, sessionID string, entry TranscriptEntry) {
	if h.transcript == nil {
		return
	}
	entry.ID = uuid.NewString()
	entry.Timestamp = time.Now().UTC()
	if claims, ok := middleware.StaffClaimsFromContext(ctx); ok {
		entry.Staff = claims.Subject
	}
	if err := h.transcript.Append(ctx, sessionID, entry); err != nil {
		h.logger.Warn("failed to record chat transcript", "session_id", sessionID, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
