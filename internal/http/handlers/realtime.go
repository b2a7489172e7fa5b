package handlers

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/cbl-backend/internal/http/response"
	"github.com/yungbote/cbl-backend/internal/platform/ctxutil"
	"github.com/yungbote/cbl-backend/internal/platform/logger"
	"github.com/yungbote/cbl-backend/internal/realtime"
	"github.com/yungbote/cbl-backend/internal/services"
)

type RealtimeHandler struct {
	log      *logger.Logger
	hub      *realtime.SSEHub
	projects services.ProjectService

	mu      sync.RWMutex
	clients map[uuid.UUID]*realtime.SSEClient // key: session id
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub, projects services.ProjectService) *RealtimeHandler {
	return &RealtimeHandler{
		log:      log.With("handler", "RealtimeHandler"),
		hub:      hub,
		projects: projects,
		clients:  make(map[uuid.UUID]*realtime.SSEClient),
	}
}

// GET /api/sse/stream?project=<id>
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil || rd.SessionID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))
		return
	}
	var projectChannel string
	if raw := strings.TrimSpace(c.Query("project")); raw != "" {
		ch, ok := h.projectChannel(c, raw)
		if !ok {
			return
		}
		projectChannel = ch
	}

	h.mu.Lock()
	// one stream per session; a reconnect replaces the old client
	if existing, ok := h.clients[rd.SessionID]; ok {
		h.hub.CloseClient(existing)
	}
	client := h.hub.NewSSEClient(rd.UserID)
	h.clients[rd.SessionID] = client
	h.mu.Unlock()

	h.hub.AddChannel(client, realtime.UserChannel(rd.UserID))
	if projectChannel != "" {
		h.hub.AddChannel(client, projectChannel)
	}
	h.log.Info("SSE stream open", "user_id", rd.UserID, "session_id", rd.SessionID, "client_id", client.ID)

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.mu.Lock()
	if h.clients[rd.SessionID] == client {
		delete(h.clients, rd.SessionID)
	}
	h.mu.Unlock()
	h.hub.CloseClient(client)
}

// POST /api/sse/subscribe
// body: { "project_id": "<uuid>" }
func (h *RealtimeHandler) SSESubscribe(c *gin.Context) {
	h.changeSubscription(c, true)
}

// POST /api/sse/unsubscribe
func (h *RealtimeHandler) SSEUnsubscribe(c *gin.Context) {
	h.changeSubscription(c, false)
}

func (h *RealtimeHandler) changeSubscription(c *gin.Context, subscribe bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.SessionID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing session id"))
		return
	}
	var req struct {
		ProjectID string `json:"project_id"`
	}
	if !bindJSON(c, &req) {
		return
	}
	channel, ok := h.projectChannel(c, req.ProjectID)
	if !ok {
		return
	}

	h.mu.RLock()
	client, exists := h.clients[rd.SessionID]
	h.mu.RUnlock()
	if !exists {
		response.RespondError(c, http.StatusConflict, "no_stream", errors.New("no active SSE connection for this session"))
		return
	}
	if subscribe {
		h.hub.AddChannel(client, channel)
	} else {
		h.hub.RemoveChannel(client, channel)
	}
	response.RespondOK(c, gin.H{"channel": channel, "subscribed": subscribe})
}

// projectChannel resolves a project the caller owns to its channel name.
func (h *RealtimeHandler) projectChannel(c *gin.Context, raw string) (string, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return "", false
	}
	if _, err := h.projects.Get(c.Request.Context(), id); err != nil {
		response.RespondDomainError(c, err)
		return "", false
	}
	return realtime.ProjectChannel(id), true
}
