package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/cbl-backend/internal/domain/gamification"
	"github.com/yungbote/cbl-backend/internal/http/response"
	"github.com/yungbote/cbl-backend/internal/modules/badges"
	"github.com/yungbote/cbl-backend/internal/services"
)

type BadgeHandler struct {
	badges services.BadgeService
	art    services.BadgeArtService
}

func NewBadgeHandler(badgeService services.BadgeService, art services.BadgeArtService) *BadgeHandler {
	return &BadgeHandler{badges: badgeService, art: art}
}

// GET /api/badges?category=&rarity=
func (h *BadgeHandler) Catalog(c *gin.Context) {
	f := badges.Filter{
		Category: gamification.Category(strings.ToLower(c.Query("category"))),
		Rarity:   gamification.Rarity(strings.ToLower(c.Query("rarity"))),
	}
	if f.Category != "" && !f.Category.Valid() {
		response.RespondError(c, http.StatusBadRequest, "invalid_category", errors.New("unknown category"))
		return
	}
	if f.Rarity != "" && !f.Rarity.Valid() {
		response.RespondError(c, http.StatusBadRequest, "invalid_rarity", errors.New("unknown rarity"))
		return
	}
	response.RespondOK(c, gin.H{"badges": h.badges.Catalog(f)})
}

// GET /api/badges/:id/art.png
func (h *BadgeHandler) Art(c *gin.Context) {
	def, err := h.badges.Definition(c.Param("id"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	png, err := h.art.Render(def)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}

// GET /api/badges/:id/art-url
func (h *BadgeHandler) ArtURL(c *gin.Context) {
	def, err := h.badges.Definition(c.Param("id"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	url, err := h.art.PublicURL(c.Request.Context(), def)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if url == "" {
		url = "/api/badges/" + def.ID + "/art.png"
	}
	response.RespondOK(c, gin.H{"url": url})
}

// GET /api/me/badges
func (h *BadgeHandler) ListEarned(c *gin.Context) {
	earned, err := h.badges.ListEarned(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"badges": earned})
}

// GET /api/me/badges/stats
func (h *BadgeHandler) Stats(c *gin.Context) {
	st, err := h.badges.Stats(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"stats": st})
}

// GET /api/me/badges/:id/can-earn
func (h *BadgeHandler) CanEarn(c *gin.Context) {
	ok, err := h.badges.CanEarn(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"badge_id": c.Param("id"), "can_earn": ok})
}

// POST /api/me/badges/:id/grant
func (h *BadgeHandler) Grant(c *gin.Context) {
	b, granted, err := h.badges.Grant(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"badge": b, "granted": granted})
}

// POST /api/triggers
// body: { "name": "questions_answered_5", "context": { "questions_answered": 5 } }
func (h *BadgeHandler) CheckTrigger(c *gin.Context) {
	var req struct {
		Name    string         `json:"name"`
		Context badges.Context `json:"context"`
	}
	if !bindJSON(c, &req) {
		return
	}
	earned, err := h.badges.CheckTrigger(c.Request.Context(), req.Name, req.Context)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"new_badges": earned})
}

// GET /api/me/notifications
func (h *BadgeHandler) Notifications(c *gin.Context) {
	pending, err := h.badges.Notifications(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"notifications": pending})
}

// POST /api/me/notifications/dismiss
// body: { "id": "<uuid>" } or empty to dismiss the oldest
func (h *BadgeHandler) Dismiss(c *gin.Context) {
	var req struct {
		ID uuid.UUID `json:"id"`
	}
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	n, err := h.badges.Dismiss(c.Request.Context(), req.ID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"notification": n})
}
