package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/cbl-backend/internal/http/response"
	"github.com/yungbote/cbl-backend/internal/platform/dbctx"
	"github.com/yungbote/cbl-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// PATCH /api/me/name
// body: { "first_name": "...", "last_name": "..." }
func (uh *UserHandler) ChangeName(c *gin.Context) {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if !bindJSON(c, &req) {
		return
	}
	u, err := uh.userService.UpdateName(c.Request.Context(), req.FirstName, req.LastName)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": u})
}

// PATCH /api/me/theme
// body: { "preferred_theme": "light|dark|system" }
func (uh *UserHandler) ChangeTheme(c *gin.Context) {
	var req struct {
		PreferredTheme string `json:"preferred_theme"`
	}
	if !bindJSON(c, &req) {
		return
	}
	u, err := uh.userService.UpdatePreferredTheme(c.Request.Context(), req.PreferredTheme)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": u})
}
