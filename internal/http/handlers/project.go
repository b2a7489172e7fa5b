package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cbl-backend/internal/http/response"
	"github.com/yungbote/cbl-backend/internal/services"
)

type ProjectHandler struct {
	projects services.ProjectService
}

func NewProjectHandler(projects services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.ProjectInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.projects.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"project": p})
}

// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	list, err := h.projects.List(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"projects": list})
}

// GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	p, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"project": p})
}

// PATCH /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req services.ProjectInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.projects.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"project": p})
}

// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.projects.Delete(c.Request.Context(), id); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /api/projects/:id/fields/:field
// body: { "value": <field payload> }
func (h *ProjectHandler) SaveField(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Value json.RawMessage `json:"value"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if len(req.Value) == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("value is required"))
		return
	}
	res, err := h.projects.SaveField(c.Request.Context(), id, c.Param("field"), req.Value)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/projects/:id/checklist
// body: { "text": "..." }
func (h *ProjectHandler) AddChecklistItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.projects.AddChecklistItem(c.Request.Context(), id, req.Text)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// PATCH /api/projects/:id/checklist/:itemId
// body: { "done": true } or empty to toggle
func (h *ProjectHandler) ToggleChecklistItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Done *bool `json:"done"`
	}
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	res, err := h.projects.ToggleChecklistItem(c.Request.Context(), id, c.Param("itemId"), req.Done)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/projects/:id/progress
func (h *ProjectHandler) Progress(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	report, err := h.projects.Progress(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": report})
}

// POST /api/projects/:id/navigate
// body: { "phase": "engage|investigate|act" }
func (h *ProjectHandler) Navigate(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Phase string `json:"phase"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.projects.Navigate(c.Request.Context(), id, req.Phase)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/projects/:id/phases/:phase/complete
func (h *ProjectHandler) CompletePhase(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.projects.CompletePhase(c.Request.Context(), id, c.Param("phase"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/projects/:id/badges/sync
func (h *ProjectHandler) SyncBadges(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	earned, err := h.projects.SyncBadges(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"new_badges": earned})
}

// POST /api/projects/:id/nudges?seed=...
func (h *ProjectHandler) Nudge(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.projects.Nudge(c.Request.Context(), id, c.Query("seed"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/projects/:id/dashboard
func (h *ProjectHandler) Dashboard(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	d, err := h.projects.Dashboard(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, d)
}
