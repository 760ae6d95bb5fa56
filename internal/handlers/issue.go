package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/taskflow/backend/internal/middleware"
	"github.com/huangang/taskflow/backend/internal/services"
	"github.com/huangang/taskflow/backend/pkg/response"
)

type IssueHandler struct {
	issueService *services.IssueService
}

func NewIssueHandler(issueService *services.IssueService) *IssueHandler {
	return &IssueHandler{issueService: issueService}
}

// List returns the issues of one task
// GET /api/issues?taskId=
func (h *IssueHandler) List(c *gin.Context) {
	taskID := c.Query("taskId")
	if taskID == "" {
		response.BadRequest(c, "taskId is required")
		return
	}

	issues, err := h.issueService.List(c.Request.Context(), taskID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, issues)
}

// GET /api/issues/:id
func (h *IssueHandler) GetByID(c *gin.Context) {
	issue, err := h.issueService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, issue)
}

// Create reports an issue against a task
// POST /api/issues
func (h *IssueHandler) Create(c *gin.Context) {
	var req services.CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	issue, err := h.issueService.Create(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, issue)
}

// Resolve changes the status of an issue
// PATCH /api/issues/:id/resolve
func (h *IssueHandler) Resolve(c *gin.Context) {
	var req services.ResolveIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	issue, err := h.issueService.Resolve(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, issue)
}

// DELETE /api/issues/:id
func (h *IssueHandler) Delete(c *gin.Context) {
	if err := h.issueService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "issue deleted successfully"})
}
