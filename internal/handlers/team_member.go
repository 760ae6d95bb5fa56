package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/taskflow/backend/internal/services"
	"github.com/huangang/taskflow/backend/pkg/response"
)

type TeamMemberHandler struct {
	memberService *services.TeamMemberService
}

func NewTeamMemberHandler(memberService *services.TeamMemberService) *TeamMemberHandler {
	return &TeamMemberHandler{memberService: memberService}
}

// List returns members, optionally filtered by status
// GET /api/team-members?status=
func (h *TeamMemberHandler) List(c *gin.Context) {
	members, err := h.memberService.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, members)
}

// GetByID returns a member with assigned tasks and created projects
// GET /api/team-members/:id
func (h *TeamMemberHandler) GetByID(c *gin.Context) {
	member, err := h.memberService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, member)
}

// POST /api/team-members
func (h *TeamMemberHandler) Create(c *gin.Context) {
	var req services.CreateTeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.Create(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, member)
}

// PATCH /api/team-members/:id/status
func (h *TeamMemberHandler) UpdateStatus(c *gin.Context) {
	var req services.UpdateMemberStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.UpdateStatus(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, member)
}

// DELETE /api/team-members/:id
func (h *TeamMemberHandler) Delete(c *gin.Context) {
	if err := h.memberService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "team member deleted successfully"})
}
