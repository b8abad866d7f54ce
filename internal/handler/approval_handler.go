package handler

import (
	"net/http"

	"trainingforms/internal/middleware"
	"trainingforms/internal/service"
	"trainingforms/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	forms := router.Group("/api/forms")
	{
		forms.PUT("/:id/approve", middleware.RequireAdmin(), h.Approve)
		forms.PUT("/:id/unapprove", middleware.RequireAdmin(), h.Unapprove)
		forms.DELETE("/:id", h.SoftDelete)
		forms.POST("/:id/recover", middleware.RequireAdmin(), h.Recover)
	}
}

func (h *ApprovalHandler) formID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid form id"))
		return uuid.Nil, false
	}
	return id, true
}

// Approve marks a form approved
// @Summary      Approve form
// @Description  Approves a form; rejected while the form still carries values flagged for review
// @Tags         approvals
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Form ID"
// @Success      200  {object}  response.Response{data=service.FormResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/forms/{id}/approve [put]
func (h *ApprovalHandler) Approve(c *gin.Context) {
	id, ok := h.formID(c)
	if !ok {
		return
	}
	updated, err := h.approvalService.SetApproval(c.Request.Context(), currentIdentity(c), id, true)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

// Unapprove clears a form's approval
// @Summary      Unapprove form
// @Tags         approvals
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Form ID"
// @Success      200  {object}  response.Response{data=service.FormResponse}
// @Router       /api/forms/{id}/unapprove [put]
func (h *ApprovalHandler) Unapprove(c *gin.Context) {
	id, ok := h.formID(c)
	if !ok {
		return
	}
	updated, err := h.approvalService.SetApproval(c.Request.Context(), currentIdentity(c), id, false)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

// SoftDelete hides a form without destroying it
// @Summary      Soft delete form
// @Description  Marks the form deleted and clears approval; the submitter or an admin may do this
// @Tags         approvals
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Form ID"
// @Success      200  {object}  response.Response{data=service.FormResponse}
// @Failure      403  {object}  response.Response
// @Router       /api/forms/{id} [delete]
func (h *ApprovalHandler) SoftDelete(c *gin.Context) {
	id, ok := h.formID(c)
	if !ok {
		return
	}
	updated, err := h.approvalService.SoftDelete(c.Request.Context(), currentIdentity(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

// Recover restores a soft-deleted form
// @Summary      Recover form
// @Description  Clears the deletion marker; the form returns unapproved
// @Tags         approvals
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Form ID"
// @Success      200  {object}  response.Response{data=service.FormResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/forms/{id}/recover [post]
func (h *ApprovalHandler) Recover(c *gin.Context) {
	id, ok := h.formID(c)
	if !ok {
		return
	}
	updated, err := h.approvalService.Recover(c.Request.Context(), currentIdentity(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}
