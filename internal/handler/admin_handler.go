package handler

import (
	"net/http"

	"trainingforms/internal/middleware"
	"trainingforms/internal/service"
	"trainingforms/pkg/pagination"
	"trainingforms/pkg/response"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService service.AdminService
	auditService service.AuditService
}

func NewAdminHandler(adminService service.AdminService, auditService service.AuditService) *AdminHandler {
	return &AdminHandler{adminService: adminService, auditService: auditService}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/me", h.Me)

	admins := router.Group("/api/admins", middleware.RequireAdmin())
	{
		admins.GET("", h.ListAdmins)
		admins.POST("", h.AddAdmin)
		admins.PUT("/:email/email-preference", h.SetEmailPreference)
	}

	router.GET("/api/audit-logs", middleware.RequireAdmin(), h.ListAuditLogs)
}

// Me returns the caller's identity as the server sees it
// @Summary      Current identity
// @Tags         admins
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/me [get]
func (h *AdminHandler) Me(c *gin.Context) {
	identity := currentIdentity(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"email":    identity.Email,
		"is_admin": identity.IsAdmin,
	}))
}

// ListAdmins returns the approver list
// @Summary      List admins
// @Tags         admins
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.AdminResponse}
// @Router       /api/admins [get]
func (h *AdminHandler) ListAdmins(c *gin.Context) {
	admins, err := h.adminService.ListAdmins(c.Request.Context(), currentIdentity(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, admins))
}

type addAdminRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AddAdmin grants approval rights to an email
// @Summary      Add admin
// @Tags         admins
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      addAdminRequest  true  "New Admin"
// @Success      201      {object}  response.Response{data=service.AdminResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/admins [post]
func (h *AdminHandler) AddAdmin(c *gin.Context) {
	var req addAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	admin, err := h.adminService.AddAdmin(c.Request.Context(), currentIdentity(c), req.Email, req.FirstName, req.LastName)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	middleware.ClearAdminCache(req.Email)
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, admin))
}

type emailPreferenceRequest struct {
	ReceiveEmails *bool `json:"receive_emails" binding:"required"`
}

// SetEmailPreference toggles notification delivery for an admin
// @Summary      Set email preference
// @Tags         admins
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        email    path      string                  true  "Admin email"
// @Param        payload  body      emailPreferenceRequest  true  "Preference"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/admins/{email}/email-preference [put]
func (h *AdminHandler) SetEmailPreference(c *gin.Context) {
	var req emailPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ReceiveEmails == nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	err := h.adminService.SetEmailPreference(c.Request.Context(), currentIdentity(c), c.Param("email"), *req.ReceiveEmails)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"email": c.Param("email"), "receive_emails": *req.ReceiveEmails}))
}

// ListAuditLogs returns the audit trail, newest first
// @Summary      List audit logs
// @Tags         admins
// @Security     BearerAuth
// @Produce      json
// @Param        page   query  int  false  "Page number (default 1)"
// @Param        limit  query  int  false  "Items per page (default 10)"
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/audit-logs [get]
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)
	logs, total, err := h.auditService.List(c.Request.Context(), currentIdentity(c), params.Page, params.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"logs":  logs,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}
