package handler

import (
	"net/http"

	"trainingforms/internal/service"
	"trainingforms/pkg/response"

	"github.com/gin-gonic/gin"
)

type LookupHandler struct {
	lookupService service.LookupService
}

func NewLookupHandler(lookupService service.LookupService) *LookupHandler {
	return &LookupHandler{lookupService: lookupService}
}

func (h *LookupHandler) RegisterRoutes(router *gin.RouterGroup) {
	lookups := router.Group("/api/lookups")
	{
		lookups.GET("/employees", h.Employees)
		lookups.GET("/training-catalog", h.Catalog)
	}
}

// Employees returns the directory entries for the trainer/trainee pickers
// @Summary      Employee lookup
// @Tags         lookups
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.EmployeeOption}
// @Router       /api/lookups/employees [get]
func (h *LookupHandler) Employees(c *gin.Context) {
	employees, err := h.lookupService.Employees(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, employees))
}

// Catalog returns the pre-approved course list
// @Summary      Training catalog lookup
// @Tags         lookups
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.CatalogOption}
// @Router       /api/lookups/training-catalog [get]
func (h *LookupHandler) Catalog(c *gin.Context) {
	catalog, err := h.lookupService.Catalog(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, catalog))
}
