package handler

import (
	"net/http"

	"trainingforms/internal/middleware"
	"trainingforms/internal/service"
	"trainingforms/pkg/response"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	exportService service.ExportService
}

func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

func (h *ExportHandler) RegisterRoutes(router *gin.RouterGroup) {
	export := router.Group("/api/export", middleware.RequireAdmin())
	{
		export.GET("/claim5/options", h.Options)
		export.POST("/claim5", h.Export)
	}
}

// Options returns the quarters and date range covering approved forms
// @Summary      Export filter options
// @Tags         export
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.ExportOptions}
// @Router       /api/export/claim5/options [get]
func (h *ExportHandler) Options(c *gin.Context) {
	options, err := h.exportService.Options(c.Request.Context(), currentIdentity(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, options))
}

// Export builds and streams the claim spreadsheet
// @Summary      Export approved forms
// @Description  Builds the claim workbook from approved forms matching the selected quarters or date range
// @Tags         export
// @Security     BearerAuth
// @Accept       json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        payload  body      service.ExportFilter  true  "Export Filter"
// @Success      200      {file}    file
// @Failure      404      {object}  response.Response
// @Router       /api/export/claim5 [post]
func (h *ExportHandler) Export(c *gin.Context) {
	var filter service.ExportFilter
	if err := c.ShouldBindJSON(&filter); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	payload, err := h.exportService.ExportClaim5(c.Request.Context(), currentIdentity(c), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+service.Claim5Filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", payload)
}
