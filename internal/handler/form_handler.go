package handler

import (
	"net/http"
	"time"

	"trainingforms/internal/form"
	"trainingforms/internal/middleware"
	"trainingforms/internal/repository"
	"trainingforms/internal/service"
	"trainingforms/pkg/pagination"
	"trainingforms/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FormHandler struct {
	formService service.FormService
}

func NewFormHandler(formService service.FormService) *FormHandler {
	return &FormHandler{formService: formService}
}

func (h *FormHandler) RegisterRoutes(router *gin.RouterGroup) {
	forms := router.Group("/api/forms")
	{
		forms.POST("", h.SubmitForm)
		forms.GET("", h.ListForms)
		forms.GET("/:id", h.GetForm)
		forms.PUT("/:id", h.EditForm)
		forms.POST("/:id/attachments", h.UploadAttachment)
		forms.GET("/:id/attachments", h.ListAttachments)
		forms.GET("/:id/attachments/:filename", h.DownloadAttachment)
	}
}

// SubmitForm creates a training form from a submitted draft
// @Summary      Submit training form
// @Description  Validates the draft and persists the form with its trainees and expenses
// @Tags         forms
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      form.FormDraft  true  "Form Draft"
// @Success      201      {object}  response.Response{data=service.FormResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/forms [post]
func (h *FormHandler) SubmitForm(c *gin.Context) {
	var draft form.FormDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	submitter := c.GetString(middleware.ContextUserEmail)
	created, err := h.formService.SubmitForm(c.Request.Context(), submitter, draft)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, created))
}

// ListForms returns a filtered, paginated form listing
// @Summary      List training forms
// @Tags         forms
// @Security     BearerAuth
// @Produce      json
// @Param        search         query  string  false  "Free-text search over name, trainer, supplier and submitter"
// @Param        training_type  query  string  false  "Internal Training or External Training"
// @Param        submitter      query  string  false  "Filter by submitter email"
// @Param        date_from      query  string  false  "Submission date lower bound (YYYY-MM-DD)"
// @Param        date_to        query  string  false  "Submission date upper bound (YYYY-MM-DD)"
// @Param        delete_status  query  string  false  "not_deleted, deleted, approved, unapproved, draft or all"
// @Param        sort_by        query  string  false  "submission_date, start_date, end_date or training_name"
// @Param        sort_order     query  string  false  "ASC or DESC"
// @Param        page           query  int     false  "Page number (default 1)"
// @Param        limit          query  int     false  "Items per page (default 10)"
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/forms [get]
func (h *FormHandler) ListForms(c *gin.Context) {
	params := pagination.Parse(c)
	sort := pagination.ParseSort(c, "submission_date", "start_date", "end_date", "training_name")

	filter := repository.FormFilter{
		Search:       c.Query("search"),
		TrainingType: c.Query("training_type"),
		Submitter:    c.Query("submitter"),
		DeleteStatus: c.Query("delete_status"),
		SortBy:       sort.By,
		SortOrder:    sort.Order,
		Page:         params.Page,
		Limit:        params.Limit,
	}
	if from := c.Query("date_from"); from != "" {
		if t, err := time.Parse(form.DateLayout, from); err == nil {
			filter.DateFrom = &t
		}
	}
	if to := c.Query("date_to"); to != "" {
		if t, err := time.Parse(form.DateLayout, to); err == nil {
			filter.DateTo = &t
		}
	}

	// Deleted forms are an admin-only view.
	if !c.GetBool(middleware.ContextIsAdmin) {
		switch filter.DeleteStatus {
		case repository.DeleteStatusDeleted, repository.DeleteStatusAll:
			filter.DeleteStatus = repository.DeleteStatusDefault
		}
	}

	forms, total, err := h.formService.ListForms(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"forms": forms,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// GetForm returns one form with all children
// @Summary      Get training form
// @Tags         forms
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Form ID"
// @Success      200  {object}  response.Response{data=service.FormResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/forms/{id} [get]
func (h *FormHandler) GetForm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid form id"))
		return
	}

	includeDeleted := c.Query("include_deleted") == "true" && c.GetBool(middleware.ContextIsAdmin)
	found, err := h.formService.GetForm(c.Request.Context(), id, includeDeleted)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, found))
}

// EditForm replaces a form's content with a new draft
// @Summary      Edit training form
// @Description  Replaces the header and every child collection with the submitted draft
// @Tags         forms
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string          true  "Form ID"
// @Param        payload  body  form.FormDraft  true  "Replacement Draft"
// @Success      200  {object}  response.Response{data=service.FormResponse}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /api/forms/{id} [put]
func (h *FormHandler) EditForm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid form id"))
		return
	}

	var draft form.FormDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	updated, err := h.formService.EditForm(c.Request.Context(), currentIdentity(c), id, draft)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

// UploadAttachment stores one file against a form
// @Summary      Upload attachment
// @Tags         forms
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        id           path      string  true   "Form ID"
// @Param        file         formData  file    true   "Attachment file"
// @Param        description  formData  string  false  "Attachment description"
// @Success      201  {object}  response.Response{data=service.AttachmentResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/forms/{id}/attachments [post]
func (h *FormHandler) UploadAttachment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid form id"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing file upload"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to read file upload"))
		return
	}
	defer file.Close()

	attachment, err := h.formService.AddAttachment(c.Request.Context(), currentIdentity(c), id,
		fileHeader.Filename, c.PostForm("description"), file)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, attachment))
}

// ListAttachments returns the files stored against a form
// @Summary      List attachments
// @Tags         forms
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Form ID"
// @Success      200  {object}  response.Response{data=[]service.AttachmentResponse}
// @Router       /api/forms/{id}/attachments [get]
func (h *FormHandler) ListAttachments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid form id"))
		return
	}

	attachments, err := h.formService.ListAttachments(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, attachments))
}

// DownloadAttachment streams a stored attachment back to the client
// @Summary      Download attachment
// @Tags         forms
// @Security     BearerAuth
// @Produce      octet-stream
// @Param        id        path  string  true  "Form ID"
// @Param        filename  path  string  true  "Stored filename"
// @Success      200  {file}    file
// @Failure      404  {object}  response.Response
// @Router       /api/forms/{id}/attachments/{filename} [get]
func (h *FormHandler) DownloadAttachment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid form id"))
		return
	}

	path, err := h.formService.AttachmentPath(c.Request.Context(), id, c.Param("filename"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.FileAttachment(path, c.Param("filename"))
}
