package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/GTDGit/activation_api/internal/middleware"
	"github.com/GTDGit/activation_api/internal/models"
	"github.com/GTDGit/activation_api/internal/service"
	"github.com/GTDGit/activation_api/internal/utils"
)

const maxAttachmentSize = 20 << 20

// DocumentHandler handles intake, listing and activation of documents.
type DocumentHandler struct {
	documents *service.DocumentService
}

// NewDocumentHandler constructs a DocumentHandler.
func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Create handles POST /v1/documents (JSON or multipart with an optional "file").
func (h *DocumentHandler) Create(c *gin.Context) {
	if !authorized(c, service.ActionCreateDocument) {
		return
	}
	in, attachment, ok := bindDocumentInput(c)
	if !ok {
		return
	}
	doc, err := h.documents.Create(c.Request.Context(), middleware.GetPrincipal(c), in, attachment)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 201, "Document received", doc)
}

// List handles GET /v1/documents
func (h *DocumentHandler) List(c *gin.Context) {
	filter := models.DocumentFilter{
		Status:           optionalQuery(c, "status"),
		ActivationStatus: optionalQuery(c, "activationStatus"),
		Carrier:          optionalQuery(c, "carrier"),
		ContactCode:      optionalQuery(c, "contactCode"),
		CustomerType:     optionalQuery(c, "customerType"),
		Search:           optionalQuery(c, "search"),
		StartDate:        optionalQuery(c, "startDate"),
		EndDate:          optionalQuery(c, "endDate"),
		Page:             queryInt(c, "page", 1),
		Limit:            queryInt(c, "limit", 50),
	}

	page, err := h.documents.List(c.Request.Context(), middleware.GetPrincipal(c), filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.SuccessWithPagination(c, 200, "Documents retrieved", page.Documents, page.Page, page.Limit, page.TotalItems)
}

// Get handles GET /v1/documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.documents.Get(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Document retrieved", doc)
}

// Resubmit handles PUT /v1/documents/:id
func (h *DocumentHandler) Resubmit(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if !authorized(c, service.ActionResubmitDocument) {
		return
	}
	in, attachment, ok := bindDocumentInput(c)
	if !ok {
		return
	}
	doc, err := h.documents.Resubmit(c.Request.Context(), middleware.GetPrincipal(c), id, in, attachment)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Document updated", doc)
}

// SetIntakeStatus handles PATCH /v1/documents/:id/status
func (h *DocumentHandler) SetIntakeStatus(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if !authorized(c, service.ActionSetIntakeStatus) {
		return
	}
	var req service.IntakeStatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	doc, err := h.documents.SetIntakeStatus(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Intake status updated", doc)
}

type transitionRequest struct {
	TargetActivationStatus models.ActivationStatus   `json:"targetActivationStatus" binding:"required"`
	Payload                service.TransitionPayload `json:"payload"`
}

// Transition handles POST /v1/documents/:id/transitions
func (h *DocumentHandler) Transition(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if !authorized(c, service.ActionTransition) {
		return
	}
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	doc, err := h.documents.Transition(c.Request.Context(), middleware.GetPrincipal(c), id, req.TargetActivationStatus, req.Payload)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Activation status updated", doc)
}

// Delete handles DELETE /v1/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.documents.Delete(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Document deleted", nil)
}

// authorized runs the role check ahead of body binding so a denied caller
// never sees payload validation errors.
func authorized(c *gin.Context, action service.Action) bool {
	if err := service.Authorize(middleware.GetPrincipal(c), action); err != nil {
		utils.HandleError(c, err)
		return false
	}
	return true
}

// bindDocumentInput reads the intake payload from a JSON body or a
// multipart form whose optional "file" part is the scanned paperwork.
func bindDocumentInput(c *gin.Context) (service.DocumentInput, *service.Attachment, bool) {
	var in service.DocumentInput
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBindJSON(&in); err != nil {
			bindError(c, err)
			return in, nil, false
		}
		return in, nil, true
	}

	if err := c.ShouldBindWith(&in, binding.FormMultipart); err != nil {
		bindError(c, err)
		return in, nil, false
	}
	file, header, err := c.Request.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, true
	}
	if err != nil {
		utils.Error(c, 400, "INVALID_FILE", "Failed to read uploaded file")
		return in, nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAttachmentSize+1))
	if err != nil {
		utils.Error(c, 400, "INVALID_FILE", "Failed to read uploaded file")
		return in, nil, false
	}
	if len(data) > maxAttachmentSize {
		utils.Error(c, 400, "FILE_TOO_LARGE", "Attachment exceeds 20MB")
		return in, nil, false
	}
	return in, &service.Attachment{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true
}
