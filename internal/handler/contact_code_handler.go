package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/activation_api/internal/middleware"
	"github.com/GTDGit/activation_api/internal/repository"
	"github.com/GTDGit/activation_api/internal/service"
	"github.com/GTDGit/activation_api/internal/utils"
)

// ContactCodeHandler handles contact-code resolution and admin management.
type ContactCodeHandler struct {
	codes *service.ContactCodeService
}

// NewContactCodeHandler constructs a ContactCodeHandler.
func NewContactCodeHandler(codes *service.ContactCodeService) *ContactCodeHandler {
	return &ContactCodeHandler{codes: codes}
}

// Resolve handles GET /v1/contact-codes/:code/resolve
func (h *ContactCodeHandler) Resolve(c *gin.Context) {
	res, ok, err := h.codes.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	if !ok {
		utils.HandleError(c, utils.NotFoundf("contact code %s not found", c.Param("code")))
		return
	}
	utils.Success(c, 200, "Contact code resolved", res)
}

// List handles GET /v1/admin/contact-codes
func (h *ContactCodeHandler) List(c *gin.Context) {
	filter := repository.ContactCodeFilter{
		Carrier:         optionalQuery(c, "carrier"),
		Search:          optionalQuery(c, "search"),
		IncludeInactive: c.Query("includeInactive") == "true",
	}
	if v := c.Query("managerId"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.ManagerID = &id
		}
	}

	codes, err := h.codes.List(c.Request.Context(), middleware.GetPrincipal(c), filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Contact codes retrieved", codes)
}

// Get handles GET /v1/admin/contact-codes/:code
func (h *ContactCodeHandler) Get(c *gin.Context) {
	cc, err := h.codes.Get(c.Request.Context(), middleware.GetPrincipal(c), c.Param("code"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Contact code retrieved", cc)
}

// Create handles POST /v1/admin/contact-codes
func (h *ContactCodeHandler) Create(c *gin.Context) {
	var req service.ContactCodeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	cc, err := h.codes.Create(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 201, "Contact code created", cc)
}

// Update handles PUT /v1/admin/contact-codes/:code
func (h *ContactCodeHandler) Update(c *gin.Context) {
	var req service.ContactCodeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	cc, err := h.codes.Update(c.Request.Context(), middleware.GetPrincipal(c), c.Param("code"), req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Contact code updated", cc)
}

// Deactivate handles DELETE /v1/admin/contact-codes/:code
func (h *ContactCodeHandler) Deactivate(c *gin.Context) {
	if err := h.codes.Deactivate(c.Request.Context(), middleware.GetPrincipal(c), c.Param("code")); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Contact code deactivated", nil)
}
