package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/activation_api/internal/middleware"
	"github.com/GTDGit/activation_api/internal/models"
	"github.com/GTDGit/activation_api/internal/service"
	"github.com/GTDGit/activation_api/internal/utils"
)

// IdentityHandler handles admin management of accounts.
type IdentityHandler struct {
	identities *service.IdentityService
}

// NewIdentityHandler constructs an IdentityHandler.
func NewIdentityHandler(identities *service.IdentityService) *IdentityHandler {
	return &IdentityHandler{identities: identities}
}

// CreateAdmin handles POST /v1/admin/admins
func (h *IdentityHandler) CreateAdmin(c *gin.Context) {
	var req service.CreateAdminInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.identities.CreateAdmin(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 201, "Admin created", user)
}

// CreateSalesManager handles POST /v1/admin/sales-managers
func (h *IdentityHandler) CreateSalesManager(c *gin.Context) {
	var req service.CreateSalesManagerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	m, err := h.identities.CreateSalesManager(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 201, "Sales manager created", m)
}

// CreateWorker handles POST /v1/admin/workers
func (h *IdentityHandler) CreateWorker(c *gin.Context) {
	var req service.CreateWorkerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	u, err := h.identities.CreateWorker(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 201, "Worker user created", u)
}

// ListAdmins handles GET /v1/admin/admins
func (h *IdentityHandler) ListAdmins(c *gin.Context) {
	users, err := h.identities.ListAdmins(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Admins retrieved", users)
}

// ListSalesManagers handles GET /v1/admin/sales-managers
func (h *IdentityHandler) ListSalesManagers(c *gin.Context) {
	var teamID *int
	if v := c.Query("teamId"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			teamID = &id
		}
	}
	managers, err := h.identities.ListSalesManagers(c.Request.Context(), middleware.GetPrincipal(c), teamID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Sales managers retrieved", managers)
}

// ListWorkers handles GET /v1/admin/workers
func (h *IdentityHandler) ListWorkers(c *gin.Context) {
	var role *models.RoleTag
	if v := c.Query("role"); v != "" {
		r := models.RoleTag(v)
		role = &r
	}
	users, err := h.identities.ListWorkers(c.Request.Context(), middleware.GetPrincipal(c), role)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Worker users retrieved", users)
}

// SetActive handles PATCH /v1/admin/accounts/:kind/:id/active
func (h *IdentityHandler) SetActive(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		IsActive *bool `json:"isActive" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	kind := models.PrincipalKind(c.Param("kind"))
	if err := h.identities.SetActive(c.Request.Context(), middleware.GetPrincipal(c), kind, id, *req.IsActive); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Account updated", gin.H{"kind": kind, "id": id, "isActive": *req.IsActive})
}
