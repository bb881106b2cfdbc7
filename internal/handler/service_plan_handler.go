package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/activation_api/internal/middleware"
	"github.com/GTDGit/activation_api/internal/service"
	"github.com/GTDGit/activation_api/internal/utils"
)

// ServicePlanHandler handles the service plan catalog.
type ServicePlanHandler struct {
	plans *service.ServicePlanService
}

// NewServicePlanHandler constructs a ServicePlanHandler.
func NewServicePlanHandler(plans *service.ServicePlanService) *ServicePlanHandler {
	return &ServicePlanHandler{plans: plans}
}

// List handles GET /v1/service-plans
func (h *ServicePlanHandler) List(c *gin.Context) {
	plans, err := h.plans.List(c.Request.Context(), middleware.GetPrincipal(c), optionalQuery(c, "carrier"), c.Query("includeInactive") == "true")
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Service plans retrieved", plans)
}

// Get handles GET /v1/service-plans/:id
func (h *ServicePlanHandler) Get(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	plan, err := h.plans.Get(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Service plan retrieved", plan)
}

// Create handles POST /v1/admin/service-plans
func (h *ServicePlanHandler) Create(c *gin.Context) {
	var req service.ServicePlanInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	plan, err := h.plans.Create(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 201, "Service plan created", plan)
}

// Update handles PUT /v1/admin/service-plans/:id
func (h *ServicePlanHandler) Update(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req service.ServicePlanInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	plan, err := h.plans.Update(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Service plan updated", plan)
}

// Deactivate handles DELETE /v1/admin/service-plans/:id
func (h *ServicePlanHandler) Deactivate(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.plans.Deactivate(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Service plan deactivated", nil)
}
