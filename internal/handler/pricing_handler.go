package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/activation_api/internal/middleware"
	"github.com/GTDGit/activation_api/internal/service"
	"github.com/GTDGit/activation_api/internal/utils"
)

// PricingHandler handles settlement unit prices. Admin only.
type PricingHandler struct {
	settlement *service.SettlementService
}

// NewPricingHandler constructs a PricingHandler.
func NewPricingHandler(settlement *service.SettlementService) *PricingHandler {
	return &PricingHandler{settlement: settlement}
}

// SetPrice handles POST /v1/admin/settlement-prices
func (h *PricingHandler) SetPrice(c *gin.Context) {
	var req service.SetPriceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	price, err := h.settlement.SetPrice(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 201, "Settlement price updated", price)
}

// ListActive handles GET /v1/admin/settlement-prices
func (h *PricingHandler) ListActive(c *gin.Context) {
	prices, err := h.settlement.ActivePrices(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Settlement prices retrieved", prices)
}

// History handles GET /v1/admin/service-plans/:id/settlement-prices
func (h *PricingHandler) History(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	history, err := h.settlement.PriceHistory(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.Success(c, 200, "Price history retrieved", history)
}
