package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PayoutHandler struct {
	payoutService service.PayoutService
}

func NewPayoutHandler(payoutService service.PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutService: payoutService}
}

func (h *PayoutHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleBrand, model.RoleInfluencer)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	api := router.Group("/api/v1")
	{
		api.GET("/payouts", anyRole, h.ListPayouts)
		api.GET("/payouts/:id", anyRole, h.GetPayout)
		api.PUT("/payouts/:id/status", adminOnly, h.SettlePayout)
	}
}

// ListPayouts godoc
// @Summary  List payout ledger rows visible to the caller
// @Tags     payouts
// @Produce  json
// @Param    status      query string false "pending or paid"
// @Param    payout_type query string false "reimbursement, commission or review_bonus"
// @Success  200 {object} response.Response
// @Router   /api/v1/payouts [get]
func (h *PayoutHandler) ListPayouts(c *gin.Context) {
	params := pagination.Parse(c)
	filter := service.PayoutFilter{
		Status:     c.Query("status"),
		PayoutType: c.Query("payout_type"),
		Page:       params.Page,
		Limit:      params.Limit,
	}

	payouts, total, err := h.payoutService.ListPayouts(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   payouts,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

func (h *PayoutHandler) GetPayout(c *gin.Context) {
	payout, err := h.payoutService.GetPayout(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payout))
}

// SettlePayout flips a pending row to paid. Paid rows never change.
func (h *PayoutHandler) SettlePayout(c *gin.Context) {
	var req service.SettlePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	payout, err := h.payoutService.SettlePayout(c.Request.Context(), actorFrom(c), c.Param("id"), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payout))
}
