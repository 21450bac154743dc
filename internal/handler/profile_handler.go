package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileService service.ProfileService
}

func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	influencerOnly := middleware.RequireRole(model.RoleInfluencer)

	api := router.Group("/api/v1")
	{
		api.GET("/profile/payment-details", influencerOnly, h.GetPaymentDetails)
		api.PUT("/profile/payment-details", influencerOnly, h.UpsertPaymentDetails)
	}
}

func (h *ProfileHandler) GetPaymentDetails(c *gin.Context) {
	details, err := h.profileService.GetPaymentDetails(c.Request.Context(), actorFrom(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, details))
}

func (h *ProfileHandler) UpsertPaymentDetails(c *gin.Context) {
	var req service.UpsertPaymentDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	details, err := h.profileService.UpsertPaymentDetails(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, details))
}
