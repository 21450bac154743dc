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

type CampaignHandler struct {
	campaignService service.CampaignService
}

func NewCampaignHandler(campaignService service.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService}
}

func (h *CampaignHandler) RegisterRoutes(router *gin.RouterGroup) {
	brandOnly := middleware.RequireRole(model.RoleBrand)
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleBrand, model.RoleInfluencer)

	api := router.Group("/api/v1")
	{
		api.POST("/campaigns", brandOnly, h.CreateCampaign)
		api.PUT("/campaigns/:id/publish", brandOnly, h.PublishCampaign)
		api.GET("/campaigns", anyRole, h.ListCampaigns)
		api.GET("/campaigns/:id", anyRole, h.GetCampaign)
	}
}

// CreateCampaign godoc
// @Summary  Create a campaign in draft status
// @Tags     campaigns
// @Accept   json
// @Produce  json
// @Param    body body service.CreateCampaignRequest true "Campaign payload"
// @Success  201 {object} response.Response
// @Failure  400 {object} response.Response
// @Router   /api/v1/campaigns [post]
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req service.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	campaign, err := h.campaignService.CreateCampaign(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, campaign))
}

func (h *CampaignHandler) PublishCampaign(c *gin.Context) {
	campaign, err := h.campaignService.PublishCampaign(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, campaign))
}

func (h *CampaignHandler) ListCampaigns(c *gin.Context) {
	params := pagination.Parse(c)
	filter := service.CampaignFilter{
		Status: c.Query("status"),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	campaigns, total, err := h.campaignService.ListCampaigns(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   campaigns,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	campaign, err := h.campaignService.GetCampaign(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, campaign))
}
