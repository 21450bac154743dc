package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	applicationService service.ApplicationService
}

func NewApplicationHandler(applicationService service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applicationService: applicationService}
}

func (h *ApplicationHandler) RegisterRoutes(router *gin.RouterGroup) {
	influencerOnly := middleware.RequireRole(model.RoleInfluencer)
	reviewers := middleware.RequireRole(model.RoleBrand, model.RoleAdmin)

	api := router.Group("/api/v1")
	{
		api.POST("/applications", influencerOnly, h.Apply)
		api.GET("/campaigns/:id/applications", reviewers, h.ListByCampaign)
		api.PUT("/applications/:id/decision", reviewers, h.Decide)
	}
}

func (h *ApplicationHandler) Apply(c *gin.Context) {
	var req service.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	application, err := h.applicationService.Apply(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, application))
}

func (h *ApplicationHandler) ListByCampaign(c *gin.Context) {
	applications, err := h.applicationService.ListByCampaign(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, applications))
}

// Decide accepts or rejects an application. Acceptance creates the
// assignment in the same transaction.
func (h *ApplicationHandler) Decide(c *gin.Context) {
	var req service.ApplicationDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	application, err := h.applicationService.Decide(c.Request.Context(), actorFrom(c), c.Param("id"), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, application))
}
