package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/apperror"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type TrackingHandler struct {
	trackingService service.TrackingService
}

func NewTrackingHandler(trackingService service.TrackingService) *TrackingHandler {
	return &TrackingHandler{trackingService: trackingService}
}

func (h *TrackingHandler) RegisterRoutes(router *gin.RouterGroup) {
	// The redirect is public by design: influencer audiences hit it.
	router.GET("/r/:token", h.Redirect)

	reviewers := middleware.RequireRole(model.RoleBrand, model.RoleAdmin)
	router.GET("/api/v1/assignments/:id/clicks", reviewers, h.CountClicks)
}

// Redirect godoc
// @Summary  Resolve an attribution token and redirect to Amazon
// @Tags     tracking
// @Param    token path string true "Redirect token"
// @Success  302
// @Failure  404 {object} response.Response
// @Router   /r/{token} [get]
func (h *TrackingHandler) Redirect(c *gin.Context) {
	url, err := h.trackingService.ResolveRedirect(
		c.Request.Context(),
		c.Param("token"),
		c.ClientIP(),
		c.Request.UserAgent(),
	)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "link not found"))
			return
		}
		c.JSON(response.FromError(err))
		return
	}

	c.Redirect(http.StatusFound, url)
}

func (h *TrackingHandler) CountClicks(c *gin.Context) {
	total, err := h.trackingService.CountClicks(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"clicks": total}))
}
