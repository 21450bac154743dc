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

// AssignmentHandler is the HTTP face of the assignment lifecycle: the
// influencer submission endpoints and the brand/admin review gateway.
type AssignmentHandler struct {
	assignmentService service.AssignmentService
}

func NewAssignmentHandler(assignmentService service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

func (h *AssignmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	influencerOnly := middleware.RequireRole(model.RoleInfluencer)
	reviewers := middleware.RequireRole(model.RoleBrand, model.RoleAdmin)
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleBrand, model.RoleInfluencer)

	api := router.Group("/api/v1")
	{
		api.GET("/assignments", anyRole, h.ListAssignments)
		api.GET("/assignments/:id", anyRole, h.GetAssignment)
		api.GET("/assignments/:id/amazon-link", influencerOnly, h.GetAmazonLink)

		api.POST("/assignments/:id/purchase-proof", influencerOnly, h.SubmitPurchaseProof)
		api.GET("/assignments/:id/purchase-proof", anyRole, h.GetPurchaseProof)
		api.PUT("/purchase-proofs/:id/review", reviewers, h.ReviewPurchaseProof)

		api.POST("/assignments/:id/post-submission", influencerOnly, h.SubmitPostSubmission)
		api.GET("/assignments/:id/post-submission", anyRole, h.GetPostSubmission)
		api.PUT("/post-submissions/:id/review", reviewers, h.ReviewPostSubmission)

		api.POST("/assignments/:id/review", influencerOnly, h.SubmitProductReview)
		api.GET("/assignments/:id/review", anyRole, h.GetProductReview)
		api.PUT("/product-reviews/:id/review", reviewers, h.ReviewProductReview)

		api.GET("/verification-queue", reviewers, h.VerificationQueue)
	}
}

func actorFrom(c *gin.Context) service.Actor {
	userID, role := middleware.Identity(c)
	return service.Actor{UserID: userID, Role: role}
}

func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	params := pagination.Parse(c)

	assignments, total, err := h.assignmentService.ListAssignments(c.Request.Context(), actorFrom(c), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   assignments,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	assignment, err := h.assignmentService.GetAssignment(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, assignment))
}

func (h *AssignmentHandler) GetAmazonLink(c *gin.Context) {
	url, err := h.assignmentService.GetAmazonLink(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"redirect_url": url}))
}

// SubmitPurchaseProof godoc
// @Summary  Submit purchase proof for an assignment
// @Tags     assignments
// @Accept   json
// @Produce  json
// @Param    id   path string true "Assignment ID"
// @Param    body body service.SubmitPurchaseProofRequest true "Proof payload"
// @Success  201 {object} response.Response
// @Failure  400 {object} response.Response
// @Failure  409 {object} response.Response
// @Router   /api/v1/assignments/{id}/purchase-proof [post]
func (h *AssignmentHandler) SubmitPurchaseProof(c *gin.Context) {
	var req service.SubmitPurchaseProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	proof, err := h.assignmentService.SubmitPurchaseProof(c.Request.Context(), actorFrom(c), c.Param("id"), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, proof))
}

func (h *AssignmentHandler) GetPurchaseProof(c *gin.Context) {
	proof, err := h.assignmentService.GetAssignmentPurchaseProof(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, proof))
}

// ReviewPurchaseProof godoc
// @Summary  Approve or reject a purchase proof
// @Tags     reviews
// @Accept   json
// @Produce  json
// @Param    id   path string true "Purchase proof ID"
// @Param    body body service.ReviewDecisionRequest true "Decision"
// @Success  200 {object} response.Response
// @Failure  409 {object} response.Response
// @Router   /api/v1/purchase-proofs/{id}/review [put]
func (h *AssignmentHandler) ReviewPurchaseProof(c *gin.Context) {
	var req service.ReviewDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	proof, err := h.assignmentService.ReviewPurchaseProof(c.Request.Context(), actorFrom(c), c.Param("id"), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, proof))
}

func (h *AssignmentHandler) SubmitPostSubmission(c *gin.Context) {
	var req service.SubmitPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	post, err := h.assignmentService.SubmitPostSubmission(c.Request.Context(), actorFrom(c), c.Param("id"), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, post))
}

func (h *AssignmentHandler) GetPostSubmission(c *gin.Context) {
	post, err := h.assignmentService.GetAssignmentPostSubmission(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, post))
}

// ReviewPostSubmission approves or rejects the main post. Approval
// completes the assignment and writes its payout rows.
func (h *AssignmentHandler) ReviewPostSubmission(c *gin.Context) {
	var req service.ReviewDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	post, err := h.assignmentService.ReviewPostSubmission(c.Request.Context(), actorFrom(c), c.Param("id"), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, post))
}

func (h *AssignmentHandler) SubmitProductReview(c *gin.Context) {
	var req service.SubmitProductReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	review, err := h.assignmentService.SubmitProductReview(c.Request.Context(), actorFrom(c), c.Param("id"), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, review))
}

func (h *AssignmentHandler) GetProductReview(c *gin.Context) {
	review, err := h.assignmentService.GetAssignmentProductReview(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, review))
}

func (h *AssignmentHandler) ReviewProductReview(c *gin.Context) {
	var req service.ReviewDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	review, err := h.assignmentService.ReviewProductReview(c.Request.Context(), actorFrom(c), c.Param("id"), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, review))
}

func (h *AssignmentHandler) VerificationQueue(c *gin.Context) {
	queueType := c.Query("queue_type")
	status := c.Query("status")

	items, err := h.assignmentService.VerificationQueue(c.Request.Context(), actorFrom(c), queueType, status)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "data": items})
}
