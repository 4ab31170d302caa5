package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/feriahub/marketplace-backend/internal/core/domain"
	"github.com/feriahub/marketplace-backend/internal/middleware"
	"github.com/feriahub/marketplace-backend/internal/services/application"
	"github.com/feriahub/marketplace-backend/utils"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminHandler serves the review queue. Routes are mounted behind
// RequireRole(admin); the lifecycle service still re-checks on every call.
type AdminHandler struct {
	Svc *application.Service
}

func NewAdminHandler(svc *application.Service) *AdminHandler {
	return &AdminHandler{Svc: svc}
}

// List handles GET /api/v1/admin/applications?status=&limit=&skip=.
func (h *AdminHandler) List(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Principal not found in context"))
		return
	}

	var status *domain.ApplicationStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.ApplicationStatus(raw)
		if s != domain.StatusPending && s != domain.StatusApproved && s != domain.StatusRejected {
			c.JSON(http.StatusBadRequest, utils.ErrorResponseWithCode(codeValidation, "Unknown status filter"))
			return
		}
		status = &s
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	skip, _ := strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if skip < 0 {
		skip = 0
	}

	ctx, cancel := requestContext(c, 10*time.Second)
	defer cancel()

	page, err := h.Svc.ListApplications(ctx, principal, status, limit, skip)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Applications fetched successfully", gin.H{
		"applications": page.Items,
		"total":        page.Total,
		"limit":        limit,
		"skip":         skip,
	}))
}

// Approve handles POST /api/v1/admin/applications/:id/approve.
func (h *AdminHandler) Approve(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Principal not found in context"))
		return
	}

	applicationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponseWithCode(codeValidation, "Invalid application ID"))
		return
	}

	ctx, cancel := requestContext(c, 15*time.Second)
	defer cancel()

	app, err := h.Svc.Approve(ctx, principal, applicationID)
	if err != nil {
		// A promotion failure still approved the application; return the
		// record so the client can see the state it must retry from.
		var promErr *domain.PromotionError
		if errors.As(err, &promErr) {
			c.JSON(http.StatusBadGateway, utils.APIResponse{
				Success: false,
				Code:    codePartialFailure,
				Message: promErr.Error(),
				Data:    gin.H{"application": app},
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Application approved", gin.H{
		"application": app,
	}))
}

// Reject handles POST /api/v1/admin/applications/:id/reject.
func (h *AdminHandler) Reject(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Principal not found in context"))
		return
	}

	applicationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponseWithCode(codeValidation, "Invalid application ID"))
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	// Reason is optional; an empty body is fine.
	_ = c.ShouldBindJSON(&body)

	ctx, cancel := requestContext(c, 15*time.Second)
	defer cancel()

	app, err := h.Svc.Reject(ctx, principal, applicationID, body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Application rejected", gin.H{
		"application": app,
	}))
}

// RetryPromotion handles POST /api/v1/admin/applications/:id/retry-promotion,
// the recovery path after a partial_failure response from Approve.
func (h *AdminHandler) RetryPromotion(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Principal not found in context"))
		return
	}

	applicationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponseWithCode(codeValidation, "Invalid application ID"))
		return
	}

	ctx, cancel := requestContext(c, 15*time.Second)
	defer cancel()

	promoted, err := h.Svc.RetryPromotion(ctx, principal, applicationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Promotion completed", gin.H{
		"principal": promoted,
	}))
}

func requestContext(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), timeout)
}
