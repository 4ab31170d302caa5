package handlers

import (
	"net/http"
	"time"

	"github.com/feriahub/marketplace-backend/internal/core/domain"
	"github.com/feriahub/marketplace-backend/internal/middleware"
	"github.com/feriahub/marketplace-backend/internal/services/application"
	"github.com/feriahub/marketplace-backend/utils"
	"github.com/gin-gonic/gin"
)

type PrincipalHandler struct {
	Identity domain.IdentityStore
	Svc      *application.Service
}

func NewPrincipalHandler(identity domain.IdentityStore, svc *application.Service) *PrincipalHandler {
	return &PrincipalHandler{Identity: identity, Svc: svc}
}

type registerInput struct {
	DisplayName string `json:"displayName" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
}

// Register handles POST /api/v1/principals/register. New principals always
// start with the buyer role; every other role is earned through the
// application lifecycle or explicit admin action, never claimed here.
func (h *PrincipalHandler) Register(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponseWithCode(codeValidation, "Invalid JSON format"))
		return
	}
	if err := validate.Struct(input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponseWithCode(codeValidation, "Validation failed: "+err.Error()))
		return
	}

	ctx, cancel := requestContext(c, 10*time.Second)
	defer cancel()

	principal := &domain.Principal{
		DisplayName: input.DisplayName,
		Email:       input.Email,
		Roles:       []domain.Role{domain.RoleBuyer},
	}
	if err := h.Identity.Create(ctx, principal); err != nil {
		respondError(c, err)
		return
	}

	token, err := utils.SignToken(principal.ID.Hex(), 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to issue token"))
		return
	}

	c.JSON(http.StatusCreated, utils.SuccessResponse("Principal registered successfully", gin.H{
		"principal": principal,
		"token":     token,
	}))
}

// Me handles GET /api/v1/principals/me via the cached principal view.
func (h *PrincipalHandler) Me(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Principal not found in context"))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Principal fetched successfully", gin.H{
		"principal": principal,
	}))
}
