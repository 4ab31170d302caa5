package handlers

import (
	"errors"
	"net/http"

	"github.com/feriahub/marketplace-backend/internal/core/domain"
	"github.com/feriahub/marketplace-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Machine-readable error codes, one per error kind, so clients can always
// tell the conflict and failure flavors apart.
const (
	codeValidation        = "validation_error"
	codeUnauthorized      = "unauthorized"
	codeNotFound          = "not_found"
	codeDuplicatePending  = "duplicate_pending_application"
	codeInvalidTransition = "invalid_transition"
	codePartialFailure    = "partial_failure"
	codeInternal          = "internal_error"
)

// respondError maps the domain error taxonomy onto HTTP statuses:
// validation 400, unauthorized 403, not found 404, both conflict kinds 409
// (distinguished by code), partial failure 502.
func respondError(c *gin.Context, err error) {
	var promErr *domain.PromotionError
	switch {
	case errors.As(err, &promErr):
		c.JSON(http.StatusBadGateway, utils.ErrorResponseWithCode(codePartialFailure, promErr.Error()))
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, utils.ErrorResponseWithCode(codeValidation, err.Error()))
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, utils.ErrorResponseWithCode(codeUnauthorized, err.Error()))
	case errors.Is(err, domain.ErrApplicationNotFound),
		errors.Is(err, domain.ErrPrincipalNotFound),
		errors.Is(err, domain.ErrVendorProfileNotFound):
		c.JSON(http.StatusNotFound, utils.ErrorResponseWithCode(codeNotFound, err.Error()))
	case errors.Is(err, domain.ErrDuplicatePendingApplication):
		c.JSON(http.StatusConflict, utils.ErrorResponseWithCode(codeDuplicatePending, err.Error()))
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, utils.ErrorResponseWithCode(codeInvalidTransition, err.Error()))
	default:
		logrus.WithError(err).Error("unhandled error")
		c.JSON(http.StatusInternalServerError, utils.ErrorResponseWithCode(codeInternal, "Something went wrong"))
	}
}
