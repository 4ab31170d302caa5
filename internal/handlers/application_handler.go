package handlers

import (
	"net/http"
	"time"

	"github.com/feriahub/marketplace-backend/internal/core/domain"
	"github.com/feriahub/marketplace-backend/internal/middleware"
	"github.com/feriahub/marketplace-backend/internal/services/application"
	"github.com/feriahub/marketplace-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = validator.New()

type ApplicationHandler struct {
	Svc *application.Service
}

func NewApplicationHandler(svc *application.Service) *ApplicationHandler {
	return &ApplicationHandler{Svc: svc}
}

// Submit handles POST /api/v1/applications.
func (h *ApplicationHandler) Submit(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Principal not found in context"))
		return
	}

	var fields domain.SubmissionFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponseWithCode(codeValidation, "Invalid JSON format"))
		return
	}
	if err := validate.Struct(fields); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponseWithCode(codeValidation, "Validation failed: "+err.Error()))
		return
	}

	ctx, cancel := requestContext(c, 10*time.Second)
	defer cancel()

	app, err := h.Svc.Submit(ctx, principal, fields)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, utils.SuccessResponse("Application submitted successfully", gin.H{
		"application": app,
	}))
}

// Get handles GET /api/v1/applications/:id.
func (h *ApplicationHandler) Get(c *gin.Context) {
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

	ctx, cancel := requestContext(c, 10*time.Second)
	defer cancel()

	app, err := h.Svc.GetApplication(ctx, principal, applicationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Application fetched successfully", gin.H{
		"application": app,
	}))
}

// AttachDocument handles POST /api/v1/applications/:id/documents. The file is
// content-sniffed and size-capped before it is streamed to Cloudinary and the
// resulting URL recorded on the pending application.
func (h *ApplicationHandler) AttachDocument(c *gin.Context) {
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

	const maxUploadSize = 5 << 20 // 5MB
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	file, header, err := c.Request.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponseWithCode(codeValidation, "No file provided or file too large (Max 5MB)"))
		return
	}
	defer file.Close()

	// Sniff the real content type instead of trusting the client header.
	buffer := make([]byte, 512)
	if _, err := file.Read(buffer); err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to read file for validation"))
		return
	}
	file.Seek(0, 0)

	contentType := http.DetectContentType(buffer)
	allowedTypes := map[string]bool{
		"image/jpeg":      true,
		"image/png":       true,
		"application/pdf": true,
	}
	if !allowedTypes[contentType] {
		c.JSON(http.StatusBadRequest, utils.ErrorResponseWithCode(codeValidation, "Unsupported file type. Please upload JPEG, PNG, or PDF"))
		return
	}

	fileURL, err := utils.UploadToCloudinary(file, applicationID.Hex())
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Document upload failed: "+err.Error()))
		return
	}

	doc := domain.VerificationDocument{
		FileName:    header.Filename,
		FileURL:     fileURL,
		FileSize:    header.Size,
		ContentType: contentType,
		UploadedAt:  time.Now().UTC(),
	}

	ctx, cancel := requestContext(c, 15*time.Second)
	defer cancel()

	app, err := h.Svc.AttachDocument(ctx, principal, applicationID, doc)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Document attached successfully", gin.H{
		"application": app,
	}))
}
