package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Josh-IE/risk-management/internal/domain/models"
	appErrors "github.com/Josh-IE/risk-management/pkg/errors"
)

// SubmissionService stores submitted data
type SubmissionService interface {
	Submit(ctx context.Context, req *models.SubmitRequest) (*models.SubmitResult, error)
}

// ProjectionService reads stored submissions back
type ProjectionService interface {
	Project(ctx context.Context, submissionID int64, origin string) ([]models.ProjectedValue, error)
	ListSuccessful(ctx context.Context, schemaID *int64) ([]models.Submission, error)
}

// SubmissionHandler handles risk data endpoints
type SubmissionHandler struct {
	submissions    SubmissionService
	projector      ProjectionService
	maxUploadBytes int64
}

// NewSubmissionHandler creates a new SubmissionHandler. maxUploadBytes caps
// multipart request bodies.
func NewSubmissionHandler(submissions SubmissionService, projector ProjectionService, maxUploadBytes int64) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions, projector: projector, maxUploadBytes: maxUploadBytes}
}

// Submit handles POST /risk_data, as JSON or multipart form data
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req *models.SubmitRequest
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
		form, err := c.MultipartForm()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{
					"error":   "request body too large",
					"message": "request body too large",
					"code":    "PAYLOAD_TOO_LARGE",
				})
				return
			}
			RespondAppError(c, appErrors.NewValidationError("body", err.Error()))
			return
		}
		if req, err = ParseMultipartSubmission(form); err != nil {
			RespondAppError(c, err)
			return
		}
	} else {
		req = &models.SubmitRequest{}
		if !BindJSONNumbers(c, req) {
			return
		}
	}

	if req.SchemaID < 1 {
		RespondAppError(c, appErrors.NewValidationError("risk_model", "This field is required."))
		return
	}

	result, err := h.submissions.Submit(c.Request.Context(), req)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Get handles GET /risk_data/:id
func (h *SubmissionHandler) Get(c *gin.Context) {
	id, ok := ParseID(c, "id", "Submission")
	if !ok {
		return
	}
	HandleGet(c, func() (interface{}, error) {
		return h.projector.Project(c.Request.Context(), id, requestOrigin(c))
	})
}

// Log handles GET /risk_data_log
func (h *SubmissionHandler) Log(c *gin.Context) {
	schemaID, ok := parseOptionalID(c, "risk_model")
	if !ok {
		return
	}
	HandleGet(c, func() (interface{}, error) {
		return h.projector.ListSuccessful(c.Request.Context(), schemaID)
	})
}
