package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Josh-IE/risk-management/internal/domain/models"
	"github.com/Josh-IE/risk-management/pkg/fieldtypes"
)

// SchemaService defines the schema operations the handler needs
type SchemaService interface {
	FieldTypes() []fieldtypes.Choice
	List(ctx context.Context, ownerID *int64) ([]*models.Schema, error)
	Get(ctx context.Context, id int64) (*models.Schema, error)
	Create(ctx context.Context, in *models.SchemaInput) (*models.Schema, error)
	Update(ctx context.Context, id int64, in *models.SchemaInput) (*models.Schema, error)
}

// SchemaHandler handles risk model endpoints
type SchemaHandler struct {
	svc SchemaService
}

// NewSchemaHandler creates a new SchemaHandler
func NewSchemaHandler(svc SchemaService) *SchemaHandler {
	return &SchemaHandler{svc: svc}
}

// List handles GET /risk_model
func (h *SchemaHandler) List(c *gin.Context) {
	ownerID, ok := parseOptionalID(c, "owner")
	if !ok {
		return
	}
	HandleGet(c, func() (interface{}, error) {
		return h.svc.List(c.Request.Context(), ownerID)
	})
}

// Get handles GET /risk_model/:id
func (h *SchemaHandler) Get(c *gin.Context) {
	id, ok := ParseID(c, "id", "Risk Model")
	if !ok {
		return
	}
	HandleGet(c, func() (interface{}, error) {
		return h.svc.Get(c.Request.Context(), id)
	})
}

// Create handles POST /risk_model
func (h *SchemaHandler) Create(c *gin.Context) {
	var in models.SchemaInput
	if !BindJSON(c, &in) {
		return
	}
	schema, err := h.svc.Create(c.Request.Context(), &in)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, schema)
}

// Update handles PUT /risk_model/:id
func (h *SchemaHandler) Update(c *gin.Context) {
	id, ok := ParseID(c, "id", "Risk Model")
	if !ok {
		return
	}
	var in models.SchemaInput
	if !BindJSON(c, &in) {
		return
	}
	schema, err := h.svc.Update(c.Request.Context(), id, &in)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, schema)
}

// FieldTypes handles GET /risk_model/field_types
func (h *SchemaHandler) FieldTypes(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.FieldTypes())
}
