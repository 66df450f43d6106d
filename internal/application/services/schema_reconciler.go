package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/Josh-IE/risk-management/internal/domain/models"
	"github.com/Josh-IE/risk-management/internal/infrastructure/persistence"
	appErrors "github.com/Josh-IE/risk-management/pkg/errors"
	"github.com/Josh-IE/risk-management/pkg/slug"
)

// ComputeFieldDelta compares a schema's active fields with an incoming,
// already validated field list. Payloads with an id update that field in
// place, payloads without one become new fields, and active fields missing
// from the list are soft-deleted. An id that is not an active field of the
// schema fails the whole computation.
func ComputeFieldDelta(schemaID int64, current []models.Field, incoming []models.FieldInput) (models.FieldDelta, error) {
	byID := make(map[int64]models.Field, len(current))
	for _, f := range current {
		byID[f.ID] = f
	}

	var delta models.FieldDelta
	kept := make(map[int64]bool, len(incoming))
	for _, in := range incoming {
		if in.ID == nil {
			delta.ToCreate = append(delta.ToCreate, in.NewField(schemaID))
			continue
		}
		existing, ok := byID[*in.ID]
		if !ok {
			return models.FieldDelta{}, appErrors.NewNotFoundError("Field", strconv.FormatInt(*in.ID, 10))
		}
		if kept[existing.ID] {
			return models.FieldDelta{}, appErrors.NewValidationError(appErrors.KeyFields,
				fmt.Sprintf("Field %d is listed more than once.", existing.ID))
		}
		kept[existing.ID] = true
		in.ApplyTo(&existing)
		delta.ToUpdate = append(delta.ToUpdate, existing)
	}

	for _, f := range current {
		if !kept[f.ID] {
			delta.ToSoftDelete = append(delta.ToSoftDelete, f.ID)
		}
	}
	return delta, nil
}

// SchemaReconciler writes field deltas
type SchemaReconciler struct {
	fields *persistence.FieldRepository
}

// NewSchemaReconciler creates a reconciler over the field store
func NewSchemaReconciler(fields *persistence.FieldRepository) *SchemaReconciler {
	return &SchemaReconciler{fields: fields}
}

// Apply writes delta inside tx and returns the schema's active fields
// afterwards. New fields get slugs unique across every field ever stored.
func (r *SchemaReconciler) Apply(ctx context.Context, tx *sql.Tx, schemaID int64, delta models.FieldDelta) ([]models.Field, error) {
	for i := range delta.ToUpdate {
		if err := r.fields.Update(ctx, tx, &delta.ToUpdate[i]); err != nil {
			return nil, err
		}
	}

	if err := r.fields.SoftDelete(ctx, tx, schemaID, delta.ToSoftDelete); err != nil {
		return nil, err
	}

	if len(delta.ToCreate) > 0 {
		toCreate, err := r.assignSlugs(ctx, tx, delta.ToCreate)
		if err != nil {
			return nil, err
		}
		if _, err := r.fields.BulkCreate(ctx, tx, toCreate); err != nil {
			return nil, err
		}
	}

	fieldChangesTotal.WithLabelValues("updated").Add(float64(len(delta.ToUpdate)))
	fieldChangesTotal.WithLabelValues("deleted").Add(float64(len(delta.ToSoftDelete)))
	fieldChangesTotal.WithLabelValues("created").Add(float64(len(delta.ToCreate)))

	return r.fields.ListActive(ctx, tx, schemaID)
}

func (r *SchemaReconciler) assignSlugs(ctx context.Context, tx *sql.Tx, fields []models.Field) ([]models.Field, error) {
	reserved := make(map[string]bool, len(fields))
	exists := func(ctx context.Context, s string) (bool, error) {
		if reserved[s] {
			return true, nil
		}
		return r.fields.SlugExists(ctx, tx, s)
	}

	out := make([]models.Field, len(fields))
	for i, f := range fields {
		s, err := slug.Unique(ctx, f.Name, exists)
		if err != nil {
			return nil, fmt.Errorf("generate slug for %q: %w", f.Name, err)
		}
		reserved[s] = true
		f.Slug = s
		out[i] = f
	}
	return out, nil
}
