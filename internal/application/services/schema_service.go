package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/Josh-IE/risk-management/internal/domain/models"
	"github.com/Josh-IE/risk-management/internal/infrastructure/persistence"
	appErrors "github.com/Josh-IE/risk-management/pkg/errors"
	"github.com/Josh-IE/risk-management/pkg/fieldtypes"
)

// SchemaService creates, replaces and reads risk model schemas
type SchemaService struct {
	repos      *persistence.Repositories
	registry   *fieldtypes.Registry
	validator  *SchemaValidator
	reconciler *SchemaReconciler
	cache      *SchemaCache
}

// NewSchemaService creates a new SchemaService
func NewSchemaService(repos *persistence.Repositories, registry *fieldtypes.Registry, validator *SchemaValidator, cache *SchemaCache) *SchemaService {
	return &SchemaService{
		repos:      repos,
		registry:   registry,
		validator:  validator,
		reconciler: NewSchemaReconciler(repos.Fields),
		cache:      cache,
	}
}

// FieldTypes returns the supported field types as {value, text} pairs
func (s *SchemaService) FieldTypes() []fieldtypes.Choice {
	return s.registry.Choices()
}

// List returns schemas newest first, each with its active fields. A non-nil
// ownerID restricts the list to that owner.
func (s *SchemaService) List(ctx context.Context, ownerID *int64) ([]*models.Schema, error) {
	schemas, err := s.repos.Schemas.List(ctx, nil, ownerID)
	if err != nil {
		return nil, err
	}
	for _, schema := range schemas {
		if schema.Fields, err = s.repos.Fields.ListActive(ctx, nil, schema.ID); err != nil {
			return nil, err
		}
	}
	return schemas, nil
}

// Get returns a schema with its active fields. The result may be shared
// with other callers and must not be modified.
func (s *SchemaService) Get(ctx context.Context, id int64) (*models.Schema, error) {
	if schema, ok := s.cache.Get(id); ok {
		return schema, nil
	}

	schema, err := s.repos.Schemas.Get(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if schema.Fields, err = s.repos.Fields.ListActive(ctx, nil, id); err != nil {
		return nil, err
	}
	s.cache.Set(schema)
	return schema, nil
}

// Create validates in and stores it as a new schema with fresh fields.
// Field ids and slugs in the payload are ignored.
func (s *SchemaService) Create(ctx context.Context, in *models.SchemaInput) (*models.Schema, error) {
	in = normalizeInput(in, true)
	if err := s.check(ctx, in, 0); err != nil {
		return nil, err
	}

	schema := &models.Schema{Activated: true}
	applySchemaInput(schema, in)

	err := s.repos.Tx.WithRetry(ctx, func(tx *sql.Tx) error {
		if err := s.repos.Schemas.Create(ctx, tx, schema); err != nil {
			return err
		}
		delta, err := ComputeFieldDelta(schema.ID, nil, in.Fields)
		if err != nil {
			return err
		}
		schema.Fields, err = s.reconciler.Apply(ctx, tx, schema.ID, delta)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Created risk model %d (%s) with %d fields", schema.ID, schema.Name, len(schema.Fields))
	return schema, nil
}

// Update replaces a schema's attributes and reconciles its fields: payloads
// with an id update that field, payloads without one create a field, and
// active fields left out are soft-deleted. Nothing is written on error.
func (s *SchemaService) Update(ctx context.Context, id int64, in *models.SchemaInput) (*models.Schema, error) {
	schema, err := s.repos.Schemas.Get(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	in = normalizeInput(in, false)
	if err := s.check(ctx, in, id); err != nil {
		return nil, err
	}
	applySchemaInput(schema, in)

	err = s.repos.Tx.WithRetry(ctx, func(tx *sql.Tx) error {
		current, err := s.repos.Fields.ListActive(ctx, tx, id)
		if err != nil {
			return err
		}
		delta, err := ComputeFieldDelta(id, current, in.Fields)
		if err != nil {
			return err
		}
		if err := s.repos.Schemas.Update(ctx, tx, schema); err != nil {
			return err
		}
		schema.Fields, err = s.reconciler.Apply(ctx, tx, id, delta)
		return err
	})
	s.cache.Invalidate(id)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Updated risk model %d (%s)", schema.ID, schema.Name)
	return schema, nil
}

// check runs the payload validation, then the checks that need the store
func (s *SchemaService) check(ctx context.Context, in *models.SchemaInput, excludeID int64) error {
	if err := s.validator.Validate(in); err != nil {
		return err
	}

	if in.OwnerID != nil {
		if _, err := s.repos.Owners.Get(ctx, nil, *in.OwnerID); err != nil {
			if appErrors.IsNotFound(err) {
				return appErrors.NewValidationError("owner",
					fmt.Sprintf(`Invalid pk "%d" - object does not exist.`, *in.OwnerID))
			}
			return err
		}
	}

	taken, err := s.repos.Schemas.NameTaken(ctx, nil, in.Name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return appErrors.NewConflictError("Risk Model", appErrors.KeyName, in.Name)
	}
	return nil
}

// normalizeInput returns a sanitized copy of in. For new schemas every
// field is treated as new.
func normalizeInput(in *models.SchemaInput, create bool) *models.SchemaInput {
	out := *in
	out.Description = sanitizeText(in.Description)
	out.SuccessMsg = sanitizeText(in.SuccessMsg)
	out.Fields = make([]models.FieldInput, len(in.Fields))
	for i, f := range in.Fields {
		f.HelpText = sanitizeText(f.HelpText)
		f.Slug = ""
		if create {
			f.ID = nil
		}
		out.Fields[i] = f
	}
	return &out
}

func applySchemaInput(schema *models.Schema, in *models.SchemaInput) {
	schema.OwnerID = in.OwnerID
	schema.Name = in.Name
	schema.Description = in.Description
	schema.SuccessMsg = in.SuccessMsg
	schema.Button = in.Button
	if in.Activated != nil {
		schema.Activated = *in.Activated
	}
}
