package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/Josh-IE/risk-management/internal/domain/models"
	appErrors "github.com/Josh-IE/risk-management/pkg/errors"
	"github.com/Josh-IE/risk-management/pkg/query"
)

// SchemaRepository stores schema rows. Fields live in FieldRepository.
type SchemaRepository struct {
	db *sql.DB
}

// NewSchemaRepository creates a new SchemaRepository
func NewSchemaRepository(db *sql.DB) *SchemaRepository {
	return &SchemaRepository{db: db}
}

var schemaColumns = []string{
	"id", "owner_id", "name", "description", "success_msg", "button", "activated", "created_on", "updated_on",
}

func schemaValues(s *models.Schema) map[string]interface{} {
	var owner sql.NullInt64
	if s.OwnerID != nil {
		owner = sql.NullInt64{Int64: *s.OwnerID, Valid: true}
	}
	return map[string]interface{}{
		"owner_id":    owner,
		"name":        s.Name,
		"description": s.Description,
		"success_msg": s.SuccessMsg,
		"button":      s.Button,
		"activated":   s.Activated,
		"updated_on":  s.UpdatedOn,
	}
}

// Create inserts s and sets its ID and timestamps
func (r *SchemaRepository) Create(ctx context.Context, tx *sql.Tx, s *models.Schema) error {
	s.CreatedOn = now()
	s.UpdatedOn = s.CreatedOn
	values := schemaValues(s)
	values["created_on"] = s.CreatedOn

	q := query.Insert(TableSchemas, values).Build()
	res, err := getExecutor(r.db, tx).ExecContext(ctx, q.SQL, q.Params...)
	if err != nil {
		if isDuplicateKey(err) {
			return appErrors.NewConflictError("Risk Model", "name", s.Name)
		}
		return fmt.Errorf("failed to insert schema: %w", err)
	}
	if s.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read schema id: %w", err)
	}
	return nil
}

// Update writes every attribute of s and bumps updated_on
func (r *SchemaRepository) Update(ctx context.Context, tx *sql.Tx, s *models.Schema) error {
	s.UpdatedOn = now()
	q := query.Update(TableSchemas).Set(schemaValues(s)).Where("`id` = ?", s.ID).Build()

	if _, err := getExecutor(r.db, tx).ExecContext(ctx, q.SQL, q.Params...); err != nil {
		if isDuplicateKey(err) {
			return appErrors.NewConflictError("Risk Model", "name", s.Name)
		}
		return fmt.Errorf("failed to update schema: %w", err)
	}
	return nil
}

// Get returns the schema row without fields
func (r *SchemaRepository) Get(ctx context.Context, tx *sql.Tx, id int64) (*models.Schema, error) {
	q := query.From(TableSchemas).Select(schemaColumns).Where("`schemas`.`id` = ?", id).Build()
	rows, err := getExecutor(r.db, tx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, appErrors.NewNotFoundError("Risk Model", strconv.FormatInt(id, 10))
	}
	return scanSchema(rows)
}

// List returns schemas newest first, optionally only those of one owner
func (r *SchemaRepository) List(ctx context.Context, tx *sql.Tx, ownerID *int64) ([]*models.Schema, error) {
	b := query.From(TableSchemas).Select(schemaColumns)
	if ownerID != nil {
		b = b.Where("`schemas`.`owner_id` = ?", *ownerID)
	}
	q := b.OrderBy("id", "DESC").Build()

	rows, err := getExecutor(r.db, tx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	defer rows.Close()

	schemas := make([]*models.Schema, 0)
	for rows.Next() {
		s, err := scanSchema(rows)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	return schemas, rows.Err()
}

// NameTaken reports whether another schema than excludeID uses name
func (r *SchemaRepository) NameTaken(ctx context.Context, tx *sql.Tx, name string, excludeID int64) (bool, error) {
	q := query.From(TableSchemas).
		Select([]string{"id"}).
		Where("`schemas`.`name` = ?", name).
		Where("`schemas`.`id` <> ?", excludeID).
		Limit(1).
		Build()

	var id int64
	err := getExecutor(r.db, tx).QueryRowContext(ctx, q.SQL, q.Params...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check schema name: %w", err)
	}
	return true, nil
}

func scanSchema(rows *sql.Rows) (*models.Schema, error) {
	var s models.Schema
	var owner sql.NullInt64
	var created, updated dbTime
	if err := rows.Scan(&s.ID, &owner, &s.Name, &s.Description, &s.SuccessMsg, &s.Button, &s.Activated, &created, &updated); err != nil {
		return nil, err
	}
	if owner.Valid {
		s.OwnerID = &owner.Int64
	}
	s.CreatedOn = created.Time
	s.UpdatedOn = updated.Time
	return &s, nil
}
