package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Josh-IE/risk-management/internal/domain/models"
	appErrors "github.com/Josh-IE/risk-management/pkg/errors"
	"github.com/Josh-IE/risk-management/pkg/query"
)

// FieldRepository stores schema fields. Fields are soft-deleted, never
// removed, so historical values keep their field.
type FieldRepository struct {
	db *sql.DB
}

// NewFieldRepository creates a new FieldRepository
func NewFieldRepository(db *sql.DB) *FieldRepository {
	return &FieldRepository{db: db}
}

var fieldColumns = []string{
	"id", "schema_id", "name", "slug", "field_type", "default_value", "regex_pattern", "min_length",
	"max_length", "choices", "required", "help_text", "sort_order", "is_unique", "deleted",
	"created_on", "updated_on",
}

// fieldValues maps the mutable attributes of f to columns
func fieldValues(f *models.Field) (map[string]interface{}, error) {
	var choices sql.NullString
	if len(f.Choices) > 0 {
		data, err := json.Marshal(f.Choices)
		if err != nil {
			return nil, fmt.Errorf("failed to encode choices: %w", err)
		}
		choices = sql.NullString{String: string(data), Valid: true}
	}
	return map[string]interface{}{
		"name":          f.Name,
		"field_type":    f.FieldType,
		"default_value": f.DefaultValue,
		"regex_pattern": f.RegexPattern,
		"min_length":    nullInt(f.MinLength),
		"max_length":    nullInt(f.MaxLength),
		"choices":       choices,
		"required":      f.Required,
		"help_text":     f.HelpText,
		"sort_order":    f.Order,
		"is_unique":     f.Unique,
		"updated_on":    f.UpdatedOn,
	}, nil
}

// ListActive returns the schema's fields that are not soft-deleted,
// ascending by order
func (r *FieldRepository) ListActive(ctx context.Context, tx *sql.Tx, schemaID int64) ([]models.Field, error) {
	q := query.From(TableFields).
		Select(fieldColumns).
		Where("`schema_fields`.`schema_id` = ?", schemaID).
		ExcludeDeleted().
		OrderBy("sort_order", "ASC").
		OrderBy("id", "ASC").
		Build()
	return r.list(ctx, tx, q)
}

// ListAll returns every field of the schema, soft-deleted ones included
func (r *FieldRepository) ListAll(ctx context.Context, tx *sql.Tx, schemaID int64) ([]models.Field, error) {
	q := query.From(TableFields).
		Select(fieldColumns).
		Where("`schema_fields`.`schema_id` = ?", schemaID).
		OrderBy("sort_order", "ASC").
		OrderBy("id", "ASC").
		Build()
	return r.list(ctx, tx, q)
}

// Get returns a field by id, soft-deleted or not
func (r *FieldRepository) Get(ctx context.Context, tx *sql.Tx, id int64) (*models.Field, error) {
	q := query.From(TableFields).Select(fieldColumns).Where("`schema_fields`.`id` = ?", id).Build()
	fields, err := r.list(ctx, tx, q)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, appErrors.NewNotFoundError("Field", fmt.Sprint(id))
	}
	return &fields[0], nil
}

// Update writes the mutable attributes of f. Slug and schema never change.
func (r *FieldRepository) Update(ctx context.Context, tx *sql.Tx, f *models.Field) error {
	f.UpdatedOn = now()
	values, err := fieldValues(f)
	if err != nil {
		return err
	}
	q := query.Update(TableFields).
		Set(values).
		Where("`id` = ?", f.ID).
		Where("`schema_id` = ?", f.SchemaID).
		Build()
	if _, err := getExecutor(r.db, tx).ExecContext(ctx, q.SQL, q.Params...); err != nil {
		return fmt.Errorf("failed to update field %d: %w", f.ID, err)
	}
	return nil
}

// SoftDelete flags the given fields of a schema as deleted
func (r *FieldRepository) SoftDelete(ctx context.Context, tx *sql.Tx, schemaID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	params := make([]interface{}, len(ids))
	for i, id := range ids {
		params[i] = id
	}
	q := query.Update(TableFields).
		Set(map[string]interface{}{
			query.ColumnDeleted: query.DeletedTrue,
			"updated_on":        now(),
		}).
		Where("`schema_id` = ?", schemaID).
		WhereIn("`id`", params).
		Build()
	if _, err := getExecutor(r.db, tx).ExecContext(ctx, q.SQL, q.Params...); err != nil {
		return fmt.Errorf("failed to soft delete fields: %w", err)
	}
	return nil
}

// BulkCreate inserts fields, which must already carry their slugs, and
// sets their IDs
func (r *FieldRepository) BulkCreate(ctx context.Context, tx *sql.Tx, fields []models.Field) ([]models.Field, error) {
	exec := getExecutor(r.db, tx)
	created := make([]models.Field, len(fields))
	for i, f := range fields {
		f.CreatedOn = now()
		f.UpdatedOn = f.CreatedOn
		values, err := fieldValues(&f)
		if err != nil {
			return nil, err
		}
		values["schema_id"] = f.SchemaID
		values["slug"] = f.Slug
		values[query.ColumnDeleted] = query.DeletedFalse
		values["created_on"] = f.CreatedOn

		q := query.Insert(TableFields, values).Build()
		res, err := exec.ExecContext(ctx, q.SQL, q.Params...)
		if err != nil {
			if isDuplicateKey(err) {
				return nil, appErrors.NewConflictError("Field", "slug", f.Slug)
			}
			return nil, fmt.Errorf("failed to insert field %q: %w", f.Name, err)
		}
		if f.ID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("failed to read field id: %w", err)
		}
		created[i] = f
	}
	return created, nil
}

// SlugExists reports whether any field, deleted or not, uses slug
func (r *FieldRepository) SlugExists(ctx context.Context, tx *sql.Tx, slug string) (bool, error) {
	q := query.From(TableFields).
		Select([]string{"id"}).
		Where("`schema_fields`.`slug` = ?", slug).
		Limit(1).
		Build()

	var id int64
	err := getExecutor(r.db, tx).QueryRowContext(ctx, q.SQL, q.Params...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return true, nil
}

func (r *FieldRepository) list(ctx context.Context, tx *sql.Tx, q query.Statement) ([]models.Field, error) {
	rows, err := getExecutor(r.db, tx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, fmt.Errorf("failed to list fields: %w", err)
	}
	defer rows.Close()

	fields := make([]models.Field, 0)
	for rows.Next() {
		var f models.Field
		var minLen, maxLen sql.NullInt64
		var choices sql.NullString
		var created, updated dbTime
		if err := rows.Scan(
			&f.ID, &f.SchemaID, &f.Name, &f.Slug, &f.FieldType, &f.DefaultValue, &f.RegexPattern,
			&minLen, &maxLen, &choices, &f.Required, &f.HelpText, &f.Order, &f.Unique, &f.Deleted,
			&created, &updated,
		); err != nil {
			return nil, err
		}
		f.MinLength = intPtr(minLen)
		f.MaxLength = intPtr(maxLen)
		if choices.Valid && choices.String != "" {
			if err := json.Unmarshal([]byte(choices.String), &f.Choices); err != nil {
				return nil, fmt.Errorf("field %d has malformed choices: %w", f.ID, err)
			}
		}
		f.CreatedOn = created.Time
		f.UpdatedOn = updated.Time
		fields = append(fields, f)
	}
	return fields, rows.Err()
}
