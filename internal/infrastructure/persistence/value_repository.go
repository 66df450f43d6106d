package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Josh-IE/risk-management/internal/domain/models"
	"github.com/Josh-IE/risk-management/pkg/query"
)

// ValueRepository stores submitted values as text
type ValueRepository struct {
	db *sql.DB
}

// NewValueRepository creates a new ValueRepository
func NewValueRepository(db *sql.DB) *ValueRepository {
	return &ValueRepository{db: db}
}

// BulkCreate inserts every value in one statement
func (r *ValueRepository) BulkCreate(ctx context.Context, tx *sql.Tx, values []models.Value) error {
	if len(values) == 0 {
		return nil
	}
	ts := now()
	rows := make([]query.Row, len(values))
	for i, v := range values {
		var text sql.NullString
		if v.Text != nil {
			text = sql.NullString{String: *v.Text, Valid: true}
		}
		rows[i] = query.Row{
			"submission_id": v.SubmissionID,
			"field_id":      v.FieldID,
			"value":         text,
			"created_on":    ts,
			"updated_on":    ts,
		}
	}
	q := query.BulkInsert(TableValues, rows).Build()
	if _, err := getExecutor(r.db, tx).ExecContext(ctx, q.SQL, q.Params...); err != nil {
		return fmt.Errorf("failed to insert values: %w", err)
	}
	return nil
}

// ExistsForSuccessfulSubmission reports whether text is already stored for
// the field by a submission that succeeded. Values of failed or pending
// submissions do not count.
func (r *ValueRepository) ExistsForSuccessfulSubmission(ctx context.Context, tx *sql.Tx, fieldID int64, text string) (bool, error) {
	q := query.From(TableValues).
		Select([]string{"id"}).
		Join("INNER", TableSubmissions, "`submissions`.`id` = `submission_values`.`submission_id`").
		Where("`submission_values`.`field_id` = ?", fieldID).
		Where("`submission_values`.`value` = ?", text).
		Where("`submissions`.`success` = ?", true).
		Limit(1).
		Build()

	var id int64
	err := getExecutor(r.db, tx).QueryRowContext(ctx, q.SQL, q.Params...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check value uniqueness: %w", err)
	}
	return true, nil
}

// ListBySubmission returns the submission's values joined with their
// fields, soft-deleted fields included, in insertion order
func (r *ValueRepository) ListBySubmission(ctx context.Context, tx *sql.Tx, submissionID int64) ([]models.ValueWithField, error) {
	q := query.From(TableValues).
		Select([]string{"id", "submission_id", "field_id", "value", "created_on", "updated_on"}).
		AddSelectRaw("`schema_fields`.`name`", "field_name").
		AddSelectRaw("`schema_fields`.`field_type`", "field_type").
		Join("INNER", TableFields, "`schema_fields`.`id` = `submission_values`.`field_id`").
		Where("`submission_values`.`submission_id` = ?", submissionID).
		OrderBy("id", "ASC").
		Build()

	rows, err := getExecutor(r.db, tx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, fmt.Errorf("failed to list values: %w", err)
	}
	defer rows.Close()

	values := make([]models.ValueWithField, 0)
	for rows.Next() {
		var v models.ValueWithField
		var text sql.NullString
		var created, updated dbTime
		if err := rows.Scan(&v.ID, &v.SubmissionID, &v.FieldID, &text, &created, &updated, &v.FieldName, &v.FieldType); err != nil {
			return nil, err
		}
		if text.Valid {
			s := text.String
			v.Text = &s
		}
		v.CreatedOn = created.Time
		v.UpdatedOn = updated.Time
		values = append(values, v)
	}
	return values, rows.Err()
}
