package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/Josh-IE/risk-management/internal/domain/models"
	appErrors "github.com/Josh-IE/risk-management/pkg/errors"
	"github.com/Josh-IE/risk-management/pkg/query"
)

// SubmissionRepository stores submission attempts. Rows are never deleted:
// unsuccessful ones remain as the audit trail of failed attempts.
type SubmissionRepository struct {
	db *sql.DB
}

// NewSubmissionRepository creates a new SubmissionRepository
func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

var submissionColumns = []string{"id", "schema_id", "success", "created_on"}

// Create inserts an unsuccessful submission for schemaID
func (r *SubmissionRepository) Create(ctx context.Context, tx *sql.Tx, schemaID int64) (*models.Submission, error) {
	sub := &models.Submission{SchemaID: schemaID, CreatedOn: now()}
	q := query.Insert(TableSubmissions, map[string]interface{}{
		"schema_id":  schemaID,
		"success":    false,
		"created_on": sub.CreatedOn,
	}).Build()

	res, err := getExecutor(r.db, tx).ExecContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert submission: %w", err)
	}
	if sub.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read submission id: %w", err)
	}
	return sub, nil
}

// MarkSuccess flips the success flag of a submission
func (r *SubmissionRepository) MarkSuccess(ctx context.Context, tx *sql.Tx, id int64) error {
	q := query.Update(TableSubmissions).
		Set(map[string]interface{}{"success": true}).
		Where("`id` = ?", id).
		Build()
	if _, err := getExecutor(r.db, tx).ExecContext(ctx, q.SQL, q.Params...); err != nil {
		return fmt.Errorf("failed to mark submission %d successful: %w", id, err)
	}
	return nil
}

// Get returns a submission whatever its success flag
func (r *SubmissionRepository) Get(ctx context.Context, tx *sql.Tx, id int64) (*models.Submission, error) {
	q := query.From(TableSubmissions).Select(submissionColumns).Where("`submissions`.`id` = ?", id).Build()
	subs, err := r.list(ctx, tx, q)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, appErrors.NewNotFoundError("Submission", strconv.FormatInt(id, 10))
	}
	return &subs[0], nil
}

// ListSuccessful returns successful submissions newest first, optionally
// only those of one schema
func (r *SubmissionRepository) ListSuccessful(ctx context.Context, tx *sql.Tx, schemaID *int64) ([]models.Submission, error) {
	b := query.From(TableSubmissions).
		Select(submissionColumns).
		Where("`submissions`.`success` = ?", true)
	if schemaID != nil {
		b = b.Where("`submissions`.`schema_id` = ?", *schemaID)
	}
	return r.list(ctx, tx, b.OrderBy("id", "DESC").Build())
}

func (r *SubmissionRepository) list(ctx context.Context, tx *sql.Tx, q query.Statement) ([]models.Submission, error) {
	rows, err := getExecutor(r.db, tx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	subs := make([]models.Submission, 0)
	for rows.Next() {
		var s models.Submission
		var created dbTime
		if err := rows.Scan(&s.ID, &s.SchemaID, &s.Success, &created); err != nil {
			return nil, err
		}
		s.CreatedOn = created.Time
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
