package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"

	"github.com/Josh-IE/risk-management/internal/domain/models"
	"github.com/Josh-IE/risk-management/internal/domain/ports"
	"github.com/Josh-IE/risk-management/internal/infrastructure/persistence"
	appErrors "github.com/Josh-IE/risk-management/pkg/errors"
)

// SubmissionProcessor validates and stores data submitted against a schema
type SubmissionProcessor struct {
	repos     *persistence.Repositories
	schemas   *SchemaService
	validator *FieldValidator
	blobs     ports.BlobStore
}

// NewSubmissionProcessor creates a new SubmissionProcessor
func NewSubmissionProcessor(repos *persistence.Repositories, schemas *SchemaService, validator *FieldValidator, blobs ports.BlobStore) *SubmissionProcessor {
	return &SubmissionProcessor{repos: repos, schemas: schemas, validator: validator, blobs: blobs}
}

// Submit stores req.Data as one submission. The submission row is written
// first and stays unsuccessful if any value is rejected; the values and the
// success flag are written together once every value passed.
//
// Uniqueness is checked before the values are written without holding a
// lock, so two concurrent submissions of the same value can both succeed.
func (p *SubmissionProcessor) Submit(ctx context.Context, req *models.SubmitRequest) (*models.SubmitResult, error) {
	schema, err := p.schemas.Get(ctx, req.SchemaID)
	if err != nil {
		return nil, err
	}

	if req.Data == nil {
		submissionsTotal.WithLabelValues(outcomeInvalid).Inc()
		return nil, appErrors.NewValueValidationError(appErrors.KeyData, MsgRequired)
	}
	for _, f := range schema.Fields {
		if _, ok := req.Data[f.Slug]; f.Required && !ok {
			submissionsTotal.WithLabelValues(outcomeInvalid).Inc()
			return nil, appErrors.NewValueValidationError(appErrors.KeyData, fmt.Sprintf("%s is required.", f.Name))
		}
	}

	submission, err := p.repos.Submissions.Create(ctx, nil, schema.ID)
	if err != nil {
		submissionsTotal.WithLabelValues(outcomeError).Inc()
		return nil, err
	}

	values, err := p.cleanValues(ctx, schema, req.Data)
	if err != nil {
		if appErrors.IsValidation(err) || appErrors.IsNotFound(err) {
			submissionsTotal.WithLabelValues(outcomeInvalid).Inc()
		} else {
			submissionsTotal.WithLabelValues(outcomeError).Inc()
		}
		return nil, err
	}

	rows, locators, err := p.saveUploads(ctx, submission.ID, values)
	if err != nil {
		p.discardUploads(ctx, submission.ID, locators)
		submissionsTotal.WithLabelValues(outcomeError).Inc()
		return nil, err
	}

	err = p.repos.Tx.WithRetry(ctx, func(tx *sql.Tx) error {
		if err := p.repos.Values.BulkCreate(ctx, tx, rows); err != nil {
			return err
		}
		return p.repos.Submissions.MarkSuccess(ctx, tx, submission.ID)
	})
	if err != nil {
		p.discardUploads(ctx, submission.ID, locators)
		submissionsTotal.WithLabelValues(outcomeError).Inc()
		return nil, err
	}

	submissionsTotal.WithLabelValues(outcomeSuccess).Inc()
	log.Printf("✅ Stored submission %d for risk model %d (%d values)", submission.ID, schema.ID, len(rows))
	return &models.SubmitResult{
		SubmissionID: submission.ID,
		SchemaID:     schema.ID,
		SchemaName:   schema.Name,
		TimeCreated:  submission.CreatedOn,
	}, nil
}

// cleanValues resolves every submitted slug to an active field of schema
// and validates the values in field order
func (p *SubmissionProcessor) cleanValues(ctx context.Context, schema *models.Schema, data map[string]interface{}) ([]*CleanedValue, error) {
	known := make(map[string]bool, len(schema.Fields))
	for _, f := range schema.Fields {
		known[f.Slug] = true
	}
	slugs := make([]string, 0, len(data))
	for s := range data {
		slugs = append(slugs, s)
	}
	sort.Strings(slugs)
	for _, s := range slugs {
		if !known[s] {
			return nil, appErrors.NewNotFoundError("Field", s)
		}
	}

	cleaned := make([]*CleanedValue, 0, len(data))
	for i := range schema.Fields {
		field := &schema.Fields[i]
		raw, ok := data[field.Slug]
		if !ok {
			continue
		}
		value, err := p.validator.Validate(ctx, field, raw)
		if err != nil {
			return nil, err
		}
		cleaned = append(cleaned, value)
	}
	return cleaned, nil
}

// saveUploads writes file payloads to the blob store and builds the value
// rows, file values carrying the returned locator. The locators saved so far
// are returned even on error.
func (p *SubmissionProcessor) saveUploads(ctx context.Context, submissionID int64, values []*CleanedValue) ([]models.Value, []string, error) {
	rows := make([]models.Value, 0, len(values))
	var locators []string
	for _, v := range values {
		text := v.Text
		if v.Upload != nil {
			locator, err := p.blobs.Save(ctx, v.Upload.Filename, bytes.NewReader(v.Upload.Data))
			if err != nil {
				return nil, locators, appErrors.NewInternalError(fmt.Sprintf("failed to store file for %s", v.Field.Name), err)
			}
			locators = append(locators, locator)
			text = &locator
		}
		rows = append(rows, models.Value{SubmissionID: submissionID, FieldID: v.Field.ID, Text: text})
	}
	return rows, locators, nil
}

// discardUploads deletes blobs whose values were never committed. Failures
// are logged with the locator left behind.
func (p *SubmissionProcessor) discardUploads(ctx context.Context, submissionID int64, locators []string) {
	ctx = context.WithoutCancel(ctx)
	for _, locator := range locators {
		if err := p.blobs.Delete(ctx, locator); err != nil {
			log.Printf("⚠️  Orphaned upload %s for submission %d: %v", locator, submissionID, err)
			continue
		}
		log.Printf("🗑️  Discarded upload %s of failed submission %d", locator, submissionID)
	}
}
