package services

import (
	"context"

	"github.com/Josh-IE/risk-management/internal/domain/models"
	"github.com/Josh-IE/risk-management/internal/domain/ports"
	"github.com/Josh-IE/risk-management/internal/infrastructure/persistence"
	"github.com/Josh-IE/risk-management/pkg/fieldtypes"
)

// ResponseProjector renders stored submissions for clients
type ResponseProjector struct {
	repos *persistence.Repositories
	blobs ports.BlobStore
}

// NewResponseProjector creates a new ResponseProjector
func NewResponseProjector(repos *persistence.Repositories, blobs ports.BlobStore) *ResponseProjector {
	return &ResponseProjector{repos: repos, blobs: blobs}
}

// Project returns the values of a submission in storage order, including
// values of fields deleted since. File values become URLs; origin is the
// scheme and host of the calling request.
func (p *ResponseProjector) Project(ctx context.Context, submissionID int64, origin string) ([]models.ProjectedValue, error) {
	if _, err := p.repos.Submissions.Get(ctx, nil, submissionID); err != nil {
		return nil, err
	}

	stored, err := p.repos.Values.ListBySubmission(ctx, nil, submissionID)
	if err != nil {
		return nil, err
	}

	out := make([]models.ProjectedValue, 0, len(stored))
	for _, v := range stored {
		value := v.Text
		if v.FieldType == fieldtypes.File && value != nil {
			url := p.blobs.ResolveURL(*value, origin)
			value = &url
		}
		out = append(out, models.ProjectedValue{
			ID:        v.ID,
			FieldName: v.FieldName,
			FieldType: v.FieldType,
			Value:     value,
		})
	}
	return out, nil
}

// ListSuccessful returns the successful submissions newest first, optionally
// for one schema
func (p *ResponseProjector) ListSuccessful(ctx context.Context, schemaID *int64) ([]models.Submission, error) {
	return p.repos.Submissions.ListSuccessful(ctx, nil, schemaID)
}
