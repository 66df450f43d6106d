package rest_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Josh-IE/risk-management/internal/domain/models"
	"github.com/Josh-IE/risk-management/pkg/fieldtypes"
)

// MockSchemaService is a mock implementation of rest.SchemaService
type MockSchemaService struct {
	mock.Mock
}

func (m *MockSchemaService) FieldTypes() []fieldtypes.Choice {
	args := m.Called()
	return args.Get(0).([]fieldtypes.Choice)
}

func (m *MockSchemaService) List(ctx context.Context, ownerID *int64) ([]*models.Schema, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Schema), args.Error(1)
}

func (m *MockSchemaService) Get(ctx context.Context, id int64) (*models.Schema, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Schema), args.Error(1)
}

func (m *MockSchemaService) Create(ctx context.Context, in *models.SchemaInput) (*models.Schema, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Schema), args.Error(1)
}

func (m *MockSchemaService) Update(ctx context.Context, id int64, in *models.SchemaInput) (*models.Schema, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Schema), args.Error(1)
}

// MockSubmissionService is a mock implementation of rest.SubmissionService
type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) Submit(ctx context.Context, req *models.SubmitRequest) (*models.SubmitResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubmitResult), args.Error(1)
}

// MockProjectionService is a mock implementation of rest.ProjectionService
type MockProjectionService struct {
	mock.Mock
}

func (m *MockProjectionService) Project(ctx context.Context, submissionID int64, origin string) ([]models.ProjectedValue, error) {
	args := m.Called(ctx, submissionID, origin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProjectedValue), args.Error(1)
}

func (m *MockProjectionService) ListSuccessful(ctx context.Context, schemaID *int64) ([]models.Submission, error) {
	args := m.Called(ctx, schemaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Submission), args.Error(1)
}
