package services

import (
	"github.com/Josh-IE/risk-management/internal/config"
	"github.com/Josh-IE/risk-management/internal/domain/ports"
	"github.com/Josh-IE/risk-management/internal/infrastructure/database"
	"github.com/Josh-IE/risk-management/internal/infrastructure/persistence"
	"github.com/Josh-IE/risk-management/pkg/fieldtypes"
)

// ServiceManager orchestrates all services with dependency injection
type ServiceManager struct {
	db *database.Connection

	Repos       *persistence.Repositories
	Schemas     *SchemaService
	Submissions *SubmissionProcessor
	Projector   *ResponseProjector
}

// NewServiceManager creates a new service manager with all dependencies wired
func NewServiceManager(db *database.Connection, cfg *config.Config, blobs ports.BlobStore) *ServiceManager {
	sm := &ServiceManager{db: db}

	// Initialize services in dependency order
	registry := fieldtypes.GetRegistry()
	sm.Repos = persistence.NewRepositories(db.DB())

	cache := NewSchemaCache(cfg.SchemaCacheSize, cfg.SchemaCacheTTL)
	sm.Schemas = NewSchemaService(sm.Repos, registry, NewSchemaValidator(registry, cfg.FieldMaxLength), cache)

	fieldValidator := NewFieldValidator(registry, sm.Repos.Values, cfg.FieldMaxLength)
	sm.Submissions = NewSubmissionProcessor(sm.Repos, sm.Schemas, fieldValidator, blobs)
	sm.Projector = NewResponseProjector(sm.Repos, blobs)

	return sm
}

// DB returns the connection the services run on
func (sm *ServiceManager) DB() *database.Connection {
	return sm.db
}
