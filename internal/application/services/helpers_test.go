package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Josh-IE/risk-management/internal/config"
	"github.com/Josh-IE/risk-management/internal/domain/models"
	"github.com/Josh-IE/risk-management/internal/domain/ports"
	"github.com/Josh-IE/risk-management/internal/infrastructure/blobstore"
	"github.com/Josh-IE/risk-management/internal/testsupport"
	"github.com/Josh-IE/risk-management/pkg/fieldtypes"
)

func ptr[T any](v T) *T { return &v }

func textInput(name string, order int) models.FieldInput {
	return models.FieldInput{Name: name, FieldType: fieldtypes.Text, Order: ptr(order)}
}

func typedInput(name, fieldType string, order int) models.FieldInput {
	return models.FieldInput{Name: name, FieldType: fieldType, Order: ptr(order)}
}

// newTestManager wires the services over a migrated SQLite file and a local
// blob store in a temp dir
func newTestManager(t *testing.T) *ServiceManager {
	t.Helper()
	blobs, err := blobstore.NewLocalStore(t.TempDir(), "/media/")
	require.NoError(t, err)
	return newTestManagerWithBlobs(t, blobs)
}

func newTestManagerWithBlobs(t *testing.T, blobs ports.BlobStore) *ServiceManager {
	t.Helper()
	conn := testsupport.NewSQLiteConnection(t)
	cfg := &config.Config{
		FieldMaxLength:  1000,
		SchemaCacheSize: 16,
		SchemaCacheTTL:  time.Minute,
	}
	return NewServiceManager(conn, cfg, blobs)
}

// createSchema stores a schema named name with the given fields
func createSchema(t *testing.T, sm *ServiceManager, name string, fields ...models.FieldInput) *models.Schema {
	t.Helper()
	schema, err := sm.Schemas.Create(context.Background(), &models.SchemaInput{
		Name:   name,
		Button: "Save",
		Fields: fields,
	})
	require.NoError(t, err)
	return schema
}

// countRows returns the number of rows in table
func countRows(t *testing.T, sm *ServiceManager, table string) int {
	t.Helper()
	var n int
	require.NoError(t, sm.DB().DB().QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func fieldBySlug(t *testing.T, schema *models.Schema, slug string) *models.Field {
	t.Helper()
	for i := range schema.Fields {
		if schema.Fields[i].Slug == slug {
			return &schema.Fields[i]
		}
	}
	t.Fatalf("schema %q has no field %q", schema.Name, slug)
	return nil
}
