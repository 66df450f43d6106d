package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Josh-IE/risk-management/internal/application/services"
	"github.com/Josh-IE/risk-management/internal/config"
	"github.com/Josh-IE/risk-management/internal/infrastructure/blobstore"
	"github.com/Josh-IE/risk-management/internal/testsupport"
)

func newSeeder(t *testing.T) (*Seeder, *services.ServiceManager) {
	t.Helper()
	conn := testsupport.NewSQLiteConnection(t)
	blobs, err := blobstore.NewLocalStore(t.TempDir(), "/media/")
	require.NoError(t, err)

	sm := services.NewServiceManager(conn, &config.Config{
		FieldMaxLength:  1000,
		SchemaCacheSize: 16,
		SchemaCacheTTL:  time.Minute,
	}, blobs)
	return NewSeeder(sm.Repos, sm.Schemas), sm
}

func TestParse_DefaultFixtures(t *testing.T) {
	f, err := Parse(DefaultFixtures())
	require.NoError(t, err)
	assert.Len(t, f.Owners, 2)
	require.Len(t, f.Schemas, 3)
	assert.Equal(t, "Automobile Policy", f.Schemas[0].Name)
	assert.Equal(t, "BriteCore", f.Schemas[0].Owner)
	require.NotNil(t, f.Schemas[2].Activated)
	assert.False(t, *f.Schemas[2].Activated)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("owners:\n  - nam: typo\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse fixtures")
}

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()
	seeder, sm := newSeeder(t)

	f, err := Parse(DefaultFixtures())
	require.NoError(t, err)

	summary, err := seeder.Run(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, &Summary{Owners: 2, Schemas: 3, Fields: 14}, summary)

	owner, err := sm.Repos.Owners.GetByName(ctx, nil, "BriteCore")
	require.NoError(t, err)

	owned, err := sm.Schemas.List(ctx, &owner.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "Automobile Policy", owned[0].Name)
	assert.Equal(t, "full-name", owned[0].Fields[0].Slug)
	assert.True(t, owned[0].Fields[1].Unique)

	all, err := sm.Schemas.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSeeder_RunTwiceStartsFresh(t *testing.T) {
	ctx := context.Background()
	seeder, sm := newSeeder(t)

	f, err := Parse(DefaultFixtures())
	require.NoError(t, err)

	_, err = seeder.Run(ctx, f)
	require.NoError(t, err)
	_, err = seeder.Run(ctx, f)
	require.NoError(t, err)

	owners, err := sm.Repos.Owners.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, owners, 2)

	all, err := sm.Schemas.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSeeder_UnknownOwner(t *testing.T) {
	seeder, _ := newSeeder(t)

	f := &Fixtures{Schemas: []SchemaFixture{{
		Owner:  "Nobody",
		Name:   "Orphan",
		Button: "Go",
	}}}

	_, err := seeder.Run(context.Background(), f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown owner "Nobody"`)
}

func TestSeeder_InvalidSchemaStops(t *testing.T) {
	seeder, _ := newSeeder(t)
	order := 1

	f := &Fixtures{Schemas: []SchemaFixture{{
		Name:   "Broken",
		Button: "Go",
		Fields: []FieldFixture{{Name: "Pick", FieldType: "select", Order: &order}},
	}}}

	summary, err := seeder.Run(context.Background(), f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `risk model "Broken"`)
	assert.Equal(t, 0, summary.Schemas)
}
