package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Josh-IE/risk-management/pkg/query"
)

// Repositories bundles every repository over one connection
type Repositories struct {
	Owners      *OwnerRepository
	Schemas     *SchemaRepository
	Fields      *FieldRepository
	Submissions *SubmissionRepository
	Values      *ValueRepository
	Tx          *TransactionManager
}

// NewRepositories creates all repositories for db
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Owners:      NewOwnerRepository(db),
		Schemas:     NewSchemaRepository(db),
		Fields:      NewFieldRepository(db),
		Submissions: NewSubmissionRepository(db),
		Values:      NewValueRepository(db),
		Tx:          NewTransactionManager(db),
	}
}

// Truncate removes every row, children before parents
func (r *Repositories) Truncate(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{TableValues, TableSubmissions, TableFields, TableSchemas, TableOwners} {
		q := query.Delete(table).Build()
		if _, err := tx.ExecContext(ctx, q.SQL, q.Params...); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}
