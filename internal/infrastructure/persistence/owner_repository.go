package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/Josh-IE/risk-management/internal/domain/models"
	appErrors "github.com/Josh-IE/risk-management/pkg/errors"
	"github.com/Josh-IE/risk-management/pkg/query"
)

// OwnerRepository stores the identities schemas belong to
type OwnerRepository struct {
	db *sql.DB
}

// NewOwnerRepository creates a new OwnerRepository
func NewOwnerRepository(db *sql.DB) *OwnerRepository {
	return &OwnerRepository{db: db}
}

var ownerColumns = []string{"id", "name", "created_on"}

// Create inserts an owner. A taken name yields a ConflictError.
func (r *OwnerRepository) Create(ctx context.Context, tx *sql.Tx, name string) (*models.Owner, error) {
	owner := &models.Owner{Name: name, CreatedOn: now()}
	q := query.Insert(TableOwners, map[string]interface{}{
		"name":       owner.Name,
		"created_on": owner.CreatedOn,
	}).Build()

	res, err := getExecutor(r.db, tx).ExecContext(ctx, q.SQL, q.Params...)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, appErrors.NewConflictError("Owner", "name", name)
		}
		return nil, fmt.Errorf("failed to insert owner: %w", err)
	}
	if owner.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read owner id: %w", err)
	}
	return owner, nil
}

// Get returns an owner by id
func (r *OwnerRepository) Get(ctx context.Context, tx *sql.Tx, id int64) (*models.Owner, error) {
	q := query.From(TableOwners).Select(ownerColumns).Where("`owners`.`id` = ?", id).Build()
	owner, err := r.scanOne(getExecutor(r.db, tx).QueryRowContext(ctx, q.SQL, q.Params...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.NewNotFoundError("Owner", strconv.FormatInt(id, 10))
	}
	return owner, err
}

// GetByName returns an owner by its unique name
func (r *OwnerRepository) GetByName(ctx context.Context, tx *sql.Tx, name string) (*models.Owner, error) {
	q := query.From(TableOwners).Select(ownerColumns).Where("`owners`.`name` = ?", name).Build()
	owner, err := r.scanOne(getExecutor(r.db, tx).QueryRowContext(ctx, q.SQL, q.Params...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.NewNotFoundError("Owner", name)
	}
	return owner, err
}

// List returns every owner ordered by name
func (r *OwnerRepository) List(ctx context.Context, tx *sql.Tx) ([]models.Owner, error) {
	q := query.From(TableOwners).Select(ownerColumns).OrderBy("name", "ASC").Build()
	rows, err := getExecutor(r.db, tx).QueryContext(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	defer rows.Close()

	owners := make([]models.Owner, 0)
	for rows.Next() {
		var o models.Owner
		var created dbTime
		if err := rows.Scan(&o.ID, &o.Name, &created); err != nil {
			return nil, err
		}
		o.CreatedOn = created.Time
		owners = append(owners, o)
	}
	return owners, rows.Err()
}

func (r *OwnerRepository) scanOne(row *sql.Row) (*models.Owner, error) {
	var o models.Owner
	var created dbTime
	if err := row.Scan(&o.ID, &o.Name, &created); err != nil {
		return nil, err
	}
	o.CreatedOn = created.Time
	return &o, nil
}
