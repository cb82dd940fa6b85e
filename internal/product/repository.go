// AngelaMos | 2026
// repository.go

package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/catalog-backend/internal/core"
)

type Repository interface {
	List(ctx context.Context, params ListParams) (int, []Product, error)
	CreateMany(ctx context.Context, products []*Product) error
	Update(ctx context.Context, id int64, patch *Patch) (*Product, error)
	Delete(ctx context.Context, id int64) error
	DistinctCategories(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const productColumns = `id, product, sales, category, revenue, profit, created_at, updated_at`

// List returns the page selected by params along with the size of the whole
// catalog. A nil limit or offset leaves that bound off.
func (r *repository) List(
	ctx context.Context,
	params ListParams,
) (int, []Product, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return 0, nil, err
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY sales DESC, id ASC
		LIMIT $1 OFFSET $2`

	products := make([]Product, 0)
	if err := r.db.SelectContext(
		ctx,
		&products,
		query,
		params.Limit,
		params.Offset,
	); err != nil {
		return 0, nil, fmt.Errorf("list products: %w", err)
	}

	return total, products, nil
}

// CreateMany inserts the batch in one transaction; a failure on any row
// leaves the table unchanged.
func (r *repository) CreateMany(ctx context.Context, products []*Product) error {
	query := `
		INSERT INTO products (product, sales, category, revenue, profit)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, p := range products {
			row := tx.QueryRowxContext(ctx, query,
				p.Name,
				p.Sales,
				p.Category,
				p.Revenue,
				p.Profit,
			)
			if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
				return fmt.Errorf("create product: %w", mapConstraintError(err))
			}
		}
		return nil
	})
}

func (r *repository) Update(
	ctx context.Context,
	id int64,
	patch *Patch,
) (*Product, error) {
	var updated Product

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		selectQuery := `
			SELECT ` + productColumns + `
			FROM products
			WHERE id = $1
			FOR UPDATE`

		err := tx.GetContext(ctx, &updated, selectQuery, id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("update product: %w", core.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}

		patch.Apply(&updated)

		updateQuery := `
			UPDATE products
			SET product = $2,
				sales = $3,
				category = $4,
				revenue = $5,
				profit = $6,
				updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at`

		row := tx.QueryRowxContext(ctx, updateQuery,
			id,
			updated.Name,
			updated.Sales,
			updated.Category,
			updated.Revenue,
			updated.Profit,
		)
		if err := row.Scan(&updated.UpdatedAt); err != nil {
			return fmt.Errorf("update product: %w", mapConstraintError(err))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete product: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) DistinctCategories(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT category
		FROM products
		WHERE category IS NOT NULL AND category <> ''
		ORDER BY category`

	categories := make([]string, 0)
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}

	return categories, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM products`); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

// mapConstraintError turns CHECK violations (23514) into invalid input.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23514" {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, core.ErrInvalidInput)
	}
	return err
}
