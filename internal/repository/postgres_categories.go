package repository

import (
	"context"
	"database/sql"

	"github.com/amabee/property-rental/internal/domain"
)

// PostgresCategoriesRepository CategoriesRepository on Postgres
type PostgresCategoriesRepository struct {
	db       *sql.DB
	attempts int
}

func NewPostgresCategoriesRepository(db *sql.DB, retryAttempts int) *PostgresCategoriesRepository {
	return &PostgresCategoriesRepository{db: db, attempts: retryAttempts}
}

var _ CategoriesRepository = (*PostgresCategoriesRepository)(nil)

func (r *PostgresCategoriesRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := withRetry(ctx, r.attempts, func() error {
		rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = []domain.Category{}
		for rows.Next() {
			var c domain.Category
			if err := rows.Scan(&c.ID, &c.Name); err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, classify("list categories", err)
	}
	return out, nil
}

func (r *PostgresCategoriesRepository) CreateCategory(ctx context.Context, name string) (int64, error) {
	var id int64
	err := withRetry(ctx, r.attempts, func() error {
		return r.db.QueryRowContext(ctx,
			`INSERT INTO categories (name) VALUES ($1) RETURNING id`, name,
		).Scan(&id)
	})
	if err != nil {
		return 0, classify("create category", err)
	}
	return id, nil
}

func (r *PostgresCategoriesRepository) UpdateCategory(ctx context.Context, c domain.Category) error {
	var res sql.Result
	err := withRetry(ctx, r.attempts, func() (err error) {
		res, err = r.db.ExecContext(ctx, `UPDATE categories SET name = $1 WHERE id = $2`, c.Name, c.ID)
		return err
	})
	if err != nil {
		return classify("update category", err)
	}
	return requireAffected("update category", res)
}

func (r *PostgresCategoriesRepository) DeleteCategory(ctx context.Context, id int64) error {
	var res sql.Result
	err := withRetry(ctx, r.attempts, func() (err error) {
		res, err = r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return classify("delete category", err)
	}
	return requireAffected("delete category", res)
}
