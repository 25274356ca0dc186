package repository

import (
	"context"
	"database/sql"

	"github.com/amabee/property-rental/internal/domain"
)

// PostgresHousesRepository HousesRepository on Postgres
type PostgresHousesRepository struct {
	db       *sql.DB
	attempts int
}

func NewPostgresHousesRepository(db *sql.DB, retryAttempts int) *PostgresHousesRepository {
	return &PostgresHousesRepository{db: db, attempts: retryAttempts}
}

var _ HousesRepository = (*PostgresHousesRepository)(nil)

const selectHouses = `
	SELECT
		h.id,
		h.house_no,
		h.category_id,
		c.name,
		h.description,
		h.price,
		h.image
	FROM houses h
	JOIN categories c ON c.id = h.category_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHouse(s rowScanner) (domain.House, error) {
	var h domain.House
	err := s.Scan(&h.ID, &h.HouseNo, &h.CategoryID, &h.CategoryName, &h.Description, &h.Price, &h.Image)
	return h, err
}

func (r *PostgresHousesRepository) ListHouses(ctx context.Context) ([]domain.House, error) {
	var out []domain.House
	err := withRetry(ctx, r.attempts, func() error {
		rows, err := r.db.QueryContext(ctx, selectHouses+` ORDER BY h.id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = []domain.House{}
		for rows.Next() {
			h, err := scanHouse(rows)
			if err != nil {
				return err
			}
			out = append(out, h)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, classify("list houses", err)
	}
	return out, nil
}

func (r *PostgresHousesRepository) GetHouse(ctx context.Context, id int64) (*domain.House, error) {
	var h domain.House
	err := withRetry(ctx, r.attempts, func() (err error) {
		h, err = scanHouse(r.db.QueryRowContext(ctx, selectHouses+` WHERE h.id = $1`, id))
		return err
	})
	if err != nil {
		return nil, classify("get house", err)
	}
	return &h, nil
}

func (r *PostgresHousesRepository) CreateHouse(ctx context.Context, h *domain.House) (int64, error) {
	var id int64
	err := withRetry(ctx, r.attempts, func() error {
		return r.db.QueryRowContext(ctx,
			`INSERT INTO houses (house_no, category_id, description, price, image)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			h.HouseNo, h.CategoryID, h.Description, h.Price, h.Image,
		).Scan(&id)
	})
	if err != nil {
		return 0, classify("create house", err)
	}
	return id, nil
}

func (r *PostgresHousesRepository) UpdateHouse(ctx context.Context, h *domain.House) error {
	var res sql.Result
	err := withRetry(ctx, r.attempts, func() (err error) {
		res, err = r.db.ExecContext(ctx,
			`UPDATE houses
			 SET house_no = $1,
			     category_id = $2,
			     description = $3,
			     price = $4,
			     image = $5
			 WHERE id = $6`,
			h.HouseNo, h.CategoryID, h.Description, h.Price, h.Image, h.ID,
		)
		return err
	})
	if err != nil {
		return classify("update house", err)
	}
	return requireAffected("update house", res)
}

func (r *PostgresHousesRepository) DeleteHouse(ctx context.Context, id int64) error {
	var res sql.Result
	err := withRetry(ctx, r.attempts, func() (err error) {
		res, err = r.db.ExecContext(ctx, `DELETE FROM houses WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return classify("delete house", err)
	}
	return requireAffected("delete house", res)
}

func (r *PostgresHousesRepository) CountHousesByImage(ctx context.Context, image string) (int64, error) {
	var n int64
	err := withRetry(ctx, r.attempts, func() error {
		return r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM houses WHERE image = $1`, image).Scan(&n)
	})
	if err != nil {
		return 0, classify("count houses by image", err)
	}
	return n, nil
}

func (r *PostgresHousesRepository) CountHouses(ctx context.Context) (int64, error) {
	var n int64
	err := withRetry(ctx, r.attempts, func() error {
		return r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM houses`).Scan(&n)
	})
	if err != nil {
		return 0, classify("count houses", err)
	}
	return n, nil
}
