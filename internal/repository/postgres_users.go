package repository

import (
	"context"
	"database/sql"

	"github.com/amabee/property-rental/internal/domain"
)

// PostgresUsersRepository UsersRepository on Postgres
type PostgresUsersRepository struct {
	db       *sql.DB
	attempts int
}

func NewPostgresUsersRepository(db *sql.DB, retryAttempts int) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db, attempts: retryAttempts}
}

var _ UsersRepository = (*PostgresUsersRepository)(nil)

func (r *PostgresUsersRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := withRetry(ctx, r.attempts, func() error {
		return r.db.QueryRowContext(ctx,
			`SELECT id, name, username, password, type FROM users WHERE username = $1`, username,
		).Scan(&u.ID, &u.Name, &u.Username, &u.PasswordHash, &u.Type)
	})
	if err != nil {
		return nil, classify("get user", err)
	}
	return &u, nil
}

func (r *PostgresUsersRepository) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	var res sql.Result
	err := withRetry(ctx, r.attempts, func() (err error) {
		res, err = r.db.ExecContext(ctx, `UPDATE users SET password = $1 WHERE id = $2`, hash, userID)
		return err
	})
	if err != nil {
		return classify("update password", err)
	}
	return requireAffected("update password", res)
}

func (r *PostgresUsersRepository) UpsertUser(ctx context.Context, u *domain.User) (int64, error) {
	var id int64
	err := withRetry(ctx, r.attempts, func() error {
		return r.db.QueryRowContext(ctx,
			`INSERT INTO users (name, username, password, type)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (username)
			 DO UPDATE SET name = EXCLUDED.name,
			               password = EXCLUDED.password,
			               type = EXCLUDED.type
			 RETURNING id`,
			u.Name, u.Username, u.PasswordHash, u.Type,
		).Scan(&id)
	})
	if err != nil {
		return 0, classify("upsert user", err)
	}
	return id, nil
}
