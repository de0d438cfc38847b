package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/floristportal/internal/domain/errors"
	"github.com/polkiloo/floristportal/internal/domain/model"
)

const userColumns = `id, name, email, password_hash, role, phone, address, zone_ranges, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.Address, &u.ZoneRanges, &u.CreatedAt); err != nil {
		return nil, err
	}
	if u.ZoneRanges == nil {
		u.ZoneRanges = []string{}
	}
	return &u, nil
}

func zoneRangesArg(ranges []string) []string {
	if ranges == nil {
		return []string{}
	}
	return ranges
}

func (r *userRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	const query = `INSERT INTO users (name, email, password_hash, role, phone, address, zone_ranges)
                   VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`
	created := *user
	created.ZoneRanges = zoneRangesArg(user.ZoneRanges)
	err := r.storage.pool.QueryRow(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Role, user.Phone, user.Address, created.ZoneRanges,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &created, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	u, err := scanUser(r.storage.pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	u, err := scanUser(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE role=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	const query = `UPDATE users SET name=$1, email=$2, password_hash=$3, phone=$4, address=$5, zone_ranges=$6
                   WHERE id=$7`
	tag, err := r.storage.pool.Exec(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Phone, user.Address, zoneRangesArg(user.ZoneRanges), user.ID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const unassign = `UPDATE orders SET partner_id=NULL, assigned_at=NULL,
                          status=CASE WHEN status='assigned' THEN 'new' ELSE status END
                          WHERE partner_id=$1`
		if _, err := tx.Exec(ctx, unassign, id); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrNotFound
		}
		return nil
	})
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.storage.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
