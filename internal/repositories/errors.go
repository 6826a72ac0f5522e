package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres unique constraint failure.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// notFound maps sql.ErrNoRows to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// withTx runs fn inside a transaction, rolling back on any error.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// affected reports whether the statement touched at least one row.
func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// mustAffect returns ErrNotFound when the statement matched no rows.
func mustAffect(res sql.Result) error {
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// toggleLike removes the (target, user) like if present and inserts it otherwise,
// returning the resulting state and the full like set.
func toggleLike(ctx context.Context, db *sqlx.DB, table, column, targetID, userID string) (bool, []string, error) {
	var liked bool
	var likes pq.StringArray
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+column+`=$1 AND user_id=$2`, targetID, userID)
		if err != nil {
			return err
		}
		removed, err := affected(res)
		if err != nil {
			return err
		}
		if !removed {
			if _, err := tx.ExecContext(ctx, `INSERT INTO `+table+` (`+column+`, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, targetID, userID); err != nil {
				return err
			}
			liked = true
		}
		return tx.GetContext(ctx, &likes, `SELECT COALESCE(array_agg(user_id ORDER BY created_at), '{}') FROM `+table+` WHERE `+column+`=$1`, targetID)
	})
	if err != nil {
		return false, nil, err
	}
	return liked, []string(likes), nil
}

// textArray binds a Go slice as a non-null TEXT[] parameter.
func textArray(values []string) interface{} {
	if values == nil {
		values = []string{}
	}
	return pq.Array(values)
}
