package repositories

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"social-service/internal/models"
)

// UserRepository abstracts identity persistence and the follow graph.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, skip, limit int) ([]models.User, int, error)
	Summaries(ctx context.Context, ids []string) ([]models.UserSummary, error)
	Update(ctx context.Context, id string, upd models.UserUpdate) (models.User, error)
	SetInterests(ctx context.Context, id string, interests []string) error
	SetPassword(ctx context.Context, id string, hash string) error
	ToggleFollow(ctx context.Context, followerID, followeeID string) (bool, error)
	Followers(ctx context.Context, id string) ([]models.UserSummary, error)
	Following(ctx context.Context, id string) ([]models.UserSummary, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, name, username, email, password_hash, avatar, role, interests, created_at, updated_at`

// Create inserts a user. A taken email yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	err := r.db.QueryRowxContext(ctx, `INSERT INTO users (id, name, username, email, password_hash, avatar, role, interests)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at, updated_at`,
		user.ID, user.Name, user.Username, strings.ToLower(user.Email), user.PasswordHash, user.Avatar, user.Role, textArray(user.Interests)).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	return user, notFound(err)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email=$1`, strings.ToLower(email))
	return user, notFound(err)
}

func (r *UserRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, id)
	return exists, err
}

// List pages through every account, newest first, with the total count.
func (r *UserRepo) List(ctx context.Context, skip, limit int) ([]models.User, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, 0, err
	}
	users := []models.User{}
	err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC OFFSET $1 LIMIT $2`, skip, limit)
	return users, total, err
}

// Summaries loads display fields for the given ids. Unknown ids are skipped.
func (r *UserRepo) Summaries(ctx context.Context, ids []string) ([]models.UserSummary, error) {
	if len(ids) == 0 {
		return []models.UserSummary{}, nil
	}
	var users []models.UserSummary
	err := r.db.SelectContext(ctx, &users, `SELECT id, name, username, avatar, email FROM users WHERE id = ANY($1)`, pq.Array(ids))
	return users, err
}

// Update applies the non-nil fields of upd and returns the stored row.
func (r *UserRepo) Update(ctx context.Context, id string, upd models.UserUpdate) (models.User, error) {
	var email *string
	if upd.Email != nil {
		lowered := strings.ToLower(*upd.Email)
		email = &lowered
	}
	var user models.User
	err := r.db.GetContext(ctx, &user, `UPDATE users SET
            name = COALESCE($2, name),
            username = COALESCE($3, username),
            email = COALESCE($4, email),
            avatar = COALESCE($5, avatar),
            updated_at = NOW()
        WHERE id=$1 RETURNING `+userColumns, id, upd.Name, upd.Username, email, upd.Avatar)
	if isUniqueViolation(err) {
		return models.User{}, ErrDuplicate
	}
	return user, notFound(err)
}

func (r *UserRepo) SetInterests(ctx context.Context, id string, interests []string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET interests=$2, updated_at=NOW() WHERE id=$1`, id, textArray(interests))
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *UserRepo) SetPassword(ctx context.Context, id string, hash string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash=$2, updated_at=NOW() WHERE id=$1`, id, hash)
	return err
}

// ToggleFollow removes the follow edge if present and adds it otherwise. It returns
// true when the follower now follows the followee.
func (r *UserRepo) ToggleFollow(ctx context.Context, followerID, followeeID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM follows WHERE follower_id=$1 AND followee_id=$2`, followerID, followeeID)
	if err != nil {
		return false, err
	}
	removed, err := affected(res)
	if err != nil || removed {
		return false, err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO follows (follower_id, followee_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, followerID, followeeID)
	return err == nil, err
}

func (r *UserRepo) Followers(ctx context.Context, id string) ([]models.UserSummary, error) {
	users := []models.UserSummary{}
	err := r.db.SelectContext(ctx, &users, `SELECT u.id, u.name, u.username, u.avatar, u.email FROM follows f
        INNER JOIN users u ON u.id = f.follower_id WHERE f.followee_id=$1 ORDER BY f.created_at DESC`, id)
	return users, err
}

func (r *UserRepo) Following(ctx context.Context, id string) ([]models.UserSummary, error) {
	users := []models.UserSummary{}
	err := r.db.SelectContext(ctx, &users, `SELECT u.id, u.name, u.username, u.avatar, u.email FROM follows f
        INNER JOIN users u ON u.id = f.followee_id WHERE f.follower_id=$1 ORDER BY f.created_at DESC`, id)
	return users, err
}
