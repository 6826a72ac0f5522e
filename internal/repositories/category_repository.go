package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"social-service/internal/models"
)

// CategoryRepository keeps category rows and the owning community's tag set in step.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id string) (models.Category, error)
	ListByCommunity(ctx context.Context, communityID string) ([]models.Category, error)
	Delete(ctx context.Context, category models.Category) error
}

// CategoryRepo is a sqlx implementation of CategoryRepository.
type CategoryRepo struct {
	db *sqlx.DB
}

// NewCategoryRepo constructs a CategoryRepo.
func NewCategoryRepo(db *sqlx.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Create inserts the category and adds its name to the community tags.
func (r *CategoryRepo) Create(ctx context.Context, category *models.Category) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, `INSERT INTO categories (id, name, community_id) VALUES ($1, $2, $3) RETURNING created_at`,
			category.ID, category.Name, category.CommunityID).Scan(&category.CreatedAt); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `UPDATE communities SET categories = array_append(categories, $2), updated_at = NOW()
            WHERE id=$1 AND NOT ($2 = ANY(categories))`, category.CommunityID, category.Name)
		return err
	})
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (models.Category, error) {
	var category models.Category
	err := r.db.GetContext(ctx, &category, `SELECT id, name, community_id, created_at FROM categories WHERE id=$1`, id)
	return category, notFound(err)
}

func (r *CategoryRepo) ListByCommunity(ctx context.Context, communityID string) ([]models.Category, error) {
	categories := []models.Category{}
	err := r.db.SelectContext(ctx, &categories, `SELECT id, name, community_id, created_at FROM categories WHERE community_id=$1 ORDER BY created_at ASC`, communityID)
	return categories, err
}

// Delete removes the category. The tag is dropped from the community only when no
// other category of that community carries the same name.
func (r *CategoryRepo) Delete(ctx context.Context, category models.Category) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id=$1`, category.ID)
		if err != nil {
			return err
		}
		if err := mustAffect(res); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE communities SET categories = array_remove(categories, $2), updated_at = NOW()
            WHERE id=$1 AND NOT EXISTS (SELECT 1 FROM categories WHERE community_id=$1 AND name=$2)`, category.CommunityID, category.Name)
		return err
	})
}
