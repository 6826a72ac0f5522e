package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"social-service/internal/models"
)

// CommunityRepository abstracts communities, their membership and moderator sets,
// and the discovery queries over category tags.
type CommunityRepository interface {
	Create(ctx context.Context, community *models.Community) error
	GetByID(ctx context.Context, id string) (models.Community, error)
	GetByName(ctx context.Context, name string) (models.Community, error)
	AddMember(ctx context.Context, communityID, userID string) (bool, error)
	RemoveMember(ctx context.Context, communityID, userID string) (bool, error)
	AddModerator(ctx context.Context, communityID, userID string) (bool, error)
	RemoveModerator(ctx context.Context, communityID, userID string) (bool, error)
	Update(ctx context.Context, id string, upd models.CommunityUpdate) (models.Community, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, skip, limit int) ([]models.Community, int, error)
	ListForMember(ctx context.Context, userID string) ([]models.Community, error)
	ByCategories(ctx context.Context, tags []string) ([]models.Community, error)
	Search(ctx context.Context, query string) ([]models.Community, error)
	Trending(ctx context.Context, since time.Time, limit int) ([]models.Community, error)
	JoinedTags(ctx context.Context, userID string) ([]string, error)
	Recommended(ctx context.Context, userID string, tags []string, limit int) ([]models.Community, error)
}

// CommunityRepo is a sqlx implementation of CommunityRepository.
type CommunityRepo struct {
	db *sqlx.DB
}

// NewCommunityRepo constructs a CommunityRepo.
func NewCommunityRepo(db *sqlx.DB) *CommunityRepo {
	return &CommunityRepo{db: db}
}

const communitySelect = `SELECT c.id, c.name, c.bio, c.avatar, c.created_by, c.guidelines, c.categories, c.created_at, c.updated_at,
        COALESCE((SELECT array_agg(m.user_id ORDER BY m.joined_at, m.user_id) FROM community_members m WHERE m.community_id = c.id), '{}') AS users,
        COALESCE((SELECT array_agg(md.user_id ORDER BY md.user_id) FROM community_moderators md WHERE md.community_id = c.id), '{}') AS moderators
    FROM communities c`

// Create inserts the community with its creator as member and moderator.
func (r *CommunityRepo) Create(ctx context.Context, community *models.Community) error {
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, `INSERT INTO communities (id, name, bio, avatar, created_by, guidelines, categories)
            VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`,
			community.ID, community.Name, community.Bio, community.Avatar, community.CreatedBy,
			textArray(community.Guidelines), textArray(community.Categories)).
			Scan(&community.CreatedAt, &community.UpdatedAt); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO community_members (community_id, user_id) VALUES ($1, $2)`, community.ID, community.CreatedBy); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO community_moderators (community_id, user_id) VALUES ($1, $2)`, community.ID, community.CreatedBy)
		return err
	})
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err == nil {
		community.Users = pq.StringArray{community.CreatedBy}
		community.Moderators = pq.StringArray{community.CreatedBy}
	}
	return err
}

func (r *CommunityRepo) GetByID(ctx context.Context, id string) (models.Community, error) {
	var community models.Community
	err := r.db.GetContext(ctx, &community, communitySelect+` WHERE c.id=$1`, id)
	return community, notFound(err)
}

func (r *CommunityRepo) GetByName(ctx context.Context, name string) (models.Community, error) {
	var community models.Community
	err := r.db.GetContext(ctx, &community, communitySelect+` WHERE c.name=$1`, name)
	return community, notFound(err)
}

// AddMember reports false when the user already belonged to the community.
func (r *CommunityRepo) AddMember(ctx context.Context, communityID, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO community_members (community_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, communityID, userID)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// RemoveMember drops the membership and any moderator role. It reports false when
// the user was not a member.
func (r *CommunityRepo) RemoveMember(ctx context.Context, communityID, userID string) (bool, error) {
	var removed bool
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM community_members WHERE community_id=$1 AND user_id=$2`, communityID, userID)
		if err != nil {
			return err
		}
		if removed, err = affected(res); err != nil || !removed {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM community_moderators WHERE community_id=$1 AND user_id=$2`, communityID, userID)
		return err
	})
	return removed, err
}

// AddModerator reports false when the user already moderated the community.
func (r *CommunityRepo) AddModerator(ctx context.Context, communityID, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO community_moderators (community_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, communityID, userID)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// RemoveModerator reports false when the user was not a moderator.
func (r *CommunityRepo) RemoveModerator(ctx context.Context, communityID, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM community_moderators WHERE community_id=$1 AND user_id=$2`, communityID, userID)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// Update applies the set fields. A non-nil Moderators slice replaces the moderator set.
func (r *CommunityRepo) Update(ctx context.Context, id string, upd models.CommunityUpdate) (models.Community, error) {
	var guidelines, categories interface{}
	if upd.Guidelines != nil {
		guidelines = textArray(upd.Guidelines)
	}
	if upd.Categories != nil {
		categories = textArray(upd.Categories)
	}
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE communities SET
                name = COALESCE($2, name),
                bio = COALESCE($3, bio),
                avatar = COALESCE($4, avatar),
                guidelines = COALESCE($5, guidelines),
                categories = COALESCE($6, categories),
                updated_at = NOW()
            WHERE id=$1`, id, upd.Name, upd.Bio, upd.Avatar, guidelines, categories)
		if err != nil {
			return err
		}
		if err := mustAffect(res); err != nil {
			return err
		}
		if upd.Moderators == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM community_moderators WHERE community_id=$1`, id); err != nil {
			return err
		}
		for _, userID := range upd.Moderators {
			if _, err := tx.ExecContext(ctx, `INSERT INTO community_moderators (community_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, id, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if isUniqueViolation(err) {
		return models.Community{}, ErrDuplicate
	}
	if err != nil {
		return models.Community{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes the community; memberships, categories and posts cascade.
func (r *CommunityRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM communities WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

// List returns one page, newest first, plus the total count.
func (r *CommunityRepo) List(ctx context.Context, skip, limit int) ([]models.Community, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM communities`); err != nil {
		return nil, 0, err
	}
	communities := []models.Community{}
	err := r.db.SelectContext(ctx, &communities, communitySelect+` ORDER BY c.created_at DESC, c.id DESC OFFSET $1 LIMIT $2`, skip, limit)
	return communities, total, err
}

func (r *CommunityRepo) ListForMember(ctx context.Context, userID string) ([]models.Community, error) {
	communities := []models.Community{}
	err := r.db.SelectContext(ctx, &communities, communitySelect+`
        WHERE EXISTS (SELECT 1 FROM community_members m WHERE m.community_id = c.id AND m.user_id=$1)
        ORDER BY c.created_at DESC`, userID)
	return communities, err
}

// ByCategories returns communities whose tag set intersects tags.
func (r *CommunityRepo) ByCategories(ctx context.Context, tags []string) ([]models.Community, error) {
	communities := []models.Community{}
	err := r.db.SelectContext(ctx, &communities, communitySelect+` WHERE c.categories && $1 ORDER BY c.created_at DESC`, textArray(tags))
	return communities, err
}

// Search matches name or bio case-insensitively. query is taken literally.
func (r *CommunityRepo) Search(ctx context.Context, query string) ([]models.Community, error) {
	pattern := "%" + escapeLike(query) + "%"
	communities := []models.Community{}
	err := r.db.SelectContext(ctx, &communities, communitySelect+`
        WHERE c.name ILIKE $1 ESCAPE '\' OR c.bio ILIKE $1 ESCAPE '\'
        ORDER BY c.created_at DESC`, pattern)
	return communities, err
}

// Trending ranks communities created since the cutoff by member count, then recency.
func (r *CommunityRepo) Trending(ctx context.Context, since time.Time, limit int) ([]models.Community, error) {
	communities := []models.Community{}
	err := r.db.SelectContext(ctx, &communities, communitySelect+`
        WHERE c.created_at >= $1
        ORDER BY (SELECT COUNT(*) FROM community_members m WHERE m.community_id = c.id) DESC, c.created_at DESC
        LIMIT $2`, since, limit)
	return communities, err
}

// JoinedTags returns the distinct tags of every community the user belongs to.
func (r *CommunityRepo) JoinedTags(ctx context.Context, userID string) ([]string, error) {
	var tags pq.StringArray
	err := r.db.GetContext(ctx, &tags, `SELECT COALESCE(array_agg(DISTINCT tag), '{}') FROM (
            SELECT unnest(c.categories) AS tag FROM communities c
            INNER JOIN community_members m ON m.community_id = c.id
            WHERE m.user_id=$1
        ) t`, userID)
	return []string(tags), err
}

// Recommended returns communities the user has not joined whose tags intersect tags.
func (r *CommunityRepo) Recommended(ctx context.Context, userID string, tags []string, limit int) ([]models.Community, error) {
	communities := []models.Community{}
	if len(tags) == 0 {
		return communities, nil
	}
	err := r.db.SelectContext(ctx, &communities, communitySelect+`
        WHERE c.categories && $2
        AND NOT EXISTS (SELECT 1 FROM community_members m WHERE m.community_id = c.id AND m.user_id=$1)
        ORDER BY c.created_at DESC
        LIMIT $3`, userID, textArray(tags), limit)
	return communities, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
