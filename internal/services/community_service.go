package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"social-service/internal/apperrors"
	"social-service/internal/models"
	"social-service/internal/observability"
	"social-service/internal/pagination"
	"social-service/internal/repositories"
)

const (
	DefaultCommunityPageSize = 10
	MaxCommunityPageSize     = 100
	DefaultDiscoveryLimit    = 10
	MaxDiscoveryLimit        = 50
)

var errNameTaken = apperrors.Conflict("NAME_TAKEN", "community name already taken")

// CommunityService owns community membership, moderator roles and discovery.
type CommunityService struct {
	communities    repositories.CommunityRepository
	categories     repositories.CategoryRepository
	users          repositories.UserRepository
	events         observability.Publisher
	trendingWindow time.Duration
	now            func() time.Time
}

func NewCommunityService(communities repositories.CommunityRepository, categories repositories.CategoryRepository, users repositories.UserRepository, events observability.Publisher, trendingWindow time.Duration) *CommunityService {
	if trendingWindow <= 0 {
		trendingWindow = 7 * 24 * time.Hour
	}
	return &CommunityService{
		communities:    communities,
		categories:     categories,
		users:          users,
		events:         events,
		trendingWindow: trendingWindow,
		now:            time.Now,
	}
}

type CreateCommunityInput struct {
	Name       string   `json:"name" binding:"required"`
	Bio        string   `json:"bio" binding:"required"`
	Avatar     string   `json:"avatar"`
	Guidelines []string `json:"guidelines"`
	Categories []string `json:"categories"`
}

// UpdateCommunityInput mirrors the request body. CreatedBy and Users are only
// present so a request naming them can be rejected.
type UpdateCommunityInput struct {
	Name       *string  `json:"name"`
	Bio        *string  `json:"bio"`
	Avatar     *string  `json:"avatar"`
	Guidelines []string `json:"guidelines"`
	Categories []string `json:"categories"`
	Moderators []string `json:"moderators"`
	CreatedBy  *string  `json:"createdBy"`
	Users      []string `json:"users"`
}

type CommunityList struct {
	Communities []models.Community `json:"communities"`
	Total       int                `json:"total"`
	Page        int                `json:"page"`
	Limit       int                `json:"limit"`
}

func (s *CommunityService) Create(ctx context.Context, creatorID string, in CreateCommunityInput) (models.Community, error) {
	name := strings.TrimSpace(in.Name)
	bio := strings.TrimSpace(in.Bio)
	if name == "" || bio == "" {
		return models.Community{}, apperrors.InvalidInput("name and bio are required")
	}

	community := models.Community{
		ID:         newID(),
		Name:       name,
		Bio:        bio,
		Avatar:     strings.TrimSpace(in.Avatar),
		CreatedBy:  creatorID,
		Guidelines: uniqueTrimmed(in.Guidelines),
		Categories: uniqueTrimmed(in.Categories),
	}
	if err := s.communities.Create(ctx, &community); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.Community{}, errNameTaken
		}
		return models.Community{}, apperrors.Internal("failed to create community", err)
	}
	publishEvent(ctx, s.events, "community.created", creatorID, community.ID, map[string]any{"name": community.Name})
	return community, nil
}

func (s *CommunityService) Get(ctx context.Context, id string) (models.Community, error) {
	community, err := s.communities.GetByID(ctx, id)
	if err != nil {
		return models.Community{}, storeErr(err, apperrors.ErrCommunityNotFound, "failed to load community")
	}
	return community, nil
}

func (s *CommunityService) GetByName(ctx context.Context, name string) (models.Community, error) {
	community, err := s.communities.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return models.Community{}, storeErr(err, apperrors.ErrCommunityNotFound, "failed to load community")
	}
	return community, nil
}

func (s *CommunityService) Join(ctx context.Context, communityID, userID string) (models.Community, error) {
	if _, err := s.Get(ctx, communityID); err != nil {
		return models.Community{}, err
	}
	added, err := s.communities.AddMember(ctx, communityID, userID)
	if err != nil {
		return models.Community{}, apperrors.Internal("failed to join community", err)
	}
	if !added {
		return models.Community{}, apperrors.ErrAlreadyMember
	}
	publishEvent(ctx, s.events, "community.joined", userID, communityID, nil)
	return s.Get(ctx, communityID)
}

// Leave removes a member and any moderator role they held. The creator cannot leave.
func (s *CommunityService) Leave(ctx context.Context, communityID, userID string) error {
	community, err := s.Get(ctx, communityID)
	if err != nil {
		return err
	}
	if community.IsCreator(userID) {
		return apperrors.ErrCreatorCannotLeave
	}
	removed, err := s.communities.RemoveMember(ctx, communityID, userID)
	if err != nil {
		return apperrors.Internal("failed to leave community", err)
	}
	if !removed {
		return apperrors.ErrNotAMember
	}
	publishEvent(ctx, s.events, "community.left", userID, communityID, nil)
	return nil
}

func (s *CommunityService) creatorOnly(ctx context.Context, callerID, communityID, action string) (models.Community, error) {
	community, err := s.Get(ctx, communityID)
	if err != nil {
		return models.Community{}, err
	}
	if !community.IsCreator(callerID) {
		return models.Community{}, apperrors.Forbidden("only the community creator can " + action)
	}
	return community, nil
}

func (s *CommunityService) AddModerator(ctx context.Context, callerID, communityID, targetID string) (models.Community, error) {
	community, err := s.creatorOnly(ctx, callerID, communityID, "add moderators")
	if err != nil {
		return models.Community{}, err
	}
	if community.IsCreator(targetID) {
		return models.Community{}, apperrors.ErrInvalidOperation
	}
	if !community.HasMember(targetID) {
		return models.Community{}, apperrors.ErrNotAMember
	}
	added, err := s.communities.AddModerator(ctx, communityID, targetID)
	if err != nil {
		return models.Community{}, apperrors.Internal("failed to add moderator", err)
	}
	if !added {
		return models.Community{}, apperrors.ErrAlreadyModerator
	}
	publishEvent(ctx, s.events, "community.moderator_added", callerID, communityID, map[string]any{"user_id": targetID})
	return s.Get(ctx, communityID)
}

func (s *CommunityService) RemoveModerator(ctx context.Context, callerID, communityID, targetID string) (models.Community, error) {
	community, err := s.creatorOnly(ctx, callerID, communityID, "remove moderators")
	if err != nil {
		return models.Community{}, err
	}
	if community.IsCreator(targetID) {
		return models.Community{}, apperrors.ErrInvalidOperation
	}
	removed, err := s.communities.RemoveModerator(ctx, communityID, targetID)
	if err != nil {
		return models.Community{}, apperrors.Internal("failed to remove moderator", err)
	}
	if !removed {
		return models.Community{}, apperrors.ErrNotAModerator
	}
	publishEvent(ctx, s.events, "community.moderator_removed", callerID, communityID, map[string]any{"user_id": targetID})
	return s.Get(ctx, communityID)
}

// Update changes community fields. Moderators may edit everything except the
// moderator set, which only the creator may replace.
func (s *CommunityService) Update(ctx context.Context, callerID, communityID string, in UpdateCommunityInput) (models.Community, error) {
	community, err := s.Get(ctx, communityID)
	if err != nil {
		return models.Community{}, err
	}
	if !community.CanModerate(callerID) {
		return models.Community{}, apperrors.Forbidden("only the creator or a moderator can update the community")
	}
	if in.CreatedBy != nil || in.Users != nil {
		return models.Community{}, apperrors.InvalidInput("createdBy and users cannot be changed")
	}

	upd := models.CommunityUpdate{Avatar: in.Avatar}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return models.Community{}, apperrors.InvalidInput("name cannot be blank")
		}
		upd.Name = &name
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if bio == "" {
			return models.Community{}, apperrors.InvalidInput("bio cannot be blank")
		}
		upd.Bio = &bio
	}
	if in.Guidelines != nil {
		upd.Guidelines = uniqueTrimmed(in.Guidelines)
	}
	if in.Categories != nil {
		upd.Categories = uniqueTrimmed(in.Categories)
	}
	if in.Moderators != nil {
		if !community.IsCreator(callerID) {
			return models.Community{}, apperrors.Forbidden("only the community creator can change moderators")
		}
		moderators := []string{community.CreatedBy}
		for _, id := range uniqueTrimmed(in.Moderators) {
			if id == community.CreatedBy {
				continue
			}
			if !community.HasMember(id) {
				return models.Community{}, apperrors.ErrNotAMember
			}
			moderators = append(moderators, id)
		}
		upd.Moderators = moderators
	}

	updated, err := s.communities.Update(ctx, communityID, upd)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.Community{}, errNameTaken
		}
		return models.Community{}, storeErr(err, apperrors.ErrCommunityNotFound, "failed to update community")
	}
	return updated, nil
}

func (s *CommunityService) Delete(ctx context.Context, callerID, communityID string) error {
	if _, err := s.creatorOnly(ctx, callerID, communityID, "delete the community"); err != nil {
		return err
	}
	if err := s.communities.Delete(ctx, communityID); err != nil {
		return storeErr(err, apperrors.ErrCommunityNotFound, "failed to delete community")
	}
	publishEvent(ctx, s.events, "community.deleted", callerID, communityID, nil)
	return nil
}

// List pages through all communities, newest first.
func (s *CommunityService) List(ctx context.Context, page pagination.Offset) (CommunityList, error) {
	if page.Page <= 0 {
		page.Page = 1
	}
	page.Limit = clampLimit(page.Limit, DefaultCommunityPageSize, MaxCommunityPageSize)
	communities, total, err := s.communities.List(ctx, page.Skip(), page.Limit)
	if err != nil {
		return CommunityList{}, apperrors.Internal("failed to load communities", err)
	}
	return CommunityList{Communities: communities, Total: total, Page: page.Page, Limit: page.Limit}, nil
}

func (s *CommunityService) ListMine(ctx context.Context, userID string) ([]models.Community, error) {
	communities, err := s.communities.ListForMember(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to load communities", err)
	}
	return communities, nil
}

func (s *CommunityService) ByCategories(ctx context.Context, tags []string) ([]models.Community, error) {
	tags = uniqueTrimmed(tags)
	if len(tags) == 0 {
		return nil, apperrors.InvalidInput("at least one category is required")
	}
	communities, err := s.communities.ByCategories(ctx, tags)
	if err != nil {
		return nil, apperrors.Internal("failed to load communities", err)
	}
	return communities, nil
}

func (s *CommunityService) Search(ctx context.Context, query string) ([]models.Community, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.InvalidInput("search query is required")
	}
	communities, err := s.communities.Search(ctx, query)
	if err != nil {
		return nil, apperrors.Internal("failed to search communities", err)
	}
	return communities, nil
}

// Trending ranks communities created inside the trending window by member count.
func (s *CommunityService) Trending(ctx context.Context, limit int) ([]models.Community, error) {
	limit = clampLimit(limit, DefaultDiscoveryLimit, MaxDiscoveryLimit)
	communities, err := s.communities.Trending(ctx, s.now().Add(-s.trendingWindow), limit)
	if err != nil {
		return nil, apperrors.Internal("failed to load trending communities", err)
	}
	return communities, nil
}

// Recommended suggests unjoined communities sharing a tag with the user's interests
// or with the communities they already joined. Newest first.
func (s *CommunityService) Recommended(ctx context.Context, userID string, limit int) ([]models.Community, error) {
	limit = clampLimit(limit, DefaultDiscoveryLimit, MaxDiscoveryLimit)
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrUserNotFound, "failed to load recommendations")
	}
	joined, err := s.communities.JoinedTags(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to load recommendations", err)
	}

	interests := uniqueTrimmed(append(append([]string{}, user.Interests...), joined...))
	if len(interests) == 0 {
		return []models.Community{}, nil
	}
	candidates, err := s.communities.Recommended(ctx, userID, interests, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to load recommendations", err)
	}

	out := make([]models.Community, 0, len(candidates))
	for _, c := range candidates {
		if !c.HasMember(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CommunityService) CreateCategory(ctx context.Context, callerID, communityID, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, apperrors.InvalidInput("category name is required")
	}
	community, err := s.Get(ctx, communityID)
	if err != nil {
		return models.Category{}, err
	}
	if !community.CanModerate(callerID) {
		return models.Category{}, apperrors.Forbidden("only the creator or a moderator can manage categories")
	}
	category := models.Category{ID: newID(), Name: name, CommunityID: communityID}
	if err := s.categories.Create(ctx, &category); err != nil {
		return models.Category{}, apperrors.Internal("failed to create category", err)
	}
	return category, nil
}

func (s *CommunityService) DeleteCategory(ctx context.Context, callerID, communityID, categoryID string) error {
	community, err := s.Get(ctx, communityID)
	if err != nil {
		return err
	}
	if !community.CanModerate(callerID) {
		return apperrors.Forbidden("only the creator or a moderator can manage categories")
	}
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return storeErr(err, apperrors.ErrCategoryNotFound, "failed to delete category")
	}
	if category.CommunityID != communityID {
		return apperrors.ErrCategoryNotFound
	}
	if err := s.categories.Delete(ctx, category); err != nil {
		return storeErr(err, apperrors.ErrCategoryNotFound, "failed to delete category")
	}
	return nil
}

func (s *CommunityService) ListCategories(ctx context.Context, communityID string) ([]models.Category, error) {
	if _, err := s.Get(ctx, communityID); err != nil {
		return nil, err
	}
	categories, err := s.categories.ListByCommunity(ctx, communityID)
	if err != nil {
		return nil, apperrors.Internal("failed to load categories", err)
	}
	return categories, nil
}
