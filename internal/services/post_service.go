package services

import (
	"context"
	"strings"

	"social-service/internal/apperrors"
	"social-service/internal/models"
	"social-service/internal/observability"
	"social-service/internal/pagination"
	"social-service/internal/repositories"
)

const (
	DefaultPostLimit = 20
	MaxPostLimit     = 100
)

type PostService struct {
	posts       repositories.PostRepository
	communities repositories.CommunityRepository
	events      observability.Publisher
}

func NewPostService(posts repositories.PostRepository, communities repositories.CommunityRepository, events observability.Publisher) *PostService {
	return &PostService{posts: posts, communities: communities, events: events}
}

// Create publishes a post into a community the author belongs to.
func (s *PostService) Create(ctx context.Context, authorID, communityID, content string) (models.Post, error) {
	communityID = strings.TrimSpace(communityID)
	content = strings.TrimSpace(content)
	if communityID == "" || content == "" {
		return models.Post{}, apperrors.InvalidInput("community and content are required")
	}
	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		return models.Post{}, storeErr(err, apperrors.ErrCommunityNotFound, "failed to create post")
	}
	if !community.HasMember(authorID) {
		return models.Post{}, apperrors.Forbidden("join the community before posting")
	}

	post := models.Post{ID: newID(), CommunityID: communityID, UserID: authorID, Content: content, Likes: []string{}}
	if err := s.posts.Create(ctx, &post); err != nil {
		return models.Post{}, apperrors.Internal("failed to create post", err)
	}
	publishEvent(ctx, s.events, "post.created", authorID, post.ID, map[string]any{"community_id": communityID})
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id string) (models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return models.Post{}, storeErr(err, apperrors.ErrPostNotFound, "failed to load post")
	}
	return post, nil
}

func (s *PostService) ListByCommunity(ctx context.Context, communityID, before string, limit int) (pagination.Page[models.Post], error) {
	cursor, err := pagination.Decode(before)
	if err != nil {
		return pagination.Page[models.Post]{}, apperrors.InvalidInput("before cursor is malformed")
	}
	if _, err := s.communities.GetByID(ctx, communityID); err != nil {
		return pagination.Page[models.Post]{}, storeErr(err, apperrors.ErrCommunityNotFound, "failed to load posts")
	}
	limit = clampLimit(limit, DefaultPostLimit, MaxPostLimit)
	posts, err := s.posts.ListByCommunity(ctx, communityID, cursor, limit+1)
	if err != nil {
		return pagination.Page[models.Post]{}, apperrors.Internal("failed to load posts", err)
	}
	return pagination.Build(posts, limit, postCursor), nil
}

func (s *PostService) ListAll(ctx context.Context, before string, limit int) (pagination.Page[models.Post], error) {
	cursor, err := pagination.Decode(before)
	if err != nil {
		return pagination.Page[models.Post]{}, apperrors.InvalidInput("before cursor is malformed")
	}
	limit = clampLimit(limit, DefaultPostLimit, MaxPostLimit)
	posts, err := s.posts.ListAll(ctx, cursor, limit+1)
	if err != nil {
		return pagination.Page[models.Post]{}, apperrors.Internal("failed to load posts", err)
	}
	return pagination.Build(posts, limit, postCursor), nil
}

// Delete is allowed for the author and for the community's creator or moderators.
func (s *PostService) Delete(ctx context.Context, callerID, id string) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.UserID != callerID {
		community, err := s.communities.GetByID(ctx, post.CommunityID)
		if err != nil {
			return storeErr(err, apperrors.ErrCommunityNotFound, "failed to delete post")
		}
		if !community.CanModerate(callerID) {
			return apperrors.Forbidden("only the author or a moderator can delete this post")
		}
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return storeErr(err, apperrors.ErrPostNotFound, "failed to delete post")
	}
	return nil
}

func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (models.LikeResult, error) {
	if _, err := s.Get(ctx, postID); err != nil {
		return models.LikeResult{}, err
	}
	liked, likes, err := s.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		return models.LikeResult{}, apperrors.Internal("failed to like post", err)
	}
	return models.LikeResult{Liked: liked, Likes: likes}, nil
}

func postCursor(p models.Post) pagination.Cursor {
	return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
}
