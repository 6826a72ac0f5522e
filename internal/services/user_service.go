package services

import (
	"context"
	"errors"
	"strings"

	"social-service/internal/apperrors"
	"social-service/internal/auth"
	"social-service/internal/models"
	"social-service/internal/observability"
	"social-service/internal/pagination"
	"social-service/internal/repositories"
)

// TokenIssuer signs access tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type UserService struct {
	users  repositories.UserRepository
	tokens TokenIssuer
	events observability.Publisher
}

func NewUserService(users repositories.UserRepository, tokens TokenIssuer, events observability.Publisher) *UserService {
	return &UserService{users: users, tokens: tokens, events: events}
}

const (
	DefaultUserPageSize = 20
	MaxUserPageSize     = 100
)

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Avatar   string `json:"avatar"`
}

type AuthResult struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Username == "" || in.Email == "" {
		return nil, apperrors.InvalidInput("name, username and email are required")
	}
	if in.Password == "" {
		return nil, apperrors.InvalidInput("password is required")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Internal("failed to register", err)
	}
	avatar := strings.TrimSpace(in.Avatar)
	if avatar == "" {
		avatar = models.DefaultAvatar
	}

	user := models.User{
		ID:           newID(),
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Avatar:       avatar,
		Role:         models.RoleUser,
		Interests:    []string{},
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, apperrors.Internal("failed to register", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to issue token", err)
	}
	publishEvent(ctx, s.events, "user.registered", user.ID, user.ID, nil)
	return &AuthResult{User: user, Token: token}, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.InvalidInput("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrInvalidCredentials, "failed to login")
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to issue token", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, storeErr(err, apperrors.ErrUserNotFound, "failed to load user")
	}
	return user, nil
}

// Role returns the stored role of id.
func (s *UserService) Role(ctx context.Context, id string) (string, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

type UserList struct {
	Users []models.User `json:"users"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// List pages through every account. Routes serving it are admin only.
func (s *UserService) List(ctx context.Context, page pagination.Offset) (UserList, error) {
	if page.Page <= 0 {
		page.Page = 1
	}
	page.Limit = clampLimit(page.Limit, DefaultUserPageSize, MaxUserPageSize)
	users, total, err := s.users.List(ctx, page.Skip(), page.Limit)
	if err != nil {
		return UserList{}, apperrors.Internal("failed to load users", err)
	}
	return UserList{Users: users, Total: total, Page: page.Page, Limit: page.Limit}, nil
}

// Me is Get for the caller.
func (s *UserService) Me(ctx context.Context, userID string) (models.User, error) {
	return s.Get(ctx, userID)
}

func (s *UserService) UpdateAccount(ctx context.Context, userID string, upd models.UserUpdate) (models.User, error) {
	if upd.Empty() {
		return models.User{}, apperrors.InvalidInput("nothing to update")
	}
	for _, field := range []*string{upd.Name, upd.Username, upd.Email} {
		if field != nil && strings.TrimSpace(*field) == "" {
			return models.User{}, apperrors.InvalidInput("name, username and email cannot be blank")
		}
	}
	user, err := s.users.Update(ctx, userID, upd)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.User{}, apperrors.ErrEmailTaken
		}
		return models.User{}, storeErr(err, apperrors.ErrUserNotFound, "failed to update account")
	}
	return user, nil
}

func (s *UserService) SetInterests(ctx context.Context, userID string, interests []string) (models.User, error) {
	if err := s.users.SetInterests(ctx, userID, uniqueTrimmed(interests)); err != nil {
		return models.User{}, storeErr(err, apperrors.ErrUserNotFound, "failed to update interests")
	}
	return s.Get(ctx, userID)
}

func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if newPassword == "" {
		return apperrors.InvalidInput("new password is required")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return storeErr(err, apperrors.ErrUserNotFound, "failed to change password")
	}
	if !auth.CheckPassword(user.PasswordHash, oldPassword) {
		return apperrors.Unauthorized("current password is incorrect")
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.Internal("failed to change password", err)
	}
	if err := s.users.SetPassword(ctx, userID, hash); err != nil {
		return apperrors.Internal("failed to change password", err)
	}
	return nil
}

// ToggleFollow flips the follow edge and reports whether the caller now follows target.
func (s *UserService) ToggleFollow(ctx context.Context, followerID, targetID string) (bool, error) {
	if followerID == targetID {
		return false, apperrors.InvalidInput("you cannot follow yourself")
	}
	exists, err := s.users.Exists(ctx, targetID)
	if err != nil {
		return false, apperrors.Internal("failed to follow user", err)
	}
	if !exists {
		return false, apperrors.ErrUserNotFound
	}
	following, err := s.users.ToggleFollow(ctx, followerID, targetID)
	if err != nil {
		return false, apperrors.Internal("failed to follow user", err)
	}
	if following {
		publishEvent(ctx, s.events, "user.followed", followerID, targetID, nil)
	}
	return following, nil
}

func (s *UserService) Followers(ctx context.Context, userID string) ([]models.UserSummary, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.users.Followers(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to load followers", err)
	}
	return users, nil
}

func (s *UserService) Following(ctx context.Context, userID string) ([]models.UserSummary, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.users.Following(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to load following", err)
	}
	return users, nil
}
