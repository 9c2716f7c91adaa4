package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"quill/internal/auth"
	apperrors "quill/internal/errors"
	"quill/internal/model"
	"quill/internal/policy"
	"quill/internal/repository"
)

const profileCacheTTL = 5 * time.Minute

func profileCacheKey(id uint) string {
	return fmt.Sprintf("profile:%d", id)
}

// Profile is a user record together with their post count.
type Profile struct {
	User      *model.User `json:"user"`
	PostCount int64       `json:"post_count"`
}

// UserService exposes profile operations.
type UserService interface {
	GetProfile(ctx context.Context, id uint) (*Profile, error)
	UpdateProfile(ctx context.Context, actor auth.Identity, id uint, name, email string) (*model.User, error)
	DeleteAccount(ctx context.Context, actor auth.Identity, id uint) error
}

type userService struct {
	users repository.UserRepository
	posts repository.PostRepository
	cache Cache
}

// NewUserService builds a UserService with repositories and cache.
func NewUserService(users repository.UserRepository, posts repository.PostRepository, cache Cache) UserService {
	return &userService{users: users, posts: posts, cache: cache}
}

func (s *userService) GetProfile(ctx context.Context, id uint) (*Profile, error) {
	if data, _ := s.cache.Get(ctx, profileCacheKey(id)); data != nil {
		var cached Profile
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	count, err := s.posts.CountByAuthor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	profile := &Profile{User: user, PostCount: count}
	if payload, err := json.Marshal(profile); err == nil {
		_ = s.cache.Set(ctx, profileCacheKey(id), payload, profileCacheTTL)
	}
	return profile, nil
}

// UpdateProfile applies name/email changes to the actor's own record.
// An email change is re-normalized and re-checked for uniqueness by the
// database constraint, same as signup.
func (s *userService) UpdateProfile(ctx context.Context, actor auth.Identity, id uint, name, email string) (*model.User, error) {
	switch policy.CanEditProfile(id, actor) {
	case policy.Allow:
	case policy.Unauthenticated:
		return nil, apperrors.ErrUnauthenticated
	default:
		return nil, apperrors.ErrForbidden
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if name != "" {
		user.Name = name
	}
	if email != "" {
		user.Email = NormalizeEmail(email)
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	_ = s.cache.Delete(ctx, profileCacheKey(id))
	return user, nil
}

// DeleteAccount removes the actor's own record and all their posts.
// Post ids are collected before the cascade so their cache entries can be
// invalidated too; otherwise a deleted author's published posts would keep
// serving from the cache until the TTL ran out.
func (s *userService) DeleteAccount(ctx context.Context, actor auth.Identity, id uint) error {
	switch policy.CanEditProfile(id, actor) {
	case policy.Allow:
	case policy.Unauthenticated:
		return apperrors.ErrUnauthenticated
	default:
		return apperrors.ErrForbidden
	}

	posts, err := s.posts.ListByAuthor(ctx, id)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	for _, post := range posts {
		_ = s.cache.Delete(ctx, postCacheKey(post.ID))
	}
	_ = s.cache.Delete(ctx, profileCacheKey(id))
	return nil
}
