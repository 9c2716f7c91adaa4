package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"quill/internal/auth"
	"quill/internal/cache"
	apperrors "quill/internal/errors"
	"quill/internal/model"
	"quill/internal/policy"
	"quill/internal/repository"
)

const postCacheTTL = 5 * time.Minute

const (
	// DefaultPageSize is the page size used when the caller sends none or an
	// out-of-range one.
	DefaultPageSize = 20
	// MaxPageSize caps the page size a caller may request.
	MaxPageSize = 100
)

// Cache is the subset of cache.Client the services use; narrowed to an
// interface so tests can observe invalidation.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

var _ Cache = (*cache.Client)(nil)

func postCacheKey(id uint) string {
	return fmt.Sprintf("post:%d", id)
}

// PostUpdate carries the mutable fields of a post; nil means unchanged.
type PostUpdate struct {
	Title   *string
	Content *string
}

// PostService exposes post operations, gated by the access-control policy.
type PostService interface {
	Create(ctx context.Context, author auth.Identity, title, content string, published bool) (*model.Post, error)
	Get(ctx context.Context, viewer auth.Identity, id uint) (*model.Post, error)
	ListPublished(ctx context.Context, page, perPage int) ([]model.Post, int64, error)
	ListByAuthor(ctx context.Context, author auth.Identity) ([]model.Post, error)
	Update(ctx context.Context, actor auth.Identity, id uint, update PostUpdate) (*model.Post, error)
	SetPublished(ctx context.Context, actor auth.Identity, id uint, published bool) (*model.Post, error)
	Delete(ctx context.Context, actor auth.Identity, id uint) error
}

type postService struct {
	posts repository.PostRepository
	cache Cache
}

// NewPostService builds a PostService with repository and cache.
func NewPostService(posts repository.PostRepository, cache Cache) PostService {
	return &postService{posts: posts, cache: cache}
}

func (s *postService) Create(ctx context.Context, author auth.Identity, title, content string, published bool) (*model.Post, error) {
	if author.Anonymous() {
		return nil, apperrors.ErrUnauthenticated
	}

	post := &model.Post{
		Title:     title,
		Content:   content,
		Published: published,
		AuthorID:  author.UserID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// Get returns a post when the visibility policy allows it. Only published
// posts are cached; the policy runs on every read regardless of where the
// record came from.
func (s *postService) Get(ctx context.Context, viewer auth.Identity, id uint) (*model.Post, error) {
	post, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if policy.CanViewPost(post, viewer) != policy.Allow {
		return nil, apperrors.ErrForbidden
	}
	return post, nil
}

// ListPublished returns a page of published posts and the total count.
func (s *postService) ListPublished(ctx context.Context, page, perPage int) ([]model.Post, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > MaxPageSize {
		perPage = DefaultPageSize
	}

	posts, err := s.posts.ListPublished(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	total, err := s.posts.CountPublished(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}
	return posts, total, nil
}

// ListByAuthor returns the author's own posts, drafts included.
func (s *postService) ListByAuthor(ctx context.Context, author auth.Identity) ([]model.Post, error) {
	if author.Anonymous() {
		return nil, apperrors.ErrUnauthenticated
	}
	posts, err := s.posts.ListByAuthor(ctx, author.UserID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *postService) Update(ctx context.Context, actor auth.Identity, id uint, update PostUpdate) (*model.Post, error) {
	post, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		post.Title = *update.Title
	}
	if update.Content != nil {
		post.Content = *update.Content
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	_ = s.cache.Delete(ctx, postCacheKey(id))
	return post, nil
}

// SetPublished flips the draft/published flag; the only state transition a
// post has, and only its author may trigger it.
func (s *postService) SetPublished(ctx context.Context, actor auth.Identity, id uint, published bool) (*model.Post, error) {
	post, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	post.Published = published
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	_ = s.cache.Delete(ctx, postCacheKey(id))
	return post, nil
}

func (s *postService) Delete(ctx context.Context, actor auth.Identity, id uint) error {
	if _, err := s.authorize(ctx, actor, id); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPostNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}
	_ = s.cache.Delete(ctx, postCacheKey(id))
	return nil
}

// fetch loads a post for reading, consulting the cache first. Drafts never
// enter the cache so a stale entry can only ever be a published post.
func (s *postService) fetch(ctx context.Context, id uint) (*model.Post, error) {
	if data, _ := s.cache.Get(ctx, postCacheKey(id)); data != nil {
		var cached model.Post
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if post.Published {
		if payload, err := json.Marshal(post); err == nil {
			_ = s.cache.Set(ctx, postCacheKey(id), payload, postCacheTTL)
		}
	}
	return post, nil
}

// authorize loads a post for mutation and checks the policy against actor.
// The load always hits the store: writing back a cached snapshot could
// overwrite a concurrent update with stale fields.
func (s *postService) authorize(ctx context.Context, actor auth.Identity, id uint) (*model.Post, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	switch policy.CanEditPost(post, actor) {
	case policy.Allow:
		return post, nil
	case policy.Unauthenticated:
		return nil, apperrors.ErrUnauthenticated
	default:
		return nil, apperrors.ErrForbidden
	}
}

func (s *postService) load(ctx context.Context, id uint) (*model.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return post, nil
}
