package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"quill/internal/auth"
	apperrors "quill/internal/errors"
	"quill/internal/model"
)

var (
	postOwner = auth.Identity{UserID: 1}
	postOther = auth.Identity{UserID: 2}
	anonymous = auth.Identity{}
)

func newPostService(posts *MockPostRepository) (PostService, *fakeCache) {
	fc := newFakeCache()
	return NewPostService(posts, fc), fc
}

func draft(id uint) *model.Post {
	return &model.Post{ID: id, Title: "t", Content: "c", Published: false, AuthorID: 1}
}

func published(id uint) *model.Post {
	return &model.Post{ID: id, Title: "t", Content: "c", Published: true, AuthorID: 1}
}

func prime(t *testing.T, fc *fakeCache, post *model.Post) {
	t.Helper()
	payload, err := json.Marshal(post)
	require.NoError(t, err)
	fc.data[postCacheKey(post.ID)] = payload
}

func TestCreatePost(t *testing.T) {
	posts := new(MockPostRepository)
	svc, _ := newPostService(posts)

	posts.On("Create", mock.Anything, mock.AnythingOfType("*model.Post")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Post).ID = 10
		}).
		Return(nil)

	post, err := svc.Create(context.Background(), postOwner, "Title", "Body", false)
	require.NoError(t, err)
	assert.Equal(t, uint(10), post.ID)
	assert.Equal(t, uint(1), post.AuthorID)
	assert.False(t, post.Published)
}

func TestCreatePostAnonymous(t *testing.T) {
	svc, _ := newPostService(new(MockPostRepository))

	_, err := svc.Create(context.Background(), anonymous, "Title", "Body", false)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestGetPostVisibility(t *testing.T) {
	tests := []struct {
		name    string
		post    *model.Post
		viewer  auth.Identity
		wantErr error
	}{
		{"published to anonymous", published(5), anonymous, nil},
		{"published to other", published(5), postOther, nil},
		{"draft to owner", draft(5), postOwner, nil},
		{"draft to other", draft(5), postOther, apperrors.ErrForbidden},
		{"draft to anonymous", draft(5), anonymous, apperrors.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := new(MockPostRepository)
			posts.On("FindByID", mock.Anything, uint(5)).Return(tt.post, nil)
			svc, _ := newPostService(posts)

			got, err := svc.Get(context.Background(), tt.viewer, 5)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.post.ID, got.ID)
			}
		})
	}
}

func TestGetCachesPublishedPost(t *testing.T) {
	posts := new(MockPostRepository)
	posts.On("FindByID", mock.Anything, uint(5)).Return(published(5), nil)
	svc, fc := newPostService(posts)

	_, err := svc.Get(context.Background(), anonymous, 5)
	require.NoError(t, err)
	assert.True(t, fc.contains(postCacheKey(5)))
}

func TestGetNeverCachesDraft(t *testing.T) {
	posts := new(MockPostRepository)
	posts.On("FindByID", mock.Anything, uint(5)).Return(draft(5), nil)
	svc, fc := newPostService(posts)

	_, err := svc.Get(context.Background(), postOwner, 5)
	require.NoError(t, err)
	assert.False(t, fc.contains(postCacheKey(5)))
}

func TestGetServesCachedPublishedPost(t *testing.T) {
	// No FindByID expectation: a cache hit must not touch the store.
	posts := new(MockPostRepository)
	svc, fc := newPostService(posts)
	prime(t, fc, published(5))

	got, err := svc.Get(context.Background(), anonymous, 5)
	require.NoError(t, err)
	assert.Equal(t, uint(5), got.ID)
	posts.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestGetPostNotFound(t *testing.T) {
	posts := new(MockPostRepository)
	posts.On("FindByID", mock.Anything, uint(9)).Return(nil, gorm.ErrRecordNotFound)
	svc, _ := newPostService(posts)

	_, err := svc.Get(context.Background(), anonymous, 9)
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
}

func TestUpdatePostByOwner(t *testing.T) {
	posts := new(MockPostRepository)
	posts.On("FindByID", mock.Anything, uint(5)).Return(draft(5), nil)
	posts.On("Update", mock.Anything, mock.AnythingOfType("*model.Post")).Return(nil)
	svc, _ := newPostService(posts)

	title := "New title"
	post, err := svc.Update(context.Background(), postOwner, 5, PostUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "New title", post.Title)
	assert.Equal(t, "c", post.Content)
}

func TestUpdatePostIgnoresCachedCopy(t *testing.T) {
	posts := new(MockPostRepository)
	fresh := published(5)
	fresh.Title = "fresh title"
	posts.On("FindByID", mock.Anything, uint(5)).Return(fresh, nil)
	posts.On("Update", mock.Anything, mock.AnythingOfType("*model.Post")).Return(nil)
	svc, fc := newPostService(posts)

	// A stale cached snapshot must not be the base of a write.
	stale := published(5)
	stale.Title = "stale title"
	prime(t, fc, stale)

	content := "new content"
	post, err := svc.Update(context.Background(), postOwner, 5, PostUpdate{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "fresh title", post.Title)
	assert.Equal(t, "new content", post.Content)
	assert.False(t, fc.contains(postCacheKey(5)))
	posts.AssertExpectations(t)
}

func TestUpdatePostByNonOwner(t *testing.T) {
	posts := new(MockPostRepository)
	posts.On("FindByID", mock.Anything, uint(5)).Return(published(5), nil)
	svc, _ := newPostService(posts)

	title := "New title"
	_, err := svc.Update(context.Background(), postOther, 5, PostUpdate{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	posts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestPublishTransitions(t *testing.T) {
	posts := new(MockPostRepository)
	posts.On("FindByID", mock.Anything, uint(5)).Return(draft(5), nil)
	posts.On("Update", mock.Anything, mock.AnythingOfType("*model.Post")).Return(nil)
	svc, _ := newPostService(posts)

	post, err := svc.SetPublished(context.Background(), postOwner, 5, true)
	require.NoError(t, err)
	assert.True(t, post.Published)

	post, err = svc.SetPublished(context.Background(), postOwner, 5, false)
	require.NoError(t, err)
	assert.False(t, post.Published)
}

func TestPublishByNonOwner(t *testing.T) {
	posts := new(MockPostRepository)
	posts.On("FindByID", mock.Anything, uint(5)).Return(draft(5), nil)
	svc, _ := newPostService(posts)

	_, err := svc.SetPublished(context.Background(), postOther, 5, true)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestDeletePost(t *testing.T) {
	posts := new(MockPostRepository)
	posts.On("FindByID", mock.Anything, uint(5)).Return(published(5), nil)
	posts.On("Delete", mock.Anything, uint(5)).Return(nil)
	svc, fc := newPostService(posts)
	prime(t, fc, published(5))

	require.NoError(t, svc.Delete(context.Background(), postOwner, 5))
	assert.False(t, fc.contains(postCacheKey(5)))
	posts.AssertExpectations(t)
}

func TestDeletePostByNonOwner(t *testing.T) {
	posts := new(MockPostRepository)
	posts.On("FindByID", mock.Anything, uint(5)).Return(published(5), nil)
	svc, _ := newPostService(posts)

	err := svc.Delete(context.Background(), postOther, 5)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	posts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestListPublishedPagination(t *testing.T) {
	posts := new(MockPostRepository)
	// Out-of-range paging inputs fall back to page 1 with the default size.
	posts.On("ListPublished", mock.Anything, 0, DefaultPageSize).Return([]model.Post{*published(1)}, nil)
	posts.On("CountPublished", mock.Anything).Return(int64(1), nil)
	svc, _ := newPostService(posts)

	list, total, err := svc.ListPublished(context.Background(), -3, MaxPageSize+1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int64(1), total)
}

func TestListPublishedOffset(t *testing.T) {
	posts := new(MockPostRepository)
	posts.On("ListPublished", mock.Anything, 20, 10).Return([]model.Post{}, nil)
	posts.On("CountPublished", mock.Anything).Return(int64(0), nil)
	svc, _ := newPostService(posts)

	_, _, err := svc.ListPublished(context.Background(), 3, 10)
	require.NoError(t, err)
	posts.AssertExpectations(t)
}

func TestListByAuthorAnonymous(t *testing.T) {
	svc, _ := newPostService(new(MockPostRepository))

	_, err := svc.ListByAuthor(context.Background(), anonymous)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}
