package usecase

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mclrc/microblog/internal/domain"
)

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[uuid.UUID]*domain.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[uuid.UUID]*domain.Post)}
}

func (r *fakePostRepo) Create(post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	post.CreatedAt = time.Now()
	cp := *post
	r.posts[post.ID] = &cp
	return nil
}

func (r *fakePostRepo) GetByID(id uuid.UUID) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakePostRepo) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	return nil
}

func newTestPostUsecase(t *testing.T) (*PostUsecase, *fakeUserRepo) {
	t.Helper()
	userRepo := newFakeUserRepo()
	require.NoError(t, userRepo.Create(&domain.User{Name: "alice", Email: "a@a.com"}))
	require.NoError(t, userRepo.Create(&domain.User{Name: "bob1", Email: "b@b.com"}))
	return NewPostUsecase(newFakePostRepo(), userRepo), userRepo
}

func TestCreateAndGetPost(t *testing.T) {
	posts, users := newTestPostUsecase(t)

	post, err := posts.CreatePost("alice", "hello world")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, post.ID)

	alice, err := users.GetByName("alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, post.AuthorID)

	got, err := posts.GetPost(post.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hello world", got.Message)
}

func TestCreatePostUnknownAuthor(t *testing.T) {
	posts, _ := newTestPostUsecase(t)

	_, err := posts.CreatePost("nobody", "hello")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeletePost(t *testing.T) {
	posts, _ := newTestPostUsecase(t)

	post, err := posts.CreatePost("alice", "mine")
	require.NoError(t, err)

	// Non-author and missing post fail identically.
	err = posts.DeletePost(post.ID, "bob1")
	assert.ErrorIs(t, err, ErrNotPostAuthor)

	err = posts.DeletePost(uuid.New(), "alice")
	assert.ErrorIs(t, err, ErrNotPostAuthor)

	err = posts.DeletePost(post.ID, "alice")
	require.NoError(t, err)

	got, err := posts.GetPost(post.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
