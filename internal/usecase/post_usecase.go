package usecase

import (
	"errors"

	"github.com/google/uuid"

	"github.com/mclrc/microblog/internal/domain"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrNotPostAuthor = errors.New("not the post author")
)

// PostUsecase is thin pass-through persistence; the interesting behavior is
// resolving the author from the authenticated username.
type PostUsecase struct {
	postRepo domain.PostRepository
	userRepo domain.UserRepository
}

func NewPostUsecase(postRepo domain.PostRepository, userRepo domain.UserRepository) *PostUsecase {
	return &PostUsecase{
		postRepo: postRepo,
		userRepo: userRepo,
	}
}

func (u *PostUsecase) CreatePost(authorName, message string) (*domain.Post, error) {
	author, err := u.userRepo.GetByName(authorName)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, ErrUserNotFound
	}

	post := &domain.Post{
		AuthorID: author.ID,
		Message:  message,
	}
	if err := u.postRepo.Create(post); err != nil {
		return nil, err
	}
	return post, nil
}

func (u *PostUsecase) GetPost(id uuid.UUID) (*domain.Post, error) {
	return u.postRepo.GetByID(id)
}

// DeletePost removes a post if and only if it belongs to authorName. Missing
// posts and foreign posts fail identically so callers cannot probe for other
// users' post ids.
func (u *PostUsecase) DeletePost(id uuid.UUID, authorName string) error {
	author, err := u.userRepo.GetByName(authorName)
	if err != nil {
		return err
	}
	if author == nil {
		return ErrUserNotFound
	}

	post, err := u.postRepo.GetByID(id)
	if err != nil {
		return err
	}
	if post == nil || post.AuthorID != author.ID {
		return ErrNotPostAuthor
	}

	return u.postRepo.Delete(id)
}
