package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/minsu-dev/board-api/internal/models"
	appErrors "github.com/minsu-dev/board-api/pkg/errors"
)

type postRepository interface {
	List(ctx context.Context, limit, offset int) ([]models.Post, int, error)
	FindByID(ctx context.Context, id int64) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id int64) error
}

// CreatePostRequest represents payload for creating posts.
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// UpdatePostRequest carries a partial update; nil fields are left unchanged.
type UpdatePostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// PostService handles board post workflows. Edits and deletions are scoped
// to the post's author, with admin override.
type PostService struct {
	repo      postRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPostService creates an instance of PostService.
func NewPostService(repo postRepository, validate *validator.Validate, logger *zap.Logger) *PostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PostService{repo: repo, validator: validate, logger: logger}
}

// List returns posts newest first with pagination metadata.
func (s *PostService) List(ctx context.Context, page, pageSize int) ([]models.Post, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	posts, total, err := s.repo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list posts")
	}

	pagination := &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
	return posts, pagination, nil
}

// Get returns a post by ID.
func (s *PostService) Get(ctx context.Context, id int64) (*models.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load post")
	}
	return post, nil
}

// Create adds a new post authored by the current user.
func (s *PostService) Create(ctx context.Context, req CreatePostRequest, author *models.User) (*models.Post, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create post payload")
	}

	post := &models.Post{
		AuthorID: author.ID,
		Author:   author.Username,
		Title:    req.Title,
		Content:  req.Content,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create post")
	}

	return post, nil
}

// Update applies a partial update to a post owned by the actor.
func (s *PostService) Update(ctx context.Context, id int64, req UpdatePostRequest, actor *models.User) (*models.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != actor.ID && !actor.IsAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the author can edit this post")
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update post")
	}

	return post, nil
}

// Delete removes a post owned by the actor.
func (s *PostService) Delete(ctx context.Context, id int64, actor *models.User) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if post.AuthorID != actor.ID && !actor.IsAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only the author can delete this post")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete post")
	}

	return nil
}
