package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/minsu-dev/board-api/internal/models"
	appErrors "github.com/minsu-dev/board-api/pkg/errors"
)

type fakePostRepo struct {
	posts   map[int64]*models.Post
	nextID  int64
	lastLim int
	lastOff int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[int64]*models.Post), nextID: 1}
}

func (f *fakePostRepo) List(ctx context.Context, limit, offset int) ([]models.Post, int, error) {
	f.lastLim, f.lastOff = limit, offset
	out := make([]models.Post, 0, len(f.posts))
	for _, post := range f.posts {
		out = append(out, *post)
	}
	return out, len(f.posts), nil
}

func (f *fakePostRepo) FindByID(ctx context.Context, id int64) (*models.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *post
	return &copied, nil
}

func (f *fakePostRepo) Create(ctx context.Context, post *models.Post) error {
	post.ID = f.nextID
	f.nextID++
	copied := *post
	f.posts[post.ID] = &copied
	return nil
}

func (f *fakePostRepo) Update(ctx context.Context, post *models.Post) error {
	copied := *post
	f.posts[post.ID] = &copied
	return nil
}

func (f *fakePostRepo) Delete(ctx context.Context, id int64) error {
	delete(f.posts, id)
	return nil
}

var (
	author = &models.User{ID: 1, Username: "alice"}
	other  = &models.User{ID: 2, Username: "bob"}
	admin  = &models.User{ID: 3, Username: "root", IsAdmin: true}
)

func newTestPostService(repo *fakePostRepo) *PostService {
	return NewPostService(repo, validator.New(), zap.NewNop())
}

func seedPost(t *testing.T, svc *PostService) *models.Post {
	t.Helper()
	post, err := svc.Create(context.Background(), CreatePostRequest{Title: "hello", Content: "world"}, author)
	require.NoError(t, err)
	return post
}

func TestCreatePostSetsAuthor(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())

	post := seedPost(t, svc)
	assert.Equal(t, int64(1), post.AuthorID)
	assert.Equal(t, "alice", post.Author)
	assert.NotZero(t, post.ID)
}

func TestCreatePostValidatesPayload(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())

	_, err := svc.Create(context.Background(), CreatePostRequest{Title: "", Content: ""}, author)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestListClampsPagination(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestPostService(repo)

	_, pagination, err := svc.List(context.Background(), -3, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 20, repo.lastLim)
	assert.Equal(t, 0, repo.lastOff)
}

func TestGetMissingPostReturnsNotFound(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())

	_, err := svc.Get(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestUpdateByNonAuthorForbidden(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())
	post := seedPost(t, svc)

	title := "hijacked"
	_, err := svc.Update(context.Background(), post.ID, UpdatePostRequest{Title: &title}, other)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestUpdateByAdminAllowed(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())
	post := seedPost(t, svc)

	title := "moderated"
	updated, err := svc.Update(context.Background(), post.ID, UpdatePostRequest{Title: &title}, admin)
	require.NoError(t, err)
	assert.Equal(t, "moderated", updated.Title)
	assert.Equal(t, "world", updated.Content)
}

func TestUpdateAppliesPartialFields(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())
	post := seedPost(t, svc)

	content := "updated content"
	updated, err := svc.Update(context.Background(), post.ID, UpdatePostRequest{Content: &content}, author)
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Title)
	assert.Equal(t, "updated content", updated.Content)
}

func TestDeleteByNonAuthorForbidden(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestPostService(repo)
	post := seedPost(t, svc)

	err := svc.Delete(context.Background(), post.ID, other)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Len(t, repo.posts, 1)
}

func TestDeleteByAuthor(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestPostService(repo)
	post := seedPost(t, svc)

	require.NoError(t, svc.Delete(context.Background(), post.ID, author))
	assert.Empty(t, repo.posts)
}
