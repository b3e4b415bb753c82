package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minsu-dev/board-api/internal/models"
)

func postRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "author_id", "author", "title", "content", "created_at", "updated_at"}).
		AddRow(int64(1), int64(1), "alice", "first", "hello", now, now)
}

func TestListPosts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, author_id, author, title, content, created_at, updated_at FROM posts ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(postRows(time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM posts")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	posts, total, err := repo.List(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "alice", posts[0].Author)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPostByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, author_id, author, title, content, created_at, updated_at FROM posts WHERE id = $1 LIMIT 1")).
		WithArgs(int64(1)).
		WillReturnRows(postRows(time.Now()))

	post, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "first", post.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPostByIDNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPostRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM posts WHERE id").
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePost(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPostRepository(db)

	mock.ExpectQuery("INSERT INTO posts").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	post := &models.Post{AuthorID: 1, Author: "alice", Title: "first", Content: "hello"}
	err := repo.Create(context.Background(), post)
	require.NoError(t, err)
	assert.Equal(t, int64(5), post.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePost(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPostRepository(db)

	mock.ExpectExec("UPDATE posts SET title").
		WillReturnResult(sqlmock.NewResult(0, 1))

	post := &models.Post{ID: 1, Title: "edited", Content: "hello"}
	err := repo.Update(context.Background(), post)
	require.NoError(t, err)
	assert.False(t, post.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePost(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPostRepository(db)

	mock.ExpectExec("DELETE FROM posts").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), 1)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
