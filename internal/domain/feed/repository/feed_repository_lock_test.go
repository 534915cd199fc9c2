package repository

import (
	"context"
	"errors"
	"testing"

	"karmafeed/internal/domain/feed/model"
	"karmafeed/pkg/errs"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockPostgresRepo(t *testing.T) (FeedRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewFeedRepository(gdb), mock
}

// 切换点赞锁目标行用 FOR NO KEY UPDATE，避免与评论外键检查的 FOR KEY SHARE 互斥
func TestToggleLikeLockStrength(t *testing.T) {
	ctx := context.Background()

	t.Run("post", func(t *testing.T) {
		repo, mock := newMockPostgresRepo(t)
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "id","author" FROM "posts" WHERE id = .+ FOR NO KEY UPDATE`).
			WillReturnError(boom)
		mock.ExpectRollback()

		_, _, err := repo.ToggleLike(ctx, "bob", model.Target{Type: model.TargetPost, ID: 1}, nil)
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("comment with guard", func(t *testing.T) {
		repo, mock := newMockPostgresRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "id","author" FROM "comments" WHERE id = .+ FOR NO KEY UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "author"}).AddRow(7, "bob"))
		mock.ExpectExec(`DELETE FROM "likes"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		guard := func(author string) error {
			if author == "bob" {
				return errs.Validation("cannot like your own comment")
			}
			return nil
		}
		_, _, err := repo.ToggleLike(ctx, "bob", model.Target{Type: model.TargetComment, ID: 7}, guard)
		assert.ErrorIs(t, err, errs.ErrValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
