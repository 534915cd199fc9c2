package repository

import (
	"context"
	"testing"

	"karmafeed/internal/domain/user/model"
	"karmafeed/pkg/database"
	"karmafeed/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepositories(t *testing.T) {
	factories := map[string]func(t *testing.T) UserRepository{
		"gorm": func(t *testing.T) UserRepository {
			h, err := database.OpenSQLite(":memory:", false)
			require.NoError(t, err)
			require.NoError(t, AutoMigrate(h.Gorm))
			t.Cleanup(func() { _ = h.Close() })
			return NewUserRepository(h.Gorm)
		},
		"memory": func(t *testing.T) UserRepository {
			return NewMemoryUserRepository()
		},
	}

	for name, newRepo := range factories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)

			user := &model.User{Username: "alice", Password: "hash"}
			require.NoError(t, repo.Create(ctx, user))
			assert.NotZero(t, user.ID)

			err := repo.Create(ctx, &model.User{Username: "alice", Password: "other"})
			assert.ErrorIs(t, err, errs.ErrConflict)

			got, err := repo.GetByUsername(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, user.ID, got.ID)
			assert.Equal(t, "hash", got.Password)

			_, err = repo.GetByUsername(ctx, "bob")
			assert.ErrorIs(t, err, errs.ErrNotFound)
		})
	}
}
