package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"karmafeed/internal/domain/user/model"
	"karmafeed/pkg/database"
	"karmafeed/pkg/errs"

	"gorm.io/gorm"
)

// UserRepository 接口定义
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// userRepository 实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建新的仓库实例
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// AutoMigrate 开发环境建表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.User{})
}

// Create 创建用户，用户名重复时返回 errs.ErrConflict
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return errs.Conflict("username %q is already taken", user.Username)
		}
		return err
	}
	return nil
}

// GetByUsername 根据用户名获取用户
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("user %q does not exist", username)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

// MemoryUserRepository 内存实现（用于开发/测试）
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
	seq   uint64
}

// NewMemoryUserRepository 创建内存仓库
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]model.User)}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return errs.Conflict("username %q is already taken", user.Username)
	}
	r.seq++
	user.ID = r.seq
	user.CreatedAt = time.Now().UTC()
	r.users[user.Username] = *user
	return nil
}

func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return nil, errs.NotFound("user %q does not exist", username)
	}
	return &user, nil
}
