package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"karmafeed/internal/domain/user/model"
	"karmafeed/internal/domain/user/repository"
	"karmafeed/pkg/errs"
	"karmafeed/pkg/logger"
	"karmafeed/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 150
	minPasswordLength = 8
	// bcrypt 只使用前 72 字节
	maxPasswordBytes = 72
)

// UserService 用户服务接口
type UserService interface {
	Signup(ctx context.Context, username, password string) (*model.SignupResult, error)
	Login(ctx context.Context, username, password string) (*model.LoginResult, error)
}

// userService 实现
type userService struct {
	repo repository.UserRepository
	cost int
	log  *zap.Logger
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo, cost: bcrypt.DefaultCost, log: logger.Named("user")}
}

// Signup 注册
func (s *userService) Signup(ctx context.Context, username, password string) (*model.SignupResult, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}

	user := &model.User{Username: username, Password: string(hashed)}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("user signed up", zap.String("username", username), zap.Uint64("user_id", user.ID))

	return &model.SignupResult{ID: user.ID, Username: user.Username}, nil
}

// Login 登录，用户名不存在与密码错误返回同样的错误
func (s *userService) Login(ctx context.Context, username, password string) (*model.LoginResult, error) {
	username = strings.TrimSpace(username)

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.Authentication("invalid username or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errs.Authentication("invalid username or password")
	}

	token, expireAt, err := utils.GenerateToken(user.Username)
	if err != nil {
		return nil, err
	}

	return &model.LoginResult{
		Token:     token,
		Username:  user.Username,
		ExpiresAt: expireAt.Unix(),
	}, nil
}

func validateCredentials(username, password string) error {
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return errs.Validation("username must be %d-%d characters", minUsernameLength, maxUsernameLength)
	}
	if strings.ContainsAny(username, " \t\r\n") {
		return errs.Validation("username must not contain whitespace")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return errs.Validation("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return errs.Validation("password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}
