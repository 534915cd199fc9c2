package user

import (
	"fmt"

	"karmafeed/internal/domain/user/handler"
	"karmafeed/internal/domain/user/repository"
	"karmafeed/internal/domain/user/service"
	"karmafeed/internal/pkg/registry"
	"karmafeed/pkg/database"

	"github.com/gin-gonic/gin"
)

// UserModule 账号注册与登录，签发 feed 与 leaderboard 使用的令牌
type UserModule struct{}

func init() {
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

// Priority 其他模块的写接口都依赖登录，最先初始化
func (m *UserModule) Priority() int {
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	repo, err := newRepository(ctx)
	if err != nil {
		return err
	}
	h := handler.NewUserHandler(service.NewUserService(repo))

	setupRoutes(ctx.Router, h)
	return nil
}

func newRepository(ctx *registry.ModuleContext) (repository.UserRepository, error) {
	if ctx.DB == nil {
		ctx.Logger.Warn("user module using in-memory storage; accounts are lost on restart")
		return repository.NewMemoryUserRepository(), nil
	}
	if ctx.DB.Driver == database.DriverSQLite || ctx.Config.Database.AutoMigrate {
		if err := repository.AutoMigrate(ctx.DB.Gorm); err != nil {
			return nil, fmt.Errorf("migrate users: %w", err)
		}
	}
	return repository.NewUserRepository(ctx.DB.Gorm), nil
}

func setupRoutes(r *gin.Engine, h *handler.UserHandler) {
	r.POST("/signup/", h.Signup)
	r.POST("/login/", h.Login)
}
