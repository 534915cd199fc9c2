package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"karmafeed/internal/pkg/config"
	"karmafeed/pkg/cache"
	"karmafeed/pkg/database"
	"karmafeed/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ModuleContext 模块初始化所需的上下文
type ModuleContext struct {
	// Ctx 应用生命周期，后台任务随其取消而退出
	Ctx     context.Context
	Config  *config.Config
	DB      *database.Handle // memory 驱动下为 nil
	Cache   cache.CacheService
	Router  *gin.Engine
	Logger  *zap.Logger
	Metrics *metrics.MetricsCollector

	mu       sync.RWMutex
	provided map[string]interface{}
}

// Provide 向后初始化的模块暴露一个依赖
func (c *ModuleContext) Provide(name string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.provided == nil {
		c.provided = make(map[string]interface{})
	}
	c.provided[name] = value
}

// Resolve 获取先初始化模块暴露的依赖
func (c *ModuleContext) Resolve(name string) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.provided[name]
	if !ok {
		return nil, fmt.Errorf("dependency %q not provided; check module priorities", name)
	}
	return v, nil
}

// Module 模块接口
type Module interface {
	// Name 返回模块名称
	Name() string

	// Init 初始化模块（依赖注入、路由注册等）
	Init(ctx *ModuleContext) error

	// Priority 返回初始化优先级（数字越小越先初始化）
	// 例如：feed 模块必须先于 leaderboard 模块初始化
	Priority() int
}

// moduleRegistry 全局模块注册表
var moduleRegistry = make(map[string]Module)

// Register 注册模块
func Register(module Module) {
	moduleRegistry[module.Name()] = module
}

// GetModules 获取所有已注册的模块
func GetModules() map[string]Module {
	return moduleRegistry
}

// InitModules 按优先级初始化所有模块
func InitModules(ctx *ModuleContext) error {
	modules := make([]Module, 0, len(moduleRegistry))
	for _, m := range moduleRegistry {
		modules = append(modules, m)
	}

	// 优先级相同时按名称排序，保证初始化顺序稳定
	sort.Slice(modules, func(i, j int) bool {
		if modules[i].Priority() != modules[j].Priority() {
			return modules[i].Priority() < modules[j].Priority()
		}
		return modules[i].Name() < modules[j].Name()
	})

	for _, module := range modules {
		if err := module.Init(ctx); err != nil {
			return fmt.Errorf("init module %s: %w", module.Name(), err)
		}
		if ctx.Logger != nil {
			ctx.Logger.Info("module initialized", zap.String("module", module.Name()), zap.Int("priority", module.Priority()))
		}
	}

	return nil
}
