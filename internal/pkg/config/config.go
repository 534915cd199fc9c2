package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	App         AppConfig         `mapstructure:"app"`
	Feed        FeedConfig        `mapstructure:"feed"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	CORS        CORSConfig        `mapstructure:"cors"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	Mode           string        `mapstructure:"mode"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"` // postgres, sqlite, memory
	Host        string `mapstructure:"host"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	Port        string `mapstructure:"port"`
	SSLMode     string `mapstructure:"sslmode"`
	TimeZone    string `mapstructure:"timezone"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// DSN 构造 Postgres 连接串
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.DBName, d.Port, d.SSLMode, d.TimeZone)
}

// URL 构造 golang-migrate 使用的连接 URL
func (d DatabaseConfig) URL() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int64  `mapstructure:"expire"` // 小时
}

type AppConfig struct {
	Env   string `mapstructure:"env"`
	Debug bool   `mapstructure:"debug"`
}

// FeedConfig 帖子/评论/点赞相关配置
type FeedConfig struct {
	MaxContentLength int  `mapstructure:"max_content_length"`
	MaxCommentDepth  int  `mapstructure:"max_comment_depth"`
	AllowSelfLike    bool `mapstructure:"allow_self_like"`
}

// LeaderboardConfig 排行榜配置
type LeaderboardConfig struct {
	RefreshInterval   time.Duration `mapstructure:"refresh_interval"`
	RefreshTimeout    time.Duration `mapstructure:"refresh_timeout"`
	TopN              int           `mapstructure:"top_n"`
	PostLikePoints    int64         `mapstructure:"post_like_points"`
	CommentLikePoints int64         `mapstructure:"comment_like_points"`
	Window            time.Duration `mapstructure:"window"` // 0 表示统计全部历史
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	QPS   float64 `mapstructure:"qps"`
	Burst int     `mapstructure:"burst"`
}

var GlobalConfig Config

// Validate 验证配置
func (c *Config) Validate() error {
	// JWT 配置验证
	if c.JWT.Secret == "" || c.JWT.Secret == "your_super_secret_key" {
		return errors.New("please set a secure JWT secret in production")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT secret should be at least 32 characters")
	}

	// 数据库配置验证
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
			return errors.New("database configuration is incomplete")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return errors.New("sqlite_path is required for the sqlite driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	// Redis 配置验证
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("redis address is required")
	}

	if c.Feed.MaxContentLength <= 0 {
		return errors.New("feed.max_content_length must be positive")
	}
	if c.Feed.MaxCommentDepth < 0 {
		return errors.New("feed.max_comment_depth must not be negative")
	}

	if c.Leaderboard.RefreshInterval <= 0 {
		return errors.New("leaderboard.refresh_interval must be positive")
	}
	if c.Leaderboard.TopN <= 0 {
		return errors.New("leaderboard.top_n must be positive")
	}
	if c.Leaderboard.Window < 0 {
		return errors.New("leaderboard.window must not be negative")
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		return errors.New("cors.allowed_origins must list at least one origin")
	}

	return nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.request_timeout", 10*time.Second)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.sqlite_path", "karmafeed.db")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.expire", 24)
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.debug", true)
	v.SetDefault("feed.max_content_length", 500)
	v.SetDefault("feed.max_comment_depth", 3)
	v.SetDefault("feed.allow_self_like", false)
	v.SetDefault("leaderboard.refresh_interval", 120*time.Second)
	v.SetDefault("leaderboard.refresh_timeout", 15*time.Second)
	v.SetDefault("leaderboard.top_n", 5)
	v.SetDefault("leaderboard.post_like_points", 5)
	v.SetDefault("leaderboard.comment_like_points", 1)
	v.SetDefault("leaderboard.window", 0)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("rate_limit.qps", 50)
	v.SetDefault("rate_limit.burst", 100)
}

// Load 读取配置文件和环境变量，返回校验后的配置
func Load() (*Config, error) {
	// .env 文件可选，不存在时忽略
	_ = godotenv.Load()

	// 获取环境变量，默认为dev
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	// 根据环境选择配置文件
	configName := "config"
	if env != "dev" {
		configName = "config." + env
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: Config file not found, using defaults or env vars: %v", err)
	}

	// 绑定环境变量
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 手动覆盖，以防 viper 无法正确解析复杂结构或环境变量
	if driver := os.Getenv("DATABASE_DRIVER"); driver != "" {
		cfg.Database.Driver = driver
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cfg.Redis.Addr = redisAddr
		cfg.Redis.Enabled = true
	}
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		cfg.JWT.Secret = jwtSecret
	}
	if cfg.App.Env == "" {
		cfg.App.Env = env
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadConfig 加载配置到 GlobalConfig，失败直接退出
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("%v", err)
	}
	GlobalConfig = *cfg
	log.Printf("Configuration loaded and validated successfully. Environment: %s", GlobalConfig.App.Env)
}
