package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"karmafeed/internal/pkg/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 驱动名，同时作为 sqlx 的 bindvar 类型
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"

	sqlxPostgres = "pgx"
	sqlxSQLite   = "sqlite3"
)

// Handle 数据库句柄，gorm 用于常规读写，sqlx 用于聚合查询
type Handle struct {
	Gorm   *gorm.DB
	SQLX   *sqlx.DB
	Driver string
}

// Open 根据配置打开数据库连接
// memory 驱动返回 nil，由各模块使用内存仓库
func Open(cfg config.DatabaseConfig, debug bool) (*Handle, error) {
	switch cfg.Driver {
	case DriverPostgres:
		return OpenPostgres(cfg.DSN(), debug)
	case DriverSQLite:
		return OpenSQLite(cfg.SQLitePath, debug)
	case DriverMemory:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// OpenPostgres 通过 pgx 打开 Postgres 连接
func OpenPostgres(dsn string, debug bool) (*Handle, error) {
	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	connCfg.RuntimeParams["application_name"] = "karmafeed"

	sqlDB := stdlib.OpenDB(*connCfg)
	// 连接池配置
	configureConnectionPool(sqlDB)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig(debug))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Handle{Gorm: db, SQLX: sqlx.NewDb(sqlDB, sqlxPostgres), Driver: DriverPostgres}, nil
}

// OpenSQLite 打开 SQLite 连接，path 可以是 ":memory:"
// SQLite 只允许单写，连接池固定为 1，写操作天然串行
func OpenSQLite(path string, debug bool) (*Handle, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig(debug))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
	}

	return &Handle{Gorm: db, SQLX: sqlx.NewDb(sqlDB, sqlxSQLite), Driver: DriverSQLite}, nil
}

// Close 关闭底层连接
func (h *Handle) Close() error {
	if h == nil || h.SQLX == nil {
		return nil
	}
	return h.SQLX.Close()
}

func gormConfig(debug bool) *gorm.Config {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return &gorm.Config{
		Logger:                                   logger.Default.LogMode(level),
		TranslateError:                           true, // 唯一约束冲突转换为 gorm.ErrDuplicatedKey
		DisableForeignKeyConstraintWhenMigrating: true, // 禁用外键约束检查
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// configureConnectionPool 配置数据库连接池
func configureConnectionPool(sqlDB *sql.DB) {
	// 设置连接池中的最大连接数
	sqlDB.SetMaxOpenConns(100) // 根据数据库服务器性能调整

	// 设置连接池中的最大空闲连接数
	sqlDB.SetMaxIdleConns(10) // 推荐 SetMaxOpenConns 的 10%

	// 设置连接的最大生命周期
	sqlDB.SetConnMaxLifetime(time.Hour) // 1小时，避免长时间连接问题

	// 设置连接的最大空闲时间
	sqlDB.SetConnMaxIdleTime(time.Minute * 30) // 30分钟

	log.Println("Database connection pool configured successfully")
}
