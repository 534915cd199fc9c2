package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation Postgres 唯一约束冲突错误码
const pgUniqueViolation = "23505"

// IsUniqueViolation 判断是否为唯一约束冲突
// gorm 开启 TranslateError 后返回 gorm.ErrDuplicatedKey，sqlx 直连时返回原始的 pgconn.PgError
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
