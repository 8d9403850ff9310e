package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrInsufficientStock 表示守門式扣庫存未命中任何列（庫存不足）
var ErrInsufficientStock = errors.New("insufficient stock")

// IsUniqueViolation 回報錯誤是否為唯一鍵衝突 (SQLSTATE 23505)
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
