package repository

import (
	"database/sql"
	"errors"
	"fmt"
)

// rowScanner は *sql.Row と *sql.Rows の共通部分。
type rowScanner interface {
	Scan(dest ...any) error
}

// optional は単一行の取得結果を正規化する。
// 該当行がない場合は (nil, nil) を返す。
func optional[T any](v *T, err error, what string) (*T, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", what, err)
	}
	return v, nil
}
