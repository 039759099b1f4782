package model

import (
	"strings"
	"unicode/utf8"
)

// MaxTitleLength はプロジェクト名・タスク名の最大文字数（rune数）。
const MaxTitleLength = 200

// ValidateTitle はプロジェクト名・タスク名を検証する。
// 前後の空白を除いて空になる場合や最大文字数を超える場合はバリデーションエラーを返す。
// タイトル自体は加工せず、入力どおりに保存される。
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return NewEmptyTitleError()
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return NewTitleTooLongError(MaxTitleLength)
	}
	return nil
}
