package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/hitoshi/taskboard/internal/model"
)

// Error はAPI呼び出しの失敗を表す。
// サーバーが返したエラーボディ、または通信失敗時のStoreErrorを保持する。
type Error struct {
	StatusCode int // 通信自体に失敗した場合は0
	*model.APIError

	// Err は通信エラーなど下位の原因。サーバー応答によるエラーではnil。
	Err error
}

// Error はerrorインターフェースを実装する。
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("taskboard: [%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("taskboard: %d [%s] %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap は model.APIError と下位の原因の両方を返す。
// model.HasCode などのヘルパーがそのまま使える。
func (e *Error) Unwrap() []error {
	errs := []error{e.APIError}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IsUnauthorized は未認証による失敗かどうかを返す。
func IsUnauthorized(err error) bool {
	return model.HasCode(err, model.ErrCodeUnauthorized)
}

// IsForbidden は所有者以外による変更操作の拒否かどうかを返す。
func IsForbidden(err error) bool {
	return model.HasCode(err, model.ErrCodeNotProjectOwner)
}

// IsTransport はサーバーに到達できなかった失敗かどうかを返す。
func IsTransport(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode == 0
}

// errorBody はサーバーのエラーレスポンス形式。
type errorBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// parseError はエラーレスポンスをErrorに変換する。
// 形式が不明なボディはステータスコードから分類する。
func parseError(statusCode int, body []byte) *Error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Code != "" {
		return &Error{
			StatusCode: statusCode,
			APIError: &model.APIError{
				Code:     eb.Code,
				Message:  eb.Message,
				Category: eb.Category,
				Action:   eb.Action,
			},
		}
	}

	var apiErr *model.APIError
	switch statusCode {
	case http.StatusUnauthorized:
		apiErr = model.NewUnauthorizedError()
	case http.StatusForbidden:
		apiErr = model.NewNotProjectOwnerError()
	case http.StatusTooManyRequests:
		apiErr = model.NewRateLimitExceededError()
	default:
		apiErr = model.NewStoreError()
	}
	return &Error{StatusCode: statusCode, APIError: apiErr}
}

// transportError は通信失敗をStoreErrorとして包む。
func transportError(err error) *Error {
	return &Error{APIError: model.NewStoreError(), Err: err}
}
