// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, project, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// エラーカテゴリ
const (
	CategoryAuth       = "auth"
	CategoryValidation = "validation"
	CategoryProject    = "project"
	CategorySystem     = "system"
)

// 定義済みエラーコード
const (
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeInvalidEmail         = "AUTH_INVALID_EMAIL"
	ErrCodeWeakPassword         = "AUTH_WEAK_PASSWORD"
	ErrCodeEmailInUse           = "AUTH_EMAIL_IN_USE"
	ErrCodeInvalidCredentials   = "AUTH_INVALID_CREDENTIALS"
	ErrCodeAuthProviderError    = "AUTH_PROVIDER_ERROR"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodeProjectNotFound      = "PROJECT_NOT_FOUND"
	ErrCodeTaskNotFound         = "TASK_NOT_FOUND"
	ErrCodeNotProjectOwner      = "NOT_PROJECT_OWNER"
	ErrCodeEmptyTitle           = "EMPTY_TITLE"
	ErrCodeTitleTooLong         = "TITLE_TOO_LONG"
	ErrCodeTitleHasMarkup       = "TITLE_HAS_MARKUP"
	ErrCodeInvalidStatus        = "INVALID_STATUS"
	ErrCodeInvalidRequest       = "INVALID_REQUEST"
	ErrCodeStoreError           = "STORE_ERROR"
	ErrCodeInternal             = "INTERNAL_ERROR"
	ErrCodeRateLimitExceeded    = "RATE_LIMIT_EXCEEDED"
	ErrCodeCSRFValidationFailed = "CSRF_VALIDATION_FAILED"
)

// AsAPIError はエラーチェーンからAPIErrorを取り出す。
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// HasCode はエラーチェーンに指定コードのAPIErrorが含まれるかを返す。
func HasCode(err error, code string) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Code == code
}

// IsNotFound は参照先が存在しないことを示すエラーかどうかを返す。
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return false
	}
	switch apiErr.Code {
	case ErrCodeProjectNotFound, ErrCodeTaskNotFound, ErrCodeUserNotFound:
		return true
	}
	return false
}

// IsValidation は入力値の検証エラーかどうかを返す。
func IsValidation(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Category == CategoryValidation
}

// IsAuth は認証エラーかどうかを返す。
func IsAuth(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Category == CategoryAuth
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: CategoryAuth,
		Action:   "ログインしてください。",
	}
}

// NewInvalidEmailError はメールアドレス形式エラーを生成する。
func NewInvalidEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  "メールアドレスの形式が正しくありません。",
		Category: CategoryAuth,
		Action:   "正しいメールアドレスを入力してください。",
	}
}

// NewWeakPasswordError は弱いパスワードのエラーを生成する。
func NewWeakPasswordError(minLength, maxBytes int) *APIError {
	return &APIError{
		Code:     ErrCodeWeakPassword,
		Message:  fmt.Sprintf("パスワードは%d文字以上、%dバイト以下で指定してください。", minLength, maxBytes),
		Category: CategoryAuth,
		Action:   "より長いパスワードを設定してください。",
	}
}

// NewEmailInUseError は登録済みメールアドレスのエラーを生成する。
func NewEmailInUseError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailInUse,
		Message:  "このメールアドレスは既に登録されています。",
		Category: CategoryAuth,
		Action:   "ログイン画面からサインインしてください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致のエラーを生成する。
// メールアドレスの存在有無は区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: CategoryAuth,
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewAuthProviderError は認証基盤側の障害エラーを生成する。
func NewAuthProviderError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthProviderError,
		Message:  "認証処理に失敗しました。",
		Category: CategoryAuth,
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: CategoryAuth,
		Action:   "ログインし直してください。",
	}
}

// NewProjectNotFoundError はプロジェクト未検出エラーを生成する。
func NewProjectNotFoundError(projectID string) *APIError {
	return &APIError{
		Code:     ErrCodeProjectNotFound,
		Message:  fmt.Sprintf("指定されたプロジェクトが見つかりません: %s", projectID),
		Category: CategoryProject,
		Action:   "プロジェクト一覧から選択し直してください。",
	}
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
func NewTaskNotFoundError(taskID string) *APIError {
	return &APIError{
		Code:     ErrCodeTaskNotFound,
		Message:  fmt.Sprintf("指定されたタスクが見つかりません: %s", taskID),
		Category: CategoryProject,
		Action:   "画面を再読み込みしてください。",
	}
}

// NewNotProjectOwnerError は所有者以外による変更操作のエラーを生成する。
func NewNotProjectOwnerError() *APIError {
	return &APIError{
		Code:     ErrCodeNotProjectOwner,
		Message:  "このプロジェクトを変更できるのは所有者のみです。",
		Category: CategoryProject,
		Action:   "閲覧のみ可能です。",
	}
}

// NewEmptyTitleError は空タイトルのエラーを生成する。
func NewEmptyTitleError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyTitle,
		Message:  "タイトルを入力してください。",
		Category: CategoryValidation,
		Action:   "空白以外の文字を含むタイトルを入力してください。",
	}
}

// NewTitleTooLongError はタイトル長超過のエラーを生成する。
func NewTitleTooLongError(max int) *APIError {
	return &APIError{
		Code:     ErrCodeTitleTooLong,
		Message:  fmt.Sprintf("タイトルは%d文字以内で入力してください。", max),
		Category: CategoryValidation,
		Action:   "タイトルを短くしてください。",
	}
}

// NewTitleHasMarkupError はHTMLタグを含むタイトルのエラーを生成する。
func NewTitleHasMarkupError() *APIError {
	return &APIError{
		Code:     ErrCodeTitleHasMarkup,
		Message:  "タイトルにHTMLタグは使用できません。",
		Category: CategoryValidation,
		Action:   "タグを取り除いて再度入力してください。",
	}
}

// NewInvalidStatusError は未定義ステータスのエラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStatus,
		Message:  fmt.Sprintf("無効なステータスです: %s", status),
		Category: CategoryValidation,
		Action:   "ステータスには pending、in progress、completed のいずれかを指定してください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: CategoryValidation,
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewStoreError はデータストア障害のエラーを生成する。
func NewStoreError() *APIError {
	return &APIError{
		Code:     ErrCodeStoreError,
		Message:  "データの読み書きに失敗しました。",
		Category: CategorySystem,
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: CategorySystem,
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewRateLimitExceededError はレート制限超過のエラーを生成する。
func NewRateLimitExceededError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimitExceeded,
		Message:  "リクエストが多すぎます。",
		Category: CategorySystem,
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewCSRFValidationFailedError はCSRFトークン検証失敗のエラーを生成する。
func NewCSRFValidationFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeCSRFValidationFailed,
		Message:  "CSRFトークンの検証に失敗しました。",
		Category: CategoryAuth,
		Action:   "画面を再読み込みしてから再度お試しください。",
	}
}
