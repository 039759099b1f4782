package client

import (
	"context"
	"log/slog"

	"github.com/hitoshi/taskboard/internal/model"
)

// NotificationKind は通知の種別。
type NotificationKind string

const (
	NotificationInfo    NotificationKind = "info"
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notifier は操作結果をユーザーに一時的に通知する。
// 表示方法は実装に委ねる。
type Notifier interface {
	Notify(kind NotificationKind, message string)
}

// NotifierFunc は関数をNotifierとして扱うアダプター。
type NotifierFunc func(kind NotificationKind, message string)

// Notify はNotifierインターフェースを実装する。
func (f NotifierFunc) Notify(kind NotificationKind, message string) {
	f(kind, message)
}

// SlogNotifier は通知を構造化ログとして出力する。
type SlogNotifier struct {
	logger *slog.Logger
}

// NewSlogNotifier はSlogNotifierを生成する。loggerがnilの場合はslog.Default()を使う。
func NewSlogNotifier(logger *slog.Logger) *SlogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogNotifier{logger: logger}
}

// Notify は種別に応じたレベルでログを出力する。
func (n *SlogNotifier) Notify(kind NotificationKind, message string) {
	level := slog.LevelInfo
	if kind == NotificationError {
		level = slog.LevelWarn
	}
	n.logger.Log(context.Background(), level, message, slog.String("kind", string(kind)))
}

// failureMessage は通知用のメッセージを組み立てる。
// APIErrorを含む場合はその内容を付加する。
func failureMessage(summary string, err error) string {
	if apiErr, ok := model.AsAPIError(err); ok && apiErr.Message != "" {
		return summary + ": " + apiErr.Message
	}
	return summary
}
