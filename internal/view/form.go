package view

import (
	"context"
	"errors"
	"sync"

	"github.com/hitoshi/taskboard/internal/model"
)

// FormPhase はフォームの送信状態。
type FormPhase string

const (
	FormIdle       FormPhase = "idle"
	FormSubmitting FormPhase = "submitting"
	FormSuccess    FormPhase = "success"
	FormError      FormPhase = "error"
)

// ErrFormBusy は送信中のフォームを再送信しようとした場合に返される。
var ErrFormBusy = errors.New("form is already submitting")

// Form はフォームの状態遷移を管理する。
//
//	idle → submitting → success → idle
//	                  → error   → idle
//
// 送信中の取り消しはできない。
type Form struct {
	mu    sync.Mutex
	phase FormPhase
	err   error
}

// NewForm はidle状態のFormを生成する。
func NewForm() *Form {
	return &Form{phase: FormIdle}
}

// Phase は現在の状態を返す。
func (f *Form) Phase() FormPhase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// Err は直近の送信エラーを返す。
func (f *Form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Message は直近の送信エラーの表示用メッセージを返す。
func (f *Form) Message() string {
	err := f.Err()
	if err == nil {
		return ""
	}
	if apiErr, ok := model.AsAPIError(err); ok {
		return apiErr.Message
	}
	return err.Error()
}

// Submit はsubmitを実行し、結果に応じてsuccessまたはerrorへ遷移する。
// 送信中に呼び出した場合は ErrFormBusy を返し、submitは実行しない。
func (f *Form) Submit(ctx context.Context, submit func(ctx context.Context) error) error {
	f.mu.Lock()
	if f.phase == FormSubmitting {
		f.mu.Unlock()
		return ErrFormBusy
	}
	f.phase = FormSubmitting
	f.err = nil
	f.mu.Unlock()

	err := submit(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.phase = FormError
		f.err = err
		return err
	}
	f.phase = FormSuccess
	return nil
}

// Acknowledge は結果の表示を終えてidleに戻す。送信中は何もしない。
func (f *Form) Acknowledge() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase == FormSubmitting {
		return
	}
	f.phase = FormIdle
	f.err = nil
}
