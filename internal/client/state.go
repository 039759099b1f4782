package client

import "github.com/hitoshi/taskboard/internal/model"

// Phase は非同期操作の進行状態を表す。
type Phase int

const (
	// PhaseIdle は未実行。
	PhaseIdle Phase = iota
	// PhasePending は応答待ち。
	PhasePending
	// PhaseReady は直近の操作が成功した状態。
	PhaseReady
	// PhaseFailed は直近の操作が失敗した状態。
	PhaseFailed
)

// String はPhaseの表示名を返す。
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePending:
		return "pending"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State はスライスごとの状態。
// 失敗時もDataは直前の成功時の値を保持する。
type State[T any] struct {
	Phase Phase
	Data  T
	Err   error
}

// Loading は応答待ちかどうかを返す。
func (s State[T]) Loading() bool {
	return s.Phase == PhasePending
}

// ErrorMessage は直近のエラーメッセージを返す。エラーがない場合は空文字列。
func (s State[T]) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	if apiErr, ok := model.AsAPIError(s.Err); ok {
		return apiErr.Message
	}
	return s.Err.Error()
}

func (s State[T]) pending() State[T] {
	return State[T]{Phase: PhasePending, Data: s.Data}
}

func (s State[T]) ready(data T) State[T] {
	return State[T]{Phase: PhaseReady, Data: data}
}

func (s State[T]) failed(err error) State[T] {
	return State[T]{Phase: PhaseFailed, Data: s.Data, Err: err}
}
