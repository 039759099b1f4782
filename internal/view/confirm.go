package view

// 削除確認の文言
const (
	ConfirmDeleteProject = "Are you sure you want to delete this project?"
	ConfirmDeleteTask    = "Delete this task?"
)

// Confirmer は取り消しできない操作の前に利用者の同意を得る。
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmFunc は関数をConfirmerとして扱うアダプター。
type ConfirmFunc func(message string) bool

// Confirm はConfirmerインターフェースを実装する。
func (f ConfirmFunc) Confirm(message string) bool {
	return f(message)
}

// ConfirmThen は同意が得られた場合のみactionを実行する。
// 拒否された場合はactionを呼ばず、falseとnilを返す。
func ConfirmThen(c Confirmer, message string, action func() error) (bool, error) {
	if c == nil || !c.Confirm(message) {
		return false, nil
	}
	return true, action()
}
