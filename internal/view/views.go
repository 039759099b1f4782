package view

import (
	"time"

	"github.com/hitoshi/taskboard/internal/model"
)

// OwnerLabelSelf は閲覧者自身が所有者である場合の表示名。
const OwnerLabelSelf = "You"

// ReadOnlyNotice は所有者以外がプロジェクト詳細を開いた際に表示する文言。
const ReadOnlyNotice = "You can only view tasks. Editing is restricted to the owner."

// CanEdit はuserがprojectを変更できるかを返す。
// 未ログイン（userがnil）の場合は常にfalse。
// 表示制御にのみ使い、実際の認可はサーバー側で行われる。
func CanEdit(project *model.Project, user *model.User) bool {
	if user == nil {
		return false
	}
	return project.CanEdit(user.ID)
}

// OwnerLabel はプロジェクト所有者の表示名を返す。projectがnilの場合は空文字列。
func OwnerLabel(project *model.Project, user *model.User) string {
	if project == nil {
		return ""
	}
	if CanEdit(project, user) {
		return OwnerLabelSelf
	}
	return project.OwnerID
}

// ProjectCard はプロジェクト一覧の1件分の表示内容。
type ProjectCard struct {
	ID         string
	Title      string
	OwnerLabel string
	CreatedAt  time.Time
	Href       string
}

// Dashboard は自分が所有するプロジェクトの一覧画面。
type Dashboard struct {
	Cards   []ProjectCard
	Loading bool
	Error   string
}

// Empty は表示するプロジェクトがないかどうかを返す。
func (d Dashboard) Empty() bool {
	return len(d.Cards) == 0
}

// Board は全プロジェクトの閲覧専用一覧画面。
type Board struct {
	Cards   []ProjectCard
	Loading bool
	Error   string
}

// BuildDashboard はuserが所有するプロジェクトのみを並べたDashboardを返す。
// 一覧の並び順は入力の順序を保つ。
func BuildDashboard(projects []*model.Project, user *model.User) Dashboard {
	cards := make([]ProjectCard, 0, len(projects))
	for _, p := range projects {
		if !CanEdit(p, user) {
			continue
		}
		cards = append(cards, newProjectCard(p, user))
	}
	return Dashboard{Cards: cards}
}

// BuildBoard は全プロジェクトを並べたBoardを返す。
func BuildBoard(projects []*model.Project, user *model.User) Board {
	cards := make([]ProjectCard, 0, len(projects))
	for _, p := range projects {
		cards = append(cards, newProjectCard(p, user))
	}
	return Board{Cards: cards}
}

func newProjectCard(p *model.Project, user *model.User) ProjectCard {
	return ProjectCard{
		ID:         p.ID,
		Title:      p.Title,
		OwnerLabel: OwnerLabel(p, user),
		CreatedAt:  p.CreatedAt,
		Href:       ProjectPath(p.ID),
	}
}

// BadgeStyle はステータスバッジの配色種別。
type BadgeStyle string

const (
	BadgePending    BadgeStyle = "pending"
	BadgeInProgress BadgeStyle = "in-progress"
	BadgeCompleted  BadgeStyle = "completed"
)

// Badge はタスクのステータス表示。
type Badge struct {
	Label string
	Style BadgeStyle
}

// StatusBadge はステータスに対応するバッジを返す。
// 未知のステータスはpendingの配色で表示する。
func StatusBadge(status model.TaskStatus) Badge {
	switch status {
	case model.TaskStatusCompleted:
		return Badge{Label: string(status), Style: BadgeCompleted}
	case model.TaskStatusInProgress:
		return Badge{Label: string(status), Style: BadgeInProgress}
	default:
		label := string(status)
		if label == "" {
			label = string(model.TaskStatusPending)
		}
		return Badge{Label: label, Style: BadgePending}
	}
}

// TaskCard はタスク1件分の表示内容。
// Editable がfalseの場合、編集・削除の操作は表示しない。
type TaskCard struct {
	ID       string
	Title    string
	Status   model.TaskStatus
	Badge    Badge
	Editable bool
}

// Detail はプロジェクト詳細画面。
type Detail struct {
	ProjectID  string
	Title      string
	OwnerLabel string
	CanEdit    bool

	// Notice は閲覧専用時の注意文。編集可能な場合は空。
	Notice string

	// ShowControls はタスク追加フォームとプロジェクトの編集・削除操作を表示するかどうか。
	ShowControls bool

	Tasks []TaskCard
}

// BuildDetail はプロジェクトとタスク一覧からDetailを組み立てる。
// canEditは呼び出しごとに所有者とuserから再計算する。
func BuildDetail(project *model.Project, tasks []*model.Task, user *model.User) Detail {
	if project == nil {
		project = &model.Project{}
	}
	canEdit := CanEdit(project, user)
	d := Detail{
		ProjectID:    project.ID,
		Title:        project.Title,
		OwnerLabel:   OwnerLabel(project, user),
		CanEdit:      canEdit,
		ShowControls: canEdit,
		Tasks:        make([]TaskCard, 0, len(tasks)),
	}
	if !canEdit {
		d.Notice = ReadOnlyNotice
	}
	for _, t := range tasks {
		d.Tasks = append(d.Tasks, TaskCard{
			ID:       t.ID,
			Title:    t.Title,
			Status:   t.Status,
			Badge:    StatusBadge(t.Status),
			Editable: canEdit,
		})
	}
	return d
}
