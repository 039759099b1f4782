package model

import "time"

// Project はユーザーが所有するタスクのコンテナを表す。
// OwnerID は作成時に確定し、以後変更されない。
type Project struct {
	ID        string
	Title     string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Lists は旧形式の埋め込みリスト。作成時に空で保存され、
	// タスク画面からは参照されない（タスクは tasks テーブルで管理する）。
	Lists []ProjectList
}

// ProjectList は旧形式の埋め込みリスト。
type ProjectList struct {
	Name  string     `json:"name"`
	Tasks []ListTask `json:"tasks"`
}

// ListTask は旧形式の埋め込みリストに含まれるタスク。
type ListTask struct {
	Title  string     `json:"title"`
	Status TaskStatus `json:"status"`
}

// CanEdit は userID がプロジェクトの所有者かどうかを返す。
// 未ログイン（空のuserID）は常に false。
func (p *Project) CanEdit(userID string) bool {
	if p == nil || userID == "" {
		return false
	}
	return p.OwnerID == userID
}
