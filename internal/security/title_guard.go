// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TitleGuard はプロジェクト名とタスク名にHTMLマークアップが
// 含まれていないことを検証し、描画時のXSSを入力段階で防ぐ。
package security

import (
	"html"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/taskboard/internal/model"
)

// TitleValidator はタイトル入力の検証インターフェース。
// プロジェクト・タスクのサービス層が保存前に使用する。
type TitleValidator interface {
	// Validate はタイトルを検証し、問題があればValidationカテゴリのAPIErrorを返す。
	// タイトル自体は変更しない。
	Validate(title string) error
}

// TitleGuard はTitleValidatorの実装。
// bluemondayのStrictPolicyで全タグを除去した結果が入力と一致しない場合に
// マークアップを含むと判定する。
type TitleGuard struct {
	policy *bluemonday.Policy
}

// NewTitleGuard はTitleGuardを生成する。
func NewTitleGuard() *TitleGuard {
	return &TitleGuard{policy: bluemonday.StrictPolicy()}
}

// Validate は空・長さ超過・マークアップ混入を順に検証する。
func (g *TitleGuard) Validate(title string) error {
	if err := model.ValidateTitle(title); err != nil {
		return err
	}
	if g.HasMarkup(title) {
		return model.NewTitleHasMarkupError()
	}
	return nil
}

// HasMarkup はタイトルにHTMLタグが含まれるかを返す。
// StrictPolicyは "&" や "<" をエスケープするため、比較前にアンエスケープする。
func (g *TitleGuard) HasMarkup(title string) bool {
	return html.UnescapeString(g.policy.Sanitize(title)) != title
}

var _ TitleValidator = (*TitleGuard)(nil)
