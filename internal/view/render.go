package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5C07B"))
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)

	badgeStyles = map[BadgeStyle]lipgloss.Style{
		BadgePending:    lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")),
		BadgeInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
		BadgeCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#98C379")),
	}
)

// RenderBadge はバッジを端末向けに描画する。
func RenderBadge(b Badge) string {
	style, ok := badgeStyles[b.Style]
	if !ok {
		style = badgeStyles[BadgePending]
	}
	return style.Render("[" + b.Label + "]")
}

// RenderDashboard はDashboardを端末向けに描画する。
func RenderDashboard(d Dashboard) string {
	return renderCards("Your Projects", d.Cards, "No projects yet.")
}

// RenderBoard はBoardを端末向けに描画する。
func RenderBoard(b Board) string {
	return renderCards("All Projects", b.Cards, "No projects.")
}

// RenderDetail はDetailを端末向けに描画する。
func RenderDetail(d Detail) string {
	lines := []string{
		titleStyle.Render(d.Title),
		mutedStyle.Render("Created by: " + d.OwnerLabel),
	}
	if d.Notice != "" {
		lines = append(lines, noticeStyle.Render(d.Notice))
	}
	if len(d.Tasks) == 0 {
		lines = append(lines, mutedStyle.Render("No tasks."))
	}
	for _, t := range d.Tasks {
		lines = append(lines, fmt.Sprintf("%s %s", RenderBadge(t.Badge), t.Title))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func renderCards(heading string, cards []ProjectCard, empty string) string {
	head := titleStyle.Render(heading)
	if len(cards) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, head, mutedStyle.Render(empty))
	}
	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		body := fmt.Sprintf("%s\n%s", c.Title, mutedStyle.Render("Created by: "+c.OwnerLabel))
		rendered = append(rendered, cardStyle.Render(body))
	}
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{head}, rendered...)...)
}
