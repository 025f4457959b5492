package render

import (
	"fmt"

	"insurabot/internal/chat"

	"github.com/charmbracelet/lipgloss"
)

// StatusClass 是理赔状态对应的视觉分类。
type StatusClass string

const (
	ClassApproved    StatusClass = "approved"
	ClassUnderReview StatusClass = "under_review"
	ClassRejected    StatusClass = "rejected"
	ClassUnknown     StatusClass = "unknown"
)

var statusStyles = map[StatusClass]lipgloss.Style{
	ClassUnderReview: lipgloss.NewStyle().Foreground(lipgloss.Color("#A16207")).Background(lipgloss.Color("#FEF9C3")).Padding(0, 1),
	ClassApproved:    lipgloss.NewStyle().Foreground(lipgloss.Color("#15803D")).Background(lipgloss.Color("#DCFCE7")).Padding(0, 1),
	ClassRejected:    lipgloss.NewStyle().Foreground(lipgloss.Color("#B91C1C")).Background(lipgloss.Color("#FEE2E2")).Padding(0, 1),
	ClassUnknown:     lipgloss.NewStyle().Foreground(lipgloss.Color("#4B5563")).Background(lipgloss.Color("#F3F4F6")).Padding(0, 1),
}

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#E5E7EB")).
			Padding(0, 1)
	claimIDStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4338CA"))
	cardLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#374151"))
	cardValueStyle = lipgloss.NewStyle().Bold(true)
	cardMetaStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#6B7280"))
)

// ClassFor 将状态映射到视觉分类，未知状态返回 ClassUnknown。
func ClassFor(status chat.ClaimStatus) StatusClass {
	switch status {
	case chat.StatusApproved:
		return ClassApproved
	case chat.StatusUnderReview:
		return ClassUnderReview
	case chat.StatusRejected:
		return ClassRejected
	default:
		return ClassUnknown
	}
}

// Style 返回分类的徽章样式。
func (c StatusClass) Style() lipgloss.Style {
	if s, ok := statusStyles[c]; ok {
		return s
	}
	return statusStyles[ClassUnknown]
}

// RenderClaimCard 渲染理赔卡片，width 为卡片最大外宽。
func RenderClaimCard(c chat.Claim, width int) []Line {
	status := string(c.Status)
	if status == "" {
		status = "Unknown"
	}
	badge := ClassFor(c.Status).Style().Render(status)
	header := lipgloss.JoinHorizontal(lipgloss.Top, claimIDStyle.Render(c.ClaimID), "  ", badge)

	rows := []string{
		header,
		"",
		cardLabelStyle.Render("Policy Holder: ") + cardValueStyle.Render(c.PolicyHolder),
		cardLabelStyle.Render("Amount: ") + cardValueStyle.Render(chat.FormatAmount(c.Amount)),
		cardMetaStyle.Render(fmt.Sprintf("Submitted: %s", c.SubmittedOn)),
		cardMetaStyle.Render(fmt.Sprintf("Notes: %s", c.Notes)),
	}
	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	style := cardStyle
	// 边框占 2 列，Width 含 padding 不含边框。
	if width > 6 && lipgloss.Width(body)+4 > width {
		style = style.Width(width - 2)
	}
	return blockLines(style.Render(body))
}
