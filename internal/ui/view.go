package ui

import (
	"fmt"
	"strings"

	"wallet_vote/internal/api"
	"wallet_vote/internal/utils"
	"wallet_vote/internal/vote"

	"github.com/charmbracelet/lipgloss"
)

const helpText = "tab/←/→ category • ↑/↓ candidate • enter vote • c connect • n next account • d disconnect • t theme • q quit"

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.renderHeader())
	sb.WriteString("\n\n")

	switch {
	case !m.state.CatalogLoaded:
		sb.WriteString(m.styles.dim.Render("Loading categories..."))
		sb.WriteString("\n")
	case len(m.state.Categories) == 0:
		sb.WriteString(m.styles.dim.Render("No data"))
		sb.WriteString("\n")
	default:
		sb.WriteString(m.renderTabs())
		sb.WriteString("\n")
		done, total := m.state.Progress()
		sb.WriteString(m.styles.dim.Render(fmt.Sprintf("Progress: %d / %d", done, total)))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderCandidates())
	}

	if line := m.renderNotice(); line != "" {
		sb.WriteString("\n")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString(m.styles.help.Render(helpText))
	return sb.String()
}

func (m Model) renderHeader() string {
	title := m.styles.title.Render("Community Vote")

	var status string
	switch s := m.state; {
	case !s.Session.Connected:
		status = m.styles.dim.Render("Wallet: disconnected")
	case s.SessionError:
		status = m.styles.errorText.Render("Wallet: address unknown")
	default:
		status = m.styles.normal.Render("Wallet: " + utils.ShortAddress(s.Session.Address))
		if s.Phase == vote.PhaseReconciling {
			status += m.styles.dim.Render(" (loading votes...)")
		}
	}

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(status)
	if gap < 2 {
		gap = 2
	}
	return title + strings.Repeat(" ", gap) + status
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(m.state.Categories))
	for _, c := range m.state.Categories {
		badge := m.styles.openBadge.Render("not voted")
		if _, voted := m.state.VotedFor(c.Slug); voted {
			badge = m.styles.votedBadge.Render("voted")
		}
		name := c.Name
		if name == "" {
			name = c.Slug
		}
		style := m.styles.tab
		if c.Slug == m.state.ActiveCategory {
			style = m.styles.activeTab
		}
		tabs = append(tabs, style.Render(name)+" "+badge)
	}
	return strings.Join(tabs, "  ")
}

func (m Model) renderCandidates() string {
	candidates := m.visibleCandidates()
	if len(candidates) == 0 {
		return m.styles.dim.Render("No candidates") + "\n"
	}

	category := m.state.ActiveCategory
	chosen, voted := m.state.VotedFor(category)
	submitting := m.state.Submitting[category]

	var sb strings.Builder
	for i, c := range candidates {
		sb.WriteString(m.renderCandidate(c, i == m.cursor, voted && c.Slug == chosen, submitting))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderCandidate(c api.Candidate, focused, yours, submitting bool) string {
	var sb strings.Builder

	name := c.Name
	if name == "" {
		name = c.Slug
	}
	if focused {
		sb.WriteString(m.styles.selected.Render("> " + name))
	} else {
		sb.WriteString(m.styles.normal.Render("  " + name))
	}

	switch {
	case yours:
		sb.WriteString("  " + m.styles.votedButton.Render("[Voted]"))
		sb.WriteString(" " + m.styles.votedBadge.Render("Your vote"))
	case submitting && focused:
		sb.WriteString("  " + m.styles.dim.Render("[Submitting...]"))
	case focused:
		sb.WriteString("  " + m.styles.button.Render("[Vote]"))
	}
	sb.WriteString("\n")

	if c.Description != "" {
		sb.WriteString("    " + m.styles.dim.Render(c.Description) + "\n")
	}
	if host := utils.LinkHost(c.Link()); host != "" {
		sb.WriteString("    " + m.styles.info.Render(host) + "\n")
	}
	return sb.String()
}

func (m Model) renderNotice() string {
	if m.notice == nil {
		return ""
	}
	switch m.notice.Kind {
	case vote.NoticeError:
		return m.styles.errorText.Render("✗ " + m.notice.Message)
	case vote.NoticeSuccess:
		return m.styles.success.Render("✓ " + m.notice.Message)
	default:
		return m.styles.info.Render("• " + m.notice.Message)
	}
}
