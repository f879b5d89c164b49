package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

var (
	heroAccentColor = lipgloss.Color("#f4a261")
	heroTextColor   = lipgloss.Color("#f1faee")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("110")).Italic(true)
	questionStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(heroAccentColor).Foreground(heroTextColor).Padding(1, 2)
	answerStyle   = questionStyle.Copy().BorderForeground(lipgloss.Color("#2a9d8f"))
	toggleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	buttonStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Background(lipgloss.Color("236")).Padding(0, 1)
	dimmedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func (m *model) View() string {
	parts := []string{titleStyle.Render(heroTitle)}
	switch m.phase() {
	case phaseConfigRequired:
		parts = append(parts, errorStyle.Render(configRequiredText(m.configErr)))
	case phaseLoading:
		parts = append(parts, dimmedStyle.Render(fmt.Sprintf("%s %s", m.spinner.View(), loadingText)))
	case phaseUnavailable:
		parts = append(parts, dimmedStyle.Render(unavailableText))
	default:
		parts = append(parts, m.triviaView())
	}
	parts = append(parts, m.statusView())
	if m.phase() != phaseConfigRequired {
		parts = append(parts, m.help.View(m.keys))
	}
	return joinNonEmpty(parts)
}

func (m *model) triviaView() string {
	width := m.contentWidth()
	item := m.display.item
	var b strings.Builder
	if item.Category != "" {
		b.WriteString(categoryStyle.Render(item.Category))
		b.WriteRune('\n')
	}
	if m.display.revealed {
		b.WriteString(answerStyle.Render(wordwrap.String(item.Answer, width)))
	} else {
		b.WriteString(questionStyle.Render(wordwrap.String(item.Question, width)))
	}
	b.WriteRune('\n')
	b.WriteString(toggleStyle.Render(m.toggleLabel()))
	return b.String()
}

func (m *model) statusView() string {
	var fields []string
	if m.inFlight > 0 && m.display.loaded && m.configErr == nil {
		label := " fetching"
		if m.activeFetch.Kind == jobKindManualFetch {
			label = " fetching a new question"
		}
		fields = append(fields, m.spinner.View()+label)
	}
	if m.config.ShowTimer && m.countdownLabel != "" && m.configErr == nil {
		fields = append(fields, dimmedStyle.Render("Next question: "+m.countdownLabel))
	}
	if m.config.AllowManualRefresh && m.configErr == nil {
		label := m.refreshLabel()
		if label == manualReadyLabel {
			fields = append(fields, buttonStyle.Render(label))
		} else {
			fields = append(fields, disabledStyle.Render(label))
		}
	}
	line := strings.Join(fields, "  ")
	var lines []string
	if line != "" {
		lines = append(lines, line)
	}
	if m.infoMessage != "" {
		lines = append(lines, dimmedStyle.Render(m.infoMessage))
	}
	if m.errorMessage != "" && m.phase() != phaseConfigRequired {
		lines = append(lines, errorStyle.Render(m.errorMessage))
	}
	return strings.Join(lines, "\n")
}

func (m *model) toggleLabel() string {
	if m.display.revealed {
		return showQuestionLabel
	}
	return showAnswerLabel
}

// refreshLabel is the label from the last cooldown tick, or a fresh one
// before the first tick has run.
func (m *model) refreshLabel() string {
	if m.cooldownLabel != "" {
		return m.cooldownLabel
	}
	return formatCooldown(m.cooldownRemaining(m.now()))
}

func (m *model) contentWidth() int {
	if m.width == 0 {
		return 72
	}
	width := m.width - 6
	if width < minContentWidth {
		width = minContentWidth
	}
	return width
}

func configRequiredText(err error) string {
	if err == nil {
		return "Configuration required."
	}
	return fmt.Sprintf("Configuration required: %v", err)
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}
