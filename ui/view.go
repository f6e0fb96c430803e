package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/philtim/cityclock/clock"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Padding(1, 0)

	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
)

// phaseColors tints card borders by the local part of the day.
var phaseColors = map[clock.Phase]lipgloss.Color{
	clock.PhaseDawn:  lipgloss.Color("214"),
	clock.PhaseDay:   lipgloss.Color("220"),
	clock.PhaseDusk:  lipgloss.Color("99"),
	clock.PhaseNight: lipgloss.Color("62"),
}

// View renders the UI
func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress 'q' to quit", m.err)
	}

	if m.quitting {
		return "Goodbye!\n"
	}

	if !m.ready {
		return "Initializing..."
	}

	switch m.state {
	case viewMain:
		return m.renderMain()
	case viewAdd:
		return m.renderAdd()
	case viewDelete:
		return m.renderDelete()
	case viewConfirm:
		return m.renderConfirm()
	}

	return ""
}

// renderMain renders the main clock view
func (m Model) renderMain() string {
	content := renderClocks(m.clocks, m.cursor, m.width)
	m.viewport.SetContent(content)

	return fmt.Sprintf("%s\n%s", m.viewport.View(), m.renderCommandBar())
}

// renderAdd renders the add city view
func (m Model) renderAdd() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Add City"))
	b.WriteString("\n\n")

	if m.resolver() == nil {
		b.WriteString("Loading city database...\n\n")
		b.WriteString(hintStyle.Render("Press ESC to cancel"))
		return b.String()
	}

	b.WriteString("Search city:\n")
	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n\n")
	}

	switch {
	case len(m.suggestions) == 0:
		b.WriteString(hintStyle.Render("No cities found"))
	default:
		if m.lastQuery == "" {
			b.WriteString("Popular cities:\n")
		} else {
			b.WriteString(fmt.Sprintf("Results (%d):\n", len(m.suggestions)))
		}

		maxVisible := 10
		start := 0
		if m.selected >= maxVisible {
			start = m.selected - maxVisible + 1
		}
		end := min(start+maxVisible, len(m.suggestions))

		for i := start; i < end; i++ {
			opt := m.suggestions[i]
			line := fmt.Sprintf("  %s (%s)", opt.Label, opt.Timezone)
			if i == m.selected {
				line = cursorStyle.Render("> " + line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("↑/↓: Navigate | Enter: Add | ESC: Cancel"))

	return b.String()
}

// renderDelete renders the delete city view
func (m Model) renderDelete() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Delete Cities"))
	b.WriteString("\n\n")

	for i, e := range m.deleteList {
		checkbox := " "
		if m.deleteSelected[i] {
			checkbox = "x"
		}
		line := fmt.Sprintf("  [%s] %s", checkbox, e.Name())

		if i == m.deleteCursor {
			line = cursorStyle.Render("> " + line)
		} else {
			line = "  " + line
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render("↑/↓: Navigate | Space: Toggle | Enter: Delete | ESC: Cancel"))

	return b.String()
}

// renderConfirm renders the confirmation dialog
func (m Model) renderConfirm() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Confirm"))
	b.WriteString("\n\n")

	b.WriteString(m.confirmMsg)
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("y: Yes | n/ESC: No"))

	return b.String()
}

// renderCommandBar renders the command bar at the bottom
func (m Model) renderCommandBar() string {
	sideStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	commands := "a: Add | d: Delete | ←/→: Select | [/]: Move | q: Quit"
	if m.notice != "" {
		commands = m.notice
	}
	leftContent := sideStyle.Render(commands)

	var status string
	switch {
	case m.geo == nil:
		status = "Cities: bundled"
	case m.geonamesErr != nil:
		status = "GeoNames: unavailable"
	case m.geonamesReady:
		status = "GeoNames: Ready"
	default:
		status = fmt.Sprintf("%s Loading GeoNames...", spinnerFrames[m.spinnerFrame])
	}
	rightContent := sideStyle.Render(status)

	// Push the status to the right edge
	spacingWidth := max(0, m.width-lipgloss.Width(leftContent)-lipgloss.Width(rightContent))
	spacing := strings.Repeat(" ", spacingWidth)

	barStyle := lipgloss.NewStyle().Background(lipgloss.Color("235"))
	return barStyle.Render(leftContent + spacing + rightContent)
}

// renderClocks renders all clocks in a grid layout
func renderClocks(clocks []*clock.Clock, cursor, width int) string {
	if len(clocks) == 0 {
		helpStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Align(lipgloss.Center).
			Padding(2, 4)
		return helpStyle.Render("Press 'a' to add a new city")
	}

	cols := calculateColumns(clocks, width)
	rows := (len(clocks) + cols - 1) / cols

	// Each card has border (2) + padding (4) + margins (2)
	cardOverhead := 8
	cardWidth := max(20, width/cols-cardOverhead)

	var cards []string
	for i, clk := range clocks {
		cards = append(cards, renderClockCard(clk, cardWidth, i == cursor))
	}

	var lines []string
	for row := 0; row < rows; row++ {
		start := row * cols
		end := min(start+cols, len(cards))
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cards[start:end]...))
	}

	return strings.Join(lines, "\n")
}

// renderClockCard renders a single clock card
func renderClockCard(clk *clock.Clock, width int, selected bool) string {
	nameStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86")).
		Align(lipgloss.Center).
		Width(width).
		PaddingTop(1).
		PaddingBottom(1)

	timeStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Align(lipgloss.Center).
		Width(width).
		MarginBottom(1)

	dateStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Align(lipgloss.Center).
		Width(width)

	border := lipgloss.RoundedBorder()
	if selected {
		border = lipgloss.ThickBorder()
	}
	cardStyle := lipgloss.NewStyle().
		Border(border).
		BorderForeground(phaseColors[clk.Phase()]).
		Padding(0, 2).
		Margin(1, 1, 0, 1)

	title := nameStyle.Render(runewidth.Truncate(strings.ToUpper(clk.Label), width, "…"))
	timeStr := timeStyle.Render(clk.FormatTime())
	dateStr := dateStyle.Render(clk.FormatDate())
	offsetStr := dateStyle.PaddingBottom(1).Render(runewidth.Truncate(clk.FormatUTCOffset(), width, "…"))

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, timeStr, dateStr, offsetStr))
}

// calculateColumns determines the number of columns based on terminal width and city name lengths
func calculateColumns(clocks []*clock.Clock, width int) int {
	maxLabelWidth := 0
	for _, clk := range clocks {
		maxLabelWidth = max(maxLabelWidth, runewidth.StringWidth(strings.ToUpper(clk.Label)))
	}

	// The offset line with DST is about 26 cells: "UTC-05:00 (DST: UTC-04:00)"
	minCardWidth := max(maxLabelWidth, 27) + 8

	// Try 4 columns first (default preference)
	if width >= minCardWidth*4 {
		return 4
	}
	if width >= minCardWidth*2 {
		return 2
	}
	return 1
}
