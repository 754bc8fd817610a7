package tui

import (
	"fmt"
	"sort"
	"time"

	"bbo-monitor/internal/quote"
	"bbo-monitor/internal/stats"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	cyanColor = lipgloss.Color("#00FFFF")
	grayColor = lipgloss.Color("#666666")

	whiteColor  = lipgloss.Color("#FFFFFF")
	greenColor  = lipgloss.Color("#66FF66")
	yellowColor = lipgloss.Color("#FFFF00")
	redColor    = lipgloss.Color("#FF6666")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(whiteColor).
			Background(lipgloss.Color("#1a1a2e")).
			Padding(0, 2)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(cyanColor).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cyanColor).
			Padding(0, 1)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(grayColor).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(grayColor).
				Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(cyanColor).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(grayColor)

	statsStyle = lipgloss.NewStyle().
			Foreground(whiteColor)

	bidStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(greenColor)

	askStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(redColor)

	warningStyle = lipgloss.NewStyle().
			Foreground(yellowColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(grayColor)
)

// KeyMap defines keybindings
type KeyMap struct {
	Left  key.Binding
	Right key.Binding
	Tab   key.Binding
	Reset key.Binding
	Quit  key.Binding
}

var keys = KeyMap{
	Left:  key.NewBinding(key.WithKeys("left", "h")),
	Right: key.NewBinding(key.WithKeys("right", "l")),
	Tab:   key.NewBinding(key.WithKeys("tab")),
	Reset: key.NewBinding(key.WithKeys("r")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c")),
}

// Model is the main TUI model
type Model struct {
	quotes         *quote.Manager
	statsTracker   *stats.Tracker
	selectedSymbol string
	symbolList     []string
	width          int
	height         int
}

// NewModel creates a new TUI model
func NewModel(qm *quote.Manager, st *stats.Tracker) Model {
	return Model{
		quotes:       qm,
		statsTracker: st,
	}
}

// TickMsg is a message for periodic updates
type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Tab), key.Matches(msg, keys.Right):
			m.selectSymbol(1)
		case key.Matches(msg, keys.Left):
			m.selectSymbol(-1)
		case key.Matches(msg, keys.Reset):
			if m.selectedSymbol != "" {
				m.statsTracker.ResetSymbolStats(m.selectedSymbol)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		m.updateSymbolList()
		return m, tickCmd()
	}

	return m, nil
}

// selectSymbol moves the selection by delta through the sorted symbol list
func (m *Model) selectSymbol(delta int) {
	if len(m.symbolList) < 2 {
		return
	}
	for i, s := range m.symbolList {
		if s == m.selectedSymbol {
			n := len(m.symbolList)
			m.selectedSymbol = m.symbolList[((i+delta)%n+n)%n]
			return
		}
	}
}

func (m *Model) updateSymbolList() {
	all := m.quotes.GetAll()
	m.symbolList = make([]string, len(all))
	for i, q := range all {
		m.symbolList[i] = q.Symbol
	}
	sort.Strings(m.symbolList)

	// Select first symbol if none selected or selected no longer exists
	if len(m.symbolList) > 0 {
		found := false
		for _, s := range m.symbolList {
			if s == m.selectedSymbol {
				found = true
				break
			}
		}
		if !found {
			m.selectedSymbol = m.symbolList[0]
		}
	}
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var s string

	s += titleStyle.Render("BBO Monitor") + "\n\n"

	if len(m.symbolList) > 0 {
		tabs := ""
		for _, symbol := range m.symbolList {
			if symbol == m.selectedSymbol {
				tabs += tabActiveStyle.Render(symbol) + " "
			} else {
				tabs += tabInactiveStyle.Render(symbol) + " "
			}
		}
		s += tabs + "\n\n"

		s += m.renderQuote() + "\n"
		s += m.renderStats() + "\n"
	} else {
		s += helpStyle.Render("Waiting for BBO data...") + "\n\n"
		s += helpStyle.Render("Reading 48-byte records from the C2H stream.") + "\n"
	}

	s += "\n" + helpStyle.Render("Tab/←→: switch symbol | r: reset stats | q: quit")

	return s
}

func (m Model) renderQuote() string {
	q := m.quotes.Get(m.selectedSymbol)
	if q == nil {
		return ""
	}

	info := q.GetInfo()

	bid := bidStyle.Render(fmt.Sprintf("%8d @ %8d", info.BidPrice, info.BidSize))
	ask := askStyle.Render(fmt.Sprintf("%8d @ %8d", info.AskPrice, info.AskSize))

	lines := fmt.Sprintf("%s %s  %s %s  %s %d",
		labelStyle.Render("Bid"), bid,
		labelStyle.Render("Ask"), ask,
		labelStyle.Render("Spread"), info.Spread)

	lines += "\n" + fmt.Sprintf("%s T1=%d T2=%d T3=%d T4=%d",
		labelStyle.Render("Timestamps"),
		info.TsParse, info.TsFifoWrite, info.TsFifoRead, info.TsTxStart)

	if info.Latency != nil {
		lines += fmt.Sprintf("  %s %d cycles / %d ns",
			labelStyle.Render("Latency"),
			info.Latency.Cycles, info.Latency.Nanoseconds)
	} else {
		lines += "  " + labelStyle.Render("Latency n/a")
	}

	for _, w := range info.LastWarnings {
		lines += "\n" + warningStyle.Render("WARNING: "+w.String())
	}

	return panelStyle.Render(lines)
}

func (m Model) renderStats() string {
	symbolStats := m.statsTracker.GetSymbolStats(m.selectedSymbol)
	if symbolStats == nil {
		return ""
	}

	// Snapshot under the tracker's lock; the ingest goroutine mutates these
	// fields concurrently.
	info := symbolStats.GetInfo()

	rate := m.statsTracker.GetPacketRate(m.selectedSymbol)
	sentinelPct := m.statsTracker.GetSentinelErrorPercentage(m.selectedSymbol)
	recentPct := m.statsTracker.GetRecentSentinelErrorPercentage(m.selectedSymbol)
	meanNs := m.statsTracker.GetMeanLatencyNs(m.selectedSymbol)

	latencyStr := "n/a"
	if info.LatencySamples > 0 {
		latencyStr = fmt.Sprintf("last %d / mean %d / min %d / max %d ns",
			info.LatencyLastNs, meanNs,
			info.LatencyMinNs, info.LatencyMaxNs)
	}

	line := fmt.Sprintf(
		"Packets: %d | Rate: %.1f pps | Bad sentinel: %s (last 1m %s) | Latency: %s",
		info.PacketCount,
		rate,
		formatSentinelPct(sentinelPct),
		formatSentinelPct(recentPct),
		latencyStr,
	)

	return statsStyle.Render(line)
}

// formatSentinelPct colors a sentinel mismatch percentage by severity
func formatSentinelPct(pct float64) string {
	s := fmt.Sprintf("%.1f%%", pct)
	if pct > 1 {
		return lipgloss.NewStyle().Foreground(redColor).Render(s)
	}
	if pct > 0 {
		return lipgloss.NewStyle().Foreground(yellowColor).Render(s)
	}
	return s
}
