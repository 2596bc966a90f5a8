package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"verity/governor"
	"verity/lattice"
)

var logChannel = make(chan tea.Msg, 1000)
var uiActive atomic.Bool

// Log is the status side-channel. It writes to stderr while no dashboard is
// up and into the dashboard channel once one is. The channel drops on
// overflow so a stalled frame can never back up the governor.
func Log(format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)

	if !uiActive.Load() {
		fmt.Fprintln(os.Stderr, msg)
		return msg
	}

	select {
	case logChannel <- LogEvent{Msg: msg}:
	default:
		// drop if overfilled to protect the pipe
	}
	return msg
}

type frameMsg time.Time

func nextFrame() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// waitForEvent re-arms the channel pump. Exactly one of these is in flight:
// Init starts it, and only branches fed by the pump return another one. The
// done signal unblocks the last pump when the dashboard shuts down.
func waitForEvent(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-logChannel:
			return msg
		case <-done:
			return nil
		}
	}
}

type dashboardModel struct {
	field     *lattice.Field
	session   string
	threshold float64
	done      <-chan struct{}

	entropy  float64
	cpu      string
	verified int
	blocked  int
	verdicts []string
	logDump  []string

	gauge progress.Model
}

// StartDashboard runs the entropy ring until the terminal goes away or the
// user quits. It samples the shared entropy scalar on its own cadence and
// never writes lattice state; killing it leaves the governor untouched.
func StartDashboard(field *lattice.Field, session string, threshold float64) {
	opts := []tea.ProgramOption{tea.WithOutput(os.Stderr)}

	// stdin is the pipe, so key input has to come from the terminal itself.
	if tty, err := os.Open("/dev/tty"); err == nil {
		defer tty.Close()
		opts = append(opts, tea.WithInput(tty))
	} else {
		opts = append(opts, tea.WithInput(nil))
	}

	uiActive.Store(true)
	defer uiActive.Store(false)

	done := make(chan struct{})
	defer close(done)

	m := dashboardModel{
		field:     field,
		session:   session,
		threshold: threshold,
		done:      done,
		cpu:       "N/A",
		gauge:     progress.New(progress.WithGradient("#2aff70", "#ff2a2a")),
	}

	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		uiActive.Store(false)
		Log("💥 dashboard error: %v", err)
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(nextFrame(), waitForEvent(m.done))
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {

	case tea.KeyMsg:
		// Key input never re-arms the channel pump.
		switch v.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		}
		return m, nil

	case frameMsg:
		m.entropy = m.field.Entropy()
		return m, nextFrame()

	case VerdictEvent:
		if v.Report.Verdict == governor.Blocked {
			m.blocked++
		} else {
			m.verified++
		}
		m.verdicts = append(m.verdicts, verdictLine(v.Report))
		if len(m.verdicts) > 8 {
			m.verdicts = m.verdicts[len(m.verdicts)-8:]
		}
		return m, waitForEvent(m.done)

	case HealthSnapshot:
		m.cpu = v.CPU
		return m, waitForEvent(m.done)

	case LogEvent:
		// Verdict lines already land in the verdicts pane via VerdictEvent.
		if strings.HasPrefix(v.Msg, "\x1b[91m") || strings.HasPrefix(v.Msg, "\x1b[92m") {
			return m, waitForEvent(m.done)
		}
		m.logDump = append(m.logDump, v.Msg)
		if len(m.logDump) > 5 {
			m.logDump = m.logDump[len(m.logDump)-5:]
		}
		return m, waitForEvent(m.done)

	default:
		return m, nil
	}
}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	badStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	ruleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func verdictLine(rep governor.Report) string {
	text := rep.Text
	if r := []rune(text); len(r) > 34 {
		text = string(r[:31]) + "..."
	}
	tag := okStyle.Render("✔ VERIFIED")
	if rep.Verdict == governor.Blocked {
		tag = badStyle.Render("✘ BLOCKED ")
	}
	return fmt.Sprintf("%s  %.3f  %s", tag, rep.Entropy, text)
}

func (m dashboardModel) View() string {
	var b strings.Builder
	rule := ruleStyle.Render(strings.Repeat("─", 53))

	b.WriteString("VERITY | coherence governor\n")
	b.WriteString(rule + "\n")
	b.WriteString(fmt.Sprintf("⚙️ CPU: %s   ✔ %d   ✘ %d   session %s\n",
		m.cpu, m.verified, m.blocked, dimStyle.Render(shortID(m.session))))
	b.WriteString(rule + "\n")

	b.WriteString(renderRing(m.entropy) + "\n")

	b.WriteString(fmt.Sprintf("entropy %.3f / threshold %.3f\n", m.entropy, m.threshold))
	b.WriteString(m.gauge.ViewAs(m.entropy) + "\n")
	b.WriteString(rule + "\n")

	b.WriteString("🧾 Verdicts:\n")
	if len(m.verdicts) == 0 {
		b.WriteString("   (waiting for input on stdin)\n")
	}
	for _, line := range m.verdicts {
		b.WriteString("   " + line + "\n")
	}
	b.WriteString(rule + "\n")

	for _, line := range m.logDump {
		b.WriteString(dimStyle.Render(line) + "\n")
	}

	return b.String()
}

const (
	ringWidth  = 43
	ringHeight = 17
)

// renderRing draws the pulse ring: radius wobbles with the entropy signal,
// color slides from green at zero toward red at one.
func renderRing(entropy float64) string {
	grid := make([][]rune, ringHeight)
	for y := range grid {
		grid[y] = make([]rune, ringWidth)
		for x := range grid[y] {
			grid[y][x] = ' '
		}
	}

	cx := float64(ringWidth-1) / 2
	cy := float64(ringHeight-1) / 2
	pulse := 0.78 + 0.06*math.Sin(entropy*40.0)
	rx := pulse * cx
	ry := pulse * cy

	for a := 0; a < 1200; a++ {
		rad := float64(a) * 0.3 * math.Pi / 180.0
		x := int(math.Round(cx + rx*math.Cos(rad)))
		y := int(math.Round(cy + ry*math.Sin(rad)))
		if x >= 0 && x < ringWidth && y >= 0 && y < ringHeight {
			grid[y][x] = '●'
		}
	}

	var b strings.Builder
	for y, row := range grid {
		b.WriteString(string(row))
		if y < ringHeight-1 {
			b.WriteByte('\n')
		}
	}

	red := int(entropy * 255.0)
	green := int((1.0-entropy)*200.0 + 55.0)
	color := lipgloss.Color(fmt.Sprintf("#%02x%02x00", red, green))
	return lipgloss.NewStyle().Foreground(color).Render(b.String())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
