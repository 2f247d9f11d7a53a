// Package tui is an interactive timecode calculator for the terminal.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zsiec/timeframe/internal/logger"
	"github.com/zsiec/timeframe/pkg/timecode"
)

const historySize = 5

// Model converts what the user types: a timecode label becomes a frame
// count and a frame count becomes a label, at the selected framerate.
type Model struct {
	rates   []timecode.Framerate
	rateIdx int

	input   string
	result  *timecode.Timecode
	err     error
	history []string

	quitting bool
	logger   logger.Logger
}

// NewModel starts on initial, which is added to the rate list when it is
// not a standard framerate.
func NewModel(initial timecode.Framerate, log logger.Logger) *Model {
	if log == nil {
		log = logger.NewNullLogger()
	}

	m := &Model{
		rates:  timecode.StandardFramerates(),
		logger: log,
	}
	if initial.IsZero() {
		return m
	}

	for i, fr := range m.rates {
		if fr == initial {
			m.rateIdx = i
			return m
		}
	}
	m.rates = append([]timecode.Framerate{initial}, m.rates...)
	return m
}

// Run starts the calculator on the terminal and blocks until it quits.
func Run(initial timecode.Framerate, log logger.Logger) error {
	_, err := tea.NewProgram(NewModel(initial, log)).Run()
	return err
}

// Framerate returns the selected framerate.
func (m *Model) Framerate() timecode.Framerate { return m.rates[m.rateIdx] }

// Result returns the last successful conversion, or nil.
func (m *Model) Result() *timecode.Timecode { return m.result }

// Err returns the error of the last conversion, or nil.
func (m *Model) Err() error { return m.err }

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyTab:
		m.selectRate(m.rateIdx + 1)
	case tea.KeyShiftTab:
		m.selectRate(m.rateIdx - 1)
	case tea.KeyEnter:
		m.convert(true)
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeyCtrlU:
		m.input = ""
		m.result = nil
		m.err = nil
	case tea.KeyRunes:
		m.input += string(key.Runes)
	}
	return m, nil
}

// selectRate moves to rate i, wrapping around, and re-runs the current
// conversion at the new rate.
func (m *Model) selectRate(i int) {
	n := len(m.rates)
	m.rateIdx = ((i % n) + n) % n
	m.logger.WithField("framerate", m.Framerate().String()).Debug("Framerate selected")

	if m.result != nil || m.err != nil {
		m.convert(false)
	}
}

func (m *Model) convert(record bool) {
	in := strings.TrimSpace(m.input)
	if in == "" {
		m.result, m.err = nil, nil
		return
	}

	rate := m.Framerate()
	var (
		tc  *timecode.Timecode
		err error
	)
	if strings.ContainsAny(in, ":;") {
		tc, err = timecode.Parse(in, rate)
	} else {
		var frames int64
		frames, err = strconv.ParseInt(in, 10, 64)
		if err != nil {
			err = fmt.Errorf("%q is neither a timecode nor a frame count", in)
		} else {
			tc, err = timecode.New(frames, rate)
		}
	}

	m.result, m.err = tc, err
	if err != nil {
		m.logger.WithError(err).Debug("Conversion failed")
		return
	}
	if record {
		m.record(fmt.Sprintf("%s = %d frames @ %s", tc, tc.Frames(), rate))
	}
}

func (m *Model) record(line string) {
	m.history = append(m.history, line)
	if len(m.history) > historySize {
		m.history = m.history[len(m.history)-historySize:]
	}
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Timeframe calculator"))
	b.WriteString("\n")
	b.WriteString(m.renderRates())
	b.WriteString("\n\n")
	b.WriteString(promptStyle.Render("> ") + m.input + "█")
	b.WriteString("\n\n")
	b.WriteString(m.renderResult())
	b.WriteString("\n")

	if len(m.history) > 0 {
		lines := make([]string, 0, len(m.history))
		for i := len(m.history) - 1; i >= 0; i-- {
			lines = append(lines, mutedStyle.Render(m.history[i]))
		}
		b.WriteString("\n")
		b.WriteString(panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("enter convert • tab/shift+tab framerate • ctrl+u clear • esc quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderRates() string {
	cells := make([]string, 0, len(m.rates))
	for i, fr := range m.rates {
		style := rateStyle
		if i == m.rateIdx {
			style = activeRateStyle
		}
		cells = append(cells, style.Render(fr.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m *Model) renderResult() string {
	switch {
	case m.err != nil:
		return errorStyle.Render("error: " + m.err.Error())
	case m.result == nil:
		return mutedStyle.Render("type a timecode (hh:mm:ss:ff) or a frame count")
	default:
		return resultStyle.Render(fmt.Sprintf("%s  ⇄  %d frames", m.result, m.result.Frames()))
	}
}
