package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/timeframe/pkg/timecode"
)

func typeText(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func press(m *Model, k tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	return cmd
}

func TestNewModelSelectsInitialRate(t *testing.T) {
	m := NewModel(timecode.MustFramerate(timecode.Rate25), nil)
	assert.Equal(t, "25", m.Framerate().String())
	assert.Len(t, m.rates, 10)

	m = NewModel(timecode.Framerate{}, nil)
	assert.Equal(t, "23.976", m.Framerate().String())

	custom := timecode.MustFramerate(timecode.Fraction{Numerator: 100, Denominator: 3})
	m = NewModel(custom, nil)
	assert.Equal(t, custom, m.Framerate())
	assert.Len(t, m.rates, 11)
}

func TestConvertTimecode(t *testing.T) {
	m := NewModel(timecode.MustFramerate(timecode.Rate29_97DF), nil)

	typeText(m, "00:01:00:02")
	press(m, tea.KeyEnter)

	require.NoError(t, m.Err())
	require.NotNil(t, m.Result())
	assert.Equal(t, int64(1800), m.Result().Frames())
	assert.Contains(t, m.View(), "1800 frames")
	assert.Contains(t, m.View(), "00;01;00;02")
}

func TestConvertFrames(t *testing.T) {
	m := NewModel(timecode.MustFramerate(timecode.Rate29_97DF), nil)

	typeText(m, "12345")
	press(m, tea.KeyEnter)

	require.NoError(t, m.Err())
	assert.Equal(t, "00;06;51;27", m.Result().String())
}

func TestConvertErrors(t *testing.T) {
	m := NewModel(timecode.MustFramerate(timecode.Rate29_97DF), nil)

	typeText(m, "00:01:00:00")
	press(m, tea.KeyEnter)
	assert.ErrorIs(t, m.Err(), timecode.ErrInvalidTimecode)
	assert.Nil(t, m.Result())
	assert.Contains(t, m.View(), "error:")

	press(m, tea.KeyCtrlU)
	typeText(m, "abc")
	press(m, tea.KeyEnter)
	assert.Error(t, m.Err())

	press(m, tea.KeyCtrlU)
	typeText(m, "-4")
	press(m, tea.KeyEnter)
	assert.ErrorIs(t, m.Err(), timecode.ErrInvalidFrameValue)
}

func TestTabCyclesAndReconverts(t *testing.T) {
	m := NewModel(timecode.MustFramerate(timecode.Rate59_94NDF), nil)

	press(m, tea.KeyTab)
	assert.Equal(t, "23.976", m.Framerate().String(), "wraps to the first rate")

	press(m, tea.KeyShiftTab)
	assert.Equal(t, "59.94NDF", m.Framerate().String(), "wraps to the last rate")

	press(m, tea.KeyShiftTab)
	assert.Equal(t, "59.94DF", m.Framerate().String())

	typeText(m, "3600")
	press(m, tea.KeyEnter)
	assert.Equal(t, "00;01;00;04", m.Result().String())

	press(m, tea.KeyShiftTab) // 50
	assert.Equal(t, "00:01:12:00", m.Result().String())
}

func TestBackspace(t *testing.T) {
	m := NewModel(timecode.MustFramerate(timecode.Rate25), nil)

	typeText(m, "125")
	press(m, tea.KeyBackspace)
	press(m, tea.KeyEnter)
	assert.Equal(t, int64(12), m.Result().Frames())

	press(m, tea.KeyBackspace)
	press(m, tea.KeyBackspace)
	press(m, tea.KeyBackspace)
	assert.Equal(t, "", m.input)
}

func TestHistoryIsBounded(t *testing.T) {
	m := NewModel(timecode.MustFramerate(timecode.Rate25), nil)

	for i := 0; i < historySize+3; i++ {
		press(m, tea.KeyCtrlU)
		typeText(m, "1")
		press(m, tea.KeyEnter)
	}
	assert.Len(t, m.history, historySize)
}

func TestQuit(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m := NewModel(timecode.MustFramerate(timecode.Rate25), nil)
		cmd := press(m, k)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.Empty(t, m.View())
	}
}

func TestViewListsRates(t *testing.T) {
	m := NewModel(timecode.MustFramerate(timecode.Rate25), nil)
	view := m.View()

	for _, fr := range timecode.StandardFramerates() {
		assert.Contains(t, view, fr.String())
	}
	assert.Contains(t, view, "type a timecode")
}
