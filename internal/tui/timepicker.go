// ABOUTME: Bubbletea front end for the segmented AM/PM, hour, minute picker
// ABOUTME: Arrow keys move between and cycle selectors; Enter accepts a complete time

package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harper/gachi/internal/locale"
	"github.com/harper/gachi/internal/timeofday"
)

// column identifies one of the three selectors.
type column int

const (
	colPeriod column = iota
	colHour
	colMinute
	columnCount
)

var (
	activeCell   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Padding(0, 1)
	inactiveCell = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1)
	emptyCell    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
)

// TimePickerModel wraps a timeofday.Picker for the terminal.
type TimePickerModel struct {
	picker    *timeofday.Picker
	loc       locale.Locale
	col       column
	accepted  bool
	cancelled bool
	changes   []string
}

// NewTimePickerModel starts the picker at initial ("" for empty).
func NewTimePickerModel(initial string, loc locale.Locale) TimePickerModel {
	m := TimePickerModel{loc: loc}
	m.picker = timeofday.NewPicker(nil)
	m.picker.Load(initial)
	return m
}

// Init implements tea.Model.
func (m TimePickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m TimePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.accepted || m.cancelled {
		return m, nil
	}

	// The picker is shared between model copies; rebind the callback to this copy.
	m.picker.OnChange = func(v string) { m.changes = append(m.changes, v) }
	defer func() { m.picker.OnChange = nil }()

	switch key.String() {
	case "ctrl+c", "esc", "q":
		m.cancelled = true
		return m, tea.Quit
	case "enter":
		if m.picker.State() == timeofday.StateComplete {
			m.accepted = true
			return m, tea.Quit
		}
	case "left", "h", "shift+tab":
		m.col = (m.col + columnCount - 1) % columnCount
	case "right", "l", "tab":
		m.col = (m.col + 1) % columnCount
	case "up", "k":
		m.cycle(-1)
	case "down", "j":
		m.cycle(1)
	case "backspace", "delete", "x":
		m.clear()
	case "a":
		m.picker.SetPeriod(timeofday.AM)
	case "p":
		m.picker.SetPeriod(timeofday.PM)
	}
	return m, nil
}

func step(i, delta, n int) int {
	return ((i+delta)%n + n) % n
}

// cycle moves the active selector by delta, starting from the first option
// when the selector is unset.
func (m *TimePickerModel) cycle(delta int) {
	seg := m.picker.Segments()
	switch m.col {
	case colPeriod:
		if seg.Period == timeofday.AM {
			m.picker.SetPeriod(timeofday.PM)
		} else {
			m.picker.SetPeriod(timeofday.AM)
		}
	case colHour:
		opts := timeofday.HourOptions
		i := indexOf(opts, seg.Hour)
		if i < 0 {
			_ = m.picker.SetHour(opts[0])
			return
		}
		_ = m.picker.SetHour(opts[step(i, delta, len(opts))])
	case colMinute:
		opts := m.picker.MinuteChoices()
		i := indexOf(opts, seg.Minute)
		if i < 0 {
			_ = m.picker.SetMinute(opts[0])
			return
		}
		_ = m.picker.SetMinute(opts[step(i, delta, len(opts))])
	}
}

func (m *TimePickerModel) clear() {
	switch m.col {
	case colPeriod:
		m.picker.SetPeriod(timeofday.PeriodUnset)
	case colHour:
		_ = m.picker.SetHour(0)
	case colMinute:
		_ = m.picker.SetMinute("")
	}
}

func indexOf[T comparable](opts []T, v T) int {
	for i, o := range opts {
		if o == v {
			return i
		}
	}
	return -1
}

// View implements tea.Model.
func (m TimePickerModel) View() string {
	seg := m.picker.Segments()
	cells := [columnCount]string{"--", "--", "--"}
	if seg.Period != timeofday.PeriodUnset {
		cells[colPeriod] = seg.Period.Label(m.loc)
	}
	if seg.Hour != 0 {
		cells[colHour] = fmt.Sprintf("%d시", seg.Hour)
		if m.loc.Code != locale.Korean.Code {
			cells[colHour] = fmt.Sprintf("%d", seg.Hour)
		}
	}
	if seg.Minute != "" {
		cells[colMinute] = seg.Minute + "분"
		if m.loc.Code != locale.Korean.Code {
			cells[colMinute] = seg.Minute
		}
	}

	rendered := make([]string, 0, columnCount)
	for c := colPeriod; c < columnCount; c++ {
		style := inactiveCell
		switch {
		case c == m.col:
			style = activeCell
		case cells[c] == "--":
			style = emptyCell
		}
		rendered = append(rendered, style.Render(cells[c]))
	}

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("  ←/→ select  ↑/↓ change  a/p 오전/오후  x clear  enter accept  esc cancel"))
	b.WriteString("\n")
	if m.picker.State() == timeofday.StatePartial {
		b.WriteString(hintStyle.Render("  choose all three to set a time"))
		b.WriteString("\n")
	}
	return b.String()
}

// Value returns the accepted HH:MM.
func (m TimePickerModel) Value() (string, bool) {
	if !m.accepted {
		return "", false
	}
	return m.picker.Value()
}

// Cancelled reports whether the user backed out.
func (m TimePickerModel) Cancelled() bool {
	return m.cancelled
}

// Changes lists each completed value the picker emitted, in order.
func (m TimePickerModel) Changes() []string {
	return m.changes
}

// RunTimePicker runs the picker full screen and returns the chosen time.
func RunTimePicker(initial string, loc locale.Locale) (string, bool, error) {
	final, err := tea.NewProgram(NewTimePickerModel(initial, loc)).Run()
	if err != nil {
		return "", false, fmt.Errorf("run time picker: %w", err)
	}
	v, ok := final.(TimePickerModel).Value()
	return v, ok, nil
}
