// ABOUTME: Interactive first-run wizard for gachi storage and profile settings
// ABOUTME: Bubbletea model stepping through backend, data dir, display name and district

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harper/gachi/internal/config"
	"github.com/harper/gachi/internal/models"
	"golang.org/x/text/unicode/norm"
)

// Step is the wizard's current field.
type Step int

const (
	StepBackend Step = iota
	StepDataDir
	StepDisplayName
	StepDistrict
	StepDone
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	brandStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// field is one wizard prompt. accept normalizes the typed value or rejects it.
type field struct {
	label  string
	hint   string
	input  textinput.Model
	accept func(string) (string, bool)
}

// SetupValues are the settings collected by the wizard.
type SetupValues struct {
	Backend     string
	DataDir     string
	DisplayName string
	District    string
}

// SetupModel is the bubbletea model for the setup wizard.
type SetupModel struct {
	step     Step
	fields   [StepDone]field
	invalid  bool
	quitting bool
}

func newInput(placeholder, value string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Width = 50
	if value != "" {
		in.SetValue(value)
	}
	return in
}

func orDefault(fallback string) func(string) (string, bool) {
	return func(v string) (string, bool) {
		if v == "" {
			return fallback, true
		}
		return v, true
	}
}

// NewSetupModel creates the wizard pre-filled with current values.
func NewSetupModel(current SetupValues) SetupModel {
	m := SetupModel{step: StepBackend}
	m.fields[StepBackend] = field{
		label: "Storage backend",
		hint:  "sqlite or charm, Enter for sqlite",
		input: newInput("sqlite", current.Backend),
		accept: func(v string) (string, bool) {
			v = strings.ToLower(v)
			if v == "" {
				v = "sqlite"
			}
			return v, v == "sqlite" || v == "charm"
		},
	}
	m.fields[StepDataDir] = field{
		label:  "Data directory",
		hint:   "Enter for " + config.DefaultDataDir(),
		input:  newInput(config.DefaultDataDir(), current.DataDir),
		accept: orDefault(config.DefaultDataDir()),
	}
	m.fields[StepDisplayName] = field{
		label:  "Display name (이름)",
		hint:   "shown to your family, Enter for " + models.DefaultDisplayName,
		input:  newInput(models.DefaultDisplayName, current.DisplayName),
		accept: orDefault(models.DefaultDisplayName),
	}
	m.fields[StepDistrict] = field{
		label: "District (구)",
		hint:  "for weather and nearby events, Enter for " + config.DefaultDistrict,
		input: newInput(config.DefaultDistrict, current.District),
		accept: func(v string) (string, bool) {
			if v == "" {
				return config.DefaultDistrict, true
			}
			return norm.NFC.String(v), true
		},
	}
	m.fields[StepBackend].input.Focus()
	return m
}

// Init implements tea.Model.
func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.step == StepDone {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEscape:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.advance()
		}
		m.invalid = false
	}

	var cmd tea.Cmd
	m.fields[m.step].input, cmd = m.fields[m.step].input.Update(msg)
	return m, cmd
}

func (m SetupModel) advance() (tea.Model, tea.Cmd) {
	f := &m.fields[m.step]
	val, ok := f.accept(strings.TrimSpace(f.input.Value()))
	if !ok {
		m.invalid = true
		return m, nil
	}
	m.invalid = false
	f.input.SetValue(val)
	f.input.Blur()

	m.step++
	if m.step == StepDone {
		return m, tea.Quit
	}
	m.fields[m.step].input.Focus()
	return m, textinput.Blink
}

// View implements tea.Model.
func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(brandStyle.Render("   가치 GACHI"))
	b.WriteString(titleStyle.Render(" - Setup"))
	b.WriteString("\n\n")

	for i := StepBackend; i < m.step && i < StepDone; i++ {
		fmt.Fprintf(&b, "  %-20s %s\n", m.fields[i].label+":", m.fields[i].input.Value())
	}
	if m.step > StepBackend {
		b.WriteString("\n")
	}

	if m.step == StepDone {
		b.WriteString(successStyle.Render("Setup complete!"))
		b.WriteString("\n\n")
		return b.String()
	}

	f := m.fields[m.step]
	b.WriteString(stepStyle.Render(fmt.Sprintf("Step %d of %d: %s", m.step+1, StepDone, f.label)))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("(" + f.hint + ")"))
	b.WriteString("\n")
	b.WriteString(f.input.View())
	b.WriteString("\n")
	if m.invalid {
		b.WriteString(errorStyle.Render("That value is not accepted here."))
		b.WriteString("\n")
	}
	return b.String()
}

// Result returns the entered values.
func (m SetupModel) Result() SetupValues {
	return SetupValues{
		Backend:     m.fields[StepBackend].input.Value(),
		DataDir:     m.fields[StepDataDir].input.Value(),
		DisplayName: m.fields[StepDisplayName].input.Value(),
		District:    m.fields[StepDistrict].input.Value(),
	}
}

// ShouldSave reports whether the wizard finished without being cancelled.
func (m SetupModel) ShouldSave() bool {
	return m.step == StepDone && !m.quitting
}
