// Package tui provides a terminal user interface for variamidi
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/variamidi/variamidi/pkg/config"
	"github.com/variamidi/variamidi/pkg/harmony"
	"github.com/variamidi/variamidi/pkg/variation"
	"github.com/variamidi/variamidi/pkg/variation/builtin"
	"github.com/variamidi/variamidi/pkg/variation/groove"
)

// Acid-inspired color scheme
var (
	// Primary colors - acid green and silver
	acidGreen  = lipgloss.Color("#39FF14")
	acidYellow = lipgloss.Color("#FFFF00")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(acidGreen).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(acidGreen).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(acidYellow).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(acidGreen).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(acidGreen).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateGenerating
	StateResult
)

// menuItem represents a menu option
type menuItem struct {
	title       string
	description string
	module      string
	analyze     bool
}

// Model represents the TUI model
type Model struct {
	pipeline     *variation.Pipeline
	items        []menuItem
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	selectedFile string
	outputFile   string
	chords       []harmony.Chord
	selected     menuItem
	err          error
	width        int
	height       int
}

// generationDoneMsg signals generation completion
type generationDoneMsg struct {
	outputFile string
	err        error
}

// analysisDoneMsg signals chord analysis completion
type analysisDoneMsg struct {
	chords []harmony.Chord
	err    error
}

// New creates a new TUI model listing the pipeline's modules
func New(p *variation.Pipeline) Model {
	items := make([]menuItem, 0, p.Registry().Len()+2)
	for _, d := range p.Registry().Descriptors() {
		description := fmt.Sprintf("Generate a variation with the %s module", d.Name)
		if !d.Ready {
			description += " (model missing)"
		}
		items = append(items, menuItem{
			title:       d.Label,
			description: description,
			module:      d.Name,
		})
	}
	items = append(items, menuItem{
		title:       "Analyze Chords",
		description: "Detect the chord timeline of a MIDI file",
		analyze:     true,
	})
	items = append(items, menuItem{title: "Exit", description: "Exit the application"})

	// Initialize file picker
	fp := filepicker.New()
	fp.AllowedTypes = []string{".mid", ".midi"}
	fp.CurrentDirectory, _ = os.Getwd()

	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(acidGreen)

	return Model{
		pipeline:   p,
		items:      items,
		state:      StateMenu,
		menuIndex:  0,
		filePicker: fp,
		spinner:    s,
	}
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle file picker state first - it needs to receive all messages
	if m.state == StateFilePicker {
		// Check for escape/quit keys first
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		// Pass all other messages to the file picker
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		// Check if file was selected
		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateGenerating
			if m.selected.analyze {
				return m, tea.Batch(m.spinner.Tick, m.performAnalysis())
			}
			return m, tea.Batch(m.spinner.Tick, m.performGeneration())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case generationDoneMsg:
		m.state = StateResult
		m.outputFile = msg.outputFile
		m.err = msg.err
		return m, nil

	case analysisDoneMsg:
		m.state = StateResult
		m.chords = msg.chords
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(m.items)-1 {
			m.menuIndex++
		}
	case "enter":
		if m.menuIndex == len(m.items)-1 {
			return m, tea.Quit
		}
		m.selected = m.items[m.menuIndex]
		m.state = StateFilePicker
		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.selectedFile = ""
		m.outputFile = ""
		m.chords = nil
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) performGeneration() tea.Cmd {
	pipeline := m.pipeline
	moduleName := m.selected.module
	input := m.selectedFile

	return func() tea.Msg {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputFile := fmt.Sprintf("%s-%s.mid", base, moduleName)

		if err := pipeline.GenerateFile(moduleName, input, outputFile, nil, nil); err != nil {
			return generationDoneMsg{err: err}
		}
		return generationDoneMsg{outputFile: outputFile}
	}
}

func (m Model) performAnalysis() tea.Cmd {
	pipeline := m.pipeline
	input := m.selectedFile

	return func() tea.Msg {
		data, err := os.ReadFile(input)
		if err != nil {
			return analysisDoneMsg{err: err}
		}
		chords, err := pipeline.AnalyzeChords(data)
		if err != nil {
			return analysisDoneMsg{err: err}
		}
		return analysisDoneMsg{chords: chords}
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	// Header
	header := asciiLogo()
	s.WriteString(header)
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateGenerating:
		s.WriteString(m.viewGenerating())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	// Footer help
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT MODULE "))
	s.WriteString("\n\n")

	for i, item := range m.items {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(acidYellow).PaddingLeft(4).Render(item.description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT MIDI FILE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewGenerating() string {
	var s strings.Builder

	if m.selected.analyze {
		s.WriteString(titleStyle.Render(" ANALYZING "))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("%s Analyzing %s...\n", m.spinner.View(), filepath.Base(m.selectedFile)))
	} else {
		s.WriteString(titleStyle.Render(" GENERATING "))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("%s Generating from %s...\n", m.spinner.View(), filepath.Base(m.selectedFile)))
		s.WriteString(statusStyle.Render(fmt.Sprintf("  module: %s", m.selected.module)))
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	switch {
	case m.err != nil && m.selected.analyze:
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Analysis failed: %s", m.err.Error())))
	case m.err != nil:
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Generation failed: %s", m.err.Error())))
	case m.selected.analyze:
		s.WriteString(titleStyle.Render(" CHORD TIMELINE "))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Input: %s\n\n", filepath.Base(m.selectedFile)))
		if len(m.chords) == 0 {
			s.WriteString(statusStyle.Render("  no chords detected"))
		}
		for _, chord := range m.chords {
			s.WriteString(fmt.Sprintf("%7.2fs  %-8s %v\n", chord.Time, chord.Name, chord.PitchClasses))
		}
	default:
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Variation written!"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Input:  %s\n", filepath.Base(m.selectedFile)))
		s.WriteString(fmt.Sprintf("Output: %s", filepath.Base(m.outputFile)))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
  __     __    _     ____   ___     _     __  __  ___  ____   ___
  \ \   / /   / \   |  _ \ |_ _|   / \   |  \/  ||_ _||  _ \ |_ _|
   \ \ / /   / _ \  | |_) | | |   / _ \  | |\/| | | | | | | | | |
    \ V /   / ___ \ |  _ <  | |  / ___ \ | |  | | | | | |_| | | |
     \_/   /_/   \_\|_| \_\|___|/_/   \_\|_|  |_||___||____/ |___|
`
	return lipgloss.NewStyle().Foreground(acidGreen).Render(logo)
}

// Run assembles the module registry and starts the TUI application
func Run(cfg *config.Config) error {
	registry, err := builtin.Discover(groove.Config{
		ModelPath:      cfg.ModelPath,
		RuntimeLibrary: cfg.RuntimeLibrary,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(New(variation.NewPipeline(registry)), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
