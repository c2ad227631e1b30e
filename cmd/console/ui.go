package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/jwebster45206/textworld-advisor/pkg/state"
	"github.com/muesli/reflow/wordwrap"
)

const (
	AdvisorName     = "Advisor"
	PlaceHolderText = "Type an action, a number, or /help..."
)

type entryKind int

const (
	entryObservation entryKind = iota
	entryAction
	entrySuggestion
	entryInfo
	entryError
)

type logEntry struct {
	kind entryKind
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config        *ConsoleConfig
	client        *APIClient
	logger        *log.Logger
	gameState     *state.GameState
	llmConfigured bool
	instruction   string

	entries      []logEntry
	logViewport  viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool

	autoPlaying    bool
	lastSuggestion *state.ActionSuggestion

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type stepResultMsg struct {
	action    string
	gameState *state.GameState
	err       error
}

type suggestionMsg struct {
	suggestion *state.ActionSuggestion
	execute    bool
	err        error
}

type gameStartedMsg struct {
	gameState *state.GameState
	err       error
}

type autoTickMsg struct{}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	observationStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, client *APIClient, gs *state.GameState, llmConfigured bool, logger *log.Logger) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	logVp := viewport.New(50, 20)
	logVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	m := ConsoleUI{
		config:        cfg,
		client:        client,
		logger:        logger,
		gameState:     gs,
		llmConfigured: llmConfigured,
		instruction:   cfg.Instruction,
		textarea:      ta,
		logViewport:   logVp,
		metaViewport:  metaVp,
		autoPlaying:   cfg.AutoPlay,
		loading:       cfg.AutoPlay,
	}
	m.entries = append(m.entries, logEntry{entryObservation, gs.Observation})
	if !llmConfigured {
		m.entries = append(m.entries, logEntry{entryInfo, "No LLM is configured on the server; suggestions will be random."})
	}
	return m
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.autoPlaying {
		return tea.Batch(textarea.Blink, m.requestSuggestion(true), progressTick())
	}
	return textarea.Blink
}

// stepLimit is the auto-play stop point.
func (m ConsoleUI) stepLimit() int {
	if m.config.MaxSteps > 0 {
		return m.config.MaxSteps
	}
	return m.gameState.MaxSteps
}

func (m ConsoleUI) gameOver() bool {
	return m.gameState.Done || (m.stepLimit() > 0 && m.gameState.CurrentStep >= m.stepLimit())
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.logViewport, vpCmd = m.logViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - chatWidth - 6

		m.logViewport.Width = chatWidth - 2
		m.logViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.writeLogContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}
			if m.loading || m.autoPlaying {
				return m, nil
			}
			return m.submitAction(m.resolveInput(input))
		}

	case stepResultMsg:
		m.loading = false
		if msg.err != nil {
			m.logger.Error("step failed", "action", msg.action, "error", msg.err)
			m.autoPlaying = false
			m.addEntry(entryError, "Error: "+msg.err.Error())
			return m, nil
		}

		m.gameState = msg.gameState
		m.lastSuggestion = nil
		m.addEntry(entryObservation, msg.gameState.Observation)
		m.logger.Info("step", "action", msg.action, "step", msg.gameState.CurrentStep,
			"score", msg.gameState.Score, "done", msg.gameState.Done)

		if m.gameOver() {
			m.autoPlaying = false
			m.addEntry(entryInfo, fmt.Sprintf("Game over after %d steps with score %d. Type /reset to play again.",
				m.gameState.CurrentStep, m.gameState.Score))
		}
		m.metaViewport.SetContent(m.writeMetadata())
		if m.autoPlaying {
			return m, tea.Tick(m.config.AutoDelay, func(time.Time) tea.Msg { return autoTickMsg{} })
		}
		return m, nil

	case suggestionMsg:
		m.loading = false
		if msg.err != nil {
			m.logger.Error("suggestion failed", "error", msg.err)
			m.autoPlaying = false
			m.addEntry(entryError, "Error: "+msg.err.Error())
			return m, nil
		}

		m.lastSuggestion = msg.suggestion
		m.addEntry(entrySuggestion, formatSuggestion(msg.suggestion))
		if msg.execute {
			return m.submitAction(msg.suggestion.SuggestedAction)
		}
		return m, nil

	case gameStartedMsg:
		m.loading = false
		if msg.err != nil {
			m.addEntry(entryError, "Error: "+msg.err.Error())
			return m, nil
		}
		m.gameState = msg.gameState
		m.lastSuggestion = nil
		m.addEntry(entryInfo, "New game started.")
		m.addEntry(entryObservation, msg.gameState.Observation)
		m.metaViewport.SetContent(m.writeMetadata())
		return m, nil

	case autoTickMsg:
		if m.autoPlaying && !m.loading && !m.gameOver() {
			m.loading = true
			m.progressTick = 0
			return m, tea.Batch(m.requestSuggestion(true), progressTick())
		}
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeLogContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.logViewport, vpCmd = m.logViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// resolveInput turns a 1-based action number into the action text.
func (m ConsoleUI) resolveInput(input string) string {
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(m.gameState.AvailableActions) {
		return m.gameState.AvailableActions[n-1]
	}
	return input
}

func (m ConsoleUI) submitAction(action string) (tea.Model, tea.Cmd) {
	if m.gameOver() {
		m.addEntry(entryInfo, "The game is over. Type /reset to play again.")
		return m, nil
	}
	m.loading = true
	m.progressTick = 0
	m.addEntry(entryAction, action)
	return m, tea.Batch(m.sendStep(action), progressTick())
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "/help":
		m.addEntry(entryInfo, `Commands:
• <action> or <number> - Execute an action
• /suggest - Ask the advisor for the next action
• /accept - Execute the last suggestion
• /auto - Toggle auto-play
• /instruct <text> - Steer the advisor (empty clears)
• /copy - Copy the game log to the clipboard
• /reset - Start the game again
• Ctrl+C - Quit`)

	case "/suggest":
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.progressTick = 0
		m.writeLogContent()
		return m, tea.Batch(m.requestSuggestion(false), progressTick())

	case "/accept":
		if m.lastSuggestion == nil || m.loading {
			m.addEntry(entryInfo, "No suggestion to accept. Use /suggest first.")
			return m, nil
		}
		return m.submitAction(m.lastSuggestion.SuggestedAction)

	case "/auto":
		m.autoPlaying = !m.autoPlaying
		if !m.autoPlaying {
			m.addEntry(entryInfo, "Auto-play stopped.")
			return m, nil
		}
		m.addEntry(entryInfo, fmt.Sprintf("Auto-play started (limit %d steps).", m.stepLimit()))
		return m, func() tea.Msg { return autoTickMsg{} }

	case "/instruct":
		m.instruction = arg
		if arg == "" {
			m.addEntry(entryInfo, "Instruction cleared.")
		} else {
			m.addEntry(entryInfo, "Instruction set: "+arg)
		}
		m.metaViewport.SetContent(m.writeMetadata())

	case "/copy":
		if err := clipboard.WriteAll(m.plainLog()); err != nil {
			m.addEntry(entryError, "Could not copy log: "+err.Error())
		} else {
			m.addEntry(entryInfo, "Game log copied to clipboard.")
		}

	case "/reset":
		if m.loading {
			return m, nil
		}
		m.autoPlaying = false
		m.loading = true
		return m, tea.Batch(m.startGame(), progressTick())

	default:
		m.addEntry(entryError, "Unknown command "+name+". Type /help.")
	}
	return m, nil
}

func (m *ConsoleUI) addEntry(kind entryKind, text string) {
	m.entries = append(m.entries, logEntry{kind, text})
	m.writeLogContent()
}

// plainLog renders the log without styling, for the clipboard.
func (m ConsoleUI) plainLog() string {
	var b strings.Builder
	for _, e := range m.entries {
		switch e.kind {
		case entryAction:
			b.WriteString("> " + e.text)
		case entrySuggestion:
			b.WriteString(AdvisorName + ": " + e.text)
		default:
			b.WriteString(e.text)
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

func formatSuggestion(s *state.ActionSuggestion) string {
	text := s.SuggestedAction
	if s.Reasoning != "" {
		text += " (" + s.Reasoning + ")"
	}
	if s.IsFallback {
		text += " [random]"
	}
	return text
}

// writeLogContent rebuilds the log for the current viewport width
func (m *ConsoleUI) writeLogContent() {
	width := m.logViewport.Width - 6 // Account for left(3) + right(3) padding
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("TEXTWORLD ADVISOR") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, e := range m.entries {
		switch e.kind {
		case entryObservation:
			content.WriteString(observationStyle.Render(wordwrap.String(strings.TrimSpace(e.text), width)))
		case entryAction:
			content.WriteString(userStyle.Render("> ") + wordwrap.String(e.text, width-2))
		case entrySuggestion:
			content.WriteString(speakerStyle.Render(AdvisorName+": ") + wordwrap.String(e.text, width-len(AdvisorName)-2))
		case entryInfo:
			content.WriteString(promptStyle.Render(wordwrap.String(e.text, width)))
		case entryError:
			content.WriteString(errorStyle.Render(wordwrap.String(e.text, width)))
		}
		content.WriteString("\n\n")
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.logViewport.SetContent(content.String())
	m.logViewport.GotoBottom()
}

func (m ConsoleUI) writeMetadata() string {
	gs := m.gameState
	var content strings.Builder
	content.WriteString(titleStyle.Render("GAME STATE") + "\n\n")

	content.WriteString("Session:\n")
	id := gs.SessionID
	if len(id) > 8 {
		id = id[:8] + "..."
	}
	content.WriteString(id + "\n\n")

	content.WriteString(fmt.Sprintf("Score: %d\n", gs.Score))
	if gs.Reward != nil {
		content.WriteString(fmt.Sprintf("Last reward: %+d\n", *gs.Reward))
	}
	content.WriteString(fmt.Sprintf("Step: %d / %d\n", gs.CurrentStep, m.stepLimit()))
	if gs.Done {
		content.WriteString(loadingStyle.Render("Game over") + "\n")
	}
	if m.autoPlaying {
		content.WriteString(loadingStyle.Render("Auto-playing") + "\n")
	}
	content.WriteString("\n")

	if m.instruction != "" {
		content.WriteString("Instruction:\n")
		content.WriteString(wordwrap.String(m.instruction, max(m.metaViewport.Width, 10)) + "\n\n")
	}

	content.WriteString("Actions:\n")
	if len(gs.AvailableActions) == 0 {
		content.WriteString("None\n")
	}
	for i, a := range gs.AvailableActions {
		content.WriteString(fmt.Sprintf("%2d. %s\n", i+1, a))
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• /suggest, /auto\n")
	content.WriteString("• /help: Help\n")

	return content.String()
}

func (m ConsoleUI) sendStep(action string) tea.Cmd {
	sessionID := m.gameState.SessionID
	return func() tea.Msg {
		gs, err := m.client.Step(context.Background(), sessionID, action)
		return stepResultMsg{action: action, gameState: gs, err: err}
	}
}

func (m ConsoleUI) requestSuggestion(execute bool) tea.Cmd {
	gs := *m.gameState
	instruction := m.instruction
	return func() tea.Msg {
		s, err := m.client.Suggest(context.Background(), &gs, instruction)
		return suggestionMsg{suggestion: s, execute: execute, err: err}
	}
}

func (m ConsoleUI) startGame() tea.Cmd {
	gameID := m.config.GameID
	return func() tea.Msg {
		gs, err := m.client.Reset(context.Background(), gameID)
		return gameStartedMsg{gameState: gs, err: err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to quit your adventure?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.logViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.logViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓") // Blinking effect at the progress point
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
