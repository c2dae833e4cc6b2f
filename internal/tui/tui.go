// Package tui is the interactive practice table: a scrolling log of graded
// decisions, the table state in a sidebar and a command prompt.
package tui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/lox/bjtrainer/internal/round"
	"github.com/lox/bjtrainer/internal/scenario"
	"github.com/lox/bjtrainer/internal/sequencer"
	"github.com/lox/bjtrainer/internal/snapshot"
	"github.com/lox/bjtrainer/internal/strategy"
	"github.com/lox/bjtrainer/internal/trainer"
)

// Config wires the model to a session.
type Config struct {
	Session *trainer.Session
	Builder *scenario.Builder
	// Sequencer runs the dealer turn one step every DealerDelay when the
	// session stops at it; see trainer.WithPacedDealer.
	Sequencer   *sequencer.Sequencer
	DealerDelay time.Duration
	ShowCount   bool
	// SnapshotPath is written by "save" and on quit when set.
	SnapshotPath string
	Logger       *log.Logger
}

// dealerStepLimit bounds a dealer sequence; a dealer hand never takes this
// many cards.
const dealerStepLimit = 32

// dealerStepMsg asks Update to play one dealer step. Update sends whether
// the dealer has more to do on reply.
type dealerStepMsg struct {
	reply chan<- bool
}

// Model represents the Bubble Tea model for the practice table
type Model struct {
	cfg    Config
	logger *log.Logger
	ctx    context.Context
	cancel context.CancelFunc

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	gameLog     []string
	showCount   bool
	dealing     bool
	dealerSteps chan dealerStepMsg
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	width       int
	height      int
	initialized bool
}

// New creates the model.
func New(cfg Config) *Model {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Sequencer == nil {
		cfg.Sequencer = sequencer.New(nil)
	}

	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 40
	ti.Width = 40
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		cfg:         cfg,
		logger:      cfg.Logger.WithPrefix("tui"),
		ctx:         ctx,
		cancel:      cancel,
		logViewport: vp,
		actionInput: ti,
		showCount:   cfg.ShowCount,
		focusedPane: 1,
	}
	m.AddLogEntry(InfoStyle.Render("Enter to deal, 'help' for commands."))
	return m
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case dealerStepMsg:
		more := m.stepDealer()
		msg.reply <- more
		if !more {
			return m, nil
		}
		return m, m.nextDealerStep()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, m.quit()
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.actionInput.Value())
				m.actionInput.SetValue("")
				cmds = append(cmds, m.execute(input))
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	m.cancel()
	if m.cfg.SnapshotPath != "" {
		if err := snapshot.Save(m.cfg.SnapshotPath, m.cfg.Session.State()); err != nil {
			m.logger.Warn("Table not saved", "error", err)
		}
	}
	return tea.Sequence(tea.ClearScreen, tea.Quit)
}

// execute runs one command line.
func (m *Model) execute(input string) tea.Cmd {
	if m.dealing {
		m.AddLogEntry(InfoStyle.Render("Dealer is playing..."))
		return nil
	}

	sess := m.cfg.Session
	before := sess.State().Phase
	fields := strings.Fields(strings.ToLower(input))
	verb := ""
	if len(fields) > 0 {
		verb = fields[0]
	}

	switch verb {
	case "", "deal":
		if before != round.Idle && before != round.Payout {
			m.AddLogEntry(WarningStyle.Render("Finish the round first."))
			return nil
		}
		if err := sess.Deal(); err != nil {
			m.AddLogEntry(ErrorStyle.Render(err.Error()))
			return nil
		}
		m.AddLogEntry("")
		m.AddLogEntry(HeaderStyle.Render(" New round "))
	case "q", "quit", "exit":
		return m.quit()
	case "help":
		m.AddLogEntry(InfoStyle.Render(helpText))
		return nil
	case "u", "undo":
		if !sess.Undo() {
			m.AddLogEntry(WarningStyle.Render("Nothing to undo."))
			return nil
		}
		m.AddLogEntry(InfoStyle.Render("Undone."))
		return nil
	case "?", "hint":
		d, err := trainer.Advise(sess.Engine(), sess.State())
		if err != nil {
			m.AddLogEntry(WarningStyle.Render("No decision pending."))
			return nil
		}
		m.AddLogEntry(ActionsStyle.Render("Hint: "+d.Expected.String()) + " " + InfoStyle.Render(d.Explain()))
		return nil
	case "c", "count":
		m.showCount = !m.showCount
		return nil
	case "stats":
		m.AddLogEntry(sess.Stats().String())
		return nil
	case "bet":
		m.setBet(fields[1:])
		return nil
	case "save":
		m.save()
		return nil
	case "scenario":
		m.loadScenario(fields[1:])
		return nil
	case "shoe":
		m.loadShoe(fields[1:])
		return nil
	default:
		a, err := strategy.ParseAction(verb)
		if err != nil {
			m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Unknown command %q, try 'help'.", input)))
			return nil
		}
		d, err := sess.Act(m.ctx, a)
		if err != nil {
			m.AddLogEntry(ErrorStyle.Render(err.Error()))
			return nil
		}
		m.logDecision(d)
	}
	return m.afterMove(before)
}

// afterMove starts the paced dealer or reports a settled round.
func (m *Model) afterMove(before round.Phase) tea.Cmd {
	s := m.cfg.Session.State()
	switch s.Phase {
	case round.DealerTurn:
		return m.playDealer()
	case round.Payout:
		if before != round.Payout {
			m.logSettled()
		}
	}
	return nil
}

// playDealer runs the dealer turn as a sequence. Each step hands a
// dealerStepMsg to Update, which owns the session, and continues only when
// Update replies that the dealer has more to do.
func (m *Model) playDealer() tea.Cmd {
	m.dealing = true
	steps := make(chan dealerStepMsg)
	m.dealerSteps = steps
	seq, ctx, delay := m.cfg.Sequencer, m.ctx, m.cfg.DealerDelay
	next := m.nextDealerStep()

	return func() tea.Msg {
		go func() {
			defer close(steps)
			_, _ = seq.Run(ctx, sequencer.Repeat(delay, dealerStepLimit, func() bool {
				reply := make(chan bool, 1)
				select {
				case steps <- dealerStepMsg{reply: reply}:
				case <-ctx.Done():
					return false
				}
				select {
				case more := <-reply:
					return more
				case <-ctx.Done():
					return false
				}
			}))
		}()
		return next()
	}
}

// nextDealerStep waits for the sequence's next step. A closed channel means
// the sequence ended or was cancelled.
func (m *Model) nextDealerStep() tea.Cmd {
	steps := m.dealerSteps
	return func() tea.Msg {
		msg, ok := <-steps
		if !ok {
			return nil
		}
		return msg
	}
}

// stepDealer plays one dealer step and reports whether another follows.
func (m *Model) stepDealer() bool {
	if !m.dealing {
		return false
	}
	done, err := m.cfg.Session.StepDealer()
	if err != nil {
		m.dealing = false
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		return false
	}
	if done {
		m.dealing = false
		m.logSettled()
		return false
	}
	s := m.cfg.Session.State()
	m.AddLogEntry("Dealer: " + FormatCards(s.Dealer.Cards))
	return true
}

func (m *Model) logDecision(d trainer.Decision) {
	if d.Correct {
		m.AddLogEntry(SuccessStyle.Render("✓ "+d.Chosen.String()) + " " + InfoStyle.Render(d.Explain()))
		return
	}
	m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("✗ %s, expected %s", d.Chosen, d.Expected)) + " " + InfoStyle.Render(d.Explain()))
}

func (m *Model) logSettled() {
	s := m.cfg.Session.State()
	m.AddLogEntry("Dealer: " + FormatCards(s.Dealer.Cards) + " " + InfoStyle.Render("("+describeTotal(s.Dealer)+")"))
	m.AddLogEntry(RenderResults(s))
}

func (m *Model) setBet(args []string) {
	if len(args) != 1 {
		m.AddLogEntry(WarningStyle.Render("Usage: bet <amount>"))
		return
	}
	bet, err := decimal.NewFromString(args[0])
	if err != nil || !bet.IsPositive() {
		m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Invalid bet %q", args[0])))
		return
	}
	if err := m.cfg.Session.SetBet(bet); err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		return
	}
	m.AddLogEntry(InfoStyle.Render("Bet set to " + money(bet)))
}

func (m *Model) save() {
	if m.cfg.SnapshotPath == "" {
		m.AddLogEntry(WarningStyle.Render("No snapshot path configured."))
		return
	}
	if err := snapshot.Save(m.cfg.SnapshotPath, m.cfg.Session.State()); err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		return
	}
	m.AddLogEntry(InfoStyle.Render("Saved to " + m.cfg.SnapshotPath))
}

func (m *Model) betweenRounds() bool {
	p := m.cfg.Session.State().Phase
	if p != round.Idle && p != round.Payout {
		m.AddLogEntry(WarningStyle.Render("Finish the round first."))
		return false
	}
	if m.cfg.Builder == nil {
		m.AddLogEntry(WarningStyle.Render("Scenarios are not available."))
		return false
	}
	return true
}

func (m *Model) loadScenario(args []string) {
	if len(args) != 1 {
		m.AddLogEntry(WarningStyle.Render("Usage: scenario <index> (see 'bjtrainer deviations')"))
		return
	}
	if !m.betweenRounds() {
		return
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Invalid index %q", args[0])))
		return
	}

	sess := m.cfg.Session
	s := sess.State()
	r := sess.Engine().Rules()
	sc, err := m.cfg.Builder.ForDeviation(index, r.Decks, r.CountMethod, s.Seats())
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		return
	}
	table := sc.State(s.Bets[0], s.Bankroll)
	table.Bets = append([]decimal.Decimal(nil), s.Bets...)
	sess.Load(table)
	m.AddLogEntry(InfoStyle.Render(fmt.Sprintf("Loaded %s scenario, Enter to deal.", sc.Deviation.Name)))
}

func (m *Model) loadShoe(args []string) {
	if len(args) != 1 {
		m.AddLogEntry(WarningStyle.Render("Usage: shoe <true count>"))
		return
	}
	if !m.betweenRounds() {
		return
	}
	target, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Invalid true count %q", args[0])))
		return
	}

	sess := m.cfg.Session
	s := sess.State()
	r := sess.Engine().Rules()
	ts, err := m.cfg.Builder.ForTargetTC(target, r.Decks, r.CountMethod)
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
		return
	}
	sess.Load(ts.State(s.Bets, s.Bankroll))
	m.AddLogEntry(InfoStyle.Render(fmt.Sprintf("Loaded shoe at TC %+.1f (RC %+d, %d cards).", ts.TrueCount, ts.RunningCount, ts.Shoe.Len())))
}

const helpText = `h hit, s stand, d double, p split, r surrender, i/n take or decline insurance
Enter/deal next round, u undo, ? hint, c toggle count, stats, bet <n>, save
scenario <index> practise a deviation, shoe <tc> play a shoe at a true count, q quit`

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1)).
		Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 30)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *Model) renderSidebarPane() string {
	sess := m.cfg.Session
	s := sess.State()
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(" " + sess.Engine().Rules().String() + " "))
	b.WriteString("\n\n")
	b.WriteString(RenderTable(s, sess.TrueCount(), m.showCount))
	b.WriteString("\n\n")
	b.WriteString(InfoStyle.Render(sess.Stats().String()))
	return b.String()
}

func (m *Model) renderActionPane() string {
	var b strings.Builder
	sess := m.cfg.Session
	legal := sess.Engine().Legal(sess.State())

	switch {
	case m.dealing:
		b.WriteString(HandInfoStyle.Render("Dealer is playing..."))
	case len(legal) == 0:
		b.WriteString(HandInfoStyle.Render("Enter to deal"))
	default:
		names := make([]string, len(legal))
		for i, a := range legal {
			names[i] = "[" + a.String() + "]"
		}
		b.WriteString(ActionsStyle.Render("Actions: " + strings.Join(names, " ")))
	}
	b.WriteString("\n")
	b.WriteString(m.actionInput.View())
	b.WriteString("\n")
	if m.focusedPane == 0 {
		b.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		b.WriteString(InfoStyle.Render("Tab to scroll log • 'help' for commands • Ctrl+C to quit"))
	}
	return b.String()
}

// AddLogEntry adds an entry to the game log
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Log returns a copy of the log entries.
func (m *Model) Log() []string {
	return append([]string(nil), m.gameLog...)
}

// Run starts the program and blocks until the player quits.
func Run(m *Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	m.cancel()
	return err
}
