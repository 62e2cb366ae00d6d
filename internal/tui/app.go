package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tessro/stave/internal/core"
	"github.com/tessro/stave/internal/keymap"
	"github.com/tessro/stave/internal/sequencer"
	"github.com/tessro/stave/internal/tail"
	"github.com/tessro/stave/internal/tui/components"
	"github.com/tessro/stave/internal/tui/styles"
)

// Terminals report presses but not releases. A key counts as held until
// its auto-repeat stops: the first press waits out the OS repeat delay,
// later repeats only need to bridge the repeat interval.
const (
	DefaultFirstHold  = 550 * time.Millisecond
	DefaultRepeatHold = 120 * time.Millisecond

	maxActivity = 50
)

// Runner runs engine operations one at a time. *sequencer.Loop satisfies it.
type Runner interface {
	Do(ctx context.Context, fn func(*sequencer.Engine)) error
	View(ctx context.Context) (sequencer.SessionView, error)
	Subscribe(buf int) (<-chan sequencer.Change, func())
}

// App holds the TUI application state
type App struct {
	runner      Runner
	changes     <-chan sequencer.Change
	events      <-chan tail.Event
	formatter   *tail.Formatter
	instruments []string
	refreshRate time.Duration
	firstHold   time.Duration
	repeatHold  time.Duration
}

// Option configures an App.
type Option func(*App)

// WithInstruments sets the instrument ids the instrument key cycles through.
func WithInstruments(ids []string) Option {
	return func(a *App) {
		a.instruments = ids
	}
}

// WithRefreshRate sets how often the view is refreshed without a change.
func WithRefreshRate(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.refreshRate = d
		}
	}
}

// WithEvents feeds the activity panel from a tail watcher.
func WithEvents(events <-chan tail.Event) Option {
	return func(a *App) {
		a.events = events
	}
}

// WithHold overrides how long presses are held without a repeat.
func WithHold(first, repeat time.Duration) Option {
	return func(a *App) {
		a.firstHold = first
		a.repeatHold = repeat
	}
}

// NewApp creates a new TUI application. changes comes from runner.Subscribe.
func NewApp(runner Runner, changes <-chan sequencer.Change, opts ...Option) *App {
	a := &App{
		runner:      runner,
		changes:     changes,
		formatter:   tail.NewFormatter(tail.WithEmoji(false)),
		instruments: []string{core.DefaultInstrument},
		refreshRate: time.Second,
		firstHold:   DefaultFirstHold,
		repeatHold:  DefaultRepeatHold,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// heldKey is a note key the terminal has reported recently.
type heldKey struct {
	pitch core.Pitch
	seq   int
}

// Model is the main TUI model
type Model struct {
	app    *App
	width  int
	height int

	// State
	view     sequencer.SessionView
	held     map[string]heldKey
	seq      int
	activity []components.ActivityEntry

	// Components
	keys      keyMap
	help      help.Model
	partsView *components.Parts
	keyboard  *components.Keyboard
	status    *components.Status
	feed      *components.Activity

	// Overlays
	showHelp bool

	// Error handling
	lastError   error
	errorExpiry time.Time // When to clear the error

	// Quit flag
	quitting bool
}

// NewModel creates a new TUI model
func NewModel(app *App) Model {
	return Model{
		app:       app,
		held:      make(map[string]heldKey),
		keys:      defaultKeyMap(),
		help:      help.New(),
		partsView: components.NewParts(),
		keyboard:  components.NewKeyboard(),
		status:    components.NewStatus(),
		feed:      components.NewActivity(),
	}
}

// Messages
type tickMsg time.Time
type viewMsg sequencer.SessionView
type changeMsg sequencer.Change
type eventMsg tail.Event
type errMsg error
type closedMsg struct{}

// releaseMsg fires when a held key has gone quiet. It is stale if the key
// repeated since.
type releaseMsg struct {
	key string
	seq int
}

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.app.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchView() tea.Cmd {
	runner := m.app.runner
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		v, err := runner.View(ctx)
		if err != nil {
			return errMsg(err)
		}
		return viewMsg(v)
	}
}

func (m Model) waitForChange() tea.Cmd {
	ch := m.app.changes
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return changeMsg(c)
	}
}

func (m Model) waitForEvent() tea.Cmd {
	ch := m.app.events
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg(e)
	}
}

// do runs fn on the engine and answers with the resulting view.
func (m Model) do(fn func(e *sequencer.Engine) error) tea.Cmd {
	runner := m.app.runner
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		var (
			v     sequencer.SessionView
			opErr error
		)
		err := runner.Do(ctx, func(e *sequencer.Engine) {
			opErr = fn(e)
			v = e.View()
		})
		if err != nil {
			return errMsg(err)
		}
		if opErr != nil {
			return errMsg(opErr)
		}
		return viewMsg(v)
	}
}

func (m Model) release(key string, seq int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return releaseMsg{key: key, seq: seq}
	})
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tick(),
		m.fetchView(),
		m.waitForChange(),
		m.waitForEvent(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.tick(), m.fetchView())

	case viewMsg:
		if time.Now().After(m.errorExpiry) {
			m.lastError = nil
		}
		m.view = sequencer.SessionView(msg)
		return m, nil

	case changeMsg:
		return m, tea.Batch(m.fetchView(), m.waitForChange())

	case eventMsg:
		e := tail.Event(msg)
		if !m.app.formatter.Skip(e) {
			entry := components.ActivityEntry{Line: m.app.formatter.Format(e), At: e.Timestamp}
			m.activity = append([]components.ActivityEntry{entry}, m.activity...)
			if len(m.activity) > maxActivity {
				m.activity = m.activity[:maxActivity]
			}
		}
		return m, m.waitForEvent()

	case releaseMsg:
		h, ok := m.held[msg.key]
		if !ok || h.seq != msg.seq {
			return m, nil
		}
		// The engine releases every held pitch together.
		m.held = make(map[string]heldKey)
		pitch := h.pitch
		return m, m.do(func(e *sequencer.Engine) error {
			e.KeyUp(pitch)
			return nil
		})

	case errMsg:
		m.lastError = msg
		m.errorExpiry = time.Now().Add(5 * time.Second) // Show error for 5 seconds
		return m, nil

	case closedMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (always work)
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Deselect) {
			m.showHelp = false
		}
		return m, nil
	}

	if cmd, ok := m.command(msg); ok {
		return m, cmd
	}
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = true
		return m, nil
	}

	return m.handleNoteKey(msg.String())
}

// command maps a key to an engine operation on the current part.
func (m Model) command(msg tea.KeyMsg) (tea.Cmd, bool) {
	cur := m.view.Current
	k := m.keys

	var fn func(e *sequencer.Engine) error
	switch {
	case key.Matches(msg, k.Play):
		fn = func(e *sequencer.Engine) error { return e.TogglePlay(cur) }
	case key.Matches(msg, k.Stop):
		fn = func(e *sequencer.Engine) error { return e.Stop(cur) }
	case key.Matches(msg, k.PlayAll):
		anyPlaying := false
		for _, p := range m.view.Parts {
			anyPlaying = anyPlaying || p.State == core.Playing.String()
		}
		fn = func(e *sequencer.Engine) error {
			if anyPlaying {
				e.StopAll()
			} else {
				e.PlayAll()
			}
			return nil
		}
	case key.Matches(msg, k.Loop):
		fn = func(e *sequencer.Engine) error { return e.ToggleLoop(cur) }
	case key.Matches(msg, k.Record):
		fn = func(e *sequencer.Engine) error { return e.ToggleRecord(cur) }
	case key.Matches(msg, k.AddPart):
		fn = func(e *sequencer.Engine) error { return e.SelectPart(e.AddPart()) }
	case key.Matches(msg, k.RemovePart):
		fn = func(e *sequencer.Engine) error { return e.RemovePart(cur) }
	case key.Matches(msg, k.NextPart), key.Matches(msg, k.PrevPart):
		n := len(m.view.Parts)
		if n == 0 {
			return nil, true
		}
		step := 1
		if key.Matches(msg, k.PrevPart) {
			step = n - 1
		}
		next := (cur + step) % n
		fn = func(e *sequencer.Engine) error { return e.SelectPart(next) }
	case key.Matches(msg, k.NextChord):
		fn = func(e *sequencer.Engine) error { return e.MoveSelection(cur, 1) }
	case key.Matches(msg, k.PrevChord):
		fn = func(e *sequencer.Engine) error { return e.MoveSelection(cur, -1) }
	case key.Matches(msg, k.Deselect):
		fn = func(e *sequencer.Engine) error { e.ClearSelection(); return nil }
	case key.Matches(msg, k.Up):
		fn = func(e *sequencer.Engine) error { e.TransposeSelected(true); return nil }
	case key.Matches(msg, k.Down):
		fn = func(e *sequencer.Engine) error { e.TransposeSelected(false); return nil }
	case key.Matches(msg, k.Lengthen):
		fn = func(e *sequencer.Engine) error { e.LengthenSelected(); return nil }
	case key.Matches(msg, k.Shorten):
		fn = func(e *sequencer.Engine) error { e.ShortenSelected(); return nil }
	case key.Matches(msg, k.Delete):
		fn = func(e *sequencer.Engine) error { e.DeleteAction().Do(); return nil }
	case key.Matches(msg, k.Undo):
		fn = func(e *sequencer.Engine) error { e.UndoAction().Do(); return nil }
	case key.Matches(msg, k.OctaveUp):
		fn = func(e *sequencer.Engine) error { e.SetOctave(e.Octave() + 1); return nil }
	case key.Matches(msg, k.OctaveDown):
		fn = func(e *sequencer.Engine) error { e.SetOctave(e.Octave() - 1); return nil }
	case key.Matches(msg, k.Instrument):
		next := m.nextInstrument()
		fn = func(e *sequencer.Engine) error { return e.SetInstrument(cur, next) }
	default:
		return nil, false
	}
	return m.do(fn), true
}

func (m Model) nextInstrument() string {
	ids := m.app.instruments
	if len(ids) == 0 || len(m.view.Parts) == 0 {
		return core.DefaultInstrument
	}
	current := m.view.CurrentPart().Instrument
	for i, id := range ids {
		if id == current {
			return ids[(i+1)%len(ids)]
		}
	}
	return ids[0]
}

// handleNoteKey turns a note key into a press, or extends one that is
// already held.
func (m Model) handleNoteKey(k string) (tea.Model, tea.Cmd) {
	km := keymap.New(m.view.Octave)
	pitch, ok := km.Resolve(k)
	if !ok {
		return m, nil
	}

	m.seq++
	if h, held := m.held[k]; held {
		h.seq = m.seq
		m.held[k] = h
		return m, m.release(k, m.seq, m.app.repeatHold)
	}

	m.held[k] = heldKey{pitch: pitch, seq: m.seq}
	return m, tea.Batch(
		m.do(func(e *sequencer.Engine) error {
			e.KeyDown(pitch)
			return nil
		}),
		m.release(k, m.seq, m.app.firstHold),
	)
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	// Layout: status on top, parts and activity side by side, keyboard below
	leftWidth := m.width * 65 / 100
	rightWidth := m.width - leftWidth - 2

	status := m.status.Render(m.view, m.width-2)
	keyboard := m.keyboard.Render(keymap.New(m.view.Octave), m.view.Held, m.width-2)

	middleHeight := m.height - lipgloss.Height(status) - lipgloss.Height(keyboard) - 3
	if middleHeight < 6 {
		middleHeight = 6
	}

	parts := m.partsView.Render(m.view, leftWidth-2, middleHeight, true)
	activity := m.feed.Render(m.activity, rightWidth-2, middleHeight, false)
	middle := lipgloss.JoinHorizontal(lipgloss.Top, parts, activity)

	return lipgloss.JoinVertical(lipgloss.Left, status, middle, keyboard, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	status := m.help.ShortHelpView(m.keys.ShortHelp())

	if m.lastError != nil {
		status = styles.Recording.Render("Error: " + m.lastError.Error())
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Stave - Keyboard Shortcuts"
	divider := styles.Repeat("═", len(title))

	notes := `Notes
─────
z x c v b n m    C D E F G A B   (octave)
a s d f g h j    C D E F G A B   (octave + 1)
q w e r t y u    C D E F G A B   (octave + 2)
Shift            sharp (not on E or B)`

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		divider,
		"",
		notes,
		"",
		m.help.FullHelpView(m.keys.FullHelp()),
		"",
		styles.Dim.Render("Press ? or Esc to close"),
	)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Padding(1, 2).Render(body))
}

// Run starts the TUI application
func Run(ctx context.Context, runner Runner, theme string, opts ...Option) error {
	styles.SetTheme(theme)

	changes, unsubscribe := runner.Subscribe(64)
	defer unsubscribe()

	watcher := tail.NewWatcher(runner, 0)
	go func() { _ = watcher.Start(ctx) }()
	defer watcher.Stop()

	app := NewApp(runner, changes, append(opts, WithEvents(watcher.Events()))...)
	p := tea.NewProgram(NewModel(app), tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()
	return err
}
