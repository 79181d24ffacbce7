// internal/tui/app.go
//
// This is the main TUI for thoughtline. It uses bubbletea, which follows The
// Elm Architecture:
//
// 1. Model: the open threads, their transcripts and the translator
// 2. Update: bridge events, wake-ups and key presses change the model
// 3. View: tabs, the active transcript, the log panel and a status line
//
// Bridge events arrive through a channel-listening command. Translation tasks
// run off the loop and signal the wake channel; every wakeMsg calls
// Translator.Tick so results are placed in transcript order.

package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/thoughtline/internal/config"
	"github.com/kingrea/thoughtline/internal/eventbridge"
	"github.com/kingrea/thoughtline/internal/history"
	"github.com/kingrea/thoughtline/internal/logbook"
	"github.com/kingrea/thoughtline/internal/reasoning"
	"github.com/kingrea/thoughtline/internal/translation"
)

const (
	logPanelLines = 5
	// chrome is the number of rows used by everything but the transcript.
	chrome = logPanelLines + 9
)

type wakeMsg struct{}

type eventMsg struct {
	event eventbridge.Event
}

type bridgeClosedMsg struct{}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithRouter subscribes the app to every thread on router.
func WithRouter(router *eventbridge.Router) AppOption {
	return func(a *App) {
		a.router = router
	}
}

// WithBridgeURL sets the bridge address shown in the status line.
func WithBridgeURL(url string) AppOption {
	return func(a *App) {
		a.bridgeURL = url
	}
}

// WithService overrides the translation service built from the config.
func WithService(svc *translation.Service) AppOption {
	return func(a *App) {
		if svc != nil {
			a.service = svc
			a.enricher = svc
		}
	}
}

// WithEnricher bypasses the translation service entirely.
func WithEnricher(e reasoning.Enricher) AppOption {
	return func(a *App) {
		if e != nil {
			a.enricher = e
		}
	}
}

// WithLogger routes translator diagnostics to l.
func WithLogger(l reasoning.Logger) AppOption {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithTranslatorOptions passes extra options to the translator.
func WithTranslatorOptions(opts ...reasoning.Option) AppOption {
	return func(a *App) {
		a.translatorOpts = append(a.translatorOpts, opts...)
	}
}

// App is the main application model.
type App struct {
	config     *config.Config
	service    *translation.Service
	enricher   reasoning.Enricher
	translator *reasoning.Translator
	logbook    *logbook.Logbook
	logger     reasoning.Logger
	wake       *waker

	translatorOpts []reasoning.Option

	router    *eventbridge.Router
	sub       eventbridge.Subscription
	bridgeURL string

	threads     []string
	transcripts map[string][]history.Cell
	active      int

	viewport  viewport.Model
	statusMsg string
	width     int
	height    int
}

// NewApp creates a new App for the project described by cfg.
func NewApp(cfg *config.Config, opts ...AppOption) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("tui: config is required")
	}
	a := &App{
		config:      cfg,
		wake:        newWaker(),
		transcripts: map[string][]history.Cell{},
		viewport:    viewport.New(80, 20),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	lb, err := logbook.ForLogsDir(cfg.LogsDir())
	if err == nil {
		a.logbook = lb
	}

	settings := translation.SettingsFromConfig(cfg)
	if a.enricher == nil {
		a.service = translation.NewService(context.Background(), settings)
		a.enricher = a.service
	}
	topts := []reasoning.Option{reasoning.WithWaker(a.wake)}
	if a.logger != nil {
		topts = append(topts, reasoning.WithLogger(a.logger))
	}
	topts = append(topts, a.translatorOpts...)
	a.translator = reasoning.New(settings.ReasoningConfig(), a.enricher, reasoning.SinkFunc(a.insert), topts...)

	if a.router != nil {
		a.sub = a.router.Subscribe(eventbridge.AllThreads)
	}
	a.logInfo("Session opened · translation %s", onOff(settings.Enabled))
	if a.service != nil && settings.Enabled {
		if err := a.service.Err(); err != nil {
			a.logWarn("Translation unavailable: %v", err)
		}
	}
	return a, nil
}

// Close stops the translator and releases the bridge subscription.
func (a *App) Close() {
	a.translator.Close()
	a.sub.Close()
	a.logInfo("Session closed")
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.wake.wait()}
	if a.router != nil {
		cmds = append(cmds, a.waitForEvent())
	}
	return tea.Batch(cmds...)
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.viewport.Width = max(20, msg.Width-4)
		a.viewport.Height = max(3, msg.Height-chrome)
		a.refresh()
		return a, nil

	case wakeMsg:
		if a.translator.Tick(a.activeThread()) {
			a.refresh()
		}
		return a, a.wake.wait()

	case eventMsg:
		a.handleEvent(msg.event)
		return a, a.waitForEvent()

	case bridgeClosedMsg:
		a.statusMsg = "Event bridge closed"
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return a, tea.Quit
		case "tab":
			a.switchThread(1)
			return a, nil
		case "shift+tab":
			a.switchThread(-1)
			return a, nil
		case "t":
			a.toggleTranslation()
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a *App) handleEvent(evt eventbridge.Event) {
	cell, ok := history.FromEvent(evt)
	if !ok {
		return
	}
	thread := evt.ThreadID
	a.ensureThread(thread)
	switch evt.Type {
	case eventbridge.TypeSessionStart:
		a.logInfo("Thread %s started", thread)
	case eventbridge.TypeSessionEnd:
		a.logInfo("Thread %s ended", thread)
	case eventbridge.TypeError:
		a.logError("Thread %s: %s", thread, evt.Text())
	}
	if thread == a.activeThread() {
		a.translator.Intercept(cell, thread)
	} else {
		a.translator.Emit(cell)
	}
	a.refresh()
}

// insert is the translator's sink. Every item lands in its own thread.
func (a *App) insert(item reasoning.Item) {
	cell, ok := history.FromItem(item)
	if !ok {
		return
	}
	if failure, ok := cell.(history.TranslationErrorCell); ok {
		a.logWarn("%s", failure.Summary())
	}
	thread := cell.ThreadID()
	a.ensureThread(thread)
	a.transcripts[thread] = append(a.transcripts[thread], cell)
}

func (a *App) ensureThread(thread string) {
	if _, ok := a.transcripts[thread]; ok {
		return
	}
	a.transcripts[thread] = nil
	a.threads = append(a.threads, thread)
}

func (a *App) activeThread() string {
	if a.active < 0 || a.active >= len(a.threads) {
		return ""
	}
	return a.threads[a.active]
}

func (a *App) switchThread(delta int) {
	if len(a.threads) < 2 {
		return
	}
	a.active = (a.active + delta + len(a.threads)) % len(a.threads)
	a.refresh()
	a.viewport.GotoBottom()
}

func (a *App) toggleTranslation() {
	enabled := !a.translator.Enabled()
	if err := a.config.SetTranslationEnabled(enabled); err != nil {
		a.statusMsg = fmt.Sprintf("Failed to save config: %v", err)
		a.logError("Save config: %v", err)
	}
	settings := translation.SettingsFromConfig(a.config)
	settings.Enabled = enabled
	if a.service != nil {
		a.service.Reconfigure(context.Background(), settings)
	}
	a.translator.UpdateConfig(settings.ReasoningConfig())
	a.statusMsg = fmt.Sprintf("Translation %s", onOff(enabled))
	a.logInfo("Translation %s", onOff(enabled))
	if enabled && a.service != nil {
		if err := a.service.Err(); err != nil {
			a.statusMsg = fmt.Sprintf("Translation on · %v", err)
		}
	}
}

// refresh re-renders the active transcript, following the tail when the
// viewport was already at the bottom.
func (a *App) refresh() {
	follow := a.viewport.AtBottom()
	cells := a.transcripts[a.activeThread()]
	parts := make([]string, 0, len(cells))
	for _, cell := range cells {
		parts = append(parts, cell.Render(a.viewport.Width))
	}
	a.viewport.SetContent(strings.Join(parts, "\n\n"))
	if follow {
		a.viewport.GotoBottom()
	}
}

func (a *App) waitForEvent() tea.Cmd {
	events := a.sub.Events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		evt, ok := <-events
		if !ok {
			return bridgeClosedMsg{}
		}
		return eventMsg{event: evt}
	}
}

// View renders the current state.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		Render("◆ THOUGHTLINE")
	body := a.viewport.View()
	if len(a.threads) == 0 {
		body = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Render(fmt.Sprintf("Waiting for agents. POST events to %s/events", a.bridgeLabel()))
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, width-2)).
		Render(body)
	sections := []string{header, a.renderTabs(), box}
	if logPanel := a.renderLogPanel(width); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, a.renderStatusLine())
	return strings.Join(sections, "\n")
}

func (a *App) renderTabs() string {
	if len(a.threads) == 0 {
		return ""
	}
	active := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#5B8DEF")).
		Padding(0, 1)
	idle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Padding(0, 1)
	tabs := make([]string, 0, len(a.threads))
	for idx, thread := range a.threads {
		if idx == a.active {
			tabs = append(tabs, active.Render(thread))
			continue
		}
		tabs = append(tabs, idle.Render(thread))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (a *App) renderLogPanel(width int) string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(logPanelLines)
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s (%d)", filepath.Base(a.logbook.Path()), total))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, width-2)).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) renderStatusLine() string {
	cfg := a.translator.Config()
	parts := []string{"bridge " + a.bridgeLabel()}
	if cfg.Enabled {
		provider := "custom"
		if a.service != nil {
			provider = string(a.service.Settings().Provider)
		}
		parts = append(parts, fmt.Sprintf("translation on (%s → %s)", provider, cfg.TargetLanguage))
	} else {
		parts = append(parts, "translation off")
	}
	if p, ok := a.translator.Pending(); ok {
		left := time.Until(p.Deadline).Round(time.Second)
		if left < 0 {
			left = 0
		}
		label := p.Title
		if label == "" {
			label = "reasoning"
		}
		parts = append(parts, fmt.Sprintf("translating %q (%s left, %d queued)", label, left, a.translator.Deferred()))
	}
	if a.statusMsg != "" {
		parts = append(parts, a.statusMsg)
	}
	hint := "tab/shift+tab thread · t translate · q quit"
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Render(strings.Join(parts, " · ") + "\n" + hint)
}

func (a *App) bridgeLabel() string {
	if a.bridgeURL == "" {
		return "off"
	}
	return a.bridgeURL
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
