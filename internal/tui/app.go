package tui

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/cnpjlookup/internal/lookup"
	"github.com/jask/cnpjlookup/internal/registryid"
	"github.com/jask/cnpjlookup/internal/session"
)

//go:generate mockgen -source=app.go -destination=mocks/mocks.go -package=mocks Lookuper

// Lookuper fetches one registry record.
type Lookuper interface {
	Lookup(ctx context.Context, id registryid.ID) (lookup.Record, error)
}

// TransitionRecorder counts state changes.
type TransitionRecorder interface {
	IncrementTransition(state string)
}

// App is the interactive lookup form.
type App struct {
	ctx      context.Context
	client   Lookuper
	session  *session.Controller
	input    textinput.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	styles   Styles
	width    int
	logger   *slog.Logger
	recorder TransitionRecorder

	// cancels the context of the in-flight lookup
	cancel context.CancelFunc
}

// Option configures an App.
type Option func(*App)

func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

func WithTransitionRecorder(r TransitionRecorder) Option {
	return func(a *App) { a.recorder = r }
}

func WithStyles(st Styles) Option {
	return func(a *App) { a.styles = st }
}

// New builds the form. Lookups run with contexts derived from ctx.
func New(ctx context.Context, client Lookuper, opts ...Option) *App {
	inp := textinput.New()
	inp.Placeholder = "00.000.000/0000-00"
	inp.Prompt = "CNPJ > "
	inp.CharLimit = 18
	inp.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorBlue)

	a := &App{
		ctx:     ctx,
		client:  client,
		input:   inp,
		spinner: sp,
		help:    help.New(),
		keys:    defaultKeys(),
		styles:  DefaultStyles(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.session = session.New(session.WithObserver(a.observe))
	return a
}

// Snapshot exposes the controller state, mostly for tests.
func (a *App) Snapshot() session.Snapshot {
	return a.session.Snapshot()
}

func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
		a.help.Width = m.Width
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(m)
	case lookupResolvedMsg:
		a.resolve(session.Resolution(m))
		return a, nil
	case spinner.TickMsg:
		if a.session.State() != session.Loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(m)
		return a, cmd
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Quit):
		a.cancelInFlight()
		return a, tea.Quit
	case key.Matches(m, a.keys.Clear):
		a.clear()
		return a, nil
	case m.Type == tea.KeyEnter:
		// enter never reaches the text field, even while submit is disabled
		return a, a.submit()
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(m)
	if formatted := a.session.Keystroke(a.input.Value()); formatted != a.input.Value() {
		a.input.SetValue(formatted)
		a.input.CursorEnd()
	}
	return a, cmd
}

// submit asks the controller for a request and, if one is granted, starts the
// lookup. A second submit while loading is refused by the controller.
func (a *App) submit() tea.Cmd {
	req, ok := a.session.Submit()
	a.syncKeys()
	if !ok {
		return nil
	}
	ctx, cancel := context.WithCancel(a.ctx)
	a.cancel = cancel
	a.logger.Debug("lookup dispatched", slog.String("token", req.Token), slog.String("cnpj", string(req.ID)))
	return tea.Batch(a.lookupCmd(ctx, req), a.spinner.Tick)
}

func (a *App) lookupCmd(ctx context.Context, req session.Request) tea.Cmd {
	return func() tea.Msg {
		rec, err := a.client.Lookup(ctx, req.ID)
		return lookupResolvedMsg(session.Resolution{Request: req, Record: rec, Err: err})
	}
}

func (a *App) resolve(res session.Resolution) {
	if !a.session.Resolve(res) {
		a.logger.Debug("stale lookup result discarded", slog.String("token", res.Token), slog.String("cnpj", string(res.ID)))
		return
	}
	a.cancelInFlight()
	a.syncKeys()
}

func (a *App) clear() {
	a.cancelInFlight()
	a.session.Clear()
	a.input.SetValue("")
	a.syncKeys()
}

func (a *App) cancelInFlight() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

func (a *App) syncKeys() {
	a.keys.Submit.SetEnabled(a.session.CanSubmit())
}

func (a *App) observe(from, to session.State) {
	a.logger.Debug("state transition", slog.String("from", from.String()), slog.String("to", to.String()))
	if a.recorder != nil {
		a.recorder.IncrementTransition(to.String())
	}
}

func (a *App) View() string {
	snap := a.session.Snapshot()
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("CNPJ Lookup"))
	b.WriteString("\n")
	b.WriteString(a.styles.Subtitle.Render("Query company data by CNPJ"))
	b.WriteString("\n\n")
	b.WriteString(a.input.View())
	b.WriteString("\n")
	if snap.State == session.Loading {
		b.WriteString(a.spinner.View() + " ")
	}
	if line := statusLine(snap); line != "" {
		b.WriteString(a.styles.Hint.Render(line))
	}
	b.WriteString("\n")
	if out := Render(snap, a.styles); out != "" && snap.State != session.Loading {
		body := a.styles.Panel.Render(out)
		if a.width > 0 {
			body = lipgloss.NewStyle().MaxWidth(a.width).Render(body)
		}
		b.WriteString(body)
		b.WriteString("\n")
	}
	b.WriteString(a.help.View(a.keys))
	return b.String()
}

type lookupResolvedMsg session.Resolution
