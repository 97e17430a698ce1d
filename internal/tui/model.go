package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/dshills/codeoverview/internal/overview"
)

// Greeting opens every conversation that has no stored history.
const Greeting = "Hello! Ask me anything about this code overview."

// DefaultDebounce is how long typing must pause before an ID is validated.
const DefaultDebounce = 400 * time.Millisecond

// Store is the document store access the front end needs.
type Store interface {
	Get(ctx context.Context, id string) (overview.Document, error)
	Exists(ctx context.Context, id string) (bool, error)
	UpdateChatHistory(ctx context.Context, id string, turns []overview.Turn) error
}

// Chatter sends a transcript to the chat endpoint.
type Chatter interface {
	Chat(ctx context.Context, id string, history []overview.Turn) (string, error)
}

type page int

const (
	pageHome page = iota
	pageOverview
)

type tab int

const (
	tabOverview tab = iota
	tabChat
)

type idStatus int

const (
	idUnknown idStatus = iota
	idChecking
	idFound
	idMissing
	idError
)

// Model is the front end state.
type Model struct {
	ctx      context.Context
	store    Store
	chat     Chatter
	debounce time.Duration

	page page
	tab  tab

	// home
	idInput  textinput.Model
	seq      int
	status   idStatus
	checked  string
	checkErr error

	// overview
	id          string
	loading     bool
	doc         overview.Document
	loadErr     error
	history     []overview.Turn
	chatInput   textinput.Model
	sending     bool
	chatErr     error
	saveErr     error
	body        viewport.Model
	spinner     spinner.Model
	renderer    *glamour.TermRenderer
	renderWidth int

	width  int
	height int
}

// Option customizes a Model.
type Option func(*Model)

// WithInitialID pre-fills the ID field, like opening a shared link.
func WithInitialID(id string) Option {
	return func(m *Model) { m.idInput.SetValue(strings.TrimSpace(id)) }
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(m *Model) { m.debounce = d }
}

// New creates the front end model.
func New(ctx context.Context, st Store, chat Chatter, opts ...Option) *Model {
	in := textinput.New()
	in.Placeholder = "Enter overview id"
	in.Prompt = "› "
	in.CharLimit = 128
	in.Focus()

	ci := textinput.New()
	ci.Placeholder = "Ask a question..."
	ci.Prompt = "› "

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := &Model{
		ctx:       ctx,
		store:     st,
		chat:      chat,
		debounce:  DefaultDebounce,
		idInput:   in,
		chatInput: ci,
		spinner:   sp,
		body:      viewport.New(80, 18),
		width:     80,
		height:    24,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run starts the full-screen front end and blocks until the user quits.
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if id := m.idInput.Value(); id != "" {
		cmds = append(cmds, m.startCheck(id))
	}
	return tea.Batch(cmds...)
}

func (m *Model) busy() bool {
	return m.status == idChecking || m.loading || m.sending
}

func (m *Model) startCheck(id string) tea.Cmd {
	m.seq++
	m.checkErr = nil
	if strings.TrimSpace(id) == "" {
		m.status = idUnknown
		return nil
	}
	m.status = idUnknown
	return scheduleCheck(m.seq, id, m.debounce)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case checkIDMsg:
		if msg.seq != m.seq || msg.id != m.idInput.Value() {
			return m, nil
		}
		m.status = idChecking
		return m, tea.Batch(checkExists(m.ctx, m.store, msg.id), m.spinner.Tick)

	case idCheckedMsg:
		if msg.id != m.idInput.Value() {
			return m, nil
		}
		m.checked = msg.id
		switch {
		case msg.err != nil:
			m.status = idError
			m.checkErr = msg.err
		case msg.exists:
			m.status = idFound
		default:
			m.status = idMissing
		}
		return m, nil

	case overviewLoadedMsg:
		if msg.id != m.id {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.loadErr = msg.err
			m.refreshBody()
			return m, nil
		}
		m.doc = msg.doc
		m.history = msg.doc.ChatHistory
		if len(m.history) == 0 {
			m.history = []overview.Turn{{User: overview.SpeakerAI, Text: Greeting}}
		}
		m.refreshBody()
		return m, nil

	case chatReplyMsg:
		if msg.id != m.id {
			return m, nil
		}
		m.sending = false
		m.saveErr = msg.saveErr
		if msg.err != nil {
			m.chatErr = msg.err
		} else {
			m.history = overview.Append(m.history, overview.Turn{User: overview.SpeakerAI, Text: msg.reply})
		}
		m.refreshBody()
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.loading || m.sending {
			m.refreshBody()
		}
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.page == pageHome {
		return m.handleHomeKey(msg)
	}
	return m.handleOverviewKey(msg)
}

func (m *Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "enter":
		id := strings.TrimSpace(m.idInput.Value())
		if id == "" || m.status != idFound || m.checked != m.idInput.Value() {
			return m, nil
		}
		return m, m.open(id)
	}

	before := m.idInput.Value()
	var cmd tea.Cmd
	m.idInput, cmd = m.idInput.Update(msg)
	if m.idInput.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.startCheck(m.idInput.Value()))
}

// open switches to the overview page and fetches the document once.
func (m *Model) open(id string) tea.Cmd {
	m.page = pageOverview
	m.tab = tabOverview
	m.idInput.Blur()
	m.chatInput.Blur()

	if m.id == id && (m.loading || (m.loadErr == nil && m.doc.ID != "")) {
		m.refreshBody()
		return nil
	}
	m.id = id
	m.doc = overview.Document{}
	m.history = nil
	m.loadErr = nil
	m.chatErr = nil
	m.saveErr = nil
	m.loading = true
	m.refreshBody()
	return tea.Batch(loadOverview(m.ctx, m.store, id), m.spinner.Tick)
}

// goHome returns to the ID prompt. The last opened overview stays loaded so
// reopening it does not fetch it again.
func (m *Model) goHome() {
	m.page = pageHome
	m.tab = tabOverview
	m.status = idUnknown
	m.checked = ""
	m.seq++
	m.idInput.SetValue("")
	m.idInput.Focus()
	m.chatInput.SetValue("")
	m.chatInput.Blur()
}

func (m *Model) handleOverviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.goHome()
		return m, textinput.Blink
	case "tab", "shift+tab":
		if m.tab == tabOverview {
			m.tab = tabChat
			m.chatInput.Focus()
		} else {
			m.tab = tabOverview
			m.chatInput.Blur()
		}
		m.refreshBody()
		return m, nil
	case "pgup", "pgdown", "up", "down":
		var cmd tea.Cmd
		m.body, cmd = m.body.Update(msg)
		return m, cmd
	}

	if m.tab != tabChat {
		return m, nil
	}
	if msg.String() == "enter" {
		return m, m.send()
	}
	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

// send appends the user's message and starts the round trip to the chat
// endpoint. Nothing is sent while a reply is pending or before the
// transcript has loaded.
func (m *Model) send() tea.Cmd {
	text := strings.TrimSpace(m.chatInput.Value())
	if text == "" || m.sending || m.loading || m.loadErr != nil {
		return nil
	}
	m.history = overview.Append(m.history, overview.Turn{User: overview.SpeakerHuman, Text: text})
	m.chatInput.SetValue("")
	m.sending = true
	m.chatErr = nil
	m.refreshBody()

	snapshot := append([]overview.Turn(nil), m.history...)
	return tea.Batch(sendChat(m.ctx, m.store, m.chat, m.id, snapshot), m.spinner.Tick)
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.body.Width = w
	m.body.Height = max(h-8, 3)
	m.idInput.Width = min(w-4, 60)
	m.chatInput.Width = max(w-4, 10)
	m.refreshBody()
}
