// Package tui is the interactive chat screen: a collapsible sidebar, the
// scrolling transcript and an input line.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/longkey1/ragchat/internal/ragchat"
	"github.com/longkey1/ragchat/internal/ragchat/reveal"
	"github.com/longkey1/ragchat/internal/ragchat/stream"
	"github.com/longkey1/ragchat/internal/ragchat/transcript"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

// Chat is the client the screen drives.
type Chat interface {
	Transcript() *transcript.Store
	Start(ctx context.Context) (string, error)
	Send(ctx context.Context, query string) error
	NewChat(ctx context.Context) (string, error)
}

// Options configures the screen.
type Options struct {
	RevealInterval time.Duration
	MarkdownStyle  string
	Logger         zerolog.Logger
}

type (
	startedMsg struct {
		id  string
		err error
	}
	transcriptChangedMsg struct{}
	sendDoneMsg          struct{ err error }
	newChatDoneMsg       struct {
		id  string
		err error
	}
	revealTickMsg struct{}
)

// Model is the bubbletea model of the chat screen.
type Model struct {
	ctx    context.Context
	chat   Chat
	opts   Options
	logger zerolog.Logger
	keys   KeyMap

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	state transcript.State
	anim  reveal.Animator
	// revealing is set while the last message is being typed out.
	revealing bool
	// ticking is set while a reveal tick is scheduled.
	ticking bool

	sidebarOpen   bool
	width, height int
	status        string
	statusErr     bool
}

// New creates the chat screen. Cancelling ctx stops background waits.
func New(ctx context.Context, chat Chat, opts Options) Model {
	if opts.RevealInterval <= 0 {
		opts.RevealInterval = 20 * time.Millisecond
	}

	ti := textinput.New()
	ti.Placeholder = "Ask a question"
	ti.Prompt = "› "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	vp := viewport.New(80, 20)
	vp.KeyMap = viewport.KeyMap{}

	m := Model{
		ctx:         ctx,
		chat:        chat,
		opts:        opts,
		logger:      opts.Logger,
		keys:        DefaultKeyMap(),
		input:       ti,
		viewport:    vp,
		spinner:     sp,
		sidebarOpen: true,
		state:       chat.Transcript().Snapshot(),
	}
	m.renderer = m.newRenderer(vp.Width)
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.start(), m.waitForChange())
}

func (m Model) start() tea.Cmd {
	return func() tea.Msg {
		id, err := m.chat.Start(m.ctx)
		return startedMsg{id: id, err: err}
	}
}

func (m Model) waitForChange() tea.Cmd {
	changed := m.chat.Transcript().Changed()
	return func() tea.Msg {
		select {
		case <-changed:
			return transcriptChangedMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m Model) revealTick() tea.Cmd {
	return tea.Tick(m.opts.RevealInterval, func(time.Time) tea.Msg {
		return revealTickMsg{}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.renderer = m.newRenderer(m.viewport.Width)
		m.refresh()
		return m, nil

	case startedMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("failed to start session: %v", msg.err))
		}
		return m, nil

	case transcriptChangedMsg:
		cmds = append(cmds, m.syncTranscript(), m.waitForChange())
		return m, tea.Batch(cmds...)

	case revealTickMsg:
		m.ticking = false
		if m.revealing && m.anim.Tick() {
			m.ticking = true
			cmds = append(cmds, m.revealTick())
		}
		m.refresh()
		return m, tea.Batch(cmds...)

	case sendDoneMsg:
		switch {
		case errors.Is(msg.err, stream.ErrStreamInProgress):
			m.setStatus("wait for the current answer to finish")
		case msg.err != nil:
			m.setError(msg.err.Error())
		}
		return m, nil

	case newChatDoneMsg:
		if msg.err != nil {
			if errors.Is(msg.err, stream.ErrStreamInProgress) {
				m.setStatus("wait for the current answer to finish")
			} else {
				m.setError(fmt.Sprintf("failed to start a new chat: %v", msg.err))
			}
			return m, nil
		}
		m.setStatus("new session " + ragchat.ShortID(msg.id))
		return m, nil

	case spinner.TickMsg:
		if !m.state.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Send):
			return m, m.send()
		case key.Matches(msg, m.keys.ToggleSidebar):
			m.sidebarOpen = !m.sidebarOpen
			m.layout()
			m.renderer = m.newRenderer(m.viewport.Width)
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.NewChat):
			return m, m.newChat()
		case key.Matches(msg, m.keys.Copy):
			m.copyLastAnswer()
			return m, nil
		case key.Matches(msg, m.keys.PageUp):
			m.viewport.ViewUp()
			return m, nil
		case key.Matches(msg, m.keys.PageDown):
			m.viewport.ViewDown()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// syncTranscript pulls the latest snapshot and keeps the reveal animation
// pointed at the streaming message.
func (m *Model) syncTranscript() tea.Cmd {
	wasLoading := m.state.Loading
	m.state = m.chat.Transcript().Snapshot()

	var cmds []tea.Cmd
	if m.state.Loading && !wasLoading {
		cmds = append(cmds, m.spinner.Tick)
	}

	last, ok := m.state.Last()
	if m.state.Streaming && ok && last.IsAssistant() {
		if !m.revealing {
			m.anim.Reset()
			m.revealing = true
		}
		if m.anim.Retarget(last.Content) && !m.ticking {
			m.ticking = true
			cmds = append(cmds, m.revealTick())
		}
	} else if m.revealing {
		m.revealing = false
		m.anim.Reset()
	}

	m.refresh()
	return tea.Batch(cmds...)
}

func (m *Model) send() tea.Cmd {
	query := strings.TrimSpace(m.input.Value())
	if query == "" || m.state.Loading {
		return nil
	}
	m.input.Reset()
	m.status = ""

	chat, ctx := m.chat, m.ctx
	return func() tea.Msg {
		return sendDoneMsg{err: chat.Send(ctx, query)}
	}
}

func (m *Model) newChat() tea.Cmd {
	if m.state.Streaming {
		m.setStatus("wait for the current answer to finish")
		return nil
	}
	chat, ctx := m.chat, m.ctx
	return func() tea.Msg {
		id, err := chat.NewChat(ctx)
		return newChatDoneMsg{id: id, err: err}
	}
}

func (m *Model) copyLastAnswer() {
	answer, ok := lastAnswer(m.state.Messages)
	if !ok {
		m.setStatus("nothing to copy yet")
		return
	}
	if err := clipboardWriteAll(answer); err != nil {
		m.logger.Warn().Err(err).Msg("clipboard write failed")
		m.setError("failed to copy answer")
		return
	}
	m.setStatus("copied answer to clipboard")
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(s string) {
	m.status, m.statusErr = s, true
}

func (m *Model) newRenderer(width int) *glamour.TermRenderer {
	r, err := NewRenderer(m.opts.MarkdownStyle, width-4)
	if err != nil {
		m.logger.Warn().Err(err).Msg("markdown rendering disabled")
		return nil
	}
	return r
}

func (m Model) sidebarWidth() int {
	if m.sidebarOpen {
		return sidebarOpenWidth
	}
	return sidebarCollapsedWidth
}

// layout sizes the viewport and input to the window.
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	mainWidth := max(m.width-m.sidebarWidth(), 10)
	// status line + input box (3 rows)
	m.viewport.Width = mainWidth
	m.viewport.Height = max(m.height-4, 1)
	m.input.Width = max(mainWidth-6, 1)
}

// refresh re-renders the transcript and keeps the view pinned to the end.
func (m *Model) refresh() {
	content := renderTranscript(m.state, m.anim.Visible(), m.revealing, m.renderer, m.viewport.Width)
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.statusLine(),
		inputBoxStyle.Width(max(m.viewport.Width-2, 1)).Render(m.input.View()),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), body)
}

func (m Model) statusLine() string {
	switch {
	case m.state.Loading:
		return m.spinner.View() + faintStyle.Render(" thinking…")
	case m.statusErr:
		return errorStyle.Render(m.status)
	default:
		return faintStyle.Render(m.status)
	}
}

func (m Model) sidebarView() string {
	height := max(m.viewport.Height+4-1, 1)
	if !m.sidebarOpen {
		return sidebarStyle.Height(height).Render("☰")
	}

	lines := []string{
		titleStyle.Render("RAG News Chatbot"),
		"",
		newChatStyle.Render("+ New chat"),
		"",
	}
	if m.state.SessionID != "" {
		lines = append(lines, faintStyle.Render("session "+ragchat.ShortID(m.state.SessionID)))
	}
	lines = append(lines, "")
	for _, b := range m.keys.help() {
		h := b.Help()
		lines = append(lines, faintStyle.Render(fmt.Sprintf("%-7s %s", h.Key, h.Desc)))
	}
	return sidebarStyle.
		Width(sidebarOpenWidth - 3).
		Height(height).
		Render(strings.Join(lines, "\n"))
}
