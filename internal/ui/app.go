package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/promptgram/promptgram/internal/config"
	"github.com/promptgram/promptgram/internal/domain"
	"github.com/promptgram/promptgram/internal/state"
	"github.com/promptgram/promptgram/internal/telegram"
)

type screen int

const (
	screenLogin screen = iota
	screenPicker
	screenComposer
)

type focusTarget int

const (
	focusChatList focusTarget = iota
	focusMessages
)

const chatListWidth = 36

// ClientFactory builds the API-facing client once the gateway has a live
// handle. Injected so tests can substitute a fake.
type ClientFactory func(h *telegram.Handle) telegram.Client

// Model is the root Bubble Tea model.
type Model struct {
	login       LoginModel
	chatList    ChatListModel
	messageView MessageViewModel
	composer    ComposerModel
	status      statusModel
	splash      SplashModel
	help        HelpModel

	cfg       *config.Config
	cfgPath   string
	gateway   *telegram.Gateway
	flow      *telegram.LoginFlow
	newClient ClientFactory
	client    telegram.Client
	pager     *state.Pager
	selection *state.Selection
	logger    *zap.Logger

	screen screen
	focus  focusTarget
	target domain.Chat
	width  int
	height int
}

// NewModel creates the root model with all sub-components.
func NewModel(cfg *config.Config, cfgPath string, gw *telegram.Gateway, flow *telegram.LoginFlow, newClient ClientFactory, logger *zap.Logger) Model {
	selection := state.NewSelection()

	return Model{
		login:       NewLoginModel(),
		chatList:    NewChatListModel(),
		messageView: NewMessageViewModel(selection),
		composer:    NewComposerModel(selection),
		status:      newStatusModel(),
		splash:      NewSplashModel(),
		help:        NewHelpModel(),
		cfg:         cfg,
		cfgPath:     cfgPath,
		gateway:     gw,
		flow:        flow,
		newClient:   newClient,
		pager:       state.NewPager(state.DefaultPageSize),
		selection:   selection,
		logger:      logger,
		screen:      screenLogin,
		focus:       focusChatList,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.connectCmd(),
		tea.Tick(2*time.Second, func(time.Time) tea.Msg { return SplashDoneMsg{} }),
	)
}

func (m Model) connectCmd() tea.Cmd {
	gw := m.gateway
	return func() tea.Msg {
		h, err := gw.Session(context.Background())
		if err != nil {
			return SessionErrorMsg{
				Err:           err,
				NoCredentials: errors.Is(err, config.ErrNoCredentials),
			}
		}
		return SessionReadyMsg{Authorized: h.Authorized()}
	}
}

func (m Model) loadSelfCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		self, err := client.Self(context.Background())
		if err != nil {
			return StatusMsg{Text: fmt.Sprintf("whoami: %v", err), Connected: true}
		}
		return SelfLoadedMsg{Self: self}
	}
}

func (m Model) loadChatsCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		chats, err := client.ListChats(context.Background())
		return ChatsLoadedMsg{Chats: chats, Err: err}
	}
}

func (m Model) fetchPageCmd(chat domain.Chat, topic, beforeID int) tea.Cmd {
	client := m.client
	limit := m.pager.PageSize()
	older := beforeID != 0
	return func() tea.Msg {
		page, err := client.FetchPage(context.Background(), telegram.PageRequest{
			Chat:     chat,
			TopicID:  topic,
			BeforeID: beforeID,
			Limit:    limit,
		})
		if older {
			return OlderPageLoadedMsg{ChatID: chat.ID, Topic: topic, Page: page, Err: err}
		}
		return PageLoadedMsg{ChatID: chat.ID, Topic: topic, Page: page, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m.distributeSize(), nil

	case SplashDoneMsg:
		m.splash = m.splash.TimerDone()
		return m, nil

	case SessionReadyMsg:
		m.splash = m.splash.ConnReady()
		if !msg.Authorized {
			m.status.text = "Login required"
			m.screen = screenLogin
			var cmd tea.Cmd
			m.login, cmd = m.login.SetStage(domain.AuthStatePhone)
			return m, cmd
		}
		return m.enterAuthorized()

	case SessionErrorMsg:
		m.splash = m.splash.ConnReady()
		m.screen = screenLogin
		if msg.NoCredentials {
			m.login = m.login.Prefill(m.cfg.Telegram.APIID, m.cfg.Telegram.APIHash)
			var cmd tea.Cmd
			m.login, cmd = m.login.SetStage(domain.AuthStateCredentials)
			return m, cmd
		}
		m.status.text = "Connection failed"
		m.status.connected = false
		m.login = m.login.SetError(msg.Err)
		return m, nil

	case CredentialsSubmittedMsg:
		m.cfg.Telegram.APIID = msg.APIID
		m.cfg.Telegram.APIHash = msg.APIHash
		m.login = m.login.SetBusy(true)
		cfg, path := m.cfg, m.cfgPath
		return m, func() tea.Msg {
			return CredentialsSavedMsg{Err: config.Save(path, cfg)}
		}

	case CredentialsSavedMsg:
		m.login = m.login.SetBusy(false)
		if msg.Err != nil {
			m.login = m.login.SetError(msg.Err)
			return m, nil
		}
		// Credentials in hand: dial, then ask for the phone number.
		var cmd tea.Cmd
		m.login, cmd = m.login.SetStage(domain.AuthStatePhone)
		return m, tea.Batch(cmd, m.connectCmd())

	case PhoneSubmittedMsg:
		m.login = m.login.SetBusy(true)
		gw, phone := m.gateway, msg.Phone
		return m, func() tea.Msg {
			return LoginFinishedMsg{Err: gw.Login(context.Background(), phone)}
		}

	case CodeRequestedMsg:
		var cmd tea.Cmd
		m.login, cmd = m.login.SetStage(domain.AuthStateCode)
		m.login = m.login.SetBusy(false)
		return m, cmd

	case PasswordRequestedMsg:
		var cmd tea.Cmd
		m.login, cmd = m.login.SetStage(domain.AuthStatePassword)
		m.login = m.login.SetBusy(false)
		return m, cmd

	case CodeSubmittedMsg:
		m.login = m.login.SetBusy(true)
		if err := m.flow.SubmitCode(msg.Code); err != nil {
			m.login = m.login.SetBusy(false)
			m.login = m.login.SetError(err)
		}
		return m, nil

	case PasswordSubmittedMsg:
		m.login = m.login.SetBusy(true)
		if err := m.flow.SubmitPassword(msg.Password); err != nil {
			m.login = m.login.SetBusy(false)
			m.login = m.login.SetError(err)
		}
		return m, nil

	case LoginFinishedMsg:
		m.login = m.login.SetBusy(false)
		if msg.Err != nil {
			m.logger.Warn("login failed", zap.Error(msg.Err))
			m.login = m.login.SetError(msg.Err)
			// gotd aborts the whole handshake on a failed challenge, so
			// the phone stage is the only point a retry can re-enter.
			var cmd tea.Cmd
			m.login, cmd = m.login.SetStage(domain.AuthStatePhone)
			return m, cmd
		}
		return m.enterAuthorized()

	case SelfLoadedMsg:
		if msg.Self != nil {
			name := msg.Self.FirstName
			if name == "" {
				name = msg.Self.Username
			}
			m.status = m.status.SetUserName(name)
		}
		return m, nil

	case ChatsLoadedMsg:
		if msg.Err != nil {
			m.status.text = fmt.Sprintf("Chats: %v", msg.Err)
			return m, nil
		}
		m.chatList = m.chatList.WithChats(msg.Chats)
		m.status.text = "Connected"
		m.status.connected = true
		return m, nil

	case TargetSelectedMsg:
		m.target = msg.Chat
		m.pager.Reset(msg.Chat.ID, msg.Topic)
		title := msg.Chat.Title
		if msg.Topic != 0 {
			for _, t := range msg.Chat.Topics {
				if t.ID == msg.Topic {
					title = fmt.Sprintf("%s # %s", msg.Chat.Title, t.Title)
					break
				}
			}
		}
		m.status = m.status.SetTarget(title)
		m.messageView = m.messageView.SetTitle(title)
		m.messageView = m.messageView.SetMessages(nil, true)
		m.messageView = m.messageView.SetLoading(true)
		m.focus = focusMessages
		m = m.updateFocus()
		return m, m.fetchPageCmd(msg.Chat, msg.Topic, 0)

	case PageLoadedMsg:
		if msg.ChatID != m.pager.ChatID() || msg.Topic != m.pager.TopicID() {
			return m, nil
		}
		m.messageView = m.messageView.SetLoading(false)
		if msg.Err != nil {
			m.status.text = fmt.Sprintf("History: %v", msg.Err)
			return m, nil
		}
		m.pager.SetInitial(msg.Page)
		m.messageView = m.messageView.SetMessages(m.pager.Messages(), m.pager.MayHaveMore())
		return m, nil

	case LoadOlderMsg:
		if !m.pager.BeginFetch() {
			return m, nil
		}
		m.messageView = m.messageView.SetLoading(true)
		return m, m.fetchPageCmd(m.target, m.pager.TopicID(), m.pager.OldestID())

	case OlderPageLoadedMsg:
		if msg.ChatID != m.pager.ChatID() || msg.Topic != m.pager.TopicID() {
			m.pager.EndFetch()
			return m, nil
		}
		m.messageView = m.messageView.SetLoading(false)
		if msg.Err != nil {
			m.pager.EndFetch()
			m.status.text = fmt.Sprintf("History: %v", msg.Err)
			return m, nil
		}
		added := m.pager.Merge(msg.Page)
		m.messageView = m.messageView.Prepend(m.pager.Messages(), added, m.pager.MayHaveMore())
		return m, nil

	case ContinueMsg:
		return m.enterComposer()

	case BackToPickerMsg:
		// The composer's working set is authoritative: mirror it back
		// into the live selection so the picker checkmarks agree.
		m.selection.Clear()
		for _, message := range m.composer.Selection().Messages() {
			m.selection.Toggle(message)
		}
		m.status = m.status.SetSelected(m.selection.Len())
		m.messageView = m.messageView.SetMessages(m.pager.Messages(), m.pager.MayHaveMore())
		m.screen = screenPicker
		return m, nil

	case CopiedMsg:
		if msg.Err != nil {
			m.composer = m.composer.SetNotice(fmt.Sprintf("copy failed: %v", msg.Err))
		} else {
			m.composer = m.composer.SetNotice("Copied to clipboard")
		}
		return m, nil

	case LogoutMsg:
		if msg.Err != nil {
			m.status.text = fmt.Sprintf("Logout: %v", msg.Err)
			return m, nil
		}
		m.client = nil
		m.selection.Clear()
		m.pager.Reset(0, 0)
		m.chatList = m.chatList.WithChats(nil)
		m.status = newStatusModel()
		m.status.text = "Logged out"
		m.screen = screenLogin
		var cmd tea.Cmd
		m.login, cmd = m.login.SetStage(domain.AuthStatePhone)
		return m, cmd

	case StatusMsg:
		m.status.text = msg.Text
		m.status.connected = msg.Connected
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.splash.IsVisible() {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}

	if m.help.IsVisible() {
		switch msg.String() {
		case "?", "f1", "esc", "ctrl+c":
			m.help = m.help.Toggle()
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "f1":
		m.help = m.help.Toggle()
		return m, nil
	case "?":
		if !m.typing() {
			m.help = m.help.Toggle()
			return m, nil
		}
	case "ctrl+l":
		if m.screen != screenLogin {
			gw := m.gateway
			return m, func() tea.Msg {
				return LogoutMsg{Err: gw.Logout(context.Background())}
			}
		}
	}

	switch m.screen {
	case screenLogin:
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd

	case screenComposer:
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd

	case screenPicker:
		switch msg.String() {
		case "tab", "shift+tab":
			if m.focus == focusChatList {
				m.focus = focusMessages
			} else {
				m.focus = focusChatList
			}
			return m.updateFocus(), nil
		case "esc":
			if m.focus == focusMessages && !m.messageView.Searching() {
				m.focus = focusChatList
				return m.updateFocus(), nil
			}
		}

		var cmd tea.Cmd
		if m.focus == focusChatList {
			m.chatList, cmd = m.chatList.Update(msg)
		} else {
			m.messageView, cmd = m.messageView.Update(msg)
			m.status = m.status.SetSelected(m.selection.Len())
		}
		return m, cmd
	}

	return m, nil
}

// typing reports whether a text input currently owns the keyboard.
func (m Model) typing() bool {
	switch m.screen {
	case screenLogin:
		return true
	case screenComposer:
		return false
	default:
		return m.chatList.Filtering() || m.messageView.Searching()
	}
}

// enterAuthorized builds the client off the live handle and loads the
// initial data. The gateway memoizes, so Session here is instant.
func (m Model) enterAuthorized() (tea.Model, tea.Cmd) {
	h, err := m.gateway.Session(context.Background())
	if err != nil {
		m.login = m.login.SetError(err)
		return m, nil
	}
	m.client = m.newClient(h)
	m.screen = screenPicker
	m.focus = focusChatList
	m = m.updateFocus()
	m.status.text = "Loading chats..."
	m.status.connected = true
	return m, tea.Batch(m.loadSelfCmd(), m.loadChatsCmd())
}

// enterComposer parks the selection in the handoff file and reloads it,
// so the composer works off the persisted copy.
func (m Model) enterComposer() (tea.Model, tea.Cmd) {
	handoff := config.HandoffFile()
	if err := m.selection.Save(handoff); err != nil {
		m.status.text = fmt.Sprintf("Handoff: %v", err)
		return m, nil
	}
	sel, err := state.LoadSelection(handoff)
	if err != nil {
		m.logger.Warn("handoff reload failed", zap.Error(err))
		sel = m.selection
	}
	m.composer = m.composer.SetSelection(sel)
	m.composer = m.composer.SetSize(m.width, m.height-1)
	m.screen = screenComposer
	return m, nil
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	var content string
	switch m.screen {
	case screenLogin:
		content = m.login.View()
	case screenComposer:
		content = lipgloss.JoinVertical(lipgloss.Left, m.status.View(), m.composer.View())
	default:
		panes := lipgloss.JoinHorizontal(lipgloss.Top, m.chatList.View(), m.messageView.View())
		content = lipgloss.JoinVertical(lipgloss.Left, m.status.View(), panes)
	}

	content = lipgloss.NewStyle().
		MaxWidth(m.width).
		MaxHeight(m.height).
		Render(content)

	switch {
	case m.splash.IsVisible():
		v.SetContent(m.splash.View())
	case m.help.IsVisible():
		x, y := m.help.BoxOffset()
		bg := lipgloss.NewLayer(content)
		fg := lipgloss.NewLayer(m.help.View()).X(x).Y(y).Z(1)
		comp := lipgloss.NewCompositor(bg, fg)
		v.SetContent(comp.Render())
	default:
		v.SetContent(content)
	}
	return v
}

func (m Model) distributeSize() Model {
	contentHeight := m.height - 1 // status bar row

	clWidth := chatListWidth
	if clWidth > m.width {
		clWidth = m.width
	}
	m.chatList = m.chatList.SetSize(clWidth, contentHeight)

	rightWidth := m.width - clWidth
	if rightWidth < 1 {
		rightWidth = 1
	}
	m.messageView = m.messageView.SetSize(rightWidth, contentHeight)

	m.login = m.login.SetSize(m.width, m.height)
	m.composer = m.composer.SetSize(m.width, contentHeight)
	m.splash = m.splash.SetSize(m.width, m.height)
	m.help = m.help.SetSize(m.width, m.height)
	m.status = m.status.SetWidth(m.width)

	return m
}

func (m Model) updateFocus() Model {
	m.chatList = m.chatList.SetFocused(m.focus == focusChatList)
	m.messageView = m.messageView.SetFocused(m.focus == focusMessages)
	return m
}

// App wraps the Bubble Tea program for external use.
type App struct {
	program *tea.Program
}

// NewApp creates a new App ready to Run.
func NewApp(cfg *config.Config, cfgPath string, gw *telegram.Gateway, flow *telegram.LoginFlow, newClient ClientFactory, logger *zap.Logger) *App {
	model := NewModel(cfg, cfgPath, gw, flow, newClient, logger)
	p := tea.NewProgram(model)
	return &App{program: p}
}

// Run starts the Bubble Tea event loop (blocks until quit).
func (a *App) Run() error {
	_, err := a.program.Run()
	return err
}

// Send sends a message into the Bubble Tea event loop from external goroutines.
func (a *App) Send(msg tea.Msg) {
	go a.program.Send(msg)
}
