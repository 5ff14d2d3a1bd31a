package ui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"

	"github.com/promptgram/promptgram/internal/domain"
	"github.com/promptgram/promptgram/internal/state"
)

// MessageViewModel displays the active target's history oldest-first and
// lets the user move a cursor, toggle message selection and filter by
// text. Scrolling to the top triggers backward pagination.
type MessageViewModel struct {
	viewport  viewport.Model
	renderer  *glamour.TermRenderer
	search    textinput.Model
	searching bool

	selection *state.Selection

	focused bool
	width   int
	height  int
	title   string
	loading bool
	hasMore bool

	messages []domain.Message
	visible  []int // indices into messages after the search filter
	starts   []int // first content line of each visible message
	cursor   int   // index into visible
}

func NewMessageViewModel(selection *state.Selection) MessageViewModel {
	vp := viewport.New()
	search := textinput.New()
	search.Placeholder = "search messages"
	search.Prompt = "/"
	return MessageViewModel{
		viewport:  vp,
		search:    search,
		selection: selection,
		hasMore:   true,
	}
}

// Searching reports whether the search input is capturing keys.
func (m MessageViewModel) Searching() bool { return m.searching }

func (m MessageViewModel) Update(msg tea.Msg) (MessageViewModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.searching {
		switch keyMsg.String() {
		case "enter", "esc":
			if keyMsg.String() == "esc" {
				m.search.SetValue("")
			}
			m.searching = false
			m.search.Blur()
			m = m.applyFilter()
			return m, nil
		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m = m.applyFilter()
			return m, cmd
		}
	}

	switch keyMsg.String() {
	case "j", "down":
		m = m.moveCursor(1)
		return m, nil
	case "k", "up":
		m = m.moveCursor(-1)
		return m, m.maybeLoadOlder()
	case "g":
		m = m.setCursor(0)
		return m, m.maybeLoadOlder()
	case "G":
		m = m.setCursor(len(m.visible) - 1)
		return m, nil
	case "pgup":
		m.viewport.ScrollUp(m.viewport.Height())
		return m, m.maybeLoadOlder()
	case "pgdown":
		m.viewport.ScrollDown(m.viewport.Height())
		return m, nil
	case "space", " ":
		if i, ok := m.cursorMessage(); ok {
			m.selection.Toggle(m.messages[i])
			m = m.renderKeepOffset()
		}
		return m, nil
	case "c":
		if m.selection.Len() > 0 {
			return m, func() tea.Msg { return ContinueMsg{} }
		}
		return m, nil
	case "/":
		m.searching = true
		return m, m.search.Focus()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// maybeLoadOlder asks for an older page once the cursor sits on the first
// loaded message. Suppressed while a search filter is active: merging
// under a filtered view would scramble the anchor math.
func (m MessageViewModel) maybeLoadOlder() tea.Cmd {
	if m.cursor == 0 && m.viewport.YOffset() == 0 &&
		!m.loading && m.hasMore && len(m.messages) > 0 && m.search.Value() == "" {
		return func() tea.Msg { return LoadOlderMsg{} }
	}
	return nil
}

func (m MessageViewModel) View() string {
	contentH := m.height - 2
	if contentH < 0 {
		contentH = 0
	}

	var header string
	if m.searching || m.search.Value() != "" {
		header = m.search.View()
	} else if m.loading {
		header = hintStyle.Render("loading older messages…")
	} else {
		header = labelStyle.Render(m.title)
	}

	body := truncateHeight(m.viewport.View(), contentH-1)
	content := header + "\n" + body

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(m.width).
		Height(m.height)
	style = applyBorderColor(style, m.focused)

	return style.Render(content)
}

func (m MessageViewModel) SetSize(w, h int) MessageViewModel {
	m.width = w
	m.height = h
	// Viewport inner: subtract border (2) and the header line.
	vpW := w - 2
	vpH := h - 3
	if vpW < 1 {
		vpW = 1
	}
	if vpH < 1 {
		vpH = 1
	}
	m.viewport.SetWidth(vpW)
	m.viewport.SetHeight(vpH)
	m = m.recreateRenderer()
	m = m.renderContent(true)
	return m
}

func (m MessageViewModel) SetFocused(f bool) MessageViewModel {
	m.focused = f
	return m
}

func (m MessageViewModel) SetTitle(title string) MessageViewModel {
	m.title = title
	return m
}

// SetMessages installs the newest page and scrolls to the bottom, the
// reading position for fresh history.
func (m MessageViewModel) SetMessages(msgs []domain.Message, hasMore bool) MessageViewModel {
	m.messages = msgs
	m.hasMore = hasMore
	m.loading = false
	m.search.SetValue("")
	m.searching = false
	m = m.renderContent(true)
	m.cursor = len(m.visible) - 1
	if m.cursor < 0 {
		m.cursor = 0
	}
	return m
}

// Prepend replaces the sequence with the merged one after a backward
// fetch and adjusts the scroll offset by exactly the height the new
// content introduced, so the anchored message stays put.
func (m MessageViewModel) Prepend(merged []domain.Message, added int, hasMore bool) MessageViewModel {
	m.loading = false
	m.hasMore = hasMore

	if added == 0 {
		return m
	}

	oldTotal := m.viewport.TotalLineCount()
	oldOffset := m.viewport.YOffset()

	m.messages = merged
	m.cursor += added
	m = m.renderContentNoScroll()

	delta := m.viewport.TotalLineCount() - oldTotal
	if delta < 0 {
		delta = 0
	}
	m.viewport.SetYOffset(oldOffset + delta)
	return m
}

// SetLoading marks the view as fetching older history.
func (m MessageViewModel) SetLoading(v bool) MessageViewModel {
	m.loading = v
	return m
}

func (m MessageViewModel) moveCursor(d int) MessageViewModel {
	return m.setCursor(m.cursor + d)
}

func (m MessageViewModel) setCursor(c int) MessageViewModel {
	if c < 0 {
		c = 0
	}
	if c > len(m.visible)-1 {
		c = len(m.visible) - 1
	}
	if c < 0 {
		c = 0
	}
	m.cursor = c
	return m.renderKeepOffset().scrollCursorIntoView()
}

func (m MessageViewModel) cursorMessage() (int, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return 0, false
	}
	return m.visible[m.cursor], true
}

func (m MessageViewModel) scrollCursorIntoView() MessageViewModel {
	if m.cursor >= len(m.starts) {
		return m
	}
	line := m.starts[m.cursor]
	top := m.viewport.YOffset()
	bottom := top + m.viewport.Height() - 1
	if line < top {
		m.viewport.SetYOffset(line)
	} else if line > bottom {
		m.viewport.SetYOffset(line - m.viewport.Height() + 1)
	}
	return m
}

func (m MessageViewModel) applyFilter() MessageViewModel {
	m = m.renderContent(false)
	if m.cursor > len(m.visible)-1 {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return m.scrollCursorIntoView()
}

func (m MessageViewModel) recreateRenderer() MessageViewModel {
	wordWrap := m.viewport.Width() - 6
	if wordWrap < 10 {
		wordWrap = 10
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(wordWrap),
	)
	if err == nil {
		m.renderer = r
	}
	return m
}

func (m MessageViewModel) renderKeepOffset() MessageViewModel {
	offset := m.viewport.YOffset()
	m = m.renderContent(false)
	m.viewport.SetYOffset(offset)
	return m
}

func (m MessageViewModel) renderContentNoScroll() MessageViewModel {
	return m.renderContent(false)
}

// renderContent rebuilds the viewport content and the per-message line
// index used for cursor scrolling.
func (m MessageViewModel) renderContent(gotoBottom bool) MessageViewModel {
	term := strings.ToLower(m.search.Value())
	m.visible = m.visible[:0]
	for i, msg := range m.messages {
		if term != "" && !strings.Contains(strings.ToLower(msg.Text), term) {
			continue
		}
		m.visible = append(m.visible, i)
	}

	var b strings.Builder
	var currentDate string
	line := 0
	m.starts = m.starts[:0]

	for vi, mi := range m.visible {
		msg := m.messages[mi]

		msgDate := msg.Timestamp.Format("January 2, 2006")
		if msgDate != currentDate {
			sep := daySeparatorStyle.Render(fmt.Sprintf("───── %s ─────", msgDate))
			b.WriteString(sep + "\n")
			line++
			currentDate = msgDate
		}

		m.starts = append(m.starts, line)

		cursorMark := "  "
		if vi == m.cursor {
			cursorMark = cursorLineStyle.Render("> ")
		}
		selMark := "[ ]"
		if m.selection.Contains(msg.ID) {
			selMark = selectedMarkStyle.Render("[✓]")
		}
		ts := timeStyle.Render(msg.Timestamp.Format("15:04"))
		name := nameStyle.Render(senderLabel(msg) + ":")

		body := msg.Text
		if msg.Markdown != "" {
			body = m.renderMarkdown(msg.Markdown)
		}

		if strings.Contains(body, "\n") {
			fmt.Fprintf(&b, "%s%s %s %s\n%s\n", cursorMark, selMark, ts, name, body)
			line += 2 + strings.Count(body, "\n")
		} else {
			fmt.Fprintf(&b, "%s%s %s %s %s\n", cursorMark, selMark, ts, name, body)
			line++
		}
	}

	wrapped := lipgloss.NewStyle().Width(m.viewport.Width()).Render(b.String())
	m.viewport.SetContent(wrapped)
	if gotoBottom {
		m.viewport.GotoBottom()
	}
	return m
}

// renderMarkdown renders one message through glamour, line-break
// preserving: glamour collapses single newlines, so plain blocks are
// rendered line by line while fenced code stays whole.
func (m MessageViewModel) renderMarkdown(text string) string {
	if m.renderer == nil {
		return text
	}

	blocks := strings.Split(text, "\n\n")
	rendered := make([]string, len(blocks))
	for i, block := range blocks {
		if strings.HasPrefix(strings.TrimSpace(block), "```") {
			rendered[i] = m.renderBlock(block)
			continue
		}
		lines := strings.Split(block, "\n")
		out := make([]string, len(lines))
		for j, l := range lines {
			if l == "" {
				continue
			}
			out[j] = m.renderBlock(l)
		}
		rendered[i] = strings.Join(out, "\n")
	}
	return strings.Join(rendered, "\n")
}

func (m MessageViewModel) renderBlock(text string) string {
	r, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	r = strings.TrimRight(r, "\n ")
	r = strings.TrimLeft(r, "\n")
	return r
}

func senderLabel(msg domain.Message) string {
	if msg.Sender != nil {
		if msg.Sender.LastName != "" {
			return msg.Sender.FirstName + " " + msg.Sender.LastName
		}
		if msg.Sender.FirstName != "" {
			return msg.Sender.FirstName
		}
	}
	if msg.ChatTitle != "" {
		return msg.ChatTitle
	}
	return "Unknown"
}
