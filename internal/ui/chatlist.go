package ui

import (
	"fmt"
	"io"

	"charm.land/bubbles/v2/list"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/promptgram/promptgram/internal/domain"
)

// chatItem is one row of the sidebar: a chat, or one of a forum chat's
// topics indented beneath it.
type chatItem struct {
	chat  domain.Chat
	topic *domain.Topic
}

func (i chatItem) FilterValue() string {
	if i.topic != nil {
		return i.chat.Title + " " + i.topic.Title
	}
	if i.chat.Username != "" {
		return i.chat.Title + " @" + i.chat.Username
	}
	return i.chat.Title
}

// chatItemDelegate renders a chatItem in the list.
type chatItemDelegate struct{}

func (d chatItemDelegate) Height() int                             { return 1 }
func (d chatItemDelegate) Spacing() int                            { return 0 }
func (d chatItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d chatItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ci, ok := item.(chatItem)
	if !ok {
		return
	}

	var label string
	if ci.topic != nil {
		label = "  # " + ci.topic.Title
		if ci.topic.Closed {
			label += " (closed)"
		}
	} else {
		label = ci.chat.Title
		switch ci.chat.Kind {
		case domain.ChatChannel:
			label += " ⌬"
		case domain.ChatSupergroup, domain.ChatGroup:
			label += " ⚇"
		}
	}

	isSelected := index == m.Index()
	// Account for the cursor prefix ("  " or "> ") in available width.
	contentWidth := m.Width() - 2
	if contentWidth < 1 {
		contentWidth = 1
	}

	style := lipgloss.NewStyle().MaxWidth(contentWidth).MaxHeight(1)
	cursor := "  "
	if isSelected {
		cursor = "> "
		style = style.Foreground(highlightColor).Bold(true)
	}
	if ci.topic != nil && !isSelected {
		style = style.Foreground(dimColor)
	}

	fmt.Fprintf(w, "%s%s", cursor, style.Render(label))
}

// ChatListModel wraps bubbles/list for the chat/topic sidebar.
type ChatListModel struct {
	list    list.Model
	focused bool
	width   int
	height  int
}

func NewChatListModel() ChatListModel {
	delegate := chatItemDelegate{}
	l := list.New(nil, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()

	return ChatListModel{list: l}
}

func (m ChatListModel) Update(msg tea.Msg) (ChatListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Only handle enter for selection when not filtering.
		if msg.String() == "enter" && m.list.FilterState() != list.Filtering {
			if item, ok := m.list.SelectedItem().(chatItem); ok {
				sel := TargetSelectedMsg{Chat: item.chat}
				if item.topic != nil {
					sel.Topic = item.topic.ID
				}
				return m, func() tea.Msg { return sel }
			}
			return m, nil
		}
	}

	// Delegate all other keys (including j/k and filter '/') to the list
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Filtering reports whether the list filter input is capturing keys.
func (m ChatListModel) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m ChatListModel) View() string {
	contentH := m.height - 2
	if contentH < 0 {
		contentH = 0
	}

	content := truncateHeight(m.list.View(), contentH)

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(m.width).
		Height(m.height)
	style = applyBorderColor(style, m.focused)

	return style.Render(content)
}

// WithChats rebuilds the rows: each chat, then its topics.
func (m ChatListModel) WithChats(chats []domain.Chat) ChatListModel {
	var items []list.Item
	for _, c := range chats {
		items = append(items, chatItem{chat: c})
		for i := range c.Topics {
			if c.Topics[i].Hidden {
				continue
			}
			items = append(items, chatItem{chat: c, topic: &c.Topics[i]})
		}
	}
	m.list.SetItems(items)
	return m
}

func (m ChatListModel) SetSize(w, h int) ChatListModel {
	m.width = w
	m.height = h
	innerW := w - 2
	innerH := h - 2
	if innerW < 1 {
		innerW = 1
	}
	if innerH < 1 {
		innerH = 1
	}
	m.list.SetSize(innerW, innerH)
	return m
}

func (m ChatListModel) SetFocused(f bool) ChatListModel {
	m.focused = f
	return m
}
