package ui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"

	"github.com/promptgram/promptgram/internal/compose"
	"github.com/promptgram/promptgram/internal/domain"
	"github.com/promptgram/promptgram/internal/state"
)

// ComposerModel assembles the final prompt from the selected messages: a
// template (or a custom prompt), a target platform and a language.
type ComposerModel struct {
	selection *state.Selection

	templateIdx int
	langIdx     int
	platform    domain.Platform
	useTemplate bool

	prompt  textarea.Model
	editing bool

	msgCursor int

	output    string
	generated bool
	outView   viewport.Model
	notice    string

	width  int
	height int
}

func NewComposerModel(selection *state.Selection) ComposerModel {
	prompt := textarea.New()
	prompt.SetValue(compose.TemplateByID(compose.DefaultTemplateID).Body)

	return ComposerModel{
		selection:   selection,
		useTemplate: true,
		platform:    domain.PlatformBoth,
		prompt:      prompt,
		outView:     viewport.New(),
	}
}

// SetSelection swaps in the handoff selection when entering the screen.
func (m ComposerModel) SetSelection(sel *state.Selection) ComposerModel {
	m.selection = sel
	m.msgCursor = 0
	m.generated = false
	m.output = ""
	m.notice = ""
	return m
}

func (m ComposerModel) SetSize(w, h int) ComposerModel {
	m.width = w
	m.height = h
	m.prompt.SetWidth(w - 6)
	m.prompt.SetHeight(6)
	m.outView.SetWidth(w - 6)
	outH := h - 20
	if outH < 3 {
		outH = 3
	}
	m.outView.SetHeight(outH)
	return m
}

func (m ComposerModel) Update(msg tea.Msg) (ComposerModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.editing {
		switch keyMsg.String() {
		case "esc":
			m.editing = false
			m.useTemplate = false
			m.prompt.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.prompt, cmd = m.prompt.Update(msg)
			return m, cmd
		}
	}

	switch keyMsg.String() {
	case "esc":
		return m, func() tea.Msg { return BackToPickerMsg{} }
	case "j", "down":
		if m.msgCursor < m.selection.Len()-1 {
			m.msgCursor++
		}
		return m, nil
	case "k", "up":
		if m.msgCursor > 0 {
			m.msgCursor--
		}
		return m, nil
	case "x":
		return m.removeCurrent()
	case "t":
		m.templateIdx = (m.templateIdx + 1) % len(compose.Templates)
		m.useTemplate = true
		tpl := compose.Templates[m.templateIdx]
		m.prompt.SetValue(tpl.Body)
		m.platform = tpl.Platform
		return m, nil
	case "l":
		m.langIdx = (m.langIdx + 1) % len(compose.Languages)
		return m, nil
	case "L":
		m.langIdx = (m.langIdx + len(compose.Languages) - 1) % len(compose.Languages)
		return m, nil
	case "p":
		m.platform = nextPlatform(m.platform)
		return m, nil
	case "e":
		m.editing = true
		return m, m.prompt.Focus()
	case "g", "enter":
		m.output = compose.Compose(m.prompt.Value(), m.selection.Messages(), m.language().Code)
		m.generated = true
		m.notice = ""
		m.outView.SetContent(lipgloss.NewStyle().Width(m.outView.Width()).Render(m.output))
		m.outView.GotoTop()
		return m, nil
	case "y":
		if !m.generated {
			return m, nil
		}
		out := m.output
		return m, func() tea.Msg { return CopiedMsg{Err: clipboard.WriteAll(out)} }
	case "J":
		m.outView.ScrollDown(1)
		return m, nil
	case "K":
		m.outView.ScrollUp(1)
		return m, nil
	}
	return m, nil
}

// removeCurrent drops the message under the cursor. Emptying the
// selection aborts back to the picker: there is nothing to compose.
func (m ComposerModel) removeCurrent() (ComposerModel, tea.Cmd) {
	msgs := m.selection.Messages()
	if len(msgs) == 0 || m.msgCursor >= len(msgs) {
		return m, nil
	}
	m.selection.Remove(msgs[m.msgCursor].ID)
	if m.msgCursor >= m.selection.Len() && m.msgCursor > 0 {
		m.msgCursor--
	}
	m.generated = false
	m.output = ""
	if m.selection.Len() == 0 {
		return m, func() tea.Msg { return BackToPickerMsg{} }
	}
	return m, nil
}

// Selection exposes the composer's working set so the picker can be
// resynced when the user goes back.
func (m ComposerModel) Selection() *state.Selection {
	return m.selection
}

// SetNotice shows a one-line result note (copy feedback).
func (m ComposerModel) SetNotice(text string) ComposerModel {
	m.notice = text
	return m
}

func (m ComposerModel) language() compose.Language {
	return compose.Languages[m.langIdx]
}

func nextPlatform(p domain.Platform) domain.Platform {
	switch p {
	case domain.PlatformTelegram:
		return domain.PlatformTwitter
	case domain.PlatformTwitter:
		return domain.PlatformBoth
	default:
		return domain.PlatformTelegram
	}
}

func (m ComposerModel) View() string {
	var b strings.Builder

	tpl := compose.Templates[m.templateIdx]
	promptLabel := "custom prompt"
	if m.useTemplate {
		promptLabel = tpl.Name
	}
	b.WriteString(fmt.Sprintf("%s  %s  %s\n",
		labelStyle.Render("[t]emplate:")+" "+promptLabel,
		labelStyle.Render("[l]anguage:")+" "+m.language().Name,
		labelStyle.Render("[p]latform:")+" "+string(m.platform)))
	b.WriteString("\n")

	// Selected messages, cursor-navigable.
	msgs := m.selection.Messages()
	b.WriteString(labelStyle.Render(fmt.Sprintf("Selected messages (%d) — x removes", len(msgs))) + "\n")
	for i, msg := range msgs {
		cursor := "  "
		if i == m.msgCursor {
			cursor = cursorLineStyle.Render("> ")
		}
		preview := strings.ReplaceAll(msg.Text, "\n", " ")
		row := fmt.Sprintf("%s%s %s", cursor, timeStyle.Render(msg.Timestamp.Format("Jan 2 15:04")), preview)
		b.WriteString(lipgloss.NewStyle().MaxWidth(m.width - 6).MaxHeight(1).Render(row) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Prompt — [e]dit, esc to stop editing") + "\n")
	b.WriteString(m.prompt.View() + "\n\n")

	if m.generated {
		b.WriteString(labelStyle.Render("Output — [y] copy, J/K scroll") + "\n")
		b.WriteString(m.outView.View() + "\n")
	} else {
		b.WriteString(hintStyle.Render("press g to generate") + "\n")
	}
	if m.notice != "" {
		b.WriteString(hintStyle.Render(m.notice) + "\n")
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(m.width - 2).
		Height(m.height - 2)
	box = applyBorderColor(box, true)

	return box.Render(truncateHeight(b.String(), m.height-4))
}
