package ui

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/promptgram/promptgram/internal/domain"
)

// CredentialsSubmittedMsg carries the API credentials form.
type CredentialsSubmittedMsg struct {
	APIID   int
	APIHash string
}

// PhoneSubmittedMsg starts the login handshake.
type PhoneSubmittedMsg struct {
	Phone string
}

// CodeSubmittedMsg resolves the pending code challenge.
type CodeSubmittedMsg struct {
	Code string
}

// PasswordSubmittedMsg resolves the pending password challenge.
type PasswordSubmittedMsg struct {
	Password string
}

// LoginModel drives the login screen through its stages: credentials,
// phone, code and (when 2FA is enabled) password.
type LoginModel struct {
	stage domain.AuthState

	apiID    textinput.Model
	apiHash  textinput.Model
	phone    textinput.Model
	code     textinput.Model
	password textinput.Model
	focusRow int // credentials stage: 0 = api id, 1 = api hash

	busy    bool
	errText string

	width  int
	height int
}

func NewLoginModel() LoginModel {
	apiID := textinput.New()
	apiID.Placeholder = "api_id"

	apiHash := textinput.New()
	apiHash.Placeholder = "api_hash"

	phone := textinput.New()
	phone.Placeholder = "+15551234567"

	code := textinput.New()
	code.Placeholder = "verification code"

	password := textinput.New()
	password.Placeholder = "2FA password"
	password.EchoMode = textinput.EchoPassword

	return LoginModel{
		stage:    domain.AuthStateCredentials,
		apiID:    apiID,
		apiHash:  apiHash,
		phone:    phone,
		code:     code,
		password: password,
	}
}

// SetStage switches the visible form and focuses its first field.
func (m LoginModel) SetStage(stage domain.AuthState) (LoginModel, tea.Cmd) {
	m.stage = stage
	m.busy = false
	m.focusRow = 0
	m.apiID.Blur()
	m.apiHash.Blur()
	m.phone.Blur()
	m.code.Blur()
	m.password.Blur()

	switch stage {
	case domain.AuthStateCredentials:
		return m, m.apiID.Focus()
	case domain.AuthStatePhone:
		return m, m.phone.Focus()
	case domain.AuthStateCode:
		m.code.SetValue("")
		return m, m.code.Focus()
	case domain.AuthStatePassword:
		m.password.SetValue("")
		return m, m.password.Focus()
	}
	return m, nil
}

func (m LoginModel) Stage() domain.AuthState { return m.stage }

// SetError surfaces a handshake failure; the stage stays put so the user
// can retry the same step.
func (m LoginModel) SetError(err error) LoginModel {
	m.busy = false
	if err != nil {
		m.errText = err.Error()
	}
	return m
}

func (m LoginModel) SetBusy(v bool) LoginModel {
	m.busy = v
	if v {
		m.errText = ""
	}
	return m
}

func (m LoginModel) SetSize(w, h int) LoginModel {
	m.width = w
	m.height = h
	return m
}

// Prefill seeds the credential inputs from a loaded config.
func (m LoginModel) Prefill(apiID int, apiHash string) LoginModel {
	if apiID != 0 {
		m.apiID.SetValue(strconv.Itoa(apiID))
	}
	m.apiHash.SetValue(apiHash)
	return m
}

func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.busy {
		return m, nil
	}

	switch keyMsg.String() {
	case "tab", "shift+tab":
		if m.stage == domain.AuthStateCredentials {
			m.focusRow = 1 - m.focusRow
			if m.focusRow == 0 {
				m.apiHash.Blur()
				return m, m.apiID.Focus()
			}
			m.apiID.Blur()
			return m, m.apiHash.Focus()
		}
		return m, nil
	case "enter":
		return m.submit()
	}

	var cmd tea.Cmd
	switch m.stage {
	case domain.AuthStateCredentials:
		if m.focusRow == 0 {
			m.apiID, cmd = m.apiID.Update(msg)
		} else {
			m.apiHash, cmd = m.apiHash.Update(msg)
		}
	case domain.AuthStatePhone:
		m.phone, cmd = m.phone.Update(msg)
	case domain.AuthStateCode:
		m.code, cmd = m.code.Update(msg)
	case domain.AuthStatePassword:
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m LoginModel) submit() (LoginModel, tea.Cmd) {
	switch m.stage {
	case domain.AuthStateCredentials:
		id, err := strconv.Atoi(strings.TrimSpace(m.apiID.Value()))
		hash := strings.TrimSpace(m.apiHash.Value())
		if err != nil || id == 0 || hash == "" {
			m.errText = "both api_id (number) and api_hash are required"
			return m, nil
		}
		m.busy = true
		return m, func() tea.Msg { return CredentialsSubmittedMsg{APIID: id, APIHash: hash} }
	case domain.AuthStatePhone:
		phone := strings.TrimSpace(m.phone.Value())
		if phone == "" {
			m.errText = "enter your phone number"
			return m, nil
		}
		m.busy = true
		return m, func() tea.Msg { return PhoneSubmittedMsg{Phone: phone} }
	case domain.AuthStateCode:
		code := strings.TrimSpace(m.code.Value())
		if code == "" {
			m.errText = "enter the verification code"
			return m, nil
		}
		m.busy = true
		return m, func() tea.Msg { return CodeSubmittedMsg{Code: code} }
	case domain.AuthStatePassword:
		pw := m.password.Value()
		if pw == "" {
			m.errText = "enter your 2FA password"
			return m, nil
		}
		m.busy = true
		return m, func() tea.Msg { return PasswordSubmittedMsg{Password: pw} }
	}
	return m, nil
}

func (m LoginModel) View() string {
	var b strings.Builder

	switch m.stage {
	case domain.AuthStateCredentials:
		b.WriteString("Enter API credentials (from https://my.telegram.org)\n\n")
		b.WriteString(m.apiID.View() + "\n")
		b.WriteString(m.apiHash.View() + "\n")
		b.WriteString(hintStyle.Render("\ntab to switch fields, enter to continue"))
	case domain.AuthStatePhone:
		b.WriteString("Log in to Telegram\n\n")
		b.WriteString(m.phone.View() + "\n")
	case domain.AuthStateCode:
		b.WriteString("A verification code was sent to your Telegram\n\n")
		b.WriteString(m.code.View() + "\n")
	case domain.AuthStatePassword:
		b.WriteString("Two-factor authentication is enabled\n\n")
		b.WriteString(m.password.View() + "\n")
	}

	if m.busy {
		b.WriteString("\n" + hintStyle.Render("working…"))
	}
	if m.errText != "" {
		b.WriteString("\n" + errorStyle.Render(m.errText))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForegroundBlend(rainbowBlend...).
		Padding(1, 3).
		Width(min(58, max(m.width-4, 20))).
		Render(b.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
