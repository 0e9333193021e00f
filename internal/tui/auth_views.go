package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// authForm backs both the login and register screens: a vertical stack of
// labelled inputs with one focused at a time.
type authForm struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

func newLoginForm() authForm {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Focus()
	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	return authForm{
		labels: []string{"Email", "Password"},
		inputs: []textinput.Model{email, password},
	}
}

func newRegisterForm() authForm {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Focus()
	name := textinput.New()
	name.Placeholder = "Full name"
	password := textinput.New()
	password.Placeholder = "password (min 8 chars)"
	password.EchoMode = textinput.EchoPassword
	return authForm{
		labels: []string{"Email", "Full name", "Password"},
		inputs: []textinput.Model{email, name, password},
	}
}

func (f authForm) Update(msg tea.Msg) (authForm, tea.Cmd) {
	cmds := make([]tea.Cmd, len(f.inputs))
	for i := range f.inputs {
		f.inputs[i], cmds[i] = f.inputs[i].Update(msg)
	}
	return f, tea.Batch(cmds...)
}

func (f *authForm) cycleFocus(back bool) {
	f.inputs[f.focus].Blur()
	if back {
		f.focus = (f.focus - 1 + len(f.inputs)) % len(f.inputs)
	} else {
		f.focus = (f.focus + 1) % len(f.inputs)
	}
	f.inputs[f.focus].Focus()
}

func (f authForm) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f authForm) render(title, footer string, width int) string {
	var b strings.Builder
	b.WriteString(styleTitle().Render(title))
	b.WriteString("\n\n")
	for i, in := range f.inputs {
		label := f.labels[i]
		if i == f.focus {
			b.WriteString(styleAccent().Render("> " + label))
		} else {
			b.WriteString(styleMuted().Render("  " + label))
		}
		b.WriteString("\n  ")
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styleMuted().Render(footer))
	return b.String()
}

func (m appModel) loginCmd(email, password string) tea.Cmd {
	sessions := m.deps.Sessions
	return func() tea.Msg {
		return loginDoneMsg{err: sessions.Login(context.Background(), email, password)}
	}
}

func (m appModel) registerCmd(email, fullName, password string) tea.Cmd {
	sessions := m.deps.Sessions
	return func() tea.Msg {
		_, err := sessions.Register(context.Background(), email, fullName, password)
		return registerDoneMsg{email: email, err: err}
	}
}

func (m appModel) logoutCmd() tea.Cmd {
	sessions := m.deps.Sessions
	return func() tea.Msg {
		return logoutDoneMsg{err: sessions.Logout(context.Background())}
	}
}

func (m appModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab:
		m.login.cycleFocus(false)
		return m, nil
	case tea.KeyShiftTab:
		m.login.cycleFocus(true)
		return m, nil
	case tea.KeyEnter:
		email, password := m.login.value(0), m.login.value(1)
		if email == "" || password == "" {
			m.errLine = "Email and password are required"
			return m, nil
		}
		m.errLine = ""
		m.notice = "Signing in…"
		return m, m.loginCmd(email, password)
	case tea.KeyCtrlR:
		m.view = viewRegister
		m.register = newRegisterForm()
		m.errLine = ""
		return m, nil
	}
	var cmd tea.Cmd
	m.login, cmd = m.login.Update(msg)
	return m, cmd
}

func (m appModel) afterLogin(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	if msg.err != nil {
		m.errLine = msg.err.Error()
		return m, nil
	}
	s := m.deps.Sessions.Snapshot()
	if s.User == nil {
		// Token stored but the profile re-check failed; stay on login
		// rather than showing a dashboard for nobody.
		m.errLine = "Signed in, but the profile could not be fetched; try again"
		return m, nil
	}
	m.view = viewDashboard
	m.errLine = ""
	m.notice = "Welcome back, " + s.User.FullName
	return m, m.applyFilter()
}

func (m appModel) updateRegister(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab:
		m.register.cycleFocus(false)
		return m, nil
	case tea.KeyShiftTab:
		m.register.cycleFocus(true)
		return m, nil
	case tea.KeyEsc:
		m.view = viewLogin
		m.errLine = ""
		return m, nil
	case tea.KeyEnter:
		email, name, password := m.register.value(0), m.register.value(1), m.register.value(2)
		if email == "" || name == "" || password == "" {
			m.errLine = "All fields are required"
			return m, nil
		}
		m.errLine = ""
		return m, m.registerCmd(email, name, password)
	}
	var cmd tea.Cmd
	m.register, cmd = m.register.Update(msg)
	return m, cmd
}

func (m appModel) afterRegister(msg registerDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.errLine = msg.err.Error()
		return m, nil
	}
	// Registration never authenticates; hand over to the login screen.
	m.view = viewLogin
	m.login = newLoginForm()
	m.login.inputs[0].SetValue(msg.email)
	m.errLine = ""
	m.notice = "Account created, please sign in"
	return m, nil
}

func (m appModel) viewGateScreen() string {
	body := m.spin.View() + " Checking session…"
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m appModel) viewLoginScreen() string {
	body := m.login.render("Sign in", "enter: sign in   tab: next field   ctrl+r: register   ctrl+c: quit", m.width)
	return m.centerAuth(body)
}

func (m appModel) viewRegisterScreen() string {
	body := m.register.render("Create account", "enter: register   tab: next field   esc: back to sign-in", m.width)
	return m.centerAuth(body)
}

func (m appModel) centerAuth(body string) string {
	if m.errLine != "" {
		body += "\n" + styleError().Render(m.errLine)
	} else if m.notice != "" {
		body += "\n" + styleMuted().Render(m.notice)
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}
