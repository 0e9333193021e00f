package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dianegit/develops-task-management/internal/model"
)

func nextRole(r model.Role) model.Role {
	switch r {
	case model.RoleUser:
		return model.RoleAdmin
	case model.RoleAdmin:
		return model.RoleAuditor
	default:
		return model.RoleUser
	}
}

func (m *appModel) clampAdminCursor() {
	view := m.panel.Snapshot()
	if view.Snapshot == nil {
		m.adminUserIdx = 0
		return
	}
	if n := len(view.Snapshot.Users); m.adminUserIdx >= n {
		m.adminUserIdx = n - 1
	}
	if m.adminUserIdx < 0 {
		m.adminUserIdx = 0
	}
}

func (m appModel) toggleUserStatusCmd(user model.UserProfile) tea.Cmd {
	panel := m.panel
	return func() tea.Msg {
		return adminMutatedMsg{err: panel.ToggleUserStatus(context.Background(), user)}
	}
}

func (m appModel) changeUserRoleCmd(userID string, role model.Role) tea.Cmd {
	panel := m.panel
	return func() tea.Msg {
		return adminMutatedMsg{err: panel.ChangeUserRole(context.Background(), userID, role)}
	}
}

func (m appModel) updateAdmin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := m.panel.Snapshot()

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		m.view = viewDashboard
		m.errLine = ""
		return m, nil
	case "tab":
		m.adminTab = (m.adminTab + 1) % 4
		return m, nil
	case "shift+tab":
		m.adminTab = (m.adminTab + 3) % 4
		return m, nil
	case "1":
		m.adminTab = adminTabOverview
		return m, nil
	case "2":
		m.adminTab = adminTabUsers
		return m, nil
	case "3":
		m.adminTab = adminTabAudit
		return m, nil
	case "4":
		m.adminTab = adminTabSecurity
		return m, nil
	case "r":
		return m, m.loadAdminCmd()
	}

	if m.adminTab == adminTabUsers && view.Snapshot != nil {
		users := view.Snapshot.Users
		switch msg.String() {
		case "up", "k":
			if m.adminUserIdx > 0 {
				m.adminUserIdx--
			}
			return m, nil
		case "down", "j":
			if m.adminUserIdx < len(users)-1 {
				m.adminUserIdx++
			}
			return m, nil
		case "x":
			if m.adminUserIdx < len(users) {
				return m, m.toggleUserStatusCmd(users[m.adminUserIdx])
			}
			return m, nil
		case "R":
			if m.adminUserIdx < len(users) {
				u := users[m.adminUserIdx]
				return m, m.changeUserRoleCmd(u.ID, nextRole(u.Role))
			}
			return m, nil
		}
	}

	return m, nil
}

func adminTabLabel(t adminTab) string {
	switch t {
	case adminTabOverview:
		return "Overview"
	case adminTabUsers:
		return "Users"
	case adminTabAudit:
		return "Audit Logs"
	default:
		return "Security"
	}
}

func (m appModel) viewAdminScreen() string {
	var b strings.Builder
	b.WriteString(styleTitle().Render("Admin Dashboard"))
	b.WriteString("\n")

	var tabs []string
	for t := adminTabOverview; t <= adminTabSecurity; t++ {
		label := adminTabLabel(t)
		if t == m.adminTab {
			tabs = append(tabs, styleAccent().Bold(true).Render(label))
		} else {
			tabs = append(tabs, styleMuted().Render(label))
		}
	}
	b.WriteString(strings.Join(tabs, "  |  "))
	b.WriteString("\n\n")

	view := m.panel.Snapshot()
	switch {
	case view.Loading:
		b.WriteString(m.spin.View() + " Loading snapshot…\n")
	case view.Err != nil:
		// All-or-nothing: a partial batch is reported as a load failure,
		// never rendered with silently missing sections.
		b.WriteString(styleError().Render("Snapshot load failed: "+view.Err.Error()) + "\n")
		b.WriteString(styleMuted().Render("Press r to retry") + "\n")
	case view.Snapshot == nil:
		b.WriteString(styleMuted().Render("No data yet; press r to load") + "\n")
	default:
		b.WriteString(m.renderAdminTab(*view.Snapshot))
	}

	b.WriteString("\n")
	help := "tab/1-4: sections  r: reload  esc: back  q: quit"
	if m.adminTab == adminTabUsers {
		help = "j/k: select  x: toggle active  R: cycle role  " + help
	}
	if m.errLine != "" {
		b.WriteString(styleError().Render(truncLine(m.errLine, m.width)))
	} else {
		b.WriteString(styleMuted().Render(truncLine(help, m.width)))
	}
	return b.String()
}

func (m appModel) renderAdminTab(snap model.AdminSnapshot) string {
	switch m.adminTab {
	case adminTabOverview:
		return renderAdminOverview(snap)
	case adminTabUsers:
		return m.renderAdminUsers(snap.Users)
	case adminTabAudit:
		return renderAuditLogs(snap.AuditLogs)
	default:
		return renderSecurityEvents(snap.SecurityEvents)
	}
}

func renderAdminOverview(snap model.AdminSnapshot) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Users: %d total, %d active, %d inactive\n",
		snap.Stats.TotalUsers, snap.Stats.ActiveUsers, snap.Stats.InactiveUsers))
	b.WriteString(fmt.Sprintf("Tasks: %d total\n", snap.Stats.TotalTasks))
	b.WriteString(fmt.Sprintf("Security events (recent): %d\n", len(snap.SecurityEvents)))

	b.WriteString("\n" + styleTitle().Render("Recent Activity") + "\n")
	for i, log := range snap.AuditLogs {
		if i >= 5 {
			break
		}
		b.WriteString("  " + log.Action + "  " + styleMuted().Render(log.CreatedAt.Local().Format("2006-01-02 15:04")) + "\n")
	}
	return b.String()
}

func (m appModel) renderAdminUsers(users []model.UserProfile) string {
	var b strings.Builder
	for i, u := range users {
		active := "active"
		if !u.IsActive {
			active = "inactive"
		}
		line := fmt.Sprintf("%-30s  %-8s  %-8s  %s", truncLine(u.FullName, 30), u.Role, active, u.Email)
		if i == m.adminUserIdx {
			b.WriteString(lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Render(padLine(line, m.width-2)))
		} else if !u.IsActive {
			b.WriteString(styleMuted().Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	if len(users) == 0 {
		b.WriteString(styleMuted().Render("No users") + "\n")
	}
	return b.String()
}

func renderAuditLogs(logs []model.AuditLog) string {
	var b strings.Builder
	for _, log := range logs {
		ip := log.IPAddress
		if ip == "" {
			ip = "n/a"
		}
		b.WriteString(fmt.Sprintf("%s  %s  %s\n",
			log.CreatedAt.Local().Format("2006-01-02 15:04"), log.Action, styleMuted().Render("ip "+ip)))
	}
	if len(logs) == 0 {
		b.WriteString(styleMuted().Render("No audit entries") + "\n")
	}
	return b.String()
}

func renderSecurityEvents(events []model.SecurityEvent) string {
	var b strings.Builder
	for _, ev := range events {
		sev := lipgloss.NewStyle().Foreground(statusColor(false)).Render(ev.Severity)
		if ev.Severity == "high" || ev.Severity == "critical" {
			sev = styleError().Render(ev.Severity)
		}
		b.WriteString(fmt.Sprintf("%s  %s  %s\n",
			ev.CreatedAt.Local().Format("2006-01-02 15:04"), ev.EventType, sev))
	}
	if len(events) == 0 {
		b.WriteString(styleMuted().Render("No security events") + "\n")
	}
	return b.String()
}
