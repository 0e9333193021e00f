// Package perm derives view-permission decisions from the current session.
// This gate only avoids flash-of-forbidden-content; the authoritative check
// lives server-side.
package perm

import (
	"github.com/dianegit/develops-task-management/internal/model"
	"github.com/dianegit/develops-task-management/internal/session"
)

// Surface is a class of UI the gate admits or rejects.
type Surface int

const (
	SurfacePublic Surface = iota // landing, login, register
	SurfaceDashboard
	SurfaceAdmin
)

// Decision tells the caller what to render for a requested surface.
type Decision int

const (
	// DecisionWait: session still bootstrapping; render a placeholder.
	// Loading must never be read as "anonymous".
	DecisionWait Decision = iota
	DecisionAllow
	// DecisionLogin: no session; send the user to the login surface.
	DecisionLogin
	// DecisionDashboard: authenticated but not allowed here; redirect to the
	// dashboard rather than an error page.
	DecisionDashboard
)

// RoleOf is the pure derivation role(session): nil user means anonymous.
func RoleOf(s session.Session) model.Role {
	if s.User == nil {
		return model.RoleAnonymous
	}
	return s.User.Role
}

// Admit decides whether the session may see the surface.
func Admit(s session.Session, surface Surface) Decision {
	if s.Loading {
		return DecisionWait
	}
	role := RoleOf(s)
	switch surface {
	case SurfacePublic:
		return DecisionAllow
	case SurfaceDashboard:
		if role == model.RoleAnonymous {
			return DecisionLogin
		}
		return DecisionAllow
	case SurfaceAdmin:
		switch role {
		case model.RoleAnonymous:
			return DecisionLogin
		case model.RoleAdmin:
			return DecisionAllow
		default:
			return DecisionDashboard
		}
	}
	return DecisionLogin
}
