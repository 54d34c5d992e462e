// Package routing decides whether the current auth state may use a view.
//
// The CLI maps every command to one of the paths below and asks Guard before
// running it.
package routing

import "github.com/dmitrijs2005/ulak/internal/client/models"

const (
	PathLanding  = "/"
	PathLogin    = "/login"
	PathRegister = "/register"
	PathForgot   = "/forgot"
	PathHome     = "/home"
	PathSend     = "/send"
	PathReceive  = "/receive"
	PathSettings = "/settings"
)

var publicPaths = map[string]bool{
	PathLogin:    true,
	PathRegister: true,
	PathForgot:   true,
}

var protectedPaths = map[string]bool{
	PathHome:     true,
	PathSend:     true,
	PathReceive:  true,
	PathSettings: true,
}

// Action is what the caller should do with the requested path.
type Action int

const (
	// ActionStay renders the requested path.
	ActionStay Action = iota
	// ActionWait blocks rendering until the state stops loading.
	ActionWait
	// ActionRedirect moves to Decision.Path instead.
	ActionRedirect
)

func (a Action) String() string {
	switch a {
	case ActionStay:
		return "stay"
	case ActionWait:
		return "wait"
	case ActionRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the outcome of Guard.
type Decision struct {
	Action Action
	Path   string
}

func Stay() Decision { return Decision{Action: ActionStay} }

func Wait() Decision { return Decision{Action: ActionWait} }

func Redirect(path string) Decision { return Decision{Action: ActionRedirect, Path: path} }

// Guard returns the routing decision for path under state. It is pure.
func Guard(state models.AuthState, path string) Decision {
	switch {
	case publicPaths[path]:
		return Stay()
	case path == PathLanding:
		if state.IsLoading {
			return Wait()
		}
		if state.Authenticated() {
			return Redirect(PathHome)
		}
		return Stay()
	case !protectedPaths[path]:
		return Redirect(PathLanding)
	}

	if state.IsLoading {
		return Wait()
	}
	if !state.Authenticated() {
		return Redirect(PathLogin)
	}
	if state.MustChangePassword && path != PathSettings {
		return Redirect(PathSettings)
	}
	return Stay()
}
