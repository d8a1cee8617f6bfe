package authz

import "github.com/ukydev/aivodrive/internal/models"

// Outcome is the guard's verdict for a navigation.
type Outcome int

const (
	// Pending means the session is still being restored; render nothing and do not redirect.
	Pending Outcome = iota
	Render
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Viewer is the part of the session the guard needs.
type Viewer struct {
	Authenticated bool
	Loading       bool
	Role          models.Role
}

// Decision is the guard result. Target is set for Redirect.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Decide resolves a navigation to path for viewer.
func Decide(path string, v Viewer) Decision {
	if v.Loading {
		return Decision{Outcome: Pending}
	}

	if matchesLogin(path) {
		if v.Authenticated {
			return Decision{Outcome: Redirect, Target: PathDashboard}
		}
		return Decision{Outcome: Render}
	}

	route, known := Lookup(path)
	if !known {
		if v.Authenticated {
			return Decision{Outcome: Redirect, Target: PathDashboard}
		}
		return Decision{Outcome: Redirect, Target: PathLogin}
	}

	if !v.Authenticated {
		return Decision{Outcome: Redirect, Target: PathLogin}
	}
	if !route.Permits(v.Role) {
		return Decision{Outcome: Redirect, Target: route.Fallback}
	}
	return Decision{Outcome: Render}
}

// Resolve follows redirects until a route renders or the guard is pending.
// Fallbacks always permit every role, so the chain is at most two hops.
func Resolve(path string, v Viewer) (string, Outcome) {
	for i := 0; i < 4; i++ {
		d := Decide(path, v)
		if d.Outcome != Redirect {
			return path, d.Outcome
		}
		path = d.Target
	}
	return path, Redirect
}

func matchesLogin(path string) bool {
	segs := splitPath(path)
	return len(segs) == 1 && segs[0] == "login"
}
