// Package guard decides whether a navigation to a path may proceed given the
// caller's authentication state. The same Policy backs the terminal client's
// page navigation and the server's page middleware.
//
// Everything here is a pure function of its inputs: calling Decide twice
// with the same state and path gives the same Decision.
package guard

import (
	"net/url"
	"strings"
)

// Kind classifies a path.
type Kind int

const (
	// Ignored paths are never guarded: API routes, probes and static files.
	Ignored Kind = iota
	// Public paths are the sign-in and sign-up pages.
	Public
	// Protected is everything else.
	Protected
)

func (k Kind) String() string {
	switch k {
	case Ignored:
		return "ignored"
	case Public:
		return "public"
	default:
		return "protected"
	}
}

type Action int

const (
	Allow Action = iota
	Redirect
	// Wait means the auth state is still being resolved; the caller should
	// show a loading indicator and ask again once it settles.
	Wait
)

func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	default:
		return "wait"
	}
}

// State is the part of the auth state the guard looks at.
type State struct {
	IsAuthenticated bool
	IsLoading       bool
}

type Decision struct {
	Action Action
	// Location is set for Redirect.
	Location string
}

// CallbackParam carries the originally requested path through sign-in.
const CallbackParam = "callbackUrl"

type Policy struct {
	SignInPath  string
	SignUpPath  string
	DefaultPath string
}

func DefaultPolicy() Policy {
	return Policy{SignInPath: "/signin", SignUpPath: "/signup", DefaultPath: "/dashboard"}
}

// Classify looks at the path part only; any query string is ignored.
func (p Policy) Classify(path string) Kind {
	path = cleanPath(path)

	switch {
	case path == "/api" || strings.HasPrefix(path, "/api/"),
		path == "/healthz", path == "/metrics",
		strings.Contains(path, "."):
		return Ignored
	case path == p.SignInPath || path == p.SignUpPath:
		return Public
	default:
		return Protected
	}
}

// Decide returns what should happen when a caller in state s navigates to
// target. target may carry a query string, which is preserved in the
// callback.
func (p Policy) Decide(s State, target string) Decision {
	kind := p.Classify(target)
	if kind == Ignored {
		return Decision{Action: Allow}
	}
	if s.IsLoading {
		return Decision{Action: Wait}
	}

	switch {
	case kind == Protected && !s.IsAuthenticated:
		return Decision{Action: Redirect, Location: p.SignInURL(target)}
	case kind == Public && s.IsAuthenticated:
		return Decision{Action: Redirect, Location: p.DefaultPath}
	default:
		return Decision{Action: Allow}
	}
}

// SignInURL is the sign-in page with target recorded as the callback.
func (p Policy) SignInURL(target string) string {
	if target == "" {
		return p.SignInPath
	}
	q := url.Values{}
	q.Set(CallbackParam, target)
	return p.SignInPath + "?" + q.Encode()
}

// AfterSignIn picks where to go once signed in. Only local absolute paths
// are honoured, so a crafted callback cannot send the user off-site; the
// auth pages themselves are skipped to avoid a loop.
func (p Policy) AfterSignIn(callback string) string {
	if !isLocalPath(callback) {
		return p.DefaultPath
	}
	if p.Classify(callback) == Public {
		return p.DefaultPath
	}
	return callback
}

func isLocalPath(s string) bool {
	if !strings.HasPrefix(s, "/") || strings.HasPrefix(s, "//") || strings.ContainsAny(s, "\\\r\n") {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Scheme == "" && u.Host == ""
}

func cleanPath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
