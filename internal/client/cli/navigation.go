package cli

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/gophtasks/internal/guard"
)

// navigate asks the guard whether target may be opened. It returns true
// when the app is now on target; on a redirect the app moves to the
// redirect location instead and remembers any callback.
func (a *App) navigate(target string) bool {
	d := a.policy.Decide(a.auth.State().Guard(), target)

	switch d.Action {
	case guard.Wait:
		a.println(dimStyle.Render("Checking session..."))
		return false

	case guard.Redirect:
		u, err := url.Parse(d.Location)
		if err != nil {
			a.page = a.policy.SignInPath
			return false
		}
		if cb := u.Query().Get(guard.CallbackParam); cb != "" {
			a.callback = cb
		}
		if a.page != u.Path {
			a.println(dimStyle.Render(fmt.Sprintf("Redirected to %s", u.Path)))
		}
		a.page = u.Path
		return false
	}

	a.page = target
	return true
}

// Go opens the page named in args and renders it.
func (a *App) Go(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: go <page>   pages: /dashboard, /tasks, /profile, /signin, /signup")
		return nil
	}
	target := args[0]
	if target == "" || target[0] != '/' {
		target = "/" + target
	}

	a.navigate(target)
	return a.render(ctx)
}

func (a *App) render(ctx context.Context) error {
	switch a.page {
	case a.policy.SignInPath:
		a.println(dimStyle.Render("Sign in with 'signin', or create an account with 'signup'."))
	case a.policy.SignUpPath:
		a.println(dimStyle.Render("Create an account with 'signup'."))
	case PageTasks:
		return a.showTasks(ctx)
	case PageProfile:
		return a.WhoAmI(ctx)
	case PageDashboard:
		if u := a.auth.State().User; u != nil {
			a.println(titleStyle.Render("Dashboard"))
			a.println(fmt.Sprintf("Hello, %s. Type 'list' to see your tasks.", u.Name))
		}
	default:
		a.println(fmt.Sprintf("Nothing to show on %s", a.page))
	}
	return nil
}
