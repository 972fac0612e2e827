package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophtasks/internal/common"
)

// getSimpleText and getPassword are indirections for tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// SignIn prompts for credentials. The last used email is offered as the
// default. On success the app continues to the page that sent the user to
// sign-in, or to the default page.
func (a *App) SignIn(ctx context.Context) error {
	if !a.navigate(a.policy.SignInPath) {
		return a.render(ctx)
	}

	prompt := "Enter email"
	last := a.auth.LastEmail(ctx)
	if last != "" {
		prompt += fmt.Sprintf(" [%s]", last)
	}
	email, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if email == "" {
		email = last
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.auth.SignIn(ctx, email, string(password))
	if err != nil {
		a.fail(err)
		return err
	}
	a.setMode(ModeOnline)
	a.println(successStyle.Render(fmt.Sprintf("Signed in as %s", user.Email)))

	dest := a.policy.AfterSignIn(a.callback)
	a.callback = ""
	a.navigate(dest)
	return a.render(ctx)
}

// SignUp prompts for name, email and password and creates the account. A
// taken email is reported before the password is asked for. The user still
// has to sign in afterwards.
func (a *App) SignUp(ctx context.Context) error {
	if !a.navigate(a.policy.SignUpPath) {
		return a.render(ctx)
	}

	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	taken, err := a.auth.EmailTaken(ctx, email)
	if err != nil {
		a.fail(err)
		return err
	}
	if taken {
		a.fail(common.ErrConflict)
		return common.ErrConflict
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.auth.SignUp(ctx, name, email, string(password))
	if err != nil {
		a.fail(err)
		return err
	}
	a.setMode(ModeOnline)
	a.println(successStyle.Render(fmt.Sprintf("Account created for %s. Sign in with 'signin'.", user.Email)))
	a.navigate(a.policy.SignInPath)
	return nil
}

func (a *App) SignOut(ctx context.Context) error {
	if err := a.auth.SignOut(ctx); err != nil {
		a.fail(err)
		return err
	}
	a.listed = nil
	a.println(successStyle.Render("Signed out"))
	a.navigate(a.policy.SignInPath)
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	if !a.navigate(PageProfile) {
		return nil
	}
	u := a.auth.State().User
	if u == nil {
		return nil
	}
	a.println(titleStyle.Render("Profile"))
	a.println(fmt.Sprintf("Name:  %s\nEmail: %s\nID:    %s", u.Name, u.Email, u.ID))
	return nil
}
