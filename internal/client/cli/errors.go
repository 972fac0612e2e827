package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/common"
)

// fail prints err in user terms. Causes are never shown for auth failures.
func (a *App) fail(err error) {
	var ve *common.ValidationError

	switch {
	case errors.As(err, &ve):
		keys := make([]string, 0, len(ve.Fields))
		for k := range ve.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			a.println(errorStyle.Render(fmt.Sprintf("%s: %s", k, ve.Fields[k])))
		}
	case errors.Is(err, common.ErrInvalidCredentials):
		a.println(errorStyle.Render("Invalid email or password"))
	case errors.Is(err, client.ErrUnauthorized):
		a.println(errorStyle.Render("Your session has ended, please sign in again"))
	case errors.Is(err, common.ErrConflict):
		a.println(errorStyle.Render("Email already registered"))
	case errors.Is(err, common.ErrorNotFound):
		a.println(errorStyle.Render("Not found"))
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
		a.println(errorStyle.Render("Server unavailable, try again later"))
	default:
		a.println(errorStyle.Render("Error: " + err.Error()))
	}
}
