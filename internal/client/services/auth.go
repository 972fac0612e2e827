// Package services holds the client-side application logic: the single
// AuthController that owns the CLI's auth state, and the task service
// that calls protected endpoints on the user's behalf.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/guard"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
)

type Status int

const (
	StatusUnknown Status = iota
	StatusAuthenticating
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// AuthState is a snapshot of the client's view of the session.
type AuthState struct {
	User            *models.User
	IsAuthenticated bool
	IsLoading       bool
	Status          Status
}

// Guard projects the state onto what the route guard looks at.
func (s AuthState) Guard() guard.State {
	return guard.State{IsAuthenticated: s.IsAuthenticated, IsLoading: s.IsLoading}
}

func stateFor(status Status, user *models.User) AuthState {
	return AuthState{
		User:            user,
		IsAuthenticated: status == StatusAuthenticated,
		IsLoading:       status == StatusUnknown || status == StatusAuthenticating,
		Status:          status,
	}
}

// AuthController owns the one AuthState of the process. It moves through
// Unknown -> Authenticating -> Authenticated | Anonymous and tells
// subscribers about every transition. Subscribers are called outside the
// lock, in subscription order.
type AuthController struct {
	client client.Client
	store  metadata.Repository
	log    logging.Logger

	mu     sync.Mutex
	state  AuthState
	subs   map[int]func(AuthState)
	order  []int
	nextID int
}

func NewAuthController(c client.Client, store metadata.Repository, log logging.Logger) *AuthController {
	return &AuthController{
		client: c,
		store:  store,
		log:    log.With("module", "auth"),
		state:  stateFor(StatusUnknown, nil),
		subs:   make(map[int]func(AuthState)),
	}
}

func (a *AuthController) State() AuthState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Subscribe registers fn for state changes. Call the returned func to stop.
func (a *AuthController) Subscribe(fn func(AuthState)) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.subs[id] = fn
	a.order = append(a.order, id)
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.subs, id)
			for i, v := range a.order {
				if v == id {
					a.order = append(a.order[:i], a.order[i+1:]...)
					break
				}
			}
			a.mu.Unlock()
		})
	}
}

func (a *AuthController) set(status Status, user *models.User) {
	next := stateFor(status, user)

	a.mu.Lock()
	a.state = next
	fns := make([]func(AuthState), 0, len(a.order))
	for _, id := range a.order {
		fns = append(fns, a.subs[id])
	}
	a.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}

// Resolve restores the session from the stored token. Any failure, the
// server being unreachable included, leaves the client signed out with the
// stored token removed; it is reported as a nil user, not as an error.
func (a *AuthController) Resolve(ctx context.Context) (*models.User, error) {
	a.set(StatusAuthenticating, nil)

	token, err := a.store.Get(ctx, metadata.KeyAuthToken)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			a.log.Warn(ctx, "read stored token", "error", err)
		}
		a.set(StatusAnonymous, nil)
		return nil, nil
	}

	a.client.SetToken(token)
	user, err := a.client.Me(ctx)
	if err != nil {
		a.log.Info(ctx, "stored session rejected", "error", err)
		a.forget(ctx)
		a.set(StatusAnonymous, nil)
		return nil, nil
	}

	a.set(StatusAuthenticated, user)
	return user, nil
}

// SignIn authenticates against the server and persists the token. The
// state turns Authenticated only once both have succeeded. Failures are
// reported as common.ErrInvalidCredentials whatever the cause, except an
// unreachable server, which says nothing about the account.
func (a *AuthController) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	email = common.NormalizeEmail(email)
	if err := common.ValidateSignIn(email, password); err != nil {
		a.set(StatusAnonymous, nil)
		return nil, err
	}

	a.set(StatusAuthenticating, nil)

	sess, err := a.client.SignIn(ctx, email, password)
	if err != nil {
		a.set(StatusAnonymous, nil)
		if errors.Is(err, client.ErrUnavailable) {
			return nil, err
		}
		a.log.Info(ctx, "sign-in failed", "error", err)
		return nil, common.ErrInvalidCredentials
	}

	if err := a.store.Set(ctx, metadata.KeyAuthToken, sess.Token); err != nil {
		a.set(StatusAnonymous, nil)
		return nil, fmt.Errorf("save session: %w", err)
	}
	if err := a.store.Set(ctx, metadata.KeyLastEmail, email); err != nil {
		a.log.Warn(ctx, "remember email", "error", err)
	}
	a.client.SetToken(sess.Token)

	user := sess.User
	a.set(StatusAuthenticated, &user)
	return &user, nil
}

// SignUp creates the account. It checks input shape locally first and does
// not sign the new user in.
func (a *AuthController) SignUp(ctx context.Context, name, email, password string) (*models.User, error) {
	email = common.NormalizeEmail(email)
	if err := common.ValidateSignUp(name, email, password); err != nil {
		return nil, err
	}
	return a.client.SignUp(ctx, name, email, password)
}

// SignOut tells the server (best effort) and forgets the local token. It is
// safe to call when already signed out.
func (a *AuthController) SignOut(ctx context.Context) error {
	if err := a.client.SignOut(ctx); err != nil {
		a.log.Info(ctx, "server sign-out failed", "error", err)
	}
	err := a.forget(ctx)
	a.set(StatusAnonymous, nil)
	return err
}

// Invalidate drops the session after the server rejected the token.
func (a *AuthController) Invalidate(ctx context.Context) {
	_ = a.forget(ctx)
	a.set(StatusAnonymous, nil)
}

// CheckServer reports whether the server answers at all. It does not touch
// the session.
func (a *AuthController) CheckServer(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// EmailTaken asks the server whether email already has an account. A
// malformed address is reported as not taken; SignUp rejects it anyway.
func (a *AuthController) EmailTaken(ctx context.Context, email string) (bool, error) {
	email = common.NormalizeEmail(email)
	if !common.ValidEmail(email) {
		return false, nil
	}
	return a.client.CheckEmail(ctx, email)
}

// LastEmail is the address of the most recent successful sign-in, if any.
func (a *AuthController) LastEmail(ctx context.Context) string {
	email, err := a.store.Get(ctx, metadata.KeyLastEmail)
	if err != nil {
		return ""
	}
	return email
}

func (a *AuthController) forget(ctx context.Context) error {
	a.client.SetToken("")
	if err := a.store.Delete(ctx, metadata.KeyAuthToken); err != nil {
		a.log.Warn(ctx, "delete stored token", "error", err)
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
