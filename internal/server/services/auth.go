// Package services contains the server-side business logic: account
// sign-in/sign-up/current-user and per-user task management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/dbx"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/metrics"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/samber/oops"
)

// Session is the result of a successful sign-in.
type Session struct {
	User    *models.User
	Token   string
	Payload *auth.Payload
}

// AuthService orchestrates sign-in, sign-up and current-user lookups. It is
// the only place that talks to both the token codec and the account store.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.Codec
	hasher      auth.PasswordHasher
	log         logging.Logger
	metrics     *metrics.Metrics
	newID       func() string
	dummyHash   string
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec, hasher auth.PasswordHasher,
	log logging.Logger, mt *metrics.Metrics) *AuthService {
	log = log.With("module", "auth")
	return &AuthService{
		db:          db,
		repomanager: m,
		codec:       codec,
		hasher:      hasher,
		log:         log,
		metrics:     mt,
		newID:       uuid.NewString,
		dummyHash:   newDummyHash(hasher, log),
	}
}

// SignIn checks credentials and issues a session token. An unknown email and
// a wrong password both fail with common.ErrInvalidCredentials, and both pay
// for one password comparison.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = common.NormalizeEmail(email)
	if err := common.ValidateSignIn(email, password); err != nil {
		s.metrics.AuthAttempt("signin", metrics.OutcomeRejected)
		return nil, oops.Code("AUTH_SIGNIN_INVALID").Wrap(err)
	}

	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.metrics.AuthAttempt("signin", metrics.OutcomeError)
			s.log.Error(ctx, "sign-in lookup failed", "error", err)
			return nil, oops.Code("AUTH_SIGNIN_FAILED").With("operation", "find_user").Wrap(err)
		}
		s.hasher.Check(password, s.dummyHash)
		return nil, s.rejectSignIn(ctx, "unknown email")
	}

	if !s.hasher.Check(password, user.PasswordHash) {
		return nil, s.rejectSignIn(ctx, "password mismatch", "user_id", user.ID)
	}

	token, payload, err := s.codec.Issue(user.ID, user.Email)
	if err != nil {
		s.metrics.AuthAttempt("signin", metrics.OutcomeError)
		return nil, oops.Code("AUTH_TOKEN_ISSUE_FAILED").With("user_id", user.ID).Wrap(err)
	}

	s.metrics.AuthAttempt("signin", metrics.OutcomeSuccess)
	s.log.Info(ctx, "user signed in", "user_id", user.ID)
	return &Session{User: user, Token: token, Payload: payload}, nil
}

func (s *AuthService) rejectSignIn(ctx context.Context, reason string, args ...any) error {
	s.metrics.AuthAttempt("signin", metrics.OutcomeRejected)
	s.log.Warn(ctx, "sign-in rejected", append([]any{"reason", reason}, args...)...)
	return oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(common.ErrInvalidCredentials)
}

// SignUp registers a new account. Shape problems are reported before the
// store is touched; the uniqueness check and the insert share a
// transaction, and a concurrent insert of the same email still ends in
// common.ErrConflict through the unique index.
func (s *AuthService) SignUp(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = common.NormalizeEmail(email)

	if err := common.ValidateSignUp(name, email, password); err != nil {
		s.metrics.AuthAttempt("signup", metrics.OutcomeRejected)
		return nil, oops.Code("AUTH_SIGNUP_INVALID").Wrap(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.metrics.AuthAttempt("signup", metrics.OutcomeError)
		return nil, oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}

	user := &models.User{ID: s.newID(), Email: email, Name: name, PasswordHash: hash}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		exists, err := repo.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrConflict
		}

		_, err = repo.Create(ctx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			s.metrics.AuthAttempt("signup", metrics.OutcomeRejected)
			s.log.Info(ctx, "sign-up rejected, email taken")
			return nil, oops.Code("AUTH_EMAIL_TAKEN").Wrap(err)
		}
		s.metrics.AuthAttempt("signup", metrics.OutcomeError)
		s.log.Error(ctx, "sign-up failed", "error", err)
		return nil, oops.Code("AUTH_SIGNUP_FAILED").Wrap(err)
	}

	s.metrics.AuthAttempt("signup", metrics.OutcomeSuccess)
	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// VerifyToken resolves a token to its payload. The reason for a rejection
// (expired or malformed) is logged, never returned: callers only ever see
// common.ErrInvalidToken.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*auth.Payload, error) {
	if token == "" {
		return nil, oops.Code("AUTH_TOKEN_MISSING").Wrap(common.ErrInvalidToken)
	}

	payload, err := s.codec.Verify(token)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, common.ErrTokenExpired) {
			reason = "expired"
		}
		s.log.Warn(ctx, "token rejected", "reason", reason, "error", err)
		return nil, oops.Code("AUTH_TOKEN_INVALID").Wrap(common.ErrInvalidToken)
	}
	return payload, nil
}

// CurrentUser returns the account behind token: common.ErrInvalidToken for
// a bad token, common.ErrorNotFound when the account is gone.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	payload, err := s.VerifyToken(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "token for missing user", "user_id", payload.UserID)
		}
		return nil, oops.Code("AUTH_CURRENT_USER_FAILED").With("user_id", payload.UserID).Wrap(err)
	}
	return user, nil
}

// EmailExists reports whether an account uses email.
func (s *AuthService) EmailExists(ctx context.Context, email string) (bool, error) {
	email = common.NormalizeEmail(email)
	if !common.ValidEmail(email) {
		v := &common.ValidationError{}
		v.Add("email", "invalid email")
		return false, v
	}

	exists, err := s.repomanager.Users(s.db).ExistsByEmail(ctx, email)
	if err != nil {
		return false, oops.Code("AUTH_EMAIL_LOOKUP_FAILED").Wrap(err)
	}
	return exists, nil
}

// TokenTTL is the lifetime of tokens issued by SignIn.
func (s *AuthService) TokenTTL() time.Duration {
	return s.codec.TTL()
}

// fallbackDummyHash is a well-formed cost-10 bcrypt hash, used when no
// dummy hash can be made at startup.
const fallbackDummyHash = "$2a$10$XajjQvNhvvRt5GSeFk1xFeyqRrsxkhBkUiQeg0dt.wU1qD4aFDcga"

// newDummyHash makes the hash compared against when the account does not
// exist, so that path costs the same as a real mismatch.
func newDummyHash(hasher auth.PasswordHasher, log logging.Logger) string {
	plain, err := common.MakeRandHexString(16)
	if err == nil {
		var hash string
		if hash, err = hasher.Hash(plain); err == nil {
			return hash
		}
	}
	log.Error(context.Background(), "dummy hash unavailable, using fallback", "error", err)
	return fallbackDummyHash
}
