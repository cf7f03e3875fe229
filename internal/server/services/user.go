// Package services implements account signup, login and lookup on top of the
// identity store, the password hasher and the token manager.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// TokenIssuer mints and verifies access tokens. auth.TokenManager satisfies it.
type TokenIssuer interface {
	GenerateToken(userID int64) (string, error)
	GetUserIDFromToken(token string) (int64, error)
}

// LoginResult is returned by LoginByEmail.
type LoginResult struct {
	Token string
	User  models.UserView
}

// TokenResult is returned by LoginByUsername.
type TokenResult struct {
	Token    string
	UserID   int64
	Username string
}

type UserService struct {
	users   users.Repository
	hasher  auth.PasswordHasher
	tokens  TokenIssuer
	logger  logging.Logger
	metrics *metrics.Metrics

	// verified when the account does not exist, so a miss costs as much as a hit
	dummyHash string
}

func NewUserService(repo users.Repository, hasher auth.PasswordHasher, tokens TokenIssuer,
	logger logging.Logger, m *metrics.Metrics) (*UserService, error) {

	dummy, err := hasher.Hash("gophauth-placeholder-password")
	if err != nil {
		return nil, fmt.Errorf("error preparing placeholder hash: %w", err)
	}

	return &UserService{
		users:     repo,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger.With("module", "services.user"),
		metrics:   m,
		dummyHash: dummy,
	}, nil
}

// Signup registers a new account and returns its public view.
func (s *UserService) Signup(ctx context.Context, username, email, password string) (view *models.UserView, err error) {
	defer s.observe("signup", time.Now(), &err)

	switch {
	case isBlank(username):
		return nil, &common.FieldError{Field: "username"}
	case isBlank(email):
		return nil, &common.FieldError{Field: "email"}
	case isBlank(password):
		return nil, &common.FieldError{Field: "password"}
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, s.internal(ctx, "signup", err)
	}

	user, err := s.users.Create(ctx, &models.User{
		UserName:     models.NormalizeUsername(username),
		Email:        models.NormalizeEmail(email),
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateIdentity) {
			return nil, common.ErrDuplicateIdentity
		}
		return nil, s.internal(ctx, "signup", err)
	}

	s.logger.Info(ctx, "user created", "user_id", user.ID)

	v := user.View()
	return &v, nil
}

// LoginByEmail authenticates by email and password.
func (s *UserService) LoginByEmail(ctx context.Context, email, password string) (res *LoginResult, err error) {
	defer s.observe("login_email", time.Now(), &err)

	email = models.NormalizeEmail(email)
	switch {
	case email == "":
		return nil, &common.FieldError{Field: "email"}
	case password == "":
		return nil, &common.FieldError{Field: "password"}
	}

	user, err := s.authenticate(ctx, "login_email", func() (*models.User, error) {
		return s.users.GetByEmail(ctx, email)
	}, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, s.internal(ctx, "login_email", err)
	}

	return &LoginResult{Token: token, User: user.View()}, nil
}

// LoginByUsername authenticates by username and password. Usernames match
// exactly after trimming.
func (s *UserService) LoginByUsername(ctx context.Context, username, password string) (res *TokenResult, err error) {
	defer s.observe("login_username", time.Now(), &err)

	username = models.NormalizeUsername(username)
	switch {
	case username == "":
		return nil, &common.FieldError{Field: "username"}
	case password == "":
		return nil, &common.FieldError{Field: "password"}
	}

	user, err := s.authenticate(ctx, "login_username", func() (*models.User, error) {
		return s.users.GetByUsername(ctx, username)
	}, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, s.internal(ctx, "login_username", err)
	}

	return &TokenResult{Token: token, UserID: user.ID, Username: user.UserName}, nil
}

// authenticate looks the user up and checks password. An unknown account and
// a wrong password both yield common.ErrInvalidCredentials.
func (s *UserService) authenticate(ctx context.Context, op string, lookup func() (*models.User, error), password string) (*models.User, error) {
	user, err := lookup()
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, common.ErrInvalidCredentials
		}
		return nil, s.internal(ctx, op, err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	return user, nil
}

// WhoAmI resolves a bearer token to the account it was issued for.
func (s *UserService) WhoAmI(ctx context.Context, token string) (view *models.UserView, err error) {
	defer s.observe("whoami", time.Now(), &err)

	id, err := s.tokens.GetUserIDFromToken(token)
	if err != nil {
		s.logger.Debug(ctx, "token rejected", "reason", tokenRejectReason(err))
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserGone
		}
		return nil, s.internal(ctx, "whoami", err)
	}

	v := user.View()
	return &v, nil
}

// ListUsers returns every account, newest first.
func (s *UserService) ListUsers(ctx context.Context) (views []models.UserView, err error) {
	defer s.observe("list_users", time.Now(), &err)

	all, err := s.users.List(ctx)
	if err != nil {
		return nil, s.internal(ctx, "list_users", err)
	}

	views = make([]models.UserView, 0, len(all))
	for _, u := range all {
		views = append(views, u.View())
	}
	return views, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (view *models.UserView, err error) {
	defer s.observe("get_user", time.Now(), &err)

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, s.internal(ctx, "get_user", err)
	}

	v := user.View()
	return &v, nil
}

func (s *UserService) internal(ctx context.Context, op string, err error) error {
	s.logger.Error(ctx, "operation failed", "operation", op, "error", err)
	return fmt.Errorf("%w: %w", common.ErrorInternal, err)
}

func (s *UserService) observe(op string, start time.Time, err *error) {
	s.metrics.RecordOperation(op, *err, time.Since(start))
}

func tokenRejectReason(err error) string {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return "expired"
	case errors.Is(err, common.ErrTokenBadSignature):
		return "bad_signature"
	case errors.Is(err, common.ErrTokenMalformed):
		return "malformed"
	default:
		return "invalid"
	}
}

func isBlank(v string) bool {
	return strings.TrimSpace(v) == ""
}
