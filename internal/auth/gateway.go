// Package auth verifies or creates username/credential pairs.
//
// Credentials are compared by plain string equality against the stored
// password_hash column, which holds the credential verbatim. That is a known
// security defect carried for compatibility with existing user records. Do
// not add users to a deployment that matters until hashing is introduced.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nfrund/livechat/internal/domain"
	"github.com/nfrund/livechat/internal/session"
)

// Mode selects between signing in and creating an account.
type Mode string

const (
	ModeLogin  Mode = "login"
	ModeSignup Mode = "signup"
)

// ParseMode maps form and flag values to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLogin, "signin", "":
		return ModeLogin, nil
	case ModeSignup, "register":
		return ModeSignup, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownMode, s)
	}
}

// SuccessMessage is the notification shown after a successful attempt.
func (m Mode) SuccessMessage() string {
	if m == ModeSignup {
		return "Account created successfully!"
	}
	return "Welcome back!"
}

// Gateway authenticates against the users table.
type Gateway struct {
	users  domain.UserRepository
	logger *slog.Logger
}

// NewGateway creates a Gateway.
func NewGateway(users domain.UserRepository, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{users: users, logger: logger}
}

// Authenticate logs in or signs up and returns the username to keep in the
// session. Blank fields are rejected before any query.
func (g *Gateway) Authenticate(ctx context.Context, mode Mode, username, password string) (string, error) {
	creds := domain.Credentials{Username: username, Password: password}
	if err := creds.Validate(); err != nil {
		return "", err
	}

	switch mode {
	case ModeLogin:
		return g.login(ctx, creds)
	case ModeSignup:
		return g.signup(ctx, creds)
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownMode, mode)
	}
}

// SignIn authenticates and, on success, saves the username in store.
func (g *Gateway) SignIn(ctx context.Context, store session.Store, mode Mode, username, password string) (string, error) {
	name, err := g.Authenticate(ctx, mode, username, password)
	if err != nil {
		return "", err
	}
	if err := store.Save(name); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return name, nil
}

func (g *Gateway) login(ctx context.Context, creds domain.Credentials) (string, error) {
	user, err := g.users.FindByCredentials(ctx, creds.Username, creds.Password)
	if err != nil {
		g.logger.ErrorContext(ctx, "Login query failed", "event", "auth_login_error", "username", creds.Username, "error", err)
		return "", fmt.Errorf("login: %w", err)
	}
	if user == nil {
		g.logger.InfoContext(ctx, "Login rejected", "event", "auth_login_rejected", "username", creds.Username)
		return "", domain.ErrInvalidCredentials
	}
	g.logger.InfoContext(ctx, "User logged in", "event", "auth_login", "username", user.Username)
	return user.Username, nil
}

func (g *Gateway) signup(ctx context.Context, creds domain.Credentials) (string, error) {
	existing, err := g.users.FindByUsername(ctx, creds.Username)
	if err != nil {
		g.logger.ErrorContext(ctx, "Signup lookup failed", "event", "auth_signup_error", "username", creds.Username, "error", err)
		return "", fmt.Errorf("signup: %w", err)
	}
	if existing != nil {
		return "", domain.ErrUsernameTaken
	}

	// Check-then-insert is not atomic. The unique index on username turns a
	// lost race into ErrUsernameTaken from Create.
	created, err := g.users.Create(ctx, &domain.User{
		Username:     creds.Username,
		PasswordHash: creds.Password,
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "Signup insert failed", "event", "auth_signup_error", "username", creds.Username, "error", err)
		return "", fmt.Errorf("signup: %w", err)
	}

	name := creds.Username
	if created != nil && created.Username != "" {
		name = created.Username
	}
	g.logger.InfoContext(ctx, "User signed up", "event", "auth_signup", "username", name)
	return name, nil
}
