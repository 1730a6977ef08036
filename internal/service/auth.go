package service

import (
	"context"
	"log/slog"

	"github.com/Mousaahmad63636/spotlymobile/internal/domain"
	"github.com/Mousaahmad63636/spotlymobile/internal/session"
	apperrors "github.com/Mousaahmad63636/spotlymobile/pkg/errors"
)

// AuthAPI is the slice of the backend client the auth service needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (string, domain.User, error)
	Profile(ctx context.Context) (domain.User, error)
	RegisterDeviceToken(ctx context.Context, token string) error
}

// Auth owns session admission: only admin accounts get a local session, no
// matter what the backend hands out.
type Auth struct {
	api      AuthAPI
	sessions *session.Store
	logger   *slog.Logger
}

func NewAuth(api AuthAPI, sessions *session.Store, log *slog.Logger) *Auth {
	return &Auth{api: api, sessions: sessions, logger: log}
}

// Login authenticates and installs the session. A valid login on a non-admin
// account is rejected with Forbidden and leaves no session behind.
func (a *Auth) Login(ctx context.Context, email, password string) (domain.User, error) {
	token, user, err := a.api.Login(ctx, email, password)
	if err != nil {
		return domain.User{}, err
	}
	if !user.IsAdmin() {
		a.logger.WarnContext(ctx, "non-admin login rejected",
			slog.String("user_id", user.ID),
			slog.String("role", user.Role),
		)
		return domain.User{}, apperrors.Forbidden("admin access required")
	}

	a.sessions.Set(token, user)
	return user, nil
}

// Logout drops the session. The backend token is stateless, so there is
// nothing remote to revoke.
func (a *Auth) Logout() {
	a.sessions.Clear()
}

// Profile re-fetches the account behind the current session, clearing the
// session when the token has gone stale.
func (a *Auth) Profile(ctx context.Context) (domain.User, error) {
	if !a.sessions.LoggedIn() {
		return domain.User{}, apperrors.Unauthorized("not logged in")
	}
	user, err := a.api.Profile(ctx)
	if err != nil {
		if apperrors.HTTPStatus(err) == 401 {
			a.sessions.Clear()
		}
		return domain.User{}, err
	}
	return user, nil
}

// RegisterDeviceToken forwards a push token to the backend for the logged-in
// account.
func (a *Auth) RegisterDeviceToken(ctx context.Context, token string) error {
	if !a.sessions.LoggedIn() {
		return apperrors.Unauthorized("not logged in")
	}
	return a.api.RegisterDeviceToken(ctx, token)
}
