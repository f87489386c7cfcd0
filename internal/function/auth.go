package function

import (
	"context"

	"bakery-be/internal/apperr"
	"bakery-be/internal/transport"
	"bakery-be/internal/user"
)

var ErrDevLoginDisabled = apperr.Forbidden("login is provided by the mini program host")

type adminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type devLoginRequest struct {
	OpenID string `json:"openid" validate:"required,max=64"`
}

type SessionResult struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

func registerAuth(reg *Registry, s Services) {
	reg.Register("auth", "adminLogin", Bind(func(ctx context.Context, in adminLoginRequest) (*user.LoginResult, error) {
		res, err := s.Users.AdminLogin(ctx, in.Username, in.Password)
		if err != nil {
			return nil, err
		}
		transport.SetAccessCookie(ctx, res.Token, s.TokenTTL)
		return res, nil
	}))

	// login stands in for the host platform session outside production.
	reg.Register("auth", "login", Bind(func(ctx context.Context, in devLoginRequest) (*SessionResult, error) {
		if !s.DevLogin {
			return nil, ErrDevLoginDisabled
		}
		token, u, err := s.Users.Session(ctx, in.OpenID)
		if err != nil {
			return nil, err
		}
		transport.SetAccessCookie(ctx, token, s.TokenTTL)
		return &SessionResult{Token: token, User: u}, nil
	}))
}
