package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shashiranjanraj/sofreh/app/models"
	"github.com/shashiranjanraj/sofreh/pkg/credentials"
	"github.com/shashiranjanraj/sofreh/pkg/event"
	"github.com/shashiranjanraj/sofreh/pkg/gateway"
	"github.com/shashiranjanraj/sofreh/pkg/httpx"
	"github.com/shashiranjanraj/sofreh/pkg/logger"
	"github.com/shashiranjanraj/sofreh/pkg/validate"
)

// AuthService handles login, registration and the current profile.
type AuthService struct{}

func NewAuthService() *AuthService {
	return &AuthService{}
}

type authInput struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
	Password string `json:"password" validate:"required,min=6"`
}

// Login exchanges username/password for a token pair, stores it, and
// returns the authenticated profile.
//
// Login and Register talk to httpx directly instead of going through the
// gateway: they are unauthenticated calls, and a 401 here means bad
// credentials, not an expired session to recover.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	in := authInput{Username: username, Password: password}
	if errs := validate.Struct(&in); validate.HasErrors(errs) {
		return nil, &ValidationError{Fields: errs}
	}

	resp, err := httpx.Post(gateway.URL("/login/")).
		Body(in).
		WithContext(ctx).
		Send()
	if err != nil {
		return nil, fmt.Errorf("auth: login: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrInvalidCredentials
	}
	if err := resp.Throw(); err != nil {
		return nil, fmt.Errorf("auth: login: %w", err)
	}

	var pair models.TokenPair
	if err := resp.JSON(&pair); err != nil {
		return nil, fmt.Errorf("auth: login: %w", err)
	}
	if pair.Access == "" {
		return nil, errors.New("auth: login response carried no access token")
	}

	if err := credentials.Set(pair.Access, pair.Refresh); err != nil {
		return nil, fmt.Errorf("auth: store credentials: %w", err)
	}
	logger.Info("auth: logged in", "username", username)

	return s.Me(ctx)
}

// Register creates an account and logs straight in, matching the remote
// API's register-then-login flow.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	in := authInput{Username: username, Password: password}
	if errs := validate.Struct(&in); validate.HasErrors(errs) {
		return nil, &ValidationError{Fields: errs}
	}

	resp, err := httpx.Post(gateway.URL("/register/")).
		Body(in).
		WithContext(ctx).
		Send()
	if err != nil {
		return nil, fmt.Errorf("auth: register: %w", err)
	}
	if err := resp.Throw(); err != nil {
		return nil, fmt.Errorf("auth: register: %w", err)
	}

	return s.Login(ctx, username, password)
}

// Me fetches the authenticated profile through the gateway.
func (s *AuthService) Me(ctx context.Context) (*models.User, error) {
	resp, err := gateway.Send(httpx.Get(gateway.URL("/me/")).WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if err := resp.Throw(); err != nil {
		return nil, fmt.Errorf("auth: me: %w", err)
	}

	var user models.User
	if err := resp.JSON(&user); err != nil {
		return nil, fmt.Errorf("auth: me: %w", err)
	}
	return &user, nil
}

// Logout drops the stored credential pair. It is purely local: the API has
// no logout endpoint, tokens simply expire.
func (s *AuthService) Logout() error {
	if err := credentials.Clear(); err != nil {
		return fmt.Errorf("auth: logout: %w", err)
	}
	event.Fire("auth.logout", nil)
	logger.Info("auth: logged out")
	return nil
}
