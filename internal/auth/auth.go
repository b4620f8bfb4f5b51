package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/kv"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/persist"
	"github.com/Skotchmaster/storefront/internal/store"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnknownProvider    = errors.New("unknown social provider")
)

const (
	KeyAccounts       = "accounts"
	MinPasswordLength = 6

	DemoEmail    = "demo@glowcart.com"
	DemoPassword = "demo123"
	DemoName     = "Demo User"
)

type account struct {
	Name         string `json:"name"`
	PasswordHash string `json:"passwordHash"`
}

type Session struct {
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type Service struct {
	Store     *store.Store
	Sync      *persist.Sync
	KV        kv.Store
	Notify    *notify.Queue
	Publisher events.Publisher
	Tokens    Tokens
	Log       *slog.Logger
	Now       func() time.Time
	// Cost is the bcrypt cost for new hashes; zero means bcrypt's default.
	Cost int

	mu       sync.Mutex
	demoHash string
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) loadAccounts(ctx context.Context) (map[string]account, error) {
	accounts := make(map[string]account)
	raw, ok, err := s.KV.Get(ctx, KeyAccounts)
	if err != nil {
		return nil, fmt.Errorf("read accounts: %w", err)
	}
	if !ok {
		return accounts, nil
	}
	if err := json.Unmarshal([]byte(raw), &accounts); err != nil {
		s.Log.Warn("accounts_corrupt", "error", err)
		return make(map[string]account), nil
	}
	return accounts, nil
}

func (s *Service) saveAccounts(ctx context.Context, accounts map[string]account) error {
	data, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("encode accounts: %w", err)
	}
	if err := s.KV.Set(ctx, KeyAccounts, string(data)); err != nil {
		return fmt.Errorf("write accounts: %w", err)
	}
	return nil
}

func (s *Service) demoAccount() (account, error) {
	if s.demoHash == "" {
		h, err := HashPassword(DemoPassword, s.Cost)
		if err != nil {
			return account{}, err
		}
		s.demoHash = h
	}
	return account{Name: DemoName, PasswordHash: s.demoHash}, nil
}

func (s *Service) lookup(ctx context.Context, email string) (account, bool, error) {
	if email == DemoEmail {
		acc, err := s.demoAccount()
		return acc, err == nil, err
	}
	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return account{}, false, err
	}
	acc, ok := accounts[email]
	return acc, ok, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	l := s.Log.With("op", "auth.login")
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, fmt.Errorf("%w: please enter both email and password", ErrValidation)
	}

	s.mu.Lock()
	acc, ok, err := s.lookup(ctx, email)
	s.mu.Unlock()
	if err != nil {
		l.Error("account_lookup_failed", "error", err)
		return Session{}, err
	}
	if !ok || !CheckPassword(acc.PasswordHash, password) {
		l.Warn("login_failed", "email", email)
		return Session{}, ErrInvalidCredentials
	}

	return s.startSession(ctx, models.User{Email: email, Name: acc.Name}, "password")
}

// Register creates a password account and signs the new user in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (Session, error) {
	l := s.Log.With("op", "auth.register")
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)

	switch {
	case name == "" || email == "" || req.Password == "" || req.ConfirmPassword == "":
		return Session{}, fmt.Errorf("%w: please fill in all fields", ErrValidation)
	case req.Password != req.ConfirmPassword:
		return Session{}, fmt.Errorf("%w: passwords do not match", ErrValidation)
	case len(req.Password) < MinPasswordLength:
		return Session{}, fmt.Errorf("%w: password must be at least %d characters long", ErrValidation, MinPasswordLength)
	}

	hash, err := HashPassword(req.Password, s.Cost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	accounts, err := s.loadAccounts(ctx)
	if err == nil {
		if _, taken := accounts[email]; taken || email == DemoEmail {
			err = ErrEmailTaken
		} else {
			accounts[email] = account{Name: name, PasswordHash: hash}
			err = s.saveAccounts(ctx, accounts)
		}
	}
	s.mu.Unlock()
	if err != nil {
		l.Warn("register_failed", "email", email, "error", err)
		return Session{}, err
	}

	l.Info("account_registered", "email", email)
	return s.startSession(ctx, models.User{Email: email, Name: name}, "register")
}

func (s *Service) SocialLogin(ctx context.Context, providerID string) (Session, error) {
	p, ok := providerByID(strings.ToLower(providerID))
	if !ok {
		return Session{}, fmt.Errorf("%w: %q", ErrUnknownProvider, providerID)
	}
	return s.startSession(ctx, p.user, p.ID)
}

func (s *Service) startSession(ctx context.Context, u models.User, method string) (Session, error) {
	token, exp, err := s.Tokens.Sign(u, s.now())
	if err != nil {
		return Session{}, err
	}

	s.Store.SetUser(&u)
	if s.Notify != nil {
		s.Notify.Add(notify.LoginSuccess(u.Name))
	}
	s.publish(ctx, events.New(events.TypeUserLoggedIn, u.Email, map[string]any{
		"email":  u.Email,
		"method": method,
	}))

	s.Log.Info("user_logged_in", "email", u.Email, "method", method)
	return Session{User: u, Token: token, ExpiresAt: exp}, nil
}

// Logout clears the session state and its persisted copy. Orders survive.
// A guest logout still resets the cart and wishlist but announces nothing.
func (s *Service) Logout(ctx context.Context) error {
	u := s.Store.Snapshot().User

	if s.Sync != nil {
		if err := s.Sync.Logout(ctx); err != nil {
			s.Log.Error("logout_persist_failed", "error", err)
			return err
		}
	} else {
		s.Store.SetUser(nil)
		s.Store.ClearCart()
		s.Store.ClearWishlist()
		s.Store.SetSearchQuery("")
	}

	if u == nil {
		s.Log.Info("guest_session_cleared")
		return nil
	}

	if s.Notify != nil {
		s.Notify.Add(notify.LogoutSuccess())
	}
	s.publish(ctx, events.New(events.TypeUserLoggedOut, u.Email, map[string]any{"email": u.Email}))
	s.Log.Info("user_logged_out", "email", u.Email)
	return nil
}

// Current resolves a bearer token to its user.
func (s *Service) Current(token string) (models.User, error) {
	return s.Tokens.Parse(token)
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(ctx, e); err != nil {
		s.Log.Warn("auth_event_publish_failed", "type", e.Type, "error", err)
	}
}
