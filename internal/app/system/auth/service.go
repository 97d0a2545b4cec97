package auth

import (
	"context"

	"github.com/dalemusser/filmhub/internal/app/system/identity"
	"github.com/dalemusser/filmhub/internal/app/system/locale"
	"github.com/dalemusser/filmhub/internal/app/system/metrics"
	"github.com/dalemusser/filmhub/internal/app/system/usersession"
	"github.com/dalemusser/filmhub/internal/domain/models"
	"go.uber.org/zap"
)

// Result is what register and login report back to the page.
type Result struct {
	Success bool
	Message string
	User    *models.User
}

// ProfileWriter stores application profiles.
type ProfileWriter interface {
	SaveProfile(ctx context.Context, u models.User) error
}

// Service runs register, login and logout against the identity provider.
// It never writes session state: the provider's events do.
type Service struct {
	provider    identity.Provider
	profiles    ProfileWriter
	users       *usersession.Manager
	tr          *locale.Translator
	minPassword int
	log         *zap.Logger
}

func NewService(provider identity.Provider, profiles ProfileWriter, users *usersession.Manager, tr *locale.Translator, minPassword int, logger *zap.Logger) *Service {
	if minPassword <= 0 {
		minPassword = identity.DefaultMinPasswordLength
	}
	return &Service{
		provider:    provider,
		profiles:    profiles,
		users:       users,
		tr:          tr,
		minPassword: minPassword,
		log:         logger,
	}
}

// Register creates the account and its user-role profile. The profile name
// is the supplied name, or the email when name is blank.
func (s *Service) Register(ctx context.Context, clientID, name, email, password string, langs ...string) Result {
	cred, err := s.provider.Register(ctx, clientID, email, password, name)
	if err != nil {
		return Result{Message: s.failure("register", err, "auth.register_failed", langs)}
	}

	p := models.User{
		UID:   cred.UID,
		Email: cred.Email,
		Name:  models.DisplayName(name, cred.Email),
		Role:  models.RoleUser,
	}
	if err := s.profiles.SaveProfile(ctx, p); err != nil {
		s.log.Error("profile write after register failed", zap.String("uid", cred.UID), zap.Error(err))
		metrics.RecordAuth("register", string(identity.CodeInternal))
		return Result{Message: s.tr.Message("auth.register_failed", nil, langs...)}
	}

	metrics.RecordAuth("register", "")
	u := s.users.Session(ctx, clientID).Current()
	if u == nil {
		u = &p
	}
	return Result{
		Success: true,
		Message: s.tr.Message("auth.register_ok", nil, langs...),
		User:    u,
	}
}

// Login signs the client in. Success requires the session to hold the
// user once the provider's event has been handled.
func (s *Service) Login(ctx context.Context, clientID, email, password string, langs ...string) Result {
	if _, err := s.provider.SignIn(ctx, clientID, email, password); err != nil {
		return Result{Message: s.failure("login", err, "auth.login_failed", langs)}
	}

	u := s.users.Session(ctx, clientID).Current()
	if u == nil {
		s.log.Error("signed in but session has no user", zap.String("client_id", clientID))
		metrics.RecordAuth("login", string(identity.CodeInternal))
		return Result{Message: s.tr.Message("auth.login_failed", nil, langs...)}
	}

	metrics.RecordAuth("login", "")
	return Result{
		Success: true,
		Message: s.tr.Message("auth.welcome", map[string]any{"Name": models.DisplayName(u.Name, u.Email)}, langs...),
		User:    u,
	}
}

// Logout signs the client out. The session is cleared even when the
// provider cannot be reached.
func (s *Service) Logout(ctx context.Context, clientID string) {
	if err := s.provider.SignOut(ctx, clientID); err != nil {
		s.log.Error("sign out failed", zap.String("client_id", clientID), zap.Error(err))
		metrics.RecordAuth("logout", string(identity.CodeOf(err)))
		if s.users != nil {
			s.users.Clear(ctx, clientID)
		}
		return
	}
	metrics.RecordAuth("logout", "")
}

// failure maps a provider error to a localized message. Unknown errors get
// the fallback message and are logged.
func (s *Service) failure(action string, err error, fallbackID string, langs []string) string {
	code := identity.CodeOf(err)
	metrics.RecordAuth(action, outcome(code))

	var id string
	var data map[string]any
	switch code {
	case identity.CodeInvalidEmail:
		id = "auth.invalid_email"
	case identity.CodeWeakPassword:
		id = "auth.weak_password"
		data = map[string]any{"Min": s.minPassword}
	case identity.CodeEmailInUse:
		id = "auth.email_in_use"
	case identity.CodeWrongPassword:
		id = "auth.wrong_password"
	case identity.CodeUserNotFound:
		id = "auth.user_not_found"
	default:
		s.log.Error(action+" failed", zap.Error(err))
		id = fallbackID
	}
	return s.tr.Message(id, data, langs...)
}

func outcome(code identity.Code) string {
	if code == "" {
		return "error"
	}
	return string(code)
}
