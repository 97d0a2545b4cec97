// internal/app/features/register/handler.go
package register

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/filmhub/internal/app/features/errors"
	"github.com/dalemusser/filmhub/internal/app/system/auth"
	"github.com/dalemusser/filmhub/internal/app/system/inputval"
	"github.com/dalemusser/filmhub/internal/app/system/locale"
	"github.com/dalemusser/filmhub/internal/app/system/navigation"
	"github.com/dalemusser/filmhub/internal/app/system/timeouts"
	"github.com/dalemusser/filmhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Registrar creates an account and its profile.
type Registrar interface {
	Register(ctx context.Context, clientID, name, email, password string, langs ...string) auth.Result
}

// Flasher queues a message for the next rendered page.
type Flasher interface {
	SetFlash(w http.ResponseWriter, r *http.Request, f auth.Flash)
}

type Handler struct {
	Log         *zap.Logger
	Auth        Registrar
	Flash       Flasher
	ErrLog      *uierrors.ErrorLogger
	MinPassword int
}

func NewHandler(reg Registrar, flash Flasher, errLog *uierrors.ErrorLogger, minPassword int, logger *zap.Logger) *Handler {
	return &Handler{
		Log:         logger,
		Auth:        reg,
		Flash:       flash,
		ErrLog:      errLog,
		MinPassword: minPassword,
	}
}

type registerFormData struct {
	viewdata.BaseVM
	Error       string
	Name        string
	Email       string
	MinPassword int
}

// Password strength is the identity provider's call; only presence is
// checked here so the provider's localized message reaches the user.
type registerInput struct {
	Name     string `validate:"max=100" label:"Nama"`
	Email    string `validate:"required,email" label:"Email"`
	Password string `validate:"required" label:"Password"`
}

// GET /register
func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "", registerInput{})
}

// POST /register
func (h *Handler) HandleRegisterPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/register")
		return
	}

	in := registerInput{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	if res := inputval.Validate(in); res.HasErrors() {
		h.render(w, r, res.First(), in)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res := h.Auth.Register(ctx, auth.ClientID(r), in.Name, in.Email, in.Password, locale.Languages(r)...)
	if !res.Success {
		h.render(w, r, res.Message, in)
		return
	}

	h.Log.Info("user registered", zap.String("uid", res.User.UID))
	h.Flash.SetFlash(w, r, auth.Flash{Message: res.Message})
	navigation.Redirect(w, r, "/login")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, errMsg string, in registerInput) {
	templates.Render(w, r, "register", registerFormData{
		BaseVM:      viewdata.NewBaseVM(w, r, "Register", "/login"),
		Error:       errMsg,
		Name:        in.Name,
		Email:       in.Email,
		MinPassword: h.MinPassword,
	})
}
