// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/filmhub/internal/app/features/errors"
	"github.com/dalemusser/filmhub/internal/app/system/auth"
	"github.com/dalemusser/filmhub/internal/app/system/authz"
	"github.com/dalemusser/filmhub/internal/app/system/inputval"
	"github.com/dalemusser/filmhub/internal/app/system/locale"
	"github.com/dalemusser/filmhub/internal/app/system/navigation"
	"github.com/dalemusser/filmhub/internal/app/system/timeouts"
	"github.com/dalemusser/filmhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Authenticator signs a browser client in.
type Authenticator interface {
	Login(ctx context.Context, clientID, email, password string, langs ...string) auth.Result
}

// Flasher queues a message for the next rendered page.
type Flasher interface {
	SetFlash(w http.ResponseWriter, r *http.Request, f auth.Flash)
}

type Handler struct {
	Log    *zap.Logger
	Auth   Authenticator
	Flash  Flasher
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(authn Authenticator, flash Flasher, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:    logger,
		Auth:   authn,
		Flash:  flash,
		ErrLog: errLog,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error string
	Email string
}

type loginInput struct {
	Email    string `validate:"required,email" label:"Email"`
	Password string `validate:"required" label:"Password"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeLogin shows the form to anyone, including a client that is already
// signed in: registration lands here with the provider session open.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "", "")
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	in := loginInput{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	if res := inputval.Validate(in); res.HasErrors() {
		h.render(w, r, res.First(), in.Email)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res := h.Auth.Login(ctx, auth.ClientID(r), in.Email, in.Password, locale.Languages(r)...)
	if !res.Success {
		h.render(w, r, res.Message, in.Email)
		return
	}

	h.Log.Info("user signed in", zap.String("uid", res.User.UID))
	h.Flash.SetFlash(w, r, auth.Flash{Message: res.Message})
	navigation.Redirect(w, r, authz.HomePath(res.User.Role))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, errMsg, email string) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM: viewdata.NewBaseVM(w, r, "Login", "/login"),
		Error:  errMsg,
		Email:  email,
	})
}

