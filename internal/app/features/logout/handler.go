// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"net/http"

	"github.com/dalemusser/filmhub/internal/app/system/auth"
	"github.com/dalemusser/filmhub/internal/app/system/navigation"
	"github.com/dalemusser/filmhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// SignerOut ends the provider session of a browser client.
type SignerOut interface {
	Logout(ctx context.Context, clientID string)
}

type Handler struct {
	Log  *zap.Logger
	Auth SignerOut
}

func NewHandler(authn SignerOut, logger *zap.Logger) *Handler {
	return &Handler{
		Log:  logger,
		Auth: authn,
	}
}

// ServeLogout handles GET and POST /logout. The client-id cookie survives;
// the provider's sign-out event clears the cached user and its storage key.
// Clients without a session are simply sent to the login page.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if clientID := auth.ClientID(r); clientID != "" {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		h.Auth.Logout(ctx, clientID)
		h.Log.Debug("client signed out", zap.String("client_id", clientID))
	}

	navigation.Redirect(w, r, "/login")
}
