// internal/app/features/movies/comments.go
package movies

import (
	"context"
	"errors"
	"net/http"

	commentstore "github.com/dalemusser/filmhub/internal/app/store/comments"
	"github.com/dalemusser/filmhub/internal/app/system/auth"
	"github.com/dalemusser/filmhub/internal/app/system/gates"
	"github.com/dalemusser/filmhub/internal/app/system/locale"
	"github.com/dalemusser/filmhub/internal/app/system/metrics"
	"github.com/dalemusser/filmhub/internal/app/system/navigation"
	"github.com/dalemusser/filmhub/internal/app/system/timeouts"
	"github.com/dalemusser/filmhub/internal/domain/models"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /movie/{id}/comments                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleComment appends a comment by the signed-in user. A client without a
// user is refused before anything is written.
func (h *Handler) HandleComment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.filmID(w, r)
	if !ok {
		return
	}
	langs := locale.Languages(r)

	d := gates.Check(r, gates.AnyUser())
	u, signedIn := auth.CurrentUser(r)
	if d.Allow && !signedIn {
		// Signed out between the check and the read.
		d = gates.Decision{Redirect: "/login", Status: http.StatusUnauthorized}
	}
	if !d.Allow {
		h.Log.Warn("comment without signed-in user", zap.String("film_id", id.Hex()))
		if !isHTMX(r) {
			h.Flash.SetFlash(w, r, auth.Flash{Message: h.Msg.Message("comment.login_required", nil, langs...), Error: true})
		}
		gates.Refuse(w, r, d)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/movie/"+id.Hex())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	// The film must exist and be visible to this user.
	if _, err := h.loadDetail(ctx, id, u.IsAdmin()); err != nil {
		h.detailError(w, r, err)
		return
	}

	actor := commentstore.Actor{ID: u.UID, Name: models.DisplayName(u.Name, u.Email)}
	var msgID string
	_, err := h.Comments.Append(ctx, id, actor, r.FormValue("text"))
	switch {
	case err == nil:
		metrics.CommentsPosted.Inc()
	case errors.Is(err, commentstore.ErrEmptyText):
		msgID = "comment.empty"
	case errors.Is(err, commentstore.ErrNoActor):
		msgID = "comment.login_required"
	default:
		h.Log.Error("append comment failed", zap.String("film_id", id.Hex()), zap.Error(err))
		msgID = "comment.failed"
	}

	var errMsg string
	if msgID != "" {
		errMsg = h.Msg.Message(msgID, nil, langs...)
	}

	if isHTMX(r) && r.Header.Get("HX-Target") == "detail-wrap" {
		data, err := h.loadDetail(ctx, id, u.IsAdmin())
		if err != nil {
			h.detailError(w, r, err)
			return
		}
		data.CommentError = errMsg
		h.renderDetail(w, r, data)
		return
	}

	if errMsg != "" {
		h.Flash.SetFlash(w, r, auth.Flash{Message: errMsg, Error: true})
	}
	navigation.Redirect(w, r, "/movie/"+id.Hex()+"#comments")
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
