// internal/app/features/errors/render.go
package errors

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ErrorLogger logs handler failures and renders a friendly page.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// LogServerError logs err and answers 500. HTML callers get an error page
// with userMsg and a link to backURL; others get a plain body.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.Log.Error(logMsg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	e.respond(w, r, http.StatusInternalServerError, "Terjadi kesalahan", userMsg, backURL)
}

// LogBadRequest logs err at warn level and answers 400.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.Log.Warn(logMsg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	e.respond(w, r, http.StatusBadRequest, "Permintaan tidak valid", userMsg, backURL)
}

// NotFound answers 404 with userMsg.
func (e *ErrorLogger) NotFound(w http.ResponseWriter, r *http.Request, userMsg, backURL string) {
	e.respond(w, r, http.StatusNotFound, "Tidak ditemukan", userMsg, backURL)
}

func (e *ErrorLogger) respond(w http.ResponseWriter, r *http.Request, status int, title, userMsg, backURL string) {
	if !wantsHTML(r) {
		http.Error(w, userMsg, status)
		return
	}
	w.WriteHeader(status)
	render(w, r, title, userMsg, backURL)
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	accept := r.Header.Get("Accept")
	return accept == "" || strings.Contains(accept, "text/html")
}

