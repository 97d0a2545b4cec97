package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/filmhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// SessionCounter reports how many client sessions are held in memory.
type SessionCounter interface {
	Len() int
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client   Pinger
	Sessions SessionCounter
	Log      *zap.Logger
}

// NewHandler constructs a health Handler. sessions may be nil.
func NewHandler(client Pinger, sessions SessionCounter, logger *zap.Logger) *Handler {
	return &Handler{
		Client:   client,
		Sessions: sessions,
		Log:      logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Sessions *int   `json:"sessions,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "sessions":3 }
//
// On DB failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	if h.Sessions != nil {
		n := h.Sessions.Len()
		resp.Sessions = &n
	}

	_ = json.NewEncoder(w).Encode(resp)
}
