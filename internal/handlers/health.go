package handlers

import (
	"context"
	"net/http"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health reports liveness and whether the store answers a ping.
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Database: "unreachable"})
			return
		}
		respondJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "ok"})
	}
}
