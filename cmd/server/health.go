package main

import (
	"database/sql"
	"encoding/json"
	"net/http"

	platformredis "downline/internal/platform/redis"
)

// healthHandler reports liveness of the process and its dependencies.
// Redis is optional, so a nil client is simply omitted from the report.
func healthHandler(db *sql.DB, redisClient *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		status := http.StatusOK
		report := map[string]string{"status": "ok"}

		if err := db.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			report["status"] = "degraded"
			report["postgres"] = err.Error()
		} else {
			report["postgres"] = "ok"
		}

		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				status = http.StatusServiceUnavailable
				report["status"] = "degraded"
				report["redis"] = err.Error()
			} else {
				report["redis"] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(report)
	}
}
