package middleware

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthStatus represents the health status
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	UptimeSec int64     `json:"uptime_sec"`
}

var startTime = time.Now()

// HealthHandler reports liveness. The record store is in-process memory,
// so a serving process is a healthy process.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		UptimeSec: int64(time.Since(startTime).Seconds()),
	})
}
