package rest

import (
	"encoding/json"
	"net/http"

	"github.com/rocketscienceinc/ludo-backend/internal/leaderboard"
)

func pingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// leaderboardHandler serves the ranked snapshot of one bucket; defaults
// to the all-time bucket.
func leaderboardHandler(board boardReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bucket := r.URL.Query().Get("bucket")
		if bucket == "" {
			bucket = leaderboard.BucketAllTime
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(board.Leaderboard(bucket)); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}
}
