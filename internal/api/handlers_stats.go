package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleSplitStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "split stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"records": s.records.Len(),
		"stats":   s.stats.Snapshot(),
	})
}
