package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"vibeledger/internal/log"
)

// handleEvents streams change notifications for the signed-in owner as
// server-sent events. The page listens and refreshes its metric cards
// and recent list when a transaction lands, from any of the owner's
// tabs or devices.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sess := session(r.Context())
	events, cancel := s.hub.Subscribe(sess.UserID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Confirm the subscription right away so the client knows it is live.
	fmt.Fprint(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	log.FromContext(r.Context()).DebugContext(r.Context(), "event stream opened", log.FieldOwner, sess.UserID)

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			// Comment frame keeps proxies from closing the stream.
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				return
			}
			s.metricsCache.Delete(sess.UserID)
			payload, err := json.Marshal(map[string]string{"id": ev.TxID, "kind": ev.Kind})
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: transaction\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
