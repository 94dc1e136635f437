package api

import (
	"net/http"
	"time"
)

const writeWait = 200 * time.Millisecond

// handleStateWS sends the full state array on connect and again after every
// update. Updates that land while a send is in flight are coalesced.
func (s *Server) handleStateWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	// the server's ReadTimeout survives the hijack; clients may idle
	conn.SetReadDeadline(time.Time{})

	updates, cancel := s.store.Subscribe()
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(s.store.Snapshot()); err != nil {
			s.log.Debug().Err(err).Msg("write state")
			return
		}
		select {
		case <-updates:
		case <-closed:
			return
		}
	}
}
