package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/coder/websocket"
)

const writeTimeout = 5 * time.Second

func accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, context.Context, error) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		return nil, nil, err
	}
	return c, r.Context(), nil
}

// StreamStatus sends the current status followed by every classification
// change as JSON text messages, until the client goes away or the tracker
// closes the stream.
func StreamStatus(s *Service, w http.ResponseWriter, r *http.Request) {
	c, ctx, err := accept(w, r)
	if err != nil {
		log.WithError(err).Error("Failed to accept client")
		return
	}
	defer c.Close(websocket.StatusNormalClosure, "closing")

	// Client messages are ignored. The returned context ends when the
	// client disconnects.
	ctx = c.CloseRead(ctx)

	events, unsub := s.tracker.Subscribe()
	defer unsub()

	for {
		select {
		case <-ctx.Done():
			log.Debug("Status stream closed by client")
			return
		case ev, ok := <-events:
			if !ok {
				c.Close(websocket.StatusGoingAway, "tracker closed")
				return
			}
			b, err := json.Marshal(ev)
			if err != nil {
				log.WithError(err).Error("Failed to encode status event")
				continue
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err = c.Write(wctx, websocket.MessageText, b)
			cancel()
			if err != nil {
				log.WithError(err).Debug("Status stream write failed")
				return
			}
		}
	}
}
