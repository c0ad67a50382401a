// Package ws implements a WebSocket subscriber for the reservation push
// broker, using gorilla/websocket.
//
// # Quick start
//
//	sub := ws.Subscribe(ctx, config.PushURL(), config.PushChannel())
//	for ev := range sub.Events {
//	    if ev.Event == "new-reservation" {
//	        // decode ev.Data
//	    }
//	}
//
// The subscriber reconnects automatically with exponential backoff until
// the context is cancelled; the Events channel closes when it gives up.
package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shashiranjanraj/sofreh/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024 // 512 KB

	backoffMin = time.Second
	backoffMax = 30 * time.Second
)

// Event is one frame received from the broker.
type Event struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
}

// subscribeFrame is sent once per connection to join a channel.
type subscribeFrame struct {
	Event   string `json:"event"`
	Channel string `json:"channel"`
}

// Subscriber is a live subscription to one broker channel.
type Subscriber struct {
	// Events delivers broker frames in arrival order.  Closed after the
	// context is cancelled.
	Events chan Event

	url     string
	channel string
}

// Subscribe dials the broker and joins channel.  The connection is managed
// in a background goroutine; the caller only reads sub.Events.
func Subscribe(ctx context.Context, url, channel string) *Subscriber {
	sub := &Subscriber{
		Events:  make(chan Event, 256),
		url:     url,
		channel: channel,
	}
	go sub.run(ctx)
	return sub
}

func (s *Subscriber) run(ctx context.Context) {
	defer close(s.Events)

	backoff := backoffMin
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := s.dial(ctx)
		if err != nil {
			logger.Warn("ws: connect failed", "url", s.url, "error", err, "retry_in", backoff.String())
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = nextBackoff(backoff)
			continue
		}

		backoff = backoffMin
		logger.Info("ws: connected", "url", s.url, "channel", s.channel)
		s.readLoop(ctx, conn)
		conn.Close()
	}
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > backoffMax {
		return backoffMax
	}
	return d
}

func (s *Subscriber) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, s.url, nil)
	if err != nil {
		return nil, err
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(subscribeFrame{Event: "subscribe", Channel: s.channel}); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// readLoop pumps frames from conn to s.Events until the connection breaks
// or ctx is cancelled.  A ping ticker keeps the connection alive.
func (s *Subscriber) readLoop(ctx context.Context, conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-ctx.Done():
				conn.Close()
				return
			case <-done:
				return
			}
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) && ctx.Err() == nil {
				logger.Warn("ws: unexpected close", "error", err)
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			logger.Warn("ws: bad frame", "error", err)
			continue
		}
		if ev.Channel != "" && ev.Channel != s.channel {
			continue
		}

		select {
		case s.Events <- ev:
		default:
			// Consumer is stalled — drop the frame rather than block the pump.
		}
	}
}
