// Package sse implements the Server-Sent Events side of the dashboard's
// live reservation stream.
//
//	r.Get("/api/events", func(w http.ResponseWriter, r *http.Request) {
//	    stream := sse.New(w, r)
//	    for rsv := range updates {
//	        stream.Send("reservation", rsv)
//	        if stream.IsClosed() { break }
//	    }
//	})
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Stream is one client's open event connection.
type Stream struct {
	w       http.ResponseWriter
	r       *http.Request
	flusher http.Flusher
	closed  bool
	nextID  int
}

// New sets the event-stream headers and returns the stream. It returns
// nil when the ResponseWriter cannot flush, which the handler treats as
// an unrecoverable transport problem.
func New(w http.ResponseWriter, r *http.Request) *Stream {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return nil
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering

	return &Stream{w: w, r: r, flusher: flusher}
}

// Send writes a named event with a JSON payload. Each event carries an
// incrementing id line so a reconnecting browser reports what it saw
// via Last-Event-ID.
func (s *Stream) Send(event string, data any) error {
	if s == nil || s.closed {
		return nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}

	s.nextID++
	fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload)
	s.flusher.Flush()

	s.checkClient()
	return nil
}

// Comment writes a comment line, used as a keepalive heartbeat.
func (s *Stream) Comment(msg string) {
	if s == nil || s.closed {
		return
	}
	fmt.Fprintf(s.w, ": %s\n\n", msg)
	s.flusher.Flush()
}

// IsClosed reports whether the client has gone away.
func (s *Stream) IsClosed() bool {
	if s == nil {
		return true
	}
	s.checkClient()
	return s.closed
}

func (s *Stream) checkClient() {
	select {
	case <-s.r.Context().Done():
		s.closed = true
	default:
	}
}
