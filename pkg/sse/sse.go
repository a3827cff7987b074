// Package sse streams Server-Sent Events and fans published events out to
// per-topic subscribers.
//
//	events, cancel := broker.Subscribe(topic)
//	defer cancel()
//	if s := sse.New(w, r); s != nil {
//	    s.Pipe(events, 25*time.Second)
//	}
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// reconnect is the retry hint sent to browsers, in milliseconds.
const reconnect = 3000

// Stream is one open event-stream response.
type Stream struct {
	w    http.ResponseWriter
	rc   *http.ResponseController
	done <-chan struct{}
	seq  int
	err  error
}

// New writes the stream headers. It answers 500 and returns nil when the
// writer cannot flush.
func New(w http.ResponseWriter, r *http.Request) *Stream {
	rc := http.NewResponseController(w)
	// Streams outlive the server's WriteTimeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		http.Error(w, "streaming unavailable", http.StatusInternalServerError)
		return nil
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	s := &Stream{w: w, rc: rc, done: r.Context().Done()}
	if _, err := fmt.Fprintf(w, "retry: %d\n\n", reconnect); err != nil {
		return nil
	}
	if err := rc.Flush(); err != nil {
		return nil
	}
	return s
}

// Send writes one event with a JSON payload and a sequential id.
func (s *Stream) Send(event string, data any) error {
	if s.err != nil {
		return s.err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: encode %s: %w", event, err)
	}
	s.seq++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.seq, event, payload); err != nil {
		s.err = fmt.Errorf("sse: write %s: %w", event, err)
		return s.err
	}
	if err := s.rc.Flush(); err != nil {
		s.err = fmt.Errorf("sse: flush: %w", err)
	}
	return s.err
}

func (s *Stream) ping() error {
	if _, err := fmt.Fprint(s.w, ": ping\n\n"); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Pipe forwards events until the client leaves, events closes or a write
// fails. A comment line goes out every heartbeat to keep proxies open.
func (s *Stream) Pipe(events <-chan Event, heartbeat time.Duration) {
	tick := time.NewTicker(heartbeat)
	defer tick.Stop()

	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-events:
			if !ok || s.Send(ev.Name, ev.Data) != nil {
				return
			}
		case <-tick.C:
			if err := s.ping(); err != nil {
				return
			}
		}
	}
}
