package sse_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shashiranjanraj/cafe/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerDeliversToTopicOnly(t *testing.T) {
	b := sse.NewBroker(4)
	mine, cancel := b.Subscribe("user:1")
	defer cancel()
	other, cancelOther := b.Subscribe("user:2")
	defer cancelOther()

	n := b.Publish("user:1", sse.Event{Name: "status", Data: 7})
	assert.Equal(t, 1, n)

	select {
	case ev := <-mine:
		assert.Equal(t, "status", ev.Name)
	default:
		t.Fatal("expected an event")
	}
	assert.Empty(t, other)
}

func TestBrokerCancelClosesAndUnsubscribes(t *testing.T) {
	b := sse.NewBroker(1)
	ch, cancel := b.Subscribe("t")
	assert.Equal(t, 1, b.Subscribers("t"))

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, b.Subscribers("t"))
	assert.Equal(t, 0, b.Publish("t", sse.Event{Name: "x"}))
}

func TestBrokerDropsForFullSubscriber(t *testing.T) {
	b := sse.NewBroker(1)
	_, cancel := b.Subscribe("t")
	defer cancel()

	assert.Equal(t, 1, b.Publish("t", sse.Event{Name: "a"}))
	assert.Equal(t, 0, b.Publish("t", sse.Event{Name: "b"}))
}

func TestPipeWritesEventsUntilClosed(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stream", nil)
	ctx, stop := context.WithCancel(req.Context())
	defer stop()
	req = req.WithContext(ctx)

	stream := sse.New(rec, req)
	require.NotNil(t, stream)

	events := make(chan sse.Event, 2)
	events <- sse.Event{Name: "status", Data: map[string]any{"id": 3, "status": "Ready"}}
	close(events)

	stream.Pipe(events, time.Minute)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "event: status\n"), body)
	assert.Contains(t, body, `"status":"Ready"`)
}

func TestSendNumbersEvents(t *testing.T) {
	rec := httptest.NewRecorder()
	stream := sse.New(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))
	require.NotNil(t, stream)

	require.NoError(t, stream.Send("snapshot", []int{}))
	require.NoError(t, stream.Send("status", 1))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "retry: 3000\n\n"), body)
	assert.Contains(t, body, "id: 1\nevent: snapshot\ndata: []\n\n")
	assert.Contains(t, body, "id: 2\nevent: status\ndata: 1\n\n")
}

func TestPipeStopsWhenClientLeaves(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stream", nil)
	ctx, stop := context.WithCancel(req.Context())
	stream := sse.New(rec, req.WithContext(ctx))
	require.NotNil(t, stream)

	done := make(chan struct{})
	go func() {
		stream.Pipe(make(chan sse.Event), time.Minute)
		close(done)
	}()
	stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Pipe did not return after the client left")
	}
}
