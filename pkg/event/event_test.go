package event_test

import (
	"sync/atomic"
	"testing"

	"github.com/shashiranjanraj/cafe/pkg/event"
	"github.com/shashiranjanraj/cafe/pkg/workerpool"
	"github.com/stretchr/testify/assert"
)

func TestFireRunsListenersInOrder(t *testing.T) {
	t.Cleanup(event.Flush)

	var got []string
	event.Listen("order.placed", func(p interface{}) { got = append(got, "a:"+p.(string)) })
	event.Listen("order.placed", func(p interface{}) { got = append(got, "b:"+p.(string)) })
	event.Listen("other", func(interface{}) { got = append(got, "other") })

	event.Fire("order.placed", "A1B2C3D4")

	assert.Equal(t, []string{"a:A1B2C3D4", "b:A1B2C3D4"}, got)
}

func TestFireAsyncOnPool(t *testing.T) {
	pool := workerpool.New("events", 2)
	event.UsePool(pool)
	t.Cleanup(func() {
		event.UsePool(nil)
		pool.Shutdown()
		event.Flush()
	})

	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		event.Listen("order.status_changed", func(interface{}) { calls.Add(1) })
	}

	event.FireAsync("order.status_changed", nil)
	event.Wait()

	assert.Equal(t, int32(3), calls.Load())
}
