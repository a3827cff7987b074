package controllers

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/cafe/app/listeners"
	"github.com/shashiranjanraj/cafe/app/services"
	"github.com/shashiranjanraj/cafe/pkg/ctx"
	"github.com/shashiranjanraj/cafe/pkg/sse"
)

type OrderHistoryController struct {
	history   *services.OrderHistoryService
	streams   *sse.Broker
	heartbeat time.Duration
}

func NewOrderHistoryController(history *services.OrderHistoryService, streams *sse.Broker) *OrderHistoryController {
	return &OrderHistoryController{history: history, streams: streams, heartbeat: 25 * time.Second}
}

func (ctl *OrderHistoryController) GetOrders(c *ctx.Context) {
	list, err := ctl.history.ListForUser(c.Context(), c.UserID())
	if err != nil {
		fail(c, err, "Unable to load your orders.")
		return
	}
	c.Success(list)
}

func (ctl *OrderHistoryController) GetOrderDetails(c *ctx.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}
	order, err := ctl.history.GetOrderDetails(c.Context(), c.UserID(), id)
	if err != nil {
		fail(c, err, "Unable to load the order.")
		return
	}
	c.Succeed(map[string]any{"order": order})
}

// GetOrderStatuses answers with a bare [{id, status}] array, which the
// order-tracking page polls.
func (ctl *OrderHistoryController) GetOrderStatuses(c *ctx.Context) {
	list, err := ctl.history.GetOrderStatuses(c.Context(), c.UserID())
	if err != nil {
		fail(c, err, "Unable to load order statuses.")
		return
	}
	if list == nil {
		list = []services.OrderStatusView{}
	}
	c.JSON(http.StatusOK, list)
}

// StatusStream pushes the caller's status changes as they happen, starting
// with a snapshot of the current statuses.
func (ctl *OrderHistoryController) StatusStream(c *ctx.Context) {
	userID := c.UserID()
	events, cancel := ctl.streams.Subscribe(listeners.UserTopic(userID))
	defer cancel()

	stream := sse.New(c.W, c.R)
	if stream == nil {
		return
	}
	if list, err := ctl.history.GetOrderStatuses(c.Context(), userID); err == nil {
		stream.Send("snapshot", list) //nolint:errcheck
	}
	stream.Pipe(events, ctl.heartbeat)
}
