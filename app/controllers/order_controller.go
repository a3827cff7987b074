package controllers

import (
	"github.com/shashiranjanraj/cafe/app/services"
	"github.com/shashiranjanraj/cafe/pkg/ctx"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

type statusInput struct {
	OrderID   uint   `json:"orderId"   validate:"required"`
	NewStatus string `json:"newStatus" validate:"required"`
}

type orderRef struct {
	OrderID uint `json:"orderId" validate:"required"`
}

// PlaceOrder checks out the caller's cart.
func (ctl *OrderController) PlaceOrder(c *ctx.Context) {
	var in services.PlaceOrderInput
	if !c.BindJSON(&in) {
		return
	}
	order, err := ctl.orders.PlaceFromCart(c.Context(), c.UserID(), in)
	if err != nil {
		fail(c, err, "Unable to place your order.")
		return
	}
	c.Done("Order placed successfully.", order)
}

// GetAllOrders lists orders for the counter, optionally filtered by
// ?status= and ?search=.
func (ctl *OrderController) GetAllOrders(c *ctx.Context) {
	list, err := ctl.orders.ListAll(c.Context(), c.Query("status"), c.Query("search"))
	if err != nil {
		fail(c, err, "Unable to load orders.")
		return
	}
	c.Success(list)
}

func (ctl *OrderController) GetOrder(c *ctx.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}
	order, err := ctl.orders.GetDetails(c.Context(), id)
	if err != nil {
		fail(c, err, "Unable to load the order.")
		return
	}
	c.Success(order)
}

func (ctl *OrderController) UpdateOrderStatus(c *ctx.Context) {
	var in statusInput
	if !c.BindJSON(&in) {
		return
	}
	if err := ctl.orders.UpdateStatus(c.Context(), in.OrderID, in.NewStatus); err != nil {
		fail(c, err, "Unable to update the order status.")
		return
	}
	c.Succeed(nil)
}

func (ctl *OrderController) CancelOrder(c *ctx.Context) {
	var in orderRef
	if !c.BindJSON(&in) {
		return
	}
	if err := ctl.orders.Cancel(c.Context(), in.OrderID); err != nil {
		fail(c, err, "Unable to cancel the order.")
		return
	}
	c.Message("Order cancelled.")
}
