package controllers

import (
	"github.com/shashiranjanraj/cafe/app/services"
	"github.com/shashiranjanraj/cafe/pkg/ctx"
)

type CartController struct {
	cart *services.CartService
}

func NewCartController(cart *services.CartService) *CartController {
	return &CartController{cart: cart}
}

type quantityInput struct {
	CartItemID uint `json:"cartItemId" validate:"required"`
	Quantity   int  `json:"quantity"`
}

// cartLineInput names one line by cartItemId, or every line of a product
// by productId.
type cartLineInput struct {
	CartItemID uint `json:"cartItemId"`
	ProductID  uint `json:"productId"`
}

func totals(s services.CartSummary) map[string]any {
	return map[string]any{"subtotal": s.Subtotal, "total": s.Total, "cartCount": s.CartCount}
}

func (ctl *CartController) GetCart(c *ctx.Context) {
	items, err := ctl.cart.GetItems(c.Context(), c.UserID())
	if err != nil {
		fail(c, err, "Unable to load your cart.")
		return
	}
	sum, err := ctl.cart.Summary(c.Context(), c.UserID())
	if err != nil {
		fail(c, err, "Unable to load your cart.")
		return
	}
	body := totals(sum)
	body["items"] = items
	c.Succeed(body)
}

func (ctl *CartController) AddToCart(c *ctx.Context) {
	var in services.AddToCartInput
	if !c.BindJSON(&in) {
		return
	}
	sum, err := ctl.cart.AddProduct(c.Context(), c.UserID(), in)
	if err != nil {
		fail(c, err, "Unable to add the item to your cart.")
		return
	}
	body := totals(sum)
	body["message"] = "Item added to cart."
	c.Succeed(body)
}

// UpdateQuantity sets a line's quantity; 0 removes the line.
func (ctl *CartController) UpdateQuantity(c *ctx.Context) {
	var in quantityInput
	if !c.BindJSON(&in) {
		return
	}
	itemTotal, sum, err := ctl.cart.SetItemQuantity(c.Context(), c.UserID(), in.CartItemID, in.Quantity)
	if err != nil {
		fail(c, err, "Unable to update the quantity.")
		return
	}
	body := totals(sum)
	body["itemTotal"] = itemTotal
	c.Succeed(body)
}

func (ctl *CartController) RemoveFromCart(c *ctx.Context) {
	var in cartLineInput
	if !c.BindJSON(&in) {
		return
	}
	var (
		sum services.CartSummary
		err error
	)
	switch {
	case in.CartItemID != 0:
		sum, err = ctl.cart.RemoveLine(c.Context(), c.UserID(), in.CartItemID)
	case in.ProductID != 0:
		if err = ctl.cart.RemoveItem(c.Context(), c.UserID(), in.ProductID); err == nil {
			sum, err = ctl.cart.Summary(c.Context(), c.UserID())
		}
	default:
		c.Fail("A cart item or product is required.")
		return
	}
	if err != nil {
		fail(c, err, "Unable to remove the item.")
		return
	}
	c.Succeed(totals(sum))
}

func (ctl *CartController) ClearCart(c *ctx.Context) {
	if err := ctl.cart.Clear(c.Context(), c.UserID()); err != nil {
		fail(c, err, "Unable to clear your cart.")
		return
	}
	c.Succeed(totals(services.CartSummary{}))
}
