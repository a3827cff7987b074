package services

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/app/repositories"
	"github.com/shashiranjanraj/cafe/pkg/collection"
	"github.com/shashiranjanraj/cafe/pkg/orm"
)

// AddToCartInput is the body of AddToCart. The price is never taken from the
// client: the line is priced from the product and the chosen customizations.
type AddToCartInput struct {
	models.LineOptions

	ProductID      uint                           `json:"productId"      validate:"required"`
	Quantity       int                            `json:"quantity"       validate:"gte=0"`
	Customizations []models.SelectedCustomization `json:"customizations"`
}

// CartSummary carries the totals the cart badge and checkout page show.
type CartSummary struct {
	Subtotal  float64 `json:"subtotal"`
	Total     float64 `json:"total"`
	CartCount int     `json:"cartCount"`
}

type CartService struct {
	carts    *repositories.CartRepository
	products *repositories.ProductRepository
	now      func() time.Time
}

func NewCartService() *CartService {
	return &CartService{
		carts:    repositories.NewCartRepository(),
		products: repositories.NewProductRepository(),
		now:      time.Now,
	}
}

// WithClock replaces the time source used for cart timestamps.
func (s *CartService) WithClock(now func() time.Time) *CartService {
	s.now = now
	return s
}

// GetItems returns the user's cart lines; a user without a cart has none.
func (s *CartService) GetItems(ctx context.Context, userID uint) ([]models.CartItem, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if orm.IsNotFound(err) {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, fault(ctx, "cart.get_items", userID, err)
	}
	return cart.Items, nil
}

// Summary totals the user's cart.
func (s *CartService) Summary(ctx context.Context, userID uint) (CartSummary, error) {
	items, err := s.GetItems(ctx, userID)
	if err != nil {
		return CartSummary{}, err
	}
	return summarize(items), nil
}

// AddItem puts item in the user's cart, creating the cart on first use. A
// line with the same product and customization signature absorbs the
// quantity instead of a new line being added.
func (s *CartService) AddItem(ctx context.Context, userID uint, item models.CartItem) error {
	if item.ProductID == 0 {
		return invalidData("A product is required.")
	}
	if item.Quantity <= 0 {
		return invalidData("Quantity must be at least 1.")
	}
	item.Recalculate()

	err := repositories.Transaction(ctx, func(tx *orm.Query) error {
		repo := s.carts.WithTx(tx)
		now := s.now()

		cart, err := repo.FindByUser(ctx, userID)
		if orm.IsNotFound(err) {
			if err := repo.Create(ctx, userID, now); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		sig := item.Signature()
		for _, line := range cart.Items {
			if line.ProductID == item.ProductID && line.Signature() == sig {
				line.Quantity += item.Quantity
				line.Recalculate()
				if err := repo.SetLineQuantity(ctx, line.ID, line.Quantity, line.TotalPrice); err != nil {
					return err
				}
				return repo.Touch(ctx, userID, now)
			}
		}

		item.ID = 0
		item.CartID = userID
		if err := repo.AddItem(ctx, &item); err != nil {
			return err
		}
		return repo.Touch(ctx, userID, now)
	})
	if err != nil {
		return fault(ctx, "cart.add_item", userID, err)
	}
	return nil
}

// AddProduct prices a line from the catalogue and adds it to the cart.
func (s *CartService) AddProduct(ctx context.Context, userID uint, in AddToCartInput) (CartSummary, error) {
	p, err := s.products.FindByID(ctx, in.ProductID)
	if orm.IsNotFound(err) {
		return CartSummary{}, invalidData("Product not found.")
	}
	if err != nil {
		return CartSummary{}, fault(ctx, "cart.add_product", in.ProductID, err)
	}
	if !p.IsAvailable || p.Status != models.ProductAvailable {
		return CartSummary{}, invalidOperation("%s is not available right now.", p.Name)
	}

	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}

	selected, extra, err := priceSelections(p, in.Customizations)
	if err != nil {
		return CartSummary{}, err
	}
	unit := p.BasePrice + extra
	custom := make([]models.CartItemCustomization, 0, len(selected))
	for _, c := range selected {
		custom = append(custom, models.CartItemCustomization{SelectedCustomization: c})
	}

	item := models.CartItem{
		ProductID:      p.ID,
		ProductName:    p.Name,
		UnitPrice:      models.RoundMoney(unit),
		Description:    p.Description,
		ImageURL:       p.ImageURL,
		Quantity:       qty,
		LineOptions:    in.LineOptions,
		Customizations: custom,
	}
	if err := s.AddItem(ctx, userID, item); err != nil {
		return CartSummary{}, err
	}
	return s.Summary(ctx, userID)
}

// SetQuantity sets the quantity of the user's first line for productID.
// qty <= 0 removes that line.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID uint, qty int) error {
	_, err := s.updateLine(ctx, userID, "cart.set_quantity", func(l models.CartItem) bool {
		return l.ProductID == productID
	}, qty)
	return err
}

// RemoveItem removes every line for productID from the user's cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uint) error {
	err := repositories.Transaction(ctx, func(tx *orm.Query) error {
		repo := s.carts.WithTx(tx)
		cart, err := repo.FindByUser(ctx, userID)
		if err != nil {
			return err
		}
		ids := collection.Collect(cart.Items, func(l models.CartItem) (uint, bool) {
			return l.ID, l.ProductID == productID
		})
		if len(ids) == 0 {
			return invalidData("Item not found in cart.")
		}
		if err := repo.DeleteItems(ctx, ids...); err != nil {
			return err
		}
		return repo.Touch(ctx, userID, s.now())
	})
	return s.lineError(ctx, "cart.remove_item", userID, err)
}

// SetItemQuantity sets the quantity of one cart line. qty <= 0 removes it.
// It returns the line's new total (0 when removed) and the cart totals.
func (s *CartService) SetItemQuantity(ctx context.Context, userID, cartItemID uint, qty int) (float64, CartSummary, error) {
	line, err := s.updateLine(ctx, userID, "cart.set_item_quantity", func(l models.CartItem) bool {
		return l.ID == cartItemID
	}, qty)
	if err != nil {
		return 0, CartSummary{}, err
	}
	sum, err := s.Summary(ctx, userID)
	return line.TotalPrice, sum, err
}

// RemoveLine removes one cart line.
func (s *CartService) RemoveLine(ctx context.Context, userID, cartItemID uint) (CartSummary, error) {
	if _, err := s.updateLine(ctx, userID, "cart.remove_line", func(l models.CartItem) bool {
		return l.ID == cartItemID
	}, 0); err != nil {
		return CartSummary{}, err
	}
	return s.Summary(ctx, userID)
}

// Clear empties the user's cart by deleting it.
func (s *CartService) Clear(ctx context.Context, userID uint) error {
	err := repositories.Transaction(ctx, func(tx *orm.Query) error {
		return s.carts.WithTx(tx).Delete(ctx, userID)
	})
	if err != nil {
		return fault(ctx, "cart.clear", userID, err)
	}
	return nil
}

// PruneStale deletes carts untouched since cutoff and returns how many went.
func (s *CartService) PruneStale(ctx context.Context, cutoff time.Time) (int, error) {
	owners, err := s.carts.StaleOwners(ctx, cutoff)
	if err != nil {
		return 0, fault(ctx, "cart.prune", cutoff, err)
	}
	for _, userID := range owners {
		if err := s.Clear(ctx, userID); err != nil {
			return 0, err
		}
	}
	return len(owners), nil
}

// updateLine finds the first line matching match and sets its quantity,
// deleting it when qty <= 0. The returned line carries the new values.
func (s *CartService) updateLine(ctx context.Context, userID uint, op string, match func(models.CartItem) bool, qty int) (models.CartItem, error) {
	var updated models.CartItem
	err := repositories.Transaction(ctx, func(tx *orm.Query) error {
		repo := s.carts.WithTx(tx)
		cart, err := repo.FindByUser(ctx, userID)
		if err != nil {
			return err
		}

		for _, line := range cart.Items {
			if !match(line) {
				continue
			}
			if qty <= 0 {
				if err := repo.DeleteItems(ctx, line.ID); err != nil {
					return err
				}
				line.Quantity = 0
				line.TotalPrice = 0
			} else {
				line.Quantity = qty
				line.Recalculate()
				if err := repo.SetLineQuantity(ctx, line.ID, line.Quantity, line.TotalPrice); err != nil {
					return err
				}
			}
			updated = line
			return repo.Touch(ctx, userID, s.now())
		}
		return invalidData("Item not found in cart.")
	})
	return updated, s.lineError(ctx, op, userID, err)
}

// lineError maps a missing cart to the same message as a missing line.
func (s *CartService) lineError(ctx context.Context, op string, userID uint, err error) error {
	switch {
	case err == nil:
		return nil
	case orm.IsNotFound(err):
		return invalidData("Item not found in cart.")
	case IsDomain(err):
		return err
	default:
		return fault(ctx, op, userID, err)
	}
}

func summarize(items []models.CartItem) CartSummary {
	subtotal := models.RoundMoney(collection.Sum(items, func(l models.CartItem) float64 { return l.TotalPrice }))
	return CartSummary{
		Subtotal:  subtotal,
		Total:     subtotal,
		CartCount: collection.Sum(items, func(l models.CartItem) int { return l.Quantity }),
	}
}

// priceSelections resolves the requested customizations against the ones
// linked to p and prices them from the catalogue. Only name and value are
// read from the request.
func priceSelections(p models.Product, requested []models.SelectedCustomization) ([]models.SelectedCustomization, float64, error) {
	linked := make(map[string]models.Customization, len(p.ProductCustomizations))
	for _, l := range p.ProductCustomizations {
		linked[l.Customization.Name] = l.Customization
	}

	out := make([]models.SelectedCustomization, 0, len(requested))
	seen := make(map[string]bool, len(requested))
	var extra float64
	for _, r := range requested {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		c, ok := linked[name]
		if !ok {
			return nil, 0, invalidData("%s is not offered for %s.", name, p.Name)
		}
		if seen[name] {
			return nil, 0, invalidData("%s was chosen more than once.", name)
		}
		seen[name] = true

		value, price, err := priceCustomization(c, strings.TrimSpace(r.Value))
		if err != nil {
			return nil, 0, err
		}
		if value == "" {
			continue
		}
		extra += price
		out = append(out, models.SelectedCustomization{
			Name:         c.Name,
			Value:        value,
			Type:         string(c.Type),
			DisplayOrder: c.DisplayOrder,
			Price:        models.RoundMoney(price),
		})
	}
	return out, extra, nil
}

// priceCustomization returns the normalized value and its price. An empty
// value means nothing was chosen.
func priceCustomization(c models.Customization, value string) (string, float64, error) {
	if value == "" {
		return "", 0, nil
	}

	switch c.Type {
	case models.CustomizationQuantity:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return "", 0, invalidData("%s must be a whole number.", c.Name)
		}
		if c.MaxQuantity != nil && n > *c.MaxQuantity {
			return "", 0, invalidData("%s allows at most %d.", c.Name, *c.MaxQuantity)
		}
		if n == 0 {
			return "", 0, nil
		}
		return strconv.Itoa(n), c.PricePerUnit * float64(n), nil

	case models.CustomizationMultiSelect:
		names := make([]string, 0, 4)
		var price float64
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" || slices.Contains(names, part) {
				continue
			}
			o, ok := optionNamed(c, part)
			if !ok {
				return "", 0, invalidData("%s is not a choice for %s.", part, c.Name)
			}
			names = append(names, o.Name)
			price += o.PriceModifier
		}
		return strings.Join(names, ", "), price, nil

	default:
		o, ok := optionNamed(c, value)
		if !ok {
			return "", 0, invalidData("%s is not a choice for %s.", value, c.Name)
		}
		return o.Name, o.PriceModifier, nil
	}
}

func optionNamed(c models.Customization, name string) (models.CustomizationOption, bool) {
	for _, o := range c.Options {
		if o.Name == name {
			return o, true
		}
	}
	return models.CustomizationOption{}, false
}
