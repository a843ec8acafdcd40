package service

import (
	"math"

	"rankha/backend/internal/domain"
	"rankha/backend/internal/store"
)

type CartLine struct {
	Product domain.Product
	Qty     int
}

// Cart is an in-progress sale. Quantities are capped at the recorded
// stock of each product, and all money arithmetic is integral satang.
type Cart struct {
	lines    []CartLine
	customer *domain.Customer
}

func NewCart() *Cart {
	return &Cart{}
}

func (c *Cart) SetCustomer(customer *domain.Customer) {
	c.customer = customer
}

func (c *Cart) Customer() *domain.Customer {
	return c.customer
}

// Add puts qty more units of product into the cart, merging with an
// existing line. The resulting quantity may not exceed product stock.
func (c *Cart) Add(product domain.Product, qty int) error {
	if qty < 1 {
		return store.ErrInvalidSale
	}
	for i := range c.lines {
		if c.lines[i].Product.ID == product.ID {
			next := c.lines[i].Qty + qty
			if next > product.Stock {
				return store.ErrInsufficientStock
			}
			c.lines[i].Product = product
			c.lines[i].Qty = next
			return nil
		}
	}
	if qty > product.Stock {
		return store.ErrInsufficientStock
	}
	c.lines = append(c.lines, CartLine{Product: product, Qty: qty})
	return nil
}

// SetQty replaces the quantity of a line. Zero removes the line.
func (c *Cart) SetQty(productID string, qty int) error {
	if qty < 0 {
		return store.ErrInvalidSale
	}
	if qty == 0 {
		c.Remove(productID)
		return nil
	}
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			if qty > c.lines[i].Product.Stock {
				return store.ErrInsufficientStock
			}
			c.lines[i].Qty = qty
			return nil
		}
	}
	return store.ErrNotFound
}

func (c *Cart) Remove(productID string) {
	kept := c.lines[:0]
	for _, line := range c.lines {
		if line.Product.ID != productID {
			kept = append(kept, line)
		}
	}
	c.lines = kept
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) SubtotalSatang() int64 {
	subtotal := int64(0)
	for _, line := range c.lines {
		subtotal += int64(line.Qty) * line.Product.SellPriceSatang
	}
	return subtotal
}

// DiscountSatang applies the attached customer's discount to the
// current subtotal. A fixed discount is clamped to the subtotal so the
// total never goes negative.
func (c *Cart) DiscountSatang() int64 {
	if c.customer == nil {
		return 0
	}
	subtotal := c.SubtotalSatang()
	switch c.customer.DiscountMode {
	case domain.DiscountPercentage:
		return int64(math.Round(float64(subtotal) * c.customer.DiscountPercent / 100))
	case domain.DiscountFixed:
		if c.customer.DiscountFixedSatang > subtotal {
			return subtotal
		}
		return c.customer.DiscountFixedSatang
	default:
		return 0
	}
}

func (c *Cart) TotalSatang() int64 {
	return c.SubtotalSatang() - c.DiscountSatang()
}

// ProfitSatang is margin over buying prices minus the discount. It may
// be negative when a fixed discount exceeds the cart's margin.
func (c *Cart) ProfitSatang() int64 {
	profit := int64(0)
	for _, line := range c.lines {
		profit += int64(line.Qty) * (line.Product.SellPriceSatang - line.Product.BuyPriceSatang)
	}
	return profit - c.DiscountSatang()
}

func (c *Cart) SaleItems() []domain.SaleItem {
	items := make([]domain.SaleItem, 0, len(c.lines))
	for _, line := range c.lines {
		items = append(items, domain.SaleItem{
			ProductID:        line.Product.ID,
			Name:             line.Product.Name,
			Qty:              line.Qty,
			UnitPriceSatang:  line.Product.SellPriceSatang,
			UnitCostSatang:   line.Product.BuyPriceSatang,
			LineTotalSatang:  int64(line.Qty) * line.Product.SellPriceSatang,
			LineProfitSatang: int64(line.Qty) * (line.Product.SellPriceSatang - line.Product.BuyPriceSatang),
		})
	}
	return items
}
