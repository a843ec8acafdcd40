package service

import (
	"errors"
	"testing"

	"rankha/backend/internal/domain"
	"rankha/backend/internal/store"
)

func testProduct() domain.Product {
	return domain.Product{
		ID:              "prod-test-01",
		StoreID:         "main-store",
		Name:            "Test Product",
		SellPriceSatang: 10000,
		BuyPriceSatang:  6000,
		Stock:           5,
		Active:          true,
	}
}

func TestCartTotalsWithoutCustomer(t *testing.T) {
	cart := NewCart()
	if err := cart.Add(testProduct(), 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	if got := cart.SubtotalSatang(); got != 20000 {
		t.Fatalf("subtotal = %d, want 20000", got)
	}
	if got := cart.DiscountSatang(); got != 0 {
		t.Fatalf("discount = %d, want 0", got)
	}
	if got := cart.TotalSatang(); got != 20000 {
		t.Fatalf("total = %d, want 20000", got)
	}
	if got := cart.ProfitSatang(); got != 8000 {
		t.Fatalf("profit = %d, want 8000", got)
	}
}

func TestCartPercentageDiscount(t *testing.T) {
	cart := NewCart()
	if err := cart.Add(testProduct(), 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart.SetCustomer(&domain.Customer{
		ID:              "cust-test",
		DiscountMode:    domain.DiscountPercentage,
		DiscountPercent: 10,
	})

	if got := cart.DiscountSatang(); got != 2000 {
		t.Fatalf("discount = %d, want 2000", got)
	}
	if got := cart.TotalSatang(); got != 18000 {
		t.Fatalf("total = %d, want 18000", got)
	}
	if got := cart.ProfitSatang(); got != 6000 {
		t.Fatalf("profit = %d, want 6000", got)
	}
}

func TestCartPercentageDiscountRounds(t *testing.T) {
	cart := NewCart()
	product := testProduct()
	product.SellPriceSatang = 3333
	if err := cart.Add(product, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart.SetCustomer(&domain.Customer{
		DiscountMode:    domain.DiscountPercentage,
		DiscountPercent: 10,
	})

	// 333.3 rounds to 333.
	if got := cart.DiscountSatang(); got != 333 {
		t.Fatalf("discount = %d, want 333", got)
	}
}

func TestCartFixedDiscountClampsToSubtotal(t *testing.T) {
	cart := NewCart()
	if err := cart.Add(testProduct(), 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart.SetCustomer(&domain.Customer{
		ID:                  "cust-test",
		DiscountMode:        domain.DiscountFixed,
		DiscountFixedSatang: 25000,
	})

	if got := cart.DiscountSatang(); got != 20000 {
		t.Fatalf("discount = %d, want 20000 (clamped)", got)
	}
	if got := cart.TotalSatang(); got != 0 {
		t.Fatalf("total = %d, want 0", got)
	}
	if got := cart.ProfitSatang(); got != -12000 {
		t.Fatalf("profit = %d, want -12000", got)
	}
}

func TestCartFixedDiscountBelowSubtotal(t *testing.T) {
	cart := NewCart()
	if err := cart.Add(testProduct(), 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart.SetCustomer(&domain.Customer{
		DiscountMode:        domain.DiscountFixed,
		DiscountFixedSatang: 5000,
	})

	if got := cart.TotalSatang(); got != 15000 {
		t.Fatalf("total = %d, want 15000", got)
	}
}

func TestCartAddRejectsOverStock(t *testing.T) {
	cart := NewCart()
	if err := cart.Add(testProduct(), 6); !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("add over stock: got %v, want ErrInsufficientStock", err)
	}
	if !cart.Empty() {
		t.Fatal("cart should stay empty after rejected add")
	}
}

func TestCartAddMergesLinesAgainstStock(t *testing.T) {
	cart := NewCart()
	if err := cart.Add(testProduct(), 3); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cart.Add(testProduct(), 3); !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("merged add over stock: got %v, want ErrInsufficientStock", err)
	}
	if err := cart.Add(testProduct(), 2); err != nil {
		t.Fatalf("merged add within stock: %v", err)
	}

	lines := cart.Lines()
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	if lines[0].Qty != 5 {
		t.Fatalf("qty = %d, want 5", lines[0].Qty)
	}
}

func TestCartAddRejectsNonPositiveQty(t *testing.T) {
	cart := NewCart()
	if err := cart.Add(testProduct(), 0); !errors.Is(err, store.ErrInvalidSale) {
		t.Fatalf("add qty 0: got %v, want ErrInvalidSale", err)
	}
	if err := cart.Add(testProduct(), -1); !errors.Is(err, store.ErrInvalidSale) {
		t.Fatalf("add qty -1: got %v, want ErrInvalidSale", err)
	}
}

func TestCartSetQty(t *testing.T) {
	cart := NewCart()
	product := testProduct()
	if err := cart.Add(product, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := cart.SetQty(product.ID, 4); err != nil {
		t.Fatalf("set qty: %v", err)
	}
	if got := cart.SubtotalSatang(); got != 40000 {
		t.Fatalf("subtotal = %d, want 40000", got)
	}

	if err := cart.SetQty(product.ID, 6); !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("set qty over stock: got %v, want ErrInsufficientStock", err)
	}
	if err := cart.SetQty(product.ID, -1); !errors.Is(err, store.ErrInvalidSale) {
		t.Fatalf("set negative qty: got %v, want ErrInvalidSale", err)
	}
	if err := cart.SetQty("prod-missing", 1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("set qty on missing line: got %v, want ErrNotFound", err)
	}

	if err := cart.SetQty(product.ID, 0); err != nil {
		t.Fatalf("set qty 0: %v", err)
	}
	if !cart.Empty() {
		t.Fatal("cart should be empty after setting qty to 0")
	}
}

func TestCartSaleItemsCarryLineProfit(t *testing.T) {
	cart := NewCart()
	if err := cart.Add(testProduct(), 3); err != nil {
		t.Fatalf("add: %v", err)
	}

	items := cart.SaleItems()
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	item := items[0]
	if item.LineTotalSatang != 30000 {
		t.Fatalf("line total = %d, want 30000", item.LineTotalSatang)
	}
	if item.LineProfitSatang != 12000 {
		t.Fatalf("line profit = %d, want 12000", item.LineProfitSatang)
	}
}
