package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"rankha/backend/internal/domain"
	"rankha/backend/internal/store"
)

func TestCreateSaleDecrementsStockAtomically(t *testing.T) {
	databaseURL := os.Getenv("RANKHA_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set RANKHA_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	storeID := "main-store"
	productID := fmt.Sprintf("prod-sale-it-%d", stamp)
	saleID := fmt.Sprintf("sale-it-%d", stamp)
	idempotencyKey := fmt.Sprintf("idem-sale-it-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, saleID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, saleID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
	})

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO stores (id, name, created_at)
		VALUES ($1, 'Sale IT Store', now())
		ON CONFLICT (id) DO NOTHING
	`, storeID); err != nil {
		t.Fatalf("insert store: %v", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, store_id, sku, name, category, sell_price_satang, buy_price_satang, stock, low_stock_threshold, active, created_at, updated_at)
		VALUES ($1, $2, null, 'Sale IT Product', 'grocery', 10000, 6000, 5, 1, true, now(), now())
	`, productID, storeID); err != nil {
		t.Fatalf("insert product: %v", err)
	}

	created, err := s.CreateSale(ctx, domain.Sale{
		ID:             saleID,
		StoreID:        storeID,
		IdempotencyKey: idempotencyKey,
		OperatorName:   "owner",
		PaymentMethod:  domain.PaymentCash,
		CreatedAt:      time.Now().UTC(),
		Items:          []domain.SaleItem{{ProductID: productID, Qty: 2}},
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if created.SubtotalSatang != 20000 || created.TotalSatang != 20000 || created.ProfitSatang != 8000 {
		t.Fatalf("unexpected sale money: subtotal=%d total=%d profit=%d", created.SubtotalSatang, created.TotalSatang, created.ProfitSatang)
	}

	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Stock != 3 {
		t.Fatalf("expected stock 3 after sale, got %d", product.Stock)
	}

	// Oversell must fail without touching stock or writing a header.
	_, err = s.CreateSale(ctx, domain.Sale{
		ID:             saleID + "-over",
		StoreID:        storeID,
		IdempotencyKey: idempotencyKey + "-over",
		OperatorName:   "owner",
		PaymentMethod:  domain.PaymentCash,
		CreatedAt:      time.Now().UTC(),
		Items:          []domain.SaleItem{{ProductID: productID, Qty: 4}},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	product, err = s.GetProduct(ctx, productID)
	if err != nil {
		t.Fatalf("get product after oversell: %v", err)
	}
	if product.Stock != 3 {
		t.Fatalf("expected stock unchanged at 3, got %d", product.Stock)
	}

	// Two lines of 2 against the remaining stock of 3 must fail as a
	// combined quantity, leaving stock untouched.
	_, err = s.CreateSale(ctx, domain.Sale{
		ID:             saleID + "-duplines",
		StoreID:        storeID,
		IdempotencyKey: idempotencyKey + "-duplines",
		OperatorName:   "owner",
		PaymentMethod:  domain.PaymentCash,
		CreatedAt:      time.Now().UTC(),
		Items: []domain.SaleItem{
			{ProductID: productID, Qty: 2},
			{ProductID: productID, Qty: 2},
		},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("duplicate lines: expected insufficient stock, got %v", err)
	}

	product, err = s.GetProduct(ctx, productID)
	if err != nil {
		t.Fatalf("get product after duplicate lines: %v", err)
	}
	if product.Stock != 3 {
		t.Fatalf("expected stock unchanged at 3 after duplicate lines, got %d", product.Stock)
	}

	duplicate, err := s.CreateSale(ctx, domain.Sale{
		ID:             saleID + "-dup",
		StoreID:        storeID,
		IdempotencyKey: idempotencyKey,
		OperatorName:   "owner",
		PaymentMethod:  domain.PaymentCash,
		CreatedAt:      time.Now().UTC(),
		Items:          []domain.SaleItem{{ProductID: productID, Qty: 1}},
	})
	if err != nil {
		t.Fatalf("duplicate sale: %v", err)
	}
	if duplicate.ID != saleID {
		t.Fatalf("expected duplicate submit to return original sale %s, got %s", saleID, duplicate.ID)
	}
}
