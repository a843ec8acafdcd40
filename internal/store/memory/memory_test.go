package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"rankha/backend/internal/domain"
	"rankha/backend/internal/store"
)

func saleFor(key string, qty int) domain.Sale {
	return domain.Sale{
		ID:             "sale-" + key,
		StoreID:        "main-store",
		IdempotencyKey: key,
		PaymentMethod:  domain.PaymentCash,
		CreatedAt:      time.Now().UTC(),
		Items: []domain.SaleItem{{
			ProductID:       "prod-cha-01",
			Name:            "Thai Tea Mix 400g",
			Qty:             qty,
			UnitPriceSatang: 11800,
			UnitCostSatang:  8300,
			LineTotalSatang: int64(qty) * 11800,
		}},
	}
}

func TestCreateSaleNeverOversellsUnderConcurrency(t *testing.T) {
	repo := NewSeeded()
	ctx := context.Background()

	// Seeded stock is 35. Forty workers each try to take 1 unit.
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted, rejected := 0, 0

	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.CreateSale(ctx, saleFor(fmt.Sprintf("idem-conc-%d", i), 1))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, store.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if accepted != 35 || rejected != 5 {
		t.Fatalf("accepted=%d rejected=%d, want 35/5", accepted, rejected)
	}

	product, err := repo.GetProduct(ctx, "prod-cha-01")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Stock != 0 {
		t.Fatalf("stock = %d, want 0", product.Stock)
	}
}

func TestCreateSaleMultiLineAllOrNothing(t *testing.T) {
	repo := NewSeeded()
	ctx := context.Background()

	sale := saleFor("idem-multi-1", 1)
	sale.Items = append(sale.Items, domain.SaleItem{
		ProductID: "prod-khao-01", Qty: 1000, UnitPriceSatang: 18900,
	})

	if _, err := repo.CreateSale(ctx, sale); !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("got %v, want ErrInsufficientStock", err)
	}

	// The valid first line must not have been applied.
	product, err := repo.GetProduct(ctx, "prod-cha-01")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Stock != 35 {
		t.Fatalf("stock = %d, want untouched 35", product.Stock)
	}
}

func TestCreateSaleDuplicateLinesCheckedAgainstCombinedQty(t *testing.T) {
	repo := NewSeeded()
	ctx := context.Background()

	// Two lines of 20 against seeded stock 35 must fail together even
	// though each line alone would fit.
	sale := saleFor("idem-duplines-1", 20)
	sale.Items = append(sale.Items, domain.SaleItem{
		ProductID:       "prod-cha-01",
		Name:            "Thai Tea Mix 400g",
		Qty:             20,
		UnitPriceSatang: 11800,
	})

	if _, err := repo.CreateSale(ctx, sale); !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("got %v, want ErrInsufficientStock", err)
	}

	product, err := repo.GetProduct(ctx, "prod-cha-01")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Stock != 35 {
		t.Fatalf("stock = %d, want untouched 35", product.Stock)
	}

	// Duplicate lines that fit in total still settle.
	ok := saleFor("idem-duplines-2", 10)
	ok.Items = append(ok.Items, domain.SaleItem{
		ProductID:       "prod-cha-01",
		Name:            "Thai Tea Mix 400g",
		Qty:             5,
		UnitPriceSatang: 11800,
	})
	if _, err := repo.CreateSale(ctx, ok); err != nil {
		t.Fatalf("combined fit: %v", err)
	}
	product, err = repo.GetProduct(ctx, "prod-cha-01")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Stock != 20 {
		t.Fatalf("stock = %d, want 20", product.Stock)
	}
}

func TestCreateSaleIdempotencyReturnsExisting(t *testing.T) {
	repo := NewSeeded()
	ctx := context.Background()

	first, err := repo.CreateSale(ctx, saleFor("idem-dup-1", 2))
	if err != nil {
		t.Fatalf("first: %v", err)
	}

	retry := saleFor("idem-dup-1", 2)
	retry.ID = "sale-other-id"
	second, err := repo.CreateSale(ctx, retry)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("retry created new sale %s, want %s", second.ID, first.ID)
	}

	product, err := repo.GetProduct(ctx, "prod-cha-01")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Stock != 33 {
		t.Fatalf("stock = %d, want single decrement to 33", product.Stock)
	}
}

func TestCreateSaleRejectsInactiveProduct(t *testing.T) {
	repo := NewSeeded()
	ctx := context.Background()

	product, err := repo.GetProduct(ctx, "prod-cha-01")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	updated := *product
	updated.Active = false
	if _, err := repo.UpdateProduct(ctx, updated); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := repo.CreateSale(ctx, saleFor("idem-inactive-1", 1)); !errors.Is(err, store.ErrInvalidSale) {
		t.Fatalf("got %v, want ErrInvalidSale", err)
	}
}
