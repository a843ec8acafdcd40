package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"rankha/backend/internal/cache"
	"rankha/backend/internal/domain"
	"rankha/backend/internal/ident"
	"rankha/backend/internal/store"
)

var (
	ErrForbidden  = errors.New("forbidden")
	ErrStoreScope = errors.New("store scope violation")
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo           store.Repository
	summaries      cache.SummaryCache
	defaultStoreID string
	summaryTTL     time.Duration
	log            zerolog.Logger
}

func New(repo store.Repository, summaries cache.SummaryCache, defaultStoreID string, summaryTTL time.Duration, log zerolog.Logger) *Service {
	if defaultStoreID == "" {
		defaultStoreID = "main-store"
	}
	if summaries == nil {
		summaries = cache.NoopSummaryCache{}
	}
	if summaryTTL < time.Second {
		summaryTTL = time.Minute
	}

	return &Service{
		repo:           repo,
		summaries:      summaries,
		defaultStoreID: defaultStoreID,
		summaryTTL:     summaryTTL,
		log:            log,
	}
}

// resolveStoreID pins receptionists to their assigned store. Owners may
// address any store and fall back to the default when none is given.
func (s *Service) resolveStoreID(ctx context.Context, requested string) (string, error) {
	requested = strings.TrimSpace(requested)

	actor, ok := ActorFromContext(ctx)
	if !ok {
		if requested == "" {
			return s.defaultStoreID, nil
		}
		return requested, nil
	}

	if actor.Role == domain.RoleReceptionist {
		if actor.StoreID == "" {
			return "", fmt.Errorf("receptionist without store assignment: %w", ErrForbidden)
		}
		if requested != "" && requested != actor.StoreID {
			return "", fmt.Errorf("store %s: %w", requested, ErrStoreScope)
		}
		return actor.StoreID, nil
	}

	if requested == "" {
		return s.defaultStoreID, nil
	}
	return requested, nil
}

func (s *Service) requireOwner(ctx context.Context) (domain.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleOwner {
		return domain.Actor{}, fmt.Errorf("owner role required: %w", ErrForbidden)
	}
	return actor, nil
}

func (s *Service) ListStores(ctx context.Context) ([]domain.Store, error) {
	actor, ok := ActorFromContext(ctx)
	if ok && actor.Role == domain.RoleReceptionist {
		st, err := s.repo.GetStore(ctx, actor.StoreID)
		if err != nil {
			return nil, err
		}
		return []domain.Store{*st}, nil
	}
	return s.repo.ListStores(ctx)
}

// Catalog returns the sellable products and the customers of a store in
// one payload. Terminals fetch it on startup and again after any sale
// submission failure, because their local snapshot may be stale.
func (s *Service) Catalog(ctx context.Context, storeID string) (domain.Catalog, error) {
	storeID, err := s.resolveStoreID(ctx, storeID)
	if err != nil {
		return domain.Catalog{}, err
	}

	products, err := s.repo.ListProducts(ctx, storeID, false)
	if err != nil {
		return domain.Catalog{}, err
	}
	sellable := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Stock > 0 {
			sellable = append(sellable, p)
		}
	}

	customers, err := s.repo.ListCustomers(ctx, storeID)
	if err != nil {
		return domain.Catalog{}, err
	}

	return domain.Catalog{
		StoreID:   storeID,
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
		Products:  sellable,
		Customers: customers,
	}, nil
}

// ListProducts lists a store's products. Inactive rows are owner-facing
// only.
func (s *Service) ListProducts(ctx context.Context, storeID string, includeInactive bool) ([]domain.Product, error) {
	if includeInactive {
		if _, err := s.requireOwner(ctx); err != nil {
			return nil, err
		}
	}
	storeID, err := s.resolveStoreID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListProducts(ctx, storeID, includeInactive)
}

func (s *Service) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if _, err := s.resolveStoreID(ctx, product.StoreID); err != nil {
		return domain.Product{}, store.ErrNotFound
	}
	return *product, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	if _, err := s.requireOwner(ctx); err != nil {
		return domain.Product{}, err
	}

	req.SKU = strings.ToUpper(strings.TrimSpace(req.SKU))
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.StoreID == "" {
		req.StoreID = s.defaultStoreID
	}

	if req.Name == "" {
		return domain.Product{}, store.ErrInvalidSale
	}
	if req.SellPriceSatang < 1 || req.BuyPriceSatang < 0 || req.InitialStock < 0 || req.LowStockThreshold < 0 {
		return domain.Product{}, store.ErrInvalidSale
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:                ident.New("prod"),
		StoreID:           req.StoreID,
		SKU:               req.SKU,
		Name:              req.Name,
		Category:          req.Category,
		SellPriceSatang:   req.SellPriceSatang,
		BuyPriceSatang:    req.BuyPriceSatang,
		Stock:             req.InitialStock,
		LowStockThreshold: req.LowStockThreshold,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, created.StoreID, "product_create", "product", created.ID, fmt.Sprintf("name=%s,sell=%d,stock=%d", created.Name, created.SellPriceSatang, created.Stock))
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, productID string, req domain.ProductUpdateRequest) (domain.Product, error) {
	if _, err := s.requireOwner(ctx); err != nil {
		return domain.Product{}, err
	}

	existing, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, store.ErrInvalidSale
		}
		updated.Name = name
	}
	if req.Category != nil {
		updated.Category = strings.TrimSpace(*req.Category)
	}
	if req.SellPriceSatang != nil {
		if *req.SellPriceSatang < 1 {
			return domain.Product{}, store.ErrInvalidSale
		}
		updated.SellPriceSatang = *req.SellPriceSatang
	}
	if req.BuyPriceSatang != nil {
		if *req.BuyPriceSatang < 0 {
			return domain.Product{}, store.ErrInvalidSale
		}
		updated.BuyPriceSatang = *req.BuyPriceSatang
	}
	if req.LowStockThreshold != nil {
		if *req.LowStockThreshold < 0 {
			return domain.Product{}, store.ErrInvalidSale
		}
		updated.LowStockThreshold = *req.LowStockThreshold
	}
	if req.Active != nil {
		updated.Active = *req.Active
	}
	updated.UpdatedAt = time.Now().UTC()

	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, saved.StoreID, "product_update", "product", saved.ID, fmt.Sprintf("active=%t,sell=%d,buy=%d", saved.Active, saved.SellPriceSatang, saved.BuyPriceSatang))
	return *saved, nil
}

// DeactivateProduct is the soft delete. The row stays for sale history.
func (s *Service) DeactivateProduct(ctx context.Context, productID string) (domain.Product, error) {
	active := false
	return s.UpdateProduct(ctx, productID, domain.ProductUpdateRequest{Active: &active})
}

// LowStockProducts is the restocking report: active products at or
// under their threshold. Owner-facing, like the purchase flow it feeds.
func (s *Service) LowStockProducts(ctx context.Context, storeID string) ([]domain.Product, error) {
	if _, err := s.requireOwner(ctx); err != nil {
		return nil, err
	}
	storeID, err := s.resolveStoreID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListLowStockProducts(ctx, storeID)
}

func (s *Service) ListCustomers(ctx context.Context, storeID string) ([]domain.Customer, error) {
	storeID, err := s.resolveStoreID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListCustomers(ctx, storeID)
}

func (s *Service) GetCustomer(ctx context.Context, customerID string) (domain.Customer, error) {
	customer, err := s.repo.GetCustomer(ctx, customerID)
	if err != nil {
		return domain.Customer{}, err
	}
	if _, err := s.resolveStoreID(ctx, customer.StoreID); err != nil {
		return domain.Customer{}, store.ErrNotFound
	}
	return *customer, nil
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (domain.Customer, error) {
	if _, err := s.requireOwner(ctx); err != nil {
		return domain.Customer{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Customer{}, store.ErrInvalidSale
	}
	if req.StoreID == "" {
		req.StoreID = s.defaultStoreID
	}

	mode, percent, fixed, err := normalizeDiscount(req.DiscountMode, req.DiscountPercent, req.DiscountFixedSatang)
	if err != nil {
		return domain.Customer{}, err
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		ID:                  ident.New("cust"),
		StoreID:             req.StoreID,
		Name:                req.Name,
		Phone:               strings.TrimSpace(req.Phone),
		DiscountMode:        mode,
		DiscountPercent:     percent,
		DiscountFixedSatang: fixed,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	created, err := s.repo.CreateCustomer(ctx, customer)
	if err != nil {
		return domain.Customer{}, err
	}

	s.logAudit(ctx, created.StoreID, "customer_create", "customer", created.ID, fmt.Sprintf("name=%s,discount=%s", created.Name, created.DiscountMode))
	return *created, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, customerID string, req domain.CustomerUpdateRequest) (domain.Customer, error) {
	if _, err := s.requireOwner(ctx); err != nil {
		return domain.Customer{}, err
	}

	existing, err := s.repo.GetCustomer(ctx, customerID)
	if err != nil {
		return domain.Customer{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Customer{}, store.ErrInvalidSale
		}
		updated.Name = name
	}
	if req.Phone != nil {
		updated.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.DiscountMode != nil || req.DiscountPercent != nil || req.DiscountFixedSatang != nil {
		mode := string(updated.DiscountMode)
		percent := updated.DiscountPercent
		fixed := updated.DiscountFixedSatang
		if req.DiscountMode != nil {
			mode = *req.DiscountMode
		}
		if req.DiscountPercent != nil {
			percent = *req.DiscountPercent
		}
		if req.DiscountFixedSatang != nil {
			fixed = *req.DiscountFixedSatang
		}
		normMode, normPercent, normFixed, err := normalizeDiscount(mode, percent, fixed)
		if err != nil {
			return domain.Customer{}, err
		}
		updated.DiscountMode = normMode
		updated.DiscountPercent = normPercent
		updated.DiscountFixedSatang = normFixed
	}
	updated.UpdatedAt = time.Now().UTC()

	saved, err := s.repo.UpdateCustomer(ctx, updated)
	if err != nil {
		return domain.Customer{}, err
	}

	s.logAudit(ctx, saved.StoreID, "customer_update", "customer", saved.ID, fmt.Sprintf("discount=%s", saved.DiscountMode))
	return *saved, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, customerID string) error {
	if _, err := s.requireOwner(ctx); err != nil {
		return err
	}

	existing, err := s.repo.GetCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteCustomer(ctx, customerID); err != nil {
		return err
	}

	s.logAudit(ctx, existing.StoreID, "customer_delete", "customer", existing.ID, existing.Name)
	return nil
}

// Quote evaluates a cart without committing it. Stock ceilings and the
// customer discount are applied exactly as a submission would.
func (s *Service) Quote(ctx context.Context, req domain.QuoteRequest) (domain.Quote, error) {
	storeID, err := s.resolveStoreID(ctx, req.StoreID)
	if err != nil {
		return domain.Quote{}, err
	}

	cart, err := s.buildCart(ctx, storeID, req.CustomerID, req.Items)
	if err != nil {
		return domain.Quote{}, err
	}

	return domain.Quote{
		StoreID:        storeID,
		CustomerID:     req.CustomerID,
		SubtotalSatang: cart.SubtotalSatang(),
		DiscountSatang: cart.DiscountSatang(),
		TotalSatang:    cart.TotalSatang(),
		ProfitSatang:   cart.ProfitSatang(),
		Items:          cart.SaleItems(),
	}, nil
}

// SubmitSale settles a cart. Line prices are recomputed from current
// product rows; the sale header, its items, and the stock decrements
// land in a single repository transaction.
func (s *Service) SubmitSale(ctx context.Context, req domain.SaleRequest) (domain.SaleResponse, error) {
	storeID, err := s.resolveStoreID(ctx, req.StoreID)
	if err != nil {
		return domain.SaleResponse{}, err
	}

	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.PaymentCash
	}
	if !isSupportedPaymentMethod(req.PaymentMethod) {
		return domain.SaleResponse{}, store.ErrInvalidSale
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = ident.New("idem")
	}

	if existing, err := s.repo.FindSaleByIdempotency(ctx, req.IdempotencyKey); err == nil {
		return domain.SaleResponse{Sale: *existing, Duplicate: true}, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.SaleResponse{}, err
	}

	cart, err := s.buildCart(ctx, storeID, req.CustomerID, req.Items)
	if err != nil {
		return domain.SaleResponse{}, err
	}

	actor, _ := ActorFromContext(ctx)
	sale := domain.Sale{
		ID:             ident.New("sale"),
		StoreID:        storeID,
		IdempotencyKey: req.IdempotencyKey,
		CustomerID:     req.CustomerID,
		OperatorName:   actor.Username,
		PaymentMethod:  req.PaymentMethod,
		SubtotalSatang: cart.SubtotalSatang(),
		DiscountSatang: cart.DiscountSatang(),
		TotalSatang:    cart.TotalSatang(),
		ProfitSatang:   cart.ProfitSatang(),
		CreatedAt:      time.Now().UTC(),
		Items:          cart.SaleItems(),
	}

	created, err := s.repo.CreateSale(ctx, sale)
	if err != nil {
		return domain.SaleResponse{}, err
	}
	duplicate := created.ID != sale.ID

	if !duplicate {
		if err := s.summaries.Invalidate(ctx, summaryKey(storeID, created.CreatedAt)); err != nil {
			s.log.Warn().Err(err).Str("store_id", storeID).Msg("invalidate summary cache")
		}
		s.logAudit(ctx, storeID, "sale_submit", "sale", created.ID,
			fmt.Sprintf("total=%d,discount=%d,payment=%s,items=%d", created.TotalSatang, created.DiscountSatang, created.PaymentMethod, len(created.Items)))
	}

	return domain.SaleResponse{Sale: *created, Duplicate: duplicate}, nil
}

func (s *Service) GetSale(ctx context.Context, saleID string) (domain.Sale, error) {
	sale, err := s.repo.GetSale(ctx, saleID)
	if err != nil {
		return domain.Sale{}, err
	}
	if _, err := s.resolveStoreID(ctx, sale.StoreID); err != nil {
		return domain.Sale{}, store.ErrNotFound
	}
	return *sale, nil
}

// ListSales lists a store's sales over a date range. With no dates it
// covers the current UTC day; a lone from (or to) covers that one day.
func (s *Service) ListSales(ctx context.Context, storeID string, fromDate string, toDate string, limit int) ([]domain.Sale, error) {
	storeID, err := s.resolveStoreID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 50
	}

	from, to, err := dateRange(fromDate, toDate)
	if err != nil {
		return nil, err
	}
	return s.repo.ListSales(ctx, storeID, from, to, limit)
}

func (s *Service) RecordPurchase(ctx context.Context, req domain.PurchaseCreateRequest) (domain.Purchase, error) {
	actor, err := s.requireOwner(ctx)
	if err != nil {
		return domain.Purchase{}, err
	}

	if req.Qty < 1 || req.UnitCostSatang < 0 {
		return domain.Purchase{}, store.ErrInvalidSale
	}

	product, err := s.repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		return domain.Purchase{}, err
	}
	storeID := req.StoreID
	if storeID == "" {
		storeID = product.StoreID
	}
	if storeID != product.StoreID {
		return domain.Purchase{}, store.ErrInvalidSale
	}

	purchase := domain.Purchase{
		ID:              ident.New("purch"),
		StoreID:         storeID,
		ProductID:       product.ID,
		ProductName:     product.Name,
		Supplier:        strings.TrimSpace(req.Supplier),
		Qty:             req.Qty,
		UnitCostSatang:  req.UnitCostSatang,
		TotalCostSatang: int64(req.Qty) * req.UnitCostSatang,
		OperatorName:    actor.Username,
		CreatedAt:       time.Now().UTC(),
	}

	created, err := s.repo.CreatePurchase(ctx, purchase)
	if err != nil {
		return domain.Purchase{}, err
	}

	s.logAudit(ctx, storeID, "purchase_record", "purchase", created.ID,
		fmt.Sprintf("product=%s,qty=%d,cost=%d", created.ProductID, created.Qty, created.TotalCostSatang))
	return *created, nil
}

func (s *Service) ListPurchases(ctx context.Context, storeID string, limit int) ([]domain.Purchase, error) {
	storeID, err := s.resolveStoreID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 50
	}
	return s.repo.ListPurchases(ctx, storeID, limit)
}

func (s *Service) DailyReport(ctx context.Context, storeID string, date string) (domain.DailySummary, error) {
	storeID, err := s.resolveStoreID(ctx, storeID)
	if err != nil {
		return domain.DailySummary{}, err
	}

	from, to, err := dayRange(date)
	if err != nil {
		return domain.DailySummary{}, err
	}

	key := summaryKey(storeID, from)
	if cached, ok, err := s.summaries.Get(ctx, key); err == nil && ok {
		return *cached, nil
	} else if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("read summary cache")
	}

	summary, err := s.repo.GetDailySummary(ctx, storeID, from, to)
	if err != nil {
		return domain.DailySummary{}, err
	}
	summary.StoreID = storeID
	summary.Date = from.Format("2006-01-02")

	if err := s.summaries.Set(ctx, key, &summary, s.summaryTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("write summary cache")
	}
	return summary, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, storeID string, date string, limit int) ([]domain.AuditLog, error) {
	if _, err := s.requireOwner(ctx); err != nil {
		return nil, err
	}
	if storeID == "" {
		storeID = s.defaultStoreID
	}
	if limit < 1 {
		limit = 100
	}

	var from time.Time
	if strings.TrimSpace(date) == "" {
		from = time.Now().UTC().Add(-24 * time.Hour)
	} else {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, store.ErrInvalidSale
		}
		from = parsed.UTC()
	}
	to := from.Add(24 * time.Hour)

	return s.repo.ListAuditLogs(ctx, storeID, from, to, limit)
}

// buildCart loads the requested products, verifies they are sellable in
// the store, and assembles a Cart with the customer discount attached.
func (s *Service) buildCart(ctx context.Context, storeID string, customerID string, items []domain.CartItem) (*Cart, error) {
	normalized := normalizeItems(items)
	if len(normalized) == 0 {
		return nil, store.ErrInvalidSale
	}

	ids := make([]string, 0, len(normalized))
	for _, item := range normalized {
		ids = append(ids, item.ProductID)
	}
	products, err := s.repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	cart := NewCart()
	if customerID != "" {
		customer, err := s.repo.GetCustomer(ctx, customerID)
		if err != nil {
			return nil, err
		}
		if customer.StoreID != storeID {
			return nil, store.ErrInvalidSale
		}
		cart.SetCustomer(customer)
	}

	for _, item := range normalized {
		product, exists := products[item.ProductID]
		if !exists || !product.Active || product.StoreID != storeID {
			return nil, store.ErrInvalidSale
		}
		if err := cart.Add(product, item.Qty); err != nil {
			return nil, err
		}
	}
	return cart, nil
}

func normalizeItems(items []domain.CartItem) []domain.CartItem {
	agg := make(map[string]int, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Qty < 1 {
			continue
		}
		if _, seen := agg[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		agg[item.ProductID] += item.Qty
	}

	normalized := make([]domain.CartItem, 0, len(order))
	for _, id := range order {
		normalized = append(normalized, domain.CartItem{ProductID: id, Qty: agg[id]})
	}
	return normalized
}

func normalizeDiscount(mode string, percent float64, fixed int64) (domain.DiscountMode, float64, int64, error) {
	switch domain.DiscountMode(strings.TrimSpace(mode)) {
	case domain.DiscountNone, "":
		return domain.DiscountNone, 0, 0, nil
	case domain.DiscountPercentage:
		if percent < 0 || percent > 100 {
			return "", 0, 0, store.ErrInvalidSale
		}
		return domain.DiscountPercentage, percent, 0, nil
	case domain.DiscountFixed:
		if fixed < 0 {
			return "", 0, 0, store.ErrInvalidSale
		}
		return domain.DiscountFixed, 0, fixed, nil
	default:
		return "", 0, 0, store.ErrInvalidSale
	}
}

func isSupportedPaymentMethod(method string) bool {
	switch method {
	case domain.PaymentCash, domain.PaymentCard, domain.PaymentTransfer:
		return true
	}
	return false
}

func dayRange(date string) (time.Time, time.Time, error) {
	var day time.Time
	if strings.TrimSpace(date) == "" {
		now := time.Now().UTC()
		day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return time.Time{}, time.Time{}, store.ErrInvalidSale
		}
		day = parsed.UTC()
	}
	return day, day.Add(24 * time.Hour), nil
}

func dateRange(fromDate string, toDate string) (time.Time, time.Time, error) {
	fromDate = strings.TrimSpace(fromDate)
	toDate = strings.TrimSpace(toDate)

	if fromDate == "" && toDate == "" {
		return dayRange("")
	}
	if toDate == "" {
		return dayRange(fromDate)
	}
	if fromDate == "" {
		return dayRange(toDate)
	}

	from, err := time.Parse("2006-01-02", fromDate)
	if err != nil {
		return time.Time{}, time.Time{}, store.ErrInvalidSale
	}
	toDay, err := time.Parse("2006-01-02", toDate)
	if err != nil {
		return time.Time{}, time.Time{}, store.ErrInvalidSale
	}
	if toDay.Before(from) {
		return time.Time{}, time.Time{}, store.ErrInvalidSale
	}
	// The end day is inclusive.
	return from.UTC(), toDay.UTC().Add(24 * time.Hour), nil
}

func summaryKey(storeID string, at time.Time) string {
	return fmt.Sprintf("summary:%s:%s", storeID, at.UTC().Format("2006-01-02"))
}

func (s *Service) logAudit(ctx context.Context, storeID string, action string, entityType string, entityID string, detail string) {
	if storeID == "" {
		storeID = s.defaultStoreID
	}

	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            ident.New("audit"),
		StoreID:       storeID,
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		s.log.Warn().Err(err).Str("action", action).Str("entity", entityType+"/"+entityID).Msg("write audit log")
	}
}
