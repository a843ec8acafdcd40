package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"rankha/backend/internal/domain"
	"rankha/backend/internal/store"
)

type Store struct {
	mu              sync.RWMutex
	stores          map[string]domain.Store
	products        map[string]domain.Product
	customers       map[string]domain.Customer
	salesByID       map[string]*domain.Sale
	salesByIdem     map[string]*domain.Sale
	purchasesByID   map[string]domain.Purchase
	auditLogs       []domain.AuditLog
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory accounts for dev/demo mode.
// Credentials come from SEED_OWNER_PASSWORD and SEED_RECEPTIONIST_PASSWORD.
// If unset, hardcoded dev defaults are used with a warning. These
// credentials are never used in production (the backend uses PostgreSQL
// when RANKHA_DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	ownerPwd := envOr("SEED_OWNER_PASSWORD", "owner123")
	receptionistPwd := envOr("SEED_RECEPTIONIST_PASSWORD", "reception123")
	if os.Getenv("SEED_OWNER_PASSWORD") == "" || os.Getenv("SEED_RECEPTIONIST_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_OWNER_PASSWORD and SEED_RECEPTIONIST_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
		storeID  string
	}{
		{"owner", ownerPwd, domain.RoleOwner, ""},
		{"reception", receptionistPwd, domain.RoleReceptionist, "main-store"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			StoreID:   u.storeID,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	now := time.Now().UTC()

	stores := []domain.Store{
		{ID: "main-store", Name: "Rankha Sukhumvit", Address: "Sukhumvit Soi 21, Bangkok", CreatedAt: now},
		{ID: "river-store", Name: "Rankha Riverside", Address: "Charoen Krung 44, Bangkok", CreatedAt: now},
	}

	products := []domain.Product{
		{ID: "prod-namwa-01", StoreID: "main-store", SKU: "SKU-NAM-01", Name: "Nam Dum Herbal Drink", Category: "beverage", SellPriceSatang: 3500, BuyPriceSatang: 2200, Stock: 120, LowStockThreshold: 20, Active: true},
		{ID: "prod-khao-01", StoreID: "main-store", SKU: "SKU-KHAO-01", Name: "Jasmine Rice 5kg", Category: "grocery", SellPriceSatang: 18900, BuyPriceSatang: 14500, Stock: 40, LowStockThreshold: 8, Active: true},
		{ID: "prod-nampla-01", StoreID: "main-store", SKU: "SKU-NPL-01", Name: "Fish Sauce 700ml", Category: "grocery", SellPriceSatang: 5400, BuyPriceSatang: 3600, Stock: 75, LowStockThreshold: 12, Active: true},
		{ID: "prod-mama-01", StoreID: "main-store", SKU: "SKU-MAMA-01", Name: "Instant Noodle Cup", Category: "grocery", SellPriceSatang: 1500, BuyPriceSatang: 900, Stock: 200, LowStockThreshold: 30, Active: true},
		{ID: "prod-sabai-01", StoreID: "main-store", SKU: "SKU-SOAP-01", Name: "Herbal Soap Bar", Category: "household", SellPriceSatang: 4200, BuyPriceSatang: 2500, Stock: 60, LowStockThreshold: 10, Active: true},
		{ID: "prod-cha-01", StoreID: "main-store", SKU: "SKU-CHA-01", Name: "Thai Tea Mix 400g", Category: "beverage", SellPriceSatang: 11800, BuyPriceSatang: 8300, Stock: 35, LowStockThreshold: 6, Active: true},
		{ID: "prod-river-01", StoreID: "river-store", SKU: "SKU-NAM-01", Name: "Nam Dum Herbal Drink", Category: "beverage", SellPriceSatang: 3600, BuyPriceSatang: 2200, Stock: 80, LowStockThreshold: 15, Active: true},
		{ID: "prod-river-02", StoreID: "river-store", SKU: "SKU-KHAO-01", Name: "Jasmine Rice 5kg", Category: "grocery", SellPriceSatang: 19400, BuyPriceSatang: 14500, Stock: 25, LowStockThreshold: 5, Active: true},
	}

	customers := []domain.Customer{
		{ID: "cust-somchai", StoreID: "main-store", Name: "Somchai J.", Phone: "081-234-5678", DiscountMode: domain.DiscountPercentage, DiscountPercent: 10, CreatedAt: now, UpdatedAt: now},
		{ID: "cust-malee", StoreID: "main-store", Name: "Malee R.", Phone: "089-555-0101", DiscountMode: domain.DiscountFixed, DiscountFixedSatang: 5000, CreatedAt: now, UpdatedAt: now},
		{ID: "cust-anong", StoreID: "main-store", Name: "Anong P.", DiscountMode: domain.DiscountNone, CreatedAt: now, UpdatedAt: now},
		{ID: "cust-river-01", StoreID: "river-store", Name: "Prasert K.", DiscountMode: domain.DiscountPercentage, DiscountPercent: 5, CreatedAt: now, UpdatedAt: now},
	}

	storeMap := make(map[string]domain.Store, len(stores))
	for _, st := range stores {
		storeMap[st.ID] = st
	}
	productMap := make(map[string]domain.Product, len(products))
	for _, p := range products {
		p.CreatedAt = now
		p.UpdatedAt = now
		productMap[p.ID] = p
	}
	customerMap := make(map[string]domain.Customer, len(customers))
	for _, c := range customers {
		customerMap[c.ID] = c
	}

	return &Store{
		stores:          storeMap,
		products:        productMap,
		customers:       customerMap,
		salesByID:       make(map[string]*domain.Sale),
		salesByIdem:     make(map[string]*domain.Sale),
		purchasesByID:   make(map[string]domain.Purchase),
		auditLogs:       make([]domain.AuditLog, 0, 128),
		usersByUsername: seedUsers(),
	}
}

func (s *Store) ListStores(_ context.Context) ([]domain.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Store, 0, len(s.stores))
	for _, st := range s.stores {
		out = append(out, st)
	}
	slices.SortFunc(out, func(a, b domain.Store) int {
		return cmpString(a.Name, b.Name)
	})
	return out, nil
}

func (s *Store) GetStore(_ context.Context, storeID string) (*domain.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stores[storeID]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := st
	return &found, nil
}

func (s *Store) ListProducts(_ context.Context, storeID string, includeInactive bool) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.StoreID != storeID {
			continue
		}
		if !p.Active && !includeInactive {
			continue
		}
		products = append(products, p)
	}

	slices.SortFunc(products, func(a, b domain.Product) int {
		return cmpString(a.Name, b.Name)
	})
	return products, nil
}

func (s *Store) GetProduct(_ context.Context, productID string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[productID]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := p
	return &found, nil
}

func (s *Store) GetProductsByIDs(_ context.Context, productIDs []string) (map[string]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.Product, len(productIDs))
	for _, id := range productIDs {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" || product.StoreID == "" || product.Name == "" || product.SellPriceSatang < 1 {
		return nil, store.ErrInvalidSale
	}
	if _, exists := s.products[product.ID]; exists {
		return nil, store.ErrConflict
	}
	if product.SKU != "" {
		for _, p := range s.products {
			if p.StoreID == product.StoreID && p.SKU == product.SKU {
				return nil, store.ErrConflict
			}
		}
	}

	s.products[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[product.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	product.StoreID = existing.StoreID
	product.CreatedAt = existing.CreatedAt
	s.products[product.ID] = product
	saved := product
	return &saved, nil
}

func (s *Store) ListLowStockProducts(_ context.Context, storeID string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	low := make([]domain.Product, 0)
	for _, p := range s.products {
		if p.StoreID != storeID || !p.Active {
			continue
		}
		if p.Stock <= p.LowStockThreshold {
			low = append(low, p)
		}
	}
	slices.SortFunc(low, func(a, b domain.Product) int {
		if a.Stock == b.Stock {
			return cmpString(a.Name, b.Name)
		}
		return a.Stock - b.Stock
	})
	return low, nil
}

func (s *Store) ListCustomers(_ context.Context, storeID string) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		if c.StoreID == storeID {
			customers = append(customers, c)
		}
	}
	slices.SortFunc(customers, func(a, b domain.Customer) int {
		return cmpString(a.Name, b.Name)
	})
	return customers, nil
}

func (s *Store) GetCustomer(_ context.Context, customerID string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[customerID]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := c
	return &found, nil
}

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if customer.ID == "" || customer.StoreID == "" || customer.Name == "" {
		return nil, store.ErrInvalidSale
	}
	if _, exists := s.customers[customer.ID]; exists {
		return nil, store.ErrConflict
	}

	s.customers[customer.ID] = customer
	created := customer
	return &created, nil
}

func (s *Store) UpdateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.customers[customer.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	customer.StoreID = existing.StoreID
	customer.CreatedAt = existing.CreatedAt
	s.customers[customer.ID] = customer
	saved := customer
	return &saved, nil
}

func (s *Store) DeleteCustomer(_ context.Context, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[customerID]; !ok {
		return store.ErrNotFound
	}
	delete(s.customers, customerID)
	return nil
}

func (s *Store) FindSaleByIdempotency(_ context.Context, key string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.salesByIdem[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneSale(sale), nil
}

func (s *Store) GetSale(_ context.Context, saleID string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.salesByID[saleID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneSale(sale), nil
}

func (s *Store) ListSales(_ context.Context, storeID string, from time.Time, to time.Time, limit int) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0)
	for _, sale := range s.salesByID {
		if sale.StoreID != storeID {
			continue
		}
		if sale.CreatedAt.Before(from) || !sale.CreatedAt.Before(to) {
			continue
		}
		sales = append(sales, *cloneSale(sale))
	}
	slices.SortFunc(sales, func(a, b domain.Sale) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(sales) > limit {
		sales = sales[:limit]
	}
	return sales, nil
}

// CreateSale validates stock for every line, decrements it, and records
// the sale with its items under one lock so a failed line leaves
// nothing behind. Stock never goes below zero.
func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sale.ID == "" || sale.StoreID == "" || len(sale.Items) == 0 {
		return nil, store.ErrInvalidSale
	}
	if existing, ok := s.salesByIdem[sale.IdempotencyKey]; ok && sale.IdempotencyKey != "" {
		return cloneSale(existing), nil
	}

	// Quantities are aggregated per product so a sale that names the
	// same product on several lines is checked against the combined
	// demand, not each line alone.
	required := make(map[string]int, len(sale.Items))
	for _, item := range sale.Items {
		product, ok := s.products[item.ProductID]
		if !ok || !product.Active || product.StoreID != sale.StoreID {
			return nil, store.ErrInvalidSale
		}
		if item.Qty < 1 {
			return nil, store.ErrInsufficientStock
		}
		required[item.ProductID] += item.Qty
		if required[item.ProductID] > product.Stock {
			return nil, store.ErrInsufficientStock
		}
	}

	for _, item := range sale.Items {
		product := s.products[item.ProductID]
		product.Stock -= item.Qty
		product.UpdatedAt = sale.CreatedAt
		s.products[item.ProductID] = product
	}

	stored := cloneSale(&sale)
	s.salesByID[sale.ID] = stored
	if sale.IdempotencyKey != "" {
		s.salesByIdem[sale.IdempotencyKey] = stored
	}
	return cloneSale(stored), nil
}

// CreatePurchase adds received stock and refreshes the product's buying
// price in the same lock.
func (s *Store) CreatePurchase(_ context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if purchase.ID == "" || purchase.Qty < 1 {
		return nil, store.ErrInvalidSale
	}
	product, ok := s.products[purchase.ProductID]
	if !ok || product.StoreID != purchase.StoreID {
		return nil, store.ErrNotFound
	}

	product.Stock += purchase.Qty
	if purchase.UnitCostSatang > 0 {
		product.BuyPriceSatang = purchase.UnitCostSatang
	}
	product.UpdatedAt = purchase.CreatedAt
	s.products[purchase.ProductID] = product

	s.purchasesByID[purchase.ID] = purchase
	created := purchase
	return &created, nil
}

func (s *Store) ListPurchases(_ context.Context, storeID string, limit int) ([]domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	purchases := make([]domain.Purchase, 0)
	for _, p := range s.purchasesByID {
		if p.StoreID == storeID {
			purchases = append(purchases, p)
		}
	}
	slices.SortFunc(purchases, func(a, b domain.Purchase) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(purchases) > limit {
		purchases = purchases[:limit]
	}
	return purchases, nil
}

func (s *Store) GetDailySummary(_ context.Context, storeID string, from time.Time, to time.Time) (domain.DailySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := domain.DailySummary{}
	byProduct := make(map[string]*domain.DailySummaryProduct)
	for _, sale := range s.salesByID {
		if sale.StoreID != storeID {
			continue
		}
		if sale.CreatedAt.Before(from) || !sale.CreatedAt.Before(to) {
			continue
		}
		summary.Sales++
		summary.GrossSatang += sale.SubtotalSatang
		summary.DiscountSatang += sale.DiscountSatang
		summary.NetSatang += sale.TotalSatang
		summary.ProfitSatang += sale.ProfitSatang
		for _, item := range sale.Items {
			entry, ok := byProduct[item.ProductID]
			if !ok {
				entry = &domain.DailySummaryProduct{ProductID: item.ProductID, Name: item.Name}
				byProduct[item.ProductID] = entry
			}
			entry.Qty += item.Qty
			entry.TotalSatang += item.LineTotalSatang
		}
	}

	top := make([]domain.DailySummaryProduct, 0, len(byProduct))
	for _, entry := range byProduct {
		top = append(top, *entry)
	}
	slices.SortFunc(top, func(a, b domain.DailySummaryProduct) int {
		if a.Qty == b.Qty {
			return cmpString(a.Name, b.Name)
		}
		return b.Qty - a.Qty
	})
	if len(top) > 5 {
		top = top[:5]
	}
	summary.TopProducts = top
	return summary, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, storeID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logs := make([]domain.AuditLog, 0)
	for _, entry := range s.auditLogs {
		if entry.StoreID != storeID {
			continue
		}
		if entry.CreatedAt.Before(from) || !entry.CreatedAt.Before(to) {
			continue
		}
		logs = append(logs, entry)
	}
	slices.SortFunc(logs, func(a, b domain.AuditLog) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (s *Store) GetUser(_ context.Context, username string) (*domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.usersByUsername[strings.ToLower(username)]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := user
	return &found, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(user.Username)
	if username == "" || user.Password == "" {
		return store.ErrInvalidSale
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrConflict
	}
	user.Username = username
	s.usersByUsername[username] = user
	return nil
}

func cloneSale(sale *domain.Sale) *domain.Sale {
	out := *sale
	out.Items = make([]domain.SaleItem, len(sale.Items))
	copy(out.Items, sale.Items)
	return &out
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
