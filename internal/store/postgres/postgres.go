package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"rankha/backend/internal/domain"
	"rankha/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListStores(ctx context.Context) ([]domain.Store, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, address, created_at
		FROM stores
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stores := make([]domain.Store, 0, 8)
	for rows.Next() {
		var st domain.Store
		var address sql.NullString
		if err := rows.Scan(&st.ID, &st.Name, &address, &st.CreatedAt); err != nil {
			return nil, err
		}
		st.Address = address.String
		stores = append(stores, st)
	}
	return stores, rows.Err()
}

func (s *Store) GetStore(ctx context.Context, storeID string) (*domain.Store, error) {
	var st domain.Store
	var address sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, address, created_at
		FROM stores
		WHERE id = $1
	`, storeID).Scan(&st.ID, &st.Name, &address, &st.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	st.Address = address.String
	return &st, nil
}

const productColumns = `id, store_id, sku, name, category, sell_price_satang, buy_price_satang, stock, low_stock_threshold, active, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (domain.Product, error) {
	var p domain.Product
	var sku, category sql.NullString
	err := row.Scan(&p.ID, &p.StoreID, &sku, &p.Name, &category, &p.SellPriceSatang, &p.BuyPriceSatang, &p.Stock, &p.LowStockThreshold, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	p.SKU = sku.String
	p.Category = category.String
	return p, err
}

func (s *Store) ListProducts(ctx context.Context, storeID string, includeInactive bool) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE store_id = $1 AND (active = true OR $2)
		ORDER BY name
	`, storeID, includeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 128)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetProductsByIDs(ctx context.Context, productIDs []string) (map[string]domain.Product, error) {
	if len(productIDs) == 0 {
		return map[string]domain.Product{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = ANY($1)
	`, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make(map[string]domain.Product, len(productIDs))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products[p.ID] = p
	}
	return products, rows.Err()
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.StoreID == "" || product.Name == "" || product.SellPriceSatang < 1 {
		return nil, store.ErrInvalidSale
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, store_id, sku, name, category, sell_price_satang, buy_price_satang, stock, low_stock_threshold, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now(),now())
	`, product.ID, product.StoreID, nullIfEmpty(product.SKU), product.Name, nullIfEmpty(product.Category),
		product.SellPriceSatang, product.BuyPriceSatang, product.Stock, product.LowStockThreshold, product.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}

	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.Name == "" || product.SellPriceSatang < 1 {
		return nil, store.ErrInvalidSale
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, category = $3, sell_price_satang = $4, buy_price_satang = $5,
		    low_stock_threshold = $6, active = $7, updated_at = now()
		WHERE id = $1
	`, product.ID, product.Name, nullIfEmpty(product.Category), product.SellPriceSatang,
		product.BuyPriceSatang, product.LowStockThreshold, product.Active)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return s.GetProduct(ctx, product.ID)
}

func (s *Store) ListLowStockProducts(ctx context.Context, storeID string) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE store_id = $1 AND active = true AND stock <= low_stock_threshold
		ORDER BY stock, name
	`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 32)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

const customerColumns = `id, store_id, name, phone, discount_mode, discount_percent, discount_fixed_satang, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (domain.Customer, error) {
	var c domain.Customer
	var phone sql.NullString
	var mode string
	err := row.Scan(&c.ID, &c.StoreID, &c.Name, &phone, &mode, &c.DiscountPercent, &c.DiscountFixedSatang, &c.CreatedAt, &c.UpdatedAt)
	c.Phone = phone.String
	c.DiscountMode = domain.DiscountMode(mode)
	return c, err
}

func (s *Store) ListCustomers(ctx context.Context, storeID string) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE store_id = $1
		ORDER BY name
	`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 64)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *Store) GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	c, err := scanCustomer(s.db.QueryRowContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE id = $1
	`, customerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.ID == "" || customer.StoreID == "" || customer.Name == "" {
		return nil, store.ErrInvalidSale
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, store_id, name, phone, discount_mode, discount_percent, discount_fixed_satang, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,now(),now())
	`, customer.ID, customer.StoreID, customer.Name, nullIfEmpty(customer.Phone),
		string(customer.DiscountMode), customer.DiscountPercent, customer.DiscountFixedSatang)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}

	created := customer
	return &created, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.ID == "" || customer.Name == "" {
		return nil, store.ErrInvalidSale
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET name = $2, phone = $3, discount_mode = $4, discount_percent = $5,
		    discount_fixed_satang = $6, updated_at = now()
		WHERE id = $1
	`, customer.ID, customer.Name, nullIfEmpty(customer.Phone), string(customer.DiscountMode),
		customer.DiscountPercent, customer.DiscountFixedSatang)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return s.GetCustomer(ctx, customer.ID)
}

func (s *Store) DeleteCustomer(ctx context.Context, customerID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, customerID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) FindSaleByIdempotency(ctx context.Context, key string) (*domain.Sale, error) {
	return s.findSale(ctx, "idempotency_key", key)
}

func (s *Store) GetSale(ctx context.Context, saleID string) (*domain.Sale, error) {
	return s.findSale(ctx, "id", saleID)
}

func (s *Store) findSale(ctx context.Context, column string, value string) (*domain.Sale, error) {
	var sale domain.Sale
	var customerID sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, store_id, idempotency_key, customer_id, operator_name, payment_method,
		       subtotal_satang, discount_satang, total_satang, profit_satang, created_at
		FROM sales
		WHERE `+column+` = $1
	`, value).Scan(&sale.ID, &sale.StoreID, &sale.IdempotencyKey, &customerID, &sale.OperatorName,
		&sale.PaymentMethod, &sale.SubtotalSatang, &sale.DiscountSatang, &sale.TotalSatang,
		&sale.ProfitSatang, &sale.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	sale.CustomerID = customerID.String

	items, err := s.saleItems(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return &sale, nil
}

func (s *Store) saleItems(ctx context.Context, saleID string) ([]domain.SaleItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, name, qty, unit_price_satang, unit_cost_satang, line_total_satang, line_profit_satang
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY name
	`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.SaleItem, 0, 8)
	for rows.Next() {
		var item domain.SaleItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Qty, &item.UnitPriceSatang,
			&item.UnitCostSatang, &item.LineTotalSatang, &item.LineProfitSatang); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) ListSales(ctx context.Context, storeID string, from time.Time, to time.Time, limit int) ([]domain.Sale, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, store_id, idempotency_key, customer_id, operator_name, payment_method,
		       subtotal_satang, discount_satang, total_satang, profit_satang, created_at
		FROM sales
		WHERE store_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC
		LIMIT $4
	`, storeID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, limit)
	for rows.Next() {
		var sale domain.Sale
		var customerID sql.NullString
		if err := rows.Scan(&sale.ID, &sale.StoreID, &sale.IdempotencyKey, &customerID, &sale.OperatorName,
			&sale.PaymentMethod, &sale.SubtotalSatang, &sale.DiscountSatang, &sale.TotalSatang,
			&sale.ProfitSatang, &sale.CreatedAt); err != nil {
			return nil, err
		}
		sale.CustomerID = customerID.String
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sales {
		items, err := s.saleItems(ctx, sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Items = items
	}
	return sales, nil
}

// CreateSale writes the sale header, its items, and the stock
// decrements in one serializable transaction. Product rows are locked
// FOR UPDATE and line money is recomputed from the locked prices, so a
// concurrent price change cannot skew a committed sale. The customer
// discount is taken as computed by the caller and re-clamped to the
// recomputed subtotal. Stock cannot go below zero.
func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.ID == "" || sale.StoreID == "" || sale.IdempotencyKey == "" || len(sale.Items) == 0 {
		return nil, store.ErrInvalidSale
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	ids := make([]string, 0, len(sale.Items))
	for _, item := range sale.Items {
		if item.Qty < 1 {
			return nil, store.ErrInvalidSale
		}
		ids = append(ids, item.ProductID)
	}

	rows, err := pgTx.QueryContext(ctx, `
		SELECT id, name, sell_price_satang, buy_price_satang, stock
		FROM products
		WHERE store_id = $1 AND active = true AND id = ANY($2)
		FOR UPDATE
	`, sale.StoreID, ids)
	if err != nil {
		return nil, err
	}
	type lockedProduct struct {
		name  string
		sell  int64
		buy   int64
		stock int
	}
	locked := make(map[string]lockedProduct, len(ids))
	for rows.Next() {
		var id string
		var p lockedProduct
		if err := rows.Scan(&id, &p.name, &p.sell, &p.buy, &p.stock); err != nil {
			_ = rows.Close()
			return nil, err
		}
		locked[id] = p
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	subtotal := int64(0)
	profit := int64(0)
	required := make(map[string]int, len(sale.Items))
	recomputed := make([]domain.SaleItem, 0, len(sale.Items))
	for _, item := range sale.Items {
		product, exists := locked[item.ProductID]
		if !exists {
			return nil, store.ErrInvalidSale
		}
		// Aggregate across lines so duplicate product lines are held
		// against the combined quantity, and guard the decrement so
		// stock can never pass zero even then.
		required[item.ProductID] += item.Qty
		if product.stock < required[item.ProductID] {
			return nil, store.ErrInsufficientStock
		}

		res, err := pgTx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1, updated_at = now()
			WHERE id = $2 AND stock >= $1
		`, item.Qty, item.ProductID)
		if err != nil {
			return nil, err
		}
		if affected, err := res.RowsAffected(); err != nil {
			return nil, err
		} else if affected == 0 {
			return nil, store.ErrInsufficientStock
		}

		lineTotal := product.sell * int64(item.Qty)
		lineProfit := (product.sell - product.buy) * int64(item.Qty)
		recomputed = append(recomputed, domain.SaleItem{
			ProductID:        item.ProductID,
			Name:             product.name,
			Qty:              item.Qty,
			UnitPriceSatang:  product.sell,
			UnitCostSatang:   product.buy,
			LineTotalSatang:  lineTotal,
			LineProfitSatang: lineProfit,
		})
		subtotal += lineTotal
		profit += lineProfit
	}

	discount := sale.DiscountSatang
	if discount < 0 {
		return nil, store.ErrInvalidSale
	}
	if discount > subtotal {
		discount = subtotal
	}

	sale.SubtotalSatang = subtotal
	sale.DiscountSatang = discount
	sale.TotalSatang = subtotal - discount
	sale.ProfitSatang = profit - discount
	sale.Items = recomputed
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}

	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO sales (
			id, store_id, idempotency_key, customer_id, operator_name, payment_method,
			subtotal_satang, discount_satang, total_satang, profit_satang, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, sale.ID, sale.StoreID, sale.IdempotencyKey, nullIfEmpty(sale.CustomerID), sale.OperatorName,
		sale.PaymentMethod, sale.SubtotalSatang, sale.DiscountSatang, sale.TotalSatang,
		sale.ProfitSatang, sale.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			existing, lookupErr := s.FindSaleByIdempotency(ctx, sale.IdempotencyKey)
			if lookupErr == nil {
				return existing, nil
			}
		}
		return nil, err
	}

	for _, item := range sale.Items {
		_, err := pgTx.ExecContext(ctx, `
			INSERT INTO sale_items (sale_id, product_id, name, qty, unit_price_satang, unit_cost_satang, line_total_satang, line_profit_satang)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, sale.ID, item.ProductID, item.Name, item.Qty, item.UnitPriceSatang, item.UnitCostSatang,
			item.LineTotalSatang, item.LineProfitSatang)
		if err != nil {
			return nil, err
		}
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}

	return &sale, nil
}

// CreatePurchase records the delivery and applies it to stock and the
// buying price in the same transaction.
func (s *Store) CreatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	if purchase.ID == "" || purchase.StoreID == "" || purchase.ProductID == "" || purchase.Qty < 1 {
		return nil, store.ErrInvalidSale
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	var productName string
	err = pgTx.QueryRowContext(ctx, `
		SELECT name
		FROM products
		WHERE id = $1 AND store_id = $2
		FOR UPDATE
	`, purchase.ProductID, purchase.StoreID).Scan(&productName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	purchase.ProductName = productName

	if purchase.UnitCostSatang > 0 {
		_, err = pgTx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock + $1, buy_price_satang = $2, updated_at = now()
			WHERE id = $3
		`, purchase.Qty, purchase.UnitCostSatang, purchase.ProductID)
	} else {
		_, err = pgTx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock + $1, updated_at = now()
			WHERE id = $2
		`, purchase.Qty, purchase.ProductID)
	}
	if err != nil {
		return nil, err
	}

	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = time.Now().UTC()
	}
	purchase.TotalCostSatang = int64(purchase.Qty) * purchase.UnitCostSatang

	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO purchases (id, store_id, product_id, supplier, qty, unit_cost_satang, total_cost_satang, operator_name, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, purchase.ID, purchase.StoreID, purchase.ProductID, nullIfEmpty(purchase.Supplier),
		purchase.Qty, purchase.UnitCostSatang, purchase.TotalCostSatang, purchase.OperatorName, purchase.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}

	created := purchase
	return &created, nil
}

func (s *Store) ListPurchases(ctx context.Context, storeID string, limit int) ([]domain.Purchase, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.store_id, p.product_id, pr.name, p.supplier, p.qty,
		       p.unit_cost_satang, p.total_cost_satang, p.operator_name, p.created_at
		FROM purchases p
		JOIN products pr ON pr.id = p.product_id
		WHERE p.store_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2
	`, storeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := make([]domain.Purchase, 0, limit)
	for rows.Next() {
		var p domain.Purchase
		var supplier sql.NullString
		if err := rows.Scan(&p.ID, &p.StoreID, &p.ProductID, &p.ProductName, &supplier, &p.Qty,
			&p.UnitCostSatang, &p.TotalCostSatang, &p.OperatorName, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Supplier = supplier.String
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

func (s *Store) GetDailySummary(ctx context.Context, storeID string, from time.Time, to time.Time) (domain.DailySummary, error) {
	var summary domain.DailySummary
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(subtotal_satang), 0),
		       COALESCE(SUM(discount_satang), 0),
		       COALESCE(SUM(total_satang), 0),
		       COALESCE(SUM(profit_satang), 0)
		FROM sales
		WHERE store_id = $1 AND created_at >= $2 AND created_at < $3
	`, storeID, from, to).Scan(&summary.Sales, &summary.GrossSatang, &summary.DiscountSatang,
		&summary.NetSatang, &summary.ProfitSatang)
	if err != nil {
		return domain.DailySummary{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT si.product_id, si.name, SUM(si.qty)::int, SUM(si.line_total_satang)
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE s.store_id = $1 AND s.created_at >= $2 AND s.created_at < $3
		GROUP BY si.product_id, si.name
		ORDER BY SUM(si.qty) DESC, si.name
		LIMIT 5
	`, storeID, from, to)
	if err != nil {
		return domain.DailySummary{}, err
	}
	defer rows.Close()

	top := make([]domain.DailySummaryProduct, 0, 5)
	for rows.Next() {
		var entry domain.DailySummaryProduct
		if err := rows.Scan(&entry.ProductID, &entry.Name, &entry.Qty, &entry.TotalSatang); err != nil {
			return domain.DailySummary{}, err
		}
		top = append(top, entry)
	}
	if err := rows.Err(); err != nil {
		return domain.DailySummary{}, err
	}
	summary.TopProducts = top
	return summary, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, store_id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, entry.ID, entry.StoreID, entry.ActorUsername, entry.ActorRole, entry.Action,
		entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, storeID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, store_id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE store_id = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC
		LIMIT $4
	`, storeID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.StoreID, &entry.ActorUsername, &entry.ActorRole,
			&entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (s *Store) GetUser(ctx context.Context, username string) (*domain.UserAccount, error) {
	var user domain.UserAccount
	var storeID sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT username, password_hash, role, store_id, active, created_at
		FROM users
		WHERE username = lower($1)
	`, username).Scan(&user.Username, &user.Password, &user.Role, &storeID, &user.Active, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	user.StoreID = storeID.String
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" {
		return store.ErrInvalidSale
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, role, store_id, active, created_at)
		VALUES (lower($1),$2,$3,$4,$5,$6)
	`, user.Username, user.Password, user.Role, nullIfEmpty(user.StoreID), user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}
