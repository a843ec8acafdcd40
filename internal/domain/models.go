package domain

import "time"

type Store struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID                string    `json:"id"`
	StoreID           string    `json:"store_id"`
	SKU               string    `json:"sku"`
	Name              string    `json:"name"`
	Category          string    `json:"category"`
	SellPriceSatang   int64     `json:"sell_price_satang"`
	BuyPriceSatang    int64     `json:"buy_price_satang"`
	Stock             int       `json:"stock"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type ProductCreateRequest struct {
	StoreID           string `json:"store_id,omitempty"`
	SKU               string `json:"sku"`
	Name              string `json:"name" validate:"required"`
	Category          string `json:"category"`
	SellPriceSatang   int64  `json:"sell_price_satang" validate:"gt=0"`
	BuyPriceSatang    int64  `json:"buy_price_satang" validate:"gte=0"`
	InitialStock      int    `json:"initial_stock" validate:"gte=0"`
	LowStockThreshold int    `json:"low_stock_threshold" validate:"gte=0"`
}

type ProductUpdateRequest struct {
	Name              *string `json:"name,omitempty"`
	Category          *string `json:"category,omitempty"`
	SellPriceSatang   *int64  `json:"sell_price_satang,omitempty"`
	BuyPriceSatang    *int64  `json:"buy_price_satang,omitempty"`
	LowStockThreshold *int    `json:"low_stock_threshold,omitempty"`
	Active            *bool   `json:"active,omitempty"`
}

type Customer struct {
	ID                  string       `json:"id"`
	StoreID             string       `json:"store_id"`
	Name                string       `json:"name"`
	Phone               string       `json:"phone,omitempty"`
	DiscountMode        DiscountMode `json:"discount_mode"`
	DiscountPercent     float64      `json:"discount_percent,omitempty"`
	DiscountFixedSatang int64        `json:"discount_fixed_satang,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

type CustomerCreateRequest struct {
	StoreID             string  `json:"store_id,omitempty"`
	Name                string  `json:"name" validate:"required"`
	Phone               string  `json:"phone"`
	DiscountMode        string  `json:"discount_mode" validate:"omitempty,oneof=none percentage fixed"`
	DiscountPercent     float64 `json:"discount_percent" validate:"gte=0,lte=100"`
	DiscountFixedSatang int64   `json:"discount_fixed_satang" validate:"gte=0"`
}

type CustomerUpdateRequest struct {
	Name                *string  `json:"name,omitempty"`
	Phone               *string  `json:"phone,omitempty"`
	DiscountMode        *string  `json:"discount_mode,omitempty"`
	DiscountPercent     *float64 `json:"discount_percent,omitempty"`
	DiscountFixedSatang *int64   `json:"discount_fixed_satang,omitempty"`
}

type DiscountMode string

const (
	DiscountNone       DiscountMode = "none"
	DiscountPercentage DiscountMode = "percentage"
	DiscountFixed      DiscountMode = "fixed"
)

type CartItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Qty       int    `json:"qty" validate:"gt=0"`
}

type SaleRequest struct {
	StoreID        string     `json:"store_id,omitempty"`
	IdempotencyKey string     `json:"idempotency_key" validate:"required"`
	CustomerID     string     `json:"customer_id,omitempty"`
	PaymentMethod  string     `json:"payment_method,omitempty" validate:"omitempty,oneof=cash card transfer"`
	Items          []CartItem `json:"items" validate:"required,min=1,dive"`
}

type QuoteRequest struct {
	StoreID    string     `json:"store_id,omitempty"`
	CustomerID string     `json:"customer_id,omitempty"`
	Items      []CartItem `json:"items" validate:"required,min=1,dive"`
}

type SaleItem struct {
	ProductID        string `json:"product_id"`
	Name             string `json:"name"`
	Qty              int    `json:"qty"`
	UnitPriceSatang  int64  `json:"unit_price_satang"`
	UnitCostSatang   int64  `json:"unit_cost_satang"`
	LineTotalSatang  int64  `json:"line_total_satang"`
	LineProfitSatang int64  `json:"line_profit_satang"`
}

type Sale struct {
	ID             string     `json:"id"`
	StoreID        string     `json:"store_id"`
	IdempotencyKey string     `json:"-"`
	CustomerID     string     `json:"customer_id,omitempty"`
	OperatorName   string     `json:"operator_name"`
	PaymentMethod  string     `json:"payment_method"`
	SubtotalSatang int64      `json:"subtotal_satang"`
	DiscountSatang int64      `json:"discount_satang"`
	TotalSatang    int64      `json:"total_satang"`
	ProfitSatang   int64      `json:"profit_satang"`
	CreatedAt      time.Time  `json:"created_at"`
	Items          []SaleItem `json:"items"`
}

type SaleResponse struct {
	Sale      Sale `json:"sale"`
	Duplicate bool `json:"duplicate"`
}

type Quote struct {
	StoreID        string     `json:"store_id"`
	CustomerID     string     `json:"customer_id,omitempty"`
	SubtotalSatang int64      `json:"subtotal_satang"`
	DiscountSatang int64      `json:"discount_satang"`
	TotalSatang    int64      `json:"total_satang"`
	ProfitSatang   int64      `json:"profit_satang"`
	Items          []SaleItem `json:"items"`
}

type Purchase struct {
	ID              string    `json:"id"`
	StoreID         string    `json:"store_id"`
	ProductID       string    `json:"product_id"`
	ProductName     string    `json:"product_name"`
	Supplier        string    `json:"supplier,omitempty"`
	Qty             int       `json:"qty"`
	UnitCostSatang  int64     `json:"unit_cost_satang"`
	TotalCostSatang int64     `json:"total_cost_satang"`
	OperatorName    string    `json:"operator_name"`
	CreatedAt       time.Time `json:"created_at"`
}

type PurchaseCreateRequest struct {
	StoreID        string `json:"store_id,omitempty"`
	ProductID      string `json:"product_id" validate:"required"`
	Supplier       string `json:"supplier"`
	Qty            int    `json:"qty" validate:"gt=0"`
	UnitCostSatang int64  `json:"unit_cost_satang" validate:"gte=0"`
}

type Catalog struct {
	StoreID   string     `json:"store_id"`
	FetchedAt string     `json:"fetched_at"`
	Products  []Product  `json:"products"`
	Customers []Customer `json:"customers"`
}

type DailySummaryProduct struct {
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	Qty         int    `json:"qty"`
	TotalSatang int64  `json:"total_satang"`
}

type DailySummary struct {
	StoreID        string                `json:"store_id"`
	Date           string                `json:"date"`
	Sales          int64                 `json:"sales"`
	GrossSatang    int64                 `json:"gross_satang"`
	DiscountSatang int64                 `json:"discount_satang"`
	NetSatang      int64                 `json:"net_satang"`
	ProfitSatang   int64                 `json:"profit_satang"`
	TopProducts    []DailySummaryProduct `json:"top_products"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	StoreID     string `json:"store_id,omitempty"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
	StoreID  string
}

// UserAccount is an internal persistence model for auth credentials.
// StoreID is empty for owners, who are not pinned to a store.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	StoreID   string
	Active    bool
	CreatedAt time.Time
}

type AuditLog struct {
	ID            string    `json:"id"`
	StoreID       string    `json:"store_id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	RoleOwner        = "owner"
	RoleReceptionist = "receptionist"
)

const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
)
