package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Accessory is a quantity-tracked product line (chargers, cases, ...).
type Accessory struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	BuyingPrice  decimal.Decimal `json:"buying_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Quantity     int             `json:"quantity"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Accessory statuses.
const (
	AccessoryStatusAvailable   = "available"
	AccessoryStatusUnavailable = "unavailable"
	AccessoryStatusLowStock    = "low_stock"
	AccessoryStatusOutOfStock  = "out_of_stock"
)
