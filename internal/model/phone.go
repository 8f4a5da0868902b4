package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Phone is a single handset; every row is one unit of stock.
type Phone struct {
	ID           int64           `json:"id"`
	Brand        string          `json:"brand"`
	Model        string          `json:"model"`
	Category     string          `json:"category"`
	IMEI         string          `json:"imei"`
	BuyingPrice  decimal.Decimal `json:"buying_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Phone statuses.
const (
	PhoneStatusAvailable   = "available"
	PhoneStatusUnavailable = "unavailable"
	PhoneStatusSold        = "sold"
)

// Name joins brand and model.
func (p *Phone) Name() string {
	return p.Brand + " " + p.Model
}

// Label identifies the handset in audit descriptions, e.g. "Acme X1 (123)".
func (p *Phone) Label() string {
	return fmt.Sprintf("%s (%s)", p.Name(), p.IMEI)
}
