// Package report builds the unified inventory report and its file encodings.
package report

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/erazemk/phonestock/internal/model"
	"github.com/erazemk/phonestock/internal/store"
)

// Row types.
const (
	TypePhone     = "Phone"
	TypeAccessory = "Accessory"
)

// NoCode fills the code column for rows without an IMEI.
const NoCode = "N/A"

// DateLayout formats the added date column.
const DateLayout = "2006-01-02"

// Row is one line of the unified inventory.
type Row struct {
	Type         string          `json:"type"`
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Code         string          `json:"code"`
	BuyingPrice  decimal.Decimal `json:"buying_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Stock        int             `json:"stock"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Totals summarises a report.
type Totals struct {
	Rows  int `json:"rows"`
	Stock int `json:"stock"`
}

// PhoneRow converts a handset into a report row with a stock of one.
func PhoneRow(p model.Phone) Row {
	return Row{
		Type:         TypePhone,
		ID:           p.ID,
		Name:         p.Name(),
		Category:     p.Category,
		Code:         p.IMEI,
		BuyingPrice:  p.BuyingPrice,
		SellingPrice: p.SellingPrice,
		Stock:        1,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
	}
}

// AccessoryRow converts an accessory line into a report row.
func AccessoryRow(a model.Accessory) Row {
	return Row{
		Type:         TypeAccessory,
		ID:           a.ID,
		Name:         a.Name,
		Category:     a.Category,
		Code:         NoCode,
		BuyingPrice:  a.BuyingPrice,
		SellingPrice: a.SellingPrice,
		Stock:        a.Quantity,
		Status:       a.Status,
		CreatedAt:    a.CreatedAt,
	}
}

// Build merges phones and accessories into one list ordered newest first.
// On equal timestamps phones come first and each input keeps its own order.
// The inputs are not modified.
func Build(phones []model.Phone, accessories []model.Accessory) []Row {
	phones = slices.Clone(phones)
	slices.SortStableFunc(phones, func(a, b model.Phone) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	accessories = slices.Clone(accessories)
	slices.SortStableFunc(accessories, func(a, b model.Accessory) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	rows := make([]Row, 0, len(phones)+len(accessories))

	i, j := 0, 0
	for i < len(phones) && j < len(accessories) {
		if accessories[j].CreatedAt.After(phones[i].CreatedAt) {
			rows = append(rows, AccessoryRow(accessories[j]))
			j++
			continue
		}
		rows = append(rows, PhoneRow(phones[i]))
		i++
	}
	for ; i < len(phones); i++ {
		rows = append(rows, PhoneRow(phones[i]))
	}
	for ; j < len(accessories); j++ {
		rows = append(rows, AccessoryRow(accessories[j]))
	}
	return rows
}

// Load reads both inventories from the store and merges them.
func Load(ctx context.Context, db store.DBTX) ([]Row, error) {
	phones, err := store.ListPhonesForReport(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("loading phones: %w", err)
	}
	accessories, err := store.ListAccessoriesForReport(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("loading accessories: %w", err)
	}
	return Build(phones, accessories), nil
}

// Sum counts rows and total stock.
func Sum(rows []Row) Totals {
	t := Totals{Rows: len(rows)}
	for _, r := range rows {
		t.Stock += r.Stock
	}
	return t
}

// HumanizeStatus turns "out_of_stock" into "Out of stock".
func HumanizeStatus(status string) string {
	s := strings.ReplaceAll(status, "_", " ")
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Filename returns the attachment name for an export taken at now.
func Filename(now time.Time, ext string) string {
	return fmt.Sprintf("inventory_%s.%s", now.Format(DateLayout), ext)
}

func formatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// record renders a row as the cells shared by every file format.
func (r Row) record() []string {
	return []string{
		r.Type,
		r.Name,
		r.Category,
		r.Code,
		formatPrice(r.BuyingPrice),
		formatPrice(r.SellingPrice),
		fmt.Sprint(r.Stock),
		HumanizeStatus(r.Status),
		r.CreatedAt.Format(DateLayout),
	}
}
