package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	pkgerrors "github.com/erazemk/phonestock/internal/errors"
	"github.com/erazemk/phonestock/internal/model"
)

const accessoryColumns = `id, name, category, buying_price, selling_price, quantity, status, created_at`

func scanAccessory(row interface{ Scan(...any) error }) (*model.Accessory, error) {
	a := &model.Accessory{}
	var status sql.NullString
	err := row.Scan(&a.ID, &a.Name, &a.Category, &a.BuyingPrice, &a.SellingPrice,
		&a.Quantity, &status, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = status.String
	return a, nil
}

// CreateAccessory inserts an accessory line. A zero CreatedAt uses the database default.
func CreateAccessory(ctx context.Context, db DBTX, a model.Accessory) (*model.Accessory, error) {
	if a.Quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative")
	}

	if a.Status == "" {
		a.Status = model.AccessoryStatusAvailable
	}

	var (
		result sql.Result
		err    error
	)
	if a.CreatedAt.IsZero() {
		result, err = db.ExecContext(ctx,
			`INSERT INTO accessories (name, category, buying_price, selling_price, quantity, status)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			a.Name, a.Category, a.BuyingPrice, a.SellingPrice, a.Quantity, a.Status,
		)
	} else {
		result, err = db.ExecContext(ctx,
			`INSERT INTO accessories (name, category, buying_price, selling_price, quantity, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.Name, a.Category, a.BuyingPrice, a.SellingPrice, a.Quantity, a.Status, dbTime(a.CreatedAt),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("creating accessory: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting accessory id: %w", err)
	}

	return GetAccessory(ctx, db, id)
}

// GetAccessory returns an accessory by ID, or nil if none exists.
func GetAccessory(ctx context.Context, db DBTX, id int64) (*model.Accessory, error) {
	a, err := scanAccessory(db.QueryRowContext(ctx,
		`SELECT `+accessoryColumns+` FROM accessories WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting accessory: %w", err)
	}
	return a, nil
}

// ListAccessoriesForReport returns every accessory with a status, newest first.
func ListAccessoriesForReport(ctx context.Context, db DBTX) ([]model.Accessory, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+accessoryColumns+` FROM accessories
		 WHERE status IS NOT NULL
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing accessories: %w", err)
	}
	defer rows.Close()

	var accessories []model.Accessory
	for rows.Next() {
		a, err := scanAccessory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning accessory: %w", err)
		}
		accessories = append(accessories, *a)
	}
	return accessories, rows.Err()
}

// MarkAccessoryUnavailable soft-deletes an accessory and audits it in one transaction.
func MarkAccessoryUnavailable(ctx context.Context, db *sql.DB, id, actorID int64) (*model.Accessory, bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	acc, err := GetAccessory(ctx, tx, id)
	if err != nil {
		return nil, false, err
	}
	if acc == nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeNotFound, "Accessory not found")
	}

	changed, err := model.Transition(model.KindAccessory, acc.Status, model.AccessoryStatusUnavailable)
	if err != nil || !changed {
		return acc, false, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE accessories SET status = ? WHERE id = ?`, model.AccessoryStatusUnavailable, id,
	); err != nil {
		return nil, false, fmt.Errorf("updating accessory status: %w", err)
	}

	desc := fmt.Sprintf("Marked accessory %s as unavailable", acc.Name)
	if err := RecordActivity(ctx, tx, actorID, model.ActionMarkUnavailableAccessory, desc); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("committing accessory status: %w", err)
	}

	acc.Status = model.AccessoryStatusUnavailable
	return acc, true, nil
}
