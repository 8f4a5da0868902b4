package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	pkgerrors "github.com/erazemk/phonestock/internal/errors"
	"github.com/erazemk/phonestock/internal/model"
)

const phoneColumns = `id, brand, model, category, imei, buying_price, selling_price, status, created_at`

func scanPhone(row interface{ Scan(...any) error }) (*model.Phone, error) {
	p := &model.Phone{}
	var status sql.NullString
	err := row.Scan(&p.ID, &p.Brand, &p.Model, &p.Category, &p.IMEI,
		&p.BuyingPrice, &p.SellingPrice, &status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Status = status.String
	return p, nil
}

// CreatePhone inserts a handset. A zero CreatedAt uses the database default.
func CreatePhone(ctx context.Context, db DBTX, p model.Phone) (*model.Phone, error) {
	if p.Status == "" {
		p.Status = model.PhoneStatusAvailable
	}

	var (
		result sql.Result
		err    error
	)
	if p.CreatedAt.IsZero() {
		result, err = db.ExecContext(ctx,
			`INSERT INTO phones (brand, model, category, imei, buying_price, selling_price, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.Brand, p.Model, p.Category, p.IMEI, p.BuyingPrice, p.SellingPrice, p.Status,
		)
	} else {
		result, err = db.ExecContext(ctx,
			`INSERT INTO phones (brand, model, category, imei, buying_price, selling_price, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.Brand, p.Model, p.Category, p.IMEI, p.BuyingPrice, p.SellingPrice, p.Status, dbTime(p.CreatedAt),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("creating phone: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting phone id: %w", err)
	}

	return GetPhone(ctx, db, id)
}

// GetPhone returns a phone by ID, or nil if none exists.
func GetPhone(ctx context.Context, db DBTX, id int64) (*model.Phone, error) {
	p, err := scanPhone(db.QueryRowContext(ctx,
		`SELECT `+phoneColumns+` FROM phones WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting phone: %w", err)
	}
	return p, nil
}

// ListPhonesForReport returns every phone with a status, newest first.
func ListPhonesForReport(ctx context.Context, db DBTX) ([]model.Phone, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+phoneColumns+` FROM phones
		 WHERE status IS NOT NULL
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing phones: %w", err)
	}
	defer rows.Close()

	var phones []model.Phone
	for rows.Next() {
		p, err := scanPhone(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning phone: %w", err)
		}
		phones = append(phones, *p)
	}
	return phones, rows.Err()
}

// MarkPhoneUnavailable soft-deletes a phone and audits it in one transaction.
// A phone that is already unavailable is returned unchanged with changed=false.
func MarkPhoneUnavailable(ctx context.Context, db *sql.DB, id, actorID int64) (*model.Phone, bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	phone, err := GetPhone(ctx, tx, id)
	if err != nil {
		return nil, false, err
	}
	if phone == nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeNotFound, "Phone not found")
	}

	changed, err := model.Transition(model.KindPhone, phone.Status, model.PhoneStatusUnavailable)
	if err != nil || !changed {
		return phone, false, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE phones SET status = ? WHERE id = ?`, model.PhoneStatusUnavailable, id,
	); err != nil {
		return nil, false, fmt.Errorf("updating phone status: %w", err)
	}

	desc := fmt.Sprintf("Marked phone %s as unavailable", phone.Label())
	if err := RecordActivity(ctx, tx, actorID, model.ActionMarkUnavailablePhone, desc); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("committing phone status: %w", err)
	}

	phone.Status = model.PhoneStatusUnavailable
	return phone, true, nil
}
