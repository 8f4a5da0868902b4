package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/phonestock/internal/db"
	pkgerrors "github.com/erazemk/phonestock/internal/errors"
	"github.com/erazemk/phonestock/internal/model"
)

func createTestPhone(t *testing.T, database DBTX, p model.Phone) *model.Phone {
	t.Helper()
	phone, err := CreatePhone(context.Background(), database, p)
	if err != nil {
		t.Fatalf("CreatePhone: %v", err)
	}
	return phone
}

func TestCreateAndGetPhone(t *testing.T) {
	database := db.NewTestDB(t)

	phone := createTestPhone(t, database, model.Phone{
		Brand:        "Acme",
		Model:        "X1",
		Category:     "Smartphone",
		IMEI:         "123",
		BuyingPrice:  decimal.RequireFromString("100000.50"),
		SellingPrice: decimal.RequireFromString("125000"),
	})

	if phone.Status != model.PhoneStatusAvailable {
		t.Errorf("expected default status 'available', got %q", phone.Status)
	}
	if !phone.BuyingPrice.Equal(decimal.RequireFromString("100000.50")) {
		t.Errorf("unexpected buying price %s", phone.BuyingPrice)
	}
	if phone.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	missing, err := GetPhone(context.Background(), database, 999)
	if err != nil {
		t.Fatalf("GetPhone: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing phone")
	}
}

func TestCreatePhoneStoresUTC(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	local := time.Date(2024, 1, 1, 10, 0, 0, 0, time.FixedZone("UTC+2", 2*60*60))
	phone := createTestPhone(t, database, model.Phone{Brand: "Acme", Model: "X1", IMEI: "123", CreatedAt: local})

	var raw string
	if err := database.QueryRowContext(ctx, `SELECT CAST(created_at AS TEXT) FROM phones WHERE id = ?`, phone.ID).Scan(&raw); err != nil {
		t.Fatalf("reading created_at: %v", err)
	}
	if raw != "2024-01-01 08:00:00" {
		t.Errorf("expected created_at stored as UTC text, got %q", raw)
	}
	if !phone.CreatedAt.Equal(local) {
		t.Errorf("expected %v, got %v", local, phone.CreatedAt)
	}
}

func TestListPhonesForReportOrder(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	day := func(d int) time.Time { return time.Date(2024, 1, d, 12, 0, 0, 0, time.UTC) }
	createTestPhone(t, database, model.Phone{Brand: "A", Model: "1", IMEI: "1", CreatedAt: day(1)})
	createTestPhone(t, database, model.Phone{Brand: "A", Model: "3", IMEI: "3", CreatedAt: day(3)})
	createTestPhone(t, database, model.Phone{Brand: "A", Model: "2", IMEI: "2", CreatedAt: day(2)})

	// Rows with a null status never reach the report.
	if _, err := database.ExecContext(ctx,
		`INSERT INTO phones (brand, model, category, imei, buying_price, selling_price, status) VALUES ('N', 'N', '', '4', 0, 0, NULL)`,
	); err != nil {
		t.Fatalf("inserting null-status phone: %v", err)
	}

	phones, err := ListPhonesForReport(ctx, database)
	if err != nil {
		t.Fatalf("ListPhonesForReport: %v", err)
	}
	if len(phones) != 3 {
		t.Fatalf("expected 3 phones, got %d", len(phones))
	}
	for i, want := range []string{"3", "2", "1"} {
		if phones[i].IMEI != want {
			t.Errorf("position %d: expected IMEI %s, got %s", i, want, phones[i].IMEI)
		}
	}
}

func TestMarkPhoneUnavailable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	admin, _ := CreateUser(ctx, database, "admin", "Admin", "hash", model.RoleAdmin)
	phone := createTestPhone(t, database, model.Phone{Brand: "Acme", Model: "X1", IMEI: "123"})

	got, changed, err := MarkPhoneUnavailable(ctx, database, phone.ID, admin.ID)
	if err != nil {
		t.Fatalf("MarkPhoneUnavailable: %v", err)
	}
	if !changed || got.Status != model.PhoneStatusUnavailable {
		t.Fatalf("expected change to unavailable, got changed=%v status=%q", changed, got.Status)
	}

	stored, _ := GetPhone(ctx, database, phone.ID)
	if stored.Status != model.PhoneStatusUnavailable {
		t.Errorf("expected stored status 'unavailable', got %q", stored.Status)
	}

	entries, _ := ListActivity(ctx, database, 10)
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	if entries[0].Action != model.ActionMarkUnavailablePhone {
		t.Errorf("unexpected action %q", entries[0].Action)
	}
	if entries[0].Description != "Marked phone Acme X1 (123) as unavailable" {
		t.Errorf("unexpected description %q", entries[0].Description)
	}
	if entries[0].UserID == nil || *entries[0].UserID != admin.ID {
		t.Errorf("expected actor %d, got %v", admin.ID, entries[0].UserID)
	}

	_, changed, err = MarkPhoneUnavailable(ctx, database, phone.ID, admin.ID)
	if err != nil {
		t.Fatalf("second MarkPhoneUnavailable: %v", err)
	}
	if changed {
		t.Error("expected second call to be a no-op")
	}
	if n, _ := CountActivity(ctx, database, model.ActionMarkUnavailablePhone); n != 1 {
		t.Errorf("expected audit count to stay 1, got %d", n)
	}
}

func TestMarkSoldPhoneUnavailable(t *testing.T) {
	database := db.NewTestDB(t)
	phone := createTestPhone(t, database, model.Phone{Brand: "Acme", Model: "X1", IMEI: "123", Status: model.PhoneStatusSold})

	_, changed, err := MarkPhoneUnavailable(context.Background(), database, phone.ID, 0)
	if err != nil || !changed {
		t.Fatalf("expected sold phone to become unavailable, got changed=%v err=%v", changed, err)
	}
}

func TestMarkPhoneUnavailableNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	_, _, err := MarkPhoneUnavailable(context.Background(), database, 42, 0)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if e := pkgerrors.As(err); e == nil || e.Message() != "Phone not found" {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestMarkPhoneWithoutStatusUnavailable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	phone := createTestPhone(t, database, model.Phone{Brand: "Acme", Model: "X1", IMEI: "123"})
	if _, err := database.ExecContext(ctx, `UPDATE phones SET status = NULL WHERE id = ?`, phone.ID); err != nil {
		t.Fatalf("clearing status: %v", err)
	}

	got, changed, err := MarkPhoneUnavailable(ctx, database, phone.ID, 0)
	if err != nil || !changed {
		t.Fatalf("expected phone without status to become unavailable, got changed=%v err=%v", changed, err)
	}
	if got.Status != model.PhoneStatusUnavailable {
		t.Errorf("expected status unavailable, got %q", got.Status)
	}
}
