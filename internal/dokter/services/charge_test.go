package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	adminModels "github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	adminServices "github.com/c14220110/poliklinik-billing/internal/administrasi/services"
	"github.com/c14220110/poliklinik-billing/internal/common/apperr"
	"github.com/c14220110/poliklinik-billing/internal/dokter/models"
	"github.com/c14220110/poliklinik-billing/internal/repository/repositorytest"
)

var tariff = adminServices.ConsultationTariff{
	adminModels.VisitTypeOutpatient: decimal.NewFromInt(50000),
	adminModels.VisitTypeInpatient:  decimal.NewFromInt(150000),
	adminModels.VisitTypeEmergency:  decimal.NewFromInt(100000),
}

type chargeFixture struct {
	store   *repositorytest.Store
	resep   *ResepService
	dokter  *DokterService
	billing *adminServices.BillingService
	visitID int64
}

func newChargeFixture(t *testing.T) *chargeFixture {
	t.Helper()
	store := repositorytest.New()
	store.SeedPoli(1, "Poli Umum")
	pid := store.SeedPasien(adminModels.Pasien{Nama: "Budi", NIK: "3578010101900001"})
	vid := store.SeedKunjungan(adminModels.Kunjungan{
		IDPasien:       pid,
		IDPoli:         1,
		NomorKunjungan: "KJ-20240301-01001",
		VisitType:      adminModels.VisitTypeOutpatient,
		Payer:          adminModels.PayerUmum,
	})
	store.SeedObat(models.Obat{IDObat: 1, Nama: "Paracetamol 500mg", HargaSatuan: decimal.NewFromInt(2000), Satuan: "tablet", Stock: 10})
	store.SeedObat(models.Obat{IDObat: 2, Nama: "Amoxicillin 500mg", HargaSatuan: decimal.NewFromInt(5000), Satuan: "kapsul", Stock: 3})
	store.SeedTindakan(models.Tindakan{IDTindakan: 1, KodeICD9: "89.7", Nama: "Pemeriksaan umum", Harga: decimal.NewFromInt(75000)})

	logger := zerolog.Nop()
	billing := adminServices.NewBillingService(store, tariff, adminServices.NopNotifier{}, logger)
	return &chargeFixture{
		store:   store,
		resep:   NewResepService(store, billing, adminServices.NopNotifier{}, logger),
		dokter:  NewDokterService(store, billing, adminServices.NopNotifier{}, logger),
		billing: billing,
		visitID: vid,
	}
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestDispenseResep(t *testing.T) {
	f := newChargeFixture(t)
	ctx := context.Background()

	res, err := f.resep.DispenseResep(ctx, models.ResepRequest{
		VisitID: f.visitID,
		Items: []models.ResepItemRequest{
			{IDObat: 1, Jumlah: 10},
			{IDObat: 2, Jumlah: 2, Diskon: decPtr("1000")},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(res.Items))
	}
	if res.Items[0].ItemType != adminModels.ItemTypeDrug || !res.Items[0].TotalPrice.Equal(decimal.NewFromInt(20000)) {
		t.Errorf("unexpected first item %+v", res.Items[0])
	}
	if !res.Items[1].TotalPrice.Equal(decimal.NewFromInt(9000)) {
		t.Errorf("expected discounted line 9000, got %s", res.Items[1].TotalPrice)
	}

	o, _ := f.store.GetObat(ctx, 1, false)
	if o.Stock != 0 {
		t.Errorf("expected stock 0, got %d", o.Stock)
	}
	b, _ := f.store.GetBillingByVisit(ctx, f.visitID, false)
	if b.ID != res.BillingID {
		t.Errorf("billing id mismatch")
	}
	// 20000 + 9000 + konsultasi 50000
	if !b.TotalAmount.Equal(decimal.NewFromInt(79000)) {
		t.Errorf("expected total 79000, got %s", b.TotalAmount)
	}
}

func TestDispenseResep_InsufficientStockRollsBack(t *testing.T) {
	f := newChargeFixture(t)
	ctx := context.Background()

	_, err := f.resep.DispenseResep(ctx, models.ResepRequest{
		VisitID: f.visitID,
		Items: []models.ResepItemRequest{
			{IDObat: 1, Jumlah: 5},
			{IDObat: 2, Jumlah: 4},
		},
	})
	if !apperr.Is(err, apperr.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	o, _ := f.store.GetObat(ctx, 1, false)
	if o.Stock != 10 {
		t.Errorf("stock of first drug must be restored, got %d", o.Stock)
	}
	if _, err := f.store.GetBillingByVisit(ctx, f.visitID, false); err == nil {
		t.Errorf("billing created in a rolled back transaction must not persist")
	}
}

func TestDispenseResep_Errors(t *testing.T) {
	f := newChargeFixture(t)
	tests := []struct {
		name string
		req  models.ResepRequest
		code apperr.Code
	}{
		{"no visit id", models.ResepRequest{Items: []models.ResepItemRequest{{IDObat: 1, Jumlah: 1}}}, apperr.CodeValidation},
		{"empty items", models.ResepRequest{VisitID: f.visitID}, apperr.CodeValidation},
		{"zero quantity", models.ResepRequest{VisitID: f.visitID, Items: []models.ResepItemRequest{{IDObat: 1}}}, apperr.CodeValidation},
		{"negative discount", models.ResepRequest{VisitID: f.visitID, Items: []models.ResepItemRequest{{IDObat: 1, Jumlah: 1, Diskon: decPtr("-1")}}}, apperr.CodeValidation},
		{"discount below one cent", models.ResepRequest{VisitID: f.visitID, Items: []models.ResepItemRequest{{IDObat: 1, Jumlah: 1, Diskon: decPtr("0.001")}}}, apperr.CodeValidation},
		{"discount above line", models.ResepRequest{VisitID: f.visitID, Items: []models.ResepItemRequest{{IDObat: 1, Jumlah: 1, Diskon: decPtr("2000.01")}}}, apperr.CodeValidation},
		{"unknown drug", models.ResepRequest{VisitID: f.visitID, Items: []models.ResepItemRequest{{IDObat: 99, Jumlah: 1}}}, apperr.CodeNotFound},
		{"unknown visit", models.ResepRequest{VisitID: 999, Items: []models.ResepItemRequest{{IDObat: 1, Jumlah: 1}}}, apperr.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.resep.DispenseResep(context.Background(), tt.req)
			if !apperr.Is(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestDispenseResep_FieldPaths(t *testing.T) {
	f := newChargeFixture(t)

	_, err := f.resep.DispenseResep(context.Background(), models.ResepRequest{
		VisitID: f.visitID,
		Items: []models.ResepItemRequest{
			{IDObat: 1, Jumlah: 1},
			{IDObat: 1, Jumlah: 0, Diskon: decPtr("1.005")},
		},
	})
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Code != apperr.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"items[1].quantity", "items[1].discount"} {
		if _, ok := ae.Fields[field]; !ok {
			t.Errorf("expected field %s, got %v", field, ae.Fields)
		}
	}
	if _, ok := ae.Fields["items[0].quantity"]; ok {
		t.Errorf("first item is valid, got %v", ae.Fields)
	}
}

func TestCharges_RejectedAfterLock(t *testing.T) {
	f := newChargeFixture(t)
	ctx := context.Background()
	if err := f.store.LockRekamMedis(ctx, f.visitID, 1, time.Now()); err != nil {
		t.Fatalf("lock: %v", err)
	}

	_, err := f.resep.DispenseResep(ctx, models.ResepRequest{
		VisitID: f.visitID,
		Items:   []models.ResepItemRequest{{IDObat: 1, Jumlah: 1}},
	})
	if !apperr.Is(err, apperr.CodeConflict) {
		t.Errorf("resep: expected conflict, got %v", err)
	}
	_, err = f.dokter.AddTindakan(ctx, f.visitID, models.TindakanRequest{
		Items: []models.TindakanItemRequest{{IDTindakan: 1, Jumlah: 1}},
	})
	if !apperr.Is(err, apperr.CodeConflict) {
		t.Errorf("tindakan: expected conflict, got %v", err)
	}
}

func TestAddTindakan(t *testing.T) {
	f := newChargeFixture(t)
	ctx := context.Background()

	res, err := f.dokter.AddTindakan(ctx, f.visitID, models.TindakanRequest{
		Items: []models.TindakanItemRequest{{IDTindakan: 1, Jumlah: 2, Diskon: decPtr("50000")}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	it := res.Items[0]
	if it.ItemType != adminModels.ItemTypeService || it.Description != "Pemeriksaan umum (89.7)" {
		t.Errorf("unexpected item %+v", it)
	}
	if !it.TotalPrice.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("expected line total 100000, got %s", it.TotalPrice)
	}

	_, err = f.dokter.AddTindakan(ctx, f.visitID, models.TindakanRequest{
		Items: []models.TindakanItemRequest{{IDTindakan: 42, Jumlah: 1}},
	})
	if !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestAddTindakan_RecalculateFailure(t *testing.T) {
	f := newChargeFixture(t)
	ctx := context.Background()
	f.store.FailOn("UpdateBillingTotals", errors.New("lock wait timeout"))

	_, err := f.dokter.AddTindakan(ctx, f.visitID, models.TindakanRequest{
		Items: []models.TindakanItemRequest{{IDTindakan: 1, Jumlah: 1}},
	})
	if !apperr.Is(err, apperr.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if _, err := f.store.GetBillingByVisit(ctx, f.visitID, false); err == nil {
		t.Errorf("billing must be rolled back")
	}
}
