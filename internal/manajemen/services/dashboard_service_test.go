package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	adminModels "github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	"github.com/c14220110/poliklinik-billing/internal/common/apperr"
	"github.com/c14220110/poliklinik-billing/internal/repository/repositorytest"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func seedRevenue(store *repositorytest.Store) {
	lunas := store.SeedBilling(adminModels.Billing{
		TotalAmount: decimal.NewFromInt(150000), PaymentStatus: adminModels.PaymentStatusPaid, CreatedAt: day(1).Add(9 * time.Hour),
	})
	store.SeedPayment(adminModels.Payment{
		BillingID: lunas, Amount: decimal.NewFromInt(150000), PaymentMethod: adminModels.PaymentMethodCash, ReceivedAt: day(1).Add(10 * time.Hour),
	})

	sebagian := store.SeedBilling(adminModels.Billing{
		TotalAmount: decimal.NewFromInt(200000), PaymentStatus: adminModels.PaymentStatusPartial, CreatedAt: day(2).Add(23 * time.Hour),
	})
	store.SeedPayment(adminModels.Payment{
		BillingID: sebagian, Amount: decimal.NewFromInt(50000), PaymentMethod: adminModels.PaymentMethodTransfer, ReceivedAt: day(3).Add(8 * time.Hour),
	})

	// di luar rentang
	lama := store.SeedBilling(adminModels.Billing{
		TotalAmount: decimal.NewFromInt(999000), PaymentStatus: adminModels.PaymentStatusUnpaid, CreatedAt: day(10),
	})
	store.SeedPayment(adminModels.Payment{
		BillingID: lama, Amount: decimal.NewFromInt(1000), PaymentMethod: adminModels.PaymentMethodCard, ReceivedAt: day(10),
	})
}

func TestGetDashboardData(t *testing.T) {
	store := repositorytest.New()
	seedRevenue(store)
	svc := NewDashboardService(store, zerolog.Nop())

	d, err := svc.GetDashboardData(context.Background(), day(1), day(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.JumlahTagihan != 2 {
		t.Errorf("expected 2 tagihan, got %d", d.JumlahTagihan)
	}
	checks := []struct {
		name string
		got  decimal.Decimal
		want int64
	}{
		{"pendapatan total", d.PendapatanTotal, 350000},
		{"pendapatan diterima", d.PendapatanDiterima, 200000},
		{"piutang", d.Piutang, 150000},
		{"rata-rata", d.PendapatanRataRata, 175000},
	}
	for _, c := range checks {
		if !c.got.Equal(decimal.NewFromInt(c.want)) {
			t.Errorf("%s: expected %d, got %s", c.name, c.want, c.got)
		}
	}
	if len(d.PerStatus) != 2 || d.PerStatus[0].Status != adminModels.PaymentStatusPaid {
		t.Errorf("unexpected per status %+v", d.PerStatus)
	}
	if len(d.PerMetode) != 2 || d.PerMetode[0].Metode != adminModels.PaymentMethodCash {
		t.Errorf("unexpected per metode %+v", d.PerMetode)
	}
}

func TestGetDashboardData_SingleDayIncludesWholeDay(t *testing.T) {
	store := repositorytest.New()
	seedRevenue(store)
	svc := NewDashboardService(store, zerolog.Nop())

	d, err := svc.GetDashboardData(context.Background(), day(2), day(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.JumlahTagihan != 1 || !d.PendapatanTotal.Equal(decimal.NewFromInt(200000)) {
		t.Errorf("expected the 23:00 billing only, got %d / %s", d.JumlahTagihan, d.PendapatanTotal)
	}
	if len(d.PerMetode) != 0 || !d.PendapatanDiterima.IsZero() {
		t.Errorf("expected no payments on day 2, got %+v", d.PerMetode)
	}
}

func TestGetDashboardData_Empty(t *testing.T) {
	svc := NewDashboardService(repositorytest.New(), zerolog.Nop())

	d, err := svc.GetDashboardData(context.Background(), day(1), day(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.JumlahTagihan != 0 || !d.PendapatanRataRata.IsZero() || d.PerStatus == nil || d.PerMetode == nil {
		t.Errorf("unexpected empty dashboard %+v", d)
	}
}

func TestGetDashboardData_InvalidRange(t *testing.T) {
	svc := NewDashboardService(repositorytest.New(), zerolog.Nop())

	tests := []struct {
		name       string
		start, end time.Time
	}{
		{"end before start", day(5), day(4)},
		{"too long", day(1), day(1).AddDate(2, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetDashboardData(context.Background(), tt.start, tt.end)
			if !apperr.Is(err, apperr.CodeValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGetDashboardData_StoreFailure(t *testing.T) {
	store := repositorytest.New()
	store.FailOn("PaymentTotalsByMethod", errors.New("db down"))
	svc := NewDashboardService(store, zerolog.Nop())

	_, err := svc.GetDashboardData(context.Background(), day(1), day(1))
	if !apperr.Is(err, apperr.CodeInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
}
