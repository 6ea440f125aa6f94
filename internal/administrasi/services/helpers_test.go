package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	"github.com/c14220110/poliklinik-billing/internal/repository/repositorytest"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Publish(eventType string, _ any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
	return nil
}

func (n *recordingNotifier) count(eventType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e == eventType {
			c++
		}
	}
	return c
}

var testTariff = ConsultationTariff{
	models.VisitTypeOutpatient: decimal.NewFromInt(50000),
	models.VisitTypeInpatient:  decimal.NewFromInt(150000),
	models.VisitTypeEmergency:  decimal.NewFromInt(100000),
}

type fixture struct {
	store       *repositorytest.Store
	notifier    *recordingNotifier
	billing     *BillingService
	payments    *PaymentService
	queue       *QueueService
	pendaftaran *PendaftaranService
	nextNIK     int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repositorytest.New()
	store.SeedPoli(1, "Poli Umum")
	store.SeedPoli(2, "Poli Gigi")

	n := &recordingNotifier{}
	logger := zerolog.Nop()
	billing := NewBillingService(store, testTariff, n, logger)
	return &fixture{
		store:       store,
		notifier:    n,
		billing:     billing,
		payments:    NewPaymentService(store, n, logger),
		queue:       NewQueueService(store),
		pendaftaran: NewPendaftaranService(store, billing, n, logger),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func assertDec(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s: expected %s, got %s", field, want, got.String())
	}
}

// seedVisit membuat pasien dan kunjungan belum terkunci dengan item tagihan
// bernilai itemTotals.
func (f *fixture) seedVisit(t *testing.T, nama string, visitType models.VisitType, itemTotals ...string) int64 {
	t.Helper()
	f.nextNIK++
	pid := f.store.SeedPasien(models.Pasien{
		Nama: nama,
		NIK:  fmt.Sprintf("35780101900%05d", f.nextNIK),
	})
	vid := f.store.SeedKunjungan(models.Kunjungan{
		IDPasien:       pid,
		IDPoli:         1,
		NomorKunjungan: fmt.Sprintf("KJ-20240301-01%03d", f.nextNIK),
		NomorAntrian:   f.nextNIK,
		VisitType:      visitType,
		Payer:          models.PayerUmum,
	})
	if len(itemTotals) == 0 {
		return vid
	}
	bid := f.store.SeedBilling(models.Billing{VisitID: vid})
	for i, total := range itemTotals {
		f.store.SeedBillingItem(models.BillingItem{
			BillingID:   bid,
			ItemType:    models.ItemTypeService,
			ReferenceID: int64(i + 1),
			Description: "Tindakan",
			Quantity:    1,
			UnitPrice:   dec(total),
			Discount:    decimal.Zero,
			TotalPrice:  dec(total),
		})
	}
	return vid
}

func (f *fixture) lock(t *testing.T, visitID int64) *models.Billing {
	t.Helper()
	b, err := f.pendaftaran.LockRekamMedis(context.Background(), visitID, 99)
	if err != nil {
		t.Fatalf("LockRekamMedis: %v", err)
	}
	return b
}

func cash(amount, received string) PaymentInput {
	return PaymentInput{
		Amount:         dec(amount),
		Method:         models.PaymentMethodCash,
		AmountReceived: decPtr(received),
		CashierID:      7,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
