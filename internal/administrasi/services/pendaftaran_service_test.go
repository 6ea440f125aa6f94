package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	"github.com/c14220110/poliklinik-billing/internal/common/apperr"
)

func registerReq() models.RegisterKunjunganRequest {
	return models.RegisterKunjunganRequest{
		NIK:          "3578010101900001",
		Nama:         "Budi Santoso",
		TanggalLahir: "1990-01-01",
		JenisKelamin: "L",
		IDPoli:       1,
		VisitType:    models.VisitTypeOutpatient,
		Payer:        models.PayerUmum,
		KeluhanUtama: "Demam",
	}
}

func TestRegisterKunjungan_NewAndReturningPasien(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.pendaftaran.now = fixedClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local))

	first, err := f.pendaftaran.RegisterKunjungan(ctx, registerReq())
	if err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if !first.PasienBaru {
		t.Errorf("expected new pasien")
	}
	if first.Pasien.NomorRM == "" {
		t.Errorf("expected nomor RM to be assigned")
	}
	if first.Kunjungan.NomorAntrian != 1 {
		t.Errorf("expected nomor antrian 1, got %d", first.Kunjungan.NomorAntrian)
	}
	if first.Kunjungan.NomorKunjungan != "KJ-20240301-01001" {
		t.Errorf("unexpected nomor kunjungan %s", first.Kunjungan.NomorKunjungan)
	}

	second, err := f.pendaftaran.RegisterKunjungan(ctx, registerReq())
	if err != nil {
		t.Fatalf("second registration: %v", err)
	}
	if second.PasienBaru {
		t.Errorf("expected returning pasien")
	}
	if second.Pasien.ID != first.Pasien.ID {
		t.Errorf("expected same pasien id, got %d and %d", first.Pasien.ID, second.Pasien.ID)
	}
	if second.Kunjungan.NomorAntrian != 2 {
		t.Errorf("expected nomor antrian 2, got %d", second.Kunjungan.NomorAntrian)
	}

	other := registerReq()
	other.NIK = "3578010101900002"
	other.IDPoli = 2
	third, err := f.pendaftaran.RegisterKunjungan(ctx, other)
	if err != nil {
		t.Fatalf("third registration: %v", err)
	}
	if third.Kunjungan.NomorAntrian != 1 {
		t.Errorf("queue numbers are per poli, got %d", third.Kunjungan.NomorAntrian)
	}
	if f.notifier.count(EventAntrianUpdate) != 3 {
		t.Errorf("expected 3 antrian_update events, got %d", f.notifier.count(EventAntrianUpdate))
	}
}

func TestRegisterKunjungan_Validation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name   string
		mutate func(r *models.RegisterKunjunganRequest)
		field  string
	}{
		{"short nik", func(r *models.RegisterKunjunganRequest) { r.NIK = "123" }, "nik"},
		{"non digit nik", func(r *models.RegisterKunjunganRequest) { r.NIK = "35780101019000AB" }, "nik"},
		{"missing nama", func(r *models.RegisterKunjunganRequest) { r.Nama = "  " }, "nama"},
		{"bad date", func(r *models.RegisterKunjunganRequest) { r.TanggalLahir = "01-01-1990" }, "tanggalLahir"},
		{"bad visit type", func(r *models.RegisterKunjunganRequest) { r.VisitType = "daycare" }, "visitType"},
		{"bad payer", func(r *models.RegisterKunjunganRequest) { r.Payer = "kantor" }, "payer"},
		{"bpjs without number", func(r *models.RegisterKunjunganRequest) { r.Payer = models.PayerBPJS }, "noBpjs"},
		{"missing poli", func(r *models.RegisterKunjunganRequest) { r.IDPoli = 0 }, "idPoli"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := registerReq()
			tt.mutate(&req)
			_, err := f.pendaftaran.RegisterKunjungan(context.Background(), req)
			var ae *apperr.Error
			if !errors.As(err, &ae) || ae.Code != apperr.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := ae.Fields[tt.field]; !ok {
				t.Errorf("expected field %s, got %v", tt.field, ae.Fields)
			}
		})
	}
}

func TestRegisterKunjungan_UnknownPoli(t *testing.T) {
	f := newFixture(t)
	req := registerReq()
	req.IDPoli = 77

	_, err := f.pendaftaran.RegisterKunjungan(context.Background(), req)
	if !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLockRekamMedis(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vid := f.seedVisit(t, "Budi", models.VisitTypeEmergency)

	b, err := f.pendaftaran.LockRekamMedis(ctx, vid, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertDec(t, "consultation fee only", b.TotalAmount, "100000")
	if b.PaymentStatus != models.PaymentStatusUnpaid {
		t.Errorf("expected unpaid, got %s", b.PaymentStatus)
	}

	k, _ := f.store.GetKunjungan(ctx, vid, false)
	if !k.Locked() || k.LockedBy == nil || *k.LockedBy != 42 {
		t.Errorf("expected kunjungan locked by 42, got %+v", k)
	}

	_, err = f.pendaftaran.LockRekamMedis(ctx, vid, 42)
	if !apperr.Is(err, apperr.CodeConflict) {
		t.Errorf("second lock: expected conflict, got %v", err)
	}

	_, err = f.pendaftaran.LockRekamMedis(ctx, 9999, 42)
	if !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("missing visit: expected not found, got %v", err)
	}
}

func TestLockRekamMedis_RollbackKeepsVisitUnlocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vid := f.seedVisit(t, "Budi", models.VisitTypeOutpatient, "10000")
	f.store.FailOn("UpdateBillingTotals", errors.New("deadlock"))

	if _, err := f.pendaftaran.LockRekamMedis(ctx, vid, 42); err == nil {
		t.Fatalf("expected error")
	}
	k, _ := f.store.GetKunjungan(ctx, vid, false)
	if k.Locked() {
		t.Errorf("lock must roll back together with billing calculation")
	}
}
