package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	"github.com/c14220110/poliklinik-billing/internal/common/apperr"
	"github.com/c14220110/poliklinik-billing/internal/common/validation"
	"github.com/c14220110/poliklinik-billing/internal/repository"
)

// PendaftaranService menangani pendaftaran kunjungan dan penguncian rekam medis.
type PendaftaranService struct {
	store    repository.Store
	billing  *BillingService
	notifier Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

func NewPendaftaranService(store repository.Store, billing *BillingService, notifier Notifier, logger zerolog.Logger) *PendaftaranService {
	return &PendaftaranService{
		store:    store,
		billing:  billing,
		notifier: notifier,
		logger:   logger.With().Str("service", "pendaftaran").Logger(),
		now:      time.Now,
	}
}

func validateRegister(req *models.RegisterKunjunganRequest) (time.Time, error) {
	req.Nama = strings.TrimSpace(req.Nama)
	req.NIK = strings.TrimSpace(req.NIK)
	if req.Payer == "" {
		req.Payer = models.PayerUmum
	}

	fe := validation.Struct(req)
	if req.Payer == models.PayerBPJS && (req.NoBPJS == nil || strings.TrimSpace(*req.NoBPJS) == "") {
		fe.Add("noBpjs", "is required when payer is bpjs")
	}
	if err := fe.Err(); err != nil {
		return time.Time{}, err
	}
	// format sudah diperiksa tag datetime
	tglLahir, _ := time.Parse("2006-01-02", req.TanggalLahir)
	return tglLahir, nil
}

// NomorKunjungan membentuk KJ-YYYYMMDD-PPNNN dari tanggal, id poli, dan nomor antrian.
func NomorKunjungan(day time.Time, idPoli int64, nomorAntrian int) string {
	return fmt.Sprintf("KJ-%s-%02d%03d", day.Format("20060102"), idPoli, nomorAntrian)
}

// RegisterKunjungan mendaftarkan kunjungan. Pasien dicari berdasarkan NIK dan
// dibuat bila belum ada. Nomor antrian dihitung per poli per hari.
func (s *PendaftaranService) RegisterKunjungan(ctx context.Context, req models.RegisterKunjunganRequest) (*models.RegisterKunjunganResult, error) {
	tglLahir, err := validateRegister(&req)
	if err != nil {
		return nil, err
	}

	var result models.RegisterKunjunganResult
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		ok, err := tx.PoliExists(ctx, req.IDPoli)
		if err != nil {
			return apperr.Internal(err)
		}
		if !ok {
			return apperr.NotFound("Poliklinik not found")
		}

		pasien, err := tx.FindPasienByNIK(ctx, req.NIK)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			pasien = &models.Pasien{
				Nama:         req.Nama,
				NIK:          req.NIK,
				NoBPJS:       req.NoBPJS,
				TanggalLahir: tglLahir,
				JenisKelamin: req.JenisKelamin,
				NoTelp:       req.NoTelp,
				Alamat:       req.Alamat,
				CreatedAt:    s.now(),
			}
			if err := tx.CreatePasien(ctx, pasien); err != nil {
				return apperr.Internal(err)
			}
			result.PasienBaru = true
		case err != nil:
			return apperr.Internal(err)
		}

		now := s.now()
		count, err := tx.CountKunjunganOn(ctx, req.IDPoli, now)
		if err != nil {
			return apperr.Internal(err)
		}
		k := &models.Kunjungan{
			IDPasien:     pasien.ID,
			IDPoli:       req.IDPoli,
			NomorAntrian: count + 1,
			VisitType:    req.VisitType,
			Payer:        req.Payer,
			KeluhanUtama: req.KeluhanUtama,
			CreatedAt:    now,
		}
		k.NomorKunjungan = NomorKunjungan(now, k.IDPoli, k.NomorAntrian)
		if err := tx.CreateKunjungan(ctx, k); err != nil {
			return apperr.Internal(err)
		}

		result.Kunjungan = *k
		result.Pasien = *pasien
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("visit_id", result.Kunjungan.ID).
		Str("nomor_kunjungan", result.Kunjungan.NomorKunjungan).
		Int("nomor_antrian", result.Kunjungan.NomorAntrian).
		Bool("pasien_baru", result.PasienBaru).
		Msg("kunjungan registered")
	publish(s.notifier, s.logger, EventAntrianUpdate, result.Kunjungan)
	return &result, nil
}

// LockRekamMedis mengunci rekam medis kunjungan lalu membuat/menghitung
// Billing-nya dalam transaksi yang sama. Setelah terkunci kunjungan masuk
// antrian kasir.
func (s *PendaftaranService) LockRekamMedis(ctx context.Context, visitID, lockedBy int64) (*models.Billing, error) {
	var billing *models.Billing
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		k, err := tx.GetKunjungan(ctx, visitID, true)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Visit not found")
		}
		if err != nil {
			return apperr.Internal(err)
		}
		if k.Locked() {
			return apperr.Conflict("Medical record is already locked")
		}

		now := s.now()
		if err := tx.LockRekamMedis(ctx, visitID, lockedBy, now); err != nil {
			return apperr.Internal(err)
		}
		k.LockedAt = &now
		k.LockedBy = &lockedBy

		billing, err = s.billing.RecalculateInTx(ctx, tx, k, Adjustments{})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("visit_id", visitID).
		Int64("locked_by", lockedBy).
		Int64("billing_id", billing.ID).
		Str("total", billing.TotalAmount.StringFixed(2)).
		Msg("rekam medis locked")
	publish(s.notifier, s.logger, EventBillingUpdate, billing)
	return billing, nil
}
