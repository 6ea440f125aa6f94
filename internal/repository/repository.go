// Package repository declares the persistence contracts used by the services.
// The MariaDB implementation lives in repository/mariadb; an in-memory fake
// for tests lives in repository/repositorytest.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	dokterModels "github.com/c14220110/poliklinik-billing/internal/dokter/models"
	manajemenModels "github.com/c14220110/poliklinik-billing/internal/manajemen/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type KunjunganRepository interface {
	FindPasienByNIK(ctx context.Context, nik string) (*models.Pasien, error)
	GetPasien(ctx context.Context, id int64) (*models.Pasien, error)
	// CreatePasien mengisi p.ID dan p.NomorRM.
	CreatePasien(ctx context.Context, p *models.Pasien) error
	// CountKunjunganOn menghitung kunjungan ke satu poli pada tanggal day.
	CountKunjunganOn(ctx context.Context, idPoli int64, day time.Time) (int, error)
	PoliExists(ctx context.Context, idPoli int64) (bool, error)
	ListPoliklinik(ctx context.Context) ([]models.Poliklinik, error)
	CreateKunjungan(ctx context.Context, k *models.Kunjungan) error
	// GetKunjungan dengan forUpdate=true mengunci baris sampai transaksi selesai.
	GetKunjungan(ctx context.Context, id int64, forUpdate bool) (*models.Kunjungan, error)
	LockRekamMedis(ctx context.Context, id, lockedBy int64, at time.Time) error
}

type BillingRepository interface {
	// GetBillingByVisit dengan forUpdate=true mengunci baris Billing; dipakai
	// untuk menserialkan pembayaran pada tagihan yang sama.
	GetBillingByVisit(ctx context.Context, visitID int64, forUpdate bool) (*models.Billing, error)
	GetBilling(ctx context.Context, billingID int64, forUpdate bool) (*models.Billing, error)
	CreateBilling(ctx context.Context, b *models.Billing) error
	UpdateBillingTotals(ctx context.Context, b *models.Billing) error
	UpdatePaymentStatus(ctx context.Context, billingID int64, status models.PaymentStatus, at time.Time) error

	AddBillingItem(ctx context.Context, item *models.BillingItem) error
	ListBillingItems(ctx context.Context, billingID int64) ([]models.BillingItem, error)

	CreatePayment(ctx context.Context, p *models.Payment) error
	ListPayments(ctx context.Context, billingID int64) ([]models.Payment, error)
	// SumPayments di dalam transaksi selalu membaca pembayaran commit terbaru.
	SumPayments(ctx context.Context, billingID int64) (decimal.Decimal, error)

	// ListBillingQueue mengembalikan kunjungan terkunci yang belum lunas,
	// urut waktu kunci paling lama lebih dulu.
	ListBillingQueue(ctx context.Context) ([]models.QueueEntry, error)
	GetQueueEntry(ctx context.Context, visitID int64) (*models.QueueEntry, error)
	ListBilling(ctx context.Context, status *models.PaymentStatus, limit, offset int) ([]models.BillingSummary, int, error)
}

type FarmasiRepository interface {
	GetObat(ctx context.Context, id int64, forUpdate bool) (*dokterModels.Obat, error)
	DecrementStock(ctx context.Context, id int64, qty int) error
	GetTindakan(ctx context.Context, id int64) (*dokterModels.Tindakan, error)
}

type KaryawanRepository interface {
	// FindKaryawanByUsername juga mengembalikan karyawan yang sudah dihapus
	// (soft delete); pemanggil yang memutuskan.
	FindKaryawanByUsername(ctx context.Context, username string) (*models.Karyawan, error)
}

// DashboardRepository menghitung agregat untuk rentang waktu [from, to).
type DashboardRepository interface {
	// BillingTotalsByStatus memakai waktu pembuatan tagihan.
	BillingTotalsByStatus(ctx context.Context, from, to time.Time) ([]manajemenModels.StatusTotal, error)
	// PaymentTotalsByMethod memakai waktu pembayaran diterima.
	PaymentTotalsByMethod(ctx context.Context, from, to time.Time) ([]manajemenModels.MethodTotal, error)
}

// Store menggabungkan seluruh repository. WithTx menjalankan fn di dalam satu
// transaksi database; Store yang diberikan ke fn terikat ke transaksi tersebut.
// fn yang mengembalikan error menyebabkan rollback.
type Store interface {
	KunjunganRepository
	BillingRepository
	FarmasiRepository
	KaryawanRepository
	DashboardRepository

	WithTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
