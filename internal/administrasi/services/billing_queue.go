package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	"github.com/c14220110/poliklinik-billing/internal/common/apperr"
	"github.com/c14220110/poliklinik-billing/internal/repository"
	"github.com/c14220110/poliklinik-billing/pkg/pagination"
)

// QueueService menyajikan antrian kasir dan detail tagihan.
type QueueService struct {
	store repository.Store
}

func NewQueueService(store repository.Store) *QueueService {
	return &QueueService{store: store}
}

// Queue mengembalikan kunjungan yang rekam medisnya terkunci dan belum lunas,
// yang paling lama terkunci lebih dulu.
func (s *QueueService) Queue(ctx context.Context) ([]models.QueueEntry, error) {
	queue, err := s.store.ListBillingQueue(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return queue, nil
}

// SearchQueue = Queue lalu Search.
func (s *QueueService) SearchQueue(ctx context.Context, query string) ([]models.QueueEntry, error) {
	queue, err := s.Queue(ctx)
	if err != nil {
		return nil, err
	}
	return Search(queue, query), nil
}

// Search menyaring antrian tanpa membedakan huruf besar/kecil berdasarkan nama
// pasien, nomor RM, nomor kunjungan, atau NIK. Query kosong mengembalikan
// antrian apa adanya.
func Search(queue []models.QueueEntry, query string) []models.QueueEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return queue
	}

	out := make([]models.QueueEntry, 0, len(queue))
	for _, e := range queue {
		if strings.Contains(strings.ToLower(e.PatientName), q) ||
			strings.Contains(strings.ToLower(e.MedicalRecordNumber), q) ||
			strings.Contains(strings.ToLower(e.VisitNumber), q) ||
			strings.Contains(strings.ToLower(e.NationalID), q) {
			out = append(out, e)
		}
	}
	return out
}

// Detail mengembalikan billing beserta item dan riwayat pembayaran.
func (s *QueueService) Detail(ctx context.Context, visitID int64) (*models.BillingDetail, error) {
	b, err := s.store.GetBillingByVisit(ctx, visitID, false)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Billing not found for this visit")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	visit, err := s.store.GetQueueEntry(ctx, visitID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	items, err := s.store.ListBillingItems(ctx, b.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	payments, err := s.store.ListPayments(ctx, b.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	return &models.BillingDetail{
		Billing:         *b,
		Visit:           *visit,
		Items:           items,
		Payments:        payments,
		PaidAmount:      paid,
		RemainingAmount: decimal.Max(decimal.Zero, b.TotalAmount.Sub(paid)),
	}, nil
}

// List mengembalikan daftar billing terbaru, opsional difilter status.
func (s *QueueService) List(ctx context.Context, status *models.PaymentStatus, p pagination.Params) (*pagination.Page, error) {
	if status != nil && !status.Valid() {
		return nil, apperr.Validation("validation failed").WithField("status", "must be one of unpaid, partial, paid")
	}
	list, total, err := s.store.ListBilling(ctx, status, p.Limit, p.Offset)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return pagination.NewPage(list, total, p), nil
}
