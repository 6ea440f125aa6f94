package mariadb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	"github.com/c14220110/poliklinik-billing/internal/repository"
)

const billingColumns = `id_billing, id_kunjungan, subtotal, biaya_konsultasi, diskon, diskon_persen,
	tanggungan_asuransi, total, status, created_at, updated_at`

func scanBilling(row scanner) (*models.Billing, error) {
	var b models.Billing
	var pct decimal.NullDecimal
	var status string
	if err := row.Scan(&b.ID, &b.VisitID, &b.Subtotal, &b.ConsultationFee, &b.Discount, &pct,
		&b.InsuranceCoverage, &b.TotalAmount, &status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.DiscountPercentage = decimalPtr(pct)
	b.PaymentStatus = models.PaymentStatus(status)
	return &b, nil
}

func (s *Store) GetBillingByVisit(ctx context.Context, visitID int64, forUpdate bool) (*models.Billing, error) {
	b, err := scanBilling(s.q.QueryRowContext(ctx,
		"SELECT "+billingColumns+" FROM Billing WHERE id_kunjungan = ?"+lockClause(forUpdate), visitID))
	if err != nil {
		return nil, notFound(err, "get billing by kunjungan")
	}
	return b, nil
}

func (s *Store) GetBilling(ctx context.Context, billingID int64, forUpdate bool) (*models.Billing, error) {
	b, err := scanBilling(s.q.QueryRowContext(ctx,
		"SELECT "+billingColumns+" FROM Billing WHERE id_billing = ?"+lockClause(forUpdate), billingID))
	if err != nil {
		return nil, notFound(err, "get billing")
	}
	return b, nil
}

func (s *Store) CreateBilling(ctx context.Context, b *models.Billing) error {
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = models.PaymentStatusUnpaid
	}
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO Billing
			(id_kunjungan, subtotal, biaya_konsultasi, diskon, diskon_persen,
			 tanggungan_asuransi, total, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.VisitID, b.Subtotal, b.ConsultationFee, b.Discount, nullDecimal(b.DiscountPercentage),
		b.InsuranceCoverage, b.TotalAmount, string(b.PaymentStatus), b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert billing: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert billing: %w", err)
	}
	b.ID = id
	return nil
}

func (s *Store) UpdateBillingTotals(ctx context.Context, b *models.Billing) error {
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = time.Now()
	}
	res, err := s.q.ExecContext(ctx, `
		UPDATE Billing
		SET subtotal = ?, biaya_konsultasi = ?, diskon = ?, diskon_persen = ?,
		    tanggungan_asuransi = ?, total = ?, status = ?, updated_at = ?
		WHERE id_billing = ?`,
		b.Subtotal, b.ConsultationFee, b.Discount, nullDecimal(b.DiscountPercentage),
		b.InsuranceCoverage, b.TotalAmount, string(b.PaymentStatus), b.UpdatedAt, b.ID,
	)
	if err != nil {
		return fmt.Errorf("update billing: %w", err)
	}
	return requireAffected(res, "update billing", b.ID)
}

func (s *Store) UpdatePaymentStatus(ctx context.Context, billingID int64, status models.PaymentStatus, at time.Time) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE Billing SET status = ?, updated_at = ? WHERE id_billing = ?",
		string(status), at, billingID,
	)
	if err != nil {
		return fmt.Errorf("update status billing: %w", err)
	}
	return requireAffected(res, "update status billing", billingID)
}

// requireAffected mengandalkan clientFoundRows=true pada DSN sehingga baris
// yang cocok tetapi tidak berubah tetap terhitung.
func requireAffected(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, repository.ErrNotFound)
	}
	return nil
}

func (s *Store) AddBillingItem(ctx context.Context, item *models.BillingItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO Billing_Item
			(id_billing, jenis, id_referensi, deskripsi, jumlah, harga_satuan, diskon, total_harga, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.BillingID, string(item.ItemType), item.ReferenceID, item.Description, item.Quantity,
		item.UnitPrice, item.Discount, item.TotalPrice, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert billing item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert billing item: %w", err)
	}
	item.ID = id
	return nil
}

func (s *Store) ListBillingItems(ctx context.Context, billingID int64) ([]models.BillingItem, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id_billing_item, id_billing, jenis, id_referensi, deskripsi, jumlah,
		       harga_satuan, diskon, total_harga, created_at
		FROM Billing_Item
		WHERE id_billing = ?
		ORDER BY id_billing_item`, billingID)
	if err != nil {
		return nil, fmt.Errorf("list billing item: %w", err)
	}
	defer rows.Close()

	items := []models.BillingItem{}
	for rows.Next() {
		var it models.BillingItem
		var jenis string
		if err := rows.Scan(&it.ID, &it.BillingID, &jenis, &it.ReferenceID, &it.Description, &it.Quantity,
			&it.UnitPrice, &it.Discount, &it.TotalPrice, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan billing item: %w", err)
		}
		it.ItemType = models.ItemType(jenis)
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) CreatePayment(ctx context.Context, p *models.Payment) error {
	if p.ReceivedAt.IsZero() {
		p.ReceivedAt = time.Now()
	}
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO Pembayaran
			(id_billing, nomor_kwitansi, jumlah, metode, uang_diterima, kembalian, catatan, id_kasir, diterima_pada)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.BillingID, p.ReceiptNumber, p.Amount, string(p.PaymentMethod), nullDecimal(p.AmountReceived),
		p.ChangeGiven, nullString(p.Notes), p.CashierID, p.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pembayaran: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert pembayaran: %w", err)
	}
	p.ID = id
	return nil
}

func (s *Store) ListPayments(ctx context.Context, billingID int64) ([]models.Payment, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id_pembayaran, id_billing, nomor_kwitansi, jumlah, metode, uang_diterima,
		       kembalian, catatan, id_kasir, diterima_pada
		FROM Pembayaran
		WHERE id_billing = ?
		ORDER BY diterima_pada, id_pembayaran`, billingID)
	if err != nil {
		return nil, fmt.Errorf("list pembayaran: %w", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		var metode string
		var received decimal.NullDecimal
		var notes sql.NullString
		if err := rows.Scan(&p.ID, &p.BillingID, &p.ReceiptNumber, &p.Amount, &metode, &received,
			&p.ChangeGiven, &notes, &p.CashierID, &p.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan pembayaran: %w", err)
		}
		p.PaymentMethod = models.PaymentMethod(metode)
		p.AmountReceived = decimalPtr(received)
		p.Notes = stringPtr(notes)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// SumPayments di dalam transaksi memakai locking read sehingga tidak
// membaca snapshot lama.
func (s *Store) SumPayments(ctx context.Context, billingID int64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := s.q.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(jumlah), 0) FROM Pembayaran WHERE id_billing = ?"+lockClause(s.tx != nil), billingID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum pembayaran: %w", err)
	}
	return sum, nil
}

const queueSelect = `
	SELECT k.id_kunjungan, k.nomor_kunjungan, p.nama, COALESCE(p.nomor_rm, ''), p.nik, p.no_bpjs,
	       pl.nama_poli, k.jenis_kunjungan, k.penjamin, b.id_billing, b.total,
	       COALESCE(pb.total_bayar, 0), b.status, k.locked_at
	FROM Kunjungan k
	JOIN Pasien p ON p.id_pasien = k.id_pasien
	JOIN Poliklinik pl ON pl.id_poli = k.id_poli
	JOIN Billing b ON b.id_kunjungan = k.id_kunjungan
	LEFT JOIN (
		SELECT id_billing, SUM(jumlah) AS total_bayar
		FROM Pembayaran
		GROUP BY id_billing
	) pb ON pb.id_billing = b.id_billing`

func scanQueueEntry(row scanner) (*models.QueueEntry, error) {
	var e models.QueueEntry
	var bpjs sql.NullString
	var visitType, payer, status string
	var lockedAt sql.NullTime
	if err := row.Scan(&e.VisitID, &e.VisitNumber, &e.PatientName, &e.MedicalRecordNumber, &e.NationalID, &bpjs,
		&e.PoliName, &visitType, &payer, &e.BillingID, &e.TotalAmount,
		&e.PaidAmount, &status, &lockedAt); err != nil {
		return nil, err
	}
	e.BPJSNumber = stringPtr(bpjs)
	e.VisitType = models.VisitType(visitType)
	e.Payer = models.Payer(payer)
	e.PaymentStatus = models.PaymentStatus(status)
	e.RemainingAmount = decimal.Max(decimal.Zero, e.TotalAmount.Sub(e.PaidAmount))
	if lockedAt.Valid {
		t := lockedAt.Time
		e.LockedAt = &t
	}
	return &e, nil
}

func (s *Store) ListBillingQueue(ctx context.Context) ([]models.QueueEntry, error) {
	rows, err := s.q.QueryContext(ctx, queueSelect+`
		WHERE k.locked_at IS NOT NULL AND b.status <> 'paid'
		ORDER BY k.locked_at ASC, k.id_kunjungan ASC`)
	if err != nil {
		return nil, fmt.Errorf("list antrian billing: %w", err)
	}
	defer rows.Close()

	queue := []models.QueueEntry{}
	for rows.Next() {
		e, err := scanQueueEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan antrian billing: %w", err)
		}
		queue = append(queue, *e)
	}
	return queue, rows.Err()
}

func (s *Store) GetQueueEntry(ctx context.Context, visitID int64) (*models.QueueEntry, error) {
	e, err := scanQueueEntry(s.q.QueryRowContext(ctx, queueSelect+" WHERE k.id_kunjungan = ?", visitID))
	if err != nil {
		return nil, notFound(err, "get kunjungan billing")
	}
	return e, nil
}

func (s *Store) ListBilling(ctx context.Context, status *models.PaymentStatus, limit, offset int) ([]models.BillingSummary, int, error) {
	where := ""
	args := []any{}
	if status != nil {
		where = " WHERE b.status = ?"
		args = append(args, string(*status))
	}

	var total int
	if err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM Billing b"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count billing: %w", err)
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT b.id_billing, k.id_kunjungan, k.nomor_kunjungan, p.nama, pl.nama_poli,
		       b.total, COALESCE(pb.total_bayar, 0), b.status, b.created_at
		FROM Billing b
		JOIN Kunjungan k ON k.id_kunjungan = b.id_kunjungan
		JOIN Pasien p ON p.id_pasien = k.id_pasien
		JOIN Poliklinik pl ON pl.id_poli = k.id_poli
		LEFT JOIN (
			SELECT id_billing, SUM(jumlah) AS total_bayar
			FROM Pembayaran
			GROUP BY id_billing
		) pb ON pb.id_billing = b.id_billing`+where+`
		ORDER BY b.created_at DESC, b.id_billing DESC
		LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list billing: %w", err)
	}
	defer rows.Close()

	list := []models.BillingSummary{}
	for rows.Next() {
		var bs models.BillingSummary
		var st string
		if err := rows.Scan(&bs.BillingID, &bs.VisitID, &bs.VisitNumber, &bs.PatientName, &bs.PoliName,
			&bs.TotalAmount, &bs.PaidAmount, &st, &bs.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan billing: %w", err)
		}
		bs.PaymentStatus = models.PaymentStatus(st)
		list = append(list, bs)
	}
	return list, total, rows.Err()
}
