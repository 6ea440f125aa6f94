package mariadb

import (
	"context"
	"fmt"
	"time"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	manajemenModels "github.com/c14220110/poliklinik-billing/internal/manajemen/models"
)

func (s *Store) BillingTotalsByStatus(ctx context.Context, from, to time.Time) ([]manajemenModels.StatusTotal, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT b.status, COUNT(*), COALESCE(SUM(b.total), 0), COALESCE(SUM(pb.total_bayar), 0)
		FROM Billing b
		LEFT JOIN (
			SELECT id_billing, SUM(jumlah) AS total_bayar
			FROM Pembayaran
			GROUP BY id_billing
		) pb ON pb.id_billing = b.id_billing
		WHERE b.created_at >= ? AND b.created_at < ?
		GROUP BY b.status
		ORDER BY b.status`, from, to)
	if err != nil {
		return nil, fmt.Errorf("billing totals by status: %w", err)
	}
	defer rows.Close()

	list := []manajemenModels.StatusTotal{}
	for rows.Next() {
		var st string
		var row manajemenModels.StatusTotal
		if err := rows.Scan(&st, &row.Count, &row.Total, &row.Dibayar); err != nil {
			return nil, fmt.Errorf("scan billing totals: %w", err)
		}
		row.Status = models.PaymentStatus(st)
		list = append(list, row)
	}
	return list, rows.Err()
}

func (s *Store) PaymentTotalsByMethod(ctx context.Context, from, to time.Time) ([]manajemenModels.MethodTotal, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT metode, COUNT(*), COALESCE(SUM(jumlah), 0)
		FROM Pembayaran
		WHERE diterima_pada >= ? AND diterima_pada < ?
		GROUP BY metode
		ORDER BY metode`, from, to)
	if err != nil {
		return nil, fmt.Errorf("payment totals by method: %w", err)
	}
	defer rows.Close()

	list := []manajemenModels.MethodTotal{}
	for rows.Next() {
		var m string
		var row manajemenModels.MethodTotal
		if err := rows.Scan(&m, &row.Count, &row.Jumlah); err != nil {
			return nil, fmt.Errorf("scan payment totals: %w", err)
		}
		row.Metode = models.PaymentMethod(m)
		list = append(list, row)
	}
	return list, rows.Err()
}
