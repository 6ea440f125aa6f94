package mariadb

import (
	"context"
	"fmt"

	dokterModels "github.com/c14220110/poliklinik-billing/internal/dokter/models"
	"github.com/c14220110/poliklinik-billing/internal/repository"
)

func (s *Store) GetObat(ctx context.Context, id int64, forUpdate bool) (*dokterModels.Obat, error) {
	var o dokterModels.Obat
	err := s.q.QueryRowContext(ctx, `
		SELECT id_obat, nama, harga_satuan, satuan, stock
		FROM Obat WHERE id_obat = ?`+lockClause(forUpdate), id,
	).Scan(&o.IDObat, &o.Nama, &o.HargaSatuan, &o.Satuan, &o.Stock)
	if err != nil {
		return nil, notFound(err, "get obat")
	}
	return &o, nil
}

// DecrementStock gagal dengan ErrInsufficientStock bila stok tidak cukup;
// stok tidak pernah negatif.
func (s *Store) DecrementStock(ctx context.Context, id int64, qty int) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE Obat SET stock = stock - ? WHERE id_obat = ? AND stock >= ?",
		qty, id, qty,
	)
	if err != nil {
		return fmt.Errorf("kurangi stok obat: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("kurangi stok obat: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("obat %d: %w", id, repository.ErrInsufficientStock)
	}
	return nil
}

func (s *Store) GetTindakan(ctx context.Context, id int64) (*dokterModels.Tindakan, error) {
	var t dokterModels.Tindakan
	err := s.q.QueryRowContext(ctx,
		"SELECT id_tindakan, kode_icd9, nama, harga FROM Tindakan WHERE id_tindakan = ?", id,
	).Scan(&t.IDTindakan, &t.KodeICD9, &t.Nama, &t.Harga)
	if err != nil {
		return nil, notFound(err, "get tindakan")
	}
	return &t, nil
}
