package mariadb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	"github.com/c14220110/poliklinik-billing/internal/repository"
)

const pasienColumns = `id_pasien, COALESCE(nomor_rm, ''), nama, nik, no_bpjs, tanggal_lahir,
	jenis_kelamin, no_telp, alamat, created_at`

func scanPasien(row scanner) (*models.Pasien, error) {
	var p models.Pasien
	var noBPJS sql.NullString
	if err := row.Scan(&p.ID, &p.NomorRM, &p.Nama, &p.NIK, &noBPJS, &p.TanggalLahir,
		&p.JenisKelamin, &p.NoTelp, &p.Alamat, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.NoBPJS = stringPtr(noBPJS)
	return &p, nil
}

func (s *Store) FindPasienByNIK(ctx context.Context, nik string) (*models.Pasien, error) {
	p, err := scanPasien(s.q.QueryRowContext(ctx, "SELECT "+pasienColumns+" FROM Pasien WHERE nik = ?", nik))
	if err != nil {
		return nil, notFound(err, "find pasien by nik")
	}
	return p, nil
}

func (s *Store) GetPasien(ctx context.Context, id int64) (*models.Pasien, error) {
	p, err := scanPasien(s.q.QueryRowContext(ctx, "SELECT "+pasienColumns+" FROM Pasien WHERE id_pasien = ?", id))
	if err != nil {
		return nil, notFound(err, "get pasien")
	}
	return p, nil
}

// CreatePasien menyimpan pasien baru lalu memberi nomor rekam medis RM-xxxxxx
// berdasarkan id yang dihasilkan database.
func (s *Store) CreatePasien(ctx context.Context, p *models.Pasien) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO Pasien
			(nama, nik, no_bpjs, tanggal_lahir, jenis_kelamin, no_telp, alamat, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Nama, p.NIK, nullString(p.NoBPJS), p.TanggalLahir, p.JenisKelamin, p.NoTelp, p.Alamat, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pasien: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert pasien: %w", err)
	}
	p.ID = id
	p.NomorRM = fmt.Sprintf("RM-%06d", id)

	if _, err := s.q.ExecContext(ctx, "UPDATE Pasien SET nomor_rm = ? WHERE id_pasien = ?", p.NomorRM, p.ID); err != nil {
		return fmt.Errorf("set nomor_rm: %w", err)
	}
	return nil
}

// CountKunjunganOn di dalam transaksi adalah locking read sehingga hitungan
// selalu terbaru. Serialisasi per poli datang dari PoliExists yang lebih dulu
// mengunci baris Poliklinik.
func (s *Store) CountKunjunganOn(ctx context.Context, idPoli int64, day time.Time) (int, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var n int
	err := s.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM Kunjungan
		WHERE id_poli = ? AND created_at >= ? AND created_at < ?`+lockClause(s.tx != nil),
		idPoli, start, end,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count kunjungan: %w", err)
	}
	return n, nil
}

// PoliExists di dalam transaksi mengunci baris Poliklinik. Pendaftaran ke
// poli yang sama menunggu di sini, bukan pada gap lock index Kunjungan yang
// bisa deadlock saat hari masih kosong.
func (s *Store) PoliExists(ctx context.Context, idPoli int64) (bool, error) {
	var one int
	err := s.q.QueryRowContext(ctx, "SELECT 1 FROM Poliklinik WHERE id_poli = ?"+lockClause(s.tx != nil), idPoli).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check poliklinik: %w", err)
	}
	return true, nil
}

func (s *Store) ListPoliklinik(ctx context.Context) ([]models.Poliklinik, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT id_poli, nama_poli, keterangan FROM Poliklinik ORDER BY nama_poli ASC")
	if err != nil {
		return nil, fmt.Errorf("list poliklinik: %w", err)
	}
	defer rows.Close()

	list := []models.Poliklinik{}
	for rows.Next() {
		var p models.Poliklinik
		if err := rows.Scan(&p.IDPoli, &p.NamaPoli, &p.Keterangan); err != nil {
			return nil, fmt.Errorf("scan poliklinik: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (s *Store) CreateKunjungan(ctx context.Context, k *models.Kunjungan) error {
	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now()
	}
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO Kunjungan
			(id_pasien, id_poli, nomor_kunjungan, nomor_antrian, jenis_kunjungan, penjamin, keluhan_utama, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		k.IDPasien, k.IDPoli, k.NomorKunjungan, k.NomorAntrian, string(k.VisitType), string(k.Payer), k.KeluhanUtama, k.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert kunjungan: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert kunjungan: %w", err)
	}
	k.ID = id
	return nil
}

func (s *Store) GetKunjungan(ctx context.Context, id int64, forUpdate bool) (*models.Kunjungan, error) {
	var k models.Kunjungan
	var visitType, payer string
	var lockedAt sql.NullTime
	var lockedBy sql.NullInt64

	err := s.q.QueryRowContext(ctx, `
		SELECT id_kunjungan, id_pasien, id_poli, nomor_kunjungan, nomor_antrian,
		       jenis_kunjungan, penjamin, keluhan_utama, created_at, locked_at, locked_by
		FROM Kunjungan
		WHERE id_kunjungan = ?`+lockClause(forUpdate), id,
	).Scan(&k.ID, &k.IDPasien, &k.IDPoli, &k.NomorKunjungan, &k.NomorAntrian,
		&visitType, &payer, &k.KeluhanUtama, &k.CreatedAt, &lockedAt, &lockedBy)
	if err != nil {
		return nil, notFound(err, "get kunjungan")
	}

	k.VisitType = models.VisitType(visitType)
	k.Payer = models.Payer(payer)
	if lockedAt.Valid {
		t := lockedAt.Time
		k.LockedAt = &t
	}
	if lockedBy.Valid {
		by := lockedBy.Int64
		k.LockedBy = &by
	}
	return &k, nil
}

func (s *Store) LockRekamMedis(ctx context.Context, id, lockedBy int64, at time.Time) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE Kunjungan SET locked_at = ?, locked_by = ?
		WHERE id_kunjungan = ? AND locked_at IS NULL`,
		at, lockedBy, id,
	)
	if err != nil {
		return fmt.Errorf("lock rekam medis: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("lock rekam medis: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("lock rekam medis %d: %w", id, repository.ErrNotFound)
	}
	return nil
}
