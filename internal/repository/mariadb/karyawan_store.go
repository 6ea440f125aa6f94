package mariadb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/models"
)

func (s *Store) FindKaryawanByUsername(ctx context.Context, username string) (*models.Karyawan, error) {
	var k models.Karyawan
	var deletedAt sql.NullTime
	err := s.q.QueryRowContext(ctx, `
		SELECT id_karyawan, nama, username, password, created_at, deleted_at
		FROM Karyawan WHERE username = ?`, username,
	).Scan(&k.ID, &k.Nama, &k.Username, &k.Password, &k.CreatedAt, &deletedAt)
	if err != nil {
		return nil, notFound(err, "find karyawan")
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		k.DeletedAt = &t
	}

	rows, err := s.q.QueryContext(ctx,
		"SELECT id_privilege FROM Karyawan_Privilege WHERE id_karyawan = ? ORDER BY id_privilege", k.ID)
	if err != nil {
		return nil, fmt.Errorf("list privilege karyawan: %w", err)
	}
	defer rows.Close()

	k.Privileges = []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan privilege: %w", err)
		}
		k.Privileges = append(k.Privileges, id)
	}
	return &k, rows.Err()
}
