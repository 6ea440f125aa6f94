package mariadb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"

	"github.com/c14220110/poliklinik-billing/config"
)

// Connect membuka koneksi ke database MariaDB.
// Semua kredensial diambil dari config; pemanggil bertanggung jawab menutup db.
func Connect(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("gagal membuka koneksi ke database: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("gagal melakukan ping ke database: %w", err)
	}

	logger.Info().
		Str("host", cfg.DBHost).
		Str("database", cfg.DBName).
		Msg("Berhasil terhubung ke MariaDB")
	return db, nil
}
