package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv         string        `mapstructure:"APP_ENV"`
	Port           string        `mapstructure:"PORT"`
	DBUser         string        `mapstructure:"DB_USER"`
	DBPassword     string        `mapstructure:"DB_PASSWORD"`
	DBHost         string        `mapstructure:"DB_HOST"`
	DBPort         string        `mapstructure:"DB_PORT"`
	DBName         string        `mapstructure:"DB_NAME"`
	DBMaxOpenConns int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	JWTTTL         time.Duration `mapstructure:"JWT_TTL"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`

	// Tarif konsultasi per jenis kunjungan, dalam rupiah.
	TarifRawatJalan string `mapstructure:"TARIF_RAWAT_JALAN"`
	TarifRawatInap  string `mapstructure:"TARIF_RAWAT_INAP"`
	TarifIGD        string `mapstructure:"TARIF_IGD"`

	// DotEnvLoaded false bila file .env tidak ditemukan. Dicatat oleh
	// pemanggil setelah logger siap.
	DotEnvLoaded bool `mapstructure:"-"`
}

var envKeys = []string{
	"APP_ENV", "PORT",
	"DB_USER", "DB_PASSWORD", "DB_HOST", "DB_PORT", "DB_NAME",
	"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
	"JWT_SECRET", "JWT_TTL", "LOG_LEVEL", "CORS_ORIGINS",
	"TARIF_RAWAT_JALAN", "TARIF_RAWAT_INAP", "TARIF_IGD",
}

// Load membaca konfigurasi dari file .env (jika ada) dan environment variable.
// Environment variable selalu menang atas nilai di .env.
func Load() (*Config, error) {
	dotEnv := godotenv.Load() == nil

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("JWT_TTL", "12h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("TARIF_RAWAT_JALAN", "50000")
	v.SetDefault("TARIF_RAWAT_INAP", "150000")
	v.SetDefault("TARIF_IGD", "100000")

	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.DotEnvLoaded = dotEnv

	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		cfg.CORSOrigins = strings.Split(cfg.CORSOrigins[0], ",")
	}
	for i := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(cfg.CORSOrigins[i])
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.AppEnv == "development"
}

// Validate memastikan konfigurasi aman untuk menjalankan server.
func (c *Config) Validate() error {
	if c.DBName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.JWTSecret == "" && !c.IsDev() {
		return fmt.Errorf("JWT_SECRET is required when APP_ENV=%q", c.AppEnv)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	if _, err := c.ConsultationFees(); err != nil {
		return err
	}
	return nil
}

// ConsultationFees mengembalikan tarif konsultasi dalam bentuk decimal.
func (c *Config) ConsultationFees() (ConsultationFees, error) {
	var fees ConsultationFees
	var err error
	if fees.Outpatient, err = parseTarif("TARIF_RAWAT_JALAN", c.TarifRawatJalan); err != nil {
		return fees, err
	}
	if fees.Inpatient, err = parseTarif("TARIF_RAWAT_INAP", c.TarifRawatInap); err != nil {
		return fees, err
	}
	if fees.Emergency, err = parseTarif("TARIF_IGD", c.TarifIGD); err != nil {
		return fees, err
	}
	return fees, nil
}

type ConsultationFees struct {
	Outpatient decimal.Decimal
	Inpatient  decimal.Decimal
	Emergency  decimal.Decimal
}

func parseTarif(key, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s is not a valid amount: %w", key, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

// DSN membentuk data source name untuk driver MySQL/MariaDB.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=Asia%%2FJakarta&multiStatements=true&clientFoundRows=true",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}
