package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	"github.com/c14220110/poliklinik-billing/internal/common/apperr"
	"github.com/c14220110/poliklinik-billing/internal/common/validation"
	"github.com/c14220110/poliklinik-billing/internal/repository"
	"github.com/c14220110/poliklinik-billing/pkg/utils"
)

// ErrInvalidCredentials dikembalikan untuk username tidak dikenal, password
// salah, maupun karyawan yang sudah dihapus.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AdministrasiService menangani login karyawan.
type AdministrasiService struct {
	store     repository.Store
	jwtSecret string
	jwtTTL    time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

func NewAdministrasiService(store repository.Store, jwtSecret string, jwtTTL time.Duration, logger zerolog.Logger) *AdministrasiService {
	return &AdministrasiService{
		store:     store,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
		logger:    logger.With().Str("service", "auth").Logger(),
		now:       time.Now,
	}
}

func (s *AdministrasiService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validation.Struct(req).Err(); err != nil {
		return nil, err
	}

	k, err := s.store.FindKaryawanByUsername(ctx, req.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if k.DeletedAt != nil || !utils.CheckPassword(k.Password, req.Password) {
		s.logger.Warn().Str("username", req.Username).Msg("login rejected")
		return nil, ErrInvalidCredentials
	}

	exp := s.now().Add(s.jwtTTL)
	token, err := utils.GenerateJWTToken(s.jwtSecret, k.ID, k.Username, k.Nama, k.Privileges, exp)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.logger.Info().Int64("id_karyawan", k.ID).Str("username", k.Username).Msg("login")
	return &models.LoginResult{Token: token, ExpiresAt: exp, Karyawan: *k}, nil
}
