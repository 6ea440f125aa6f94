package services

import (
	"context"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	"github.com/c14220110/poliklinik-billing/internal/common/apperr"
	"github.com/c14220110/poliklinik-billing/internal/repository"
)

type PoliklinikService struct {
	store repository.Store
}

func NewPoliklinikService(store repository.Store) *PoliklinikService {
	return &PoliklinikService{store: store}
}

// GetPoliklinikList mengembalikan daftar poliklinik urut nama.
func (ps *PoliklinikService) GetPoliklinikList(ctx context.Context) ([]models.Poliklinik, error) {
	list, err := ps.store.ListPoliklinik(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}
