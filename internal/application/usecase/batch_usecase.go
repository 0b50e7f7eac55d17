package usecase

import (
	"time"

	"github.com/dgallegoc/produccion-api/internal/application/dto"
	"github.com/dgallegoc/produccion-api/internal/domain"
	"github.com/dgallegoc/produccion-api/internal/domain/repository"
)

// BatchUseCase consultas derivadas de lotes: existencias por lote de un
// producto y reporte de pérdidas (lotes vencidos con restante positivo).
type BatchUseCase struct {
	productRepo    repository.ProductRepository
	productMovRepo repository.ProductMovementRepository
}

// NewBatchUseCase construye el caso de uso.
func NewBatchUseCase(
	productRepo repository.ProductRepository,
	productMovRepo repository.ProductMovementRepository,
) *BatchUseCase {
	return &BatchUseCase{productRepo: productRepo, productMovRepo: productMovRepo}
}

// ListByProduct lista los lotes de un producto con cantidad restante y
// vencimiento.
func (uc *BatchUseCase) ListByProduct(productID string) ([]dto.BatchResponse, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	batches, err := uc.productMovRepo.ListBatches(productID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	items := make([]dto.BatchResponse, 0, len(batches))
	for _, b := range batches {
		items = append(items, dto.ToBatchResponse(b, now))
	}
	return items, nil
}

// ListExpired reporte de pérdidas: lotes vencidos a la fecha con cantidad
// restante positiva, de todos los productos.
func (uc *BatchUseCase) ListExpired(at time.Time) ([]dto.BatchResponse, error) {
	batches, err := uc.productMovRepo.ListExpiredBatches(at)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BatchResponse, 0, len(batches))
	for _, b := range batches {
		items = append(items, dto.ToBatchResponse(b, at))
	}
	return items, nil
}
