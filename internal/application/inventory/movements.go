package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// MovementQueryUseCase consultas de solo lectura sobre el kardex.
// Nunca bloquea a los escritores ni es bloqueado por ellos (lecturas snapshot).
type MovementQueryUseCase struct {
	movRepo     repository.StockMovementRepository
	productRepo repository.ProductRepository
}

// NewMovementQueryUseCase construye el caso de uso.
func NewMovementQueryUseCase(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
) *MovementQueryUseCase {
	return &MovementQueryUseCase{movRepo: movRepo, productRepo: productRepo}
}

// ListMovements lista movimientos de la tienda, opcionalmente filtrados por
// producto y rango de fechas, en orden de ledger (created_at asc, id asc).
// Con filtro de producto se resuelve el producto y se verifica que pertenezca
// a la tienda del caller: el kardex de otra tienda nunca es visible.
func (uc *MovementQueryUseCase) ListMovements(
	ctx context.Context,
	storeID, productID string,
	from, to *time.Time,
	page dto.PageRequest,
) ([]dto.MovementResponse, error) {
	page.DefaultPage()
	var (
		movements []*entity.StockMovement
		err       error
	)
	if productID != "" {
		product, perr := uc.productRepo.GetByID(productID)
		if perr != nil {
			return nil, perr
		}
		if product == nil {
			return nil, domain.ErrProductNotFound
		}
		if storeID != "" && product.StoreID != storeID {
			return nil, domain.ErrForbidden
		}
		movements, err = uc.movRepo.ListByProduct(productID, from, to, page.Limit, page.Offset)
	} else {
		movements, err = uc.movRepo.ListByStore(storeID, from, to, page.Limit, page.Offset)
	}
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.NewMovementResponse(m))
	}
	return out, nil
}

// GetStockHistory devuelve el kardex completo de un producto (paginado), en
// orden de ledger. Falla con ErrProductNotFound si el producto no existe y con
// ErrForbidden si no pertenece a la tienda.
func (uc *MovementQueryUseCase) GetStockHistory(
	ctx context.Context,
	storeID, productID string,
	page dto.PageRequest,
) ([]dto.MovementResponse, error) {
	return uc.ListMovements(ctx, storeID, productID, nil, nil, page)
}
