package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// LowStockUseCase deriva, bajo demanda, los productos en o por debajo de su
// punto de reorden. Cada llamada recalcula sobre la foto actual: no hay caché
// ni garantía de consistencia entre llamadas sucesivas (semántica relajada
// deliberada: dos llamadas pueden diferir si hubo ajustes entre ellas).
type LowStockUseCase struct {
	productRepo repository.ProductRepository
}

// NewLowStockUseCase construye el caso de uso.
func NewLowStockUseCase(productRepo repository.ProductRepository) *LowStockUseCase {
	return &LowStockUseCase{productRepo: productRepo}
}

// GetLowStockProducts devuelve exactamente {p : p.stock <= p.reorder_threshold}
// para la tienda indicada (vacía = todas).
func (uc *LowStockUseCase) GetLowStockProducts(ctx context.Context, storeID string) ([]dto.LowStockItemDTO, error) {
	products, err := uc.productRepo.ListLowStock(ctx, storeID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LowStockItemDTO, 0, len(products))
	for _, p := range products {
		items = append(items, dto.LowStockItemDTO{
			ProductID:        p.ID,
			SKU:              p.SKU,
			Name:             p.Name,
			Stock:            p.Stock,
			ReorderThreshold: p.ReorderThreshold,
			Deficit:          p.ReorderThreshold - p.Stock,
		})
	}
	return items, nil
}

// GenerateReplenishmentList devuelve los productos bajo reorden con la cantidad
// sugerida de pedido y un ranking de prioridad por déficit y costo estimado.
func (uc *LowStockUseCase) GenerateReplenishmentList(ctx context.Context, storeID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	products, err := uc.productRepo.ListLowStock(ctx, storeID)
	if err != nil {
		return nil, err
	}
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(products))
	for _, p := range products {
		ideal := idealStock(p)
		suggested := ideal - p.Stock
		if suggested < 0 {
			suggested = 0
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:          p.ID,
			SKU:                p.SKU,
			Name:               p.Name,
			Stock:              p.Stock,
			ReorderThreshold:   p.ReorderThreshold,
			IdealStock:         ideal,
			SuggestedOrderQty:  suggested,
			UnitCost:           p.Cost,
			EstimatedOrderCost: decimal.NewFromInt(suggested).Mul(p.Cost),
		})
	}

	// Mayor déficit primero; a igual déficit, mayor costo estimado de pedido.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		defA := a.ReorderThreshold - a.Stock
		defB := b.ReorderThreshold - b.Stock
		if defA != defB {
			return defA > defB
		}
		return a.EstimatedOrderCost.GreaterThan(b.EstimatedOrderCost)
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

// idealStock: punto de reorden * 1.5, redondeando hacia arriba.
func idealStock(p *entity.Product) int64 {
	return p.ReorderThreshold + (p.ReorderThreshold+1)/2
}
