package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ProductResponse representa un producto en respuestas HTTP.
type ProductResponse struct {
	ID               string          `json:"id"`
	StoreID          string          `json:"store_id"`
	SKU              string          `json:"sku"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	Price            decimal.Decimal `json:"price"`
	Cost             decimal.Decimal `json:"cost"`
	Stock            int64           `json:"stock"`
	ReorderThreshold int64           `json:"reorder_threshold"`
	LowStock         bool            `json:"low_stock"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// NewProductResponse convierte la entidad en DTO.
func NewProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:               p.ID,
		StoreID:          p.StoreID,
		SKU:              p.SKU,
		Name:             p.Name,
		Description:      p.Description,
		Price:            p.Price,
		Cost:             p.Cost,
		Stock:            p.Stock,
		ReorderThreshold: p.ReorderThreshold,
		LowStock:         p.IsLowStock(),
		UpdatedAt:        p.UpdatedAt,
	}
}
