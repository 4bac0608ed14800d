package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// AdjustStockRequest body para POST /api/inventory/adjustments.
// Direction es obligatoria solo para ADJUSTMENT; para los demás tipos puede
// omitirse (queda implícita) o coincidir con la implícita.
// Reference es la clave de idempotencia: reintentos con la misma referencia
// no duplican el movimiento.
type AdjustStockRequest struct {
	ProductID string           `json:"product_id"`
	Direction string           `json:"direction,omitempty"` // increase | decrease
	Quantity  int64            `json:"quantity"`
	Type      string           `json:"type"` // IN | OUT | ADJUSTMENT | SALE | RETURN
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Reason    string           `json:"reason"`
	Reference string           `json:"reference,omitempty"`
}

// MovementResponse representa un movimiento del kardex en respuestas HTTP.
type MovementResponse struct {
	ID             int64           `json:"id"`
	ProductID      string          `json:"product_id"`
	StoreID        string          `json:"store_id"`
	Type           string          `json:"type"`
	Direction      string          `json:"direction"`
	Quantity       int64           `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Reason         string          `json:"reason,omitempty"`
	Reference      string          `json:"reference,omitempty"`
	TransactionID  string          `json:"transaction_id,omitempty"`
	ResultingStock int64           `json:"resulting_stock"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewMovementResponse convierte la entidad en DTO.
func NewMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		ProductID:      m.ProductID,
		StoreID:        m.StoreID,
		Type:           m.Type,
		Direction:      m.Direction,
		Quantity:       m.Quantity,
		UnitPrice:      m.UnitPrice,
		Reason:         m.Reason,
		Reference:      m.Reference,
		TransactionID:  m.TransactionID,
		ResultingStock: m.ResultingStock,
		CreatedAt:      m.CreatedAt,
	}
}

// AdjustStockResponse respuesta de un ajuste aplicado (o repetido por idempotencia).
type AdjustStockResponse struct {
	Product  ProductResponse  `json:"product"`
	Movement MovementResponse `json:"movement"`
	Replayed bool             `json:"replayed,omitempty"` // true si la referencia ya existía
}

// LowStockItemDTO producto en o por debajo de su punto de reorden.
type LowStockItemDTO struct {
	ProductID        string `json:"product_id"`
	SKU              string `json:"sku"`
	Name             string `json:"name"`
	Stock            int64  `json:"stock"`
	ReorderThreshold int64  `json:"reorder_threshold"`
	Deficit          int64  `json:"deficit"` // reorder_threshold - stock (puede ser 0)
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un SKU bajo reorden.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	SKU                string          `json:"sku"`
	Name               string          `json:"name"`
	Stock              int64           `json:"stock"`
	ReorderThreshold   int64           `json:"reorder_threshold"`
	IdealStock         int64           `json:"ideal_stock"`          // threshold * 1.5
	SuggestedOrderQty  int64           `json:"suggested_order_qty"`  // ideal - stock
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // qty sugerida * costo
	Priority           int             `json:"priority"`             // 1 = más urgente
}
