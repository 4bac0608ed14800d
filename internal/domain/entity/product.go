package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo de una tienda.
// Stock es la cantidad disponible autoritativa; solo el motor de ajustes la muta,
// siempre junto con un movimiento en el kardex (misma transacción).
// Version es el token de concurrencia optimista: cada mutación de stock la incrementa.
type Product struct {
	ID               string
	StoreID          string
	SKU              string // código único por tienda
	Name             string
	Description      string
	Price            decimal.Decimal // precio de venta
	Cost             decimal.Decimal // costo promedio ponderado (inicia en 0)
	Stock            int64           // cantidad disponible, nunca negativa
	ReorderThreshold int64           // punto de reorden
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsLowStock indica si el producto está en o por debajo de su punto de reorden.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.ReorderThreshold
}
