package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// ApplyStock es la única vía de mutación de stock y es condicional por versión
// (concurrencia optimista): si la versión en DB ya no coincide devuelve
// domain.ErrConcurrencyConflict y no aplica nada.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetByStoreAndSKU(storeID, sku string) (*entity.Product, error)
	// Update solo toca campos de catálogo; nunca Stock ni Version.
	Update(product *entity.Product) error
	// ApplyStock fija stock y costo si version coincide, incrementando version.
	ApplyStock(productID string, newStock int64, newCost decimal.Decimal, version int64) error
	ListByStore(storeID string, limit, offset int) ([]*entity.Product, error)
	// ListLowStock devuelve los productos de la tienda con stock <= reorder_threshold,
	// ordenados por mayor déficit primero. storeID vacío = todas las tiendas.
	ListLowStock(ctx context.Context, storeID string) ([]*entity.Product, error)
}
