package repository

import (
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del kardex.
// El ledger es append-only: ninguna implementación expone update ni delete.
// Los listados devuelven los movimientos en orden ascendente por created_at,
// con desempate por id (el id es monotónico y lo asigna la DB).
type StockMovementRepository interface {
	// Append persiste el movimiento y asigna ID. Si ya existe un movimiento con
	// la misma (producto, referencia) devuelve domain.ErrDuplicate.
	Append(movement *entity.StockMovement) error
	GetByID(id int64) (*entity.StockMovement, error)
	// FindByReference busca un movimiento previo por clave de idempotencia.
	// Devuelve nil, nil si no existe.
	FindByReference(productID, reference string) (*entity.StockMovement, error)
	ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByStore(storeID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
}
