package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de kardex.
const (
	MovementTypeIN         = "IN"         // entrada de mercancía
	MovementTypeOUT        = "OUT"        // salida manual
	MovementTypeADJUSTMENT = "ADJUSTMENT" // corrección de conteo físico
	MovementTypeSALE       = "SALE"       // venta completada
	MovementTypeRETURN     = "RETURN"     // devolución de cliente
)

// Dirección de un movimiento.
const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
)

// StockMovement es un registro inmutable del kardex: una vez persistido nunca
// se reescribe ni se borra. ID es monotónico y lo asigna el ledger (BIGSERIAL).
// Quantity es la magnitud (siempre > 0); el signo lo da Direction.
// ResultingStock es la foto del stock del producto justo después de aplicar
// este movimiento, en orden de ledger.
type StockMovement struct {
	ID             int64
	ProductID      string
	StoreID        string
	Type           string // IN, OUT, ADJUSTMENT, SALE, RETURN
	Direction      string // increase | decrease
	Quantity       int64  // magnitud, > 0
	UnitPrice      decimal.Decimal
	Reason         string
	Reference      string // clave de idempotencia opcional (única por producto)
	TransactionID  string // correlación de auditoría del ajuste que lo generó
	ResultingStock int64
	CreatedAt      time.Time
	CreatedBy      string // UserID
}

// SignedQuantity devuelve la cantidad con signo según la dirección.
func (m *StockMovement) SignedQuantity() int64 {
	if m.Direction == DirectionDecrease {
		return -m.Quantity
	}
	return m.Quantity
}
