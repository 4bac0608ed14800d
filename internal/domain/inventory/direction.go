package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ImpliedDirection devuelve la dirección implícita de un tipo de movimiento.
// IN y RETURN siempre incrementan; OUT y SALE siempre decrementan.
// ADJUSTMENT no tiene dirección fija: la decide el caller (fixed=false).
// ok=false si el tipo no es uno de los definidos.
func ImpliedDirection(movType string) (direction string, fixed, ok bool) {
	switch movType {
	case entity.MovementTypeIN, entity.MovementTypeRETURN:
		return entity.DirectionIncrease, true, true
	case entity.MovementTypeOUT, entity.MovementTypeSALE:
		return entity.DirectionDecrease, true, true
	case entity.MovementTypeADJUSTMENT:
		return "", false, true
	}
	return "", false, false
}

// SignedDelta convierte (dirección, magnitud) en el delta con signo a aplicar al stock.
func SignedDelta(direction string, quantity int64) int64 {
	if direction == entity.DirectionDecrease {
		return -quantity
	}
	return quantity
}

// AverageCost calcula el costo promedio ponderado tras una entrada.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func AverageCost(currentStock int64, currentCost decimal.Decimal, inQty int64, inCost decimal.Decimal) decimal.Decimal {
	total := currentStock + inQty
	if total <= 0 {
		return decimal.Zero
	}
	num := decimal.NewFromInt(currentStock).Mul(currentCost).Add(decimal.NewFromInt(inQty).Mul(inCost))
	return num.Div(decimal.NewFromInt(total))
}
