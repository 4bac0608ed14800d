package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Kardex-api/internal/domain/inventory"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// maxAttempts reintentos internos ante conflicto de versión antes de devolver
// domain.ErrConcurrencyConflict al caller.
const maxAttempts = 3

// AdjustStockUseCase es el único escritor de stock y de movimientos del kardex.
// Política de concurrencia: optimista por producto (version en la fila de products);
// si la actualización condicional pierde la carrera se relee y reintenta, nunca
// se pisa una escritura ajena (no hay last-write-wins).
type AdjustStockUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	movRepo     repository.StockMovementRepository
}

// NewAdjustStockUseCase construye el caso de uso.
func NewAdjustStockUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
) *AdjustStockUseCase {
	return &AdjustStockUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		movRepo:     movRepo,
	}
}

// AdjustStockInput entrada para un ajuste de stock.
// Direction es obligatoria solo para ADJUSTMENT; para los demás tipos la implica
// el tipo (IN/RETURN suben, OUT/SALE bajan) y, si viene, debe coincidir.
// UnitPrice es opcional: SALE/RETURN usan el precio del producto, el resto su costo.
// Reference es la clave de idempotencia contra reintentos de red.
type AdjustStockInput struct {
	StoreID   string
	UserID    string
	ProductID string
	Direction string
	Type      string
	Quantity  int64
	UnitPrice *decimal.Decimal
	Reason    string
	Reference string
}

// AdjustStockResult producto actualizado y movimiento registrado.
// Replayed indica que la referencia ya existía y no se aplicó nada nuevo.
type AdjustStockResult struct {
	Product  *entity.Product
	Movement *entity.StockMovement
	Replayed bool
}

// AdjustStock valida el ajuste, y dentro de una transacción actualiza el stock
// (update condicional por versión) y agrega el movimiento al kardex con
// ResultingStock. Un ajuste rechazado no toca nada: ni producto ni ledger.
func (uc *AdjustStockUseCase) AdjustStock(ctx context.Context, input AdjustStockInput) (*AdjustStockResult, error) {
	// La cantidad se valida antes de leer cualquier estado.
	if input.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	direction, err := resolveDirection(input.Type, input.Direction)
	if err != nil {
		return nil, err
	}
	if input.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.UnitPrice != nil && input.UnitPrice.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		result, err := uc.tryAdjust(ctx, input, direction)
		if errors.Is(err, domain.ErrConcurrencyConflict) {
			continue // otro ajuste ganó la carrera: releer y reintentar
		}
		return result, err
	}
	return nil, domain.ErrConcurrencyConflict
}

// tryAdjust ejecuta un intento: lee el producto, valida el stock resultante y
// aplica update + append en una sola transacción.
func (uc *AdjustStockUseCase) tryAdjust(ctx context.Context, input AdjustStockInput, direction string) (*AdjustStockResult, error) {
	product, err := uc.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if input.StoreID != "" && product.StoreID != input.StoreID {
		return nil, domain.ErrForbidden
	}

	// Idempotencia: si la referencia ya fue aplicada, devolver el resultado previo.
	if input.Reference != "" {
		prior, err := uc.movRepo.FindByReference(input.ProductID, input.Reference)
		if err != nil {
			return nil, err
		}
		if prior != nil {
			return &AdjustStockResult{Product: product, Movement: prior, Replayed: true}, nil
		}
	}

	newStock := product.Stock + domaininv.SignedDelta(direction, input.Quantity)
	if newStock < 0 {
		return nil, domain.ErrInsufficientStock
	}

	unitPrice := resolveUnitPrice(input, product)
	newCost := product.Cost
	if input.Type == entity.MovementTypeIN && input.UnitPrice != nil {
		// Entrada con costo declarado: recalcular costo promedio ponderado.
		newCost = domaininv.AverageCost(product.Stock, product.Cost, input.Quantity, unitPrice)
	}

	now := time.Now()
	movement := &entity.StockMovement{
		ProductID:      product.ID,
		StoreID:        product.StoreID,
		Type:           input.Type,
		Direction:      direction,
		Quantity:       input.Quantity,
		UnitPrice:      unitPrice,
		Reason:         input.Reason,
		Reference:      input.Reference,
		TransactionID:  uuid.New().String(),
		ResultingStock: newStock,
		CreatedAt:      now,
		CreatedBy:      input.UserID,
	}

	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		txProductRepo repository.ProductRepository,
	) error {
		if err := txProductRepo.ApplyStock(product.ID, newStock, newCost, product.Version); err != nil {
			return err
		}
		return movRepo.Append(movement)
	})
	if errors.Is(err, domain.ErrDuplicate) {
		// Dos reintentos con la misma referencia corrieron a la vez: el índice único
		// (product_id, reference) detuvo al segundo. Resolver como replay.
		prior, ferr := uc.movRepo.FindByReference(input.ProductID, input.Reference)
		if ferr != nil || prior == nil {
			return nil, err
		}
		current, gerr := uc.productRepo.GetByID(input.ProductID)
		if gerr != nil || current == nil {
			return nil, err
		}
		return &AdjustStockResult{Product: current, Movement: prior, Replayed: true}, nil
	}
	if err != nil {
		return nil, err
	}

	product.Stock = newStock
	product.Cost = newCost
	product.Version++
	product.UpdatedAt = now
	return &AdjustStockResult{Product: product, Movement: movement}, nil
}

// resolveDirection valida el tipo y concilia la dirección pedida con la implícita.
func resolveDirection(movType, requested string) (string, error) {
	implied, fixed, ok := domaininv.ImpliedDirection(movType)
	if !ok {
		return "", domain.ErrInvalidInput
	}
	if fixed {
		if requested != "" && requested != implied {
			return "", domain.ErrInvalidInput
		}
		return implied, nil
	}
	// ADJUSTMENT: la dirección la decide el caller.
	if requested != entity.DirectionIncrease && requested != entity.DirectionDecrease {
		return "", domain.ErrInvalidInput
	}
	return requested, nil
}

// resolveUnitPrice: precio declarado, o el de venta para SALE/RETURN, o el costo.
func resolveUnitPrice(input AdjustStockInput, product *entity.Product) decimal.Decimal {
	if input.UnitPrice != nil {
		return *input.UnitPrice
	}
	switch input.Type {
	case entity.MovementTypeSALE, entity.MovementTypeRETURN:
		return product.Price
	}
	return product.Cost
}
