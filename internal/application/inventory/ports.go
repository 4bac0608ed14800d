package inventory

import (
	"context"

	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que la mutación de stock y el append
// al kardex se apliquen como una sola unidad: ambos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}
