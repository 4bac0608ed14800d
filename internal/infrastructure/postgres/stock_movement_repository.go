package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, store_id, type, direction, quantity, unit_price, reason, reference, transaction_id, resulting_stock, created_at, created_by`

// StockMovementRepo implementación del kardex sobre PostgreSQL. La tabla
// stock_movements es insert-only: este adaptador no expone update ni delete,
// y el índice único parcial (product_id, reference) respalda la idempotencia.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Append persiste un movimiento; la DB asigna el id monotónico (BIGSERIAL).
func (r *StockMovementRepo) Append(movement *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (product_id, store_id, type, direction, quantity, unit_price, reason, reference, transaction_id, resulting_stock, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	reference := (*string)(nil)
	if movement.Reference != "" {
		reference = &movement.Reference
	}
	createdBy := (*string)(nil)
	if movement.CreatedBy != "" {
		createdBy = &movement.CreatedBy
	}
	err := r.q.QueryRow(context.Background(), query,
		movement.ProductID, movement.StoreID, movement.Type, movement.Direction,
		movement.Quantity, movement.UnitPrice, movement.Reason, reference,
		movement.TransactionID, movement.ResultingStock, movement.CreatedAt, createdBy,
	).Scan(&movement.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(id int64) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	return scanMovement(r.q.QueryRow(context.Background(), query, id), "get movement")
}

// FindByReference busca el movimiento previo con la misma clave de idempotencia.
func (r *StockMovementRepo) FindByReference(productID, reference string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE product_id = $1 AND reference = $2`
	return scanMovement(r.q.QueryRow(context.Background(), query, productID, reference), "find by reference")
}

// ListByProduct lista movimientos de un producto en orden de ledger (created_at asc, id asc).
func (r *StockMovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return r.list(`product_id`, productID, from, to, limit, offset)
}

// ListByStore lista movimientos de una tienda en orden de ledger.
func (r *StockMovementRepo) ListByStore(storeID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return r.list(`store_id`, storeID, from, to, limit, offset)
}

func (r *StockMovementRepo) list(column, value string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE ` + column + ` = $1`
	args := []any{value}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at ASC, id ASC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovementRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row, op string) (*entity.StockMovement, error) {
	m, err := scanMovementRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

func scanMovementRow(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var reference, createdBy *string
	err := row.Scan(
		&m.ID, &m.ProductID, &m.StoreID, &m.Type, &m.Direction, &m.Quantity,
		&m.UnitPrice, &m.Reason, &reference, &m.TransactionID, &m.ResultingStock,
		&m.CreatedAt, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	if reference != nil {
		m.Reference = *reference
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}
