package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.ClientRepository = (*ClientRepo)(nil)

const clientColumns = `id, store_id, name, email, phone, balance, created_at, updated_at`

// ClientRepo lectura de clientes sobre PostgreSQL. El CRUD de clientes vive en
// otro módulo; aquí solo se consulta para los reportes de cartera.
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

// GetByID obtiene un cliente por ID.
func (r *ClientRepo) GetByID(id string) (*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	var c entity.Client
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&c.ID, &c.StoreID, &c.Name, &c.Email, &c.Phone, &c.Balance, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &c, nil
}

// ListByStore lista los clientes de una tienda.
func (r *ClientRepo) ListByStore(storeID string, limit, offset int) ([]*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE store_id = $1 ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, storeID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()
	return scanClients(rows)
}

// ListDebtors devuelve los clientes con saldo pendiente, mayor deuda primero.
func (r *ClientRepo) ListDebtors(storeID string) ([]*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE store_id = $1 AND balance > 0 ORDER BY balance DESC, name`
	rows, err := r.q.Query(context.Background(), query, storeID)
	if err != nil {
		return nil, fmt.Errorf("list debtors: %w", err)
	}
	defer rows.Close()
	return scanClients(rows)
}

func scanClients(rows pgx.Rows) ([]*entity.Client, error) {
	var list []*entity.Client
	for rows.Next() {
		var c entity.Client
		if err := rows.Scan(&c.ID, &c.StoreID, &c.Name, &c.Email, &c.Phone, &c.Balance, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
