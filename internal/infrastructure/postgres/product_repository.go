package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, store_id, sku, name, description, price, cost, stock, reorder_threshold, version, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto. Stock inicia con el conteo dado y version en 0.
func (r *ProductRepo) Create(product *entity.Product) error {
	query := `
		INSERT INTO products (id, store_id, sku, name, description, price, cost, stock, reorder_threshold, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.StoreID, product.SKU, product.Name, product.Description,
		product.Price, product.Cost, product.Stock, product.ReorderThreshold,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get product")
}

// GetByStoreAndSKU obtiene un producto por tienda y SKU.
func (r *ProductRepo) GetByStoreAndSKU(storeID, sku string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE store_id = $1 AND sku = $2`
	return r.scanOne(r.q.QueryRow(context.Background(), query, storeID, sku), "get product by sku")
}

// Update actualiza campos de catálogo. No toca Stock, Cost ni Version (se manejan vía ajustes).
func (r *ProductRepo) Update(product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, description = $3, price = $4, reorder_threshold = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.Name, product.Description, product.Price,
		product.ReorderThreshold, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// ApplyStock fija stock y costo solo si la versión no cambió desde la lectura
// (update condicional). Cero filas afectadas = otro escritor ganó la carrera.
func (r *ProductRepo) ApplyStock(productID string, newStock int64, newCost decimal.Decimal, version int64) error {
	query := `
		UPDATE products SET stock = $2, cost = $3, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $4`
	cmd, err := r.q.Exec(context.Background(), query, productID, newStock, newCost, version)
	if err != nil {
		return fmt.Errorf("apply stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}
	return nil
}

// ListByStore lista los productos de una tienda.
func (r *ProductRepo) ListByStore(storeID string, limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products WHERE store_id = $1
		ORDER BY sku LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, storeID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ListLowStock devuelve los productos con stock <= reorder_threshold, mayor déficit primero.
// storeID vacío = todas las tiendas.
func (r *ProductRepo) ListLowStock(ctx context.Context, storeID string) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE stock <= reorder_threshold`
	args := []any{}
	if storeID != "" {
		query += ` AND store_id = $1`
		args = append(args, storeID)
	}
	query += ` ORDER BY (reorder_threshold - stock) DESC, sku`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *ProductRepo) scanOne(row pgx.Row, op string) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.StoreID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.Cost,
		&p.Stock, &p.ReorderThreshold, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

func (r *ProductRepo) scanAll(rows pgx.Rows) ([]*entity.Product, error) {
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(
			&p.ID, &p.StoreID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.Cost,
			&p.Stock, &p.ReorderThreshold, &p.Version, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
