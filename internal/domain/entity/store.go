package entity

import "time"

// Store representa una tienda (tenant). Todos los productos, clientes y
// movimientos están scoping por StoreID.
type Store struct {
	ID        string
	Name      string
	Address   string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
