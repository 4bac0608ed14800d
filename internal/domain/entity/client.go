package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client representa un cliente de la tienda. Su CRUD vive fuera de este core;
// aquí solo se lee para los reportes de cartera (CLIENTS y DEBTS).
type Client struct {
	ID        string
	StoreID   string
	Name      string
	Email     string
	Phone     string
	Balance   decimal.Decimal // saldo pendiente (deuda); > 0 = debe
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasDebt indica si el cliente tiene saldo pendiente.
func (c *Client) HasDebt() bool {
	return c.Balance.GreaterThan(decimal.Zero)
}
