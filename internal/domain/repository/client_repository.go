package repository

import "github.com/jhoicas/Kardex-api/internal/domain/entity"

// ClientRepository define el puerto de lectura de clientes. El CRUD de clientes
// es responsabilidad de otro módulo; este core solo lee para reportes.
type ClientRepository interface {
	GetByID(id string) (*entity.Client, error)
	ListByStore(storeID string, limit, offset int) ([]*entity.Client, error)
	// ListDebtors devuelve los clientes con saldo pendiente (> 0), mayor deuda primero.
	ListDebtors(storeID string) ([]*entity.Client, error)
}
