package repository

import "github.com/jhoicas/Kardex-api/internal/domain/entity"

// StoreRepository define el puerto de persistencia para Store.
type StoreRepository interface {
	Create(store *entity.Store) error
	GetByID(id string) (*entity.Store, error)
	List(limit, offset int) ([]*entity.Store, error)
}
