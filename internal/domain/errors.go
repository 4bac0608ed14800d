package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrProductNotFound     = errors.New("producto no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrInvalidQuantity     = errors.New("cantidad inválida: debe ser mayor que cero")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia: la versión del producto cambió")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrForbidden           = errors.New("acceso denegado")
)
