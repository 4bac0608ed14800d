package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/inventory"
	"github.com/jhoicas/Kardex-api/internal/domain"
)

// InventoryHandler maneja las peticiones HTTP del kardex (protegido).
type InventoryHandler struct {
	adjust   *inventory.AdjustStockUseCase
	query    *inventory.MovementQueryUseCase
	lowStock *inventory.LowStockUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	adjust *inventory.AdjustStockUseCase,
	query *inventory.MovementQueryUseCase,
	lowStock *inventory.LowStockUseCase,
) *InventoryHandler {
	return &InventoryHandler{adjust: adjust, query: query, lowStock: lowStock}
}

// AdjustStock godoc
// @Summary      Registrar un ajuste de stock
// @Description  Aplica el ajuste y agrega el movimiento al kardex en una sola
//
//	transacción. Reintentos con la misma reference no duplican nada.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id, type, quantity, direction (solo ADJUSTMENT), reason, reference (opcional)"
// @Success      201   {object}  dto.AdjustStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	userID := GetUserID(c)
	if storeID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.adjust.AdjustStock(c.Context(), inventory.AdjustStockInput{
		StoreID:   storeID,
		UserID:    userID,
		ProductID: in.ProductID,
		Direction: in.Direction,
		Type:      in.Type,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		Reason:    in.Reason,
		Reference: in.Reference,
	})
	if err != nil {
		return adjustError(c, err)
	}
	status := fiber.StatusCreated
	if result.Replayed {
		// La referencia ya estaba aplicada: devolver el resultado previo sin recrear.
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(dto.AdjustStockResponse{
		Product:  dto.NewProductResponse(result.Product),
		Movement: dto.NewMovementResponse(result.Movement),
		Replayed: result.Replayed,
	})
}

func adjustError(c *fiber.Ctx, err error) error {
	switch err {
	case domain.ErrInvalidQuantity:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: "la cantidad debe ser mayor que cero"})
	case domain.ErrInvalidInput:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case domain.ErrProductNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "PRODUCT_NOT_FOUND", Message: "producto no encontrado"})
	case domain.ErrForbidden:
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case domain.ErrInsufficientStock:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case domain.ErrConcurrencyConflict:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY_CONFLICT", Message: "conflicto de concurrencia, reintente el ajuste"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// ListMovements godoc
// @Summary      Listar movimientos del kardex
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto (UUID)"
// @Param        from        query  string  false  "Fecha inicial (RFC 3339 o YYYY-MM-DD)"
// @Param        to          query  string  false  "Fecha final"
// @Success      200  {array}   dto.MovementResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	if storeID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	from, err := parseDate(c.Query("from"), false)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha 'from' inválida"})
	}
	to, err := parseDate(c.Query("to"), true)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha 'to' inválida"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}

	movements, err := h.query.ListMovements(c.Context(), storeID, c.Query("product_id"), from, to, page)
	if err != nil {
		if err == domain.ErrProductNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "PRODUCT_NOT_FOUND", Message: "producto no encontrado"})
		}
		if err == domain.ErrForbidden {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(movements), "movements": movements})
}

// GetStockHistory godoc
// @Summary      Kardex completo de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {array}   dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/history [get]
func (h *InventoryHandler) GetStockHistory(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	if storeID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	movements, err := h.query.GetStockHistory(c.Context(), storeID, c.Params("id"), page)
	if err != nil {
		if err == domain.ErrProductNotFound {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "PRODUCT_NOT_FOUND", Message: "producto no encontrado"})
		}
		if err == domain.ErrForbidden {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(movements), "movements": movements})
}

// GetLowStock godoc
// @Summary      Productos en o bajo su punto de reorden
// @Description  Foto del momento de la llamada; dos llamadas sucesivas pueden
//
//	diferir si hubo ajustes entre ellas.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.LowStockItemDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) GetLowStock(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	if storeID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	items, err := h.lowStock.GetLowStockProducts(c.Context(), storeID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(items), "products": items})
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición sugerida
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	if storeID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	list, err := h.lowStock.GenerateReplenishmentList(c.Context(), storeID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(list), "replenishments": list})
}

// parseDate acepta RFC 3339 o YYYY-MM-DD (endOfDay fija 23:59:59 para fechas sin hora).
func parseDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t, nil
}
