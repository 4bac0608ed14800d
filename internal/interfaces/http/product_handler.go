package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// ProductHandler vistas de solo lectura del catálogo. El CRUD de productos
// pertenece al módulo de catálogo; el stock solo se muta vía ajustes.
type ProductHandler struct {
	productRepo repository.ProductRepository
}

// NewProductHandler construye el handler.
func NewProductHandler(productRepo repository.ProductRepository) *ProductHandler {
	return &ProductHandler{productRepo: productRepo}
}

// List godoc
// @Summary      Listar productos de la tienda
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ProductResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	if storeID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	products, err := h.productRepo.ListByStore(storeID, page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, dto.NewProductResponse(p))
	}
	return c.JSON(fiber.Map{"total": len(out), "products": out})
}

// GetByID godoc
// @Summary      Obtener un producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	storeID := GetStoreID(c)
	if storeID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	product, err := h.productRepo.GetByID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if product == nil || product.StoreID != storeID {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "PRODUCT_NOT_FOUND", Message: "producto no encontrado"})
	}
	return c.JSON(dto.NewProductResponse(product))
}
