package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/report"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// ReportPDFGenerator exporta un reporte a PDF (implementado en infrastructure/pdf).
type ReportPDFGenerator interface {
	GenerateReportPDF(ctx context.Context, store *entity.Store, r *dto.Report) ([]byte, error)
}

// ReportHandler maneja la generación de reportes (protegido).
type ReportHandler struct {
	uc        *report.ReportUseCase
	storeRepo repository.StoreRepository
	pdfGen    ReportPDFGenerator
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.ReportUseCase, storeRepo repository.StoreRepository, pdfGen ReportPDFGenerator) *ReportHandler {
	return &ReportHandler{uc: uc, storeRepo: storeRepo, pdfGen: pdfGen}
}

// Generate godoc
// @Summary      Generar reporte
// @Description  Agrega los movimientos del kardex de la tienda en el rango dado.
//
//	format=tabular devuelve columnas + filas de texto.
//
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        type    query  string  true   "SALES | INVENTORY | DEBTS | PROFITS | CLIENTS | PRODUCTS"
// @Param        from    query  string  false  "Fecha inicial (RFC 3339 o YYYY-MM-DD)"
// @Param        to      query  string  false  "Fecha final"
// @Param        format  query  string  false  "json (default) | tabular"
// @Success      200  {object}  dto.Report
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports [get]
func (h *ReportHandler) Generate(c *fiber.Ctx) error {
	r, err := h.generate(c)
	if err != nil {
		return reportError(c, err)
	}
	if c.Query("format") == "tabular" {
		columns, rows := r.Tabular()
		return c.JSON(fiber.Map{
			"type":    r.Type,
			"columns": columns,
			"rows":    rows,
		})
	}
	return c.JSON(r)
}

// GeneratePDF godoc
// @Summary      Generar reporte en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        type  query  string  true  "SALES | INVENTORY | DEBTS | PROFITS | CLIENTS | PRODUCTS"
// @Param        from  query  string  false  "Fecha inicial"
// @Param        to    query  string  false  "Fecha final"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/pdf [get]
func (h *ReportHandler) GeneratePDF(c *fiber.Ctx) error {
	r, err := h.generate(c)
	if err != nil {
		return reportError(c, err)
	}
	store, err := h.storeRepo.GetByID(r.StoreID)
	if err != nil {
		return reportError(c, err)
	}
	if store == nil {
		return reportError(c, domain.ErrNotFound)
	}
	pdfBytes, err := h.pdfGen.GenerateReportPDF(c.Context(), store, r)
	if err != nil {
		return reportError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="reporte.pdf"`)
	return c.Send(pdfBytes)
}

func (h *ReportHandler) generate(c *fiber.Ctx) (*dto.Report, error) {
	storeID := GetStoreID(c)
	if storeID == "" {
		return nil, domain.ErrForbidden
	}
	from, err := parseDate(c.Query("from"), false)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	to, err := parseDate(c.Query("to"), true)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	return h.uc.Generate(c.Context(), storeID, from, to, dto.ReportType(c.Query("type")))
}

func reportError(c *fiber.Ctx, err error) error {
	switch err {
	case domain.ErrInvalidInput:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tipo de reporte o fechas inválidas"})
	case domain.ErrForbidden:
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	case domain.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "tienda no encontrada"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
