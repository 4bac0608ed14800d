// Package pdf genera la versión imprimible de los reportes de inventario.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre tienda  │  Tipo de reporte + rango fechas   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: columnas según la variante del reporte               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: fecha de generación                                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoReportGenerator exporta un dto.Report a PDF usando Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

// GenerateReportPDF genera el PDF del reporte y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateReportPDF(
	_ context.Context,
	store *entity.Store,
	report *dto.Report,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de inventario", true).
		WithAuthor(store.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(store, report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	columns, rows := report.Tabular()
	widths := columnWidths(len(columns))
	m.AddRows(tableHeaderRow(columns, widths))
	for _, r := range rows {
		m.AddRows(tableRow(r, widths))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(report))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: tienda (izq), tipo de reporte y rango (der).
func headerRow(store *entity.Store, report *dto.Report) core.Row {
	rango := "Histórico completo"
	if report.From != nil || report.To != nil {
		from, to := "inicio", "hoy"
		if report.From != nil {
			from = report.From.Format("02/01/2006")
		}
		if report.To != nil {
			to = report.To.Format("02/01/2006")
		}
		rango = from + " — " + to
	}
	return row.New(16).Add(
		col.New(7).Add(
			text.New(store.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New("REPORTE "+string(report.Type), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(rango, props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// columnWidths reparte las 12 columnas del grid de Maroto; la primera (SKU o
// nombre) se lleva el sobrante.
func columnWidths(n int) []int {
	if n == 0 {
		return nil
	}
	widths := make([]int, n)
	base := 12 / n
	for i := range widths {
		widths[i] = base
	}
	widths[0] += 12 - base*n
	return widths
}

func tableHeaderRow(columns []string, widths []int) core.Row {
	cols := make([]core.Col, 0, len(columns))
	for i, label := range columns {
		a := align.Right
		if i == 0 {
			a = align.Left
		}
		cols = append(cols, col.New(widths[i]).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(cols...)
}

func tableRow(values []string, widths []int) core.Row {
	cols := make([]core.Col, 0, len(values))
	for i, v := range values {
		a := align.Right
		if i == 0 {
			a = align.Left
		}
		cols = append(cols, col.New(widths[i]).Add(text.New(v, props.Text{
			Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		})))
	}
	return row.New(6).Add(cols...)
}

func footerRow(report *dto.Report) core.Row {
	return row.New(8).Add(
		col.New(12).Add(text.New(
			"Generado: "+report.GeneratedAt.Format("02/01/2006 15:04"),
			props.Text{Size: 7, Color: colorGray, Top: 2},
		)),
	)
}
