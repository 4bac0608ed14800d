package dto

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ReportType tipo de reporte. Conjunto cerrado: cada tipo tiene su variante propia
// en Report, así el caller sabe en compilación qué campos existen.
type ReportType string

const (
	ReportTypeSALES     ReportType = "SALES"
	ReportTypeINVENTORY ReportType = "INVENTORY"
	ReportTypeDEBTS     ReportType = "DEBTS"
	ReportTypePROFITS   ReportType = "PROFITS"
	ReportTypeCLIENTS   ReportType = "CLIENTS"
	ReportTypePRODUCTS  ReportType = "PRODUCTS"
)

// ValidReportType indica si el tipo pertenece al conjunto definido.
func ValidReportType(t ReportType) bool {
	switch t {
	case ReportTypeSALES, ReportTypeINVENTORY, ReportTypeDEBTS,
		ReportTypePROFITS, ReportTypeCLIENTS, ReportTypePRODUCTS:
		return true
	}
	return false
}

// ReportRequest query params para GET /api/reports.
type ReportRequest struct {
	Type   string `query:"type"`
	From   string `query:"from"`   // RFC 3339 o YYYY-MM-DD, opcional
	To     string `query:"to"`     // ídem
	Format string `query:"format"` // json (default) | tabular
}

// Report es el resultado de la generación: exactamente una variante no-nil,
// la que corresponde a Type.
type Report struct {
	Type        ReportType `json:"type"`
	StoreID     string     `json:"store_id"`
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`
	GeneratedAt time.Time  `json:"generated_at"`

	Inventory *InventoryReport `json:"inventory,omitempty"`
	Sales     *SalesReport     `json:"sales,omitempty"`
	Products  *ProductsReport  `json:"products,omitempty"`
	Profits   *ProfitsReport   `json:"profits,omitempty"`
	Clients   *ClientsReport   `json:"clients,omitempty"`
	Debts     *DebtsReport     `json:"debts,omitempty"`
}

// ── INVENTORY ─────────────────────────────────────────────────────────────────

// InventoryReportItem entradas/salidas de un producto en el rango.
type InventoryReportItem struct {
	ProductID   string `json:"product_id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Inflow      int64  `json:"inflow"`  // suma de incrementos
	Outflow     int64  `json:"outflow"` // suma de decrementos (magnitud)
	Net         int64  `json:"net"`     // inflow - outflow
	EndingStock int64  `json:"ending_stock"`
}

// InventoryReport agregado de movimientos por producto.
type InventoryReport struct {
	Items        []InventoryReportItem `json:"items"`
	TotalInflow  int64                 `json:"total_inflow"`
	TotalOutflow int64                 `json:"total_outflow"`
	TotalNet     int64                 `json:"total_net"`
}

// ── SALES ─────────────────────────────────────────────────────────────────────

// SalesReportItem ventas y devoluciones de un producto.
type SalesReportItem struct {
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	UnitsSold     int64           `json:"units_sold"`
	UnitsReturned int64           `json:"units_returned"`
	GrossRevenue  decimal.Decimal `json:"gross_revenue"` // Σ qty * unit_price de SALE
	Refunds       decimal.Decimal `json:"refunds"`       // Σ qty * unit_price de RETURN
	NetRevenue    decimal.Decimal `json:"net_revenue"`
}

// SalesReport agregado de movimientos SALE/RETURN.
type SalesReport struct {
	Items        []SalesReportItem `json:"items"`
	TotalUnits   int64             `json:"total_units"`
	GrossRevenue decimal.Decimal   `json:"gross_revenue"`
	Refunds      decimal.Decimal   `json:"refunds"`
	NetRevenue   decimal.Decimal   `json:"net_revenue"`
}

// ── PRODUCTS ──────────────────────────────────────────────────────────────────

// ProductsReportItem rotación de un producto en el rango.
type ProductsReportItem struct {
	ProductID    string          `json:"product_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Outflow      int64           `json:"outflow"`
	AverageStock decimal.Decimal `json:"average_stock"` // (inicial + final) / 2
	Turnover     decimal.Decimal `json:"turnover"`      // outflow / average_stock
}

// ProductsReport rotación por producto.
type ProductsReport struct {
	Items []ProductsReportItem `json:"items"`
}

// ── PROFITS ───────────────────────────────────────────────────────────────────

// ProfitsReportItem utilidad bruta de un producto vendido.
type ProfitsReportItem struct {
	ProductID   string          `json:"product_id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	UnitsSold   int64           `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
	COGS        decimal.Decimal `json:"cogs"` // qty * costo promedio del producto
	GrossProfit decimal.Decimal `json:"gross_profit"`
	MarginPct   decimal.Decimal `json:"margin_pct"`
}

// ProfitsReport utilidad bruta agregada.
type ProfitsReport struct {
	Items        []ProfitsReportItem `json:"items"`
	TotalRevenue decimal.Decimal     `json:"total_revenue"`
	TotalCOGS    decimal.Decimal     `json:"total_cogs"`
	TotalProfit  decimal.Decimal     `json:"total_profit"`
}

// ── CLIENTS / DEBTS ───────────────────────────────────────────────────────────

// ClientReportItem cliente con su saldo.
type ClientReportItem struct {
	ClientID string          `json:"client_id"`
	Name     string          `json:"name"`
	Email    string          `json:"email,omitempty"`
	Balance  decimal.Decimal `json:"balance"`
}

// ClientsReport roster de clientes de la tienda.
type ClientsReport struct {
	Items        []ClientReportItem `json:"items"`
	Count        int                `json:"count"`
	TotalBalance decimal.Decimal    `json:"total_balance"`
}

// DebtsReport clientes con saldo pendiente.
type DebtsReport struct {
	Items            []ClientReportItem `json:"items"`
	DebtorCount      int                `json:"debtor_count"`
	TotalOutstanding decimal.Decimal    `json:"total_outstanding"`
}

// ── Formato tabular ───────────────────────────────────────────────────────────

// Tabular devuelve el reporte como columnas + filas de texto, según la variante.
// Lo consumen el formato "tabular" del endpoint y el exportador PDF.
func (r *Report) Tabular() (columns []string, rows [][]string) {
	switch {
	case r.Inventory != nil:
		columns = []string{"SKU", "Producto", "Entradas", "Salidas", "Neto", "Stock final"}
		for _, it := range r.Inventory.Items {
			rows = append(rows, []string{
				it.SKU, it.Name, i64(it.Inflow), i64(it.Outflow), i64(it.Net), i64(it.EndingStock),
			})
		}
	case r.Sales != nil:
		columns = []string{"SKU", "Producto", "Vendidas", "Devueltas", "Ingreso bruto", "Devoluciones", "Ingreso neto"}
		for _, it := range r.Sales.Items {
			rows = append(rows, []string{
				it.SKU, it.Name, i64(it.UnitsSold), i64(it.UnitsReturned),
				it.GrossRevenue.StringFixed(2), it.Refunds.StringFixed(2), it.NetRevenue.StringFixed(2),
			})
		}
	case r.Products != nil:
		columns = []string{"SKU", "Producto", "Salidas", "Stock promedio", "Rotación"}
		for _, it := range r.Products.Items {
			rows = append(rows, []string{
				it.SKU, it.Name, i64(it.Outflow), it.AverageStock.StringFixed(1), it.Turnover.StringFixed(2),
			})
		}
	case r.Profits != nil:
		columns = []string{"SKU", "Producto", "Vendidas", "Ingreso", "Costo", "Utilidad", "Margen %"}
		for _, it := range r.Profits.Items {
			rows = append(rows, []string{
				it.SKU, it.Name, i64(it.UnitsSold),
				it.Revenue.StringFixed(2), it.COGS.StringFixed(2),
				it.GrossProfit.StringFixed(2), it.MarginPct.StringFixed(1),
			})
		}
	case r.Clients != nil:
		columns = []string{"Cliente", "Email", "Saldo"}
		for _, it := range r.Clients.Items {
			rows = append(rows, []string{it.Name, it.Email, it.Balance.StringFixed(2)})
		}
	case r.Debts != nil:
		columns = []string{"Cliente", "Email", "Deuda"}
		for _, it := range r.Debts.Items {
			rows = append(rows, []string{it.Name, it.Email, it.Balance.StringFixed(2)})
		}
	}
	return columns, rows
}

func i64(n int64) string { return strconv.FormatInt(n, 10) }
