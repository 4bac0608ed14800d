package report

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// pageSize tamaño de página al pasear el kardex.
const pageSize = 500

// ReportUseCase genera reportes agregados sobre el kardex y los productos.
// Es solo lectura y determinista: el mismo conjunto de movimientos produce
// siempre el mismo resultado (agregación pura, sin efectos secundarios).
//
// El paseo del kardex es paginado, no un snapshot único: un append concurrente
// puede quedar dentro o fuera del reporte según la página en curso. Es el mismo
// contrato relajado del monitor de stock bajo; un reporte sobre un rango ya
// cerrado no se ve afectado porque el ledger es append-only hacia adelante.
type ReportUseCase struct {
	movRepo     repository.StockMovementRepository
	productRepo repository.ProductRepository
	clientRepo  repository.ClientRepository
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	clientRepo repository.ClientRepository,
) *ReportUseCase {
	return &ReportUseCase{movRepo: movRepo, productRepo: productRepo, clientRepo: clientRepo}
}

// Generate produce el reporte del tipo pedido para la tienda y rango de fechas.
// El resultado lleva exactamente una variante no-nil según el tipo.
func (uc *ReportUseCase) Generate(
	ctx context.Context,
	storeID string,
	from, to *time.Time,
	reportType dto.ReportType,
) (*dto.Report, error) {
	if !dto.ValidReportType(reportType) {
		return nil, domain.ErrInvalidInput
	}
	r := &dto.Report{
		Type:        reportType,
		StoreID:     storeID,
		From:        from,
		To:          to,
		GeneratedAt: time.Now(),
	}

	var err error
	switch reportType {
	case dto.ReportTypeINVENTORY:
		r.Inventory, err = uc.inventoryReport(ctx, storeID, from, to)
	case dto.ReportTypeSALES:
		r.Sales, err = uc.salesReport(ctx, storeID, from, to)
	case dto.ReportTypePRODUCTS:
		r.Products, err = uc.productsReport(ctx, storeID, from, to)
	case dto.ReportTypePROFITS:
		r.Profits, err = uc.profitsReport(ctx, storeID, from, to)
	case dto.ReportTypeCLIENTS:
		r.Clients, err = uc.clientsReport(storeID)
	case dto.ReportTypeDEBTS:
		r.Debts, err = uc.debtsReport(storeID)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// fetchMovements pasea el kardex de la tienda página a página hasta agotar el rango.
func (uc *ReportUseCase) fetchMovements(storeID string, from, to *time.Time) ([]*entity.StockMovement, error) {
	var all []*entity.StockMovement
	offset := 0
	for {
		page, err := uc.movRepo.ListByStore(storeID, from, to, pageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
		offset += pageSize
	}
}

// productIndex carga los productos de la tienda indexados por ID.
func (uc *ReportUseCase) productIndex(storeID string) (map[string]*entity.Product, error) {
	index := make(map[string]*entity.Product)
	offset := 0
	for {
		page, err := uc.productRepo.ListByStore(storeID, pageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, p := range page {
			index[p.ID] = p
		}
		if len(page) < pageSize {
			return index, nil
		}
		offset += pageSize
	}
}

// ── INVENTORY ─────────────────────────────────────────────────────────────────

// inventoryReport suma entradas y salidas por producto y calcula el stock final.
// El stock final sale del ResultingStock del último movimiento del rango (foto
// absoluta en orden de ledger); si el rango está abierto y el producto no tuvo
// movimientos, es su stock vivo — así el total cuadra con products.stock.
func (uc *ReportUseCase) inventoryReport(ctx context.Context, storeID string, from, to *time.Time) (*dto.InventoryReport, error) {
	movements, err := uc.fetchMovements(storeID, from, to)
	if err != nil {
		return nil, err
	}
	products, err := uc.productIndex(storeID)
	if err != nil {
		return nil, err
	}

	type acc struct {
		inflow, outflow, ending int64
		moved                   bool
	}
	byProduct := make(map[string]*acc)
	for _, m := range movements {
		a := byProduct[m.ProductID]
		if a == nil {
			a = &acc{}
			byProduct[m.ProductID] = a
		}
		if m.Direction == entity.DirectionIncrease {
			a.inflow += m.Quantity
		} else {
			a.outflow += m.Quantity
		}
		// Los movimientos vienen en orden de ledger: el último manda.
		a.ending = m.ResultingStock
		a.moved = true
	}

	out := &dto.InventoryReport{Items: make([]dto.InventoryReportItem, 0, len(byProduct))}
	for id, a := range byProduct {
		item := dto.InventoryReportItem{
			ProductID:   id,
			Inflow:      a.inflow,
			Outflow:     a.outflow,
			Net:         a.inflow - a.outflow,
			EndingStock: a.ending,
		}
		if p, ok := products[id]; ok {
			item.SKU = p.SKU
			item.Name = p.Name
			if to == nil {
				item.EndingStock = p.Stock
			}
		}
		out.Items = append(out.Items, item)
		out.TotalInflow += a.inflow
		out.TotalOutflow += a.outflow
	}
	out.TotalNet = out.TotalInflow - out.TotalOutflow
	sortByKey(out.Items, func(it dto.InventoryReportItem) string { return it.SKU + it.ProductID })
	return out, nil
}

// ── SALES ─────────────────────────────────────────────────────────────────────

func (uc *ReportUseCase) salesReport(ctx context.Context, storeID string, from, to *time.Time) (*dto.SalesReport, error) {
	movements, err := uc.fetchMovements(storeID, from, to)
	if err != nil {
		return nil, err
	}
	products, err := uc.productIndex(storeID)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[string]*dto.SalesReportItem)
	for _, m := range movements {
		if m.Type != entity.MovementTypeSALE && m.Type != entity.MovementTypeRETURN {
			continue
		}
		it := byProduct[m.ProductID]
		if it == nil {
			it = &dto.SalesReportItem{ProductID: m.ProductID}
			if p, ok := products[m.ProductID]; ok {
				it.SKU = p.SKU
				it.Name = p.Name
			}
			byProduct[m.ProductID] = it
		}
		amount := decimal.NewFromInt(m.Quantity).Mul(m.UnitPrice)
		if m.Type == entity.MovementTypeSALE {
			it.UnitsSold += m.Quantity
			it.GrossRevenue = it.GrossRevenue.Add(amount)
		} else {
			it.UnitsReturned += m.Quantity
			it.Refunds = it.Refunds.Add(amount)
		}
	}

	out := &dto.SalesReport{Items: make([]dto.SalesReportItem, 0, len(byProduct))}
	for _, it := range byProduct {
		it.NetRevenue = it.GrossRevenue.Sub(it.Refunds)
		out.Items = append(out.Items, *it)
		out.TotalUnits += it.UnitsSold - it.UnitsReturned
		out.GrossRevenue = out.GrossRevenue.Add(it.GrossRevenue)
		out.Refunds = out.Refunds.Add(it.Refunds)
	}
	out.NetRevenue = out.GrossRevenue.Sub(out.Refunds)
	sortByKey(out.Items, func(it dto.SalesReportItem) string { return it.SKU + it.ProductID })
	return out, nil
}

// ── PRODUCTS (rotación) ───────────────────────────────────────────────────────

func (uc *ReportUseCase) productsReport(ctx context.Context, storeID string, from, to *time.Time) (*dto.ProductsReport, error) {
	movements, err := uc.fetchMovements(storeID, from, to)
	if err != nil {
		return nil, err
	}
	products, err := uc.productIndex(storeID)
	if err != nil {
		return nil, err
	}

	type acc struct {
		outflow, opening, ending int64
		first                    bool
	}
	byProduct := make(map[string]*acc)
	for _, m := range movements {
		a := byProduct[m.ProductID]
		if a == nil {
			a = &acc{}
			byProduct[m.ProductID] = a
		}
		if !a.first {
			// Stock al inicio del rango: deshacer el primer movimiento observado.
			a.opening = m.ResultingStock - m.SignedQuantity()
			a.first = true
		}
		if m.Direction == entity.DirectionDecrease {
			a.outflow += m.Quantity
		}
		a.ending = m.ResultingStock
	}

	two := decimal.NewFromInt(2)
	out := &dto.ProductsReport{Items: make([]dto.ProductsReportItem, 0, len(byProduct))}
	for id, a := range byProduct {
		avg := decimal.NewFromInt(a.opening + a.ending).Div(two)
		item := dto.ProductsReportItem{
			ProductID:    id,
			Outflow:      a.outflow,
			AverageStock: avg,
		}
		if avg.GreaterThan(decimal.Zero) {
			item.Turnover = decimal.NewFromInt(a.outflow).Div(avg).Round(4)
		}
		if p, ok := products[id]; ok {
			item.SKU = p.SKU
			item.Name = p.Name
		}
		out.Items = append(out.Items, item)
	}
	sortByKey(out.Items, func(it dto.ProductsReportItem) string { return it.SKU + it.ProductID })
	return out, nil
}

// ── PROFITS ───────────────────────────────────────────────────────────────────

// profitsReport: ingreso al precio del movimiento, COGS al costo promedio actual
// del producto (products.cost), neto de devoluciones.
func (uc *ReportUseCase) profitsReport(ctx context.Context, storeID string, from, to *time.Time) (*dto.ProfitsReport, error) {
	movements, err := uc.fetchMovements(storeID, from, to)
	if err != nil {
		return nil, err
	}
	products, err := uc.productIndex(storeID)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[string]*dto.ProfitsReportItem)
	for _, m := range movements {
		if m.Type != entity.MovementTypeSALE && m.Type != entity.MovementTypeRETURN {
			continue
		}
		it := byProduct[m.ProductID]
		if it == nil {
			it = &dto.ProfitsReportItem{ProductID: m.ProductID}
			if p, ok := products[m.ProductID]; ok {
				it.SKU = p.SKU
				it.Name = p.Name
			}
			byProduct[m.ProductID] = it
		}
		var cost decimal.Decimal
		if p, ok := products[m.ProductID]; ok {
			cost = p.Cost
		}
		qty := m.Quantity
		if m.Type == entity.MovementTypeRETURN {
			qty = -qty
		}
		it.UnitsSold += qty
		it.Revenue = it.Revenue.Add(decimal.NewFromInt(qty).Mul(m.UnitPrice))
		it.COGS = it.COGS.Add(decimal.NewFromInt(qty).Mul(cost))
	}

	hundred := decimal.NewFromInt(100)
	out := &dto.ProfitsReport{Items: make([]dto.ProfitsReportItem, 0, len(byProduct))}
	for _, it := range byProduct {
		it.GrossProfit = it.Revenue.Sub(it.COGS)
		if it.Revenue.GreaterThan(decimal.Zero) {
			it.MarginPct = it.GrossProfit.Div(it.Revenue).Mul(hundred).Round(2)
		}
		out.Items = append(out.Items, *it)
		out.TotalRevenue = out.TotalRevenue.Add(it.Revenue)
		out.TotalCOGS = out.TotalCOGS.Add(it.COGS)
	}
	out.TotalProfit = out.TotalRevenue.Sub(out.TotalCOGS)
	sortByKey(out.Items, func(it dto.ProfitsReportItem) string { return it.SKU + it.ProductID })
	return out, nil
}

// ── CLIENTS / DEBTS ───────────────────────────────────────────────────────────

func (uc *ReportUseCase) clientsReport(storeID string) (*dto.ClientsReport, error) {
	out := &dto.ClientsReport{}
	offset := 0
	for {
		page, err := uc.clientRepo.ListByStore(storeID, pageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, c := range page {
			out.Items = append(out.Items, dto.ClientReportItem{
				ClientID: c.ID, Name: c.Name, Email: c.Email, Balance: c.Balance,
			})
			out.TotalBalance = out.TotalBalance.Add(c.Balance)
		}
		if len(page) < pageSize {
			break
		}
		offset += pageSize
	}
	out.Count = len(out.Items)
	return out, nil
}

func (uc *ReportUseCase) debtsReport(storeID string) (*dto.DebtsReport, error) {
	debtors, err := uc.clientRepo.ListDebtors(storeID)
	if err != nil {
		return nil, err
	}
	out := &dto.DebtsReport{}
	for _, c := range debtors {
		out.Items = append(out.Items, dto.ClientReportItem{
			ClientID: c.ID, Name: c.Name, Email: c.Email, Balance: c.Balance,
		})
		out.TotalOutstanding = out.TotalOutstanding.Add(c.Balance)
	}
	out.DebtorCount = len(out.Items)
	return out, nil
}

// sortByKey ordena los items por una clave estable: los mapas de Go no tienen
// orden y el reporte debe ser determinista.
func sortByKey[T any](items []T, key func(T) string) {
	sort.SliceStable(items, func(i, j int) bool { return key(items[i]) < key(items[j]) })
}
