package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/application/inventory"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

func newAdjustFixture(t *testing.T) (*inventory.AdjustStockUseCase, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	uc := inventory.NewAdjustStockUseCase(
		&fakeTxRunner{s: store},
		&fakeProductRepo{s: store},
		&fakeMovementRepo{s: store},
	)
	return uc, store
}

func seedProduct(store *fakeStore, id, storeID string, stock int64) *entity.Product {
	p := &entity.Product{
		ID:               id,
		StoreID:          storeID,
		SKU:              "SKU-" + id,
		Name:             "Producto " + id,
		Price:            decimal.NewFromInt(100),
		Cost:             decimal.NewFromInt(60),
		Stock:            stock,
		ReorderThreshold: 5,
		Version:          1,
	}
	store.addProduct(p)
	return p
}

func TestAdjustStock_EntradaAumentaStock(t *testing.T) {
	uc, store := newAdjustFixture(t)
	seedProduct(store, "p1", "s1", 10)

	result, err := uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
		StoreID:   "s1",
		UserID:    "u1",
		ProductID: "p1",
		Type:      entity.MovementTypeIN,
		Quantity:  5,
		Reason:    "reposición proveedor",
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.False(t, result.Replayed)
	assert.Equal(t, int64(15), result.Product.Stock)
	assert.Equal(t, int64(15), result.Movement.ResultingStock)
	assert.Equal(t, entity.DirectionIncrease, result.Movement.Direction)
	assert.Equal(t, int64(5), result.Movement.Quantity)
	assert.Equal(t, "u1", result.Movement.CreatedBy)
	assert.NotEmpty(t, result.Movement.TransactionID)

	assert.Equal(t, int64(15), store.product("p1").Stock)
	assert.Equal(t, 1, store.movementCount())
}

func TestAdjustStock_StockInsuficienteNoTocaNada(t *testing.T) {
	uc, store := newAdjustFixture(t)
	seedProduct(store, "p1", "s1", 15)

	result, err := uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
		StoreID:   "s1",
		ProductID: "p1",
		Type:      entity.MovementTypeOUT,
		Quantity:  20,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Nil(t, result)

	// Rechazado: ni el producto ni el kardex cambian.
	assert.Equal(t, int64(15), store.product("p1").Stock)
	assert.Equal(t, int64(1), store.product("p1").Version)
	assert.Equal(t, 0, store.movementCount())
}

func TestAdjustStock_VentaHastaCeroEsValida(t *testing.T) {
	uc, store := newAdjustFixture(t)
	seedProduct(store, "p1", "s1", 15)

	result, err := uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
		StoreID:   "s1",
		ProductID: "p1",
		Type:      entity.MovementTypeSALE,
		Quantity:  15,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Product.Stock)
	assert.Equal(t, int64(0), result.Movement.ResultingStock)
	// SALE sin precio declarado usa el precio de venta del producto.
	assert.True(t, result.Movement.UnitPrice.Equal(decimal.NewFromInt(100)))
}

func TestAdjustStock_CantidadInvalida(t *testing.T) {
	uc, store := newAdjustFixture(t)
	seedProduct(store, "p1", "s1", 10)

	for _, qty := range []int64{0, -3} {
		result, err := uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
			StoreID:   "s1",
			ProductID: "p1",
			Type:      entity.MovementTypeIN,
			Quantity:  qty,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
		assert.Nil(t, result)
	}
	assert.Equal(t, 0, store.movementCount())
}

func TestAdjustStock_CantidadSeValidaAntesDeLeer(t *testing.T) {
	uc, _ := newAdjustFixture(t)

	// Producto inexistente: con cantidad inválida debe ganar la validación de
	// cantidad, sin llegar a consultar el producto.
	_, err := uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
		ProductID: "no-existe",
		Type:      entity.MovementTypeIN,
		Quantity:  0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestAdjustStock_TipoYDireccion(t *testing.T) {
	tests := []struct {
		name      string
		movType   string
		direction string
		wantErr   error
		wantDir   string
	}{
		{name: "tipo desconocido", movType: "TRANSFER", wantErr: domain.ErrInvalidInput},
		{name: "dirección contradice al tipo", movType: entity.MovementTypeIN, direction: entity.DirectionDecrease, wantErr: domain.ErrInvalidInput},
		{name: "dirección redundante coincide", movType: entity.MovementTypeOUT, direction: entity.DirectionDecrease, wantDir: entity.DirectionDecrease},
		{name: "ajuste sin dirección", movType: entity.MovementTypeADJUSTMENT, wantErr: domain.ErrInvalidInput},
		{name: "ajuste hacia arriba", movType: entity.MovementTypeADJUSTMENT, direction: entity.DirectionIncrease, wantDir: entity.DirectionIncrease},
		{name: "ajuste hacia abajo", movType: entity.MovementTypeADJUSTMENT, direction: entity.DirectionDecrease, wantDir: entity.DirectionDecrease},
		{name: "devolución sube", movType: entity.MovementTypeRETURN, wantDir: entity.DirectionIncrease},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, store := newAdjustFixture(t)
			seedProduct(store, "p1", "s1", 10)

			result, err := uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
				StoreID:   "s1",
				ProductID: "p1",
				Type:      tt.movType,
				Direction: tt.direction,
				Quantity:  2,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDir, result.Movement.Direction)
		})
	}
}

func TestAdjustStock_ProductoNoExiste(t *testing.T) {
	uc, _ := newAdjustFixture(t)

	_, err := uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
		ProductID: "fantasma",
		Type:      entity.MovementTypeIN,
		Quantity:  1,
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestAdjustStock_ProductoDeOtraTienda(t *testing.T) {
	uc, store := newAdjustFixture(t)
	seedProduct(store, "p1", "s1", 10)

	_, err := uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
		StoreID:   "s2",
		ProductID: "p1",
		Type:      entity.MovementTypeIN,
		Quantity:  1,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAdjustStock_ReferenciaIdempotente(t *testing.T) {
	uc, store := newAdjustFixture(t)
	seedProduct(store, "p1", "s1", 10)

	input := inventory.AdjustStockInput{
		StoreID:   "s1",
		ProductID: "p1",
		Type:      entity.MovementTypeSALE,
		Quantity:  4,
		Reference: "orden-991",
	}

	first, err := uc.AdjustStock(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, first.Replayed)
	assert.Equal(t, int64(6), first.Product.Stock)

	// Reintento de red con la misma referencia: no se aplica nada nuevo.
	second, err := uc.AdjustStock(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Movement.ID, second.Movement.ID)
	assert.Equal(t, int64(6), store.product("p1").Stock)
	assert.Equal(t, 1, store.movementCount())
}

func TestAdjustStock_ReferenciaGanadaPorReintentoRival(t *testing.T) {
	store := newFakeStore()
	seedProduct(store, "p1", "s1", 10)
	runner := &fakeTxRunner{s: store}
	uc := inventory.NewAdjustStockUseCase(runner, &fakeProductRepo{s: store}, &fakeMovementRepo{s: store})

	// El reintento rival confirma su movimiento en la ventana entre el
	// pre-chequeo de referencia y el append: el índice único (producto,
	// referencia) detiene a este intento y se resuelve como replay.
	rival := &entity.StockMovement{
		ProductID:      "p1",
		StoreID:        "s1",
		Type:           entity.MovementTypeSALE,
		Direction:      entity.DirectionDecrease,
		Quantity:       4,
		Reference:      "orden-77",
		ResultingStock: 6,
		CreatedAt:      time.Now(),
	}
	runner.before = func() { store.injectMovement(rival) }

	result, err := uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
		StoreID:   "s1",
		ProductID: "p1",
		Type:      entity.MovementTypeSALE,
		Quantity:  4,
		Reference: "orden-77",
	})
	require.NoError(t, err)
	assert.True(t, result.Replayed)
	assert.Equal(t, rival.ID, result.Movement.ID)

	// El intento perdedor no aplicó nada: su tx quedó revertida entera.
	assert.Equal(t, 1, store.movementCount())
	assert.Equal(t, int64(10), store.product("p1").Stock)
	assert.Equal(t, int64(1), store.product("p1").Version)
}

func TestAdjustStock_AjustesConcurrentes(t *testing.T) {
	uc, store := newAdjustFixture(t)
	seedProduct(store, "p1", "s1", 10)

	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
			StoreID: "s1", ProductID: "p1", Type: entity.MovementTypeIN, Quantity: 5,
		})
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
			StoreID: "s1", ProductID: "p1", Type: entity.MovementTypeOUT, Quantity: 3,
		})
	}()
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// Ambos ajustes aplicados exactamente una vez, sin pisarse.
	assert.Equal(t, int64(12), store.product("p1").Stock)
	assert.Equal(t, 2, store.movementCount())
	for _, m := range store.allMovements() {
		// Cada snapshot es coherente con el orden real de aplicación.
		assert.True(t, m.ResultingStock == 15 || m.ResultingStock == 7 || m.ResultingStock == 12,
			"resulting stock inesperado: %d", m.ResultingStock)
	}
}

func TestAdjustStock_ConflictoPersistenteSeRinde(t *testing.T) {
	uc, store := newAdjustFixture(t)
	seedProduct(store, "p1", "s1", 10)
	store.failApply = true

	_, err := uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
		StoreID: "s1", ProductID: "p1", Type: entity.MovementTypeIN, Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.Equal(t, 3, store.applyCalls)
	// El rollback del tx descarta cualquier rastro.
	assert.Equal(t, 0, store.movementCount())
	assert.Equal(t, int64(10), store.product("p1").Stock)
}

func TestAdjustStock_StockIgualaSumaDeMovimientos(t *testing.T) {
	uc, store := newAdjustFixture(t)
	initial := int64(20)
	seedProduct(store, "p1", "s1", initial)

	steps := []inventory.AdjustStockInput{
		{Type: entity.MovementTypeIN, Quantity: 7},
		{Type: entity.MovementTypeSALE, Quantity: 4},
		{Type: entity.MovementTypeADJUSTMENT, Direction: entity.DirectionDecrease, Quantity: 2},
		{Type: entity.MovementTypeRETURN, Quantity: 1},
		{Type: entity.MovementTypeOUT, Quantity: 5},
	}
	for _, step := range steps {
		step.StoreID = "s1"
		step.ProductID = "p1"
		_, err := uc.AdjustStock(context.Background(), step)
		require.NoError(t, err)
	}

	var sum int64
	running := initial
	for _, m := range store.allMovements() {
		sum += m.SignedQuantity()
		running += m.SignedQuantity()
		assert.Equal(t, running, m.ResultingStock)
	}
	assert.Equal(t, initial+sum, store.product("p1").Stock)
	assert.Equal(t, int64(17), store.product("p1").Stock)
}

func TestAdjustStock_EntradaRecalculaCostoPromedio(t *testing.T) {
	uc, store := newAdjustFixture(t)
	p := seedProduct(store, "p1", "s1", 10) // costo 60

	cost := decimal.NewFromInt(90)
	result, err := uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
		StoreID:   "s1",
		ProductID: p.ID,
		Type:      entity.MovementTypeIN,
		Quantity:  5,
		UnitPrice: &cost,
	})
	require.NoError(t, err)

	// (10*60 + 5*90) / 15 = 70
	assert.True(t, result.Product.Cost.Equal(decimal.NewFromInt(70)),
		"costo promedio = %s", result.Product.Cost)
	assert.True(t, store.product("p1").Cost.Equal(decimal.NewFromInt(70)))
	// El costo del producto solo cambia por entradas con costo declarado.
	_, err = uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
		StoreID: "s1", ProductID: p.ID, Type: entity.MovementTypeSALE, Quantity: 3,
	})
	require.NoError(t, err)
	assert.True(t, store.product("p1").Cost.Equal(decimal.NewFromInt(70)))
}

func TestAdjustStock_PrecioNegativoRechazado(t *testing.T) {
	uc, store := newAdjustFixture(t)
	seedProduct(store, "p1", "s1", 10)

	bad := decimal.NewFromInt(-1)
	_, err := uc.AdjustStock(context.Background(), inventory.AdjustStockInput{
		StoreID: "s1", ProductID: "p1", Type: entity.MovementTypeIN, Quantity: 1, UnitPrice: &bad,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
