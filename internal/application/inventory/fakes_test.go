package inventory_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria para los puertos del motor de inventario.
// Reproducen la semántica de PostgreSQL que importa aquí: update condicional
// por versión, índice único (product_id, reference) y transacciones con
// rollback (snapshot/restore bajo un mutex que serializa cada tx).
// ──────────────────────────────────────────────────────────────────────────────

type fakeStore struct {
	mu          sync.Mutex
	products    map[string]*entity.Product
	movements   []*entity.StockMovement
	nextID      int64
	failApply   bool // fuerza ErrConcurrencyConflict en ApplyStock
	applyCalls  int
	appendCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{products: make(map[string]*entity.Product)}
}

func (s *fakeStore) addProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[p.ID] = &cp
}

func (s *fakeStore) product(id string) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		cp := *p
		return &cp
	}
	return nil
}

// injectMovement inserta un movimiento directo al ledger, fuera de toda tx:
// simula un reintento rival que ya confirmó su movimiento.
func (s *fakeStore) injectMovement(m *entity.StockMovement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	m.ID = s.nextID
	cp := *m
	s.movements = append(s.movements, &cp)
}

func (s *fakeStore) movementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

func (s *fakeStore) allMovements() []*entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.StockMovement, 0, len(s.movements))
	for _, m := range s.movements {
		cp := *m
		out = append(out, &cp)
	}
	return out
}

// ── ProductRepository ─────────────────────────────────────────────────────────

type fakeProductRepo struct{ s *fakeStore }

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

func (r *fakeProductRepo) Create(p *entity.Product) error {
	r.s.addProduct(p)
	return nil
}

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	return r.s.product(id), nil
}

func (r *fakeProductRepo) GetByStoreAndSKU(storeID, sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.StoreID == storeID && p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) Update(p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.products[p.ID]; ok {
		existing.Name = p.Name
		existing.Description = p.Description
		existing.Price = p.Price
		existing.ReorderThreshold = p.ReorderThreshold
		existing.UpdatedAt = p.UpdatedAt
	}
	return nil
}

func (r *fakeProductRepo) ApplyStock(productID string, newStock int64, newCost decimal.Decimal, version int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.applyCalls++
	if r.s.failApply {
		return domain.ErrConcurrencyConflict
	}
	p, ok := r.s.products[productID]
	if !ok || p.Version != version {
		return domain.ErrConcurrencyConflict
	}
	p.Stock = newStock
	p.Cost = newCost
	p.Version++
	p.UpdatedAt = time.Now()
	return nil
}

func (r *fakeProductRepo) ListByStore(storeID string, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.Product
	for _, p := range r.s.products {
		if storeID == "" || p.StoreID == storeID {
			cp := *p
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
	return paginate(list, limit, offset), nil
}

func (r *fakeProductRepo) ListLowStock(_ context.Context, storeID string) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.Product
	for _, p := range r.s.products {
		if storeID != "" && p.StoreID != storeID {
			continue
		}
		if p.Stock <= p.ReorderThreshold {
			cp := *p
			list = append(list, &cp)
		}
	}
	// Mayor déficit primero, como el repo real
	sort.Slice(list, func(i, j int) bool {
		di := list[i].ReorderThreshold - list[i].Stock
		dj := list[j].ReorderThreshold - list[j].Stock
		if di != dj {
			return di > dj
		}
		return list[i].SKU < list[j].SKU
	})
	return list, nil
}

// ── StockMovementRepository ───────────────────────────────────────────────────

type fakeMovementRepo struct{ s *fakeStore }

var _ repository.StockMovementRepository = (*fakeMovementRepo)(nil)

func (r *fakeMovementRepo) Append(m *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.appendCalls++
	if m.Reference != "" {
		for _, existing := range r.s.movements {
			if existing.ProductID == m.ProductID && existing.Reference == m.Reference {
				return domain.ErrDuplicate
			}
		}
	}
	r.s.nextID++
	m.ID = r.s.nextID
	cp := *m
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *fakeMovementRepo) GetByID(id int64) (*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMovementRepo) FindByReference(productID, reference string) (*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.movements {
		if m.ProductID == productID && m.Reference == reference {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return r.list(func(m *entity.StockMovement) bool { return m.ProductID == productID }, from, to, limit, offset)
}

func (r *fakeMovementRepo) ListByStore(storeID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return r.list(func(m *entity.StockMovement) bool { return storeID == "" || m.StoreID == storeID }, from, to, limit, offset)
}

func (r *fakeMovementRepo) list(match func(*entity.StockMovement) bool, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.StockMovement
	for _, m := range r.s.movements {
		if !match(m) {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		cp := *m
		list = append(list, &cp)
	}
	// Orden de ledger: created_at asc, desempate por id
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return paginate(list, limit, offset), nil
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

// fakeTxRunner serializa cada transacción y restaura el snapshot si fn falla:
// mutación de stock y append al kardex quedan ambos o ninguno, como en la DB.
type fakeTxRunner struct {
	s      *fakeStore
	txMu   sync.Mutex
	before func() // corre una sola vez justo antes de abrir la siguiente tx
}

func (t *fakeTxRunner) Run(_ context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	t.txMu.Lock()
	defer t.txMu.Unlock()

	if t.before != nil {
		hook := t.before
		t.before = nil
		hook()
	}

	products, movements, nextID := t.snapshot()
	err := fn(&fakeMovementRepo{s: t.s}, &fakeProductRepo{s: t.s})
	if err != nil {
		t.restore(products, movements, nextID)
		return err
	}
	return nil
}

func (t *fakeTxRunner) snapshot() (map[string]*entity.Product, []*entity.StockMovement, int64) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	products := make(map[string]*entity.Product, len(t.s.products))
	for id, p := range t.s.products {
		cp := *p
		products[id] = &cp
	}
	movements := make([]*entity.StockMovement, len(t.s.movements))
	copy(movements, t.s.movements)
	return products, movements, t.s.nextID
}

func (t *fakeTxRunner) restore(products map[string]*entity.Product, movements []*entity.StockMovement, nextID int64) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.products = products
	t.s.movements = movements
	t.s.nextID = nextID
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
