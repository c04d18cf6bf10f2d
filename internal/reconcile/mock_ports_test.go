package reconcile

import (
	"context"
	"sync"

	"github.com/SanderJevnaker/payload-svea-adapter/internal/store"
	"github.com/SanderJevnaker/payload-svea-adapter/internal/svea"
)

// In-memory fakes for the coordinator's ports. Reads hand out copies so a
// caller holding a stale snapshot behaves like one against the real store.

type fakeTxStore struct {
	mu             sync.Mutex
	txs            map[string]store.Transaction
	getErr         error
	findErr        error
	markSucceeded  int
	markFailed     int
	markSucceedErr error
}

func newFakeTxStore(txs ...store.Transaction) *fakeTxStore {
	s := &fakeTxStore{txs: map[string]store.Transaction{}}
	for _, tx := range txs {
		s.txs[tx.TransactionID] = tx
	}
	return s
}

func (s *fakeTxStore) Get(ctx context.Context, id string) (*store.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	tx, ok := s.txs[id]
	if !ok {
		return nil, nil
	}
	cp := tx
	return &cp, nil
}

func (s *fakeTxStore) FindBySveaOrderID(ctx context.Context, id int64) (*store.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, tx := range s.txs {
		if tx.Svea.OrderID == id {
			cp := tx
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeTxStore) FindByClientOrderNumber(ctx context.Context, num string) (*store.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, tx := range s.txs {
		if tx.Svea.ClientOrderNumber == num {
			cp := tx
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeTxStore) MarkSucceeded(ctx context.Context, id, orderID string, details store.SveaDetails) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markSucceedErr != nil {
		return s.markSucceedErr
	}
	s.markSucceeded++
	tx := s.txs[id]
	tx.Status = store.TxSucceeded
	tx.OrderID = orderID
	tx.Svea = details
	s.txs[id] = tx
	return nil
}

func (s *fakeTxStore) MarkFailed(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markFailed++
	tx := s.txs[id]
	tx.Status = store.TxFailed
	s.txs[id] = tx
	return nil
}

func (s *fakeTxStore) get(id string) store.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txs[id]
}

type fakeOrderStore struct {
	mu          sync.Mutex
	orders      map[string]store.Order
	createCalls int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[string]store.Order{}}
}

func (s *fakeOrderStore) Get(ctx context.Context, id string) (*store.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	cp := o
	return &cp, nil
}

func (s *fakeOrderStore) Create(ctx context.Context, order store.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if _, exists := s.orders[order.OrderID]; exists {
		return store.ErrConditionFailed
	}
	s.orders[order.OrderID] = order
	return nil
}

func (s *fakeOrderStore) Update(ctx context.Context, order store.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.OrderID] = order
	return nil
}

func (s *fakeOrderStore) FindByTransactionID(ctx context.Context, txID string) (*store.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		for _, id := range o.TransactionIDs {
			if id == txID {
				cp := o
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (s *fakeOrderStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *fakeOrderStore) only() store.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		return o
	}
	return store.Order{}
}

type fakeCartStore struct {
	mu        sync.Mutex
	carts     map[string]store.Cart
	markErr   error
	markCalls int
}

func newFakeCartStore(carts ...store.Cart) *fakeCartStore {
	s := &fakeCartStore{carts: map[string]store.Cart{}}
	for _, c := range carts {
		s.carts[c.CartID] = c
	}
	return s
}

func (s *fakeCartStore) Get(ctx context.Context, id string) (*store.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[id]
	if !ok {
		return nil, nil
	}
	cp := c
	return &cp, nil
}

func (s *fakeCartStore) MarkPurchased(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markCalls++
	if s.markErr != nil {
		return s.markErr
	}
	c := s.carts[id]
	c.Status = store.CartPurchased
	c.Items = nil
	s.carts[id] = c
	return nil
}

func (s *fakeCartStore) get(id string) store.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carts[id]
}

type fakeGateway struct {
	mu         sync.Mutex
	orders     map[int64]*svea.CheckoutOrder
	err        error
	fetchCalls int
}

func newFakeGateway(orders ...*svea.CheckoutOrder) *fakeGateway {
	g := &fakeGateway{orders: map[int64]*svea.CheckoutOrder{}}
	for _, o := range orders {
		g.orders[o.OrderID] = o
	}
	return g
}

func (g *fakeGateway) FetchOrder(ctx context.Context, id int64) (*svea.CheckoutOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetchCalls++
	if g.err != nil {
		return nil, g.err
	}
	o, ok := g.orders[id]
	if !ok {
		return nil, &svea.APIError{StatusCode: 404, Message: "order not found"}
	}
	return o, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (p *fakePublisher) Publish(ctx context.Context, body string, attrs map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, body)
	return nil
}
