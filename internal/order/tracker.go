package order

import (
	"sort"
	"sync"
	"time"
)

const (
	// DefaultCapacity bounds the number of tracked orders.
	DefaultCapacity = 100_000
	// evictBatch is how many completed orders one eviction pass removes.
	evictBatch = 1_000
)

// Tracker holds in-flight and recently completed orders with O(1)
// lookup by client id or exchange id and a bounded memory footprint.
//
// One mutex guards every index so an order cannot be evicted while a
// concurrent Update is touching it. The decision path and the
// order-status ingestion path are the two expected callers.
type Tracker struct {
	mu sync.Mutex

	capacity   int
	byClient   map[string]*Order
	byExchange map[string]string // exchange id -> client id
	bySymbol   map[string][]string
	active     map[string]struct{}
	now        func() time.Time
}

func NewTracker() *Tracker {
	return NewTrackerWithCapacity(DefaultCapacity)
}

func NewTrackerWithCapacity(capacity int) *Tracker {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Tracker{
		capacity:   capacity,
		byClient:   make(map[string]*Order),
		byExchange: make(map[string]string),
		bySymbol:   make(map[string][]string),
		active:     make(map[string]struct{}),
		now:        time.Now,
	}
}

// Track inserts an order. At capacity it first evicts the oldest
// completed orders; orders still working are never evicted.
func (t *Tracker) Track(o Order) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.byClient[o.ClientID]; !exists && len(t.byClient) >= t.capacity {
		t.evictLocked()
	}

	stored := o
	if prev, exists := t.byClient[o.ClientID]; exists {
		// Re-tracking an existing id replaces the record in place.
		*prev = stored
	} else {
		t.byClient[o.ClientID] = &stored
		t.bySymbol[o.Symbol] = append(t.bySymbol[o.Symbol], o.ClientID)
	}
	if o.ExchangeID != "" {
		t.byExchange[o.ExchangeID] = o.ClientID
	}
	if o.Status.IsActive() {
		t.active[o.ClientID] = struct{}{}
	} else {
		delete(t.active, o.ClientID)
	}
}

// Update applies a status asserted by the venue stream. Unknown client
// ids are ignored. The tracker reflects the transition, it does not
// validate or compute it.
func (t *Tracker) Update(clientID string, status Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	o, ok := t.byClient[clientID]
	if !ok {
		return
	}

	o.Status = status
	if status.IsActive() {
		t.active[clientID] = struct{}{}
		return
	}
	delete(t.active, clientID)
	if status.IsTerminal() && o.CompletedAt.IsZero() {
		o.CompletedAt = t.now()
	}
}

// SetExchangeID binds a late-arriving exchange id to a tracked order.
func (t *Tracker) SetExchangeID(clientID, exchangeID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	o, ok := t.byClient[clientID]
	if !ok || exchangeID == "" {
		return
	}
	o.ExchangeID = exchangeID
	t.byExchange[exchangeID] = clientID
}

// RecordFill accumulates filled quantity on a tracked order.
func (t *Tracker) RecordFill(clientID string, qty float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	o, ok := t.byClient[clientID]
	if !ok {
		return
	}
	o.FilledQty += qty
}

// ResolveSymbol maps either an exchange id or a client id to its
// symbol. Unknown ids resolve to ok=false, never an error.
func (t *Tracker) ResolveSymbol(id string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	clientID := id
	if mapped, ok := t.byExchange[id]; ok {
		clientID = mapped
	}
	o, ok := t.byClient[clientID]
	if !ok {
		return "", false
	}
	return o.Symbol, true
}

// Get returns a copy of the order for clientID.
func (t *Tracker) Get(clientID string) (Order, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	o, ok := t.byClient[clientID]
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// Active returns copies of all working orders.
func (t *Tracker) Active() []Order {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Order, 0, len(t.active))
	for id := range t.active {
		if o, ok := t.byClient[id]; ok {
			out = append(out, *o)
		}
	}
	return out
}

// BySymbol returns copies of all tracked orders for symbol, in
// insertion order.
func (t *Tracker) BySymbol(symbol string) []Order {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := t.bySymbol[symbol]
	out := make([]Order, 0, len(ids))
	for _, id := range ids {
		if o, ok := t.byClient[id]; ok {
			out = append(out, *o)
		}
	}
	return out
}

// Len reports how many orders are tracked.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byClient)
}

// evictLocked removes the evictBatch oldest-completed orders. Only
// terminal orders with a completion time are candidates.
func (t *Tracker) evictLocked() {
	candidates := make([]*Order, 0, evictBatch)
	for _, o := range t.byClient {
		if o.Status.IsTerminal() && !o.CompletedAt.IsZero() {
			candidates = append(candidates, o)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CompletedAt.Before(candidates[j].CompletedAt)
	})

	n := evictBatch
	if n > len(candidates) {
		n = len(candidates)
	}
	for _, o := range candidates[:n] {
		t.removeLocked(o)
	}
}

func (t *Tracker) removeLocked(o *Order) {
	delete(t.byClient, o.ClientID)
	delete(t.active, o.ClientID)
	if o.ExchangeID != "" {
		delete(t.byExchange, o.ExchangeID)
	}
	ids := t.bySymbol[o.Symbol]
	for i, id := range ids {
		if id == o.ClientID {
			t.bySymbol[o.Symbol] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(t.bySymbol[o.Symbol]) == 0 {
		delete(t.bySymbol, o.Symbol)
	}
}
