// Package routing maps registered services to their live addresses and
// resolves message packets into destination sets.
package routing

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrInvalidRoute is returned for routes with a non-positive id or an empty
// address.
var ErrInvalidRoute = errors.New("invalid route")

// Route is the live address of a registered service.
type Route struct {
	ServiceID int64     `json:"service_id"`
	Address   string    `json:"address"`
	LastSeen  time.Time `json:"last_seen"`
}

// Table is the in-memory routing table. At most one address is kept per
// service id; the last write wins. It is never persisted and is safe for
// concurrent use.
type Table struct {
	mu     sync.RWMutex
	routes map[int64]*Route
	byAddr map[string]map[int64]struct{}
	now    func() time.Time
}

// NewTable creates an empty routing table.
func NewTable() *Table {
	return &Table{
		routes: make(map[int64]*Route),
		byAddr: make(map[string]map[int64]struct{}),
		now:    time.Now,
	}
}

func validate(serviceID int64, address string) error {
	if serviceID <= 0 {
		return fmt.Errorf("%w: service id %d", ErrInvalidRoute, serviceID)
	}
	if address == "" {
		return fmt.Errorf("%w: empty address for service %d", ErrInvalidRoute, serviceID)
	}
	return nil
}

// AddRoute sets the address of a service, replacing any previous one.
func (t *Table) AddRoute(serviceID int64, address string) error {
	if err := validate(serviceID, address); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.put(serviceID, address, t.now())
	return nil
}

// AddRoutes sets address for every id. Either all routes are applied or,
// when any entry is invalid, none are.
func (t *Table) AddRoutes(serviceIDs []int64, address string) error {
	for _, id := range serviceIDs {
		if err := validate(id, address); err != nil {
			return err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	for _, id := range serviceIDs {
		t.put(id, address, now)
	}
	return nil
}

func (t *Table) put(serviceID int64, address string, now time.Time) {
	if old, ok := t.routes[serviceID]; ok {
		t.unindex(serviceID, old.Address)
	}
	t.routes[serviceID] = &Route{ServiceID: serviceID, Address: address, LastSeen: now}

	ids, ok := t.byAddr[address]
	if !ok {
		ids = make(map[int64]struct{})
		t.byAddr[address] = ids
	}
	ids[serviceID] = struct{}{}
}

func (t *Table) unindex(serviceID int64, address string) {
	if ids, ok := t.byAddr[address]; ok {
		delete(ids, serviceID)
		if len(ids) == 0 {
			delete(t.byAddr, address)
		}
	}
}

// RemoveRoute deletes the route of a service. It reports whether a route
// existed.
func (t *Table) RemoveRoute(serviceID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.routes[serviceID]
	if !ok {
		return false
	}
	delete(t.routes, serviceID)
	t.unindex(serviceID, r.Address)
	return true
}

// GetRoute returns the live address of a service.
func (t *Table) GetRoute(serviceID int64) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	r, ok := t.routes[serviceID]
	if !ok {
		return "", false
	}
	return r.Address, true
}

// Touch refreshes the liveness of every route at address and returns how
// many routes were refreshed.
func (t *Table) Touch(address string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := t.byAddr[address]
	now := t.now()
	for id := range ids {
		t.routes[id].LastSeen = now
	}
	return len(ids)
}

// Sweep removes routes not seen since cutoff, except those in exempt. It
// returns the removed service ids in ascending order.
func (t *Table) Sweep(cutoff time.Time, exempt map[int64]struct{}) []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var removed []int64
	for id, r := range t.routes {
		if _, ok := exempt[id]; ok {
			continue
		}
		if r.LastSeen.Before(cutoff) {
			delete(t.routes, id)
			t.unindex(id, r.Address)
			removed = append(removed, id)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	return removed
}

// Routes returns a copy of every route ordered by service id.
func (t *Table) Routes() []Route {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Route, 0, len(t.routes))
	for _, r := range t.routes {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServiceID < out[j].ServiceID })
	return out
}

// Len returns the number of routes.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.routes)
}
