package routing

import (
	"errors"
	"testing"
	"time"
)

func TestTableAddGetRemove(t *testing.T) {
	table := NewTable()

	if err := table.AddRoute(1, "tcp://host:9"); err != nil {
		t.Fatalf("AddRoute failed: %v", err)
	}

	addr, ok := table.GetRoute(1)
	if !ok || addr != "tcp://host:9" {
		t.Errorf("Expected tcp://host:9, got %q (%v)", addr, ok)
	}

	// Last write wins.
	if err := table.AddRoute(1, "tcp://host:10"); err != nil {
		t.Fatalf("AddRoute failed: %v", err)
	}
	addr, _ = table.GetRoute(1)
	if addr != "tcp://host:10" {
		t.Errorf("Expected tcp://host:10, got %s", addr)
	}
	if table.Len() != 1 {
		t.Errorf("Expected 1 route, got %d", table.Len())
	}

	if !table.RemoveRoute(1) {
		t.Error("RemoveRoute should report an existing route")
	}
	if table.RemoveRoute(1) {
		t.Error("RemoveRoute should report a missing route")
	}
	if _, ok := table.GetRoute(1); ok {
		t.Error("Route should be gone")
	}
}

func TestTableRejectsInvalidRoutes(t *testing.T) {
	table := NewTable()

	if err := table.AddRoute(0, "addr"); !errors.Is(err, ErrInvalidRoute) {
		t.Errorf("Expected ErrInvalidRoute for id 0, got %v", err)
	}
	if err := table.AddRoute(1, ""); !errors.Is(err, ErrInvalidRoute) {
		t.Errorf("Expected ErrInvalidRoute for empty address, got %v", err)
	}
}

func TestTableAddRoutesAllOrNothing(t *testing.T) {
	table := NewTable()

	err := table.AddRoutes([]int64{1, 2, -1}, "peer")
	if !errors.Is(err, ErrInvalidRoute) {
		t.Fatalf("Expected ErrInvalidRoute, got %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("Expected no routes after failed batch, got %d", table.Len())
	}

	if err := table.AddRoutes([]int64{1, 2}, "peer"); err != nil {
		t.Fatalf("AddRoutes failed: %v", err)
	}
	if table.Len() != 2 {
		t.Errorf("Expected 2 routes, got %d", table.Len())
	}
}

func TestTableTouchAndSweep(t *testing.T) {
	table := NewTable()
	now := time.Unix(1000, 0)
	table.now = func() time.Time { return now }

	_ = table.AddRoute(1, "a")
	_ = table.AddRoute(2, "b")
	_ = table.AddRoute(3, "b")
	_ = table.AddRoute(4, "c")

	now = now.Add(time.Minute)
	if n := table.Touch("b"); n != 2 {
		t.Errorf("Expected 2 touched routes, got %d", n)
	}
	if n := table.Touch("unknown"); n != 0 {
		t.Errorf("Expected 0 touched routes, got %d", n)
	}

	removed := table.Sweep(now.Add(-30*time.Second), map[int64]struct{}{4: {}})
	if len(removed) != 1 || removed[0] != 1 {
		t.Errorf("Expected [1] removed, got %v", removed)
	}
	if _, ok := table.GetRoute(4); !ok {
		t.Error("Exempt route should survive the sweep")
	}
	if table.Len() != 3 {
		t.Errorf("Expected 3 routes, got %d", table.Len())
	}
}

func TestTableReindexOnMove(t *testing.T) {
	table := NewTable()
	_ = table.AddRoute(1, "old")
	_ = table.AddRoute(1, "new")

	if n := table.Touch("old"); n != 0 {
		t.Errorf("Expected moved route to leave old address, got %d", n)
	}
	if n := table.Touch("new"); n != 1 {
		t.Errorf("Expected 1 route at new address, got %d", n)
	}
}

func TestTableRoutesSnapshot(t *testing.T) {
	table := NewTable()
	_ = table.AddRoute(3, "c")
	_ = table.AddRoute(1, "a")

	routes := table.Routes()
	if len(routes) != 2 {
		t.Fatalf("Expected 2 routes, got %d", len(routes))
	}
	if routes[0].ServiceID != 1 || routes[1].ServiceID != 3 {
		t.Errorf("Expected routes ordered by id, got %v", routes)
	}

	routes[0].Address = "mutated"
	if addr, _ := table.GetRoute(1); addr != "a" {
		t.Errorf("Snapshot should not alias table, got %s", addr)
	}
}
