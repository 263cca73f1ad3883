package component

import (
	"context"
	"fmt"
	"testing"

	"github.com/kbukum/tabkit/logger"
)

type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health {
	return m.health
}

type describedComponent struct {
	mockComponent
}

func (d *describedComponent) Describe() Description {
	return Description{Type: "bus", Details: "topic=tabkit"}
}

func newRegistry() *Registry {
	return NewRegistry(logger.Nop())
}

func TestRegisterDuplicate(t *testing.T) {
	r := newRegistry()
	if err := r.Register(&mockComponent{name: "kafka"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register(&mockComponent{name: "kafka"}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestGet(t *testing.T) {
	r := newRegistry()
	c := &mockComponent{name: "redis"}
	r.Register(c)
	if r.Get("redis") != c {
		t.Error("expected registered component")
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for unknown component")
	}
}

func TestStartAllOrder(t *testing.T) {
	r := newRegistry()
	order := []string{}
	r.Register(&mockComponent{name: "storage", startOrder: &order})
	r.Register(&mockComponent{name: "kafka", startOrder: &order})

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if len(order) != 2 || order[0] != "storage" || order[1] != "kafka" {
		t.Errorf("expected start order [storage kafka], got %v", order)
	}
}

func TestStartAllErrorStopsStarted(t *testing.T) {
	r := newRegistry()
	stopped := []string{}
	r.Register(&mockComponent{name: "storage", stopOrder: &stopped})
	r.Register(&mockComponent{name: "kafka", startErr: fmt.Errorf("connection refused"), stopOrder: &stopped})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected error from StartAll")
	}
	if len(stopped) != 1 || stopped[0] != "storage" {
		t.Errorf("expected only storage to be stopped, got %v", stopped)
	}
}

func TestStopAllReverseOrder(t *testing.T) {
	r := newRegistry()
	order := []string{}
	r.Register(&mockComponent{name: "storage", stopOrder: &order})
	r.Register(&mockComponent{name: "kafka", stopOrder: &order})
	r.Register(&mockComponent{name: "redis", stopOrder: &order})

	r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 3 || order[0] != "redis" || order[1] != "kafka" || order[2] != "storage" {
		t.Errorf("expected reverse stop order, got %v", order)
	}
}

func TestStopAllSkipsUnstarted(t *testing.T) {
	r := newRegistry()
	order := []string{}
	r.Register(&mockComponent{name: "storage", stopOrder: &order})

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("expected 0 stops for unstarted components, got %d", len(order))
	}
}

func TestStopAllWithErrors(t *testing.T) {
	r := newRegistry()
	r.Register(&mockComponent{name: "kafka", stopErr: fmt.Errorf("stop failed")})
	r.StartAll(context.Background())

	if err := r.StopAll(context.Background()); err == nil {
		t.Error("expected error from StopAll")
	}
}

func TestHealthAll(t *testing.T) {
	r := newRegistry()
	r.Register(&mockComponent{name: "kafka", health: Health{Name: "kafka", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "redis", health: Health{Name: "redis", Status: StatusUnhealthy, Message: "timeout"}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy || results[1].Status != StatusUnhealthy {
		t.Errorf("unexpected health results %+v", results)
	}
}

func TestDescribe(t *testing.T) {
	r := newRegistry()
	r.Register(&mockComponent{name: "plain"})
	r.Register(&describedComponent{mockComponent{name: "kafka"}})

	got := r.Describe()
	if len(got) != 2 {
		t.Fatalf("expected 2 descriptions, got %d", len(got))
	}
	if got[0].Name != "plain" || got[0].Type != "" {
		t.Errorf("fallback description = %+v", got[0])
	}
	if got[1].Name != "kafka" || got[1].Type != "bus" || got[1].Details != "topic=tabkit" {
		t.Errorf("described = %+v", got[1])
	}
}
