package bus

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/tabkit/logger"
)

func TestEmitter_PatternMatching(t *testing.T) {
	e := NewEmitter(logger.Nop())
	var mu sync.Mutex
	got := map[string][]string{}
	sub := func(pattern string) {
		t.Helper()
		if _, err := e.On(pattern, func(_ context.Context, ev Event) {
			mu.Lock()
			got[pattern] = append(got[pattern], ev.Name)
			mu.Unlock()
		}); err != nil {
			t.Fatalf("On(%q): %v", pattern, err)
		}
	}
	sub("data")
	sub("data*")
	sub("*")
	sub("jobs/d?ta")

	ctx := context.Background()
	for _, name := range []string{"data", "data-users", "error", "jobs/data"} {
		if err := e.Emit(ctx, name); err != nil {
			t.Fatalf("Emit: %v", err)
		}
	}

	tests := []struct {
		pattern string
		want    string
	}{
		{"data", "data"},
		{"data*", "data,data-users"},
		{"*", "data,data-users,error,jobs/data"},
		{"jobs/d?ta", "jobs/data"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			if s := strings.Join(got[tt.pattern], ","); s != tt.want {
				t.Errorf("pattern %q got %q, want %q", tt.pattern, s, tt.want)
			}
		})
	}
}

func TestEmitter_ArgsAndUnsubscribe(t *testing.T) {
	e := NewEmitter(logger.Nop())
	var last Event
	calls := 0
	off, err := e.On("data", func(_ context.Context, ev Event) {
		calls++
		last = ev
	})
	if err != nil {
		t.Fatal(err)
	}

	_ = e.Emit(context.Background(), "data", []int{1, 2}, 3)
	if calls != 1 || len(last.Args) != 2 || last.Args[1] != 3 {
		t.Fatalf("unexpected delivery: calls=%d event=%+v", calls, last)
	}
	if last.ID == "" || last.Time.IsZero() {
		t.Error("event should carry an ID and a timestamp")
	}

	off()
	off()
	_ = e.Emit(context.Background(), "data")
	if calls != 1 {
		t.Errorf("handler called after unsubscribe")
	}
	if e.Len() != 0 {
		t.Errorf("Len() = %d, want 0", e.Len())
	}
}

func TestEmitter_PanicIsolated(t *testing.T) {
	e := NewEmitter(logger.Nop())
	second := false
	_, _ = e.On("*", func(context.Context, Event) { panic("boom") })
	_, _ = e.On("*", func(context.Context, Event) { second = true })

	if err := e.Emit(context.Background(), "data"); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !second {
		t.Error("second handler should still run")
	}
}

func TestEmitter_BadPattern(t *testing.T) {
	e := NewEmitter(logger.Nop())
	if _, err := e.On("[", func(context.Context, Event) {}); err == nil {
		t.Error("expected error for malformed pattern")
	}
}

func TestFanout(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	failing := NewRecorder()
	failing.Err = errors.New("broker down")

	f := NewFanout(a, nil, failing, b)
	err := f.Emit(context.Background(), "data", "x")
	if err == nil || !strings.Contains(err.Error(), "broker down") {
		t.Fatalf("expected joined error, got %v", err)
	}
	for i, r := range []*Recorder{a, failing, b} {
		if len(r.Events()) != 1 {
			t.Errorf("bus %d got %d events, want 1", i, len(r.Events()))
		}
	}
}

func TestRecorder_Wait(t *testing.T) {
	r := NewRecorder()
	go func() {
		for i := 0; i < 3; i++ {
			_ = r.Emit(context.Background(), "data", i)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	events, err := r.Wait(ctx, 3)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(events) != 3 || len(r.Named("data")) != 3 || len(r.Named("error")) != 0 {
		t.Errorf("unexpected events: %+v", events)
	}

	r.Reset()
	short, cancel2 := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel2()
	if _, err := r.Wait(short, 1); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline, got %v", err)
	}
}

type jsonErr struct{ msg string }

func (e *jsonErr) Error() string { return e.msg }
func (e *jsonErr) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"message": e.msg})
}

func TestEncode(t *testing.T) {
	type row map[string]any
	ev := NewEvent("data",
		[]row{{"n": math.NaN(), "inf": math.Inf(1), "ok": 1.5, "list": []any{math.Inf(-1), "a"}}},
		7,
		errors.New("plain"),
		&jsonErr{"custom"},
	)
	b, err := Encode(ev)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var decoded struct {
		Name string `json:"name"`
		Args []any  `json:"args"`
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Name != "data" || len(decoded.Args) != 4 {
		t.Fatalf("decoded = %+v", decoded)
	}
	rec := decoded.Args[0].([]any)[0].(map[string]any)
	if rec["n"] != nil || rec["inf"] != nil || rec["ok"] != 1.5 {
		t.Errorf("record = %v", rec)
	}
	if list := rec["list"].([]any); list[0] != nil || list[1] != "a" {
		t.Errorf("list = %v", list)
	}
	if decoded.Args[2] != "plain" {
		t.Errorf("plain error = %v", decoded.Args[2])
	}
	if m, ok := decoded.Args[3].(map[string]any); !ok || m["message"] != "custom" {
		t.Errorf("marshaler arg = %v", decoded.Args[3])
	}

	// the event itself is untouched
	if !math.IsNaN(ev.Args[0].([]row)[0]["n"].(float64)) {
		t.Error("Encode must not mutate the event")
	}
}
