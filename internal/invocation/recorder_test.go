package invocation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/isp-devices/internal/device"
	"github.com/nerrad567/isp-devices/internal/infrastructure/mqtt"
)

// collector is a Recorder that keeps everything it receives.
type collector struct {
	mu   sync.Mutex
	got  []Invocation
	fail error
}

func (c *collector) Record(_ context.Context, inv Invocation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	c.got = append(c.got, inv)
	return nil
}

func TestMulti_FansOutAndSurvivesFailures(t *testing.T) {
	failing := &collector{fail: errors.New("broker down")}
	first := &collector{}
	last := &collector{}

	m := NewMulti(nil)
	m.Add("first", first)
	m.Add("failing", failing)
	m.Add("nil", nil)
	m.Add("last", last)

	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}

	inv := Invocation{Variant: device.VariantTablet, Operation: device.OpShowInfo, Output: "Mostrando informacion"}
	if err := m.Record(context.Background(), inv); err != nil {
		t.Fatalf("Record() error = %v, want nil", err)
	}

	if len(first.got) != 1 || len(last.got) != 1 {
		t.Fatalf("sinks received %d and %d invocations, want 1 each", len(first.got), len(last.got))
	}
	if first.got[0].ID == "" || first.got[0].ID != last.got[0].ID {
		t.Errorf("sinks saw IDs %q and %q, want the same generated ID", first.got[0].ID, last.got[0].ID)
	}
	if first.got[0].CreatedAt.IsZero() {
		t.Error("CreatedAt was not filled in")
	}
}

func TestFromResults(t *testing.T) {
	results := device.Exercise(device.Phone{}, "42")
	invs := FromResults("req-9", device.VariantPhone, results)

	if len(invs) != len(results) {
		t.Fatalf("FromResults() returned %d, want %d", len(invs), len(results))
	}
	seen := make(map[string]bool)
	for i, inv := range invs {
		if inv.RequestID != "req-9" || inv.Variant != device.VariantPhone {
			t.Errorf("invs[%d] = %+v, want request req-9 for phone", i, inv)
		}
		if inv.Operation != results[i].Operation || inv.Output != results[i].Output || inv.Input != results[i].Input {
			t.Errorf("invs[%d] does not mirror result %+v", i, results[i])
		}
		if !strings.HasPrefix(inv.ID, "inv-") || seen[inv.ID] {
			t.Errorf("invs[%d].ID = %q, want unique inv- ID", i, inv.ID)
		}
		seen[inv.ID] = true
		if !inv.CreatedAt.Equal(invs[0].CreatedAt) {
			t.Errorf("invs[%d].CreatedAt differs from the first", i)
		}
	}
}

func TestRecordAll_StopsAtFirstError(t *testing.T) {
	calls := 0
	rec := RecorderFunc(func(_ context.Context, inv Invocation) error {
		calls++
		if inv.Operation == device.OpPowerOff {
			return errors.New("boom")
		}
		return nil
	})

	invs := FromResults("", device.VariantTablet, device.Exercise(device.Tablet{}, ""))
	err := RecordAll(context.Background(), rec, invs)
	if err == nil || !strings.Contains(err.Error(), "power_off") {
		t.Fatalf("RecordAll() error = %v, want power_off failure", err)
	}
	if calls != 2 {
		t.Errorf("recorder called %d times, want 2", calls)
	}
}

type fakePublisher struct {
	topic string
	v     any
}

func (f *fakePublisher) PublishJSON(topic string, v any) error {
	f.topic, f.v = topic, v
	return nil
}

type fakeCounter struct {
	variant, operation string
	ts                 time.Time
}

func (f *fakeCounter) WriteInvocationAt(variant, operation string, ts time.Time) {
	f.variant, f.operation, f.ts = variant, operation, ts
}

type fakeBroadcaster struct {
	eventType string
	payload   any
}

func (f *fakeBroadcaster) Broadcast(eventType string, payload any) {
	f.eventType, f.payload = eventType, payload
}

func TestSinks(t *testing.T) {
	ts := time.Date(2026, 10, 16, 8, 30, 0, 0, time.UTC)
	inv := Invocation{
		ID:        "inv-1",
		Variant:   device.VariantPhone,
		Operation: device.OpReceiveCall,
		Input:     "7",
		Output:    "Recibiendo llamada del número: 7",
		CreatedAt: ts,
	}
	ctx := context.Background()

	pub := &fakePublisher{}
	if err := MQTTSink(pub).Record(ctx, inv); err != nil {
		t.Fatalf("MQTTSink error = %v", err)
	}
	if pub.topic != "isp/invocations/phone/receive_call" {
		t.Errorf("MQTT topic = %q", pub.topic)
	}
	if got, ok := pub.v.(Invocation); !ok || got != inv {
		t.Errorf("MQTT payload = %#v, want the invocation", pub.v)
	}

	counter := &fakeCounter{}
	if err := InfluxSink(counter).Record(ctx, inv); err != nil {
		t.Fatalf("InfluxSink error = %v", err)
	}
	if counter.variant != "phone" || counter.operation != "receive_call" || !counter.ts.Equal(ts) {
		t.Errorf("influx write = %+v", counter)
	}

	bc := &fakeBroadcaster{}
	if err := BroadcastSink(bc).Record(ctx, inv); err != nil {
		t.Fatalf("BroadcastSink error = %v", err)
	}
	if bc.eventType != EventDeviceInvoked {
		t.Errorf("event type = %q, want %q", bc.eventType, EventDeviceInvoked)
	}
}

func TestMQTTSink_RejectsInvalidSegments(t *testing.T) {
	tests := []struct {
		name      string
		variant   device.Variant
		operation device.Operation
	}{
		{"empty variant", "", device.OpMakeCall},
		{"slash in variant", "phone/extra", device.OpMakeCall},
		{"wildcard operation", device.VariantPhone, "+"},
		{"multi-level wildcard", device.VariantTablet, "#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{}
			inv := Invocation{ID: "inv-x", Variant: tt.variant, Operation: tt.operation}
			err := MQTTSink(pub).Record(context.Background(), inv)
			if !errors.Is(err, mqtt.ErrInvalidTopic) {
				t.Fatalf("error = %v, want ErrInvalidTopic", err)
			}
			if pub.topic != "" {
				t.Errorf("published to %q, want nothing published", pub.topic)
			}
		})
	}
}
