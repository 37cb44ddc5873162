package influxdb

import (
	"testing"
	"time"
)

func TestInvocationPoint(t *testing.T) {
	ts := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	p := invocationPoint("phone", "receive_call", ts)

	if p.Name() != MeasurementInvocations {
		t.Errorf("Name() = %q, want %q", p.Name(), MeasurementInvocations)
	}
	if !p.Time().Equal(ts) {
		t.Errorf("Time() = %v, want %v", p.Time(), ts)
	}

	tags := map[string]string{}
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	if tags["variant"] != "phone" || tags["operation"] != "receive_call" || len(tags) != 2 {
		t.Errorf("tags = %v", tags)
	}

	fields := p.FieldList()
	if len(fields) != 1 || fields[0].Key != "count" || fields[0].Value != int64(1) {
		t.Errorf("fields = %+v, want count=1", fields)
	}
}
