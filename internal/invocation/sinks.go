package invocation

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/isp-devices/internal/infrastructure/mqtt"
)

// JSONPublisher is satisfied by *mqtt.Client.
type JSONPublisher interface {
	PublishJSON(topic string, v any) error
}

// MQTTSink publishes each invocation to isp/invocations/{variant}/{operation}.
// A variant or operation that is not a single topic level is rejected with
// mqtt.ErrInvalidTopic and nothing is published.
func MQTTSink(pub JSONPublisher) Recorder {
	return RecorderFunc(func(_ context.Context, inv Invocation) error {
		variant, operation := string(inv.Variant), string(inv.Operation)
		if !mqtt.ValidSegment(variant) || !mqtt.ValidSegment(operation) {
			return fmt.Errorf("%w: variant %q, operation %q", mqtt.ErrInvalidTopic, variant, operation)
		}
		return pub.PublishJSON(mqtt.Topics{}.Invocation(variant, operation), inv)
	})
}

// CountWriter is satisfied by *influxdb.Client.
type CountWriter interface {
	WriteInvocationAt(variant, operation string, ts time.Time)
}

// InfluxSink adds one point per invocation. Writes are batched, so it never fails.
func InfluxSink(w CountWriter) Recorder {
	return RecorderFunc(func(_ context.Context, inv Invocation) error {
		w.WriteInvocationAt(string(inv.Variant), string(inv.Operation), inv.CreatedAt)
		return nil
	})
}

// EventBroadcaster is satisfied by the API's WebSocket hub.
type EventBroadcaster interface {
	Broadcast(eventType string, payload any)
}

// EventDeviceInvoked is the WebSocket event type carrying an Invocation.
const EventDeviceInvoked = "device.invoked"

// BroadcastSink pushes each invocation to WebSocket subscribers.
func BroadcastSink(b EventBroadcaster) Recorder {
	return RecorderFunc(func(_ context.Context, inv Invocation) error {
		b.Broadcast(EventDeviceInvoked, inv)
		return nil
	})
}
