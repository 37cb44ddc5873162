package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementInvocations is the measurement written for each device operation.
const MeasurementInvocations = "device_invocations"

// WriteInvocationAt records one served operation at ts.
//
// The point is buffered and sent with the next batch. It is dropped while
// the client is disconnected or nil.
//
// Parameters:
//   - variant: device variant tag (phone, tablet)
//   - operation: operation tag (power_on, make_call, ...)
//   - ts: point timestamp, normally the invocation's CreatedAt
func (c *Client) WriteInvocationAt(variant, operation string, ts time.Time) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(invocationPoint(variant, operation, ts))
}

func invocationPoint(variant, operation string, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementInvocations,
		map[string]string{
			"variant":   variant,
			"operation": operation,
		},
		map[string]interface{}{
			"count": int64(1),
		},
		ts,
	)
}
