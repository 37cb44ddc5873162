package invocation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/isp-devices/internal/device"
)

// Invocation is a single device operation served to a client.
type Invocation struct {
	ID        string           `json:"id"`
	RequestID string           `json:"request_id,omitempty"`
	Variant   device.Variant   `json:"variant"`
	Operation device.Operation `json:"operation"`
	Input     string           `json:"input,omitempty"`
	Output    string           `json:"output"`
	CreatedAt time.Time        `json:"created_at"`
}

// Filter controls which invocations List returns.
type Filter struct {
	Variant   device.Variant   // optional
	Operation device.Operation // optional
	Limit     int              // default 50, max 200
	Offset    int
}

// ListResult is one page of the invocation trail.
type ListResult struct {
	Invocations []Invocation `json:"invocations"`
	Total       int          `json:"total"`
	Limit       int          `json:"limit"`
	Offset      int          `json:"offset"`
}

// Recorder accepts invocations as they happen.
// Implementations must be safe for concurrent use.
type Recorder interface {
	Record(ctx context.Context, inv Invocation) error
}

// Repository is the queryable trail behind GET /isp/v1/invocations.
type Repository interface {
	Recorder
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// NewID returns a fresh invocation ID.
func NewID() string {
	return "inv-" + uuid.NewString()
}

// FromResults builds one Invocation per device result, stamped with the
// same request ID and time. Each gets its own ID.
func FromResults(requestID string, variant device.Variant, results []device.Result) []Invocation {
	now := time.Now().UTC()
	invs := make([]Invocation, 0, len(results))
	for _, r := range results {
		invs = append(invs, Invocation{
			ID:        NewID(),
			RequestID: requestID,
			Variant:   variant,
			Operation: r.Operation,
			Input:     r.Input,
			Output:    r.Output,
			CreatedAt: now,
		})
	}
	return invs
}
