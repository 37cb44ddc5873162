package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/isp-devices/internal/device"
	"github.com/nerrad567/isp-devices/internal/invocation"
)

// handleListInvocations returns a page of the invocation trail, newest first.
//
// Query parameters: variant, operation, limit (default 50, max 200), offset.
func (s *Server) handleListInvocations(w http.ResponseWriter, r *http.Request) {
	if s.invocations == nil {
		writeNotFound(w, "invocation trail is disabled")
		return
	}

	q := r.URL.Query()
	filter := invocation.Filter{
		Variant:   device.Variant(q.Get("variant")),
		Operation: device.Operation(q.Get("operation")),
	}

	var ok bool
	if filter.Limit, ok = intParam(q.Get("limit")); !ok {
		writeBadRequest(w, "limit must be a non-negative integer")
		return
	}
	if filter.Offset, ok = intParam(q.Get("offset")); !ok {
		writeBadRequest(w, "offset must be a non-negative integer")
		return
	}

	result, err := s.invocations.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing invocations failed", "error", err,
			"request_id", r.Context().Value(ctxKeyRequestID))
		writeInternalError(w, "failed to list invocations")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// intParam parses an optional non-negative integer query value. Empty is zero.
func intParam(v string) (int, bool) {
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
