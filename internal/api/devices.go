package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/isp-devices/internal/device"
)

// handleCelular runs every phone operation with the default number.
func (s *Server) handleCelular(w http.ResponseWriter, r *http.Request) {
	s.serveExercise(w, r, device.VariantPhone)
}

// handleTablet runs every tablet operation. Tablets have no call operations.
func (s *Server) handleTablet(w http.ResponseWriter, r *http.Request) {
	s.serveExercise(w, r, device.VariantTablet)
}

// handleChiplessTablet drives a chipless tablet through the flat device
// interface. Its call stubs panic, so this route always ends in a 500 from
// the recovery middleware. Mounted only when api.legacy_routes is true.
func (s *Server) handleChiplessTablet(w http.ResponseWriter, r *http.Request) {
	s.logger.Warn("legacy route called", "path", r.URL.Path,
		"request_id", r.Context().Value(ctxKeyRequestID))

	results := device.ExerciseFlat(device.ChiplessTablet{}, s.defaultNumber)
	writeText(w, http.StatusOK, device.Join(results))
}

// handleListDevices lists every variant with its capabilities.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	devices := s.catalogue.DescribeAll()
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleGetDevice describes one variant.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	d, err := s.catalogue.Describe(variantParam(r))
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleExerciseDevice runs every operation the variant supports.
func (s *Server) handleExerciseDevice(w http.ResponseWriter, r *http.Request) {
	s.serveExercise(w, r, variantParam(r))
}

// handleDeviceCall places and receives a call to the number in the path.
func (s *Server) handleDeviceCall(w http.ResponseWriter, r *http.Request) {
	variant := variantParam(r)
	dev, err := s.catalogue.Lookup(variant)
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	number, ok := numberParam(r)
	if !ok {
		writeBadRequest(w, "number is not a valid path segment")
		return
	}

	results, err := device.Call(dev, number)
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	s.record(r.Context(), variant, results)
	writeText(w, http.StatusOK, device.Join(results))
}

func (s *Server) serveExercise(w http.ResponseWriter, r *http.Request, variant device.Variant) {
	dev, err := s.catalogue.Lookup(variant)
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	results := device.Exercise(dev, s.defaultNumber)
	s.record(r.Context(), variant, results)
	writeText(w, http.StatusOK, device.Join(results))
}

func variantParam(r *http.Request) device.Variant {
	return device.Variant(chi.URLParam(r, "variant"))
}

// numberParam returns the decoded {number} segment. chi matches on the raw
// path when the request carries escapes, and then the segment is still
// percent-encoded.
func numberParam(r *http.Request) (string, bool) {
	number := chi.URLParam(r, "number")
	if r.URL.RawPath == "" {
		return number, true
	}
	decoded, err := url.PathUnescape(number)
	if err != nil {
		return "", false
	}
	return decoded, true
}

// writeDeviceError maps device package errors to HTTP responses.
func writeDeviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, device.ErrUnknownVariant):
		writeNotFound(w, err.Error())
	case errors.Is(err, device.ErrCapabilityUnsupported):
		writeError(w, http.StatusUnprocessableEntity, ErrCodeCapabilityUnsupported, err.Error())
	default:
		writeInternalError(w, "internal server error")
	}
}
