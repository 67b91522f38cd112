package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-management-api/internal/service"
)

func TestMetricsHandlerReady(t *testing.T) {
	h := NewMetricsHandler(service.NewMetricsService(), func(context.Context) error { return nil })
	c, rec := newTestContext(http.MethodGet, "/ready", "")
	h.Ready(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	h = NewMetricsHandler(nil, func(context.Context) error { return errors.New("dial tcp: refused") })
	c, rec = newTestContext(http.MethodGet, "/ready", "")
	h.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_READY", envelope.Error.Code)
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordRegistration("created")
	h := NewMetricsHandler(metrics, nil)
	c, rec := newTestContext(http.MethodGet, "/metrics", "")

	h.Prometheus(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "student_registrations_total")

	h = NewMetricsHandler(nil, nil)
	c, rec = newTestContext(http.MethodGet, "/metrics", "")
	h.Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
