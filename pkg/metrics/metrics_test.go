package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObservers(t *testing.T) {
	m := New()

	m.ObserveResolution("embedded_exact")
	m.ObserveResolution("embedded_exact")
	m.ObserveCapture("new_surface")
	m.ObserveAlignment(true)
	m.ObserveAlignment(false)
	m.ObserveUpload("redis", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ResolutionsTotal.WithLabelValues("embedded_exact")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CaptureOutcomes.WithLabelValues("new_surface")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AlignmentsTotal.WithLabelValues("aligned")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AlignmentsTotal.WithLabelValues("exhausted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UploadsTotal.WithLabelValues("redis", "failure")))
}

func TestNewUsesIsolatedRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
