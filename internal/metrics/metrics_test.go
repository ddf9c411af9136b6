package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/iiroan/formwatch/internal/validate"
)

func TestPipelineRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPipeline("test", reg)

	m.RecordEdit(validate.Email)
	m.RecordEdit(validate.Email)
	m.RecordDebounce(validate.Email)
	m.RecordRemoteCheck(validate.Username)
	m.RecordStale(validate.Username)
	m.RecordVerdict(validate.Phone, false)
	m.RecordRemoteLatency(validate.Email, 120*time.Millisecond)
	m.RecordSubmit(false, true)
	m.FormStarted()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Edits.WithLabelValues("email")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DebounceFired.WithLabelValues("email")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RemoteChecks.WithLabelValues("username")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StaleDiscarded.WithLabelValues("username")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Verdicts.WithLabelValues("phone", "false")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EnabledForms))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ActiveForms))

	m.RecordSubmit(true, false)
	m.FormStopped()
	assert.Equal(t, float64(0), testutil.ToFloat64(m.EnabledForms))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.ActiveForms))
}

func TestRecordSubmitCountsEnabledForms(t *testing.T) {
	m := NewPipeline("test", prometheus.NewRegistry())

	// two forms turn on, one repeats its state, one turns off
	m.RecordSubmit(false, true)
	m.RecordSubmit(false, true)
	m.RecordSubmit(true, true)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.EnabledForms))

	m.RecordSubmit(true, false)
	m.RecordSubmit(false, false)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EnabledForms))
}

func TestNilPipelineIsSafe(t *testing.T) {
	var m *Pipeline
	assert.NotPanics(t, func() {
		m.RecordEdit(validate.Email)
		m.RecordVerdict(validate.Email, true)
		m.RecordSubmit(false, true)
		m.FormStarted()
	})
}
