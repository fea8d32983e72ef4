package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New("clinic", reg)

	m.AvailabilityQueries.Inc()
	m.NotificationsSent.WithLabelValues("Confirmed").Inc()
	m.NotificationsSent.WithLabelValues("Confirmed").Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.AvailabilityQueries))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.NotificationsSent.WithLabelValues("Confirmed")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "clinic_booking_availability_queries_total")
	assert.Contains(t, names, "clinic_notification_sent_total")
}
