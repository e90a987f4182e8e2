package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersAccumulate(t *testing.T) {
	before := testutil.ToFloat64(ScreeningDecisions.WithLabelValues("applied", "shortlisted"))
	ScreeningDecisions.WithLabelValues("applied", "shortlisted").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ScreeningDecisions.WithLabelValues("applied", "shortlisted")))

	ScreeningSessionsActive.Set(3)
	ScreeningSessionsActive.Dec()
	assert.Equal(t, 2.0, testutil.ToFloat64(ScreeningSessionsActive))

	before = testutil.ToFloat64(LoginAttempts.WithLabelValues("rate_limited"))
	LoginAttempts.WithLabelValues("rate_limited").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(LoginAttempts.WithLabelValues("rate_limited")))
}
