package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndHandler(t *testing.T) {
	before := testutil.ToFloat64(BookingsTotal.WithLabelValues("created"))
	BookingsTotal.WithLabelValues("created").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(BookingsTotal.WithLabelValues("created")))

	TransitionsTotal.WithLabelValues("Cancelled", "student").Inc()

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "uniconsult_consultation_bookings_total"))
	assert.True(t, strings.Contains(string(body), `uniconsult_consultation_transitions_total{status="Cancelled",trigger="student"}`))
}
