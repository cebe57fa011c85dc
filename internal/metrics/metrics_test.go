package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	r.Adoption("pending")
	r.Settlement("shop", "paid")
	r.Booking()
	r.Checkout()
	r.GatewayOrder("ok")
	require.Nil(t, r.Registry())
}

func TestCounters(t *testing.T) {
	r := New()
	r.Adoption("approved")
	r.Adoption("approved")
	r.Settlement("appointment", "paid")
	r.Booking()

	require.Equal(t, 2.0, testutil.ToFloat64(r.adoptions.WithLabelValues("approved")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.settlements.WithLabelValues("appointment", "paid")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.bookings))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	require.True(t, strings.Contains(string(body), "petverse_adoption_requests_total"))
}
