package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveLookup(t *testing.T) {
	m := New()
	m.ObserveLookup("success", 120*time.Millisecond)
	m.ObserveLookup("not_found", 80*time.Millisecond)
	m.ObserveLookup("success", 10*time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.Lookups.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Lookups.WithLabelValues("not_found")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.Lookups.WithLabelValues("transient_failure")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveLookup("success", time.Millisecond)
	m.IncrementTransition("loading")

	srv := httptest.NewServer(m.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `cnpjlookup_lookups_total{outcome="success"} 1`)
	require.Contains(t, string(body), `cnpjlookup_state_transitions_total{state="loading"} 1`)
}
