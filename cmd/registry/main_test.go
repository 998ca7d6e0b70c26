package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"seahorse/internal/registry"
	"seahorse/internal/util/logging"
)

func TestMetricsRegistry_SharedWithServer(t *testing.T) {
	prom, err := newMetricsRegistry()
	require.NoError(t, err)

	srv := registry.NewServer(registry.NewMemory(),
		registry.WithServerLogger(logging.Discard()),
		registry.WithPrometheus(prom))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	families, err := prom.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["go_build_info"])
	require.True(t, names["go_goroutines"])
	require.True(t, names["seahorse_registry_http_requests_total"])
}

func TestRootCmd_Flags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"listen", "data", "log-level", "log-format"} {
		require.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}
