package main

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetricsServer(t *testing.T) {
	metricsServer, err := newMetricsServer("127.0.0.1:0")
	require.NoError(t, err)
	defer metricsServer.Close()

	resp, err := http.Get("http://" + metricsServer.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "go_goroutines")
}

func TestMetricsServerAddressInUse(t *testing.T) {
	metricsServer, err := newMetricsServer("127.0.0.1:0")
	require.NoError(t, err)
	defer metricsServer.Close()

	_, err = newMetricsServer(metricsServer.Addr())
	require.Error(t, err)
}
