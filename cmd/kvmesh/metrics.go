package main

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metricsServer exposes the process's Prometheus registry over HTTP for
// the duration of a command, so that the routing metrics recorded while
// it runs can be scraped.
type metricsServer struct {
	listener net.Listener
	server   *http.Server
}

func newMetricsServer(addr string) (*metricsServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Handler: mux}
	go server.Serve(listener)
	return &metricsServer{
		listener: listener,
		server:   server,
	}, nil
}

// Addr returns the address the server ended up listening on, which
// differs from the configured one when a kernel-chosen port was
// requested.
func (ms *metricsServer) Addr() string {
	return ms.listener.Addr().String()
}

func (ms *metricsServer) Close() {
	ms.server.Close()
}
