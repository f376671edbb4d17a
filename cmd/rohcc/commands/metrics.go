// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

package commands

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"

	"github.com/oprsystem/rohc"
	log "github.com/oprsystem/rohc/minilog"
	"github.com/oprsystem/rohc/rohcstats"
)

// maybeServeMetrics starts a Prometheus /metrics endpoint for c when
// --metrics-addr is set, wiring its own mux and http.Server the way
// miniweb does rather than registering on http.DefaultServeMux. A nil
// return means metrics were not requested.
func maybeServeMetrics(c *rohc.Compressor) *http.Server {
	addr := viper.GetString("metrics-addr")
	if addr == "" {
		return nil
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(rohcstats.NewCollector(c, c.ID()))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("rohc[%s]: metrics server on %s: %v", c.ID(), addr, err)
		}
	}()

	log.Debug("rohc[%s]: serving metrics on %s", c.ID(), addr)
	return server
}
