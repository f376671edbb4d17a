// Copyright (2015) Sandia Corporation.
// Under the terms of Contract DE-AC04-94AL85000 with Sandia Corporation,
// the U.S. Government retains certain rights in this software.

// Package rohcstats exposes a Compressor's aggregate counters as
// Prometheus metrics, the way other services in this source tree wire
// their own internal counters into client_golang.
package rohcstats

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oprsystem/rohc"
)

// Collector polls a Compressor's GetGeneralInfo snapshot on every
// scrape rather than mirroring its counters inline, so the core engine
// never imports Prometheus directly.
type Collector struct {
	c *rohc.Compressor

	packetsCompressed *prometheus.Desc
	packetsByType     *prometheus.Desc
	contextsCreated   *prometheus.Desc
	contextsEvicted   *prometheus.Desc
	contextsInUse     *prometheus.Desc
	feedbackDropped   *prometheus.Desc
	segmentsEmitted   *prometheus.Desc
	compressionFailed *prometheus.Desc
}

// NewCollector builds a Collector labeled with instance (typically the
// compressor's own correlation id), scoped under the "rohc" namespace.
func NewCollector(c *rohc.Compressor, instance string) *Collector {
	labels := prometheus.Labels{"instance": instance}
	return &Collector{
		c: c,
		packetsCompressed: prometheus.NewDesc("rohc_packets_compressed_total",
			"Packets successfully compressed.", nil, labels),
		packetsByType: prometheus.NewDesc("rohc_packets_by_type_total",
			"Packets successfully compressed, by wire packet type.", []string{"type"}, labels),
		contextsCreated: prometheus.NewDesc("rohc_contexts_created_total",
			"Contexts created since startup.", nil, labels),
		contextsEvicted: prometheus.NewDesc("rohc_contexts_evicted_total",
			"Contexts evicted via LRU to make room for a new flow.", nil, labels),
		contextsInUse: prometheus.NewDesc("rohc_contexts_in_use",
			"Contexts currently allocated.", nil, labels),
		feedbackDropped: prometheus.NewDesc("rohc_feedback_dropped_total",
			"Feedback entries dropped because the ring was full.", nil, labels),
		segmentsEmitted: prometheus.NewDesc("rohc_segments_emitted_total",
			"Segments emitted by the MRRU segmenter.", nil, labels),
		compressionFailed: prometheus.NewDesc("rohc_compression_failed_total",
			"Packets that failed compression (including fallback failures).", nil, labels),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.packetsCompressed
	ch <- c.packetsByType
	ch <- c.contextsCreated
	ch <- c.contextsEvicted
	ch <- c.contextsInUse
	ch <- c.feedbackDropped
	ch <- c.segmentsEmitted
	ch <- c.compressionFailed
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.c.GetGeneralInfo()

	ch <- prometheus.MustNewConstMetric(c.packetsCompressed, prometheus.CounterValue, float64(s.PacketsCompressed))
	for ptype, n := range s.PacketsByType {
		ch <- prometheus.MustNewConstMetric(c.packetsByType, prometheus.CounterValue, float64(n), ptype.String())
	}
	ch <- prometheus.MustNewConstMetric(c.contextsCreated, prometheus.CounterValue, float64(s.ContextsCreated))
	ch <- prometheus.MustNewConstMetric(c.contextsEvicted, prometheus.CounterValue, float64(s.ContextsEvicted))
	ch <- prometheus.MustNewConstMetric(c.contextsInUse, prometheus.GaugeValue, float64(c.c.NumContextsUsed()))
	ch <- prometheus.MustNewConstMetric(c.feedbackDropped, prometheus.CounterValue, float64(s.FeedbackDropped))
	ch <- prometheus.MustNewConstMetric(c.segmentsEmitted, prometheus.CounterValue, float64(s.SegmentsEmitted))
	ch <- prometheus.MustNewConstMetric(c.compressionFailed, prometheus.CounterValue, float64(s.CompressionFailed))
}
